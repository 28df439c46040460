package ingestion

import (
	"bufio"
	"cmp"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/mr1hm/go-raid-alerts/internal/models"
)

const maxDumpLine = 1 << 20

var ErrInvalidRange = errors.New("invalid replay line range")

// DumpEvent is one line of a channel message dump.
type DumpEvent struct {
	Timestamp    int64  `json:"timestamp"`
	ChannelID    int64  `json:"channel_id"`
	ChannelTitle string `json:"channel_title"`
	Text         string `json:"text"`
}

// Range selects dump lines. Line numbers are 1-based and inclusive; zero
// leaves a bound open. Limit caps how many events are read.
type Range struct {
	FromLine int
	ToLine   int
	Limit    int
}

func (r Range) Validate() error {
	if r.FromLine < 0 || r.ToLine < 0 || r.Limit < 0 {
		return fmt.Errorf("%w: negative bound", ErrInvalidRange)
	}
	if r.FromLine > 0 && r.ToLine > 0 && r.FromLine > r.ToLine {
		return fmt.Errorf("%w: from line %d > to line %d", ErrInvalidRange, r.FromLine, r.ToLine)
	}
	return nil
}

func LoadDump(path string, rng Range) ([]models.Message, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("error opening replay file: %w", err)
	}
	defer f.Close()

	return ReadDump(f, rng)
}

// ReadDump parses a JSONL dump, skipping malformed lines, and returns the
// selected messages ordered by (timestamp, channel id).
func ReadDump(r io.Reader, rng Range) ([]models.Message, error) {
	if err := rng.Validate(); err != nil {
		return nil, err
	}

	var events []DumpEvent
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), maxDumpLine)

	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		if lineNo < rng.FromLine || (rng.ToLine > 0 && lineNo > rng.ToLine) {
			continue
		}

		var ev DumpEvent
		if err := json.Unmarshal([]byte(line), &ev); err != nil {
			slog.Warn("skipping malformed dump line", "line", lineNo, "error", err)
			continue
		}
		events = append(events, ev)
		if rng.Limit > 0 && len(events) >= rng.Limit {
			break
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("error reading dump at line %d: %w", lineNo+1, err)
	}

	slices.SortStableFunc(events, func(a, b DumpEvent) int {
		return cmp.Or(cmp.Compare(a.Timestamp, b.Timestamp), cmp.Compare(a.ChannelID, b.ChannelID))
	})

	msgs := make([]models.Message, len(events))
	for i, ev := range events {
		msgs[i] = models.Message{
			SourceID:    ev.ChannelID,
			SourceTitle: ev.ChannelTitle,
			Text:        ev.Text,
			ReceivedAt:  time.Unix(ev.Timestamp, 0).UTC(),
		}
	}
	return msgs, nil
}

// VirtualClock is a settable clock for replaying recorded traffic. It never
// moves backwards.
type VirtualClock struct {
	mu  sync.Mutex
	now time.Time
}

func NewVirtualClock(start time.Time) *VirtualClock {
	return &VirtualClock{now: start}
}

func (c *VirtualClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if t.After(c.now) {
		c.now = t
	}
}

func (c *VirtualClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}
