package ingestion

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

const dump = `{"timestamp": 1771730000, "channel_id": 20, "channel_title": "Radar", "text": "шахеди на київ"}
{"timestamp": 1771729990, "channel_id": 10, "channel_title": "Monitor", "text": "баллистика на киев"}
not json at all

{"timestamp": 1771730000, "channel_id": 10, "channel_title": "Monitor", "text": "відбій"}
{"timestamp": 1771730100, "channel_id": 30, "channel_title": "South", "text": "ракети на одесу"}
`

func TestReadDump_SortsAndSkipsMalformed(t *testing.T) {
	msgs, err := ReadDump(strings.NewReader(dump), Range{})
	if err != nil {
		t.Fatalf("ReadDump failed: %v", err)
	}
	if len(msgs) != 4 {
		t.Fatalf("expected 4 messages, got %d", len(msgs))
	}

	// (timestamp, channel id) order
	wantIDs := []int64{10, 10, 20, 30}
	for i, want := range wantIDs {
		if msgs[i].SourceID != want {
			t.Errorf("message %d: expected channel %d, got %d", i, want, msgs[i].SourceID)
		}
	}
	if msgs[1].Text != "відбій" {
		t.Errorf("expected all-clear before same-second radar post, got %q", msgs[1].Text)
	}
	if !msgs[0].ReceivedAt.Equal(time.Unix(1771729990, 0)) {
		t.Errorf("unexpected received_at %v", msgs[0].ReceivedAt)
	}
	if msgs[0].SourceTitle != "Monitor" {
		t.Errorf("expected title Monitor, got %q", msgs[0].SourceTitle)
	}
}

func TestReadDump_Range(t *testing.T) {
	tests := []struct {
		name string
		rng  Range
		want int
	}{
		{"from line", Range{FromLine: 2}, 3},
		{"to line", Range{ToLine: 2}, 2},
		{"window with malformed line", Range{FromLine: 2, ToLine: 4}, 1},
		{"limit", Range{Limit: 2}, 2},
		{"limit after from", Range{FromLine: 5, Limit: 5}, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msgs, err := ReadDump(strings.NewReader(dump), tt.rng)
			if err != nil {
				t.Fatalf("ReadDump failed: %v", err)
			}
			if len(msgs) != tt.want {
				t.Errorf("expected %d messages, got %d", tt.want, len(msgs))
			}
		})
	}
}

func TestReadDump_InvalidRange(t *testing.T) {
	for _, rng := range []Range{{FromLine: 5, ToLine: 2}, {Limit: -1}} {
		if _, err := ReadDump(strings.NewReader(dump), rng); !errors.Is(err, ErrInvalidRange) {
			t.Errorf("Range %+v: expected ErrInvalidRange, got %v", rng, err)
		}
	}
}

func TestLoadDump(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dump.jsonl")
	if err := os.WriteFile(path, []byte(dump), 0o644); err != nil {
		t.Fatalf("failed to write dump: %v", err)
	}

	msgs, err := LoadDump(path, Range{})
	if err != nil {
		t.Fatalf("LoadDump failed: %v", err)
	}
	if len(msgs) != 4 {
		t.Errorf("expected 4 messages, got %d", len(msgs))
	}

	if _, err := LoadDump(filepath.Join(t.TempDir(), "missing.jsonl"), Range{}); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestVirtualClock(t *testing.T) {
	start := time.Date(2026, 2, 22, 3, 0, 0, 0, time.UTC)
	c := NewVirtualClock(start)

	c.Set(start.Add(time.Minute))
	c.Set(start)

	if !c.Now().Equal(start.Add(time.Minute)) {
		t.Errorf("clock moved backwards: %v", c.Now())
	}
}
