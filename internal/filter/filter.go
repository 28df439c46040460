package filter

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"
)

type Config struct {
	Location                 LocationConfig
	DedupWindow              time.Duration
	ContextWindow            time.Duration
	UrgentSameSourceCooldown time.Duration
	NegativeStatusCooldown   time.Duration
	// ForwardAll forwards threats even when no location matched.
	ForwardAll bool
}

func DefaultConfig() Config {
	return Config{
		DedupWindow:            180 * time.Second,
		ContextWindow:          300 * time.Second,
		NegativeStatusCooldown: 120 * time.Second,
	}
}

// VerifyRequest is what the optional second-opinion verifier sees.
type VerifyRequest struct {
	Text       string
	Threats    []ThreatKind
	Proximity  Proximity
	Nationwide bool
}

// Verifier narrows a keyword verdict. An empty result means the message is
// not an active alert. Implementations must return req.Threats unchanged on
// any failure and must bound their own latency.
type Verifier interface {
	Verify(ctx context.Context, req VerifyRequest) []ThreatKind
}

type Outcome string

const (
	OutcomeForwarded          Outcome = "forwarded"
	OutcomeAllClear           Outcome = "all_clear"
	OutcomeStatus             Outcome = "status"
	OutcomeRecap              Outcome = "recap"
	OutcomeNegativeSuppressed Outcome = "negative_suppressed"
	OutcomeNoThreat           Outcome = "no_threat"
	OutcomeNotLocal           Outcome = "not_local"
	OutcomeVerifierRejected   Outcome = "verifier_rejected"
	OutcomeDuplicate          Outcome = "duplicate"
)

// Alert is a message the filter decided to forward.
type Alert struct {
	SourceID    int64
	SourceTitle string
	// Text is the formatted alert ready for delivery.
	Text       string
	Threats    []ThreatKind
	Primary    ThreatKind
	Proximity  Proximity
	Nationwide bool
	Urgent     bool
	// Status marks a "no longer observed" update rather than a threat.
	Status bool
}

type Result struct {
	Outcome Outcome
	Alert   *Alert
}

func (r Result) Forwarded() bool {
	return r.Alert != nil
}

type Option func(*AlertFilter)

func WithVerifier(v Verifier) Option {
	return func(f *AlertFilter) {
		f.verifier = v
	}
}

// WithClock replaces time.Now. Readings from time.Now carry a monotonic
// component, so window arithmetic is unaffected by wall clock changes.
func WithClock(now func() time.Time) Option {
	return func(f *AlertFilter) {
		f.now = now
	}
}

// AlertFilter classifies, locates and deduplicates alert channel posts.
// It is not safe for concurrent use.
type AlertFilter struct {
	cfg      Config
	now      func() time.Time
	verifier Verifier

	dedup    *dedupCache
	contexts map[int64]*channelContext
	negative map[int64]*negativeStatus
}

func New(cfg Config, opts ...Option) *AlertFilter {
	f := &AlertFilter{
		cfg:      cfg,
		now:      time.Now,
		dedup:    newDedupCache(cfg.DedupWindow, cfg.UrgentSameSourceCooldown),
		contexts: make(map[int64]*channelContext),
		negative: make(map[int64]*negativeStatus),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

func (f *AlertFilter) String() string {
	return fmt.Sprintf("AlertFilter(district=%v, city=%v, oblast=%v, dedup=%s, context=%s, forward_all=%t)",
		f.cfg.Location.District, f.cfg.Location.City, f.cfg.Location.Oblast,
		f.cfg.DedupWindow, f.cfg.ContextWindow, f.cfg.ForwardAll)
}

// Process runs one message through the pipeline. sourceID must be stable
// across title changes.
func (f *AlertFilter) Process(ctx context.Context, sourceID int64, title, text string) Result {
	now := f.now()
	f.evict(now)
	lower := strings.ToLower(text)

	if IsInformationalReport(lower) {
		return f.drop(sourceID, OutcomeRecap)
	}
	if IsNegativeUpdate(lower) {
		return f.negativeUpdate(now, sourceID, title, text)
	}

	threats := Classify(lower)
	loc := f.cfg.Location.Resolve(lower, title)
	urgent := IsUrgent(lower)

	reported := slices.ContainsFunc(threats, isActiveThreat)

	threats, loc.Proximity = f.inferFromContext(now, sourceID, lower, threats, loc, urgent)
	if len(threats) == 0 {
		return f.drop(sourceID, OutcomeNoThreat)
	}
	if len(threats) == 1 && threats[0] == AllClear {
		return f.allClear(sourceID, title, text)
	}
	// Only a threat named in the text re-arms negative statuses.
	if reported {
		if st, ok := f.negative[sourceID]; ok {
			st.latched = false
		}
	}

	if loc.Proximity == ProximityNone && !loc.Nationwide && !f.cfg.ForwardAll {
		return f.drop(sourceID, OutcomeNotLocal)
	}

	if f.verifier != nil {
		verified := f.verifier.Verify(ctx, VerifyRequest{
			Text:       text,
			Threats:    slices.Clone(threats),
			Proximity:  loc.Proximity,
			Nationwide: loc.Nationwide,
		})
		if len(verified) == 0 {
			return f.drop(sourceID, OutcomeVerifierRejected)
		}
		threats = verified
		if c, ok := f.contexts[sourceID]; ok {
			c.setLatestThreats(threats)
		}
	}

	primary, _ := Primary(threats)
	admitted := f.dedup.admit(now, candidate{
		sourceID:   sourceID,
		primary:    primary,
		signature:  signature(threats),
		proximity:  loc.Proximity,
		nationwide: loc.Nationwide,
		urgent:     urgent,
	})
	if !admitted {
		slog.Debug("alert deduplicated", "source_id", sourceID, "primary", primary, "proximity", loc.Proximity, "urgent", urgent)
		return Result{Outcome: OutcomeDuplicate}
	}

	slog.Debug("alert forwarded", "source_id", sourceID, "primary", primary, "proximity", loc.Proximity, "nationwide", loc.Nationwide, "urgent", urgent)
	return Result{
		Outcome: OutcomeForwarded,
		Alert: &Alert{
			SourceID:    sourceID,
			SourceTitle: title,
			Text:        formatAlert(title, text, threats, loc.Proximity, loc.Nationwide, urgent),
			Threats:     threats,
			Primary:     primary,
			Proximity:   loc.Proximity,
			Nationwide:  loc.Nationwide,
			Urgent:      urgent,
		},
	}
}

// inferFromContext fills a missing threat or location from the source's
// history and refines generic kinds from other sources, then records the
// message in the source's context.
func (f *AlertFilter) inferFromContext(now time.Time, sourceID int64, lower string, threats []ThreatKind, loc Location, urgent bool) ([]ThreatKind, Proximity) {
	c := f.context(sourceID)
	proximity := loc.Proximity

	if len(threats) == 0 {
		if k, ok := c.inferThreatFromTriggers(now, lower); ok {
			threats = append(threats, k)
		}
	}
	// A title alone never carries the previous threat forward.
	located := proximity != ProximityNone && !loc.FromTitle
	if len(threats) == 0 && (located || urgent) {
		if k, ok := c.inferRecentThreat(now); ok {
			threats = append(threats, k)
		}
	}
	if proximity == ProximityNone && !loc.Nationwide && !loc.NonLocal && (len(threats) > 0 || urgent) {
		proximity = c.inferLocation(now)
	}

	threats = f.refineAcrossSources(lower, threats, loc.NonLocal)

	c.add(now, lower, threats, proximity)
	return threats, proximity
}

// refineAcrossSources upgrades a lone generic Missile, or a lone Other that
// describes something in flight, to the newest specific missile kind seen
// on any source.
func (f *AlertFilter) refineAcrossSources(lower string, threats []ThreatKind, nonLocal bool) []ThreatKind {
	if len(threats) != 1 {
		return threats
	}
	switch {
	case threats[0] == Missile:
	case threats[0] == Other && !nonLocal && containsAny(lower, liveMovementMarkers):
	default:
		return threats
	}

	var (
		best   ThreatKind
		bestAt time.Time
		found  bool
	)
	for _, c := range f.contexts {
		k, at, ok := c.latestSpecificMissile()
		if ok && (!found || at.After(bestAt)) {
			best, bestAt, found = k, at, true
		}
	}
	if !found {
		return threats
	}
	return []ThreatKind{best}
}

func (f *AlertFilter) negativeUpdate(now time.Time, sourceID int64, title, text string) Result {
	c, ok := f.contexts[sourceID]
	if !ok {
		return f.drop(sourceID, OutcomeNegativeSuppressed)
	}
	if _, live := c.inferRecentThreat(now); !live {
		return f.drop(sourceID, OutcomeNegativeSuppressed)
	}

	st, ok := f.negative[sourceID]
	if !ok {
		st = &negativeStatus{}
		f.negative[sourceID] = st
	}
	if st.latched || (!st.lastSentAt.IsZero() && now.Sub(st.lastSentAt) < f.cfg.NegativeStatusCooldown) {
		return f.drop(sourceID, OutcomeNegativeSuppressed)
	}
	st.latched = true
	st.lastSentAt = now

	slog.Debug("status update forwarded", "source_id", sourceID)
	return Result{
		Outcome: OutcomeStatus,
		Alert: &Alert{
			SourceID:    sourceID,
			SourceTitle: title,
			Text:        formatStatus(title, text),
			Primary:     Other,
			Status:      true,
		},
	}
}

// allClear forwards a sole all-clear and starts a new wave.
func (f *AlertFilter) allClear(sourceID int64, title, text string) Result {
	f.dedup.clear()
	clear(f.contexts)
	clear(f.negative)

	slog.Debug("all clear, state reset", "source_id", sourceID)
	threats := []ThreatKind{AllClear}
	return Result{
		Outcome: OutcomeAllClear,
		Alert: &Alert{
			SourceID:    sourceID,
			SourceTitle: title,
			Text:        formatAlert(title, text, threats, ProximityNone, false, false),
			Threats:     threats,
			Primary:     AllClear,
		},
	}
}

func (f *AlertFilter) drop(sourceID int64, outcome Outcome) Result {
	slog.Debug("message dropped", "source_id", sourceID, "outcome", outcome)
	return Result{Outcome: outcome}
}

func (f *AlertFilter) context(sourceID int64) *channelContext {
	c, ok := f.contexts[sourceID]
	if !ok {
		c = newChannelContext(f.cfg.ContextWindow)
		f.contexts[sourceID] = c
	}
	return c
}

func (f *AlertFilter) evict(now time.Time) {
	f.dedup.evict(now)
	for id, c := range f.contexts {
		c.evict(now)
		if c.empty() {
			delete(f.contexts, id)
		}
	}
	for id, st := range f.negative {
		_, hasContext := f.contexts[id]
		if !hasContext && now.Sub(st.lastSentAt) >= f.cfg.NegativeStatusCooldown {
			delete(f.negative, id)
		}
	}
}

// Stats is a snapshot of the filter's live state sizes.
type Stats struct {
	Sources        int
	ContextEntries int
	DedupEntries   int
	StatusLatches  int
}

func (f *AlertFilter) Stats() Stats {
	s := Stats{
		Sources:      len(f.contexts),
		DedupEntries: f.dedup.len(),
	}
	for _, c := range f.contexts {
		s.ContextEntries += len(c.entries)
	}
	for _, st := range f.negative {
		if st.latched {
			s.StatusLatches++
		}
	}
	return s
}

func isActiveThreat(k ThreatKind) bool {
	return k != AllClear && k != Other
}
