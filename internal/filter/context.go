package filter

import (
	"slices"
	"time"
)

const contextCapacity = 20

type contextEntry struct {
	at        time.Time
	text      string
	threats   []ThreatKind
	proximity Proximity
}

// channelContext is the recent classification history of one source.
type channelContext struct {
	window  time.Duration
	entries []contextEntry
}

func newChannelContext(window time.Duration) *channelContext {
	return &channelContext{window: window}
}

func (c *channelContext) evict(now time.Time) {
	c.entries = slices.DeleteFunc(c.entries, func(e contextEntry) bool {
		return now.Sub(e.at) >= c.window
	})
}

func (c *channelContext) add(now time.Time, lower string, threats []ThreatKind, proximity Proximity) {
	c.evict(now)
	if len(threats) == 0 && proximity == ProximityNone {
		return
	}
	c.entries = append(c.entries, contextEntry{
		at:        now,
		text:      lower,
		threats:   slices.Clone(threats),
		proximity: proximity,
	})
	if len(c.entries) > contextCapacity {
		c.entries = slices.Delete(c.entries, 0, len(c.entries)-contextCapacity)
	}
}

// inferThreatFromTriggers resolves "target" and "launch" follow-ups against
// history. It returns false when the text has no trigger word.
func (c *channelContext) inferThreatFromTriggers(now time.Time, lower string) (ThreatKind, bool) {
	if !hasTargetWord(wordTokens(lower)) && !hasLaunchWord(lower) {
		return Other, false
	}
	c.evict(now)

	for i := len(c.entries) - 1; i >= 0; i-- {
		e := c.entries[i]
		for _, g := range targetContextKeywords {
			if containsAny(e.text, g.stems) {
				return g.kind, true
			}
		}
		for _, k := range e.threats {
			switch k {
			case Ballistic, CruiseMissile, Shahed, Hypersonic:
				return k, true
			}
		}
	}
	return Missile, true
}

// inferRecentThreat returns the most specific usable threat of the newest
// entry that has one.
func (c *channelContext) inferRecentThreat(now time.Time) (ThreatKind, bool) {
	c.evict(now)
	for i := len(c.entries) - 1; i >= 0; i-- {
		var best ThreatKind
		found := false
		for _, k := range c.entries[i].threats {
			if k == Other || k == AllClear {
				continue
			}
			if !found || k.Specificity() > best.Specificity() {
				best, found = k, true
			}
		}
		if found {
			return best, true
		}
	}
	return Other, false
}

// inferLocation returns the newest known proximity, capped at City.
func (c *channelContext) inferLocation(now time.Time) Proximity {
	c.evict(now)
	for i := len(c.entries) - 1; i >= 0; i-- {
		if p := c.entries[i].proximity; p != ProximityNone {
			return min(p, ProximityCity)
		}
	}
	return ProximityNone
}

// latestSpecificMissile returns the newest missile-family kind in this
// context together with the time it was seen.
func (c *channelContext) latestSpecificMissile() (ThreatKind, time.Time, bool) {
	for i := len(c.entries) - 1; i >= 0; i-- {
		e := c.entries[i]
		var best ThreatKind
		found := false
		for _, k := range e.threats {
			switch k {
			case Ballistic, Hypersonic, CruiseMissile, GuidedBomb:
				if !found || k.Specificity() > best.Specificity() {
					best, found = k, true
				}
			}
		}
		if found {
			return best, e.at, true
		}
	}
	return Other, time.Time{}, false
}

func (c *channelContext) setLatestThreats(threats []ThreatKind) {
	if len(c.entries) == 0 {
		return
	}
	c.entries[len(c.entries)-1].threats = slices.Clone(threats)
}

func (c *channelContext) empty() bool {
	return len(c.entries) == 0
}
