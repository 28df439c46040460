package filter

import "time"

type dedupEntry struct {
	sentAt         time.Time
	maxProximity   Proximity
	seenSignature  uint16
	seenNationwide bool
	wasUrgent      bool
	lastUrgentAt   time.Time
	lastSourceID   int64
}

// candidate is a classified, located message waiting for a dedup verdict.
type candidate struct {
	sourceID   int64
	primary    ThreatKind
	signature  uint16
	proximity  Proximity
	nationwide bool
	urgent     bool
}

// dedupCache keeps one entry per primary threat kind.
type dedupCache struct {
	window         time.Duration
	urgentCooldown time.Duration
	entries        map[ThreatKind]*dedupEntry
}

func newDedupCache(window, urgentCooldown time.Duration) *dedupCache {
	return &dedupCache{
		window:         window,
		urgentCooldown: urgentCooldown,
		entries:        make(map[ThreatKind]*dedupEntry),
	}
}

func (d *dedupCache) evict(now time.Time) {
	for k, e := range d.entries {
		if now.Sub(e.sentAt) >= d.window {
			delete(d.entries, k)
		}
	}
}

// admit decides whether c is new information and, if so, records it.
func (d *dedupCache) admit(now time.Time, c candidate) bool {
	e, ok := d.entries[c.primary]
	if ok && !d.isNovel(now, e, c) {
		return false
	}
	if !ok {
		e = &dedupEntry{}
		d.entries[c.primary] = e
	}

	e.sentAt = now
	e.maxProximity = max(e.maxProximity, c.proximity)
	e.seenSignature |= c.signature
	e.seenNationwide = e.seenNationwide || c.nationwide
	e.wasUrgent = c.urgent
	if c.urgent {
		e.lastUrgentAt = now
	}
	e.lastSourceID = c.sourceID
	return true
}

func (d *dedupCache) isNovel(now time.Time, e *dedupEntry, c candidate) bool {
	switch {
	case c.proximity > e.maxProximity:
		return true
	case c.nationwide && !e.seenNationwide:
		return true
	case c.signature&^e.seenSignature != 0:
		return true
	case c.urgent && !e.wasUrgent:
		return true
	case c.urgent && c.sourceID == e.lastSourceID && now.Sub(e.lastUrgentAt) >= d.urgentCooldown:
		return true
	}
	return false
}

func (d *dedupCache) clear() {
	clear(d.entries)
}

func (d *dedupCache) len() int {
	return len(d.entries)
}

// negativeStatus throttles "no longer observed" posts from one source.
type negativeStatus struct {
	latched    bool
	lastSentAt time.Time
}
