package filter

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// LocationConfig holds lowercase match stems for the observer's location.
// Stems with whitespace are phrases and must match on word boundaries;
// single-word stems match anywhere to catch declensions.
type LocationConfig struct {
	District []string
	City     []string
	Oblast   []string
}

// ParseLocationList splits a comma-separated list into trimmed lowercase stems.
func ParseLocationList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		part = strings.ToLower(strings.TrimSpace(part))
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

func (l LocationConfig) IsEmpty() bool {
	return len(l.District) == 0 && len(l.City) == 0 && len(l.Oblast) == 0
}

// Check returns the most precise configured level named in the text.
func (l LocationConfig) Check(lower string) Proximity {
	switch {
	case matchesAnyStem(lower, l.District):
		return ProximityDistrict
	case matchesAnyStem(lower, l.City):
		return ProximityCity
	case matchesAnyStem(lower, l.Oblast):
		return ProximityOblast
	default:
		return ProximityNone
	}
}

// Location is the resolved relation between a message and the observer.
type Location struct {
	Proximity  Proximity
	Nationwide bool
	// NonLocal is set when the text names another region and none of the
	// configured places. It blocks every fallback to title or context
	// unless the text is also nationwide.
	NonLocal bool
	// FromTitle is set when only the source title supplied the proximity.
	FromTitle bool
}

// Resolve locates lowercased text, falling back to the source title.
func (l LocationConfig) Resolve(lower, title string) Location {
	loc := Location{
		Proximity:  l.Check(lower),
		Nationwide: IsNationwide(lower),
	}
	switch {
	case loc.Proximity == ProximityCity:
		if containsAny(lower, oblastWords) || matchesAnyStem(lower, l.Oblast) {
			loc.Proximity = ProximityOblast
		}
	case loc.Proximity == ProximityNone:
		loc.NonLocal = containsAny(lower, otherRegionStems)
		if !loc.NonLocal || loc.Nationwide {
			loc.Proximity = l.Check(strings.ToLower(title))
			loc.FromTitle = loc.Proximity != ProximityNone
		}
	}
	if loc.Nationwide && loc.Proximity == ProximityNone {
		loc.Proximity = ProximityOblast
	}
	return loc
}

func matchesAnyStem(lower string, stems []string) bool {
	for _, stem := range stems {
		if matchStem(lower, stem) {
			return true
		}
	}
	return false
}

func matchStem(lower, stem string) bool {
	if stem == "" {
		return false
	}
	if !strings.ContainsFunc(stem, unicode.IsSpace) {
		return strings.Contains(lower, stem)
	}
	for offset := 0; offset < len(lower); {
		i := strings.Index(lower[offset:], stem)
		if i < 0 {
			return false
		}
		start := offset + i
		end := start + len(stem)
		if boundaryBefore(lower, start) && boundaryAfter(lower, end) {
			return true
		}
		_, size := utf8.DecodeRuneInString(lower[start:])
		offset = start + size
	}
	return false
}

func boundaryBefore(s string, i int) bool {
	if i == 0 {
		return true
	}
	r, _ := utf8.DecodeLastRuneInString(s[:i])
	return !unicode.IsLetter(r)
}

func boundaryAfter(s string, i int) bool {
	if i >= len(s) {
		return true
	}
	r, _ := utf8.DecodeRuneInString(s[i:])
	return !unicode.IsLetter(r)
}
