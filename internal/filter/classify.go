package filter

import (
	"slices"
	"strings"
	"unicode"
)

// Classify returns the threat kinds found in lowercased text, in table order.
// More specific kinds suppress generic ones.
func Classify(lower string) []ThreatKind {
	var found []ThreatKind
	for _, g := range threatKeywords {
		if containsAny(lower, g.stems) {
			found = append(found, g.kind)
		}
	}

	tokens := wordTokens(lower)
	if hasCruiseAbbreviation(lower, tokens) {
		found = addKind(found, CruiseMissile)
	}
	if hasStrategicAviation(lower, tokens) {
		found = addKind(found, Aircraft)
	}
	if hasFastTarget(lower, tokens) {
		found = addKind(found, Missile)
	}

	return suppress(found)
}

func suppress(found []ThreatKind) []ThreatKind {
	if slices.Contains(found, Ballistic) || slices.Contains(found, CruiseMissile) || slices.Contains(found, Hypersonic) {
		found = slices.DeleteFunc(found, func(k ThreatKind) bool { return k == Missile })
	}
	if slices.Contains(found, Hypersonic) {
		found = slices.DeleteFunc(found, func(k ThreatKind) bool { return k == CruiseMissile })
	}
	if slices.ContainsFunc(found, func(k ThreatKind) bool { return k != Other }) {
		found = slices.DeleteFunc(found, func(k ThreatKind) bool { return k == Other })
	}
	return found
}

// addKind inserts k keeping table order and uniqueness.
func addKind(found []ThreatKind, k ThreatKind) []ThreatKind {
	if slices.Contains(found, k) {
		return found
	}
	out := make([]ThreatKind, 0, len(found)+1)
	for _, kind := range AllThreatKinds {
		if kind == k || slices.Contains(found, kind) {
			out = append(out, kind)
		}
	}
	return out
}

// "КР" only counts as a standalone token next to a route, missile or
// group word.
func hasCruiseAbbreviation(lower string, tokens []string) bool {
	return slices.Contains(tokens, "кр") && containsAny(lower, cruiseAbbrevSupport)
}

// "бортів СА піднято в повітря": airframe, strategic marker and airborne
// marker must all be present.
func hasStrategicAviation(lower string, tokens []string) bool {
	if !containsAny(lower, airframeStems) || !containsAny(lower, airborneStems) {
		return false
	}
	if containsAny(lower, strategicStems) {
		return true
	}
	for _, t := range strategicTokens {
		if slices.Contains(tokens, t) {
			return true
		}
	}
	return false
}

func hasFastTarget(lower string, tokens []string) bool {
	return containsAny(lower, speedMarkerStems) && hasTargetWord(tokens)
}

// IsUrgent reports whether the text marks a repeated or additional wave.
func IsUrgent(lower string) bool {
	return containsAny(lower, urgencyKeywords)
}

// IsNationwide reports whether the text scopes the threat to the whole country.
func IsNationwide(lower string) bool {
	return containsAny(lower, nationwideKeywords)
}

func stemsFor(kind ThreatKind) []string {
	for _, g := range threatKeywords {
		if g.kind == kind {
			return g.stems
		}
	}
	return nil
}

func containsAny(s string, stems []string) bool {
	for _, stem := range stems {
		if strings.Contains(s, stem) {
			return true
		}
	}
	return false
}

// wordTokens splits on anything that is not a letter or digit.
func wordTokens(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

func hasTargetWord(tokens []string) bool {
	for _, t := range tokens {
		if targetTriggerWords[t] {
			return true
		}
	}
	return false
}

func hasLaunchWord(lower string) bool {
	return containsAny(lower, launchTriggerStems)
}
