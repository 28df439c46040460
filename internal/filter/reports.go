package filter

import (
	"slices"
	"strings"
	"unicode"
)

// IsInformationalReport reports whether lowercased text reads like an
// after-action summary: several statistics markers in a long, list-like or
// number-heavy post. Any live-movement wording keeps the message live.
func IsInformationalReport(lower string) bool {
	if containsAny(lower, liveMovementMarkers) {
		return false
	}

	hits := 0
	for _, m := range recapMarkers {
		if strings.Contains(lower, m) {
			hits++
		}
	}
	if hits < 2 {
		return false
	}

	lineBreaks := strings.Count(lower, "\n")
	bullets := 0
	for _, line := range strings.Split(lower, "\n") {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, "-") || strings.HasPrefix(line, "•") || strings.HasPrefix(line, "—") || strings.HasPrefix(line, "*") {
			bullets++
		}
	}
	digits := 0
	for _, r := range lower {
		if unicode.IsDigit(r) {
			digits++
		}
	}

	return lineBreaks >= 10 || bullets >= 3 || digits >= 20
}

// IsNegativeUpdate reports whether lowercased text says a threat is no
// longer observed without being an official all clear.
func IsNegativeUpdate(lower string) bool {
	if containsAny(lower, stemsFor(AllClear)) {
		return false
	}

	trimmed := strings.TrimFunc(lower, func(r rune) bool {
		return !unicode.IsLetter(r)
	})
	if !negativeStatusWholeMessages[trimmed] && !containsAny(lower, negativeStatusPhrases) {
		return false
	}

	cautious := containsAny(lower, possibleRepeatMarkers)
	for _, m := range activeAlertMarkers {
		if !strings.Contains(lower, m) {
			continue
		}
		if cautious && isLaunchMarker(m) {
			continue
		}
		return false
	}
	return true
}

func isLaunchMarker(m string) bool {
	return m == "запуск" || slices.Contains(launchTriggerStems, m)
}
