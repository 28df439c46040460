package filter

import (
	"strings"
	"unicode/utf8"
)

const (
	maxAlertBodyRunes = 3200
	urgentBanner      = "🔁 ПОВТОРНО"
	separator         = "———"
	statusHeader      = "ℹ️ Статус"
)

// ThreatLine joins icon and label of every kind with " + ".
func ThreatLine(threats []ThreatKind) string {
	parts := make([]string, len(threats))
	for i, k := range threats {
		parts[i] = k.Icon() + " " + k.Label()
	}
	return strings.Join(parts, " + ")
}

func formatAlert(title, text string, threats []ThreatKind, proximity Proximity, nationwide, urgent bool) string {
	var b strings.Builder
	if urgent {
		b.WriteString(urgentBanner)
		b.WriteByte('\n')
	}

	b.WriteString(ThreatLine(threats))
	tag := proximity.Tag()
	if nationwide {
		tag = nationwideTag
	}
	if tag != "" {
		b.WriteString(" · ")
		b.WriteString(tag)
	}
	b.WriteByte('\n')

	writeBody(&b, title, text)
	return b.String()
}

func formatStatus(title, text string) string {
	var b strings.Builder
	b.WriteString(statusHeader)
	b.WriteByte('\n')
	writeBody(&b, title, text)
	return b.String()
}

func writeBody(b *strings.Builder, title, text string) {
	b.WriteString(separator)
	b.WriteByte('\n')
	b.WriteString(truncateRunes(text, maxAlertBodyRunes))
	b.WriteByte('\n')
	b.WriteString("— 📡 ")
	b.WriteString(title)
}

func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}
