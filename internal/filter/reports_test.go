package filter

import (
	"strings"
	"testing"
)

func TestIsInformationalReport(t *testing.T) {
	tests := []struct {
		name string
		text string
		want bool
	}{
		{"statistics post", statisticsPost, true},
		{"single marker", "збито 5 ракет\n- одна\n- друга\n- третя", false},
		{"two markers short", "збито 5 ракет, станом на ранок", false},
		{"two markers number heavy", "станом на 10:00 збито 307 з 345 цілей, 22 з 22 балістичних, 18 з 18 крилатих, 267 з 305 бпла", true},
		{"two markers many lines", "у ніч на 22 лютого\nзбито" + strings.Repeat("\nрядок", 10), true},
		{"live movement wins", "збито 5, станом на 10:00\n- 1\n- 2\n- 3\nще одна курсом на київ", false},
		{"plain alert", "балістика на київ", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsInformationalReport(strings.ToLower(tt.text)); got != tt.want {
				t.Errorf("IsInformationalReport = %t, want %t", got, tt.want)
			}
		})
	}
}

func TestIsNegativeUpdate(t *testing.T) {
	tests := []struct {
		text string
		want bool
	}{
		{"Все", true},
		{"Чисто!", true},
		{"поки чисто", true},
		{"Більше не спостерігається, пролунав вибух.", true},
		{"пока тихо", true},
		{"По балістиці поки чисто. Можливі повторні пуски.", true},
		{"поки чисто, можливі повторні виходи", true},
		{"поки чисто, повторні виходи", false},
		{"не спостерігається, курсом на київ", false},
		{"відбій, поки чисто", false},
		{"все буде добре", false},
		{"ще не фіксується", false},
		{"балістика на київ", false},
	}
	for _, tt := range tests {
		if got := IsNegativeUpdate(strings.ToLower(tt.text)); got != tt.want {
			t.Errorf("IsNegativeUpdate(%q) = %t, want %t", tt.text, got, tt.want)
		}
	}
}
