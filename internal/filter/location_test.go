package filter

import (
	"slices"
	"testing"
)

func TestParseLocationList(t *testing.T) {
	got := ParseLocationList(" Київ, ,КИЕВ ,васильків")
	want := []string{"київ", "киев", "васильків"}
	if !slices.Equal(got, want) {
		t.Errorf("ParseLocationList = %q, want %q", got, want)
	}
	if got := ParseLocationList(""); got != nil {
		t.Errorf("expected nil for empty list, got %q", got)
	}
}

func TestLocationConfig_Check(t *testing.T) {
	loc := kyivConfig().Location

	tests := []struct {
		text string
		want Proximity
	}{
		{"шахеди над шевченківським районом", ProximityDistrict},
		{"балістика на київ", ProximityCity},
		{"ракети на васильків", ProximityCity},
		{"загроза для київської області", ProximityCity},
		{"загроза для одеси", ProximityNone},
	}
	for _, tt := range tests {
		if got := loc.Check(tt.text); got != tt.want {
			t.Errorf("Check(%q) = %s, want %s", tt.text, got, tt.want)
		}
	}
}

func TestLocationConfig_Resolve(t *testing.T) {
	loc := kyivConfig().Location

	tests := []struct {
		name  string
		text  string
		title string
		want  Location
	}{
		{
			name: "city",
			text: "балістика на київ",
			want: Location{Proximity: ProximityCity},
		},
		{
			name: "city widened by oblast word",
			text: "київ та область",
			want: Location{Proximity: ProximityOblast},
		},
		{
			name: "city widened by oblast stem",
			text: "шахеди над київською областю",
			want: Location{Proximity: ProximityOblast},
		},
		{
			name: "district is never widened",
			text: "шевченківський район, київ/обл.",
			want: Location{Proximity: ProximityDistrict},
		},
		{
			name:  "title fallback",
			text:  "шахеди близько",
			title: "Київ Оперативний",
			want:  Location{Proximity: ProximityCity, FromTitle: true},
		},
		{
			name:  "other region blocks title fallback",
			text:  "шахеди на одесу",
			title: "Київ Оперативний",
			want:  Location{NonLocal: true},
		},
		{
			name:  "nationwide text still falls back to title",
			text:  "балістика по всій україні, загроза для одеси",
			title: "Київ Оперативний",
			want:  Location{Proximity: ProximityCity, Nationwide: true, NonLocal: true, FromTitle: true},
		},
		{
			name: "nationwide naming another region defaults to oblast",
			text: "балістика по всій україні, загроза для одеси",
			want: Location{Proximity: ProximityOblast, Nationwide: true, NonLocal: true},
		},
		{
			name: "nationwide without location",
			text: "балістика по всій україні",
			want: Location{Proximity: ProximityOblast, Nationwide: true},
		},
		{
			name: "nationwide keeps local proximity",
			text: "балістика по всій україні, зокрема на київ",
			want: Location{Proximity: ProximityCity, Nationwide: true},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := loc.Resolve(tt.text, tt.title); got != tt.want {
				t.Errorf("Resolve(%q, %q) = %+v, want %+v", tt.text, tt.title, got, tt.want)
			}
		})
	}
}

func TestMatchStem_Phrase(t *testing.T) {
	tests := []struct {
		text string
		stem string
		want bool
	}{
		{"летить на київ.", "на київ", true},
		{"на київ", "на київ", true},
		{"на київщину", "на київ", false},
		{"на київщину, потім на київ!", "на київ", true},
		{"сна київ", "на київ", false},
		{"на київщину", "київ", true},
		{"", "київ", false},
		{"київ", "", false},
	}
	for _, tt := range tests {
		if got := matchStem(tt.text, tt.stem); got != tt.want {
			t.Errorf("matchStem(%q, %q) = %t, want %t", tt.text, tt.stem, got, tt.want)
		}
	}
}

func TestResolve_PhraseStemsRespectBoundaries(t *testing.T) {
	loc := LocationConfig{City: []string{"на київ"}}

	if got := loc.Check("шахеди на київщину"); got != ProximityNone {
		t.Errorf("expected no match inside a longer word, got %s", got)
	}
	if got := loc.Check("шахеди на київ"); got != ProximityCity {
		t.Errorf("expected city match, got %s", got)
	}
}
