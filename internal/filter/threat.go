package filter

import "strings"

type ThreatKind int

const (
	Ballistic ThreatKind = iota
	Hypersonic
	CruiseMissile
	GuidedBomb
	Missile
	Shahed
	ReconDrone
	Aircraft
	AllClear
	Other
)

// AllThreatKinds lists every kind in classifier table order.
var AllThreatKinds = []ThreatKind{
	AllClear, Hypersonic, Ballistic, CruiseMissile, GuidedBomb,
	Shahed, ReconDrone, Aircraft, Missile, Other,
}

func (k ThreatKind) Icon() string {
	switch k {
	case Ballistic:
		return "‼️🚀"
	case Hypersonic:
		return "‼️⚡"
	case CruiseMissile, Missile:
		return "🚀"
	case GuidedBomb:
		return "💣"
	case Shahed:
		return "🔺"
	case ReconDrone:
		return "🛸"
	case Aircraft:
		return "✈️"
	case AllClear:
		return "✅"
	default:
		return "⚠️"
	}
}

func (k ThreatKind) Label() string {
	switch k {
	case Ballistic:
		return "Балістика"
	case Hypersonic:
		return "Гіперзвук"
	case CruiseMissile:
		return "Крилата ракета"
	case GuidedBomb:
		return "КАБ"
	case Missile:
		return "Ракета"
	case Shahed:
		return "Шахед / дрон"
	case ReconDrone:
		return "Розвідувальний БПЛА"
	case Aircraft:
		return "Авіація"
	case AllClear:
		return "Відбій загрози"
	default:
		return "Загроза"
	}
}

// Specificity ranks kinds when picking the one that represents a message.
func (k ThreatKind) Specificity() int {
	switch k {
	case AllClear:
		return 6
	case Hypersonic:
		return 5
	case Ballistic:
		return 4
	case CruiseMissile, GuidedBomb, Shahed:
		return 3
	case ReconDrone, Aircraft:
		return 2
	case Missile:
		return 1
	default:
		return 0
	}
}

// Name is the stable ASCII name used when talking to the verifier.
func (k ThreatKind) Name() string {
	switch k {
	case Ballistic:
		return "Ballistic"
	case Hypersonic:
		return "Hypersonic"
	case CruiseMissile:
		return "CruiseMissile"
	case GuidedBomb:
		return "GuidedBomb"
	case Missile:
		return "Missile"
	case Shahed:
		return "Shahed"
	case ReconDrone:
		return "ReconDrone"
	case Aircraft:
		return "Aircraft"
	case AllClear:
		return "AllClear"
	default:
		return "Other"
	}
}

func (k ThreatKind) String() string {
	return k.Name()
}

func (k ThreatKind) bit() uint16 {
	return 1 << uint(k)
}

// ParseThreatKind maps an interchange name back to a kind. Matching is
// case-insensitive and accepts snake_case aliases.
func ParseThreatKind(name string) (ThreatKind, bool) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "ballistic":
		return Ballistic, true
	case "hypersonic":
		return Hypersonic, true
	case "cruisemissile", "cruise_missile":
		return CruiseMissile, true
	case "guidedbomb", "guided_bomb", "kab":
		return GuidedBomb, true
	case "missile":
		return Missile, true
	case "shahed":
		return Shahed, true
	case "recondrone", "recon_drone":
		return ReconDrone, true
	case "aircraft":
		return Aircraft, true
	case "allclear", "all_clear":
		return AllClear, true
	case "other":
		return Other, true
	}
	return Other, false
}

// Primary returns the highest-specificity kind. Ties go to the earlier entry.
func Primary(threats []ThreatKind) (ThreatKind, bool) {
	if len(threats) == 0 {
		return Other, false
	}
	best := threats[0]
	for _, k := range threats[1:] {
		if k.Specificity() > best.Specificity() {
			best = k
		}
	}
	return best, true
}

func signature(threats []ThreatKind) uint16 {
	var sig uint16
	for _, k := range threats {
		sig |= k.bit()
	}
	return sig
}

// Proximity is how close a threat is to the configured location.
type Proximity int

const (
	ProximityNone Proximity = iota
	ProximityOblast
	ProximityCity
	ProximityDistrict
)

func (p Proximity) Tag() string {
	switch p {
	case ProximityDistrict:
		return "🔴 РАЙОН"
	case ProximityCity:
		return "🟠 МІСТО"
	case ProximityOblast:
		return "🟡 ОБЛАСТЬ"
	default:
		return ""
	}
}

func (p Proximity) String() string {
	switch p {
	case ProximityDistrict:
		return "district"
	case ProximityCity:
		return "city"
	case ProximityOblast:
		return "oblast"
	default:
		return "none"
	}
}

const nationwideTag = "🟣 ВСЯ УКРАЇНА"
