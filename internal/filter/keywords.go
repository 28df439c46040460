package filter

type keywordGroup struct {
	kind  ThreatKind
	stems []string
}

// threatKeywords is scanned in order, most specific kind first.
// Stems cover Ukrainian, Russian and transliterated spellings.
var threatKeywords = []keywordGroup{
	{AllClear, []string{
		"відбій", "загроза минула", "чисте небо", "дорозвідка",
		"отбой", "угроза миновала", "чистое небо",
	}},
	{Hypersonic, []string{
		"гіперзвук", "циркон", "орєшнік",
		"гиперзвук", "орешник",
		"zircon", "tsirkon", "oreshnik",
	}},
	{Ballistic, []string{
		"балістик", "балістичн", "іскандер", "кінжал", "точка-у", "брсд", "міжконтинентальн",
		"баллистик", "баллістик", "искандер", "кинжал", "межконтинентальн",
		"iskander", "кедр", "kedr", "рс-26", "rs-26", "рубіж", "рубеж", "rubezh",
		"кн-23", "kn-23", "кн-25", "kn-25", "фатех", "fateh", "hwasong",
		"середньої дальності", "средней дальности",
	}},
	{CruiseMissile, []string{
		"крилат", "калібр", "крылат", "калибр",
		"х-101", "х-555", "х-22", "х-59", "х-69", "х-35", "х-31", "х-55",
		"x-101", "x-555", "x-22", "x-59", "x-69", "x-35", "x-31", "x-55",
		"томагавк", "tomahawk",
	}},
	{GuidedBomb, []string{
		"керован", "авіабомб", "авіаційн бомб", "плануюч",
		"управляем", "авиабомб", "планирующ",
		"каб-500", "каб-1500", "каб-250", "каб ", "каб,", "каб.", "каб\n",
		"умпб", "умпк", "jdam",
		"фаб-500", "фаб-1500", "фаб-250", "фаб-3000", "фаб ", "фаб,", "фаб.", "фаб\n",
	}},
	{Shahed, []string{
		"шахед", "shahed", "герань", "geran", "мопед", "газонокосил", "ударн", "бпла",
		"дрон-камікадзе", "дрон-камикадзе", "камікадзе", "камикадзе",
		"безпілотник", "беспилотник", "mohajer", "мохаджер",
		"дрон ", "дронів", "дронов", "махаон",
	}},
	{ReconDrone, []string{
		"розвідувальн", "разведывательн", "орлан", "zala", "supercam", "ланцет",
		"елерон", "элерон", "картограф", "фурія", "фурия",
	}},
	{Aircraft, []string{
		"авіаці", "стратегічн авіаці", "тактичн авіаці", "зліт",
		"авиаци", "стратегическ авиаци", "тактическ авиаци", "взлёт", "взлет",
		"ту-95", "ту-160", "ту-22", "міг-31", "міг-29", "миг-31", "миг-29",
		"су-57", "су-35", "су-34", "су-30", "су-25", "су-24",
		"а-50", "a-50", "іл-76", "ил-76",
	}},
	// Bare target words are left to the context window.
	{Missile, []string{
		"ракет", "запуск", "с-300", "s-300", "с-400", "s-400",
		"зенітн ракет", "зенитн ракет",
	}},
	{Other, []string{
		"загроз", "небезпек", "тривог", "обстріл", "вибух", "прильот", "влучанн", "уламк",
		"укриття", "укрытие", "пожеж", "руйнуванн", "зруйнов", "інфраструктур", "кассетн", "касетн",
		"угроз", "опасност", "тревог", "обстрел", "взрыв", "прилёт", "прилет", "попадани",
		"осколк", "пожар", "разрушени", "инфраструктур",
		"громко",
	}},
}

// urgencyKeywords mark a repeated or additional wave.
var urgencyKeywords = []string{
	"повторн", "додатково", "ще ціл", "ще вихо", "нові ціл", "нова хвил", "увага!", "терміново", "негайно",
	"дополнительно", "ещё", "еще", "ще выход", "новая волна", "внимание!", "срочно", "немедленно",
}

// nationwideKeywords require the country name so that "the whole oblast"
// phrasing is not mistaken for a countrywide alert.
var nationwideKeywords = []string{
	"по всій території україни", "всю територію україни", "всієї території україни",
	"по всій україні", "всій україні", "по всій країні",
	"по всей территории украины", "всю территорию украины", "всей территории украины",
	"по всей украине", "всей украине", "по всей стране",
}

// targetContextKeywords resolve a bare "target"/"launch" follow-up against
// recent history on the same source.
var targetContextKeywords = []keywordGroup{
	{Ballistic, []string{"балістик", "баллистик", "іскандер", "искандер", "кінжал", "кинжал"}},
	{CruiseMissile, []string{"крилат", "крылат", "калібр", "калибр", "х-101", "x-101"}},
	{Shahed, []string{"шахед", "shahed", "герань", "geran", "мопед", "дрон", "бпла"}},
}

var targetTriggerWords = map[string]bool{
	"ціль": true, "цілі": true, "цілей": true, "цілям": true,
	"цель": true, "цели": true, "целей": true, "целью": true,
}

var launchTriggerStems = []string{"вихід", "виход", "выход"}

// Combo heuristic vocabulary.
var (
	cruiseAbbrevSupport = []string{"курс", "ракет", "груп", "напрям", "вектор", "пуск"}

	airframeStems    = []string{"борт"}
	strategicStems   = []string{"стратег", "ту-95", "ту-160", "ту-22"}
	strategicTokens  = []string{"са", "ту"}
	airborneStems    = []string{"в повітр", "у повітр", "в воздух", "піднят", "поднят", "злетіл", "взлетел"}
	speedMarkerStems = []string{"швидкісн", "скоростн"}
)

// oblastWords widen a city-level hit when the message talks about the
// surrounding region.
var oblastWords = []string{"област", "обл."}

// otherRegionStems name major Ukrainian regions and cities. A message that
// names one of these and none of the configured places is explicitly
// about somewhere else.
var otherRegionStems = []string{
	"харків", "харьков", "одес", "одещин", "дніпр", "днепр", "запоріж", "запорож",
	"херсон", "миколаїв", "николаев", "сумщин", "сумськ", "сумск", "чернігів", "чернигов",
	"полтав", "черкас", "вінниц", "винниц", "житомир", "рівнен", "ровенск",
	"львів", "львов", "луцьк", "луцк", "волин", "тернопіл", "тернопол", "хмельниц",
	"івано-франк", "ивано-франк", "ужгород", "закарпат", "чернівц", "черновц",
	"кропивниц", "кіровоград", "кировоград", "донеч", "донецк", "краматорськ", "краматорск",
	"слов'янськ", "славянск", "ізюм", "изюм", "кривий ріг", "кривой рог", "криворіж",
	"павлоград", "кременчук", "кременчуг", "ізмаїл", "измаил", "кілія", "кілії", "килия",
	"київ", "києв", "киев", "київщин", "киевщин",
}

// recapMarkers appear in after-action summaries and statistics posts.
var recapMarkers = []string{
	"збито", "подавлено", "знешкоджено", "сбито", "уничтожено", "подавлены",
	"усього", "всього", "всего", "загалом", "итого",
	"зафіксовано", "зафиксировано",
	"станом на", "по состоянию на",
	"за попередніми даними", "по предварительным данным",
	"у ніч на", "в ніч на", "в ночь на",
}

// liveMovementMarkers describe an object in flight. They always mark a
// message as live, never as a recap.
var liveMovementMarkers = []string{
	"курсом", "курс на", "вектор", "у напрямку", "в напрямку", "в направлении",
	"летить", "летять", "летит", "летят", "рухається", "рухаються", "движется", "движутся",
	"залітає", "залетает", "на підльоті", "на подлете", "заходить", "заходит",
}

// negativeStatusPhrases report that a thread went quiet without an
// official all clear.
var negativeStatusPhrases = []string{
	"більше не спостерігається", "не спостерігається", "не спостерігаються",
	"не фіксується", "не фіксуються", "зник з радар", "зникли з радар",
	"поки чисто", "наразі чисто", "поки тихо",
	"больше не наблюдается", "не наблюдается", "не наблюдаются",
	"не фиксируется", "не фиксируются", "пропал с радар", "пропали с радар",
	"пока чисто", "пока тихо",
}

// negativeStatusWholeMessages are short posts that close a thread on their own.
var negativeStatusWholeMessages = map[string]bool{
	"все": true, "всё": true, "усе": true, "чисто": true,
}

// activeAlertMarkers veto a negative status reading.
var activeAlertMarkers = []string{
	"курсом", "курс на", "вектор", "запуск", "вихід", "виход", "выход",
	"увага", "внимание", "ще ", "ещё", "еще ",
}

// possibleRepeatMarkers soften launch wording into a cautionary status.
var possibleRepeatMarkers = []string{"можлив", "возможн", "ймовірн", "вероятн"}
