package lang

// builtinLanguages are the tables shipped with Elocution. Symbols loosely
// follow IPA so drills and feedback read naturally to learners.
var builtinLanguages = []Language{
	{
		Code: "en",
		Name: "English",
		Graphemes: []Grapheme{
			{Cluster: "th", Symbols: []string{"θ"}},
			{Cluster: "sh", Symbols: []string{"ʃ"}},
			{Cluster: "ch", Symbols: []string{"tʃ"}},
			{Cluster: "ph", Symbols: []string{"f"}},
			{Cluster: "ng", Symbols: []string{"ŋ"}},
			{Cluster: "wh", Symbols: []string{"w"}},
			{Cluster: "ck", Symbols: []string{"k"}},
			{Cluster: "ee", Symbols: []string{"iː"}},
			{Cluster: "oo", Symbols: []string{"uː"}},
			{Cluster: "ea", Symbols: []string{"iː"}},
			{Cluster: "ou", Symbols: []string{"aʊ"}},
			{Cluster: "igh", Symbols: []string{"aɪ"}},
			{Cluster: "tion", Symbols: []string{"ʃ", "ə", "n"}},
		},
		Challenges: []string{"th", "r", "ough", "str", "w", "v"},
		Exercises: []string{
			"Minimal pairs: think / sink, three / tree",
			"Say 'red lorry, yellow lorry' slowly, then faster",
			"Tongue twister: 'She sells seashells by the seashore'",
		},
	},
	{
		Code: "es",
		Name: "Spanish",
		Graphemes: []Grapheme{
			{Cluster: "ll", Symbols: []string{"ʝ"}},
			{Cluster: "rr", Symbols: []string{"r"}},
			{Cluster: "ch", Symbols: []string{"tʃ"}},
			{Cluster: "ñ", Symbols: []string{"ɲ"}},
			{Cluster: "qu", Symbols: []string{"k"}},
			{Cluster: "gu", Symbols: []string{"g"}},
			{Cluster: "ce", Symbols: []string{"θ", "e"}},
			{Cluster: "ci", Symbols: []string{"θ", "i"}},
		},
		Challenges: []string{"rr", "ñ", "ll", "j", "ue"},
		Exercises: []string{
			"Trill drill: 'erre con erre cigarro'",
			"Minimal pairs: pero / perro, caro / carro",
			"Repeat 'año, niño, mañana' keeping the ñ nasal",
		},
	},
	{
		Code: "fr",
		Name: "French",
		Graphemes: []Grapheme{
			{Cluster: "eau", Symbols: []string{"o"}},
			{Cluster: "ou", Symbols: []string{"u"}},
			{Cluster: "oi", Symbols: []string{"w", "a"}},
			{Cluster: "ch", Symbols: []string{"ʃ"}},
			{Cluster: "gn", Symbols: []string{"ɲ"}},
			{Cluster: "on", Symbols: []string{"ɔ̃"}},
			{Cluster: "an", Symbols: []string{"ɑ̃"}},
			{Cluster: "in", Symbols: []string{"ɛ̃"}},
			{Cluster: "eu", Symbols: []string{"ø"}},
		},
		Challenges: []string{"r", "eu", "u", "on", "an", "in"},
		Exercises: []string{
			"Minimal pairs: dessous / dessus, roue / rue",
			"Nasal vowels: 'un bon vin blanc'",
			"Gargle-free uvular r: 'rouge, rare, Paris'",
		},
	},
	{
		Code: "de",
		Name: "German",
		Graphemes: []Grapheme{
			{Cluster: "sch", Symbols: []string{"ʃ"}},
			{Cluster: "ch", Symbols: []string{"x"}},
			{Cluster: "ei", Symbols: []string{"aɪ"}},
			{Cluster: "ie", Symbols: []string{"iː"}},
			{Cluster: "eu", Symbols: []string{"ɔʏ"}},
			{Cluster: "äu", Symbols: []string{"ɔʏ"}},
			{Cluster: "pf", Symbols: []string{"p", "f"}},
			{Cluster: "ß", Symbols: []string{"s"}},
			{Cluster: "ü", Symbols: []string{"y"}},
			{Cluster: "ö", Symbols: []string{"ø"}},
		},
		Challenges: []string{"ch", "ü", "ö", "pf", "r", "zw"},
		Exercises: []string{
			"ich-Laut vs ach-Laut: 'ich, mich, Bach, Buch'",
			"Rounded front vowels: 'über, Tür, schön, Öl'",
			"Affricates: 'Pfeffer, Apfel, zwei, Zeit'",
		},
	},
	{
		Code: "it",
		Name: "Italian",
		Graphemes: []Grapheme{
			{Cluster: "gli", Symbols: []string{"ʎ"}},
			{Cluster: "gn", Symbols: []string{"ɲ"}},
			{Cluster: "sc", Symbols: []string{"ʃ"}},
			{Cluster: "ch", Symbols: []string{"k"}},
			{Cluster: "gh", Symbols: []string{"g"}},
			{Cluster: "zz", Symbols: []string{"ts"}},
		},
		Challenges: []string{"gli", "gn", "rr", "zz", "cc"},
		Exercises: []string{
			"Double consonants: 'pala / palla, caro / carro'",
			"Palatal lateral: 'figlio, famiglia, aglio'",
			"Repeat 'gnocchi, bagno, sogno'",
		},
	},
	{
		Code: "pt",
		Name: "Portuguese",
		Graphemes: []Grapheme{
			{Cluster: "lh", Symbols: []string{"ʎ"}},
			{Cluster: "nh", Symbols: []string{"ɲ"}},
			{Cluster: "ch", Symbols: []string{"ʃ"}},
			{Cluster: "ão", Symbols: []string{"ɐ̃w̃"}},
			{Cluster: "rr", Symbols: []string{"ʁ"}},
			{Cluster: "ç", Symbols: []string{"s"}},
		},
		Challenges: []string{"ão", "lh", "nh", "rr", "õe"},
		Exercises: []string{
			"Nasal diphthongs: 'pão, mão, não, cão'",
			"Palatals: 'filho, trabalho, vinho, banho'",
			"Minimal pairs: caro / carro, mala / malha",
		},
	},
}

// builtinConfusables lists single-character symbols that learners and ASR
// systems commonly swap. Lookups are symmetric, so each pair only needs to
// appear once.
var builtinConfusables = map[string][]string{
	"b": {"p", "v"},
	"d": {"t"},
	"g": {"k"},
	"f": {"v"},
	"s": {"z"},
	"r": {"l"},
	"m": {"n"},
	"w": {"v"},
	"e": {"i"},
	"o": {"u"},
	"a": {"e"},
	"θ": {"s", "t", "f"},
	"ʃ": {"s"},
	"y": {"u"},
	"ø": {"e"},
}

// Default returns the built-in tables.
func Default() *Tables {
	t, err := New(builtinLanguages, builtinConfusables)
	if err != nil {
		panic("lang: invalid builtin tables: " + err.Error())
	}
	return t
}
