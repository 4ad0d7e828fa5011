// Package lang holds the per-language lookup tables used by the assessment
// engine: grapheme-cluster to phoneme-symbol mappings, challenging clusters
// for difficulty estimation, practice drills, and the shared confusability
// table.
//
// A [Tables] value is built once (from [Default], optionally overlaid with
// configuration via [Tables.Merge]) and is read-only afterwards, so it can be
// shared freely between goroutines.
package lang

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"

	"golang.org/x/text/language"
)

// Grapheme maps one multi-letter spelling cluster to one or more approximate
// phoneme symbols.
type Grapheme struct {
	Cluster string   `yaml:"cluster" json:"cluster"`
	Symbols []string `yaml:"symbols" json:"symbols"`
}

// Language is the table set for one language.
type Language struct {
	// Code is the primary language subtag, lower-case (e.g., "en").
	Code string

	// Name is a human-readable label used in listings.
	Name string

	// Graphemes is checked in order; order determines symbol order.
	Graphemes []Grapheme

	// Challenges are clusters learners commonly struggle with. Each one
	// contained in a word raises its difficulty.
	Challenges []string

	// Exercises are short drills attached to suggestions.
	Exercises []string
}

// Tables is the immutable collection of language tables.
type Tables struct {
	languages   map[string]*Language
	confusables map[string]map[string]struct{}
}

// New builds a [Tables] from the given languages and confusable map. Inputs
// are copied; later mutation of the arguments does not affect the result.
func New(languages []Language, confusables map[string][]string) (*Tables, error) {
	t := &Tables{
		languages:   make(map[string]*Language, len(languages)),
		confusables: make(map[string]map[string]struct{}, len(confusables)),
	}
	var errs []error
	for i, l := range languages {
		code := strings.ToLower(strings.TrimSpace(l.Code))
		if code == "" {
			errs = append(errs, fmt.Errorf("languages[%d]: code is required", i))
			continue
		}
		if _, dup := t.languages[code]; dup {
			errs = append(errs, fmt.Errorf("languages[%d]: duplicate code %q", i, code))
			continue
		}
		for j, g := range l.Graphemes {
			if g.Cluster == "" || len(g.Symbols) == 0 {
				errs = append(errs, fmt.Errorf("languages[%d].graphemes[%d]: cluster and symbols are required", i, j))
			}
		}
		t.languages[code] = cloneLanguage(l, code)
	}
	for sym, similar := range confusables {
		set := make(map[string]struct{}, len(similar))
		for _, s := range similar {
			set[s] = struct{}{}
		}
		t.confusables[sym] = set
	}
	if err := errors.Join(errs...); err != nil {
		return nil, fmt.Errorf("lang: %w", err)
	}
	return t, nil
}

// Lookup returns the tables for code. code may be any BCP 47 tag; only its
// primary language subtag is considered ("en-GB" resolves to "en"). ok is
// false for unknown languages.
func (t *Tables) Lookup(code string) (*Language, bool) {
	l, ok := t.languages[PrimaryCode(code)]
	return l, ok
}

// Codes returns the configured language codes in sorted order.
func (t *Tables) Codes() []string {
	return slices.Sorted(maps.Keys(t.languages))
}

// Confusable reports whether a and b are listed as acoustically similar in
// either direction.
func (t *Tables) Confusable(a, b string) bool {
	if set, ok := t.confusables[a]; ok {
		if _, hit := set[b]; hit {
			return true
		}
	}
	if set, ok := t.confusables[b]; ok {
		if _, hit := set[a]; hit {
			return true
		}
	}
	return false
}

// Merge returns a new [Tables] in which every language in overrides replaces
// the same-coded language of t (or is added), and every confusable entry in
// confusables replaces the entry for that symbol. t is left unchanged.
func (t *Tables) Merge(overrides []Language, confusables map[string][]string) (*Tables, error) {
	byCode := make(map[string]Language, len(t.languages)+len(overrides))
	for code, l := range t.languages {
		byCode[code] = *l
	}
	for _, o := range overrides {
		code := strings.ToLower(strings.TrimSpace(o.Code))
		base, exists := byCode[code]
		if exists {
			if o.Name == "" {
				o.Name = base.Name
			}
			if o.Graphemes == nil {
				o.Graphemes = base.Graphemes
			}
			if o.Challenges == nil {
				o.Challenges = base.Challenges
			}
			if o.Exercises == nil {
				o.Exercises = base.Exercises
			}
		}
		o.Code = code
		byCode[code] = o
	}

	conf := make(map[string][]string, len(t.confusables)+len(confusables))
	for sym, set := range t.confusables {
		conf[sym] = slices.Sorted(maps.Keys(set))
	}
	maps.Copy(conf, confusables)

	langs := make([]Language, 0, len(byCode))
	for _, code := range slices.Sorted(maps.Keys(byCode)) {
		langs = append(langs, byCode[code])
	}
	return New(langs, conf)
}

// PrimaryCode reduces a BCP 47 tag to its lower-case primary language subtag.
// Unparseable input falls back to the lower-cased text before the first '-'
// or '_'.
func PrimaryCode(code string) string {
	code = strings.TrimSpace(code)
	if code == "" {
		return ""
	}
	if tag, err := language.Parse(code); err == nil {
		base, _ := tag.Base()
		return base.String()
	}
	code = strings.ToLower(code)
	if i := strings.IndexAny(code, "-_"); i >= 0 {
		code = code[:i]
	}
	return code
}

func cloneLanguage(l Language, code string) *Language {
	c := &Language{
		Code:       code,
		Name:       l.Name,
		Graphemes:  make([]Grapheme, len(l.Graphemes)),
		Challenges: slices.Clone(l.Challenges),
		Exercises:  slices.Clone(l.Exercises),
	}
	for i, g := range l.Graphemes {
		c.Graphemes[i] = Grapheme{Cluster: strings.ToLower(g.Cluster), Symbols: slices.Clone(g.Symbols)}
	}
	if c.Name == "" {
		c.Name = code
	}
	return c
}
