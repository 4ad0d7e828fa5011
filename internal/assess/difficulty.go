package assess

import (
	"strings"
	"unicode/utf8"

	"github.com/MrWong99/elocution/internal/lang"
)

const (
	baseDifficulty   = 0.3
	longWordBonus    = 0.2 // more than longWordLength runes
	mediumWordBonus  = 0.1 // more than mediumWordLength runes
	challengeBonus   = 0.2 // per challenging cluster present
	longWordLength   = 8
	mediumWordLength = 5
)

// Estimator scores the inherent difficulty of reference words.
type Estimator struct {
	tables *lang.Tables
}

// NewEstimator returns an [Estimator] backed by tables.
func NewEstimator(tables *lang.Tables) *Estimator {
	return &Estimator{tables: tables}
}

// Difficulty returns a score in [0, 1] combining word length with the number
// of the language's challenging clusters the word contains. Unknown
// languages are scored on length alone.
func (e *Estimator) Difficulty(word, languageCode string) float64 {
	w := normalizeWord(word)
	d := baseDifficulty

	switch n := utf8.RuneCountInString(w); {
	case n > longWordLength:
		d += longWordBonus
	case n > mediumWordLength:
		d += mediumWordBonus
	}

	if l, ok := e.tables.Lookup(languageCode); ok {
		for _, c := range l.Challenges {
			if c != "" && strings.Contains(w, strings.ToLower(c)) {
				d += challengeBonus
			}
		}
	}
	return clamp01(d)
}
