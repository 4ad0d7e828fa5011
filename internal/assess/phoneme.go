package assess

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/antzucaro/matchr"

	"github.com/MrWong99/elocution/internal/lang"
	"github.com/MrWong99/elocution/pkg/types"
)

// Per-position symbol similarity credits.
const (
	symbolIdentical  = 1.0
	symbolConfusable = 0.7
	symbolSingleChar = 0.3
	symbolUnrelated  = 0.0

	// issueThreshold marks positions reported as issues.
	issueThreshold = 0.5
	// highSeverityThreshold splits high from medium severity issues.
	highSeverityThreshold = 0.3
)

// Analyzer approximates words as phoneme symbol sequences from spelling and
// compares sequences position by position. It is read-only after
// construction and safe for concurrent use.
type Analyzer struct {
	tables *lang.Tables
}

// NewAnalyzer returns an [Analyzer] backed by tables.
func NewAnalyzer(tables *lang.Tables) *Analyzer {
	return &Analyzer{tables: tables}
}

// Symbols converts word to a [types.PhonemeSequence] using the grapheme
// table of languageCode.
//
// Every configured cluster contained anywhere in the word contributes its
// symbols, in table order; clusters are not consumed left to right. When no
// cluster occurs in the word, or the language is unknown, each character
// becomes its own symbol.
func (a *Analyzer) Symbols(word, languageCode string) types.PhonemeSequence {
	w := normalizeWord(word)
	symbols := []string{}

	if l, ok := a.tables.Lookup(languageCode); ok {
		for _, g := range l.Graphemes {
			if strings.Contains(w, g.Cluster) {
				symbols = append(symbols, g.Symbols...)
			}
		}
	}
	if len(symbols) == 0 {
		for _, r := range w {
			symbols = append(symbols, string(r))
		}
	}
	return types.PhonemeSequence{SourceWord: word, Symbols: symbols}
}

// Compare scores heard against expected. The sequences are walked up to the
// longer length; a position missing from either side counts as "". The
// returned accuracy is the mean per-position similarity (1.0 when both are
// empty). issues is never nil.
func (a *Analyzer) Compare(expected, heard types.PhonemeSequence) (float64, []types.PhonemeIssue) {
	issues := []types.PhonemeIssue{}
	n := max(len(expected.Symbols), len(heard.Symbols))
	if n == 0 {
		return 1.0, issues
	}

	var total float64
	for i := range n {
		exp, got := at(expected.Symbols, i), at(heard.Symbols, i)
		sim := a.symbolSimilarity(exp, got)
		total += sim
		if sim >= issueThreshold {
			continue
		}
		sev := types.SeverityMedium
		if sim < highSeverityThreshold {
			sev = types.SeverityHigh
		}
		issues = append(issues, types.PhonemeIssue{
			Position:    i,
			Expected:    exp,
			Heard:       got,
			Similarity:  sim,
			Severity:    sev,
			Description: describeMismatch(exp, got),
		})
	}
	return total / float64(n), issues
}

// SoundsAlike reports whether a and b share a Double Metaphone key, i.e.
// they would likely be heard as the same word.
func (a *Analyzer) SoundsAlike(x, y string) bool {
	px, sx := matchr.DoubleMetaphone(normalizeWord(x))
	py, sy := matchr.DoubleMetaphone(normalizeWord(y))
	for _, cx := range []string{px, sx} {
		if cx == "" {
			continue
		}
		if cx == py || cx == sy {
			return true
		}
	}
	return false
}

func (a *Analyzer) symbolSimilarity(x, y string) float64 {
	if x == y {
		return symbolIdentical
	}
	if !singleChar(x) || !singleChar(y) {
		return symbolUnrelated
	}
	if a.tables.Confusable(x, y) {
		return symbolConfusable
	}
	return symbolSingleChar
}

func singleChar(s string) bool {
	return utf8.RuneCountInString(s) == 1
}

func at(s []string, i int) string {
	if i < len(s) {
		return s[i]
	}
	return ""
}

func describeMismatch(expected, heard string) string {
	switch {
	case heard == "":
		return fmt.Sprintf("expected %q but heard nothing", expected)
	case expected == "":
		return fmt.Sprintf("expected nothing but heard %q", heard)
	}
	return fmt.Sprintf("expected %q but heard %q", expected, heard)
}
