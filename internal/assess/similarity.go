package assess

import (
	"math"

	"github.com/texttheater/golang-levenshtein/levenshtein"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

// unitCosts weighs insertion, deletion and substitution equally. The
// library's DefaultOptions charges 2 for a substitution, which is not the
// classic edit distance.
var unitCosts = levenshtein.Options{
	InsCost: 1,
	DelCost: 1,
	SubCost: 1,
	Matches: levenshtein.IdenticalRunes,
}

// normalizeWord returns the NFC, lower-cased form of w used for every
// comparison. A fresh Caser is needed per call; Casers are not safe for
// concurrent use.
func normalizeWord(w string) string {
	return cases.Lower(language.Und).String(norm.NFC.String(w))
}

// EditDistance returns the Levenshtein distance between a and b, counted in
// runes, ignoring case.
func EditDistance(a, b string) int {
	return levenshtein.DistanceForStrings(
		[]rune(normalizeWord(a)),
		[]rune(normalizeWord(b)),
		unitCosts,
	)
}

// Similarity returns 1 - EditDistance(a, b) / max(len(a), len(b)), in [0, 1].
// Two empty strings are identical (1.0); callers scoring a missing word must
// apply the zero-credit rule themselves.
func Similarity(a, b string) float64 {
	ra, rb := []rune(normalizeWord(a)), []rune(normalizeWord(b))
	longest := max(len(ra), len(rb))
	if longest == 0 {
		return 1.0
	}
	d := levenshtein.DistanceForStrings(ra, rb, unitCosts)
	return 1 - float64(d)/float64(longest)
}

// ExactMatch reports whether a and b are equal ignoring case.
func ExactMatch(a, b string) bool {
	return normalizeWord(a) == normalizeWord(b)
}

// WordErrorRate returns the word-level edit distance between reference and
// recognized divided by len(reference). Words are compared ignoring case.
// The result may exceed 1 when the transcript is much longer than the
// reference. An empty reference yields 0.
func WordErrorRate(reference, recognized []string) float64 {
	if len(reference) == 0 {
		return 0
	}
	// Intern every distinct word as a rune so the rune-based distance works
	// over word sequences.
	ids := make(map[string]rune, len(reference)+len(recognized))
	encode := func(words []string) []rune {
		out := make([]rune, len(words))
		for i, w := range words {
			key := normalizeWord(w)
			id, ok := ids[key]
			if !ok {
				id = rune(len(ids))
				ids[key] = id
			}
			out[i] = id
		}
		return out
	}
	ref, rec := encode(reference), encode(recognized)
	return float64(levenshtein.DistanceForStrings(ref, rec, unitCosts)) / float64(len(ref))
}

func clamp01(v float64) float64 {
	switch {
	case math.IsNaN(v), v < 0:
		return 0
	case v > 1:
		return 1
	}
	return v
}
