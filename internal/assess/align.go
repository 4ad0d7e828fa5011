package assess

import (
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/MrWong99/elocution/pkg/types"
)

// WordPair is one reference word and the recognized word at the same index.
type WordPair struct {
	Index      int
	Reference  string
	Recognized string

	// Missing is true when the transcript had no word at Index. A missing
	// word earns zero similarity and zero confidence.
	Missing bool
}

// Align pairs reference and recognized words strictly by position. The
// result always has len(reference) entries: trailing reference words without
// a counterpart are marked Missing, and surplus recognized words are dropped.
//
// A single inserted or deleted word shifts every later pair. That is the
// intended behaviour; [WordErrorRate] is reported alongside for callers that
// want an insertion-aware measure.
func Align(reference, recognized []string) []WordPair {
	pairs := make([]WordPair, len(reference))
	for i, ref := range reference {
		pairs[i] = WordPair{Index: i, Reference: ref}
		if i < len(recognized) {
			pairs[i].Recognized = recognized[i]
		} else {
			pairs[i].Missing = true
		}
	}
	return pairs
}

// Tokenize normalises text to NFC and splits it on whitespace. Invalid UTF-8
// sequences become U+FFFD first, so words serialise and quote identically.
func Tokenize(text string) []string {
	return strings.Fields(norm.NFC.String(strings.ToValidUTF8(text, "\uFFFD")))
}

// NewReference builds a [types.ReferenceUtterance]. It returns
// [ErrInvalidInput] when text contains no words.
func NewReference(text, languageCode string) (types.ReferenceUtterance, error) {
	words := Tokenize(text)
	if len(words) == 0 {
		return types.ReferenceUtterance{}, invalidInput("reference text has no words")
	}
	return types.ReferenceUtterance{
		Text:         text,
		LanguageCode: languageCode,
		Words:        words,
	}, nil
}

// NewRecognized builds a [types.RecognizedUtterance] from the ASR transcript.
// Confidence values are clamped to [0, 1]; words without a reported value get
// defaultConfidence. Extra confidence values beyond the word count are ignored.
func NewRecognized(text string, confidence []float64, defaultConfidence float64) types.RecognizedUtterance {
	words := Tokenize(text)
	conf := make([]float64, len(words))
	var sum float64
	for i := range words {
		c := defaultConfidence
		if i < len(confidence) {
			c = clamp01(confidence[i])
		}
		conf[i] = c
		sum += c
	}
	var overall float64
	if len(words) > 0 {
		overall = sum / float64(len(words))
	}
	return types.RecognizedUtterance{
		Text:              text,
		Words:             words,
		WordConfidence:    conf,
		OverallConfidence: overall,
	}
}
