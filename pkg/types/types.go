// Package types defines the shared records used across all Elocution packages.
//
// These types form the lingua franca between the assessment engine, the HTTP
// surface and the CLI. They are plain value records: every field is a
// primitive, a string, or a slice of records, so an [UtteranceAssessment]
// round-trips through JSON without loss.
package types

// ReferenceUtterance is the phrase the learner was expected to say.
type ReferenceUtterance struct {
	// Text is the reference phrase as supplied by the caller.
	Text string `json:"text"`

	// LanguageCode is a BCP 47 tag (e.g., "en", "es-MX"). Only the primary
	// language subtag is used for table lookup.
	LanguageCode string `json:"language_code"`

	// Words is Text split on whitespace. Never empty for a valid reference.
	Words []string `json:"words"`
}

// RecognizedUtterance is the transcript returned by the ASR collaborator.
type RecognizedUtterance struct {
	Text  string   `json:"text"`
	Words []string `json:"words"`

	// WordConfidence is indexed like Words. Values lie in [0, 1]; positions
	// the ASR did not report default to 0.5.
	WordConfidence []float64 `json:"word_confidence"`

	// OverallConfidence is the mean of WordConfidence.
	OverallConfidence float64 `json:"overall_confidence"`
}

// PhonemeSequence is the approximate sound-unit breakdown of a single word.
// It is derived from spelling, not from audio.
type PhonemeSequence struct {
	SourceWord string   `json:"source_word"`
	Symbols    []string `json:"symbols"`
}

// Severity grades a phoneme mismatch.
type Severity string

const (
	SeverityHigh   Severity = "high"
	SeverityMedium Severity = "medium"
)

// PhonemeIssue describes one symbol position whose similarity fell below 0.5.
type PhonemeIssue struct {
	Position    int      `json:"position"`
	Expected    string   `json:"expected"`
	Heard       string   `json:"heard"`
	Similarity  float64  `json:"similarity"`
	Severity    Severity `json:"severity"`
	Description string   `json:"description"`
}

// WordAssessment is the per-position comparison result. There is exactly one
// per reference word, in reference order.
type WordAssessment struct {
	ReferenceWord string `json:"reference_word"`

	// RecognizedWord is empty when the transcript had no word at this position.
	RecognizedWord string `json:"recognized_word"`

	PositionIndex   int     `json:"position_index"`
	ExactMatch      bool    `json:"exact_match"`
	Similarity      float64 `json:"similarity"`
	Confidence      float64 `json:"confidence"`
	PhonemeAccuracy float64 `json:"phoneme_accuracy"`
	Difficulty      float64 `json:"difficulty"`

	// Score is the composite word score: 1.0 on an exact match, otherwise the
	// mean of Similarity and Confidence.
	Score float64 `json:"score"`

	// SoundsAlike reports a non-exact recognized word whose phonetic key
	// matches the reference word (e.g., "their" for "there").
	SoundsAlike bool `json:"sounds_alike"`

	PhonemeIssues []PhonemeIssue `json:"phoneme_issues"`
}

// Suggestion is emitted for every word that was wrong or uncertain.
type Suggestion struct {
	Word              string   `json:"word"`
	Issue             string   `json:"issue"`
	Tip               string   `json:"tip"`
	PracticeExercises []string `json:"practice_exercises"`
}

// Strength is emitted for every word said correctly with confidence.
type Strength struct {
	Word       string  `json:"word"`
	Label      string  `json:"label"`
	Confidence float64 `json:"confidence"`
}

// Priority orders improvement areas.
type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// Rank returns a sort key where higher priorities rank first (lower value).
func (p Priority) Rank() int {
	switch p {
	case PriorityHigh:
		return 0
	case PriorityMedium:
		return 1
	case PriorityLow:
		return 2
	}
	return 3
}

// ImprovementArea flags a word the learner should practise.
type ImprovementArea struct {
	Word       string   `json:"word"`
	Difficulty float64  `json:"difficulty"`
	Priority   Priority `json:"priority"`
}

// IssueCount is one bucket of the common-confusion histogram.
type IssueCount struct {
	// Pattern is "expected -> heard".
	Pattern  string `json:"pattern"`
	Expected string `json:"expected"`
	Heard    string `json:"heard"`
	Count    int    `json:"count"`
}

// PaceLabel names the pace band an utterance fell into.
type PaceLabel string

const (
	PaceTooFast PaceLabel = "too_fast"
	PaceTooSlow PaceLabel = "too_slow"
	PaceGood    PaceLabel = "good"
)

// UtteranceAssessment is the final output of one assessment. All scores are
// on the 0..1 scale. Slices are never nil.
type UtteranceAssessment struct {
	LanguageCode   string `json:"language_code"`
	ReferenceText  string `json:"reference_text"`
	RecognizedText string `json:"recognized_text"`

	// OverallScore is the strict ratio of exactly matched reference words.
	OverallScore float64   `json:"overall_score"`
	FluencyScore float64   `json:"fluency_score"`
	PaceScore    float64   `json:"pace_score"`
	PaceLabel    PaceLabel `json:"pace_label"`

	// ClarityScore is the mean composite word score.
	ClarityScore      float64 `json:"clarity_score"`
	OverallConfidence float64 `json:"overall_confidence"`

	// WordErrorRate is the word-level edit distance between reference and
	// transcript divided by the reference word count. Informational only;
	// word assessments stay positionally aligned.
	WordErrorRate float64 `json:"word_error_rate"`

	// InsufficientData is set when the transcript contained no words at all.
	// Scores are still computed (and are zero-credit) rather than fabricated.
	InsufficientData bool `json:"insufficient_data"`

	WordAssessments     []WordAssessment  `json:"word_assessments"`
	Suggestions         []Suggestion      `json:"suggestions"`
	Strengths           []Strength        `json:"strengths"`
	AreasForImprovement []ImprovementArea `json:"areas_for_improvement"`
	CommonIssues        []IssueCount      `json:"common_issues"`
}
