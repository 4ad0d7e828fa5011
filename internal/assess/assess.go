// Package assess implements the pronunciation assessment engine.
//
// Given a reference phrase and the transcript an ASR service produced for a
// learner's attempt, the [Engine] runs a single forward pass:
//
//  1. [Align] pairs reference and recognized words by position.
//  2. [Similarity] scores each pair by normalised edit distance.
//  3. [Analyzer] maps both words to approximate phoneme symbols via the
//     language's grapheme table and compares them with partial credit for
//     confusable sounds.
//  4. [Estimator] rates how hard each reference word is.
//  5. [Aggregate] combines the word results into overall, clarity, fluency
//     and pace scores.
//  6. The feedback stage derives suggestions, strengths, prioritised
//     improvement areas and a histogram of common sound confusions.
//
// The engine works purely on text and confidence values; there is no audio,
// timing or I/O involved. An Engine is immutable after [New] and safe for
// concurrent use without locking.
package assess

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/trace"

	"github.com/MrWong99/elocution/internal/lang"
	"github.com/MrWong99/elocution/internal/observe"
	"github.com/MrWong99/elocution/pkg/types"
)

// ErrInvalidInput is returned when the reference text has no words. It is
// the only error [Engine.Assess] produces; every other irregularity is
// reflected in the scores.
var ErrInvalidInput = errors.New("invalid input")

func invalidInput(reason string) error {
	return fmt.Errorf("assess: %w: %s", ErrInvalidInput, reason)
}

const (
	defaultLowConfidence     = 0.7
	defaultMissingConfidence = 0.5
	defaultCommonIssueLimit  = 5
	defaultImprovementLimit  = 10
	defaultBatchConcurrency  = 4
)

// Request is one assessment input.
type Request struct {
	// ReferenceText is the phrase the learner was asked to say. Required.
	ReferenceText string `json:"reference_text"`

	// LanguageCode selects the language tables. Unknown languages fall back
	// to per-character phoneme mapping.
	LanguageCode string `json:"language_code"`

	// RecognizedText is the ASR transcript. May be empty.
	RecognizedText string `json:"recognized_text"`

	// WordConfidence holds per-word ASR confidence, indexed like the
	// recognized words. Optional; absent values default to 0.5.
	WordConfidence []float64 `json:"word_confidence,omitempty"`
}

// Option is a functional option for configuring an [Engine].
type Option func(*Engine)

// WithMetrics records assessment metrics on m. When nil (the default) no
// metrics are recorded.
func WithMetrics(m *observe.Metrics) Option {
	return func(e *Engine) {
		e.metrics = m
	}
}

// WithLowConfidenceThreshold sets the confidence below which a correctly
// recognized word still earns a suggestion. Default: 0.7.
func WithLowConfidenceThreshold(threshold float64) Option {
	return func(e *Engine) {
		e.feedback.lowConfidence = threshold
	}
}

// WithDefaultConfidence sets the confidence assumed for recognized words the
// ASR reported no value for. Default: 0.5.
func WithDefaultConfidence(c float64) Option {
	return func(e *Engine) {
		e.defaultConfidence = clamp01(c)
	}
}

// WithCommonIssueLimit caps the common-issues histogram. Default: 5.
func WithCommonIssueLimit(n int) Option {
	return func(e *Engine) {
		e.feedback.commonIssueLimit = n
	}
}

// WithImprovementLimit caps the improvement-area list. Default: 10.
func WithImprovementLimit(n int) Option {
	return func(e *Engine) {
		e.feedback.improvementLimit = n
	}
}

// WithBatchConcurrency bounds how many requests [Engine.AssessBatch] scores
// at once. Default: 4.
func WithBatchConcurrency(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.batchConcurrency = n
		}
	}
}

// Engine is the pronunciation assessment engine. It holds only read-only
// language tables and settings.
type Engine struct {
	tables    *lang.Tables
	analyzer  *Analyzer
	estimator *Estimator
	feedback  feedbackGenerator
	metrics   *observe.Metrics

	defaultConfidence float64
	batchConcurrency  int
}

// New returns an [Engine] over tables. tables must not be nil.
func New(tables *lang.Tables, opts ...Option) (*Engine, error) {
	if tables == nil {
		return nil, errors.New("assess: language tables are required")
	}
	e := &Engine{
		tables:    tables,
		analyzer:  NewAnalyzer(tables),
		estimator: NewEstimator(tables),
		feedback: feedbackGenerator{
			lowConfidence:    defaultLowConfidence,
			commonIssueLimit: defaultCommonIssueLimit,
			improvementLimit: defaultImprovementLimit,
		},
		defaultConfidence: defaultMissingConfidence,
		batchConcurrency:  defaultBatchConcurrency,
	}
	for _, o := range opts {
		o(e)
	}
	if e.feedback.commonIssueLimit < 0 || e.feedback.improvementLimit < 0 {
		return nil, errors.New("assess: result limits must not be negative")
	}
	return e, nil
}

// Languages returns the language codes with dedicated tables.
func (e *Engine) Languages() []string {
	return e.tables.Codes()
}

// Tables returns the language tables the engine was built with.
func (e *Engine) Tables() *lang.Tables {
	return e.tables
}

// languageLabel maps a requested language code to the code of its table, or
// to [observe.LanguageUnknown]. Telemetry only ever sees these values.
func (e *Engine) languageLabel(code string) string {
	if l, ok := e.tables.Lookup(code); ok {
		return l.Code
	}
	return observe.LanguageUnknown
}

// Assess scores one utterance. It fails only with [ErrInvalidInput] when the
// reference text is empty. ctx carries tracing; the call never blocks.
func (e *Engine) Assess(ctx context.Context, req Request) (*types.UtteranceAssessment, error) {
	start := time.Now()
	label := e.languageLabel(req.LanguageCode)

	ctx, span := observe.StartSpan(ctx, "assess.Assess",
		trace.WithAttributes(observe.LanguageKey.String(label)),
	)
	defer span.End()

	ref, err := NewReference(req.ReferenceText, req.LanguageCode)
	if err != nil {
		observe.FailSpan(span, err)
		e.record(ctx, label, observe.StatusInvalidInput, start, 0)
		return nil, err
	}
	rec := NewRecognized(req.RecognizedText, req.WordConfidence, e.defaultConfidence)

	result := e.assess(ref, rec)

	span.SetAttributes(
		observe.ReferenceWordsKey.Int(len(ref.Words)),
		observe.RecognizedWordsKey.Int(len(rec.Words)),
		observe.OverallScoreKey.Float64(result.OverallScore),
	)
	e.record(ctx, label, observe.StatusOK, start, len(ref.Words))
	if e.metrics != nil {
		e.metrics.RecordScores(ctx, label, result.OverallScore, result.ClarityScore)
	}
	observe.Logger(ctx).Debug("utterance assessed",
		"language", result.LanguageCode,
		"reference_words", len(ref.Words),
		"recognized_words", len(rec.Words),
		"overall_score", result.OverallScore,
		"clarity_score", result.ClarityScore,
	)
	return result, nil
}

func (e *Engine) assess(ref types.ReferenceUtterance, rec types.RecognizedUtterance) *types.UtteranceAssessment {
	code := ref.LanguageCode
	pairs := Align(ref.Words, rec.Words)

	words := make([]types.WordAssessment, len(pairs))
	for i, p := range pairs {
		words[i] = e.assessWord(p, rec.WordConfidence, code)
	}

	scores := Aggregate(words, len(rec.Words))

	var exercises []string
	if l, ok := e.tables.Lookup(code); ok {
		exercises = l.Exercises
	}
	fb := e.feedback.generate(words, exercises)

	return &types.UtteranceAssessment{
		LanguageCode:        lang.PrimaryCode(code),
		ReferenceText:       ref.Text,
		RecognizedText:      rec.Text,
		OverallScore:        scores.Overall,
		FluencyScore:        scores.Fluency,
		PaceScore:           scores.Pace,
		PaceLabel:           scores.PaceLabel,
		ClarityScore:        scores.Clarity,
		OverallConfidence:   scores.OverallConfidence,
		WordErrorRate:       WordErrorRate(ref.Words, rec.Words),
		InsufficientData:    len(rec.Words) == 0,
		WordAssessments:     words,
		Suggestions:         fb.Suggestions,
		Strengths:           fb.Strengths,
		AreasForImprovement: fb.AreasForImprovement,
		CommonIssues:        fb.CommonIssues,
	}
}

func (e *Engine) assessWord(p WordPair, confidence []float64, code string) types.WordAssessment {
	wa := types.WordAssessment{
		ReferenceWord:  p.Reference,
		RecognizedWord: p.Recognized,
		PositionIndex:  p.Index,
		Difficulty:     e.estimator.Difficulty(p.Reference, code),
	}

	expected := e.analyzer.Symbols(p.Reference, code)
	heard := e.analyzer.Symbols(p.Recognized, code)
	wa.PhonemeAccuracy, wa.PhonemeIssues = e.analyzer.Compare(expected, heard)

	if !p.Missing {
		wa.ExactMatch = ExactMatch(p.Reference, p.Recognized)
		wa.Similarity = Similarity(p.Reference, p.Recognized)
		wa.Confidence = confidence[p.Index]
		wa.SoundsAlike = !wa.ExactMatch && e.analyzer.SoundsAlike(p.Reference, p.Recognized)
	}
	wa.Score = WordScore(wa.ExactMatch, wa.Similarity, wa.Confidence)
	return wa
}

func (e *Engine) record(ctx context.Context, language, status string, start time.Time, words int) {
	if e.metrics == nil {
		return
	}
	e.metrics.RecordAssessment(ctx, language, status, time.Since(start).Seconds(), words)
}
