package assess_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"slices"
	"strings"
	"testing"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/MrWong99/elocution/internal/assess"
	"github.com/MrWong99/elocution/internal/lang"
	"github.com/MrWong99/elocution/internal/observe"
	"github.com/MrWong99/elocution/pkg/types"
)

func newEngine(t *testing.T, opts ...assess.Option) *assess.Engine {
	t.Helper()
	e, err := assess.New(lang.Default(), opts...)
	if err != nil {
		t.Fatalf("assess.New: %v", err)
	}
	return e
}

func mustAssess(t *testing.T, e *assess.Engine, req assess.Request) *types.UtteranceAssessment {
	t.Helper()
	res, err := e.Assess(context.Background(), req)
	if err != nil {
		t.Fatalf("Assess(%+v): %v", req, err)
	}
	return res
}

func TestNew_RequiresTables(t *testing.T) {
	t.Parallel()

	if _, err := assess.New(nil); err == nil {
		t.Error("New(nil) returned no error")
	}
	if _, err := assess.New(lang.Default(), assess.WithCommonIssueLimit(-1)); err == nil {
		t.Error("New with negative limit returned no error")
	}
}

func TestAssess_PerfectMatch(t *testing.T) {
	t.Parallel()

	e := newEngine(t)
	res := mustAssess(t, e, assess.Request{
		ReferenceText:  "Hello how are you today",
		LanguageCode:   "en",
		RecognizedText: "Hello how are you today",
		WordConfidence: []float64{1, 1, 1, 1, 1},
	})

	if res.OverallScore != 1 {
		t.Errorf("OverallScore = %v, want 1", res.OverallScore)
	}
	if res.ClarityScore != 1 {
		t.Errorf("ClarityScore = %v, want 1", res.ClarityScore)
	}
	if res.PaceLabel != types.PaceGood || res.PaceScore != 0.9 {
		t.Errorf("pace = (%v, %q), want (0.9, good)", res.PaceScore, res.PaceLabel)
	}
	if !approx(res.FluencyScore, 0.925) {
		t.Errorf("FluencyScore = %v, want 0.925", res.FluencyScore)
	}
	if res.WordErrorRate != 0 || res.InsufficientData {
		t.Errorf("WER = %v, InsufficientData = %v; want 0, false", res.WordErrorRate, res.InsufficientData)
	}
	for _, w := range res.WordAssessments {
		if !w.ExactMatch || w.Similarity != 1 || w.PhonemeAccuracy != 1 || len(w.PhonemeIssues) != 0 {
			t.Errorf("word %+v, want an exact, fully accurate match", w)
		}
	}
	if len(res.Strengths) != 5 || len(res.Suggestions) != 0 || len(res.AreasForImprovement) != 0 || len(res.CommonIssues) != 0 {
		t.Errorf("feedback = %d strengths, %d suggestions, %d areas, %d issues; want 5/0/0/0",
			len(res.Strengths), len(res.Suggestions), len(res.AreasForImprovement), len(res.CommonIssues))
	}
	for _, s := range res.Strengths {
		if s.Label != "excellent" {
			t.Errorf("strength %q label = %q, want excellent", s.Word, s.Label)
		}
	}
}

func TestAssess_SingleSubstitution(t *testing.T) {
	t.Parallel()

	e := newEngine(t)
	res := mustAssess(t, e, assess.Request{ReferenceText: "cat", LanguageCode: "en", RecognizedText: "bat"})

	w := res.WordAssessments[0]
	if w.ExactMatch {
		t.Error("cat/bat ExactMatch = true")
	}
	if !approx(w.Similarity, 1-1.0/3) {
		t.Errorf("Similarity = %v, want %v", w.Similarity, 1-1.0/3)
	}
	if w.Confidence != 0.5 {
		t.Errorf("Confidence = %v, want default 0.5", w.Confidence)
	}
	if !approx(w.Score, (1-1.0/3+0.5)/2) {
		t.Errorf("Score = %v, want %v", w.Score, (1-1.0/3+0.5)/2)
	}
	if res.OverallScore != 0 {
		t.Errorf("OverallScore = %v, want 0", res.OverallScore)
	}
	if len(res.Suggestions) != 1 || res.Suggestions[0].Issue != "Incorrect pronunciation" {
		t.Fatalf("suggestions = %+v, want one incorrect-pronunciation suggestion", res.Suggestions)
	}
	if !strings.Contains(res.Suggestions[0].Tip, `"c"`) {
		t.Errorf("tip = %q, want it to mention the c sound", res.Suggestions[0].Tip)
	}
	if len(res.Suggestions[0].PracticeExercises) == 0 {
		t.Error("suggestion has no English practice exercises")
	}
	if len(res.CommonIssues) != 1 || res.CommonIssues[0].Pattern != "c -> b" {
		t.Errorf("common issues = %+v, want [c -> b]", res.CommonIssues)
	}
	if len(res.AreasForImprovement) != 1 || res.AreasForImprovement[0].Priority != types.PriorityMedium {
		t.Errorf("areas = %+v, want one medium-priority area", res.AreasForImprovement)
	}
}

func TestAssess_EmptyRecognition(t *testing.T) {
	t.Parallel()

	e := newEngine(t)
	res := mustAssess(t, e, assess.Request{ReferenceText: "one two three", LanguageCode: "en", RecognizedText: ""})

	if !res.InsufficientData {
		t.Error("InsufficientData = false, want true")
	}
	if res.OverallScore != 0 {
		t.Errorf("OverallScore = %v, want 0", res.OverallScore)
	}
	for _, w := range res.WordAssessments {
		if w.ExactMatch || w.Similarity != 0 || w.Confidence != 0 || w.RecognizedWord != "" {
			t.Errorf("word %+v, want zero credit", w)
		}
	}
	if res.PaceLabel != types.PaceTooSlow {
		t.Errorf("PaceLabel = %q, want too_slow", res.PaceLabel)
	}
	if !approx(res.FluencyScore, 0.85) {
		t.Errorf("FluencyScore = %v, want 0.85", res.FluencyScore)
	}
	for _, a := range res.AreasForImprovement {
		if a.Priority != types.PriorityHigh {
			t.Errorf("area %+v, want high priority", a)
		}
	}
	if res.WordErrorRate != 1 {
		t.Errorf("WordErrorRate = %v, want 1", res.WordErrorRate)
	}
}

func TestAssess_ShapeInvariant(t *testing.T) {
	t.Parallel()

	e := newEngine(t)
	ref := "the quick brown fox"
	for _, rec := range []string{"", "the", "the quick brown fox", "the quick brown fox jumps over it"} {
		res := mustAssess(t, e, assess.Request{ReferenceText: ref, LanguageCode: "en", RecognizedText: rec})
		if len(res.WordAssessments) != 4 {
			t.Errorf("recognized %q: %d word assessments, want 4", rec, len(res.WordAssessments))
		}
		for i, w := range res.WordAssessments {
			if w.PositionIndex != i {
				t.Errorf("recognized %q: word %d has PositionIndex %d", rec, i, w.PositionIndex)
			}
		}
	}
}

func TestAssess_InvalidInput(t *testing.T) {
	t.Parallel()

	e := newEngine(t)
	for _, ref := range []string{"", "   ", "\t\n"} {
		_, err := e.Assess(context.Background(), assess.Request{ReferenceText: ref, RecognizedText: "hello"})
		if !errors.Is(err, assess.ErrInvalidInput) {
			t.Errorf("Assess(reference=%q) error = %v, want ErrInvalidInput", ref, err)
		}
	}
}

func TestAssess_LowConfidenceCorrectWord(t *testing.T) {
	t.Parallel()

	e := newEngine(t)
	res := mustAssess(t, e, assess.Request{
		ReferenceText:  "hello world",
		LanguageCode:   "en",
		RecognizedText: "hello world",
		WordConfidence: []float64{0.6, 0.95},
	})

	if len(res.Suggestions) != 1 || res.Suggestions[0].Word != "hello" || res.Suggestions[0].Issue != "Low confidence" {
		t.Errorf("suggestions = %+v, want one low-confidence suggestion for hello", res.Suggestions)
	}
	if len(res.Strengths) != 1 || res.Strengths[0].Word != "world" || res.Strengths[0].Label != "excellent" {
		t.Errorf("strengths = %+v, want world/excellent", res.Strengths)
	}
	// Exact matches still count toward the strict score.
	if res.OverallScore != 1 {
		t.Errorf("OverallScore = %v, want 1", res.OverallScore)
	}
}

func TestAssess_Options(t *testing.T) {
	t.Parallel()

	e := newEngine(t,
		assess.WithLowConfidenceThreshold(0.5),
		assess.WithDefaultConfidence(0.9),
		assess.WithImprovementLimit(1),
	)
	res := mustAssess(t, e, assess.Request{ReferenceText: "red green blue", LanguageCode: "en", RecognizedText: "red grin bloo"})

	if res.WordAssessments[0].Confidence != 0.9 {
		t.Errorf("default confidence = %v, want 0.9", res.WordAssessments[0].Confidence)
	}
	if len(res.Strengths) != 1 {
		t.Errorf("strengths = %+v, want red as a strength", res.Strengths)
	}
	if len(res.AreasForImprovement) != 1 {
		t.Errorf("got %d areas, want 1 with limit 1", len(res.AreasForImprovement))
	}
}

func TestAssess_SoundsAlike(t *testing.T) {
	t.Parallel()

	e := newEngine(t)
	res := mustAssess(t, e, assess.Request{ReferenceText: "a knight", LanguageCode: "en", RecognizedText: "a night"})
	if !res.WordAssessments[1].SoundsAlike {
		t.Error("knight/night SoundsAlike = false, want true")
	}
	if res.WordAssessments[0].SoundsAlike {
		t.Error("exact match flagged SoundsAlike")
	}
}

func TestAssess_UnknownLanguageFallsBack(t *testing.T) {
	t.Parallel()

	e := newEngine(t)
	res := mustAssess(t, e, assess.Request{ReferenceText: "kia ora", LanguageCode: "mi", RecognizedText: "kia ora"})
	if res.OverallScore != 1 {
		t.Errorf("OverallScore = %v, want 1", res.OverallScore)
	}
	if res.LanguageCode != "mi" {
		t.Errorf("LanguageCode = %q, want mi", res.LanguageCode)
	}
}

func TestAssess_JSONRoundTrip(t *testing.T) {
	t.Parallel()

	e := newEngine(t)
	res := mustAssess(t, e, assess.Request{
		ReferenceText:  "the weather is lovely",
		LanguageCode:   "en-GB",
		RecognizedText: "the wether was lovely today",
		WordConfidence: []float64{0.99, 0.4, 0.65},
	})

	data, err := json.Marshal(res)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	var back types.UtteranceAssessment
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if !reflect.DeepEqual(*res, back) {
		t.Errorf("round trip mismatch:\n got %+v\nwant %+v", back, *res)
	}
	if !strings.Contains(string(data), `"strengths":[`) {
		t.Errorf("empty slices must serialise as arrays: %s", data)
	}
}

func newMetrics(t *testing.T) (*observe.Metrics, *sdkmetric.ManualReader) {
	t.Helper()
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = mp.Shutdown(context.Background()) })
	m, err := observe.NewMetrics(mp)
	if err != nil {
		t.Fatalf("NewMetrics: %v", err)
	}
	return m, reader
}

func TestAssess_RecordsMetrics(t *testing.T) {
	t.Parallel()

	m, reader := newMetrics(t)
	e := newEngine(t, assess.WithMetrics(m))
	mustAssess(t, e, assess.Request{ReferenceText: "good morning", LanguageCode: "en", RecognizedText: "good morning"})
	_, _ = e.Assess(context.Background(), assess.Request{ReferenceText: "", LanguageCode: "en"})

	var rm metricdata.ResourceMetrics
	if err := reader.Collect(context.Background(), &rm); err != nil {
		t.Fatalf("Collect: %v", err)
	}
	statuses := map[string]int64{}
	var words int64
	for _, sm := range rm.ScopeMetrics {
		for _, met := range sm.Metrics {
			switch met.Name {
			case "elocution.assessments":
				for _, dp := range met.Data.(metricdata.Sum[int64]).DataPoints {
					status, _ := dp.Attributes.Value("status")
					statuses[status.AsString()] += dp.Value
				}
			case "elocution.assessed_words":
				for _, dp := range met.Data.(metricdata.Sum[int64]).DataPoints {
					words += dp.Value
				}
			}
		}
	}
	if statuses[observe.StatusOK] != 1 || statuses[observe.StatusInvalidInput] != 1 {
		t.Errorf("assessment statuses = %v, want one ok and one invalid_input", statuses)
	}
	if words != 2 {
		t.Errorf("assessed words = %d, want 2", words)
	}
}

func TestAssessBatch(t *testing.T) {
	t.Parallel()

	e := newEngine(t, assess.WithBatchConcurrency(2))
	reqs := []assess.Request{
		{ReferenceText: "one", LanguageCode: "en", RecognizedText: "one"},
		{ReferenceText: "", LanguageCode: "en", RecognizedText: "two"},
		{ReferenceText: "three four", LanguageCode: "en", RecognizedText: "tree for"},
	}
	results, err := e.AssessBatch(context.Background(), reqs)
	if err != nil {
		t.Fatalf("AssessBatch: %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("got %d results, want 3", len(results))
	}
	for i, r := range results {
		if r.Index != i {
			t.Errorf("result %d has Index %d", i, r.Index)
		}
	}
	if results[0].Err != nil || results[0].Assessment.OverallScore != 1 {
		t.Errorf("result 0 = %+v, want a perfect score", results[0])
	}
	if !errors.Is(results[1].Err, assess.ErrInvalidInput) || results[1].Assessment != nil {
		t.Errorf("result 1 = %+v, want ErrInvalidInput", results[1])
	}
	if results[2].Err != nil || len(results[2].Assessment.WordAssessments) != 2 {
		t.Errorf("result 2 = %+v, want two word assessments", results[2])
	}
}

func TestAssessBatch_CancelledContext(t *testing.T) {
	t.Parallel()

	e := newEngine(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := e.AssessBatch(ctx, []assess.Request{{ReferenceText: "one", RecognizedText: "one"}})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("AssessBatch error = %v, want context.Canceled", err)
	}
}

func TestEngine_Languages(t *testing.T) {
	t.Parallel()

	e := newEngine(t)
	if got := e.Languages(); len(got) != 6 || got[0] != "de" {
		t.Errorf("Languages() = %v, want the six built-in languages sorted", got)
	}
}

func TestAssess_LanguageLabelsAreBounded(t *testing.T) {
	t.Parallel()

	m, reader := newMetrics(t)
	e := newEngine(t, assess.WithMetrics(m))
	for i := range 200 {
		mustAssess(t, e, assess.Request{
			ReferenceText:  "hello",
			LanguageCode:   fmt.Sprintf("junk%d!", i),
			RecognizedText: "hello",
		})
	}
	for _, code := range []string{"en", "EN", "en-GB"} {
		mustAssess(t, e, assess.Request{ReferenceText: "hello", LanguageCode: code, RecognizedText: "hello"})
	}

	var rm metricdata.ResourceMetrics
	if err := reader.Collect(context.Background(), &rm); err != nil {
		t.Fatalf("Collect: %v", err)
	}
	for _, sm := range rm.ScopeMetrics {
		for _, met := range sm.Metrics {
			if met.Name != "elocution.assessments" {
				continue
			}
			var labels []string
			for _, dp := range met.Data.(metricdata.Sum[int64]).DataPoints {
				v, _ := dp.Attributes.Value("language")
				labels = append(labels, v.AsString())
			}
			slices.Sort(labels)
			if want := []string{"en", observe.LanguageUnknown}; !slices.Equal(labels, want) {
				t.Errorf("language labels = %v, want %v", labels, want)
			}
			return
		}
	}
	t.Fatal("elocution.assessments not recorded")
}

// Not parallel: installs a global tracer provider.
func TestAssess_Span(t *testing.T) {
	exp := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exp))
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })
	orig := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	t.Cleanup(func() { otel.SetTracerProvider(orig) })

	e := newEngine(t)
	mustAssess(t, e, assess.Request{ReferenceText: "good morning", LanguageCode: "en-US", RecognizedText: "good evening"})
	_, _ = e.Assess(context.Background(), assess.Request{ReferenceText: " ", LanguageCode: "xx"})

	spans := exp.GetSpans()
	if len(spans) != 2 {
		t.Fatalf("recorded %d spans, want 2", len(spans))
	}

	ok := spans[0]
	if ok.Name != "assess.Assess" {
		t.Errorf("span name = %q, want assess.Assess", ok.Name)
	}
	attrs := map[string]any{}
	for _, kv := range ok.Attributes {
		attrs[string(kv.Key)] = kv.Value.AsInterface()
	}
	want := map[string]any{
		"language":         "en",
		"reference_words":  int64(2),
		"recognized_words": int64(2),
		"overall_score":    0.5,
	}
	for k, v := range want {
		if attrs[k] != v {
			t.Errorf("attribute %s = %v, want %v", k, attrs[k], v)
		}
	}

	failed := spans[1]
	if failed.Status.Code != codes.Error {
		t.Errorf("invalid input span status = %v, want Error", failed.Status.Code)
	}
	if len(failed.Events) == 0 || failed.Events[0].Name != "exception" {
		t.Errorf("invalid input span should record the error, events = %v", failed.Events)
	}
	for _, kv := range failed.Attributes {
		if kv.Key == observe.LanguageKey && kv.Value.AsString() != observe.LanguageUnknown {
			t.Errorf("unknown language labelled %q", kv.Value.AsString())
		}
	}
}

func TestAssess_InvalidUTF8(t *testing.T) {
	t.Parallel()

	e := newEngine(t)
	res := mustAssess(t, e, assess.Request{
		ReferenceText:  "caf\xff\xfe",
		LanguageCode:   "en",
		RecognizedText: "cab",
	})

	word := res.WordAssessments[0].ReferenceWord
	if word != "caf\uFFFD" {
		t.Errorf("reference word = %q, want invalid bytes replaced", word)
	}

	data, err := json.Marshal(res.WordAssessments[0])
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	var back types.WordAssessment
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if back.ReferenceWord != word {
		t.Errorf("reference word after JSON = %q, want %q", back.ReferenceWord, word)
	}
	for _, s := range res.Suggestions {
		if strings.Contains(s.Tip, `\x`) {
			t.Errorf("tip quotes raw bytes: %s", s.Tip)
		}
	}
}
