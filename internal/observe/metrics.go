// Package observe provides application-wide observability primitives for
// Elocution: OpenTelemetry metrics, distributed tracing, structured logging,
// and HTTP middleware that ties them together.
//
// Metrics are recorded through the OpenTelemetry Metrics API. A Prometheus
// exporter bridge is installed by [InitProvider] so that metrics can be
// scraped via the standard /metrics endpoint. A package-level default
// [Metrics] instance ([DefaultMetrics]) is provided for convenience; tests
// should use [NewMetrics] with a custom [metric.MeterProvider] to avoid
// cross-test pollution.
package observe

import (
	"context"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// meterName is the instrumentation scope name used for all Elocution metrics.
const meterName = "github.com/MrWong99/elocution"

// Assessment status attribute values.
const (
	StatusOK           = "ok"
	StatusInvalidInput = "invalid_input"
	StatusError        = "error"
)

// LanguageUnknown is the language attribute for requests whose language has
// no table. It keeps the label set bounded by the configured languages.
const LanguageUnknown = "unknown"

// Metrics holds all OpenTelemetry metric instruments for the application.
// All fields are safe for concurrent use; the underlying OTel types handle
// their own synchronisation.
type Metrics struct {
	// AssessmentDuration tracks how long one utterance assessment takes.
	AssessmentDuration metric.Float64Histogram

	// Assessments counts assessment calls. Use with attributes:
	//   attribute.String("language", ...), attribute.String("status", ...)
	Assessments metric.Int64Counter

	// AssessedWords counts reference words scored. Use with attribute:
	//   attribute.String("language", ...)
	AssessedWords metric.Int64Counter

	// OverallScore records the strict accuracy score of each assessment.
	OverallScore metric.Float64Histogram

	// ClarityScore records the mean composite word score of each assessment.
	ClarityScore metric.Float64Histogram

	// ConfigReloads counts configuration hot reloads. Use with attribute:
	//   attribute.String("status", ...)
	ConfigReloads metric.Int64Counter

	// HTTPRequestDuration tracks HTTP request processing time. Use with attributes:
	//   attribute.String("method", ...), attribute.String("path", ...)
	HTTPRequestDuration metric.Float64Histogram
}

// assessmentBuckets (seconds). Assessments are CPU-only and finish in well
// under a millisecond for typical phrases.
var assessmentBuckets = []float64{
	0.00005, 0.0001, 0.00025, 0.0005, 0.001, 0.0025, 0.005, 0.01, 0.05, 0.1,
}

// scoreBuckets partitions the 0..1 score range.
var scoreBuckets = []float64{0.1, 0.2, 0.3, 0.4, 0.5, 0.6, 0.7, 0.8, 0.9, 1.0}

// NewMetrics creates a fully initialised [Metrics] struct using the given
// [metric.MeterProvider]. Returns an error if any instrument creation fails.
func NewMetrics(mp metric.MeterProvider) (*Metrics, error) {
	m := mp.Meter(meterName)
	var err error
	met := &Metrics{}

	if met.AssessmentDuration, err = m.Float64Histogram("elocution.assessment.duration",
		metric.WithDescription("Latency of a single pronunciation assessment."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(assessmentBuckets...),
	); err != nil {
		return nil, err
	}
	if met.OverallScore, err = m.Float64Histogram("elocution.assessment.overall_score",
		metric.WithDescription("Distribution of overall (exact match ratio) scores."),
		metric.WithExplicitBucketBoundaries(scoreBuckets...),
	); err != nil {
		return nil, err
	}
	if met.ClarityScore, err = m.Float64Histogram("elocution.assessment.clarity_score",
		metric.WithDescription("Distribution of clarity (mean word score) scores."),
		metric.WithExplicitBucketBoundaries(scoreBuckets...),
	); err != nil {
		return nil, err
	}

	if met.Assessments, err = m.Int64Counter("elocution.assessments",
		metric.WithDescription("Total assessments by language and status."),
	); err != nil {
		return nil, err
	}
	if met.AssessedWords, err = m.Int64Counter("elocution.assessed_words",
		metric.WithDescription("Total reference words assessed by language."),
	); err != nil {
		return nil, err
	}
	if met.ConfigReloads, err = m.Int64Counter("elocution.config.reloads",
		metric.WithDescription("Total configuration reloads by status."),
	); err != nil {
		return nil, err
	}

	if met.HTTPRequestDuration, err = m.Float64Histogram("elocution.http.request.duration",
		metric.WithDescription("HTTP request latency by method and path."),
		metric.WithUnit("s"),
	); err != nil {
		return nil, err
	}

	return met, nil
}

// defaultMetrics is the lazily-initialised package-level Metrics instance.
var (
	defaultMetrics     *Metrics
	defaultMetricsOnce sync.Once
)

// DefaultMetrics returns the package-level [Metrics] instance, creating it on
// first call using [otel.GetMeterProvider]. Subsequent calls return the same
// pointer. Panics if instrument creation fails (should not happen with the
// global provider).
func DefaultMetrics() *Metrics {
	defaultMetricsOnce.Do(func() {
		var err error
		defaultMetrics, err = NewMetrics(otel.GetMeterProvider())
		if err != nil {
			panic("observe: failed to create default metrics: " + err.Error())
		}
	})
	return defaultMetrics
}

// Attr is a convenience alias for [attribute.String] to reduce verbosity at
// call sites.
func Attr(key, value string) attribute.KeyValue {
	return attribute.String(key, value)
}

// RecordAssessment records the outcome of one assessment call. seconds is
// the wall time spent; words is the number of reference words scored (0 when
// the input was rejected).
func (m *Metrics) RecordAssessment(ctx context.Context, language, status string, seconds float64, words int) {
	attrs := metric.WithAttributes(Attr("language", language), Attr("status", status))
	m.Assessments.Add(ctx, 1, attrs)
	m.AssessmentDuration.Record(ctx, seconds, attrs)
	if words > 0 {
		m.AssessedWords.Add(ctx, int64(words), metric.WithAttributes(Attr("language", language)))
	}
}

// RecordScores records the headline scores of a successful assessment.
func (m *Metrics) RecordScores(ctx context.Context, language string, overall, clarity float64) {
	attrs := metric.WithAttributes(Attr("language", language))
	m.OverallScore.Record(ctx, overall, attrs)
	m.ClarityScore.Record(ctx, clarity, attrs)
}

// RecordConfigReload records a configuration reload attempt.
func (m *Metrics) RecordConfigReload(ctx context.Context, status string) {
	m.ConfigReloads.Add(ctx, 1, metric.WithAttributes(Attr("status", status)))
}
