package observe

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/MrWong99/elocution"

// Span attributes set on assessment spans.
const (
	LanguageKey        = attribute.Key("language")
	ReferenceWordsKey  = attribute.Key("reference_words")
	RecognizedWordsKey = attribute.Key("recognized_words")
	OverallScoreKey    = attribute.Key("overall_score")
)

// StartSpan starts a span on the Elocution tracer of the global provider.
// The caller must end the returned span.
func StartSpan(ctx context.Context, name string, opts ...trace.SpanStartOption) (context.Context, trace.Span) {
	return otel.Tracer(tracerName).Start(ctx, name, opts...)
}

// FailSpan marks span as failed with err.
func FailSpan(span trace.Span, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}

// CorrelationID returns the trace ID of the span in ctx, or "" without one.
// The same ID is sent to API clients in the X-Correlation-ID header and in
// error bodies, so a learner-facing failure can be found in the server logs.
func CorrelationID(ctx context.Context) string {
	sc := trace.SpanContextFromContext(ctx)
	if !sc.HasTraceID() {
		return ""
	}
	return sc.TraceID().String()
}

// Logger returns the default logger with correlation_id and span_id taken
// from the span in ctx. Without a span it is [slog.Default] unchanged.
func Logger(ctx context.Context) *slog.Logger {
	sc := trace.SpanContextFromContext(ctx)
	if !sc.HasTraceID() {
		return slog.Default()
	}
	return slog.Default().With(
		slog.String("correlation_id", sc.TraceID().String()),
		slog.String("span_id", sc.SpanID().String()),
	)
}
