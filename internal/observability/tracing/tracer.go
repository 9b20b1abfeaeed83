package tracing

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// InstrumentationName identifies spans created by this module.
const InstrumentationName = "arxiv-digest"

// GetTracer returns the tracer for creating spans.
// It resolves the global provider on every call so a provider installed
// after package init (for example in tests) is honoured.
//
//	ctx, span := tracing.GetTracer().Start(ctx, "digest.fetch")
//	defer span.End()
func GetTracer() trace.Tracer {
	return otel.Tracer(InstrumentationName)
}

// StartSpan starts a span named name on the module tracer.
func StartSpan(ctx context.Context, name string, opts ...trace.SpanStartOption) (context.Context, trace.Span) {
	return GetTracer().Start(ctx, name, opts...)
}

// RecordError marks span as failed with err. A nil err is ignored.
func RecordError(span trace.Span, err error) {
	if err == nil {
		return
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}
