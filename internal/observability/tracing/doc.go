// Package tracing provides OpenTelemetry tracing integration.
//
// Spans are created through the global tracer provider; without an SDK
// provider installed they are no-ops. The worker wraps its HTTP handlers
// with Middleware, and the digest service opens one span per pipeline stage.
//
//	ctx, span := tracing.StartSpan(ctx, "digest.run")
//	defer span.End()
package tracing
