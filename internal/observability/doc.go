// Package observability groups the logging, metrics and tracing helpers used
// by the digest pipeline and the worker.
//
// Subpackages:
//   - logging: slog JSON logger, context propagation and secret masking
//   - metrics: Prometheus business metrics for digest runs
//   - tracing: OpenTelemetry tracer and HTTP middleware
package observability
