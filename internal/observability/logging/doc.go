// Package logging provides structured logging utilities with context propagation.
//
// This package wraps the standard library's log/slog package with helper functions
// for common logging patterns used throughout the application.
//
// Example usage:
//
//	import "arxiv-digest/internal/observability/logging"
//
//	func main() {
//	    logger := logging.NewLogger("info")
//	    slog.SetDefault(logger)
//	}
//
//	func run(ctx context.Context) {
//	    ctx = logging.WithLogger(ctx, logging.WithRunID(slog.Default(), runID))
//	    logging.FromContext(ctx).Info("run started")
//	}
package logging
