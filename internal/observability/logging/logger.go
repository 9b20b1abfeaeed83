package logging

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
)

// ParseLevel maps a LOG_LEVEL value to a slog level.
// Supported levels: debug, info, warn, error. Anything else is info.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// NewLogger creates a new structured logger with JSON output on stdout.
func NewLogger(level string) *slog.Logger {
	return newJSONLogger(os.Stdout, level)
}

func newJSONLogger(w io.Writer, level string) *slog.Logger {
	logLevel := ParseLevel(level)

	handler := slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: logLevel,
		// Add source code location when debugging
		AddSource: logLevel <= slog.LevelDebug,
	})

	return slog.New(handler)
}

// WithRunID returns a logger that tags every entry with the digest run id.
func WithRunID(logger *slog.Logger, runID string) *slog.Logger {
	if runID == "" {
		return logger
	}
	return logger.With(slog.String("run_id", runID))
}

// FromContext retrieves the logger from the context, or returns the default logger if not found.
func FromContext(ctx context.Context) *slog.Logger {
	if logger, ok := ctx.Value(loggerContextKey).(*slog.Logger); ok {
		return logger
	}
	return slog.Default()
}

// WithLogger adds a logger to the context.
func WithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, loggerContextKey, logger)
}

type contextKey string

const loggerContextKey contextKey = "logger"
