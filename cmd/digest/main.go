// Command digest runs the arXiv digest once: fetch, classify, post, exit.
// It prints the run status as JSON on stdout and exits 1 on failure.
package main

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"arxiv-digest/internal/app"
	"arxiv-digest/internal/config"
	"arxiv-digest/internal/observability/logging"
	"arxiv-digest/internal/usecase/digest"
)

func main() {
	os.Exit(run())
}

func run() int {
	cfg, err := config.Load(os.Getenv)
	if err != nil {
		logger := logging.NewLogger("info")
		logger.Error("failed to load configuration", slog.String("error", logging.SanitizeError(err)))
		writeStatus(digest.Status{Status: digest.StatusError, Error: logging.SanitizeError(err)})
		return 1
	}

	logger := logging.NewLogger(cfg.LogLevel)
	slog.SetDefault(logger)

	svc, err := app.BuildService(cfg, logger)
	if err != nil {
		logger.Error("failed to build digest service", slog.String("error", logging.SanitizeError(err)))
		writeStatus(digest.Status{Status: digest.StatusError, Error: logging.SanitizeError(err)})
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = logging.WithLogger(ctx, logger)

	status, err := digest.Invoke(ctx, svc)
	writeStatus(status)
	if err != nil {
		return 1
	}
	return 0
}

func writeStatus(status digest.Status) {
	enc := json.NewEncoder(os.Stdout)
	if err := enc.Encode(status); err != nil {
		slog.Error("failed to write status", slog.Any("error", err))
	}
}
