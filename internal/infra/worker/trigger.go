package worker

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"arxiv-digest/internal/observability/logging"
	"arxiv-digest/internal/usecase/digest"
)

// ErrRunInProgress is returned when a run is requested while another is active.
var ErrRunInProgress = errors.New("digest run already in progress")

// RunFunc performs one digest invocation.
type RunFunc func(ctx context.Context) (digest.Status, error)

// Trigger serialises digest runs from the cron schedule and the HTTP endpoint.
// A request that arrives while a run is active is refused, not queued.
type Trigger struct {
	mu      sync.Mutex
	run     RunFunc
	timeout time.Duration
	metrics *WorkerMetrics
	logger  *slog.Logger
}

// NewTrigger creates a Trigger that bounds each run by timeout.
func NewTrigger(run RunFunc, timeout time.Duration, metrics *WorkerMetrics, logger *slog.Logger) *Trigger {
	return &Trigger{
		run:     run,
		timeout: timeout,
		metrics: metrics,
		logger:  logger,
	}
}

// Timeout returns the per-run timeout.
func (t *Trigger) Timeout() time.Duration {
	return t.timeout
}

// Fire runs one digest unless another run is active, in which case it
// returns ErrRunInProgress immediately. source names the caller for logs.
func (t *Trigger) Fire(ctx context.Context, source string) (digest.Status, error) {
	if !t.mu.TryLock() {
		t.metrics.RecordJobRun(JobSkipped)
		t.logger.Warn("digest run refused, another run is active", slog.String("source", source))
		return digest.Status{}, ErrRunInProgress
	}
	defer t.mu.Unlock()

	start := time.Now()
	t.metrics.RecordJobRun(JobStarted)
	t.logger.Info("digest job started", slog.String("source", source))

	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()

	status, err := t.run(ctx)
	t.metrics.RecordJobDuration(time.Since(start).Seconds())
	if err != nil {
		t.metrics.RecordJobRun(JobFailure)
		t.logger.Error("digest job failed",
			slog.String("source", source),
			slog.String("error", logging.SanitizeError(err)))
		return status, err
	}

	t.metrics.RecordJobRun(JobSuccess)
	t.metrics.RecordPosts(status.Posted)
	t.metrics.RecordLastSuccess()
	t.logger.Info("digest job completed",
		slog.String("source", source),
		slog.String("run_id", status.RunID),
		slog.Int("posted", status.Posted),
		slog.Duration("duration", time.Since(start)))

	return status, nil
}
