// Command worker runs the arXiv digest on a cron schedule. It also serves
// health probes, a POST /run trigger and Prometheus metrics.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/robfig/cron/v3"

	"arxiv-digest/internal/app"
	"arxiv-digest/internal/config"
	workerPkg "arxiv-digest/internal/infra/worker"
	"arxiv-digest/internal/observability/logging"
	"arxiv-digest/internal/usecase/digest"
)

func main() {
	os.Exit(run())
}

// run returns the process exit code so deferred cleanup runs before exit.
func run() int {
	cfg, err := config.Load(os.Getenv)
	if err != nil {
		logging.NewLogger("info").Error("failed to load configuration",
			slog.String("error", logging.SanitizeError(err)))
		return 1
	}

	logger := logging.NewLogger(cfg.LogLevel)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	workerMetrics := workerPkg.NewWorkerMetrics(prometheus.DefaultRegisterer)
	workerConfig := workerPkg.LoadConfig(os.Getenv, logger, workerMetrics)
	logger.Info("worker configuration loaded",
		slog.String("cron_schedule", workerConfig.CronSchedule),
		slog.String("timezone", workerConfig.Timezone),
		slog.Duration("run_timeout", workerConfig.RunTimeout),
		slog.Int("health_port", workerConfig.HealthPort),
		slog.Int("metrics_port", workerConfig.MetricsPort))

	svc, err := app.BuildService(cfg, logger)
	if err != nil {
		logger.Error("failed to build digest service", slog.String("error", logging.SanitizeError(err)))
		return 1
	}

	trigger := workerPkg.NewTrigger(func(runCtx context.Context) (digest.Status, error) {
		return digest.Invoke(logging.WithLogger(runCtx, logger), svc)
	}, workerConfig.RunTimeout, workerMetrics, logger)

	startMetricsServer(ctx, logger, workerConfig.MetricsPort)

	healthAddr := fmt.Sprintf(":%d", workerConfig.HealthPort)
	healthServer := workerPkg.NewHealthServer(healthAddr, logger, trigger)
	go func() {
		if err := healthServer.Start(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("health server failed", slog.Any("error", err))
		}
	}()

	if err := runCronWorker(ctx, logger, trigger, workerConfig, healthServer); err != nil {
		logger.Error("worker stopped with error", slog.Any("error", err))
		return 1
	}
	return 0
}

// runCronWorker schedules the digest and blocks until ctx is cancelled.
func runCronWorker(ctx context.Context, logger *slog.Logger, trigger *workerPkg.Trigger, cfg *workerPkg.WorkerConfig, healthServer *workerPkg.HealthServer) error {
	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		logger.Error("invalid timezone, using UTC", slog.String("timezone", cfg.Timezone), slog.Any("error", err))
		loc = time.UTC
	}
	c := cron.New(cron.WithLocation(loc))

	_, err = c.AddFunc(cfg.CronSchedule, func() {
		// Overlaps are refused and logged by the trigger.
		_, _ = trigger.Fire(ctx, "cron")
	})
	if err != nil {
		return fmt.Errorf("add cron job: %w", err)
	}
	c.Start()

	healthServer.SetReady(true)
	logger.Info("worker started", slog.String("schedule", cfg.CronSchedule), slog.String("timezone", cfg.Timezone))

	<-ctx.Done()

	healthServer.SetReady(false)
	logger.Info("worker shutting down, waiting for running job")
	<-c.Stop().Done()
	logger.Info("worker stopped")
	return nil
}
