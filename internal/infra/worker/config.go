package worker

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"arxiv-digest/internal/pkg/config"
)

// WorkerConfig holds configuration for the scheduled digest worker.
type WorkerConfig struct {
	// CronSchedule is a standard 5-field cron expression.
	// Default: "0 6 * * *" (every day at 06:00)
	CronSchedule string

	// Timezone is the IANA timezone the schedule is evaluated in.
	// Default: "UTC"
	Timezone string

	// RunTimeout bounds one digest run, scheduled or triggered.
	// Default: 30 minutes
	RunTimeout time.Duration

	// HealthPort serves /health, /health/ready and POST /run.
	// Default: 9091
	HealthPort int

	// MetricsPort serves /metrics.
	// Default: 9090
	MetricsPort int
}

// DefaultConfig returns the defaults used when a variable is unset or invalid.
func DefaultConfig() WorkerConfig {
	return WorkerConfig{
		CronSchedule: "0 6 * * *",
		Timezone:     "UTC",
		RunTimeout:   30 * time.Minute,
		HealthPort:   9091,
		MetricsPort:  9090,
	}
}

// Validate reports every invalid field.
func (c *WorkerConfig) Validate() error {
	var errs []error

	if err := config.ValidateCronSchedule(c.CronSchedule); err != nil {
		errs = append(errs, fmt.Errorf("cron schedule: %w", err))
	}
	if err := config.ValidateTimezone(c.Timezone); err != nil {
		errs = append(errs, fmt.Errorf("timezone: %w", err))
	}
	if err := config.ValidateDuration(c.RunTimeout, time.Minute, 4*time.Hour); err != nil {
		errs = append(errs, fmt.Errorf("run timeout: %w", err))
	}
	if err := config.ValidateIntRange(c.HealthPort, 1024, 65535); err != nil {
		errs = append(errs, fmt.Errorf("health port: %w", err))
	}
	if err := config.ValidateIntRange(c.MetricsPort, 1024, 65535); err != nil {
		errs = append(errs, fmt.Errorf("metrics port: %w", err))
	}
	if c.HealthPort == c.MetricsPort {
		errs = append(errs, fmt.Errorf("health port and metrics port must differ, both are %d", c.HealthPort))
	}

	return errors.Join(errs...)
}

// LoadConfig reads worker settings through getenv. It never fails: an
// invalid value is replaced by its default, logged, and counted in metrics.
//
// Environment variables:
//   - CRON_SCHEDULE
//   - WORKER_TIMEZONE
//   - RUN_TIMEOUT (1m to 4h)
//   - WORKER_HEALTH_PORT (1024-65535)
//   - METRICS_PORT (1024-65535)
func LoadConfig(getenv config.Getenv, logger *slog.Logger, metrics *WorkerMetrics) *WorkerConfig {
	loader := config.NewLoader(getenv)
	cfg := DefaultConfig()
	fallbackActive := false

	record := func(field string, applied bool, warnings []string) {
		if !applied {
			return
		}
		fallbackActive = true
		metrics.RecordValidationError(field)
		metrics.RecordFallback(field, "default")
		for _, warning := range warnings {
			logger.Warn("Configuration fallback applied",
				slog.String("field", field),
				slog.String("warning", warning))
		}
	}

	schedule := loader.WithFallback("CRON_SCHEDULE", cfg.CronSchedule, config.ValidateCronSchedule)
	cfg.CronSchedule = schedule.Value
	record("cron_schedule", schedule.FallbackApplied, schedule.Warnings)

	timezone := loader.WithFallback("WORKER_TIMEZONE", cfg.Timezone, config.ValidateTimezone)
	cfg.Timezone = timezone.Value
	record("timezone", timezone.FallbackApplied, timezone.Warnings)

	timeout := loader.Duration("RUN_TIMEOUT", cfg.RunTimeout, func(d time.Duration) error {
		return config.ValidateDuration(d, time.Minute, 4*time.Hour)
	})
	cfg.RunTimeout = timeout.Value
	record("run_timeout", timeout.FallbackApplied, timeout.Warnings)

	portRange := func(v int) error { return config.ValidateIntRange(v, 1024, 65535) }

	health := loader.Int("WORKER_HEALTH_PORT", cfg.HealthPort, portRange)
	cfg.HealthPort = health.Value
	record("health_port", health.FallbackApplied, health.Warnings)

	metricsPort := loader.Int("METRICS_PORT", cfg.MetricsPort, portRange)
	cfg.MetricsPort = metricsPort.Value
	record("metrics_port", metricsPort.FallbackApplied, metricsPort.Warnings)

	if cfg.HealthPort == cfg.MetricsPort {
		defaults := DefaultConfig()
		record("health_port", true, []string{fmt.Sprintf(
			"WORKER_HEALTH_PORT and METRICS_PORT are both %d, falling back to defaults %d and %d",
			cfg.HealthPort, defaults.HealthPort, defaults.MetricsPort)})
		cfg.HealthPort = defaults.HealthPort
		cfg.MetricsPort = defaults.MetricsPort
	}

	metrics.SetFallbackActive(fallbackActive)
	metrics.RecordLoadTimestamp()

	return &cfg
}
