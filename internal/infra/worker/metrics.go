package worker

import (
	"arxiv-digest/internal/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Job run statuses.
const (
	JobStarted = "started"
	JobSuccess = "success"
	JobFailure = "failure"
	JobSkipped = "skipped"
)

// WorkerMetrics holds Prometheus metrics for the digest worker.
// It embeds ConfigMetrics for configuration-related metrics.
type WorkerMetrics struct {
	*config.ConfigMetrics

	// JobRunsTotal counts runs by status (started/success/failure/skipped).
	JobRunsTotal *prometheus.CounterVec

	// JobDurationSeconds measures run duration.
	JobDurationSeconds prometheus.Histogram

	// JobPapersPostedTotal counts posts across all runs.
	JobPapersPostedTotal prometheus.Counter

	// JobLastSuccessTimestamp is the Unix time of the last successful run.
	JobLastSuccessTimestamp prometheus.Gauge
}

// NewWorkerMetrics registers worker metrics with reg.
func NewWorkerMetrics(reg prometheus.Registerer) *WorkerMetrics {
	factory := promauto.With(reg)
	return &WorkerMetrics{
		ConfigMetrics: config.NewConfigMetricsWith(reg, "worker"),

		JobRunsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "worker_job_runs_total",
			Help: "Total number of digest job runs by status",
		}, []string{"status"}),

		JobDurationSeconds: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "worker_job_duration_seconds",
			Help:    "Duration of digest job execution in seconds",
			Buckets: []float64{1, 5, 30, 60, 300, 900, 1800},
		}),

		JobPapersPostedTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "worker_job_posts_total",
			Help: "Total number of notifications posted across all job runs",
		}),

		JobLastSuccessTimestamp: factory.NewGauge(prometheus.GaugeOpts{
			Name: "worker_job_last_success_timestamp",
			Help: "Unix timestamp of the last successful job run",
		}),
	}
}

// RecordJobRun counts a run with the given status.
func (m *WorkerMetrics) RecordJobRun(status string) {
	m.JobRunsTotal.WithLabelValues(status).Inc()
}

// RecordJobDuration observes a run duration.
func (m *WorkerMetrics) RecordJobDuration(seconds float64) {
	m.JobDurationSeconds.Observe(seconds)
}

// RecordPosts adds count posts.
func (m *WorkerMetrics) RecordPosts(count int) {
	m.JobPapersPostedTotal.Add(float64(count))
}

// RecordLastSuccess sets the last success timestamp to now.
func (m *WorkerMetrics) RecordLastSuccess() {
	m.JobLastSuccessTimestamp.SetToCurrentTime()
}
