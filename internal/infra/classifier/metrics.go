package classifier

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	outcomeSuccess = "success"
	outcomeFailure = "failure"
)

// CompletionMetricsRecorder records completion call metrics.
// Tests inject a fake in place of the Prometheus implementation.
type CompletionMetricsRecorder interface {
	// RecordDuration records the time taken by one completion call.
	RecordDuration(provider string, duration time.Duration)

	// RecordOutcome counts one completion call by outcome ("success" or "failure").
	RecordOutcome(provider, outcome string)
}

// PrometheusCompletionMetrics implements CompletionMetricsRecorder using Prometheus metrics.
type PrometheusCompletionMetrics struct {
	durationHistogram *prometheus.HistogramVec
	callsCounter      *prometheus.CounterVec
}

var (
	prometheusMetricsInstance *PrometheusCompletionMetrics
	prometheusMetricsOnce     sync.Once
)

// getOrCreateHistogramVec gets an existing histogram vector or creates a new one if it doesn't exist
func getOrCreateHistogramVec(opts prometheus.HistogramOpts, labels []string) *prometheus.HistogramVec {
	h := prometheus.NewHistogramVec(opts, labels)
	if err := prometheus.Register(h); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			return are.ExistingCollector.(*prometheus.HistogramVec)
		}
		return promauto.NewHistogramVec(opts, labels)
	}
	return h
}

// getOrCreateCounterVec gets an existing counter vector or creates a new one if it doesn't exist
func getOrCreateCounterVec(opts prometheus.CounterOpts, labels []string) *prometheus.CounterVec {
	c := prometheus.NewCounterVec(opts, labels)
	if err := prometheus.Register(c); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			return are.ExistingCollector.(*prometheus.CounterVec)
		}
		return promauto.NewCounterVec(opts, labels)
	}
	return c
}

// NewPrometheusCompletionMetrics returns the process-wide Prometheus recorder.
// Uses singleton pattern to avoid duplicate metric registration in tests.
func NewPrometheusCompletionMetrics() *PrometheusCompletionMetrics {
	prometheusMetricsOnce.Do(func() {
		prometheusMetricsInstance = &PrometheusCompletionMetrics{
			durationHistogram: getOrCreateHistogramVec(prometheus.HistogramOpts{
				Name:    "classifier_completion_duration_seconds",
				Help:    "Time taken by one completion call to the language-model API",
				Buckets: prometheus.ExponentialBuckets(0.25, 2, 10),
			}, []string{"provider"}),
			callsCounter: getOrCreateCounterVec(prometheus.CounterOpts{
				Name: "classifier_completions_total",
				Help: "Total number of completion calls by provider and outcome",
			}, []string{"provider", "outcome"}),
		}
	})
	return prometheusMetricsInstance
}

// RecordDuration implements CompletionMetricsRecorder.RecordDuration
func (p *PrometheusCompletionMetrics) RecordDuration(provider string, duration time.Duration) {
	p.durationHistogram.WithLabelValues(provider).Observe(duration.Seconds())
}

// RecordOutcome implements CompletionMetricsRecorder.RecordOutcome
func (p *PrometheusCompletionMetrics) RecordOutcome(provider, outcome string) {
	p.callsCounter.WithLabelValues(provider, outcome).Inc()
}
