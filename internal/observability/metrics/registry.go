package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Label values shared by the recorders.
const (
	StatusSuccess = "success"
	StatusFailure = "failure"
)

// Business metrics track digest pipeline operations
var (
	// DigestRunsTotal counts digest runs by final status
	DigestRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "digest_runs_total",
			Help: "Total number of digest runs by status",
		},
		[]string{"status"},
	)

	// DigestRunDuration measures the wall time of a digest run
	DigestRunDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "digest_run_duration_seconds",
			Help:    "Duration of digest runs in seconds",
			Buckets: prometheus.ExponentialBuckets(1, 2, 12),
		},
	)

	// PapersFetchedTotal counts papers returned by the feed per category
	PapersFetchedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "digest_papers_fetched_total",
			Help: "Total number of papers fetched from the feed",
		},
		[]string{"category"},
	)

	// PapersClassifiedTotal counts classification attempts by outcome
	PapersClassifiedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "digest_papers_classified_total",
			Help: "Total number of paper classifications by outcome",
		},
		[]string{"outcome"},
	)

	// PapersUnroutedTotal counts papers that matched no channel
	PapersUnroutedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "digest_papers_unrouted_total",
			Help: "Total number of classified papers that matched no channel",
		},
	)

	// PostsTotal counts notification posts by channel and status
	PostsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "digest_posts_total",
			Help: "Total number of notification posts by channel and status",
		},
		[]string{"channel", "status"},
	)
)
