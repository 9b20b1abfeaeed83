package metrics

import (
	"time"
)

// Classification outcomes.
const (
	OutcomeClassified   = "classified"
	OutcomeParseFailure = "parse_failure"
	OutcomeError        = "error"
)

// RecordRun records the final status and duration of a digest run.
func RecordRun(success bool, duration time.Duration) {
	status := StatusSuccess
	if !success {
		status = StatusFailure
	}
	DigestRunsTotal.WithLabelValues(status).Inc()
	DigestRunDuration.Observe(duration.Seconds())
}

// RecordPapersFetched records the number of papers fetched for a category.
func RecordPapersFetched(category string, count int) {
	PapersFetchedTotal.WithLabelValues(category).Add(float64(count))
}

// RecordClassification records one classification outcome.
// Outcome should be one of OutcomeClassified, OutcomeParseFailure or OutcomeError.
func RecordClassification(outcome string) {
	PapersClassifiedTotal.WithLabelValues(outcome).Inc()
}

// RecordUnrouted records a paper that matched no channel.
func RecordUnrouted() {
	PapersUnroutedTotal.Inc()
}

// RecordPost records one notification post to channel.
// Status should be either StatusSuccess or StatusFailure.
func RecordPost(channel, status string) {
	PostsTotal.WithLabelValues(channel, status).Inc()
}
