package digest

import (
	"context"

	"arxiv-digest/internal/observability/logging"
)

// Runner runs one digest.
type Runner interface {
	Run(ctx context.Context) (*RunStats, error)
}

// Status is the result object returned to whatever invoked a run.
type Status struct {
	Status        string `json:"status"`
	RunID         string `json:"run_id,omitempty"`
	State         State  `json:"state,omitempty"`
	Fetched       int    `json:"fetched"`
	Classified    int    `json:"classified"`
	Unrouted      int    `json:"unrouted"`
	ParseFailures int    `json:"parse_failures"`
	Posted        int    `json:"posted"`
	DurationMs    int64  `json:"duration_ms"`
	Error         string `json:"error,omitempty"`
}

// Status values.
const (
	StatusOK    = "ok"
	StatusError = "error"
)

// Invoke runs one digest and converts the outcome into a Status.
// The run error is returned unchanged so callers can fail the invocation.
func Invoke(ctx context.Context, runner Runner) (Status, error) {
	stats, err := runner.Run(ctx)

	status := Status{Status: StatusOK}
	if stats != nil {
		status.RunID = stats.RunID
		status.State = stats.State
		status.Fetched = stats.Fetched
		status.Classified = stats.Classified
		status.Unrouted = stats.Unrouted
		status.ParseFailures = stats.ParseFailures
		status.Posted = stats.Posted
		status.DurationMs = stats.Duration.Milliseconds()
	}
	if err != nil {
		status.Status = StatusError
		status.Error = logging.SanitizeError(err)
		return status, err
	}
	return status, nil
}
