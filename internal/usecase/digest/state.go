package digest

// State is a stage of a digest run. A run moves forward only:
// Fetching, Classifying, Posting, then Done. Any failure ends in Failed.
type State string

const (
	StatePending     State = "pending"
	StateFetching    State = "fetching"
	StateClassifying State = "classifying"
	StatePosting     State = "posting"
	StateDone        State = "done"
	StateFailed      State = "failed"
)
