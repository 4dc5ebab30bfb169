package query

import "time"

// Status describes what data a query holds.
type Status int

const (
	// StatusPending means no data and no error yet.
	StatusPending Status = iota
	// StatusError means the last fetch failed.
	StatusError
	// StatusSuccess means the query holds data.
	StatusSuccess
)

// String returns the string representation of the status.
func (s Status) String() string {
	switch s {
	case StatusPending:
		return "pending"
	case StatusError:
		return "error"
	case StatusSuccess:
		return "success"
	default:
		return "unknown"
	}
}

// FetchStatus describes whether a query is fetching right now.
type FetchStatus int

const (
	// FetchStatusIdle means no fetch is running.
	FetchStatusIdle FetchStatus = iota
	// FetchStatusFetching means a fetch is running.
	FetchStatusFetching
	// FetchStatusPaused means a fetch wants to run but is held back.
	FetchStatusPaused
)

// String returns the string representation of the fetch status.
func (s FetchStatus) String() string {
	switch s {
	case FetchStatusIdle:
		return "idle"
	case FetchStatusFetching:
		return "fetching"
	case FetchStatusPaused:
		return "paused"
	default:
		return "unknown"
	}
}

// State is a snapshot of a query.
//
// A zero time.Time means the event has not happened.
type State[T any] struct {
	Data           T
	Error          error
	Status         Status
	FetchStatus    FetchStatus
	DataUpdatedAt  time.Time
	ErrorUpdatedAt time.Time
	IsInvalidated  bool
	IsPaused       bool
}
