package engine

import "github.com/mlcortes/wburn/internal/model"

// Phase tags the view state.
type Phase int

const (
	// PhaseLoading is published synchronously when a refresh starts.
	PhaseLoading Phase = iota
	// PhaseSuccess carries the expense list and derived budget figures.
	PhaseSuccess
	// PhaseError carries the failure message from an aborted refresh.
	PhaseError
)

func (p Phase) String() string {
	switch p {
	case PhaseLoading:
		return "loading"
	case PhaseSuccess:
		return "success"
	case PhaseError:
		return "error"
	default:
		return "unknown"
	}
}

// State is the engine's published view state. Exactly one value is current;
// each refresh replaces the whole thing, including the expense snapshot.
// Observers must treat Expenses as read-only.
type State struct {
	Phase       Phase
	Expenses    []model.Expense // sorted by date descending, Success only
	WeeklyTotal float64
	Remaining   float64
	Budget      float64
	Err         string // Error only
}

// Notification is a single pending user-facing message. A second emission
// before consumption overwrites the first.
type Notification struct {
	Text    string
	IsError bool
}
