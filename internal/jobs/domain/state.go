// Package domain defines the job state machine.
package domain

// Status is the lifecycle state of a job.
type Status string

const (
	StatusInProgress Status = "in_progress"
	StatusDone       Status = "done"
	StatusCancelled  Status = "cancelled"
	StatusNoShow     Status = "no_show"
)

// A no-show can still be cancelled administratively; done and cancelled are
// final.
var transitions = map[Status][]Status{
	StatusInProgress: {StatusDone, StatusCancelled, StatusNoShow},
	StatusDone:       {},
	StatusCancelled:  {},
	StatusNoShow:     {StatusCancelled},
}

// CanTransition reports whether a job may move from one status to another.
func CanTransition(from, to Status) bool {
	for _, allowed := range transitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// IsTerminal reports whether a status admits no further transitions.
func IsTerminal(status Status) bool {
	return len(transitions[status]) == 0
}
