// Package domain contains the customer request state machine.
package domain

// Status is the lifecycle state of a customer request.
type Status string

const (
	// StatusOpen is a submitted request not yet dispatched.
	StatusOpen Status = "open"
	// StatusBroadcasted is a request with offers out to professionals.
	StatusBroadcasted Status = "broadcasted"
	// StatusAssigned is a request won by exactly one professional.
	StatusAssigned Status = "assigned"
	// StatusDone is a completed request.
	StatusDone Status = "done"
	// StatusCancelled is a request withdrawn by the client.
	StatusCancelled Status = "cancelled"
	// StatusExpired is a request swept after its deadline passed.
	StatusExpired Status = "expired"
)

var transitions = map[Status][]Status{
	StatusOpen:        {StatusBroadcasted, StatusCancelled, StatusExpired},
	StatusBroadcasted: {StatusAssigned, StatusCancelled, StatusExpired},
	StatusAssigned:    {StatusDone},
}

// CanTransition reports whether moving from one status to another is allowed.
func CanTransition(from, to Status) bool {
	for _, allowed := range transitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// IsTerminal reports whether a status has no outgoing transitions.
func IsTerminal(status Status) bool {
	return len(transitions[status]) == 0
}

// Cancellable reports whether a client may still withdraw the request.
func Cancellable(status Status) bool {
	return status == StatusOpen || status == StatusBroadcasted
}
