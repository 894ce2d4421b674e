// Package domain contains the lead offer state machine.
package domain

// Status is the lifecycle state of a lead offer.
type Status string

const (
	// StatusOffered is a dispatched offer awaiting a response.
	StatusOffered Status = "offered"
	// StatusPendingClientApproval is a countered offer awaiting the client.
	StatusPendingClientApproval Status = "pending_client_approval"
	// StatusAccepted is the winning offer of a request.
	StatusAccepted Status = "accepted"
	// StatusMissed is an offer the professional passed on.
	StatusMissed Status = "missed"
	// StatusExpired is an offer swept after its deadline passed.
	StatusExpired Status = "expired"
	// StatusCancelled is an offer withdrawn, usually because a sibling won.
	StatusCancelled Status = "cancelled"
)

// Workflow names shared with the catalog's category configuration.
const (
	WorkflowFirstClick = "first_click"
	WorkflowLeadOffer  = "lead_offer"
)

var transitions = map[Status][]Status{
	StatusOffered:               {StatusAccepted, StatusPendingClientApproval, StatusMissed, StatusExpired, StatusCancelled},
	StatusPendingClientApproval: {StatusAccepted, StatusExpired, StatusCancelled},
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

// Open reports whether the offer can still be resolved or swept.
func Open(status Status) bool {
	return status == StatusOffered || status == StatusPendingClientApproval
}
