// Package domain contains catalog business rules.
package domain

import (
	"time"

	"leadmarket_backend/platform/apperr"
)

// WorkflowType selects how offers for a category are dispatched and resolved.
type WorkflowType string

const (
	// WorkflowFirstClick resolves a request to the first professional who accepts.
	WorkflowFirstClick WorkflowType = "first_click"
	// WorkflowLeadOffer lets professionals counter with a price and the client pick.
	WorkflowLeadOffer WorkflowType = "lead_offer"
)

// Valid reports whether the workflow type is known.
func (w WorkflowType) Valid() bool {
	return w == WorkflowFirstClick || w == WorkflowLeadOffer
}

// WindowConfig provides the dispatch timing windows per workflow.
type WindowConfig interface {
	GetFirstClickRequestWindow() time.Duration
	GetFirstClickOfferWindow() time.Duration
	GetLeadOfferRequestWindow() time.Duration
	GetLeadOfferOfferWindow() time.Duration
}

// WorkflowPolicy captures the behavioral differences between workflows so the
// dispatch and resolution code never branches on the raw type.
type WorkflowPolicy struct {
	Workflow WorkflowType
	// RequestWindow bounds how long a broadcasted request stays open.
	RequestWindow time.Duration
	// OfferWindow bounds how long an individual offer may go unanswered.
	OfferWindow time.Duration
	// AllowsPriceProposal is true when professionals may counter with a price.
	AllowsPriceProposal bool
	// RequiresClientApproval is true when the client must confirm the winner.
	RequiresClientApproval bool
}

// PolicyFor returns the dispatch policy for a workflow type.
func PolicyFor(workflow WorkflowType, cfg WindowConfig) (WorkflowPolicy, error) {
	switch workflow {
	case WorkflowFirstClick:
		return WorkflowPolicy{
			Workflow:      WorkflowFirstClick,
			RequestWindow: cfg.GetFirstClickRequestWindow(),
			OfferWindow:   cfg.GetFirstClickOfferWindow(),
		}, nil
	case WorkflowLeadOffer:
		return WorkflowPolicy{
			Workflow:               WorkflowLeadOffer,
			RequestWindow:          cfg.GetLeadOfferRequestWindow(),
			OfferWindow:            cfg.GetLeadOfferOfferWindow(),
			AllowsPriceProposal:    true,
			RequiresClientApproval: true,
		}, nil
	default:
		return WorkflowPolicy{}, apperr.Validation("unknown workflow type: " + string(workflow))
	}
}
