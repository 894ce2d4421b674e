package adapters

import (
	"context"

	"github.com/google/uuid"

	jobssvc "leadmarket_backend/internal/jobs/service"
	requestssvc "leadmarket_backend/internal/requests/service"
)

// RequestCompleterAdapter adapts the requests service for job completion,
// satisfying the jobs RequestCompleter port.
type RequestCompleterAdapter struct {
	requests *requestssvc.Service
}

// NewRequestCompleterAdapter creates a new request completer adapter.
func NewRequestCompleterAdapter(requests *requestssvc.Service) *RequestCompleterAdapter {
	return &RequestCompleterAdapter{requests: requests}
}

var _ jobssvc.RequestCompleter = (*RequestCompleterAdapter)(nil)

// CompleteRequest marks a request done after its job finishes.
func (a *RequestCompleterAdapter) CompleteRequest(ctx context.Context, requestID uuid.UUID) error {
	_, err := a.requests.Complete(ctx, requestID)
	return err
}
