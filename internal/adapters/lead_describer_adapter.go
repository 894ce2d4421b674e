package adapters

import (
	"context"

	"github.com/google/uuid"

	catalogrepo "leadmarket_backend/internal/catalog/repository"
	requestsrepo "leadmarket_backend/internal/requests/repository"
)

// LeadDescriberAdapter resolves the category name behind a request,
// satisfying the scheduler LeadDescriber port.
type LeadDescriberAdapter struct {
	requests requestsrepo.Repository
	catalog  catalogrepo.Repository
}

// NewLeadDescriberAdapter creates a new lead describer adapter.
func NewLeadDescriberAdapter(requests requestsrepo.Repository, catalog catalogrepo.Repository) *LeadDescriberAdapter {
	return &LeadDescriberAdapter{requests: requests, catalog: catalog}
}

// CategoryNameForRequest returns the category name a request was submitted
// against.
func (a *LeadDescriberAdapter) CategoryNameForRequest(ctx context.Context, requestID uuid.UUID) (string, error) {
	request, err := a.requests.GetByID(ctx, requestID)
	if err != nil {
		return "", err
	}
	category, err := a.catalog.GetByID(ctx, request.CategoryID)
	if err != nil {
		return "", err
	}
	return category.Name, nil
}
