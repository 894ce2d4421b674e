// Package adapters wires the bounded contexts together by implementing the
// ports each context defines for the others.
package adapters

import (
	"context"

	"github.com/google/uuid"

	catalogsvc "leadmarket_backend/internal/catalog/service"
	requestssvc "leadmarket_backend/internal/requests/service"
	"leadmarket_backend/platform/apperr"
)

// CatalogPolicyResolver adapts the catalog service for request broadcasts,
// satisfying the requests PolicyResolver port. Inactive categories do not
// resolve.
type CatalogPolicyResolver struct {
	catalog *catalogsvc.Service
}

// NewCatalogPolicyResolver creates a new policy resolver adapter.
func NewCatalogPolicyResolver(catalog *catalogsvc.Service) *CatalogPolicyResolver {
	return &CatalogPolicyResolver{catalog: catalog}
}

var _ requestssvc.PolicyResolver = (*CatalogPolicyResolver)(nil)

// Resolve returns the dispatch policy of an active category.
func (a *CatalogPolicyResolver) Resolve(ctx context.Context, categoryID uuid.UUID) (requestssvc.DispatchPolicy, error) {
	category, policy, err := a.catalog.PolicyForCategory(ctx, categoryID)
	if err != nil {
		return requestssvc.DispatchPolicy{}, err
	}
	if !category.Active {
		return requestssvc.DispatchPolicy{}, apperr.Validation("category is not active")
	}

	return requestssvc.DispatchPolicy{
		Workflow:      string(policy.Workflow),
		LeadCostCents: category.LeadCostCents,
		MatchLimit:    category.MatchLimit,
		RequestWindow: policy.RequestWindow,
		OfferWindow:   policy.OfferWindow,
	}, nil
}
