package adapters

import (
	"context"

	"github.com/google/uuid"

	offerssvc "leadmarket_backend/internal/offers/service"
	requestssvc "leadmarket_backend/internal/requests/service"
)

// OfferDispatchAdapter adapts the offers service for request broadcasts,
// satisfying the requests OfferDispatcher and OfferCanceller ports.
type OfferDispatchAdapter struct {
	offers *offerssvc.Service
}

// NewOfferDispatchAdapter creates a new offer dispatch adapter.
func NewOfferDispatchAdapter(offers *offerssvc.Service) *OfferDispatchAdapter {
	return &OfferDispatchAdapter{offers: offers}
}

var (
	_ requestssvc.OfferDispatcher = (*OfferDispatchAdapter)(nil)
	_ requestssvc.OfferCanceller  = (*OfferDispatchAdapter)(nil)
)

// Dispatch creates offers for a broadcasted request.
func (a *OfferDispatchAdapter) Dispatch(ctx context.Context, cmd requestssvc.DispatchCommand) (int, error) {
	return a.offers.Dispatch(ctx, offerssvc.DispatchCommand{
		RequestID:     cmd.RequestID,
		CategoryID:    cmd.CategoryID,
		LeadCostCents: cmd.LeadCostCents,
		MatchLimit:    cmd.MatchLimit,
		OfferWindow:   cmd.OfferWindow,
	})
}

// CancelAllForRequest bulk-cancels the outstanding offers of a request.
func (a *OfferDispatchAdapter) CancelAllForRequest(ctx context.Context, requestID uuid.UUID) (int, error) {
	return a.offers.CancelAllForRequest(ctx, requestID)
}
