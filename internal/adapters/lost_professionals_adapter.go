package adapters

import (
	"context"

	"github.com/google/uuid"

	"leadmarket_backend/internal/notification"
	offersdomain "leadmarket_backend/internal/offers/domain"
	offersrepo "leadmarket_backend/internal/offers/repository"
)

// LostProfessionalsAdapter adapts the offers repository for loser
// notifications, satisfying the notification LostProfessionalFinder port.
type LostProfessionalsAdapter struct {
	offers offersrepo.Repository
}

// NewLostProfessionalsAdapter creates a new lost professionals adapter.
func NewLostProfessionalsAdapter(offers offersrepo.Repository) *LostProfessionalsAdapter {
	return &LostProfessionalsAdapter{offers: offers}
}

var _ notification.LostProfessionalFinder = (*LostProfessionalsAdapter)(nil)

// CancelledProfessionals returns the professionals whose offers for a request
// were cancelled, excluding the winner's offer.
func (a *LostProfessionalsAdapter) CancelledProfessionals(ctx context.Context, requestID, winnerOfferID uuid.UUID) ([]uuid.UUID, error) {
	offers, err := a.offers.ListByRequest(ctx, requestID)
	if err != nil {
		return nil, err
	}

	ids := make([]uuid.UUID, 0, len(offers))
	for _, offer := range offers {
		if offer.ID == winnerOfferID {
			continue
		}
		if offer.Status == offersdomain.StatusCancelled {
			ids = append(ids, offer.ProfessionalID)
		}
	}
	return ids, nil
}
