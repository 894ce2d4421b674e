package service

import (
	"context"
	"time"

	"leadmarket_backend/internal/events"
	"leadmarket_backend/internal/offers/repository"

	"github.com/google/uuid"
)

// DispatchCommand carries the resolved category policy for a broadcast.
type DispatchCommand struct {
	RequestID     uuid.UUID
	CategoryID    uuid.UUID
	LeadCostCents int64
	MatchLimit    int
	OfferWindow   time.Duration
}

// Dispatch creates offers for the eligible professionals of a broadcasted
// request. Zero eligible professionals is a valid outcome; the request then
// waits for the sweeper.
func (s *Service) Dispatch(ctx context.Context, cmd DispatchCommand) (int, error) {
	professionals, err := s.finder.Find(ctx, cmd.CategoryID, cmd.LeadCostCents, cmd.MatchLimit)
	if err != nil {
		return 0, err
	}
	if len(professionals) == 0 {
		s.log.Info("no eligible professionals for request", "requestId", cmd.RequestID)
		return 0, nil
	}

	expiresAt := time.Now().Add(cmd.OfferWindow)
	offers, err := s.repo.CreateOffers(ctx, repository.CreateOffersParams{
		RequestID:       cmd.RequestID,
		ProfessionalIDs: professionals,
		PriceCents:      cmd.LeadCostCents,
		ExpiresAt:       expiresAt,
	})
	if err != nil {
		return 0, err
	}

	for _, offer := range offers {
		s.bus.Publish(ctx, events.OfferCreated{
			BaseEvent:      events.NewBaseEvent(),
			OfferID:        offer.ID,
			RequestID:      offer.RequestID,
			ProfessionalID: offer.ProfessionalID,
			PriceCents:     offer.PriceCents,
			ExpiresAt:      expiresAt,
		})
	}

	s.log.Info("offers dispatched", "requestId", cmd.RequestID, "count", len(offers))
	return len(offers), nil
}

// CreateSingleOffer creates one targeted offer, used by operators to extend
// a broadcast to a specific professional.
func (s *Service) CreateSingleOffer(ctx context.Context, params repository.CreateSingleOfferParams) (repository.Offer, error) {
	offer, err := s.repo.CreateSingleOffer(ctx, params)
	if err != nil {
		return repository.Offer{}, err
	}

	s.bus.Publish(ctx, events.OfferCreated{
		BaseEvent:      events.NewBaseEvent(),
		OfferID:        offer.ID,
		RequestID:      offer.RequestID,
		ProfessionalID: offer.ProfessionalID,
		PriceCents:     offer.PriceCents,
		ExpiresAt:      params.ExpiresAt,
	})
	return offer, nil
}
