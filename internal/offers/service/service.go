// Package service implements offer dispatch and resolution.
package service

import (
	"context"

	"leadmarket_backend/internal/events"
	"leadmarket_backend/internal/offers/domain"
	"leadmarket_backend/internal/offers/repository"
	"leadmarket_backend/internal/offers/transport"
	"leadmarket_backend/platform/logger"

	"github.com/google/uuid"
)

const defaultPageSize = 25

// EligibleProfessionalFinder selects the professionals a request is
// dispatched to. The default adapter ranks by wallet balance; a geospatial
// ranker can replace it without touching this package.
type EligibleProfessionalFinder interface {
	Find(ctx context.Context, categoryID uuid.UUID, minBalanceCents int64, limit int) ([]uuid.UUID, error)
}

// WalletConfig selects the amount charged on client approval.
type WalletConfig interface {
	ChargeProposedPrice() bool
}

// Service implements offer use cases.
type Service struct {
	repo      repository.Repository
	finder    EligibleProfessionalFinder
	walletCfg WalletConfig
	bus       events.Bus
	log       *logger.Logger
}

// New creates an offers service.
func New(repo repository.Repository, finder EligibleProfessionalFinder, walletCfg WalletConfig, bus events.Bus, log *logger.Logger) *Service {
	return &Service{repo: repo, finder: finder, walletCfg: walletCfg, bus: bus, log: log}
}

// Get returns an offer visible to the calling professional.
func (s *Service) Get(ctx context.Context, offerID, callerID uuid.UUID, admin bool) (repository.Offer, error) {
	offer, err := s.repo.GetByID(ctx, offerID)
	if err != nil {
		return repository.Offer{}, err
	}
	if !admin && offer.ProfessionalID != callerID {
		return repository.Offer{}, notYourOffer()
	}
	return offer, nil
}

// ListByProfessional returns a professional's paged offers.
func (s *Service) ListByProfessional(ctx context.Context, professionalID uuid.UUID, req transport.ListOffersRequest) (transport.ListOffersResponse, error) {
	limit := req.Limit
	if limit <= 0 {
		limit = defaultPageSize
	}

	var status *domain.Status
	if req.Status != "" {
		parsed := domain.Status(req.Status)
		status = &parsed
	}

	offers, total, err := s.repo.ListByProfessional(ctx, repository.ListByProfessionalParams{
		ProfessionalID: professionalID,
		Status:         status,
		Limit:          limit,
		Offset:         req.Offset,
	})
	if err != nil {
		return transport.ListOffersResponse{}, err
	}

	return transport.ListOffersResponse{
		Offers: offers,
		Total:  total,
		Limit:  limit,
		Offset: req.Offset,
	}, nil
}

// ListByRequest returns all offers of a request.
func (s *Service) ListByRequest(ctx context.Context, requestID uuid.UUID) ([]repository.Offer, error) {
	return s.repo.ListByRequest(ctx, requestID)
}
