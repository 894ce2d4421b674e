// Package service implements professionals directory logic.
package service

import (
	"context"

	"leadmarket_backend/internal/professionals/repository"
	"leadmarket_backend/internal/professionals/transport"
	"leadmarket_backend/platform/logger"
	"leadmarket_backend/platform/phone"

	"github.com/google/uuid"
)

const defaultPageSize = 25

// Service implements professionals use cases.
type Service struct {
	repo repository.Repository
	log  *logger.Logger
}

// New creates a professionals service.
func New(repo repository.Repository, log *logger.Logger) *Service {
	return &Service{repo: repo, log: log}
}

// Register creates a professional with a normalized phone number.
func (s *Service) Register(ctx context.Context, req transport.CreateProfessionalRequest) (repository.Professional, error) {
	professional, err := s.repo.Create(ctx, repository.CreateProfessionalParams{
		Name:                     req.Name,
		Email:                    req.Email,
		Phone:                    phone.NormalizeE164(req.Phone),
		LowBalanceThresholdCents: req.LowBalanceThresholdCents,
	})
	if err != nil {
		return repository.Professional{}, err
	}

	s.log.Info("professional registered", "professionalId", professional.ID)
	return professional, nil
}

// Update applies partial directory changes.
func (s *Service) Update(ctx context.Context, id uuid.UUID, req transport.UpdateProfessionalRequest) (repository.Professional, error) {
	normalizedPhone := req.Phone
	if req.Phone != nil {
		normalized := phone.NormalizeE164(*req.Phone)
		normalizedPhone = &normalized
	}

	return s.repo.Update(ctx, repository.UpdateProfessionalParams{
		ID:                       id,
		Name:                     req.Name,
		Email:                    req.Email,
		Phone:                    normalizedPhone,
		LowBalanceThresholdCents: req.LowBalanceThresholdCents,
		Active:                   req.Active,
	})
}

// Get fetches a professional by ID.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (repository.Professional, error) {
	return s.repo.GetByID(ctx, id)
}

// List returns a paged directory listing.
func (s *Service) List(ctx context.Context, req transport.ListProfessionalsRequest) (transport.ListProfessionalsResponse, error) {
	limit := req.Limit
	if limit <= 0 {
		limit = defaultPageSize
	}

	professionals, total, err := s.repo.List(ctx, repository.ListProfessionalsParams{
		ActiveOnly: req.ActiveOnly,
		Limit:      limit,
		Offset:     req.Offset,
	})
	if err != nil {
		return transport.ListProfessionalsResponse{}, err
	}

	return transport.ListProfessionalsResponse{
		Professionals: professionals,
		Total:         total,
		Limit:         limit,
		Offset:        req.Offset,
	}, nil
}

// FindEligible exposes the eligibility query for the dispatch adapter.
func (s *Service) FindEligible(ctx context.Context, categoryID uuid.UUID, minBalanceCents int64, limit int) ([]repository.Professional, error) {
	return s.repo.FindEligible(ctx, categoryID, minBalanceCents, limit)
}
