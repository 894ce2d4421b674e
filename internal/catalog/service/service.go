// Package service implements catalog business logic.
package service

import (
	"context"

	"leadmarket_backend/internal/catalog/domain"
	"leadmarket_backend/internal/catalog/repository"
	"leadmarket_backend/internal/catalog/transport"
	"leadmarket_backend/platform/logger"

	"github.com/google/uuid"
)

const defaultPageSize = 25

// Service implements catalog use cases.
type Service struct {
	repo    repository.Repository
	windows domain.WindowConfig
	log     *logger.Logger
}

// New creates a catalog service.
func New(repo repository.Repository, windows domain.WindowConfig, log *logger.Logger) *Service {
	return &Service{repo: repo, windows: windows, log: log}
}

// CreateCategory creates a new service category.
func (s *Service) CreateCategory(ctx context.Context, req transport.CreateCategoryRequest) (repository.Category, error) {
	workflow := domain.WorkflowType(req.Workflow)
	if _, err := domain.PolicyFor(workflow, s.windows); err != nil {
		return repository.Category{}, err
	}

	category, err := s.repo.Create(ctx, repository.CreateCategoryParams{
		Name:          req.Name,
		LeadCostCents: req.LeadCostCents,
		MatchLimit:    req.MatchLimit,
		Workflow:      workflow,
	})
	if err != nil {
		return repository.Category{}, err
	}

	s.log.Info("category created", "categoryId", category.ID, "workflow", category.Workflow)
	return category, nil
}

// UpdateCategory applies partial changes to a category.
func (s *Service) UpdateCategory(ctx context.Context, id uuid.UUID, req transport.UpdateCategoryRequest) (repository.Category, error) {
	return s.repo.Update(ctx, repository.UpdateCategoryParams{
		ID:            id,
		Name:          req.Name,
		LeadCostCents: req.LeadCostCents,
		MatchLimit:    req.MatchLimit,
		Active:        req.Active,
	})
}

// GetCategory fetches a category by ID.
func (s *Service) GetCategory(ctx context.Context, id uuid.UUID) (repository.Category, error) {
	return s.repo.GetByID(ctx, id)
}

// ListCategories returns a paged listing.
func (s *Service) ListCategories(ctx context.Context, req transport.ListCategoriesRequest) (transport.ListCategoriesResponse, error) {
	limit := req.Limit
	if limit <= 0 {
		limit = defaultPageSize
	}

	categories, total, err := s.repo.List(ctx, repository.ListCategoriesParams{
		ActiveOnly: req.ActiveOnly,
		Limit:      limit,
		Offset:     req.Offset,
	})
	if err != nil {
		return transport.ListCategoriesResponse{}, err
	}

	return transport.ListCategoriesResponse{
		Categories: categories,
		Total:      total,
		Limit:      limit,
		Offset:     req.Offset,
	}, nil
}

// PolicyForCategory resolves the dispatch policy of a category's workflow.
func (s *Service) PolicyForCategory(ctx context.Context, categoryID uuid.UUID) (repository.Category, domain.WorkflowPolicy, error) {
	category, err := s.repo.GetByID(ctx, categoryID)
	if err != nil {
		return repository.Category{}, domain.WorkflowPolicy{}, err
	}

	policy, err := domain.PolicyFor(category.Workflow, s.windows)
	if err != nil {
		return repository.Category{}, domain.WorkflowPolicy{}, err
	}

	return category, policy, nil
}
