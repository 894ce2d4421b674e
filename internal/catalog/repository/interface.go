// Package repository provides data access for the catalog bounded context.
package repository

import (
	"context"

	"leadmarket_backend/internal/catalog/domain"

	"github.com/google/uuid"
)

// Category is a service category that requests are submitted against.
type Category struct {
	ID            uuid.UUID           `json:"id"`
	Name          string              `json:"name"`
	LeadCostCents int64               `json:"leadCostCents"`
	MatchLimit    int                 `json:"matchLimit"`
	Workflow      domain.WorkflowType `json:"workflow"`
	Active        bool                `json:"active"`
	CreatedAt     string              `json:"createdAt"`
	UpdatedAt     string              `json:"updatedAt"`
}

// CreateCategoryParams holds the fields for creating a category.
type CreateCategoryParams struct {
	Name          string
	LeadCostCents int64
	MatchLimit    int
	Workflow      domain.WorkflowType
}

// UpdateCategoryParams holds the optional fields for updating a category.
// Nil fields are left unchanged.
type UpdateCategoryParams struct {
	ID            uuid.UUID
	Name          *string
	LeadCostCents *int64
	MatchLimit    *int
	Active        *bool
}

// ListCategoriesParams filters and pages category listings.
type ListCategoriesParams struct {
	ActiveOnly bool
	Limit      int
	Offset     int
}

// Repository defines data access for categories.
type Repository interface {
	Create(ctx context.Context, params CreateCategoryParams) (Category, error)
	Update(ctx context.Context, params UpdateCategoryParams) (Category, error)
	GetByID(ctx context.Context, id uuid.UUID) (Category, error)
	List(ctx context.Context, params ListCategoriesParams) ([]Category, int, error)
}
