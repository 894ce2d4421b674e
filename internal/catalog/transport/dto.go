// Package transport defines request/response DTOs for the catalog API.
package transport

import "leadmarket_backend/internal/catalog/repository"

// CreateCategoryRequest creates a service category.
type CreateCategoryRequest struct {
	Name          string `json:"name" validate:"required,min=2,max=120"`
	LeadCostCents int64  `json:"leadCostCents" validate:"required,gt=0"`
	MatchLimit    int    `json:"matchLimit" validate:"required,gt=0,lte=50"`
	Workflow      string `json:"workflow" validate:"required,oneof=first_click lead_offer"`
}

// UpdateCategoryRequest applies partial changes to a category.
type UpdateCategoryRequest struct {
	Name          *string `json:"name" validate:"omitempty,min=2,max=120"`
	LeadCostCents *int64  `json:"leadCostCents" validate:"omitempty,gt=0"`
	MatchLimit    *int    `json:"matchLimit" validate:"omitempty,gt=0,lte=50"`
	Active        *bool   `json:"active"`
}

// ListCategoriesRequest filters category listings.
type ListCategoriesRequest struct {
	ActiveOnly bool `form:"activeOnly"`
	Limit      int  `form:"limit" validate:"omitempty,gt=0,lte=100"`
	Offset     int  `form:"offset" validate:"omitempty,gte=0"`
}

// ListCategoriesResponse is a paged category listing.
type ListCategoriesResponse struct {
	Categories []repository.Category `json:"categories"`
	Total      int                   `json:"total"`
	Limit      int                   `json:"limit"`
	Offset     int                   `json:"offset"`
}
