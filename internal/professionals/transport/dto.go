// Package transport defines request/response DTOs for the professionals API.
package transport

import "leadmarket_backend/internal/professionals/repository"

// CreateProfessionalRequest registers a professional.
type CreateProfessionalRequest struct {
	Name                     string `json:"name" validate:"required,min=2,max=120"`
	Email                    string `json:"email" validate:"required,email"`
	Phone                    string `json:"phone" validate:"omitempty,max=32"`
	LowBalanceThresholdCents int64  `json:"lowBalanceThresholdCents" validate:"omitempty,gte=0"`
}

// UpdateProfessionalRequest applies partial directory changes.
type UpdateProfessionalRequest struct {
	Name                     *string `json:"name" validate:"omitempty,min=2,max=120"`
	Email                    *string `json:"email" validate:"omitempty,email"`
	Phone                    *string `json:"phone" validate:"omitempty,max=32"`
	LowBalanceThresholdCents *int64  `json:"lowBalanceThresholdCents" validate:"omitempty,gte=0"`
	Active                   *bool   `json:"active"`
}

// ListProfessionalsRequest filters directory listings.
type ListProfessionalsRequest struct {
	ActiveOnly bool `form:"activeOnly"`
	Limit      int  `form:"limit" validate:"omitempty,gt=0,lte=100"`
	Offset     int  `form:"offset" validate:"omitempty,gte=0"`
}

// ListProfessionalsResponse is a paged directory listing.
type ListProfessionalsResponse struct {
	Professionals []repository.Professional `json:"professionals"`
	Total         int                       `json:"total"`
	Limit         int                       `json:"limit"`
	Offset        int                       `json:"offset"`
}
