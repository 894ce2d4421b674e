// Package transport defines request/response DTOs for the requests API.
package transport

import (
	"leadmarket_backend/internal/requests/repository"

	"github.com/google/uuid"
)

// SubmitRequestRequest submits a new customer request.
type SubmitRequestRequest struct {
	CategoryID  uuid.UUID `json:"categoryId" validate:"required"`
	Description string    `json:"description" validate:"required,min=10,max=4000"`
}

// CancelRequestRequest withdraws a request.
type CancelRequestRequest struct {
	Reason string `json:"reason" validate:"omitempty,max=250"`
}

// ListRequestsRequest filters request listings.
type ListRequestsRequest struct {
	Status string `form:"status" validate:"omitempty,oneof=open broadcasted assigned done cancelled expired"`
	Limit  int    `form:"limit" validate:"omitempty,gt=0,lte=100"`
	Offset int    `form:"offset" validate:"omitempty,gte=0"`
}

// ListRequestsResponse is a paged request listing.
type ListRequestsResponse struct {
	Requests []repository.Request `json:"requests"`
	Total    int                  `json:"total"`
	Limit    int                  `json:"limit"`
	Offset   int                  `json:"offset"`
}
