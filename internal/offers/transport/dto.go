// Package transport defines request/response DTOs for the offers API.
package transport

import (
	"leadmarket_backend/internal/offers/repository"

	"github.com/google/uuid"
)

// ProposePriceRequest counters an offer with a price.
type ProposePriceRequest struct {
	PriceCents int64 `json:"priceCents" validate:"required,gt=0"`
}

// CreateSingleOfferRequest creates one targeted offer.
type CreateSingleOfferRequest struct {
	ProfessionalID uuid.UUID `json:"professionalId" validate:"required"`
	PriceCents     int64     `json:"priceCents" validate:"required,gt=0"`
}

// ListOffersRequest filters a professional's offer listing.
type ListOffersRequest struct {
	Status string `form:"status" validate:"omitempty,oneof=offered pending_client_approval accepted missed expired cancelled"`
	Limit  int    `form:"limit" validate:"omitempty,gt=0,lte=100"`
	Offset int    `form:"offset" validate:"omitempty,gte=0"`
}

// ListOffersResponse is a paged offer listing.
type ListOffersResponse struct {
	Offers []repository.Offer `json:"offers"`
	Total  int                `json:"total"`
	Limit  int                `json:"limit"`
	Offset int                `json:"offset"`
}

// AcceptResponse reports a won lead.
type AcceptResponse struct {
	Offer             repository.Offer `json:"offer"`
	JobID             uuid.UUID        `json:"jobId"`
	ChargedCents      int64            `json:"chargedCents"`
	BalanceAfterCents int64            `json:"balanceAfterCents"`
}
