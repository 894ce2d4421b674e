// Package repository provides data access for the professionals directory.
package repository

import (
	"context"

	"github.com/google/uuid"
)

// Professional is the directory projection of a service professional.
// Wallet balance mutations are owned by the wallet module; this module only
// reads the balance columns.
type Professional struct {
	ID                       uuid.UUID `json:"id"`
	Name                     string    `json:"name"`
	Email                    string    `json:"email"`
	Phone                    string    `json:"phone"`
	WalletBalanceCents       int64     `json:"walletBalanceCents"`
	LowBalanceThresholdCents int64     `json:"lowBalanceThresholdCents"`
	Active                   bool      `json:"active"`
	CreatedAt                string    `json:"createdAt"`
	UpdatedAt                string    `json:"updatedAt"`
}

// CreateProfessionalParams holds the fields for registering a professional.
type CreateProfessionalParams struct {
	Name                     string
	Email                    string
	Phone                    string
	LowBalanceThresholdCents int64
}

// UpdateProfessionalParams holds optional directory changes. Nil fields are
// left unchanged.
type UpdateProfessionalParams struct {
	ID                       uuid.UUID
	Name                     *string
	Email                    *string
	Phone                    *string
	LowBalanceThresholdCents *int64
	Active                   *bool
}

// ListProfessionalsParams filters and pages directory listings.
type ListProfessionalsParams struct {
	ActiveOnly bool
	Limit      int
	Offset     int
}

// Repository defines data access for the professionals directory.
type Repository interface {
	Create(ctx context.Context, params CreateProfessionalParams) (Professional, error)
	Update(ctx context.Context, params UpdateProfessionalParams) (Professional, error)
	GetByID(ctx context.Context, id uuid.UUID) (Professional, error)
	List(ctx context.Context, params ListProfessionalsParams) ([]Professional, int, error)
	// FindEligible returns active professionals whose balance covers
	// minBalanceCents, richest first. The category is accepted for parity
	// with the external ranking service but not used by the default query.
	FindEligible(ctx context.Context, categoryID uuid.UUID, minBalanceCents int64, limit int) ([]Professional, error)
}
