// Package repository provides data access for jobs.
package repository

import (
	"context"

	"leadmarket_backend/internal/jobs/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// Job is the engagement created when a professional wins a lead.
type Job struct {
	ID             uuid.UUID     `json:"id"`
	RequestID      uuid.UUID     `json:"requestId"`
	OfferID        uuid.UUID     `json:"offerId"`
	ProfessionalID uuid.UUID     `json:"professionalId"`
	ClientID       uuid.UUID     `json:"clientId"`
	Status         domain.Status `json:"status"`
	CancelReason   *string       `json:"cancelReason,omitempty"`
	StartedAt      string        `json:"startedAt"`
	DoneAt         *string       `json:"doneAt,omitempty"`
	CreatedAt      string        `json:"createdAt"`
	UpdatedAt      string        `json:"updatedAt"`
}

// CreateFromOfferParams creates the job of an accepted offer.
type CreateFromOfferParams struct {
	RequestID      uuid.UUID
	OfferID        uuid.UUID
	ProfessionalID uuid.UUID
	ClientID       uuid.UUID
}

// ListByProfessionalParams pages a professional's jobs.
type ListByProfessionalParams struct {
	ProfessionalID uuid.UUID
	Status         *domain.Status
	Limit          int
	Offset         int
}

// Repository defines data access for jobs.
type Repository interface {
	// CreateFromOfferTx inserts a job inside a caller-owned transaction.
	// The unique constraint on request_id makes a second job for the same
	// request a Conflict.
	CreateFromOfferTx(ctx context.Context, tx pgx.Tx, params CreateFromOfferParams) (uuid.UUID, error)
	GetByID(ctx context.Context, id uuid.UUID) (Job, error)
	ListByProfessional(ctx context.Context, params ListByProfessionalParams) ([]Job, int, error)
	Complete(ctx context.Context, id uuid.UUID) (Job, error)
	Cancel(ctx context.Context, id uuid.UUID, reason string) (Job, error)
	MarkNoShow(ctx context.Context, id uuid.UUID) (Job, error)
}
