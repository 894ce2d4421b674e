// Package repository provides data access for customer requests.
package repository

import (
	"context"
	"time"

	"leadmarket_backend/internal/requests/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// Request is a customer request moving through the lead lifecycle.
type Request struct {
	ID            uuid.UUID     `json:"id"`
	ClientID      uuid.UUID     `json:"clientId"`
	CategoryID    uuid.UUID     `json:"categoryId"`
	Description   string        `json:"description"`
	Status        domain.Status `json:"status"`
	CancelReason  *string       `json:"cancelReason,omitempty"`
	BroadcastedAt *string       `json:"broadcastedAt,omitempty"`
	ExpiresAt     *string       `json:"expiresAt,omitempty"`
	CreatedAt     string        `json:"createdAt"`
	UpdatedAt     string        `json:"updatedAt"`
}

// CreateRequestParams holds the fields for submitting a request.
type CreateRequestParams struct {
	ClientID    uuid.UUID
	CategoryID  uuid.UUID
	Description string
}

// ListRequestsParams filters and pages request listings.
type ListRequestsParams struct {
	ClientID *uuid.UUID
	Status   *domain.Status
	Limit    int
	Offset   int
}

// ExpiredRequest is one row swept by ExpireStale.
type ExpiredRequest struct {
	ID        uuid.UUID
	ClientID  uuid.UUID
	OldStatus domain.Status
}

// Repository defines data access for customer requests.
type Repository interface {
	Create(ctx context.Context, params CreateRequestParams) (Request, error)
	GetByID(ctx context.Context, id uuid.UUID) (Request, error)
	List(ctx context.Context, params ListRequestsParams) ([]Request, int, error)
	// MarkBroadcasted flips an OPEN request to BROADCASTED with the given
	// deadline. Returns InvalidTransition if the request left OPEN first.
	MarkBroadcasted(ctx context.Context, id uuid.UUID, expiresAt time.Time) (Request, error)
	// Cancel withdraws an OPEN or BROADCASTED request.
	Cancel(ctx context.Context, id uuid.UUID, reason string) (Request, error)
	// Assign flips a BROADCASTED request to ASSIGNED.
	Assign(ctx context.Context, id uuid.UUID) (Request, error)
	// AssignTx is Assign inside a caller-owned transaction; it returns
	// Conflict when the request is no longer BROADCASTED.
	AssignTx(ctx context.Context, tx pgx.Tx, id uuid.UUID) error
	// Complete flips an ASSIGNED request to DONE. Completing a DONE request
	// is a no-op returning the current row.
	Complete(ctx context.Context, id uuid.UUID) (Request, error)
	// ExpireStale sweeps OPEN requests older than openMaxAge and
	// BROADCASTED requests past their deadline. Idempotent.
	ExpireStale(ctx context.Context, now time.Time, openMaxAge time.Duration) ([]ExpiredRequest, error)
}
