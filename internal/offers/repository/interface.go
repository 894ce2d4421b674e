// Package repository provides data access for lead offers, including the
// transactional acceptance path.
package repository

import (
	"context"
	"time"

	"leadmarket_backend/internal/offers/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// Offer is a lead offered to one professional for one request.
type Offer struct {
	ID                 uuid.UUID     `json:"id"`
	RequestID          uuid.UUID     `json:"requestId"`
	ProfessionalID     uuid.UUID     `json:"professionalId"`
	PriceCents         int64         `json:"priceCents"`
	ProposedPriceCents *int64        `json:"proposedPriceCents,omitempty"`
	Status             domain.Status `json:"status"`
	OfferedAt          string        `json:"offeredAt"`
	ExpiresAt          string        `json:"expiresAt"`
	ResolvedAt         *string       `json:"resolvedAt,omitempty"`
	CreatedAt          string        `json:"createdAt"`
	UpdatedAt          string        `json:"updatedAt"`
}

// OfferContext is an offer joined with its request and category, used for
// pre-transaction validation in the service layer.
type OfferContext struct {
	Offer          Offer
	ClientID       uuid.UUID
	RequestStatus  string
	Workflow       string
	OfferExpiresAt time.Time
}

// CreateOffersParams batch-creates offers for a broadcast.
type CreateOffersParams struct {
	RequestID       uuid.UUID
	ProfessionalIDs []uuid.UUID
	PriceCents      int64
	ExpiresAt       time.Time
}

// CreateSingleOfferParams creates one targeted offer.
type CreateSingleOfferParams struct {
	RequestID      uuid.UUID
	ProfessionalID uuid.UUID
	PriceCents     int64
	ExpiresAt      time.Time
}

// ListByProfessionalParams pages a professional's offers.
type ListByProfessionalParams struct {
	ProfessionalID uuid.UUID
	Status         *domain.Status
	Limit          int
	Offset         int
}

// ExpiredOffer is one row swept by ExpireOffers.
type ExpiredOffer struct {
	ID             uuid.UUID
	RequestID      uuid.UUID
	ProfessionalID uuid.UUID
}

// DebitCommand asks the wallet to charge a professional inside the
// acceptance transaction.
type DebitCommand struct {
	ProfessionalID uuid.UUID
	AmountCents    int64
	Reason         string
	ReferenceType  string
	ReferenceID    uuid.UUID
}

// DebitOutcome reports the committed wallet charge.
type DebitOutcome struct {
	TransactionID     uuid.UUID
	BalanceAfterCents int64
	ThresholdCents    int64
	CrossedThreshold  bool
}

// WalletTxOps is the wallet port used inside the acceptance transaction.
type WalletTxOps interface {
	DebitTx(ctx context.Context, tx pgx.Tx, cmd DebitCommand) (DebitOutcome, error)
}

// CreateJobCommand asks the job factory for the job of an accepted offer.
type CreateJobCommand struct {
	RequestID      uuid.UUID
	OfferID        uuid.UUID
	ProfessionalID uuid.UUID
	ClientID       uuid.UUID
}

// JobTxOps is the jobs port used inside the acceptance transaction.
type JobTxOps interface {
	CreateFromOfferTx(ctx context.Context, tx pgx.Tx, cmd CreateJobCommand) (uuid.UUID, error)
}

// RequestTxOps is the requests port used inside the acceptance transaction.
type RequestTxOps interface {
	AssignTx(ctx context.Context, tx pgx.Tx, requestID uuid.UUID) error
}

// AcceptParams drives the transactional acceptance of an offer.
type AcceptParams struct {
	OfferID uuid.UUID
	// ProfessionalID, when set, must match the offer's professional.
	ProfessionalID uuid.UUID
	// ClientID, when set, must match the request's client.
	ClientID uuid.UUID
	// FromStatus is the only status the offer may be in.
	FromStatus domain.Status
	// RequireWorkflow is the category workflow the operation is valid for.
	RequireWorkflow string
	// ChargeProposedPrice charges the countered price instead of the lead cost.
	ChargeProposedPrice bool
	ChargeReason        string
	Now                 time.Time
}

// AcceptResult reports a committed acceptance.
type AcceptResult struct {
	Offer             Offer
	RequestID         uuid.UUID
	ClientID          uuid.UUID
	JobID             uuid.UUID
	ChargedCents      int64
	Debit             DebitOutcome
	CancelledSiblings int
}

// Repository defines data access for lead offers.
type Repository interface {
	CreateOffers(ctx context.Context, params CreateOffersParams) ([]Offer, error)
	CreateSingleOffer(ctx context.Context, params CreateSingleOfferParams) (Offer, error)
	GetByID(ctx context.Context, id uuid.UUID) (Offer, error)
	GetContext(ctx context.Context, id uuid.UUID) (OfferContext, error)
	ListByRequest(ctx context.Context, requestID uuid.UUID) ([]Offer, error)
	ListByProfessional(ctx context.Context, params ListByProfessionalParams) ([]Offer, int, error)
	// Accept runs the whole winning path in one transaction: lock, check,
	// debit, flip, create job, assign request, cancel siblings.
	Accept(ctx context.Context, params AcceptParams) (AcceptResult, error)
	ProposePrice(ctx context.Context, offerID, professionalID uuid.UUID, priceCents int64, now time.Time) (Offer, error)
	Miss(ctx context.Context, offerID, professionalID uuid.UUID) (Offer, error)
	Cancel(ctx context.Context, offerID uuid.UUID) (Offer, error)
	CancelAllForRequest(ctx context.Context, requestID uuid.UUID) (int, error)
	ExpireOffers(ctx context.Context, now time.Time) ([]ExpiredOffer, error)
}
