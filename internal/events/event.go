// Package events provides domain event definitions for decoupled,
// event-driven communication between modules.
// Infrastructure (Bus, Handler) is in platform/events.
package events

import (
	"time"

	"leadmarket_backend/platform/events"

	"github.com/google/uuid"
)

// Re-export platform types for convenience
type (
	Event       = events.Event
	Bus         = events.Bus
	Handler     = events.Handler
	HandlerFunc = events.HandlerFunc
	BaseEvent   = events.BaseEvent
)

// Re-export platform functions
var NewBaseEvent = events.NewBaseEvent

var NewInMemoryBus = events.NewInMemoryBus

// =============================================================================
// Request Domain Events
// =============================================================================

// RequestBroadcasted is published when a customer request is dispatched to
// eligible professionals.
type RequestBroadcasted struct {
	BaseEvent
	RequestID  uuid.UUID `json:"requestId"`
	CategoryID uuid.UUID `json:"categoryId"`
	Workflow   string    `json:"workflow"`
	OfferCount int       `json:"offerCount"`
	ExpiresAt  time.Time `json:"expiresAt"`
}

func (e RequestBroadcasted) EventName() string { return "requests.broadcasted" }

// RequestExpired is published when the sweeper expires a stale request.
type RequestExpired struct {
	BaseEvent
	RequestID uuid.UUID `json:"requestId"`
	ClientID  uuid.UUID `json:"clientId"`
	OldStatus string    `json:"oldStatus"`
}

func (e RequestExpired) EventName() string { return "requests.expired" }

// RequestCancelled is published when a client withdraws a request.
type RequestCancelled struct {
	BaseEvent
	RequestID       uuid.UUID `json:"requestId"`
	ClientID        uuid.UUID `json:"clientId"`
	Reason          string    `json:"reason,omitempty"`
	CancelledOffers int       `json:"cancelledOffers"`
}

func (e RequestCancelled) EventName() string { return "requests.cancelled" }

// =============================================================================
// Offer Domain Events
// =============================================================================

// OfferCreated is published for each lead offer generated by the dispatcher.
type OfferCreated struct {
	BaseEvent
	OfferID        uuid.UUID `json:"offerId"`
	RequestID      uuid.UUID `json:"requestId"`
	ProfessionalID uuid.UUID `json:"professionalId"`
	PriceCents     int64     `json:"priceCents"`
	ExpiresAt      time.Time `json:"expiresAt"`
}

func (e OfferCreated) EventName() string { return "offers.created" }

// OfferAccepted is published when an offer wins a request, after the
// wallet debit and job creation have committed.
type OfferAccepted struct {
	BaseEvent
	OfferID        uuid.UUID `json:"offerId"`
	RequestID      uuid.UUID `json:"requestId"`
	ProfessionalID uuid.UUID `json:"professionalId"`
	ClientID       uuid.UUID `json:"clientId"`
	JobID          uuid.UUID `json:"jobId"`
	ChargedCents   int64     `json:"chargedCents"`
}

func (e OfferAccepted) EventName() string { return "offers.accepted" }

// OfferExpired is published when the sweeper expires an unanswered offer.
type OfferExpired struct {
	BaseEvent
	OfferID        uuid.UUID `json:"offerId"`
	RequestID      uuid.UUID `json:"requestId"`
	ProfessionalID uuid.UUID `json:"professionalId"`
}

func (e OfferExpired) EventName() string { return "offers.expired" }

// OfferPriceProposed is published when a professional counters with a price
// under the lead-offer workflow.
type OfferPriceProposed struct {
	BaseEvent
	OfferID            uuid.UUID `json:"offerId"`
	RequestID          uuid.UUID `json:"requestId"`
	ProfessionalID     uuid.UUID `json:"professionalId"`
	ClientID           uuid.UUID `json:"clientId"`
	ProposedPriceCents int64     `json:"proposedPriceCents"`
}

func (e OfferPriceProposed) EventName() string { return "offers.price_proposed" }

// =============================================================================
// Wallet Domain Events
// =============================================================================

// WalletDebited is published after a successful wallet debit.
type WalletDebited struct {
	BaseEvent
	ProfessionalID    uuid.UUID `json:"professionalId"`
	TransactionID     uuid.UUID `json:"transactionId"`
	AmountCents       int64     `json:"amountCents"`
	BalanceAfterCents int64     `json:"balanceAfterCents"`
	Reason            string    `json:"reason"`
}

func (e WalletDebited) EventName() string { return "wallet.debited" }

// WalletLowBalance is published when a debit takes the balance below the
// professional's configured threshold.
type WalletLowBalance struct {
	BaseEvent
	ProfessionalID uuid.UUID `json:"professionalId"`
	BalanceCents   int64     `json:"balanceCents"`
	ThresholdCents int64     `json:"thresholdCents"`
}

func (e WalletLowBalance) EventName() string { return "wallet.low_balance" }

// WalletCredited is published after a recharge or refund lands on a wallet.
type WalletCredited struct {
	BaseEvent
	ProfessionalID    uuid.UUID `json:"professionalId"`
	TransactionID     uuid.UUID `json:"transactionId"`
	Type              string    `json:"type"`
	AmountCents       int64     `json:"amountCents"`
	BalanceAfterCents int64     `json:"balanceAfterCents"`
}

func (e WalletCredited) EventName() string { return "wallet.credited" }

// =============================================================================
// Job Domain Events
// =============================================================================

// JobCreated is published when an accepted offer turns into a job.
type JobCreated struct {
	BaseEvent
	JobID          uuid.UUID `json:"jobId"`
	RequestID      uuid.UUID `json:"requestId"`
	OfferID        uuid.UUID `json:"offerId"`
	ProfessionalID uuid.UUID `json:"professionalId"`
	ClientID       uuid.UUID `json:"clientId"`
}

func (e JobCreated) EventName() string { return "jobs.created" }

// JobCompleted is published when a job is marked done.
type JobCompleted struct {
	BaseEvent
	JobID          uuid.UUID `json:"jobId"`
	RequestID      uuid.UUID `json:"requestId"`
	ProfessionalID uuid.UUID `json:"professionalId"`
	ClientID       uuid.UUID `json:"clientId"`
}

func (e JobCompleted) EventName() string { return "jobs.completed" }
