// Package notification turns domain events into persisted outbox messages
// that the scheduler delivers by email.
package notification

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"leadmarket_backend/internal/events"
	apphttp "leadmarket_backend/internal/http"
	"leadmarket_backend/internal/notification/outbox"
	"leadmarket_backend/platform/httpkit"
	"leadmarket_backend/platform/logger"
)

// LostProfessionalFinder returns the professionals whose open offers were
// cancelled when a request was won by someone else.
type LostProfessionalFinder interface {
	CancelledProfessionals(ctx context.Context, requestID uuid.UUID, winnerOfferID uuid.UUID) ([]uuid.UUID, error)
}

// OfferReceivedPayload carries the data for an offer_received message.
type OfferReceivedPayload struct {
	OfferID    uuid.UUID `json:"offerId"`
	RequestID  uuid.UUID `json:"requestId"`
	PriceCents int64     `json:"priceCents"`
}

// LeadWonPayload carries the data for a lead_won message.
type LeadWonPayload struct {
	ChargedCents      int64 `json:"chargedCents"`
	BalanceAfterCents int64 `json:"balanceAfterCents"`
}

// LeadLostPayload carries the data for a lead_lost message.
type LeadLostPayload struct {
	RequestID uuid.UUID `json:"requestId"`
}

// LowBalancePayload carries the data for a low_balance message.
type LowBalancePayload struct {
	BalanceCents   int64 `json:"balanceCents"`
	ThresholdCents int64 `json:"thresholdCents"`
}

// WalletCreditedPayload carries the data for a wallet_credited message.
type WalletCreditedPayload struct {
	AmountCents       int64 `json:"amountCents"`
	BalanceAfterCents int64 `json:"balanceAfterCents"`
}

// Enqueuer persists notification intents.
type Enqueuer interface {
	Enqueue(ctx context.Context, params outbox.EnqueueParams) (outbox.Message, error)
}

// Module is the notification bounded context module implementing http.Module.
type Module struct {
	repo  *outbox.Repo
	queue Enqueuer
	lost  LostProfessionalFinder
	log   *logger.Logger
}

// NewModule creates and initializes the notification module and subscribes
// it to the event bus.
func NewModule(pool *pgxpool.Pool, lost LostProfessionalFinder, bus events.Bus, log *logger.Logger) *Module {
	repo := outbox.New(pool)
	m := &Module{
		repo:  repo,
		queue: repo,
		lost:  lost,
		log:   log,
	}
	m.subscribe(bus)
	return m
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "notification"
}

// Outbox returns the outbox repository for the scheduler's dispatcher.
func (m *Module) Outbox() *outbox.Repo {
	return m.repo
}

func (m *Module) subscribe(bus events.Bus) {
	bus.Subscribe(events.OfferCreated{}.EventName(), events.HandlerFunc(m.onOfferCreated))
	bus.Subscribe(events.OfferAccepted{}.EventName(), events.HandlerFunc(m.onOfferAccepted))
	bus.Subscribe(events.OfferExpired{}.EventName(), events.HandlerFunc(m.onOfferExpired))
	bus.Subscribe(events.WalletDebited{}.EventName(), events.HandlerFunc(m.onWalletDebited))
	bus.Subscribe(events.WalletLowBalance{}.EventName(), events.HandlerFunc(m.onWalletLowBalance))
	bus.Subscribe(events.WalletCredited{}.EventName(), events.HandlerFunc(m.onWalletCredited))
}

func (m *Module) onOfferCreated(ctx context.Context, event events.Event) error {
	created, ok := event.(events.OfferCreated)
	if !ok {
		return nil
	}
	_, err := m.queue.Enqueue(ctx, outbox.EnqueueParams{
		RecipientType: outbox.RecipientProfessional,
		RecipientID:   created.ProfessionalID,
		Kind:          outbox.KindOfferReceived,
		Payload: OfferReceivedPayload{
			OfferID:    created.OfferID,
			RequestID:  created.RequestID,
			PriceCents: created.PriceCents,
		},
	})
	return err
}

// onOfferAccepted notifies the losers. The winner is notified through the
// wallet debit that accompanies the acceptance.
func (m *Module) onOfferAccepted(ctx context.Context, event events.Event) error {
	accepted, ok := event.(events.OfferAccepted)
	if !ok {
		return nil
	}

	losers, err := m.lost.CancelledProfessionals(ctx, accepted.RequestID, accepted.OfferID)
	if err != nil {
		return err
	}
	for _, professionalID := range losers {
		if _, err := m.queue.Enqueue(ctx, outbox.EnqueueParams{
			RecipientType: outbox.RecipientProfessional,
			RecipientID:   professionalID,
			Kind:          outbox.KindLeadLost,
			Payload:       LeadLostPayload{RequestID: accepted.RequestID},
		}); err != nil {
			m.log.Error("failed to enqueue lead lost message", "requestId", accepted.RequestID, "professionalId", professionalID, "error", err)
		}
	}
	return nil
}

func (m *Module) onOfferExpired(ctx context.Context, event events.Event) error {
	expired, ok := event.(events.OfferExpired)
	if !ok {
		return nil
	}
	_, err := m.queue.Enqueue(ctx, outbox.EnqueueParams{
		RecipientType: outbox.RecipientProfessional,
		RecipientID:   expired.ProfessionalID,
		Kind:          outbox.KindLeadLost,
		Payload:       LeadLostPayload{RequestID: expired.RequestID},
	})
	return err
}

func (m *Module) onWalletDebited(ctx context.Context, event events.Event) error {
	debited, ok := event.(events.WalletDebited)
	if !ok {
		return nil
	}
	_, err := m.queue.Enqueue(ctx, outbox.EnqueueParams{
		RecipientType: outbox.RecipientProfessional,
		RecipientID:   debited.ProfessionalID,
		Kind:          outbox.KindLeadWon,
		Payload: LeadWonPayload{
			ChargedCents:      debited.AmountCents,
			BalanceAfterCents: debited.BalanceAfterCents,
		},
	})
	return err
}

func (m *Module) onWalletLowBalance(ctx context.Context, event events.Event) error {
	low, ok := event.(events.WalletLowBalance)
	if !ok {
		return nil
	}
	_, err := m.queue.Enqueue(ctx, outbox.EnqueueParams{
		RecipientType: outbox.RecipientProfessional,
		RecipientID:   low.ProfessionalID,
		Kind:          outbox.KindLowBalance,
		Payload: LowBalancePayload{
			BalanceCents:   low.BalanceCents,
			ThresholdCents: low.ThresholdCents,
		},
	})
	return err
}

func (m *Module) onWalletCredited(ctx context.Context, event events.Event) error {
	credited, ok := event.(events.WalletCredited)
	if !ok {
		return nil
	}
	_, err := m.queue.Enqueue(ctx, outbox.EnqueueParams{
		RecipientType: outbox.RecipientProfessional,
		RecipientID:   credited.ProfessionalID,
		Kind:          outbox.KindWalletCredited,
		Payload: WalletCreditedPayload{
			AmountCents:       credited.AmountCents,
			BalanceAfterCents: credited.BalanceAfterCents,
		},
	})
	return err
}

// RegisterRoutes mounts the admin outbox listing.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	ctx.Admin.GET("/notifications/outbox", m.listOutbox)
}

func (m *Module) listOutbox(c *gin.Context) {
	var status *outbox.Status
	if raw := c.Query("status"); raw != "" {
		parsed := outbox.Status(raw)
		status = &parsed
	}

	messages, total, err := m.repo.List(c.Request.Context(), outbox.ListParams{
		Status: status,
		Limit:  50,
		Offset: 0,
	})
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.JSON(c, http.StatusOK, gin.H{"messages": messages, "total": total})
}
