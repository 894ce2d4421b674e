package scheduler

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/google/uuid"

	"leadmarket_backend/internal/email"
	"leadmarket_backend/internal/notification"
	"leadmarket_backend/internal/notification/outbox"
	"leadmarket_backend/platform/logger"
)

const (
	dispatchInterval    = 2 * time.Second
	dispatchBatchSize   = 50
	dispatchConcurrency = 8
)

// ProfessionalContacts resolves a professional's delivery address at send
// time, so a changed email address is picked up by retries.
type ProfessionalContacts interface {
	GetContact(ctx context.Context, professionalID uuid.UUID) (name, address string, err error)
}

// LeadDescriber resolves the category name of a request for the offer
// received message.
type LeadDescriber interface {
	CategoryNameForRequest(ctx context.Context, requestID uuid.UUID) (string, error)
}

// NotificationOutboxDispatcher drains the outbox into email deliveries.
type NotificationOutboxDispatcher struct {
	repo     *outbox.Repo
	sender   email.Sender
	contacts ProfessionalContacts
	leads    LeadDescriber
	log      *logger.Logger
}

// NewNotificationOutboxDispatcher creates a dispatcher.
func NewNotificationOutboxDispatcher(repo *outbox.Repo, sender email.Sender, contacts ProfessionalContacts, leads LeadDescriber, log *logger.Logger) *NotificationOutboxDispatcher {
	return &NotificationOutboxDispatcher{
		repo:     repo,
		sender:   sender,
		contacts: contacts,
		leads:    leads,
		log:      log,
	}
}

// Run polls for due messages until the context is cancelled. Claimed
// messages are delivered concurrently with a bounded group.
func (d *NotificationOutboxDispatcher) Run(ctx context.Context) {
	ticker := time.NewTicker(dispatchInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		messages, err := d.repo.ClaimDue(ctx, time.Now(), dispatchBatchSize)
		if err != nil {
			d.log.Warn("outbox claim failed", "error", err)
			continue
		}
		if len(messages) == 0 {
			continue
		}

		group, groupCtx := errgroup.WithContext(ctx)
		group.SetLimit(dispatchConcurrency)
		for _, message := range messages {
			message := message
			group.Go(func() error {
				d.dispatch(groupCtx, message)
				return nil
			})
		}
		_ = group.Wait()
	}
}

func (d *NotificationOutboxDispatcher) dispatch(ctx context.Context, message outbox.Message) {
	if err := d.deliver(ctx, message); err != nil {
		d.log.Warn("outbox delivery failed", "id", message.ID, "kind", message.Kind, "error", err)
		if markErr := d.repo.MarkFailed(ctx, message.ID, err.Error(), time.Now()); markErr != nil {
			d.log.Error("failed to record outbox failure", "id", message.ID, "error", markErr)
		}
		return
	}
	if err := d.repo.MarkSucceeded(ctx, message.ID); err != nil {
		d.log.Error("failed to record outbox success", "id", message.ID, "error", err)
	}
}

func (d *NotificationOutboxDispatcher) deliver(ctx context.Context, message outbox.Message) error {
	name, address, err := d.contacts.GetContact(ctx, message.RecipientID)
	if err != nil {
		return fmt.Errorf("resolve recipient: %w", err)
	}

	switch message.Kind {
	case outbox.KindOfferReceived:
		var payload notification.OfferReceivedPayload
		if err := json.Unmarshal(message.Payload, &payload); err != nil {
			return fmt.Errorf("decode payload: %w", err)
		}
		categoryName, err := d.leads.CategoryNameForRequest(ctx, payload.RequestID)
		if err != nil {
			return fmt.Errorf("resolve category: %w", err)
		}
		return d.sender.SendOfferReceivedEmail(ctx, address, name, categoryName, payload.PriceCents)

	case outbox.KindLeadWon:
		var payload notification.LeadWonPayload
		if err := json.Unmarshal(message.Payload, &payload); err != nil {
			return fmt.Errorf("decode payload: %w", err)
		}
		return d.sender.SendLeadWonEmail(ctx, address, name, payload.ChargedCents, payload.BalanceAfterCents)

	case outbox.KindLeadLost:
		return d.sender.SendLeadLostEmail(ctx, address, name)

	case outbox.KindLowBalance:
		var payload notification.LowBalancePayload
		if err := json.Unmarshal(message.Payload, &payload); err != nil {
			return fmt.Errorf("decode payload: %w", err)
		}
		return d.sender.SendLowBalanceEmail(ctx, address, name, payload.BalanceCents, payload.ThresholdCents)

	case outbox.KindWalletCredited:
		var payload notification.WalletCreditedPayload
		if err := json.Unmarshal(message.Payload, &payload); err != nil {
			return fmt.Errorf("decode payload: %w", err)
		}
		return d.sender.SendWalletCreditedEmail(ctx, address, name, payload.AmountCents, payload.BalanceAfterCents)

	default:
		return fmt.Errorf("unknown outbox kind %q", message.Kind)
	}
}
