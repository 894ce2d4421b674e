package notification

import (
	"context"
	"sync"
	"testing"

	"leadmarket_backend/internal/events"
	"leadmarket_backend/internal/notification/outbox"
	"leadmarket_backend/platform/logger"

	"github.com/google/uuid"
)

// fakeQueue captures enqueued messages in memory.
type fakeQueue struct {
	mu       sync.Mutex
	messages []outbox.EnqueueParams
}

func (f *fakeQueue) Enqueue(ctx context.Context, params outbox.EnqueueParams) (outbox.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.messages = append(f.messages, params)
	return outbox.Message{ID: uuid.New(), RecipientID: params.RecipientID, Kind: params.Kind}, nil
}

func (f *fakeQueue) enqueued() []outbox.EnqueueParams {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]outbox.EnqueueParams(nil), f.messages...)
}

// fakeLost returns a fixed set of losing professionals.
type fakeLost struct {
	losers []uuid.UUID
}

func (f *fakeLost) CancelledProfessionals(ctx context.Context, requestID, winnerOfferID uuid.UUID) ([]uuid.UUID, error) {
	return f.losers, nil
}

func newTestModule(queue *fakeQueue, lost LostProfessionalFinder) (*Module, events.Bus) {
	log := logger.New("development")
	m := &Module{queue: queue, lost: lost, log: log}
	bus := events.NewInMemoryBus(log)
	m.subscribe(bus)
	return m, bus
}

func TestOfferCreatedEnqueuesOfferReceived(t *testing.T) {
	queue := &fakeQueue{}
	_, bus := newTestModule(queue, &fakeLost{})

	professionalID := uuid.New()
	if err := bus.PublishSync(context.Background(), events.OfferCreated{
		BaseEvent:      events.NewBaseEvent(),
		OfferID:        uuid.New(),
		RequestID:      uuid.New(),
		ProfessionalID: professionalID,
		PriceCents:     2500,
	}); err != nil {
		t.Fatalf("publish: %v", err)
	}

	enqueued := queue.enqueued()
	if len(enqueued) != 1 {
		t.Fatalf("enqueued %d messages, want 1", len(enqueued))
	}
	if enqueued[0].Kind != outbox.KindOfferReceived {
		t.Errorf("kind = %s, want offer_received", enqueued[0].Kind)
	}
	if enqueued[0].RecipientID != professionalID {
		t.Errorf("recipient = %s, want %s", enqueued[0].RecipientID, professionalID)
	}
	payload, ok := enqueued[0].Payload.(OfferReceivedPayload)
	if !ok {
		t.Fatalf("payload = %T, want OfferReceivedPayload", enqueued[0].Payload)
	}
	if payload.PriceCents != 2500 {
		t.Errorf("price = %d, want 2500", payload.PriceCents)
	}
}

func TestOfferAcceptedNotifiesLosers(t *testing.T) {
	queue := &fakeQueue{}
	losers := []uuid.UUID{uuid.New(), uuid.New()}
	_, bus := newTestModule(queue, &fakeLost{losers: losers})

	if err := bus.PublishSync(context.Background(), events.OfferAccepted{
		BaseEvent:      events.NewBaseEvent(),
		OfferID:        uuid.New(),
		RequestID:      uuid.New(),
		ProfessionalID: uuid.New(),
		ChargedCents:   2500,
	}); err != nil {
		t.Fatalf("publish: %v", err)
	}

	enqueued := queue.enqueued()
	if len(enqueued) != 2 {
		t.Fatalf("enqueued %d messages, want 2", len(enqueued))
	}
	for i, message := range enqueued {
		if message.Kind != outbox.KindLeadLost {
			t.Errorf("message %d kind = %s, want lead_lost", i, message.Kind)
		}
		if message.RecipientID != losers[i] {
			t.Errorf("message %d recipient = %s, want %s", i, message.RecipientID, losers[i])
		}
	}
}

func TestWalletEventsEnqueueReceipts(t *testing.T) {
	queue := &fakeQueue{}
	_, bus := newTestModule(queue, &fakeLost{})

	professionalID := uuid.New()
	ctx := context.Background()

	if err := bus.PublishSync(ctx, events.WalletDebited{
		BaseEvent:         events.NewBaseEvent(),
		ProfessionalID:    professionalID,
		AmountCents:       2500,
		BalanceAfterCents: 1500,
	}); err != nil {
		t.Fatalf("publish debited: %v", err)
	}
	if err := bus.PublishSync(ctx, events.WalletLowBalance{
		BaseEvent:      events.NewBaseEvent(),
		ProfessionalID: professionalID,
		BalanceCents:   1500,
		ThresholdCents: 2000,
	}); err != nil {
		t.Fatalf("publish low balance: %v", err)
	}
	if err := bus.PublishSync(ctx, events.WalletCredited{
		BaseEvent:         events.NewBaseEvent(),
		ProfessionalID:    professionalID,
		AmountCents:       10000,
		BalanceAfterCents: 11500,
	}); err != nil {
		t.Fatalf("publish credited: %v", err)
	}

	enqueued := queue.enqueued()
	if len(enqueued) != 3 {
		t.Fatalf("enqueued %d messages, want 3", len(enqueued))
	}
	wantKinds := []string{outbox.KindLeadWon, outbox.KindLowBalance, outbox.KindWalletCredited}
	for i, message := range enqueued {
		if message.Kind != wantKinds[i] {
			t.Errorf("message %d kind = %s, want %s", i, message.Kind, wantKinds[i])
		}
	}
}

func TestOfferExpiredEnqueuesLeadLost(t *testing.T) {
	queue := &fakeQueue{}
	_, bus := newTestModule(queue, &fakeLost{})

	professionalID := uuid.New()
	if err := bus.PublishSync(context.Background(), events.OfferExpired{
		BaseEvent:      events.NewBaseEvent(),
		OfferID:        uuid.New(),
		RequestID:      uuid.New(),
		ProfessionalID: professionalID,
	}); err != nil {
		t.Fatalf("publish: %v", err)
	}

	enqueued := queue.enqueued()
	if len(enqueued) != 1 {
		t.Fatalf("enqueued %d messages, want 1", len(enqueued))
	}
	if enqueued[0].Kind != outbox.KindLeadLost {
		t.Errorf("kind = %s, want lead_lost", enqueued[0].Kind)
	}
}
