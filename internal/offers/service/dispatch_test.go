package service

import (
	"context"
	"testing"
	"time"

	"leadmarket_backend/internal/events"
	"leadmarket_backend/internal/offers/domain"
	"leadmarket_backend/internal/offers/repository"

	"github.com/google/uuid"
)

func TestDispatchCreatesOffersAndPublishes(t *testing.T) {
	repo := newFakeRepo()
	bus := &recordingBus{}
	finder := &fakeFinder{professionals: []uuid.UUID{uuid.New(), uuid.New(), uuid.New()}}
	svc := newTestService(repo, finder, stubWalletCfg{}, bus)

	requestID := uuid.New()
	count, err := svc.Dispatch(context.Background(), DispatchCommand{
		RequestID:     requestID,
		CategoryID:    uuid.New(),
		LeadCostCents: 2500,
		MatchLimit:    5,
		OfferWindow:   30 * time.Minute,
	})
	if err != nil {
		t.Fatalf("dispatch: %v", err)
	}
	if count != 3 {
		t.Fatalf("dispatched %d offers, want 3", count)
	}

	offers, err := svc.ListByRequest(context.Background(), requestID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(offers) != 3 {
		t.Fatalf("stored %d offers, want 3", len(offers))
	}
	for _, offer := range offers {
		if offer.PriceCents != 2500 {
			t.Errorf("offer price = %d, want lead cost 2500", offer.PriceCents)
		}
		if offer.Status != domain.StatusOffered {
			t.Errorf("offer status = %s, want offered", offer.Status)
		}
	}

	published := bus.published()
	if len(published) != 3 {
		t.Fatalf("published %d events, want 3", len(published))
	}
	for i, event := range published {
		if _, ok := event.(events.OfferCreated); !ok {
			t.Errorf("event %d = %T, want OfferCreated", i, event)
		}
	}
}

func TestDispatchRespectsMatchLimit(t *testing.T) {
	repo := newFakeRepo()
	bus := &recordingBus{}
	finder := &fakeFinder{professionals: []uuid.UUID{uuid.New(), uuid.New(), uuid.New(), uuid.New()}}
	svc := newTestService(repo, finder, stubWalletCfg{}, bus)

	count, err := svc.Dispatch(context.Background(), DispatchCommand{
		RequestID:     uuid.New(),
		CategoryID:    uuid.New(),
		LeadCostCents: 2500,
		MatchLimit:    2,
		OfferWindow:   30 * time.Minute,
	})
	if err != nil {
		t.Fatalf("dispatch: %v", err)
	}
	if count != 2 {
		t.Errorf("dispatched %d offers, want 2", count)
	}
}

func TestDispatchNoEligibleProfessionals(t *testing.T) {
	repo := newFakeRepo()
	bus := &recordingBus{}
	svc := newTestService(repo, &fakeFinder{}, stubWalletCfg{}, bus)

	count, err := svc.Dispatch(context.Background(), DispatchCommand{
		RequestID:     uuid.New(),
		CategoryID:    uuid.New(),
		LeadCostCents: 2500,
		MatchLimit:    5,
		OfferWindow:   30 * time.Minute,
	})
	if err != nil {
		t.Fatalf("dispatch: %v", err)
	}
	if count != 0 {
		t.Errorf("dispatched %d offers, want 0", count)
	}
	if len(bus.published()) != 0 {
		t.Error("events published with no eligible professionals")
	}
}

func TestCreateSingleOfferPublishes(t *testing.T) {
	repo := newFakeRepo()
	bus := &recordingBus{}
	svc := newTestService(repo, &fakeFinder{}, stubWalletCfg{}, bus)

	offer, err := svc.CreateSingleOffer(context.Background(), repository.CreateSingleOfferParams{
		RequestID:      uuid.New(),
		ProfessionalID: uuid.New(),
		PriceCents:     3000,
		ExpiresAt:      time.Now().Add(15 * time.Minute),
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if offer.PriceCents != 3000 {
		t.Errorf("price = %d, want 3000", offer.PriceCents)
	}

	published := bus.published()
	if len(published) != 1 {
		t.Fatalf("published %d events, want 1", len(published))
	}
	if _, ok := published[0].(events.OfferCreated); !ok {
		t.Errorf("event = %T, want OfferCreated", published[0])
	}
}
