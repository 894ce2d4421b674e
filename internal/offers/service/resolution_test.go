package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"leadmarket_backend/internal/events"
	"leadmarket_backend/internal/offers/domain"
	"leadmarket_backend/internal/offers/repository"
	"leadmarket_backend/platform/apperr"

	"github.com/google/uuid"
)

func seedOffer(repo *fakeRepo, workflow string, status domain.Status, priceCents int64) (repository.Offer, uuid.UUID) {
	clientID := uuid.New()
	offer := repository.Offer{
		ID:             uuid.New(),
		RequestID:      uuid.New(),
		ProfessionalID: uuid.New(),
		PriceCents:     priceCents,
		Status:         status,
	}
	repo.add(offer, clientID, workflow, time.Now().Add(time.Hour))
	return offer, clientID
}

func TestAcceptChargesWalletAndCancelsSiblings(t *testing.T) {
	repo := newFakeRepo()
	bus := &recordingBus{}
	svc := newTestService(repo, &fakeFinder{}, stubWalletCfg{}, bus)

	offer, _ := seedOffer(repo, domain.WorkflowFirstClick, domain.StatusOffered, 2500)
	repo.balances[offer.ProfessionalID] = 5000
	repo.thresholds[offer.ProfessionalID] = 3000

	sibling := repository.Offer{
		ID:             uuid.New(),
		RequestID:      offer.RequestID,
		ProfessionalID: uuid.New(),
		PriceCents:     2500,
		Status:         domain.StatusOffered,
	}
	repo.add(sibling, uuid.Nil, domain.WorkflowFirstClick, time.Now().Add(time.Hour))

	result, err := svc.Accept(context.Background(), offer.ID, offer.ProfessionalID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.ChargedCents != 2500 {
		t.Errorf("charged = %d, want 2500", result.ChargedCents)
	}
	if result.Debit.BalanceAfterCents != 2500 {
		t.Errorf("balance after = %d, want 2500", result.Debit.BalanceAfterCents)
	}
	if result.CancelledSiblings != 1 {
		t.Errorf("cancelled siblings = %d, want 1", result.CancelledSiblings)
	}
	if repo.offers[sibling.ID].offer.Status != domain.StatusCancelled {
		t.Errorf("sibling status = %s, want cancelled", repo.offers[sibling.ID].offer.Status)
	}

	published := bus.published()
	if len(published) != 4 {
		t.Fatalf("published %d events, want 4", len(published))
	}
	if _, ok := published[0].(events.OfferAccepted); !ok {
		t.Errorf("event 0 = %T, want OfferAccepted", published[0])
	}
	if _, ok := published[1].(events.WalletDebited); !ok {
		t.Errorf("event 1 = %T, want WalletDebited", published[1])
	}
	low, ok := published[2].(events.WalletLowBalance)
	if !ok {
		t.Fatalf("event 2 = %T, want WalletLowBalance", published[2])
	}
	if low.BalanceCents != 2500 || low.ThresholdCents != 3000 {
		t.Errorf("low balance event = %+v", low)
	}
	if _, ok := published[3].(events.JobCreated); !ok {
		t.Errorf("event 3 = %T, want JobCreated", published[3])
	}
}

func TestAcceptRejectsLeadOfferWorkflow(t *testing.T) {
	repo := newFakeRepo()
	bus := &recordingBus{}
	svc := newTestService(repo, &fakeFinder{}, stubWalletCfg{}, bus)

	offer, _ := seedOffer(repo, domain.WorkflowLeadOffer, domain.StatusOffered, 2500)
	repo.balances[offer.ProfessionalID] = 10000

	_, err := svc.Accept(context.Background(), offer.ID, offer.ProfessionalID)
	if apperr.GetKind(err) != apperr.KindWorkflowMismatch {
		t.Fatalf("kind = %v, want WorkflowMismatch", apperr.GetKind(err))
	}
	if len(bus.published()) != 0 {
		t.Error("events published on rejected accept")
	}
}

func TestAcceptExpiredOffer(t *testing.T) {
	repo := newFakeRepo()
	bus := &recordingBus{}
	svc := newTestService(repo, &fakeFinder{}, stubWalletCfg{}, bus)

	offer := repository.Offer{
		ID:             uuid.New(),
		RequestID:      uuid.New(),
		ProfessionalID: uuid.New(),
		PriceCents:     2500,
		Status:         domain.StatusOffered,
	}
	repo.add(offer, uuid.New(), domain.WorkflowFirstClick, time.Now().Add(-time.Minute))
	repo.balances[offer.ProfessionalID] = 10000

	_, err := svc.Accept(context.Background(), offer.ID, offer.ProfessionalID)
	if apperr.GetKind(err) != apperr.KindExpired {
		t.Fatalf("kind = %v, want Expired", apperr.GetKind(err))
	}
}

func TestAcceptInsufficientBalance(t *testing.T) {
	repo := newFakeRepo()
	bus := &recordingBus{}
	svc := newTestService(repo, &fakeFinder{}, stubWalletCfg{}, bus)

	offer, _ := seedOffer(repo, domain.WorkflowFirstClick, domain.StatusOffered, 2500)
	repo.balances[offer.ProfessionalID] = 100

	_, err := svc.Accept(context.Background(), offer.ID, offer.ProfessionalID)
	if apperr.GetKind(err) != apperr.KindInsufficientBalance {
		t.Fatalf("kind = %v, want InsufficientBalance", apperr.GetKind(err))
	}
	if repo.offers[offer.ID].offer.Status != domain.StatusOffered {
		t.Errorf("offer status mutated: %s", repo.offers[offer.ID].offer.Status)
	}
	if repo.balances[offer.ProfessionalID] != 100 {
		t.Errorf("balance mutated: %d", repo.balances[offer.ProfessionalID])
	}
	if len(bus.published()) != 0 {
		t.Error("events published on failed accept")
	}
}

func TestAcceptAlreadyResolved(t *testing.T) {
	repo := newFakeRepo()
	bus := &recordingBus{}
	svc := newTestService(repo, &fakeFinder{}, stubWalletCfg{}, bus)

	offer, _ := seedOffer(repo, domain.WorkflowFirstClick, domain.StatusCancelled, 2500)
	repo.balances[offer.ProfessionalID] = 10000

	_, err := svc.Accept(context.Background(), offer.ID, offer.ProfessionalID)
	if apperr.GetKind(err) != apperr.KindConflict {
		t.Fatalf("kind = %v, want Conflict", apperr.GetKind(err))
	}
}

func TestAcceptForeignOffer(t *testing.T) {
	repo := newFakeRepo()
	bus := &recordingBus{}
	svc := newTestService(repo, &fakeFinder{}, stubWalletCfg{}, bus)

	offer, _ := seedOffer(repo, domain.WorkflowFirstClick, domain.StatusOffered, 2500)

	_, err := svc.Accept(context.Background(), offer.ID, uuid.New())
	if apperr.GetKind(err) != apperr.KindForbidden {
		t.Fatalf("kind = %v, want Forbidden", apperr.GetKind(err))
	}
}

func TestProposePriceThenClientApprove(t *testing.T) {
	repo := newFakeRepo()
	bus := &recordingBus{}
	svc := newTestService(repo, &fakeFinder{}, stubWalletCfg{}, bus)

	offer, clientID := seedOffer(repo, domain.WorkflowLeadOffer, domain.StatusOffered, 2500)
	repo.balances[offer.ProfessionalID] = 10000

	proposed, err := svc.ProposePrice(context.Background(), offer.ID, offer.ProfessionalID, 4000)
	if err != nil {
		t.Fatalf("propose price: %v", err)
	}
	if proposed.Status != domain.StatusPendingClientApproval {
		t.Errorf("status = %s, want pending_client_approval", proposed.Status)
	}
	if proposed.ProposedPriceCents == nil || *proposed.ProposedPriceCents != 4000 {
		t.Errorf("proposed price = %v, want 4000", proposed.ProposedPriceCents)
	}

	published := bus.published()
	if len(published) != 1 {
		t.Fatalf("published %d events, want 1", len(published))
	}
	event, ok := published[0].(events.OfferPriceProposed)
	if !ok {
		t.Fatalf("event = %T, want OfferPriceProposed", published[0])
	}
	if event.ClientID != clientID || event.ProposedPriceCents != 4000 {
		t.Errorf("price proposed event = %+v", event)
	}

	result, err := svc.ClientApprove(context.Background(), offer.ID, clientID)
	if err != nil {
		t.Fatalf("client approve: %v", err)
	}
	if result.ChargedCents != 2500 {
		t.Errorf("charged = %d, want lead cost 2500", result.ChargedCents)
	}
}

func TestClientApproveChargesProposedPriceWhenConfigured(t *testing.T) {
	repo := newFakeRepo()
	bus := &recordingBus{}
	svc := newTestService(repo, &fakeFinder{}, stubWalletCfg{chargeProposed: true}, bus)

	offer, clientID := seedOffer(repo, domain.WorkflowLeadOffer, domain.StatusOffered, 2500)
	repo.balances[offer.ProfessionalID] = 10000

	if _, err := svc.ProposePrice(context.Background(), offer.ID, offer.ProfessionalID, 4000); err != nil {
		t.Fatalf("propose price: %v", err)
	}

	result, err := svc.ClientApprove(context.Background(), offer.ID, clientID)
	if err != nil {
		t.Fatalf("client approve: %v", err)
	}
	if result.ChargedCents != 4000 {
		t.Errorf("charged = %d, want proposed 4000", result.ChargedCents)
	}
	if repo.balances[offer.ProfessionalID] != 6000 {
		t.Errorf("balance = %d, want 6000", repo.balances[offer.ProfessionalID])
	}
}

func TestClientApproveWrongClient(t *testing.T) {
	repo := newFakeRepo()
	bus := &recordingBus{}
	svc := newTestService(repo, &fakeFinder{}, stubWalletCfg{}, bus)

	offer, _ := seedOffer(repo, domain.WorkflowLeadOffer, domain.StatusOffered, 2500)
	repo.balances[offer.ProfessionalID] = 10000

	if _, err := svc.ProposePrice(context.Background(), offer.ID, offer.ProfessionalID, 4000); err != nil {
		t.Fatalf("propose price: %v", err)
	}

	_, err := svc.ClientApprove(context.Background(), offer.ID, uuid.New())
	if apperr.GetKind(err) != apperr.KindForbidden {
		t.Fatalf("kind = %v, want Forbidden", apperr.GetKind(err))
	}
}

func TestProposePriceRejectsFirstClickWorkflow(t *testing.T) {
	repo := newFakeRepo()
	bus := &recordingBus{}
	svc := newTestService(repo, &fakeFinder{}, stubWalletCfg{}, bus)

	offer, _ := seedOffer(repo, domain.WorkflowFirstClick, domain.StatusOffered, 2500)

	_, err := svc.ProposePrice(context.Background(), offer.ID, offer.ProfessionalID, 4000)
	if apperr.GetKind(err) != apperr.KindWorkflowMismatch {
		t.Fatalf("kind = %v, want WorkflowMismatch", apperr.GetKind(err))
	}
	if len(bus.published()) != 0 {
		t.Error("events published on rejected proposal")
	}
}

func TestMissTransitionsOffer(t *testing.T) {
	repo := newFakeRepo()
	bus := &recordingBus{}
	svc := newTestService(repo, &fakeFinder{}, stubWalletCfg{}, bus)

	offer, _ := seedOffer(repo, domain.WorkflowFirstClick, domain.StatusOffered, 2500)

	missed, err := svc.Miss(context.Background(), offer.ID, offer.ProfessionalID)
	if err != nil {
		t.Fatalf("miss: %v", err)
	}
	if missed.Status != domain.StatusMissed {
		t.Errorf("status = %s, want missed", missed.Status)
	}
}

func TestExpireOffersIdempotent(t *testing.T) {
	repo := newFakeRepo()
	bus := &recordingBus{}
	svc := newTestService(repo, &fakeFinder{}, stubWalletCfg{}, bus)

	stale := repository.Offer{
		ID:             uuid.New(),
		RequestID:      uuid.New(),
		ProfessionalID: uuid.New(),
		PriceCents:     2500,
		Status:         domain.StatusOffered,
	}
	repo.add(stale, uuid.New(), domain.WorkflowFirstClick, time.Now().Add(-time.Minute))
	fresh, _ := seedOffer(repo, domain.WorkflowFirstClick, domain.StatusOffered, 2500)

	count, err := svc.ExpireOffers(context.Background())
	if err != nil {
		t.Fatalf("expire: %v", err)
	}
	if count != 1 {
		t.Fatalf("expired %d offers, want 1", count)
	}
	if repo.offers[fresh.ID].offer.Status != domain.StatusOffered {
		t.Errorf("fresh offer swept: %s", repo.offers[fresh.ID].offer.Status)
	}

	published := bus.published()
	if len(published) != 1 {
		t.Fatalf("published %d events, want 1", len(published))
	}
	if _, ok := published[0].(events.OfferExpired); !ok {
		t.Errorf("event = %T, want OfferExpired", published[0])
	}

	count, err = svc.ExpireOffers(context.Background())
	if err != nil {
		t.Fatalf("re-expire: %v", err)
	}
	if count != 0 {
		t.Errorf("second sweep expired %d offers, want 0", count)
	}
}

func TestConcurrentAcceptSingleWinner(t *testing.T) {
	repo := newFakeRepo()
	bus := &recordingBus{}
	svc := newTestService(repo, &fakeFinder{}, stubWalletCfg{}, bus)

	requestID := uuid.New()
	expiresAt := time.Now().Add(time.Hour)
	offers := make([]repository.Offer, 6)
	for i := range offers {
		offer := repository.Offer{
			ID:             uuid.New(),
			RequestID:      requestID,
			ProfessionalID: uuid.New(),
			PriceCents:     2500,
			Status:         domain.StatusOffered,
		}
		repo.add(offer, uuid.Nil, domain.WorkflowFirstClick, expiresAt)
		repo.balances[offer.ProfessionalID] = 10000
		offers[i] = offer
	}

	errs := make(chan error, len(offers))
	var wg sync.WaitGroup
	for _, offer := range offers {
		wg.Add(1)
		go func(offer repository.Offer) {
			defer wg.Done()
			_, err := svc.Accept(context.Background(), offer.ID, offer.ProfessionalID)
			errs <- err
		}(offer)
	}
	wg.Wait()
	close(errs)

	won := 0
	conflicts := 0
	for err := range errs {
		switch {
		case err == nil:
			won++
		case apperr.GetKind(err) == apperr.KindConflict:
			conflicts++
		default:
			t.Errorf("unexpected error: %v", err)
		}
	}
	if won != 1 {
		t.Fatalf("%d accepts won, want exactly 1", won)
	}
	if conflicts != len(offers)-1 {
		t.Fatalf("%d accepts conflicted, want %d", conflicts, len(offers)-1)
	}

	accepted := 0
	for _, stored := range repo.offers {
		switch stored.offer.Status {
		case domain.StatusAccepted:
			accepted++
		case domain.StatusCancelled:
		default:
			t.Errorf("offer %s left in status %s", stored.offer.ID, stored.offer.Status)
		}
	}
	if accepted != 1 {
		t.Errorf("%d offers accepted, want exactly 1", accepted)
	}

	charged := int64(0)
	for _, offer := range offers {
		charged += 10000 - repo.balances[offer.ProfessionalID]
	}
	if charged != 2500 {
		t.Errorf("total charged = %d, want 2500", charged)
	}
}
