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
	"leadmarket_backend/platform/logger"

	"github.com/google/uuid"
)

// storedOffer is an offer joined with the request and category fields the
// acceptance path checks.
type storedOffer struct {
	offer         repository.Offer
	clientID      uuid.UUID
	requestStatus string
	workflow      string
	expiresAt     time.Time
}

// fakeRepo is an in-memory offer store with wallet balances, mimicking the
// transactional acceptance semantics of the real repository.
type fakeRepo struct {
	mu         sync.Mutex
	offers     map[uuid.UUID]*storedOffer
	balances   map[uuid.UUID]int64
	thresholds map[uuid.UUID]int64
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		offers:     make(map[uuid.UUID]*storedOffer),
		balances:   make(map[uuid.UUID]int64),
		thresholds: make(map[uuid.UUID]int64),
	}
}

func (f *fakeRepo) add(offer repository.Offer, clientID uuid.UUID, workflow string, expiresAt time.Time) {
	f.offers[offer.ID] = &storedOffer{
		offer:         offer,
		clientID:      clientID,
		requestStatus: "broadcasted",
		workflow:      workflow,
		expiresAt:     expiresAt,
	}
}

func (f *fakeRepo) CreateOffers(ctx context.Context, params repository.CreateOffersParams) ([]repository.Offer, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	created := make([]repository.Offer, 0, len(params.ProfessionalIDs))
	for _, professionalID := range params.ProfessionalIDs {
		offer := repository.Offer{
			ID:             uuid.New(),
			RequestID:      params.RequestID,
			ProfessionalID: professionalID,
			PriceCents:     params.PriceCents,
			Status:         domain.StatusOffered,
		}
		f.add(offer, uuid.Nil, domain.WorkflowFirstClick, params.ExpiresAt)
		created = append(created, offer)
	}
	return created, nil
}

func (f *fakeRepo) CreateSingleOffer(ctx context.Context, params repository.CreateSingleOfferParams) (repository.Offer, error) {
	offers, err := f.CreateOffers(ctx, repository.CreateOffersParams{
		RequestID:       params.RequestID,
		ProfessionalIDs: []uuid.UUID{params.ProfessionalID},
		PriceCents:      params.PriceCents,
		ExpiresAt:       params.ExpiresAt,
	})
	if err != nil {
		return repository.Offer{}, err
	}
	return offers[0], nil
}

func (f *fakeRepo) GetByID(ctx context.Context, id uuid.UUID) (repository.Offer, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	stored, ok := f.offers[id]
	if !ok {
		return repository.Offer{}, apperr.NotFound("offer not found")
	}
	return stored.offer, nil
}

func (f *fakeRepo) GetContext(ctx context.Context, id uuid.UUID) (repository.OfferContext, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	stored, ok := f.offers[id]
	if !ok {
		return repository.OfferContext{}, apperr.NotFound("offer not found")
	}
	return repository.OfferContext{
		Offer:          stored.offer,
		ClientID:       stored.clientID,
		RequestStatus:  stored.requestStatus,
		Workflow:       stored.workflow,
		OfferExpiresAt: stored.expiresAt,
	}, nil
}

func (f *fakeRepo) ListByRequest(ctx context.Context, requestID uuid.UUID) ([]repository.Offer, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	matched := make([]repository.Offer, 0)
	for _, stored := range f.offers {
		if stored.offer.RequestID == requestID {
			matched = append(matched, stored.offer)
		}
	}
	return matched, nil
}

func (f *fakeRepo) ListByProfessional(ctx context.Context, params repository.ListByProfessionalParams) ([]repository.Offer, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	matched := make([]repository.Offer, 0)
	for _, stored := range f.offers {
		if stored.offer.ProfessionalID != params.ProfessionalID {
			continue
		}
		if params.Status != nil && stored.offer.Status != *params.Status {
			continue
		}
		matched = append(matched, stored.offer)
	}
	return matched, len(matched), nil
}

func (f *fakeRepo) Accept(ctx context.Context, params repository.AcceptParams) (repository.AcceptResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	stored, ok := f.offers[params.OfferID]
	if !ok {
		return repository.AcceptResult{}, apperr.NotFound("offer not found")
	}
	if params.ProfessionalID != uuid.Nil && stored.offer.ProfessionalID != params.ProfessionalID {
		return repository.AcceptResult{}, apperr.Forbidden("offer belongs to another professional")
	}
	if params.ClientID != uuid.Nil && stored.clientID != params.ClientID {
		return repository.AcceptResult{}, apperr.Forbidden("request belongs to another client")
	}
	if params.RequireWorkflow != "" && stored.workflow != params.RequireWorkflow {
		return repository.AcceptResult{}, apperr.WorkflowMismatch("operation not valid for this workflow")
	}
	switch stored.offer.Status {
	case params.FromStatus:
	case domain.StatusExpired:
		return repository.AcceptResult{}, apperr.Expired("offer has expired")
	default:
		return repository.AcceptResult{}, apperr.Conflict("offer is " + string(stored.offer.Status))
	}
	if stored.expiresAt.Before(params.Now) {
		return repository.AcceptResult{}, apperr.Expired("offer has expired")
	}
	if stored.requestStatus != "broadcasted" {
		return repository.AcceptResult{}, apperr.Conflict("request is no longer open for assignment")
	}

	charge := stored.offer.PriceCents
	if params.ChargeProposedPrice && stored.offer.ProposedPriceCents != nil {
		charge = *stored.offer.ProposedPriceCents
	}

	balance := f.balances[stored.offer.ProfessionalID]
	if balance < charge {
		return repository.AcceptResult{}, apperr.InsufficientBalance("insufficient wallet balance")
	}
	after := balance - charge
	f.balances[stored.offer.ProfessionalID] = after
	threshold := f.thresholds[stored.offer.ProfessionalID]

	stored.offer.Status = domain.StatusAccepted
	cancelled := 0
	for _, sibling := range f.offers {
		if sibling.offer.RequestID != stored.offer.RequestID {
			continue
		}
		sibling.requestStatus = "assigned"
		if sibling.offer.ID != stored.offer.ID && domain.Open(sibling.offer.Status) {
			sibling.offer.Status = domain.StatusCancelled
			cancelled++
		}
	}

	return repository.AcceptResult{
		Offer:        stored.offer,
		RequestID:    stored.offer.RequestID,
		ClientID:     stored.clientID,
		JobID:        uuid.New(),
		ChargedCents: charge,
		Debit: repository.DebitOutcome{
			TransactionID:     uuid.New(),
			BalanceAfterCents: after,
			ThresholdCents:    threshold,
			CrossedThreshold:  threshold > 0 && balance >= threshold && after < threshold,
		},
		CancelledSiblings: cancelled,
	}, nil
}

func (f *fakeRepo) ProposePrice(ctx context.Context, offerID, professionalID uuid.UUID, priceCents int64, now time.Time) (repository.Offer, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	stored, ok := f.offers[offerID]
	if !ok {
		return repository.Offer{}, apperr.NotFound("offer not found")
	}
	if stored.offer.ProfessionalID != professionalID {
		return repository.Offer{}, apperr.Forbidden("offer belongs to another professional")
	}
	if stored.offer.Status != domain.StatusOffered {
		return repository.Offer{}, apperr.InvalidTransition("offer is " + string(stored.offer.Status))
	}
	if stored.expiresAt.Before(now) {
		return repository.Offer{}, apperr.Expired("offer has expired")
	}
	stored.offer.ProposedPriceCents = &priceCents
	stored.offer.Status = domain.StatusPendingClientApproval
	return stored.offer, nil
}

func (f *fakeRepo) Miss(ctx context.Context, offerID, professionalID uuid.UUID) (repository.Offer, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	stored, ok := f.offers[offerID]
	if !ok {
		return repository.Offer{}, apperr.NotFound("offer not found")
	}
	if stored.offer.ProfessionalID != professionalID {
		return repository.Offer{}, apperr.Forbidden("offer belongs to another professional")
	}
	if stored.offer.Status != domain.StatusOffered {
		return repository.Offer{}, apperr.InvalidTransition("offer is " + string(stored.offer.Status))
	}
	stored.offer.Status = domain.StatusMissed
	return stored.offer, nil
}

func (f *fakeRepo) Cancel(ctx context.Context, offerID uuid.UUID) (repository.Offer, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	stored, ok := f.offers[offerID]
	if !ok {
		return repository.Offer{}, apperr.NotFound("offer not found")
	}
	if !domain.Open(stored.offer.Status) {
		return repository.Offer{}, apperr.InvalidTransition("offer is " + string(stored.offer.Status))
	}
	stored.offer.Status = domain.StatusCancelled
	return stored.offer, nil
}

func (f *fakeRepo) CancelAllForRequest(ctx context.Context, requestID uuid.UUID) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	cancelled := 0
	for _, stored := range f.offers {
		if stored.offer.RequestID == requestID && domain.Open(stored.offer.Status) {
			stored.offer.Status = domain.StatusCancelled
			cancelled++
		}
	}
	return cancelled, nil
}

func (f *fakeRepo) ExpireOffers(ctx context.Context, now time.Time) ([]repository.ExpiredOffer, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	expired := make([]repository.ExpiredOffer, 0)
	for _, stored := range f.offers {
		if domain.Open(stored.offer.Status) && stored.expiresAt.Before(now) {
			stored.offer.Status = domain.StatusExpired
			expired = append(expired, repository.ExpiredOffer{
				ID:             stored.offer.ID,
				RequestID:      stored.offer.RequestID,
				ProfessionalID: stored.offer.ProfessionalID,
			})
		}
	}
	return expired, nil
}

// fakeFinder returns a fixed set of professionals.
type fakeFinder struct {
	professionals []uuid.UUID
}

func (f *fakeFinder) Find(ctx context.Context, categoryID uuid.UUID, minBalanceCents int64, limit int) ([]uuid.UUID, error) {
	if limit < len(f.professionals) {
		return f.professionals[:limit], nil
	}
	return f.professionals, nil
}

// stubWalletCfg toggles charging the proposed price.
type stubWalletCfg struct {
	chargeProposed bool
}

func (s stubWalletCfg) ChargeProposedPrice() bool { return s.chargeProposed }

// recordingBus captures published events synchronously.
type recordingBus struct {
	mu     sync.Mutex
	events []events.Event
}

func (b *recordingBus) Publish(ctx context.Context, event events.Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, event)
}

func (b *recordingBus) PublishSync(ctx context.Context, event events.Event) error {
	b.Publish(ctx, event)
	return nil
}

func (b *recordingBus) Subscribe(eventName string, handler events.Handler) {}

func (b *recordingBus) published() []events.Event {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]events.Event(nil), b.events...)
}

func newTestService(repo repository.Repository, finder EligibleProfessionalFinder, cfg WalletConfig, bus events.Bus) *Service {
	return New(repo, finder, cfg, bus, logger.New("development"))
}

func TestGetRejectsForeignOffer(t *testing.T) {
	repo := newFakeRepo()
	bus := &recordingBus{}
	svc := newTestService(repo, &fakeFinder{}, stubWalletCfg{}, bus)

	owner := uuid.New()
	offer := repository.Offer{
		ID:             uuid.New(),
		RequestID:      uuid.New(),
		ProfessionalID: owner,
		PriceCents:     2500,
		Status:         domain.StatusOffered,
	}
	repo.add(offer, uuid.New(), domain.WorkflowFirstClick, time.Now().Add(time.Hour))

	if _, err := svc.Get(context.Background(), offer.ID, uuid.New(), false); apperr.GetKind(err) != apperr.KindForbidden {
		t.Fatalf("kind = %v, want Forbidden", apperr.GetKind(err))
	}
	if _, err := svc.Get(context.Background(), offer.ID, uuid.New(), true); err != nil {
		t.Fatalf("admin read failed: %v", err)
	}
	if _, err := svc.Get(context.Background(), offer.ID, owner, false); err != nil {
		t.Fatalf("owner read failed: %v", err)
	}
}
