package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"leadmarket_backend/internal/events"
	"leadmarket_backend/internal/requests/domain"
	"leadmarket_backend/internal/requests/repository"
	"leadmarket_backend/internal/requests/transport"
	"leadmarket_backend/platform/apperr"
	"leadmarket_backend/platform/logger"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type fakeRepo struct {
	requests map[uuid.UUID]*repository.Request
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{requests: make(map[uuid.UUID]*repository.Request)}
}

func (f *fakeRepo) add(request repository.Request) *repository.Request {
	stored := request
	f.requests[request.ID] = &stored
	return &stored
}

func (f *fakeRepo) Create(ctx context.Context, params repository.CreateRequestParams) (repository.Request, error) {
	request := repository.Request{
		ID:          uuid.New(),
		ClientID:    params.ClientID,
		CategoryID:  params.CategoryID,
		Description: params.Description,
		Status:      domain.StatusOpen,
	}
	f.add(request)
	return request, nil
}

func (f *fakeRepo) GetByID(ctx context.Context, id uuid.UUID) (repository.Request, error) {
	request, ok := f.requests[id]
	if !ok {
		return repository.Request{}, apperr.NotFound("request not found")
	}
	return *request, nil
}

func (f *fakeRepo) List(ctx context.Context, params repository.ListRequestsParams) ([]repository.Request, int, error) {
	matched := make([]repository.Request, 0)
	for _, request := range f.requests {
		if params.ClientID != nil && request.ClientID != *params.ClientID {
			continue
		}
		if params.Status != nil && request.Status != *params.Status {
			continue
		}
		matched = append(matched, *request)
	}
	return matched, len(matched), nil
}

func (f *fakeRepo) MarkBroadcasted(ctx context.Context, id uuid.UUID, expiresAt time.Time) (repository.Request, error) {
	request, ok := f.requests[id]
	if !ok {
		return repository.Request{}, apperr.NotFound("request not found")
	}
	if request.Status != domain.StatusOpen {
		return repository.Request{}, apperr.InvalidTransition("cannot broadcast")
	}
	request.Status = domain.StatusBroadcasted
	formatted := expiresAt.Format(time.RFC3339)
	request.ExpiresAt = &formatted
	return *request, nil
}

func (f *fakeRepo) Cancel(ctx context.Context, id uuid.UUID, reason string) (repository.Request, error) {
	request, ok := f.requests[id]
	if !ok {
		return repository.Request{}, apperr.NotFound("request not found")
	}
	if !domain.Cancellable(request.Status) {
		return repository.Request{}, apperr.InvalidTransition("cannot cancel")
	}
	request.Status = domain.StatusCancelled
	request.CancelReason = &reason
	return *request, nil
}

func (f *fakeRepo) Assign(ctx context.Context, id uuid.UUID) (repository.Request, error) {
	request, ok := f.requests[id]
	if !ok {
		return repository.Request{}, apperr.NotFound("request not found")
	}
	if request.Status != domain.StatusBroadcasted {
		return repository.Request{}, apperr.InvalidTransition("cannot assign")
	}
	request.Status = domain.StatusAssigned
	return *request, nil
}

func (f *fakeRepo) AssignTx(ctx context.Context, tx pgx.Tx, id uuid.UUID) error {
	_, err := f.Assign(ctx, id)
	return err
}

func (f *fakeRepo) Complete(ctx context.Context, id uuid.UUID) (repository.Request, error) {
	request, ok := f.requests[id]
	if !ok {
		return repository.Request{}, apperr.NotFound("request not found")
	}
	if request.Status == domain.StatusDone {
		return *request, nil
	}
	if request.Status != domain.StatusAssigned {
		return repository.Request{}, apperr.InvalidTransition("cannot complete")
	}
	request.Status = domain.StatusDone
	return *request, nil
}

func (f *fakeRepo) ExpireStale(ctx context.Context, now time.Time, openMaxAge time.Duration) ([]repository.ExpiredRequest, error) {
	expired := make([]repository.ExpiredRequest, 0)
	for _, request := range f.requests {
		if request.Status != domain.StatusOpen && request.Status != domain.StatusBroadcasted {
			continue
		}
		entry := repository.ExpiredRequest{ID: request.ID, ClientID: request.ClientID, OldStatus: request.Status}
		request.Status = domain.StatusExpired
		expired = append(expired, entry)
	}
	return expired, nil
}

type fakeResolver struct {
	policy DispatchPolicy
	err    error
}

func (f *fakeResolver) Resolve(ctx context.Context, categoryID uuid.UUID) (DispatchPolicy, error) {
	if f.err != nil {
		return DispatchPolicy{}, f.err
	}
	return f.policy, nil
}

type fakeDispatcher struct {
	count    int
	commands []DispatchCommand
}

func (f *fakeDispatcher) Dispatch(ctx context.Context, cmd DispatchCommand) (int, error) {
	f.commands = append(f.commands, cmd)
	return f.count, nil
}

type fakeCanceller struct {
	cancelled map[uuid.UUID]int
}

func (f *fakeCanceller) CancelAllForRequest(ctx context.Context, requestID uuid.UUID) (int, error) {
	if f.cancelled == nil {
		f.cancelled = make(map[uuid.UUID]int)
	}
	f.cancelled[requestID] = 3
	return 3, nil
}

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

type stubSweepConfig struct{}

func (stubSweepConfig) GetOpenRequestMaxAge() time.Duration { return 24 * time.Hour }

func newTestService(repo repository.Repository, resolver PolicyResolver, dispatcher OfferDispatcher, canceller OfferCanceller, bus events.Bus) *Service {
	svc := New(repo, resolver, stubSweepConfig{}, bus, logger.New("development"))
	svc.SetDispatcher(dispatcher)
	svc.SetCanceller(canceller)
	return svc
}

func defaultPolicy() DispatchPolicy {
	return DispatchPolicy{
		Workflow:      "first_click",
		LeadCostCents: 2500,
		MatchLimit:    5,
		RequestWindow: 5 * time.Minute,
		OfferWindow:   2 * time.Minute,
	}
}

func TestBroadcastDispatchesAndPublishes(t *testing.T) {
	repo := newFakeRepo()
	dispatcher := &fakeDispatcher{count: 4}
	bus := &recordingBus{}
	svc := newTestService(repo, &fakeResolver{policy: defaultPolicy()}, dispatcher, &fakeCanceller{}, bus)

	request, err := svc.Submit(context.Background(), uuid.New(), transport.SubmitRequestRequest{
		CategoryID:  uuid.New(),
		Description: "replace broken boiler in basement",
	})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}

	updated, err := svc.Broadcast(context.Background(), request.ID)
	if err != nil {
		t.Fatalf("broadcast: %v", err)
	}
	if updated.Status != domain.StatusBroadcasted {
		t.Errorf("status = %s, want broadcasted", updated.Status)
	}
	if len(dispatcher.commands) != 1 {
		t.Fatalf("dispatch called %d times, want 1", len(dispatcher.commands))
	}
	cmd := dispatcher.commands[0]
	if cmd.LeadCostCents != 2500 || cmd.MatchLimit != 5 || cmd.OfferWindow != 2*time.Minute {
		t.Errorf("dispatch command = %+v", cmd)
	}

	published := bus.published()
	if len(published) != 1 {
		t.Fatalf("published %d events, want 1", len(published))
	}
	event, ok := published[0].(events.RequestBroadcasted)
	if !ok {
		t.Fatalf("event = %T, want RequestBroadcasted", published[0])
	}
	if event.OfferCount != 4 {
		t.Errorf("offer count = %d, want 4", event.OfferCount)
	}
}

func TestBroadcastTwiceFails(t *testing.T) {
	repo := newFakeRepo()
	bus := &recordingBus{}
	svc := newTestService(repo, &fakeResolver{policy: defaultPolicy()}, &fakeDispatcher{}, &fakeCanceller{}, bus)

	request, err := svc.Submit(context.Background(), uuid.New(), transport.SubmitRequestRequest{
		CategoryID:  uuid.New(),
		Description: "install heat pump in attic space",
	})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}

	if _, err := svc.Broadcast(context.Background(), request.ID); err != nil {
		t.Fatalf("first broadcast: %v", err)
	}
	if _, err := svc.Broadcast(context.Background(), request.ID); apperr.GetKind(err) != apperr.KindInvalidTransition {
		t.Fatalf("kind = %v, want InvalidTransition", apperr.GetKind(err))
	}
}

func TestCancelEnforcesOwnershipAndCascades(t *testing.T) {
	repo := newFakeRepo()
	canceller := &fakeCanceller{}
	bus := &recordingBus{}
	svc := newTestService(repo, &fakeResolver{policy: defaultPolicy()}, &fakeDispatcher{}, canceller, bus)

	clientID := uuid.New()
	request := repository.Request{ID: uuid.New(), ClientID: clientID, Status: domain.StatusBroadcasted}
	repo.add(request)

	if _, err := svc.Cancel(context.Background(), request.ID, uuid.New(), "changed my mind", false); apperr.GetKind(err) != apperr.KindForbidden {
		t.Fatalf("kind = %v, want Forbidden", apperr.GetKind(err))
	}

	cancelled, err := svc.Cancel(context.Background(), request.ID, clientID, "changed my mind", false)
	if err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if cancelled.Status != domain.StatusCancelled {
		t.Errorf("status = %s, want cancelled", cancelled.Status)
	}
	if canceller.cancelled[request.ID] != 3 {
		t.Error("outstanding offers not cancelled")
	}

	published := bus.published()
	if len(published) != 1 {
		t.Fatalf("published %d events, want 1", len(published))
	}
	event, ok := published[0].(events.RequestCancelled)
	if !ok {
		t.Fatalf("event = %T, want RequestCancelled", published[0])
	}
	if event.CancelledOffers != 3 {
		t.Errorf("cancelled offers = %d, want 3", event.CancelledOffers)
	}
}

func TestCompleteIsIdempotent(t *testing.T) {
	repo := newFakeRepo()
	bus := &recordingBus{}
	svc := newTestService(repo, &fakeResolver{policy: defaultPolicy()}, &fakeDispatcher{}, &fakeCanceller{}, bus)

	request := repository.Request{ID: uuid.New(), ClientID: uuid.New(), Status: domain.StatusAssigned}
	repo.add(request)

	first, err := svc.Complete(context.Background(), request.ID)
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if first.Status != domain.StatusDone {
		t.Errorf("status = %s, want done", first.Status)
	}

	second, err := svc.Complete(context.Background(), request.ID)
	if err != nil {
		t.Fatalf("repeat complete: %v", err)
	}
	if second.Status != domain.StatusDone {
		t.Errorf("repeat status = %s, want done", second.Status)
	}
}

func TestExpireRequestsCascadesAndPublishes(t *testing.T) {
	repo := newFakeRepo()
	canceller := &fakeCanceller{}
	bus := &recordingBus{}
	svc := newTestService(repo, &fakeResolver{policy: defaultPolicy()}, &fakeDispatcher{}, canceller, bus)

	open := repository.Request{ID: uuid.New(), ClientID: uuid.New(), Status: domain.StatusOpen}
	broadcasted := repository.Request{ID: uuid.New(), ClientID: uuid.New(), Status: domain.StatusBroadcasted}
	done := repository.Request{ID: uuid.New(), ClientID: uuid.New(), Status: domain.StatusDone}
	repo.add(open)
	repo.add(broadcasted)
	repo.add(done)

	count, err := svc.ExpireRequests(context.Background())
	if err != nil {
		t.Fatalf("expire: %v", err)
	}
	if count != 2 {
		t.Errorf("expired %d, want 2", count)
	}
	if _, ok := canceller.cancelled[broadcasted.ID]; !ok {
		t.Error("broadcasted request's offers not cancelled")
	}
	if _, ok := canceller.cancelled[open.ID]; ok {
		t.Error("open request should not cascade offer cancellation")
	}
	if len(bus.published()) != 2 {
		t.Errorf("published %d events, want 2", len(bus.published()))
	}

	// Second sweep is a no-op.
	count, err = svc.ExpireRequests(context.Background())
	if err != nil {
		t.Fatalf("repeat expire: %v", err)
	}
	if count != 0 {
		t.Errorf("repeat sweep expired %d, want 0", count)
	}
}
