package service

import (
	"context"
	"sync"
	"testing"

	"leadmarket_backend/internal/events"
	"leadmarket_backend/internal/jobs/domain"
	"leadmarket_backend/internal/jobs/repository"
	"leadmarket_backend/platform/apperr"
	"leadmarket_backend/platform/logger"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// fakeRepo is an in-memory job store.
type fakeRepo struct {
	jobs map[uuid.UUID]*repository.Job
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{jobs: make(map[uuid.UUID]*repository.Job)}
}

func (f *fakeRepo) add(job repository.Job) {
	stored := job
	f.jobs[job.ID] = &stored
}

func (f *fakeRepo) CreateFromOfferTx(ctx context.Context, tx pgx.Tx, params repository.CreateFromOfferParams) (uuid.UUID, error) {
	for _, job := range f.jobs {
		if job.RequestID == params.RequestID {
			return uuid.Nil, apperr.Conflict("request already has a job")
		}
	}
	job := repository.Job{
		ID:             uuid.New(),
		RequestID:      params.RequestID,
		OfferID:        params.OfferID,
		ProfessionalID: params.ProfessionalID,
		ClientID:       params.ClientID,
		Status:         domain.StatusInProgress,
	}
	f.add(job)
	return job.ID, nil
}

func (f *fakeRepo) GetByID(ctx context.Context, id uuid.UUID) (repository.Job, error) {
	job, ok := f.jobs[id]
	if !ok {
		return repository.Job{}, apperr.NotFound("job not found")
	}
	return *job, nil
}

func (f *fakeRepo) ListByProfessional(ctx context.Context, params repository.ListByProfessionalParams) ([]repository.Job, int, error) {
	matched := make([]repository.Job, 0)
	for _, job := range f.jobs {
		if job.ProfessionalID != params.ProfessionalID {
			continue
		}
		if params.Status != nil && job.Status != *params.Status {
			continue
		}
		matched = append(matched, *job)
	}
	return matched, len(matched), nil
}

func (f *fakeRepo) Complete(ctx context.Context, id uuid.UUID) (repository.Job, error) {
	job, ok := f.jobs[id]
	if !ok {
		return repository.Job{}, apperr.NotFound("job not found")
	}
	switch job.Status {
	case domain.StatusInProgress:
		job.Status = domain.StatusDone
		return *job, nil
	case domain.StatusDone:
		return *job, nil
	default:
		return repository.Job{}, apperr.InvalidTransition("cannot complete job in status " + string(job.Status))
	}
}

func (f *fakeRepo) Cancel(ctx context.Context, id uuid.UUID, reason string) (repository.Job, error) {
	job, ok := f.jobs[id]
	if !ok {
		return repository.Job{}, apperr.NotFound("job not found")
	}
	if !domain.CanTransition(job.Status, domain.StatusCancelled) {
		return repository.Job{}, apperr.InvalidTransition("cannot move job from " + string(job.Status) + " to cancelled")
	}
	job.Status = domain.StatusCancelled
	job.CancelReason = &reason
	return *job, nil
}

func (f *fakeRepo) MarkNoShow(ctx context.Context, id uuid.UUID) (repository.Job, error) {
	job, ok := f.jobs[id]
	if !ok {
		return repository.Job{}, apperr.NotFound("job not found")
	}
	if job.Status != domain.StatusInProgress {
		return repository.Job{}, apperr.InvalidTransition("cannot move job from " + string(job.Status) + " to no_show")
	}
	job.Status = domain.StatusNoShow
	return *job, nil
}

// fakeCompleter records cascaded request completions.
type fakeCompleter struct {
	completed []uuid.UUID
	err       error
}

func (f *fakeCompleter) CompleteRequest(ctx context.Context, requestID uuid.UUID) error {
	if f.err != nil {
		return f.err
	}
	f.completed = append(f.completed, requestID)
	return nil
}

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

func seedJob(repo *fakeRepo, status domain.Status) repository.Job {
	job := repository.Job{
		ID:             uuid.New(),
		RequestID:      uuid.New(),
		OfferID:        uuid.New(),
		ProfessionalID: uuid.New(),
		ClientID:       uuid.New(),
		Status:         status,
	}
	repo.add(job)
	return job
}

func newTestService(repo repository.Repository, completer RequestCompleter, bus events.Bus) *Service {
	return New(repo, completer, bus, logger.New("development"))
}

func TestCompleteCascadesToRequest(t *testing.T) {
	repo := newFakeRepo()
	completer := &fakeCompleter{}
	bus := &recordingBus{}
	svc := newTestService(repo, completer, bus)

	job := seedJob(repo, domain.StatusInProgress)

	result, err := svc.Complete(context.Background(), job.ID, job.ProfessionalID, false)
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if result.Status != domain.StatusDone {
		t.Errorf("status = %s, want done", result.Status)
	}
	if len(completer.completed) != 1 || completer.completed[0] != job.RequestID {
		t.Errorf("cascaded completions = %v, want [%s]", completer.completed, job.RequestID)
	}

	published := bus.published()
	if len(published) != 1 {
		t.Fatalf("published %d events, want 1", len(published))
	}
	event, ok := published[0].(events.JobCompleted)
	if !ok {
		t.Fatalf("event = %T, want JobCompleted", published[0])
	}
	if event.JobID != job.ID || event.RequestID != job.RequestID {
		t.Errorf("completed event = %+v", event)
	}
}

func TestCompleteIdempotent(t *testing.T) {
	repo := newFakeRepo()
	completer := &fakeCompleter{}
	bus := &recordingBus{}
	svc := newTestService(repo, completer, bus)

	job := seedJob(repo, domain.StatusInProgress)

	if _, err := svc.Complete(context.Background(), job.ID, job.ProfessionalID, false); err != nil {
		t.Fatalf("first complete: %v", err)
	}
	result, err := svc.Complete(context.Background(), job.ID, job.ProfessionalID, false)
	if err != nil {
		t.Fatalf("second complete: %v", err)
	}
	if result.Status != domain.StatusDone {
		t.Errorf("status = %s, want done", result.Status)
	}
	if len(completer.completed) != 1 {
		t.Errorf("cascaded %d completions, want 1", len(completer.completed))
	}
	if len(bus.published()) != 1 {
		t.Errorf("published %d events, want 1", len(bus.published()))
	}
}

func TestCompleteForeignJob(t *testing.T) {
	repo := newFakeRepo()
	completer := &fakeCompleter{}
	bus := &recordingBus{}
	svc := newTestService(repo, completer, bus)

	job := seedJob(repo, domain.StatusInProgress)

	_, err := svc.Complete(context.Background(), job.ID, uuid.New(), false)
	if apperr.GetKind(err) != apperr.KindForbidden {
		t.Fatalf("kind = %v, want Forbidden", apperr.GetKind(err))
	}
	if len(completer.completed) != 0 {
		t.Error("request completed on forbidden call")
	}
}

func TestCompleteCancelledJob(t *testing.T) {
	repo := newFakeRepo()
	completer := &fakeCompleter{}
	bus := &recordingBus{}
	svc := newTestService(repo, completer, bus)

	job := seedJob(repo, domain.StatusCancelled)

	_, err := svc.Complete(context.Background(), job.ID, job.ProfessionalID, false)
	if apperr.GetKind(err) != apperr.KindInvalidTransition {
		t.Fatalf("kind = %v, want InvalidTransition", apperr.GetKind(err))
	}
}

func TestCancelRecordsReason(t *testing.T) {
	repo := newFakeRepo()
	completer := &fakeCompleter{}
	bus := &recordingBus{}
	svc := newTestService(repo, completer, bus)

	job := seedJob(repo, domain.StatusInProgress)

	result, err := svc.Cancel(context.Background(), job.ID, "client unreachable")
	if err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if result.Status != domain.StatusCancelled {
		t.Errorf("status = %s, want cancelled", result.Status)
	}
	if result.CancelReason == nil || *result.CancelReason != "client unreachable" {
		t.Errorf("cancel reason = %v", result.CancelReason)
	}
}

func TestCancelNoShowJob(t *testing.T) {
	repo := newFakeRepo()
	completer := &fakeCompleter{}
	bus := &recordingBus{}
	svc := newTestService(repo, completer, bus)

	job := seedJob(repo, domain.StatusNoShow)

	result, err := svc.Cancel(context.Background(), job.ID, "professional dispute resolved")
	if err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if result.Status != domain.StatusCancelled {
		t.Errorf("status = %s, want cancelled", result.Status)
	}
}

func TestCancelDoneJob(t *testing.T) {
	repo := newFakeRepo()
	completer := &fakeCompleter{}
	bus := &recordingBus{}
	svc := newTestService(repo, completer, bus)

	job := seedJob(repo, domain.StatusDone)

	_, err := svc.Cancel(context.Background(), job.ID, "too late")
	if apperr.GetKind(err) != apperr.KindInvalidTransition {
		t.Fatalf("kind = %v, want InvalidTransition", apperr.GetKind(err))
	}
}

func TestMarkNoShow(t *testing.T) {
	repo := newFakeRepo()
	completer := &fakeCompleter{}
	bus := &recordingBus{}
	svc := newTestService(repo, completer, bus)

	job := seedJob(repo, domain.StatusInProgress)

	result, err := svc.MarkNoShow(context.Background(), job.ID)
	if err != nil {
		t.Fatalf("no-show: %v", err)
	}
	if result.Status != domain.StatusNoShow {
		t.Errorf("status = %s, want no_show", result.Status)
	}
}

func TestGetRejectsForeignJob(t *testing.T) {
	repo := newFakeRepo()
	completer := &fakeCompleter{}
	bus := &recordingBus{}
	svc := newTestService(repo, completer, bus)

	job := seedJob(repo, domain.StatusInProgress)

	if _, err := svc.Get(context.Background(), job.ID, uuid.New(), false); apperr.GetKind(err) != apperr.KindForbidden {
		t.Fatalf("kind = %v, want Forbidden", apperr.GetKind(err))
	}
	if _, err := svc.Get(context.Background(), job.ID, uuid.New(), true); err != nil {
		t.Fatalf("admin read failed: %v", err)
	}
}
