// Package service implements the customer request lifecycle.
package service

import (
	"context"
	"time"

	"leadmarket_backend/internal/events"
	"leadmarket_backend/internal/requests/domain"
	"leadmarket_backend/internal/requests/repository"
	"leadmarket_backend/internal/requests/transport"
	"leadmarket_backend/platform/apperr"
	"leadmarket_backend/platform/logger"

	"github.com/google/uuid"
)

const defaultPageSize = 25

// DispatchPolicy is the category configuration resolved for a broadcast.
type DispatchPolicy struct {
	Workflow      string
	LeadCostCents int64
	MatchLimit    int
	RequestWindow time.Duration
	OfferWindow   time.Duration
}

// PolicyResolver resolves a category's dispatch policy. Inactive or unknown
// categories resolve to an error.
type PolicyResolver interface {
	Resolve(ctx context.Context, categoryID uuid.UUID) (DispatchPolicy, error)
}

// DispatchCommand asks the offer engine to create offers for a request.
type DispatchCommand struct {
	RequestID     uuid.UUID
	CategoryID    uuid.UUID
	LeadCostCents int64
	MatchLimit    int
	OfferWindow   time.Duration
}

// OfferDispatcher creates offers for a broadcasted request and returns the
// number created. Zero is a valid outcome.
type OfferDispatcher interface {
	Dispatch(ctx context.Context, cmd DispatchCommand) (int, error)
}

// OfferCanceller bulk-cancels the outstanding offers of a request.
type OfferCanceller interface {
	CancelAllForRequest(ctx context.Context, requestID uuid.UUID) (int, error)
}

// SweepConfig provides the sweeper's age limit for OPEN requests.
type SweepConfig interface {
	GetOpenRequestMaxAge() time.Duration
}

// Service implements request lifecycle use cases.
type Service struct {
	repo       repository.Repository
	policies   PolicyResolver
	dispatcher OfferDispatcher
	canceller  OfferCanceller
	sweepCfg   SweepConfig
	bus        events.Bus
	log        *logger.Logger
}

// New creates a requests service. The dispatcher and canceller ports are set
// later by the composition root to break the requests/offers cycle.
func New(repo repository.Repository, policies PolicyResolver, sweepCfg SweepConfig, bus events.Bus, log *logger.Logger) *Service {
	return &Service{repo: repo, policies: policies, sweepCfg: sweepCfg, bus: bus, log: log}
}

// SetDispatcher wires the offer dispatch port.
func (s *Service) SetDispatcher(dispatcher OfferDispatcher) {
	s.dispatcher = dispatcher
}

// SetCanceller wires the offer cancellation port.
func (s *Service) SetCanceller(canceller OfferCanceller) {
	s.canceller = canceller
}

// Submit creates a request in the OPEN state after checking the category.
func (s *Service) Submit(ctx context.Context, clientID uuid.UUID, req transport.SubmitRequestRequest) (repository.Request, error) {
	if _, err := s.policies.Resolve(ctx, req.CategoryID); err != nil {
		return repository.Request{}, err
	}

	request, err := s.repo.Create(ctx, repository.CreateRequestParams{
		ClientID:    clientID,
		CategoryID:  req.CategoryID,
		Description: req.Description,
	})
	if err != nil {
		return repository.Request{}, err
	}

	s.log.Info("request submitted", "requestId", request.ID, "categoryId", request.CategoryID)
	return request, nil
}

// Broadcast dispatches a request to eligible professionals. The request is
// flipped to BROADCASTED first; a dispatch that then creates zero offers
// leaves the request to the sweeper.
func (s *Service) Broadcast(ctx context.Context, id uuid.UUID) (repository.Request, error) {
	request, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return repository.Request{}, err
	}

	policy, err := s.policies.Resolve(ctx, request.CategoryID)
	if err != nil {
		return repository.Request{}, err
	}

	expiresAt := time.Now().Add(policy.RequestWindow)
	request, err = s.repo.MarkBroadcasted(ctx, id, expiresAt)
	if err != nil {
		return repository.Request{}, err
	}
	s.log.StateTransition("request", id.String(), string(domain.StatusOpen), string(domain.StatusBroadcasted))

	offerCount, err := s.dispatcher.Dispatch(ctx, DispatchCommand{
		RequestID:     request.ID,
		CategoryID:    request.CategoryID,
		LeadCostCents: policy.LeadCostCents,
		MatchLimit:    policy.MatchLimit,
		OfferWindow:   policy.OfferWindow,
	})
	if err != nil {
		return repository.Request{}, err
	}

	s.bus.Publish(ctx, events.RequestBroadcasted{
		BaseEvent:  events.NewBaseEvent(),
		RequestID:  request.ID,
		CategoryID: request.CategoryID,
		Workflow:   policy.Workflow,
		OfferCount: offerCount,
		ExpiresAt:  expiresAt,
	})

	return request, nil
}

// Cancel withdraws a request on behalf of its client and cancels any
// outstanding offers.
func (s *Service) Cancel(ctx context.Context, id, callerID uuid.UUID, reason string, admin bool) (repository.Request, error) {
	request, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return repository.Request{}, err
	}
	if !admin && request.ClientID != callerID {
		return repository.Request{}, apperr.Forbidden("request belongs to another client")
	}

	request, err = s.repo.Cancel(ctx, id, reason)
	if err != nil {
		return repository.Request{}, err
	}

	cancelled, err := s.canceller.CancelAllForRequest(ctx, id)
	if err != nil {
		s.log.Error("cancel outstanding offers", "requestId", id, "error", err)
	}

	s.bus.Publish(ctx, events.RequestCancelled{
		BaseEvent:       events.NewBaseEvent(),
		RequestID:       request.ID,
		ClientID:        request.ClientID,
		Reason:          reason,
		CancelledOffers: cancelled,
	})

	return request, nil
}

// Assign flips a broadcasted request to assigned. The accept path assigns
// inside its own transaction; this is the standalone administrative variant.
func (s *Service) Assign(ctx context.Context, id uuid.UUID) (repository.Request, error) {
	request, err := s.repo.Assign(ctx, id)
	if err != nil {
		return repository.Request{}, err
	}
	s.log.StateTransition("request", id.String(), string(domain.StatusBroadcasted), string(domain.StatusAssigned))
	return request, nil
}

// Complete marks an assigned request done. Idempotent.
func (s *Service) Complete(ctx context.Context, id uuid.UUID) (repository.Request, error) {
	return s.repo.Complete(ctx, id)
}

// Get fetches a request, enforcing client ownership unless admin.
func (s *Service) Get(ctx context.Context, id, callerID uuid.UUID, admin bool) (repository.Request, error) {
	request, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return repository.Request{}, err
	}
	if !admin && request.ClientID != callerID {
		return repository.Request{}, apperr.Forbidden("request belongs to another client")
	}
	return request, nil
}

// List returns a paged request listing.
func (s *Service) List(ctx context.Context, req transport.ListRequestsRequest, clientID *uuid.UUID) (transport.ListRequestsResponse, error) {
	limit := req.Limit
	if limit <= 0 {
		limit = defaultPageSize
	}

	var status *domain.Status
	if req.Status != "" {
		parsed := domain.Status(req.Status)
		status = &parsed
	}

	requests, total, err := s.repo.List(ctx, repository.ListRequestsParams{
		ClientID: clientID,
		Status:   status,
		Limit:    limit,
		Offset:   req.Offset,
	})
	if err != nil {
		return transport.ListRequestsResponse{}, err
	}

	return transport.ListRequestsResponse{
		Requests: requests,
		Total:    total,
		Limit:    limit,
		Offset:   req.Offset,
	}, nil
}

// ExpireRequests sweeps stale requests and cascades offer cancellation.
// Safe to re-run; already-swept rows are untouched.
func (s *Service) ExpireRequests(ctx context.Context) (int, error) {
	expired, err := s.repo.ExpireStale(ctx, time.Now(), s.sweepCfg.GetOpenRequestMaxAge())
	if err != nil {
		return 0, err
	}

	for _, entry := range expired {
		if entry.OldStatus == domain.StatusBroadcasted {
			if _, err := s.canceller.CancelAllForRequest(ctx, entry.ID); err != nil {
				s.log.Error("cancel offers of expired request", "requestId", entry.ID, "error", err)
			}
		}
		s.bus.Publish(ctx, events.RequestExpired{
			BaseEvent: events.NewBaseEvent(),
			RequestID: entry.ID,
			ClientID:  entry.ClientID,
			OldStatus: string(entry.OldStatus),
		})
	}

	s.log.SweepResult("requests", len(expired))
	return len(expired), nil
}
