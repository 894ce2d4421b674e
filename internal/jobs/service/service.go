// Package service implements job lifecycle use cases.
package service

import (
	"context"

	"leadmarket_backend/internal/events"
	"leadmarket_backend/internal/jobs/domain"
	"leadmarket_backend/internal/jobs/repository"
	"leadmarket_backend/internal/jobs/transport"
	"leadmarket_backend/platform/apperr"
	"leadmarket_backend/platform/logger"

	"github.com/google/uuid"
)

const defaultPageSize = 25

// RequestCompleter marks the originating request done when its job is.
type RequestCompleter interface {
	CompleteRequest(ctx context.Context, requestID uuid.UUID) error
}

// Service implements job use cases.
type Service struct {
	repo      repository.Repository
	completer RequestCompleter
	bus       events.Bus
	log       *logger.Logger
}

// New creates a jobs service.
func New(repo repository.Repository, completer RequestCompleter, bus events.Bus, log *logger.Logger) *Service {
	return &Service{repo: repo, completer: completer, bus: bus, log: log}
}

// Get returns a job visible to the calling professional.
func (s *Service) Get(ctx context.Context, jobID, callerID uuid.UUID, admin bool) (repository.Job, error) {
	job, err := s.repo.GetByID(ctx, jobID)
	if err != nil {
		return repository.Job{}, err
	}
	if !admin && job.ProfessionalID != callerID {
		return repository.Job{}, apperr.Forbidden("job belongs to another professional")
	}
	return job, nil
}

// List returns a professional's paged jobs.
func (s *Service) List(ctx context.Context, professionalID uuid.UUID, req transport.ListJobsRequest) (transport.ListJobsResponse, error) {
	limit := req.Limit
	if limit <= 0 {
		limit = defaultPageSize
	}

	var status *domain.Status
	if req.Status != "" {
		parsed := domain.Status(req.Status)
		status = &parsed
	}

	jobs, total, err := s.repo.ListByProfessional(ctx, repository.ListByProfessionalParams{
		ProfessionalID: professionalID,
		Status:         status,
		Limit:          limit,
		Offset:         req.Offset,
	})
	if err != nil {
		return transport.ListJobsResponse{}, err
	}

	return transport.ListJobsResponse{
		Jobs:   jobs,
		Total:  total,
		Limit:  limit,
		Offset: req.Offset,
	}, nil
}

// Complete marks a job done and cascades completion to its request.
// Re-completing a done job is a no-op.
func (s *Service) Complete(ctx context.Context, jobID, callerID uuid.UUID, admin bool) (repository.Job, error) {
	current, err := s.repo.GetByID(ctx, jobID)
	if err != nil {
		return repository.Job{}, err
	}
	if !admin && current.ProfessionalID != callerID {
		return repository.Job{}, apperr.Forbidden("job belongs to another professional")
	}

	alreadyDone := current.Status == domain.StatusDone

	job, err := s.repo.Complete(ctx, jobID)
	if err != nil {
		return repository.Job{}, err
	}
	if alreadyDone {
		return job, nil
	}

	if err := s.completer.CompleteRequest(ctx, job.RequestID); err != nil {
		s.log.Error("failed to complete request for job", "jobId", jobID, "requestId", job.RequestID, "error", err)
	}

	s.log.StateTransition("job", jobID.String(), string(domain.StatusInProgress), string(domain.StatusDone))
	s.bus.Publish(ctx, events.JobCompleted{
		BaseEvent:      events.NewBaseEvent(),
		JobID:          job.ID,
		RequestID:      job.RequestID,
		ProfessionalID: job.ProfessionalID,
		ClientID:       job.ClientID,
	})
	return job, nil
}

// Cancel withdraws a job that is not done yet. Administrative.
func (s *Service) Cancel(ctx context.Context, jobID uuid.UUID, reason string) (repository.Job, error) {
	current, err := s.repo.GetByID(ctx, jobID)
	if err != nil {
		return repository.Job{}, err
	}

	job, err := s.repo.Cancel(ctx, jobID, reason)
	if err != nil {
		return repository.Job{}, err
	}
	s.log.StateTransition("job", jobID.String(), string(current.Status), string(domain.StatusCancelled))
	return job, nil
}

// MarkNoShow records that the professional never turned up. Administrative.
func (s *Service) MarkNoShow(ctx context.Context, jobID uuid.UUID) (repository.Job, error) {
	job, err := s.repo.MarkNoShow(ctx, jobID)
	if err != nil {
		return repository.Job{}, err
	}
	s.log.StateTransition("job", jobID.String(), string(domain.StatusInProgress), string(domain.StatusNoShow))
	return job, nil
}
