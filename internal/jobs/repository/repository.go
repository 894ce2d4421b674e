package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"leadmarket_backend/internal/jobs/domain"
	"leadmarket_backend/platform/apperr"
)

const (
	jobNotFoundMessage  = "job not found"
	uniqueViolationCode = "23505"
	jobColumns          = `id, request_id, offer_id, professional_id, client_id, status, cancel_reason, started_at, done_at, created_at, updated_at`
)

// Repo implements the jobs repository.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new jobs repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

var _ Repository = (*Repo)(nil)

// CreateFromOfferTx inserts the job of an accepted offer inside the caller's
// transaction and returns its ID.
func (r *Repo) CreateFromOfferTx(ctx context.Context, tx pgx.Tx, params CreateFromOfferParams) (uuid.UUID, error) {
	var id uuid.UUID
	err := tx.QueryRow(ctx, `
		INSERT INTO jobs (request_id, offer_id, professional_id, client_id)
		VALUES ($1, $2, $3, $4)
		RETURNING id`,
		params.RequestID, params.OfferID, params.ProfessionalID, params.ClientID,
	).Scan(&id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode {
			return uuid.Nil, apperr.Conflict("request already has a job")
		}
		return uuid.Nil, fmt.Errorf("create job in tx: %w", err)
	}
	return id, nil
}

// GetByID fetches a job by ID.
func (r *Repo) GetByID(ctx context.Context, id uuid.UUID) (Job, error) {
	query := `SELECT ` + jobColumns + ` FROM jobs WHERE id = $1`

	row := r.pool.QueryRow(ctx, query, id)
	job, err := scanJob(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Job{}, apperr.NotFound(jobNotFoundMessage)
		}
		return Job{}, fmt.Errorf("get job: %w", err)
	}
	return job, nil
}

// ListByProfessional returns a professional's jobs with an optional status
// filter, newest first.
func (r *Repo) ListByProfessional(ctx context.Context, params ListByProfessionalParams) ([]Job, int, error) {
	where := `WHERE professional_id = $1 AND ($2::text IS NULL OR status = $2)`

	var total int
	if err := r.pool.QueryRow(ctx,
		`SELECT count(*) FROM jobs `+where, params.ProfessionalID, params.Status,
	).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count jobs: %w", err)
	}

	query := `
		SELECT ` + jobColumns + `
		FROM jobs ` + where + `
		ORDER BY created_at DESC
		LIMIT $3 OFFSET $4`

	rows, err := r.pool.Query(ctx, query, params.ProfessionalID, params.Status, params.Limit, params.Offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list jobs: %w", err)
	}
	defer rows.Close()

	jobs := make([]Job, 0)
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan job: %w", err)
		}
		jobs = append(jobs, job)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("list jobs: %w", err)
	}

	return jobs, total, nil
}

// Complete flips an IN_PROGRESS job to DONE. Re-completing a DONE job
// returns the current row unchanged.
func (r *Repo) Complete(ctx context.Context, id uuid.UUID) (Job, error) {
	query := `
		UPDATE jobs
		SET status = $2, done_at = now(), updated_at = now()
		WHERE id = $1 AND status = $3
		RETURNING ` + jobColumns

	row := r.pool.QueryRow(ctx, query, id, domain.StatusDone, domain.StatusInProgress)
	job, err := scanJob(row)
	if err == nil {
		return job, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return Job{}, fmt.Errorf("complete job: %w", err)
	}

	current, getErr := r.GetByID(ctx, id)
	if getErr != nil {
		return Job{}, getErr
	}
	if current.Status == domain.StatusDone {
		return current, nil
	}
	return Job{}, apperr.InvalidTransition(fmt.Sprintf("cannot complete job in status %s", current.Status))
}

// Cancel flips any non-final job to CANCELLED.
func (r *Repo) Cancel(ctx context.Context, id uuid.UUID, reason string) (Job, error) {
	query := `
		UPDATE jobs
		SET status = $2, cancel_reason = $3, updated_at = now()
		WHERE id = $1 AND status IN ($4, $5)
		RETURNING ` + jobColumns

	row := r.pool.QueryRow(ctx, query, id, domain.StatusCancelled, reason,
		domain.StatusInProgress, domain.StatusNoShow)
	job, err := scanJob(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Job{}, r.transitionError(ctx, id, domain.StatusCancelled)
		}
		return Job{}, fmt.Errorf("cancel job: %w", err)
	}
	return job, nil
}

// MarkNoShow flips an IN_PROGRESS job to NO_SHOW.
func (r *Repo) MarkNoShow(ctx context.Context, id uuid.UUID) (Job, error) {
	query := `
		UPDATE jobs
		SET status = $2, updated_at = now()
		WHERE id = $1 AND status = $3
		RETURNING ` + jobColumns

	row := r.pool.QueryRow(ctx, query, id, domain.StatusNoShow, domain.StatusInProgress)
	job, err := scanJob(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Job{}, r.transitionError(ctx, id, domain.StatusNoShow)
		}
		return Job{}, fmt.Errorf("mark job no-show: %w", err)
	}
	return job, nil
}

// transitionError distinguishes a missing job from one in the wrong state.
func (r *Repo) transitionError(ctx context.Context, id uuid.UUID, target domain.Status) error {
	current, err := r.GetByID(ctx, id)
	if err != nil {
		return err
	}
	return apperr.InvalidTransition(fmt.Sprintf("cannot move job from %s to %s", current.Status, target))
}

func scanJob(row pgx.Row) (Job, error) {
	var job Job
	var doneAt *time.Time
	var startedAt, createdAt, updatedAt time.Time
	if err := row.Scan(
		&job.ID, &job.RequestID, &job.OfferID, &job.ProfessionalID, &job.ClientID,
		&job.Status, &job.CancelReason, &startedAt, &doneAt, &createdAt, &updatedAt,
	); err != nil {
		return Job{}, err
	}
	job.StartedAt = startedAt.Format(time.RFC3339)
	if doneAt != nil {
		formatted := doneAt.Format(time.RFC3339)
		job.DoneAt = &formatted
	}
	job.CreatedAt = createdAt.Format(time.RFC3339)
	job.UpdatedAt = updatedAt.Format(time.RFC3339)
	return job, nil
}
