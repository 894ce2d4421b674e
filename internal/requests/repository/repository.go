package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"leadmarket_backend/internal/requests/domain"
	"leadmarket_backend/platform/apperr"
)

const (
	requestNotFoundMessage = "request not found"
	requestColumns         = `id, client_id, category_id, description, status, cancel_reason, broadcasted_at, expires_at, created_at, updated_at`
)

// Repo implements the requests repository.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new requests repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

var _ Repository = (*Repo)(nil)

// Create inserts a request in the OPEN state.
func (r *Repo) Create(ctx context.Context, params CreateRequestParams) (Request, error) {
	query := `
		INSERT INTO customer_requests (client_id, category_id, description)
		VALUES ($1, $2, $3)
		RETURNING ` + requestColumns

	row := r.pool.QueryRow(ctx, query, params.ClientID, params.CategoryID, params.Description)
	request, err := scanRequest(row)
	if err != nil {
		return Request{}, fmt.Errorf("create request: %w", err)
	}
	return request, nil
}

// GetByID fetches a request by ID.
func (r *Repo) GetByID(ctx context.Context, id uuid.UUID) (Request, error) {
	query := `SELECT ` + requestColumns + ` FROM customer_requests WHERE id = $1`

	row := r.pool.QueryRow(ctx, query, id)
	request, err := scanRequest(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Request{}, apperr.NotFound(requestNotFoundMessage)
		}
		return Request{}, fmt.Errorf("get request: %w", err)
	}
	return request, nil
}

// List returns requests with optional client and status filters.
func (r *Repo) List(ctx context.Context, params ListRequestsParams) ([]Request, int, error) {
	where := `WHERE ($1::uuid IS NULL OR client_id = $1) AND ($2::text IS NULL OR status = $2)`

	var total int
	if err := r.pool.QueryRow(ctx,
		`SELECT count(*) FROM customer_requests `+where, params.ClientID, params.Status,
	).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count requests: %w", err)
	}

	query := `
		SELECT ` + requestColumns + `
		FROM customer_requests ` + where + `
		ORDER BY created_at DESC
		LIMIT $3 OFFSET $4`

	rows, err := r.pool.Query(ctx, query, params.ClientID, params.Status, params.Limit, params.Offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list requests: %w", err)
	}
	defer rows.Close()

	requests := make([]Request, 0)
	for rows.Next() {
		request, err := scanRequest(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan request: %w", err)
		}
		requests = append(requests, request)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("list requests: %w", err)
	}

	return requests, total, nil
}

// MarkBroadcasted flips an OPEN request to BROADCASTED. The conditional
// update makes concurrent broadcasts race-safe: one wins, the rest see
// InvalidTransition.
func (r *Repo) MarkBroadcasted(ctx context.Context, id uuid.UUID, expiresAt time.Time) (Request, error) {
	query := `
		UPDATE customer_requests
		SET status = $2, broadcasted_at = now(), expires_at = $3, updated_at = now()
		WHERE id = $1 AND status = $4
		RETURNING ` + requestColumns

	row := r.pool.QueryRow(ctx, query, id, domain.StatusBroadcasted, expiresAt, domain.StatusOpen)
	request, err := scanRequest(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Request{}, r.transitionError(ctx, id, domain.StatusBroadcasted)
		}
		return Request{}, fmt.Errorf("mark request broadcasted: %w", err)
	}
	return request, nil
}

// Cancel withdraws an OPEN or BROADCASTED request.
func (r *Repo) Cancel(ctx context.Context, id uuid.UUID, reason string) (Request, error) {
	query := `
		UPDATE customer_requests
		SET status = $2, cancel_reason = $3, updated_at = now()
		WHERE id = $1 AND status IN ($4, $5)
		RETURNING ` + requestColumns

	row := r.pool.QueryRow(ctx, query, id, domain.StatusCancelled, reason, domain.StatusOpen, domain.StatusBroadcasted)
	request, err := scanRequest(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Request{}, r.transitionError(ctx, id, domain.StatusCancelled)
		}
		return Request{}, fmt.Errorf("cancel request: %w", err)
	}
	return request, nil
}

// Assign flips a BROADCASTED request to ASSIGNED.
func (r *Repo) Assign(ctx context.Context, id uuid.UUID) (Request, error) {
	query := `
		UPDATE customer_requests
		SET status = $2, updated_at = now()
		WHERE id = $1 AND status = $3
		RETURNING ` + requestColumns

	row := r.pool.QueryRow(ctx, query, id, domain.StatusAssigned, domain.StatusBroadcasted)
	request, err := scanRequest(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Request{}, r.transitionError(ctx, id, domain.StatusAssigned)
		}
		return Request{}, fmt.Errorf("assign request: %w", err)
	}
	return request, nil
}

// AssignTx assigns a request inside a caller-owned transaction. Any failure
// maps to Conflict so the enclosing accept transaction rolls back cleanly.
func (r *Repo) AssignTx(ctx context.Context, tx pgx.Tx, id uuid.UUID) error {
	result, err := tx.Exec(ctx, `
		UPDATE customer_requests
		SET status = $2, updated_at = now()
		WHERE id = $1 AND status = $3`,
		id, domain.StatusAssigned, domain.StatusBroadcasted)
	if err != nil {
		return fmt.Errorf("assign request in tx: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperr.Conflict("request is no longer open for assignment")
	}
	return nil
}

// Complete flips an ASSIGNED request to DONE. Re-completing a DONE request
// returns the current row unchanged.
func (r *Repo) Complete(ctx context.Context, id uuid.UUID) (Request, error) {
	query := `
		UPDATE customer_requests
		SET status = $2, updated_at = now()
		WHERE id = $1 AND status = $3
		RETURNING ` + requestColumns

	row := r.pool.QueryRow(ctx, query, id, domain.StatusDone, domain.StatusAssigned)
	request, err := scanRequest(row)
	if err == nil {
		return request, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return Request{}, fmt.Errorf("complete request: %w", err)
	}

	current, getErr := r.GetByID(ctx, id)
	if getErr != nil {
		return Request{}, getErr
	}
	if current.Status == domain.StatusDone {
		return current, nil
	}
	return Request{}, apperr.InvalidTransition(fmt.Sprintf("cannot complete request in status %s", current.Status))
}

// ExpireStale sweeps stale OPEN and BROADCASTED requests. Both updates are
// conditional on the current status and deadline, so re-running over
// already-swept rows changes nothing.
func (r *Repo) ExpireStale(ctx context.Context, now time.Time, openMaxAge time.Duration) ([]ExpiredRequest, error) {
	expired := make([]ExpiredRequest, 0)

	openCutoff := now.Add(-openMaxAge)
	openRows, err := r.pool.Query(ctx, `
		UPDATE customer_requests
		SET status = $1, updated_at = now()
		WHERE status = $2 AND created_at < $3
		RETURNING id, client_id`,
		domain.StatusExpired, domain.StatusOpen, openCutoff)
	if err != nil {
		return nil, fmt.Errorf("expire open requests: %w", err)
	}
	expired, err = collectExpired(openRows, expired, domain.StatusOpen)
	if err != nil {
		return nil, fmt.Errorf("expire open requests: %w", err)
	}

	broadcastRows, err := r.pool.Query(ctx, `
		UPDATE customer_requests
		SET status = $1, updated_at = now()
		WHERE status = $2 AND expires_at IS NOT NULL AND expires_at < $3
		RETURNING id, client_id`,
		domain.StatusExpired, domain.StatusBroadcasted, now)
	if err != nil {
		return nil, fmt.Errorf("expire broadcasted requests: %w", err)
	}
	expired, err = collectExpired(broadcastRows, expired, domain.StatusBroadcasted)
	if err != nil {
		return nil, fmt.Errorf("expire broadcasted requests: %w", err)
	}

	return expired, nil
}

func collectExpired(rows pgx.Rows, expired []ExpiredRequest, oldStatus domain.Status) ([]ExpiredRequest, error) {
	defer rows.Close()
	for rows.Next() {
		entry := ExpiredRequest{OldStatus: oldStatus}
		if err := rows.Scan(&entry.ID, &entry.ClientID); err != nil {
			return nil, err
		}
		expired = append(expired, entry)
	}
	return expired, rows.Err()
}

// transitionError distinguishes a missing request from one in the wrong state.
func (r *Repo) transitionError(ctx context.Context, id uuid.UUID, target domain.Status) error {
	current, err := r.GetByID(ctx, id)
	if err != nil {
		return err
	}
	return apperr.InvalidTransition(fmt.Sprintf("cannot move request from %s to %s", current.Status, target))
}

func scanRequest(row pgx.Row) (Request, error) {
	var request Request
	var broadcastedAt, expiresAt *time.Time
	var createdAt, updatedAt time.Time
	if err := row.Scan(
		&request.ID, &request.ClientID, &request.CategoryID, &request.Description,
		&request.Status, &request.CancelReason, &broadcastedAt, &expiresAt,
		&createdAt, &updatedAt,
	); err != nil {
		return Request{}, err
	}
	request.BroadcastedAt = formatTimePtr(broadcastedAt)
	request.ExpiresAt = formatTimePtr(expiresAt)
	request.CreatedAt = createdAt.Format(time.RFC3339)
	request.UpdatedAt = updatedAt.Format(time.RFC3339)
	return request, nil
}

func formatTimePtr(value *time.Time) *string {
	if value == nil {
		return nil
	}
	formatted := value.Format(time.RFC3339)
	return &formatted
}
