// Package outbox persists notification intents so delivery survives process
// restarts and can be retried.
package outbox

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"leadmarket_backend/platform/apperr"
)

// Status is the delivery state of an outbox message.
type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusSucceeded  Status = "succeeded"
	StatusFailed     Status = "failed"
)

// RecipientType distinguishes who a message addresses.
type RecipientType string

const (
	RecipientProfessional RecipientType = "professional"
	RecipientClient       RecipientType = "client"
)

// Message kinds understood by the dispatcher.
const (
	KindOfferReceived  = "offer_received"
	KindLeadWon        = "lead_won"
	KindLeadLost       = "lead_lost"
	KindLowBalance     = "low_balance"
	KindWalletCredited = "wallet_credited"
)

const (
	maxAttempts  = 5
	retryBackoff = 2 * time.Minute
)

// Message is one persisted notification intent.
type Message struct {
	ID            uuid.UUID       `json:"id"`
	RecipientType RecipientType   `json:"recipientType"`
	RecipientID   uuid.UUID       `json:"recipientId"`
	Kind          string          `json:"kind"`
	Payload       json.RawMessage `json:"payload"`
	RunAt         time.Time       `json:"runAt"`
	Status        Status          `json:"status"`
	Attempts      int             `json:"attempts"`
	LastError     *string         `json:"lastError,omitempty"`
	CreatedAt     time.Time       `json:"createdAt"`
}

// EnqueueParams creates a pending message.
type EnqueueParams struct {
	RecipientType RecipientType
	RecipientID   uuid.UUID
	Kind          string
	Payload       any
	RunAt         time.Time
}

// ListParams filters the admin outbox listing.
type ListParams struct {
	Status *Status
	Limit  int
	Offset int
}

const messageColumns = `id, recipient_type, recipient_id, kind, payload, run_at, status, attempts, last_error, created_at`

// Repo implements the outbox over postgres.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new outbox repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

// Enqueue persists a pending message.
func (r *Repo) Enqueue(ctx context.Context, params EnqueueParams) (Message, error) {
	payload, err := json.Marshal(params.Payload)
	if err != nil {
		return Message{}, fmt.Errorf("marshal outbox payload: %w", err)
	}

	runAt := params.RunAt
	if runAt.IsZero() {
		runAt = time.Now()
	}

	query := `
		INSERT INTO notification_outbox (recipient_type, recipient_id, kind, payload, run_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING ` + messageColumns

	row := r.pool.QueryRow(ctx, query, params.RecipientType, params.RecipientID, params.Kind, payload, runAt)
	message, err := scanMessage(row)
	if err != nil {
		return Message{}, fmt.Errorf("enqueue outbox message: %w", err)
	}
	return message, nil
}

// ClaimDue atomically claims up to limit due pending messages for delivery.
// SKIP LOCKED keeps concurrent dispatchers from claiming the same rows.
func (r *Repo) ClaimDue(ctx context.Context, now time.Time, limit int) ([]Message, error) {
	query := `
		UPDATE notification_outbox
		SET status = $1, updated_at = now()
		WHERE id IN (
			SELECT id FROM notification_outbox
			WHERE status = $2 AND run_at <= $3
			ORDER BY run_at
			LIMIT $4
			FOR UPDATE SKIP LOCKED
		)
		RETURNING ` + messageColumns

	rows, err := r.pool.Query(ctx, query, StatusProcessing, StatusPending, now, limit)
	if err != nil {
		return nil, fmt.Errorf("claim outbox messages: %w", err)
	}
	defer rows.Close()

	messages := make([]Message, 0, limit)
	for rows.Next() {
		message, err := scanMessage(rows)
		if err != nil {
			return nil, fmt.Errorf("scan outbox message: %w", err)
		}
		messages = append(messages, message)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("claim outbox messages: %w", err)
	}
	return messages, nil
}

// MarkSucceeded records a delivered message.
func (r *Repo) MarkSucceeded(ctx context.Context, id uuid.UUID) error {
	result, err := r.pool.Exec(ctx, `
		UPDATE notification_outbox
		SET status = $2, updated_at = now()
		WHERE id = $1`,
		id, StatusSucceeded)
	if err != nil {
		return fmt.Errorf("mark outbox message succeeded: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperr.NotFound("outbox message not found")
	}
	return nil
}

// MarkFailed records a delivery failure. The message is retried with a
// linear backoff until maxAttempts, then parked as failed.
func (r *Repo) MarkFailed(ctx context.Context, id uuid.UUID, cause string, now time.Time) error {
	query := `
		UPDATE notification_outbox
		SET attempts = attempts + 1,
		    last_error = $2,
		    status = CASE WHEN attempts + 1 >= $3 THEN $4::text ELSE $5::text END,
		    run_at = $6,
		    updated_at = now()
		WHERE id = $1
		RETURNING attempts`

	var attempts int
	err := r.pool.QueryRow(ctx, query,
		id, cause, maxAttempts, StatusFailed, StatusPending, now.Add(retryBackoff),
	).Scan(&attempts)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperr.NotFound("outbox message not found")
		}
		return fmt.Errorf("mark outbox message failed: %w", err)
	}
	return nil
}

// List returns messages for the admin surface, newest first.
func (r *Repo) List(ctx context.Context, params ListParams) ([]Message, int, error) {
	where := `WHERE ($1::text IS NULL OR status = $1)`

	var total int
	if err := r.pool.QueryRow(ctx,
		`SELECT count(*) FROM notification_outbox `+where, params.Status,
	).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count outbox messages: %w", err)
	}

	query := `
		SELECT ` + messageColumns + `
		FROM notification_outbox ` + where + `
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`

	rows, err := r.pool.Query(ctx, query, params.Status, params.Limit, params.Offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list outbox messages: %w", err)
	}
	defer rows.Close()

	messages := make([]Message, 0)
	for rows.Next() {
		message, err := scanMessage(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan outbox message: %w", err)
		}
		messages = append(messages, message)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("list outbox messages: %w", err)
	}
	return messages, total, nil
}

func scanMessage(row pgx.Row) (Message, error) {
	var message Message
	if err := row.Scan(
		&message.ID, &message.RecipientType, &message.RecipientID, &message.Kind,
		&message.Payload, &message.RunAt, &message.Status, &message.Attempts,
		&message.LastError, &message.CreatedAt,
	); err != nil {
		return Message{}, err
	}
	return message, nil
}
