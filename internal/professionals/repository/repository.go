package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"leadmarket_backend/platform/apperr"
)

const professionalNotFoundMessage = "professional not found"

const professionalColumns = `id, name, email, phone, wallet_balance_cents, low_balance_threshold_cents, active, created_at, updated_at`

// Repo implements the professionals repository.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new professionals repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

var _ Repository = (*Repo)(nil)

// Create registers a professional with a zero wallet balance.
func (r *Repo) Create(ctx context.Context, params CreateProfessionalParams) (Professional, error) {
	query := `
		INSERT INTO professionals (name, email, phone, low_balance_threshold_cents)
		VALUES ($1, $2, $3, $4)
		RETURNING ` + professionalColumns

	row := r.pool.QueryRow(ctx, query, params.Name, params.Email, params.Phone, params.LowBalanceThresholdCents)
	professional, err := scanProfessional(row)
	if err != nil {
		return Professional{}, fmt.Errorf("create professional: %w", err)
	}
	return professional, nil
}

// Update applies partial directory changes.
func (r *Repo) Update(ctx context.Context, params UpdateProfessionalParams) (Professional, error) {
	query := `
		UPDATE professionals
		SET name = COALESCE($2, name),
			email = COALESCE($3, email),
			phone = COALESCE($4, phone),
			low_balance_threshold_cents = COALESCE($5, low_balance_threshold_cents),
			active = COALESCE($6, active),
			updated_at = now()
		WHERE id = $1
		RETURNING ` + professionalColumns

	row := r.pool.QueryRow(ctx, query,
		params.ID, params.Name, params.Email, params.Phone,
		params.LowBalanceThresholdCents, params.Active,
	)
	professional, err := scanProfessional(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Professional{}, apperr.NotFound(professionalNotFoundMessage)
		}
		return Professional{}, fmt.Errorf("update professional: %w", err)
	}
	return professional, nil
}

// GetByID fetches a professional by ID.
func (r *Repo) GetByID(ctx context.Context, id uuid.UUID) (Professional, error) {
	query := `SELECT ` + professionalColumns + ` FROM professionals WHERE id = $1`

	row := r.pool.QueryRow(ctx, query, id)
	professional, err := scanProfessional(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Professional{}, apperr.NotFound(professionalNotFoundMessage)
		}
		return Professional{}, fmt.Errorf("get professional: %w", err)
	}
	return professional, nil
}

// List returns professionals with paging and the total count.
func (r *Repo) List(ctx context.Context, params ListProfessionalsParams) ([]Professional, int, error) {
	where := ""
	if params.ActiveOnly {
		where = "WHERE active"
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT count(*) FROM professionals `+where).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count professionals: %w", err)
	}

	query := `SELECT ` + professionalColumns + ` FROM professionals ` + where + `
		ORDER BY name
		LIMIT $1 OFFSET $2`

	rows, err := r.pool.Query(ctx, query, params.Limit, params.Offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list professionals: %w", err)
	}
	defer rows.Close()

	professionals, err := collectProfessionals(rows)
	if err != nil {
		return nil, 0, fmt.Errorf("list professionals: %w", err)
	}
	return professionals, total, nil
}

// FindEligible returns active professionals able to afford the lead,
// richest first. Ties break on registration age so dispatch order is stable.
//
// categoryID is accepted but not filtered on yet: professionals have no
// per-category skill registry, so every active professional is eligible
// for every category. The parameter keeps the call sites stable for when
// such a registry lands.
func (r *Repo) FindEligible(ctx context.Context, categoryID uuid.UUID, minBalanceCents int64, limit int) ([]Professional, error) {
	query := `
		SELECT ` + professionalColumns + `
		FROM professionals
		WHERE active AND wallet_balance_cents >= $1
		ORDER BY wallet_balance_cents DESC, created_at ASC
		LIMIT $2`

	rows, err := r.pool.Query(ctx, query, minBalanceCents, limit)
	if err != nil {
		return nil, fmt.Errorf("find eligible professionals: %w", err)
	}
	defer rows.Close()

	professionals, err := collectProfessionals(rows)
	if err != nil {
		return nil, fmt.Errorf("find eligible professionals: %w", err)
	}
	return professionals, nil
}

func collectProfessionals(rows pgx.Rows) ([]Professional, error) {
	professionals := make([]Professional, 0)
	for rows.Next() {
		professional, err := scanProfessional(rows)
		if err != nil {
			return nil, err
		}
		professionals = append(professionals, professional)
	}
	return professionals, rows.Err()
}

func scanProfessional(row pgx.Row) (Professional, error) {
	var professional Professional
	var createdAt, updatedAt time.Time
	if err := row.Scan(
		&professional.ID, &professional.Name, &professional.Email, &professional.Phone,
		&professional.WalletBalanceCents, &professional.LowBalanceThresholdCents,
		&professional.Active, &createdAt, &updatedAt,
	); err != nil {
		return Professional{}, err
	}
	professional.CreatedAt = createdAt.Format(time.RFC3339)
	professional.UpdatedAt = updatedAt.Format(time.RFC3339)
	return professional, nil
}
