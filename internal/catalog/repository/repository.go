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

const categoryNotFoundMessage = "category not found"

// Repo implements the catalog repository.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new catalog repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

// Compile-time check that Repo implements Repository.
var _ Repository = (*Repo)(nil)

const categoryColumns = `id, name, lead_cost_cents, match_limit, workflow_type, active, created_at, updated_at`

// Create inserts a new category.
func (r *Repo) Create(ctx context.Context, params CreateCategoryParams) (Category, error) {
	query := `
		INSERT INTO categories (name, lead_cost_cents, match_limit, workflow_type)
		VALUES ($1, $2, $3, $4)
		RETURNING ` + categoryColumns

	row := r.pool.QueryRow(ctx, query, params.Name, params.LeadCostCents, params.MatchLimit, params.Workflow)
	category, err := scanCategory(row)
	if err != nil {
		return Category{}, fmt.Errorf("create category: %w", err)
	}
	return category, nil
}

// Update applies partial changes to a category.
func (r *Repo) Update(ctx context.Context, params UpdateCategoryParams) (Category, error) {
	query := `
		UPDATE categories
		SET name = COALESCE($2, name),
			lead_cost_cents = COALESCE($3, lead_cost_cents),
			match_limit = COALESCE($4, match_limit),
			active = COALESCE($5, active),
			updated_at = now()
		WHERE id = $1
		RETURNING ` + categoryColumns

	row := r.pool.QueryRow(ctx, query, params.ID, params.Name, params.LeadCostCents, params.MatchLimit, params.Active)
	category, err := scanCategory(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Category{}, apperr.NotFound(categoryNotFoundMessage)
		}
		return Category{}, fmt.Errorf("update category: %w", err)
	}
	return category, nil
}

// GetByID fetches a category by ID.
func (r *Repo) GetByID(ctx context.Context, id uuid.UUID) (Category, error) {
	query := `SELECT ` + categoryColumns + ` FROM categories WHERE id = $1`

	row := r.pool.QueryRow(ctx, query, id)
	category, err := scanCategory(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Category{}, apperr.NotFound(categoryNotFoundMessage)
		}
		return Category{}, fmt.Errorf("get category: %w", err)
	}
	return category, nil
}

// List returns categories with paging and the total count.
func (r *Repo) List(ctx context.Context, params ListCategoriesParams) ([]Category, int, error) {
	where := ""
	if params.ActiveOnly {
		where = "WHERE active"
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT count(*) FROM categories `+where).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count categories: %w", err)
	}

	query := `SELECT ` + categoryColumns + ` FROM categories ` + where + `
		ORDER BY name
		LIMIT $1 OFFSET $2`

	rows, err := r.pool.Query(ctx, query, params.Limit, params.Offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	categories := make([]Category, 0)
	for rows.Next() {
		category, err := scanCategory(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan category: %w", err)
		}
		categories = append(categories, category)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("list categories: %w", err)
	}

	return categories, total, nil
}

func scanCategory(row pgx.Row) (Category, error) {
	var category Category
	var createdAt, updatedAt time.Time
	if err := row.Scan(
		&category.ID, &category.Name, &category.LeadCostCents, &category.MatchLimit,
		&category.Workflow, &category.Active, &createdAt, &updatedAt,
	); err != nil {
		return Category{}, err
	}
	category.CreatedAt = createdAt.Format(time.RFC3339)
	category.UpdatedAt = updatedAt.Format(time.RFC3339)
	return category, nil
}
