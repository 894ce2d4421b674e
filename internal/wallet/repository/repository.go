package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"leadmarket_backend/internal/wallet/domain"
	"leadmarket_backend/platform/apperr"
)

const (
	walletNotFoundMessage     = "professional wallet not found"
	insufficientFundsMessage  = "insufficient wallet balance"
	transactionColumns        = `id, professional_id, type, amount_cents, reason, reference_type, reference_id, balance_after_cents, created_at`
	lockWalletQuery           = `SELECT wallet_balance_cents, low_balance_threshold_cents FROM professionals WHERE id = $1 FOR UPDATE`
	updateBalanceQuery        = `UPDATE professionals SET wallet_balance_cents = $2, updated_at = now() WHERE id = $1`
	insertTransactionTemplate = `
		INSERT INTO wallet_transactions (professional_id, type, amount_cents, reason, reference_type, reference_id, balance_after_cents)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at`
)

// Repo implements the wallet ledger repository.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new wallet repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

var _ Repository = (*Repo)(nil)

// Debit charges the wallet in its own transaction.
func (r *Repo) Debit(ctx context.Context, params EntryParams) (DebitResult, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return DebitResult{}, fmt.Errorf("begin debit: %w", err)
	}
	defer tx.Rollback(ctx)

	result, err := r.DebitTx(ctx, tx, params)
	if err != nil {
		return DebitResult{}, err
	}

	if err := tx.Commit(ctx); err != nil {
		return DebitResult{}, fmt.Errorf("commit debit: %w", err)
	}
	return result, nil
}

// DebitTx charges the wallet inside a caller-owned transaction. The
// professional's row is locked first so concurrent ledger entries for the
// same wallet serialize.
func (r *Repo) DebitTx(ctx context.Context, tx pgx.Tx, params EntryParams) (DebitResult, error) {
	if params.AmountCents <= 0 {
		return DebitResult{}, apperr.Validation("debit amount must be positive")
	}

	var balanceBefore, threshold int64
	if err := tx.QueryRow(ctx, lockWalletQuery, params.ProfessionalID).Scan(&balanceBefore, &threshold); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return DebitResult{}, apperr.NotFound(walletNotFoundMessage)
		}
		return DebitResult{}, fmt.Errorf("lock wallet: %w", err)
	}

	if balanceBefore < params.AmountCents {
		return DebitResult{}, apperr.InsufficientBalance(insufficientFundsMessage)
	}

	balanceAfter := balanceBefore - params.AmountCents
	if _, err := tx.Exec(ctx, updateBalanceQuery, params.ProfessionalID, balanceAfter); err != nil {
		return DebitResult{}, fmt.Errorf("update wallet balance: %w", err)
	}

	transaction, err := insertEntry(ctx, tx, domain.TypeDebit, params, balanceAfter)
	if err != nil {
		return DebitResult{}, err
	}

	return DebitResult{
		Transaction:      transaction,
		BalanceCents:     balanceAfter,
		ThresholdCents:   threshold,
		CrossedThreshold: threshold > 0 && balanceBefore >= threshold && balanceAfter < threshold,
	}, nil
}

// Credit adds funds to the wallet.
func (r *Repo) Credit(ctx context.Context, params EntryParams) (Transaction, error) {
	if params.AmountCents <= 0 {
		return Transaction{}, apperr.Validation("credit amount must be positive")
	}
	return r.applyEntry(ctx, domain.TypeCredit, params)
}

// Refund returns a previous charge to the wallet.
func (r *Repo) Refund(ctx context.Context, params EntryParams) (Transaction, error) {
	if params.AmountCents <= 0 {
		return Transaction{}, apperr.Validation("refund amount must be positive")
	}
	return r.applyEntry(ctx, domain.TypeRefund, params)
}

// Adjust applies a signed administrative correction. A negative adjustment
// that would take the balance below zero is rejected.
func (r *Repo) Adjust(ctx context.Context, params EntryParams) (Transaction, error) {
	if params.AmountCents == 0 {
		return Transaction{}, apperr.Validation("adjustment amount must be non-zero")
	}
	return r.applyEntry(ctx, domain.TypeAdjustment, params)
}

func (r *Repo) applyEntry(ctx context.Context, transactionType domain.TransactionType, params EntryParams) (Transaction, error) {
	delta, err := domain.SignedDelta(transactionType, params.AmountCents)
	if err != nil {
		return Transaction{}, err
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return Transaction{}, fmt.Errorf("begin wallet entry: %w", err)
	}
	defer tx.Rollback(ctx)

	var balanceBefore, threshold int64
	if err := tx.QueryRow(ctx, lockWalletQuery, params.ProfessionalID).Scan(&balanceBefore, &threshold); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Transaction{}, apperr.NotFound(walletNotFoundMessage)
		}
		return Transaction{}, fmt.Errorf("lock wallet: %w", err)
	}

	balanceAfter := balanceBefore + delta
	if balanceAfter < 0 {
		return Transaction{}, apperr.InsufficientBalance(insufficientFundsMessage)
	}

	if _, err := tx.Exec(ctx, updateBalanceQuery, params.ProfessionalID, balanceAfter); err != nil {
		return Transaction{}, fmt.Errorf("update wallet balance: %w", err)
	}

	transaction, err := insertEntry(ctx, tx, transactionType, params, balanceAfter)
	if err != nil {
		return Transaction{}, err
	}

	if err := tx.Commit(ctx); err != nil {
		return Transaction{}, fmt.Errorf("commit wallet entry: %w", err)
	}
	return transaction, nil
}

func insertEntry(ctx context.Context, tx pgx.Tx, transactionType domain.TransactionType, params EntryParams, balanceAfter int64) (Transaction, error) {
	transaction := Transaction{
		ProfessionalID:    params.ProfessionalID,
		Type:              transactionType,
		AmountCents:       params.AmountCents,
		Reason:            params.Reason,
		ReferenceType:     params.ReferenceType,
		ReferenceID:       params.ReferenceID,
		BalanceAfterCents: balanceAfter,
	}

	var createdAt time.Time
	if err := tx.QueryRow(ctx, insertTransactionTemplate,
		params.ProfessionalID, transactionType, params.AmountCents, params.Reason,
		params.ReferenceType, params.ReferenceID, balanceAfter,
	).Scan(&transaction.ID, &createdAt); err != nil {
		return Transaction{}, fmt.Errorf("insert wallet transaction: %w", err)
	}

	transaction.CreatedAt = createdAt.Format(time.RFC3339)
	return transaction, nil
}

// Balance returns the current wallet balance.
func (r *Repo) Balance(ctx context.Context, professionalID uuid.UUID) (int64, error) {
	var balance int64
	err := r.pool.QueryRow(ctx,
		`SELECT wallet_balance_cents FROM professionals WHERE id = $1`, professionalID,
	).Scan(&balance)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, apperr.NotFound(walletNotFoundMessage)
		}
		return 0, fmt.Errorf("get wallet balance: %w", err)
	}
	return balance, nil
}

// HasSufficientBalance reports whether the wallet covers the amount.
func (r *Repo) HasSufficientBalance(ctx context.Context, professionalID uuid.UUID, amountCents int64) (bool, error) {
	balance, err := r.Balance(ctx, professionalID)
	if err != nil {
		return false, err
	}
	return balance >= amountCents, nil
}

// ListTransactions returns a professional's ledger history, newest first.
func (r *Repo) ListTransactions(ctx context.Context, params ListTransactionsParams) ([]Transaction, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx,
		`SELECT count(*) FROM wallet_transactions WHERE professional_id = $1`, params.ProfessionalID,
	).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count wallet transactions: %w", err)
	}

	query := `
		SELECT ` + transactionColumns + `
		FROM wallet_transactions
		WHERE professional_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2 OFFSET $3`

	rows, err := r.pool.Query(ctx, query, params.ProfessionalID, params.Limit, params.Offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list wallet transactions: %w", err)
	}
	defer rows.Close()

	transactions := make([]Transaction, 0)
	for rows.Next() {
		var transaction Transaction
		var createdAt time.Time
		if err := rows.Scan(
			&transaction.ID, &transaction.ProfessionalID, &transaction.Type,
			&transaction.AmountCents, &transaction.Reason, &transaction.ReferenceType,
			&transaction.ReferenceID, &transaction.BalanceAfterCents, &createdAt,
		); err != nil {
			return nil, 0, fmt.Errorf("scan wallet transaction: %w", err)
		}
		transaction.CreatedAt = createdAt.Format(time.RFC3339)
		transactions = append(transactions, transaction)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("list wallet transactions: %w", err)
	}

	return transactions, total, nil
}
