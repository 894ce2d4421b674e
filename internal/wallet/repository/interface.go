// Package repository provides data access for the wallet ledger.
package repository

import (
	"context"

	"leadmarket_backend/internal/wallet/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// Transaction is one append-only wallet ledger entry.
type Transaction struct {
	ID                uuid.UUID              `json:"id"`
	ProfessionalID    uuid.UUID              `json:"professionalId"`
	Type              domain.TransactionType `json:"type"`
	AmountCents       int64                  `json:"amountCents"`
	Reason            string                 `json:"reason"`
	ReferenceType     *string                `json:"referenceType,omitempty"`
	ReferenceID       *uuid.UUID             `json:"referenceId,omitempty"`
	BalanceAfterCents int64                  `json:"balanceAfterCents"`
	CreatedAt         string                 `json:"createdAt"`
}

// EntryParams describes a single ledger mutation. AmountCents is positive
// for credit, debit and refund; adjustments carry a signed amount.
type EntryParams struct {
	ProfessionalID uuid.UUID
	AmountCents    int64
	Reason         string
	ReferenceType  *string
	ReferenceID    *uuid.UUID
}

// DebitResult reports the outcome of a debit, including whether the balance
// dropped through the professional's low-balance threshold.
type DebitResult struct {
	Transaction      Transaction
	BalanceCents     int64
	ThresholdCents   int64
	CrossedThreshold bool
}

// ListTransactionsParams pages a professional's ledger history.
type ListTransactionsParams struct {
	ProfessionalID uuid.UUID
	Limit          int
	Offset         int
}

// Repository defines data access for the wallet ledger. All mutations lock
// the professional's row so concurrent entries serialize per wallet.
type Repository interface {
	// Debit charges the wallet in its own transaction.
	Debit(ctx context.Context, params EntryParams) (DebitResult, error)
	// DebitTx charges the wallet inside a caller-owned transaction.
	DebitTx(ctx context.Context, tx pgx.Tx, params EntryParams) (DebitResult, error)
	Credit(ctx context.Context, params EntryParams) (Transaction, error)
	Refund(ctx context.Context, params EntryParams) (Transaction, error)
	Adjust(ctx context.Context, params EntryParams) (Transaction, error)
	Balance(ctx context.Context, professionalID uuid.UUID) (int64, error)
	HasSufficientBalance(ctx context.Context, professionalID uuid.UUID, amountCents int64) (bool, error)
	ListTransactions(ctx context.Context, params ListTransactionsParams) ([]Transaction, int, error)
}
