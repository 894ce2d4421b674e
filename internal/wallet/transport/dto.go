// Package transport defines request/response DTOs for the wallet API.
package transport

import (
	"leadmarket_backend/internal/wallet/repository"

	"github.com/google/uuid"
)

// DebitRequest charges a wallet outside the lead acceptance path
// (administrative or settlement charges).
type DebitRequest struct {
	AmountCents   int64      `json:"amountCents" validate:"required,gt=0"`
	Reason        string     `json:"reason" validate:"required,min=3,max=250"`
	ReferenceType *string    `json:"referenceType" validate:"omitempty,max=60"`
	ReferenceID   *uuid.UUID `json:"referenceId"`
}

// CreditRequest adds funds to a wallet (recharge or settlement).
type CreditRequest struct {
	AmountCents   int64      `json:"amountCents" validate:"required,gt=0"`
	Reason        string     `json:"reason" validate:"required,min=3,max=250"`
	ReferenceType *string    `json:"referenceType" validate:"omitempty,max=60"`
	ReferenceID   *uuid.UUID `json:"referenceId"`
}

// RefundRequest returns a previous charge to a wallet.
type RefundRequest struct {
	AmountCents   int64      `json:"amountCents" validate:"required,gt=0"`
	Reason        string     `json:"reason" validate:"required,min=3,max=250"`
	ReferenceType *string    `json:"referenceType" validate:"omitempty,max=60"`
	ReferenceID   *uuid.UUID `json:"referenceId"`
}

// AdjustRequest applies a signed administrative correction.
type AdjustRequest struct {
	AmountCents int64  `json:"amountCents" validate:"required"`
	Reason      string `json:"reason" validate:"required,min=3,max=250"`
}

// BalanceResponse reports the current wallet balance.
type BalanceResponse struct {
	ProfessionalID uuid.UUID `json:"professionalId"`
	BalanceCents   int64     `json:"balanceCents"`
}

// SufficientBalanceRequest asks whether the wallet covers an amount.
type SufficientBalanceRequest struct {
	AmountCents int64 `form:"amountCents" validate:"required,gt=0"`
}

// SufficientBalanceResponse reports whether the wallet covers an amount.
type SufficientBalanceResponse struct {
	ProfessionalID uuid.UUID `json:"professionalId"`
	AmountCents    int64     `json:"amountCents"`
	Sufficient     bool      `json:"sufficient"`
}

// ListTransactionsRequest pages ledger history.
type ListTransactionsRequest struct {
	Limit  int `form:"limit" validate:"omitempty,gt=0,lte=100"`
	Offset int `form:"offset" validate:"omitempty,gte=0"`
}

// ListTransactionsResponse is a paged ledger history.
type ListTransactionsResponse struct {
	Transactions []repository.Transaction `json:"transactions"`
	Total        int                      `json:"total"`
	Limit        int                      `json:"limit"`
	Offset       int                      `json:"offset"`
}
