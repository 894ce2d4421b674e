// Package domain contains wallet ledger business rules.
package domain

import "leadmarket_backend/platform/apperr"

// TransactionType classifies wallet ledger entries.
type TransactionType string

const (
	// TypeCredit is a recharge or settlement landing on the wallet.
	TypeCredit TransactionType = "credit"
	// TypeDebit is a lead charge taken from the wallet.
	TypeDebit TransactionType = "debit"
	// TypeRefund returns a previous charge to the wallet.
	TypeRefund TransactionType = "refund"
	// TypeAdjustment is a signed administrative correction.
	TypeAdjustment TransactionType = "adjustment"
)

// Valid reports whether the transaction type is known.
func (t TransactionType) Valid() bool {
	switch t {
	case TypeCredit, TypeDebit, TypeRefund, TypeAdjustment:
		return true
	}
	return false
}

// SignedDelta returns the balance change a ledger entry applies. Credit and
// refund amounts add, debit amounts subtract, adjustments carry their own
// sign. Replaying SignedDelta over a professional's entries in order must
// reproduce the wallet balance.
func SignedDelta(transactionType TransactionType, amountCents int64) (int64, error) {
	switch transactionType {
	case TypeCredit, TypeRefund:
		if amountCents <= 0 {
			return 0, apperr.Validation("amount must be positive")
		}
		return amountCents, nil
	case TypeDebit:
		if amountCents <= 0 {
			return 0, apperr.Validation("amount must be positive")
		}
		return -amountCents, nil
	case TypeAdjustment:
		if amountCents == 0 {
			return 0, apperr.Validation("adjustment amount must be non-zero")
		}
		return amountCents, nil
	default:
		return 0, apperr.Validation("unknown transaction type: " + string(transactionType))
	}
}
