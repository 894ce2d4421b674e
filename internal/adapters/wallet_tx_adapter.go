package adapters

import (
	"context"

	"github.com/jackc/pgx/v5"

	offersrepo "leadmarket_backend/internal/offers/repository"
	walletrepo "leadmarket_backend/internal/wallet/repository"
)

// WalletTxAdapter adapts the wallet repository for the offer acceptance
// transaction, satisfying the offers WalletTxOps port.
type WalletTxAdapter struct {
	wallet walletrepo.Repository
}

// NewWalletTxAdapter creates a new wallet transaction adapter.
func NewWalletTxAdapter(wallet walletrepo.Repository) *WalletTxAdapter {
	return &WalletTxAdapter{wallet: wallet}
}

var _ offersrepo.WalletTxOps = (*WalletTxAdapter)(nil)

// DebitTx charges the professional's wallet inside the caller's transaction.
func (a *WalletTxAdapter) DebitTx(ctx context.Context, tx pgx.Tx, cmd offersrepo.DebitCommand) (offersrepo.DebitOutcome, error) {
	referenceType := cmd.ReferenceType
	referenceID := cmd.ReferenceID
	result, err := a.wallet.DebitTx(ctx, tx, walletrepo.EntryParams{
		ProfessionalID: cmd.ProfessionalID,
		AmountCents:    cmd.AmountCents,
		Reason:         cmd.Reason,
		ReferenceType:  &referenceType,
		ReferenceID:    &referenceID,
	})
	if err != nil {
		return offersrepo.DebitOutcome{}, err
	}

	return offersrepo.DebitOutcome{
		TransactionID:     result.Transaction.ID,
		BalanceAfterCents: result.BalanceCents,
		ThresholdCents:    result.ThresholdCents,
		CrossedThreshold:  result.CrossedThreshold,
	}, nil
}
