// Package service implements wallet ledger business logic.
package service

import (
	"context"

	"leadmarket_backend/internal/events"
	"leadmarket_backend/internal/wallet/domain"
	"leadmarket_backend/internal/wallet/repository"
	"leadmarket_backend/internal/wallet/transport"
	"leadmarket_backend/platform/logger"

	"github.com/google/uuid"
)

const defaultPageSize = 25

// Service implements wallet use cases.
type Service struct {
	repo repository.Repository
	bus  events.Bus
	log  *logger.Logger
}

// New creates a wallet service.
func New(repo repository.Repository, bus events.Bus, log *logger.Logger) *Service {
	return &Service{repo: repo, bus: bus, log: log}
}

// Debit charges a wallet and publishes the ledger events. Used for charges
// outside the accept path (the accept path debits inside its own
// transaction and publishes after commit).
func (s *Service) Debit(ctx context.Context, professionalID uuid.UUID, req transport.DebitRequest) (repository.DebitResult, error) {
	result, err := s.repo.Debit(ctx, repository.EntryParams{
		ProfessionalID: professionalID,
		AmountCents:    req.AmountCents,
		Reason:         req.Reason,
		ReferenceType:  req.ReferenceType,
		ReferenceID:    req.ReferenceID,
	})
	if err != nil {
		return repository.DebitResult{}, err
	}

	s.log.WalletOp(string(domain.TypeDebit), professionalID.String(), req.AmountCents, result.BalanceCents)
	s.publishDebit(ctx, result, req.Reason)
	return result, nil
}

func (s *Service) publishDebit(ctx context.Context, result repository.DebitResult, reason string) {
	s.bus.Publish(ctx, events.WalletDebited{
		BaseEvent:         events.NewBaseEvent(),
		ProfessionalID:    result.Transaction.ProfessionalID,
		TransactionID:     result.Transaction.ID,
		AmountCents:       result.Transaction.AmountCents,
		BalanceAfterCents: result.BalanceCents,
		Reason:            reason,
	})

	if result.CrossedThreshold {
		s.bus.Publish(ctx, events.WalletLowBalance{
			BaseEvent:      events.NewBaseEvent(),
			ProfessionalID: result.Transaction.ProfessionalID,
			BalanceCents:   result.BalanceCents,
			ThresholdCents: result.ThresholdCents,
		})
	}
}

// Credit adds funds to a wallet.
func (s *Service) Credit(ctx context.Context, professionalID uuid.UUID, req transport.CreditRequest) (repository.Transaction, error) {
	transaction, err := s.repo.Credit(ctx, repository.EntryParams{
		ProfessionalID: professionalID,
		AmountCents:    req.AmountCents,
		Reason:         req.Reason,
		ReferenceType:  req.ReferenceType,
		ReferenceID:    req.ReferenceID,
	})
	if err != nil {
		return repository.Transaction{}, err
	}

	s.log.WalletOp(string(domain.TypeCredit), professionalID.String(), req.AmountCents, transaction.BalanceAfterCents)
	s.publishCredit(ctx, transaction)
	return transaction, nil
}

// Refund returns a previous charge to a wallet.
func (s *Service) Refund(ctx context.Context, professionalID uuid.UUID, req transport.RefundRequest) (repository.Transaction, error) {
	transaction, err := s.repo.Refund(ctx, repository.EntryParams{
		ProfessionalID: professionalID,
		AmountCents:    req.AmountCents,
		Reason:         req.Reason,
		ReferenceType:  req.ReferenceType,
		ReferenceID:    req.ReferenceID,
	})
	if err != nil {
		return repository.Transaction{}, err
	}

	s.log.WalletOp(string(domain.TypeRefund), professionalID.String(), req.AmountCents, transaction.BalanceAfterCents)
	s.publishCredit(ctx, transaction)
	return transaction, nil
}

// Adjust applies a signed administrative correction.
func (s *Service) Adjust(ctx context.Context, professionalID uuid.UUID, req transport.AdjustRequest) (repository.Transaction, error) {
	transaction, err := s.repo.Adjust(ctx, repository.EntryParams{
		ProfessionalID: professionalID,
		AmountCents:    req.AmountCents,
		Reason:         req.Reason,
	})
	if err != nil {
		return repository.Transaction{}, err
	}

	s.log.WalletOp(string(domain.TypeAdjustment), professionalID.String(), req.AmountCents, transaction.BalanceAfterCents)
	return transaction, nil
}

func (s *Service) publishCredit(ctx context.Context, transaction repository.Transaction) {
	s.bus.Publish(ctx, events.WalletCredited{
		BaseEvent:         events.NewBaseEvent(),
		ProfessionalID:    transaction.ProfessionalID,
		TransactionID:     transaction.ID,
		Type:              string(transaction.Type),
		AmountCents:       transaction.AmountCents,
		BalanceAfterCents: transaction.BalanceAfterCents,
	})
}

// Balance returns the current wallet balance.
func (s *Service) Balance(ctx context.Context, professionalID uuid.UUID) (transport.BalanceResponse, error) {
	balance, err := s.repo.Balance(ctx, professionalID)
	if err != nil {
		return transport.BalanceResponse{}, err
	}
	return transport.BalanceResponse{ProfessionalID: professionalID, BalanceCents: balance}, nil
}

// HasSufficientBalance reports whether the wallet covers the amount.
func (s *Service) HasSufficientBalance(ctx context.Context, professionalID uuid.UUID, amountCents int64) (bool, error) {
	return s.repo.HasSufficientBalance(ctx, professionalID, amountCents)
}

// History returns a professional's paged ledger history.
func (s *Service) History(ctx context.Context, professionalID uuid.UUID, req transport.ListTransactionsRequest) (transport.ListTransactionsResponse, error) {
	limit := req.Limit
	if limit <= 0 {
		limit = defaultPageSize
	}

	transactions, total, err := s.repo.ListTransactions(ctx, repository.ListTransactionsParams{
		ProfessionalID: professionalID,
		Limit:          limit,
		Offset:         req.Offset,
	})
	if err != nil {
		return transport.ListTransactionsResponse{}, err
	}

	return transport.ListTransactionsResponse{
		Transactions: transactions,
		Total:        total,
		Limit:        limit,
		Offset:       req.Offset,
	}, nil
}
