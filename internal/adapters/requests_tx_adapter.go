package adapters

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	offersrepo "leadmarket_backend/internal/offers/repository"
	requestsrepo "leadmarket_backend/internal/requests/repository"
)

// RequestsTxAdapter adapts the requests repository for the offer acceptance
// transaction, satisfying the offers RequestTxOps port.
type RequestsTxAdapter struct {
	requests requestsrepo.Repository
}

// NewRequestsTxAdapter creates a new requests transaction adapter.
func NewRequestsTxAdapter(requests requestsrepo.Repository) *RequestsTxAdapter {
	return &RequestsTxAdapter{requests: requests}
}

var _ offersrepo.RequestTxOps = (*RequestsTxAdapter)(nil)

// AssignTx assigns a request inside the caller's transaction.
func (a *RequestsTxAdapter) AssignTx(ctx context.Context, tx pgx.Tx, requestID uuid.UUID) error {
	return a.requests.AssignTx(ctx, tx, requestID)
}
