package adapters

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	jobsrepo "leadmarket_backend/internal/jobs/repository"
	offersrepo "leadmarket_backend/internal/offers/repository"
)

// JobsTxAdapter adapts the jobs repository for the offer acceptance
// transaction, satisfying the offers JobTxOps port.
type JobsTxAdapter struct {
	jobs jobsrepo.Repository
}

// NewJobsTxAdapter creates a new jobs transaction adapter.
func NewJobsTxAdapter(jobs jobsrepo.Repository) *JobsTxAdapter {
	return &JobsTxAdapter{jobs: jobs}
}

var _ offersrepo.JobTxOps = (*JobsTxAdapter)(nil)

// CreateFromOfferTx inserts the job of an accepted offer inside the caller's
// transaction.
func (a *JobsTxAdapter) CreateFromOfferTx(ctx context.Context, tx pgx.Tx, cmd offersrepo.CreateJobCommand) (uuid.UUID, error) {
	return a.jobs.CreateFromOfferTx(ctx, tx, jobsrepo.CreateFromOfferParams{
		RequestID:      cmd.RequestID,
		OfferID:        cmd.OfferID,
		ProfessionalID: cmd.ProfessionalID,
		ClientID:       cmd.ClientID,
	})
}
