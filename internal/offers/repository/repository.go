package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"leadmarket_backend/internal/offers/domain"
	requestsdomain "leadmarket_backend/internal/requests/domain"
	"leadmarket_backend/platform/apperr"
)

const (
	offerNotFoundMessage = "offer not found"
	uniqueViolationCode  = "23505"
	exclusiveAcceptIndex = "idx_lead_offers_exclusive_acceptance"
	offerPairConstraint  = "lead_offers_request_id_professional_id_key"

	offerColumns = `id, request_id, professional_id, price_cents, proposed_price_cents, status, offered_at, expires_at, resolved_at, created_at, updated_at`
)

var offerContextQuery = `
	SELECT ` + joinColumns("o") + `, r.client_id, r.status, c.workflow_type
	FROM lead_offers o
	JOIN customer_requests r ON r.id = o.request_id
	JOIN categories c ON c.id = r.category_id
	WHERE o.id = $1`

// Repo implements the offers repository. The acceptance path composes the
// wallet, jobs and requests Tx ports inside a single pgx transaction.
type Repo struct {
	pool     *pgxpool.Pool
	wallet   WalletTxOps
	jobs     JobTxOps
	requests RequestTxOps
}

// New creates a new offers repository.
func New(pool *pgxpool.Pool, wallet WalletTxOps, jobs JobTxOps, requests RequestTxOps) *Repo {
	return &Repo{pool: pool, wallet: wallet, jobs: jobs, requests: requests}
}

var _ Repository = (*Repo)(nil)

// CreateOffers batch-inserts offers for a broadcast. Duplicate pairs are
// skipped so a re-dispatch never doubles up.
func (r *Repo) CreateOffers(ctx context.Context, params CreateOffersParams) ([]Offer, error) {
	offers := make([]Offer, 0, len(params.ProfessionalIDs))
	if len(params.ProfessionalIDs) == 0 {
		return offers, nil
	}

	query := `
		INSERT INTO lead_offers (request_id, professional_id, price_cents, expires_at)
		SELECT $1, pid, $2, $3 FROM unnest($4::uuid[]) AS pid
		ON CONFLICT (request_id, professional_id) DO NOTHING
		RETURNING ` + offerColumns

	rows, err := r.pool.Query(ctx, query, params.RequestID, params.PriceCents, params.ExpiresAt, params.ProfessionalIDs)
	if err != nil {
		return nil, fmt.Errorf("create offers: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		offer, err := scanOffer(rows)
		if err != nil {
			return nil, fmt.Errorf("scan offer: %w", err)
		}
		offers = append(offers, offer)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("create offers: %w", err)
	}

	return offers, nil
}

// CreateSingleOffer creates one targeted offer. A duplicate pair is a
// Conflict.
func (r *Repo) CreateSingleOffer(ctx context.Context, params CreateSingleOfferParams) (Offer, error) {
	query := `
		INSERT INTO lead_offers (request_id, professional_id, price_cents, expires_at)
		VALUES ($1, $2, $3, $4)
		RETURNING ` + offerColumns

	row := r.pool.QueryRow(ctx, query, params.RequestID, params.ProfessionalID, params.PriceCents, params.ExpiresAt)
	offer, err := scanOffer(row)
	if err != nil {
		if isUniqueViolation(err, offerPairConstraint) {
			return Offer{}, apperr.Conflict("professional already has an offer for this request")
		}
		return Offer{}, fmt.Errorf("create single offer: %w", err)
	}
	return offer, nil
}

// GetByID fetches an offer by ID.
func (r *Repo) GetByID(ctx context.Context, id uuid.UUID) (Offer, error) {
	query := `SELECT ` + offerColumns + ` FROM lead_offers WHERE id = $1`

	row := r.pool.QueryRow(ctx, query, id)
	offer, err := scanOffer(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Offer{}, apperr.NotFound(offerNotFoundMessage)
		}
		return Offer{}, fmt.Errorf("get offer: %w", err)
	}
	return offer, nil
}

// GetContext fetches an offer with its request and category columns.
func (r *Repo) GetContext(ctx context.Context, id uuid.UUID) (OfferContext, error) {
	var octx OfferContext
	row := r.pool.QueryRow(ctx, offerContextQuery, id)
	offer, expiresAt, err := scanOfferContext(row, &octx)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return OfferContext{}, apperr.NotFound(offerNotFoundMessage)
		}
		return OfferContext{}, fmt.Errorf("get offer context: %w", err)
	}
	octx.Offer = offer
	octx.OfferExpiresAt = expiresAt
	return octx, nil
}

// ListByRequest returns all offers of a request, oldest first.
func (r *Repo) ListByRequest(ctx context.Context, requestID uuid.UUID) ([]Offer, error) {
	query := `SELECT ` + offerColumns + ` FROM lead_offers WHERE request_id = $1 ORDER BY offered_at`

	rows, err := r.pool.Query(ctx, query, requestID)
	if err != nil {
		return nil, fmt.Errorf("list offers by request: %w", err)
	}
	defer rows.Close()

	offers, err := collectOffers(rows)
	if err != nil {
		return nil, fmt.Errorf("list offers by request: %w", err)
	}
	return offers, nil
}

// ListByProfessional returns a professional's offers with paging.
func (r *Repo) ListByProfessional(ctx context.Context, params ListByProfessionalParams) ([]Offer, int, error) {
	where := `WHERE professional_id = $1 AND ($2::text IS NULL OR status = $2)`

	var total int
	if err := r.pool.QueryRow(ctx,
		`SELECT count(*) FROM lead_offers `+where, params.ProfessionalID, params.Status,
	).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count offers: %w", err)
	}

	query := `
		SELECT ` + offerColumns + `
		FROM lead_offers ` + where + `
		ORDER BY offered_at DESC
		LIMIT $3 OFFSET $4`

	rows, err := r.pool.Query(ctx, query, params.ProfessionalID, params.Status, params.Limit, params.Offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list offers: %w", err)
	}
	defer rows.Close()

	offers, err := collectOffers(rows)
	if err != nil {
		return nil, 0, fmt.Errorf("list offers: %w", err)
	}
	return offers, total, nil
}

// Accept runs the winning path in one transaction. The offer row is locked
// first, then every precondition is re-checked under the lock, so concurrent
// accepts serialize and exactly one can win.
func (r *Repo) Accept(ctx context.Context, params AcceptParams) (AcceptResult, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return AcceptResult{}, fmt.Errorf("begin accept: %w", err)
	}
	defer tx.Rollback(ctx)

	lockQuery := `
		SELECT o.id, o.request_id, o.professional_id, o.price_cents, o.proposed_price_cents,
			o.status, o.expires_at, r.client_id, r.status, c.workflow_type
		FROM lead_offers o
		JOIN customer_requests r ON r.id = o.request_id
		JOIN categories c ON c.id = r.category_id
		WHERE o.id = $1
		FOR UPDATE OF o`

	var (
		offerID, requestID, professionalID, clientID uuid.UUID
		priceCents                                   int64
		proposedPriceCents                           *int64
		status, requestStatus, workflow              string
		expiresAt                                    time.Time
	)
	if err := tx.QueryRow(ctx, lockQuery, params.OfferID).Scan(
		&offerID, &requestID, &professionalID, &priceCents, &proposedPriceCents,
		&status, &expiresAt, &clientID, &requestStatus, &workflow,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return AcceptResult{}, apperr.NotFound(offerNotFoundMessage)
		}
		return AcceptResult{}, fmt.Errorf("lock offer: %w", err)
	}

	if params.ProfessionalID != uuid.Nil && params.ProfessionalID != professionalID {
		return AcceptResult{}, apperr.Forbidden("offer belongs to another professional")
	}
	if params.ClientID != uuid.Nil && params.ClientID != clientID {
		return AcceptResult{}, apperr.Forbidden("request belongs to another client")
	}
	if workflow != params.RequireWorkflow {
		return AcceptResult{}, apperr.WorkflowMismatch(fmt.Sprintf("operation not valid for %s workflow", workflow))
	}
	switch domain.Status(status) {
	case params.FromStatus:
	case domain.StatusExpired:
		return AcceptResult{}, apperr.Expired("offer has expired")
	default:
		return AcceptResult{}, apperr.Conflict(fmt.Sprintf("offer is %s", status))
	}
	if expiresAt.Before(params.Now) {
		return AcceptResult{}, apperr.Expired("offer has expired")
	}
	if requestsdomain.Status(requestStatus) != requestsdomain.StatusBroadcasted {
		return AcceptResult{}, apperr.Conflict("request is no longer open for assignment")
	}

	chargedCents := priceCents
	if params.ChargeProposedPrice && proposedPriceCents != nil {
		chargedCents = *proposedPriceCents
	}

	debit, err := r.wallet.DebitTx(ctx, tx, DebitCommand{
		ProfessionalID: professionalID,
		AmountCents:    chargedCents,
		Reason:         params.ChargeReason,
		ReferenceType:  "lead_offer",
		ReferenceID:    offerID,
	})
	if err != nil {
		return AcceptResult{}, err
	}

	acceptUpdate := `
		UPDATE lead_offers
		SET status = $2, resolved_at = now(), updated_at = now()
		WHERE id = $1 AND status = $3
		RETURNING ` + offerColumns

	row := tx.QueryRow(ctx, acceptUpdate, offerID, domain.StatusAccepted, params.FromStatus)
	offer, err := scanOffer(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) || isUniqueViolation(err, exclusiveAcceptIndex) {
			return AcceptResult{}, apperr.Conflict("offer was resolved concurrently")
		}
		return AcceptResult{}, fmt.Errorf("accept offer: %w", err)
	}

	jobID, err := r.jobs.CreateFromOfferTx(ctx, tx, CreateJobCommand{
		RequestID:      requestID,
		OfferID:        offerID,
		ProfessionalID: professionalID,
		ClientID:       clientID,
	})
	if err != nil {
		return AcceptResult{}, err
	}

	if err := r.requests.AssignTx(ctx, tx, requestID); err != nil {
		return AcceptResult{}, err
	}

	siblingUpdate := `
		UPDATE lead_offers
		SET status = $3, resolved_at = now(), updated_at = now()
		WHERE request_id = $1 AND id <> $2 AND status IN ($4, $5)`
	siblings, err := tx.Exec(ctx, siblingUpdate, requestID, offerID,
		domain.StatusCancelled, domain.StatusOffered, domain.StatusPendingClientApproval)
	if err != nil {
		return AcceptResult{}, fmt.Errorf("cancel sibling offers: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		if isUniqueViolation(err, exclusiveAcceptIndex) {
			return AcceptResult{}, apperr.Conflict("offer was resolved concurrently")
		}
		return AcceptResult{}, fmt.Errorf("commit accept: %w", err)
	}

	return AcceptResult{
		Offer:             offer,
		RequestID:         requestID,
		ClientID:          clientID,
		JobID:             jobID,
		ChargedCents:      chargedCents,
		Debit:             debit,
		CancelledSiblings: int(siblings.RowsAffected()),
	}, nil
}

// ProposePrice counters an offered lead with a price, moving it to
// pending_client_approval.
func (r *Repo) ProposePrice(ctx context.Context, offerID, professionalID uuid.UUID, priceCents int64, now time.Time) (Offer, error) {
	query := `
		UPDATE lead_offers
		SET proposed_price_cents = $2, status = $3, updated_at = now()
		WHERE id = $1 AND professional_id = $4 AND status = $5 AND expires_at > $6
		RETURNING ` + offerColumns

	row := r.pool.QueryRow(ctx, query, offerID, priceCents, domain.StatusPendingClientApproval,
		professionalID, domain.StatusOffered, now)
	offer, err := scanOffer(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Offer{}, r.resolveError(ctx, offerID, professionalID, now)
		}
		return Offer{}, fmt.Errorf("propose price: %w", err)
	}
	return offer, nil
}

// Miss marks an offered lead as passed by its professional.
func (r *Repo) Miss(ctx context.Context, offerID, professionalID uuid.UUID) (Offer, error) {
	query := `
		UPDATE lead_offers
		SET status = $2, resolved_at = now(), updated_at = now()
		WHERE id = $1 AND professional_id = $3 AND status = $4
		RETURNING ` + offerColumns

	row := r.pool.QueryRow(ctx, query, offerID, domain.StatusMissed, professionalID, domain.StatusOffered)
	offer, err := scanOffer(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Offer{}, r.resolveError(ctx, offerID, professionalID, time.Time{})
		}
		return Offer{}, fmt.Errorf("miss offer: %w", err)
	}
	return offer, nil
}

// Cancel withdraws an open offer.
func (r *Repo) Cancel(ctx context.Context, offerID uuid.UUID) (Offer, error) {
	query := `
		UPDATE lead_offers
		SET status = $2, resolved_at = now(), updated_at = now()
		WHERE id = $1 AND status IN ($3, $4)
		RETURNING ` + offerColumns

	row := r.pool.QueryRow(ctx, query, offerID, domain.StatusCancelled,
		domain.StatusOffered, domain.StatusPendingClientApproval)
	offer, err := scanOffer(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Offer{}, r.resolveError(ctx, offerID, uuid.Nil, time.Time{})
		}
		return Offer{}, fmt.Errorf("cancel offer: %w", err)
	}
	return offer, nil
}

// CancelAllForRequest bulk-cancels every open offer of a request.
func (r *Repo) CancelAllForRequest(ctx context.Context, requestID uuid.UUID) (int, error) {
	query := `
		UPDATE lead_offers
		SET status = $2, resolved_at = now(), updated_at = now()
		WHERE request_id = $1 AND status IN ($3, $4)`

	result, err := r.pool.Exec(ctx, query, requestID, domain.StatusCancelled,
		domain.StatusOffered, domain.StatusPendingClientApproval)
	if err != nil {
		return 0, fmt.Errorf("cancel offers for request: %w", err)
	}
	return int(result.RowsAffected()), nil
}

// ExpireOffers sweeps open offers past their deadline. Idempotent.
func (r *Repo) ExpireOffers(ctx context.Context, now time.Time) ([]ExpiredOffer, error) {
	query := `
		UPDATE lead_offers
		SET status = $1, resolved_at = now(), updated_at = now()
		WHERE status IN ($2, $3) AND expires_at < $4
		RETURNING id, request_id, professional_id`

	rows, err := r.pool.Query(ctx, query, domain.StatusExpired,
		domain.StatusOffered, domain.StatusPendingClientApproval, now)
	if err != nil {
		return nil, fmt.Errorf("expire offers: %w", err)
	}
	defer rows.Close()

	expired := make([]ExpiredOffer, 0)
	for rows.Next() {
		var entry ExpiredOffer
		if err := rows.Scan(&entry.ID, &entry.RequestID, &entry.ProfessionalID); err != nil {
			return nil, fmt.Errorf("scan expired offer: %w", err)
		}
		expired = append(expired, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("expire offers: %w", err)
	}

	return expired, nil
}

// resolveError diagnoses why a conditional offer update matched nothing.
func (r *Repo) resolveError(ctx context.Context, offerID, professionalID uuid.UUID, now time.Time) error {
	offer, err := r.GetByID(ctx, offerID)
	if err != nil {
		return err
	}
	if professionalID != uuid.Nil && offer.ProfessionalID != professionalID {
		return apperr.Forbidden("offer belongs to another professional")
	}
	if offer.Status == domain.StatusExpired {
		return apperr.Expired("offer has expired")
	}
	if !now.IsZero() {
		expiresAt, parseErr := time.Parse(time.RFC3339, offer.ExpiresAt)
		if parseErr == nil && expiresAt.Before(now) {
			return apperr.Expired("offer has expired")
		}
	}
	return apperr.InvalidTransition(fmt.Sprintf("offer is %s", offer.Status))
}

func isUniqueViolation(err error, constraint string) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == uniqueViolationCode && pgErr.ConstraintName == constraint
	}
	return false
}

func collectOffers(rows pgx.Rows) ([]Offer, error) {
	offers := make([]Offer, 0)
	for rows.Next() {
		offer, err := scanOffer(rows)
		if err != nil {
			return nil, err
		}
		offers = append(offers, offer)
	}
	return offers, rows.Err()
}

func scanOffer(row pgx.Row) (Offer, error) {
	var offer Offer
	var offeredAt, expiresAt, createdAt, updatedAt time.Time
	var resolvedAt *time.Time
	if err := row.Scan(
		&offer.ID, &offer.RequestID, &offer.ProfessionalID, &offer.PriceCents,
		&offer.ProposedPriceCents, &offer.Status, &offeredAt, &expiresAt,
		&resolvedAt, &createdAt, &updatedAt,
	); err != nil {
		return Offer{}, err
	}
	offer.OfferedAt = offeredAt.Format(time.RFC3339)
	offer.ExpiresAt = expiresAt.Format(time.RFC3339)
	if resolvedAt != nil {
		formatted := resolvedAt.Format(time.RFC3339)
		offer.ResolvedAt = &formatted
	}
	offer.CreatedAt = createdAt.Format(time.RFC3339)
	offer.UpdatedAt = updatedAt.Format(time.RFC3339)
	return offer, nil
}

func scanOfferContext(row pgx.Row, octx *OfferContext) (Offer, time.Time, error) {
	var offer Offer
	var offeredAt, offerExpiresAt, createdAt, updatedAt time.Time
	var resolvedAt *time.Time
	if err := row.Scan(
		&offer.ID, &offer.RequestID, &offer.ProfessionalID, &offer.PriceCents,
		&offer.ProposedPriceCents, &offer.Status, &offeredAt, &offerExpiresAt,
		&resolvedAt, &createdAt, &updatedAt,
		&octx.ClientID, &octx.RequestStatus, &octx.Workflow,
	); err != nil {
		return Offer{}, time.Time{}, err
	}
	offer.OfferedAt = offeredAt.Format(time.RFC3339)
	offer.ExpiresAt = offerExpiresAt.Format(time.RFC3339)
	if resolvedAt != nil {
		formatted := resolvedAt.Format(time.RFC3339)
		offer.ResolvedAt = &formatted
	}
	offer.CreatedAt = createdAt.Format(time.RFC3339)
	offer.UpdatedAt = updatedAt.Format(time.RFC3339)
	return offer, offerExpiresAt, nil
}

func joinColumns(alias string) string {
	return alias + `.id, ` + alias + `.request_id, ` + alias + `.professional_id, ` +
		alias + `.price_cents, ` + alias + `.proposed_price_cents, ` + alias + `.status, ` +
		alias + `.offered_at, ` + alias + `.expires_at, ` + alias + `.resolved_at, ` +
		alias + `.created_at, ` + alias + `.updated_at`
}
