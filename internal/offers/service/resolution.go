package service

import (
	"context"
	"time"

	"leadmarket_backend/internal/events"
	"leadmarket_backend/internal/offers/domain"
	"leadmarket_backend/internal/offers/repository"
	"leadmarket_backend/platform/apperr"

	"github.com/google/uuid"
)

func notYourOffer() error {
	return apperr.Forbidden("offer belongs to another professional")
}

// Accept resolves a first-click offer in favor of the calling professional.
// The repository runs the debit, status flip, job creation, request
// assignment and sibling cancellation in one transaction; events are
// published only after it commits.
func (s *Service) Accept(ctx context.Context, offerID, professionalID uuid.UUID) (repository.AcceptResult, error) {
	result, err := s.repo.Accept(ctx, repository.AcceptParams{
		OfferID:         offerID,
		ProfessionalID:  professionalID,
		FromStatus:      domain.StatusOffered,
		RequireWorkflow: domain.WorkflowFirstClick,
		ChargeReason:    "lead charge",
		Now:             time.Now(),
	})
	if err != nil {
		return repository.AcceptResult{}, err
	}

	s.publishAccepted(ctx, result, domain.StatusOffered, "lead charge")
	return result, nil
}

// ClientApprove resolves a countered lead-offer in favor of the professional
// whose proposal the client picked. The charged amount is the category lead
// cost unless configured to charge the proposed price.
func (s *Service) ClientApprove(ctx context.Context, offerID, clientID uuid.UUID) (repository.AcceptResult, error) {
	result, err := s.repo.Accept(ctx, repository.AcceptParams{
		OfferID:             offerID,
		ClientID:            clientID,
		FromStatus:          domain.StatusPendingClientApproval,
		RequireWorkflow:     domain.WorkflowLeadOffer,
		ChargeProposedPrice: s.walletCfg.ChargeProposedPrice(),
		ChargeReason:        "lead charge on client approval",
		Now:                 time.Now(),
	})
	if err != nil {
		return repository.AcceptResult{}, err
	}

	s.publishAccepted(ctx, result, domain.StatusPendingClientApproval, "lead charge on client approval")
	return result, nil
}

func (s *Service) publishAccepted(ctx context.Context, result repository.AcceptResult, from domain.Status, reason string) {
	s.log.StateTransition("offer", result.Offer.ID.String(), string(from), string(domain.StatusAccepted))
	s.log.WalletOp("debit", result.Offer.ProfessionalID.String(), result.ChargedCents, result.Debit.BalanceAfterCents)

	s.bus.Publish(ctx, events.OfferAccepted{
		BaseEvent:      events.NewBaseEvent(),
		OfferID:        result.Offer.ID,
		RequestID:      result.RequestID,
		ProfessionalID: result.Offer.ProfessionalID,
		ClientID:       result.ClientID,
		JobID:          result.JobID,
		ChargedCents:   result.ChargedCents,
	})
	s.bus.Publish(ctx, events.WalletDebited{
		BaseEvent:         events.NewBaseEvent(),
		ProfessionalID:    result.Offer.ProfessionalID,
		TransactionID:     result.Debit.TransactionID,
		AmountCents:       result.ChargedCents,
		BalanceAfterCents: result.Debit.BalanceAfterCents,
		Reason:            reason,
	})
	if result.Debit.CrossedThreshold {
		s.bus.Publish(ctx, events.WalletLowBalance{
			BaseEvent:      events.NewBaseEvent(),
			ProfessionalID: result.Offer.ProfessionalID,
			BalanceCents:   result.Debit.BalanceAfterCents,
			ThresholdCents: result.Debit.ThresholdCents,
		})
	}
	s.bus.Publish(ctx, events.JobCreated{
		BaseEvent:      events.NewBaseEvent(),
		JobID:          result.JobID,
		RequestID:      result.RequestID,
		OfferID:        result.Offer.ID,
		ProfessionalID: result.Offer.ProfessionalID,
		ClientID:       result.ClientID,
	})
}

// ProposePrice counters an offered lead with a price. Only valid under the
// lead-offer workflow.
func (s *Service) ProposePrice(ctx context.Context, offerID, professionalID uuid.UUID, priceCents int64) (repository.Offer, error) {
	octx, err := s.repo.GetContext(ctx, offerID)
	if err != nil {
		return repository.Offer{}, err
	}
	if octx.Offer.ProfessionalID != professionalID {
		return repository.Offer{}, notYourOffer()
	}
	if octx.Workflow != domain.WorkflowLeadOffer {
		return repository.Offer{}, apperr.WorkflowMismatch("price proposals are only valid for the lead offer workflow")
	}

	offer, err := s.repo.ProposePrice(ctx, offerID, professionalID, priceCents, time.Now())
	if err != nil {
		return repository.Offer{}, err
	}

	s.bus.Publish(ctx, events.OfferPriceProposed{
		BaseEvent:          events.NewBaseEvent(),
		OfferID:            offer.ID,
		RequestID:          offer.RequestID,
		ProfessionalID:     offer.ProfessionalID,
		ClientID:           octx.ClientID,
		ProposedPriceCents: priceCents,
	})
	return offer, nil
}

// Miss marks an offered lead as passed by its professional.
func (s *Service) Miss(ctx context.Context, offerID, professionalID uuid.UUID) (repository.Offer, error) {
	offer, err := s.repo.Miss(ctx, offerID, professionalID)
	if err != nil {
		return repository.Offer{}, err
	}
	s.log.StateTransition("offer", offerID.String(), string(domain.StatusOffered), string(domain.StatusMissed))
	return offer, nil
}

// Cancel withdraws an open offer. Administrative.
func (s *Service) Cancel(ctx context.Context, offerID uuid.UUID) (repository.Offer, error) {
	return s.repo.Cancel(ctx, offerID)
}

// CancelAllForRequest bulk-cancels every open offer of a request.
func (s *Service) CancelAllForRequest(ctx context.Context, requestID uuid.UUID) (int, error) {
	return s.repo.CancelAllForRequest(ctx, requestID)
}

// ExpireOffers sweeps open offers past their deadline and publishes an
// event per swept row. Safe to re-run.
func (s *Service) ExpireOffers(ctx context.Context) (int, error) {
	expired, err := s.repo.ExpireOffers(ctx, time.Now())
	if err != nil {
		return 0, err
	}

	for _, entry := range expired {
		s.bus.Publish(ctx, events.OfferExpired{
			BaseEvent:      events.NewBaseEvent(),
			OfferID:        entry.ID,
			RequestID:      entry.RequestID,
			ProfessionalID: entry.ProfessionalID,
		})
	}

	s.log.SweepResult("offers", len(expired))
	return len(expired), nil
}
