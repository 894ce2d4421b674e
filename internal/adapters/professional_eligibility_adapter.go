package adapters

import (
	"context"

	"github.com/google/uuid"

	offerssvc "leadmarket_backend/internal/offers/service"
	prossvc "leadmarket_backend/internal/professionals/service"
)

// ProfessionalEligibilityAdapter adapts the professionals service for offer
// dispatch, satisfying the offers EligibleProfessionalFinder port. It ranks
// by wallet balance; swap it for a geospatial ranker without touching the
// offers context.
type ProfessionalEligibilityAdapter struct {
	professionals *prossvc.Service
}

// NewProfessionalEligibilityAdapter creates a new eligibility adapter.
func NewProfessionalEligibilityAdapter(professionals *prossvc.Service) *ProfessionalEligibilityAdapter {
	return &ProfessionalEligibilityAdapter{professionals: professionals}
}

var _ offerssvc.EligibleProfessionalFinder = (*ProfessionalEligibilityAdapter)(nil)

// Find returns the IDs of professionals eligible for a lead.
func (a *ProfessionalEligibilityAdapter) Find(ctx context.Context, categoryID uuid.UUID, minBalanceCents int64, limit int) ([]uuid.UUID, error) {
	professionals, err := a.professionals.FindEligible(ctx, categoryID, minBalanceCents, limit)
	if err != nil {
		return nil, err
	}

	ids := make([]uuid.UUID, 0, len(professionals))
	for _, professional := range professionals {
		ids = append(ids, professional.ID)
	}
	return ids, nil
}
