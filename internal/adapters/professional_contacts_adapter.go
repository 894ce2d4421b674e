package adapters

import (
	"context"

	"github.com/google/uuid"

	prosrepo "leadmarket_backend/internal/professionals/repository"
)

// ProfessionalContactsAdapter adapts the professionals repository for the
// outbox dispatcher, satisfying the scheduler ProfessionalContacts port.
type ProfessionalContactsAdapter struct {
	professionals prosrepo.Repository
}

// NewProfessionalContactsAdapter creates a new professional contacts adapter.
func NewProfessionalContactsAdapter(professionals prosrepo.Repository) *ProfessionalContactsAdapter {
	return &ProfessionalContactsAdapter{professionals: professionals}
}

// GetContact returns the name and email address of a professional.
func (a *ProfessionalContactsAdapter) GetContact(ctx context.Context, professionalID uuid.UUID) (string, string, error) {
	professional, err := a.professionals.GetByID(ctx, professionalID)
	if err != nil {
		return "", "", err
	}
	return professional.Name, professional.Email, nil
}
