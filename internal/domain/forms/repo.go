package forms

import (
	"context"
	"errors"
)

// ErrNotFound is returned when no record exists for a national id.
var ErrNotFound = errors.New("record not found")

type PatientRepository interface {
	// Upsert inserts p or, when its national id already exists, overwrites
	// only the fields that are set on p. p is refreshed from the stored row.
	Upsert(ctx context.Context, p *Patient) error
	GetByNationalID(ctx context.Context, nationalID string) (*Patient, error)
	// ListCandidates returns every stored patient in registration order.
	ListCandidates(ctx context.Context) ([]*Patient, error)
}

type FamilyFormRepository interface {
	Create(ctx context.Context, f *FamilyForm) error
	ListByNationalID(ctx context.Context, nationalID string) ([]*FamilyForm, error)
}

type ProfessionalFormRepository interface {
	Create(ctx context.Context, f *ProfessionalForm) error
	ListByNationalID(ctx context.Context, nationalID string) ([]*ProfessionalForm, error)
}
