package users

import (
	"context"
	"errors"
)

var (
	ErrNotFound           = errors.New("professional not found")
	ErrConflict           = errors.New("license number or email already registered")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

type ProfessionalRepository interface {
	// Create returns ErrConflict when the license number or email is taken.
	Create(ctx context.Context, p *Professional) error
	GetByLicenseNumber(ctx context.Context, licenseNumber string) (*Professional, error)
}
