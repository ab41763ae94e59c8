package users

import (
	"time"

	"github.com/google/uuid"
)

// Professional is a health professional allowed to use the system. The
// license number (CRM) is the login identifier.
type Professional struct {
	ID            uuid.UUID `json:"id"`
	Name          string    `json:"name"`
	LicenseNumber string    `json:"license_number"`
	Email         string    `json:"email"`
	PasswordHash  string    `json:"-"`
	CreatedAt     time.Time `json:"created_at"`
}

type RegisterRequest struct {
	Name          string `json:"name" validate:"required"`
	LicenseNumber string `json:"license_number" validate:"required,max=32"`
	Email         string `json:"email" validate:"required,email"`
	Password      string `json:"password" validate:"required,min=8,max=72"`
}

type LoginRequest struct {
	LicenseNumber string `json:"license_number" validate:"required"`
	Password      string `json:"password" validate:"required"`
}

type LoginResponse struct {
	AccessToken  string        `json:"access_token"`
	TokenType    string        `json:"token_type"`
	ExpiresAt    time.Time     `json:"expires_at"`
	Professional *Professional `json:"professional"`
}
