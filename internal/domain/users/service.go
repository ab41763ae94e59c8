package users

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/ehr/carelog/internal/platform/auth"
	"github.com/ehr/carelog/internal/platform/metrics"
	"github.com/ehr/carelog/pkg/validation"
)

// TokenIssuer signs access tokens for authenticated professionals.
type TokenIssuer interface {
	Issue(subject, name string, roles []string) (*auth.Token, error)
}

type Service struct {
	repo     ProfessionalRepository
	tokens   TokenIssuer
	hashCost int
	logger   zerolog.Logger
}

func NewService(repo ProfessionalRepository, tokens TokenIssuer, logger zerolog.Logger) *Service {
	return &Service{
		repo:     repo,
		tokens:   tokens,
		hashCost: bcrypt.DefaultCost,
		logger:   logger.With().Str("component", "users").Logger(),
	}
}

func (s *Service) Register(ctx context.Context, req *RegisterRequest) (*Professional, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.LicenseNumber = strings.TrimSpace(req.LicenseNumber)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if err := validation.Struct(req); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.hashCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	p := &Professional{
		Name:          req.Name,
		LicenseNumber: req.LicenseNumber,
		Email:         req.Email,
		PasswordHash:  string(hash),
	}
	if err := s.repo.Create(ctx, p); err != nil {
		return nil, err
	}
	s.logger.Info().Str("license_number", p.LicenseNumber).Msg("professional registered")
	return p, nil
}

// Login returns ErrNotFound for an unknown license number and
// ErrInvalidCredentials for a wrong password.
func (s *Service) Login(ctx context.Context, req *LoginRequest) (*LoginResponse, error) {
	req.LicenseNumber = strings.TrimSpace(req.LicenseNumber)
	if err := validation.Struct(req); err != nil {
		return nil, err
	}

	p, err := s.repo.GetByLicenseNumber(ctx, req.LicenseNumber)
	if errors.Is(err, ErrNotFound) {
		metrics.RecordLogin("unknown_user")
		return nil, err
	}
	if err != nil {
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(p.PasswordHash), []byte(req.Password)); err != nil {
		metrics.RecordLogin("invalid_password")
		s.logger.Warn().Str("license_number", p.LicenseNumber).Msg("login rejected")
		return nil, ErrInvalidCredentials
	}

	tok, err := s.tokens.Issue(p.LicenseNumber, p.Name, []string{auth.RoleProfessional})
	if err != nil {
		return nil, err
	}
	metrics.RecordLogin("success")

	return &LoginResponse{
		AccessToken:  tok.AccessToken,
		TokenType:    tok.TokenType,
		ExpiresAt:    tok.ExpiresAt,
		Professional: p,
	}, nil
}
