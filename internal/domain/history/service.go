package history

import (
	"context"
	"strings"
	"time"

	"github.com/ehr/carelog/pkg/validation"
)

type Service struct {
	repo Repository
	now  func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, now: time.Now}
}

// Record stores e, defaulting the patient name to UnknownPatient and the
// timestamp to now.
func (s *Service) Record(ctx context.Context, e *Entry) error {
	e.Description = strings.TrimSpace(e.Description)
	e.ProfessionalID = strings.TrimSpace(e.ProfessionalID)
	if err := validation.Struct(e); err != nil {
		return err
	}
	if strings.TrimSpace(e.PatientName) == "" {
		e.PatientName = UnknownPatient
	}
	if e.Timestamp.IsZero() {
		e.Timestamp = s.now().UTC()
	}
	return s.repo.Create(ctx, e)
}

func (s *Service) List(ctx context.Context, limit, offset int) ([]*Entry, int, error) {
	return s.repo.List(ctx, limit, offset)
}

func (s *Service) ListByProfessional(ctx context.Context, professionalID string, limit, offset int) ([]*Entry, int, error) {
	return s.repo.ListByProfessional(ctx, professionalID, limit, offset)
}
