package forms

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/ehr/carelog/internal/match"
	"github.com/ehr/carelog/internal/platform/db"
	"github.com/ehr/carelog/internal/platform/metrics"
	"github.com/ehr/carelog/internal/platform/report"
	"github.com/ehr/carelog/pkg/validation"
)

// ReportGenerator renders a record to one or more files.
type ReportGenerator interface {
	Generate(ctx context.Context, record any) (*report.Result, error)
}

type Service struct {
	patients      PatientRepository
	family        FamilyFormRepository
	professionals ProfessionalFormRepository
	reports       ReportGenerator
	txb           db.TxBeginner
	cutoff        float64
	logger        zerolog.Logger
	now           func() time.Time
}

func NewService(patients PatientRepository, family FamilyFormRepository, professionals ProfessionalFormRepository,
	reports ReportGenerator, cutoff float64, logger zerolog.Logger) *Service {
	return &Service{
		patients:      patients,
		family:        family,
		professionals: professionals,
		reports:       reports,
		cutoff:        cutoff,
		logger:        logger.With().Str("component", "forms").Logger(),
		now:           time.Now,
	}
}

// UseTransactions makes each form submission check the patient and insert the
// form inside one transaction started from b.
func (s *Service) UseTransactions(b db.TxBeginner) {
	s.txb = b
}

func (s *Service) inTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if s.txb == nil {
		return fn(ctx)
	}
	return db.WithTx(ctx, s.txb, fn)
}

// -- Patient --

// SubmitPatient creates the patient or merges p into the stored record with
// the same national id.
func (s *Service) SubmitPatient(ctx context.Context, p *Patient) error {
	p.NationalID = strings.TrimSpace(p.NationalID)
	p.Name = strings.TrimSpace(p.Name)
	if err := validation.Struct(p); err != nil {
		return err
	}
	return s.patients.Upsert(ctx, p)
}

func (s *Service) GetPatient(ctx context.Context, nationalID string) (*Patient, error) {
	return s.patients.GetByNationalID(ctx, strings.TrimSpace(nationalID))
}

// GetRecord returns the patient with every family and professional form
// submitted for them, newest first.
func (s *Service) GetRecord(ctx context.Context, nationalID string) (*Record, error) {
	p, err := s.GetPatient(ctx, nationalID)
	if err != nil {
		return nil, err
	}
	family, err := s.family.ListByNationalID(ctx, p.NationalID)
	if err != nil {
		return nil, err
	}
	professional, err := s.professionals.ListByNationalID(ctx, p.NationalID)
	if err != nil {
		return nil, err
	}
	return &Record{Patient: p, FamilyForms: family, ProfessionalForms: professional}, nil
}

// FindPatient ranks every stored patient against q. A search without an
// acceptable match is not an error: the result reports Matched false and the
// best total seen.
func (s *Service) FindPatient(ctx context.Context, q match.Query) (match.Result[*Patient], error) {
	candidates, err := s.patients.ListCandidates(ctx)
	if err != nil {
		return match.Result[*Patient]{}, fmt.Errorf("load match candidates: %w", err)
	}

	res := match.FindBestMatch(q, candidates, s.cutoff)
	metrics.RecordMatch(res.Matched, res.Scores.Total, len(candidates))

	evt := s.logger.Info().
		Int("candidates", len(candidates)).
		Bool("matched", res.Matched).
		Str("best_score", match.Percent(res.Scores.Total))
	if res.Matched {
		evt = evt.Str("patient_id", res.Record.ID.String())
	}
	evt.Msg("patient search")

	return res, nil
}

// -- Family / professional forms --

func (s *Service) SubmitFamilyForm(ctx context.Context, f *FamilyForm) error {
	if err := validation.Struct(f); err != nil {
		return err
	}
	if f.ObservedAt.IsZero() {
		f.ObservedAt = s.now().UTC()
	}
	return s.inTx(ctx, func(ctx context.Context) error {
		if _, err := s.GetPatient(ctx, f.NationalID); err != nil {
			return err
		}
		return s.family.Create(ctx, f)
	})
}

func (s *Service) SubmitProfessionalForm(ctx context.Context, f *ProfessionalForm) error {
	if err := validation.Struct(f); err != nil {
		return err
	}
	if f.AttendedAt.IsZero() {
		f.AttendedAt = s.now().UTC()
	}
	return s.inTx(ctx, func(ctx context.Context) error {
		if _, err := s.GetPatient(ctx, f.NationalID); err != nil {
			return err
		}
		return s.professionals.Create(ctx, f)
	})
}

// -- Reports --

// GenerateReport renders the full record of a patient and returns the path of
// the generated file.
func (s *Service) GenerateReport(ctx context.Context, nationalID string) (string, error) {
	rec, err := s.GetRecord(ctx, nationalID)
	if err != nil {
		return "", err
	}
	res, err := s.reports.Generate(ctx, rec)
	if err != nil {
		return "", err
	}
	return res.File(), nil
}
