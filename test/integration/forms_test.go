package integration

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/ehr/carelog/internal/domain/forms"
	"github.com/ehr/carelog/internal/match"
	"github.com/ehr/carelog/internal/platform/db"
)

func newFormsService(t *testing.T) *forms.Service {
	t.Helper()
	pool := newSchemaPool(t, "forms")
	svc := forms.NewService(
		forms.NewPatientRepo(pool),
		forms.NewFamilyFormRepo(pool),
		forms.NewProfessionalFormRepo(pool),
		nil, match.DefaultCutoff, zerolog.Nop(),
	)
	svc.UseTransactions(pool)
	return svc
}

func TestPatientUpsert(t *testing.T) {
	ctx := context.Background()
	svc := newFormsService(t)

	t.Run("Create", func(t *testing.T) {
		p := &forms.Patient{
			NationalID: "12345678900",
			Name:       "Maria Silva",
			BirthDate:  ptrStr("1980-01-01"),
			MotherName: ptrStr("Joana"),
			StrokeType: ptrStr("ischemic"),
		}
		if err := svc.SubmitPatient(ctx, p); err != nil {
			t.Fatalf("SubmitPatient: %v", err)
		}
		if p.RegisteredAt == nil || p.RegisteredAt.IsZero() {
			t.Error("expected registered_at to default to now")
		}

		fetched, err := svc.GetPatient(ctx, "12345678900")
		if err != nil {
			t.Fatalf("GetPatient: %v", err)
		}
		if fetched.ID != p.ID {
			t.Errorf("expected ID=%s, got %s", p.ID, fetched.ID)
		}
		if fetched.MatchBirthDate() != "1980-01-01" {
			t.Errorf("expected birth date 1980-01-01, got %q", fetched.MatchBirthDate())
		}
	})

	t.Run("MergeKeepsAbsentFields", func(t *testing.T) {
		update := &forms.Patient{
			NationalID:   "12345678900",
			Name:         "Maria da Silva",
			Thrombolysis: ptrBool(true),
		}
		if err := svc.SubmitPatient(ctx, update); err != nil {
			t.Fatalf("SubmitPatient: %v", err)
		}

		fetched, err := svc.GetPatient(ctx, "12345678900")
		if err != nil {
			t.Fatalf("GetPatient: %v", err)
		}
		if fetched.Name != "Maria da Silva" {
			t.Errorf("expected updated name, got %s", fetched.Name)
		}
		if fetched.StrokeType == nil || *fetched.StrokeType != "ischemic" {
			t.Errorf("expected stroke type to survive the merge, got %v", fetched.StrokeType)
		}
		if fetched.MatchMotherName() != "Joana" {
			t.Errorf("expected mother name Joana, got %q", fetched.MatchMotherName())
		}
		if fetched.Thrombolysis == nil || !*fetched.Thrombolysis {
			t.Error("expected thrombolysis to be set")
		}
	})

	t.Run("NotFound", func(t *testing.T) {
		_, err := svc.GetPatient(ctx, "does-not-exist")
		if !errors.Is(err, forms.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})
}

func TestPatientUpsert_RolledBackWithTx(t *testing.T) {
	ctx := context.Background()
	pool := newSchemaPool(t, "formstx")
	repo := forms.NewPatientRepo(pool)

	sentinel := errors.New("abort")
	err := db.WithTx(ctx, pool, func(ctx context.Context) error {
		if err := repo.Upsert(ctx, &forms.Patient{NationalID: "999", Name: "Rolled Back"}); err != nil {
			return err
		}
		return sentinel
	})
	if !errors.Is(err, sentinel) {
		t.Fatalf("expected sentinel error, got %v", err)
	}

	if _, err := repo.GetByNationalID(ctx, "999"); !errors.Is(err, forms.ErrNotFound) {
		t.Errorf("expected the upsert to be rolled back, got %v", err)
	}
}

func TestFindPatient(t *testing.T) {
	ctx := context.Background()
	svc := newFormsService(t)

	for _, p := range []*forms.Patient{
		{NationalID: "111", Name: "Pedro Alves", BirthDate: ptrStr("1970-05-05"), MotherName: ptrStr("Clara")},
		{NationalID: "222", Name: "Maria Silva", BirthDate: ptrStr("1980-01-01"), MotherName: ptrStr("Joana")},
		{NationalID: "333", Name: "Maria Silva", BirthDate: ptrStr("1980-01-01"), MotherName: ptrStr("Joana")},
	} {
		if err := svc.SubmitPatient(ctx, p); err != nil {
			t.Fatalf("SubmitPatient %s: %v", p.NationalID, err)
		}
	}

	res, err := svc.FindPatient(ctx, match.Query{Name: "maria silva", BirthDate: "1980-01-01", MotherName: "joana"})
	if err != nil {
		t.Fatalf("FindPatient: %v", err)
	}
	if !res.Matched {
		t.Fatal("expected a match")
	}
	if res.Record.NationalID != "222" {
		t.Errorf("expected the first registered duplicate to win, got %s", res.Record.NationalID)
	}

	res, err = svc.FindPatient(ctx, match.Query{Name: "Mario Silva", BirthDate: "1999-09-09", MotherName: "Josiane"})
	if err != nil {
		t.Fatalf("FindPatient: %v", err)
	}
	if res.Matched {
		t.Error("expected no match below the cutoff")
	}
	if got := match.Percent(res.Scores.Total); got != "48.9%" {
		t.Errorf("expected closest score 48.9%%, got %s", got)
	}
}

func TestFormsNewestFirst(t *testing.T) {
	ctx := context.Background()
	svc := newFormsService(t)

	if err := svc.SubmitPatient(ctx, &forms.Patient{NationalID: "444", Name: "Ana Souza"}); err != nil {
		t.Fatalf("SubmitPatient: %v", err)
	}

	base := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	for i, rel := range []string{"daughter", "son"} {
		f := &forms.FamilyForm{
			NationalID:           "444",
			Relationship:         rel,
			ObservedAt:           base.Add(time.Duration(i) * time.Hour),
			ObservedDifficulties: []string{"speech"},
		}
		if err := svc.SubmitFamilyForm(ctx, f); err != nil {
			t.Fatalf("SubmitFamilyForm: %v", err)
		}
	}
	for i, prof := range []string{"crm-1", "crm-2"} {
		f := &forms.ProfessionalForm{
			NationalID:     "444",
			ProfessionalID: prof,
			AttendedAt:     base.Add(time.Duration(i) * time.Hour),
		}
		if err := svc.SubmitProfessionalForm(ctx, f); err != nil {
			t.Fatalf("SubmitProfessionalForm: %v", err)
		}
	}

	rec, err := svc.GetRecord(ctx, "444")
	if err != nil {
		t.Fatalf("GetRecord: %v", err)
	}
	if len(rec.FamilyForms) != 2 || rec.FamilyForms[0].Relationship != "son" {
		t.Errorf("expected newest family form first, got %+v", rec.FamilyForms)
	}
	if len(rec.FamilyForms[0].ObservedDifficulties) != 1 {
		t.Errorf("expected observed difficulties to round-trip, got %v", rec.FamilyForms[0].ObservedDifficulties)
	}
	if len(rec.ProfessionalForms) != 2 || rec.ProfessionalForms[0].ProfessionalID != "crm-2" {
		t.Errorf("expected newest professional form first, got %+v", rec.ProfessionalForms)
	}
}

func TestFamilyForm_UnknownPatient(t *testing.T) {
	svc := newFormsService(t)
	err := svc.SubmitFamilyForm(context.Background(), &forms.FamilyForm{NationalID: "nobody", Relationship: "son"})
	if !errors.Is(err, forms.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}
