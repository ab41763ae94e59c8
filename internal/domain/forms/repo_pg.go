package forms

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ehr/carelog/internal/platform/db"
)

type querier interface {
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
}

// -- Patient Repository --

type patientRepoPG struct {
	pool *pgxpool.Pool
}

func NewPatientRepo(pool *pgxpool.Pool) PatientRepository {
	return &patientRepoPG{pool: pool}
}

func (r *patientRepoPG) conn(ctx context.Context) querier {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

// patientOptionalCols are the columns an upsert only overwrites when the
// submitted value is non-null. Order matches Patient.optionalArgs.
var patientOptionalCols = []string{
	"birth_date", "mother_name", "sex", "age_group", "user_type",
	"symptom_onset_at", "stroke_at", "stroke_type", "admitted_in_therapeutic_window",
	"thrombolysis", "thrombectomy", "medications_used", "prior_stroke",
	"prior_stroke_details", "invasive_procedures",
	"mechanical_ventilation", "ventilation_duration", "intubated", "tracheostomized",
	"sequelae", "outcome", "discharge_medication", "discharge_medication_name",
	"caregiver_relationship", "external_caregiver", "hospital_arrival_time",
	"comorbidities", "family_history", "daily_medication", "daily_medication_name",
	"diet", "physical_activity", "smoking", "alcohol", "professional_follow_up",
	"medication_use", "medication_use_name",
}

func (p *Patient) optionalArgs() []any {
	return []any{
		p.BirthDate, p.MotherName, p.Sex, p.AgeGroup, p.UserType,
		p.SymptomOnsetAt, p.StrokeAt, p.StrokeType, p.AdmittedInTherapeuticWindow,
		p.Thrombolysis, p.Thrombectomy, p.MedicationsUsed, p.PriorStroke,
		p.PriorStrokeDetails, p.InvasiveProcedures,
		p.MechanicalVentilation, p.VentilationDuration, p.Intubated, p.Tracheostomized,
		p.Sequelae, p.Outcome, p.DischargeMedication, p.DischargeMedicationName,
		p.CaregiverRelationship, p.ExternalCaregiver, p.HospitalArrivalTime,
		p.Comorbidities, p.FamilyHistory, p.DailyMedication, p.DailyMedicationName,
		p.Diet, p.PhysicalActivity, p.Smoking, p.Alcohol, p.ProfessionalFollowUp,
		p.MedicationUse, p.MedicationUseName,
	}
}

// patientCols renders birth_date as text so it compares as a plain string.
var patientCols = "id, national_id, name, to_char(birth_date, 'YYYY-MM-DD'), " +
	strings.Join(patientOptionalCols[1:], ", ") +
	", registered_at, created_at, updated_at"

// upsertPatientSQL has $1 id, $2 national_id, $3 name, $4 registered_at and
// the optional columns from $5 on.
var upsertPatientSQL = buildUpsertPatientSQL()

func buildUpsertPatientSQL() string {
	const firstOptional = 5
	cols := make([]string, 0, len(patientOptionalCols))
	vals := make([]string, 0, len(patientOptionalCols))
	sets := make([]string, 0, len(patientOptionalCols))
	for i, col := range patientOptionalCols {
		param := fmt.Sprintf("$%d", firstOptional+i)
		if col == "birth_date" {
			param += "::text::date"
		}
		cols = append(cols, col)
		vals = append(vals, param)
		sets = append(sets, fmt.Sprintf("%s = COALESCE(%s, patient_form.%s)", col, param, col))
	}

	return `INSERT INTO patient_form (id, national_id, name, registered_at, ` + strings.Join(cols, ", ") + `)
		VALUES ($1, $2, $3, COALESCE($4, NOW()), ` + strings.Join(vals, ", ") + `)
		ON CONFLICT (national_id) DO UPDATE SET
			name = EXCLUDED.name,
			registered_at = COALESCE($4, patient_form.registered_at),
			` + strings.Join(sets, ",\n\t\t\t") + `,
			updated_at = NOW()
		RETURNING ` + patientCols
}

func (r *patientRepoPG) Upsert(ctx context.Context, p *Patient) error {
	args := append([]any{uuid.New(), p.NationalID, p.Name, p.RegisteredAt}, p.optionalArgs()...)
	stored, err := scanPatient(r.conn(ctx).QueryRow(ctx, upsertPatientSQL, args...))
	if err != nil {
		return fmt.Errorf("upsert patient: %w", err)
	}
	*p = *stored
	return nil
}

func (r *patientRepoPG) GetByNationalID(ctx context.Context, nationalID string) (*Patient, error) {
	p, err := scanPatient(r.conn(ctx).QueryRow(ctx,
		`SELECT `+patientCols+` FROM patient_form WHERE national_id = $1`, nationalID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get patient: %w", err)
	}
	return p, nil
}

func (r *patientRepoPG) ListCandidates(ctx context.Context) ([]*Patient, error) {
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+patientCols+` FROM patient_form ORDER BY registered_at, id`)
	if err != nil {
		return nil, fmt.Errorf("list patients: %w", err)
	}
	defer rows.Close()

	var out []*Patient
	for rows.Next() {
		p, err := scanPatient(rows)
		if err != nil {
			return nil, fmt.Errorf("scan patient: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func scanPatient(row pgx.Row) (*Patient, error) {
	var p Patient
	err := row.Scan(
		&p.ID, &p.NationalID, &p.Name, &p.BirthDate,
		&p.MotherName, &p.Sex, &p.AgeGroup, &p.UserType,
		&p.SymptomOnsetAt, &p.StrokeAt, &p.StrokeType, &p.AdmittedInTherapeuticWindow,
		&p.Thrombolysis, &p.Thrombectomy, &p.MedicationsUsed, &p.PriorStroke,
		&p.PriorStrokeDetails, &p.InvasiveProcedures,
		&p.MechanicalVentilation, &p.VentilationDuration, &p.Intubated, &p.Tracheostomized,
		&p.Sequelae, &p.Outcome, &p.DischargeMedication, &p.DischargeMedicationName,
		&p.CaregiverRelationship, &p.ExternalCaregiver, &p.HospitalArrivalTime,
		&p.Comorbidities, &p.FamilyHistory, &p.DailyMedication, &p.DailyMedicationName,
		&p.Diet, &p.PhysicalActivity, &p.Smoking, &p.Alcohol, &p.ProfessionalFollowUp,
		&p.MedicationUse, &p.MedicationUseName,
		&p.RegisteredAt, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// -- FamilyForm Repository --

type familyFormRepoPG struct {
	pool *pgxpool.Pool
}

func NewFamilyFormRepo(pool *pgxpool.Pool) FamilyFormRepository {
	return &familyFormRepoPG{pool: pool}
}

func (r *familyFormRepoPG) conn(ctx context.Context) querier {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const familyFormCols = `id, national_id, relationship, observed_at, patient_mood,
	observed_difficulties, general_notes, warning_signs, created_at, updated_at`

func (r *familyFormRepoPG) Create(ctx context.Context, f *FamilyForm) error {
	f.ID = uuid.New()
	if f.ObservedDifficulties == nil {
		f.ObservedDifficulties = []string{}
	}
	err := r.conn(ctx).QueryRow(ctx, `
		INSERT INTO family_form (id, national_id, relationship, observed_at, patient_mood,
			observed_difficulties, general_notes, warning_signs)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at, updated_at`,
		f.ID, f.NationalID, f.Relationship, f.ObservedAt, f.PatientMood,
		f.ObservedDifficulties, f.GeneralNotes, f.WarningSigns,
	).Scan(&f.CreatedAt, &f.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create family form: %w", err)
	}
	return nil
}

func (r *familyFormRepoPG) ListByNationalID(ctx context.Context, nationalID string) ([]*FamilyForm, error) {
	rows, err := r.conn(ctx).Query(ctx, `SELECT `+familyFormCols+`
		FROM family_form WHERE national_id = $1 ORDER BY observed_at DESC`, nationalID)
	if err != nil {
		return nil, fmt.Errorf("list family forms: %w", err)
	}
	defer rows.Close()

	out := []*FamilyForm{}
	for rows.Next() {
		var f FamilyForm
		if err := rows.Scan(&f.ID, &f.NationalID, &f.Relationship, &f.ObservedAt, &f.PatientMood,
			&f.ObservedDifficulties, &f.GeneralNotes, &f.WarningSigns, &f.CreatedAt, &f.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan family form: %w", err)
		}
		out = append(out, &f)
	}
	return out, rows.Err()
}

// -- ProfessionalForm Repository --

type professionalFormRepoPG struct {
	pool *pgxpool.Pool
}

func NewProfessionalFormRepo(pool *pgxpool.Pool) ProfessionalFormRepository {
	return &professionalFormRepoPG{pool: pool}
}

func (r *professionalFormRepoPG) conn(ctx context.Context) querier {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const professionalFormCols = `id, national_id, professional_id, professional_name, attended_at,
	attendance_type, patient_progress, vital_signs, medication_adjustments, treatment_plan,
	created_at, updated_at`

func (r *professionalFormRepoPG) Create(ctx context.Context, f *ProfessionalForm) error {
	f.ID = uuid.New()
	err := r.conn(ctx).QueryRow(ctx, `
		INSERT INTO professional_form (id, national_id, professional_id, professional_name, attended_at,
			attendance_type, patient_progress, vital_signs, medication_adjustments, treatment_plan)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING created_at, updated_at`,
		f.ID, f.NationalID, f.ProfessionalID, f.ProfessionalName, f.AttendedAt,
		f.AttendanceType, f.PatientProgress, f.VitalSigns, f.MedicationAdjustments, f.TreatmentPlan,
	).Scan(&f.CreatedAt, &f.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create professional form: %w", err)
	}
	return nil
}

func (r *professionalFormRepoPG) ListByNationalID(ctx context.Context, nationalID string) ([]*ProfessionalForm, error) {
	rows, err := r.conn(ctx).Query(ctx, `SELECT `+professionalFormCols+`
		FROM professional_form WHERE national_id = $1 ORDER BY attended_at DESC`, nationalID)
	if err != nil {
		return nil, fmt.Errorf("list professional forms: %w", err)
	}
	defer rows.Close()

	out := []*ProfessionalForm{}
	for rows.Next() {
		var f ProfessionalForm
		if err := rows.Scan(&f.ID, &f.NationalID, &f.ProfessionalID, &f.ProfessionalName, &f.AttendedAt,
			&f.AttendanceType, &f.PatientProgress, &f.VitalSigns, &f.MedicationAdjustments, &f.TreatmentPlan,
			&f.CreatedAt, &f.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan professional form: %w", err)
		}
		out = append(out, &f)
	}
	return out, rows.Err()
}
