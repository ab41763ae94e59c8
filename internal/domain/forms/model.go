package forms

import (
	"time"

	"github.com/google/uuid"
)

// DateLayout is the wire and comparison format of birth dates.
const DateLayout = "2006-01-02"

// Patient is the personal and clinical record of one stroke patient, keyed by
// national id. Every optional field is a pointer: nil means "not submitted",
// and an upsert leaves the stored value untouched.
type Patient struct {
	ID           uuid.UUID  `json:"id"`
	NationalID   string     `json:"national_id" validate:"required,max=32"`
	Name         string     `json:"name" validate:"required"`
	BirthDate    *string    `json:"birth_date,omitempty" validate:"omitempty,datetime=2006-01-02"`
	MotherName   *string    `json:"mother_name,omitempty"`
	Sex          *string    `json:"sex,omitempty"`
	AgeGroup     *string    `json:"age_group,omitempty"`
	UserType     *string    `json:"user_type,omitempty"`
	RegisteredAt *time.Time `json:"registered_at,omitempty"`

	SymptomOnsetAt              *time.Time `json:"symptom_onset_at,omitempty"`
	StrokeAt                    *time.Time `json:"stroke_at,omitempty"`
	StrokeType                  *string    `json:"stroke_type,omitempty"`
	AdmittedInTherapeuticWindow *bool      `json:"admitted_in_therapeutic_window,omitempty"`
	Thrombolysis                *bool      `json:"thrombolysis,omitempty"`
	Thrombectomy                *bool      `json:"thrombectomy,omitempty"`
	MedicationsUsed             *string    `json:"medications_used,omitempty"`
	PriorStroke                 *bool      `json:"prior_stroke,omitempty"`
	PriorStrokeDetails          *string    `json:"prior_stroke_details,omitempty"`
	InvasiveProcedures          *string    `json:"invasive_procedures,omitempty"`

	MechanicalVentilation *bool   `json:"mechanical_ventilation,omitempty"`
	VentilationDuration   *string `json:"ventilation_duration,omitempty"`
	Intubated             *bool   `json:"intubated,omitempty"`
	Tracheostomized       *bool   `json:"tracheostomized,omitempty"`

	Sequelae                *string `json:"sequelae,omitempty"`
	Outcome                 *string `json:"outcome,omitempty"`
	DischargeMedication     *bool   `json:"discharge_medication,omitempty"`
	DischargeMedicationName *string `json:"discharge_medication_name,omitempty"`

	CaregiverRelationship *string `json:"caregiver_relationship,omitempty"`
	ExternalCaregiver     *string `json:"external_caregiver,omitempty"`
	HospitalArrivalTime   *string `json:"hospital_arrival_time,omitempty"`

	Comorbidities       *string `json:"comorbidities,omitempty"`
	FamilyHistory       *string `json:"family_history,omitempty"`
	DailyMedication     *bool   `json:"daily_medication,omitempty"`
	DailyMedicationName *string `json:"daily_medication_name,omitempty"`

	Diet                 *string `json:"diet,omitempty"`
	PhysicalActivity     *string `json:"physical_activity,omitempty"`
	Smoking              *string `json:"smoking,omitempty"`
	Alcohol              *string `json:"alcohol,omitempty"`
	ProfessionalFollowUp *string `json:"professional_follow_up,omitempty"`
	MedicationUse        *string `json:"medication_use,omitempty"`
	MedicationUseName    *string `json:"medication_use_name,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// MatchName, MatchBirthDate and MatchMotherName make *Patient a
// match.Candidate.
func (p *Patient) MatchName() string       { return p.Name }
func (p *Patient) MatchBirthDate() string  { return deref(p.BirthDate) }
func (p *Patient) MatchMotherName() string { return deref(p.MotherName) }

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// FamilyForm is an observation submitted by a relative or caregiver.
type FamilyForm struct {
	ID                   uuid.UUID `json:"id"`
	NationalID           string    `json:"national_id"`
	Relationship         string    `json:"relationship" validate:"required"`
	ObservedAt           time.Time `json:"observed_at"`
	PatientMood          *string   `json:"patient_mood,omitempty"`
	ObservedDifficulties []string  `json:"observed_difficulties"`
	GeneralNotes         *string   `json:"general_notes,omitempty"`
	WarningSigns         *string   `json:"warning_signs,omitempty"`
	CreatedAt            time.Time `json:"created_at"`
	UpdatedAt            time.Time `json:"updated_at"`
}

// ProfessionalForm is a follow-up attendance recorded by a health
// professional.
type ProfessionalForm struct {
	ID                    uuid.UUID `json:"id"`
	NationalID            string    `json:"national_id"`
	ProfessionalID        string    `json:"professional_id" validate:"required"`
	ProfessionalName      *string   `json:"professional_name,omitempty"`
	AttendedAt            time.Time `json:"attended_at"`
	AttendanceType        *string   `json:"attendance_type,omitempty"`
	PatientProgress       *string   `json:"patient_progress,omitempty"`
	VitalSigns            *string   `json:"vital_signs,omitempty"`
	MedicationAdjustments *string   `json:"medication_adjustments,omitempty"`
	TreatmentPlan         *string   `json:"treatment_plan,omitempty"`
	CreatedAt             time.Time `json:"created_at"`
	UpdatedAt             time.Time `json:"updated_at"`
}

// Record is everything stored under one national id.
type Record struct {
	Patient           *Patient            `json:"patient"`
	FamilyForms       []*FamilyForm       `json:"family_forms"`
	ProfessionalForms []*ProfessionalForm `json:"professional_forms"`
}
