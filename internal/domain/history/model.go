package history

import (
	"time"

	"github.com/google/uuid"
)

// UnknownPatient is stored when an entry is recorded without a patient name.
const UnknownPatient = "unknown"

// Entry is one line of a professional's activity trail.
type Entry struct {
	ID             uuid.UUID `json:"id"`
	Description    string    `json:"description" validate:"required"`
	ProfessionalID string    `json:"professional_id" validate:"required"`
	PatientName    string    `json:"patient_name"`
	Timestamp      time.Time `json:"timestamp"`
}
