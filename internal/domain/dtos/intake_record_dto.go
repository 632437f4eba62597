package dtos

import (
	"time"

	"github.com/google/uuid"
)

// IntakeRecordDTO represents a stored intake in API responses.
type IntakeRecordDTO struct {
	ID               uuid.UUID  `json:"id"`
	PatientName      string     `json:"patient_name"`
	PhoneNumber      string     `json:"phone_number"`
	NationalID       string     `json:"national_id"`
	Age              int        `json:"age"`
	OxygenSaturation int        `json:"oxygen_saturation"`
	FEV1Percent      int        `json:"fev1_percent"`
	PeakFlowLPM      int        `json:"peak_flow_lpm"`
	Symptoms         string     `json:"symptoms"`
	Severity         string     `json:"severity"`
	SeverityLabel    string     `json:"severity_label"`
	SubmittedAt      time.Time  `json:"submitted_at"`
	ReviewStatus     string     `json:"review_status"`
	ReviewerNotes    string     `json:"reviewer_notes,omitempty"`
	ReviewedAt       *time.Time `json:"reviewed_at,omitempty"`
}
