package entities

import (
	"time"

	"github.com/google/uuid"
)

// Review statuses a consultant can set on a stored intake.
const (
	ReviewStatusPending   = "Pending"
	ReviewStatusReviewed  = "Reviewed"
	ReviewStatusEscalated = "Escalated"
)

// SubmissionTimeLayout is how submission and review times are written to tabular stores and reports.
const SubmissionTimeLayout = "2006-01-02 15:04:05"

// IntakeRecord is one accepted COPD intake submission.
// Rows are append-only; only the review columns change after insert.
type IntakeRecord struct {
	ID               uuid.UUID  `json:"id" db:"id" gorm:"type:uuid;primaryKey"`
	PatientName      string     `json:"patient_name" db:"patient_name" gorm:"not null"`
	PhoneNumber      string     `json:"phone_number" db:"phone_number" gorm:"type:varchar(11);not null"`
	NationalID       string     `json:"national_id" db:"national_id" gorm:"type:varchar(14);not null;index:idx_intake_national_submitted,priority:1"`
	Age              int        `json:"age" db:"age"`
	OxygenSaturation int        `json:"oxygen_saturation" db:"oxygen_saturation" gorm:"not null"`
	FEV1Percent      int        `json:"fev1_percent" db:"fev1_percent" gorm:"column:fev1_percent;not null"`
	PeakFlowLPM      int        `json:"peak_flow_lpm" db:"peak_flow_lpm" gorm:"column:peak_flow_lpm"`
	Symptoms         string     `json:"symptoms" db:"symptoms" gorm:"type:text;not null"`
	Severity         string     `json:"severity" db:"severity" gorm:"type:varchar(20);not null"`
	SeverityLabel    string     `json:"severity_label" db:"severity_label" gorm:"type:varchar(32);not null"`
	SubmittedAt      time.Time  `json:"submitted_at" db:"submitted_at" gorm:"not null;index:idx_intake_national_submitted,priority:2"`
	ReviewStatus     string     `json:"review_status" db:"review_status" gorm:"type:varchar(16);not null"`
	ReviewerNotes    string     `json:"reviewer_notes" db:"reviewer_notes" gorm:"type:text"`
	ReviewedAt       *time.Time `json:"reviewed_at,omitempty" db:"reviewed_at"`
	CreatedAt        time.Time  `json:"created_at" db:"created_at" gorm:"not null"`
	UpdatedAt        time.Time  `json:"updated_at" db:"updated_at" gorm:"not null"`
}

func (IntakeRecord) TableName() string {
	return "intake_records"
}

// Row returns the record in the shared spreadsheet column order (see IntakeRecordColumns).
func (r *IntakeRecord) Row() []any {
	reviewedAt := ""
	if r.ReviewedAt != nil {
		reviewedAt = r.ReviewedAt.Format(SubmissionTimeLayout)
	}
	return []any{
		r.ID.String(),
		r.PatientName,
		r.PhoneNumber,
		r.NationalID,
		r.SubmittedAt.Format(SubmissionTimeLayout),
		r.Age,
		r.OxygenSaturation,
		r.FEV1Percent,
		r.PeakFlowLPM,
		r.Symptoms,
		r.SeverityLabel,
		r.ReviewStatus,
		r.ReviewerNotes,
		reviewedAt,
	}
}

// IntakeRecordColumns is the header of every tabular rendering of an IntakeRecord.
var IntakeRecordColumns = []string{
	"Record ID",
	"Patient Name",
	"Phone Number",
	"National ID",
	"Submission Date",
	"Age",
	"Oxygen Saturation (%)",
	"FEV1 (% predicted)",
	"Peak Flow (L/min)",
	"Symptoms",
	"Severity",
	"Review Status",
	"Reviewer Notes",
	"Reviewed At",
}
