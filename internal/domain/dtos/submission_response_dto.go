package dtos

import (
	"time"

	"github.com/google/uuid"
)

// NotSubmitted is shown wherever a submission time is rendered before anything was stored.
const NotSubmitted = "Not submitted"

// SubmissionResponse is returned once an intake has been accepted and stored.
type SubmissionResponse struct {
	RecordID       uuid.UUID  `json:"record_id"`
	Severity       string     `json:"severity"`
	SeverityLabel  string     `json:"severity_label"`
	Recommendation string     `json:"recommendation"`
	ReviewStatus   string     `json:"review_status"`
	SubmittedAt    *time.Time `json:"submitted_at,omitempty"` // nil until the row is persisted
	Message        string     `json:"message,omitempty"`
}

// SubmittedAtDisplay renders SubmittedAt for reports and pages.
func (r *SubmissionResponse) SubmittedAtDisplay() string {
	if r == nil || r.SubmittedAt == nil {
		return NotSubmitted
	}
	return r.SubmittedAt.Format("2006-01-02 15:04:05")
}
