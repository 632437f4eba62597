package dtos

// AnnotateRecordRequest is the consultant's review of a patient's latest intake.
// ReviewStatus must be Reviewed or Escalated; the intake service enforces it.
type AnnotateRecordRequest struct {
	ReviewStatus  string `json:"review_status" form:"review_status"`
	ReviewerNotes string `json:"reviewer_notes" form:"reviewer_notes"`
}
