package services

import (
	"context"
	"errors"

	"copd-intake-service/internal/domain/dtos"
)

var (
	// ErrStoreUnavailable wraps any failure of the intake store. Nothing is retried.
	ErrStoreUnavailable = errors.New("intake store unavailable")
	// ErrInvalidReviewStatus is returned when a review sets anything but Reviewed or Escalated.
	ErrInvalidReviewStatus = errors.New("review status must be Reviewed or Escalated")
)

// ValidationError is returned when a request fails the intake checks.
// Err is one of the intake sentinels; Fields holds per-field messages.
type ValidationError struct {
	Err    error
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	return e.Err.Error()
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// IntakeServiceContract defines the operations behind the intake form and the consultant's review.
type IntakeServiceContract interface {
	// Submit validates, classifies and stores one intake, then queues it for review.
	Submit(ctx context.Context, req dtos.SubmitIntakeRequest) (*dtos.SubmissionResponse, error)
	// Validate gives per-field feedback without storing anything.
	Validate(req dtos.SubmitIntakeRequest) dtos.ValidationResponse
	Classify(oxygenSaturation, fev1Percent int) dtos.SeverityResponse
	// LatestForPatient returns the most recent intake stored for a national id.
	LatestForPatient(ctx context.Context, nationalID string) (*dtos.IntakeRecordDTO, error)
	// Annotate records the consultant's review on the patient's latest intake.
	Annotate(ctx context.Context, nationalID string, req dtos.AnnotateRecordRequest) (*dtos.IntakeRecordDTO, error)
	// PendingReviews lists stored intakes still waiting for a consultant, oldest first.
	PendingReviews(ctx context.Context) ([]dtos.IntakeRecordDTO, error)
	// RestorePendingReviews re-queues every stored intake that is still Pending.
	RestorePendingReviews(ctx context.Context) (int, error)
}
