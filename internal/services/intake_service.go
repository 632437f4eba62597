package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"copd-intake-service/internal/adapters"
	"copd-intake-service/internal/domain/dtos"
	"copd-intake-service/internal/domain/entities"
	"copd-intake-service/internal/domain/intake"
	"copd-intake-service/internal/domain/repositories"
	applog "copd-intake-service/internal/logger"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// SubmissionAcceptedMessage is shown to the patient once the intake is stored.
const SubmissionAcceptedMessage = "Data sent successfully!"

var _ IntakeServiceContract = (*IntakeServiceImpl)(nil)

// IntakeServiceImpl implements IntakeServiceContract.
type IntakeServiceImpl struct {
	repo   repositories.IntakeRecordRepositoryContract
	queue  adapters.ReviewQueue // nil: pending reviews are read from the store
	logger *zap.Logger
	now    func() time.Time
}

// NewIntakeService creates a new instance of IntakeServiceImpl. queue may be nil.
func NewIntakeService(
	repo repositories.IntakeRecordRepositoryContract,
	queue adapters.ReviewQueue,
	logger *zap.Logger,
) *IntakeServiceImpl {
	return &IntakeServiceImpl{
		repo:   repo,
		queue:  queue,
		logger: logger,
		now:    time.Now,
	}
}

// WithClock replaces the time source used to stamp submissions and reviews.
func (s *IntakeServiceImpl) WithClock(now func() time.Time) *IntakeServiceImpl {
	s.now = now
	return s
}

func toPatientIntake(req dtos.SubmitIntakeRequest) intake.PatientIntake {
	in := intake.PatientIntake{
		Name:        req.Name,
		PhoneNumber: req.PhoneNumber,
		NationalID:  req.NationalID,
		Age:         req.Age,
		PeakFlowLPM: req.PeakFlowLPM,
		Symptoms:    req.Symptoms,
	}
	if req.OxygenSaturation != nil {
		in.OxygenSaturation = *req.OxygenSaturation
	}
	if req.FEV1Percent != nil {
		in.FEV1Percent = *req.FEV1Percent
	}
	return in
}

// checkRequest runs the intake gate and also rejects omitted vitals, which
// would otherwise classify as zero readings.
func checkRequest(req dtos.SubmitIntakeRequest, in intake.PatientIntake) *ValidationError {
	fields := intake.FieldErrors(in)
	missing := req.MissingVitals()
	for k, v := range missing {
		fields[k] = v
	}
	err := intake.Check(in)
	if len(missing) > 0 {
		// Blank fields outrank format errors.
		err = intake.ErrMissingRequiredFields
	}
	if err == nil {
		return nil
	}
	return &ValidationError{Err: err, Fields: fields}
}

func (s *IntakeServiceImpl) Submit(ctx context.Context, req dtos.SubmitIntakeRequest) (*dtos.SubmissionResponse, error) {
	in := toPatientIntake(req)
	if verr := checkRequest(req, in); verr != nil {
		s.logger.Info("intake rejected",
			zap.Error(verr),
			zap.String("phone_number", applog.Mask(in.PhoneNumber)),
			zap.String("national_id", applog.Mask(in.NationalID)),
		)
		return nil, verr
	}

	severity := intake.ClassifySeverity(in.OxygenSaturation, in.FEV1Percent)
	now := s.now()
	submittedAt := now.Truncate(time.Second)
	record := &entities.IntakeRecord{
		ID:               uuid.New(),
		PatientName:      strings.TrimSpace(in.Name),
		PhoneNumber:      in.PhoneNumber,
		NationalID:       in.NationalID,
		Age:              in.Age,
		OxygenSaturation: in.OxygenSaturation,
		FEV1Percent:      in.FEV1Percent,
		PeakFlowLPM:      in.PeakFlowLPM,
		Symptoms:         strings.TrimSpace(in.Symptoms),
		Severity:         severity.String(),
		SeverityLabel:    severity.Label(),
		SubmittedAt:      submittedAt,
		ReviewStatus:     entities.ReviewStatusPending,
		CreatedAt:        now, // full precision, orders same-second submissions
		UpdatedAt:        now,
	}

	if err := s.repo.Append(ctx, record); err != nil {
		s.logger.Error("failed to store intake",
			zap.String("record_id", record.ID.String()),
			zap.String("national_id", applog.Mask(in.NationalID)),
			zap.Error(err),
		)
		return nil, fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}

	if s.queue != nil {
		if err := s.queue.Enqueue(ctx, record.ID); err != nil {
			// The row is stored; RestorePendingReviews picks it up on the next start.
			s.logger.Warn("failed to queue intake for review", zap.String("record_id", record.ID.String()), zap.Error(err))
		}
	}

	s.logger.Info("intake stored",
		zap.String("record_id", record.ID.String()),
		zap.String("severity", record.Severity),
		zap.String("national_id", applog.Mask(in.NationalID)),
	)

	return &dtos.SubmissionResponse{
		RecordID:       record.ID,
		Severity:       record.Severity,
		SeverityLabel:  record.SeverityLabel,
		Recommendation: severity.Recommendation(),
		ReviewStatus:   record.ReviewStatus,
		SubmittedAt:    &submittedAt,
		Message:        SubmissionAcceptedMessage,
	}, nil
}

func (s *IntakeServiceImpl) Validate(req dtos.SubmitIntakeRequest) dtos.ValidationResponse {
	in := toPatientIntake(req)
	verr := checkRequest(req, in)
	resp := dtos.ValidationResponse{Submittable: verr == nil}
	if verr != nil && len(verr.Fields) > 0 {
		resp.FieldErrors = verr.Fields
	}
	return resp
}

func (s *IntakeServiceImpl) Classify(oxygenSaturation, fev1Percent int) dtos.SeverityResponse {
	severity := intake.ClassifySeverity(oxygenSaturation, fev1Percent)
	return dtos.SeverityResponse{
		OxygenSaturation: oxygenSaturation,
		FEV1Percent:      fev1Percent,
		Severity:         severity.String(),
		SeverityLabel:    severity.Label(),
		Recommendation:   severity.Recommendation(),
	}
}

func (s *IntakeServiceImpl) LatestForPatient(ctx context.Context, nationalID string) (*dtos.IntakeRecordDTO, error) {
	record, err := s.latest(ctx, nationalID)
	if err != nil {
		return nil, err
	}
	dto := toIntakeRecordDTO(record)
	return &dto, nil
}

func (s *IntakeServiceImpl) Annotate(ctx context.Context, nationalID string, req dtos.AnnotateRecordRequest) (*dtos.IntakeRecordDTO, error) {
	if req.ReviewStatus != entities.ReviewStatusReviewed && req.ReviewStatus != entities.ReviewStatusEscalated {
		return nil, ErrInvalidReviewStatus
	}
	record, err := s.latest(ctx, nationalID)
	if err != nil {
		return nil, err
	}

	reviewedAt := s.now().Truncate(time.Second)
	notes := strings.TrimSpace(req.ReviewerNotes)
	if err := s.repo.Annotate(ctx, record.ID, req.ReviewStatus, notes, reviewedAt); err != nil {
		if errors.Is(err, repositories.ErrRecordNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}

	if s.queue != nil {
		if err := s.queue.Resolve(ctx, record.ID); err != nil {
			s.logger.Warn("failed to resolve review", zap.String("record_id", record.ID.String()), zap.Error(err))
		}
	}

	record.ReviewStatus = req.ReviewStatus
	record.ReviewerNotes = notes
	record.ReviewedAt = &reviewedAt
	record.UpdatedAt = reviewedAt

	s.logger.Info("intake reviewed",
		zap.String("record_id", record.ID.String()),
		zap.String("review_status", req.ReviewStatus),
	)
	dto := toIntakeRecordDTO(record)
	return &dto, nil
}

func (s *IntakeServiceImpl) PendingReviews(ctx context.Context) ([]dtos.IntakeRecordDTO, error) {
	if s.queue == nil {
		records, err := s.repo.ListAll(ctx)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
		}
		out := make([]dtos.IntakeRecordDTO, 0)
		for _, r := range records {
			if r.ReviewStatus == entities.ReviewStatusPending {
				out = append(out, toIntakeRecordDTO(r))
			}
		}
		return out, nil
	}

	ids, err := s.queue.Pending(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read review queue: %w", err)
	}
	out := make([]dtos.IntakeRecordDTO, 0, len(ids))
	for _, id := range ids {
		record, err := s.repo.GetByID(ctx, id)
		if errors.Is(err, repositories.ErrRecordNotFound) {
			s.logger.Warn("queued record missing from store", zap.String("record_id", id.String()))
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
		}
		// Reviewed elsewhere while still queued.
		if record.ReviewStatus != entities.ReviewStatusPending {
			continue
		}
		out = append(out, toIntakeRecordDTO(record))
	}
	return out, nil
}

func (s *IntakeServiceImpl) RestorePendingReviews(ctx context.Context) (int, error) {
	if s.queue == nil {
		return 0, nil
	}
	records, err := s.repo.ListAll(ctx)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}
	restored := 0
	for _, r := range records {
		if r.ReviewStatus != entities.ReviewStatusPending {
			continue
		}
		if err := s.queue.Enqueue(ctx, r.ID); err != nil {
			return restored, fmt.Errorf("failed to restore review queue: %w", err)
		}
		restored++
	}
	s.logger.Info("review queue restored", zap.Int("pending", restored))
	return restored, nil
}

func (s *IntakeServiceImpl) latest(ctx context.Context, nationalID string) (*entities.IntakeRecord, error) {
	if !intake.ValidateNationalID(nationalID) {
		return nil, &ValidationError{
			Err:    intake.ErrInvalidIdentifierFormat,
			Fields: map[string]string{"national_id": "national ID must be 14 digits starting with 2 or 3"},
		}
	}
	record, err := s.repo.LatestByNationalID(ctx, nationalID)
	if err != nil {
		if errors.Is(err, repositories.ErrRecordNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}
	return record, nil
}

func toIntakeRecordDTO(r *entities.IntakeRecord) dtos.IntakeRecordDTO {
	return dtos.IntakeRecordDTO{
		ID:               r.ID,
		PatientName:      r.PatientName,
		PhoneNumber:      r.PhoneNumber,
		NationalID:       r.NationalID,
		Age:              r.Age,
		OxygenSaturation: r.OxygenSaturation,
		FEV1Percent:      r.FEV1Percent,
		PeakFlowLPM:      r.PeakFlowLPM,
		Symptoms:         r.Symptoms,
		Severity:         r.Severity,
		SeverityLabel:    r.SeverityLabel,
		SubmittedAt:      r.SubmittedAt,
		ReviewStatus:     r.ReviewStatus,
		ReviewerNotes:    r.ReviewerNotes,
		ReviewedAt:       r.ReviewedAt,
	}
}
