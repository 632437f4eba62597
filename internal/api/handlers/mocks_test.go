package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"sync/atomic"

	"copd-intake-service/internal/domain/dtos"
	"copd-intake-service/internal/services"

	"github.com/google/uuid"
)

// --- MockIntakeService ---
var _ services.IntakeServiceContract = (*MockIntakeService)(nil)

type MockIntakeService struct {
	SubmitFunc                func(ctx context.Context, req dtos.SubmitIntakeRequest) (*dtos.SubmissionResponse, error)
	ValidateFunc              func(req dtos.SubmitIntakeRequest) dtos.ValidationResponse
	ClassifyFunc              func(oxygenSaturation, fev1Percent int) dtos.SeverityResponse
	LatestForPatientFunc      func(ctx context.Context, nationalID string) (*dtos.IntakeRecordDTO, error)
	AnnotateFunc              func(ctx context.Context, nationalID string, req dtos.AnnotateRecordRequest) (*dtos.IntakeRecordDTO, error)
	PendingReviewsFunc        func(ctx context.Context) ([]dtos.IntakeRecordDTO, error)
	RestorePendingReviewsFunc func(ctx context.Context) (int, error)

	SubmitFuncCallCount int32
}

func (m *MockIntakeService) Submit(ctx context.Context, req dtos.SubmitIntakeRequest) (*dtos.SubmissionResponse, error) {
	atomic.AddInt32(&m.SubmitFuncCallCount, 1)
	if m.SubmitFunc != nil {
		return m.SubmitFunc(ctx, req)
	}
	return nil, errors.New("SubmitFunc not implemented in mock")
}

func (m *MockIntakeService) Validate(req dtos.SubmitIntakeRequest) dtos.ValidationResponse {
	if m.ValidateFunc != nil {
		return m.ValidateFunc(req)
	}
	return dtos.ValidationResponse{}
}

func (m *MockIntakeService) Classify(oxygenSaturation, fev1Percent int) dtos.SeverityResponse {
	if m.ClassifyFunc != nil {
		return m.ClassifyFunc(oxygenSaturation, fev1Percent)
	}
	return dtos.SeverityResponse{}
}

func (m *MockIntakeService) LatestForPatient(ctx context.Context, nationalID string) (*dtos.IntakeRecordDTO, error) {
	if m.LatestForPatientFunc != nil {
		return m.LatestForPatientFunc(ctx, nationalID)
	}
	return nil, errors.New("LatestForPatientFunc not implemented in mock")
}

func (m *MockIntakeService) Annotate(ctx context.Context, nationalID string, req dtos.AnnotateRecordRequest) (*dtos.IntakeRecordDTO, error) {
	if m.AnnotateFunc != nil {
		return m.AnnotateFunc(ctx, nationalID, req)
	}
	return nil, errors.New("AnnotateFunc not implemented in mock")
}

func (m *MockIntakeService) PendingReviews(ctx context.Context) ([]dtos.IntakeRecordDTO, error) {
	if m.PendingReviewsFunc != nil {
		return m.PendingReviewsFunc(ctx)
	}
	return nil, nil
}

func (m *MockIntakeService) RestorePendingReviews(ctx context.Context) (int, error) {
	if m.RestorePendingReviewsFunc != nil {
		return m.RestorePendingReviewsFunc(ctx)
	}
	return 0, nil
}

// --- MockReportService ---
var _ services.ReportServiceContract = (*MockReportService)(nil)

type MockReportService struct {
	ExportCSVFunc      func(ctx context.Context, recordID uuid.UUID) ([]byte, error)
	ExportWorkbookFunc func(ctx context.Context, recordID uuid.UUID) ([]byte, error)
	ExportFHIRFunc     func(ctx context.Context, recordID uuid.UUID) (json.RawMessage, error)
}

func (m *MockReportService) ExportCSV(ctx context.Context, recordID uuid.UUID) ([]byte, error) {
	if m.ExportCSVFunc != nil {
		return m.ExportCSVFunc(ctx, recordID)
	}
	return nil, errors.New("ExportCSVFunc not implemented in mock")
}

func (m *MockReportService) ExportWorkbook(ctx context.Context, recordID uuid.UUID) ([]byte, error) {
	if m.ExportWorkbookFunc != nil {
		return m.ExportWorkbookFunc(ctx, recordID)
	}
	return nil, errors.New("ExportWorkbookFunc not implemented in mock")
}

func (m *MockReportService) ExportFHIR(ctx context.Context, recordID uuid.UUID) (json.RawMessage, error) {
	if m.ExportFHIRFunc != nil {
		return m.ExportFHIRFunc(ctx, recordID)
	}
	return nil, errors.New("ExportFHIRFunc not implemented in mock")
}
