package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"

	"copd-intake-service/internal/adapters"
	"copd-intake-service/internal/domain/entities"
	"copd-intake-service/internal/domain/repositories"
	"copd-intake-service/internal/fhir/mappers"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const reportSheet = "Report"

// ReportServiceImpl implements ReportServiceContract.
type ReportServiceImpl struct {
	repo        repositories.IntakeRecordRepositoryContract
	fhirVersion string
	logger      *zap.Logger
}

// NewReportService creates a new instance of ReportServiceImpl.
func NewReportService(
	repo repositories.IntakeRecordRepositoryContract,
	fhirVersion string,
	logger *zap.Logger,
) ReportServiceContract {
	return &ReportServiceImpl{
		repo:        repo,
		fhirVersion: fhirVersion,
		logger:      logger,
	}
}

func (s *ReportServiceImpl) ExportCSV(ctx context.Context, recordID uuid.UUID) ([]byte, error) {
	record, err := s.load(ctx, recordID)
	if err != nil {
		return nil, err
	}

	row := record.Row()
	cells := make([]string, len(row))
	for i, v := range row {
		cells[i] = fmt.Sprint(v)
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(entities.IntakeRecordColumns); err != nil {
		return nil, fmt.Errorf("failed to write CSV header: %w", err)
	}
	if err := w.Write(cells); err != nil {
		return nil, fmt.Errorf("failed to write CSV row: %w", err)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("failed to flush CSV: %w", err)
	}

	s.logger.Debug("rendered CSV report", zap.String("record_id", recordID.String()))
	return buf.Bytes(), nil
}

func (s *ReportServiceImpl) ExportWorkbook(ctx context.Context, recordID uuid.UUID) ([]byte, error) {
	record, err := s.load(ctx, recordID)
	if err != nil {
		return nil, err
	}
	data, err := adapters.RenderWorkbook(reportSheet, []*entities.IntakeRecord{record})
	if err != nil {
		return nil, fmt.Errorf("failed to render workbook report: %w", err)
	}
	s.logger.Debug("rendered workbook report", zap.String("record_id", recordID.String()), zap.Int("bytes", len(data)))
	return data, nil
}

func (s *ReportServiceImpl) ExportFHIR(ctx context.Context, recordID uuid.UUID) (json.RawMessage, error) {
	record, err := s.load(ctx, recordID)
	if err != nil {
		return nil, err
	}
	bundle, err := mappers.MapIntakeToFHIRBundle(*record, s.fhirVersion)
	if err != nil {
		s.logger.Error("FHIR mapping failed", zap.String("record_id", recordID.String()), zap.Error(err))
		return nil, fmt.Errorf("FHIR mapping for record %s: %w", recordID, err)
	}
	return bundle, nil
}

func (s *ReportServiceImpl) load(ctx context.Context, recordID uuid.UUID) (*entities.IntakeRecord, error) {
	record, err := s.repo.GetByID(ctx, recordID)
	if err != nil {
		if errors.Is(err, repositories.ErrRecordNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}
	return record, nil
}
