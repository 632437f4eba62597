package adapters

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"copd-intake-service/internal/domain/entities"
	"copd-intake-service/internal/domain/intake"
	"copd-intake-service/internal/domain/repositories"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

// Column positions (1-based) of the review fields in the shared sheet.
const (
	colReviewStatus  = 12
	colReviewerNotes = 13
	colReviewedAt    = 14
)

var _ repositories.IntakeRecordRepositoryContract = (*WorkbookIntakeStore)(nil)

// WorkbookIntakeStore is the shared spreadsheet a remote consultant opens to read
// and annotate submissions. Every write rewrites the file through a temporary copy
// so a failed append never leaves a partial row.
type WorkbookIntakeStore struct {
	mu     sync.Mutex
	path   string
	sheet  string
	logger *zap.Logger
}

// NewWorkbookIntakeStore opens the workbook at path, creating it with a header row if missing.
func NewWorkbookIntakeStore(path, sheet string, logger *zap.Logger) (*WorkbookIntakeStore, error) {
	s := &WorkbookIntakeStore{path: path, sheet: sheet, logger: logger}

	if _, err := os.Stat(path); err == nil {
		f, err := excelize.OpenFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to open workbook %s: %w", path, err)
		}
		defer f.Close()
		if idx, err := f.GetSheetIndex(sheet); err != nil || idx < 0 {
			return nil, fmt.Errorf("workbook %s has no sheet %q", path, sheet)
		}
		return s, nil
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to stat workbook %s: %w", path, err)
	}

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create workbook directory: %w", err)
		}
	}
	f, err := newIntakeWorkbook(sheet)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	if err := s.save(f); err != nil {
		return nil, err
	}
	logger.Info("created intake workbook", zap.String("path", path), zap.String("sheet", sheet))
	return s, nil
}

func (s *WorkbookIntakeStore) Append(ctx context.Context, record *entities.IntakeRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := checkCellLengths(map[string]string{
		"patient name":   record.PatientName,
		"phone number":   record.PhoneNumber,
		"national id":    record.NationalID,
		"symptoms":       record.Symptoms,
		"reviewer notes": record.ReviewerNotes,
	}); err != nil {
		return err
	}
	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := excelize.OpenFile(s.path)
	if err != nil {
		return fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	rows, err := f.GetRows(s.sheet)
	if err != nil {
		return fmt.Errorf("failed to read sheet %s: %w", s.sheet, err)
	}
	next := len(rows) + 1
	if err := writeRecordRow(f, s.sheet, next, record); err != nil {
		return err
	}
	if err := s.save(f); err != nil {
		return err
	}
	s.logger.Debug("appended intake row", zap.Int("row", next), zap.String("record_id", record.ID.String()))
	return nil
}

func (s *WorkbookIntakeStore) GetByID(ctx context.Context, id uuid.UUID) (*entities.IntakeRecord, error) {
	records, err := s.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	for _, r := range records {
		if r.ID == id {
			return r, nil
		}
	}
	return nil, fmt.Errorf("record %s: %w", id, repositories.ErrRecordNotFound)
}

func (s *WorkbookIntakeStore) LatestByNationalID(ctx context.Context, nationalID string) (*entities.IntakeRecord, error) {
	records, err := s.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	var latest *entities.IntakeRecord
	for _, r := range records {
		// Rows are in submission order, so a later row wins a same-second tie.
		if r.NationalID == nationalID && (latest == nil || !r.SubmittedAt.Before(latest.SubmittedAt)) {
			latest = r
		}
	}
	if latest == nil {
		return nil, fmt.Errorf("latest record for patient: %w", repositories.ErrRecordNotFound)
	}
	return latest, nil
}

func (s *WorkbookIntakeStore) Annotate(ctx context.Context, id uuid.UUID, status, notes string, reviewedAt time.Time) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := checkCellLengths(map[string]string{"reviewer notes": notes}); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := excelize.OpenFile(s.path)
	if err != nil {
		return fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	rows, err := f.GetRows(s.sheet)
	if err != nil {
		return fmt.Errorf("failed to read sheet %s: %w", s.sheet, err)
	}
	target := 0
	for i, row := range rows {
		if i > 0 && len(row) > 0 && row[0] == id.String() {
			target = i + 1
			break
		}
	}
	if target == 0 {
		return fmt.Errorf("record %s: %w", id, repositories.ErrRecordNotFound)
	}

	values := map[int]string{
		colReviewStatus:  status,
		colReviewerNotes: notes,
		colReviewedAt:    reviewedAt.Format(entities.SubmissionTimeLayout),
	}
	for col, v := range values {
		cell, err := excelize.CoordinatesToCellName(col, target)
		if err != nil {
			return err
		}
		if err := f.SetCellStr(s.sheet, cell, v); err != nil {
			return fmt.Errorf("failed to annotate cell %s: %w", cell, err)
		}
	}
	return s.save(f)
}

func (s *WorkbookIntakeStore) ListAll(ctx context.Context) ([]*entities.IntakeRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := excelize.OpenFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	rows, err := f.GetRows(s.sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %s: %w", s.sheet, err)
	}

	records := make([]*entities.IntakeRecord, 0, len(rows))
	for i, row := range rows {
		if i == 0 || len(row) == 0 || strings.TrimSpace(row[0]) == "" {
			continue
		}
		record, err := parseRecordRow(row)
		if err != nil {
			s.logger.Warn("skipping unreadable intake row", zap.Int("row", i+1), zap.Error(err))
			continue
		}
		records = append(records, record)
	}
	return records, nil
}

// checkCellLengths rejects values excelize would otherwise cut to TotalCellChars.
func checkCellLengths(fields map[string]string) error {
	for name, v := range fields {
		if n := utf8.RuneCountInString(v); n > excelize.TotalCellChars {
			return fmt.Errorf("%s is %d characters, workbook cells hold at most %d", name, n, excelize.TotalCellChars)
		}
	}
	return nil
}

// save writes the workbook to a sibling temp file and renames it over the original.
func (s *WorkbookIntakeStore) save(f *excelize.File) error {
	tmp := s.path + ".tmp.xlsx"
	if err := f.SaveAs(tmp); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("failed to save workbook: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("failed to replace workbook: %w", err)
	}
	return nil
}

func parseRecordRow(row []string) (*entities.IntakeRecord, error) {
	cell := func(col int) string {
		if col-1 < len(row) {
			return strings.TrimSpace(row[col-1])
		}
		return ""
	}
	atoi := func(col int) (int, error) {
		v := cell(col)
		if v == "" {
			return 0, nil
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return 0, fmt.Errorf("column %s: %w", entities.IntakeRecordColumns[col-1], err)
		}
		return n, nil
	}

	id, err := uuid.Parse(cell(1))
	if err != nil {
		return nil, fmt.Errorf("record id: %w", err)
	}
	submittedAt, err := time.ParseInLocation(entities.SubmissionTimeLayout, cell(5), time.Local)
	if err != nil {
		return nil, fmt.Errorf("submission date: %w", err)
	}

	record := &entities.IntakeRecord{
		ID:            id,
		PatientName:   cell(2),
		PhoneNumber:   cell(3),
		NationalID:    cell(4),
		SubmittedAt:   submittedAt,
		Symptoms:      cell(10),
		SeverityLabel: cell(11),
		ReviewStatus:  cell(colReviewStatus),
		ReviewerNotes: cell(colReviewerNotes),
		CreatedAt:     submittedAt,
		UpdatedAt:     submittedAt,
	}
	if record.Age, err = atoi(6); err != nil {
		return nil, err
	}
	if record.OxygenSaturation, err = atoi(7); err != nil {
		return nil, err
	}
	if record.FEV1Percent, err = atoi(8); err != nil {
		return nil, err
	}
	if record.PeakFlowLPM, err = atoi(9); err != nil {
		return nil, err
	}
	record.Severity = severityFromLabel(record.SeverityLabel)
	if v := cell(colReviewedAt); v != "" {
		reviewedAt, err := time.ParseInLocation(entities.SubmissionTimeLayout, v, time.Local)
		if err != nil {
			return nil, fmt.Errorf("reviewed at: %w", err)
		}
		record.ReviewedAt = &reviewedAt
		record.UpdatedAt = reviewedAt
	}
	return record, nil
}

// severityFromLabel maps the label column back to the stored severity code.
func severityFromLabel(label string) string {
	for _, s := range []intake.Severity{intake.HighRisk, intake.ModerateRisk, intake.LowRisk} {
		if s.Label() == label {
			return string(s)
		}
	}
	return ""
}
