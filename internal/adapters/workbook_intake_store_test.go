package adapters

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"copd-intake-service/internal/domain/entities"
	"copd-intake-service/internal/domain/repositories"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

const testSheet = "Intake"

func newTestStore(t *testing.T) (*WorkbookIntakeStore, string) {
	path := filepath.Join(t.TempDir(), "sheets", "copd_intake.xlsx")
	store, err := NewWorkbookIntakeStore(path, testSheet, zap.NewNop())
	require.NoError(t, err)
	return store, path
}

func sampleRecord(nationalID string, submittedAt time.Time) *entities.IntakeRecord {
	return &entities.IntakeRecord{
		PatientName:      "Amira Hassan",
		PhoneNumber:      "01012345678",
		NationalID:       nationalID,
		Age:              64,
		OxygenSaturation: 92,
		FEV1Percent:      61,
		PeakFlowLPM:      300,
		Symptoms:         "Productive cough",
		Severity:         "MODERATE_RISK",
		SeverityLabel:    "Moderate Risk",
		SubmittedAt:      submittedAt,
		ReviewStatus:     entities.ReviewStatusPending,
	}
}

func TestNewWorkbookIntakeStore_CreatesHeader(t *testing.T) {
	_, path := newTestStore(t)

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(testSheet)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, entities.IntakeRecordColumns, rows[0])
}

func TestNewWorkbookIntakeStore_ReopensExisting(t *testing.T) {
	store, path := newTestStore(t)
	require.NoError(t, store.Append(context.Background(), sampleRecord("29901011234567", time.Now())))

	reopened, err := NewWorkbookIntakeStore(path, testSheet, zap.NewNop())
	require.NoError(t, err)
	records, err := reopened.ListAll(context.Background())
	require.NoError(t, err)
	assert.Len(t, records, 1)

	_, err = NewWorkbookIntakeStore(path, "Missing", zap.NewNop())
	assert.Error(t, err)
}

func TestWorkbookIntakeStore_AppendAndRead(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()
	submittedAt := time.Date(2026, 4, 12, 10, 15, 30, 0, time.Local)

	record := sampleRecord("29901011234567", submittedAt)
	require.NoError(t, store.Append(ctx, record))
	require.NotEqual(t, uuid.Nil, record.ID)

	got, err := store.GetByID(ctx, record.ID)
	require.NoError(t, err)
	assert.Equal(t, "01012345678", got.PhoneNumber, "leading zero must survive the sheet")
	assert.Equal(t, "29901011234567", got.NationalID)
	assert.Equal(t, 64, got.Age)
	assert.Equal(t, 92, got.OxygenSaturation)
	assert.Equal(t, 61, got.FEV1Percent)
	assert.Equal(t, 300, got.PeakFlowLPM)
	assert.Equal(t, "MODERATE_RISK", got.Severity)
	assert.Equal(t, "Moderate Risk", got.SeverityLabel)
	assert.Equal(t, entities.ReviewStatusPending, got.ReviewStatus)
	assert.Equal(t, "2026-04-12 10:15:30", got.SubmittedAt.Format(entities.SubmissionTimeLayout))
	assert.Nil(t, got.ReviewedAt)

	_, err = store.GetByID(ctx, uuid.New())
	assert.ErrorIs(t, err, repositories.ErrRecordNotFound)
}

func TestWorkbookIntakeStore_LatestByNationalID(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()
	base := time.Date(2026, 4, 12, 8, 0, 0, 0, time.Local)

	older := sampleRecord("29901011234567", base)
	newer := sampleRecord("29901011234567", base.Add(2*time.Hour))
	other := sampleRecord("30001011234567", base.Add(3*time.Hour))
	for _, r := range []*entities.IntakeRecord{older, newer, other} {
		require.NoError(t, store.Append(ctx, r))
	}

	latest, err := store.LatestByNationalID(ctx, "29901011234567")
	require.NoError(t, err)
	assert.Equal(t, newer.ID, latest.ID)

	_, err = store.LatestByNationalID(ctx, "39901011234567")
	assert.ErrorIs(t, err, repositories.ErrRecordNotFound)

	all, err := store.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, older.ID, all[0].ID)
	assert.Equal(t, other.ID, all[2].ID)
}

func TestWorkbookIntakeStore_AnnotateOnlyChangesReviewColumns(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()
	record := sampleRecord("29901011234567", time.Now())
	require.NoError(t, store.Append(ctx, record))

	reviewedAt := time.Date(2026, 4, 13, 9, 0, 0, 0, time.Local)
	require.NoError(t, store.Annotate(ctx, record.ID, entities.ReviewStatusEscalated, "Call patient today", reviewedAt))

	got, err := store.GetByID(ctx, record.ID)
	require.NoError(t, err)
	assert.Equal(t, entities.ReviewStatusEscalated, got.ReviewStatus)
	assert.Equal(t, "Call patient today", got.ReviewerNotes)
	require.NotNil(t, got.ReviewedAt)
	assert.Equal(t, "2026-04-13 09:00:00", got.ReviewedAt.Format(entities.SubmissionTimeLayout))
	assert.Equal(t, record.PatientName, got.PatientName)
	assert.Equal(t, record.Symptoms, got.Symptoms)

	err = store.Annotate(ctx, uuid.New(), entities.ReviewStatusReviewed, "", reviewedAt)
	assert.ErrorIs(t, err, repositories.ErrRecordNotFound)
}

func TestWorkbookIntakeStore_FailedAppendLeavesNoRow(t *testing.T) {
	store, path := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, store.Append(ctx, sampleRecord("29901011234567", time.Now())))

	before, err := os.ReadFile(path)
	require.NoError(t, err)

	// A directory squatting on the temp path makes the save step fail.
	require.NoError(t, os.Mkdir(path+".tmp.xlsx", 0o755))
	err = store.Append(ctx, sampleRecord("30001011234567", time.Now()))
	assert.Error(t, err)

	after, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, bytes.Equal(before, after), "workbook must be untouched after a failed append")
}

func TestWorkbookIntakeStore_RejectsOversizedCells(t *testing.T) {
	store, path := newTestStore(t)
	ctx := context.Background()
	existing := sampleRecord("29901011234567", time.Now())
	require.NoError(t, store.Append(ctx, existing))

	before, err := os.ReadFile(path)
	require.NoError(t, err)

	long := sampleRecord("30001011234567", time.Now())
	long.Symptoms = strings.Repeat("a", 40000)
	err = store.Append(ctx, long)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "symptoms")

	after, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, bytes.Equal(before, after), "rejected row must not touch the workbook")

	// Multi-byte text is measured in characters, as excelize does.
	atLimit := sampleRecord("30001011234567", time.Now())
	atLimit.Symptoms = strings.Repeat("é", excelize.TotalCellChars)
	require.NoError(t, store.Append(ctx, atLimit))

	err = store.Annotate(ctx, existing.ID, entities.ReviewStatusReviewed, strings.Repeat("n", excelize.TotalCellChars+1), time.Now())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "reviewer notes")

	records, err := store.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, atLimit.Symptoms, records[1].Symptoms)
	assert.Equal(t, entities.ReviewStatusPending, records[0].ReviewStatus)
}

func TestWorkbookIntakeStore_CancelledContext(t *testing.T) {
	store, _ := newTestStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, store.Append(ctx, sampleRecord("29901011234567", time.Now())), context.Canceled)
}

func TestRenderWorkbook(t *testing.T) {
	record := sampleRecord("29901011234567", time.Date(2026, 4, 12, 10, 0, 0, 0, time.Local))
	record.ID = uuid.New()

	data, err := RenderWorkbook("Report", []*entities.IntakeRecord{record})
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Report")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Patient Name", rows[0][1])
	assert.Equal(t, record.ID.String(), rows[1][0])
	assert.Equal(t, "2026-04-12 10:00:00", rows[1][4])
}
