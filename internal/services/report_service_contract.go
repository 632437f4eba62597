package services

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
)

// ReportServiceContract renders a stored intake as a downloadable report.
type ReportServiceContract interface {
	// ExportCSV returns the header row and the record's row as CSV.
	ExportCSV(ctx context.Context, recordID uuid.UUID) ([]byte, error)
	// ExportWorkbook returns a one-row .xlsx document.
	ExportWorkbook(ctx context.Context, recordID uuid.UUID) ([]byte, error)
	// ExportFHIR returns the record as a FHIR collection Bundle.
	ExportFHIR(ctx context.Context, recordID uuid.UUID) (json.RawMessage, error)
}
