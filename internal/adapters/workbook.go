package adapters

import (
	"bytes"
	"fmt"

	"copd-intake-service/internal/domain/entities"

	"github.com/xuri/excelize/v2"
)

var intakeColumnWidths = []float64{
	38, // Record ID
	24, // Patient Name
	15, // Phone Number
	18, // National ID
	20, // Submission Date
	6,  // Age
	12, // Oxygen Saturation
	12, // FEV1
	12, // Peak Flow
	40, // Symptoms
	15, // Severity
	14, // Review Status
	40, // Reviewer Notes
	20, // Reviewed At
}

// RenderWorkbook builds an .xlsx document with a styled header and one row per record.
func RenderWorkbook(sheet string, records []*entities.IntakeRecord) ([]byte, error) {
	f, err := newIntakeWorkbook(sheet)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	for i, record := range records {
		if err := writeRecordRow(f, sheet, i+2, record); err != nil {
			return nil, err
		}
	}

	var buf bytes.Buffer
	if _, err := f.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

// newIntakeWorkbook creates a workbook whose only sheet carries the intake header.
func newIntakeWorkbook(sheet string) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to name sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{
			Type:    "pattern",
			Color:   []string{"#E6F3FF"},
			Pattern: 1,
		},
		Border: []excelize.Border{
			{Type: "left", Color: "000000", Style: 1},
			{Type: "top", Color: "000000", Style: 1},
			{Type: "bottom", Color: "000000", Style: 1},
			{Type: "right", Color: "000000", Style: 1},
		},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}

	header := make([]any, len(entities.IntakeRecordColumns))
	for i, h := range entities.IntakeRecordColumns {
		header[i] = h
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to write header: %w", err)
	}

	lastCol, err := excelize.ColumnNumberToName(len(entities.IntakeRecordColumns))
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to convert column number: %w", err)
	}
	if err := f.SetCellStyle(sheet, "A1", lastCol+"1", headerStyle); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to set header style: %w", err)
	}

	for i, width := range intakeColumnWidths {
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to convert column number: %w", err)
		}
		if err := f.SetColWidth(sheet, col, col, width); err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to set column width: %w", err)
		}
	}

	if err := f.SetPanes(sheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to freeze header: %w", err)
	}
	return f, nil
}

func writeRecordRow(f *excelize.File, sheet string, row int, record *entities.IntakeRecord) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	values := record.Row()
	if err := f.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("failed to write row %d: %w", row, err)
	}
	return nil
}
