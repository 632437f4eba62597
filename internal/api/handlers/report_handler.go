package handlers

import (
	"context"
	"fmt"

	"copd-intake-service/internal/services"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	FormatCSV  = "csv"
	FormatXLSX = "xlsx"
	FormatFHIR = "fhir"
)

type ReportHandler struct {
	reportService services.ReportServiceContract
	logger        *zap.Logger
}

func NewReportHandler(rs services.ReportServiceContract, logger *zap.Logger) *ReportHandler {
	return &ReportHandler{
		reportService: rs,
		logger:        logger,
	}
}

// Download serves a stored intake as csv (default), xlsx or a FHIR bundle.
func (h *ReportHandler) Download(c *fiber.Ctx) error {
	recordID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "id must be a UUID"})
	}
	format := c.Query("format", FormatCSV)

	ctx, cancel := context.WithTimeout(c.UserContext(), requestTimeout)
	defer cancel()

	var (
		body        []byte
		contentType string
	)
	switch format {
	case FormatCSV:
		body, err = h.reportService.ExportCSV(ctx, recordID)
		contentType = "text/csv; charset=utf-8"
	case FormatXLSX:
		body, err = h.reportService.ExportWorkbook(ctx, recordID)
		contentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	case FormatFHIR:
		body, err = h.reportService.ExportFHIR(ctx, recordID)
		contentType = "application/fhir+json"
		format = "json"
	default:
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "format must be csv, xlsx or fhir"})
	}
	if err != nil {
		return writeServiceError(c, h.logger, err)
	}

	h.logger.Debug("report downloaded", zap.String("record_id", recordID.String()), zap.String("format", format))
	c.Set(fiber.HeaderContentType, contentType)
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="copd_intake_%s.%s"`, recordID, format))
	return c.Send(body)
}

func RegisterReportRoutes(app *fiber.App, rh *ReportHandler) {
	app.Get("/records/:id/report", rh.Download)
}
