package handlers

import (
	"context"
	"errors"
	"strconv"
	"time"

	"copd-intake-service/internal/domain/dtos"
	"copd-intake-service/internal/domain/repositories"
	"copd-intake-service/internal/services"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

const requestTimeout = 30 * time.Second

type IntakeHandler struct {
	intakeService services.IntakeServiceContract
	logger        *zap.Logger
}

func NewIntakeHandler(is services.IntakeServiceContract, logger *zap.Logger) *IntakeHandler {
	return &IntakeHandler{
		intakeService: is,
		logger:        logger,
	}
}

func (h *IntakeHandler) Submit(c *fiber.Ctx) error {
	var req dtos.SubmitIntakeRequest
	if err := c.BodyParser(&req); err != nil {
		h.logger.Debug("failed to parse intake body", zap.Error(err))
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "could not parse request: " + err.Error(),
		})
	}

	ctx, cancel := context.WithTimeout(c.UserContext(), requestTimeout)
	defer cancel()

	resp, err := h.intakeService.Submit(ctx, req)
	if err != nil {
		return h.writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(resp)
}

func (h *IntakeHandler) Validate(c *fiber.Ctx) error {
	var req dtos.SubmitIntakeRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "could not parse request: " + err.Error(),
		})
	}
	return c.JSON(h.intakeService.Validate(req))
}

func (h *IntakeHandler) Classify(c *fiber.Ctx) error {
	spo2, err := strconv.Atoi(c.Query("spo2"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "spo2 must be an integer"})
	}
	fev1, err := strconv.Atoi(c.Query("fev1"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "fev1 must be an integer"})
	}
	return c.JSON(h.intakeService.Classify(spo2, fev1))
}

func (h *IntakeHandler) LatestForPatient(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), requestTimeout)
	defer cancel()

	record, err := h.intakeService.LatestForPatient(ctx, c.Params("nationalId"))
	if err != nil {
		return h.writeError(c, err)
	}
	return c.JSON(record)
}

func (h *IntakeHandler) Annotate(c *fiber.Ctx) error {
	var req dtos.AnnotateRecordRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "could not parse request: " + err.Error(),
		})
	}

	ctx, cancel := context.WithTimeout(c.UserContext(), requestTimeout)
	defer cancel()

	record, err := h.intakeService.Annotate(ctx, c.Params("nationalId"), req)
	if err != nil {
		return h.writeError(c, err)
	}
	return c.JSON(record)
}

func (h *IntakeHandler) PendingReviews(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), requestTimeout)
	defer cancel()

	records, err := h.intakeService.PendingReviews(ctx)
	if err != nil {
		return h.writeError(c, err)
	}
	return c.JSON(fiber.Map{"count": len(records), "records": records})
}

// writeError maps service errors to HTTP status codes.
func (h *IntakeHandler) writeError(c *fiber.Ctx, err error) error {
	return writeServiceError(c, h.logger, err)
}

func writeServiceError(c *fiber.Ctx, logger *zap.Logger, err error) error {
	var verr *services.ValidationError
	switch {
	case errors.As(err, &verr):
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
			"error":        verr.Error(),
			"field_errors": verr.Fields,
		})
	case errors.Is(err, services.ErrInvalidReviewStatus):
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, repositories.ErrRecordNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": repositories.ErrRecordNotFound.Error()})
	case errors.Is(err, services.ErrStoreUnavailable):
		logger.Error("intake store failure", zap.String("path", c.Path()), zap.Error(err))
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": services.ErrStoreUnavailable.Error()})
	default:
		logger.Error("request failed", zap.String("path", c.Path()), zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal error"})
	}
}

func RegisterIntakeRoutes(app *fiber.App, ih *IntakeHandler) {
	app.Post("/intake", ih.Submit)
	app.Post("/intake/validate", ih.Validate)

	app.Get("/severity", ih.Classify)

	patientGroup := app.Group("/patients/:nationalId")
	patientGroup.Get("/latest", ih.LatestForPatient)
	patientGroup.Put("/latest/review", ih.Annotate)

	app.Get("/reviews/pending", ih.PendingReviews)

	app.Get("/healthz", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})
}
