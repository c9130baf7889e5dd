package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/soltixdb/arforecast/internal/models"
	"github.com/soltixdb/arforecast/internal/services"
)

// ListModels lists stored model IDs
// GET /v1/models
func (h *Handler) ListModels(c *fiber.Ctx) error {
	ids, err := h.service.ListModels(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(models.ModelListResponse{Models: ids, Count: len(ids)})
}

// GetModel returns a stored model
// GET /v1/models/:id
func (h *Handler) GetModel(c *fiber.Ctx) error {
	snap, err := h.service.GetModel(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(toModelResponse(snap))
}

// DeleteModel removes a stored model
// DELETE /v1/models/:id
func (h *Handler) DeleteModel(c *fiber.Ctx) error {
	if err := h.service.DeleteModel(c.UserContext(), c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// ForecastModel forecasts from a stored model
// GET /v1/models/:id/forecast?horizon=12&confidence=0.9
func (h *Handler) ForecastModel(c *fiber.Ctx) error {
	horizon := 0
	if s := c.Query("horizon"); s != "" {
		v, err := strconv.Atoi(s)
		if err != nil {
			return services.NewServiceError(services.CodeInvalidHorizon, "horizon must be an integer")
		}
		horizon = v
	}

	confidence := 0.0
	if s := c.Query("confidence"); s != "" {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return badRequest("confidence must be a number", err)
		}
		confidence = v
	}

	ctx, cancel := h.requestContext(c)
	defer cancel()

	fc, err := h.service.ForecastModel(ctx, c.Params("id"), horizon, confidence)
	if err != nil {
		return err
	}
	return c.JSON(models.ModelForecastResponse{
		ModelID:     fc.ModelID,
		Horizon:     fc.Horizon,
		Confidence:  fc.Confidence,
		Predictions: toPredictions(fc.Predictions),
		Differenced: fc.Differenced,
	})
}
