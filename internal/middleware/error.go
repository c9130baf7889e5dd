package middleware

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/soltixdb/arforecast/internal/logging"
	"github.com/soltixdb/arforecast/internal/models"
	"github.com/soltixdb/arforecast/internal/services"
)

// StatusForCode maps a service error code to an HTTP status
func StatusForCode(code string) int {
	switch code {
	case services.CodeInvalidRequest, services.CodeInvalidHorizon,
		services.CodeInvalidModel, services.CodeInvalidMethod:
		return fiber.StatusBadRequest
	case services.CodeModelNotFound:
		return fiber.StatusNotFound
	case services.CodeInsufficientData, services.CodeFitFailed:
		return fiber.StatusUnprocessableEntity
	case services.CodeTimeout:
		return fiber.StatusGatewayTimeout
	default:
		return fiber.StatusInternalServerError
	}
}

// ErrorHandler renders service errors with their code and fiber errors with
// their status. Anything else becomes a 500.
func ErrorHandler(logger *logging.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		status := fiber.StatusInternalServerError
		detail := models.ErrorDetail{
			Code:    "ERROR",
			Message: "Internal Server Error",
		}

		var svcErr *services.ServiceError
		var fiberErr *fiber.Error
		switch {
		case errors.As(err, &svcErr):
			status = StatusForCode(svcErr.Code)
			detail.Code = svcErr.Code
			detail.Message = svcErr.Message
			detail.Details = svcErr.Details
		case errors.As(err, &fiberErr):
			status = fiberErr.Code
			detail.Message = fiberErr.Message
		}

		fields := []interface{}{
			"path", c.Path(),
			"method", c.Method(),
			"status", status,
			"error", err,
		}
		if status >= fiber.StatusInternalServerError {
			logger.WithContext(c.UserContext()).Error("Request error", fields...)
		} else {
			logger.Debug("Request rejected", fields...)
		}

		return c.Status(status).JSON(models.ErrorResponse{Error: detail})
	}
}
