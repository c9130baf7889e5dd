package handlers

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/soltixdb/arforecast/internal/config"
	"github.com/soltixdb/arforecast/internal/logging"
	"github.com/soltixdb/arforecast/internal/services"
	"github.com/soltixdb/arforecast/internal/utils"
)

// Version is reported by the health endpoint
const Version = "1.0.0"

// Handler contains all HTTP handlers
type Handler struct {
	logger   *logging.Logger
	service  *services.ForecastService
	defaults config.ModelConfig
	timeout  time.Duration
}

// New creates a new handler instance
func New(logger *logging.Logger, service *services.ForecastService, defaults config.ModelConfig) *Handler {
	return &Handler{
		logger:   logger,
		service:  service,
		defaults: defaults,
		timeout:  utils.DefaultRequestTimeout,
	}
}

// requestContext bounds a fit by the handler timeout and keeps the request
// fields set by the logging middleware.
func (h *Handler) requestContext(c *fiber.Ctx) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.UserContext(), h.timeout)
}

func badRequest(message string, err error) *services.ServiceError {
	if err == nil {
		return services.NewServiceError(services.CodeInvalidRequest, message)
	}
	return services.NewServiceErrorWithDetails(services.CodeInvalidRequest, message,
		map[string]interface{}{"error": err.Error()})
}
