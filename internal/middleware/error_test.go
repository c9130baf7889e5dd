package middleware

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soltixdb/arforecast/internal/logging"
	"github.com/soltixdb/arforecast/internal/models"
	"github.com/soltixdb/arforecast/internal/services"
)

func serveError(t *testing.T, handlerErr error) (int, models.ErrorResponse) {
	t.Helper()
	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler(logging.NewNop())})
	app.Get("/test", func(c *fiber.Ctx) error {
		return handlerErr
	})

	resp, err := app.Test(httptest.NewRequest("GET", "/test", nil))
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, fiber.MIMEApplicationJSON, resp.Header.Get("Content-Type"))
	var body models.ErrorResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return resp.StatusCode, body
}

func TestErrorHandler_FiberError(t *testing.T) {
	tests := []struct {
		name           string
		err            *fiber.Error
		expectedStatus int
		expectedMsg    string
	}{
		{"bad request", fiber.ErrBadRequest, fiber.StatusBadRequest, "Bad Request"},
		{"not found", fiber.ErrNotFound, fiber.StatusNotFound, "Not Found"},
		{"body too large", fiber.ErrRequestEntityTooLarge, fiber.StatusRequestEntityTooLarge, "Request Entity Too Large"},
		{"custom", fiber.NewError(fiber.StatusTeapot, "I'm a teapot"), fiber.StatusTeapot, "I'm a teapot"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body := serveError(t, tt.err)
			assert.Equal(t, tt.expectedStatus, status)
			assert.Equal(t, "ERROR", body.Error.Code)
			assert.Equal(t, tt.expectedMsg, body.Error.Message)
		})
	}
}

func TestErrorHandler_GenericError(t *testing.T) {
	status, body := serveError(t, errors.New("something went wrong"))
	assert.Equal(t, fiber.StatusInternalServerError, status)
	assert.Equal(t, "Internal Server Error", body.Error.Message)
}

func TestErrorHandler_ServiceError(t *testing.T) {
	tests := []struct {
		code           string
		expectedStatus int
	}{
		{services.CodeInvalidRequest, fiber.StatusBadRequest},
		{services.CodeInvalidHorizon, fiber.StatusBadRequest},
		{services.CodeInvalidModel, fiber.StatusBadRequest},
		{services.CodeInvalidMethod, fiber.StatusBadRequest},
		{services.CodeModelNotFound, fiber.StatusNotFound},
		{services.CodeInsufficientData, fiber.StatusUnprocessableEntity},
		{services.CodeFitFailed, fiber.StatusUnprocessableEntity},
		{services.CodeTimeout, fiber.StatusGatewayTimeout},
		{services.CodeInternal, fiber.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			svcErr := services.NewServiceErrorWithDetails(tt.code, "failed", map[string]interface{}{"order": 12})
			status, body := serveError(t, fmt.Errorf("wrapped: %w", svcErr))
			assert.Equal(t, tt.expectedStatus, status)
			assert.Equal(t, tt.code, body.Error.Code)
			assert.Equal(t, "failed", body.Error.Message)
			assert.Equal(t, float64(12), body.Error.Details["order"])
		})
	}
}
