package middleware

import (
	"crypto/subtle"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/soltixdb/arforecast/internal/config"
	"github.com/soltixdb/arforecast/internal/logging"
	"github.com/soltixdb/arforecast/internal/models"
)

// MinAPIKeyLength is the minimum required length for API keys
const MinAPIKeyLength = 32

// APIKeyHeader is checked before the Authorization header
const APIKeyHeader = "X-API-Key"

// ValidateAPIKey checks if an API key meets the security requirements
func ValidateAPIKey(key string) bool {
	return len(key) >= MinAPIKeyLength && strings.TrimSpace(key) != ""
}

// APIKeyAuth rejects requests without one of the configured API keys. Keys
// shorter than MinAPIKeyLength are dropped with a warning.
func APIKeyAuth(logger *logging.Logger, cfg config.AuthConfig) fiber.Handler {
	if !cfg.Enabled {
		return func(c *fiber.Ctx) error {
			return c.Next()
		}
	}

	keys := make([][]byte, 0, len(cfg.APIKeys))
	for _, key := range cfg.APIKeys {
		if key == "" {
			continue
		}
		if !ValidateAPIKey(key) {
			logger.Warn("API key does not meet security requirements",
				"key_length", len(key),
				"min_required", MinAPIKeyLength,
				"key_prefix", maskAPIKey(key),
			)
			continue
		}
		keys = append(keys, []byte(key))
	}
	if len(keys) == 0 {
		logger.Error("Authentication enabled without a valid API key, all requests will be rejected",
			"total_keys", len(cfg.APIKeys))
	}

	return func(c *fiber.Ctx) error {
		apiKey := requestAPIKey(c)
		if apiKey == "" {
			logger.Warn("API key missing", "path", c.Path(), "method", c.Method(), "ip", c.IP())
			return unauthorized(c, "API key is required. Provide it via X-API-Key header or Authorization header.")
		}

		if !matchKey(keys, []byte(apiKey)) {
			logger.Warn("Invalid API key",
				"path", c.Path(),
				"method", c.Method(),
				"ip", c.IP(),
				"api_key_prefix", maskAPIKey(apiKey),
			)
			return unauthorized(c, "Invalid API key.")
		}

		return c.Next()
	}
}

// requestAPIKey reads X-API-Key, then "Authorization: Bearer <key>", then a
// bare Authorization value.
func requestAPIKey(c *fiber.Ctx) string {
	if key := c.Get(APIKeyHeader); key != "" {
		return key
	}
	auth := c.Get(fiber.HeaderAuthorization)
	if after, ok := strings.CutPrefix(auth, "Bearer "); ok {
		return after
	}
	return auth
}

func matchKey(keys [][]byte, candidate []byte) bool {
	found := 0
	for _, k := range keys {
		found |= subtle.ConstantTimeCompare(k, candidate)
	}
	return found == 1
}

func unauthorized(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusUnauthorized).JSON(models.ErrorResponse{
		Error: models.ErrorDetail{
			Code:    "UNAUTHORIZED",
			Message: message,
		},
	})
}

// maskAPIKey masks API key for logging (show only first 4 chars)
func maskAPIKey(key string) string {
	if len(key) <= 4 {
		return "****"
	}
	return key[:4] + "****"
}
