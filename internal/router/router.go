package router

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/soltixdb/arforecast/internal/config"
	"github.com/soltixdb/arforecast/internal/handlers"
	"github.com/soltixdb/arforecast/internal/logging"
	"github.com/soltixdb/arforecast/internal/metrics"
	"github.com/soltixdb/arforecast/internal/middleware"
	"github.com/soltixdb/arforecast/internal/services"
)

// Setup configures all routes and middlewares. m may be nil when metrics
// are disabled.
func Setup(app *fiber.App, logger *logging.Logger, svc *services.ForecastService, m *metrics.Metrics, cfg config.Config) *handlers.Handler {
	h := handlers.New(logger, svc, cfg.Model)

	// Global middlewares
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,DELETE,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept,Authorization,X-API-Key,X-Request-ID",
	}))
	app.Use(logging.FiberMiddleware(logger, logging.DefaultMiddlewareConfig()))
	if m != nil {
		app.Use(m.FiberMiddleware())
	}

	// Unauthenticated endpoints
	app.Get("/health", h.Health)
	if m != nil && cfg.Metrics.Enabled {
		app.Get(cfg.Metrics.Path, m.FiberHandler())
	}

	authMiddleware := middleware.APIKeyAuth(logger, cfg.Auth)
	v1 := app.Group("/v1", authMiddleware)

	v1.Post("/forecast", h.Forecast)
	v1.Post("/forecast/batch", h.ForecastBatch)
	v1.Get("/forecasters", h.Forecasters)
	v1.Get("/cache", h.CacheStats)

	v1.Get("/models", h.ListModels)
	v1.Get("/models/:id", h.GetModel)
	v1.Delete("/models/:id", h.DeleteModel)
	v1.Get("/models/:id/forecast", h.ForecastModel)

	app.Use(h.NotFound)

	return h
}

// New creates a new Fiber app with configuration
func New(logger *logging.Logger, svc *services.ForecastService, m *metrics.Metrics, cfg config.Config) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               "arforecast",
		DisableStartupMessage: true,
		ReadTimeout:           cfg.Server.ReadTimeout,
		WriteTimeout:          cfg.Server.WriteTimeout,
		BodyLimit:             cfg.Server.BodyLimit,
		ErrorHandler:          middleware.ErrorHandler(logger),
	})

	Setup(app, logger, svc, m, cfg)

	return app
}
