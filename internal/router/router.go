package router

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/dialectic-ai/dialectic-api/internal/config"
	"github.com/dialectic-ai/dialectic-api/internal/handler"
	"github.com/dialectic-ai/dialectic-api/internal/middleware"
	"github.com/dialectic-ai/dialectic-api/internal/observability"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	EvaluateHandler *handler.EvaluateHandler
	AgentHandler    *handler.AgentHandler
	HistoryHandler  *handler.HistoryHandler
	JWTMiddleware   fiber.Handler
}

// Register wires the HTTP routes into the fiber application.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	app.Get("/metrics", observability.MetricsHandler())

	// Agent card discovery sits outside the versioned API surface.
	if deps.AgentHandler != nil {
		deps.AgentHandler.RegisterWellKnown(app)
	}

	api := app.Group("/api/v1", func(c *fiber.Ctx) error {
		c.Set("X-Application", cfg.AppName)
		return c.Next()
	})
	api.Get("/health", handler.HealthCheck(cfg))

	// Each evaluation fans out to the judge, so submissions are throttled.
	submissions := api.Group("", middleware.RateLimit("submissions", 30, time.Minute))

	if deps.EvaluateHandler != nil {
		deps.EvaluateHandler.Register(submissions)
	}

	if deps.AgentHandler != nil {
		deps.AgentHandler.Register(submissions)
	}

	// History is an audit surface; require auth when a middleware is wired.
	if deps.HistoryHandler != nil {
		jwtMiddleware := deps.JWTMiddleware
		if jwtMiddleware == nil {
			jwtMiddleware = func(c *fiber.Ctx) error { return c.Next() }
		}
		history := app.Group("/api/v1", jwtMiddleware)
		deps.HistoryHandler.Register(history)
	}
}
