package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/artem13815/feedback/api/http/handlers"
)

// Register wires all HTTP routes onto given Fiber app.
func Register(app *fiber.App, health *handlers.HealthHandler, feedback *handlers.FeedbackHandler) {
	// Health and readiness endpoints for probes/monitoring
	app.Get("/health", health.Health)
	app.Get("/ready", health.Ready)

	app.Post("/analyze", feedback.Analyze)
}
