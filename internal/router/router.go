package router

import (
	"github.com/gofiber/fiber/v2"

	"github.com/noah-isme/mock-interview-api/internal/config"
	"github.com/noah-isme/mock-interview-api/internal/handler"
	"github.com/noah-isme/mock-interview-api/internal/middleware"
	"github.com/noah-isme/mock-interview-api/internal/observability"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	AuthHandler      *handler.AuthHandler
	InterviewHandler *handler.InterviewHandler
	ResumeHandler    *handler.ResumeHandler
	HealthChecks     map[string]handler.Pinger
	Authenticate     fiber.Handler
	AIRateLimit      fiber.Handler
}

// Register wires the HTTP routes into the fiber application.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	app.Get("/metrics", observability.MetricsHandler())

	api := app.Group("/api/v1", func(c *fiber.Ctx) error {
		c.Set("X-Application", cfg.AppName)
		return c.Next()
	})
	api.Get("/health", handler.HealthCheck(cfg, deps.HealthChecks))

	authenticate := deps.Authenticate
	if authenticate == nil {
		authenticate = middleware.Authenticate(cfg.JWTSecret)
	}

	aiLimit := deps.AIRateLimit
	if aiLimit == nil {
		aiLimit = middleware.RateLimit("ai", cfg.AIRateLimitMax, cfg.AIRateLimitWindow)
	}

	if deps.AuthHandler != nil {
		deps.AuthHandler.Register(api.Group("/user"), authenticate)
	}

	if deps.InterviewHandler != nil {
		deps.InterviewHandler.Register(api.Group("/interview", authenticate), aiLimit)
	}

	if deps.ResumeHandler != nil {
		deps.ResumeHandler.Register(api.Group("/jobresume", authenticate))
	}
}
