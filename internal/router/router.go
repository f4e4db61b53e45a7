package router

import (
	"github.com/gofiber/fiber/v2"

	"github.com/noah-isme/schedmate-api/internal/config"
	"github.com/noah-isme/schedmate-api/internal/handler"
	"github.com/noah-isme/schedmate-api/internal/middleware"
	"github.com/noah-isme/schedmate-api/internal/models"
	"github.com/noah-isme/schedmate-api/internal/observability"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	AuthHandler        *handler.AuthHandler
	ProfileHandler     *handler.ProfileHandler
	ClassHandler       *handler.ClassHandler
	TaskHandler        *handler.TaskHandler
	ProgressHandler    *handler.ProgressHandler
	LeaderboardHandler *handler.LeaderboardHandler
	ActivityHandler    *handler.ActivityHandler
	UploadHandler      *handler.UploadHandler
	JWTMiddleware      fiber.Handler
	HealthProbes       []handler.Probe
}

// Register wires the HTTP routes into the fiber application.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	app.Get("/metrics", observability.MetricsHandler())

	api := app.Group("/api/v1", func(c *fiber.Ctx) error {
		c.Set("X-Application", cfg.AppName)
		return c.Next()
	})
	api.Get("/health", handler.HealthCheck(cfg, deps.HealthProbes...))

	jwtMiddleware := deps.JWTMiddleware
	if jwtMiddleware == nil {
		jwtMiddleware = func(c *fiber.Ctx) error { return c.Next() }
	}

	if deps.AuthHandler != nil {
		auth := api.Group("/auth")
		deps.AuthHandler.Register(auth, middleware.RateLimit("auth", cfg.AuthRateLimitMax, cfg.AuthRateLimitWindow))
		deps.AuthHandler.RegisterProtected(auth, jwtMiddleware)
	}

	if deps.ProfileHandler != nil {
		deps.ProfileHandler.Register(api.Group("/profile", jwtMiddleware))
	}

	// Task, leaderboard and class routes share the /classes prefix.
	classes := api.Group("/classes", jwtMiddleware)
	if deps.ClassHandler != nil {
		deps.ClassHandler.Register(classes)
	}
	if deps.LeaderboardHandler != nil {
		deps.LeaderboardHandler.Register(classes)
	}

	tasks := api.Group("/tasks", jwtMiddleware)
	if deps.TaskHandler != nil {
		deps.TaskHandler.RegisterClassRoutes(classes)
		deps.TaskHandler.Register(tasks)
	}
	if deps.ProgressHandler != nil {
		deps.ProgressHandler.Register(tasks)
	}

	if deps.UploadHandler != nil {
		deps.UploadHandler.Register(api.Group("/uploads", jwtMiddleware))
	}

	if deps.ActivityHandler != nil {
		activities := api.Group("/activities", jwtMiddleware, middleware.RequireRole(models.RoleTeacher))
		deps.ActivityHandler.Register(activities)
	}
}
