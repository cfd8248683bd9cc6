package router

import (
	"github.com/gofiber/fiber/v2"

	"github.com/noah-isme/udata-api/internal/config"
	"github.com/noah-isme/udata-api/internal/handler"
	"github.com/noah-isme/udata-api/internal/middleware"
	"github.com/noah-isme/udata-api/internal/models"
	"github.com/noah-isme/udata-api/internal/observability"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	AuthHandler     *handler.AuthHandler
	CampusHandler   *handler.CampusHandler
	BuildingHandler *handler.BuildingHandler
	RoomHandler     *handler.RoomHandler
	ActivityHandler *handler.ActivityHandler
	Gate            middleware.Gate
	HealthPing      handler.Pinger
}

// Register wires the HTTP routes into the fiber application.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	api := app.Group("/api/v1", func(c *fiber.Ctx) error {
		c.Set("X-Application", cfg.AppName)
		return c.Next()
	})
	api.Get("/health", handler.HealthCheck(cfg, deps.HealthPing))
	app.Get(observability.ScrapePath, observability.MetricsHandler())

	authenticated := middleware.Authenticate(deps.Gate)
	adminOnly := middleware.RequireRole(models.RoleAdmin)

	if deps.AuthHandler != nil {
		limit := middleware.RateLimit("auth", cfg.AuthRateLimit, cfg.AuthRateWindow)
		deps.AuthHandler.Register(app.Group("/auth"), limit, authenticated, adminOnly)
	}

	if deps.CampusHandler != nil {
		deps.CampusHandler.Register(app.Group("/campuses", authenticated))
	}
	if deps.BuildingHandler != nil {
		deps.BuildingHandler.Register(app.Group("/buildings", authenticated))
	}
	if deps.RoomHandler != nil {
		deps.RoomHandler.Register(app.Group("/rooms", authenticated))
	}
	if deps.ActivityHandler != nil {
		deps.ActivityHandler.Register(app.Group("/activity", authenticated, adminOnly))
	}
}
