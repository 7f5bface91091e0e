package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/campus360/incident-service/internal/api/http/handlers"
	"github.com/campus360/incident-service/internal/auth"
	"github.com/campus360/incident-service/internal/domain"
	"github.com/campus360/incident-service/internal/observability"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Tickets        *handlers.TicketsHandler
	Catalogs       *handlers.CatalogsHandler
	Principals     *handlers.PrincipalsHandler
	AuthMiddleware *auth.AuthMiddleware
}

// ServerConfig configures NewApp.
type ServerConfig struct {
	Name           string
	RequestTimeout time.Duration
	Logger         *zap.Logger
	Metrics        *observability.Metrics
}

// NewApp builds the fiber application with middlewares and routes.
func NewApp(cfg ServerConfig, routes RouteConfig) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               cfg.Name,
		DisableStartupMessage: true,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			return writeError(c, err, cfg.Logger, cfg.Metrics)
		},
	})
	RegisterMiddlewares(app, cfg.Logger, cfg.Metrics, cfg.RequestTimeout)
	RegisterRoutes(app, routes)
	return app
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	app.Get("/health/metrics", cfg.Health.Metrics)

	adminOnly := auth.RequireRole(domain.RoleAdministrator)

	catalogs := app.Group("/catalogs", cfg.AuthMiddleware.Handle)
	catalogs.Get("/:kind", cfg.Catalogs.List)
	catalogs.Post("/:kind", adminOnly, cfg.Catalogs.Create)
	catalogs.Patch("/:kind/:code", adminOnly, cfg.Catalogs.SetActive)

	tickets := app.Group("/tickets", cfg.AuthMiddleware.Handle)
	tickets.Post("/", cfg.Tickets.CreateTicket)
	tickets.Get("/", cfg.Tickets.ListTickets)
	tickets.Get("/:id", cfg.Tickets.GetTicket)
	tickets.Patch("/:id", cfg.Tickets.UpdateTicket)
	tickets.Delete("/:id", cfg.Tickets.DeleteTicket)
	tickets.Post("/:id/assign", cfg.Tickets.AssignTicket)
	tickets.Post("/:id/state", cfg.Tickets.ChangeState)
	tickets.Post("/:id/comments", cfg.Tickets.AddComment)
	tickets.Get("/:id/comments", cfg.Tickets.ListComments)
	tickets.Get("/:id/history", cfg.Tickets.History)

	principals := app.Group("/principals", cfg.AuthMiddleware.Handle)
	principals.Get("/technicians", adminOnly, cfg.Principals.Technicians)
}
