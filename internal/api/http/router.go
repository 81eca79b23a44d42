package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/bloodbank-service/internal/api/http/handlers"
	"github.com/spec-kit/bloodbank-service/internal/auth"
	"github.com/spec-kit/bloodbank-service/internal/domain"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Donors         *handlers.DonorsHandler
	Appointments   *handlers.AppointmentsHandler
	Requests       *handlers.RequestsHandler
	Inventory      *handlers.InventoryHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	authGroup := app.Group("/auth")
	authGroup.Post("/register", cfg.Auth.Register)
	authGroup.Post("/login", cfg.Auth.Login)

	donor := auth.RequireRole(domain.RoleDonor)
	receiver := auth.RequireRole(domain.RoleReceiver)
	admin := auth.RequireRole(domain.RoleAdmin)

	authenticate := cfg.AuthMiddleware.Handle

	app.Get("/donors/me", authenticate, donor, cfg.Donors.Me)

	appointments := app.Group("/appointments", authenticate)
	appointments.Post("/", donor, cfg.Appointments.Create)
	appointments.Get("/", donor, cfg.Appointments.ListMine)
	appointments.Get("/all", admin, cfg.Appointments.ListAll)
	appointments.Post("/approve/:id", admin, cfg.Appointments.Approve)
	appointments.Post("/reject/:id", admin, cfg.Appointments.Reject)

	requests := app.Group("/requests", authenticate)
	requests.Post("/", receiver, cfg.Requests.Create)
	requests.Get("/mine", receiver, cfg.Requests.ListMine)
	requests.Get("/", admin, cfg.Requests.ListAll)
	requests.Get("/admin/stats", admin, cfg.Requests.Stats)

	inventory := app.Group("/inventory", authenticate)
	inventory.Post("/update", admin, cfg.Inventory.Update)
	inventory.Get("/get", admin, cfg.Inventory.List)
	inventory.Get("/public", auth.RequireAnyRole(), cfg.Inventory.List)
	inventory.Post("/approve/:requestId", admin, cfg.Requests.Approve)
	inventory.Post("/reject/:requestId", admin, cfg.Requests.Reject)
}
