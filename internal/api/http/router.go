package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/reimbursement-service/internal/api/http/handlers"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health    *handlers.HealthHandler
	Employees *handlers.EmployeesHandler
	Tickets   *handlers.TicketsHandler
}

// RegisterRoutes wires HTTP routes. All business endpoints are POST with
// credential-bearing bodies; authorization happens inside the services.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	app.Post("/register", cfg.Employees.Register)
	app.Post("/login", cfg.Employees.Login)

	employees := app.Group("/employees")
	employees.Post("/list", cfg.Employees.List)
	employees.Post("/promote", cfg.Employees.Promote)
	employees.Post("/demote", cfg.Employees.Demote)

	tickets := app.Group("/tickets")
	tickets.Post("/submit", cfg.Tickets.Submit)
	tickets.Post("/finalize", cfg.Tickets.Finalize)
	tickets.Post("/mine", cfg.Tickets.ListMine)
	tickets.Post("/list", cfg.Tickets.ListAll)
}
