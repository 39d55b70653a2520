package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/playdesk/support-desk/internal/api/http/handlers"
	"github.com/playdesk/support-desk/internal/auth"
	"github.com/playdesk/support-desk/internal/domain"
	"github.com/playdesk/support-desk/internal/observability"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Authentication *handlers.AuthenticationHandler
	Users          *handlers.UsersHandler
	Tickets        *handlers.TicketsHandler
	AuthMiddleware *auth.AuthMiddleware
	Metrics        *observability.Metrics
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	if reg := cfg.Metrics.Registry(); reg != nil {
		app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))
	}

	authenticated := []fiber.Handler{cfg.AuthMiddleware.Handle, auth.RequireAnyRole()}
	agentOnly := auth.RequireRole(domain.RoleAgent)
	playerOnly := auth.RequireRole(domain.RolePlayer)

	api := app.Group("/api")

	authGroup := api.Group("/authentication")
	authGroup.Post("/player/login", cfg.Authentication.PlayerLogin)
	authGroup.Post("/agent/login", cfg.Authentication.AgentLogin)
	authGroup.Post("/logout", append(authenticated, cfg.Authentication.Logout)...)
	authGroup.Get("/me", append(authenticated, cfg.Authentication.Me)...)

	users := api.Group("/users")
	users.Post("/players", cfg.Users.CreatePlayer)
	users.Post("/agents", append(authenticated, agentOnly, cfg.Users.CreateAgent)...)
	users.Get("/:id", append(authenticated, cfg.Users.GetUser)...)

	tickets := api.Group("/tickets", authenticated...)
	tickets.Post("/", playerOnly, cfg.Tickets.CreateTicket)
	tickets.Get("/unresolved", agentOnly, cfg.Tickets.ListUnresolved)
	tickets.Get("/player/:playerId", cfg.Tickets.ListPlayerTickets)
	tickets.Get("/:id", cfg.Tickets.GetTicket)
	tickets.Get("/:id/history", cfg.Tickets.ListHistory)
	tickets.Post("/:id/replies", cfg.Tickets.AddReply)
	tickets.Put("/:id/resolve", agentOnly, cfg.Tickets.ResolveTicket)
}
