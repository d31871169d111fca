package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/support-desk/internal/api/http/handlers"
	"github.com/spec-kit/support-desk/internal/auth"
	"github.com/spec-kit/support-desk/internal/domain"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Users          *handlers.UsersHandler
	Tickets        *handlers.TicketsHandler
	Comments       *handlers.CommentsHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes. Per-route role gates mirror the
// dashboard's contract exactly; the ticket detail route is deliberately
// open to every authenticated role.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	authGroup := app.Group("/auth")
	authGroup.Post("/login", cfg.Auth.Login)
	authGroup.Post("/logout", cfg.Auth.Logout)
	authGroup.Post("/create", cfg.AuthMiddleware.Handle, auth.RequireRoles(domain.RoleAdmin), cfg.Auth.CreateUser)

	users := app.Group("/users", cfg.AuthMiddleware.Handle)
	users.Get("/me", auth.RequireAuthenticated(), cfg.Users.Me)
	users.Get("/support-agents", auth.RequireRoles(domain.RoleAdmin), cfg.Users.ListSupportAgents)
	users.Put("/profile", auth.RequireAuthenticated(), cfg.Users.UpdateProfile)
	users.Put("/change-password", auth.RequireAuthenticated(), cfg.Users.ChangePassword)
	users.Post("/upload-profile-image", auth.RequireAuthenticated(), cfg.Users.UploadProfileImage)
	users.Get("/", auth.RequireRoles(domain.RoleAdmin), cfg.Users.List)
	users.Patch("/:id/role", auth.RequireRoles(domain.RoleAdmin), cfg.Users.UpdateRole)

	tickets := app.Group("/tickets", cfg.AuthMiddleware.Handle)
	tickets.Post("/", auth.RequireRoles(domain.RoleEmployee), cfg.Tickets.Create)
	tickets.Get("/my", auth.RequireRoles(domain.RoleEmployee), cfg.Tickets.ListMine)
	tickets.Get("/assigned", auth.RequireRoles(domain.RoleSupport), cfg.Tickets.ListAssigned)
	tickets.Get("/stats", auth.RequireRoles(domain.RoleAdmin, domain.RoleSupport, domain.RoleEmployee), cfg.Tickets.Stats)
	tickets.Get("/stats/employee", auth.RequireRoles(domain.RoleEmployee), cfg.Tickets.EmployeeStats)
	tickets.Get("/stats/support-agent", auth.RequireRoles(domain.RoleSupport), cfg.Tickets.AgentStats)
	tickets.Get("/", auth.RequireRoles(domain.RoleAdmin, domain.RoleSupport), cfg.Tickets.List)
	tickets.Get("/:id", auth.RequireAuthenticated(), cfg.Tickets.Get)
	tickets.Patch("/:id/status", auth.RequireRoles(domain.RoleSupport, domain.RoleAdmin), cfg.Tickets.UpdateStatus)
	tickets.Patch("/:id/assign", auth.RequireRoles(domain.RoleAdmin), cfg.Tickets.Assign)
	tickets.Patch("/:id/notes", auth.RequireRoles(domain.RoleAdmin, domain.RoleSupport), cfg.Tickets.UpdateNotes)

	comments := app.Group("/comments", cfg.AuthMiddleware.Handle, auth.RequireAuthenticated())
	comments.Post("/:ticketId", cfg.Comments.Add)
	comments.Get("/:ticketId", cfg.Comments.List)
}
