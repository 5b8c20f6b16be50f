package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/workforce-service/internal/api/http/handlers"
	"github.com/spec-kit/workforce-service/internal/auth"
	"github.com/spec-kit/workforce-service/internal/domain"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Me             *handlers.MeHandler
	Manager        *handlers.ManagerHandler
	HR             *handlers.HRHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	authGroup := app.Group("/auth")
	authGroup.Post("/login", cfg.Auth.Login)
	authGroup.Post("/password/change", cfg.AuthMiddleware.Handle, cfg.Auth.ChangePassword)

	me := app.Group("/me", cfg.AuthMiddleware.Handle)
	me.Get("/wellness", cfg.Me.Wellness)
	me.Get("/items", cfg.Me.Items)
	me.Patch("/items/:id/status", cfg.Me.UpdateItemStatus)
	me.Post("/leave/preview", cfg.Me.PreviewLeave)
	me.Post("/leave", cfg.Me.RequestLeave)
	me.Get("/leave", cfg.Me.ListLeave)

	manager := app.Group("/manager", cfg.AuthMiddleware.Handle, auth.RequireRole(domain.RoleManager))
	manager.Get("/team/heatmap", cfg.Manager.Heatmap)
	manager.Get("/team/members/:id/load", cfg.Manager.MemberLoad)
	manager.Post("/assignments/suggest", cfg.Manager.Suggest)
	manager.Post("/assignments", cfg.Manager.Assign)
	manager.Get("/leave/pending", cfg.Manager.PendingLeave)
	manager.Get("/leave/:id/handover", cfg.Manager.Handover)
	manager.Post("/leave/:id/review", cfg.Manager.ReviewLeave)

	hr := app.Group("/hr", cfg.AuthMiddleware.Handle, auth.RequireRole(domain.RoleHR))
	hr.Get("/workers", cfg.HR.ListWorkers)
	hr.Post("/workers", cfg.HR.CreateWorker)
	hr.Put("/workers/:id", cfg.HR.UpdateWorker)
	hr.Get("/teams", cfg.HR.ListTeams)
	hr.Post("/teams", cfg.HR.CreateTeam)
}
