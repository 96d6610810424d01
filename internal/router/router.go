// Package router wires handlers, middleware and routes into a gin engine.
package router

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"claimdesk/internal/auth"
	"claimdesk/internal/config"
	"claimdesk/internal/handler"
	"claimdesk/internal/middleware"
	"claimdesk/internal/models"
	"claimdesk/internal/storage"
)

// Handlers bundles the handler set the router mounts.
type Handlers struct {
	Auth   *handler.AuthHandler
	Claims *handler.ClaimHandler
	Admin  *handler.AdminHandler
}

// Setup configures the gin engine: middleware chain, public auth routes, and
// the protected API behind JWT auth.
func Setup(cfg *config.Config, store storage.Store, jwtManager *auth.JWTManager, h Handlers) *gin.Engine {
	if cfg.Server.Mode != "" {
		gin.SetMode(cfg.Server.Mode)
	}
	handler.RegisterValidations()

	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestLogging(), middleware.Metrics())

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api")

	// Login/registration (no auth required).
	api.POST("/auth/register", h.Auth.Register)
	api.POST("/auth/login", h.Auth.Login)

	// Everything else requires a valid session.
	protected := api.Group("")
	protected.Use(middleware.RequireAuth(jwtManager, store))

	protected.GET("/me", h.Auth.Me)

	protected.POST("/claims", h.Claims.Create)
	protected.GET("/claims", h.Claims.List)
	protected.GET("/claims/:id", h.Claims.Get)
	protected.PUT("/claims/:id", h.Claims.Update)
	protected.DELETE("/claims/:id", h.Claims.Delete)
	protected.GET("/claims/:id/history", h.Claims.History)
	protected.POST("/claims/:id/transitions", h.Claims.Transition)

	protected.GET("/projects", h.Admin.ListProjects)

	// Administration.
	admin := protected.Group("")
	admin.Use(middleware.RequireRole(models.RoleAdmin))

	admin.GET("/users", h.Admin.ListUsers)
	admin.PUT("/users/:id/role", h.Admin.SetUserRole)
	admin.PUT("/users/:id/active", h.Admin.SetUserActive)

	admin.POST("/projects", h.Admin.CreateProject)
	admin.PUT("/projects/:id/archived", h.Admin.SetProjectArchived)

	return r
}
