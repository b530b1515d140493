// Package auth provides the authentication bounded context module.
package auth

import (
	"github.com/N0urDEV/Formalitys-sub001/internal/auth/handler"
	"github.com/N0urDEV/Formalitys-sub001/internal/auth/repository"
	"github.com/N0urDEV/Formalitys-sub001/internal/auth/service"
	"github.com/N0urDEV/Formalitys-sub001/internal/email"
	"github.com/N0urDEV/Formalitys-sub001/internal/events"
	apphttp "github.com/N0urDEV/Formalitys-sub001/internal/http"
	"github.com/N0urDEV/Formalitys-sub001/platform/config"
	"github.com/N0urDEV/Formalitys-sub001/platform/logger"
	"github.com/N0urDEV/Formalitys-sub001/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the auth bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
}

// NewModule creates and initializes the auth module with all its dependencies.
func NewModule(pool *pgxpool.Pool, cfg *config.Config, mailer email.Sender, bus events.Bus, val *validator.Validator, log *logger.Logger) *Module {
	repo := repository.New(pool)
	svc := service.New(repo, cfg, mailer, bus, log)
	h := handler.New(svc, val, cfg)

	return &Module{handler: h, service: svc}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "auth"
}

// Service returns the auth service for use by other modules.
func (m *Module) Service() *service.Service {
	return m.service
}

// RegisterRoutes mounts auth routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	// Public auth routes with stricter rate limiting
	authGroup := ctx.V1.Group("/auth")
	authGroup.Use(ctx.AuthRateLimiter.RateLimit())
	m.handler.RegisterRoutes(authGroup)

	// Protected user routes
	ctx.Protected.GET("/users/me", m.handler.GetMe)
	ctx.Protected.PATCH("/users/me", m.handler.UpdateMe)
	ctx.Protected.POST("/users/me/password", m.handler.ChangePassword)

	// Admin routes
	ctx.Admin.PUT("/users/:id/role", m.handler.SetUserRole)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
