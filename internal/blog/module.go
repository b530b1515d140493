// Package blog provides the content module: public articles and their
// admin management.
package blog

import (
	"github.com/N0urDEV/Formalitys-sub001/internal/adapters/storage"
	"github.com/N0urDEV/Formalitys-sub001/internal/blog/handler"
	"github.com/N0urDEV/Formalitys-sub001/internal/blog/repository"
	"github.com/N0urDEV/Formalitys-sub001/internal/blog/service"
	apphttp "github.com/N0urDEV/Formalitys-sub001/internal/http"
	"github.com/N0urDEV/Formalitys-sub001/platform/logger"
	"github.com/N0urDEV/Formalitys-sub001/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module represents the blog domain module
type Module struct {
	handler *handler.Handler
}

// NewModule creates a new blog module with all dependencies wired
func NewModule(pool *pgxpool.Pool, store storage.StorageService, imagesBucket string, val *validator.Validator, log *logger.Logger) *Module {
	repo := repository.New(pool)
	svc := service.New(repo, store, imagesBucket, log)
	h := handler.New(svc, val)

	return &Module{handler: h}
}

// Name returns the module name for logging
func (m *Module) Name() string {
	return "blog"
}

// RegisterRoutes registers the module's routes
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	// Public reading — no auth middleware
	public := ctx.V1.Group("/blog")
	m.handler.RegisterPublicRoutes(public)

	admin := ctx.Admin.Group("/blog")
	m.handler.RegisterAdminRoutes(admin)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
