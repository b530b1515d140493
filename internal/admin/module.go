// Package admin provides the back-office module: dashboard aggregates,
// user and dossier oversight.
package admin

import (
	"github.com/N0urDEV/Formalitys-sub001/internal/admin/handler"
	"github.com/N0urDEV/Formalitys-sub001/internal/admin/repository"
	"github.com/N0urDEV/Formalitys-sub001/internal/admin/service"
	apphttp "github.com/N0urDEV/Formalitys-sub001/internal/http"
	"github.com/N0urDEV/Formalitys-sub001/platform/logger"
	"github.com/N0urDEV/Formalitys-sub001/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module represents the admin domain module
type Module struct {
	handler *handler.Handler
}

// NewModule creates a new admin module with all dependencies wired
func NewModule(pool *pgxpool.Pool, dossiers service.DossierAdmin, val *validator.Validator, log *logger.Logger) *Module {
	repo := repository.New(pool)
	svc := service.New(repo, dossiers, log)
	h := handler.New(svc, val)

	return &Module{handler: h}
}

// Name returns the module name for logging
func (m *Module) Name() string {
	return "admin"
}

// RegisterRoutes registers the module's routes
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	m.handler.RegisterRoutes(ctx.Admin)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
