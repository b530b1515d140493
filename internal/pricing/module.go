// Package pricing provides the loyalty pricing domain module: tiered
// discounts, price snapshots, and loyalty counter maintenance.
package pricing

import (
	apphttp "github.com/N0urDEV/Formalitys-sub001/internal/http"
	"github.com/N0urDEV/Formalitys-sub001/internal/pricing/engine"
	"github.com/N0urDEV/Formalitys-sub001/internal/pricing/handler"
	"github.com/N0urDEV/Formalitys-sub001/internal/pricing/repository"
	"github.com/N0urDEV/Formalitys-sub001/internal/pricing/service"
	"github.com/N0urDEV/Formalitys-sub001/platform/config"
	"github.com/N0urDEV/Formalitys-sub001/platform/logger"
	"github.com/N0urDEV/Formalitys-sub001/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module represents the pricing domain module
type Module struct {
	handler *handler.Handler
	service *service.Service
}

// NewModule creates a new pricing module with all dependencies wired
func NewModule(pool *pgxpool.Pool, cfg config.PricingConfig, val *validator.Validator, log *logger.Logger) *Module {
	eng := engine.New(
		engine.DefaultTiers(),
		cfg.GetCompanyBasePriceCents(),
		cfg.GetTourismBasePriceCents(),
	)
	repo := repository.New(pool)
	svc := service.New(repo, eng, log)
	h := handler.New(svc, val)

	return &Module{handler: h, service: svc}
}

// Name returns the module name for logging
func (m *Module) Name() string {
	return "pricing"
}

// Service returns the service layer for external use
func (m *Module) Service() *service.Service {
	return m.service
}

// RegisterRoutes registers the module's routes
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	discounts := ctx.Protected.Group("/discounts")
	m.handler.RegisterRoutes(discounts)

	// Public routes — no auth middleware
	publicDiscounts := ctx.V1.Group("/discounts")
	m.handler.RegisterPublicRoutes(publicDiscounts)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
