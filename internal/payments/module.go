// Package payments provides the payment domain module: Stripe PaymentIntent
// creation for dossiers and webhook-driven settlement.
package payments

import (
	apphttp "github.com/N0urDEV/Formalitys-sub001/internal/http"
	"github.com/N0urDEV/Formalitys-sub001/internal/payments/handler"
	"github.com/N0urDEV/Formalitys-sub001/internal/payments/repository"
	"github.com/N0urDEV/Formalitys-sub001/internal/payments/service"
	"github.com/N0urDEV/Formalitys-sub001/platform/config"
	"github.com/N0urDEV/Formalitys-sub001/platform/events"
	"github.com/N0urDEV/Formalitys-sub001/platform/logger"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stripe/stripe-go/v79"
)

// Module represents the payments domain module
type Module struct {
	handler *handler.Handler
	service *service.Service
}

// NewModule creates a new payments module with all dependencies wired.
// The Stripe API key is set process-wide here.
func NewModule(pool *pgxpool.Pool, cfg config.StripeConfig, dossiers service.DossierAccess, quoter service.Quoter, users service.UserReader, bus events.Bus, log *logger.Logger) *Module {
	stripe.Key = cfg.GetStripeSecretKey()

	repo := repository.New(pool)
	svc := service.New(repo, dossiers, quoter, users, bus, cfg.GetStripeWebhookSecret(), log)
	h := handler.New(svc)

	return &Module{handler: h, service: svc}
}

// Name returns the module name for logging
func (m *Module) Name() string {
	return "payments"
}

// Service returns the service layer for external use
func (m *Module) Service() *service.Service {
	return m.service
}

// RegisterRoutes registers the module's routes
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	protected := ctx.Protected.Group("/payments")
	m.handler.RegisterRoutes(protected)

	// Stripe calls this without a session; signature verification guards it.
	public := ctx.V1.Group("/payments")
	m.handler.RegisterWebhookRoutes(public)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
