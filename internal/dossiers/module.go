// Package dossiers provides the dossier domain module: company creation and
// tourism-rental regularization filings, wizard progress, and documents.
package dossiers

import (
	"github.com/N0urDEV/Formalitys-sub001/internal/adapters/storage"
	"github.com/N0urDEV/Formalitys-sub001/internal/dossiers/handler"
	"github.com/N0urDEV/Formalitys-sub001/internal/dossiers/repository"
	"github.com/N0urDEV/Formalitys-sub001/internal/dossiers/service"
	"github.com/N0urDEV/Formalitys-sub001/internal/events"
	apphttp "github.com/N0urDEV/Formalitys-sub001/internal/http"
	"github.com/N0urDEV/Formalitys-sub001/platform/logger"
	"github.com/N0urDEV/Formalitys-sub001/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module represents the dossiers domain module
type Module struct {
	handler *handler.Handler
	service *service.Service
}

// NewModule creates a new dossiers module with all dependencies wired
func NewModule(pool *pgxpool.Pool, store storage.StorageService, docsBucket, pdfBucket string, loyalty service.LoyaltySyncer, bus events.Bus, val *validator.Validator, log *logger.Logger) *Module {
	repo := repository.New(pool)
	svc := service.New(repo, store, docsBucket, pdfBucket, loyalty, bus, log)
	h := handler.New(svc, val)

	return &Module{handler: h, service: svc}
}

// Name returns the module name for logging
func (m *Module) Name() string {
	return "dossiers"
}

// Service returns the service layer for external use (payments, admin, scheduler)
func (m *Module) Service() *service.Service {
	return m.service
}

// RegisterRoutes registers the module's routes
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	dossiers := ctx.Protected.Group("/dossiers")
	m.handler.RegisterRoutes(dossiers)

	documents := ctx.Protected.Group("/documents")
	m.handler.RegisterDocumentRoutes(documents)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
