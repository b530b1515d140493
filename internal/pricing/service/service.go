// Package service orchestrates pricing: quote calculation for checkout,
// discount application after payment, and loyalty counter maintenance.
package service

import (
	"context"

	"github.com/N0urDEV/Formalitys-sub001/internal/pricing/engine"
	"github.com/N0urDEV/Formalitys-sub001/internal/pricing/repository"
	"github.com/N0urDEV/Formalitys-sub001/platform/logger"

	"github.com/google/uuid"
)

// Service exposes pricing operations to handlers and to the payments module.
type Service struct {
	repo   repository.Repository
	engine *engine.Engine
	log    *logger.Logger
}

// New creates a new pricing service.
func New(repo repository.Repository, eng *engine.Engine, log *logger.Logger) *Service {
	return &Service{repo: repo, engine: eng, log: log}
}

// Status describes a user's loyalty standing and the quotes they would
// receive right now for each dossier type.
type Status struct {
	CompletedDossiers int           `json:"completedDossiers"`
	CurrentTier       engine.Tier   `json:"currentTier"`
	NextTier          *engine.Tier  `json:"nextTier,omitempty"`
	DossiersToNext    int           `json:"dossiersToNextTier"`
	CompanyQuote      engine.Quote  `json:"companyQuote"`
	TourismQuote      engine.Quote  `json:"tourismQuote"`
	Tiers             []engine.Tier `json:"tiers"`
}

// CalculateDiscount recounts the user's completed dossiers and quotes the
// given dossier type. It never reads the denormalized user counters.
func (s *Service) CalculateDiscount(ctx context.Context, userID uuid.UUID, dossierType engine.DossierType) (engine.Quote, error) {
	completed, err := s.repo.CountCompletedDossiers(ctx, userID)
	if err != nil {
		return engine.Quote{}, err
	}
	return s.engine.Quote(dossierType, completed)
}

// ApplyDiscountToDossier snapshots the quoted price onto the dossier and
// appends the audit row. Count, quote, and both writes happen in one
// transaction, so the audit trail always matches what the dossier stored.
func (s *Service) ApplyDiscountToDossier(ctx context.Context, userID, dossierID uuid.UUID, dossierType engine.DossierType) (engine.Quote, error) {
	q, err := s.repo.ApplyDiscount(ctx, userID, dossierID, dossierType, func(completed int) (engine.Quote, error) {
		return s.engine.Quote(dossierType, completed)
	})
	if err != nil {
		return engine.Quote{}, err
	}

	s.log.Info("discount applied",
		"user_id", userID.String(),
		"dossier_id", dossierID.String(),
		"dossier_type", string(dossierType),
		"tier", q.Tier,
		"discount_percent", q.DiscountPercent,
		"final_price", q.FinalPrice,
	)
	return q, nil
}

// UpdateUserDossierCounters recounts and rewrites the user's denormalized
// loyalty columns. Called after every dossier status change; the stored
// values are display hints only and are never fed back into quoting.
func (s *Service) UpdateUserDossierCounters(ctx context.Context, userID uuid.UUID) (int, int, error) {
	completed, tier, err := s.repo.SyncUserCounters(ctx, userID, func(n int) int {
		return s.engine.TierFor(n).Tier
	})
	if err != nil {
		return 0, 0, err
	}

	s.log.Info("loyalty counters synced",
		"user_id", userID.String(),
		"completed_dossiers", completed,
		"loyalty_tier", tier,
	)
	return completed, tier, nil
}

// GetUserDiscountStatus assembles the loyalty dashboard payload.
func (s *Service) GetUserDiscountStatus(ctx context.Context, userID uuid.UUID) (Status, error) {
	completed, err := s.repo.CountCompletedDossiers(ctx, userID)
	if err != nil {
		return Status{}, err
	}

	companyQuote, err := s.engine.Quote(engine.DossierTypeCompany, completed)
	if err != nil {
		return Status{}, err
	}
	tourismQuote, err := s.engine.Quote(engine.DossierTypeTourism, completed)
	if err != nil {
		return Status{}, err
	}

	status := Status{
		CompletedDossiers: completed,
		CurrentTier:       s.engine.TierFor(completed),
		DossiersToNext:    s.engine.DossiersToNextTier(completed),
		CompanyQuote:      companyQuote,
		TourismQuote:      tourismQuote,
		Tiers:             s.engine.Tiers(),
	}
	if next, ok := s.engine.NextTier(completed); ok {
		status.NextTier = &next
	}
	return status, nil
}

// Tiers exposes the static tier table for the public pricing page.
func (s *Service) Tiers() []engine.Tier {
	return s.engine.Tiers()
}

// BasePrices exposes the undiscounted prices in cents for the public
// pricing page.
func (s *Service) BasePrices() (company, tourism int64) {
	return s.engine.BasePrices()
}

// ListHistory returns the user's discount audit rows, newest first.
func (s *Service) ListHistory(ctx context.Context, userID uuid.UUID, limit int) ([]repository.HistoryEntry, error) {
	return s.repo.ListHistory(ctx, userID, limit)
}
