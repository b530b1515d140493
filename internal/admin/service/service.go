// Package service implements the admin back-office operations.
package service

import (
	"context"

	"github.com/N0urDEV/Formalitys-sub001/internal/admin/repository"
	"github.com/N0urDEV/Formalitys-sub001/platform/logger"

	"github.com/google/uuid"
)

// DossierAdmin is the slice of the dossiers module the back-office needs.
type DossierAdmin interface {
	SetStatusAdmin(ctx context.Context, dossierType string, id uuid.UUID, newStatus string) error
}

type Service struct {
	repo     *repository.Repository
	dossiers DossierAdmin
	log      *logger.Logger
}

func New(repo *repository.Repository, dossiers DossierAdmin, log *logger.Logger) *Service {
	return &Service{repo: repo, dossiers: dossiers, log: log}
}

func (s *Service) DashboardStats(ctx context.Context) (repository.DashboardStats, error) {
	return s.repo.GetDashboardStats(ctx)
}

func (s *Service) ListUsers(ctx context.Context, limit, offset int) ([]repository.UserRow, int, error) {
	return s.repo.ListUsers(ctx, limit, offset)
}

func (s *Service) ListDossiers(ctx context.Context, f repository.DossierFilter) ([]repository.DossierRow, int, error) {
	return s.repo.ListDossiers(ctx, f)
}

// OverrideDossierStatus moves a dossier to any valid status, bypassing the
// customer transition rules. Loyalty counters are resynchronized by the
// dossiers module as part of the change.
func (s *Service) OverrideDossierStatus(ctx context.Context, dossierType string, id uuid.UUID, newStatus string) error {
	if err := s.dossiers.SetStatusAdmin(ctx, dossierType, id, newStatus); err != nil {
		return err
	}
	s.log.Info("admin status override", "dossier_id", id, "dossier_type", dossierType, "new_status", newStatus)
	return nil
}
