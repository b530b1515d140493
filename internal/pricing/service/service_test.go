package service

import (
	"context"
	"testing"

	"github.com/N0urDEV/Formalitys-sub001/internal/pricing/engine"
	"github.com/N0urDEV/Formalitys-sub001/internal/pricing/repository"
	"github.com/N0urDEV/Formalitys-sub001/platform/logger"

	"github.com/google/uuid"
)

// fakeRepo implements repository.Repository in memory.  ApplyDiscount and
// SyncUserCounters run the supplied callbacks against the stored count the
// same way the real transaction does.
type fakeRepo struct {
	completed    int
	countErr     error
	applied      []engine.Quote
	syncedCount  int
	syncedTier   int
	historyCalls int
}

func (f *fakeRepo) CountCompletedDossiers(_ context.Context, _ uuid.UUID) (int, error) {
	return f.completed, f.countErr
}

func (f *fakeRepo) ApplyDiscount(_ context.Context, _, _ uuid.UUID, _ engine.DossierType, quote repository.QuoteFunc) (engine.Quote, error) {
	q, err := quote(f.completed)
	if err != nil {
		return engine.Quote{}, err
	}
	f.applied = append(f.applied, q)
	return q, nil
}

func (f *fakeRepo) SyncUserCounters(_ context.Context, _ uuid.UUID, tierFor repository.TierFunc) (int, int, error) {
	f.syncedCount = f.completed
	f.syncedTier = tierFor(f.completed)
	return f.syncedCount, f.syncedTier, nil
}

func (f *fakeRepo) ListHistory(_ context.Context, _ uuid.UUID, _ int) ([]repository.HistoryEntry, error) {
	f.historyCalls++
	return nil, nil
}

func newTestService(repo repository.Repository) *Service {
	eng := engine.New(engine.DefaultTiers(), 330000, 160000)
	return New(repo, eng, logger.New("development"))
}

func TestCalculateDiscountUsesLiveCount(t *testing.T) {
	repo := &fakeRepo{completed: 2}
	svc := newTestService(repo)

	q, err := svc.CalculateDiscount(context.Background(), uuid.New(), engine.DossierTypeTourism)
	if err != nil {
		t.Fatalf("CalculateDiscount: %v", err)
	}
	if q.Tier != 3 {
		t.Fatalf("tier = %d, want 3", q.Tier)
	}
	if q.FinalPrice != 120000 {
		t.Fatalf("final price = %d, want 120000", q.FinalPrice)
	}
	if q.Reason != "loyalty_tier_3" {
		t.Fatalf("reason = %q, want loyalty_tier_3", q.Reason)
	}
}

func TestCalculateDiscountCompanyNeverDiscounted(t *testing.T) {
	repo := &fakeRepo{completed: 10}
	svc := newTestService(repo)

	q, err := svc.CalculateDiscount(context.Background(), uuid.New(), engine.DossierTypeCompany)
	if err != nil {
		t.Fatalf("CalculateDiscount: %v", err)
	}
	if q.DiscountAmount != 0 || q.FinalPrice != 330000 {
		t.Fatalf("company quote discounted: amount=%d final=%d", q.DiscountAmount, q.FinalPrice)
	}
	if q.Reason != "no_discount_company" {
		t.Fatalf("reason = %q, want no_discount_company", q.Reason)
	}
	if q.Tier != 1 {
		t.Fatalf("tier = %d, want 1", q.Tier)
	}
}

func TestCalculateDiscountRejectsUnknownType(t *testing.T) {
	svc := newTestService(&fakeRepo{})

	if _, err := svc.CalculateDiscount(context.Background(), uuid.New(), engine.DossierType("villa")); err == nil {
		t.Fatal("expected error for unknown dossier type")
	}
}

func TestApplyDiscountQuotesInsideTransaction(t *testing.T) {
	repo := &fakeRepo{completed: 1}
	svc := newTestService(repo)

	q, err := svc.ApplyDiscountToDossier(context.Background(), uuid.New(), uuid.New(), engine.DossierTypeTourism)
	if err != nil {
		t.Fatalf("ApplyDiscountToDossier: %v", err)
	}
	if len(repo.applied) != 1 {
		t.Fatalf("applied %d quotes, want 1", len(repo.applied))
	}
	if q.DiscountPercent != 15 || q.FinalPrice != 136000 {
		t.Fatalf("quote = %+v, want 15%% off 160000", q)
	}
	// The audit row and the snapshot come from the same quote value.
	if repo.applied[0] != q {
		t.Fatalf("stored quote %+v differs from returned quote %+v", repo.applied[0], q)
	}
}

func TestUpdateUserDossierCountersRecomputesTier(t *testing.T) {
	repo := &fakeRepo{completed: 3}
	svc := newTestService(repo)

	completed, tier, err := svc.UpdateUserDossierCounters(context.Background(), uuid.New())
	if err != nil {
		t.Fatalf("UpdateUserDossierCounters: %v", err)
	}
	if completed != 3 {
		t.Fatalf("completed = %d, want 3", completed)
	}
	if tier != 3 {
		t.Fatalf("tier = %d, want 3", tier)
	}
	if repo.syncedTier != 3 {
		t.Fatalf("repo stored tier %d, want 3", repo.syncedTier)
	}
}

func TestGetUserDiscountStatus(t *testing.T) {
	repo := &fakeRepo{completed: 1}
	svc := newTestService(repo)

	status, err := svc.GetUserDiscountStatus(context.Background(), uuid.New())
	if err != nil {
		t.Fatalf("GetUserDiscountStatus: %v", err)
	}
	if status.CurrentTier.Tier != 2 {
		t.Fatalf("current tier = %d, want 2", status.CurrentTier.Tier)
	}
	if status.NextTier == nil || status.NextTier.Tier != 3 {
		t.Fatalf("next tier = %+v, want tier 3", status.NextTier)
	}
	if status.DossiersToNext != 1 {
		t.Fatalf("dossiers to next = %d, want 1", status.DossiersToNext)
	}
	if status.TourismQuote.FinalPrice != 136000 {
		t.Fatalf("tourism final = %d, want 136000", status.TourismQuote.FinalPrice)
	}
	if status.CompanyQuote.FinalPrice != 330000 {
		t.Fatalf("company final = %d, want 330000", status.CompanyQuote.FinalPrice)
	}
	if len(status.Tiers) != 3 {
		t.Fatalf("tiers len = %d, want 3", len(status.Tiers))
	}
}

func TestGetUserDiscountStatusAtTopTier(t *testing.T) {
	repo := &fakeRepo{completed: 42}
	svc := newTestService(repo)

	status, err := svc.GetUserDiscountStatus(context.Background(), uuid.New())
	if err != nil {
		t.Fatalf("GetUserDiscountStatus: %v", err)
	}
	if status.NextTier != nil {
		t.Fatalf("next tier = %+v, want nil at top tier", status.NextTier)
	}
	if status.DossiersToNext != 0 {
		t.Fatalf("dossiers to next = %d, want 0", status.DossiersToNext)
	}
}
