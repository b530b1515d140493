package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/N0urDEV/Formalitys-sub001/internal/pricing/engine"
	"github.com/N0urDEV/Formalitys-sub001/internal/pricing/repository"
	"github.com/N0urDEV/Formalitys-sub001/internal/pricing/service"
	"github.com/N0urDEV/Formalitys-sub001/platform/logger"
	"github.com/N0urDEV/Formalitys-sub001/platform/validator"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type stubRepo struct{}

func (stubRepo) CountCompletedDossiers(context.Context, uuid.UUID) (int, error) { return 0, nil }
func (stubRepo) ApplyDiscount(_ context.Context, _, _ uuid.UUID, _ engine.DossierType, quote repository.QuoteFunc) (engine.Quote, error) {
	return quote(0)
}
func (stubRepo) SyncUserCounters(_ context.Context, _ uuid.UUID, tierFor repository.TierFunc) (int, int, error) {
	return 0, tierFor(0), nil
}
func (stubRepo) ListHistory(context.Context, uuid.UUID, int) ([]repository.HistoryEntry, error) {
	return nil, nil
}

func TestListTiersIncludesBasePrices(t *testing.T) {
	gin.SetMode(gin.TestMode)

	eng := engine.New(engine.DefaultTiers(), 330000, 160000)
	svc := service.New(stubRepo{}, eng, logger.New("development"))
	h := New(svc, validator.New())

	router := gin.New()
	h.RegisterPublicRoutes(router.Group("/discounts"))

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/discounts/tiers", nil)
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp struct {
		Tiers []struct {
			Tier int `json:"tier"`
		} `json:"tiers"`
		BasePrices struct {
			Company int64 `json:"company"`
			Tourism int64 `json:"tourism"`
		} `json:"basePrices"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(resp.Tiers) != 3 {
		t.Fatalf("expected 3 tiers, got %d", len(resp.Tiers))
	}
	if resp.BasePrices.Company != 330000 || resp.BasePrices.Tourism != 160000 {
		t.Fatalf("unexpected base prices: %+v", resp.BasePrices)
	}
}
