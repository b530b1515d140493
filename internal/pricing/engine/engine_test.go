package engine

import "testing"

func newTestEngine() *Engine {
	return New(DefaultTiers(), 330000, 160000)
}

func TestTierFor_BoundaryCounts(t *testing.T) {
	e := newTestEngine()

	cases := []struct {
		completed int
		wantTier  int
	}{
		{0, 1},
		{1, 2},
		{2, 3},
		{3, 3},
		{100, 3},
	}

	for _, tc := range cases {
		got := e.TierFor(tc.completed)
		if got.Tier != tc.wantTier {
			t.Fatalf("TierFor(%d): expected tier %d, got %d", tc.completed, tc.wantTier, got.Tier)
		}
	}
}

func TestTierFor_UnsortedTableIsSortedAtConstruction(t *testing.T) {
	e := New([]Tier{
		{Tier: 3, MinDossiers: 2, DiscountPercent: 25},
		{Tier: 1, MinDossiers: 0, DiscountPercent: 0},
		{Tier: 2, MinDossiers: 1, DiscountPercent: 15},
	}, 330000, 160000)

	if got := e.TierFor(1); got.Tier != 2 {
		t.Fatalf("expected tier 2 for 1 completed dossier, got %d", got.Tier)
	}
	if got := e.TierFor(5); got.Tier != 3 {
		t.Fatalf("expected tier 3 for 5 completed dossiers, got %d", got.Tier)
	}
}

func TestNewEmptyTableFallsBackToDefaults(t *testing.T) {
	e := New(nil, 330000, 160000)

	if got := e.TierFor(0); got.Tier != 1 {
		t.Fatalf("expected default tier 1, got %d", got.Tier)
	}
	if got := e.TierFor(5); got.Tier != 3 {
		t.Fatalf("expected default tier 3 for 5 completed, got %d", got.Tier)
	}
	if len(e.Tiers()) != 3 {
		t.Fatalf("expected the 3 default tiers, got %d", len(e.Tiers()))
	}
}

func TestNextTier(t *testing.T) {
	e := newTestEngine()

	next, ok := e.NextTier(0)
	if !ok || next.Tier != 2 {
		t.Fatalf("expected next tier 2 for 0 completed, got %v ok=%v", next.Tier, ok)
	}

	next, ok = e.NextTier(1)
	if !ok || next.Tier != 3 {
		t.Fatalf("expected next tier 3 for 1 completed, got %v ok=%v", next.Tier, ok)
	}

	if _, ok = e.NextTier(2); ok {
		t.Fatal("expected no next tier for 2 completed dossiers")
	}

	if got := e.DossiersToNextTier(1); got != 1 {
		t.Fatalf("expected 1 dossier to next tier, got %d", got)
	}
	if got := e.DossiersToNextTier(7); got != 0 {
		t.Fatalf("expected 0 dossiers to next tier at top tier, got %d", got)
	}
}

func TestQuote_TourismByTier(t *testing.T) {
	e := newTestEngine()

	cases := []struct {
		completed   int
		wantPercent int64
		wantAmount  int64
		wantFinal   int64
		wantReason  string
		wantTier    int
	}{
		{0, 0, 0, 160000, "loyalty_tier_1", 1},
		{1, 15, 24000, 136000, "loyalty_tier_2", 2},
		{2, 25, 40000, 120000, "loyalty_tier_3", 3},
		{9, 25, 40000, 120000, "loyalty_tier_3", 3},
	}

	for _, tc := range cases {
		quote, err := e.Quote(DossierTypeTourism, tc.completed)
		if err != nil {
			t.Fatalf("Quote(tourism, %d): unexpected error: %v", tc.completed, err)
		}
		if quote.DiscountPercent != tc.wantPercent {
			t.Fatalf("completed=%d: expected percent %d, got %d", tc.completed, tc.wantPercent, quote.DiscountPercent)
		}
		if quote.DiscountAmount != tc.wantAmount {
			t.Fatalf("completed=%d: expected amount %d, got %d", tc.completed, tc.wantAmount, quote.DiscountAmount)
		}
		if quote.FinalPrice != tc.wantFinal {
			t.Fatalf("completed=%d: expected final %d, got %d", tc.completed, tc.wantFinal, quote.FinalPrice)
		}
		if quote.Reason != tc.wantReason {
			t.Fatalf("completed=%d: expected reason %q, got %q", tc.completed, tc.wantReason, quote.Reason)
		}
		if quote.Tier != tc.wantTier {
			t.Fatalf("completed=%d: expected tier %d, got %d", tc.completed, tc.wantTier, quote.Tier)
		}
	}
}

func TestQuote_CompanyNeverDiscounted(t *testing.T) {
	e := newTestEngine()

	for _, completed := range []int{0, 1, 2, 50} {
		quote, err := e.Quote(DossierTypeCompany, completed)
		if err != nil {
			t.Fatalf("Quote(company, %d): unexpected error: %v", completed, err)
		}
		if quote.DiscountPercent != 0 || quote.DiscountAmount != 0 {
			t.Fatalf("completed=%d: company dossier must not be discounted, got %d%%/%d", completed, quote.DiscountPercent, quote.DiscountAmount)
		}
		if quote.FinalPrice != 330000 {
			t.Fatalf("completed=%d: expected final price 330000, got %d", completed, quote.FinalPrice)
		}
		if quote.Reason != "no_discount_company" {
			t.Fatalf("completed=%d: expected reason no_discount_company, got %q", completed, quote.Reason)
		}
		if quote.Tier != 1 {
			t.Fatalf("completed=%d: expected tier 1, got %d", completed, quote.Tier)
		}
	}
}

func TestQuote_NoRoundingLeakage(t *testing.T) {
	// Odd base prices force rounding; the invariant final+amount == base must
	// hold exactly for every tier.
	e := New(DefaultTiers(), 330001, 159999)

	for _, completed := range []int{0, 1, 2} {
		quote, err := e.Quote(DossierTypeTourism, completed)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if quote.FinalPrice+quote.DiscountAmount != quote.OriginalPrice {
			t.Fatalf("completed=%d: rounding leaked: %d + %d != %d", completed, quote.FinalPrice, quote.DiscountAmount, quote.OriginalPrice)
		}
	}
}

func TestQuote_RoundHalfUp(t *testing.T) {
	// 15% of 10 cents is 1.5 cents; half-up rounding gives 2.
	e := New(DefaultTiers(), 330000, 10)

	quote, err := e.Quote(DossierTypeTourism, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if quote.DiscountAmount != 2 {
		t.Fatalf("expected half-up rounding to 2 cents, got %d", quote.DiscountAmount)
	}
	if quote.FinalPrice != 8 {
		t.Fatalf("expected final price 8, got %d", quote.FinalPrice)
	}
}

func TestQuote_UnknownType(t *testing.T) {
	e := newTestEngine()

	if _, err := e.Quote(DossierType("yacht"), 0); err == nil {
		t.Fatal("expected error for unknown dossier type")
	}
}

func TestQuote_Idempotent(t *testing.T) {
	e := newTestEngine()

	first, err := e.Quote(DossierTypeTourism, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := e.Quote(DossierTypeTourism, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if first != second {
		t.Fatalf("expected identical quotes, got %+v and %+v", first, second)
	}
}
