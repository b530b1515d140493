// Package engine implements the loyalty pricing computation: tier lookup over
// a configured tier table and discount quotes for both dossier kinds.
// It performs no I/O; callers supply the completed-dossier count.
package engine

import (
	"fmt"
	"sort"

	"github.com/N0urDEV/Formalitys-sub001/platform/apperr"
)

// DossierType identifies the kind of administrative dossier being priced.
type DossierType string

const (
	DossierTypeCompany DossierType = "company"
	DossierTypeTourism DossierType = "tourism"
)

// Valid reports whether the dossier type is one of the supported kinds.
func (t DossierType) Valid() bool {
	return t == DossierTypeCompany || t == DossierTypeTourism
}

// Tier is one row of the loyalty tier table.
type Tier struct {
	Tier            int    `json:"tier"`
	MinDossiers     int    `json:"minDossiers"`
	DiscountPercent int64  `json:"discountPercentage"`
	Description     string `json:"description"`
}

// Quote is the result of a discount calculation. All amounts are in minor
// currency units (cents).
type Quote struct {
	DossierType     DossierType `json:"dossierType"`
	OriginalPrice   int64       `json:"originalPrice"`
	DiscountPercent int64       `json:"discountPercentage"`
	DiscountAmount  int64       `json:"discountAmount"`
	FinalPrice      int64       `json:"finalPrice"`
	Reason          string      `json:"reason"`
	Tier            int         `json:"tier"`
}

// DefaultTiers returns the production loyalty tier table.
func DefaultTiers() []Tier {
	return []Tier{
		{Tier: 1, MinDossiers: 0, DiscountPercent: 0, Description: "first dossier"},
		{Tier: 2, MinDossiers: 1, DiscountPercent: 15, Description: "second dossier"},
		{Tier: 3, MinDossiers: 2, DiscountPercent: 25, Description: "third dossier and beyond"},
	}
}

// Engine computes discount quotes from an immutable tier table and base prices.
// Construct one at startup and share it; it is safe for concurrent use.
type Engine struct {
	tiers        []Tier
	companyPrice int64
	tourismPrice int64
}

// New creates an Engine with the given tier table and base prices in cents.
// The table is copied and kept sorted ascending by MinDossiers; an empty
// table falls back to the defaults so lookups always have a tier to return.
func New(tiers []Tier, companyPriceCents, tourismPriceCents int64) *Engine {
	if len(tiers) == 0 {
		tiers = DefaultTiers()
	}
	sorted := make([]Tier, len(tiers))
	copy(sorted, tiers)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].MinDossiers < sorted[j].MinDossiers })

	return &Engine{
		tiers:        sorted,
		companyPrice: companyPriceCents,
		tourismPrice: tourismPriceCents,
	}
}

// Tiers returns a copy of the tier table, ascending by MinDossiers.
func (e *Engine) Tiers() []Tier {
	out := make([]Tier, len(e.tiers))
	copy(out, e.tiers)
	return out
}

// BasePrices returns the configured base prices in cents for both dossier types.
func (e *Engine) BasePrices() (company, tourism int64) {
	return e.companyPrice, e.tourismPrice
}

// BasePrice returns the configured base price in cents for a dossier type.
func (e *Engine) BasePrice(dossierType DossierType) (int64, error) {
	switch dossierType {
	case DossierTypeCompany:
		return e.companyPrice, nil
	case DossierTypeTourism:
		return e.tourismPrice, nil
	default:
		return 0, apperr.BadRequest(fmt.Sprintf("unknown dossier type %q", dossierType))
	}
}

// TierFor returns the tier with the largest MinDossiers not exceeding the
// completed count. Falls back to the first tier, which has MinDossiers 0.
func (e *Engine) TierFor(completedDossiers int) Tier {
	current := e.tiers[0]
	for _, tier := range e.tiers {
		if tier.MinDossiers <= completedDossiers {
			current = tier
		}
	}
	return current
}

// NextTier returns the first tier requiring more completed dossiers than the
// given count, and false if the user is already at the top tier.
func (e *Engine) NextTier(completedDossiers int) (Tier, bool) {
	for _, tier := range e.tiers {
		if tier.MinDossiers > completedDossiers {
			return tier, true
		}
	}
	return Tier{}, false
}

// DossiersToNextTier returns how many more completed dossiers are needed to
// reach the next tier, or 0 when already at the top tier.
func (e *Engine) DossiersToNextTier(completedDossiers int) int {
	next, ok := e.NextTier(completedDossiers)
	if !ok {
		return 0
	}
	return next.MinDossiers - completedDossiers
}

// Quote computes the discount quote for a dossier type given the user's
// completed-dossier count. Company dossiers never receive a discount;
// that is a business rule, not a missing feature.
func (e *Engine) Quote(dossierType DossierType, completedDossiers int) (Quote, error) {
	basePrice, err := e.BasePrice(dossierType)
	if err != nil {
		return Quote{}, err
	}

	if dossierType == DossierTypeCompany {
		return Quote{
			DossierType:     dossierType,
			OriginalPrice:   basePrice,
			DiscountPercent: 0,
			DiscountAmount:  0,
			FinalPrice:      basePrice,
			Reason:          "no_discount_company",
			Tier:            1,
		}, nil
	}

	tier := e.TierFor(completedDossiers)
	amount := roundHalfUpPercent(basePrice, tier.DiscountPercent)

	return Quote{
		DossierType:     dossierType,
		OriginalPrice:   basePrice,
		DiscountPercent: tier.DiscountPercent,
		DiscountAmount:  amount,
		FinalPrice:      basePrice - amount,
		Reason:          fmt.Sprintf("loyalty_tier_%d", tier.Tier),
		Tier:            tier.Tier,
	}, nil
}

// roundHalfUpPercent computes round(base*percent/100) on integer cents with
// half-up rounding, avoiding float arithmetic entirely.
func roundHalfUpPercent(baseCents, percent int64) int64 {
	return (baseCents*percent + 50) / 100
}
