// Package transport defines the pricing module's request and response shapes.
package transport

import (
	"time"

	"github.com/N0urDEV/Formalitys-sub001/internal/pricing/engine"
)

// CalculateRequest asks for a quote for one dossier type.
type CalculateRequest struct {
	DossierType string `json:"dossierType" validate:"required,oneof=company tourism"`
}

// QuoteResponse is the wire form of a quote.
type QuoteResponse struct {
	DossierType     string `json:"dossierType"`
	OriginalPrice   int64  `json:"originalPrice"`
	DiscountPercent int64  `json:"discountPercentage"`
	DiscountAmount  int64  `json:"discountAmount"`
	FinalPrice      int64  `json:"finalPrice"`
	Reason          string `json:"reason"`
	Tier            int    `json:"tier"`
}

// QuoteFromEngine converts an engine quote to its wire form.
func QuoteFromEngine(q engine.Quote) QuoteResponse {
	return QuoteResponse{
		DossierType:     string(q.DossierType),
		OriginalPrice:   q.OriginalPrice,
		DiscountPercent: q.DiscountPercent,
		DiscountAmount:  q.DiscountAmount,
		FinalPrice:      q.FinalPrice,
		Reason:          q.Reason,
		Tier:            q.Tier,
	}
}

// TierResponse is the wire form of one loyalty tier.
type TierResponse struct {
	Tier            int    `json:"tier"`
	MinDossiers     int    `json:"minDossiers"`
	DiscountPercent int64  `json:"discountPercentage"`
	Description     string `json:"description"`
}

// TiersFromEngine converts the tier table to its wire form.
func TiersFromEngine(tiers []engine.Tier) []TierResponse {
	out := make([]TierResponse, 0, len(tiers))
	for _, t := range tiers {
		out = append(out, TierResponse{
			Tier:            t.Tier,
			MinDossiers:     t.MinDossiers,
			DiscountPercent: t.DiscountPercent,
			Description:     t.Description,
		})
	}
	return out
}

// BasePricesResponse lists the undiscounted prices in cents per dossier type.
type BasePricesResponse struct {
	Company int64 `json:"company"`
	Tourism int64 `json:"tourism"`
}

// TiersResponse is the public pricing page payload.
type TiersResponse struct {
	Tiers      []TierResponse     `json:"tiers"`
	BasePrices BasePricesResponse `json:"basePrices"`
}

// AvailableDiscountsResponse holds the caller's current quote per dossier type.
type AvailableDiscountsResponse struct {
	Company QuoteResponse `json:"company"`
	Tourism QuoteResponse `json:"tourism"`
}

// StatusResponse is the loyalty dashboard payload.
type StatusResponse struct {
	CompletedDossiers  int                        `json:"completedDossiers"`
	CurrentTier        TierResponse               `json:"currentTier"`
	NextTier           *TierResponse              `json:"nextTier,omitempty"`
	DossiersToNextTier int                        `json:"dossiersToNextTier"`
	AvailableDiscounts AvailableDiscountsResponse `json:"availableDiscounts"`
	Tiers              []TierResponse             `json:"tiers"`
}

// HistoryEntryResponse is one discount audit row.
type HistoryEntryResponse struct {
	ID              string    `json:"id"`
	DossierID       string    `json:"dossierId"`
	DossierType     string    `json:"dossierType"`
	DiscountPercent int64     `json:"discountPercentage"`
	DiscountAmount  int64     `json:"discountAmount"`
	OriginalPrice   int64     `json:"originalPrice"`
	FinalPrice      int64     `json:"finalPrice"`
	Reason          string    `json:"reason"`
	CreatedAt       time.Time `json:"createdAt"`
}
