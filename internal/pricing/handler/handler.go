package handler

import (
	"net/http"
	"strconv"

	"github.com/N0urDEV/Formalitys-sub001/internal/pricing/engine"
	"github.com/N0urDEV/Formalitys-sub001/internal/pricing/service"
	"github.com/N0urDEV/Formalitys-sub001/internal/pricing/transport"
	"github.com/N0urDEV/Formalitys-sub001/platform/httpkit"
	"github.com/N0urDEV/Formalitys-sub001/platform/validator"

	"github.com/gin-gonic/gin"
)

const (
	msgInvalidRequest   = "invalid request"
	msgValidationFailed = "validation failed"
)

// Handler handles HTTP requests for pricing and loyalty discounts
type Handler struct {
	svc *service.Service
	val *validator.Validator
}

// New creates a new pricing handler
func New(svc *service.Service, val *validator.Validator) *Handler {
	return &Handler{svc: svc, val: val}
}

// RegisterRoutes registers the authenticated discount routes
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/status", h.GetStatus)
	rg.GET("/history", h.ListHistory)
	rg.POST("/calculate", h.Calculate)
}

// RegisterPublicRoutes registers the public pricing routes
func (h *Handler) RegisterPublicRoutes(rg *gin.RouterGroup) {
	rg.GET("/tiers", h.ListTiers)
}

// GetStatus returns the caller's loyalty standing and current quotes.
func (h *Handler) GetStatus(c *gin.Context) {
	id := httpkit.MustGetIdentity(c)
	if id == nil {
		return
	}

	status, err := h.svc.GetUserDiscountStatus(c.Request.Context(), id.UserID())
	if httpkit.HandleError(c, err) {
		return
	}

	resp := transport.StatusResponse{
		CompletedDossiers:  status.CompletedDossiers,
		CurrentTier:        tierResponse(status.CurrentTier),
		DossiersToNextTier: status.DossiersToNext,
		AvailableDiscounts: transport.AvailableDiscountsResponse{
			Company: transport.QuoteFromEngine(status.CompanyQuote),
			Tourism: transport.QuoteFromEngine(status.TourismQuote),
		},
		Tiers: transport.TiersFromEngine(status.Tiers),
	}
	if status.NextTier != nil {
		next := tierResponse(*status.NextTier)
		resp.NextTier = &next
	}

	httpkit.OK(c, resp)
}

// Calculate quotes one dossier type for the caller.
func (h *Handler) Calculate(c *gin.Context) {
	id := httpkit.MustGetIdentity(c)
	if id == nil {
		return
	}

	var req transport.CalculateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, err.Error())
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	quote, err := h.svc.CalculateDiscount(c.Request.Context(), id.UserID(), engine.DossierType(req.DossierType))
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, transport.QuoteFromEngine(quote))
}

// ListHistory returns the caller's discount audit trail, newest first.
func (h *Handler) ListHistory(c *gin.Context) {
	id := httpkit.MustGetIdentity(c)
	if id == nil {
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))

	entries, err := h.svc.ListHistory(c.Request.Context(), id.UserID(), limit)
	if httpkit.HandleError(c, err) {
		return
	}

	resp := make([]transport.HistoryEntryResponse, 0, len(entries))
	for _, e := range entries {
		resp = append(resp, transport.HistoryEntryResponse{
			ID:              e.ID.String(),
			DossierID:       e.DossierID.String(),
			DossierType:     e.DossierType,
			DiscountPercent: e.DiscountPercent,
			DiscountAmount:  e.DiscountAmount,
			OriginalPrice:   e.OriginalPrice,
			FinalPrice:      e.FinalPrice,
			Reason:          e.Reason,
			CreatedAt:       e.CreatedAt,
		})
	}

	httpkit.OK(c, gin.H{"history": resp})
}

// ListTiers returns the tier table and base prices for the public pricing page.
func (h *Handler) ListTiers(c *gin.Context) {
	company, tourism := h.svc.BasePrices()
	httpkit.OK(c, transport.TiersResponse{
		Tiers:      transport.TiersFromEngine(h.svc.Tiers()),
		BasePrices: transport.BasePricesResponse{Company: company, Tourism: tourism},
	})
}

func tierResponse(t engine.Tier) transport.TierResponse {
	return transport.TierResponse{
		Tier:            t.Tier,
		MinDossiers:     t.MinDossiers,
		DiscountPercent: t.DiscountPercent,
		Description:     t.Description,
	}
}
