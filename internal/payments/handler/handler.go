package handler

import (
	"net/http"
	"strconv"

	"github.com/N0urDEV/Formalitys-sub001/internal/payments/service"
	"github.com/N0urDEV/Formalitys-sub001/internal/payments/transport"
	"github.com/N0urDEV/Formalitys-sub001/platform/httpkit"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const stripeSignatureHeader = "Stripe-Signature"

// Handler handles HTTP requests for dossier payments.
type Handler struct {
	svc *service.Service
}

func New(svc *service.Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterRoutes registers the authenticated payment routes.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/dossiers/:type/:id/intent", h.CreateIntent)
	rg.GET("", h.ListMine)
}

// RegisterWebhookRoutes registers the public Stripe webhook endpoint.
func (h *Handler) RegisterWebhookRoutes(rg *gin.RouterGroup) {
	rg.POST("/webhook", h.Webhook)
}

// CreateIntent prices a dossier and opens a Stripe PaymentIntent for it.
func (h *Handler) CreateIntent(c *gin.Context) {
	id := httpkit.MustGetIdentity(c)
	if id == nil {
		return
	}

	dossierKind := c.Param("type")
	if dossierKind != "company" && dossierKind != "tourism" {
		httpkit.Error(c, http.StatusBadRequest, "unknown dossier type", nil)
		return
	}
	dossierID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid dossier id", nil)
		return
	}

	intent, err := h.svc.CreateIntent(c.Request.Context(), id.UserID(), dossierID, dossierKind)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, transport.IntentFromService(intent.Payment, intent.ClientSecret, intent.Quote))
}

// ListMine returns the caller's payment history, newest first.
func (h *Handler) ListMine(c *gin.Context) {
	id := httpkit.MustGetIdentity(c)
	if id == nil {
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))

	payments, err := h.svc.ListMine(c.Request.Context(), id.UserID(), limit)
	if httpkit.HandleError(c, err) {
		return
	}

	resp := make([]transport.PaymentResponse, 0, len(payments))
	for _, p := range payments {
		resp = append(resp, transport.FromPayment(p))
	}
	httpkit.OK(c, gin.H{"payments": resp})
}

// Webhook receives Stripe events. The raw body is needed intact for
// signature verification, so no JSON binding happens here.
func (h *Handler) Webhook(c *gin.Context) {
	payload, err := c.GetRawData()
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, "unreadable payload", nil)
		return
	}

	if err := h.svc.HandleWebhook(c.Request.Context(), payload, c.GetHeader(stripeSignatureHeader)); err != nil {
		httpkit.HandleError(c, err)
		return
	}

	httpkit.OK(c, gin.H{"received": true})
}
