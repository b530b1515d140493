package handler

import (
	"net/http"
	"strconv"

	"github.com/N0urDEV/Formalitys-sub001/internal/admin/repository"
	"github.com/N0urDEV/Formalitys-sub001/internal/admin/service"
	"github.com/N0urDEV/Formalitys-sub001/internal/admin/transport"
	"github.com/N0urDEV/Formalitys-sub001/platform/httpkit"
	"github.com/N0urDEV/Formalitys-sub001/platform/validator"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	msgInvalidRequest   = "invalid request"
	msgValidationFailed = "validation failed"
)

// Handler handles HTTP requests for the admin back-office.
type Handler struct {
	svc *service.Service
	val *validator.Validator
}

func New(svc *service.Service, val *validator.Validator) *Handler {
	return &Handler{svc: svc, val: val}
}

// RegisterRoutes registers the back-office routes.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/dashboard", h.Dashboard)
	rg.GET("/users", h.ListUsers)
	rg.GET("/dossiers", h.ListDossiers)
	rg.PUT("/dossiers/:type/:id/status", h.OverrideStatus)
}

func (h *Handler) Dashboard(c *gin.Context) {
	stats, err := h.svc.DashboardStats(c.Request.Context())
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, transport.FromStats(stats))
}

func (h *Handler) ListUsers(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	users, total, err := h.svc.ListUsers(c.Request.Context(), limit, offset)
	if httpkit.HandleError(c, err) {
		return
	}

	resp := make([]transport.UserResponse, 0, len(users))
	for _, u := range users {
		resp = append(resp, transport.FromUserRow(u))
	}
	httpkit.OK(c, gin.H{"users": resp, "total": total, "limit": limit, "offset": offset})
}

func (h *Handler) ListDossiers(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	filter := repository.DossierFilter{
		Status:      c.Query("status"),
		DossierType: c.Query("type"),
		Limit:       limit,
		Offset:      offset,
	}
	if raw := c.Query("userId"); raw != "" {
		userID, err := uuid.Parse(raw)
		if err != nil {
			httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, "invalid userId")
			return
		}
		filter.UserID = &userID
	}

	dossiers, total, err := h.svc.ListDossiers(c.Request.Context(), filter)
	if httpkit.HandleError(c, err) {
		return
	}

	resp := make([]transport.DossierResponse, 0, len(dossiers))
	for _, d := range dossiers {
		resp = append(resp, transport.FromDossierRow(d))
	}
	httpkit.OK(c, gin.H{"dossiers": resp, "total": total, "limit": limit, "offset": offset})
}

func (h *Handler) OverrideStatus(c *gin.Context) {
	dossierKind := c.Param("type")
	if dossierKind != "company" && dossierKind != "tourism" {
		httpkit.Error(c, http.StatusBadRequest, "unknown dossier type", nil)
		return
	}
	dossierID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}

	var req transport.StatusOverrideRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, err.Error())
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	if httpkit.HandleError(c, h.svc.OverrideDossierStatus(c.Request.Context(), dossierKind, dossierID, req.Status)) {
		return
	}
	httpkit.OK(c, gin.H{"status": req.Status})
}
