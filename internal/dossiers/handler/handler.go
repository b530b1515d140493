package handler

import (
	"net/http"

	"github.com/N0urDEV/Formalitys-sub001/internal/dossiers/repository"
	"github.com/N0urDEV/Formalitys-sub001/internal/dossiers/service"
	"github.com/N0urDEV/Formalitys-sub001/internal/dossiers/transport"
	"github.com/N0urDEV/Formalitys-sub001/platform/httpkit"
	"github.com/N0urDEV/Formalitys-sub001/platform/validator"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	msgInvalidRequest   = "invalid request"
	msgValidationFailed = "validation failed"
)

const adminRole = "ADMIN"

// Handler handles HTTP requests for dossiers and their documents
type Handler struct {
	svc *service.Service
	val *validator.Validator
}

// New creates a new dossiers handler
func New(svc *service.Service, val *validator.Validator) *Handler {
	return &Handler{svc: svc, val: val}
}

// RegisterRoutes registers the dossier routes
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/company", h.CreateCompany)
	rg.GET("/company", h.ListCompany)
	rg.GET("/company/:id", h.GetCompany)
	rg.PUT("/company/:id", h.UpdateCompany)

	rg.POST("/tourism", h.CreateTourism)
	rg.GET("/tourism", h.ListTourism)
	rg.GET("/tourism/:id", h.GetTourism)
	rg.PUT("/tourism/:id", h.UpdateTourism)

	rg.PATCH("/:type/:id/step", h.AdvanceStep)
	rg.POST("/:type/:id/cancel", h.Cancel)
	rg.DELETE("/:type/:id", h.Delete)

	rg.POST("/:type/:id/documents/presign", h.PresignUpload)
	rg.GET("/:type/:id/documents", h.ListDocuments)
	rg.GET("/:type/:id/pdf", h.DownloadPDF)
}

// RegisterDocumentRoutes registers document-by-id routes outside the
// /dossiers prefix.
func (h *Handler) RegisterDocumentRoutes(rg *gin.RouterGroup) {
	rg.GET("/:docId/download", h.DownloadDocument)
	rg.DELETE("/:docId", h.DeleteDocument)
}

func dossierType(c *gin.Context) (string, bool) {
	t := c.Param("type")
	if t != "company" && t != "tourism" {
		httpkit.Error(c, http.StatusBadRequest, "unknown dossier type", nil)
		return "", false
	}
	return t, true
}

func pathID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return uuid.Nil, false
	}
	return id, true
}

func (h *Handler) CreateCompany(c *gin.Context) {
	id := httpkit.MustGetIdentity(c)
	if id == nil {
		return
	}

	var req transport.CompanyDossierRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	created, err := h.svc.CreateCompany(c.Request.Context(), repository.CompanyDossier{
		UserID:        id.UserID(),
		ProposedNames: req.ProposedNames,
		LegalForm:     req.LegalForm,
		Activities:    req.Activities,
		CapitalCents:  req.CapitalCents,
		Headquarters:  req.Headquarters,
		Associates:    req.Associates,
	})
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.JSON(c, http.StatusCreated, transport.FromCompany(created))
}

func (h *Handler) ListCompany(c *gin.Context) {
	id := httpkit.MustGetIdentity(c)
	if id == nil {
		return
	}

	list, err := h.svc.ListCompany(c.Request.Context(), id.UserID())
	if httpkit.HandleError(c, err) {
		return
	}

	resp := make([]transport.CompanyDossierResponse, 0, len(list))
	for _, d := range list {
		resp = append(resp, transport.FromCompany(d))
	}
	httpkit.OK(c, gin.H{"dossiers": resp})
}

func (h *Handler) GetCompany(c *gin.Context) {
	id := httpkit.MustGetIdentity(c)
	if id == nil {
		return
	}
	dossierID, ok := pathID(c, "id")
	if !ok {
		return
	}

	d, err := h.svc.GetCompany(c.Request.Context(), dossierID, id.UserID(), id.HasRole(adminRole))
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, transport.FromCompany(d))
}

func (h *Handler) UpdateCompany(c *gin.Context) {
	id := httpkit.MustGetIdentity(c)
	if id == nil {
		return
	}
	dossierID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req transport.CompanyDossierRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	updated, err := h.svc.UpdateCompany(c.Request.Context(), repository.CompanyDossier{
		ID:            dossierID,
		UserID:        id.UserID(),
		ProposedNames: req.ProposedNames,
		LegalForm:     req.LegalForm,
		Activities:    req.Activities,
		CapitalCents:  req.CapitalCents,
		Headquarters:  req.Headquarters,
		Associates:    req.Associates,
	})
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, transport.FromCompany(updated))
}

func (h *Handler) CreateTourism(c *gin.Context) {
	id := httpkit.MustGetIdentity(c)
	if id == nil {
		return
	}

	var req transport.TourismDossierRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	created, err := h.svc.CreateTourism(c.Request.Context(), repository.TourismDossier{
		UserID:          id.UserID(),
		PropertyType:    req.PropertyType,
		PropertyAddress: req.PropertyAddress,
		City:            req.City,
		RoomsCount:      req.RoomsCount,
		GuestCapacity:   req.GuestCapacity,
		OwnerDetails:    req.OwnerDetails,
		PermitNumber:    req.PermitNumber,
	})
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.JSON(c, http.StatusCreated, transport.FromTourism(created))
}

func (h *Handler) ListTourism(c *gin.Context) {
	id := httpkit.MustGetIdentity(c)
	if id == nil {
		return
	}

	list, err := h.svc.ListTourism(c.Request.Context(), id.UserID())
	if httpkit.HandleError(c, err) {
		return
	}

	resp := make([]transport.TourismDossierResponse, 0, len(list))
	for _, d := range list {
		resp = append(resp, transport.FromTourism(d))
	}
	httpkit.OK(c, gin.H{"dossiers": resp})
}

func (h *Handler) GetTourism(c *gin.Context) {
	id := httpkit.MustGetIdentity(c)
	if id == nil {
		return
	}
	dossierID, ok := pathID(c, "id")
	if !ok {
		return
	}

	d, err := h.svc.GetTourism(c.Request.Context(), dossierID, id.UserID(), id.HasRole(adminRole))
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, transport.FromTourism(d))
}

func (h *Handler) UpdateTourism(c *gin.Context) {
	id := httpkit.MustGetIdentity(c)
	if id == nil {
		return
	}
	dossierID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req transport.TourismDossierRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	updated, err := h.svc.UpdateTourism(c.Request.Context(), repository.TourismDossier{
		ID:              dossierID,
		UserID:          id.UserID(),
		PropertyType:    req.PropertyType,
		PropertyAddress: req.PropertyAddress,
		City:            req.City,
		RoomsCount:      req.RoomsCount,
		GuestCapacity:   req.GuestCapacity,
		OwnerDetails:    req.OwnerDetails,
		PermitNumber:    req.PermitNumber,
	})
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, transport.FromTourism(updated))
}

func (h *Handler) AdvanceStep(c *gin.Context) {
	id := httpkit.MustGetIdentity(c)
	if id == nil {
		return
	}
	dossierKind, ok := dossierType(c)
	if !ok {
		return
	}
	dossierID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req transport.AdvanceStepRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	if err := h.svc.AdvanceStep(c.Request.Context(), dossierKind, dossierID, id.UserID(), req.Step); httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, gin.H{"currentStep": req.Step})
}

func (h *Handler) Cancel(c *gin.Context) {
	id := httpkit.MustGetIdentity(c)
	if id == nil {
		return
	}
	dossierKind, ok := dossierType(c)
	if !ok {
		return
	}
	dossierID, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.svc.Cancel(c.Request.Context(), dossierKind, dossierID, id.UserID()); httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, gin.H{"status": repository.StatusCancelled})
}

func (h *Handler) Delete(c *gin.Context) {
	id := httpkit.MustGetIdentity(c)
	if id == nil {
		return
	}
	dossierKind, ok := dossierType(c)
	if !ok {
		return
	}
	dossierID, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.svc.Delete(c.Request.Context(), dossierKind, dossierID, id.UserID()); httpkit.HandleError(c, err) {
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) PresignUpload(c *gin.Context) {
	id := httpkit.MustGetIdentity(c)
	if id == nil {
		return
	}
	dossierKind, ok := dossierType(c)
	if !ok {
		return
	}
	dossierID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req transport.PresignUploadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	presigned, doc, err := h.svc.PresignUpload(c.Request.Context(), dossierKind, dossierID, id.UserID(), req.FileName, req.ContentType, req.SizeBytes)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.JSON(c, http.StatusCreated, gin.H{
		"upload":   presigned,
		"document": transport.FromDocument(doc),
	})
}

func (h *Handler) ListDocuments(c *gin.Context) {
	id := httpkit.MustGetIdentity(c)
	if id == nil {
		return
	}
	dossierKind, ok := dossierType(c)
	if !ok {
		return
	}
	dossierID, ok := pathID(c, "id")
	if !ok {
		return
	}

	docs, err := h.svc.ListDocuments(c.Request.Context(), dossierKind, dossierID, id.UserID(), id.HasRole(adminRole))
	if httpkit.HandleError(c, err) {
		return
	}

	resp := make([]transport.DocumentResponse, 0, len(docs))
	for _, doc := range docs {
		resp = append(resp, transport.FromDocument(doc))
	}
	httpkit.OK(c, gin.H{"documents": resp})
}

func (h *Handler) DownloadPDF(c *gin.Context) {
	id := httpkit.MustGetIdentity(c)
	if id == nil {
		return
	}
	dossierKind, ok := dossierType(c)
	if !ok {
		return
	}
	dossierID, ok := pathID(c, "id")
	if !ok {
		return
	}

	presigned, err := h.svc.PresignPDF(c.Request.Context(), dossierKind, dossierID, id.UserID(), id.HasRole(adminRole))
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, presigned)
}

func (h *Handler) DownloadDocument(c *gin.Context) {
	id := httpkit.MustGetIdentity(c)
	if id == nil {
		return
	}
	docID, ok := pathID(c, "docId")
	if !ok {
		return
	}

	presigned, err := h.svc.PresignDownload(c.Request.Context(), docID, id.UserID(), id.HasRole(adminRole))
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, presigned)
}

func (h *Handler) DeleteDocument(c *gin.Context) {
	id := httpkit.MustGetIdentity(c)
	if id == nil {
		return
	}
	docID, ok := pathID(c, "docId")
	if !ok {
		return
	}

	if err := h.svc.DeleteDocument(c.Request.Context(), docID, id.UserID()); httpkit.HandleError(c, err) {
		return
	}
	c.Status(http.StatusNoContent)
}
