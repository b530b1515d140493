package handler

import (
	"net/http"
	"strconv"

	"github.com/N0urDEV/Formalitys-sub001/internal/blog/service"
	"github.com/N0urDEV/Formalitys-sub001/internal/blog/transport"
	"github.com/N0urDEV/Formalitys-sub001/platform/httpkit"
	"github.com/N0urDEV/Formalitys-sub001/platform/validator"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	msgInvalidRequest   = "invalid request"
	msgValidationFailed = "validation failed"
)

// Handler handles HTTP requests for the blog.
type Handler struct {
	svc *service.Service
	val *validator.Validator
}

func New(svc *service.Service, val *validator.Validator) *Handler {
	return &Handler{svc: svc, val: val}
}

// RegisterPublicRoutes registers the public reading routes.
func (h *Handler) RegisterPublicRoutes(rg *gin.RouterGroup) {
	rg.GET("", h.ListPublished)
	rg.GET("/:slug", h.GetBySlug)
}

// RegisterAdminRoutes registers the article management routes.
func (h *Handler) RegisterAdminRoutes(rg *gin.RouterGroup) {
	rg.GET("", h.ListAll)
	rg.POST("", h.Create)
	rg.GET("/:id", h.GetByID)
	rg.PUT("/:id", h.Update)
	rg.DELETE("/:id", h.Delete)
	rg.PUT("/:id/publish", h.SetPublished)
	rg.POST("/covers/presign", h.PresignCover)
}

func (h *Handler) ListPublished(c *gin.Context) {
	h.list(c, false)
}

func (h *Handler) ListAll(c *gin.Context) {
	h.list(c, true)
}

func (h *Handler) list(c *gin.Context, includeDrafts bool) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	posts, total, err := h.svc.List(c.Request.Context(), includeDrafts, limit, offset)
	if httpkit.HandleError(c, err) {
		return
	}

	resp := transport.ListResponse{
		Posts:  make([]transport.PostSummaryResponse, 0, len(posts)),
		Total:  total,
		Limit:  limit,
		Offset: offset,
	}
	for _, p := range posts {
		resp.Posts = append(resp.Posts, transport.SummaryFromPost(p, h.svc.CoverURL(c.Request.Context(), p)))
	}
	httpkit.OK(c, resp)
}

func (h *Handler) GetBySlug(c *gin.Context) {
	post, err := h.svc.GetPublished(c.Request.Context(), c.Param("slug"))
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, transport.FromPost(post, h.svc.CoverURL(c.Request.Context(), post)))
}

func (h *Handler) GetByID(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	post, err := h.svc.GetPost(c.Request.Context(), id)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, transport.FromPost(post, h.svc.CoverURL(c.Request.Context(), post)))
}

func (h *Handler) Create(c *gin.Context) {
	id := httpkit.MustGetIdentity(c)
	if id == nil {
		return
	}

	in, ok := h.bindPost(c)
	if !ok {
		return
	}

	post, err := h.svc.CreatePost(c.Request.Context(), id.UserID(), in)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.JSON(c, http.StatusCreated, transport.FromPost(post, h.svc.CoverURL(c.Request.Context(), post)))
}

func (h *Handler) Update(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	in, ok := h.bindPost(c)
	if !ok {
		return
	}

	post, err := h.svc.UpdatePost(c.Request.Context(), id, in)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, transport.FromPost(post, h.svc.CoverURL(c.Request.Context(), post)))
}

func (h *Handler) SetPublished(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req transport.PublishRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, err.Error())
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	post, err := h.svc.SetPublished(c.Request.Context(), id, *req.Published)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, transport.FromPost(post, h.svc.CoverURL(c.Request.Context(), post)))
}

func (h *Handler) Delete(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if httpkit.HandleError(c, h.svc.DeletePost(c.Request.Context(), id)) {
		return
	}
	httpkit.OK(c, gin.H{"deleted": true})
}

func (h *Handler) PresignCover(c *gin.Context) {
	var req transport.PresignCoverRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, err.Error())
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	url, err := h.svc.PresignCoverUpload(c.Request.Context(), req.FileName, req.ContentType, req.SizeBytes)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, url)
}

func (h *Handler) bindPost(c *gin.Context) (service.PostInput, bool) {
	var req transport.PostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, err.Error())
		return service.PostInput{}, false
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return service.PostInput{}, false
	}
	return service.PostInput{
		Title:         req.Title,
		Slug:          req.Slug,
		Excerpt:       req.Excerpt,
		Content:       req.Content,
		CoverImageKey: req.CoverImageKey,
	}, true
}

func pathID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return uuid.Nil, false
	}
	return id, true
}
