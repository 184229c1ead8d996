package templates

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"resume-studio/internal/shared/server/respond"
)

type Handler struct {
	Svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/templates", h.listActive)
}

// RegisterAdminRoutes expects rg to be guarded by RequireRole("admin").
func (h *Handler) RegisterAdminRoutes(rg *gin.RouterGroup) {
	rg.GET("/templates", h.listAll)
	rg.POST("/templates", h.create)
	rg.PATCH("/templates/:id/status", h.setStatus)
	rg.DELETE("/templates/:id", h.delete)
}

func (h *Handler) listActive(c *gin.Context) {
	items, err := h.Svc.ListActive(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	respond.List(c, items)
}

func (h *Handler) listAll(c *gin.Context) {
	items, err := h.Svc.ListAll(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	respond.List(c, items)
}

func (h *Handler) create(c *gin.Context) {
	var req NewTemplate
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.InvalidBody(c, err)
		return
	}
	t, err := h.Svc.Create(c.Request.Context(), req)
	if err != nil {
		writeError(c, err)
		return
	}
	respond.Created(c, t)
}

func (h *Handler) setStatus(c *gin.Context) {
	var req struct {
		Status Status `json:"status"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.InvalidBody(c, err)
		return
	}
	t, err := h.Svc.SetStatus(c.Request.Context(), c.Param("id"), req.Status)
	if err != nil {
		writeError(c, err)
		return
	}
	respond.OK(c, t)
}

func (h *Handler) delete(c *gin.Context) {
	if err := h.Svc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		writeError(c, err)
		return
	}
	respond.NoContent(c)
}

func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		respond.Error(c, http.StatusNotFound, "not_found", "template not found", nil)
	case errors.Is(err, ErrConflict):
		respond.Error(c, http.StatusConflict, "conflict", "template id already exists", nil)
	case errors.Is(err, ErrInvalidInput):
		respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
	default:
		respond.Error(c, http.StatusInternalServerError, "internal_error", "template operation failed", nil)
	}
}
