package jobs

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
	rg.GET("/jobs/search", h.search)
}

// RegisterAdminRoutes expects rg to be guarded by RequireRole("admin").
func (h *Handler) RegisterAdminRoutes(rg *gin.RouterGroup) {
	rg.GET("/jobs", h.list)
	rg.DELETE("/jobs/:id", h.delete)
}

func (h *Handler) search(c *gin.Context) {
	items, err := h.Svc.Search(c.Request.Context(), c.Query("q"))
	if err != nil {
		writeError(c, err)
		return
	}
	respond.ListFrom(c, "db", items)
}

func (h *Handler) list(c *gin.Context) {
	limit, offset := respond.Pagination(c)
	items, err := h.Svc.List(c.Request.Context(), limit, offset)
	if err != nil {
		writeError(c, err)
		return
	}
	respond.List(c, items)
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
		respond.Error(c, http.StatusNotFound, "not_found", "job posting not found", nil)
	case errors.Is(err, ErrInvalidInput):
		respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
	default:
		respond.Error(c, http.StatusInternalServerError, "internal_error", "job operation failed", nil)
	}
}
