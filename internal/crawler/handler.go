package crawler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"resume-studio/internal/shared/server/middleware"
	"resume-studio/internal/shared/server/respond"
)

type Handler struct {
	Svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterAdminRoutes expects rg to be guarded by RequireRole("admin").
func (h *Handler) RegisterAdminRoutes(rg *gin.RouterGroup) {
	rg.GET("/crawler/tasks", h.list)
	rg.POST("/crawler/tasks", h.create)
	rg.PATCH("/crawler/tasks/:id/status", h.setStatus)
	rg.DELETE("/crawler/tasks/:id", h.delete)
	rg.POST("/crawler/tasks/:id/run", h.run)
}

func (h *Handler) list(c *gin.Context) {
	items, err := h.Svc.List(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	respond.List(c, items)
}

func (h *Handler) create(c *gin.Context) {
	var req NewTask
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.InvalidBody(c, err)
		return
	}
	task, err := h.Svc.Create(c.Request.Context(), req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.Set("taskId", task.ID)
	respond.Created(c, task)
}

func (h *Handler) setStatus(c *gin.Context) {
	var req struct {
		Status Status `json:"status"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.InvalidBody(c, err)
		return
	}
	c.Set("taskId", c.Param("id"))
	task, err := h.Svc.SetStatus(c.Request.Context(), c.Param("id"), req.Status)
	if err != nil {
		writeError(c, err)
		return
	}
	respond.OK(c, task)
}

func (h *Handler) delete(c *gin.Context) {
	c.Set("taskId", c.Param("id"))
	if err := h.Svc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		writeError(c, err)
		return
	}
	respond.NoContent(c)
}

func (h *Handler) run(c *gin.Context) {
	c.Set("taskId", c.Param("id"))
	task, err := h.Svc.RunNow(c.Request.Context(), c.Param("id"), middleware.RequestIDFromContext(c))
	if err != nil {
		writeError(c, err)
		return
	}
	respond.Accepted(c, gin.H{"taskId": task.ID, "status": "queued"})
}

func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		respond.Error(c, http.StatusNotFound, "not_found", "crawler task not found", nil)
	case errors.Is(err, ErrInvalidInput):
		respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
	case errors.Is(err, ErrQueueMissing):
		respond.Error(c, http.StatusServiceUnavailable, "queue_unavailable", "crawler queue not configured", nil)
	default:
		respond.Error(c, http.StatusInternalServerError, "internal_error", "crawler operation failed", nil)
	}
}
