package ai

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"resume-studio/internal/shared/server/respond"
	"resume-studio/resume/model"
)

type Handler struct {
	Svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/ai/optimize", h.optimize)
	rg.POST("/jobs/search/ai", h.searchJobs)
}

type optimizeRequest struct {
	Text     string `json:"text"`
	Kind     string `json:"kind"`
	Language string `json:"language"`
}

func (h *Handler) optimize(c *gin.Context) {
	var req optimizeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.InvalidBody(c, err)
		return
	}
	kind, ok := model.ParseOptimizeKind(req.Kind)
	if !ok {
		respond.Error(c, http.StatusBadRequest, "validation_error", "kind must be summary, bullet or skills", gin.H{"kind": req.Kind})
		return
	}
	out, err := h.Svc.Optimize(c.Request.Context(), req.Text, kind, req.Language)
	if err != nil {
		WriteError(c, err)
		return
	}
	respond.OK(c, gin.H{"text": out})
}

func (h *Handler) searchJobs(c *gin.Context) {
	var req struct {
		Query string `json:"query"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.InvalidBody(c, err)
		return
	}
	items, err := h.Svc.SearchJobs(c.Request.Context(), req.Query)
	if err != nil {
		WriteError(c, err)
		return
	}
	respond.ListFrom(c, "ai", items)
}

// WriteError maps AI errors onto the error envelope.
func WriteError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrInvalidInput):
		respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
	case errors.Is(err, ErrBadLLMOutput):
		respond.Error(c, http.StatusBadGateway, "llm_bad_output", "AI returned an unusable response", nil)
	case errors.Is(err, ErrLLMUnavailable):
		respond.Error(c, http.StatusServiceUnavailable, "llm_unavailable", "AI service unavailable", nil)
	default:
		respond.Error(c, http.StatusInternalServerError, "internal_error", "AI request failed", nil)
	}
}
