package matching

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"resume-studio/internal/shared/server/middleware"
	"resume-studio/internal/shared/server/respond"
)

type Handler struct {
	Svc *Service
	// WriteScorerError maps scorer failures; nil falls back to a 502.
	WriteScorerError func(c *gin.Context, err error)
}

func NewHandler(svc *Service, scorerErrors func(c *gin.Context, err error)) *Handler {
	return &Handler{Svc: svc, WriteScorerError: scorerErrors}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/match", h.match)
	rg.GET("/match/reports", h.reports)
}

func (h *Handler) match(c *gin.Context) {
	var req Request
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.InvalidBody(c, err)
		return
	}
	if req.ResumeID != "" {
		c.Set("resumeId", req.ResumeID)
	}
	res, err := h.Svc.Match(c.Request.Context(), middleware.UserIDFromContext(c), req)
	if err != nil {
		if errors.Is(err, ErrInvalidInput) {
			respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
			return
		}
		if h.WriteScorerError != nil {
			h.WriteScorerError(c, err)
			return
		}
		respond.Error(c, http.StatusBadGateway, "match_failed", "match scoring failed", nil)
		return
	}
	respond.OK(c, res)
}

func (h *Handler) reports(c *gin.Context) {
	limit, offset := respond.Pagination(c)
	items, err := h.Svc.Reports(c.Request.Context(), middleware.UserIDFromContext(c), limit, offset)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to list reports", nil)
		return
	}
	respond.List(c, items)
}
