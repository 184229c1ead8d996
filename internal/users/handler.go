package users

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"resume-studio/internal/shared/server/middleware"
	"resume-studio/internal/shared/server/respond"
)

// Handler serves the admin user-management routes.
type Handler struct {
	Svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterAdminRoutes expects rg to be guarded by RequireRole("admin").
func (h *Handler) RegisterAdminRoutes(rg *gin.RouterGroup) {
	rg.GET("/users", h.list)
	rg.POST("/users", h.create)
	rg.PATCH("/users/:id/role", h.setRole)
	rg.PATCH("/users/:id/status", h.setStatus)
	rg.DELETE("/users/:id", h.delete)
}

func (h *Handler) list(c *gin.Context) {
	limit, offset := respond.Pagination(c)
	items, err := h.Svc.List(c.Request.Context(), limit, offset)
	if err != nil {
		WriteError(c, err)
		return
	}
	respond.List(c, items)
}

func (h *Handler) create(c *gin.Context) {
	var req NewUser
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.InvalidBody(c, err)
		return
	}
	user, err := h.Svc.CreateByAdmin(c.Request.Context(), req)
	if err != nil {
		WriteError(c, err)
		return
	}
	respond.Created(c, user)
}

func (h *Handler) setRole(c *gin.Context) {
	var req struct {
		Role Role `json:"role"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.InvalidBody(c, err)
		return
	}
	user, err := h.Svc.SetRole(c.Request.Context(), middleware.UserIDFromContext(c), c.Param("id"), req.Role)
	if err != nil {
		WriteError(c, err)
		return
	}
	respond.OK(c, user)
}

func (h *Handler) setStatus(c *gin.Context) {
	var req struct {
		Status Status `json:"status"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.InvalidBody(c, err)
		return
	}
	user, err := h.Svc.SetStatus(c.Request.Context(), middleware.UserIDFromContext(c), c.Param("id"), req.Status)
	if err != nil {
		WriteError(c, err)
		return
	}
	respond.OK(c, user)
}

func (h *Handler) delete(c *gin.Context) {
	if err := h.Svc.Delete(c.Request.Context(), middleware.UserIDFromContext(c), c.Param("id")); err != nil {
		WriteError(c, err)
		return
	}
	respond.NoContent(c)
}

// WriteError maps user errors onto the error envelope.
func WriteError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		respond.Error(c, http.StatusNotFound, "not_found", "user not found", nil)
	case errors.Is(err, ErrConflict):
		respond.Error(c, http.StatusConflict, "conflict", "email already registered", nil)
	case errors.Is(err, ErrInvalidInput):
		respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
	case errors.Is(err, ErrInvalidCredentials):
		respond.Error(c, http.StatusUnauthorized, "invalid_credentials", "invalid email or password", nil)
	case errors.Is(err, ErrDisabled):
		respond.Error(c, http.StatusForbidden, "user_disabled", "account disabled", nil)
	case errors.Is(err, ErrForbidden):
		respond.Error(c, http.StatusForbidden, "forbidden", err.Error(), nil)
	default:
		respond.Error(c, http.StatusInternalServerError, "internal_error", "user operation failed", nil)
	}
}
