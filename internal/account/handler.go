package account

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"resume-studio/internal/shared/server/middleware"
	"resume-studio/internal/shared/server/respond"
	"resume-studio/internal/users"
)

type Handler struct {
	Svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/auth/register", h.register)
	rg.POST("/auth/login", h.login)
	rg.GET("/me", h.me)
}

func (h *Handler) register(c *gin.Context) {
	var req users.NewUser
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.InvalidBody(c, err)
		return
	}
	session, err := h.Svc.Register(c.Request.Context(), req)
	if err != nil {
		users.WriteError(c, err)
		return
	}
	respond.JSON(c, http.StatusCreated, session)
}

func (h *Handler) login(c *gin.Context) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.Email == "" || req.Password == "" {
		respond.Error(c, http.StatusBadRequest, "validation_error", "email and password are required", nil)
		return
	}
	session, err := h.Svc.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		users.WriteError(c, err)
		return
	}
	respond.OK(c, session)
}

func (h *Handler) me(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	if userID == "" {
		respond.Error(c, http.StatusUnauthorized, "unauthorized", "missing or invalid token", nil)
		return
	}
	user, err := h.Svc.Me(c.Request.Context(), userID)
	if err != nil {
		users.WriteError(c, err)
		return
	}
	respond.OK(c, user)
}
