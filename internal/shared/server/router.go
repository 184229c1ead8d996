package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"resume-studio/internal/shared/config"
	"resume-studio/internal/shared/metrics"
	"resume-studio/internal/shared/server/middleware"
	"resume-studio/internal/shared/server/respond"
)

// RouteRegistrar attaches routes for authenticated users.
type RouteRegistrar interface {
	RegisterRoutes(rg *gin.RouterGroup)
}

// AdminRegistrar attaches routes that require the admin role.
type AdminRegistrar interface {
	RegisterAdminRoutes(rg *gin.RouterGroup)
}

// RouterDeps carries handler dependencies for router construction.
type RouterDeps struct {
	Config   config.Config
	Verifier middleware.TokenVerifier
	Limiter  *middleware.RateLimiter

	Routes      []RouteRegistrar
	AdminRoutes []AdminRegistrar
}

// NewRouter constructs the Gin engine with middleware and routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	if deps.Config.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()

	r.Use(
		middleware.RequestID(),
		middleware.Logging(),
		middleware.Recovery(),
		middleware.CORS(deps.Config.CORSAllowOrigin),
	)
	r.GET("/metrics", metrics.Handler())

	api := r.Group("/api/v1")
	api.GET("/health", func(c *gin.Context) {
		respond.JSON(c, http.StatusOK, gin.H{"ok": true})
	})

	if deps.Verifier != nil {
		api.Use(middleware.Auth(deps.Verifier))
	}
	api.Use(middleware.RateLimit(deps.Limiter, middleware.DefaultPolicies(deps.Config.RateLimitPerMinute)))

	for _, h := range deps.Routes {
		if h != nil {
			h.RegisterRoutes(api)
		}
	}

	admin := api.Group("/admin", middleware.RequireRole("admin"))
	for _, h := range deps.AdminRoutes {
		if h != nil {
			h.RegisterAdminRoutes(admin)
		}
	}

	return r
}

// Addr normalizes the listen address.
func Addr(port string) string {
	if port == "" {
		return ":8080"
	}
	if port[0] == ':' {
		return port
	}
	return ":" + port
}
