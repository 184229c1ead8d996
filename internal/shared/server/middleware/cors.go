package middleware

import (
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// CORS lets the editor UI call the API from its own origin.
// "*" opens the API to any origin without credentials; "https://*.example.com" entries match subdomains.
func CORS(allowedOrigins []string) gin.HandlerFunc {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Request-Id"},
		ExposeHeaders: []string{"X-Request-Id", "Content-Disposition", "Retry-After", "X-RateLimit-Remaining"},
		MaxAge:        10 * time.Minute,
	}
	for _, o := range allowedOrigins {
		o = strings.TrimRight(strings.TrimSpace(o), "/")
		switch {
		case o == "":
		case o == "*":
			cfg.AllowAllOrigins = true
		default:
			if strings.Contains(o, "*") {
				cfg.AllowWildcard = true
			}
			cfg.AllowOrigins = append(cfg.AllowOrigins, o)
		}
	}
	if cfg.AllowAllOrigins {
		cfg.AllowOrigins = nil
		cfg.AllowWildcard = false
	} else {
		if len(cfg.AllowOrigins) == 0 {
			cfg.AllowOrigins = []string{"http://localhost:5173"}
		}
		cfg.AllowCredentials = true
	}
	return cors.New(cfg)
}
