package security

import (
	"regexp"
	"time"

	"gestion-hospitaliere/internal/app/config"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// CORSHandler type spécifique pour Fx
type CORSHandler gin.HandlerFunc

// localOrigin frontends de développement
var localOrigin = regexp.MustCompile(`^https?://(localhost|127\.0\.0\.1)(:\d+)?$`)

// CORSMiddleware origines configurées, plus localhost en développement
func CORSMiddleware(appConfig *config.Config) CORSHandler {
	corsConfig := appConfig.GetCORS()
	allowLocal := appConfig.IsDevelopment()

	return CORSHandler(cors.New(cors.Config{
		AllowOriginFunc: func(origin string) bool {
			if allowLocal && localOrigin.MatchString(origin) {
				return true
			}
			for _, allowedOrigin := range corsConfig.AllowedOrigins {
				if origin == allowedOrigin {
					return true
				}
			}
			return false
		},

		AllowMethods: corsConfig.AllowedMethods,

		AllowHeaders: append(corsConfig.AllowedHeaders, "X-Request-Id"),

		ExposeHeaders: []string{
			"Content-Length",
			"Content-Disposition",
			"X-Request-Id",
			"X-RateLimit-Limit",
			"X-RateLimit-Remaining",
		},

		AllowCredentials: corsConfig.AllowCredentials,

		MaxAge: time.Duration(corsConfig.MaxAge) * time.Second,
	}))
}
