package app

import (
	"gestion-hospitaliere/internal/app/config"
	"gestion-hospitaliere/internal/infrastructure/logger"
	"gestion-hospitaliere/internal/shared/apperror"
	"gestion-hospitaliere/internal/shared/middleware/core"
	"gestion-hospitaliere/internal/shared/middleware/observability"
	"gestion-hospitaliere/internal/shared/middleware/security"
	"gestion-hospitaliere/internal/shared/utils"

	"github.com/gin-gonic/gin"
)

// NewRouter moteur gin avec les middlewares globaux; chaque module enregistre ses routes
func NewRouter(
	cfg *config.Config,
	loggerMiddleware *logger.LoggerMiddleware,
	requestID core.RequestIDHandler,
	corsHandler security.CORSHandler,
	metricsHandler observability.MetricsHandler,
	rateLimit security.RateLimitHandler,
) (*gin.Engine, error) {
	configureGinMode(cfg.Environment)

	if err := utils.RegisterValidators(); err != nil {
		return nil, err
	}

	r := gin.New()
	r.Use(
		gin.HandlerFunc(requestID),
		loggerMiddleware.GinLogger(),
		loggerMiddleware.GinRecovery(),
		gin.HandlerFunc(corsHandler),
		gin.HandlerFunc(metricsHandler),
		gin.HandlerFunc(rateLimit),
	)

	r.NoRoute(func(c *gin.Context) {
		utils.RespondError(c, apperror.NotFound("Route non trouvée"))
	})
	return r, nil
}

func configureGinMode(environment string) {
	switch environment {
	case "docker":
		gin.SetMode(gin.ReleaseMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.DebugMode)
	}
}
