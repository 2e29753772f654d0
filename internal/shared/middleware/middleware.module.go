package middleware

import (
	authMiddleware "gestion-hospitaliere/internal/shared/middleware/auth"
	"gestion-hospitaliere/internal/shared/middleware/core"
	"gestion-hospitaliere/internal/shared/middleware/observability"
	"gestion-hospitaliere/internal/shared/middleware/security"

	"go.uber.org/fx"
)

// Module regroupe tous les providers des middlewares
var Module = fx.Options(
	fx.Provide(core.RequestIDMiddleware),
	fx.Provide(security.CORSMiddleware),
	fx.Provide(security.NewRateLimiter),
	fx.Provide(security.RateLimitMiddleware),
	fx.Provide(observability.MetricsMiddleware),

	authMiddleware.AuthMiddlewareModule,
)
