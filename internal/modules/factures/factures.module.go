package factures

import (
	"gestion-hospitaliere/internal/modules/factures/controllers"
	"gestion-hospitaliere/internal/modules/factures/queries"
	"gestion-hospitaliere/internal/modules/factures/services"
	authMiddleware "gestion-hospitaliere/internal/shared/middleware/auth"
	"gestion-hospitaliere/internal/shared/policy"

	"github.com/gin-gonic/gin"
	"go.uber.org/fx"
)

var Module = fx.Options(
	fx.Provide(fx.Annotate(queries.NewFactureRepository, fx.As(new(services.FactureRepository)))),
	fx.Provide(services.NewFactureService),
	fx.Provide(controllers.NewFactureController),
	fx.Invoke(RegisterFactureRoutes),
)

func RegisterFactureRoutes(
	r *gin.Engine,
	ctrl *controllers.FactureController,
	authStack *authMiddleware.AuthMiddlewareStack,
) {
	api := r.Group("/api/v1/factures")
	api.Use(authMiddleware.RequireCapability(authStack, policy.FacturesManage)...)
	{
		api.GET("", ctrl.List)
		api.GET("/:id", ctrl.Get)
		api.POST("", ctrl.Create)
		api.PUT("/:id", ctrl.Update)
		api.DELETE("/:id", ctrl.Delete)
	}
}
