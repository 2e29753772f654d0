package services_hospitaliers

import (
	"gestion-hospitaliere/internal/modules/services-hospitaliers/controllers"
	"gestion-hospitaliere/internal/modules/services-hospitaliers/queries"
	"gestion-hospitaliere/internal/modules/services-hospitaliers/services"
	authMiddleware "gestion-hospitaliere/internal/shared/middleware/auth"
	"gestion-hospitaliere/internal/shared/policy"

	"github.com/gin-gonic/gin"
	"go.uber.org/fx"
)

var Module = fx.Options(
	fx.Provide(fx.Annotate(queries.NewServiceRepository, fx.As(new(services.ServiceRepository)))),
	fx.Provide(services.NewServiceService),
	fx.Provide(controllers.NewServiceController),
	fx.Invoke(RegisterServiceRoutes),
)

func RegisterServiceRoutes(
	r *gin.Engine,
	ctrl *controllers.ServiceController,
	authStack *authMiddleware.AuthMiddlewareStack,
) {
	public := r.Group("/api/v1/services")
	{
		public.GET("", ctrl.List)
		public.GET("/:id", ctrl.Get)
	}

	api := r.Group("/api/v1/services")
	api.Use(authMiddleware.RequireCapability(authStack, policy.ServicesManage)...)
	{
		api.POST("", ctrl.Create)
		api.PUT("/:id", ctrl.Update)
		api.DELETE("/:id", ctrl.Delete)
	}
}
