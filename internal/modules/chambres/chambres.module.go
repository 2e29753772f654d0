package chambres

import (
	"gestion-hospitaliere/internal/modules/chambres/controllers"
	"gestion-hospitaliere/internal/modules/chambres/queries"
	"gestion-hospitaliere/internal/modules/chambres/services"
	bedlifecycle "gestion-hospitaliere/internal/modules/core-services/bedlifecycle/services"
	authMiddleware "gestion-hospitaliere/internal/shared/middleware/auth"
	"gestion-hospitaliere/internal/shared/policy"

	"github.com/gin-gonic/gin"
	"go.uber.org/fx"
)

var Module = fx.Options(
	fx.Provide(fx.Annotate(queries.NewChambreRepository, fx.As(new(services.ChambreRepository)))),
	fx.Provide(func(b *bedlifecycle.BedLifecycleService) services.RoomGuard { return b }),
	fx.Provide(services.NewChambreService),
	fx.Provide(controllers.NewChambreController),
	fx.Invoke(RegisterChambreRoutes),
)

func RegisterChambreRoutes(
	r *gin.Engine,
	ctrl *controllers.ChambreController,
	authStack *authMiddleware.AuthMiddlewareStack,
) {
	api := r.Group("/api/v1/chambres")
	api.Use(authMiddleware.Protected(authStack)...)
	{
		read := authStack.Require(policy.ChambresRead)
		api.GET("", read, ctrl.List)
		api.GET("/disponibles", read, ctrl.Available)
		api.GET("/:id", read, ctrl.Get)

		manage := authStack.Require(policy.ChambresManage)
		api.POST("", manage, ctrl.Create)
		api.PUT("/:id", manage, ctrl.Update)
		api.DELETE("/:id", manage, ctrl.Delete)
	}
}
