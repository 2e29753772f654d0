package medecins

import (
	"gestion-hospitaliere/internal/modules/medecins/controllers"
	"gestion-hospitaliere/internal/modules/medecins/queries"
	"gestion-hospitaliere/internal/modules/medecins/services"
	authMiddleware "gestion-hospitaliere/internal/shared/middleware/auth"
	"gestion-hospitaliere/internal/shared/policy"

	"github.com/gin-gonic/gin"
	"go.uber.org/fx"
)

var Module = fx.Options(
	fx.Provide(fx.Annotate(queries.NewMedecinRepository, fx.As(new(services.MedecinRepository)))),
	fx.Provide(services.NewMedecinService),
	fx.Provide(controllers.NewMedecinController),
	fx.Invoke(RegisterMedecinRoutes),
)

func RegisterMedecinRoutes(
	r *gin.Engine,
	ctrl *controllers.MedecinController,
	authStack *authMiddleware.AuthMiddlewareStack,
) {
	api := r.Group("/api/v1/medecins")
	api.Use(authMiddleware.Protected(authStack)...)
	{
		read := authStack.Require(policy.MedecinsRead)
		api.GET("", read, ctrl.List)
		api.GET("/:id", read, ctrl.Get)
		api.GET("/:id/creneaux", read, ctrl.Creneaux)

		manage := authStack.Require(policy.MedecinsManage)
		api.POST("", manage, ctrl.Create)
		api.PUT("/:id", manage, ctrl.Update)
		api.DELETE("/:id", manage, ctrl.Delete)
	}
}
