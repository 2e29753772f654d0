package prescriptions

import (
	"gestion-hospitaliere/internal/modules/prescriptions/controllers"
	"gestion-hospitaliere/internal/modules/prescriptions/queries"
	"gestion-hospitaliere/internal/modules/prescriptions/services"
	authMiddleware "gestion-hospitaliere/internal/shared/middleware/auth"
	"gestion-hospitaliere/internal/shared/policy"

	"github.com/gin-gonic/gin"
	"go.uber.org/fx"
)

var Module = fx.Options(
	fx.Provide(fx.Annotate(queries.NewPrescriptionRepository, fx.As(new(services.PrescriptionRepository)))),
	fx.Provide(services.NewPrescriptionService),
	fx.Provide(controllers.NewPrescriptionController),
	fx.Invoke(RegisterPrescriptionRoutes),
)

func RegisterPrescriptionRoutes(
	r *gin.Engine,
	ctrl *controllers.PrescriptionController,
	authStack *authMiddleware.AuthMiddlewareStack,
) {
	api := r.Group("/api/v1/prescriptions")
	api.Use(authMiddleware.Protected(authStack)...)
	{
		read := authStack.Require(policy.PrescriptionsRead)
		api.GET("", read, ctrl.List)
		api.GET("/:id", read, ctrl.Get)

		write := authStack.Require(policy.PrescriptionsWrite)
		api.POST("", write, ctrl.Create)
		api.PUT("/:id", write, ctrl.Update)
		api.DELETE("/:id", write, ctrl.Delete)
	}
}
