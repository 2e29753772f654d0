package lits

import (
	"gestion-hospitaliere/internal/modules/lits/controllers"
	"gestion-hospitaliere/internal/modules/lits/queries"
	"gestion-hospitaliere/internal/modules/lits/services"
	authMiddleware "gestion-hospitaliere/internal/shared/middleware/auth"
	"gestion-hospitaliere/internal/shared/policy"

	"github.com/gin-gonic/gin"
	"go.uber.org/fx"
)

var Module = fx.Options(
	fx.Provide(fx.Annotate(queries.NewLitRepository, fx.As(new(services.LitRepository)))),
	fx.Provide(services.NewLitService),
	fx.Provide(controllers.NewLitController),
	fx.Invoke(RegisterLitRoutes),
)

func RegisterLitRoutes(
	r *gin.Engine,
	ctrl *controllers.LitController,
	authStack *authMiddleware.AuthMiddlewareStack,
) {
	api := r.Group("/api/v1/lits")
	api.Use(authMiddleware.Protected(authStack)...)
	{
		read := authStack.Require(policy.LitsRead)
		api.GET("", read, ctrl.List)
		api.GET("/disponibles", read, ctrl.Available)
		api.GET("/:id", read, ctrl.Get)

		manage := authStack.Require(policy.LitsManage)
		api.POST("", manage, ctrl.Create)
		api.PUT("/:id", manage, ctrl.Update)
		api.DELETE("/:id", manage, ctrl.Delete)
		api.POST("/:id/assigner", manage, ctrl.Assign)
		api.POST("/:id/liberer", manage, ctrl.Release)
	}
}
