package dashboard

import (
	"gestion-hospitaliere/internal/modules/dashboard/controllers"
	"gestion-hospitaliere/internal/modules/dashboard/queries"
	"gestion-hospitaliere/internal/modules/dashboard/services"
	authMiddleware "gestion-hospitaliere/internal/shared/middleware/auth"
	"gestion-hospitaliere/internal/shared/policy"

	"github.com/gin-gonic/gin"
	"go.uber.org/fx"
)

var Module = fx.Options(
	fx.Provide(fx.Annotate(queries.NewDashboardRepository, fx.As(new(services.DashboardRepository)))),
	fx.Provide(services.NewDashboardService),
	fx.Provide(controllers.NewDashboardController),
	fx.Invoke(RegisterDashboardRoutes),
)

func RegisterDashboardRoutes(
	r *gin.Engine,
	ctrl *controllers.DashboardController,
	authStack *authMiddleware.AuthMiddlewareStack,
) {
	api := r.Group("/api/v1/dashboard")
	api.Use(authMiddleware.Protected(authStack)...)
	{
		read := authStack.Require(policy.DashboardRead)
		api.GET("", read, ctrl.Overview)
		api.GET("/graphiques", read, ctrl.Graphiques)
		api.GET("/export", authStack.Require(policy.DashboardExport), ctrl.Export)
	}
}
