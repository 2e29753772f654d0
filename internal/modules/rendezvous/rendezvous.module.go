package rendezvous

import (
	availability "gestion-hospitaliere/internal/modules/core-services/availability/services"
	notifications "gestion-hospitaliere/internal/modules/notifications/services"
	"gestion-hospitaliere/internal/modules/rendezvous/controllers"
	"gestion-hospitaliere/internal/modules/rendezvous/queries"
	"gestion-hospitaliere/internal/modules/rendezvous/services"
	authMiddleware "gestion-hospitaliere/internal/shared/middleware/auth"
	"gestion-hospitaliere/internal/shared/policy"

	"github.com/gin-gonic/gin"
	"go.uber.org/fx"
)

var Module = fx.Options(
	fx.Provide(fx.Annotate(queries.NewRendezvousRepository, fx.As(new(services.RendezvousRepository)))),
	fx.Provide(func(a *availability.AvailabilityService) services.Scheduler { return a }),
	fx.Provide(func(d *notifications.Dispatcher) services.Notifier { return d }),
	fx.Provide(services.NewRendezvousService),
	fx.Provide(controllers.NewRendezvousController),
	fx.Invoke(RegisterRendezvousRoutes),
)

func RegisterRendezvousRoutes(
	r *gin.Engine,
	ctrl *controllers.RendezvousController,
	authStack *authMiddleware.AuthMiddlewareStack,
) {
	api := r.Group("/api/v1/rendezvous")
	api.Use(authMiddleware.Protected(authStack)...)
	{
		read := authStack.Require(policy.RendezvousRead)
		api.GET("", read, ctrl.List)
		api.GET("/:id", read, ctrl.Get)

		api.POST("", authStack.Require(policy.RendezvousBook), ctrl.Create)

		update := authStack.Require(policy.RendezvousUpdate)
		api.PUT("/:id", update, ctrl.Update)
		api.DELETE("/:id", update, ctrl.Delete)

		api.PUT("/:id/status", authStack.Require(policy.RendezvousStatus), ctrl.UpdateStatus)
	}
}
