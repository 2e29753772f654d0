package users

import (
	authServices "gestion-hospitaliere/internal/modules/auth/services"
	controllers "gestion-hospitaliere/internal/modules/back-office/users/controllers/comptes"
	queries "gestion-hospitaliere/internal/modules/back-office/users/queries/comptes"
	services "gestion-hospitaliere/internal/modules/back-office/users/services/comptes"
	authMiddleware "gestion-hospitaliere/internal/shared/middleware/auth"
	"gestion-hospitaliere/internal/shared/policy"

	"github.com/gin-gonic/gin"
	"go.uber.org/fx"
)

// ServiceModule ComptesService seul, partagé avec la commande create-admin
var ServiceModule = fx.Options(
	fx.Provide(fx.Annotate(queries.NewComptesRepository, fx.As(new(services.ComptesRepository)))),
	fx.Provide(func(p *authServices.PrincipalService) services.PrincipalInvalidator { return p }),
	fx.Provide(services.NewComptesService),
)

// Module administration des comptes utilisateurs
var Module = fx.Options(
	ServiceModule,
	fx.Provide(controllers.NewComptesController),
	fx.Invoke(RegisterUsersRoutes),
)

func RegisterUsersRoutes(
	r *gin.Engine,
	ctrl *controllers.ComptesController,
	authStack *authMiddleware.AuthMiddlewareStack,
) {
	usersAPI := r.Group("/api/v1/users")
	usersAPI.Use(authMiddleware.RequireCapability(authStack, policy.UsersManage)...)
	{
		usersAPI.GET("", ctrl.List)
		usersAPI.GET("/:id", ctrl.Get)
		usersAPI.PUT("/:id/promote", ctrl.Promote)
	}
}
