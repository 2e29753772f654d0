package auth

import (
	"gestion-hospitaliere/internal/modules/auth/controllers"
	"gestion-hospitaliere/internal/modules/auth/queries"
	"gestion-hospitaliere/internal/modules/auth/services"
	authMiddleware "gestion-hospitaliere/internal/shared/middleware/auth"

	"github.com/gin-gonic/gin"
	"go.uber.org/fx"
)

// PrincipalModule résolution et cache des principals, sans routes (outils CLI)
var PrincipalModule = fx.Options(
	fx.Provide(fx.Annotate(
		queries.NewUserRepository,
		fx.As(new(services.UserRepository)),
		fx.As(new(services.UserFinder)),
	)),
	fx.Provide(services.NewPrincipalService),
)

// Module regroupe tous les providers du domaine Auth
var Module = fx.Options(
	PrincipalModule,

	fx.Provide(services.NewTokenService),
	fx.Provide(services.NewAuthService),

	fx.Provide(controllers.NewAuthController),

	fx.Invoke(RegisterAuthRoutes),
)

// RegisterAuthRoutes routes publiques (inscription, connexion) et protégées (session)
func RegisterAuthRoutes(
	r *gin.Engine,
	authController *controllers.AuthController,
	authStack *authMiddleware.AuthMiddlewareStack,
) {
	authAPI := r.Group("/api/v1")
	{
		authAPI.POST("/register", authController.Register)
		authAPI.POST("/login", authController.Login)
	}

	protectedAuthAPI := r.Group("/api/v1")
	protectedAuthAPI.Use(authMiddleware.Protected(authStack)...)
	{
		protectedAuthAPI.POST("/logout", authController.Logout)
		protectedAuthAPI.GET("/profile", authController.Profile)
	}
}
