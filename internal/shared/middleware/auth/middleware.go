package auth

import (
	"gestion-hospitaliere/internal/modules/auth/services"
	"gestion-hospitaliere/internal/shared/middleware/security"
	"gestion-hospitaliere/internal/shared/policy"

	"github.com/gin-gonic/gin"
	"go.uber.org/fx"
)

// AuthMiddlewareStack pile session + débit + capacités partagée par les modules
type AuthMiddlewareStack struct {
	SessionMiddleware    *SessionMiddleware
	PermissionMiddleware *PermissionMiddleware
	RateLimiter          *security.RateLimiter
}

func NewAuthMiddlewareStack(
	session *SessionMiddleware,
	permission *PermissionMiddleware,
	limiter *security.RateLimiter,
) *AuthMiddlewareStack {
	return &AuthMiddlewareStack{
		SessionMiddleware:    session,
		PermissionMiddleware: permission,
		RateLimiter:          limiter,
	}
}

// ApplyBasicAuth authentification puis limitation par utilisateur
func (stack *AuthMiddlewareStack) ApplyBasicAuth() []gin.HandlerFunc {
	middlewares := []gin.HandlerFunc{stack.SessionMiddleware.Handler()}
	if stack.RateLimiter != nil {
		middlewares = append(middlewares, stack.RateLimiter.PerUser())
	}
	return middlewares
}

// Require contrôle de capacité, pour une route d'un groupe déjà protégé
func (stack *AuthMiddlewareStack) Require(capability policy.Capability) gin.HandlerFunc {
	return stack.PermissionMiddleware.RequireCapability(capability)
}

var AuthMiddlewareModule = fx.Options(
	fx.Provide(fx.Annotate(
		NewSessionMiddleware,
		fx.From(new(*services.TokenService), new(*services.PrincipalService)),
	)),
	fx.Provide(NewPermissionMiddleware),
	fx.Provide(NewAuthMiddlewareStack),
)

// Protected authentification de base
func Protected(stack *AuthMiddlewareStack) []gin.HandlerFunc {
	return stack.ApplyBasicAuth()
}

// RequireCapability authentification puis contrôle de capacité
func RequireCapability(stack *AuthMiddlewareStack, capability policy.Capability) []gin.HandlerFunc {
	return append(stack.ApplyBasicAuth(), stack.Require(capability))
}
