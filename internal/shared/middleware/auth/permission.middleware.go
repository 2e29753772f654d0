package auth

import (
	"gestion-hospitaliere/internal/shared/apperror"
	"gestion-hospitaliere/internal/shared/policy"
	"gestion-hospitaliere/internal/shared/utils"

	"github.com/gin-gonic/gin"
)

// PermissionMiddleware applique la table rôle -> capacités, une fois par requête
type PermissionMiddleware struct{}

func NewPermissionMiddleware() *PermissionMiddleware {
	return &PermissionMiddleware{}
}

// RequireCapability refuse la requête si le rôle du principal n'a pas capability.
// Doit suivre SessionMiddleware.
func (m *PermissionMiddleware) RequireCapability(capability policy.Capability) gin.HandlerFunc {
	return func(c *gin.Context) {
		principal := CurrentPrincipal(c)
		if principal == nil {
			utils.RespondError(c, apperror.Unauthenticated("Non authentifié"))
			return
		}

		if !principal.Can(capability) {
			utils.RespondError(c, apperror.Forbidden(policy.DenialMessage(principal.Role, capability)))
			return
		}

		c.Next()
	}
}
