package auth

import (
	"context"
	"strings"

	"gestion-hospitaliere/internal/modules/auth/services"
	"gestion-hospitaliere/internal/shared/apperror"
	"gestion-hospitaliere/internal/shared/policy"
	"gestion-hospitaliere/internal/shared/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Clés du contexte gin renseignées par SessionMiddleware
const (
	PrincipalKey = "principal"
	ClaimsKey    = "token_claims"
	UserIDKey    = "user_id"
)

// TokenParser validation d'un jeton d'accès
type TokenParser interface {
	Parse(ctx context.Context, token string) (*services.Claims, error)
}

// PrincipalResolver chargement de l'identité associée au jeton
type PrincipalResolver interface {
	Resolve(ctx context.Context, userID uuid.UUID) (*policy.Principal, error)
}

type SessionMiddleware struct {
	tokens     TokenParser
	principals PrincipalResolver
}

func NewSessionMiddleware(tokens TokenParser, principals PrincipalResolver) *SessionMiddleware {
	return &SessionMiddleware{
		tokens:     tokens,
		principals: principals,
	}
}

// Handler authentifie la requête via "Authorization: Bearer <jwt>"
func (m *SessionMiddleware) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractBearerToken(c.GetHeader("Authorization"))
		if token == "" {
			utils.RespondError(c, apperror.Unauthenticated("Token d'authentification requis").WithCode("TOKEN_REQUIRED"))
			return
		}

		claims, err := m.tokens.Parse(c.Request.Context(), token)
		if err != nil {
			utils.RespondError(c, err)
			return
		}

		userID, err := claims.UserID()
		if err != nil {
			utils.RespondError(c, apperror.Unauthenticated("Jeton d'authentification invalide").WithCode("INVALID_TOKEN"))
			return
		}

		principal, err := m.principals.Resolve(c.Request.Context(), userID)
		if err != nil {
			utils.RespondError(c, err)
			return
		}

		c.Set(PrincipalKey, principal)
		c.Set(ClaimsKey, claims)
		c.Set(UserIDKey, userID.String())

		c.Next()
	}
}

// CurrentPrincipal principal authentifié, nil hors route protégée
func CurrentPrincipal(c *gin.Context) *policy.Principal {
	value, exists := c.Get(PrincipalKey)
	if !exists {
		return nil
	}
	principal, _ := value.(*policy.Principal)
	return principal
}

// CurrentClaims claims du jeton de la requête
func CurrentClaims(c *gin.Context) *services.Claims {
	value, exists := c.Get(ClaimsKey)
	if !exists {
		return nil
	}
	claims, _ := value.(*services.Claims)
	return claims
}

func extractBearerToken(authHeader string) string {
	parts := strings.SplitN(strings.TrimSpace(authHeader), " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
