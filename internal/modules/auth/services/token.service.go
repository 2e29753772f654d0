package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gestion-hospitaliere/internal/app/config"
	"gestion-hospitaliere/internal/infrastructure/database/redis"
	"gestion-hospitaliere/internal/modules/auth/dto"
	"gestion-hospitaliere/internal/shared/apperror"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Claims contenu du jeton d'accès. Subject = id utilisateur, ID = identifiant de révocation.
type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// UserID identifiant utilisateur porté par le jeton
func (c *Claims) UserID() (uuid.UUID, error) {
	return uuid.Parse(c.Subject)
}

// TokenService émet et valide les jetons JWT HS256. La révocation (logout)
// est une liste noire Redis dont chaque entrée expire avec le jeton.
type TokenService struct {
	secret []byte
	issuer string
	ttl    time.Duration
	cache  redis.Cache
	keys   *redis.RedisKeyGenerator
	now    func() time.Time
}

func NewTokenService(cfg *config.Config, cache redis.Cache, keys *redis.RedisKeyGenerator) *TokenService {
	ttl := cfg.Auth.TokenTTL
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &TokenService{
		secret: []byte(cfg.Auth.JWTSecret),
		issuer: cfg.Auth.JWTIssuer,
		ttl:    ttl,
		cache:  cache,
		keys:   keys,
		now:    time.Now,
	}
}

// Issue signe un jeton pour l'utilisateur
func (s *TokenService) Issue(user *dto.UserRecord) (string, time.Time, error) {
	now := s.now()
	expiresAt := now.Add(s.ttl)

	claims := Claims{
		Role: user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   user.ID.String(),
			Issuer:    s.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("signature du jeton: %w", err)
	}
	return token, expiresAt, nil
}

// Parse vérifie signature, émetteur, expiration et révocation
func (s *TokenService) Parse(ctx context.Context, token string) (*Claims, error) {
	claims := &Claims{}
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	}
	if s.issuer != "" {
		opts = append(opts, jwt.WithIssuer(s.issuer))
	}

	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		return s.secret, nil
	}, opts...)
	if err != nil || !parsed.Valid {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, apperror.Unauthenticated("Session expirée, veuillez vous reconnecter").WithCode("TOKEN_EXPIRED")
		}
		return nil, apperror.Unauthenticated("Jeton d'authentification invalide").WithCode("INVALID_TOKEN")
	}
	if claims.ID == "" {
		return nil, apperror.Unauthenticated("Jeton d'authentification invalide").WithCode("INVALID_TOKEN")
	}

	revoked, err := s.cache.Exists(ctx, s.keys.MustKey("auth_revoked", claims.ID))
	if err != nil {
		return nil, fmt.Errorf("vérification révocation: %w", err)
	}
	if revoked {
		return nil, apperror.Unauthenticated("Jeton révoqué").WithCode("TOKEN_REVOKED")
	}

	return claims, nil
}

// Revoke inscrit le jeton en liste noire jusqu'à son expiration. Idempotent.
func (s *TokenService) Revoke(ctx context.Context, claims *Claims) error {
	if claims == nil || claims.ID == "" || claims.ExpiresAt == nil {
		return nil
	}
	remaining := claims.ExpiresAt.Time.Sub(s.now())
	if remaining <= 0 {
		return nil
	}
	return s.cache.Set(ctx, s.keys.MustKey("auth_revoked", claims.ID), "1", remaining)
}
