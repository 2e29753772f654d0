package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gestion-hospitaliere/internal/app/config"
	"gestion-hospitaliere/internal/infrastructure/database/redis"
	"gestion-hospitaliere/internal/modules/auth/dto"
	"gestion-hospitaliere/internal/shared/apperror"
	"gestion-hospitaliere/internal/shared/policy"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// UserFinder lecture d'un compte par identifiant
type UserFinder interface {
	FindByID(ctx context.Context, id uuid.UUID) (*dto.UserRecord, error)
}

// PrincipalService construit l'identité d'une requête à partir de l'id du jeton.
// Cache Redis d'abord, PostgreSQL en repli (source de vérité).
type PrincipalService struct {
	users UserFinder
	cache redis.Cache
	keys  *redis.RedisKeyGenerator
	ttl   time.Duration
	log   *zap.Logger
}

func NewPrincipalService(cfg *config.Config, users UserFinder, cache redis.Cache, keys *redis.RedisKeyGenerator, log *zap.Logger) *PrincipalService {
	ttl := cfg.Auth.PrincipalCacheTTL
	if ttl <= 0 {
		ttl, _ = keys.GetTTL("auth_principal")
	}
	return &PrincipalService{
		users: users,
		cache: cache,
		keys:  keys,
		ttl:   ttl,
		log:   log,
	}
}

// Resolve retourne le principal de userID. Compte supprimé ou rôle inconnu => 401.
func (s *PrincipalService) Resolve(ctx context.Context, userID uuid.UUID) (*policy.Principal, error) {
	key := s.keys.MustKey("auth_principal", userID.String())

	if principal, ok := s.fromCache(ctx, key); ok {
		return principal, nil
	}

	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("chargement utilisateur %s: %w", userID, err)
	}
	if user == nil {
		return nil, apperror.Unauthenticated("Utilisateur introuvable").WithCode("USER_NOT_FOUND")
	}

	principal, err := PrincipalFromUser(user)
	if err != nil {
		return nil, apperror.Unauthenticated("Rôle utilisateur invalide").WithCode("INVALID_ROLE")
	}

	if payload, err := json.Marshal(principal); err == nil {
		if err := s.cache.Set(ctx, key, payload, s.ttl); err != nil {
			s.log.Warn("mise en cache du principal impossible", zap.String("user_id", userID.String()), zap.Error(err))
		}
	}
	return principal, nil
}

// Invalidate force la relecture depuis PostgreSQL (promotion, suppression)
func (s *PrincipalService) Invalidate(ctx context.Context, userID uuid.UUID) error {
	return s.cache.Del(ctx, s.keys.MustKey("auth_principal", userID.String()))
}

func (s *PrincipalService) fromCache(ctx context.Context, key string) (*policy.Principal, bool) {
	raw, err := s.cache.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			s.log.Warn("lecture cache principal impossible", zap.String("key", key), zap.Error(err))
		}
		return nil, false
	}

	var principal policy.Principal
	if err := json.Unmarshal([]byte(raw), &principal); err != nil || !principal.Role.Valid() {
		_ = s.cache.Del(ctx, key)
		return nil, false
	}
	return &principal, true
}

// PrincipalFromUser convertit un compte en principal, le rôle doit être connu
func PrincipalFromUser(user *dto.UserRecord) (*policy.Principal, error) {
	role, err := policy.ParseRole(user.Role)
	if err != nil {
		return nil, err
	}
	return &policy.Principal{
		UserID:    user.ID,
		Name:      user.Name,
		Email:     user.Email,
		Role:      role,
		PatientID: user.PatientID,
		MedecinID: user.MedecinID,
	}, nil
}
