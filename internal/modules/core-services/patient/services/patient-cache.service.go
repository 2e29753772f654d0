package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gestion-hospitaliere/internal/infrastructure/database/redis"
	"gestion-hospitaliere/internal/modules/core-services/patient/dto"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// PatientReader lecture d'un dossier patient complet
type PatientReader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*dto.Patient, error)
}

// PatientCacheService lecture cache-first des dossiers patient.
// Toute écriture sur un dossier doit appeler Invalidate.
type PatientCacheService struct {
	repo  PatientReader
	cache redis.Cache
	keys  *redis.RedisKeyGenerator
	ttl   time.Duration
	log   *zap.Logger
}

func NewPatientCacheService(repo PatientReader, cache redis.Cache, keys *redis.RedisKeyGenerator, log *zap.Logger) *PatientCacheService {
	ttl, _ := keys.GetTTL("cache_patient")
	return &PatientCacheService{repo: repo, cache: cache, keys: keys, ttl: ttl, log: log}
}

// Get nil, nil si le patient n'existe pas
func (s *PatientCacheService) Get(ctx context.Context, id uuid.UUID) (*dto.Patient, error) {
	key := s.keys.MustKey("cache_patient", id.String())

	if raw, err := s.cache.Get(ctx, key); err == nil {
		var p dto.Patient
		if err := json.Unmarshal([]byte(raw), &p); err == nil {
			return &p, nil
		}
		_ = s.cache.Del(ctx, key)
	} else if !errors.Is(err, redis.Nil) {
		s.log.Warn("lecture cache patient impossible", zap.String("key", key), zap.Error(err))
	}

	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("lecture patient %s: %w", id, err)
	}
	if p == nil {
		return nil, nil
	}

	if payload, err := json.Marshal(p); err == nil {
		if err := s.cache.Set(ctx, key, payload, s.ttl); err != nil {
			s.log.Warn("mise en cache patient impossible", zap.String("key", key), zap.Error(err))
		}
	}
	return p, nil
}

func (s *PatientCacheService) Invalidate(ctx context.Context, id uuid.UUID) {
	if err := s.cache.Del(ctx, s.keys.MustKey("cache_patient", id.String())); err != nil {
		s.log.Warn("invalidation cache patient impossible", zap.String("patient_id", id.String()), zap.Error(err))
	}
}
