package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gestion-hospitaliere/internal/app/config"
	"gestion-hospitaliere/internal/infrastructure/database/redis"
	bedDTO "gestion-hospitaliere/internal/modules/core-services/bedlifecycle/dto"
	"gestion-hospitaliere/internal/modules/dashboard/dto"
	"gestion-hospitaliere/internal/shared/apperror"
	"gestion-hospitaliere/internal/shared/utils"

	"go.uber.org/zap"
)

const (
	cachePattern   = "cache_dashboard"
	moisHistorique = 12
)

type DashboardRepository interface {
	Statistiques(ctx context.Context, day, week dto.Window) (dto.Statistiques, error)
	LitsParStatut(ctx context.Context) (map[string]int64, error)
	RendezvousDuJour(ctx context.Context, day dto.Window) ([]dto.RendezvousDuJour, error)
	RendezvousParStatut(ctx context.Context) ([]dto.StatutCount, error)
	ParService(ctx context.Context) ([]dto.ServiceCount, error)
	ActiviteRecente(ctx context.Context, limit int) ([]dto.Activite, error)
	RendezvousParJour(ctx context.Context, window dto.Window) (map[string]int64, error)
	PatientsParMois(ctx context.Context, from time.Time) (map[string]int64, error)
	OccupationParType(ctx context.Context) ([]dto.OccupationType, error)
}

// DashboardService projections en lecture seule, mémorisées quelques secondes
type DashboardService struct {
	repo  DashboardRepository
	cache redis.Cache
	keys  *redis.RedisKeyGenerator
	ttl   time.Duration
	log   *zap.Logger
	now   func() time.Time
}

func NewDashboardService(repo DashboardRepository, cache redis.Cache, keys *redis.RedisKeyGenerator, cfg *config.Config, log *zap.Logger) *DashboardService {
	ttl := cfg.Dashboard.CacheTTL
	if ttl <= 0 {
		ttl, _ = keys.GetTTL(cachePattern)
	}
	return &DashboardService{repo: repo, cache: cache, keys: keys, ttl: ttl, log: log, now: time.Now}
}

func (s *DashboardService) Overview(ctx context.Context) (*dto.Dashboard, error) {
	var out dto.Dashboard
	err := s.cached(ctx, s.keys.MustKey(cachePattern, "overview"), &out, func() (interface{}, error) {
		return s.computeOverview(ctx)
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// Graphiques periode vide = 7 jours
func (s *DashboardService) Graphiques(ctx context.Context, periode string) (*dto.Graphiques, error) {
	days, ok := dto.PeriodeDays(periode)
	if !ok {
		return nil, apperror.Field("periode", "La période doit être: 7days, 30days ou 12months")
	}
	if periode == "" {
		periode = dto.DefaultPeriode
	}

	var out dto.Graphiques
	err := s.cached(ctx, s.keys.MustKey(cachePattern, "graphiques", periode), &out, func() (interface{}, error) {
		return s.computeGraphiques(ctx, days)
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *DashboardService) computeOverview(ctx context.Context) (*dto.Dashboard, error) {
	now := s.now()
	today := utils.StartOfDay(now)
	day := dto.Window{From: today, To: today.AddDate(0, 0, 1)}
	weekStart := utils.StartOfWeek(now)
	week := dto.Window{From: weekStart, To: weekStart.AddDate(0, 0, 7)}

	stats, err := s.repo.Statistiques(ctx, day, week)
	if err != nil {
		return nil, fmt.Errorf("statistiques générales: %w", err)
	}
	lits, err := s.repo.LitsParStatut(ctx)
	if err != nil {
		return nil, fmt.Errorf("lits par statut: %w", err)
	}
	occupation := Occupation(lits)
	stats.TotalLits = occupation.Total
	stats.LitsDisponibles = occupation.Disponibles
	stats.LitsOccupes = occupation.Occupes

	out := &dto.Dashboard{Statistiques: stats, OccupationLits: occupation}
	if out.RendezvousAujourdhui, err = s.repo.RendezvousDuJour(ctx, day); err != nil {
		return nil, fmt.Errorf("rendez-vous du jour: %w", err)
	}
	if out.RendezvousParStatut, err = s.repo.RendezvousParStatut(ctx); err != nil {
		return nil, fmt.Errorf("rendez-vous par statut: %w", err)
	}
	if out.PatientsParService, err = s.repo.ParService(ctx); err != nil {
		return nil, fmt.Errorf("répartition par service: %w", err)
	}
	if out.ActiviteRecente, err = s.repo.ActiviteRecente(ctx, dto.ActiviteRecente); err != nil {
		return nil, fmt.Errorf("activité récente: %w", err)
	}
	return out, nil
}

func (s *DashboardService) computeGraphiques(ctx context.Context, days int) (*dto.Graphiques, error) {
	now := s.now()
	tomorrow := utils.StartOfDay(now).AddDate(0, 0, 1)
	first := tomorrow.AddDate(0, 0, -days)

	perDay, err := s.repo.RendezvousParJour(ctx, dto.Window{From: first, To: tomorrow})
	if err != nil {
		return nil, fmt.Errorf("rendez-vous par jour: %w", err)
	}

	local := now.In(time.Local)
	firstMonth := time.Date(local.Year(), local.Month(), 1, 0, 0, 0, 0, time.Local).AddDate(0, -(moisHistorique - 1), 0)
	perMonth, err := s.repo.PatientsParMois(ctx, firstMonth)
	if err != nil {
		return nil, fmt.Errorf("patients par mois: %w", err)
	}

	types, err := s.repo.OccupationParType(ctx)
	if err != nil {
		return nil, fmt.Errorf("occupation par type: %w", err)
	}
	for i := range types {
		types[i].TauxOccupation = bedDTO.TauxOccupation(types[i].LitsOccupes, types[i].LitsTotal)
	}

	return &dto.Graphiques{
		RendezvousParJour:         dto.FillDays(perDay, first, days),
		PatientsParMois:           dto.FillMonths(perMonth, local, moisHistorique),
		OccupationChambresParType: types,
	}, nil
}

// Occupation répartition des lits et taux d'occupation
func Occupation(parStatut map[string]int64) dto.OccupationLits {
	var total int64
	for _, n := range parStatut {
		total += n
	}
	occupes := parStatut[bedDTO.StatutOccupe]
	return dto.OccupationLits{
		Total:          total,
		Occupes:        occupes,
		Disponibles:    parStatut[bedDTO.StatutDisponible],
		Maintenance:    parStatut[bedDTO.StatutMaintenance],
		Reserve:        parStatut[bedDTO.StatutReserve],
		TauxOccupation: bedDTO.TauxOccupation(occupes, total),
	}
}

// cached lit key dans le cache ou calcule, stocke puis décode dans dest.
// Une panne du cache ne bloque jamais la lecture.
func (s *DashboardService) cached(ctx context.Context, key string, dest interface{}, compute func() (interface{}, error)) error {
	raw, err := s.cache.Get(ctx, key)
	if err == nil {
		if json.Unmarshal([]byte(raw), dest) == nil {
			return nil
		}
		_ = s.cache.Del(ctx, key)
	} else if !errors.Is(err, redis.Nil) {
		s.log.Warn("lecture cache tableau de bord impossible", zap.String("key", key), zap.Error(err))
	}

	value, err := compute()
	if err != nil {
		return err
	}
	payload, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("sérialisation tableau de bord: %w", err)
	}
	if err := s.cache.Set(ctx, key, payload, s.ttl); err != nil {
		s.log.Warn("mise en cache tableau de bord impossible", zap.String("key", key), zap.Error(err))
	}
	return json.Unmarshal(payload, dest)
}
