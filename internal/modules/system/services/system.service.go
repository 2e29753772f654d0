package services

import (
	"context"
	"time"

	"gestion-hospitaliere/internal/infrastructure/metrics"
	"gestion-hospitaliere/internal/modules/system/dto"
	"gestion-hospitaliere/internal/shared/utils"

	"go.uber.org/zap"
)

const checkTimeout = 2 * time.Second

// Pinger dépendance dont la disponibilité conditionne /ready
type Pinger interface {
	Ping(ctx context.Context) error
}

// Check dépendance nommée
type Check struct {
	Name   string
	Pinger Pinger
}

type SnapshotRepository interface {
	Snapshot(ctx context.Context, from, to time.Time) (*metrics.Snapshot, error)
}

type SystemService struct {
	checks    []Check
	snapshots SnapshotRepository
	log       *zap.Logger
	started   time.Time
	now       func() time.Time
}

func NewSystemService(checks []Check, snapshots SnapshotRepository, log *zap.Logger) *SystemService {
	return &SystemService{
		checks:    checks,
		snapshots: snapshots,
		log:       log,
		started:   time.Now(),
		now:       time.Now,
	}
}

func (s *SystemService) Health() dto.HealthResponse {
	now := s.now()
	return dto.HealthResponse{
		Status:    dto.StatusOK,
		Timestamp: now,
		Uptime:    now.Sub(s.started).Truncate(time.Second).String(),
	}
}

// Ready interroge chaque dépendance; ok = false dès qu'une seule ne répond pas
func (s *SystemService) Ready(ctx context.Context) (dto.ReadinessResponse, bool) {
	resp := dto.ReadinessResponse{Status: dto.StatusOK, Checks: make(map[string]dto.CheckResult, len(s.checks))}
	ready := true

	for _, check := range s.checks {
		result := s.run(ctx, check)
		if result.Status != dto.StatusOK {
			ready = false
			resp.Status = dto.StatusDown
		}
		resp.Checks[check.Name] = result
	}
	return resp, ready
}

func (s *SystemService) run(ctx context.Context, check Check) dto.CheckResult {
	ctx, cancel := context.WithTimeout(ctx, checkTimeout)
	defer cancel()

	start := s.now()
	err := check.Pinger.Ping(ctx)
	result := dto.CheckResult{Status: dto.StatusOK, LatencyMs: s.now().Sub(start).Milliseconds()}
	if err != nil {
		s.log.Warn("dépendance indisponible", zap.String("check", check.Name), zap.Error(err))
		result.Status = dto.StatusDown
		result.Error = err.Error()
	}
	return result
}

// Snapshot alimente les jauges métier. Une erreur de lecture est signalée par DatabaseUp = false.
func (s *SystemService) Snapshot(ctx context.Context) (*metrics.Snapshot, error) {
	from := utils.StartOfDay(s.now())
	snapshot, err := s.snapshots.Snapshot(ctx, from, from.AddDate(0, 0, 1))
	if err != nil {
		s.log.Warn("collecte des jauges impossible", zap.Error(err))
		return &metrics.Snapshot{DatabaseUp: false}, nil
	}
	return snapshot, nil
}

var _ metrics.SnapshotSource = (*SystemService)(nil)
