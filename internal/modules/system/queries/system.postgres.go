package queries

import (
	"context"
	"time"

	"gestion-hospitaliere/internal/infrastructure/database/postgres"
	"gestion-hospitaliere/internal/infrastructure/metrics"
)

// SystemQueries comptages exposés en jauges Prometheus
var SystemQueries = struct {
	UsersByRole          string
	Totals               string
	AppointmentsByStatus string
}{
	UsersByRole: `SELECT role, COUNT(*) FROM users GROUP BY role`,

	/**
	 * Paramètres: $1 = début du jour, $2 = début du lendemain
	 */
	Totals: `
		SELECT
			(SELECT COUNT(*) FROM patients),
			(SELECT COUNT(*) FROM medecins),
			(SELECT COUNT(*) FROM rendezvous),
			(SELECT COUNT(*) FROM rendezvous WHERE date_heure >= $1 AND date_heure < $2),
			(SELECT COUNT(*) FROM rendezvous WHERE statut = 'En attente')
	`,

	AppointmentsByStatus: `SELECT statut, COUNT(*) FROM rendezvous GROUP BY statut`,
}

type SystemRepository struct {
	db *postgres.Client
}

func NewSystemRepository(db *postgres.Client) *SystemRepository {
	return &SystemRepository{db: db}
}

func (r *SystemRepository) Ping(ctx context.Context) error {
	return r.db.Ping(ctx)
}

// Snapshot compte les entités du jour [from, to)
func (r *SystemRepository) Snapshot(ctx context.Context, from, to time.Time) (*metrics.Snapshot, error) {
	snapshot := &metrics.Snapshot{DatabaseUp: true}

	var err error
	if snapshot.UsersByRole, err = r.countBy(ctx, SystemQueries.UsersByRole); err != nil {
		return nil, err
	}
	if snapshot.AppointmentsByStatus, err = r.countBy(ctx, SystemQueries.AppointmentsByStatus); err != nil {
		return nil, err
	}

	err = r.db.QueryRow(ctx, SystemQueries.Totals, from, to).Scan(
		&snapshot.Patients,
		&snapshot.Medecins,
		&snapshot.Appointments,
		&snapshot.AppointmentsToday,
		&snapshot.AppointmentsPending,
	)
	if err != nil {
		return nil, err
	}
	return snapshot, nil
}

func (r *SystemRepository) countBy(ctx context.Context, query string) (map[string]int64, error) {
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := map[string]int64{}
	for rows.Next() {
		var key string
		var count int64
		if err := rows.Scan(&key, &count); err != nil {
			return nil, err
		}
		counts[key] = count
	}
	return counts, rows.Err()
}
