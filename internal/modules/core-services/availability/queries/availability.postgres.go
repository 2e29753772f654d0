package queries

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gestion-hospitaliere/internal/infrastructure/database/postgres"
	"gestion-hospitaliere/internal/modules/core-services/availability/dto"

	"github.com/google/uuid"
)

// ErrSlotTaken le créneau est déjà occupé par un rendez-vous actif
var ErrSlotTaken = errors.New("créneau déjà réservé")

var AvailabilityQueries = struct {
	MedecinExists    string
	HasActiveBooking string
	BookedTimes      string
	InsertRendezvous string
}{
	MedecinExists: `SELECT EXISTS (SELECT 1 FROM medecins WHERE id = $1)`,

	/**
	 * Paramètres: $1 = medecin_id, $2 = date_heure, $3 = rendez-vous exclu (NULL = aucun)
	 */
	HasActiveBooking: `
		SELECT EXISTS (
			SELECT 1 FROM rendezvous
			WHERE medecin_id = $1
			  AND date_heure = $2
			  AND statut IN ('En attente', 'Confirmé')
			  AND ($3::uuid IS NULL OR id <> $3::uuid)
		)
	`,

	/**
	 * Horaires des rendez-vous actifs d'un médecin sur [$2, $3[
	 */
	BookedTimes: `
		SELECT date_heure FROM rendezvous
		WHERE medecin_id = $1
		  AND date_heure >= $2 AND date_heure < $3
		  AND statut IN ('En attente', 'Confirmé')
		ORDER BY date_heure
	`,

	InsertRendezvous: `
		INSERT INTO rendezvous (patient_id, medecin_id, date_heure, statut, motif, notes, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`,
}

type AvailabilityRepository struct {
	db        *postgres.Client
	txManager *postgres.TransactionManager
}

func NewAvailabilityRepository(db *postgres.Client, txManager *postgres.TransactionManager) *AvailabilityRepository {
	return &AvailabilityRepository{db: db, txManager: txManager}
}

func (r *AvailabilityRepository) MedecinExists(ctx context.Context, medecinID uuid.UUID) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, AvailabilityQueries.MedecinExists, medecinID).Scan(&exists)
	return exists, err
}

// HasActiveBooking exclude permet d'ignorer le rendez-vous en cours de modification
func (r *AvailabilityRepository) HasActiveBooking(ctx context.Context, medecinID uuid.UUID, at time.Time, exclude *uuid.UUID) (bool, error) {
	return hasActiveBooking(ctx, r.db, medecinID, at, exclude)
}

func (r *AvailabilityRepository) BookedTimes(ctx context.Context, medecinID uuid.UUID, from, to time.Time) ([]time.Time, error) {
	rows, err := r.db.Query(ctx, AvailabilityQueries.BookedTimes, medecinID, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var times []time.Time
	for rows.Next() {
		var t time.Time
		if err := rows.Scan(&t); err != nil {
			return nil, err
		}
		times = append(times, t)
	}
	return times, rows.Err()
}

// InsertIfFree vérifie puis insère dans une transaction SERIALIZABLE.
// L'index unique partiel rendezvous_creneau_actif_key ferme la course restante.
func (r *AvailabilityRepository) InsertIfFree(ctx context.Context, b dto.Booking) (uuid.UUID, error) {
	var id uuid.UUID
	err := r.txManager.WithSerializable(ctx, func(tx *postgres.Transaction) error {
		taken, err := hasActiveBooking(ctx, tx, b.MedecinID, b.DateHeure, nil)
		if err != nil {
			return err
		}
		if taken {
			return ErrSlotTaken
		}
		return tx.QueryRow(ctx, AvailabilityQueries.InsertRendezvous,
			b.PatientID, b.MedecinID, b.DateHeure, b.Statut, b.Motif, b.Notes, b.CreatedBy,
		).Scan(&id)
	})
	if err != nil {
		if IsSlotConflict(err) {
			return uuid.Nil, ErrSlotTaken
		}
		return uuid.Nil, fmt.Errorf("insertion rendez-vous: %w", err)
	}
	return id, nil
}

// IsSlotConflict erreur PostgreSQL due à une réservation concurrente
func IsSlotConflict(err error) bool {
	return errors.Is(err, ErrSlotTaken) ||
		postgres.IsUniqueViolation(err, "rendezvous_creneau_actif_key") ||
		postgres.IsSerializationFailure(err)
}

func hasActiveBooking(ctx context.Context, q postgres.Querier, medecinID uuid.UUID, at time.Time, exclude *uuid.UUID) (bool, error) {
	var exists bool
	err := q.QueryRow(ctx, AvailabilityQueries.HasActiveBooking, medecinID, at, exclude).Scan(&exists)
	return exists, err
}
