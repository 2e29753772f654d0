package queries

import (
	"context"
	"fmt"
	"time"

	"gestion-hospitaliere/internal/infrastructure/database/postgres"
	"gestion-hospitaliere/internal/modules/notifications/dto"

	"github.com/google/uuid"
)

var ReminderQueries = struct {
	Due          string
	MarkReminded string
	Clear        string
}{
	/**
	 * Paramètres: $1 = début de fenêtre, $2 = fin de fenêtre
	 * Rendez-vous actifs non encore rappelés
	 */
	Due: `
		SELECT r.id, r.date_heure, r.statut, r.motif,
			up.id, up.name, up.email,
			um.id, um.name, um.email
		FROM rendezvous r
		JOIN patients p ON p.id = r.patient_id
		JOIN users up ON up.id = p.user_id
		JOIN medecins m ON m.id = r.medecin_id
		JOIN users um ON um.id = m.user_id
		WHERE r.statut IN ('En attente', 'Confirmé')
			AND r.rappel_envoye_at IS NULL
			AND r.date_heure > $1
			AND r.date_heure <= $2
		ORDER BY r.date_heure
		LIMIT 500
	`,

	/**
	 * Paramètres: $1 = id
	 */
	MarkReminded: `
		UPDATE rendezvous SET rappel_envoye_at = now()
		WHERE id = $1 AND rappel_envoye_at IS NULL
	`,

	Clear: `UPDATE rendezvous SET rappel_envoye_at = NULL WHERE id = $1`,
}

type ReminderRepository struct {
	db *postgres.Client
}

func NewReminderRepository(db *postgres.Client) *ReminderRepository {
	return &ReminderRepository{db: db}
}

func (r *ReminderRepository) DueReminders(ctx context.Context, from, to time.Time) ([]dto.AppointmentEvent, error) {
	rows, err := r.db.Query(ctx, ReminderQueries.Due, from, to)
	if err != nil {
		return nil, fmt.Errorf("lecture rappels: %w", err)
	}
	defer rows.Close()

	var events []dto.AppointmentEvent
	for rows.Next() {
		var ev dto.AppointmentEvent
		if err := rows.Scan(
			&ev.RendezvousID, &ev.DateHeure, &ev.Statut, &ev.Motif,
			&ev.Patient.UserID, &ev.Patient.Name, &ev.Patient.Email,
			&ev.Medecin.UserID, &ev.Medecin.Name, &ev.Medecin.Email,
		); err != nil {
			return nil, err
		}
		events = append(events, ev)
	}
	return events, rows.Err()
}

func (r *ReminderRepository) MarkReminded(ctx context.Context, id uuid.UUID) (bool, error) {
	n, err := r.db.Exec(ctx, ReminderQueries.MarkReminded, id)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *ReminderRepository) ClearReminded(ctx context.Context, id uuid.UUID) error {
	_, err := r.db.Exec(ctx, ReminderQueries.Clear, id)
	return err
}
