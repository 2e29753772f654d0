package queries

import (
	"context"
	"fmt"

	"gestion-hospitaliere/internal/infrastructure/database/postgres"
	"gestion-hospitaliere/internal/modules/rendezvous/dto"
	"gestion-hospitaliere/internal/shared/utils"

	"github.com/doug-martin/goqu/v9"
	"github.com/google/uuid"
)

var RendezvousQueries = struct {
	Update        string
	UpdateStatus  string
	Delete        string
	PatientExists string
}{
	/**
	 * Paramètres: $1 = id, $2 = date_heure, $3 = statut, $4 = motif, $5 = notes (NULL = inchangé)
	 * Un nouvel horaire réarme le rappel
	 */
	Update: `
		UPDATE rendezvous SET
			date_heure       = COALESCE($2, date_heure),
			statut           = COALESCE($3, statut),
			motif            = COALESCE($4, motif),
			notes            = COALESCE($5, notes),
			rappel_envoye_at = CASE WHEN $2::timestamptz IS NULL THEN rappel_envoye_at ELSE NULL END,
			updated_at       = now()
		WHERE id = $1
	`,

	/**
	 * Paramètres: $1 = id, $2 = statut, $3 = notes du médecin ajoutées aux notes (NULL = aucune)
	 */
	UpdateStatus: `
		UPDATE rendezvous SET
			statut     = $2,
			notes      = CASE
				WHEN $3::text IS NULL THEN notes
				ELSE COALESCE(notes, '') || E'\n\nNotes du médecin: ' || $3::text
			END,
			updated_at = now()
		WHERE id = $1
	`,

	Delete: `DELETE FROM rendezvous WHERE id = $1`,

	PatientExists: `SELECT EXISTS (SELECT 1 FROM patients WHERE id = $1)`,
}

type RendezvousRepository struct {
	db *postgres.Client
}

func NewRendezvousRepository(db *postgres.Client) *RendezvousRepository {
	return &RendezvousRepository{db: db}
}

func baseSelect() *goqu.SelectDataset {
	return postgres.From(goqu.T("rendezvous").As("r")).
		Select(
			"r.id",
			"p.id", "pu.id", "pu.name", "pu.email", "p.telephone",
			"m.id", "mu.id", "mu.name", "mu.email", "m.specialite",
			"r.date_heure", "r.statut", "r.motif", "r.notes", "r.rappel_envoye_at",
			"r.created_at", "r.updated_at",
		).
		Join(goqu.T("patients").As("p"), goqu.On(goqu.I("p.id").Eq(goqu.I("r.patient_id")))).
		Join(goqu.T("users").As("pu"), goqu.On(goqu.I("pu.id").Eq(goqu.I("p.user_id")))).
		Join(goqu.T("medecins").As("m"), goqu.On(goqu.I("m.id").Eq(goqu.I("r.medecin_id")))).
		Join(goqu.T("users").As("mu"), goqu.On(goqu.I("mu.id").Eq(goqu.I("m.user_id"))))
}

func (r *RendezvousRepository) List(ctx context.Context, filter dto.RendezvousFilter, page utils.Pagination) ([]dto.Rendezvous, int64, error) {
	ds := baseSelect()
	if filter.PatientID != nil {
		ds = ds.Where(goqu.I("r.patient_id").Eq(*filter.PatientID))
	}
	if filter.MedecinID != nil {
		ds = ds.Where(goqu.I("r.medecin_id").Eq(*filter.MedecinID))
	}
	if filter.Statut != "" {
		ds = ds.Where(goqu.I("r.statut").Eq(filter.Statut))
	}
	if filter.Date != nil {
		day := utils.StartOfDay(*filter.Date)
		ds = ds.Where(
			goqu.I("r.date_heure").Gte(day),
			goqu.I("r.date_heure").Lt(day.AddDate(0, 0, 1)),
		)
	}

	total, err := postgres.Count(ctx, r.db, ds)
	if err != nil {
		return nil, 0, err
	}

	query, args, err := postgres.Page(ds.Order(goqu.I("r.date_heure").Desc()), page.Limit(), page.Offset()).ToSQL()
	if err != nil {
		return nil, 0, fmt.Errorf("construction requête rendez-vous: %w", err)
	}
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	items := []dto.Rendezvous{}
	for rows.Next() {
		rdv, err := scanRendezvous(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, *rdv)
	}
	return items, total, rows.Err()
}

// FindByID nil, nil si absent
func (r *RendezvousRepository) FindByID(ctx context.Context, id uuid.UUID) (*dto.Rendezvous, error) {
	query, args, err := baseSelect().Where(goqu.I("r.id").Eq(id)).ToSQL()
	if err != nil {
		return nil, fmt.Errorf("construction requête rendez-vous: %w", err)
	}
	rdv, err := scanRendezvous(r.db.QueryRow(ctx, query, args...))
	if postgres.IsNoRows(err) {
		return nil, nil
	}
	return rdv, err
}

func (r *RendezvousRepository) PatientExists(ctx context.Context, id uuid.UUID) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, RendezvousQueries.PatientExists, id).Scan(&exists)
	return exists, err
}

func (r *RendezvousRepository) Update(ctx context.Context, id uuid.UUID, ch dto.RendezvousChanges) (bool, error) {
	affected, err := r.db.Exec(ctx, RendezvousQueries.Update, id, ch.DateHeure, ch.Statut, ch.Motif, ch.Notes)
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

func (r *RendezvousRepository) UpdateStatus(ctx context.Context, id uuid.UUID, statut string, notesMedecin *string) (bool, error) {
	affected, err := r.db.Exec(ctx, RendezvousQueries.UpdateStatus, id, statut, notesMedecin)
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

func (r *RendezvousRepository) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	affected, err := r.db.Exec(ctx, RendezvousQueries.Delete, id)
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanRendezvous(row rowScanner) (*dto.Rendezvous, error) {
	var rdv dto.Rendezvous
	err := row.Scan(
		&rdv.ID,
		&rdv.Patient.ID, &rdv.Patient.User.ID, &rdv.Patient.User.Name, &rdv.Patient.User.Email, &rdv.Patient.Telephone,
		&rdv.Medecin.ID, &rdv.Medecin.User.ID, &rdv.Medecin.User.Name, &rdv.Medecin.User.Email, &rdv.Medecin.Specialite,
		&rdv.DateHeure, &rdv.Statut, &rdv.Motif, &rdv.Notes, &rdv.RappelEnvoyeAt,
		&rdv.CreatedAt, &rdv.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &rdv, nil
}
