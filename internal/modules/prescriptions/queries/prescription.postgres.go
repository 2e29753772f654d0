package queries

import (
	"context"
	"errors"
	"fmt"

	"gestion-hospitaliere/internal/infrastructure/database/postgres"
	"gestion-hospitaliere/internal/modules/prescriptions/dto"
	"gestion-hospitaliere/internal/shared/utils"

	"github.com/doug-martin/goqu/v9"
	"github.com/google/uuid"
)

// ErrUnknownPatient patient supprimé entre la vérification et l'insertion
var ErrUnknownPatient = errors.New("patient inconnu")

var PrescriptionQueries = struct {
	Insert        string
	Update        string
	Delete        string
	PatientExists string
}{
	/**
	 * Paramètres: $1 = patient_id, $2 = medecin_id, $3 = contenu, $4 = date, $5 = fichier_pdf
	 */
	Insert: `
		INSERT INTO prescriptions (patient_id, medecin_id, contenu, date, fichier_pdf)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`,

	/**
	 * Paramètres: $1 = id, $2 = contenu, $3 = date, $4 = fichier_pdf (NULL = inchangé)
	 */
	Update: `
		UPDATE prescriptions SET
			contenu     = COALESCE($2, contenu),
			date        = COALESCE($3, date),
			fichier_pdf = COALESCE($4, fichier_pdf),
			updated_at  = now()
		WHERE id = $1
	`,

	/**
	 * Retourne le fichier à supprimer du stockage
	 */
	Delete: `DELETE FROM prescriptions WHERE id = $1 RETURNING fichier_pdf`,

	PatientExists: `SELECT EXISTS (SELECT 1 FROM patients WHERE id = $1)`,
}

type PrescriptionRepository struct {
	db *postgres.Client
}

func NewPrescriptionRepository(db *postgres.Client) *PrescriptionRepository {
	return &PrescriptionRepository{db: db}
}

func baseSelect() *goqu.SelectDataset {
	return postgres.From(goqu.T("prescriptions").As("pr")).
		Select(
			"pr.id",
			"p.id", "pu.name",
			"m.id", "mu.name", "m.specialite",
			"pr.contenu", "pr.fichier_pdf", "pr.date",
			"pr.created_at", "pr.updated_at",
		).
		Join(goqu.T("patients").As("p"), goqu.On(goqu.I("p.id").Eq(goqu.I("pr.patient_id")))).
		Join(goqu.T("users").As("pu"), goqu.On(goqu.I("pu.id").Eq(goqu.I("p.user_id")))).
		Join(goqu.T("medecins").As("m"), goqu.On(goqu.I("m.id").Eq(goqu.I("pr.medecin_id")))).
		Join(goqu.T("users").As("mu"), goqu.On(goqu.I("mu.id").Eq(goqu.I("m.user_id"))))
}

func (r *PrescriptionRepository) List(ctx context.Context, filter dto.PrescriptionFilter, page utils.Pagination) ([]dto.Prescription, int64, error) {
	ds := baseSelect()
	if filter.PatientID != nil {
		ds = ds.Where(goqu.I("pr.patient_id").Eq(*filter.PatientID))
	}
	if filter.MedecinID != nil {
		ds = ds.Where(goqu.I("pr.medecin_id").Eq(*filter.MedecinID))
	}

	total, err := postgres.Count(ctx, r.db, ds)
	if err != nil {
		return nil, 0, err
	}

	ordered := ds.Order(goqu.I("pr.date").Desc(), goqu.I("pr.created_at").Desc())
	query, args, err := postgres.Page(ordered, page.Limit(), page.Offset()).ToSQL()
	if err != nil {
		return nil, 0, fmt.Errorf("construction requête prescriptions: %w", err)
	}
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	items := []dto.Prescription{}
	for rows.Next() {
		p, err := scanPrescription(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, *p)
	}
	return items, total, rows.Err()
}

// FindByID nil, nil si absente
func (r *PrescriptionRepository) FindByID(ctx context.Context, id uuid.UUID) (*dto.Prescription, error) {
	query, args, err := baseSelect().Where(goqu.I("pr.id").Eq(id)).ToSQL()
	if err != nil {
		return nil, fmt.Errorf("construction requête prescription: %w", err)
	}
	p, err := scanPrescription(r.db.QueryRow(ctx, query, args...))
	if postgres.IsNoRows(err) {
		return nil, nil
	}
	return p, err
}

func (r *PrescriptionRepository) PatientExists(ctx context.Context, id uuid.UUID) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, PrescriptionQueries.PatientExists, id).Scan(&exists)
	return exists, err
}

func (r *PrescriptionRepository) Create(ctx context.Context, p dto.NewPrescription) (uuid.UUID, error) {
	var id uuid.UUID
	err := r.db.QueryRow(ctx, PrescriptionQueries.Insert,
		p.PatientID, p.MedecinID, p.Contenu, p.Date, p.FichierPDF,
	).Scan(&id)
	if postgres.IsForeignKeyViolation(err) {
		return uuid.Nil, ErrUnknownPatient
	}
	return id, err
}

func (r *PrescriptionRepository) Update(ctx context.Context, id uuid.UUID, ch dto.PrescriptionChanges) (bool, error) {
	affected, err := r.db.Exec(ctx, PrescriptionQueries.Update, id, ch.Contenu, ch.Date, ch.FichierPDF)
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

// Delete found = false si absente
func (r *PrescriptionRepository) Delete(ctx context.Context, id uuid.UUID) (fichier *string, found bool, err error) {
	err = r.db.QueryRow(ctx, PrescriptionQueries.Delete, id).Scan(&fichier)
	if postgres.IsNoRows(err) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return fichier, true, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanPrescription(row rowScanner) (*dto.Prescription, error) {
	var p dto.Prescription
	err := row.Scan(
		&p.ID,
		&p.Patient.ID, &p.Patient.Nom,
		&p.Medecin.ID, &p.Medecin.Nom, &p.Medecin.Specialite,
		&p.Contenu, &p.FichierPDF, &p.Date.Time,
		&p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}
