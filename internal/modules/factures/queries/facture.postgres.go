package queries

import (
	"context"
	"errors"
	"fmt"

	"gestion-hospitaliere/internal/infrastructure/database/postgres"
	"gestion-hospitaliere/internal/modules/factures/dto"
	"gestion-hospitaliere/internal/shared/utils"

	"github.com/doug-martin/goqu/v9"
	"github.com/google/uuid"
)

var ErrUnknownPatient = errors.New("patient inconnu")

var FactureQueries = struct {
	Insert        string
	Update        string
	Delete        string
	PatientExists string
}{
	/**
	 * Paramètres: $1 = patient_id, $2 = montant, $3 = statut, $4 = date, $5 = fichier_pdf, $6 = description
	 */
	Insert: `
		INSERT INTO factures (patient_id, montant, statut, date, fichier_pdf, description)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`,

	/**
	 * Paramètres: $1 = id, $2 = montant, $3 = statut, $4 = date, $5 = fichier_pdf, $6 = description (NULL = inchangé)
	 */
	Update: `
		UPDATE factures SET
			montant     = COALESCE($2, montant),
			statut      = COALESCE($3, statut),
			date        = COALESCE($4, date),
			fichier_pdf = COALESCE($5, fichier_pdf),
			description = COALESCE($6, description),
			updated_at  = now()
		WHERE id = $1
	`,

	Delete: `DELETE FROM factures WHERE id = $1 RETURNING fichier_pdf`,

	PatientExists: `SELECT EXISTS (SELECT 1 FROM patients WHERE id = $1)`,
}

type FactureRepository struct {
	db *postgres.Client
}

func NewFactureRepository(db *postgres.Client) *FactureRepository {
	return &FactureRepository{db: db}
}

func baseSelect() *goqu.SelectDataset {
	return postgres.From(goqu.T("factures").As("f")).
		Select(
			"f.id",
			"p.id", "u.name", "u.email",
			"f.montant", "f.statut", "f.date", "f.fichier_pdf", "f.description",
			"f.created_at", "f.updated_at",
		).
		Join(goqu.T("patients").As("p"), goqu.On(goqu.I("p.id").Eq(goqu.I("f.patient_id")))).
		Join(goqu.T("users").As("u"), goqu.On(goqu.I("u.id").Eq(goqu.I("p.user_id"))))
}

func (r *FactureRepository) List(ctx context.Context, filter dto.FactureFilter, page utils.Pagination) ([]dto.Facture, int64, error) {
	ds := baseSelect()
	if filter.PatientID != nil {
		ds = ds.Where(goqu.I("f.patient_id").Eq(*filter.PatientID))
	}
	if filter.Statut != "" {
		ds = ds.Where(goqu.I("f.statut").Eq(filter.Statut))
	}

	total, err := postgres.Count(ctx, r.db, ds)
	if err != nil {
		return nil, 0, err
	}

	ordered := ds.Order(goqu.I("f.date").Desc(), goqu.I("f.created_at").Desc())
	query, args, err := postgres.Page(ordered, page.Limit(), page.Offset()).ToSQL()
	if err != nil {
		return nil, 0, fmt.Errorf("construction requête factures: %w", err)
	}
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	items := []dto.Facture{}
	for rows.Next() {
		f, err := scanFacture(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, *f)
	}
	return items, total, rows.Err()
}

// FindByID nil, nil si absente
func (r *FactureRepository) FindByID(ctx context.Context, id uuid.UUID) (*dto.Facture, error) {
	query, args, err := baseSelect().Where(goqu.I("f.id").Eq(id)).ToSQL()
	if err != nil {
		return nil, fmt.Errorf("construction requête facture: %w", err)
	}
	f, err := scanFacture(r.db.QueryRow(ctx, query, args...))
	if postgres.IsNoRows(err) {
		return nil, nil
	}
	return f, err
}

func (r *FactureRepository) PatientExists(ctx context.Context, id uuid.UUID) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, FactureQueries.PatientExists, id).Scan(&exists)
	return exists, err
}

func (r *FactureRepository) Create(ctx context.Context, f dto.NewFacture) (uuid.UUID, error) {
	var id uuid.UUID
	err := r.db.QueryRow(ctx, FactureQueries.Insert,
		f.PatientID, f.Montant, f.Statut, f.Date, f.FichierPDF, f.Description,
	).Scan(&id)
	if postgres.IsForeignKeyViolation(err) {
		return uuid.Nil, ErrUnknownPatient
	}
	return id, err
}

func (r *FactureRepository) Update(ctx context.Context, id uuid.UUID, ch dto.FactureChanges) (bool, error) {
	affected, err := r.db.Exec(ctx, FactureQueries.Update, id, ch.Montant, ch.Statut, ch.Date, ch.FichierPDF, ch.Description)
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

func (r *FactureRepository) Delete(ctx context.Context, id uuid.UUID) (fichier *string, found bool, err error) {
	err = r.db.QueryRow(ctx, FactureQueries.Delete, id).Scan(&fichier)
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

func scanFacture(row rowScanner) (*dto.Facture, error) {
	var f dto.Facture
	err := row.Scan(
		&f.ID,
		&f.Patient.ID, &f.Patient.Nom, &f.Patient.Email,
		&f.Montant, &f.Statut, &f.Date.Time, &f.FichierPDF, &f.Description,
		&f.CreatedAt, &f.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &f, nil
}
