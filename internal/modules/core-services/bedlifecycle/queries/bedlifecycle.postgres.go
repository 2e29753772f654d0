package queries

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gestion-hospitaliere/internal/infrastructure/database/postgres"
	"gestion-hospitaliere/internal/modules/core-services/bedlifecycle/dto"
	"gestion-hospitaliere/internal/shared/utils"

	"github.com/doug-martin/goqu/v9"
	"github.com/google/uuid"
)

// ErrPatientAlreadyBedded le patient occupe déjà un autre lit (lits_patient_actif_key)
var ErrPatientAlreadyBedded = errors.New("patient déjà hospitalisé")

var BedQueries = struct {
	Occupy          string
	Vacate          string
	PatientExists   string
	HasOccupiedBeds string
}{
	/**
	 * Paramètres: $1 = lit, $2 = patient, $3 = date de libération prévue
	 * Compare-and-set: aucune ligne modifiée si le lit n'est pas disponible
	 */
	Occupy: `
		UPDATE lits
		SET statut = 'occupe', patient_id = $2, date_occupation = now(),
		    date_liberation_prevue = $3, updated_at = now()
		WHERE id = $1 AND statut = 'disponible'
	`,

	/**
	 * Paramètres: $1 = lit
	 * Retourne le patient libéré, aucune ligne si le lit n'est pas occupé
	 */
	Vacate: `
		UPDATE lits l
		SET statut = 'disponible', patient_id = NULL, date_occupation = NULL,
		    date_liberation_prevue = NULL, updated_at = now()
		FROM (SELECT id, patient_id FROM lits WHERE id = $1 AND statut = 'occupe' FOR UPDATE) old
		WHERE l.id = old.id
		RETURNING old.patient_id
	`,

	PatientExists: `SELECT EXISTS (SELECT 1 FROM patients WHERE id = $1)`,

	HasOccupiedBeds: `SELECT EXISTS (SELECT 1 FROM lits WHERE chambre_id = $1 AND statut = 'occupe')`,
}

type BedRepository struct {
	db *postgres.Client
}

func NewBedRepository(db *postgres.Client) *BedRepository {
	return &BedRepository{db: db}
}

// LitSelect lit avec sa chambre et son patient, réutilisé par le module lits
func LitSelect() *goqu.SelectDataset {
	return postgres.From(goqu.T("lits").As("l")).
		Select(
			"l.id", "c.id", "c.numero", "c.type",
			"l.numero", "l.statut",
			"p.id", "u.name", "p.telephone",
			"l.date_occupation", "l.date_liberation_prevue", "l.notes",
			"l.created_at", "l.updated_at",
		).
		Join(goqu.T("chambres").As("c"), goqu.On(goqu.I("c.id").Eq(goqu.I("l.chambre_id")))).
		LeftJoin(goqu.T("patients").As("p"), goqu.On(goqu.I("p.id").Eq(goqu.I("l.patient_id")))).
		LeftJoin(goqu.T("users").As("u"), goqu.On(goqu.I("u.id").Eq(goqu.I("p.user_id"))))
}

type RowScanner interface {
	Scan(dest ...interface{}) error
}

// ScanLit lit une ligne produite par LitSelect
func ScanLit(row RowScanner) (*dto.Lit, error) {
	var (
		l          dto.Lit
		patientID  *uuid.UUID
		patientNom *string
		patientTel *string
		liberation *time.Time
	)
	err := row.Scan(
		&l.ID, &l.Chambre.ID, &l.Chambre.Numero, &l.Chambre.Type,
		&l.Numero, &l.Statut,
		&patientID, &patientNom, &patientTel,
		&l.DateOccupation, &liberation, &l.Notes,
		&l.CreatedAt, &l.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	l.IdentifiantComplet = dto.IdentifiantComplet(l.Chambre.Numero, l.Numero)
	l.DateLiberationPrevue = utils.DateOf(liberation)
	if patientID != nil {
		l.Patient = &dto.PatientSummary{ID: *patientID, Telephone: patientTel}
		if patientNom != nil {
			l.Patient.Nom = *patientNom
		}
	}
	return &l, nil
}

// FindLit nil, nil si absent
func FindLit(ctx context.Context, q postgres.Querier, id uuid.UUID) (*dto.Lit, error) {
	query, args, err := LitSelect().Where(goqu.I("l.id").Eq(id)).ToSQL()
	if err != nil {
		return nil, fmt.Errorf("construction requête lit: %w", err)
	}
	l, err := ScanLit(q.QueryRow(ctx, query, args...))
	if postgres.IsNoRows(err) {
		return nil, nil
	}
	return l, err
}

func (r *BedRepository) FindByID(ctx context.Context, id uuid.UUID) (*dto.Lit, error) {
	return FindLit(ctx, r.db, id)
}

func (r *BedRepository) PatientExists(ctx context.Context, patientID uuid.UUID) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, BedQueries.PatientExists, patientID).Scan(&exists)
	return exists, err
}

// Occupy false si le lit n'était pas disponible
func (r *BedRepository) Occupy(ctx context.Context, litID, patientID uuid.UUID, release *time.Time) (bool, error) {
	affected, err := r.db.Exec(ctx, BedQueries.Occupy, litID, patientID, release)
	if err != nil {
		if postgres.IsUniqueViolation(err, "lits_patient_actif_key") {
			return false, ErrPatientAlreadyBedded
		}
		return false, fmt.Errorf("attribution lit: %w", err)
	}
	return affected == 1, nil
}

// Vacate nil, nil si le lit n'était pas occupé
func (r *BedRepository) Vacate(ctx context.Context, litID uuid.UUID) (*uuid.UUID, error) {
	var patientID uuid.UUID
	err := r.db.QueryRow(ctx, BedQueries.Vacate, litID).Scan(&patientID)
	if postgres.IsNoRows(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("libération lit: %w", err)
	}
	return &patientID, nil
}

func (r *BedRepository) HasOccupiedBeds(ctx context.Context, chambreID uuid.UUID) (bool, error) {
	var occupied bool
	err := r.db.QueryRow(ctx, BedQueries.HasOccupiedBeds, chambreID).Scan(&occupied)
	return occupied, err
}
