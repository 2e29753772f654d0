package queries

import (
	"context"
	"fmt"
	"time"

	"gestion-hospitaliere/internal/infrastructure/database/postgres"
	"gestion-hospitaliere/internal/modules/core-services/patient/dto"
	"gestion-hospitaliere/internal/shared/utils"

	"github.com/doug-martin/goqu/v9"
	"github.com/google/uuid"
)

// PatientQueries requêtes fixes du domaine patient. Les listes filtrées
// sont construites avec goqu (voir baseSelect).
var PatientQueries = struct {
	InsertUser     string
	InsertPatient  string
	UpdateUser     string
	UpdatePatient  string
	Delete         string
	EmailExists    string
	IsHospitalized string
	GetContact     string
}{
	InsertUser: `
		INSERT INTO users (name, email, password_hash, role)
		VALUES ($1, $2, $3, 'Patient')
		RETURNING id
	`,

	InsertPatient: `
		INSERT INTO patients (user_id, date_naissance, adresse, telephone, groupe_sanguin, historique_medical)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`,

	/**
	 * Paramètres: $1 = patient_id, $2 = name
	 */
	UpdateUser: `
		UPDATE users SET name = $2, updated_at = now()
		WHERE id = (SELECT user_id FROM patients WHERE id = $1)
	`,

	/**
	 * Paramètres: $1 = id puis une valeur par colonne, NULL = inchangé
	 */
	UpdatePatient: `
		UPDATE patients SET
			date_naissance     = COALESCE($2, date_naissance),
			adresse            = COALESCE($3, adresse),
			telephone          = COALESCE($4, telephone),
			groupe_sanguin     = COALESCE($5, groupe_sanguin),
			historique_medical = COALESCE($6, historique_medical),
			updated_at         = now()
		WHERE id = $1
	`,

	// le profil suit le compte (ON DELETE CASCADE)
	Delete: `DELETE FROM users WHERE id = (SELECT user_id FROM patients WHERE id = $1)`,

	EmailExists: `SELECT EXISTS (SELECT 1 FROM users WHERE lower(email) = lower($1))`,

	IsHospitalized: `SELECT EXISTS (SELECT 1 FROM lits WHERE patient_id = $1 AND statut = 'occupe')`,

	GetContact: `
		SELECT p.id, u.id, u.name, u.email
		FROM patients p
		JOIN users u ON u.id = p.user_id
		WHERE p.id = $1
	`,
}

type PatientRepository struct {
	db        *postgres.Client
	txManager *postgres.TransactionManager
}

func NewPatientRepository(db *postgres.Client, txManager *postgres.TransactionManager) *PatientRepository {
	return &PatientRepository{db: db, txManager: txManager}
}

func baseSelect() *goqu.SelectDataset {
	return postgres.From(goqu.T("patients").As("p")).
		Select(
			"p.id", "u.id", "u.name", "u.email",
			"p.date_naissance", "p.adresse", "p.telephone", "p.groupe_sanguin", "p.historique_medical",
			"p.photo", "p.documents",
			"l.id", "l.numero", "c.numero", "l.date_occupation",
			"p.created_at", "p.updated_at",
		).
		Join(goqu.T("users").As("u"), goqu.On(goqu.I("u.id").Eq(goqu.I("p.user_id")))).
		LeftJoin(goqu.T("lits").As("l"), goqu.On(goqu.I("l.patient_id").Eq(goqu.I("p.id")))).
		LeftJoin(goqu.T("chambres").As("c"), goqu.On(goqu.I("c.id").Eq(goqu.I("l.chambre_id"))))
}

func (r *PatientRepository) List(ctx context.Context, filter dto.PatientFilter, page utils.Pagination) ([]dto.Patient, int64, error) {
	ds := baseSelect()
	if filter.Search != "" {
		ds = ds.Where(postgres.Search(filter.Search, "u.name", "u.email"))
	}
	if filter.GroupeSanguin != "" {
		ds = ds.Where(goqu.I("p.groupe_sanguin").Eq(filter.GroupeSanguin))
	}
	if filter.MedecinID != nil {
		ds = ds.Where(goqu.L(
			"EXISTS (SELECT 1 FROM rendezvous r WHERE r.patient_id = p.id AND r.medecin_id = ?)", *filter.MedecinID,
		))
	}

	total, err := postgres.Count(ctx, r.db, ds)
	if err != nil {
		return nil, 0, err
	}

	query, args, err := postgres.Page(ds.Order(goqu.I("u.name").Asc(), goqu.I("p.id").Asc()), page.Limit(), page.Offset()).ToSQL()
	if err != nil {
		return nil, 0, fmt.Errorf("construction requête patients: %w", err)
	}
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	patients := []dto.Patient{}
	for rows.Next() {
		p, err := scanPatient(rows)
		if err != nil {
			return nil, 0, err
		}
		patients = append(patients, *p)
	}
	return patients, total, rows.Err()
}

// FindByID nil, nil si absent
func (r *PatientRepository) FindByID(ctx context.Context, id uuid.UUID) (*dto.Patient, error) {
	return findByID(ctx, r.db, id)
}

// Create compte Patient et profil dans une même transaction
func (r *PatientRepository) Create(ctx context.Context, n dto.NewPatient) (*dto.Patient, error) {
	var created *dto.Patient
	err := r.txManager.WithTransaction(ctx, func(tx *postgres.Transaction) error {
		var userID, patientID uuid.UUID
		if err := tx.QueryRow(ctx, PatientQueries.InsertUser, n.Name, n.Email, n.PasswordHash).Scan(&userID); err != nil {
			return fmt.Errorf("insertion utilisateur: %w", err)
		}
		if err := tx.QueryRow(ctx, PatientQueries.InsertPatient,
			userID, n.DateNaissance, n.Adresse, n.Telephone, n.GroupeSanguin, n.HistoriqueMedical,
		).Scan(&patientID); err != nil {
			return fmt.Errorf("insertion profil patient: %w", err)
		}
		var err error
		created, err = findByID(ctx, tx, patientID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// Update nil, nil si absent
func (r *PatientRepository) Update(ctx context.Context, id uuid.UUID, ch dto.PatientChanges) (*dto.Patient, error) {
	var updated *dto.Patient
	err := r.txManager.WithTransaction(ctx, func(tx *postgres.Transaction) error {
		affected, err := tx.Exec(ctx, PatientQueries.UpdatePatient,
			id, ch.DateNaissance, ch.Adresse, ch.Telephone, ch.GroupeSanguin, ch.HistoriqueMedical,
		)
		if err != nil {
			return err
		}
		if affected == 0 {
			return nil
		}
		if ch.Name != nil {
			if _, err := tx.Exec(ctx, PatientQueries.UpdateUser, id, *ch.Name); err != nil {
				return err
			}
		}
		updated, err = findByID(ctx, tx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (r *PatientRepository) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	affected, err := r.db.Exec(ctx, PatientQueries.Delete, id)
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

func (r *PatientRepository) EmailExists(ctx context.Context, email string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, PatientQueries.EmailExists, email).Scan(&exists)
	return exists, err
}

func (r *PatientRepository) IsHospitalized(ctx context.Context, id uuid.UUID) (bool, error) {
	var hospitalized bool
	err := r.db.QueryRow(ctx, PatientQueries.IsHospitalized, id).Scan(&hospitalized)
	return hospitalized, err
}

// Contact nil, nil si absent
func (r *PatientRepository) Contact(ctx context.Context, id uuid.UUID) (*dto.PatientContact, error) {
	var c dto.PatientContact
	err := r.db.QueryRow(ctx, PatientQueries.GetContact, id).Scan(&c.PatientID, &c.UserID, &c.Name, &c.Email)
	if postgres.IsNoRows(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func findByID(ctx context.Context, q postgres.Querier, id uuid.UUID) (*dto.Patient, error) {
	query, args, err := baseSelect().Where(goqu.I("p.id").Eq(id)).ToSQL()
	if err != nil {
		return nil, fmt.Errorf("construction requête patient: %w", err)
	}
	p, err := scanPatient(q.QueryRow(ctx, query, args...))
	if postgres.IsNoRows(err) {
		return nil, nil
	}
	return p, err
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanPatient(row rowScanner) (*dto.Patient, error) {
	var (
		p              dto.Patient
		birth          *time.Time
		litID          *uuid.UUID
		litNumero      *string
		chambreNumero  *string
		dateOccupation *time.Time
	)
	err := row.Scan(
		&p.ID, &p.User.ID, &p.User.Name, &p.User.Email,
		&birth, &p.Adresse, &p.Telephone, &p.GroupeSanguin, &p.HistoriqueMedical,
		&p.Photo, &p.Documents,
		&litID, &litNumero, &chambreNumero, &dateOccupation,
		&p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	p.DateNaissance = utils.DateOf(birth)
	if birth != nil {
		age := utils.AgeAt(*birth, time.Now())
		p.Age = &age
	}
	if p.Documents == nil {
		p.Documents = []dto.Document{}
	}
	if litID != nil && litNumero != nil && chambreNumero != nil {
		p.LitActuel = &dto.LitActuel{
			ID:                 *litID,
			Numero:             *litNumero,
			Chambre:            *chambreNumero,
			IdentifiantComplet: *chambreNumero + "-" + *litNumero,
			DateOccupation:     dateOccupation,
		}
	}
	return &p, nil
}
