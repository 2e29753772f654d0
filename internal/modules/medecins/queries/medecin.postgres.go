package queries

import (
	"context"
	"encoding/json"
	"fmt"

	"gestion-hospitaliere/internal/infrastructure/database/postgres"
	"gestion-hospitaliere/internal/modules/medecins/dto"
	"gestion-hospitaliere/internal/shared/utils"

	"github.com/doug-martin/goqu/v9"
	"github.com/google/uuid"
)

var MedecinQueries = struct {
	InsertUser    string
	InsertMedecin string
	UpdateUser    string
	UpdateMedecin string
	Delete        string
	EmailExists   string
	ServiceExists string
}{
	InsertUser: `
		INSERT INTO users (name, email, password_hash, role)
		VALUES ($1, $2, $3, 'Médecin')
		RETURNING id
	`,

	InsertMedecin: `
		INSERT INTO medecins (user_id, service_id, specialite, disponibilites)
		VALUES ($1, $2, $3, $4::jsonb)
		RETURNING id
	`,

	/**
	 * Paramètres: $1 = medecin_id, $2 = name (NULL = inchangé)
	 */
	UpdateUser: `
		UPDATE users SET name = COALESCE($2, name), updated_at = now()
		WHERE id = (SELECT user_id FROM medecins WHERE id = $1)
	`,

	/**
	 * Paramètres: $1 = id, $2 = specialite, $3 = service_id, $4 = disponibilites (NULL = inchangé)
	 */
	UpdateMedecin: `
		UPDATE medecins SET
			specialite     = COALESCE($2, specialite),
			service_id     = COALESCE($3, service_id),
			disponibilites = COALESCE($4::jsonb, disponibilites),
			updated_at     = now()
		WHERE id = $1
	`,

	// la suppression du compte entraîne celle du profil (ON DELETE CASCADE)
	Delete: `DELETE FROM users WHERE id = (SELECT user_id FROM medecins WHERE id = $1)`,

	EmailExists:   `SELECT EXISTS (SELECT 1 FROM users WHERE lower(email) = lower($1))`,
	ServiceExists: `SELECT EXISTS (SELECT 1 FROM services WHERE id = $1)`,
}

type MedecinRepository struct {
	db        *postgres.Client
	txManager *postgres.TransactionManager
}

func NewMedecinRepository(db *postgres.Client, txManager *postgres.TransactionManager) *MedecinRepository {
	return &MedecinRepository{db: db, txManager: txManager}
}

func baseSelect() *goqu.SelectDataset {
	return postgres.From(goqu.T("medecins").As("m")).
		Select(
			"m.id", "u.id", "u.name", "u.email", "m.specialite", "s.id", "s.nom", "m.disponibilites",
			goqu.L("(SELECT COUNT(*) FROM rendezvous r WHERE r.medecin_id = m.id)"),
			"m.created_at", "m.updated_at",
		).
		Join(goqu.T("users").As("u"), goqu.On(goqu.I("u.id").Eq(goqu.I("m.user_id")))).
		Join(goqu.T("services").As("s"), goqu.On(goqu.I("s.id").Eq(goqu.I("m.service_id"))))
}

func (r *MedecinRepository) List(ctx context.Context, filter dto.MedecinFilter, page utils.Pagination) ([]dto.Medecin, int64, error) {
	ds := baseSelect()
	if filter.ServiceID != nil {
		ds = ds.Where(goqu.I("m.service_id").Eq(*filter.ServiceID))
	}
	if filter.Specialite != "" {
		ds = ds.Where(goqu.I("m.specialite").ILike(filter.Specialite))
	}
	if filter.Search != "" {
		ds = ds.Where(postgres.Search(filter.Search, "u.name", "m.specialite"))
	}

	total, err := postgres.Count(ctx, r.db, ds)
	if err != nil {
		return nil, 0, err
	}

	query, args, err := postgres.Page(ds.Order(goqu.I("u.name").Asc()), page.Limit(), page.Offset()).ToSQL()
	if err != nil {
		return nil, 0, fmt.Errorf("construction requête médecins: %w", err)
	}
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	medecins := []dto.Medecin{}
	for rows.Next() {
		m, err := scanMedecin(rows)
		if err != nil {
			return nil, 0, err
		}
		medecins = append(medecins, *m)
	}
	return medecins, total, rows.Err()
}

// FindByID nil, nil si absent
func (r *MedecinRepository) FindByID(ctx context.Context, id uuid.UUID) (*dto.Medecin, error) {
	return findByID(ctx, r.db, id)
}

// Create compte Médecin et profil dans une même transaction
func (r *MedecinRepository) Create(ctx context.Context, m dto.NewMedecin) (*dto.Medecin, error) {
	var created *dto.Medecin
	err := r.txManager.WithTransaction(ctx, func(tx *postgres.Transaction) error {
		var userID, medecinID uuid.UUID
		disponibilites, err := jsonOrNull(disponibilitesOrEmpty(m.Disponibilites))
		if err != nil {
			return err
		}
		if err := tx.QueryRow(ctx, MedecinQueries.InsertUser, m.Name, m.Email, m.PasswordHash).Scan(&userID); err != nil {
			return fmt.Errorf("insertion utilisateur: %w", err)
		}
		if err := tx.QueryRow(ctx, MedecinQueries.InsertMedecin,
			userID, m.ServiceID, m.Specialite, disponibilites,
		).Scan(&medecinID); err != nil {
			return fmt.Errorf("insertion profil médecin: %w", err)
		}
		created, err = findByID(ctx, tx, medecinID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// Update nil, nil si le médecin n'existe pas
func (r *MedecinRepository) Update(ctx context.Context, id uuid.UUID, changes dto.MedecinChanges) (*dto.Medecin, error) {
	var updated *dto.Medecin
	err := r.txManager.WithTransaction(ctx, func(tx *postgres.Transaction) error {
		disponibilites, err := jsonOrNull(changes.Disponibilites)
		if err != nil {
			return err
		}
		affected, err := tx.Exec(ctx, MedecinQueries.UpdateMedecin, id, changes.Specialite, changes.ServiceID, disponibilites)
		if err != nil {
			return err
		}
		if affected == 0 {
			return nil
		}
		if changes.Name != nil {
			if _, err := tx.Exec(ctx, MedecinQueries.UpdateUser, id, changes.Name); err != nil {
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

func (r *MedecinRepository) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	affected, err := r.db.Exec(ctx, MedecinQueries.Delete, id)
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

func (r *MedecinRepository) EmailExists(ctx context.Context, email string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, MedecinQueries.EmailExists, email).Scan(&exists)
	return exists, err
}

func (r *MedecinRepository) ServiceExists(ctx context.Context, id uuid.UUID) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, MedecinQueries.ServiceExists, id).Scan(&exists)
	return exists, err
}

func findByID(ctx context.Context, q postgres.Querier, id uuid.UUID) (*dto.Medecin, error) {
	query, args, err := baseSelect().Where(goqu.I("m.id").Eq(id)).ToSQL()
	if err != nil {
		return nil, fmt.Errorf("construction requête médecin: %w", err)
	}
	m, err := scanMedecin(q.QueryRow(ctx, query, args...))
	if postgres.IsNoRows(err) {
		return nil, nil
	}
	return m, err
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanMedecin(row rowScanner) (*dto.Medecin, error) {
	var m dto.Medecin
	err := row.Scan(
		&m.ID, &m.User.ID, &m.User.Name, &m.User.Email, &m.Specialite,
		&m.Service.ID, &m.Service.Nom, &m.Disponibilites, &m.RendezvousCount,
		&m.CreatedAt, &m.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if m.Disponibilites == nil {
		m.Disponibilites = map[string]bool{}
	}
	return &m, nil
}

// jsonOrNull NULL SQL quand d est nil (COALESCE conserve la valeur)
func jsonOrNull(d map[string]bool) (interface{}, error) {
	if d == nil {
		return nil, nil
	}
	raw, err := json.Marshal(d)
	if err != nil {
		return nil, err
	}
	return string(raw), nil
}

func disponibilitesOrEmpty(d map[string]bool) map[string]bool {
	if d == nil {
		return map[string]bool{}
	}
	return d
}
