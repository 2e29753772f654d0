package queries

import (
	"context"
	"fmt"

	"gestion-hospitaliere/internal/infrastructure/database/postgres"
	"gestion-hospitaliere/internal/modules/auth/dto"

	"github.com/google/uuid"
)

// UserQueries requêtes SQL de l'authentification
var UserQueries = struct {
	GetByEmail    string
	GetByID       string
	InsertUser    string
	InsertPatient string
	InsertMedecin string
	ServiceExists string
}{
	/**
	 * Utilisateur et identifiants de profil, par email (insensible à la casse)
	 * Paramètres: $1 = email
	 */
	GetByEmail: `
		SELECT u.id, u.name, u.email, u.password_hash, u.role, p.id, m.id, u.created_at
		FROM users u
		LEFT JOIN patients p ON p.user_id = u.id
		LEFT JOIN medecins m ON m.user_id = u.id
		WHERE lower(u.email) = lower($1)
	`,

	/**
	 * Paramètres: $1 = user_id
	 */
	GetByID: `
		SELECT u.id, u.name, u.email, u.password_hash, u.role, p.id, m.id, u.created_at
		FROM users u
		LEFT JOIN patients p ON p.user_id = u.id
		LEFT JOIN medecins m ON m.user_id = u.id
		WHERE u.id = $1
	`,

	InsertUser: `
		INSERT INTO users (name, email, password_hash, role)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`,

	InsertPatient: `
		INSERT INTO patients (user_id, date_naissance, adresse, telephone, groupe_sanguin)
		VALUES ($1, $2, NULLIF($3, ''), NULLIF($4, ''), NULLIF($5, ''))
		RETURNING id
	`,

	InsertMedecin: `
		INSERT INTO medecins (user_id, service_id, specialite)
		VALUES ($1, $2, $3)
		RETURNING id
	`,

	ServiceExists: `SELECT EXISTS (SELECT 1 FROM services WHERE id = $1)`,
}

// UserRepository accès PostgreSQL aux comptes utilisateurs
type UserRepository struct {
	db        *postgres.Client
	txManager *postgres.TransactionManager
}

func NewUserRepository(db *postgres.Client, txManager *postgres.TransactionManager) *UserRepository {
	return &UserRepository{db: db, txManager: txManager}
}

// FindByEmail retourne nil, nil si aucun compte ne correspond
func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*dto.UserRecord, error) {
	return r.scanOne(r.db.QueryRow(ctx, UserQueries.GetByEmail, email))
}

// FindByID retourne nil, nil si le compte n'existe pas
func (r *UserRepository) FindByID(ctx context.Context, id uuid.UUID) (*dto.UserRecord, error) {
	return r.scanOne(r.db.QueryRow(ctx, UserQueries.GetByID, id))
}

// Create insère l'utilisateur et son profil dans une même transaction
func (r *UserRepository) Create(ctx context.Context, user dto.NewUser) (*dto.UserRecord, error) {
	record := &dto.UserRecord{
		Name:         user.Name,
		Email:        user.Email,
		PasswordHash: user.PasswordHash,
		Role:         user.Role,
	}

	err := r.txManager.WithTransaction(ctx, func(tx *postgres.Transaction) error {
		err := tx.QueryRow(ctx, UserQueries.InsertUser,
			user.Name, user.Email, user.PasswordHash, user.Role,
		).Scan(&record.ID, &record.CreatedAt)
		if err != nil {
			return fmt.Errorf("insertion utilisateur: %w", err)
		}

		if p := user.Patient; p != nil {
			var patientID uuid.UUID
			if err := tx.QueryRow(ctx, UserQueries.InsertPatient,
				record.ID, p.DateNaissance, p.Adresse, p.Telephone, p.GroupeSanguin,
			).Scan(&patientID); err != nil {
				return fmt.Errorf("insertion profil patient: %w", err)
			}
			record.PatientID = &patientID
		}

		if m := user.Medecin; m != nil {
			var medecinID uuid.UUID
			if err := tx.QueryRow(ctx, UserQueries.InsertMedecin,
				record.ID, m.ServiceID, m.Specialite,
			).Scan(&medecinID); err != nil {
				return fmt.Errorf("insertion profil médecin: %w", err)
			}
			record.MedecinID = &medecinID
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return record, nil
}

func (r *UserRepository) ServiceExists(ctx context.Context, id uuid.UUID) (bool, error) {
	var exists bool
	if err := r.db.QueryRow(ctx, UserQueries.ServiceExists, id).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func (r *UserRepository) scanOne(row rowScanner) (*dto.UserRecord, error) {
	var u dto.UserRecord
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Role, &u.PatientID, &u.MedecinID, &u.CreatedAt)
	if postgres.IsNoRows(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}
