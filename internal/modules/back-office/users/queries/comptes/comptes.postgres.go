package comptes

import (
	"context"
	"fmt"

	"gestion-hospitaliere/internal/infrastructure/database/postgres"
	dto "gestion-hospitaliere/internal/modules/back-office/users/dto/comptes"
	"gestion-hospitaliere/internal/shared/utils"

	"github.com/doug-martin/goqu/v9"
	"github.com/doug-martin/goqu/v9/exp"
	"github.com/google/uuid"
)

// ComptesQueries requêtes SQL d'administration des comptes
var ComptesQueries = struct {
	UpdateRole string
	InsertUser string
}{
	/**
	 * Paramètres: $1 = user_id, $2 = role
	 */
	UpdateRole: `
		UPDATE users SET role = $2, updated_at = NOW()
		WHERE id = $1
	`,

	/**
	 * Paramètres: $1 = name, $2 = email, $3 = password_hash, $4 = role
	 */
	InsertUser: `
		INSERT INTO users (name, email, password_hash, role)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at
	`,
}

// ComptesRepository accès PostgreSQL aux comptes, côté back-office
type ComptesRepository struct {
	db *postgres.Client
}

func NewComptesRepository(db *postgres.Client) *ComptesRepository {
	return &ComptesRepository{db: db}
}

func accountSelect() *goqu.SelectDataset {
	return postgres.From(goqu.T("users").As("u")).
		Select("u.id", "u.name", "u.email", "u.role", "p.id", "m.id", "u.created_at", "u.updated_at").
		LeftJoin(goqu.T("patients").As("p"), goqu.On(goqu.I("p.user_id").Eq(goqu.I("u.id")))).
		LeftJoin(goqu.T("medecins").As("m"), goqu.On(goqu.I("m.user_id").Eq(goqu.I("u.id"))))
}

func (r *ComptesRepository) List(ctx context.Context, filter dto.UserFilter, page utils.Pagination) ([]dto.UserAccount, int64, error) {
	ds := accountSelect()
	if filter.Role != "" {
		ds = ds.Where(goqu.I("u.role").Eq(filter.Role))
	}
	if filter.Search != "" {
		ds = ds.Where(postgres.Search(filter.Search, "u.name", "u.email"))
	}

	total, err := postgres.Count(ctx, r.db, ds)
	if err != nil {
		return nil, 0, err
	}

	query, args, err := postgres.Page(ds.Order(goqu.I("u.created_at").Desc()), page.Limit(), page.Offset()).ToSQL()
	if err != nil {
		return nil, 0, fmt.Errorf("construction requête comptes: %w", err)
	}
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	accounts := []dto.UserAccount{}
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, 0, err
		}
		accounts = append(accounts, *a)
	}
	return accounts, total, rows.Err()
}

// FindByID nil, nil si absent
func (r *ComptesRepository) FindByID(ctx context.Context, id uuid.UUID) (*dto.UserAccount, error) {
	return r.findOne(ctx, goqu.I("u.id").Eq(id))
}

// FindByEmail nil, nil si absent (comparaison insensible à la casse)
func (r *ComptesRepository) FindByEmail(ctx context.Context, email string) (*dto.UserAccount, error) {
	return r.findOne(ctx, goqu.L("lower(u.email) = lower(?)", email))
}

func (r *ComptesRepository) findOne(ctx context.Context, cond exp.Expression) (*dto.UserAccount, error) {
	query, args, err := accountSelect().Where(cond).ToSQL()
	if err != nil {
		return nil, fmt.Errorf("construction requête compte: %w", err)
	}
	a, err := scanAccount(r.db.QueryRow(ctx, query, args...))
	if postgres.IsNoRows(err) {
		return nil, nil
	}
	return a, err
}

// UpdateRole false si le compte n'existe pas
func (r *ComptesRepository) UpdateRole(ctx context.Context, id uuid.UUID, role string) (bool, error) {
	affected, err := r.db.Exec(ctx, ComptesQueries.UpdateRole, id, role)
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

func (r *ComptesRepository) Create(ctx context.Context, name, email, passwordHash, role string) (*dto.UserAccount, error) {
	a := &dto.UserAccount{Name: name, Email: email, Role: role}
	err := r.db.QueryRow(ctx, ComptesQueries.InsertUser, name, email, passwordHash, role).
		Scan(&a.ID, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return a, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanAccount(row rowScanner) (*dto.UserAccount, error) {
	var a dto.UserAccount
	if err := row.Scan(&a.ID, &a.Name, &a.Email, &a.Role, &a.PatientID, &a.MedecinID, &a.CreatedAt, &a.UpdatedAt); err != nil {
		return nil, err
	}
	return &a, nil
}
