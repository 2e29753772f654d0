package queries

import (
	"context"
	"fmt"

	"gestion-hospitaliere/internal/infrastructure/database/postgres"
	litDTO "gestion-hospitaliere/internal/modules/core-services/bedlifecycle/dto"
	bedQueries "gestion-hospitaliere/internal/modules/core-services/bedlifecycle/queries"
	"gestion-hospitaliere/internal/modules/lits/dto"
	"gestion-hospitaliere/internal/shared/utils"

	"github.com/doug-martin/goqu/v9"
	"github.com/google/uuid"
)

var LitQueries = struct {
	Insert        string
	Update        string
	Delete        string
	ChambreExists string
}{
	Insert: `
		INSERT INTO lits (chambre_id, numero, statut, notes)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`,

	/**
	 * Paramètres: $1 = id, $2 = numero, $3 = statut, $4 = notes (NULL = inchangé)
	 * Le statut d'un lit occupé ne change que par la libération
	 */
	Update: `
		UPDATE lits SET
			numero     = COALESCE($2, numero),
			statut     = COALESCE($3, statut),
			notes      = COALESCE($4, notes),
			updated_at = now()
		WHERE id = $1 AND (statut <> 'occupe' OR $3 IS NULL)
	`,

	Delete: `DELETE FROM lits WHERE id = $1 AND statut <> 'occupe'`,

	ChambreExists: `SELECT EXISTS (SELECT 1 FROM chambres WHERE id = $1)`,
}

type LitRepository struct {
	db        *postgres.Client
	txManager *postgres.TransactionManager
}

func NewLitRepository(db *postgres.Client, txManager *postgres.TransactionManager) *LitRepository {
	return &LitRepository{db: db, txManager: txManager}
}

func (r *LitRepository) List(ctx context.Context, filter dto.LitFilter, page utils.Pagination) ([]litDTO.Lit, int64, error) {
	ds := bedQueries.LitSelect()
	if filter.ChambreID != nil {
		ds = ds.Where(goqu.I("l.chambre_id").Eq(*filter.ChambreID))
	}
	if filter.Statut != "" {
		ds = ds.Where(goqu.I("l.statut").Eq(filter.Statut))
	}

	total, err := postgres.Count(ctx, r.db, ds)
	if err != nil {
		return nil, 0, err
	}
	ordered := ds.Order(goqu.I("c.numero").Asc(), goqu.I("l.numero").Asc())
	lits, err := r.query(ctx, postgres.Page(ordered, page.Limit(), page.Offset()))
	return lits, total, err
}

// Available lits disponibles des chambres ouvertes
func (r *LitRepository) Available(ctx context.Context) ([]litDTO.Lit, error) {
	ds := bedQueries.LitSelect().
		Where(
			goqu.I("l.statut").Eq(litDTO.StatutDisponible),
			goqu.I("c.disponible").IsTrue(),
		).
		Order(goqu.I("c.numero").Asc(), goqu.I("l.numero").Asc())
	return r.query(ctx, ds)
}

// FindByID nil, nil si absent
func (r *LitRepository) FindByID(ctx context.Context, id uuid.UUID) (*litDTO.Lit, error) {
	return bedQueries.FindLit(ctx, r.db, id)
}

func (r *LitRepository) ChambreExists(ctx context.Context, id uuid.UUID) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, LitQueries.ChambreExists, id).Scan(&exists)
	return exists, err
}

func (r *LitRepository) Create(ctx context.Context, n dto.NewLit) (*litDTO.Lit, error) {
	var created *litDTO.Lit
	err := r.txManager.WithTransaction(ctx, func(tx *postgres.Transaction) error {
		var id uuid.UUID
		if err := tx.QueryRow(ctx, LitQueries.Insert, n.ChambreID, n.Numero, n.Statut, n.Notes).Scan(&id); err != nil {
			return err
		}
		var err error
		created, err = bedQueries.FindLit(ctx, tx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// Update false si le lit est absent, ou occupé avec un changement de statut
func (r *LitRepository) Update(ctx context.Context, id uuid.UUID, ch dto.LitChanges) (bool, error) {
	affected, err := r.db.Exec(ctx, LitQueries.Update, id, ch.Numero, ch.Statut, ch.Notes)
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

// Delete false si le lit est absent ou occupé
func (r *LitRepository) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	affected, err := r.db.Exec(ctx, LitQueries.Delete, id)
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

func (r *LitRepository) query(ctx context.Context, ds *goqu.SelectDataset) ([]litDTO.Lit, error) {
	query, args, err := ds.ToSQL()
	if err != nil {
		return nil, fmt.Errorf("construction requête lits: %w", err)
	}
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	lits := []litDTO.Lit{}
	for rows.Next() {
		l, err := bedQueries.ScanLit(rows)
		if err != nil {
			return nil, err
		}
		lits = append(lits, *l)
	}
	return lits, rows.Err()
}
