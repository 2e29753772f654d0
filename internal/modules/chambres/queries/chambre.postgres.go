package queries

import (
	"context"
	"fmt"

	"gestion-hospitaliere/internal/infrastructure/database/postgres"
	"gestion-hospitaliere/internal/modules/chambres/dto"
	litDTO "gestion-hospitaliere/internal/modules/core-services/bedlifecycle/dto"
	litQueries "gestion-hospitaliere/internal/modules/core-services/bedlifecycle/queries"
	"gestion-hospitaliere/internal/shared/utils"

	"github.com/doug-martin/goqu/v9"
	"github.com/google/uuid"
)

var ChambreQueries = struct {
	Insert        string
	Update        string
	Delete        string
	ServiceExists string
}{
	Insert: `
		INSERT INTO chambres (numero, service_id, type, capacite, tarif_journalier, disponible, equipements, notes)
		VALUES ($1, $2, $3, $4, $5, COALESCE($6, TRUE), COALESCE($7::text[], '{}'), $8)
		RETURNING id
	`,

	/**
	 * Paramètres: $1 = id, $2..$9 = colonnes (NULL = inchangé)
	 */
	Update: `
		UPDATE chambres SET
			numero           = COALESCE($2, numero),
			service_id       = COALESCE($3, service_id),
			type             = COALESCE($4, type),
			capacite         = COALESCE($5, capacite),
			tarif_journalier = COALESCE($6, tarif_journalier),
			disponible       = COALESCE($7, disponible),
			equipements      = COALESCE($8::text[], equipements),
			notes            = COALESCE($9, notes),
			updated_at       = now()
		WHERE id = $1
	`,

	// les lits suivent la chambre (ON DELETE CASCADE) ; aucune ligne si un lit est occupé
	Delete: `
		DELETE FROM chambres c
		WHERE c.id = $1
		  AND NOT EXISTS (SELECT 1 FROM lits l WHERE l.chambre_id = c.id AND l.statut = 'occupe')
	`,

	ServiceExists: `SELECT EXISTS (SELECT 1 FROM services WHERE id = $1)`,
}

type ChambreRepository struct {
	db        *postgres.Client
	txManager *postgres.TransactionManager
}

func NewChambreRepository(db *postgres.Client, txManager *postgres.TransactionManager) *ChambreRepository {
	return &ChambreRepository{db: db, txManager: txManager}
}

func baseSelect() *goqu.SelectDataset {
	return postgres.From(goqu.T("chambres").As("c")).
		Select(
			"c.id", "c.numero", "s.id", "s.nom", "c.type", "c.capacite", "c.tarif_journalier",
			"c.disponible", "c.equipements", "c.notes",
			goqu.L("(SELECT COUNT(*) FROM lits l WHERE l.chambre_id = c.id)"),
			goqu.L("(SELECT COUNT(*) FROM lits l WHERE l.chambre_id = c.id AND l.statut = 'disponible')"),
			goqu.L("(SELECT COUNT(*) FROM lits l WHERE l.chambre_id = c.id AND l.statut = 'occupe')"),
			"c.created_at", "c.updated_at",
		).
		Join(goqu.T("services").As("s"), goqu.On(goqu.I("s.id").Eq(goqu.I("c.service_id"))))
}

func (r *ChambreRepository) List(ctx context.Context, filter dto.ChambreFilter, page utils.Pagination) ([]dto.Chambre, int64, error) {
	ds := baseSelect()
	if filter.ServiceID != nil {
		ds = ds.Where(goqu.I("c.service_id").Eq(*filter.ServiceID))
	}
	if filter.Type != "" {
		ds = ds.Where(goqu.I("c.type").Eq(filter.Type))
	}
	if filter.Disponible != nil {
		ds = ds.Where(goqu.I("c.disponible").Eq(*filter.Disponible))
	}

	total, err := postgres.Count(ctx, r.db, ds)
	if err != nil {
		return nil, 0, err
	}
	chambres, err := r.query(ctx, postgres.Page(ds.Order(goqu.I("c.numero").Asc()), page.Limit(), page.Offset()))
	return chambres, total, err
}

// Available chambres ouvertes disposant d'au moins un lit disponible
func (r *ChambreRepository) Available(ctx context.Context) ([]dto.Chambre, error) {
	ds := baseSelect().
		Where(
			goqu.I("c.disponible").IsTrue(),
			goqu.L("EXISTS (SELECT 1 FROM lits l WHERE l.chambre_id = c.id AND l.statut = 'disponible')"),
		).
		Order(goqu.I("c.numero").Asc())
	return r.query(ctx, ds)
}

// FindByID chambre et ses lits, nil, nil si absente
func (r *ChambreRepository) FindByID(ctx context.Context, id uuid.UUID) (*dto.Chambre, error) {
	return findByID(ctx, r.db, id)
}

func (r *ChambreRepository) ServiceExists(ctx context.Context, id uuid.UUID) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, ChambreQueries.ServiceExists, id).Scan(&exists)
	return exists, err
}

func (r *ChambreRepository) Create(ctx context.Context, v dto.ChambreValues) (*dto.Chambre, error) {
	var created *dto.Chambre
	err := r.txManager.WithTransaction(ctx, func(tx *postgres.Transaction) error {
		var id uuid.UUID
		if err := tx.QueryRow(ctx, ChambreQueries.Insert,
			v.Numero, v.ServiceID, v.Type, v.Capacite, v.TarifJournalier, v.Disponible, v.Equipements, v.Notes,
		).Scan(&id); err != nil {
			return err
		}
		var err error
		created, err = findByID(ctx, tx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// Update nil, nil si absente
func (r *ChambreRepository) Update(ctx context.Context, id uuid.UUID, v dto.ChambreValues) (*dto.Chambre, error) {
	var updated *dto.Chambre
	err := r.txManager.WithTransaction(ctx, func(tx *postgres.Transaction) error {
		affected, err := tx.Exec(ctx, ChambreQueries.Update,
			id, v.Numero, v.ServiceID, v.Type, v.Capacite, v.TarifJournalier, v.Disponible, v.Equipements, v.Notes,
		)
		if err != nil || affected == 0 {
			return err
		}
		updated, err = findByID(ctx, tx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (r *ChambreRepository) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	affected, err := r.db.Exec(ctx, ChambreQueries.Delete, id)
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

func (r *ChambreRepository) query(ctx context.Context, ds *goqu.SelectDataset) ([]dto.Chambre, error) {
	query, args, err := ds.ToSQL()
	if err != nil {
		return nil, fmt.Errorf("construction requête chambres: %w", err)
	}
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	chambres := []dto.Chambre{}
	for rows.Next() {
		c, err := scanChambre(rows)
		if err != nil {
			return nil, err
		}
		chambres = append(chambres, *c)
	}
	return chambres, rows.Err()
}

func findByID(ctx context.Context, q postgres.Querier, id uuid.UUID) (*dto.Chambre, error) {
	query, args, err := baseSelect().Where(goqu.I("c.id").Eq(id)).ToSQL()
	if err != nil {
		return nil, fmt.Errorf("construction requête chambre: %w", err)
	}
	c, err := scanChambre(q.QueryRow(ctx, query, args...))
	if postgres.IsNoRows(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	lits, err := litsOf(ctx, q, id)
	if err != nil {
		return nil, err
	}
	c.Lits = lits
	return c, nil
}

func litsOf(ctx context.Context, q postgres.Querier, chambreID uuid.UUID) ([]litDTO.Lit, error) {
	query, args, err := litQueries.LitSelect().
		Where(goqu.I("l.chambre_id").Eq(chambreID)).
		Order(goqu.I("l.numero").Asc()).
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("construction requête lits: %w", err)
	}
	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	lits := []litDTO.Lit{}
	for rows.Next() {
		l, err := litQueries.ScanLit(rows)
		if err != nil {
			return nil, err
		}
		lits = append(lits, *l)
	}
	return lits, rows.Err()
}

func scanChambre(row litQueries.RowScanner) (*dto.Chambre, error) {
	var c dto.Chambre
	err := row.Scan(
		&c.ID, &c.Numero, &c.Service.ID, &c.Service.Nom, &c.Type, &c.Capacite, &c.TarifJournalier,
		&c.Disponible, &c.Equipements, &c.Notes,
		&c.LitsCount, &c.LitsDisponiblesCount, &c.LitsOccupesCount,
		&c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if c.Equipements == nil {
		c.Equipements = []string{}
	}
	c.TauxOccupation = litDTO.TauxOccupation(c.LitsOccupesCount, c.LitsCount)
	return &c, nil
}
