package queries

import (
	"context"

	"gestion-hospitaliere/internal/infrastructure/database/postgres"
	"gestion-hospitaliere/internal/modules/services-hospitaliers/dto"

	"github.com/google/uuid"
)

var ServiceQueries = struct {
	List    string
	GetByID string
	Insert  string
	Update  string
	Delete  string
}{
	List: `
		SELECT s.id, s.nom, s.description,
			(SELECT count(*) FROM medecins m WHERE m.service_id = s.id),
			(SELECT count(*) FROM chambres c WHERE c.service_id = s.id),
			s.created_at, s.updated_at
		FROM services s
		ORDER BY s.nom
	`,

	GetByID: `
		SELECT s.id, s.nom, s.description,
			(SELECT count(*) FROM medecins m WHERE m.service_id = s.id),
			(SELECT count(*) FROM chambres c WHERE c.service_id = s.id),
			s.created_at, s.updated_at
		FROM services s
		WHERE s.id = $1
	`,

	Insert: `
		INSERT INTO services (nom, description)
		VALUES ($1, $2)
		RETURNING id, nom, description, 0, 0, created_at, updated_at
	`,

	/**
	 * Paramètres: $1 = id, $2 = nom, $3 = description
	 */
	Update: `
		UPDATE services s SET nom = $2, description = $3, updated_at = now()
		WHERE s.id = $1
		RETURNING s.id, s.nom, s.description,
			(SELECT count(*) FROM medecins m WHERE m.service_id = s.id),
			(SELECT count(*) FROM chambres c WHERE c.service_id = s.id),
			s.created_at, s.updated_at
	`,

	Delete: `DELETE FROM services WHERE id = $1`,
}

type ServiceRepository struct {
	db *postgres.Client
}

func NewServiceRepository(db *postgres.Client) *ServiceRepository {
	return &ServiceRepository{db: db}
}

func (r *ServiceRepository) List(ctx context.Context) ([]dto.Service, error) {
	rows, err := r.db.Query(ctx, ServiceQueries.List)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	services := []dto.Service{}
	for rows.Next() {
		s, err := scanService(rows)
		if err != nil {
			return nil, err
		}
		services = append(services, *s)
	}
	return services, rows.Err()
}

// FindByID nil, nil si absent
func (r *ServiceRepository) FindByID(ctx context.Context, id uuid.UUID) (*dto.Service, error) {
	return scanOptional(r.db.QueryRow(ctx, ServiceQueries.GetByID, id))
}

func (r *ServiceRepository) Create(ctx context.Context, req dto.ServiceRequest) (*dto.Service, error) {
	return scanService(r.db.QueryRow(ctx, ServiceQueries.Insert, req.Nom, req.Description))
}

// Update nil, nil si absent
func (r *ServiceRepository) Update(ctx context.Context, id uuid.UUID, req dto.ServiceRequest) (*dto.Service, error) {
	return scanOptional(r.db.QueryRow(ctx, ServiceQueries.Update, id, req.Nom, req.Description))
}

func (r *ServiceRepository) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	affected, err := r.db.Exec(ctx, ServiceQueries.Delete, id)
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanService(row rowScanner) (*dto.Service, error) {
	var s dto.Service
	if err := row.Scan(&s.ID, &s.Nom, &s.Description, &s.MedecinsCount, &s.ChambresCount, &s.CreatedAt, &s.UpdatedAt); err != nil {
		return nil, err
	}
	return &s, nil
}

func scanOptional(row rowScanner) (*dto.Service, error) {
	s, err := scanService(row)
	if postgres.IsNoRows(err) {
		return nil, nil
	}
	return s, err
}
