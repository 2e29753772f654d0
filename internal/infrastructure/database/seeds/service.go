package seeds

import (
	"context"
	"embed"
	"encoding/json"
	"fmt"

	"gestion-hospitaliere/internal/infrastructure/database/postgres"

	"go.uber.org/zap"
)

//go:embed data/services.json
var seedFiles embed.FS

type seedingService struct {
	pgClient  *postgres.Client
	txManager *postgres.TransactionManager
	logger    *zap.Logger
}

func NewSeedingService(pgClient *postgres.Client, txManager *postgres.TransactionManager, log *zap.Logger) SeedingService {
	return &seedingService{
		pgClient:  pgClient,
		txManager: txManager,
		logger:    log.Named("seeds"),
	}
}

func (s *seedingService) CheckSeedDataExists(ctx context.Context) (*SeedDataStatus, error) {
	var count int
	if err := s.pgClient.QueryRow(ctx, `SELECT COUNT(*) FROM services`).Scan(&count); err != nil {
		return nil, fmt.Errorf("erreur vérification services: %w", err)
	}

	status := &SeedDataStatus{ServicesExist: count > 0}
	status.AllDataExists = status.ServicesExist
	return status, nil
}

// SeedServices insère les services de référence (idempotent sur le nom)
func (s *seedingService) SeedServices(ctx context.Context) (int, error) {
	data, err := LoadServices()
	if err != nil {
		return 0, err
	}

	inserted := 0
	err = s.txManager.WithTransaction(ctx, func(tx *postgres.Transaction) error {
		for _, service := range data.Services {
			affected, err := tx.Exec(ctx, `
				INSERT INTO services (nom, description)
				VALUES ($1, $2)
				ON CONFLICT (nom) DO NOTHING
			`, service.Nom, service.Description)
			if err != nil {
				return fmt.Errorf("insertion service %s: %w", service.Nom, err)
			}
			inserted += int(affected)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	s.logger.Info("Services de référence insérés", zap.Int("count", inserted))
	return inserted, nil
}

// LoadServices lit le fichier services.json embarqué
func LoadServices() (*ServicesJSONStructure, error) {
	const name = "data/services.json"

	content, err := seedFiles.ReadFile(name)
	if err != nil {
		return nil, ErrInvalidSeedFile(name, err)
	}

	var data ServicesJSONStructure
	if err := json.Unmarshal(content, &data); err != nil {
		return nil, ErrInvalidSeedFile(name, err)
	}
	if len(data.Services) == 0 {
		return nil, ErrInvalidSeedFile(name, fmt.Errorf("aucun service"))
	}
	return &data, nil
}
