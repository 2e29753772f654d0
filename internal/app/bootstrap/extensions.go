package bootstrap

import (
	"context"
	"fmt"

	"gestion-hospitaliere/internal/infrastructure/database/postgres"

	"go.uber.org/zap"
)

// requiredExtensions gen_random_uuid() provient de pgcrypto
var requiredExtensions = []string{"pgcrypto"}

// ExtensionManager crée les extensions PostgreSQL nécessaires au schéma
type ExtensionManager struct {
	pgClient *postgres.Client
	log      *zap.Logger
}

func NewExtensionManager(pgClient *postgres.Client, log *zap.Logger) *ExtensionManager {
	return &ExtensionManager{pgClient: pgClient, log: log.Named("extensions")}
}

func (em *ExtensionManager) EnsureRequiredExtensions(ctx context.Context) error {
	for _, name := range requiredExtensions {
		if err := em.ensureExtension(ctx, name); err != nil {
			return err
		}
	}
	return nil
}

func (em *ExtensionManager) ensureExtension(ctx context.Context, name string) error {
	exists, err := em.checkExtensionExists(ctx, name)
	if err != nil {
		return fmt.Errorf("vérification extension %s: %w", name, err)
	}
	if exists {
		em.log.Debug("extension déjà installée", zap.String("extension", name))
		return nil
	}

	if _, err := em.pgClient.Exec(ctx, fmt.Sprintf(`CREATE EXTENSION IF NOT EXISTS "%s"`, name)); err != nil {
		return fmt.Errorf("création extension %s: %w", name, err)
	}
	em.log.Info("extension créée", zap.String("extension", name))
	return nil
}

func (em *ExtensionManager) checkExtensionExists(ctx context.Context, name string) (bool, error) {
	var exists bool
	err := em.pgClient.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM pg_extension WHERE extname = $1)`, name).Scan(&exists)
	return exists, err
}
