package migrations

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"sort"
	"strings"
	"time"

	"gestion-hospitaliere/internal/infrastructure/database/postgres"

	"go.uber.org/zap"
)

//go:embed sql/*.sql
var migrationFiles embed.FS

const createHistoryTable = `
	CREATE TABLE IF NOT EXISTS schema_migrations (
		version    VARCHAR(255) PRIMARY KEY,
		applied_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)
`

// Migration fichier SQL versionné embarqué dans le binaire
type Migration struct {
	Version string
	SQL     string
}

// Status état courant des migrations
type Status struct {
	Applied []string `json:"applied"`
	Pending []string `json:"pending"`
}

// Migrator applique les migrations SQL embarquées, chacune dans sa transaction
type Migrator struct {
	client    *postgres.Client
	txManager *postgres.TransactionManager
	logger    *zap.Logger
	source    fs.FS
}

func NewMigrator(client *postgres.Client, txManager *postgres.TransactionManager, log *zap.Logger) *Migrator {
	return &Migrator{
		client:    client,
		txManager: txManager,
		logger:    log.Named("migrations"),
		source:    migrationFiles,
	}
}

// Load lit et trie les migrations disponibles
func Load(source fs.FS) ([]Migration, error) {
	entries, err := fs.ReadDir(source, "sql")
	if err != nil {
		return nil, fmt.Errorf("lecture répertoire migrations: %w", err)
	}

	migrations := make([]Migration, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".sql") {
			continue
		}
		content, err := fs.ReadFile(source, "sql/"+entry.Name())
		if err != nil {
			return nil, fmt.Errorf("lecture migration %s: %w", entry.Name(), err)
		}
		migrations = append(migrations, Migration{
			Version: strings.TrimSuffix(entry.Name(), ".sql"),
			SQL:     string(content),
		})
	}

	sort.Slice(migrations, func(i, j int) bool {
		return migrations[i].Version < migrations[j].Version
	})
	return migrations, nil
}

// GetStatus compare les migrations embarquées à l'historique en base
func (m *Migrator) GetStatus(ctx context.Context) (*Status, error) {
	if _, err := m.client.Exec(ctx, createHistoryTable); err != nil {
		return nil, fmt.Errorf("création table schema_migrations: %w", err)
	}

	applied, err := m.appliedVersions(ctx)
	if err != nil {
		return nil, err
	}

	available, err := Load(m.source)
	if err != nil {
		return nil, err
	}

	status := &Status{Applied: []string{}, Pending: []string{}}
	for _, migration := range available {
		if applied[migration.Version] {
			status.Applied = append(status.Applied, migration.Version)
		} else {
			status.Pending = append(status.Pending, migration.Version)
		}
	}
	return status, nil
}

// ApplyMigrations applique toutes les migrations en attente
func (m *Migrator) ApplyMigrations(ctx context.Context) (int, error) {
	status, err := m.GetStatus(ctx)
	if err != nil {
		return 0, fmt.Errorf("échec récupération statut pré-migration: %w", err)
	}

	m.logger.Info("Migrations en attente détectées", zap.Int("count", len(status.Pending)))
	if len(status.Pending) == 0 {
		return 0, nil
	}

	available, err := Load(m.source)
	if err != nil {
		return 0, err
	}
	pending := make(map[string]bool, len(status.Pending))
	for _, version := range status.Pending {
		pending[version] = true
	}

	applied := 0
	for _, migration := range available {
		if !pending[migration.Version] {
			continue
		}

		startTime := time.Now()
		err := m.txManager.WithTransaction(ctx, func(tx *postgres.Transaction) error {
			if _, err := tx.Exec(ctx, migration.SQL); err != nil {
				return err
			}
			_, err := tx.Exec(ctx, `INSERT INTO schema_migrations (version) VALUES ($1)`, migration.Version)
			return err
		})
		if err != nil {
			m.logger.Error("Échec application migration",
				zap.String("version", migration.Version),
				zap.Error(err))
			return applied, fmt.Errorf("échec application migration %s: %w", migration.Version, err)
		}

		applied++
		m.logger.Info("Migration appliquée",
			zap.String("version", migration.Version),
			zap.Int64("duration_ms", time.Since(startTime).Milliseconds()))
	}

	return applied, nil
}

func (m *Migrator) appliedVersions(ctx context.Context) (map[string]bool, error) {
	rows, err := m.client.Query(ctx, `SELECT version FROM schema_migrations`)
	if err != nil {
		return nil, fmt.Errorf("lecture historique migrations: %w", err)
	}
	defer rows.Close()

	applied := map[string]bool{}
	for rows.Next() {
		var version string
		if err := rows.Scan(&version); err != nil {
			return nil, err
		}
		applied[version] = true
	}
	return applied, rows.Err()
}
