package bootstrap

import (
	"context"
	"fmt"
	"time"

	"gestion-hospitaliere/internal/app/config"
	"gestion-hospitaliere/internal/infrastructure/database/seeds"
	"gestion-hospitaliere/internal/shared/apperror"

	"go.uber.org/fx"
	"go.uber.org/zap"
)

type ExtensionEnsurer interface {
	EnsureRequiredExtensions(ctx context.Context) error
}

type MigrationApplier interface {
	ApplyMigrations(ctx context.Context) (int, error)
}

// AdminProvisioner crée le compte administrateur par défaut
type AdminProvisioner interface {
	ProvisionAdmin(ctx context.Context, name, email, password string) error
}

// BootstrapSystem prépare la base avant le démarrage du serveur HTTP:
// extensions, migrations, données de référence puis administrateur par défaut.
type BootstrapSystem struct {
	extensions ExtensionEnsurer
	migrator   MigrationApplier
	seeder     seeds.SeedingService
	admins     AdminProvisioner
	config     *config.Config
	log        *zap.Logger
	timeout    time.Duration
}

// BootstrapResult résultat d'exécution, une entrée par phase exécutée
type BootstrapResult struct {
	TotalDuration  time.Duration
	PhasesExecuted []PhaseResult
}

type PhaseResult struct {
	Phase    string
	Skipped  bool
	Duration time.Duration
	Error    string
}

func NewBootstrapSystem(
	extensions ExtensionEnsurer,
	migrator MigrationApplier,
	seeder seeds.SeedingService,
	admins AdminProvisioner,
	cfg *config.Config,
	log *zap.Logger,
) *BootstrapSystem {
	return &BootstrapSystem{
		extensions: extensions,
		migrator:   migrator,
		seeder:     seeder,
		admins:     admins,
		config:     cfg,
		log:        log.Named("bootstrap"),
		timeout:    5 * time.Minute,
	}
}

type phase struct {
	name    string
	enabled bool
	run     func(ctx context.Context) error
}

// Execute enchaîne les phases et s'arrête à la première en échec
func (bs *BootstrapSystem) Execute(ctx context.Context) (*BootstrapResult, error) {
	ctx, cancel := context.WithTimeout(ctx, bs.timeout)
	defer cancel()

	start := time.Now()
	result := &BootstrapResult{}

	for _, p := range bs.phases() {
		if !p.enabled {
			result.PhasesExecuted = append(result.PhasesExecuted, PhaseResult{Phase: p.name, Skipped: true})
			continue
		}

		phaseStart := time.Now()
		err := p.run(ctx)
		pr := PhaseResult{Phase: p.name, Duration: time.Since(phaseStart)}
		if err != nil {
			pr.Error = err.Error()
			result.PhasesExecuted = append(result.PhasesExecuted, pr)
			result.TotalDuration = time.Since(start)
			bs.log.Error("phase échouée", zap.String("phase", p.name), zap.Error(err))
			return result, fmt.Errorf("bootstrap, phase %s: %w", p.name, err)
		}
		result.PhasesExecuted = append(result.PhasesExecuted, pr)
		bs.log.Info("phase terminée", zap.String("phase", p.name), zap.Duration("duration", pr.Duration))
	}

	result.TotalDuration = time.Since(start)
	return result, nil
}

func (bs *BootstrapSystem) phases() []phase {
	admin := bs.config.Auth
	return []phase{
		{name: "extensions", enabled: bs.config.Database.AutoMigrate, run: bs.extensions.EnsureRequiredExtensions},
		{name: "migrations", enabled: bs.config.Database.AutoMigrate, run: bs.migrate},
		{name: "seeding", enabled: bs.config.Database.SeedData, run: bs.seed},
		{
			name:    "admin",
			enabled: admin.DefaultAdminEmail != "" && admin.DefaultAdminPass != "",
			run: func(ctx context.Context) error {
				return bs.provisionAdmin(ctx, admin.DefaultAdminEmail, admin.DefaultAdminPass)
			},
		},
	}
}

func (bs *BootstrapSystem) migrate(ctx context.Context) error {
	applied, err := bs.migrator.ApplyMigrations(ctx)
	if err != nil {
		return err
	}
	bs.log.Info("migrations appliquées", zap.Int("count", applied))
	return nil
}

func (bs *BootstrapSystem) seed(ctx context.Context) error {
	status, err := bs.seeder.CheckSeedDataExists(ctx)
	if err != nil {
		return err
	}
	if status.AllDataExists {
		return nil
	}

	inserted, err := bs.seeder.SeedServices(ctx)
	if err != nil {
		return err
	}
	bs.log.Info("données de référence insérées", zap.Strings("seeds", status.GetMissingSeeds()), zap.Int("count", inserted))
	return nil
}

// provisionAdmin un administrateur déjà présent n'est pas une erreur au démarrage
func (bs *BootstrapSystem) provisionAdmin(ctx context.Context, email, password string) error {
	err := bs.admins.ProvisionAdmin(ctx, "Administrateur", email, password)
	if apperror.IsKind(err, apperror.KindConflict) {
		return nil
	}
	return err
}

// RegisterBootstrapLifecycle exécute le bootstrap avant le démarrage du serveur HTTP
func RegisterBootstrapLifecycle(lc fx.Lifecycle, bootstrap *BootstrapSystem) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			result, err := bootstrap.Execute(context.WithoutCancel(ctx))
			if err != nil {
				return err
			}
			bootstrap.log.Info("bootstrap terminé", zap.Duration("duration", result.TotalDuration))
			return nil
		},
	})
}
