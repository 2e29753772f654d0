package app

import (
	"context"

	"gestion-hospitaliere/internal/app/bootstrap"
	"gestion-hospitaliere/internal/app/config"
	"gestion-hospitaliere/internal/infrastructure/database"
	"gestion-hospitaliere/internal/infrastructure/database/migrations"
	"gestion-hospitaliere/internal/infrastructure/database/postgres"
	"gestion-hospitaliere/internal/infrastructure/database/redis"
	"gestion-hospitaliere/internal/infrastructure/database/seeds"
	"gestion-hospitaliere/internal/infrastructure/logger"
	"gestion-hospitaliere/internal/infrastructure/mailer"
	"gestion-hospitaliere/internal/infrastructure/metrics"
	"gestion-hospitaliere/internal/infrastructure/storage"
	"gestion-hospitaliere/internal/modules/auth"
	"gestion-hospitaliere/internal/modules/back-office/users"
	comptes "gestion-hospitaliere/internal/modules/back-office/users/services/comptes"
	"gestion-hospitaliere/internal/modules/chambres"
	core_services "gestion-hospitaliere/internal/modules/core-services"
	"gestion-hospitaliere/internal/modules/dashboard"
	"gestion-hospitaliere/internal/modules/factures"
	"gestion-hospitaliere/internal/modules/lits"
	"gestion-hospitaliere/internal/modules/medecins"
	"gestion-hospitaliere/internal/modules/notifications"
	"gestion-hospitaliere/internal/modules/patients"
	"gestion-hospitaliere/internal/modules/prescriptions"
	"gestion-hospitaliere/internal/modules/rendezvous"
	services_hospitaliers "gestion-hospitaliere/internal/modules/services-hospitaliers"
	"gestion-hospitaliere/internal/modules/system"
	"gestion-hospitaliere/internal/shared/middleware"

	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"
)

// ConfigModule configuration et logger, communs au serveur et aux commandes CLI
var ConfigModule = fx.Options(
	fx.Provide(config.NewConfig),
	fx.Provide(config.NewPostgresConfig),
	fx.Provide(config.NewRedisConfig),
	fx.Provide(config.NewMongoConfig),
	fx.Provide(config.NewLoggerConfig),
	fx.Provide(config.NewMailerConfig),
	fx.Provide(config.NewStorageConfig),

	logger.Module,
	fx.WithLogger(FxLogger),
)

// MigrateModule dépendances de la commande migrate
var MigrateModule = fx.Options(
	ConfigModule,
	postgres.Module,
	migrations.Module,
	seeds.Module,
	fx.Provide(bootstrap.NewExtensionManager),
)

// AdminModule dépendances de la commande create-admin
var AdminModule = fx.Options(
	ConfigModule,
	postgres.Module,
	redis.Module,
	auth.PrincipalModule,
	users.ServiceModule,
)

var AppModule = fx.Options(
	ConfigModule,

	// Infrastructure
	database.Module,
	storage.Module,
	mailer.Module,
	metrics.Module,

	// Middlewares partagés (après infrastructure, avant modules métier)
	middleware.Module,

	// Modules métier
	auth.Module,
	core_services.Module,
	services_hospitaliers.Module,
	patients.Module,
	medecins.Module,
	chambres.Module,
	lits.Module,
	rendezvous.Module,
	notifications.Module,
	prescriptions.Module,
	factures.Module,
	dashboard.Module,
	users.Module,
	system.Module,

	// Bootstrap avant le serveur HTTP
	fx.Provide(
		fx.Annotate(bootstrap.NewExtensionManager, fx.As(new(bootstrap.ExtensionEnsurer))),
		func(m *migrations.Migrator) bootstrap.MigrationApplier { return m },
		NewAdminProvisioner,
		bootstrap.NewBootstrapSystem,
	),
	fx.Invoke(bootstrap.RegisterBootstrapLifecycle),

	fx.Provide(NewRouter),
	fx.Provide(NewApplication),
	fx.Invoke((*Application).Start),
)

// FxLogger événements fx dans le logger applicatif
func FxLogger(log *zap.Logger) fxevent.Logger {
	return &fxevent.ZapLogger{Logger: log.Named("fx")}
}

type adminProvisioner struct {
	comptes *comptes.ComptesService
}

// NewAdminProvisioner compte administrateur par défaut créé au démarrage
func NewAdminProvisioner(c *comptes.ComptesService) bootstrap.AdminProvisioner {
	return adminProvisioner{comptes: c}
}

func (p adminProvisioner) ProvisionAdmin(ctx context.Context, name, email, password string) error {
	_, err := p.comptes.CreateOrPromoteAdmin(ctx, name, email, password)
	return err
}
