package database

import (
	"gestion-hospitaliere/internal/infrastructure/database/migrations"
	"gestion-hospitaliere/internal/infrastructure/database/mongodb"
	"gestion-hospitaliere/internal/infrastructure/database/postgres"
	"gestion-hospitaliere/internal/infrastructure/database/redis"
	"gestion-hospitaliere/internal/infrastructure/database/seeds"

	"go.uber.org/fx"
)

var Module = fx.Options(
	postgres.Module,
	redis.Module,
	mongodb.Module,
	migrations.Module,
	seeds.Module,
)
