package system

import (
	"gestion-hospitaliere/internal/infrastructure/database/mongodb"
	"gestion-hospitaliere/internal/infrastructure/database/redis"
	"gestion-hospitaliere/internal/infrastructure/metrics"
	"gestion-hospitaliere/internal/modules/system/controllers"
	"gestion-hospitaliere/internal/modules/system/queries"
	"gestion-hospitaliere/internal/modules/system/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/fx"
)

// Module sondes de disponibilité et exposition des métriques
var Module = fx.Options(
	fx.Provide(fx.Annotate(queries.NewSystemRepository, fx.As(fx.Self()), fx.As(new(services.SnapshotRepository)))),
	fx.Provide(NewChecks),
	fx.Provide(services.NewSystemService),
	fx.Provide(controllers.NewSystemController),
	fx.Invoke(ObserveSnapshots),
	fx.Invoke(RegisterSystemRoutes),
)

// NewChecks dépendances interrogées par /ready
func NewChecks(pg *queries.SystemRepository, rd *redis.Client, mongo *mongodb.Client) []services.Check {
	return []services.Check{
		{Name: "postgres", Pinger: pg},
		{Name: "redis", Pinger: rd},
		{Name: "mongodb", Pinger: mongo},
	}
}

func ObserveSnapshots(collector *metrics.Collector, service *services.SystemService) error {
	return collector.ObserveSnapshots(service)
}

// RegisterSystemRoutes routes publiques hors /api/v1
func RegisterSystemRoutes(r *gin.Engine, ctrl *controllers.SystemController, collector *metrics.Collector) {
	r.GET("/health", ctrl.Health)
	r.GET("/ready", ctrl.Ready)
	r.GET("/metrics", gin.WrapH(collector.Handler()))
}
