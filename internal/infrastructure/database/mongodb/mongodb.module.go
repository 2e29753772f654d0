package mongodb

import (
	"context"
	"time"

	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Options(
	fx.Provide(NewClient),
	fx.Provide(NewCollectionManager),
	fx.Invoke(RegisterLifecycle),
)

func RegisterLifecycle(lc fx.Lifecycle, client *Client, log *zap.Logger) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			timeoutCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()

			// MongoDB ne porte que les notifications in-app : ne bloque pas le démarrage
			if err := client.HealthCheck(timeoutCtx); err != nil {
				log.Warn("MongoDB non disponible - continuera sans notifications in-app", zap.Error(err))
				return nil
			}

			log.Info("MongoDB connecté et opérationnel")
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return client.Close(ctx)
		},
	})
}
