package redis

import (
	"context"
	"time"

	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Options(
	fx.Provide(NewRedisKeyGenerator),
	fx.Provide(NewClient),
	fx.Provide(AsCache),
	fx.Invoke(RegisterLifecycle),
)

// AsCache expose le client sous l'interface consommée par les services
func AsCache(c *Client) Cache {
	return c
}

func RegisterLifecycle(lc fx.Lifecycle, client *Client, log *zap.Logger) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			timeoutCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()

			if err := client.Ping(timeoutCtx); err != nil {
				return err
			}

			if err := client.HealthCheck(timeoutCtx); err != nil {
				return err
			}
			log.Info("Redis connecté")
			return nil
		},
		OnStop: func(ctx context.Context) error {
			client.Close()
			return nil
		},
	})
}
