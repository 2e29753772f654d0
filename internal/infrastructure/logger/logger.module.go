package logger

import (
	"context"

	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Options(
	fx.Provide(NewLogger),
	fx.Provide(NewMiddleware),
	fx.Invoke(RegisterLifecycle),
)

func NewMiddleware(log *zap.Logger) *LoggerMiddleware {
	return &LoggerMiddleware{logger: log.Named("http")}
}

func RegisterLifecycle(lc fx.Lifecycle, log *zap.Logger) {
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			// Sync échoue sur stdout/stderr selon l'OS, sans conséquence
			_ = log.Sync()
			return nil
		},
	})
}
