package metrics

import (
	"context"

	"go.uber.org/fx"
)

var Module = fx.Options(
	fx.Provide(NewCollector),
	fx.Provide(AsRecorder),
	fx.Invoke(RegisterLifecycle),
)

// AsRecorder expose le Collector sous son interface
func AsRecorder(c *Collector) Recorder {
	return c
}

func RegisterLifecycle(lc fx.Lifecycle, c *Collector) {
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return c.Shutdown(ctx)
		},
	})
}
