package notifications

import (
	"context"
	"sync"
	"time"

	"gestion-hospitaliere/internal/app/config"
	"gestion-hospitaliere/internal/infrastructure/database/mongodb"
	"gestion-hospitaliere/internal/infrastructure/database/redis"
	"gestion-hospitaliere/internal/modules/notifications/controllers"
	"gestion-hospitaliere/internal/modules/notifications/queries"
	"gestion-hospitaliere/internal/modules/notifications/services"
	authMiddleware "gestion-hospitaliere/internal/shared/middleware/auth"

	"github.com/gin-gonic/gin"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Options(
	fx.Provide(NewConfig),
	fx.Provide(func(c *redis.Client) services.StreamPublisher { return c }),
	fx.Provide(func(c *redis.Client) services.StreamConsumer { return c }),
	fx.Provide(func(client *mongodb.Client, cfg *services.Config) services.NotificationStore {
		return queries.NewNotificationMongoRepository(client, cfg.Collection)
	}),
	fx.Provide(fx.Annotate(queries.NewReminderRepository, fx.As(new(services.ReminderRepository)))),
	fx.Provide(services.NewDispatcher),
	fx.Provide(services.NewStreamWorker),
	fx.Provide(services.NewReminderWorker),
	fx.Provide(services.NewNotificationService),
	fx.Provide(controllers.NewNotificationController),
	fx.Invoke(RegisterNotificationRoutes),
	fx.Invoke(RegisterWorkers),
)

func NewConfig(cfg *config.Config) *services.Config {
	return &services.Config{
		Stream:           cfg.Notifications.StreamName,
		Group:            cfg.Notifications.ConsumerGroup,
		Collection:       cfg.Notifications.Collection,
		ReminderInterval: cfg.Notifications.ReminderInterval,
		ReminderEnabled:  cfg.Notifications.ReminderEnabled,
	}
}

func RegisterNotificationRoutes(
	r *gin.Engine,
	ctrl *controllers.NotificationController,
	authStack *authMiddleware.AuthMiddlewareStack,
) {
	api := r.Group("/api/v1/notifications")
	api.Use(authMiddleware.Protected(authStack)...)
	{
		api.GET("", ctrl.List)
		api.GET("/unread", ctrl.Unread)
		api.POST("/read-all", ctrl.MarkAllRead)
		api.POST("/:id/read", ctrl.MarkRead)
		api.DELETE("/read", ctrl.DeleteRead)
		api.DELETE("/:id", ctrl.Delete)
	}
}

// RegisterWorkers démarre les goroutines de fond, arrêtées par annulation du contexte
func RegisterWorkers(
	lc fx.Lifecycle,
	cfg *services.Config,
	collections *mongodb.CollectionManager,
	stream *services.StreamWorker,
	reminders *services.ReminderWorker,
	log *zap.Logger,
) {
	ctx, cancel := context.WithCancel(context.Background())
	var wg sync.WaitGroup

	lc.Append(fx.Hook{
		OnStart: func(startCtx context.Context) error {
			timeoutCtx, stop := context.WithTimeout(startCtx, 10*time.Second)
			defer stop()
			if err := collections.EnsureNotificationsCollection(timeoutCtx, cfg.Collection); err != nil {
				log.Warn("collection des notifications non initialisée", zap.Error(err))
			}

			wg.Add(1)
			go func() {
				defer wg.Done()
				stream.Run(ctx)
			}()

			if cfg.ReminderEnabled {
				wg.Add(1)
				go func() {
					defer wg.Done()
					reminders.Run(ctx)
				}()
			}
			return nil
		},
		OnStop: func(stopCtx context.Context) error {
			cancel()
			done := make(chan struct{})
			go func() {
				wg.Wait()
				close(done)
			}()
			select {
			case <-done:
				return nil
			case <-stopCtx.Done():
				return stopCtx.Err()
			}
		},
	})
}
