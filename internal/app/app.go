package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"gestion-hospitaliere/internal/app/config"

	"github.com/gin-gonic/gin"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const shutdownTimeout = 30 * time.Second

// Application serveur HTTP piloté par le cycle de vie fx
type Application struct {
	config *config.Config
	router *gin.Engine
	server *http.Server
	log    *zap.Logger
}

func NewApplication(cfg *config.Config, router *gin.Engine, log *zap.Logger) *Application {
	return &Application{
		config: cfg,
		router: router,
		log:    log.Named("server"),
	}
}

func (a *Application) Start(lc fx.Lifecycle, shutdowner fx.Shutdowner) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			serverConfig := a.config.GetServer()
			a.server = &http.Server{
				Addr:         fmt.Sprintf("%s:%d", serverConfig.Host, serverConfig.Port),
				Handler:      a.router,
				ReadTimeout:  serverConfig.ReadTimeout,
				WriteTimeout: serverConfig.WriteTimeout,
			}

			go func() {
				a.log.Info("serveur HTTP démarré", zap.String("addr", a.server.Addr), zap.String("env", a.config.Environment))
				if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					a.log.Error("serveur HTTP arrêté", zap.Error(err))
					_ = shutdowner.Shutdown(fx.ExitCode(1))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, shutdownTimeout)
			defer cancel()

			if err := a.server.Shutdown(shutdownCtx); err != nil {
				a.log.Warn("arrêt forcé", zap.Error(err))
				return err
			}
			a.log.Info("serveur arrêté proprement")
			return nil
		},
	})
}
