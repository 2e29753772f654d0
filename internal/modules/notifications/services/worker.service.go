package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gestion-hospitaliere/internal/infrastructure/mailer"
	"gestion-hospitaliere/internal/modules/notifications/dto"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	readBatch   = 10
	readBlock   = 5 * time.Second
	retryDelay  = 2 * time.Second
	consumerTag = "worker-"
)

// StreamConsumer lecture du stream par groupe de consommateurs
type StreamConsumer interface {
	EnsureConsumerGroup(ctx context.Context, stream, group string) error
	XReadGroup(ctx context.Context, stream, group, consumer string, count int64, block time.Duration) ([]redis.XMessage, error)
	XAck(ctx context.Context, stream, group string, ids ...string) error
}

// StreamWorker enregistre les notifications in-app et envoie les emails
type StreamWorker struct {
	consumer StreamConsumer
	store    NotificationStore
	mailer   mailer.Sender
	config   *Config
	name     string
	log      *zap.Logger
}

func NewStreamWorker(consumer StreamConsumer, store NotificationStore, sender mailer.Sender, config *Config, log *zap.Logger) *StreamWorker {
	return &StreamWorker{
		consumer: consumer,
		store:    store,
		mailer:   sender,
		config:   config,
		name:     consumerTag + uuid.NewString(),
		log:      log.Named("notifications.worker"),
	}
}

// Run boucle jusqu'à l'annulation de ctx
func (w *StreamWorker) Run(ctx context.Context) {
	for {
		err := w.consumer.EnsureConsumerGroup(ctx, w.config.Stream, w.config.Group)
		if err == nil {
			break
		}
		w.log.Warn("groupe de consommateurs indisponible", zap.Error(err))
		if !sleep(ctx, retryDelay) {
			return
		}
	}

	w.log.Info("worker de notifications démarré", zap.String("consumer", w.name))
	for {
		messages, err := w.consumer.XReadGroup(ctx, w.config.Stream, w.config.Group, w.name, readBatch, readBlock)
		if ctx.Err() != nil {
			return
		}
		if err != nil {
			w.log.Warn("lecture du stream impossible", zap.Error(err))
			if !sleep(ctx, retryDelay) {
				return
			}
			continue
		}
		for _, msg := range messages {
			w.handle(ctx, msg)
		}
	}
}

// handle le message est acquitté même en cas d'échec de livraison
func (w *StreamWorker) handle(ctx context.Context, msg redis.XMessage) {
	var job dto.Job
	payload, _ := msg.Values[payloadField].(string)
	if err := json.Unmarshal([]byte(payload), &job); err != nil {
		w.log.Error("message de notification illisible", zap.String("stream_id", msg.ID), zap.Error(err))
	} else if err := w.Process(ctx, job); err != nil {
		w.log.Error("livraison notification incomplète",
			zap.String("stream_id", msg.ID),
			zap.String("type", job.Type),
			zap.String("user_id", job.UserID),
			zap.Error(err),
		)
	}

	if err := w.consumer.XAck(ctx, w.config.Stream, w.config.Group, msg.ID); err != nil {
		w.log.Warn("acquittement impossible", zap.String("stream_id", msg.ID), zap.Error(err))
	}
}

// Process livre un job : enregistrement in-app puis email
func (w *StreamWorker) Process(ctx context.Context, job dto.Job) error {
	var errs []error

	if job.InApp {
		n := &dto.Notification{
			UserID:    job.UserID,
			Type:      job.Type,
			Message:   job.Message,
			Data:      job.Data,
			CreatedAt: time.Now().UTC(),
		}
		if n.Data == nil {
			n.Data = map[string]interface{}{}
		}
		if err := w.store.Insert(ctx, n); err != nil {
			errs = append(errs, fmt.Errorf("notification in-app: %w", err))
		}
	}

	if job.Mail && job.Email != "" {
		err := w.mailer.Send(ctx, mailer.Message{
			To:      job.Email,
			ToName:  job.Name,
			Subject: job.Subject,
			Body:    job.Body,
		})
		if err != nil {
			errs = append(errs, fmt.Errorf("email: %w", err))
		}
	}

	return errors.Join(errs...)
}

func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
