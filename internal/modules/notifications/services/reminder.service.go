package services

import (
	"context"
	"time"

	"gestion-hospitaliere/internal/modules/notifications/dto"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	reminderWindow  = 24 * time.Hour
	defaultInterval = 15 * time.Minute
)

// ReminderRepository rendez-vous actifs à rappeler
type ReminderRepository interface {
	DueReminders(ctx context.Context, from, to time.Time) ([]dto.AppointmentEvent, error)
	// MarkReminded false si un autre processus a déjà pris le rappel
	MarkReminded(ctx context.Context, id uuid.UUID) (bool, error)
	ClearReminded(ctx context.Context, id uuid.UUID) error
}

type reminderQueue interface {
	AppointmentReminder(ctx context.Context, ev dto.AppointmentEvent) error
}

// ReminderWorker rappel par email des rendez-vous des prochaines 24 heures
type ReminderWorker struct {
	repo   ReminderRepository
	queue  reminderQueue
	config *Config
	log    *zap.Logger
	now    func() time.Time
}

func NewReminderWorker(repo ReminderRepository, dispatcher *Dispatcher, config *Config, log *zap.Logger) *ReminderWorker {
	return &ReminderWorker{
		repo:   repo,
		queue:  dispatcher,
		config: config,
		log:    log.Named("notifications.reminders"),
		now:    time.Now,
	}
}

func (w *ReminderWorker) Run(ctx context.Context) {
	interval := w.config.ReminderInterval
	if interval <= 0 {
		interval = defaultInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	w.log.Info("worker de rappels démarré", zap.Duration("interval", interval))
	for {
		if _, err := w.Tick(ctx); err != nil && ctx.Err() == nil {
			w.log.Warn("passe de rappels interrompue", zap.Error(err))
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// Tick une passe ; retourne le nombre de rappels mis en file
func (w *ReminderWorker) Tick(ctx context.Context) (int, error) {
	now := w.now()
	due, err := w.repo.DueReminders(ctx, now, now.Add(reminderWindow))
	if err != nil {
		return 0, err
	}

	sent := 0
	for _, ev := range due {
		claimed, err := w.repo.MarkReminded(ctx, ev.RendezvousID)
		if err != nil {
			return sent, err
		}
		if !claimed {
			continue
		}
		if err := w.queue.AppointmentReminder(ctx, ev); err != nil {
			if clearErr := w.repo.ClearReminded(ctx, ev.RendezvousID); clearErr != nil {
				w.log.Error("rappel perdu", zap.String("rendezvous_id", ev.RendezvousID.String()), zap.Error(clearErr))
			}
			continue
		}
		sent++
	}

	if sent > 0 {
		w.log.Info("rappels mis en file", zap.Int("count", sent))
	}
	return sent, nil
}
