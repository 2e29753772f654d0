package services

import (
	"context"
	"encoding/json"
	"fmt"

	"gestion-hospitaliere/internal/modules/notifications/dto"
	"gestion-hospitaliere/internal/shared/policy"

	"go.uber.org/zap"
)

const payloadField = "payload"

// StreamPublisher ajout dans le stream Redis (XADD)
type StreamPublisher interface {
	XAdd(ctx context.Context, stream string, values map[string]interface{}) (string, error)
}

// Dispatcher met en file les notifications liées aux rendez-vous.
// Un échec est journalisé et n'interrompt jamais la requête appelante.
type Dispatcher struct {
	publisher StreamPublisher
	config    *Config
	log       *zap.Logger
}

func NewDispatcher(publisher StreamPublisher, config *Config, log *zap.Logger) *Dispatcher {
	return &Dispatcher{publisher: publisher, config: config, log: log.Named("notifications")}
}

// AppointmentCreated le patient est toujours prévenu, le médecin seulement
// quand le rendez-vous est créé par un administrateur
func (d *Dispatcher) AppointmentCreated(ctx context.Context, ev dto.AppointmentEvent, creator policy.Role) {
	_ = d.enqueue(ctx, createdJob(ev))
	if creator == policy.RoleAdmin {
		_ = d.enqueue(ctx, assignedJob(ev))
	}
}

func (d *Dispatcher) AppointmentStatusChanged(ctx context.Context, ev dto.AppointmentEvent) {
	_ = d.enqueue(ctx, statusJob(ev))
}

// AppointmentReminder retourne l'erreur pour que le rappel soit retenté
func (d *Dispatcher) AppointmentReminder(ctx context.Context, ev dto.AppointmentEvent) error {
	return d.enqueue(ctx, reminderJob(ev))
}

func (d *Dispatcher) enqueue(ctx context.Context, job dto.Job) error {
	payload, err := json.Marshal(job)
	if err != nil {
		d.log.Error("sérialisation notification impossible", zap.String("type", job.Type), zap.Error(err))
		return fmt.Errorf("sérialisation notification: %w", err)
	}

	id, err := d.publisher.XAdd(ctx, d.config.Stream, map[string]interface{}{payloadField: string(payload)})
	if err != nil {
		d.log.Error("mise en file notification impossible",
			zap.String("type", job.Type),
			zap.String("user_id", job.UserID),
			zap.Error(err),
		)
		return fmt.Errorf("mise en file notification: %w", err)
	}

	d.log.Debug("notification en file",
		zap.String("stream_id", id),
		zap.String("type", job.Type),
		zap.String("user_id", job.UserID),
	)
	return nil
}
