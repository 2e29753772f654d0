package services

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"gestion-hospitaliere/internal/infrastructure/mailer"
	"gestion-hospitaliere/internal/modules/notifications/dto"
	"gestion-hospitaliere/internal/shared/apperror"
	"gestion-hospitaliere/internal/shared/policy"
	"gestion-hospitaliere/internal/shared/utils"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type mockPublisher struct {
	mu   sync.Mutex
	jobs []dto.Job
	err  error
}

func (m *mockPublisher) XAdd(_ context.Context, _ string, values map[string]interface{}) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	var job dto.Job
	if err := json.Unmarshal([]byte(values[payloadField].(string)), &job); err != nil {
		return "", err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.jobs = append(m.jobs, job)
	return "1-0", nil
}

type mockStore struct {
	inserted []*dto.Notification
	owned    map[string]string
	err      error
}

func (m *mockStore) Insert(_ context.Context, n *dto.Notification) error {
	if m.err != nil {
		return m.err
	}
	m.inserted = append(m.inserted, n)
	return nil
}

func (m *mockStore) List(context.Context, string, utils.Pagination) ([]dto.Notification, int64, error) {
	return nil, 0, nil
}

func (m *mockStore) Unread(context.Context, string, int) ([]dto.Notification, int64, error) {
	return []dto.Notification{}, 0, nil
}

func (m *mockStore) MarkRead(_ context.Context, userID, id string) (bool, error) {
	return m.owned[id] == userID, nil
}

func (m *mockStore) MarkAllRead(context.Context, string) (int64, error) { return 0, nil }

func (m *mockStore) Delete(_ context.Context, userID, id string) (bool, error) {
	if m.owned[id] != userID {
		return false, nil
	}
	delete(m.owned, id)
	return true, nil
}

func (m *mockStore) DeleteRead(context.Context, string) (int64, error) { return 0, nil }

type mockSender struct {
	sent []mailer.Message
	err  error
}

func (m *mockSender) Send(_ context.Context, msg mailer.Message) error {
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, msg)
	return nil
}

func testConfig() *Config {
	return &Config{Stream: "test_stream", Group: "test_group", Collection: "notifications", ReminderInterval: time.Minute}
}

func sampleEvent() dto.AppointmentEvent {
	motif := "Consultation de suivi"
	return dto.AppointmentEvent{
		RendezvousID: uuid.New(),
		DateHeure:    time.Date(2025, 6, 3, 10, 30, 0, 0, time.UTC),
		Statut:       "En attente",
		Motif:        &motif,
		Patient:      dto.Party{UserID: uuid.New(), Name: "Awa Koné", Email: "awa@example.com"},
		Medecin:      dto.Party{UserID: uuid.New(), Name: "Yao", Email: "yao@example.com"},
	}
}

func TestDispatcher_PatientCreatorNotifiesPatientOnly(t *testing.T) {
	pub := &mockPublisher{}
	d := NewDispatcher(pub, testConfig(), zap.NewNop())
	ev := sampleEvent()

	d.AppointmentCreated(context.Background(), ev, policy.RolePatient)

	require.Len(t, pub.jobs, 1)
	assert.Equal(t, dto.TypeRendezvousCree, pub.jobs[0].Type)
	assert.Equal(t, ev.Patient.UserID.String(), pub.jobs[0].UserID)
	assert.True(t, pub.jobs[0].Mail)
	assert.True(t, pub.jobs[0].InApp)
}

func TestDispatcher_AdminCreatorAlsoNotifiesMedecin(t *testing.T) {
	pub := &mockPublisher{}
	d := NewDispatcher(pub, testConfig(), zap.NewNop())
	ev := sampleEvent()

	d.AppointmentCreated(context.Background(), ev, policy.RoleAdmin)

	require.Len(t, pub.jobs, 2)
	assert.Equal(t, dto.TypeRendezvousCree, pub.jobs[0].Type)
	assert.Equal(t, dto.TypeRendezvousAssigne, pub.jobs[1].Type)
	assert.Equal(t, ev.Medecin.UserID.String(), pub.jobs[1].UserID)
	assert.Equal(t, "Nouveau Rendez-vous Assigné", pub.jobs[1].Subject)
	assert.Contains(t, pub.jobs[1].Body, "Awa Koné")
}

func TestDispatcher_PublishFailureIsSwallowed(t *testing.T) {
	pub := &mockPublisher{err: errors.New("redis indisponible")}
	d := NewDispatcher(pub, testConfig(), zap.NewNop())

	assert.NotPanics(t, func() {
		d.AppointmentCreated(context.Background(), sampleEvent(), policy.RoleAdmin)
		d.AppointmentStatusChanged(context.Background(), sampleEvent())
	})
	assert.Error(t, d.AppointmentReminder(context.Background(), sampleEvent()))
}

func TestStreamWorker_Process(t *testing.T) {
	store := &mockStore{}
	sender := &mockSender{}
	w := NewStreamWorker(nil, store, sender, testConfig(), zap.NewNop())

	job := createdJob(sampleEvent())
	require.NoError(t, w.Process(context.Background(), job))

	require.Len(t, store.inserted, 1)
	assert.Equal(t, job.UserID, store.inserted[0].UserID)
	assert.Equal(t, dto.TypeRendezvousCree, store.inserted[0].Type)
	assert.Nil(t, store.inserted[0].ReadAt)

	require.Len(t, sender.sent, 1)
	assert.Equal(t, "awa@example.com", sender.sent[0].To)
	assert.Equal(t, "Confirmation de rendez-vous - Hôpital", sender.sent[0].Subject)
}

func TestStreamWorker_ProcessReminderIsMailOnly(t *testing.T) {
	store := &mockStore{}
	sender := &mockSender{}
	w := NewStreamWorker(nil, store, sender, testConfig(), zap.NewNop())

	require.NoError(t, w.Process(context.Background(), reminderJob(sampleEvent())))
	assert.Empty(t, store.inserted)
	assert.Len(t, sender.sent, 1)
}

func TestStreamWorker_ProcessJoinsFailures(t *testing.T) {
	storeErr := errors.New("mongo indisponible")
	mailErr := errors.New("passerelle indisponible")
	w := NewStreamWorker(nil, &mockStore{err: storeErr}, &mockSender{err: mailErr}, testConfig(), zap.NewNop())

	err := w.Process(context.Background(), createdJob(sampleEvent()))
	require.Error(t, err)
	assert.ErrorIs(t, err, storeErr)
	assert.ErrorIs(t, err, mailErr)
}

type mockReminderRepo struct {
	due     []dto.AppointmentEvent
	claimed map[uuid.UUID]bool
	cleared []uuid.UUID
}

func (m *mockReminderRepo) DueReminders(context.Context, time.Time, time.Time) ([]dto.AppointmentEvent, error) {
	return m.due, nil
}

func (m *mockReminderRepo) MarkReminded(_ context.Context, id uuid.UUID) (bool, error) {
	if m.claimed[id] {
		return false, nil
	}
	m.claimed[id] = true
	return true, nil
}

func (m *mockReminderRepo) ClearReminded(_ context.Context, id uuid.UUID) error {
	delete(m.claimed, id)
	m.cleared = append(m.cleared, id)
	return nil
}

func TestReminderWorker_TickClaimsOnce(t *testing.T) {
	ev := sampleEvent()
	repo := &mockReminderRepo{due: []dto.AppointmentEvent{ev}, claimed: map[uuid.UUID]bool{}}
	pub := &mockPublisher{}
	w := NewReminderWorker(repo, NewDispatcher(pub, testConfig(), zap.NewNop()), testConfig(), zap.NewNop())

	sent, err := w.Tick(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, sent)

	sent, err = w.Tick(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, sent)

	require.Len(t, pub.jobs, 1)
	assert.Equal(t, dto.TypeRendezvousRappel, pub.jobs[0].Type)
}

func TestReminderWorker_EnqueueFailureReleasesClaim(t *testing.T) {
	ev := sampleEvent()
	repo := &mockReminderRepo{due: []dto.AppointmentEvent{ev}, claimed: map[uuid.UUID]bool{}}
	pub := &mockPublisher{err: errors.New("redis indisponible")}
	w := NewReminderWorker(repo, NewDispatcher(pub, testConfig(), zap.NewNop()), testConfig(), zap.NewNop())

	sent, err := w.Tick(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, sent)
	assert.Equal(t, []uuid.UUID{ev.RendezvousID}, repo.cleared)
	assert.False(t, repo.claimed[ev.RendezvousID])
}

func TestNotificationService_OwnershipIsEnforced(t *testing.T) {
	store := &mockStore{owned: map[string]string{"abc": "user-1"}}
	svc := NewNotificationService(store)

	err := svc.MarkRead(context.Background(), "user-2", "abc")
	assert.True(t, apperror.IsKind(err, apperror.KindNotFound))

	require.NoError(t, svc.MarkRead(context.Background(), "user-1", "abc"))

	err = svc.Delete(context.Background(), "user-2", "abc")
	assert.True(t, apperror.IsKind(err, apperror.KindNotFound))
	require.NoError(t, svc.Delete(context.Background(), "user-1", "abc"))
}
