package services

import (
	"context"
	"net/http"
	"sync"
	"testing"
	"time"

	"gestion-hospitaliere/internal/infrastructure/metrics"
	availabilityDTO "gestion-hospitaliere/internal/modules/core-services/availability/dto"
	availability "gestion-hospitaliere/internal/modules/core-services/availability/services"
	notifDTO "gestion-hospitaliere/internal/modules/notifications/dto"
	"gestion-hospitaliere/internal/modules/rendezvous/dto"
	"gestion-hospitaliere/internal/shared/apperror"
	"gestion-hospitaliere/internal/shared/policy"
	"gestion-hospitaliere/internal/shared/utils"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// clinic dépôt et planning en mémoire partageant les mêmes rendez-vous
type clinic struct {
	mu         sync.Mutex
	patients   map[uuid.UUID]dto.PatientSummary
	medecins   map[uuid.UUID]dto.MedecinSummary
	rendezvous map[uuid.UUID]*dto.Rendezvous
}

func newClinic() *clinic {
	return &clinic{
		patients:   map[uuid.UUID]dto.PatientSummary{},
		medecins:   map[uuid.UUID]dto.MedecinSummary{},
		rendezvous: map[uuid.UUID]*dto.Rendezvous{},
	}
}

func (c *clinic) addPatient(name string) uuid.UUID {
	c.mu.Lock()
	defer c.mu.Unlock()
	id := uuid.New()
	c.patients[id] = dto.PatientSummary{ID: id, User: dto.UserSummary{ID: uuid.New(), Name: name, Email: name + "@example.com"}}
	return id
}

func (c *clinic) addMedecin(name string) uuid.UUID {
	c.mu.Lock()
	defer c.mu.Unlock()
	id := uuid.New()
	c.medecins[id] = dto.MedecinSummary{ID: id, User: dto.UserSummary{ID: uuid.New(), Name: name}, Specialite: "Cardiologie"}
	return id
}

func (c *clinic) taken(medecinID uuid.UUID, at time.Time, exclude uuid.UUID) bool {
	for _, r := range c.rendezvous {
		if r.ID != exclude && r.Medecin.ID == medecinID && r.DateHeure.Equal(at) && availabilityDTO.IsActive(r.Statut) {
			return true
		}
	}
	return false
}

func (c *clinic) IsAvailable(_ context.Context, medecinID uuid.UUID, at time.Time) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.medecins[medecinID]; !ok {
		return false, apperror.NotFound("Médecin non trouvé")
	}
	return !c.taken(medecinID, at, uuid.Nil), nil
}

func (c *clinic) EnsureFree(_ context.Context, medecinID uuid.UUID, at time.Time, exclude uuid.UUID) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.taken(medecinID, at, exclude) {
		return availability.SlotConflict()
	}
	return nil
}

func (c *clinic) Book(_ context.Context, b availabilityDTO.Booking) (uuid.UUID, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.taken(b.MedecinID, b.DateHeure, uuid.Nil) {
		return uuid.Nil, availability.SlotConflict()
	}
	r := &dto.Rendezvous{
		ID:        uuid.New(),
		Patient:   c.patients[b.PatientID],
		Medecin:   c.medecins[b.MedecinID],
		DateHeure: b.DateHeure,
		Statut:    b.Statut,
		Motif:     b.Motif,
		Notes:     b.Notes,
	}
	c.rendezvous[r.ID] = r
	return r.ID, nil
}

func (c *clinic) List(_ context.Context, filter dto.RendezvousFilter, _ utils.Pagination) ([]dto.Rendezvous, int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := []dto.Rendezvous{}
	for _, r := range c.rendezvous {
		if filter.PatientID != nil && r.Patient.ID != *filter.PatientID {
			continue
		}
		if filter.MedecinID != nil && r.Medecin.ID != *filter.MedecinID {
			continue
		}
		out = append(out, *r)
	}
	return out, int64(len(out)), nil
}

func (c *clinic) FindByID(_ context.Context, id uuid.UUID) (*dto.Rendezvous, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	r, ok := c.rendezvous[id]
	if !ok {
		return nil, nil
	}
	out := *r
	return &out, nil
}

func (c *clinic) PatientExists(_ context.Context, id uuid.UUID) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.patients[id]
	return ok, nil
}

func (c *clinic) Update(_ context.Context, id uuid.UUID, ch dto.RendezvousChanges) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	r, ok := c.rendezvous[id]
	if !ok {
		return false, nil
	}
	if ch.DateHeure != nil {
		r.DateHeure = *ch.DateHeure
	}
	if ch.Statut != nil {
		r.Statut = *ch.Statut
	}
	if ch.Motif != nil {
		r.Motif = ch.Motif
	}
	if ch.Notes != nil {
		r.Notes = ch.Notes
	}
	return true, nil
}

func (c *clinic) UpdateStatus(_ context.Context, id uuid.UUID, statut string, notesMedecin *string) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	r, ok := c.rendezvous[id]
	if !ok {
		return false, nil
	}
	r.Statut = statut
	if notesMedecin != nil {
		notes := ""
		if r.Notes != nil {
			notes = *r.Notes
		}
		notes += "\n\nNotes du médecin: " + *notesMedecin
		r.Notes = &notes
	}
	return true, nil
}

func (c *clinic) Delete(_ context.Context, id uuid.UUID) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.rendezvous[id]
	delete(c.rendezvous, id)
	return ok, nil
}

type sentEvent struct {
	kind    string
	event   notifDTO.AppointmentEvent
	creator policy.Role
}

type recordingNotifier struct {
	mu     sync.Mutex
	events []sentEvent
}

func (n *recordingNotifier) AppointmentCreated(_ context.Context, ev notifDTO.AppointmentEvent, creator policy.Role) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, sentEvent{kind: "created", event: ev, creator: creator})
}

func (n *recordingNotifier) AppointmentStatusChanged(_ context.Context, ev notifDTO.AppointmentEvent) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, sentEvent{kind: "status", event: ev})
}

var fixedNow = time.Date(2025, 6, 2, 9, 0, 0, 0, time.Local)

type fixture struct {
	svc       *RendezvousService
	clinic    *clinic
	notifier  *recordingNotifier
	patientID uuid.UUID
	medecinID uuid.UUID
	admin     *policy.Principal
	patient   *policy.Principal
	medecin   *policy.Principal
}

func newFixture() *fixture {
	c := newClinic()
	n := &recordingNotifier{}
	svc := NewRendezvousService(c, c, n, metrics.Nop{}, zap.NewNop())
	svc.now = func() time.Time { return fixedNow }

	patientID := c.addPatient("awa")
	medecinID := c.addMedecin("Dr Kane")
	return &fixture{
		svc:       svc,
		clinic:    c,
		notifier:  n,
		patientID: patientID,
		medecinID: medecinID,
		admin:     &policy.Principal{UserID: uuid.New(), Role: policy.RoleAdmin},
		patient:   &policy.Principal{UserID: uuid.New(), Role: policy.RolePatient, PatientID: &patientID},
		medecin:   &policy.Principal{UserID: uuid.New(), Role: policy.RoleMedecin, MedecinID: &medecinID},
	}
}

func (f *fixture) request(at string) dto.CreateRendezvousRequest {
	return dto.CreateRendezvousRequest{MedecinID: f.medecinID.String(), DateHeure: at}
}

func TestRendezvousService_BookingConflict(t *testing.T) {
	ctx := context.Background()
	f := newFixture()

	first, err := f.svc.Create(ctx, f.patient, f.request("2025-06-03 10:00"))
	require.NoError(t, err)
	assert.Equal(t, availabilityDTO.StatutEnAttente, first.Statut)

	other := f.clinic.addPatient("moussa")
	req := f.request("2025-06-03 10:00")
	req.PatientID = other.String()
	_, err = f.svc.Create(ctx, f.admin, req)

	appErr, ok := apperror.As(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusUnprocessableEntity, appErr.Status())
	assert.Equal(t, availability.SlotConflictCode, appErr.Code)
	assert.Equal(t, "Ce créneau n'est pas disponible", appErr.Message)

	// un rendez-vous annulé libère le créneau
	annule := availabilityDTO.StatutAnnule
	_, err = f.svc.Update(ctx, f.patient, first.ID, dto.UpdateRendezvousRequest{Statut: &annule})
	require.NoError(t, err)
	_, err = f.svc.Create(ctx, f.admin, req)
	require.NoError(t, err)
}

func TestRendezvousService_CreateRules(t *testing.T) {
	ctx := context.Background()
	f := newFixture()

	t.Run("médecin refusé", func(t *testing.T) {
		_, err := f.svc.Create(ctx, f.medecin, f.request("2025-06-03 11:00"))
		appErr, ok := apperror.As(err)
		require.True(t, ok)
		assert.Equal(t, http.StatusForbidden, appErr.Status())
		assert.Equal(t, "Médecins ne peuvent pas créer de rendez-vous pour eux-mêmes", appErr.Message)
	})

	t.Run("date passée", func(t *testing.T) {
		_, err := f.svc.Create(ctx, f.patient, f.request("2025-06-01 11:00"))
		appErr, ok := apperror.As(err)
		require.True(t, ok)
		assert.Contains(t, appErr.Fields, "date_heure")
	})

	t.Run("médecin inconnu", func(t *testing.T) {
		req := dto.CreateRendezvousRequest{MedecinID: uuid.NewString(), DateHeure: "2025-06-03 11:00"}
		_, err := f.svc.Create(ctx, f.patient, req)
		appErr, ok := apperror.As(err)
		require.True(t, ok)
		assert.Contains(t, appErr.Fields, "medecin_id")
	})

	t.Run("administrateur sans patient", func(t *testing.T) {
		_, err := f.svc.Create(ctx, f.admin, f.request("2025-06-03 11:00"))
		appErr, ok := apperror.As(err)
		require.True(t, ok)
		assert.Contains(t, appErr.Fields, "patient_id")
	})

	t.Run("patient sans profil", func(t *testing.T) {
		orphan := &policy.Principal{UserID: uuid.New(), Role: policy.RolePatient}
		_, err := f.svc.Create(ctx, orphan, f.request("2025-06-03 11:00"))
		assert.True(t, apperror.IsKind(err, apperror.KindInvalidState))
	})
}

func TestRendezvousService_NotifiesWithCreatorRole(t *testing.T) {
	ctx := context.Background()
	f := newFixture()

	_, err := f.svc.Create(ctx, f.patient, f.request("2025-06-03 10:00"))
	require.NoError(t, err)

	req := f.request("2025-06-03 10:30")
	req.PatientID = f.patientID.String()
	_, err = f.svc.Create(ctx, f.admin, req)
	require.NoError(t, err)

	require.Len(t, f.notifier.events, 2)
	assert.Equal(t, policy.RolePatient, f.notifier.events[0].creator)
	assert.Equal(t, policy.RoleAdmin, f.notifier.events[1].creator)
	assert.Equal(t, "awa@example.com", f.notifier.events[0].event.Patient.Email)
}

func TestRendezvousService_Access(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	rdv, err := f.svc.Create(ctx, f.patient, f.request("2025-06-03 10:00"))
	require.NoError(t, err)

	otherPatientID := f.clinic.addPatient("fatou")
	otherMedecinID := f.clinic.addMedecin("Dr Sow")
	strangers := []*policy.Principal{
		{UserID: uuid.New(), Role: policy.RolePatient, PatientID: &otherPatientID},
		{UserID: uuid.New(), Role: policy.RoleMedecin, MedecinID: &otherMedecinID},
	}
	for _, p := range strangers {
		_, err := f.svc.Get(ctx, p, rdv.ID)
		appErr, ok := apperror.As(err)
		require.True(t, ok)
		assert.Equal(t, http.StatusForbidden, appErr.Status(), "rôle %s", p.Role)
		assert.Equal(t, "Accès non autorisé", appErr.Message)
	}

	infirmier := &policy.Principal{UserID: uuid.New(), Role: policy.RoleInfirmier}
	for _, p := range []*policy.Principal{f.admin, f.patient, f.medecin, infirmier} {
		_, err := f.svc.Get(ctx, p, rdv.ID)
		assert.NoError(t, err, "rôle %s", p.Role)
	}

	items, total, err := f.svc.List(ctx, strangers[0], dto.RendezvousFilter{}, utils.Pagination{Page: 1, PerPage: 20})
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Empty(t, items)
}

func TestRendezvousService_UpdateStatus(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	notes := "Apporter les analyses"
	req := f.request("2025-06-03 10:00")
	req.Notes = &notes
	rdv, err := f.svc.Create(ctx, f.patient, req)
	require.NoError(t, err)

	_, err = f.svc.UpdateStatus(ctx, f.patient, rdv.ID, dto.UpdateStatusRequest{Statut: availabilityDTO.StatutConfirme})
	appErr, ok := apperror.As(err)
	require.True(t, ok)
	assert.Equal(t, "Les patients ne peuvent pas modifier le statut des rendez-vous", appErr.Message)

	otherMedecinID := f.clinic.addMedecin("Dr Sow")
	other := &policy.Principal{UserID: uuid.New(), Role: policy.RoleMedecin, MedecinID: &otherMedecinID}
	_, err = f.svc.UpdateStatus(ctx, other, rdv.ID, dto.UpdateStatusRequest{Statut: availabilityDTO.StatutConfirme})
	appErr, ok = apperror.As(err)
	require.True(t, ok)
	assert.Equal(t, "Vous ne pouvez modifier que vos propres rendez-vous", appErr.Message)

	remarque := "Tension à surveiller"
	updated, err := f.svc.UpdateStatus(ctx, f.medecin, rdv.ID, dto.UpdateStatusRequest{
		Statut:       availabilityDTO.StatutConfirme,
		NotesMedecin: &remarque,
	})
	require.NoError(t, err)
	assert.Equal(t, availabilityDTO.StatutConfirme, updated.Statut)
	require.NotNil(t, updated.Notes)
	assert.Equal(t, "Apporter les analyses\n\nNotes du médecin: Tension à surveiller", *updated.Notes)

	last := f.notifier.events[len(f.notifier.events)-1]
	assert.Equal(t, "status", last.kind)
	assert.Equal(t, availabilityDTO.StatutConfirme, last.event.Statut)
}

func TestRendezvousService_PatientCanOnlyCancel(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	rdv, err := f.svc.Create(ctx, f.patient, f.request("2025-06-03 10:00"))
	require.NoError(t, err)

	confirme := availabilityDTO.StatutConfirme
	_, err = f.svc.Update(ctx, f.patient, rdv.ID, dto.UpdateRendezvousRequest{Statut: &confirme})
	assert.True(t, apperror.IsKind(err, apperror.KindForbidden))

	nouvelle := "2025-06-04 14:30"
	moved, err := f.svc.Update(ctx, f.patient, rdv.ID, dto.UpdateRendezvousRequest{DateHeure: &nouvelle})
	require.NoError(t, err)
	assert.Equal(t, 14, moved.DateHeure.Hour())
}

func TestRendezvousService_RescheduleConflict(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	first, err := f.svc.Create(ctx, f.patient, f.request("2025-06-03 10:00"))
	require.NoError(t, err)
	second, err := f.svc.Create(ctx, f.patient, f.request("2025-06-03 11:00"))
	require.NoError(t, err)

	target := "2025-06-03 10:00"
	_, err = f.svc.Update(ctx, f.admin, second.ID, dto.UpdateRendezvousRequest{DateHeure: &target})
	appErr, ok := apperror.As(err)
	require.True(t, ok)
	assert.Equal(t, availability.SlotConflictCode, appErr.Code)

	// reprogrammer au même horaire ne crée pas de conflit avec soi-même
	same := "2025-06-03 10:00"
	_, err = f.svc.Update(ctx, f.admin, first.ID, dto.UpdateRendezvousRequest{DateHeure: &same})
	assert.NoError(t, err)
}
