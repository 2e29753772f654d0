package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"gestion-hospitaliere/internal/modules/core-services/availability/dto"
	"gestion-hospitaliere/internal/modules/core-services/availability/queries"
	"gestion-hospitaliere/internal/shared/apperror"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memoryBooking struct {
	id        uuid.UUID
	medecinID uuid.UUID
	at        time.Time
	statut    string
}

type mockStore struct {
	mu       sync.Mutex
	medecins map[uuid.UUID]bool
	bookings []memoryBooking
}

func newMockStore(medecins ...uuid.UUID) *mockStore {
	m := &mockStore{medecins: map[uuid.UUID]bool{}}
	for _, id := range medecins {
		m.medecins[id] = true
	}
	return m
}

func (m *mockStore) add(medecinID uuid.UUID, at time.Time, statut string) uuid.UUID {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := uuid.New()
	m.bookings = append(m.bookings, memoryBooking{id: id, medecinID: medecinID, at: at, statut: statut})
	return id
}

func (m *mockStore) MedecinExists(_ context.Context, id uuid.UUID) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.medecins[id], nil
}

func (m *mockStore) HasActiveBooking(_ context.Context, medecinID uuid.UUID, at time.Time, exclude *uuid.UUID) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.hasActive(medecinID, at, exclude), nil
}

func (m *mockStore) hasActive(medecinID uuid.UUID, at time.Time, exclude *uuid.UUID) bool {
	for _, b := range m.bookings {
		if exclude != nil && b.id == *exclude {
			continue
		}
		if b.medecinID == medecinID && b.at.Equal(at) && dto.IsActive(b.statut) {
			return true
		}
	}
	return false
}

func (m *mockStore) BookedTimes(_ context.Context, medecinID uuid.UUID, from, to time.Time) ([]time.Time, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []time.Time
	for _, b := range m.bookings {
		if b.medecinID == medecinID && dto.IsActive(b.statut) && !b.at.Before(from) && b.at.Before(to) {
			out = append(out, b.at)
		}
	}
	return out, nil
}

// InsertIfFree la section critique joue le rôle de la transaction SERIALIZABLE
func (m *mockStore) InsertIfFree(_ context.Context, b dto.Booking) (uuid.UUID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.hasActive(b.MedecinID, b.DateHeure, nil) {
		return uuid.Nil, queries.ErrSlotTaken
	}
	id := uuid.New()
	m.bookings = append(m.bookings, memoryBooking{id: id, medecinID: b.MedecinID, at: b.DateHeure, statut: b.Statut})
	return id, nil
}

func at(day time.Time, hour, minute int) time.Time {
	return time.Date(day.Year(), day.Month(), day.Day(), hour, minute, 0, 0, time.Local)
}

func TestDaySlots(t *testing.T) {
	slots := DaySlots()
	require.Len(t, slots, 20)
	assert.Equal(t, "08:00", slots[0])
	assert.Equal(t, "08:30", slots[1])
	assert.Equal(t, "17:30", slots[19])
}

func TestIsAvailable(t *testing.T) {
	ctx := context.Background()
	medecin := uuid.New()
	store := newMockStore(medecin)
	svc := NewAvailabilityService(store)
	day := time.Now().AddDate(0, 0, 3)

	store.add(medecin, at(day, 10, 0), dto.StatutConfirme)
	store.add(medecin, at(day, 11, 0), dto.StatutAnnule)

	ok, err := svc.IsAvailable(ctx, medecin, at(day, 10, 0))
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = svc.IsAvailable(ctx, medecin, at(day, 11, 0))
	require.NoError(t, err)
	assert.True(t, ok, "un rendez-vous annulé libère le créneau")

	ok, err = svc.IsAvailable(ctx, medecin, at(day, 10, 30))
	require.NoError(t, err)
	assert.True(t, ok)

	_, err = svc.IsAvailable(ctx, uuid.New(), at(day, 10, 0))
	assert.True(t, apperror.IsKind(err, apperror.KindNotFound))
}

func TestFreeSlots(t *testing.T) {
	ctx := context.Background()
	medecin := uuid.New()
	store := newMockStore(medecin)
	svc := NewAvailabilityService(store)
	day := time.Now().AddDate(0, 0, 5)

	store.add(medecin, at(day, 9, 0), dto.StatutEnAttente)
	store.add(medecin, at(day, 14, 30), dto.StatutConfirme)
	store.add(medecin, at(day, 15, 0), dto.StatutTermine)
	// autre jour
	store.add(medecin, at(day.AddDate(0, 0, 1), 8, 0), dto.StatutConfirme)

	slots, err := svc.FreeSlots(ctx, medecin, day)
	require.NoError(t, err)

	assert.Len(t, slots, 18)
	assert.NotContains(t, slots, "09:00")
	assert.NotContains(t, slots, "14:30")
	assert.Contains(t, slots, "15:00")
	assert.Contains(t, slots, "08:00")
	for i := 1; i < len(slots); i++ {
		assert.Less(t, slots[i-1], slots[i])
	}
}

func TestFreeSlots_NoBooking(t *testing.T) {
	medecin := uuid.New()
	svc := NewAvailabilityService(newMockStore(medecin))

	slots, err := svc.FreeSlots(context.Background(), medecin, time.Now())
	require.NoError(t, err)
	assert.Equal(t, DaySlots(), slots)
}

func TestBook_Conflict(t *testing.T) {
	ctx := context.Background()
	medecin := uuid.New()
	svc := NewAvailabilityService(newMockStore(medecin))
	when := at(time.Now().AddDate(0, 0, 2), 10, 0)

	_, err := svc.Book(ctx, dto.Booking{PatientID: uuid.New(), MedecinID: medecin, DateHeure: when})
	require.NoError(t, err)

	_, err = svc.Book(ctx, dto.Booking{PatientID: uuid.New(), MedecinID: medecin, DateHeure: when})
	require.Error(t, err)
	appErr, ok := apperror.As(err)
	require.True(t, ok)
	assert.Equal(t, apperror.KindConflict, appErr.Kind)
	assert.Equal(t, SlotConflictCode, appErr.Code)
	assert.Equal(t, "Ce créneau n'est pas disponible", appErr.Message)
	assert.Equal(t, 422, appErr.Status())
}

func TestBook_Concurrent(t *testing.T) {
	ctx := context.Background()
	medecin := uuid.New()
	svc := NewAvailabilityService(newMockStore(medecin))
	when := at(time.Now().AddDate(0, 0, 2), 16, 30)

	const attempts = 10
	var wg sync.WaitGroup
	var mu sync.Mutex
	succeeded, conflicts := 0, 0

	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Book(ctx, dto.Booking{PatientID: uuid.New(), MedecinID: medecin, DateHeure: when})
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				succeeded++
			} else if apperror.IsKind(err, apperror.KindConflict) {
				conflicts++
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, succeeded)
	assert.Equal(t, attempts-1, conflicts)
}

func TestEnsureFree_ExcludesSelf(t *testing.T) {
	ctx := context.Background()
	medecin := uuid.New()
	store := newMockStore(medecin)
	svc := NewAvailabilityService(store)
	when := at(time.Now().AddDate(0, 0, 1), 11, 0)
	self := store.add(medecin, when, dto.StatutConfirme)

	assert.NoError(t, svc.EnsureFree(ctx, medecin, when, self))
	assert.Error(t, svc.EnsureFree(ctx, medecin, when, uuid.New()))
}

func TestIsSlotConflict(t *testing.T) {
	assert.True(t, queries.IsSlotConflict(queries.ErrSlotTaken))
}
