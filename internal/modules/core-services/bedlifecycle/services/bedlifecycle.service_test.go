package services

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"gestion-hospitaliere/internal/infrastructure/metrics"
	"gestion-hospitaliere/internal/modules/core-services/bedlifecycle/dto"
	"gestion-hospitaliere/internal/modules/core-services/bedlifecycle/queries"
	"gestion-hospitaliere/internal/shared/apperror"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type memoryBed struct {
	chambreID uuid.UUID
	numero    string
	statut    string
	patientID *uuid.UUID
	release   *time.Time
}

type mockBedStore struct {
	mu       sync.Mutex
	lits     map[uuid.UUID]*memoryBed
	patients map[uuid.UUID]bool
}

func newMockBedStore() *mockBedStore {
	return &mockBedStore{lits: map[uuid.UUID]*memoryBed{}, patients: map[uuid.UUID]bool{}}
}

func (m *mockBedStore) addLit(chambreID uuid.UUID, numero, statut string) uuid.UUID {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := uuid.New()
	m.lits[id] = &memoryBed{chambreID: chambreID, numero: numero, statut: statut}
	return id
}

func (m *mockBedStore) addPatient() uuid.UUID {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := uuid.New()
	m.patients[id] = true
	return id
}

func (m *mockBedStore) FindByID(_ context.Context, id uuid.UUID) (*dto.Lit, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.lits[id]
	if !ok {
		return nil, nil
	}
	lit := &dto.Lit{
		ID:                 id,
		Chambre:            dto.ChambreSummary{ID: b.chambreID, Numero: "101", Type: "standard"},
		Numero:             b.numero,
		IdentifiantComplet: dto.IdentifiantComplet("101", b.numero),
		Statut:             b.statut,
	}
	if b.patientID != nil {
		lit.Patient = &dto.PatientSummary{ID: *b.patientID}
	}
	return lit, nil
}

func (m *mockBedStore) PatientExists(_ context.Context, id uuid.UUID) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.patients[id], nil
}

func (m *mockBedStore) Occupy(_ context.Context, litID, patientID uuid.UUID, release *time.Time) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, b := range m.lits {
		if b.patientID != nil && *b.patientID == patientID {
			return false, queries.ErrPatientAlreadyBedded
		}
	}
	b, ok := m.lits[litID]
	if !ok || b.statut != dto.StatutDisponible {
		return false, nil
	}
	b.statut = dto.StatutOccupe
	b.patientID = &patientID
	b.release = release
	return true, nil
}

func (m *mockBedStore) Vacate(_ context.Context, litID uuid.UUID) (*uuid.UUID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.lits[litID]
	if !ok || b.statut != dto.StatutOccupe {
		return nil, nil
	}
	patientID := b.patientID
	b.statut = dto.StatutDisponible
	b.patientID = nil
	b.release = nil
	return patientID, nil
}

func (m *mockBedStore) HasOccupiedBeds(_ context.Context, chambreID uuid.UUID) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, b := range m.lits {
		if b.chambreID == chambreID && b.statut == dto.StatutOccupe {
			return true, nil
		}
	}
	return false, nil
}

type invalidations struct {
	mu  sync.Mutex
	ids []uuid.UUID
}

func (i *invalidations) Invalidate(_ context.Context, id uuid.UUID) {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.ids = append(i.ids, id)
}

func newTestService(store BedStore) (*BedLifecycleService, *invalidations) {
	inv := &invalidations{}
	svc := NewBedLifecycleService(store, inv, metrics.Nop{}, zap.NewNop())
	svc.now = func() time.Time { return time.Date(2025, 3, 10, 9, 0, 0, 0, time.Local) }
	return svc, inv
}

func assertKind(t *testing.T, err error, kind apperror.Kind, message string) {
	t.Helper()
	appErr, ok := apperror.As(err)
	require.True(t, ok, "erreur applicative attendue, obtenu %v", err)
	assert.Equal(t, kind, appErr.Kind)
	if message != "" {
		assert.Equal(t, message, appErr.Message)
	}
}

func TestBedLifecycle_StateMachine(t *testing.T) {
	ctx := context.Background()
	store := newMockBedStore()
	svc, inv := newTestService(store)

	chambreID := uuid.New()
	litID := store.addLit(chambreID, "A", dto.StatutDisponible)
	patientID := store.addPatient()
	release := time.Date(2025, 3, 15, 0, 0, 0, 0, time.Local)

	lit, err := svc.Assign(ctx, litID, patientID, &release)
	require.NoError(t, err)
	assert.Equal(t, dto.StatutOccupe, lit.Statut)
	require.NotNil(t, lit.Patient)
	assert.Equal(t, patientID, lit.Patient.ID)
	assert.Equal(t, "101-A", lit.IdentifiantComplet)

	_, err = svc.Assign(ctx, litID, store.addPatient(), nil)
	assertKind(t, err, apperror.KindInvalidState, "Ce lit n'est pas disponible")

	lit, err = svc.Release(ctx, litID)
	require.NoError(t, err)
	assert.Equal(t, dto.StatutDisponible, lit.Statut)
	assert.Nil(t, lit.Patient)

	_, err = svc.Release(ctx, litID)
	assertKind(t, err, apperror.KindInvalidState, "Ce lit n'est pas occupé")

	assert.Equal(t, []uuid.UUID{patientID, patientID}, inv.ids)
}

func TestBedLifecycle_ManualStatesAreNotAssignable(t *testing.T) {
	ctx := context.Background()
	store := newMockBedStore()
	svc, _ := newTestService(store)
	patientID := store.addPatient()

	for _, statut := range []string{dto.StatutMaintenance, dto.StatutReserve} {
		litID := store.addLit(uuid.New(), "B", statut)

		_, err := svc.Assign(ctx, litID, patientID, nil)
		assertKind(t, err, apperror.KindInvalidState, "Ce lit n'est pas disponible")

		_, err = svc.Release(ctx, litID)
		assertKind(t, err, apperror.KindInvalidState, "Ce lit n'est pas occupé")
	}
}

func TestBedLifecycle_AssignValidation(t *testing.T) {
	ctx := context.Background()
	store := newMockBedStore()
	svc, _ := newTestService(store)
	litID := store.addLit(uuid.New(), "A", dto.StatutDisponible)
	patientID := store.addPatient()

	t.Run("lit inconnu", func(t *testing.T) {
		_, err := svc.Assign(ctx, uuid.New(), patientID, nil)
		assertKind(t, err, apperror.KindNotFound, "Lit non trouvé")
	})

	t.Run("patient inconnu", func(t *testing.T) {
		_, err := svc.Assign(ctx, litID, uuid.New(), nil)
		assertKind(t, err, apperror.KindValidation, "")
	})

	t.Run("libération prévue aujourd'hui", func(t *testing.T) {
		today := time.Date(2025, 3, 10, 18, 0, 0, 0, time.Local)
		_, err := svc.Assign(ctx, litID, patientID, &today)
		assertKind(t, err, apperror.KindValidation, "")
	})

	t.Run("patient déjà hospitalisé", func(t *testing.T) {
		other := store.addLit(uuid.New(), "C", dto.StatutDisponible)
		_, err := svc.Assign(ctx, other, patientID, nil)
		require.NoError(t, err)

		_, err = svc.Assign(ctx, litID, patientID, nil)
		assertKind(t, err, apperror.KindInvalidState, "Ce patient occupe déjà un lit")
	})
}

func TestBedLifecycle_ReleaseUnknownBed(t *testing.T) {
	svc, _ := newTestService(newMockBedStore())
	_, err := svc.Release(context.Background(), uuid.New())
	assertKind(t, err, apperror.KindNotFound, "Lit non trouvé")
}

func TestBedLifecycle_ConcurrentAssign(t *testing.T) {
	ctx := context.Background()
	store := newMockBedStore()
	svc, _ := newTestService(store)
	litID := store.addLit(uuid.New(), "A", dto.StatutDisponible)

	var wins int32
	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		patientID := store.addPatient()
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := svc.Assign(ctx, litID, patientID, nil); err == nil {
				atomic.AddInt32(&wins, 1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), wins)
}

func TestBedLifecycle_CanDelete(t *testing.T) {
	ctx := context.Background()
	store := newMockBedStore()
	svc, _ := newTestService(store)

	chambreID := uuid.New()
	litID := store.addLit(chambreID, "A", dto.StatutDisponible)
	store.addLit(chambreID, "B", dto.StatutMaintenance)

	ok, err := svc.CanDelete(ctx, chambreID)
	require.NoError(t, err)
	assert.True(t, ok)

	_, err = svc.Assign(ctx, litID, store.addPatient(), nil)
	require.NoError(t, err)

	ok, err = svc.CanDelete(ctx, chambreID)
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = svc.Release(ctx, litID)
	require.NoError(t, err)

	ok, err = svc.CanDelete(ctx, chambreID)
	require.NoError(t, err)
	assert.True(t, ok)
}
