package services

import (
	"context"
	"net/http"
	"sync"
	"testing"

	litDTO "gestion-hospitaliere/internal/modules/core-services/bedlifecycle/dto"
	"gestion-hospitaliere/internal/modules/lits/dto"
	"gestion-hospitaliere/internal/shared/apperror"
	"gestion-hospitaliere/internal/shared/utils"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockLitRepo struct {
	mu       sync.Mutex
	chambres map[uuid.UUID]string
	lits     map[uuid.UUID]*litDTO.Lit
}

func newMockLitRepo() *mockLitRepo {
	return &mockLitRepo{chambres: map[uuid.UUID]string{}, lits: map[uuid.UUID]*litDTO.Lit{}}
}

func (m *mockLitRepo) addChambre(numero string) uuid.UUID {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := uuid.New()
	m.chambres[id] = numero
	return id
}

func (m *mockLitRepo) occupy(id uuid.UUID) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lits[id].Statut = litDTO.StatutOccupe
	m.lits[id].Patient = &litDTO.PatientSummary{ID: uuid.New(), Nom: "Awa Diallo"}
}

func (m *mockLitRepo) List(_ context.Context, filter dto.LitFilter, _ utils.Pagination) ([]litDTO.Lit, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []litDTO.Lit{}
	for _, l := range m.lits {
		if filter.Statut != "" && l.Statut != filter.Statut {
			continue
		}
		if filter.ChambreID != nil && l.Chambre.ID != *filter.ChambreID {
			continue
		}
		out = append(out, *l)
	}
	return out, int64(len(out)), nil
}

func (m *mockLitRepo) Available(ctx context.Context) ([]litDTO.Lit, error) {
	lits, _, err := m.List(ctx, dto.LitFilter{Statut: litDTO.StatutDisponible}, utils.Pagination{Page: 1, PerPage: utils.MaxPerPage})
	return lits, err
}

func (m *mockLitRepo) FindByID(_ context.Context, id uuid.UUID) (*litDTO.Lit, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	l, ok := m.lits[id]
	if !ok {
		return nil, nil
	}
	out := *l
	return &out, nil
}

func (m *mockLitRepo) ChambreExists(_ context.Context, id uuid.UUID) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.chambres[id]
	return ok, nil
}

func (m *mockLitRepo) Create(_ context.Context, n dto.NewLit) (*litDTO.Lit, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, l := range m.lits {
		if l.Chambre.ID == n.ChambreID && l.Numero == n.Numero {
			return nil, &pgconn.PgError{Code: "23505", ConstraintName: "lits_chambre_numero_key"}
		}
	}
	chambre := m.chambres[n.ChambreID]
	l := &litDTO.Lit{
		ID:                 uuid.New(),
		Chambre:            litDTO.ChambreSummary{ID: n.ChambreID, Numero: chambre, Type: "standard"},
		Numero:             n.Numero,
		IdentifiantComplet: litDTO.IdentifiantComplet(chambre, n.Numero),
		Statut:             n.Statut,
		Notes:              n.Notes,
	}
	m.lits[l.ID] = l
	out := *l
	return &out, nil
}

func (m *mockLitRepo) Update(_ context.Context, id uuid.UUID, ch dto.LitChanges) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	l, ok := m.lits[id]
	if !ok || (l.Statut == litDTO.StatutOccupe && ch.Statut != nil) {
		return false, nil
	}
	if ch.Numero != nil {
		l.Numero = *ch.Numero
		l.IdentifiantComplet = litDTO.IdentifiantComplet(l.Chambre.Numero, l.Numero)
	}
	if ch.Statut != nil {
		l.Statut = *ch.Statut
	}
	if ch.Notes != nil {
		l.Notes = ch.Notes
	}
	return true, nil
}

func (m *mockLitRepo) Delete(_ context.Context, id uuid.UUID) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	l, ok := m.lits[id]
	if !ok || l.Statut == litDTO.StatutOccupe {
		return false, nil
	}
	delete(m.lits, id)
	return true, nil
}

func ptr(s string) *string { return &s }

func TestLitService_Create(t *testing.T) {
	ctx := context.Background()
	repo := newMockLitRepo()
	svc := NewLitService(repo)
	chambreID := repo.addChambre("104")

	lit, err := svc.Create(ctx, dto.CreateLitRequest{ChambreID: chambreID.String(), Numero: "A"})
	require.NoError(t, err)
	assert.Equal(t, litDTO.StatutDisponible, lit.Statut)
	assert.Equal(t, "104-A", lit.IdentifiantComplet)

	_, err = svc.Create(ctx, dto.CreateLitRequest{ChambreID: chambreID.String(), Numero: "A"})
	appErr, ok := apperror.As(err)
	require.True(t, ok)
	assert.Contains(t, appErr.Fields, "numero")

	_, err = svc.Create(ctx, dto.CreateLitRequest{ChambreID: chambreID.String(), Numero: "B", Statut: litDTO.StatutOccupe})
	assert.True(t, apperror.IsKind(err, apperror.KindValidation))

	_, err = svc.Create(ctx, dto.CreateLitRequest{ChambreID: uuid.NewString(), Numero: "C"})
	appErr, ok = apperror.As(err)
	require.True(t, ok)
	assert.Contains(t, appErr.Fields, "chambre_id")
}

func TestLitService_ManualStatuses(t *testing.T) {
	ctx := context.Background()
	repo := newMockLitRepo()
	svc := NewLitService(repo)
	lit, err := svc.Create(ctx, dto.CreateLitRequest{ChambreID: repo.addChambre("105").String(), Numero: "A"})
	require.NoError(t, err)

	for _, statut := range []string{litDTO.StatutMaintenance, litDTO.StatutReserve, litDTO.StatutDisponible} {
		updated, err := svc.Update(ctx, lit.ID, dto.UpdateLitRequest{Statut: ptr(statut)})
		require.NoError(t, err)
		assert.Equal(t, statut, updated.Statut)
	}

	_, err = svc.Update(ctx, lit.ID, dto.UpdateLitRequest{Statut: ptr(litDTO.StatutOccupe)})
	assert.True(t, apperror.IsKind(err, apperror.KindValidation))
}

func TestLitService_OccupiedBedIsLocked(t *testing.T) {
	ctx := context.Background()
	repo := newMockLitRepo()
	svc := NewLitService(repo)
	lit, err := svc.Create(ctx, dto.CreateLitRequest{ChambreID: repo.addChambre("106").String(), Numero: "A"})
	require.NoError(t, err)
	repo.occupy(lit.ID)

	_, err = svc.Update(ctx, lit.ID, dto.UpdateLitRequest{Statut: ptr(litDTO.StatutMaintenance)})
	assert.True(t, apperror.IsKind(err, apperror.KindInvalidState))

	err = svc.Delete(ctx, lit.ID)
	appErr, ok := apperror.As(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusUnprocessableEntity, appErr.Status())
	assert.Equal(t, "Impossible de supprimer un lit occupé", appErr.Message)

	current, err := svc.Get(ctx, lit.ID)
	require.NoError(t, err)
	assert.Equal(t, litDTO.StatutOccupe, current.Statut)
}

func TestLitService_DeleteUnknown(t *testing.T) {
	svc := NewLitService(newMockLitRepo())
	err := svc.Delete(context.Background(), uuid.New())
	assert.True(t, apperror.IsKind(err, apperror.KindNotFound))
}

func TestLitService_OccupiedBedKeepsEditableNotes(t *testing.T) {
	ctx := context.Background()
	repo := newMockLitRepo()
	svc := NewLitService(repo)
	lit, err := svc.Create(ctx, dto.CreateLitRequest{ChambreID: repo.addChambre("107").String(), Numero: "A"})
	require.NoError(t, err)
	repo.occupy(lit.ID)

	updated, err := svc.Update(ctx, lit.ID, dto.UpdateLitRequest{Notes: ptr("Matelas anti-escarres"), Numero: ptr(" B ")})
	require.NoError(t, err)
	require.NotNil(t, updated.Notes)
	assert.Equal(t, "Matelas anti-escarres", *updated.Notes)
	assert.Equal(t, "B", updated.Numero)
	assert.Equal(t, litDTO.StatutOccupe, updated.Statut)
	assert.NotNil(t, updated.Patient)

	_, err = svc.Update(ctx, lit.ID, dto.UpdateLitRequest{Statut: ptr(litDTO.StatutDisponible)})
	assert.True(t, apperror.IsKind(err, apperror.KindInvalidState))
}
