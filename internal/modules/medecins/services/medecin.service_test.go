package services

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"gestion-hospitaliere/internal/modules/medecins/dto"
	"gestion-hospitaliere/internal/shared/apperror"
	"gestion-hospitaliere/internal/shared/utils"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type mockMedecinRepo struct {
	mu       sync.Mutex
	items    map[uuid.UUID]*dto.Medecin
	emails   map[string]bool
	services map[uuid.UUID]string
	hashes   map[uuid.UUID]string
}

func newMockMedecinRepo() *mockMedecinRepo {
	return &mockMedecinRepo{
		items:    map[uuid.UUID]*dto.Medecin{},
		emails:   map[string]bool{},
		services: map[uuid.UUID]string{},
		hashes:   map[uuid.UUID]string{},
	}
}

func (m *mockMedecinRepo) addService(nom string) uuid.UUID {
	id := uuid.New()
	m.services[id] = nom
	return id
}

func (m *mockMedecinRepo) List(_ context.Context, filter dto.MedecinFilter, page utils.Pagination) ([]dto.Medecin, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []dto.Medecin{}
	for _, med := range m.items {
		if filter.ServiceID != nil && med.Service.ID != *filter.ServiceID {
			continue
		}
		if filter.Search != "" && !strings.Contains(strings.ToLower(med.User.Name), strings.ToLower(filter.Search)) {
			continue
		}
		out = append(out, *med)
	}
	return out, int64(len(out)), nil
}

func (m *mockMedecinRepo) FindByID(_ context.Context, id uuid.UUID) (*dto.Medecin, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.items[id], nil
}

func (m *mockMedecinRepo) Create(_ context.Context, n dto.NewMedecin) (*dto.Medecin, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	med := &dto.Medecin{
		ID:             uuid.New(),
		User:           dto.UserSummary{ID: uuid.New(), Name: n.Name, Email: n.Email},
		Specialite:     n.Specialite,
		Service:        dto.ServiceSummary{ID: n.ServiceID, Nom: m.services[n.ServiceID]},
		Disponibilites: n.Disponibilites,
		CreatedAt:      time.Now(),
		UpdatedAt:      time.Now(),
	}
	m.items[med.ID] = med
	m.emails[strings.ToLower(n.Email)] = true
	m.hashes[med.ID] = n.PasswordHash
	return med, nil
}

func (m *mockMedecinRepo) Update(_ context.Context, id uuid.UUID, ch dto.MedecinChanges) (*dto.Medecin, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	med, ok := m.items[id]
	if !ok {
		return nil, nil
	}
	if ch.Name != nil {
		med.User.Name = *ch.Name
	}
	if ch.Specialite != nil {
		med.Specialite = *ch.Specialite
	}
	if ch.ServiceID != nil {
		med.Service = dto.ServiceSummary{ID: *ch.ServiceID, Nom: m.services[*ch.ServiceID]}
	}
	if ch.Disponibilites != nil {
		med.Disponibilites = ch.Disponibilites
	}
	return med, nil
}

func (m *mockMedecinRepo) Delete(_ context.Context, id uuid.UUID) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.items[id]
	delete(m.items, id)
	return ok, nil
}

func (m *mockMedecinRepo) EmailExists(_ context.Context, email string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.emails[strings.ToLower(email)], nil
}

func (m *mockMedecinRepo) ServiceExists(_ context.Context, id uuid.UUID) (bool, error) {
	_, ok := m.services[id]
	return ok, nil
}

func TestMedecinService_Create(t *testing.T) {
	ctx := context.Background()
	repo := newMockMedecinRepo()
	cardio := repo.addService("Cardiologie")
	svc := NewMedecinService(repo, zap.NewNop())

	t.Run("mot de passe temporaire", func(t *testing.T) {
		created, err := svc.Create(ctx, dto.CreateMedecinRequest{
			Name:           " Dr Kouassi ",
			Email:          "kouassi@hopital.test",
			Specialite:     "Cardiologue",
			ServiceID:      cardio.String(),
			Disponibilites: map[string]bool{"lundi": true, "mardi": false},
		})
		require.NoError(t, err)
		assert.Equal(t, "Dr Kouassi", created.User.Name)
		assert.Equal(t, "Cardiologie", created.Service.Nom)
		require.NotEmpty(t, created.TemporaryPassword)
		assert.True(t, utils.VerifyPassword(created.TemporaryPassword, repo.hashes[created.ID]))
	})

	t.Run("mot de passe fourni", func(t *testing.T) {
		created, err := svc.Create(ctx, dto.CreateMedecinRequest{
			Name: "Dr Traoré", Email: "traore@hopital.test", Password: "motdepasse1",
			Specialite: "Cardiologue", ServiceID: cardio.String(),
		})
		require.NoError(t, err)
		assert.Empty(t, created.TemporaryPassword)
	})

	t.Run("email déjà utilisé", func(t *testing.T) {
		_, err := svc.Create(ctx, dto.CreateMedecinRequest{
			Name: "Autre", Email: "KOUASSI@hopital.test", Specialite: "X", ServiceID: cardio.String(),
		})
		appErr, ok := apperror.As(err)
		require.True(t, ok)
		assert.Contains(t, appErr.Fields, "email")
	})

	t.Run("service inconnu", func(t *testing.T) {
		_, err := svc.Create(ctx, dto.CreateMedecinRequest{
			Name: "Dr Z", Email: "z@hopital.test", Specialite: "X", ServiceID: uuid.NewString(),
		})
		appErr, ok := apperror.As(err)
		require.True(t, ok)
		assert.Contains(t, appErr.Fields, "service_id")
	})

	t.Run("jour inconnu", func(t *testing.T) {
		_, err := svc.Create(ctx, dto.CreateMedecinRequest{
			Name: "Dr Y", Email: "y@hopital.test", Specialite: "X", ServiceID: cardio.String(),
			Disponibilites: map[string]bool{"monday": true},
		})
		appErr, ok := apperror.As(err)
		require.True(t, ok)
		assert.Contains(t, appErr.Fields, "disponibilites")
	})
}

func TestMedecinService_UpdateAndDelete(t *testing.T) {
	ctx := context.Background()
	repo := newMockMedecinRepo()
	cardio := repo.addService("Cardiologie")
	pedia := repo.addService("Pédiatrie")
	svc := NewMedecinService(repo, zap.NewNop())

	created, err := svc.Create(ctx, dto.CreateMedecinRequest{
		Name: "Dr A", Email: "a@hopital.test", Specialite: "Cardiologue", ServiceID: cardio.String(),
	})
	require.NoError(t, err)

	service := pedia.String()
	specialite := " Pédiatre "
	updated, err := svc.Update(ctx, created.ID, dto.UpdateMedecinRequest{ServiceID: &service, Specialite: &specialite})
	require.NoError(t, err)
	assert.Equal(t, "Pédiatrie", updated.Service.Nom)
	assert.Equal(t, "Pédiatre", updated.Specialite)
	assert.Equal(t, "Dr A", updated.User.Name)

	_, err = svc.Update(ctx, uuid.New(), dto.UpdateMedecinRequest{})
	assert.True(t, apperror.IsKind(err, apperror.KindNotFound))

	require.NoError(t, svc.Delete(ctx, created.ID))
	err = svc.Delete(ctx, created.ID)
	assert.True(t, apperror.IsKind(err, apperror.KindNotFound))

	_, err = svc.Get(ctx, created.ID)
	assert.True(t, apperror.IsKind(err, apperror.KindNotFound))
}
