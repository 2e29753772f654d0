package comptes

import (
	"context"
	"strings"
	"testing"

	dto "gestion-hospitaliere/internal/modules/back-office/users/dto/comptes"
	"gestion-hospitaliere/internal/shared/apperror"
	"gestion-hospitaliere/internal/shared/policy"
	"gestion-hospitaliere/internal/shared/utils"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type memoryComptes struct {
	accounts map[uuid.UUID]*dto.UserAccount
	hashes   map[uuid.UUID]string
}

func newMemoryComptes(accounts ...dto.UserAccount) *memoryComptes {
	m := &memoryComptes{accounts: map[uuid.UUID]*dto.UserAccount{}, hashes: map[uuid.UUID]string{}}
	for i := range accounts {
		a := accounts[i]
		m.accounts[a.ID] = &a
	}
	return m
}

func (m *memoryComptes) List(_ context.Context, filter dto.UserFilter, _ utils.Pagination) ([]dto.UserAccount, int64, error) {
	out := []dto.UserAccount{}
	for _, a := range m.accounts {
		if filter.Role != "" && a.Role != filter.Role {
			continue
		}
		out = append(out, *a)
	}
	return out, int64(len(out)), nil
}

func (m *memoryComptes) FindByID(_ context.Context, id uuid.UUID) (*dto.UserAccount, error) {
	if a, ok := m.accounts[id]; ok {
		copied := *a
		return &copied, nil
	}
	return nil, nil
}

func (m *memoryComptes) FindByEmail(_ context.Context, email string) (*dto.UserAccount, error) {
	for _, a := range m.accounts {
		if strings.EqualFold(a.Email, email) {
			copied := *a
			return &copied, nil
		}
	}
	return nil, nil
}

func (m *memoryComptes) UpdateRole(_ context.Context, id uuid.UUID, role string) (bool, error) {
	a, ok := m.accounts[id]
	if !ok {
		return false, nil
	}
	a.Role = role
	return true, nil
}

func (m *memoryComptes) Create(_ context.Context, name, email, hash, role string) (*dto.UserAccount, error) {
	a := &dto.UserAccount{ID: uuid.New(), Name: name, Email: email, Role: role}
	m.accounts[a.ID] = a
	m.hashes[a.ID] = hash
	copied := *a
	return &copied, nil
}

type recordingInvalidator struct {
	invalidated []uuid.UUID
}

func (r *recordingInvalidator) Invalidate(_ context.Context, id uuid.UUID) error {
	r.invalidated = append(r.invalidated, id)
	return nil
}

func newTestService(accounts ...dto.UserAccount) (*ComptesService, *memoryComptes, *recordingInvalidator) {
	repo := newMemoryComptes(accounts...)
	inv := &recordingInvalidator{}
	return NewComptesService(repo, inv, zap.NewNop()), repo, inv
}

func TestPromote(t *testing.T) {
	ctx := context.Background()
	admin := &policy.Principal{UserID: uuid.New(), Role: policy.RoleAdmin}
	plain := dto.UserAccount{ID: uuid.New(), Name: "Awa", Email: "awa@example.com", Role: "Infirmier"}
	patientID := uuid.New()
	patient := dto.UserAccount{ID: uuid.New(), Name: "Koffi", Email: "koffi@example.com", Role: "Patient", PatientID: &patientID}

	t.Run("promeut et invalide le cache", func(t *testing.T) {
		svc, repo, inv := newTestService(plain)

		account, err := svc.Promote(ctx, admin, plain.ID, dto.PromoteRequest{Role: "Admin"})
		require.NoError(t, err)
		assert.Equal(t, "Admin", account.Role)
		assert.Equal(t, "Admin", repo.accounts[plain.ID].Role)
		assert.Equal(t, []uuid.UUID{plain.ID}, inv.invalidated)
	})

	t.Run("même rôle sans écriture", func(t *testing.T) {
		svc, _, inv := newTestService(plain)

		_, err := svc.Promote(ctx, admin, plain.ID, dto.PromoteRequest{Role: "Infirmier"})
		require.NoError(t, err)
		assert.Empty(t, inv.invalidated)
	})

	t.Run("compte avec profil refusé", func(t *testing.T) {
		svc, _, _ := newTestService(patient)

		_, err := svc.Promote(ctx, admin, patient.ID, dto.PromoteRequest{Role: "Admin"})
		assert.True(t, apperror.IsKind(err, apperror.KindInvalidState))
	})

	t.Run("propre compte refusé", func(t *testing.T) {
		svc, _, _ := newTestService(dto.UserAccount{ID: admin.UserID, Role: "Admin"})

		_, err := svc.Promote(ctx, admin, admin.UserID, dto.PromoteRequest{Role: "Infirmier"})
		assert.True(t, apperror.IsKind(err, apperror.KindInvalidState))
	})

	t.Run("rôle non attribuable", func(t *testing.T) {
		svc, _, _ := newTestService(plain)

		_, err := svc.Promote(ctx, admin, plain.ID, dto.PromoteRequest{Role: "Médecin"})
		assert.True(t, apperror.IsKind(err, apperror.KindValidation))
	})

	t.Run("compte inconnu", func(t *testing.T) {
		svc, _, _ := newTestService()

		_, err := svc.Promote(ctx, admin, uuid.New(), dto.PromoteRequest{Role: "Admin"})
		assert.True(t, apperror.IsKind(err, apperror.KindNotFound))
	})
}

func TestCreateOrPromoteAdmin(t *testing.T) {
	ctx := context.Background()

	t.Run("création avec mot de passe temporaire", func(t *testing.T) {
		svc, repo, _ := newTestService()

		result, err := svc.CreateOrPromoteAdmin(ctx, "Admin", "admin@example.com", "")
		require.NoError(t, err)
		assert.True(t, result.Created)
		assert.Len(t, result.Password, temporaryPasswordSize)
		assert.Equal(t, "Admin", result.User.Role)
		assert.True(t, utils.VerifyPassword(result.Password, repo.hashes[result.User.ID]))
	})

	t.Run("mot de passe fourni non retourné", func(t *testing.T) {
		svc, repo, _ := newTestService()

		result, err := svc.CreateOrPromoteAdmin(ctx, "Admin", "admin@example.com", "secret-123")
		require.NoError(t, err)
		assert.Empty(t, result.Password)
		assert.True(t, utils.VerifyPassword("secret-123", repo.hashes[result.User.ID]))
	})

	t.Run("promotion d'un compte existant", func(t *testing.T) {
		existing := dto.UserAccount{ID: uuid.New(), Name: "Awa", Email: "awa@example.com", Role: "Infirmier"}
		svc, repo, inv := newTestService(existing)

		result, err := svc.CreateOrPromoteAdmin(ctx, "", "AWA@example.com", "")
		require.NoError(t, err)
		assert.False(t, result.Created)
		assert.Equal(t, "Admin", repo.accounts[existing.ID].Role)
		assert.Equal(t, []uuid.UUID{existing.ID}, inv.invalidated)
	})

	t.Run("administrateur existant", func(t *testing.T) {
		existing := dto.UserAccount{ID: uuid.New(), Email: "admin@example.com", Role: "Admin"}
		svc, _, _ := newTestService(existing)

		_, err := svc.CreateOrPromoteAdmin(ctx, "Admin", "admin@example.com", "")
		assert.True(t, apperror.IsKind(err, apperror.KindConflict))
	})
}
