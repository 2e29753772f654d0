package services

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"gestion-hospitaliere/internal/app/config"
	"gestion-hospitaliere/internal/infrastructure/database/redis"
	"gestion-hospitaliere/internal/infrastructure/metrics"
	"gestion-hospitaliere/internal/modules/auth/dto"
	"gestion-hospitaliere/internal/shared/apperror"
	"gestion-hospitaliere/internal/shared/policy"
	"gestion-hospitaliere/internal/shared/utils"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// -- Mock Repository --

type mockUserRepo struct {
	mu       sync.Mutex
	users    map[uuid.UUID]*dto.UserRecord
	services map[uuid.UUID]bool
	finds    int
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{
		users:    make(map[uuid.UUID]*dto.UserRecord),
		services: make(map[uuid.UUID]bool),
	}
}

func (m *mockUserRepo) FindByID(_ context.Context, id uuid.UUID) (*dto.UserRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.finds++
	u, ok := m.users[id]
	if !ok {
		return nil, nil
	}
	return u, nil
}

func (m *mockUserRepo) FindByEmail(_ context.Context, email string) (*dto.UserRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if strings.EqualFold(u.Email, email) {
			return u, nil
		}
	}
	return nil, nil
}

func (m *mockUserRepo) Create(_ context.Context, user dto.NewUser) (*dto.UserRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	record := &dto.UserRecord{
		ID:           uuid.New(),
		Name:         user.Name,
		Email:        user.Email,
		PasswordHash: user.PasswordHash,
		Role:         user.Role,
		CreatedAt:    time.Now(),
	}
	if user.Patient != nil {
		id := uuid.New()
		record.PatientID = &id
	}
	if user.Medecin != nil {
		id := uuid.New()
		record.MedecinID = &id
	}
	m.users[record.ID] = record
	return record, nil
}

func (m *mockUserRepo) ServiceExists(_ context.Context, id uuid.UUID) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.services[id], nil
}

func (m *mockUserRepo) add(t *testing.T, email, password string, role policy.Role) *dto.UserRecord {
	t.Helper()
	hash, err := utils.HashPassword(password)
	require.NoError(t, err)
	m.mu.Lock()
	defer m.mu.Unlock()
	u := &dto.UserRecord{ID: uuid.New(), Name: "Test", Email: email, PasswordHash: hash, Role: string(role)}
	m.users[u.ID] = u
	return u
}

// -- Fixtures --

type authFixture struct {
	repo       *mockUserRepo
	cache      *redis.MemoryCache
	tokens     *TokenService
	principals *PrincipalService
	auth       *AuthService
}

func testConfig() *config.Config {
	return &config.Config{
		Auth: config.AuthConfig{
			JWTSecret:         "secret-de-test-suffisamment-long",
			JWTIssuer:         "gestion-hospitaliere",
			TokenTTL:          time.Hour,
			MaxLoginAttempts:  5,
			LoginLockDuration: 15 * time.Minute,
			PrincipalCacheTTL: 5 * time.Minute,
		},
	}
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()
	cfg := testConfig()
	repo := newMockUserRepo()
	cache := redis.NewMemoryCache()
	keys := redis.NewRedisKeyGenerator()
	log := zap.NewNop()

	tokens := NewTokenService(cfg, cache, keys)
	return &authFixture{
		repo:       repo,
		cache:      cache,
		tokens:     tokens,
		principals: NewPrincipalService(cfg, repo, cache, keys, log),
		auth:       NewAuthService(cfg, repo, tokens, cache, keys, metrics.Nop{}, log),
	}
}

// -- Tests --

func TestRegister_PatientCreatesProfile(t *testing.T) {
	f := newAuthFixture(t)

	res, err := f.auth.Register(context.Background(), dto.RegisterRequest{
		Name:          "Awa Diallo",
		Email:         "awa@example.com",
		Password:      "motdepasse",
		Role:          "Patient",
		DateNaissance: "1990-05-12",
		Telephone:     "0612345678",
		GroupeSanguin: "O+",
	})
	require.NoError(t, err)
	assert.Equal(t, "Bearer", res.TokenType)
	assert.NotEmpty(t, res.Token)
	assert.Equal(t, "Patient", res.User.Role)
	assert.NotNil(t, res.User.PatientID)
	assert.Nil(t, res.User.MedecinID)
}

func TestRegister_RejectsAdminAndDuplicateEmail(t *testing.T) {
	f := newAuthFixture(t)
	f.repo.add(t, "pris@example.com", "motdepasse", policy.RolePatient)

	_, err := f.auth.Register(context.Background(), dto.RegisterRequest{
		Name: "X", Email: "nouveau@example.com", Password: "motdepasse", Role: "Admin",
	})
	assert.True(t, apperror.IsKind(err, apperror.KindValidation))

	_, err = f.auth.Register(context.Background(), dto.RegisterRequest{
		Name: "X", Email: "PRIS@example.com", Password: "motdepasse", Role: "Patient",
	})
	appErr, ok := apperror.As(err)
	require.True(t, ok)
	assert.Contains(t, appErr.Fields, "email")
}

func TestRegister_MedecinRequiresKnownService(t *testing.T) {
	f := newAuthFixture(t)

	_, err := f.auth.Register(context.Background(), dto.RegisterRequest{
		Name: "Dr House", Email: "house@example.com", Password: "motdepasse", Role: "Médecin",
	})
	appErr, ok := apperror.As(err)
	require.True(t, ok)
	assert.Contains(t, appErr.Fields, "service_id")
	assert.Contains(t, appErr.Fields, "specialite")

	serviceID := uuid.New()
	_, err = f.auth.Register(context.Background(), dto.RegisterRequest{
		Name: "Dr House", Email: "house@example.com", Password: "motdepasse", Role: "Médecin",
		ServiceID: serviceID.String(), Specialite: "Diagnostic",
	})
	assert.True(t, apperror.IsKind(err, apperror.KindValidation))

	f.repo.services[serviceID] = true
	res, err := f.auth.Register(context.Background(), dto.RegisterRequest{
		Name: "Dr House", Email: "house@example.com", Password: "motdepasse", Role: "Médecin",
		ServiceID: serviceID.String(), Specialite: "Diagnostic",
	})
	require.NoError(t, err)
	assert.NotNil(t, res.User.MedecinID)
}

func TestLogin_SuccessAndFailure(t *testing.T) {
	f := newAuthFixture(t)
	user := f.repo.add(t, "jean@example.com", "motdepasse", policy.RoleInfirmier)

	res, err := f.auth.Login(context.Background(), dto.LoginRequest{Email: "jean@example.com", Password: "motdepasse"})
	require.NoError(t, err)
	assert.Equal(t, user.ID.String(), res.User.ID)

	_, err = f.auth.Login(context.Background(), dto.LoginRequest{Email: "jean@example.com", Password: "mauvais"})
	assert.True(t, apperror.IsKind(err, apperror.KindUnauthenticated))

	_, err = f.auth.Login(context.Background(), dto.LoginRequest{Email: "inconnu@example.com", Password: "x"})
	assert.True(t, apperror.IsKind(err, apperror.KindUnauthenticated))
}

func TestLogin_RateLimitedAfterFiveFailures(t *testing.T) {
	f := newAuthFixture(t)
	f.repo.add(t, "jean@example.com", "motdepasse", policy.RolePatient)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		_, err := f.auth.Login(ctx, dto.LoginRequest{Email: "jean@example.com", Password: "mauvais"})
		require.True(t, apperror.IsKind(err, apperror.KindUnauthenticated))
	}

	_, err := f.auth.Login(ctx, dto.LoginRequest{Email: "Jean@example.com", Password: "motdepasse"})
	assert.True(t, apperror.IsKind(err, apperror.KindTooManyRequests))
}

func TestLogin_SuccessResetsCounter(t *testing.T) {
	f := newAuthFixture(t)
	f.repo.add(t, "jean@example.com", "motdepasse", policy.RolePatient)
	ctx := context.Background()

	for i := 0; i < 4; i++ {
		_, _ = f.auth.Login(ctx, dto.LoginRequest{Email: "jean@example.com", Password: "mauvais"})
	}
	_, err := f.auth.Login(ctx, dto.LoginRequest{Email: "jean@example.com", Password: "motdepasse"})
	require.NoError(t, err)
	assert.Empty(t, f.cache.Keys("hopital_auth_login_attempts"))
}

func TestTokenLifecycle_IssueParseRevoke(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	user := f.repo.add(t, "jean@example.com", "motdepasse", policy.RoleMedecin)

	token, expiresAt, err := f.tokens.Issue(user)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expiresAt, time.Minute)

	claims, err := f.tokens.Parse(ctx, token)
	require.NoError(t, err)
	id, err := claims.UserID()
	require.NoError(t, err)
	assert.Equal(t, user.ID, id)
	assert.Equal(t, "Médecin", claims.Role)

	require.NoError(t, f.auth.Logout(ctx, claims))
	_, err = f.tokens.Parse(ctx, token)
	appErr, ok := apperror.As(err)
	require.True(t, ok)
	assert.Equal(t, "TOKEN_REVOKED", appErr.Code)

	// logout idempotent
	assert.NoError(t, f.auth.Logout(ctx, claims))
}

func TestTokenParse_RejectsForeignSignatureAndExpired(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	user := f.repo.add(t, "jean@example.com", "motdepasse", policy.RolePatient)

	other := NewTokenService(&config.Config{Auth: config.AuthConfig{JWTSecret: "autre", JWTIssuer: "gestion-hospitaliere"}}, f.cache, redis.NewRedisKeyGenerator())
	foreign, _, err := other.Issue(user)
	require.NoError(t, err)
	_, err = f.tokens.Parse(ctx, foreign)
	assert.True(t, apperror.IsKind(err, apperror.KindUnauthenticated))

	token, _, err := f.tokens.Issue(user)
	require.NoError(t, err)
	f.tokens.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	_, err = f.tokens.Parse(ctx, token)
	appErr, ok := apperror.As(err)
	require.True(t, ok)
	assert.Equal(t, "TOKEN_EXPIRED", appErr.Code)
}

func TestPrincipalResolve_UsesCache(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	user := f.repo.add(t, "jean@example.com", "motdepasse", policy.RolePatient)
	patientID := uuid.New()
	user.PatientID = &patientID

	p, err := f.principals.Resolve(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, policy.RolePatient, p.Role)
	assert.True(t, p.OwnsPatient(patientID))

	p2, err := f.principals.Resolve(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, p, p2)
	assert.Equal(t, 1, f.repo.finds, "second appel servi par le cache")

	require.NoError(t, f.principals.Invalidate(ctx, user.ID))
	_, err = f.principals.Resolve(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, f.repo.finds)
}

func TestPrincipalResolve_UnknownUser(t *testing.T) {
	f := newAuthFixture(t)

	_, err := f.principals.Resolve(context.Background(), uuid.New())
	assert.True(t, apperror.IsKind(err, apperror.KindUnauthenticated))
}
