package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"gestion-hospitaliere/internal/app/config"
	"gestion-hospitaliere/internal/infrastructure/database/postgres"
	"gestion-hospitaliere/internal/infrastructure/database/redis"
	"gestion-hospitaliere/internal/infrastructure/metrics"
	"gestion-hospitaliere/internal/modules/auth/dto"
	"gestion-hospitaliere/internal/shared/apperror"
	"gestion-hospitaliere/internal/shared/policy"
	"gestion-hospitaliere/internal/shared/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const invalidCredentials = "Les identifiants fournis sont incorrects."

// UserRepository persistance des comptes
type UserRepository interface {
	UserFinder
	FindByEmail(ctx context.Context, email string) (*dto.UserRecord, error)
	Create(ctx context.Context, user dto.NewUser) (*dto.UserRecord, error)
	ServiceExists(ctx context.Context, id uuid.UUID) (bool, error)
}

type AuthService struct {
	users        UserRepository
	tokens       *TokenService
	cache        redis.Cache
	keys         *redis.RedisKeyGenerator
	metrics      metrics.Recorder
	log          *zap.Logger
	maxAttempts  int64
	lockDuration time.Duration
}

func NewAuthService(
	cfg *config.Config,
	users UserRepository,
	tokens *TokenService,
	cache redis.Cache,
	keys *redis.RedisKeyGenerator,
	recorder metrics.Recorder,
	log *zap.Logger,
) *AuthService {
	maxAttempts := int64(cfg.Auth.MaxLoginAttempts)
	if maxAttempts <= 0 {
		maxAttempts = 5
	}
	lockDuration := cfg.Auth.LoginLockDuration
	if lockDuration <= 0 {
		lockDuration, _ = keys.GetTTL("auth_login_attempts")
	}
	return &AuthService{
		users:        users,
		tokens:       tokens,
		cache:        cache,
		keys:         keys,
		metrics:      recorder,
		log:          log,
		maxAttempts:  maxAttempts,
		lockDuration: lockDuration,
	}
}

// Register crée le compte et le profil correspondant au rôle, puis connecte l'utilisateur
func (s *AuthService) Register(ctx context.Context, req dto.RegisterRequest) (*dto.AuthResponse, error) {
	role, err := policy.ParseRole(req.Role)
	if err != nil || role == policy.RoleAdmin {
		return nil, apperror.Field("role", "Le rôle sélectionné est invalide")
	}

	email := strings.TrimSpace(req.Email)
	existing, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("recherche email: %w", err)
	}
	if existing != nil {
		return nil, apperror.Field("email", "Cette adresse email est déjà utilisée")
	}

	newUser := dto.NewUser{
		Name:  strings.TrimSpace(req.Name),
		Email: email,
		Role:  role.String(),
	}

	switch role {
	case policy.RolePatient:
		profile := &dto.PatientProfile{
			Adresse:       req.Adresse,
			Telephone:     req.Telephone,
			GroupeSanguin: req.GroupeSanguin,
		}
		if req.DateNaissance != "" {
			d, err := utils.ParseDate(req.DateNaissance)
			if err != nil || !d.Before(time.Now()) {
				return nil, apperror.Field("date_naissance", "La date de naissance doit être dans le passé")
			}
			profile.DateNaissance = &d
		}
		newUser.Patient = profile
	case policy.RoleMedecin:
		profile, err := s.medecinProfile(ctx, req)
		if err != nil {
			return nil, err
		}
		newUser.Medecin = profile
	}

	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}
	newUser.PasswordHash = hash

	user, err := s.users.Create(ctx, newUser)
	if err != nil {
		if postgres.IsUniqueViolation(err, "users_email_key") {
			return nil, apperror.Field("email", "Cette adresse email est déjà utilisée")
		}
		return nil, fmt.Errorf("création du compte: %w", err)
	}

	s.log.Info("nouveau compte", zap.String("user_id", user.ID.String()), zap.String("role", user.Role))
	return s.authenticate(user)
}

// Login vérifie les identifiants. Au-delà de maxAttempts échecs par email
// la connexion est refusée jusqu'à la fin de la fenêtre.
func (s *AuthService) Login(ctx context.Context, req dto.LoginRequest) (*dto.AuthResponse, error) {
	attemptsKey := s.keys.MustKey("auth_login_attempts", strings.ToLower(strings.TrimSpace(req.Email)))

	if err := s.checkRateLimit(ctx, attemptsKey); err != nil {
		return nil, err
	}

	user, err := s.users.FindByEmail(ctx, strings.TrimSpace(req.Email))
	if err != nil {
		return nil, fmt.Errorf("recherche utilisateur: %w", err)
	}
	if user == nil || !utils.VerifyPassword(req.Password, user.PasswordHash) {
		s.incrementFailedAttempt(ctx, attemptsKey)
		s.metrics.LoginAttempt(ctx, false)
		return nil, apperror.Unauthenticated(invalidCredentials).WithCode("INVALID_CREDENTIALS")
	}

	if err := s.cache.Del(ctx, attemptsKey); err != nil {
		s.log.Warn("remise à zéro des tentatives impossible", zap.Error(err))
	}
	s.metrics.LoginAttempt(ctx, true)

	return s.authenticate(user)
}

// Logout révoque le jeton courant. Idempotent.
func (s *AuthService) Logout(ctx context.Context, claims *Claims) error {
	if err := s.tokens.Revoke(ctx, claims); err != nil {
		return fmt.Errorf("révocation du jeton: %w", err)
	}
	return nil
}

// Profile compte de l'utilisateur authentifié
func (s *AuthService) Profile(ctx context.Context, userID uuid.UUID) (*dto.UserData, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("chargement profil: %w", err)
	}
	if user == nil {
		return nil, apperror.NotFound("Utilisateur non trouvé")
	}
	data := user.ToUserData()
	return &data, nil
}

func (s *AuthService) medecinProfile(ctx context.Context, req dto.RegisterRequest) (*dto.MedecinProfile, error) {
	fields := map[string]string{}
	if strings.TrimSpace(req.Specialite) == "" {
		fields["specialite"] = "La spécialité est obligatoire pour un médecin"
	}
	serviceID, err := uuid.Parse(req.ServiceID)
	if err != nil {
		fields["service_id"] = "Le service est obligatoire pour un médecin"
	}
	if len(fields) > 0 {
		return nil, apperror.Validation("Les données fournies sont invalides.", fields)
	}

	exists, err := s.users.ServiceExists(ctx, serviceID)
	if err != nil {
		return nil, fmt.Errorf("vérification service: %w", err)
	}
	if !exists {
		return nil, apperror.Field("service_id", "Le service sélectionné est invalide")
	}
	return &dto.MedecinProfile{ServiceID: serviceID, Specialite: strings.TrimSpace(req.Specialite)}, nil
}

func (s *AuthService) authenticate(user *dto.UserRecord) (*dto.AuthResponse, error) {
	token, expiresAt, err := s.tokens.Issue(user)
	if err != nil {
		return nil, err
	}
	return &dto.AuthResponse{
		Token:     token,
		TokenType: "Bearer",
		ExpiresAt: expiresAt.Format(time.RFC3339),
		User:      user.ToUserData(),
	}, nil
}

// checkRateLimit Redis indisponible = pas de limitation
func (s *AuthService) checkRateLimit(ctx context.Context, key string) error {
	val, err := s.cache.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			s.log.Warn("lecture compteur de connexion impossible", zap.Error(err))
		}
		return nil
	}

	attempts, _ := strconv.ParseInt(val, 10, 64)
	if attempts >= s.maxAttempts {
		minutes := int(s.lockDuration.Minutes())
		return apperror.TooManyRequests(
			fmt.Sprintf("Trop de tentatives de connexion. Veuillez réessayer dans %d minutes.", minutes),
		).WithCode("RATE_LIMIT_EXCEEDED")
	}
	return nil
}

func (s *AuthService) incrementFailedAttempt(ctx context.Context, key string) {
	if _, _, err := s.cache.IncrWithWindow(ctx, key, s.lockDuration); err != nil {
		s.log.Warn("incrément compteur de connexion impossible", zap.Error(err))
	}
}
