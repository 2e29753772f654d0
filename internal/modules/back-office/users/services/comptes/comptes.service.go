package comptes

import (
	"context"
	"fmt"
	"strings"

	"gestion-hospitaliere/internal/infrastructure/database/postgres"
	dto "gestion-hospitaliere/internal/modules/back-office/users/dto/comptes"
	"gestion-hospitaliere/internal/shared/apperror"
	"gestion-hospitaliere/internal/shared/policy"
	"gestion-hospitaliere/internal/shared/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	userNotFound          = "Utilisateur non trouvé"
	temporaryPasswordSize = 12
)

type ComptesRepository interface {
	List(ctx context.Context, filter dto.UserFilter, page utils.Pagination) ([]dto.UserAccount, int64, error)
	FindByID(ctx context.Context, id uuid.UUID) (*dto.UserAccount, error)
	FindByEmail(ctx context.Context, email string) (*dto.UserAccount, error)
	UpdateRole(ctx context.Context, id uuid.UUID, role string) (bool, error)
	Create(ctx context.Context, name, email, passwordHash, role string) (*dto.UserAccount, error)
}

// PrincipalInvalidator purge le principal mis en cache après un changement de rôle
type PrincipalInvalidator interface {
	Invalidate(ctx context.Context, userID uuid.UUID) error
}

type ComptesService struct {
	repo       ComptesRepository
	principals PrincipalInvalidator
	log        *zap.Logger
}

func NewComptesService(repo ComptesRepository, principals PrincipalInvalidator, log *zap.Logger) *ComptesService {
	return &ComptesService{repo: repo, principals: principals, log: log}
}

func (s *ComptesService) List(ctx context.Context, filter dto.UserFilter, page utils.Pagination) ([]dto.UserAccount, int64, error) {
	filter.Search = strings.TrimSpace(filter.Search)
	return s.repo.List(ctx, filter, page)
}

func (s *ComptesService) Get(ctx context.Context, id uuid.UUID) (*dto.UserAccount, error) {
	account, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if account == nil {
		return nil, apperror.NotFound(userNotFound)
	}
	return account, nil
}

// Promote change le rôle d'un compte sans profil patient ou médecin.
// Un administrateur ne peut pas modifier son propre rôle.
func (s *ComptesService) Promote(ctx context.Context, actor *policy.Principal, id uuid.UUID, req dto.PromoteRequest) (*dto.UserAccount, error) {
	role, err := policy.ParseRole(req.Role)
	if err != nil || (role != policy.RoleAdmin && role != policy.RoleInfirmier) {
		return nil, apperror.Field("role", "Le rôle doit être Admin ou Infirmier")
	}
	if actor != nil && actor.UserID == id {
		return nil, apperror.InvalidState("Vous ne pouvez pas modifier votre propre rôle")
	}

	account, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if account.PatientID != nil || account.MedecinID != nil {
		return nil, apperror.InvalidState("Ce compte possède un profil patient ou médecin")
	}
	if account.Role == role.String() {
		return account, nil
	}

	if err := s.changeRole(ctx, account, role); err != nil {
		return nil, err
	}
	return account, nil
}

// CreateOrPromoteAdmin crée le compte administrateur ou promeut le compte existant.
// Sans mot de passe fourni, un mot de passe temporaire est généré et retourné.
func (s *ComptesService) CreateOrPromoteAdmin(ctx context.Context, name, email, password string) (*dto.AdminAccount, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return nil, apperror.Field("email", "L'email est obligatoire")
	}

	existing, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		if existing.Role == policy.RoleAdmin.String() {
			return nil, apperror.Conflict("Un administrateur existe déjà avec cet email")
		}
		if err := s.changeRole(ctx, existing, policy.RoleAdmin); err != nil {
			return nil, err
		}
		return &dto.AdminAccount{User: *existing}, nil
	}

	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperror.Field("name", "Le nom est obligatoire")
	}

	result := &dto.AdminAccount{Created: true}
	if password == "" {
		if password, err = utils.GenerateTemporaryPassword(temporaryPasswordSize); err != nil {
			return nil, err
		}
		result.Password = password
	}
	hash, err := utils.HashPassword(password)
	if err != nil {
		return nil, err
	}

	account, err := s.repo.Create(ctx, name, email, hash, policy.RoleAdmin.String())
	if err != nil {
		if postgres.IsUniqueViolation(err, "users_email_key") {
			return nil, apperror.Field("email", "Cette adresse email est déjà utilisée")
		}
		return nil, fmt.Errorf("création du compte administrateur: %w", err)
	}
	result.User = *account
	s.log.Info("compte administrateur créé", zap.String("user_id", account.ID.String()))
	return result, nil
}

func (s *ComptesService) changeRole(ctx context.Context, account *dto.UserAccount, role policy.Role) error {
	found, err := s.repo.UpdateRole(ctx, account.ID, role.String())
	if err != nil {
		return fmt.Errorf("changement de rôle: %w", err)
	}
	if !found {
		return apperror.NotFound(userNotFound)
	}

	previous := account.Role
	account.Role = role.String()
	if err := s.principals.Invalidate(ctx, account.ID); err != nil {
		s.log.Warn("invalidation du principal impossible", zap.String("user_id", account.ID.String()), zap.Error(err))
	}
	s.log.Info("rôle modifié",
		zap.String("user_id", account.ID.String()),
		zap.String("from", previous),
		zap.String("to", account.Role),
	)
	return nil
}
