package services

import (
	"context"
	"fmt"
	"strings"

	"gestion-hospitaliere/internal/infrastructure/database/postgres"
	"gestion-hospitaliere/internal/modules/medecins/dto"
	"gestion-hospitaliere/internal/shared/apperror"
	"gestion-hospitaliere/internal/shared/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	medecinNotFound    = "Médecin non trouvé"
	tempPasswordLength = 12
)

type MedecinRepository interface {
	List(ctx context.Context, filter dto.MedecinFilter, page utils.Pagination) ([]dto.Medecin, int64, error)
	FindByID(ctx context.Context, id uuid.UUID) (*dto.Medecin, error)
	Create(ctx context.Context, m dto.NewMedecin) (*dto.Medecin, error)
	Update(ctx context.Context, id uuid.UUID, changes dto.MedecinChanges) (*dto.Medecin, error)
	Delete(ctx context.Context, id uuid.UUID) (bool, error)
	EmailExists(ctx context.Context, email string) (bool, error)
	ServiceExists(ctx context.Context, id uuid.UUID) (bool, error)
}

type MedecinService struct {
	repo MedecinRepository
	log  *zap.Logger
}

func NewMedecinService(repo MedecinRepository, log *zap.Logger) *MedecinService {
	return &MedecinService{repo: repo, log: log}
}

func (s *MedecinService) List(ctx context.Context, filter dto.MedecinFilter, page utils.Pagination) ([]dto.Medecin, int64, error) {
	medecins, total, err := s.repo.List(ctx, filter, page)
	if err != nil {
		return nil, 0, fmt.Errorf("liste médecins: %w", err)
	}
	return medecins, total, nil
}

func (s *MedecinService) Get(ctx context.Context, id uuid.UUID) (*dto.Medecin, error) {
	m, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("lecture médecin: %w", err)
	}
	if m == nil {
		return nil, apperror.NotFound(medecinNotFound)
	}
	return m, nil
}

// Create sans mot de passe fourni, un mot de passe temporaire est généré et renvoyé une fois
func (s *MedecinService) Create(ctx context.Context, req dto.CreateMedecinRequest) (*dto.CreatedMedecin, error) {
	if err := validateDisponibilites(req.Disponibilites); err != nil {
		return nil, err
	}

	email := strings.TrimSpace(req.Email)
	exists, err := s.repo.EmailExists(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("vérification email: %w", err)
	}
	if exists {
		return nil, apperror.Field("email", "Cette adresse email est déjà utilisée")
	}

	serviceID, err := s.ensureService(ctx, req.ServiceID)
	if err != nil {
		return nil, err
	}

	password, temporary := req.Password, ""
	if password == "" {
		if password, err = utils.GenerateTemporaryPassword(tempPasswordLength); err != nil {
			return nil, err
		}
		temporary = password
	}
	hash, err := utils.HashPassword(password)
	if err != nil {
		return nil, err
	}

	m, err := s.repo.Create(ctx, dto.NewMedecin{
		Name:           strings.TrimSpace(req.Name),
		Email:          email,
		PasswordHash:   hash,
		Specialite:     strings.TrimSpace(req.Specialite),
		ServiceID:      serviceID,
		Disponibilites: req.Disponibilites,
	})
	if err != nil {
		if postgres.IsUniqueViolation(err, "users_email_key") {
			return nil, apperror.Field("email", "Cette adresse email est déjà utilisée")
		}
		return nil, fmt.Errorf("création médecin: %w", err)
	}

	s.log.Info("médecin créé", zap.String("medecin_id", m.ID.String()))
	return &dto.CreatedMedecin{Medecin: m, TemporaryPassword: temporary}, nil
}

func (s *MedecinService) Update(ctx context.Context, id uuid.UUID, req dto.UpdateMedecinRequest) (*dto.Medecin, error) {
	if err := validateDisponibilites(req.Disponibilites); err != nil {
		return nil, err
	}

	changes := dto.MedecinChanges{Disponibilites: req.Disponibilites}
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		changes.Name = &name
	}
	if req.Specialite != nil {
		specialite := strings.TrimSpace(*req.Specialite)
		changes.Specialite = &specialite
	}
	if req.ServiceID != nil {
		serviceID, err := s.ensureService(ctx, *req.ServiceID)
		if err != nil {
			return nil, err
		}
		changes.ServiceID = &serviceID
	}

	m, err := s.repo.Update(ctx, id, changes)
	if err != nil {
		return nil, fmt.Errorf("mise à jour médecin: %w", err)
	}
	if m == nil {
		return nil, apperror.NotFound(medecinNotFound)
	}
	return m, nil
}

// Delete supprime le compte du médecin et, par cascade, ses rendez-vous et prescriptions
func (s *MedecinService) Delete(ctx context.Context, id uuid.UUID) error {
	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		return fmt.Errorf("suppression médecin: %w", err)
	}
	if !deleted {
		return apperror.NotFound(medecinNotFound)
	}
	return nil
}

func (s *MedecinService) ensureService(ctx context.Context, raw string) (uuid.UUID, error) {
	serviceID, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, apperror.Field("service_id", "Le service sélectionné est invalide")
	}
	exists, err := s.repo.ServiceExists(ctx, serviceID)
	if err != nil {
		return uuid.Nil, fmt.Errorf("vérification service: %w", err)
	}
	if !exists {
		return uuid.Nil, apperror.Field("service_id", "Le service sélectionné est invalide")
	}
	return serviceID, nil
}

func validateDisponibilites(d map[string]bool) error {
	for jour := range d {
		if !isJour(jour) {
			return apperror.Field("disponibilites", fmt.Sprintf("Jour inconnu: %s", jour))
		}
	}
	return nil
}

func isJour(jour string) bool {
	for _, j := range dto.Jours {
		if j == jour {
			return true
		}
	}
	return false
}
