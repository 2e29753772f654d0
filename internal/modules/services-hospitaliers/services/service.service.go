package services

import (
	"context"
	"fmt"
	"strings"

	"gestion-hospitaliere/internal/infrastructure/database/postgres"
	"gestion-hospitaliere/internal/modules/services-hospitaliers/dto"
	"gestion-hospitaliere/internal/shared/apperror"

	"github.com/google/uuid"
)

const serviceNotFound = "Service non trouvé"

type ServiceRepository interface {
	List(ctx context.Context) ([]dto.Service, error)
	FindByID(ctx context.Context, id uuid.UUID) (*dto.Service, error)
	Create(ctx context.Context, req dto.ServiceRequest) (*dto.Service, error)
	Update(ctx context.Context, id uuid.UUID, req dto.ServiceRequest) (*dto.Service, error)
	Delete(ctx context.Context, id uuid.UUID) (bool, error)
}

type ServiceService struct {
	repo ServiceRepository
}

func NewServiceService(repo ServiceRepository) *ServiceService {
	return &ServiceService{repo: repo}
}

func (s *ServiceService) List(ctx context.Context) ([]dto.Service, error) {
	return s.repo.List(ctx)
}

func (s *ServiceService) Get(ctx context.Context, id uuid.UUID) (*dto.Service, error) {
	service, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("lecture service: %w", err)
	}
	if service == nil {
		return nil, apperror.NotFound(serviceNotFound)
	}
	return service, nil
}

func (s *ServiceService) Create(ctx context.Context, req dto.ServiceRequest) (*dto.Service, error) {
	req.Nom = strings.TrimSpace(req.Nom)
	service, err := s.repo.Create(ctx, req)
	if err != nil {
		return nil, mapWriteError(err)
	}
	return service, nil
}

func (s *ServiceService) Update(ctx context.Context, id uuid.UUID, req dto.ServiceRequest) (*dto.Service, error) {
	req.Nom = strings.TrimSpace(req.Nom)
	service, err := s.repo.Update(ctx, id, req)
	if err != nil {
		return nil, mapWriteError(err)
	}
	if service == nil {
		return nil, apperror.NotFound(serviceNotFound)
	}
	return service, nil
}

// Delete refusé tant que des médecins ou des chambres y sont rattachés
func (s *ServiceService) Delete(ctx context.Context, id uuid.UUID) error {
	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		if postgres.IsForeignKeyViolation(err) {
			return apperror.InvalidState("Impossible de supprimer un service auquel sont rattachés des médecins ou des chambres")
		}
		return fmt.Errorf("suppression service: %w", err)
	}
	if !deleted {
		return apperror.NotFound(serviceNotFound)
	}
	return nil
}

func mapWriteError(err error) error {
	if postgres.IsUniqueViolation(err, "services_nom_key") {
		return apperror.Field("nom", "Un service portant ce nom existe déjà")
	}
	return fmt.Errorf("enregistrement service: %w", err)
}
