package services

import (
	"context"
	"fmt"
	"strings"

	"gestion-hospitaliere/internal/infrastructure/database/postgres"
	"gestion-hospitaliere/internal/modules/chambres/dto"
	"gestion-hospitaliere/internal/shared/apperror"
	"gestion-hospitaliere/internal/shared/utils"

	"github.com/google/uuid"
)

const (
	chambreNotFound = "Chambre non trouvée"
	roomOccupied    = "Impossible de supprimer une chambre avec des lits occupés"
)

type ChambreRepository interface {
	List(ctx context.Context, filter dto.ChambreFilter, page utils.Pagination) ([]dto.Chambre, int64, error)
	Available(ctx context.Context) ([]dto.Chambre, error)
	FindByID(ctx context.Context, id uuid.UUID) (*dto.Chambre, error)
	ServiceExists(ctx context.Context, id uuid.UUID) (bool, error)
	Create(ctx context.Context, v dto.ChambreValues) (*dto.Chambre, error)
	Update(ctx context.Context, id uuid.UUID, v dto.ChambreValues) (*dto.Chambre, error)
	Delete(ctx context.Context, id uuid.UUID) (bool, error)
}

// RoomGuard implémenté par le gestionnaire du cycle de vie des lits
type RoomGuard interface {
	CanDelete(ctx context.Context, chambreID uuid.UUID) (bool, error)
}

type ChambreService struct {
	repo  ChambreRepository
	guard RoomGuard
}

func NewChambreService(repo ChambreRepository, guard RoomGuard) *ChambreService {
	return &ChambreService{repo: repo, guard: guard}
}

func (s *ChambreService) List(ctx context.Context, filter dto.ChambreFilter, page utils.Pagination) ([]dto.Chambre, int64, error) {
	return s.repo.List(ctx, filter, page)
}

func (s *ChambreService) Available(ctx context.Context) ([]dto.Chambre, error) {
	return s.repo.Available(ctx)
}

func (s *ChambreService) Get(ctx context.Context, id uuid.UUID) (*dto.Chambre, error) {
	chambre, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("lecture chambre: %w", err)
	}
	if chambre == nil {
		return nil, apperror.NotFound(chambreNotFound)
	}
	return chambre, nil
}

func (s *ChambreService) Create(ctx context.Context, req dto.CreateChambreRequest) (*dto.Chambre, error) {
	serviceID := uuid.MustParse(req.ServiceID)
	if err := s.ensureService(ctx, serviceID); err != nil {
		return nil, err
	}

	numero := strings.TrimSpace(req.Numero)
	chambre, err := s.repo.Create(ctx, dto.ChambreValues{
		Numero:          &numero,
		ServiceID:       &serviceID,
		Type:            &req.Type,
		Capacite:        &req.Capacite,
		TarifJournalier: req.TarifJournalier,
		Disponible:      req.Disponible,
		Equipements:     req.Equipements,
		Notes:           req.Notes,
	})
	if err != nil {
		return nil, mapWriteError(err)
	}
	return chambre, nil
}

func (s *ChambreService) Update(ctx context.Context, id uuid.UUID, req dto.UpdateChambreRequest) (*dto.Chambre, error) {
	values := dto.ChambreValues{
		Type:            req.Type,
		Capacite:        req.Capacite,
		TarifJournalier: req.TarifJournalier,
		Disponible:      req.Disponible,
		Notes:           req.Notes,
	}
	if req.Numero != nil {
		numero := strings.TrimSpace(*req.Numero)
		values.Numero = &numero
	}
	if req.ServiceID != nil {
		serviceID := uuid.MustParse(*req.ServiceID)
		if err := s.ensureService(ctx, serviceID); err != nil {
			return nil, err
		}
		values.ServiceID = &serviceID
	}
	if req.Equipements != nil {
		values.Equipements = *req.Equipements
		if values.Equipements == nil {
			values.Equipements = []string{}
		}
	}

	chambre, err := s.repo.Update(ctx, id, values)
	if err != nil {
		return nil, mapWriteError(err)
	}
	if chambre == nil {
		return nil, apperror.NotFound(chambreNotFound)
	}
	return chambre, nil
}

// Delete refusé tant qu'un lit de la chambre est occupé
func (s *ChambreService) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}

	ok, err := s.guard.CanDelete(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return apperror.InvalidState(roomOccupied)
	}

	// la suppression ne passe que si aucun lit n'a été occupé entre-temps
	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		return fmt.Errorf("suppression chambre: %w", err)
	}
	if !deleted {
		if _, err := s.Get(ctx, id); err != nil {
			return err
		}
		return apperror.InvalidState(roomOccupied)
	}
	return nil
}

func (s *ChambreService) ensureService(ctx context.Context, id uuid.UUID) error {
	exists, err := s.repo.ServiceExists(ctx, id)
	if err != nil {
		return fmt.Errorf("vérification service: %w", err)
	}
	if !exists {
		return apperror.Field("service_id", "Le service sélectionné n'existe pas")
	}
	return nil
}

func mapWriteError(err error) error {
	if postgres.IsUniqueViolation(err, "chambres_numero_key") {
		return apperror.Field("numero", "Ce numéro de chambre existe déjà")
	}
	return fmt.Errorf("enregistrement chambre: %w", err)
}
