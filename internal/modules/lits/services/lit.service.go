package services

import (
	"context"
	"fmt"
	"strings"

	"gestion-hospitaliere/internal/infrastructure/database/postgres"
	litDTO "gestion-hospitaliere/internal/modules/core-services/bedlifecycle/dto"
	"gestion-hospitaliere/internal/modules/lits/dto"
	"gestion-hospitaliere/internal/shared/apperror"
	"gestion-hospitaliere/internal/shared/utils"

	"github.com/google/uuid"
)

const (
	litNotFound    = "Lit non trouvé"
	litOccupied    = "Impossible de changer le statut d'un lit occupé, utilisez la libération"
	litOccupiedDel = "Impossible de supprimer un lit occupé"
)

type LitRepository interface {
	List(ctx context.Context, filter dto.LitFilter, page utils.Pagination) ([]litDTO.Lit, int64, error)
	Available(ctx context.Context) ([]litDTO.Lit, error)
	FindByID(ctx context.Context, id uuid.UUID) (*litDTO.Lit, error)
	ChambreExists(ctx context.Context, id uuid.UUID) (bool, error)
	Create(ctx context.Context, n dto.NewLit) (*litDTO.Lit, error)
	Update(ctx context.Context, id uuid.UUID, ch dto.LitChanges) (bool, error)
	Delete(ctx context.Context, id uuid.UUID) (bool, error)
}

// LitService gestion manuelle des lits. Les transitions disponible <-> occupe
// appartiennent au gestionnaire du cycle de vie.
type LitService struct {
	repo LitRepository
}

func NewLitService(repo LitRepository) *LitService {
	return &LitService{repo: repo}
}

func (s *LitService) List(ctx context.Context, filter dto.LitFilter, page utils.Pagination) ([]litDTO.Lit, int64, error) {
	return s.repo.List(ctx, filter, page)
}

func (s *LitService) Available(ctx context.Context) ([]litDTO.Lit, error) {
	return s.repo.Available(ctx)
}

func (s *LitService) Get(ctx context.Context, id uuid.UUID) (*litDTO.Lit, error) {
	lit, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("lecture lit: %w", err)
	}
	if lit == nil {
		return nil, apperror.NotFound(litNotFound)
	}
	return lit, nil
}

func (s *LitService) Create(ctx context.Context, req dto.CreateLitRequest) (*litDTO.Lit, error) {
	statut := req.Statut
	if statut == "" {
		statut = litDTO.StatutDisponible
	}
	if statut == litDTO.StatutOccupe {
		return nil, occupeForbidden()
	}

	chambreID := uuid.MustParse(req.ChambreID)
	exists, err := s.repo.ChambreExists(ctx, chambreID)
	if err != nil {
		return nil, fmt.Errorf("vérification chambre: %w", err)
	}
	if !exists {
		return nil, apperror.Field("chambre_id", "La chambre sélectionnée n'existe pas")
	}

	lit, err := s.repo.Create(ctx, dto.NewLit{
		ChambreID: chambreID,
		Numero:    strings.TrimSpace(req.Numero),
		Statut:    statut,
		Notes:     req.Notes,
	})
	if err != nil {
		return nil, mapWriteError(err)
	}
	return lit, nil
}

// Update ni passage à occupe ni changement de statut d'un lit occupé
func (s *LitService) Update(ctx context.Context, id uuid.UUID, req dto.UpdateLitRequest) (*litDTO.Lit, error) {
	if req.Statut != nil && *req.Statut == litDTO.StatutOccupe {
		return nil, occupeForbidden()
	}

	changes := dto.LitChanges{Statut: req.Statut, Notes: req.Notes}
	if req.Numero != nil {
		numero := strings.TrimSpace(*req.Numero)
		changes.Numero = &numero
	}

	updated, err := s.repo.Update(ctx, id, changes)
	if err != nil {
		return nil, mapWriteError(err)
	}
	if !updated {
		if _, err := s.Get(ctx, id); err != nil {
			return nil, err
		}
		return nil, apperror.InvalidState(litOccupied)
	}
	return s.Get(ctx, id)
}

func (s *LitService) Delete(ctx context.Context, id uuid.UUID) error {
	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		return fmt.Errorf("suppression lit: %w", err)
	}
	if !deleted {
		if _, err := s.Get(ctx, id); err != nil {
			return err
		}
		return apperror.InvalidState(litOccupiedDel)
	}
	return nil
}

func occupeForbidden() error {
	return apperror.Field("statut", "Le statut occupé s'obtient uniquement par l'attribution d'un patient")
}

func mapWriteError(err error) error {
	if postgres.IsUniqueViolation(err, "lits_chambre_numero_key") {
		return apperror.Field("numero", "Ce numéro de lit existe déjà dans cette chambre")
	}
	return fmt.Errorf("enregistrement lit: %w", err)
}
