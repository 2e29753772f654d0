package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gestion-hospitaliere/internal/infrastructure/metrics"
	"gestion-hospitaliere/internal/modules/core-services/bedlifecycle/dto"
	"gestion-hospitaliere/internal/modules/core-services/bedlifecycle/queries"
	"gestion-hospitaliere/internal/shared/apperror"
	"gestion-hospitaliere/internal/shared/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	litNotFound         = "Lit non trouvé"
	litNotAvailable     = "Ce lit n'est pas disponible"
	litNotOccupied      = "Ce lit n'est pas occupé"
	patientAlreadyInBed = "Ce patient occupe déjà un lit"
)

// BedStore transitions atomiques sur la table lits
type BedStore interface {
	FindByID(ctx context.Context, id uuid.UUID) (*dto.Lit, error)
	PatientExists(ctx context.Context, patientID uuid.UUID) (bool, error)
	// Occupy retourne queries.ErrPatientAlreadyBedded si le patient a déjà un lit
	Occupy(ctx context.Context, litID, patientID uuid.UUID, release *time.Time) (bool, error)
	Vacate(ctx context.Context, litID uuid.UUID) (*uuid.UUID, error)
	HasOccupiedBeds(ctx context.Context, chambreID uuid.UUID) (bool, error)
}

// PatientInvalidator le lit actuel fait partie de la fiche patient mise en cache
type PatientInvalidator interface {
	Invalidate(ctx context.Context, id uuid.UUID)
}

// BedLifecycleService machine à états disponible <-> occupe.
// maintenance et reserve ne sont posés que manuellement.
type BedLifecycleService struct {
	store    BedStore
	patients PatientInvalidator
	metrics  metrics.Recorder
	log      *zap.Logger
	now      func() time.Time
}

func NewBedLifecycleService(store BedStore, patients PatientInvalidator, recorder metrics.Recorder, log *zap.Logger) *BedLifecycleService {
	return &BedLifecycleService{
		store:    store,
		patients: patients,
		metrics:  recorder,
		log:      log.Named("bedlifecycle"),
		now:      time.Now,
	}
}

// Assign attribue un lit disponible à un patient
func (s *BedLifecycleService) Assign(ctx context.Context, litID, patientID uuid.UUID, expectedRelease *time.Time) (*dto.Lit, error) {
	if expectedRelease != nil && !utils.StartOfDay(*expectedRelease).After(utils.StartOfDay(s.now())) {
		return nil, apperror.Field("date_liberation_prevue", "La date de libération prévue doit être postérieure à aujourd'hui")
	}

	lit, err := s.store.FindByID(ctx, litID)
	if err != nil {
		return nil, fmt.Errorf("lecture lit: %w", err)
	}
	if lit == nil {
		return nil, apperror.NotFound(litNotFound)
	}

	exists, err := s.store.PatientExists(ctx, patientID)
	if err != nil {
		return nil, fmt.Errorf("vérification patient: %w", err)
	}
	if !exists {
		return nil, apperror.Field("patient_id", "Le patient sélectionné n'existe pas")
	}

	ok, err := s.store.Occupy(ctx, litID, patientID, expectedRelease)
	if errors.Is(err, queries.ErrPatientAlreadyBedded) {
		return nil, apperror.InvalidState(patientAlreadyInBed)
	}
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, apperror.InvalidState(litNotAvailable)
	}

	s.metrics.BedAssigned(ctx)
	s.patients.Invalidate(ctx, patientID)
	s.log.Info("lit attribué",
		zap.String("lit_id", litID.String()),
		zap.String("patient_id", patientID.String()),
	)
	return s.reload(ctx, litID)
}

// Release libère un lit occupé
func (s *BedLifecycleService) Release(ctx context.Context, litID uuid.UUID) (*dto.Lit, error) {
	patientID, err := s.store.Vacate(ctx, litID)
	if err != nil {
		return nil, err
	}
	if patientID == nil {
		lit, err := s.store.FindByID(ctx, litID)
		if err != nil {
			return nil, fmt.Errorf("lecture lit: %w", err)
		}
		if lit == nil {
			return nil, apperror.NotFound(litNotFound)
		}
		return nil, apperror.InvalidState(litNotOccupied)
	}

	s.metrics.BedReleased(ctx)
	s.patients.Invalidate(ctx, *patientID)
	s.log.Info("lit libéré",
		zap.String("lit_id", litID.String()),
		zap.String("patient_id", patientID.String()),
	)
	return s.reload(ctx, litID)
}

// CanDelete vrai si aucun lit de la chambre n'est occupé
func (s *BedLifecycleService) CanDelete(ctx context.Context, chambreID uuid.UUID) (bool, error) {
	occupied, err := s.store.HasOccupiedBeds(ctx, chambreID)
	if err != nil {
		return false, fmt.Errorf("vérification occupation chambre: %w", err)
	}
	return !occupied, nil
}

func (s *BedLifecycleService) reload(ctx context.Context, litID uuid.UUID) (*dto.Lit, error) {
	lit, err := s.store.FindByID(ctx, litID)
	if err != nil {
		return nil, fmt.Errorf("lecture lit: %w", err)
	}
	if lit == nil {
		return nil, apperror.NotFound(litNotFound)
	}
	return lit, nil
}
