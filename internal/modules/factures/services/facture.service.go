package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"gestion-hospitaliere/internal/infrastructure/storage"
	"gestion-hospitaliere/internal/modules/factures/dto"
	"gestion-hospitaliere/internal/modules/factures/queries"
	"gestion-hospitaliere/internal/shared/apperror"
	"gestion-hospitaliere/internal/shared/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	factureNotFound = "Facture non trouvée"
	unknownPatient  = "Le patient sélectionné n'existe pas"
	invalidDate     = "Le champ date doit être une date au format AAAA-MM-JJ"
)

type FactureRepository interface {
	List(ctx context.Context, filter dto.FactureFilter, page utils.Pagination) ([]dto.Facture, int64, error)
	FindByID(ctx context.Context, id uuid.UUID) (*dto.Facture, error)
	PatientExists(ctx context.Context, id uuid.UUID) (bool, error)
	Create(ctx context.Context, f dto.NewFacture) (uuid.UUID, error)
	Update(ctx context.Context, id uuid.UUID, ch dto.FactureChanges) (bool, error)
	Delete(ctx context.Context, id uuid.UUID) (fichier *string, found bool, err error)
}

// FactureService facturation, réservée à l'administration
type FactureService struct {
	repo  FactureRepository
	store storage.Store
	log   *zap.Logger
	now   func() time.Time
}

func NewFactureService(repo FactureRepository, store storage.Store, log *zap.Logger) *FactureService {
	return &FactureService{repo: repo, store: store, log: log, now: time.Now}
}

func (s *FactureService) List(ctx context.Context, filter dto.FactureFilter, page utils.Pagination) ([]dto.Facture, int64, error) {
	return s.repo.List(ctx, filter, page)
}

func (s *FactureService) Get(ctx context.Context, id uuid.UUID) (*dto.Facture, error) {
	f, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("lecture facture: %w", err)
	}
	if f == nil {
		return nil, apperror.NotFound(factureNotFound)
	}
	return f, nil
}

func (s *FactureService) Create(ctx context.Context, req dto.CreateFactureRequest, file *dto.Attachment, content io.Reader) (*dto.Facture, error) {
	patientID, err := uuid.Parse(req.PatientID)
	if err != nil {
		return nil, apperror.Field("patient_id", unknownPatient)
	}
	exists, err := s.repo.PatientExists(ctx, patientID)
	if err != nil {
		return nil, fmt.Errorf("vérification patient: %w", err)
	}
	if !exists {
		return nil, apperror.Field("patient_id", unknownPatient)
	}

	date, err := utils.ParseDate(req.Date)
	if err != nil {
		return nil, apperror.Field("date", invalidDate)
	}
	statut := req.Statut
	if statut == "" {
		statut = dto.StatutEnAttente
	}

	key, err := s.savePDF(ctx, file, content)
	if err != nil {
		return nil, err
	}

	id, err := s.repo.Create(ctx, dto.NewFacture{
		PatientID:   patientID,
		Montant:     *req.Montant,
		Statut:      statut,
		Date:        date,
		FichierPDF:  key,
		Description: req.Description,
	})
	if err != nil {
		s.discard(key)
		if errors.Is(err, queries.ErrUnknownPatient) {
			return nil, apperror.Field("patient_id", unknownPatient)
		}
		return nil, fmt.Errorf("création facture: %w", err)
	}

	s.log.Info("facture créée", zap.String("facture_id", id.String()), zap.Float64("montant", *req.Montant))
	return s.Get(ctx, id)
}

func (s *FactureService) Update(ctx context.Context, id uuid.UUID, req dto.UpdateFactureRequest, file *dto.Attachment, content io.Reader) (*dto.Facture, error) {
	current, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	changes := dto.FactureChanges{
		Montant:     req.Montant,
		Statut:      req.Statut,
		Description: req.Description,
	}
	if req.Date != nil {
		date, err := utils.ParseDate(*req.Date)
		if err != nil {
			return nil, apperror.Field("date", invalidDate)
		}
		changes.Date = &date
	}

	key, err := s.savePDF(ctx, file, content)
	if err != nil {
		return nil, err
	}
	changes.FichierPDF = key

	ok, err := s.repo.Update(ctx, id, changes)
	if err != nil || !ok {
		s.discard(key)
		if err != nil {
			return nil, fmt.Errorf("mise à jour facture: %w", err)
		}
		return nil, apperror.NotFound(factureNotFound)
	}
	if key != nil && current.FichierPDF != nil && *current.FichierPDF != *key {
		s.discard(current.FichierPDF)
	}

	return s.Get(ctx, id)
}

func (s *FactureService) Delete(ctx context.Context, id uuid.UUID) error {
	fichier, found, err := s.repo.Delete(ctx, id)
	if err != nil {
		return fmt.Errorf("suppression facture: %w", err)
	}
	if !found {
		return apperror.NotFound(factureNotFound)
	}
	s.discard(fichier)
	return nil
}

func (s *FactureService) savePDF(ctx context.Context, file *dto.Attachment, content io.Reader) (*string, error) {
	if file == nil {
		return nil, nil
	}
	if file.ContentType != "application/pdf" {
		return nil, apperror.Field("fichier_pdf", "Le fichier doit être au format PDF")
	}
	if file.Size > storage.MaxPDFSize {
		return nil, apperror.Field("fichier_pdf", "Le fichier ne doit pas dépasser 5MB")
	}

	key, err := s.store.Save(ctx, storage.TimestampedKey(dto.Dir, file.Filename, s.now()), content)
	if err != nil {
		return nil, fmt.Errorf("enregistrement fichier facture: %w", err)
	}
	return &key, nil
}

func (s *FactureService) discard(key *string) {
	if key == nil || *key == "" {
		return
	}
	if err := s.store.Delete(*key); err != nil {
		s.log.Warn("suppression fichier facture impossible", zap.String("key", *key), zap.Error(err))
	}
}
