package services

import (
	"context"
	"fmt"
	"io"
	"path"
	"time"

	"gestion-hospitaliere/internal/infrastructure/storage"
	"gestion-hospitaliere/internal/modules/core-services/patient/dto"
	"gestion-hospitaliere/internal/shared/apperror"
	"gestion-hospitaliere/internal/shared/policy"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const documentNotFound = "Document non trouvé"

type PatientFileRepository interface {
	SetPhoto(ctx context.Context, id uuid.UUID, key string) (previous *string, found bool, err error)
	AddDocument(ctx context.Context, id uuid.UUID, doc dto.Document) (bool, error)
	RemoveDocument(ctx context.Context, id, docID uuid.UUID) (*dto.Document, error)
}

// PatientFileService photo et documents du dossier patient
type PatientFileService struct {
	repo     PatientFileRepository
	patients *PatientCacheService
	store    storage.Store
	log      *zap.Logger
}

func NewPatientFileService(repo PatientFileRepository, patients *PatientCacheService, store storage.Store, log *zap.Logger) *PatientFileService {
	return &PatientFileService{repo: repo, patients: patients, store: store, log: log}
}

// SetPhoto remplace la photo (jpeg/png, 2 Mo max) et supprime l'ancienne
func (s *PatientFileService) SetPhoto(ctx context.Context, actor *policy.Principal, id uuid.UUID, upload dto.Upload, content io.Reader) (*dto.Patient, error) {
	if err := s.authorizeWrite(actor, id); err != nil {
		return nil, err
	}
	ext, ok := dto.PhotoTypes[upload.ContentType]
	if !ok {
		return nil, apperror.Field("photo", "La photo doit être au format JPEG ou PNG")
	}
	if upload.Size > dto.MaxPhotoSize {
		return nil, apperror.Field("photo", "La photo ne doit pas dépasser 2MB")
	}

	key, err := s.store.Save(ctx, path.Join(dto.PhotosDir, uuid.NewString()+ext), content)
	if err != nil {
		return nil, fmt.Errorf("enregistrement photo: %w", err)
	}

	previous, found, err := s.repo.SetPhoto(ctx, id, key)
	if err != nil || !found {
		s.discard(key)
		if err != nil {
			return nil, fmt.Errorf("mise à jour photo: %w", err)
		}
		return nil, apperror.NotFound(patientNotFound)
	}
	if previous != nil && *previous != "" && *previous != key {
		s.discard(*previous)
	}

	s.patients.Invalidate(ctx, id)
	return s.reload(ctx, id)
}

// AddDocument ajoute un document (pdf/jpeg/png, 5 Mo max) doté d'un identifiant stable
func (s *PatientFileService) AddDocument(ctx context.Context, actor *policy.Principal, id uuid.UUID, upload dto.Upload, content io.Reader) (*dto.Document, error) {
	if err := s.authorizeWrite(actor, id); err != nil {
		return nil, err
	}
	ext, ok := dto.DocumentTypes[upload.ContentType]
	if !ok {
		return nil, apperror.Field("document", "Les documents doivent être au format PDF, JPEG ou PNG")
	}
	if upload.Size > dto.MaxDocumentSize {
		return nil, apperror.Field("document", "Chaque document ne doit pas dépasser 5MB")
	}

	docID := uuid.New()
	key, err := s.store.Save(ctx, path.Join(dto.DocumentsDir, docID.String()+ext), content)
	if err != nil {
		return nil, fmt.Errorf("enregistrement document: %w", err)
	}

	doc := dto.Document{
		ID:         docID,
		Nom:        path.Base(upload.Filename),
		Type:       upload.ContentType,
		Chemin:     key,
		DateUpload: time.Now().UTC(),
	}
	found, err := s.repo.AddDocument(ctx, id, doc)
	if err != nil || !found {
		s.discard(key)
		if err != nil {
			return nil, fmt.Errorf("ajout document: %w", err)
		}
		return nil, apperror.NotFound(patientNotFound)
	}

	s.patients.Invalidate(ctx, id)
	return &doc, nil
}

// OpenDocument l'appelant doit fermer le lecteur
func (s *PatientFileService) OpenDocument(ctx context.Context, actor *policy.Principal, id, docID uuid.UUID) (*dto.Document, io.ReadCloser, error) {
	if !actor.CanAccessPatient(id) {
		return nil, nil, apperror.Forbidden(policy.DefaultDenial)
	}
	p, err := s.reload(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	for i := range p.Documents {
		if p.Documents[i].ID != docID {
			continue
		}
		doc := p.Documents[i]
		file, err := s.store.Open(doc.Chemin)
		if err != nil {
			return nil, nil, apperror.NotFound("Fichier non trouvé")
		}
		return &doc, file, nil
	}
	return nil, nil, apperror.NotFound(documentNotFound)
}

func (s *PatientFileService) DeleteDocument(ctx context.Context, actor *policy.Principal, id, docID uuid.UUID) error {
	if err := s.authorizeWrite(actor, id); err != nil {
		return err
	}
	if _, err := s.reload(ctx, id); err != nil {
		return err
	}

	removed, err := s.repo.RemoveDocument(ctx, id, docID)
	if err != nil {
		return fmt.Errorf("suppression document: %w", err)
	}
	if removed == nil {
		return apperror.NotFound(documentNotFound)
	}

	s.patients.Invalidate(ctx, id)
	s.discard(removed.Chemin)
	return nil
}

func (s *PatientFileService) authorizeWrite(actor *policy.Principal, id uuid.UUID) error {
	if !actor.CanAccessPatient(id) || !actor.Can(policy.PatientsUpdate) {
		return apperror.Forbidden(policy.DefaultDenial)
	}
	return nil
}

func (s *PatientFileService) reload(ctx context.Context, id uuid.UUID) (*dto.Patient, error) {
	p, err := s.patients.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, apperror.NotFound(patientNotFound)
	}
	return p, nil
}

func (s *PatientFileService) discard(key string) {
	if err := s.store.Delete(key); err != nil {
		s.log.Warn("suppression fichier impossible", zap.String("key", key), zap.Error(err))
	}
}
