package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"gestion-hospitaliere/internal/infrastructure/storage"
	"gestion-hospitaliere/internal/modules/prescriptions/dto"
	"gestion-hospitaliere/internal/modules/prescriptions/queries"
	"gestion-hospitaliere/internal/shared/apperror"
	"gestion-hospitaliere/internal/shared/policy"
	"gestion-hospitaliere/internal/shared/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	prescriptionNotFound = "Prescription non trouvée"
	medecinOnly          = "Seuls les médecins peuvent créer des prescriptions"
	profileGone          = "Profil introuvable. Veuillez contacter l'administrateur."
)

type PrescriptionRepository interface {
	List(ctx context.Context, filter dto.PrescriptionFilter, page utils.Pagination) ([]dto.Prescription, int64, error)
	FindByID(ctx context.Context, id uuid.UUID) (*dto.Prescription, error)
	PatientExists(ctx context.Context, id uuid.UUID) (bool, error)
	Create(ctx context.Context, p dto.NewPrescription) (uuid.UUID, error)
	Update(ctx context.Context, id uuid.UUID, ch dto.PrescriptionChanges) (bool, error)
	Delete(ctx context.Context, id uuid.UUID) (fichier *string, found bool, err error)
}

type PrescriptionService struct {
	repo  PrescriptionRepository
	store storage.Store
	log   *zap.Logger
	now   func() time.Time
}

func NewPrescriptionService(repo PrescriptionRepository, store storage.Store, log *zap.Logger) *PrescriptionService {
	return &PrescriptionService{repo: repo, store: store, log: log, now: time.Now}
}

// List un patient ne voit que ses prescriptions, un médecin celles qu'il a rédigées
func (s *PrescriptionService) List(ctx context.Context, actor *policy.Principal, filter dto.PrescriptionFilter, page utils.Pagination) ([]dto.Prescription, int64, error) {
	switch actor.Role {
	case policy.RolePatient:
		if actor.PatientID == nil {
			return nil, 0, apperror.InvalidState(profileGone)
		}
		filter.PatientID = actor.PatientID
	case policy.RoleMedecin:
		if actor.MedecinID == nil {
			return nil, 0, apperror.InvalidState(profileGone)
		}
		filter.MedecinID = actor.MedecinID
	}
	return s.repo.List(ctx, filter, page)
}

func (s *PrescriptionService) Get(ctx context.Context, actor *policy.Principal, id uuid.UUID) (*dto.Prescription, error) {
	p, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.CanAccessRecord(p.Patient.ID, p.Medecin.ID) {
		return nil, apperror.Forbidden(policy.DefaultDenial)
	}
	return p, nil
}

// Create le médecin auteur est toujours le principal
func (s *PrescriptionService) Create(ctx context.Context, actor *policy.Principal, req dto.CreatePrescriptionRequest, file *dto.Attachment, content io.Reader) (*dto.Prescription, error) {
	if !actor.Is(policy.RoleMedecin) {
		return nil, apperror.Forbidden(medecinOnly)
	}
	if actor.MedecinID == nil {
		return nil, apperror.InvalidState(profileGone)
	}

	patientID, err := uuid.Parse(req.PatientID)
	if err != nil {
		return nil, apperror.Field("patient_id", "Le champ patient_id doit être un identifiant valide")
	}
	exists, err := s.repo.PatientExists(ctx, patientID)
	if err != nil {
		return nil, fmt.Errorf("vérification patient: %w", err)
	}
	if !exists {
		return nil, apperror.Field("patient_id", "Le patient sélectionné n'existe pas")
	}

	date, err := utils.ParseDate(req.Date)
	if err != nil {
		return nil, apperror.Field("date", "Le champ date doit être une date au format AAAA-MM-JJ")
	}

	key, err := s.savePDF(ctx, file, content)
	if err != nil {
		return nil, err
	}

	id, err := s.repo.Create(ctx, dto.NewPrescription{
		PatientID:  patientID,
		MedecinID:  *actor.MedecinID,
		Contenu:    req.Contenu,
		Date:       date,
		FichierPDF: key,
	})
	if err != nil {
		s.discard(key)
		if errors.Is(err, queries.ErrUnknownPatient) {
			return nil, apperror.Field("patient_id", "Le patient sélectionné n'existe pas")
		}
		return nil, fmt.Errorf("création prescription: %w", err)
	}

	s.log.Info("prescription créée",
		zap.String("prescription_id", id.String()),
		zap.String("medecin_id", actor.MedecinID.String()),
	)
	return s.find(ctx, id)
}

// Update réservée au médecin auteur ; un nouveau PDF remplace l'ancien
func (s *PrescriptionService) Update(ctx context.Context, actor *policy.Principal, id uuid.UUID, req dto.UpdatePrescriptionRequest, file *dto.Attachment, content io.Reader) (*dto.Prescription, error) {
	current, err := s.authorizeWrite(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	changes := dto.PrescriptionChanges{Contenu: req.Contenu}
	if req.Date != nil {
		date, err := utils.ParseDate(*req.Date)
		if err != nil {
			return nil, apperror.Field("date", "Le champ date doit être une date au format AAAA-MM-JJ")
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
			return nil, fmt.Errorf("mise à jour prescription: %w", err)
		}
		return nil, apperror.NotFound(prescriptionNotFound)
	}
	if key != nil && current.FichierPDF != nil && *current.FichierPDF != *key {
		s.discard(current.FichierPDF)
	}

	return s.find(ctx, id)
}

func (s *PrescriptionService) Delete(ctx context.Context, actor *policy.Principal, id uuid.UUID) error {
	if _, err := s.authorizeWrite(ctx, actor, id); err != nil {
		return err
	}

	fichier, found, err := s.repo.Delete(ctx, id)
	if err != nil {
		return fmt.Errorf("suppression prescription: %w", err)
	}
	if !found {
		return apperror.NotFound(prescriptionNotFound)
	}
	s.discard(fichier)
	return nil
}

func (s *PrescriptionService) authorizeWrite(ctx context.Context, actor *policy.Principal, id uuid.UUID) (*dto.Prescription, error) {
	p, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.Is(policy.RoleMedecin) || !actor.OwnsMedecin(p.Medecin.ID) {
		return nil, apperror.Forbidden(policy.DefaultDenial)
	}
	return p, nil
}

func (s *PrescriptionService) find(ctx context.Context, id uuid.UUID) (*dto.Prescription, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("lecture prescription: %w", err)
	}
	if p == nil {
		return nil, apperror.NotFound(prescriptionNotFound)
	}
	return p, nil
}

// savePDF nil si aucun fichier n'est joint
func (s *PrescriptionService) savePDF(ctx context.Context, file *dto.Attachment, content io.Reader) (*string, error) {
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
		return nil, fmt.Errorf("enregistrement fichier prescription: %w", err)
	}
	return &key, nil
}

func (s *PrescriptionService) discard(key *string) {
	if key == nil || *key == "" {
		return
	}
	if err := s.store.Delete(*key); err != nil {
		s.log.Warn("suppression fichier prescription impossible", zap.String("key", *key), zap.Error(err))
	}
}
