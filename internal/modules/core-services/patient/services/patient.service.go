package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"gestion-hospitaliere/internal/infrastructure/database/postgres"
	"gestion-hospitaliere/internal/infrastructure/storage"
	"gestion-hospitaliere/internal/modules/core-services/patient/dto"
	"gestion-hospitaliere/internal/shared/apperror"
	"gestion-hospitaliere/internal/shared/policy"
	"gestion-hospitaliere/internal/shared/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	patientNotFound    = "Patient non trouvé"
	tempPasswordLength = 12
)

type PatientRepository interface {
	PatientReader
	List(ctx context.Context, filter dto.PatientFilter, page utils.Pagination) ([]dto.Patient, int64, error)
	Create(ctx context.Context, n dto.NewPatient) (*dto.Patient, error)
	Update(ctx context.Context, id uuid.UUID, changes dto.PatientChanges) (*dto.Patient, error)
	Delete(ctx context.Context, id uuid.UUID) (bool, error)
	EmailExists(ctx context.Context, email string) (bool, error)
	IsHospitalized(ctx context.Context, id uuid.UUID) (bool, error)
	Contact(ctx context.Context, id uuid.UUID) (*dto.PatientContact, error)
}

type PatientService struct {
	repo     PatientRepository
	patients *PatientCacheService
	store    storage.Store
	log      *zap.Logger
	now      func() time.Time
}

func NewPatientService(repo PatientRepository, patients *PatientCacheService, store storage.Store, log *zap.Logger) *PatientService {
	return &PatientService{repo: repo, patients: patients, store: store, log: log, now: time.Now}
}

// List un médecin ne voit que les patients avec lesquels il a un rendez-vous
func (s *PatientService) List(ctx context.Context, actor *policy.Principal, filter dto.PatientFilter, page utils.Pagination) ([]dto.Patient, int64, error) {
	if !actor.Can(policy.PatientsList) {
		return nil, 0, apperror.Forbidden(policy.DefaultDenial)
	}
	if actor.Is(policy.RoleMedecin) {
		if actor.MedecinID == nil {
			return []dto.Patient{}, 0, nil
		}
		filter.MedecinID = actor.MedecinID
	}

	patients, total, err := s.repo.List(ctx, filter, page)
	if err != nil {
		return nil, 0, fmt.Errorf("liste patients: %w", err)
	}
	return patients, total, nil
}

// Get un patient ne lit que son propre dossier (403 sinon)
func (s *PatientService) Get(ctx context.Context, actor *policy.Principal, id uuid.UUID) (*dto.Patient, error) {
	if !actor.CanAccessPatient(id) {
		return nil, apperror.Forbidden(policy.DefaultDenial)
	}
	return s.mustGet(ctx, id)
}

// Contact identité du compte d'un patient, NotFound si absent
func (s *PatientService) Contact(ctx context.Context, id uuid.UUID) (*dto.PatientContact, error) {
	c, err := s.repo.Contact(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("lecture patient: %w", err)
	}
	if c == nil {
		return nil, apperror.NotFound(patientNotFound)
	}
	return c, nil
}

// Create compte Patient avec mot de passe temporaire, renvoyé une seule fois
func (s *PatientService) Create(ctx context.Context, req dto.CreatePatientRequest) (*dto.CreatedPatient, error) {
	birth, err := s.parseBirthDate(req.DateNaissance)
	if err != nil {
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

	password, err := utils.GenerateTemporaryPassword(tempPasswordLength)
	if err != nil {
		return nil, err
	}
	hash, err := utils.HashPassword(password)
	if err != nil {
		return nil, err
	}

	p, err := s.repo.Create(ctx, dto.NewPatient{
		Name:              strings.TrimSpace(req.Name),
		Email:             email,
		PasswordHash:      hash,
		DateNaissance:     birth,
		Adresse:           strings.TrimSpace(req.Adresse),
		Telephone:         req.Telephone,
		GroupeSanguin:     req.GroupeSanguin,
		HistoriqueMedical: req.HistoriqueMedical,
	})
	if err != nil {
		if postgres.IsUniqueViolation(err, "users_email_key") {
			return nil, apperror.Field("email", "Cette adresse email est déjà utilisée")
		}
		return nil, fmt.Errorf("création patient: %w", err)
	}

	s.log.Info("patient créé", zap.String("patient_id", p.ID.String()))
	return &dto.CreatedPatient{Patient: p, TemporaryPassword: password}, nil
}

// Update un patient modifie son propre dossier, sans l'historique médical
func (s *PatientService) Update(ctx context.Context, actor *policy.Principal, id uuid.UUID, req dto.UpdatePatientRequest) (*dto.Patient, error) {
	if !actor.CanAccessPatient(id) || !actor.Can(policy.PatientsUpdate) {
		return nil, apperror.Forbidden(policy.DefaultDenial)
	}
	if actor.Is(policy.RolePatient) && req.HistoriqueMedical != nil {
		return nil, apperror.Forbidden("Les patients ne peuvent pas modifier leur historique médical")
	}

	changes := dto.PatientChanges{
		Adresse:           trimmed(req.Adresse),
		Telephone:         req.Telephone,
		GroupeSanguin:     req.GroupeSanguin,
		HistoriqueMedical: req.HistoriqueMedical,
		Name:              trimmed(req.Name),
	}
	if req.DateNaissance != nil {
		birth, err := s.parseBirthDate(*req.DateNaissance)
		if err != nil {
			return nil, err
		}
		changes.DateNaissance = &birth
	}

	p, err := s.repo.Update(ctx, id, changes)
	if err != nil {
		return nil, fmt.Errorf("mise à jour patient: %w", err)
	}
	if p == nil {
		return nil, apperror.NotFound(patientNotFound)
	}
	s.patients.Invalidate(ctx, id)
	return p, nil
}

// Delete refusé tant que le patient occupe un lit. Les fichiers stockés
// sont supprimés après la suppression du dossier.
func (s *PatientService) Delete(ctx context.Context, id uuid.UUID) error {
	p, err := s.mustGet(ctx, id)
	if err != nil {
		return err
	}

	hospitalized, err := s.repo.IsHospitalized(ctx, id)
	if err != nil {
		return fmt.Errorf("vérification hospitalisation: %w", err)
	}
	if hospitalized {
		return apperror.InvalidState("Impossible de supprimer un patient hospitalisé")
	}

	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		if postgres.IsForeignKeyViolation(err) {
			return apperror.InvalidState("Impossible de supprimer un patient hospitalisé")
		}
		return fmt.Errorf("suppression patient: %w", err)
	}
	if !deleted {
		return apperror.NotFound(patientNotFound)
	}
	s.patients.Invalidate(ctx, id)

	for _, key := range p.StoredFiles() {
		if err := s.store.Delete(key); err != nil {
			s.log.Warn("suppression fichier patient impossible", zap.String("key", key), zap.Error(err))
		}
	}
	return nil
}

func (s *PatientService) mustGet(ctx context.Context, id uuid.UUID) (*dto.Patient, error) {
	p, err := s.patients.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, apperror.NotFound(patientNotFound)
	}
	return p, nil
}

func (s *PatientService) parseBirthDate(raw string) (time.Time, error) {
	birth, err := utils.ParseDate(raw)
	if err != nil || !birth.Before(utils.StartOfDay(s.now())) {
		return time.Time{}, apperror.Field("date_naissance", "La date de naissance doit être antérieure à aujourd'hui")
	}
	return birth, nil
}

func trimmed(v *string) *string {
	if v == nil {
		return nil
	}
	t := strings.TrimSpace(*v)
	return &t
}
