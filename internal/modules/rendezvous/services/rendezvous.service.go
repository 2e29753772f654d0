package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"gestion-hospitaliere/internal/infrastructure/metrics"
	availabilityDTO "gestion-hospitaliere/internal/modules/core-services/availability/dto"
	availabilityQueries "gestion-hospitaliere/internal/modules/core-services/availability/queries"
	availability "gestion-hospitaliere/internal/modules/core-services/availability/services"
	notifDTO "gestion-hospitaliere/internal/modules/notifications/dto"
	"gestion-hospitaliere/internal/modules/rendezvous/dto"
	"gestion-hospitaliere/internal/shared/apperror"
	"gestion-hospitaliere/internal/shared/policy"
	"gestion-hospitaliere/internal/shared/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	rendezvousNotFound = "Rendez-vous non trouvé"
	patientProfileGone = "Profil patient non trouvé. Veuillez contacter l'administrateur."
	medecinProfileGone = "Profil médecin non trouvé. Veuillez contacter l'administrateur."
)

type RendezvousRepository interface {
	List(ctx context.Context, filter dto.RendezvousFilter, page utils.Pagination) ([]dto.Rendezvous, int64, error)
	FindByID(ctx context.Context, id uuid.UUID) (*dto.Rendezvous, error)
	PatientExists(ctx context.Context, id uuid.UUID) (bool, error)
	Update(ctx context.Context, id uuid.UUID, ch dto.RendezvousChanges) (bool, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, statut string, notesMedecin *string) (bool, error)
	Delete(ctx context.Context, id uuid.UUID) (bool, error)
}

// Scheduler vérificateur de disponibilité des médecins
type Scheduler interface {
	IsAvailable(ctx context.Context, medecinID uuid.UUID, at time.Time) (bool, error)
	EnsureFree(ctx context.Context, medecinID uuid.UUID, at time.Time, exclude uuid.UUID) error
	Book(ctx context.Context, b availabilityDTO.Booking) (uuid.UUID, error)
}

// Notifier envoi asynchrone, n'échoue jamais la requête
type Notifier interface {
	AppointmentCreated(ctx context.Context, ev notifDTO.AppointmentEvent, creator policy.Role)
	AppointmentStatusChanged(ctx context.Context, ev notifDTO.AppointmentEvent)
}

type RendezvousService struct {
	repo      RendezvousRepository
	scheduler Scheduler
	notifier  Notifier
	metrics   metrics.Recorder
	log       *zap.Logger
	now       func() time.Time
}

func NewRendezvousService(
	repo RendezvousRepository,
	scheduler Scheduler,
	notifier Notifier,
	recorder metrics.Recorder,
	log *zap.Logger,
) *RendezvousService {
	return &RendezvousService{
		repo:      repo,
		scheduler: scheduler,
		notifier:  notifier,
		metrics:   recorder,
		log:       log.Named("rendezvous"),
		now:       time.Now,
	}
}

// List restreint aux rendez-vous du patient ou du médecin connecté
func (s *RendezvousService) List(ctx context.Context, principal *policy.Principal, filter dto.RendezvousFilter, page utils.Pagination) ([]dto.Rendezvous, int64, error) {
	switch principal.Role {
	case policy.RolePatient:
		if principal.PatientID == nil {
			return nil, 0, apperror.InvalidState(patientProfileGone)
		}
		filter.PatientID = principal.PatientID
	case policy.RoleMedecin:
		if principal.MedecinID == nil {
			return nil, 0, apperror.InvalidState(medecinProfileGone)
		}
		filter.MedecinID = principal.MedecinID
	}
	return s.repo.List(ctx, filter, page)
}

func (s *RendezvousService) Get(ctx context.Context, principal *policy.Principal, id uuid.UUID) (*dto.Rendezvous, error) {
	rdv, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if !principal.CanAccessRecord(rdv.Patient.ID, rdv.Medecin.ID) {
		return nil, apperror.Forbidden(policy.DefaultDenial)
	}
	return rdv, nil
}

// Create le patient réserve pour lui-même, l'administrateur pour un patient donné
func (s *RendezvousService) Create(ctx context.Context, principal *policy.Principal, req dto.CreateRendezvousRequest) (*dto.Rendezvous, error) {
	if !principal.Can(policy.RendezvousBook) {
		return nil, apperror.Forbidden(policy.DenialMessage(principal.Role, policy.RendezvousBook))
	}

	at, err := s.futureDateTime(req.DateHeure)
	if err != nil {
		return nil, err
	}

	patientID, err := s.bookingPatient(ctx, principal, req.PatientID)
	if err != nil {
		return nil, err
	}

	medecinID := uuid.MustParse(req.MedecinID)
	free, err := s.scheduler.IsAvailable(ctx, medecinID, at)
	if apperror.IsKind(err, apperror.KindNotFound) {
		return nil, apperror.Field("medecin_id", "Le médecin sélectionné n'existe pas")
	}
	if err != nil {
		return nil, err
	}
	if !free {
		return nil, availability.SlotConflict()
	}

	id, err := s.scheduler.Book(ctx, availabilityDTO.Booking{
		PatientID: patientID,
		MedecinID: medecinID,
		DateHeure: at,
		Statut:    availabilityDTO.StatutEnAttente,
		Motif:     trimmed(req.Motif),
		Notes:     trimmed(req.Notes),
		CreatedBy: principal.UserID,
	})
	if err != nil {
		return nil, err
	}

	rdv, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}

	s.metrics.AppointmentCreated(ctx)
	s.notifier.AppointmentCreated(ctx, rdv.Event(), principal.Role)
	s.log.Info("rendez-vous créé",
		zap.String("rendezvous_id", rdv.ID.String()),
		zap.String("medecin_id", medecinID.String()),
		zap.String("created_by", principal.UserID.String()),
	)
	return rdv, nil
}

// Update modification par un participant. Le patient ne peut qu'annuler.
func (s *RendezvousService) Update(ctx context.Context, principal *policy.Principal, id uuid.UUID, req dto.UpdateRendezvousRequest) (*dto.Rendezvous, error) {
	rdv, err := s.Get(ctx, principal, id)
	if err != nil {
		return nil, err
	}

	if req.Statut != nil && *req.Statut != rdv.Statut &&
		principal.Is(policy.RolePatient) && *req.Statut != availabilityDTO.StatutAnnule {
		return nil, apperror.Forbidden("Les patients peuvent uniquement annuler leurs rendez-vous")
	}

	changes := dto.RendezvousChanges{Statut: req.Statut, Motif: trimmed(req.Motif), Notes: trimmed(req.Notes)}
	at := rdv.DateHeure
	if req.DateHeure != nil {
		if at, err = s.futureDateTime(*req.DateHeure); err != nil {
			return nil, err
		}
		changes.DateHeure = &at
	}

	statut := rdv.Statut
	if req.Statut != nil {
		statut = *req.Statut
	}
	if err := s.ensureSlot(ctx, rdv, at, statut); err != nil {
		return nil, err
	}

	updated, err := s.repo.Update(ctx, id, changes)
	if err != nil {
		return nil, mapWriteError(err)
	}
	if !updated {
		return nil, apperror.NotFound(rendezvousNotFound)
	}

	result, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if result.Statut != rdv.Statut {
		s.statusChanged(ctx, result)
	}
	return result, nil
}

// UpdateStatus validation par le médecin assigné ou un administrateur
func (s *RendezvousService) UpdateStatus(ctx context.Context, principal *policy.Principal, id uuid.UUID, req dto.UpdateStatusRequest) (*dto.Rendezvous, error) {
	if !principal.Can(policy.RendezvousStatus) {
		return nil, apperror.Forbidden(policy.DenialMessage(principal.Role, policy.RendezvousStatus))
	}

	rdv, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if principal.Is(policy.RoleMedecin) && !principal.OwnsMedecin(rdv.Medecin.ID) {
		return nil, apperror.Forbidden("Vous ne pouvez modifier que vos propres rendez-vous")
	}

	if err := s.ensureSlot(ctx, rdv, rdv.DateHeure, req.Statut); err != nil {
		return nil, err
	}

	updated, err := s.repo.UpdateStatus(ctx, id, req.Statut, trimmed(req.NotesMedecin))
	if err != nil {
		return nil, mapWriteError(err)
	}
	if !updated {
		return nil, apperror.NotFound(rendezvousNotFound)
	}

	result, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	s.statusChanged(ctx, result)
	return result, nil
}

func (s *RendezvousService) Delete(ctx context.Context, principal *policy.Principal, id uuid.UUID) error {
	if _, err := s.Get(ctx, principal, id); err != nil {
		return err
	}
	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		return fmt.Errorf("suppression rendez-vous: %w", err)
	}
	if !deleted {
		return apperror.NotFound(rendezvousNotFound)
	}
	return nil
}

func (s *RendezvousService) bookingPatient(ctx context.Context, principal *policy.Principal, requested string) (uuid.UUID, error) {
	if principal.Is(policy.RolePatient) {
		if principal.PatientID == nil {
			return uuid.Nil, apperror.InvalidState(patientProfileGone)
		}
		return *principal.PatientID, nil
	}

	if requested == "" {
		return uuid.Nil, apperror.Field("patient_id", "Le patient est obligatoire")
	}
	patientID := uuid.MustParse(requested)
	exists, err := s.repo.PatientExists(ctx, patientID)
	if err != nil {
		return uuid.Nil, fmt.Errorf("vérification patient: %w", err)
	}
	if !exists {
		return uuid.Nil, apperror.Field("patient_id", "Le patient sélectionné n'existe pas")
	}
	return patientID, nil
}

// ensureSlot un rendez-vous qui (re)devient actif ou change d'horaire doit trouver le créneau libre
func (s *RendezvousService) ensureSlot(ctx context.Context, rdv *dto.Rendezvous, at time.Time, statut string) error {
	if !availabilityDTO.IsActive(statut) {
		return nil
	}
	if at.Equal(rdv.DateHeure) && availabilityDTO.IsActive(rdv.Statut) {
		return nil
	}
	return s.scheduler.EnsureFree(ctx, rdv.Medecin.ID, at, rdv.ID)
}

func (s *RendezvousService) futureDateTime(raw string) (time.Time, error) {
	at, err := utils.ParseDateTime(strings.TrimSpace(raw))
	if err != nil {
		return time.Time{}, apperror.Field("date_heure", "La date et l'heure du rendez-vous sont invalides")
	}
	if !at.After(s.now()) {
		return time.Time{}, apperror.Field("date_heure", "La date du rendez-vous doit être postérieure à maintenant")
	}
	return at, nil
}

func (s *RendezvousService) statusChanged(ctx context.Context, rdv *dto.Rendezvous) {
	s.metrics.AppointmentStatusChanged(ctx, rdv.Statut)
	s.notifier.AppointmentStatusChanged(ctx, rdv.Event())
}

func (s *RendezvousService) find(ctx context.Context, id uuid.UUID) (*dto.Rendezvous, error) {
	rdv, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("lecture rendez-vous: %w", err)
	}
	if rdv == nil {
		return nil, apperror.NotFound(rendezvousNotFound)
	}
	return rdv, nil
}

func mapWriteError(err error) error {
	if availabilityQueries.IsSlotConflict(err) {
		return availability.SlotConflict()
	}
	return fmt.Errorf("enregistrement rendez-vous: %w", err)
}

func trimmed(v *string) *string {
	if v == nil {
		return nil
	}
	t := strings.TrimSpace(*v)
	if t == "" {
		return nil
	}
	return &t
}
