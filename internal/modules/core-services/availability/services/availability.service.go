package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gestion-hospitaliere/internal/modules/core-services/availability/dto"
	"gestion-hospitaliere/internal/modules/core-services/availability/queries"
	"gestion-hospitaliere/internal/shared/apperror"
	"gestion-hospitaliere/internal/shared/utils"

	"github.com/google/uuid"
)

const (
	firstSlotHour = 8
	lastSlotHour  = 17
	slotStep      = 30 * time.Minute

	slotTaken        = "Ce créneau n'est pas disponible"
	medecinNotFound  = "Médecin non trouvé"
	SlotConflictCode = "SLOT_CONFLICT"
)

// AvailabilityStore lecture des réservations et insertion atomique
type AvailabilityStore interface {
	MedecinExists(ctx context.Context, medecinID uuid.UUID) (bool, error)
	HasActiveBooking(ctx context.Context, medecinID uuid.UUID, at time.Time, exclude *uuid.UUID) (bool, error)
	BookedTimes(ctx context.Context, medecinID uuid.UUID, from, to time.Time) ([]time.Time, error)
	// InsertIfFree retourne queries.ErrSlotTaken si un rendez-vous actif occupe déjà l'horaire
	InsertIfFree(ctx context.Context, b dto.Booking) (uuid.UUID, error)
}

type AvailabilityService struct {
	store AvailabilityStore
}

func NewAvailabilityService(store AvailabilityStore) *AvailabilityService {
	return &AvailabilityService{store: store}
}

// IsAvailable faux si un rendez-vous actif existe exactement à cet horaire
func (s *AvailabilityService) IsAvailable(ctx context.Context, medecinID uuid.UUID, at time.Time) (bool, error) {
	if err := s.ensureMedecin(ctx, medecinID); err != nil {
		return false, err
	}
	taken, err := s.store.HasActiveBooking(ctx, medecinID, at, nil)
	if err != nil {
		return false, fmt.Errorf("vérification disponibilité: %w", err)
	}
	return !taken, nil
}

// EnsureFree utilisé lors d'une modification de rendez-vous, exclude = rendez-vous modifié
func (s *AvailabilityService) EnsureFree(ctx context.Context, medecinID uuid.UUID, at time.Time, exclude uuid.UUID) error {
	taken, err := s.store.HasActiveBooking(ctx, medecinID, at, &exclude)
	if err != nil {
		return fmt.Errorf("vérification disponibilité: %w", err)
	}
	if taken {
		return SlotConflict()
	}
	return nil
}

// FreeSlots créneaux de 30 minutes entre 08:00 et 17:30 non réservés le jour date
func (s *AvailabilityService) FreeSlots(ctx context.Context, medecinID uuid.UUID, date time.Time) ([]string, error) {
	if err := s.ensureMedecin(ctx, medecinID); err != nil {
		return nil, err
	}

	dayStart := utils.StartOfDay(date)
	booked, err := s.store.BookedTimes(ctx, medecinID, dayStart, dayStart.AddDate(0, 0, 1))
	if err != nil {
		return nil, fmt.Errorf("lecture des réservations: %w", err)
	}

	taken := make(map[string]bool, len(booked))
	for _, t := range booked {
		taken[t.In(time.Local).Format(utils.SlotLayout)] = true
	}

	slots := make([]string, 0, 20)
	for _, slot := range DaySlots() {
		if !taken[slot] {
			slots = append(slots, slot)
		}
	}
	return slots, nil
}

// Book vérification et insertion dans une seule transaction SERIALIZABLE
func (s *AvailabilityService) Book(ctx context.Context, b dto.Booking) (uuid.UUID, error) {
	if b.Statut == "" {
		b.Statut = dto.StatutEnAttente
	}
	id, err := s.store.InsertIfFree(ctx, b)
	if err != nil {
		if errors.Is(err, queries.ErrSlotTaken) {
			return uuid.Nil, SlotConflict()
		}
		return uuid.Nil, err
	}
	return id, nil
}

// DaySlots grille fixe de la journée, ordre chronologique
func DaySlots() []string {
	var slots []string
	base := time.Date(2000, 1, 1, firstSlotHour, 0, 0, 0, time.UTC)
	end := time.Date(2000, 1, 1, lastSlotHour, 30, 0, 0, time.UTC)
	for t := base; !t.After(end); t = t.Add(slotStep) {
		slots = append(slots, t.Format(utils.SlotLayout))
	}
	return slots
}

// SlotConflict erreur renvoyée quand le créneau est déjà pris
func SlotConflict() error {
	return apperror.Conflict(slotTaken).WithCode(SlotConflictCode)
}

func (s *AvailabilityService) ensureMedecin(ctx context.Context, medecinID uuid.UUID) error {
	exists, err := s.store.MedecinExists(ctx, medecinID)
	if err != nil {
		return fmt.Errorf("lecture médecin: %w", err)
	}
	if !exists {
		return apperror.NotFound(medecinNotFound)
	}
	return nil
}
