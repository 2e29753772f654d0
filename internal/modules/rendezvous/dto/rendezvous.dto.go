package dto

import (
	"time"

	notifDTO "gestion-hospitaliere/internal/modules/notifications/dto"

	"github.com/google/uuid"
)

type UserSummary struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Email string    `json:"email"`
}

type PatientSummary struct {
	ID        uuid.UUID   `json:"id"`
	User      UserSummary `json:"user"`
	Telephone *string     `json:"telephone"`
}

type MedecinSummary struct {
	ID         uuid.UUID   `json:"id"`
	User       UserSummary `json:"user"`
	Specialite string      `json:"specialite"`
}

type Rendezvous struct {
	ID             uuid.UUID      `json:"id"`
	Patient        PatientSummary `json:"patient"`
	Medecin        MedecinSummary `json:"medecin"`
	DateHeure      time.Time      `json:"date_heure"`
	Statut         string         `json:"statut"`
	Motif          *string        `json:"motif"`
	Notes          *string        `json:"notes"`
	RappelEnvoyeAt *time.Time     `json:"rappel_envoye_at,omitempty"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
}

// Event données transmises au dispatcher de notifications
func (r *Rendezvous) Event() notifDTO.AppointmentEvent {
	return notifDTO.AppointmentEvent{
		RendezvousID: r.ID,
		DateHeure:    r.DateHeure,
		Statut:       r.Statut,
		Motif:        r.Motif,
		Patient:      notifDTO.Party{UserID: r.Patient.User.ID, Name: r.Patient.User.Name, Email: r.Patient.User.Email},
		Medecin:      notifDTO.Party{UserID: r.Medecin.User.ID, Name: r.Medecin.User.Name, Email: r.Medecin.User.Email},
	}
}

type RendezvousFilter struct {
	PatientID *uuid.UUID
	MedecinID *uuid.UUID
	Statut    string
	Date      *time.Time
}

type CreateRendezvousRequest struct {
	MedecinID string  `json:"medecin_id" binding:"required,uuid"`
	PatientID string  `json:"patient_id" binding:"omitempty,uuid"`
	DateHeure string  `json:"date_heure" binding:"required"`
	Motif     *string `json:"motif" binding:"omitempty,max=255"`
	Notes     *string `json:"notes" binding:"omitempty,max=5000"`
}

type UpdateRendezvousRequest struct {
	DateHeure *string `json:"date_heure"`
	Statut    *string `json:"statut" binding:"omitempty,rdv_statut"`
	Motif     *string `json:"motif" binding:"omitempty,max=255"`
	Notes     *string `json:"notes" binding:"omitempty,max=5000"`
}

type UpdateStatusRequest struct {
	Statut       string  `json:"statut" binding:"required,rdv_statut"`
	NotesMedecin *string `json:"notes_medecin" binding:"omitempty,max=5000"`
}

type RendezvousChanges struct {
	DateHeure *time.Time
	Statut    *string
	Motif     *string
	Notes     *string
}
