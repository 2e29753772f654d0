package dto

import (
	"time"

	"github.com/google/uuid"
)

// Jours clés autorisées de disponibilites
var Jours = []string{"lundi", "mardi", "mercredi", "jeudi", "vendredi", "samedi", "dimanche"}

type UserSummary struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Email string    `json:"email"`
}

type ServiceSummary struct {
	ID  uuid.UUID `json:"id"`
	Nom string    `json:"nom"`
}

type Medecin struct {
	ID              uuid.UUID       `json:"id"`
	User            UserSummary     `json:"user"`
	Specialite      string          `json:"specialite"`
	Service         ServiceSummary  `json:"service"`
	Disponibilites  map[string]bool `json:"disponibilites"`
	RendezvousCount int64           `json:"rendezvous_count"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// MedecinFilter filtres de GET /medecins
type MedecinFilter struct {
	ServiceID  *uuid.UUID
	Specialite string
	Search     string
}

type CreateMedecinRequest struct {
	Name           string          `json:"name" binding:"required,max=255"`
	Email          string          `json:"email" binding:"required,email,max=255"`
	Password       string          `json:"password" binding:"omitempty,min=8"`
	Specialite     string          `json:"specialite" binding:"required,max=255"`
	ServiceID      string          `json:"service_id" binding:"required,uuid"`
	Disponibilites map[string]bool `json:"disponibilites"`
}

type UpdateMedecinRequest struct {
	Name           *string         `json:"name" binding:"omitempty,max=255"`
	Specialite     *string         `json:"specialite" binding:"omitempty,max=255"`
	ServiceID      *string         `json:"service_id" binding:"omitempty,uuid"`
	Disponibilites map[string]bool `json:"disponibilites"`
}

// NewMedecin compte + profil à insérer
type NewMedecin struct {
	Name           string
	Email          string
	PasswordHash   string
	Specialite     string
	ServiceID      uuid.UUID
	Disponibilites map[string]bool
}

// MedecinChanges champs modifiés, nil = inchangé
type MedecinChanges struct {
	Name           *string
	Specialite     *string
	ServiceID      *uuid.UUID
	Disponibilites map[string]bool
}

// CreatedMedecin réponse de création. TemporaryPassword n'est renvoyé qu'une fois.
type CreatedMedecin struct {
	*Medecin
	TemporaryPassword string `json:"temporary_password,omitempty"`
}
