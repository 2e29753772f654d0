package dto

import (
	"time"

	litDTO "gestion-hospitaliere/internal/modules/core-services/bedlifecycle/dto"

	"github.com/google/uuid"
)

type ServiceSummary struct {
	ID  uuid.UUID `json:"id"`
	Nom string    `json:"nom"`
}

type Chambre struct {
	ID                   uuid.UUID      `json:"id"`
	Numero               string         `json:"numero"`
	Service              ServiceSummary `json:"service"`
	Type                 string         `json:"type"`
	Capacite             int            `json:"capacite"`
	TarifJournalier      float64        `json:"tarif_journalier"`
	Disponible           bool           `json:"disponible"`
	Equipements          []string       `json:"equipements"`
	Notes                *string        `json:"notes"`
	Lits                 []litDTO.Lit   `json:"lits,omitempty"`
	LitsCount            int64          `json:"lits_count"`
	LitsDisponiblesCount int64          `json:"lits_disponibles_count"`
	LitsOccupesCount     int64          `json:"-"`
	TauxOccupation       float64        `json:"taux_occupation"`
	CreatedAt            time.Time      `json:"created_at"`
	UpdatedAt            time.Time      `json:"updated_at"`
}

type ChambreFilter struct {
	ServiceID  *uuid.UUID
	Type       string
	Disponible *bool
}

type CreateChambreRequest struct {
	Numero          string   `json:"numero" binding:"required,max=50"`
	ServiceID       string   `json:"service_id" binding:"required,uuid"`
	Type            string   `json:"type" binding:"required,chambre_type"`
	Capacite        int      `json:"capacite" binding:"required,min=1,max=10"`
	TarifJournalier *float64 `json:"tarif_journalier" binding:"required,min=0"`
	Disponible      *bool    `json:"disponible"`
	Equipements     []string `json:"equipements" binding:"omitempty,dive,max=100"`
	Notes           *string  `json:"notes" binding:"omitempty,max=2000"`
}

// UpdateChambreRequest champs absents = inchangés
type UpdateChambreRequest struct {
	Numero          *string   `json:"numero" binding:"omitempty,min=1,max=50"`
	ServiceID       *string   `json:"service_id" binding:"omitempty,uuid"`
	Type            *string   `json:"type" binding:"omitempty,chambre_type"`
	Capacite        *int      `json:"capacite" binding:"omitempty,min=1,max=10"`
	TarifJournalier *float64  `json:"tarif_journalier" binding:"omitempty,min=0"`
	Disponible      *bool     `json:"disponible"`
	Equipements     *[]string `json:"equipements"`
	Notes           *string   `json:"notes" binding:"omitempty,max=2000"`
}

// ChambreValues colonnes écrites, nil = inchangé en modification
type ChambreValues struct {
	Numero          *string
	ServiceID       *uuid.UUID
	Type            *string
	Capacite        *int
	TarifJournalier *float64
	Disponible      *bool
	Equipements     []string
	Notes           *string
}
