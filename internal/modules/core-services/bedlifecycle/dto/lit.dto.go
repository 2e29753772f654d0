package dto

import (
	"math"
	"time"

	"gestion-hospitaliere/internal/shared/utils"

	"github.com/google/uuid"
)

const (
	StatutDisponible  = "disponible"
	StatutOccupe      = "occupe"
	StatutMaintenance = "maintenance"
	StatutReserve     = "reserve"
)

type ChambreSummary struct {
	ID     uuid.UUID `json:"id"`
	Numero string    `json:"numero"`
	Type   string    `json:"type"`
}

type PatientSummary struct {
	ID        uuid.UUID `json:"id"`
	Nom       string    `json:"nom"`
	Telephone *string   `json:"telephone"`
}

type Lit struct {
	ID                   uuid.UUID       `json:"id"`
	Chambre              ChambreSummary  `json:"chambre"`
	Numero               string          `json:"numero"`
	IdentifiantComplet   string          `json:"identifiant_complet"`
	Statut               string          `json:"statut"`
	Patient              *PatientSummary `json:"patient,omitempty"`
	DateOccupation       *time.Time      `json:"date_occupation"`
	DateLiberationPrevue *utils.Date     `json:"date_liberation_prevue"`
	Notes                *string         `json:"notes"`
	CreatedAt            time.Time       `json:"created_at"`
	UpdatedAt            time.Time       `json:"updated_at"`
}

// IdentifiantComplet "<numéro chambre>-<numéro lit>"
func IdentifiantComplet(chambre, lit string) string {
	return chambre + "-" + lit
}

// AssignRequest corps de POST /lits/:id/assigner
type AssignRequest struct {
	PatientID            string `json:"patient_id" binding:"required,uuid"`
	DateLiberationPrevue string `json:"date_liberation_prevue" binding:"omitempty,date"`
}

// TauxOccupation occupés / total en pourcentage, arrondi à 2 décimales, 0 si total = 0
func TauxOccupation(occupes, total int64) float64 {
	if total <= 0 || occupes <= 0 {
		return 0
	}
	if occupes > total {
		occupes = total
	}
	return math.Round(float64(occupes)*10000/float64(total)) / 100
}
