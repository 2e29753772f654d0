package dto

import (
	"time"

	"github.com/google/uuid"
)

// Statuts d'un rendez-vous. Seuls les statuts actifs occupent un créneau.
const (
	StatutEnAttente = "En attente"
	StatutConfirme  = "Confirmé"
	StatutAnnule    = "Annulé"
	StatutTermine   = "Terminé"
)

// StatutsActifs statuts qui bloquent le créneau du médecin
var StatutsActifs = []string{StatutEnAttente, StatutConfirme}

// IsActive indique si statut occupe un créneau
func IsActive(statut string) bool {
	return statut == StatutEnAttente || statut == StatutConfirme
}

// Booking rendez-vous à insérer
type Booking struct {
	PatientID uuid.UUID
	MedecinID uuid.UUID
	DateHeure time.Time
	Statut    string
	Motif     *string
	Notes     *string
	CreatedBy uuid.UUID
}

// CreneauxResponse réponse de GET /medecins/:id/creneaux
type CreneauxResponse struct {
	MedecinID string   `json:"medecin_id"`
	Date      string   `json:"date"`
	Creneaux  []string `json:"creneaux"`
}
