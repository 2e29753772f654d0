package dto

import (
	"time"

	"gestion-hospitaliere/internal/shared/utils"

	"github.com/google/uuid"
)

type UserSummary struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Email string    `json:"email"`
}

// LitActuel lit occupé par le patient
type LitActuel struct {
	ID                 uuid.UUID  `json:"id"`
	Numero             string     `json:"numero"`
	Chambre            string     `json:"chambre"`
	IdentifiantComplet string     `json:"identifiant_complet"`
	DateOccupation     *time.Time `json:"date_occupation"`
}

type Patient struct {
	ID                uuid.UUID   `json:"id"`
	User              UserSummary `json:"user"`
	DateNaissance     *utils.Date `json:"date_naissance"`
	Age               *int        `json:"age"`
	Adresse           *string     `json:"adresse"`
	Telephone         *string     `json:"telephone"`
	GroupeSanguin     *string     `json:"groupe_sanguin"`
	HistoriqueMedical *string     `json:"historique_medical"`
	Photo             *string     `json:"photo"`
	Documents         []Document  `json:"documents"`
	LitActuel         *LitActuel  `json:"lit_actuel"`
	CreatedAt         time.Time   `json:"created_at"`
	UpdatedAt         time.Time   `json:"updated_at"`
}

// StoredFiles clés de stockage rattachées au patient
func (p *Patient) StoredFiles() []string {
	var keys []string
	if p.Photo != nil && *p.Photo != "" {
		keys = append(keys, *p.Photo)
	}
	for _, d := range p.Documents {
		keys = append(keys, d.Chemin)
	}
	return keys
}

// PatientFilter filtres de GET /patients. MedecinID restreint aux patients
// ayant au moins un rendez-vous avec ce médecin.
type PatientFilter struct {
	Search        string
	GroupeSanguin string
	MedecinID     *uuid.UUID
}

type CreatePatientRequest struct {
	Name              string  `json:"name" binding:"required,max=255"`
	Email             string  `json:"email" binding:"required,email,max=255"`
	DateNaissance     string  `json:"date_naissance" binding:"required,date"`
	Adresse           string  `json:"adresse" binding:"required,max=255"`
	Telephone         string  `json:"telephone" binding:"required,telephone"`
	GroupeSanguin     *string `json:"groupe_sanguin" binding:"omitempty,groupe_sanguin"`
	HistoriqueMedical *string `json:"historique_medical"`
}

type UpdatePatientRequest struct {
	Name              *string `json:"name" binding:"omitempty,max=255"`
	DateNaissance     *string `json:"date_naissance" binding:"omitempty,date"`
	Adresse           *string `json:"adresse" binding:"omitempty,max=255"`
	Telephone         *string `json:"telephone" binding:"omitempty,telephone"`
	GroupeSanguin     *string `json:"groupe_sanguin" binding:"omitempty,groupe_sanguin"`
	HistoriqueMedical *string `json:"historique_medical"`
}

// NewPatient compte Patient + profil à insérer
type NewPatient struct {
	Name              string
	Email             string
	PasswordHash      string
	DateNaissance     time.Time
	Adresse           string
	Telephone         string
	GroupeSanguin     *string
	HistoriqueMedical *string
}

// PatientChanges nil = inchangé
type PatientChanges struct {
	Name              *string
	DateNaissance     *time.Time
	Adresse           *string
	Telephone         *string
	GroupeSanguin     *string
	HistoriqueMedical *string
}

// CreatedPatient TemporaryPassword renvoyé une seule fois
type CreatedPatient struct {
	*Patient
	TemporaryPassword string `json:"temporary_password"`
}

// PatientContact données utilisées par les notifications et les autres modules
type PatientContact struct {
	PatientID uuid.UUID
	UserID    uuid.UUID
	Name      string
	Email     string
}
