package comptes

import (
	"time"

	"github.com/google/uuid"
)

// UserAccount compte vu par l'administration, sans hash de mot de passe
type UserAccount struct {
	ID        uuid.UUID  `json:"id"`
	Name      string     `json:"name"`
	Email     string     `json:"email"`
	Role      string     `json:"role"`
	PatientID *uuid.UUID `json:"patient_id"`
	MedecinID *uuid.UUID `json:"medecin_id"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// UserFilter ?role=&search=
type UserFilter struct {
	Role   string `form:"role" binding:"omitempty,oneof=Admin Médecin Patient Infirmier"`
	Search string `form:"search" binding:"omitempty,max=255"`
}

// PromoteRequest seuls les rôles sans profil sont attribuables par promotion
type PromoteRequest struct {
	Role string `json:"role" binding:"required,oneof=Admin Infirmier"`
}

// AdminAccount résultat de create-admin
type AdminAccount struct {
	User     UserAccount
	Created  bool
	Password string // mot de passe temporaire généré, vide sinon
}
