package dto

import (
	"time"

	"github.com/google/uuid"
)

// RegisterRequest inscription publique. Le rôle Admin n'est attribué que par promotion.
type RegisterRequest struct {
	Name                 string `json:"name" binding:"required,max=255"`
	Email                string `json:"email" binding:"required,email,max=255"`
	Password             string `json:"password" binding:"required,min=8"`
	PasswordConfirmation string `json:"password_confirmation" binding:"required,eqfield=Password"`
	Role                 string `json:"role" binding:"required,oneof=Patient Médecin Infirmier"`

	// Profil patient
	DateNaissance string `json:"date_naissance" binding:"omitempty,date"`
	Adresse       string `json:"adresse" binding:"omitempty,max=500"`
	Telephone     string `json:"telephone" binding:"omitempty,telephone"`
	GroupeSanguin string `json:"groupe_sanguin" binding:"omitempty,groupe_sanguin"`

	// Profil médecin
	ServiceID  string `json:"service_id" binding:"omitempty,uuid"`
	Specialite string `json:"specialite" binding:"omitempty,max=255"`
}

// LoginRequest identifiants de connexion
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// AuthResponse réponse de connexion / inscription
type AuthResponse struct {
	Token     string   `json:"token"`
	TokenType string   `json:"token_type"`
	ExpiresAt string   `json:"expires_at"`
	User      UserData `json:"user"`
}

// UserData informations publiques d'un utilisateur
type UserData struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	Email     string  `json:"email"`
	Role      string  `json:"role"`
	PatientID *string `json:"patient_id"`
	MedecinID *string `json:"medecin_id"`
}

// UserRecord ligne users jointe aux profils
type UserRecord struct {
	ID           uuid.UUID
	Name         string
	Email        string
	PasswordHash string
	Role         string
	PatientID    *uuid.UUID
	MedecinID    *uuid.UUID
	CreatedAt    time.Time
}

// PatientProfile données du profil créé avec l'utilisateur
type PatientProfile struct {
	DateNaissance *time.Time
	Adresse       string
	Telephone     string
	GroupeSanguin string
}

// MedecinProfile données du profil médecin créé avec l'utilisateur
type MedecinProfile struct {
	ServiceID  uuid.UUID
	Specialite string
}

// NewUser utilisateur à créer, avec au plus un profil
type NewUser struct {
	Name         string
	Email        string
	PasswordHash string
	Role         string
	Patient      *PatientProfile
	Medecin      *MedecinProfile
}

// ToUserData projection publique
func (u *UserRecord) ToUserData() UserData {
	data := UserData{
		ID:    u.ID.String(),
		Name:  u.Name,
		Email: u.Email,
		Role:  u.Role,
	}
	if u.PatientID != nil {
		id := u.PatientID.String()
		data.PatientID = &id
	}
	if u.MedecinID != nil {
		id := u.MedecinID.String()
		data.MedecinID = &id
	}
	return data
}
