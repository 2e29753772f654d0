package dto

import (
	"time"

	"gestion-hospitaliere/internal/shared/utils"

	"github.com/google/uuid"
)

const Dir = "prescriptions"

type PatientSummary struct {
	ID  uuid.UUID `json:"id"`
	Nom string    `json:"nom"`
}

type MedecinSummary struct {
	ID         uuid.UUID `json:"id"`
	Nom        string    `json:"nom"`
	Specialite string    `json:"specialite"`
}

type Prescription struct {
	ID         uuid.UUID      `json:"id"`
	Patient    PatientSummary `json:"patient"`
	Medecin    MedecinSummary `json:"medecin"`
	Contenu    string         `json:"contenu"`
	FichierPDF *string        `json:"fichier_pdf"`
	Date       utils.Date     `json:"date"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
}

type PrescriptionFilter struct {
	PatientID *uuid.UUID
	MedecinID *uuid.UUID
}

// CreatePrescriptionRequest JSON ou multipart (fichier_pdf optionnel)
type CreatePrescriptionRequest struct {
	PatientID string `json:"patient_id" form:"patient_id" binding:"required,uuid"`
	Contenu   string `json:"contenu" form:"contenu" binding:"required"`
	Date      string `json:"date" form:"date" binding:"required,date"`
}

type UpdatePrescriptionRequest struct {
	Contenu *string `json:"contenu" form:"contenu" binding:"omitempty,min=1"`
	Date    *string `json:"date" form:"date" binding:"omitempty,date"`
}

// Attachment PDF reçu en multipart
type Attachment struct {
	Filename    string
	ContentType string
	Size        int64
}

type NewPrescription struct {
	PatientID  uuid.UUID
	MedecinID  uuid.UUID
	Contenu    string
	Date       time.Time
	FichierPDF *string
}

// PrescriptionChanges nil = inchangé
type PrescriptionChanges struct {
	Contenu    *string
	Date       *time.Time
	FichierPDF *string
}
