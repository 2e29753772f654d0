package dto

import (
	"time"

	"gestion-hospitaliere/internal/shared/utils"

	"github.com/google/uuid"
)

const (
	Dir = "factures"

	StatutEnAttente = "en_attente"
	StatutPayee     = "payee"
	StatutAnnulee   = "annulee"
)

type PatientSummary struct {
	ID    uuid.UUID `json:"id"`
	Nom   string    `json:"nom"`
	Email string    `json:"email"`
}

type Facture struct {
	ID          uuid.UUID      `json:"id"`
	Patient     PatientSummary `json:"patient"`
	Montant     float64        `json:"montant"`
	Statut      string         `json:"statut"`
	Date        utils.Date     `json:"date"`
	FichierPDF  *string        `json:"fichier_pdf"`
	Description *string        `json:"description"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

type FactureFilter struct {
	PatientID *uuid.UUID
	Statut    string
}

// CreateFactureRequest JSON ou multipart (fichier_pdf optionnel)
type CreateFactureRequest struct {
	PatientID   string   `json:"patient_id" form:"patient_id" binding:"required,uuid"`
	Montant     *float64 `json:"montant" form:"montant" binding:"required,gte=0"`
	Statut      string   `json:"statut" form:"statut" binding:"omitempty,facture_statut"`
	Date        string   `json:"date" form:"date" binding:"required,date"`
	Description *string  `json:"description" form:"description" binding:"omitempty,max=5000"`
}

type UpdateFactureRequest struct {
	Montant     *float64 `json:"montant" form:"montant" binding:"omitempty,gte=0"`
	Statut      *string  `json:"statut" form:"statut" binding:"omitempty,facture_statut"`
	Date        *string  `json:"date" form:"date" binding:"omitempty,date"`
	Description *string  `json:"description" form:"description" binding:"omitempty,max=5000"`
}

// Attachment PDF reçu en multipart
type Attachment struct {
	Filename    string
	ContentType string
	Size        int64
}

type NewFacture struct {
	PatientID   uuid.UUID
	Montant     float64
	Statut      string
	Date        time.Time
	FichierPDF  *string
	Description *string
}

// FactureChanges nil = inchangé
type FactureChanges struct {
	Montant     *float64
	Statut      *string
	Date        *time.Time
	FichierPDF  *string
	Description *string
}
