package dto

import (
	"github.com/google/uuid"
)

type LitFilter struct {
	ChambreID *uuid.UUID
	Statut    string
}

type CreateLitRequest struct {
	ChambreID string  `json:"chambre_id" binding:"required,uuid"`
	Numero    string  `json:"numero" binding:"required,max=10"`
	Statut    string  `json:"statut" binding:"omitempty,lit_statut"`
	Notes     *string `json:"notes" binding:"omitempty,max=2000"`
}

// UpdateLitRequest le statut occupe passe exclusivement par assigner / libérer
type UpdateLitRequest struct {
	Numero *string `json:"numero" binding:"omitempty,min=1,max=10"`
	Statut *string `json:"statut" binding:"omitempty,lit_statut"`
	Notes  *string `json:"notes" binding:"omitempty,max=2000"`
}

type NewLit struct {
	ChambreID uuid.UUID
	Numero    string
	Statut    string
	Notes     *string
}

type LitChanges struct {
	Numero *string
	Statut *string
	Notes  *string
}
