package dto

import (
	"time"

	"github.com/google/uuid"
)

// Service département hospitalier
type Service struct {
	ID            uuid.UUID `json:"id"`
	Nom           string    `json:"nom"`
	Description   *string   `json:"description"`
	MedecinsCount int       `json:"medecins_count"`
	ChambresCount int       `json:"chambres_count"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// ServiceRequest création / modification
type ServiceRequest struct {
	Nom         string  `json:"nom" binding:"required,max=255"`
	Description *string `json:"description" binding:"omitempty,max=2000"`
}
