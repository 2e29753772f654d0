package dto

import (
	"time"

	"github.com/google/uuid"
)

// Document pièce jointe du dossier patient, identifiée de façon stable
type Document struct {
	ID         uuid.UUID `json:"id"`
	Nom        string    `json:"nom"`
	Type       string    `json:"type"`
	Chemin     string    `json:"chemin"`
	DateUpload time.Time `json:"date_upload"`
}

// Upload fichier reçu en multipart
type Upload struct {
	Filename    string
	ContentType string
	Size        int64
}

const (
	MaxPhotoSize    = 2 << 20
	MaxDocumentSize = 5 << 20

	PhotosDir    = "patients/photos"
	DocumentsDir = "patients/documents"
)

var (
	PhotoTypes    = map[string]string{"image/jpeg": ".jpg", "image/png": ".png"}
	DocumentTypes = map[string]string{"application/pdf": ".pdf", "image/jpeg": ".jpg", "image/png": ".png"}
)
