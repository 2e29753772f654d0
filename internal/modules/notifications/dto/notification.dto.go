package dto

import (
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	TypeRendezvousCree          = "rendezvous_cree"
	TypeRendezvousAssigne       = "rendezvous_assigne"
	TypeRendezvousStatutModifie = "rendezvous_statut_modifie"
	TypeRendezvousRappel        = "rendezvous_rappel"
)

// Party participant d'un rendez-vous destinataire d'une notification
type Party struct {
	UserID uuid.UUID
	Name   string
	Email  string
}

// AppointmentEvent données d'un rendez-vous nécessaires aux messages
type AppointmentEvent struct {
	RendezvousID uuid.UUID
	DateHeure    time.Time
	Statut       string
	Motif        *string
	Patient      Party
	Medecin      Party
}

// Job entrée de la file Redis, traitée par le worker
type Job struct {
	UserID  string                 `json:"user_id"`
	Email   string                 `json:"email"`
	Name    string                 `json:"name"`
	Type    string                 `json:"type"`
	Subject string                 `json:"subject"`
	Message string                 `json:"message"`
	Body    string                 `json:"body"`
	Data    map[string]interface{} `json:"data"`
	Mail    bool                   `json:"mail"`
	InApp   bool                   `json:"in_app"`
}

// Notification enregistrement in-app stocké dans MongoDB
type Notification struct {
	ID        primitive.ObjectID     `bson:"_id,omitempty" json:"id"`
	UserID    string                 `bson:"user_id" json:"-"`
	Type      string                 `bson:"type" json:"type"`
	Message   string                 `bson:"message" json:"message"`
	Data      map[string]interface{} `bson:"data" json:"data"`
	ReadAt    *time.Time             `bson:"read_at" json:"read_at"`
	CreatedAt time.Time              `bson:"created_at" json:"created_at"`
}

type UnreadResponse struct {
	Count         int64          `json:"count"`
	Notifications []Notification `json:"notifications"`
}
