package dto

import (
	"time"

	"github.com/google/uuid"
)

// Périodes acceptées par /dashboard/graphiques
const (
	Periode7Jours   = "7days"
	Periode30Jours  = "30days"
	Periode12Mois   = "12months"
	DefaultPeriode  = Periode7Jours
	ActiviteRecente = 10
)

type Statistiques struct {
	TotalPatients        int64 `json:"total_patients"`
	TotalMedecins        int64 `json:"total_medecins"`
	TotalChambres        int64 `json:"total_chambres"`
	TotalLits            int64 `json:"total_lits"`
	LitsDisponibles      int64 `json:"lits_disponibles"`
	LitsOccupes          int64 `json:"lits_occupes"`
	RendezvousAujourdhui int64 `json:"rendezvous_aujourdhui"`
	RendezvousSemaine    int64 `json:"rendezvous_semaine"`
}

type RendezvousDuJour struct {
	ID      uuid.UUID `json:"id"`
	Heure   string    `json:"heure"`
	Patient string    `json:"patient"`
	Medecin string    `json:"medecin"`
	Motif   *string   `json:"motif"`
	Statut  string    `json:"statut"`
}

type OccupationLits struct {
	Total          int64   `json:"total"`
	Occupes        int64   `json:"occupes"`
	Disponibles    int64   `json:"disponibles"`
	Maintenance    int64   `json:"maintenance"`
	Reserve        int64   `json:"reserve"`
	TauxOccupation float64 `json:"taux_occupation"`
}

type StatutCount struct {
	Statut string `json:"statut"`
	Total  int64  `json:"total"`
}

type ServiceCount struct {
	Service  string `json:"service"`
	Medecins int64  `json:"medecins"`
	Chambres int64  `json:"chambres"`
}

type Activite struct {
	ID          uuid.UUID `json:"id"`
	Type        string    `json:"type"`
	Description string    `json:"description"`
	Date        string    `json:"date"`
}

type Dashboard struct {
	Statistiques         Statistiques       `json:"statistiques_generales"`
	RendezvousAujourdhui []RendezvousDuJour `json:"rendezvous_aujourdhui"`
	OccupationLits       OccupationLits     `json:"occupation_lits"`
	RendezvousParStatut  []StatutCount      `json:"rendezvous_par_statut"`
	PatientsParService   []ServiceCount     `json:"patients_par_service"`
	ActiviteRecente      []Activite         `json:"activite_recente"`
}

type JourCount struct {
	Date  string `json:"date"`
	Total int64  `json:"total"`
}

type MoisCount struct {
	Mois  string `json:"mois"`
	Total int64  `json:"total"`
}

type OccupationType struct {
	Type           string  `json:"type"`
	Chambres       int64   `json:"chambres"`
	LitsTotal      int64   `json:"lits_total"`
	LitsOccupes    int64   `json:"lits_occupes"`
	TauxOccupation float64 `json:"taux_occupation"`
}

type Graphiques struct {
	RendezvousParJour         []JourCount      `json:"rendezvous_par_jour"`
	PatientsParMois           []MoisCount      `json:"patients_par_mois"`
	OccupationChambresParType []OccupationType `json:"occupation_chambres_par_type"`
}

// Window fenêtre temporelle des compteurs de rendez-vous
type Window struct {
	From time.Time
	To   time.Time
}
