package queries

import (
	"context"
	"time"

	"gestion-hospitaliere/internal/infrastructure/database/postgres"
	"gestion-hospitaliere/internal/modules/dashboard/dto"
	"gestion-hospitaliere/internal/shared/utils"
)

var DashboardQueries = struct {
	Statistiques        string
	LitsParStatut       string
	RendezvousDuJour    string
	RendezvousParStatut string
	ParService          string
	ActiviteRecente     string
	RendezvousParJour   string
	PatientsParMois     string
	OccupationParType   string
}{
	/**
	 * Paramètres: $1/$2 = bornes du jour, $3/$4 = bornes de la semaine
	 */
	Statistiques: `
		SELECT
			(SELECT COUNT(*) FROM patients),
			(SELECT COUNT(*) FROM medecins),
			(SELECT COUNT(*) FROM chambres),
			(SELECT COUNT(*) FROM rendezvous WHERE date_heure >= $1 AND date_heure < $2),
			(SELECT COUNT(*) FROM rendezvous WHERE date_heure >= $3 AND date_heure < $4)
	`,

	LitsParStatut: `SELECT statut, COUNT(*) FROM lits GROUP BY statut`,

	/**
	 * Paramètres: $1/$2 = bornes du jour
	 */
	RendezvousDuJour: `
		SELECT r.id, r.date_heure, pu.name, mu.name, r.motif, r.statut
		FROM rendezvous r
		JOIN patients p ON p.id = r.patient_id
		JOIN users pu ON pu.id = p.user_id
		JOIN medecins m ON m.id = r.medecin_id
		JOIN users mu ON mu.id = m.user_id
		WHERE r.date_heure >= $1 AND r.date_heure < $2
		ORDER BY r.date_heure
	`,

	RendezvousParStatut: `
		SELECT statut, COUNT(*) FROM rendezvous
		GROUP BY statut
		ORDER BY statut
	`,

	ParService: `
		SELECT s.nom,
			(SELECT COUNT(*) FROM medecins m WHERE m.service_id = s.id),
			(SELECT COUNT(*) FROM chambres c WHERE c.service_id = s.id)
		FROM services s
		ORDER BY s.nom
	`,

	/**
	 * Paramètres: $1 = nombre de lignes
	 */
	ActiviteRecente: `
		SELECT r.id, pu.name, mu.name, r.created_at
		FROM rendezvous r
		JOIN patients p ON p.id = r.patient_id
		JOIN users pu ON pu.id = p.user_id
		JOIN medecins m ON m.id = r.medecin_id
		JOIN users mu ON mu.id = m.user_id
		ORDER BY r.created_at DESC
		LIMIT $1
	`,

	/**
	 * Paramètres: $1/$2 = fenêtre, $3 = fuseau des jours calendaires
	 */
	RendezvousParJour: `
		SELECT to_char(date_heure AT TIME ZONE $3, 'YYYY-MM-DD') AS jour, COUNT(*)
		FROM rendezvous
		WHERE date_heure >= $1 AND date_heure < $2
		GROUP BY jour
	`,

	/**
	 * Paramètres: $1 = début du premier mois, $2 = fuseau
	 */
	PatientsParMois: `
		SELECT to_char(created_at AT TIME ZONE $2, 'YYYY-MM') AS mois, COUNT(*)
		FROM patients
		WHERE created_at >= $1
		GROUP BY mois
	`,

	OccupationParType: `
		SELECT c.type,
			COUNT(DISTINCT c.id),
			COUNT(l.id),
			COUNT(l.id) FILTER (WHERE l.statut = 'occupe')
		FROM chambres c
		LEFT JOIN lits l ON l.chambre_id = c.id
		GROUP BY c.type
		ORDER BY c.type
	`,
}

// DashboardRepository lectures seules, aucune écriture
type DashboardRepository struct {
	db *postgres.Client
}

func NewDashboardRepository(db *postgres.Client) *DashboardRepository {
	return &DashboardRepository{db: db}
}

func (r *DashboardRepository) Statistiques(ctx context.Context, day, week dto.Window) (dto.Statistiques, error) {
	var s dto.Statistiques
	err := r.db.QueryRow(ctx, DashboardQueries.Statistiques, day.From, day.To, week.From, week.To).Scan(
		&s.TotalPatients, &s.TotalMedecins, &s.TotalChambres,
		&s.RendezvousAujourdhui, &s.RendezvousSemaine,
	)
	return s, err
}

func (r *DashboardRepository) LitsParStatut(ctx context.Context) (map[string]int64, error) {
	return r.countMap(ctx, DashboardQueries.LitsParStatut)
}

func (r *DashboardRepository) RendezvousDuJour(ctx context.Context, day dto.Window) ([]dto.RendezvousDuJour, error) {
	rows, err := r.db.Query(ctx, DashboardQueries.RendezvousDuJour, day.From, day.To)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []dto.RendezvousDuJour{}
	for rows.Next() {
		var item dto.RendezvousDuJour
		var at time.Time
		if err := rows.Scan(&item.ID, &at, &item.Patient, &item.Medecin, &item.Motif, &item.Statut); err != nil {
			return nil, err
		}
		item.Heure = at.In(time.Local).Format("15:04")
		items = append(items, item)
	}
	return items, rows.Err()
}

func (r *DashboardRepository) RendezvousParStatut(ctx context.Context) ([]dto.StatutCount, error) {
	rows, err := r.db.Query(ctx, DashboardQueries.RendezvousParStatut)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []dto.StatutCount{}
	for rows.Next() {
		var item dto.StatutCount
		if err := rows.Scan(&item.Statut, &item.Total); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func (r *DashboardRepository) ParService(ctx context.Context) ([]dto.ServiceCount, error) {
	rows, err := r.db.Query(ctx, DashboardQueries.ParService)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []dto.ServiceCount{}
	for rows.Next() {
		var item dto.ServiceCount
		if err := rows.Scan(&item.Service, &item.Medecins, &item.Chambres); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func (r *DashboardRepository) ActiviteRecente(ctx context.Context, limit int) ([]dto.Activite, error) {
	rows, err := r.db.Query(ctx, DashboardQueries.ActiviteRecente, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []dto.Activite{}
	for rows.Next() {
		var (
			item             dto.Activite
			patient, medecin string
			createdAt        time.Time
		)
		if err := rows.Scan(&item.ID, &patient, &medecin, &createdAt); err != nil {
			return nil, err
		}
		item.Type = "rendez-vous"
		item.Description = "RDV: " + patient + " avec Dr. " + medecin
		item.Date = createdAt.In(time.Local).Format("2006-01-02 15:04")
		items = append(items, item)
	}
	return items, rows.Err()
}

func (r *DashboardRepository) RendezvousParJour(ctx context.Context, window dto.Window) (map[string]int64, error) {
	return r.countMap(ctx, DashboardQueries.RendezvousParJour, window.From, window.To, utils.ZoneName())
}

func (r *DashboardRepository) PatientsParMois(ctx context.Context, from time.Time) (map[string]int64, error) {
	return r.countMap(ctx, DashboardQueries.PatientsParMois, from, utils.ZoneName())
}

func (r *DashboardRepository) OccupationParType(ctx context.Context) ([]dto.OccupationType, error) {
	rows, err := r.db.Query(ctx, DashboardQueries.OccupationParType)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []dto.OccupationType{}
	for rows.Next() {
		var item dto.OccupationType
		if err := rows.Scan(&item.Type, &item.Chambres, &item.LitsTotal, &item.LitsOccupes); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func (r *DashboardRepository) countMap(ctx context.Context, query string, args ...interface{}) (map[string]int64, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := map[string]int64{}
	for rows.Next() {
		var key string
		var total int64
		if err := rows.Scan(&key, &total); err != nil {
			return nil, err
		}
		counts[key] = total
	}
	return counts, rows.Err()
}
