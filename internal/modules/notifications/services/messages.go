package services

import (
	"fmt"
	"strings"
	"time"

	"gestion-hospitaliere/internal/modules/notifications/dto"
)

const (
	dateFormat     = "02/01/2006"
	dateTimeFormat = "02/01/2006 à 15:04"
)

func eventData(ev dto.AppointmentEvent) map[string]interface{} {
	data := map[string]interface{}{
		"rendezvous_id": ev.RendezvousID.String(),
		"date_heure":    ev.DateHeure.Format(time.RFC3339),
		"statut":        ev.Statut,
		"patient":       ev.Patient.Name,
		"medecin":       ev.Medecin.Name,
	}
	if ev.Motif != nil {
		data["motif"] = *ev.Motif
	}
	return data
}

func motif(ev dto.AppointmentEvent) string {
	if ev.Motif == nil || *ev.Motif == "" {
		return "Non précisé"
	}
	return *ev.Motif
}

func local(t time.Time) time.Time {
	return t.In(time.Local)
}

// createdJob confirmation envoyée au patient
func createdJob(ev dto.AppointmentEvent) dto.Job {
	at := local(ev.DateHeure)
	body := strings.Join([]string{
		fmt.Sprintf("Bonjour %s,", ev.Patient.Name),
		"",
		"Votre rendez-vous a été enregistré avec les détails suivants :",
		fmt.Sprintf("Médecin : Dr. %s", ev.Medecin.Name),
		fmt.Sprintf("Date et heure : %s", at.Format(dateTimeFormat)),
		fmt.Sprintf("Motif : %s", motif(ev)),
		"",
		"Merci de votre confiance !",
	}, "\n")

	return dto.Job{
		UserID:  ev.Patient.UserID.String(),
		Email:   ev.Patient.Email,
		Name:    ev.Patient.Name,
		Type:    dto.TypeRendezvousCree,
		Subject: "Confirmation de rendez-vous - Hôpital",
		Message: fmt.Sprintf("Rendez-vous avec Dr. %s le %s", ev.Medecin.Name, at.Format(dateTimeFormat)),
		Body:    body,
		Data:    eventData(ev),
		Mail:    true,
		InApp:   true,
	}
}

// assignedJob information du médecin quand l'administration planifie pour lui
func assignedJob(ev dto.AppointmentEvent) dto.Job {
	at := local(ev.DateHeure)
	body := strings.Join([]string{
		fmt.Sprintf("Bonjour Dr. %s,", ev.Medecin.Name),
		"",
		"Un nouveau rendez-vous vous a été assigné par l'administration.",
		fmt.Sprintf("Patient : %s", ev.Patient.Name),
		fmt.Sprintf("Date : %s", at.Format(dateFormat)),
		fmt.Sprintf("Heure : %s", at.Format("15:04")),
		fmt.Sprintf("Motif : %s", motif(ev)),
		fmt.Sprintf("Statut : %s", ev.Statut),
		"",
		"Merci de confirmer votre disponibilité.",
	}, "\n")

	return dto.Job{
		UserID:  ev.Medecin.UserID.String(),
		Email:   ev.Medecin.Email,
		Name:    ev.Medecin.Name,
		Type:    dto.TypeRendezvousAssigne,
		Subject: "Nouveau Rendez-vous Assigné",
		Message: fmt.Sprintf("Nouveau rendez-vous avec %s le %s", ev.Patient.Name, at.Format(dateTimeFormat)),
		Body:    body,
		Data:    eventData(ev),
		Mail:    true,
		InApp:   true,
	}
}

func statusJob(ev dto.AppointmentEvent) dto.Job {
	at := local(ev.DateHeure)
	message := fmt.Sprintf("Votre rendez-vous du %s avec Dr. %s est maintenant : %s",
		at.Format(dateTimeFormat), ev.Medecin.Name, ev.Statut)

	return dto.Job{
		UserID:  ev.Patient.UserID.String(),
		Email:   ev.Patient.Email,
		Name:    ev.Patient.Name,
		Type:    dto.TypeRendezvousStatutModifie,
		Subject: "Mise à jour de votre rendez-vous - Hôpital",
		Message: message,
		Body:    fmt.Sprintf("Bonjour %s,\n\n%s", ev.Patient.Name, message),
		Data:    eventData(ev),
		Mail:    true,
		InApp:   true,
	}
}

// reminderJob mail seul, la veille du rendez-vous
func reminderJob(ev dto.AppointmentEvent) dto.Job {
	at := local(ev.DateHeure)
	body := strings.Join([]string{
		fmt.Sprintf("Bonjour %s,", ev.Patient.Name),
		"",
		"Nous vous rappelons votre rendez-vous prévu prochainement :",
		fmt.Sprintf("Médecin : Dr. %s", ev.Medecin.Name),
		fmt.Sprintf("Date et heure : %s", at.Format(dateTimeFormat)),
		fmt.Sprintf("Motif : %s", motif(ev)),
		"",
		"Merci de vous présenter 10 minutes avant l'heure prévue.",
		"En cas d'empêchement, merci de nous contacter au plus vite.",
	}, "\n")

	return dto.Job{
		UserID:  ev.Patient.UserID.String(),
		Email:   ev.Patient.Email,
		Name:    ev.Patient.Name,
		Type:    dto.TypeRendezvousRappel,
		Subject: "Rappel de rendez-vous - Hôpital",
		Message: fmt.Sprintf("Rappel : rendez-vous avec Dr. %s le %s", ev.Medecin.Name, at.Format(dateTimeFormat)),
		Body:    body,
		Data:    eventData(ev),
		Mail:    true,
	}
}
