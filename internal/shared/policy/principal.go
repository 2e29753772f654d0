package policy

import "github.com/google/uuid"

// Principal identité authentifiée d'une requête
type Principal struct {
	UserID    uuid.UUID  `json:"user_id"`
	Name      string     `json:"name"`
	Email     string     `json:"email"`
	Role      Role       `json:"role"`
	PatientID *uuid.UUID `json:"patient_id,omitempty"`
	MedecinID *uuid.UUID `json:"medecin_id,omitempty"`
}

func (p *Principal) Is(role Role) bool {
	return p != nil && p.Role == role
}

func (p *Principal) Can(capability Capability) bool {
	return p != nil && Allows(p.Role, capability)
}

// OwnsPatient vrai si le principal est le patient patientID
func (p *Principal) OwnsPatient(patientID uuid.UUID) bool {
	return p != nil && p.PatientID != nil && *p.PatientID == patientID
}

// OwnsMedecin vrai si le principal est le médecin medecinID
func (p *Principal) OwnsMedecin(medecinID uuid.UUID) bool {
	return p != nil && p.MedecinID != nil && *p.MedecinID == medecinID
}

// CanAccessPatient accès à la fiche d'un patient
func (p *Principal) CanAccessPatient(patientID uuid.UUID) bool {
	switch {
	case p == nil:
		return false
	case p.Role == RolePatient:
		return p.OwnsPatient(patientID)
	default:
		return p.Can(PatientsRead)
	}
}

// CanAccessRecord accès à un rendez-vous ou une prescription reliant
// patientID et medecinID
func (p *Principal) CanAccessRecord(patientID, medecinID uuid.UUID) bool {
	if p == nil {
		return false
	}
	switch p.Role {
	case RoleAdmin, RoleInfirmier:
		return true
	case RolePatient:
		return p.OwnsPatient(patientID)
	case RoleMedecin:
		return p.OwnsMedecin(medecinID)
	default:
		return false
	}
}
