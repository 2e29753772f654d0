package policy

import "fmt"

// Role ensemble fermé des rôles applicatifs
type Role string

const (
	RoleAdmin     Role = "Admin"
	RoleMedecin   Role = "Médecin"
	RolePatient   Role = "Patient"
	RoleInfirmier Role = "Infirmier"
)

// Roles liste ordonnée de tous les rôles
var Roles = []Role{RoleAdmin, RoleMedecin, RolePatient, RoleInfirmier}

// ParseRole refuse toute valeur hors de l'ensemble des rôles
func ParseRole(value string) (Role, error) {
	for _, role := range Roles {
		if string(role) == value {
			return role, nil
		}
	}
	return "", fmt.Errorf("rôle inconnu: %q", value)
}

func (r Role) String() string {
	return string(r)
}

func (r Role) Valid() bool {
	_, err := ParseRole(string(r))
	return err == nil
}
