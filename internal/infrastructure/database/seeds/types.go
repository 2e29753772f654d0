package seeds

import (
	"context"
)

// SeedDataStatus représente l'état des données de référence
type SeedDataStatus struct {
	ServicesExist bool `json:"services_exist"`
	AllDataExists bool `json:"all_data_exists"`
}

// ServiceJSONData représente un service hospitalier dans le fichier JSON
type ServiceJSONData struct {
	Nom         string `json:"nom"`
	Description string `json:"description"`
}

// ServicesJSONStructure structure complète du fichier services.json
type ServicesJSONStructure struct {
	Services []ServiceJSONData `json:"services"`
}

// SeedingService gère l'insertion des données de référence
type SeedingService interface {
	CheckSeedDataExists(ctx context.Context) (*SeedDataStatus, error)
	SeedServices(ctx context.Context) (int, error)
}

// GetMissingSeeds retourne la liste des seeds manquants
func (s *SeedDataStatus) GetMissingSeeds() []string {
	var missing []string
	if !s.ServicesExist {
		missing = append(missing, "services")
	}
	return missing
}
