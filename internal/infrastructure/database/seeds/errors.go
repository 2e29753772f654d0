package seeds

import "fmt"

// SeedingError représente une erreur de seeding
type SeedingError struct {
	Message string                 `json:"message"`
	Type    string                 `json:"type"`
	Details map[string]interface{} `json:"details,omitempty"`
}

func (e *SeedingError) Error() string {
	return e.Message
}

func NewSeedingError(message, errorType string, details map[string]interface{}) *SeedingError {
	return &SeedingError{
		Message: message,
		Type:    errorType,
		Details: details,
	}
}

// ErrInvalidSeedFile fichier de données embarqué illisible ou vide
func ErrInvalidSeedFile(name string, cause error) error {
	return NewSeedingError(
		fmt.Sprintf("fichier de seeding invalide %s: %v", name, cause),
		"invalid_seed_file",
		map[string]interface{}{"file": name},
	)
}
