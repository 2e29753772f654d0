package redis

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// KeyPrefix préfixe commun de toutes les clés de l'application
const KeyPrefix = "hopital"

// RedisKeyGenerator génère et valide les clés Redis selon la convention
// hopital_{domain}_{context}:{identifier}
type RedisKeyGenerator struct{}

func NewRedisKeyGenerator() *RedisKeyGenerator {
	return &RedisKeyGenerator{}
}

// RedisKeyPattern définit un pattern standard de clé
type RedisKeyPattern struct {
	Domain  string
	Context string
	TTL     time.Duration // 0 = pas d'expiration
}

// Patterns utilisés par l'application
var RedisKeyPatterns = map[string]RedisKeyPattern{
	"auth_revoked":        {Domain: "auth", Context: "revoked", TTL: 0}, // TTL = durée restante du jeton
	"auth_login_attempts": {Domain: "auth", Context: "login_attempts", TTL: 15 * time.Minute},
	"auth_principal":      {Domain: "auth", Context: "principal", TTL: 5 * time.Minute},
	"ratelimit_api":       {Domain: "ratelimit", Context: "api", TTL: time.Minute},
	"cache_dashboard":     {Domain: "cache", Context: "dashboard", TTL: 30 * time.Second},
	"cache_patient":       {Domain: "cache", Context: "patient", TTL: 10 * time.Minute},
}

var validKeyRegex = regexp.MustCompile(`^[a-zA-Z0-9_:\-\.@]+$`)

// GenerateKey génère une clé Redis : hopital_{domain}_{context}:{identifier}
func (rkg *RedisKeyGenerator) GenerateKey(patternName string, identifier ...string) (string, error) {
	pattern, exists := RedisKeyPatterns[patternName]
	if !exists {
		return "", fmt.Errorf("pattern Redis non trouvé: %s", patternName)
	}

	prefix := fmt.Sprintf("%s_%s_%s", KeyPrefix, pattern.Domain, pattern.Context)
	if len(identifier) == 0 {
		return prefix, nil
	}
	return fmt.Sprintf("%s:%s", prefix, strings.Join(identifier, "_")), nil
}

// MustKey variante de GenerateKey pour les patterns déclarés dans ce fichier
func (rkg *RedisKeyGenerator) MustKey(patternName string, identifier ...string) string {
	key, err := rkg.GenerateKey(patternName, identifier...)
	if err != nil {
		panic(err)
	}
	return key
}

// GetTTL récupère le TTL d'un pattern
func (rkg *RedisKeyGenerator) GetTTL(patternName string) (time.Duration, error) {
	pattern, exists := RedisKeyPatterns[patternName]
	if !exists {
		return 0, fmt.Errorf("pattern Redis non trouvé: %s", patternName)
	}
	return pattern.TTL, nil
}

// ValidateKey valide qu'une clé respecte la convention
func (rkg *RedisKeyGenerator) ValidateKey(key string) error {
	if len(key) == 0 {
		return fmt.Errorf("clé vide")
	}
	if len(key) > 250 {
		return fmt.Errorf("clé trop longue (max 250 caractères): %d", len(key))
	}
	if !validKeyRegex.MatchString(key) {
		return fmt.Errorf("clé contient des caractères invalides: %s", key)
	}
	if !strings.HasPrefix(key, KeyPrefix+"_") {
		return fmt.Errorf("clé doit commencer par '%s_': %s", KeyPrefix, key)
	}

	prefix := strings.SplitN(key, ":", 2)[0]
	if len(strings.Split(prefix, "_")) < 3 {
		return fmt.Errorf("structure préfixe invalide (format: %s_domain_context): %s", KeyPrefix, prefix)
	}
	return nil
}
