package utils

import (
	"crypto/rand"
	"fmt"
	"math/big"

	"golang.org/x/crypto/bcrypt"
)

const temporaryPasswordAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZabcdefghijkmnpqrstuvwxyz23456789!@#$%"

// HashPassword hash un mot de passe avec bcrypt (coût par défaut)
func HashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("impossible de hasher le mot de passe: %w", err)
	}
	return string(hashed), nil
}

// VerifyPassword compare un mot de passe à son hash bcrypt
func VerifyPassword(password, hashedPassword string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password)) == nil
}

// GenerateTemporaryPassword génère un mot de passe aléatoire affiché une seule fois
func GenerateTemporaryPassword(length int) (string, error) {
	if length < 8 {
		length = 8
	}

	max := big.NewInt(int64(len(temporaryPasswordAlphabet)))
	out := make([]byte, length)
	for i := range out {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("impossible de générer le mot de passe: %w", err)
		}
		out[i] = temporaryPasswordAlphabet[n.Int64()]
	}
	return string(out), nil
}
