package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppError_Status(t *testing.T) {
	cases := []struct {
		err  *AppError
		want int
	}{
		{Validation("invalide", nil), http.StatusUnprocessableEntity},
		{Conflict("Ce créneau n'est pas disponible"), http.StatusUnprocessableEntity},
		{InvalidState("Ce lit n'est pas disponible"), http.StatusUnprocessableEntity},
		{Unauthenticated("non authentifié"), http.StatusUnauthorized},
		{Forbidden(""), http.StatusForbidden},
		{NotFound("introuvable"), http.StatusNotFound},
		{TooManyRequests("trop"), http.StatusTooManyRequests},
		{Internal(errors.New("boom")), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, tc.err.Status(), tc.err.Code)
	}
}

func TestAs_ThroughWrapping(t *testing.T) {
	wrapped := fmt.Errorf("attribution lit: %w", InvalidState("Ce lit n'est pas disponible"))

	appErr, ok := As(wrapped)
	assert.True(t, ok)
	assert.Equal(t, "Ce lit n'est pas disponible", appErr.Message)
	assert.True(t, IsKind(wrapped, KindInvalidState))
	assert.False(t, IsKind(errors.New("autre"), KindInvalidState))
}

func TestForbidden_DefaultMessage(t *testing.T) {
	assert.Equal(t, "Accès non autorisé", Forbidden("").Message)
}

func TestInternal_KeepsCauseButHidesMessage(t *testing.T) {
	cause := errors.New("pq: connexion perdue")
	err := Internal(cause)
	assert.Equal(t, "Une erreur interne est survenue.", err.Message)
	assert.ErrorIs(t, err, cause)
}
