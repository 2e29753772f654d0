package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind catégorie d'erreur, détermine le statut HTTP
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindUnauthenticated
	KindForbidden
	KindNotFound
	KindConflict
	KindInvalidState
	KindTooManyRequests
)

// AppError erreur métier remontée jusqu'au contrôleur
type AppError struct {
	Kind    Kind
	Code    string
	Message string
	Fields  map[string]string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Status code HTTP associé à la catégorie
func (e *AppError) Status() int {
	switch e.Kind {
	case KindValidation, KindConflict, KindInvalidState:
		return http.StatusUnprocessableEntity
	case KindUnauthenticated:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindTooManyRequests:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// WithCode remplace le code par défaut
func (e *AppError) WithCode(code string) *AppError {
	e.Code = code
	return e
}

func Validation(message string, fields map[string]string) *AppError {
	return &AppError{Kind: KindValidation, Code: "VALIDATION_ERROR", Message: message, Fields: fields}
}

// Field erreur de validation portant sur un seul champ
func Field(field, message string) *AppError {
	return Validation(message, map[string]string{field: message})
}

func Unauthenticated(message string) *AppError {
	return &AppError{Kind: KindUnauthenticated, Code: "UNAUTHENTICATED", Message: message}
}

func Forbidden(message string) *AppError {
	if message == "" {
		message = "Accès non autorisé"
	}
	return &AppError{Kind: KindForbidden, Code: "FORBIDDEN", Message: message}
}

func NotFound(message string) *AppError {
	return &AppError{Kind: KindNotFound, Code: "NOT_FOUND", Message: message}
}

func Conflict(message string) *AppError {
	return &AppError{Kind: KindConflict, Code: "CONFLICT", Message: message}
}

func InvalidState(message string) *AppError {
	return &AppError{Kind: KindInvalidState, Code: "INVALID_STATE", Message: message}
}

func TooManyRequests(message string) *AppError {
	return &AppError{Kind: KindTooManyRequests, Code: "TOO_MANY_REQUESTS", Message: message}
}

// Internal enveloppe une erreur technique, le message client reste opaque
func Internal(err error) *AppError {
	return &AppError{Kind: KindInternal, Code: "INTERNAL_ERROR", Message: "Une erreur interne est survenue.", Err: err}
}

// As extrait l'AppError de la chaîne d'erreurs
func As(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// IsKind indique si err est une AppError de la catégorie donnée
func IsKind(err error, kind Kind) bool {
	appErr, ok := As(err)
	return ok && appErr.Kind == kind
}
