package postgres

import (
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Codes SQLSTATE utilisés par les services métier
const (
	codeUniqueViolation      = "23505"
	codeForeignKeyViolation  = "23503"
	codeCheckViolation       = "23514"
	codeSerializationFailure = "40001"
)

// IsNoRows indique qu'une requête QueryRow n'a retourné aucune ligne
func IsNoRows(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}

// IsUniqueViolation détecte une violation de contrainte d'unicité.
// constraint vide = n'importe quelle contrainte
func IsUniqueViolation(err error, constraint string) bool {
	return hasCode(err, codeUniqueViolation, constraint)
}

// IsForeignKeyViolation détecte une référence vers une ligne inexistante
func IsForeignKeyViolation(err error) bool {
	return hasCode(err, codeForeignKeyViolation, "")
}

// IsCheckViolation détecte une violation de contrainte CHECK
func IsCheckViolation(err error) bool {
	return hasCode(err, codeCheckViolation, "")
}

// IsSerializationFailure détecte un conflit entre transactions SERIALIZABLE
func IsSerializationFailure(err error) bool {
	return hasCode(err, codeSerializationFailure, "")
}

func hasCode(err error, code, constraint string) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	if pgErr.Code != code {
		return false
	}
	return constraint == "" || pgErr.ConstraintName == constraint
}
