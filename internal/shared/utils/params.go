package utils

import (
	"strconv"
	"strings"

	"gestion-hospitaliere/internal/shared/apperror"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ParamUUID identifiant de chemin. Un identifiant mal formé ne peut désigner
// aucune ressource : 404.
func ParamUUID(c *gin.Context, name, notFound string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		return uuid.Nil, apperror.NotFound(notFound)
	}
	return id, nil
}

// QueryUUID filtre optionnel ; absent = nil
func QueryUUID(c *gin.Context, name string) (*uuid.UUID, error) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return nil, nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil, apperror.Field(name, "Le champ "+name+" doit être un identifiant valide")
	}
	return &id, nil
}

// QueryBool filtre booléen optionnel ("1", "true", "0", "false")
func QueryBool(c *gin.Context, name string) (*bool, error) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return nil, apperror.Field(name, "Le champ "+name+" doit être un booléen")
	}
	return &v, nil
}
