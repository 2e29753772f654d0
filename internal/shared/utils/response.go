package utils

import (
	"encoding/json"
	"errors"
	"net/http"

	"gestion-hospitaliere/internal/shared/apperror"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

// RespondSuccess {"success": true, "data": data}
func RespondSuccess(c *gin.Context, status int, data interface{}) {
	c.JSON(status, gin.H{
		"success": true,
		"data":    data,
	})
}

// RespondMessage réponse de succès portant un message (suppression, action)
func RespondMessage(c *gin.Context, status int, message string, data interface{}) {
	body := gin.H{
		"success": true,
		"message": message,
	}
	if data != nil {
		body["data"] = data
	}
	c.JSON(status, body)
}

// RespondPaginated liste paginée avec son bloc meta
func RespondPaginated(c *gin.Context, data interface{}, meta PaginationMeta) {
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    data,
		"meta":    meta,
	})
}

// RespondError traduit err en réponse JSON. Les erreurs techniques sont
// attachées au contexte gin (journalisées par le middleware d'accès)
// et masquées au client.
func RespondError(c *gin.Context, err error) {
	appErr, ok := apperror.As(err)
	if !ok {
		appErr = apperror.Internal(err)
	}
	if appErr.Kind == apperror.KindInternal {
		_ = c.Error(err)
	}

	details := map[string]interface{}{
		"code": appErr.Code,
	}
	if len(appErr.Fields) > 0 {
		details["fields"] = appErr.Fields
	}

	c.AbortWithStatusJSON(appErr.Status(), gin.H{
		"error":   appErr.Message,
		"details": details,
	})
}

// BindingError convertit une erreur de binding gin en erreur de validation
func BindingError(err error) *apperror.AppError {
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		fields := make(map[string]string, len(validationErrors))
		for _, fe := range validationErrors {
			fields[fe.Field()] = fieldMessage(fe)
		}
		return apperror.Validation("Les données fournies sont invalides.", fields)
	}

	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	switch {
	case errors.As(err, &typeErr):
		return apperror.Field(typeErr.Field, "Le champ "+typeErr.Field+" a un type invalide")
	case errors.As(err, &syntaxErr):
		return apperror.Validation("Corps de requête JSON invalide.", nil)
	}
	return apperror.Validation("Les données fournies sont invalides.", nil)
}
