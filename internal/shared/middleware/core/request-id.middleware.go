package core

import (
	"regexp"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// RequestIDHandler type spécifique pour Fx
type RequestIDHandler gin.HandlerFunc

const RequestIDHeader = "X-Request-Id"

var validRequestID = regexp.MustCompile(`^[a-zA-Z0-9\-_]{8,64}$`)

// RequestIDMiddleware reprend l'identifiant fourni par le client s'il est
// bien formé, sinon en génère un. Disponible via c.GetString("request_id").
func RequestIDMiddleware() RequestIDHandler {
	return func(c *gin.Context) {
		requestID := c.GetHeader(RequestIDHeader)
		if !validRequestID.MatchString(requestID) {
			requestID = uuid.NewString()
		}

		c.Set("request_id", requestID)
		c.Header(RequestIDHeader, requestID)
		c.Next()
	}
}
