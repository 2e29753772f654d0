package observability

import (
	"time"

	"gestion-hospitaliere/internal/infrastructure/metrics"

	"github.com/gin-gonic/gin"
)

// MetricsHandler type spécifique pour Fx
type MetricsHandler gin.HandlerFunc

// MetricsMiddleware compte et chronomètre chaque requête par route (gabarit
// gin, pas le chemin brut, pour borner la cardinalité)
func MetricsMiddleware(recorder metrics.Recorder) MetricsHandler {
	return func(c *gin.Context) {
		if c.Request.URL.Path == "/metrics" {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		recorder.RequestObserved(c.Request.Context(), c.Request.Method, route, c.Writer.Status(), time.Since(start))
	}
}
