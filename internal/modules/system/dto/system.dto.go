package dto

import "time"

const (
	StatusOK   = "ok"
	StatusDown = "down"
)

// HealthResponse réponse de GET /health (processus vivant)
type HealthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Uptime    string    `json:"uptime"`
}

// CheckResult état d'une dépendance
type CheckResult struct {
	Status    string `json:"status"`
	LatencyMs int64  `json:"latency_ms"`
	Error     string `json:"error,omitempty"`
}

// ReadinessResponse réponse de GET /ready
type ReadinessResponse struct {
	Status string                 `json:"status"`
	Checks map[string]CheckResult `json:"checks"`
}
