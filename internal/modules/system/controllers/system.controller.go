package controllers

import (
	"net/http"

	"gestion-hospitaliere/internal/modules/system/services"

	"github.com/gin-gonic/gin"
)

type SystemController struct {
	service *services.SystemService
}

func NewSystemController(service *services.SystemService) *SystemController {
	return &SystemController{service: service}
}

// Health - GET /health
func (ctrl *SystemController) Health(c *gin.Context) {
	c.JSON(http.StatusOK, ctrl.service.Health())
}

// Ready - GET /ready (503 si une dépendance est indisponible)
func (ctrl *SystemController) Ready(c *gin.Context) {
	resp, ready := ctrl.service.Ready(c.Request.Context())
	status := http.StatusOK
	if !ready {
		status = http.StatusServiceUnavailable
	}
	c.JSON(status, resp)
}
