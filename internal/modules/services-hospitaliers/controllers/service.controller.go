package controllers

import (
	"net/http"

	"gestion-hospitaliere/internal/modules/services-hospitaliers/dto"
	"gestion-hospitaliere/internal/modules/services-hospitaliers/services"
	"gestion-hospitaliere/internal/shared/utils"

	"github.com/gin-gonic/gin"
)

type ServiceController struct {
	serviceService *services.ServiceService
}

func NewServiceController(serviceService *services.ServiceService) *ServiceController {
	return &ServiceController{serviceService: serviceService}
}

// List - GET /api/v1/services (public, utilisé à l'inscription)
func (ctrl *ServiceController) List(c *gin.Context) {
	result, err := ctrl.serviceService.List(c.Request.Context())
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondSuccess(c, http.StatusOK, result)
}

// Get - GET /api/v1/services/:id
func (ctrl *ServiceController) Get(c *gin.Context) {
	id, err := utils.ParamUUID(c, "id", "Service non trouvé")
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	result, err := ctrl.serviceService.Get(c.Request.Context(), id)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondSuccess(c, http.StatusOK, result)
}

// Create - POST /api/v1/services
func (ctrl *ServiceController) Create(c *gin.Context) {
	var req dto.ServiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, utils.BindingError(err))
		return
	}

	result, err := ctrl.serviceService.Create(c.Request.Context(), req)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondMessage(c, http.StatusCreated, "Service créé avec succès", result)
}

// Update - PUT /api/v1/services/:id
func (ctrl *ServiceController) Update(c *gin.Context) {
	id, err := utils.ParamUUID(c, "id", "Service non trouvé")
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	var req dto.ServiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, utils.BindingError(err))
		return
	}

	result, err := ctrl.serviceService.Update(c.Request.Context(), id, req)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondMessage(c, http.StatusOK, "Service mis à jour avec succès", result)
}

// Delete - DELETE /api/v1/services/:id
func (ctrl *ServiceController) Delete(c *gin.Context) {
	id, err := utils.ParamUUID(c, "id", "Service non trouvé")
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	if err := ctrl.serviceService.Delete(c.Request.Context(), id); err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondMessage(c, http.StatusOK, "Service supprimé avec succès", nil)
}
