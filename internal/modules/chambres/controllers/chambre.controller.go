package controllers

import (
	"net/http"
	"slices"
	"strings"

	"gestion-hospitaliere/internal/modules/chambres/dto"
	"gestion-hospitaliere/internal/modules/chambres/services"
	"gestion-hospitaliere/internal/shared/apperror"
	"gestion-hospitaliere/internal/shared/utils"

	"github.com/gin-gonic/gin"
)

const chambreNotFound = "Chambre non trouvée"

type ChambreController struct {
	chambreService *services.ChambreService
}

func NewChambreController(chambreService *services.ChambreService) *ChambreController {
	return &ChambreController{chambreService: chambreService}
}

// List - GET /api/v1/chambres?service_id=&type=&disponible=
func (ctrl *ChambreController) List(c *gin.Context) {
	filter, err := parseFilter(c)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	page := utils.ParsePagination(c)

	result, total, err := ctrl.chambreService.List(c.Request.Context(), filter, page)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondPaginated(c, result, page.Meta(total))
}

// Available - GET /api/v1/chambres/disponibles
func (ctrl *ChambreController) Available(c *gin.Context) {
	result, err := ctrl.chambreService.Available(c.Request.Context())
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondSuccess(c, http.StatusOK, result)
}

// Get - GET /api/v1/chambres/:id
func (ctrl *ChambreController) Get(c *gin.Context) {
	id, err := utils.ParamUUID(c, "id", chambreNotFound)
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	result, err := ctrl.chambreService.Get(c.Request.Context(), id)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondSuccess(c, http.StatusOK, result)
}

// Create - POST /api/v1/chambres
func (ctrl *ChambreController) Create(c *gin.Context) {
	var req dto.CreateChambreRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, utils.BindingError(err))
		return
	}

	result, err := ctrl.chambreService.Create(c.Request.Context(), req)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondMessage(c, http.StatusCreated, "Chambre créée avec succès", result)
}

// Update - PUT /api/v1/chambres/:id
func (ctrl *ChambreController) Update(c *gin.Context) {
	id, err := utils.ParamUUID(c, "id", chambreNotFound)
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	var req dto.UpdateChambreRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, utils.BindingError(err))
		return
	}

	result, err := ctrl.chambreService.Update(c.Request.Context(), id, req)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondMessage(c, http.StatusOK, "Chambre mise à jour avec succès", result)
}

// Delete - DELETE /api/v1/chambres/:id
func (ctrl *ChambreController) Delete(c *gin.Context) {
	id, err := utils.ParamUUID(c, "id", chambreNotFound)
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	if err := ctrl.chambreService.Delete(c.Request.Context(), id); err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondMessage(c, http.StatusOK, "Chambre supprimée avec succès", nil)
}

func parseFilter(c *gin.Context) (dto.ChambreFilter, error) {
	var filter dto.ChambreFilter

	serviceID, err := utils.QueryUUID(c, "service_id")
	if err != nil {
		return filter, err
	}
	disponible, err := utils.QueryBool(c, "disponible")
	if err != nil {
		return filter, err
	}

	filter.ServiceID = serviceID
	filter.Disponible = disponible
	filter.Type = strings.TrimSpace(c.Query("type"))
	if filter.Type != "" && !slices.Contains(utils.TypesChambre, filter.Type) {
		return filter, apperror.Field("type", "Le type de chambre est invalide")
	}
	return filter, nil
}
