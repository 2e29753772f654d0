package controllers

import (
	"net/http"
	"strings"

	availabilityDTO "gestion-hospitaliere/internal/modules/core-services/availability/dto"
	availability "gestion-hospitaliere/internal/modules/core-services/availability/services"
	"gestion-hospitaliere/internal/modules/medecins/dto"
	"gestion-hospitaliere/internal/modules/medecins/services"
	"gestion-hospitaliere/internal/shared/apperror"
	"gestion-hospitaliere/internal/shared/utils"

	"github.com/gin-gonic/gin"
)

const medecinNotFound = "Médecin non trouvé"

type MedecinController struct {
	medecinService      *services.MedecinService
	availabilityService *availability.AvailabilityService
}

func NewMedecinController(medecinService *services.MedecinService, availabilityService *availability.AvailabilityService) *MedecinController {
	return &MedecinController{medecinService: medecinService, availabilityService: availabilityService}
}

// List - GET /api/v1/medecins?service_id=&specialite=&search=
func (ctrl *MedecinController) List(c *gin.Context) {
	serviceID, err := utils.QueryUUID(c, "service_id")
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	filter := dto.MedecinFilter{
		ServiceID:  serviceID,
		Specialite: strings.TrimSpace(c.Query("specialite")),
		Search:     strings.TrimSpace(c.Query("search")),
	}
	page := utils.ParsePagination(c)

	result, total, err := ctrl.medecinService.List(c.Request.Context(), filter, page)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondPaginated(c, result, page.Meta(total))
}

// Get - GET /api/v1/medecins/:id
func (ctrl *MedecinController) Get(c *gin.Context) {
	id, err := utils.ParamUUID(c, "id", medecinNotFound)
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	result, err := ctrl.medecinService.Get(c.Request.Context(), id)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondSuccess(c, http.StatusOK, result)
}

// Creneaux - GET /api/v1/medecins/:id/creneaux?date=AAAA-MM-JJ
func (ctrl *MedecinController) Creneaux(c *gin.Context) {
	id, err := utils.ParamUUID(c, "id", medecinNotFound)
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	raw := c.Query("date")
	date, err := utils.ParseDate(raw)
	if err != nil {
		utils.RespondError(c, apperror.Field("date", "Le champ date doit être une date au format AAAA-MM-JJ"))
		return
	}

	slots, err := ctrl.availabilityService.FreeSlots(c.Request.Context(), id, date)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondSuccess(c, http.StatusOK, availabilityDTO.CreneauxResponse{
		MedecinID: id.String(),
		Date:      raw,
		Creneaux:  slots,
	})
}

// Create - POST /api/v1/medecins
func (ctrl *MedecinController) Create(c *gin.Context) {
	var req dto.CreateMedecinRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, utils.BindingError(err))
		return
	}

	result, err := ctrl.medecinService.Create(c.Request.Context(), req)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondMessage(c, http.StatusCreated, "Médecin créé avec succès", result)
}

// Update - PUT /api/v1/medecins/:id
func (ctrl *MedecinController) Update(c *gin.Context) {
	id, err := utils.ParamUUID(c, "id", medecinNotFound)
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	var req dto.UpdateMedecinRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, utils.BindingError(err))
		return
	}

	result, err := ctrl.medecinService.Update(c.Request.Context(), id, req)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondMessage(c, http.StatusOK, "Médecin mis à jour avec succès", result)
}

// Delete - DELETE /api/v1/medecins/:id
func (ctrl *MedecinController) Delete(c *gin.Context) {
	id, err := utils.ParamUUID(c, "id", medecinNotFound)
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	if err := ctrl.medecinService.Delete(c.Request.Context(), id); err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondMessage(c, http.StatusOK, "Médecin supprimé avec succès", nil)
}
