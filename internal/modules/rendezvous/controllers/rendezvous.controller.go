package controllers

import (
	"net/http"
	"slices"
	"strings"

	"gestion-hospitaliere/internal/modules/rendezvous/dto"
	"gestion-hospitaliere/internal/modules/rendezvous/services"
	"gestion-hospitaliere/internal/shared/apperror"
	authMiddleware "gestion-hospitaliere/internal/shared/middleware/auth"
	"gestion-hospitaliere/internal/shared/utils"

	"github.com/gin-gonic/gin"
)

const rendezvousNotFound = "Rendez-vous non trouvé"

type RendezvousController struct {
	rendezvousService *services.RendezvousService
}

func NewRendezvousController(rendezvousService *services.RendezvousService) *RendezvousController {
	return &RendezvousController{rendezvousService: rendezvousService}
}

// List - GET /api/v1/rendezvous?statut=&date=&medecin_id=&patient_id=
func (ctrl *RendezvousController) List(c *gin.Context) {
	filter, err := parseFilter(c)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	page := utils.ParsePagination(c)

	result, total, err := ctrl.rendezvousService.List(c.Request.Context(), authMiddleware.CurrentPrincipal(c), filter, page)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondPaginated(c, result, page.Meta(total))
}

// Get - GET /api/v1/rendezvous/:id
func (ctrl *RendezvousController) Get(c *gin.Context) {
	id, err := utils.ParamUUID(c, "id", rendezvousNotFound)
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	result, err := ctrl.rendezvousService.Get(c.Request.Context(), authMiddleware.CurrentPrincipal(c), id)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondSuccess(c, http.StatusOK, result)
}

// Create - POST /api/v1/rendezvous
func (ctrl *RendezvousController) Create(c *gin.Context) {
	var req dto.CreateRendezvousRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, utils.BindingError(err))
		return
	}

	result, err := ctrl.rendezvousService.Create(c.Request.Context(), authMiddleware.CurrentPrincipal(c), req)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondMessage(c, http.StatusCreated, "Rendez-vous créé avec succès", result)
}

// Update - PUT /api/v1/rendezvous/:id
func (ctrl *RendezvousController) Update(c *gin.Context) {
	id, err := utils.ParamUUID(c, "id", rendezvousNotFound)
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	var req dto.UpdateRendezvousRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, utils.BindingError(err))
		return
	}

	result, err := ctrl.rendezvousService.Update(c.Request.Context(), authMiddleware.CurrentPrincipal(c), id, req)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondMessage(c, http.StatusOK, "Rendez-vous mis à jour avec succès", result)
}

// UpdateStatus - PUT /api/v1/rendezvous/:id/status
func (ctrl *RendezvousController) UpdateStatus(c *gin.Context) {
	id, err := utils.ParamUUID(c, "id", rendezvousNotFound)
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	var req dto.UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, utils.BindingError(err))
		return
	}

	result, err := ctrl.rendezvousService.UpdateStatus(c.Request.Context(), authMiddleware.CurrentPrincipal(c), id, req)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondMessage(c, http.StatusOK, "Statut du rendez-vous mis à jour avec succès", result)
}

// Delete - DELETE /api/v1/rendezvous/:id
func (ctrl *RendezvousController) Delete(c *gin.Context) {
	id, err := utils.ParamUUID(c, "id", rendezvousNotFound)
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	if err := ctrl.rendezvousService.Delete(c.Request.Context(), authMiddleware.CurrentPrincipal(c), id); err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondMessage(c, http.StatusOK, "Rendez-vous supprimé avec succès", nil)
}

func parseFilter(c *gin.Context) (dto.RendezvousFilter, error) {
	var filter dto.RendezvousFilter

	medecinID, err := utils.QueryUUID(c, "medecin_id")
	if err != nil {
		return filter, err
	}
	patientID, err := utils.QueryUUID(c, "patient_id")
	if err != nil {
		return filter, err
	}
	filter.MedecinID = medecinID
	filter.PatientID = patientID

	filter.Statut = strings.TrimSpace(c.Query("statut"))
	if filter.Statut != "" && !slices.Contains(utils.StatutsRDV, filter.Statut) {
		return filter, apperror.Field("statut", "Le statut de rendez-vous est invalide")
	}

	if raw := strings.TrimSpace(c.Query("date")); raw != "" {
		day, err := utils.ParseDate(raw)
		if err != nil {
			return filter, apperror.Field("date", "La date doit être au format AAAA-MM-JJ")
		}
		filter.Date = &day
	}
	return filter, nil
}
