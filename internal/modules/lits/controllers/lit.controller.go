package controllers

import (
	"net/http"
	"slices"
	"strings"
	"time"

	bedDTO "gestion-hospitaliere/internal/modules/core-services/bedlifecycle/dto"
	bedlifecycle "gestion-hospitaliere/internal/modules/core-services/bedlifecycle/services"
	"gestion-hospitaliere/internal/modules/lits/dto"
	"gestion-hospitaliere/internal/modules/lits/services"
	"gestion-hospitaliere/internal/shared/apperror"
	"gestion-hospitaliere/internal/shared/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const litNotFound = "Lit non trouvé"

type LitController struct {
	litService *services.LitService
	beds       *bedlifecycle.BedLifecycleService
}

func NewLitController(litService *services.LitService, beds *bedlifecycle.BedLifecycleService) *LitController {
	return &LitController{litService: litService, beds: beds}
}

// List - GET /api/v1/lits?chambre_id=&statut=
func (ctrl *LitController) List(c *gin.Context) {
	chambreID, err := utils.QueryUUID(c, "chambre_id")
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	filter := dto.LitFilter{ChambreID: chambreID, Statut: strings.TrimSpace(c.Query("statut"))}
	if filter.Statut != "" && !slices.Contains(utils.StatutsLit, filter.Statut) {
		utils.RespondError(c, apperror.Field("statut", "Le statut de lit est invalide"))
		return
	}
	page := utils.ParsePagination(c)

	result, total, err := ctrl.litService.List(c.Request.Context(), filter, page)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondPaginated(c, result, page.Meta(total))
}

// Available - GET /api/v1/lits/disponibles
func (ctrl *LitController) Available(c *gin.Context) {
	result, err := ctrl.litService.Available(c.Request.Context())
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondSuccess(c, http.StatusOK, result)
}

// Get - GET /api/v1/lits/:id
func (ctrl *LitController) Get(c *gin.Context) {
	id, err := utils.ParamUUID(c, "id", litNotFound)
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	result, err := ctrl.litService.Get(c.Request.Context(), id)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondSuccess(c, http.StatusOK, result)
}

// Create - POST /api/v1/lits
func (ctrl *LitController) Create(c *gin.Context) {
	var req dto.CreateLitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, utils.BindingError(err))
		return
	}

	result, err := ctrl.litService.Create(c.Request.Context(), req)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondMessage(c, http.StatusCreated, "Lit créé avec succès", result)
}

// Update - PUT /api/v1/lits/:id
func (ctrl *LitController) Update(c *gin.Context) {
	id, err := utils.ParamUUID(c, "id", litNotFound)
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	var req dto.UpdateLitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, utils.BindingError(err))
		return
	}

	result, err := ctrl.litService.Update(c.Request.Context(), id, req)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondMessage(c, http.StatusOK, "Lit mis à jour avec succès", result)
}

// Delete - DELETE /api/v1/lits/:id
func (ctrl *LitController) Delete(c *gin.Context) {
	id, err := utils.ParamUUID(c, "id", litNotFound)
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	if err := ctrl.litService.Delete(c.Request.Context(), id); err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondMessage(c, http.StatusOK, "Lit supprimé avec succès", nil)
}

// Assign - POST /api/v1/lits/:id/assigner
func (ctrl *LitController) Assign(c *gin.Context) {
	id, err := utils.ParamUUID(c, "id", litNotFound)
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	var req bedDTO.AssignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, utils.BindingError(err))
		return
	}

	var release *time.Time
	if req.DateLiberationPrevue != "" {
		d, err := utils.ParseDate(req.DateLiberationPrevue)
		if err != nil {
			utils.RespondError(c, apperror.Field("date_liberation_prevue", "La date de libération prévue est invalide"))
			return
		}
		release = &d
	}

	result, err := ctrl.beds.Assign(c.Request.Context(), id, uuid.MustParse(req.PatientID), release)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondMessage(c, http.StatusOK, "Patient assigné au lit avec succès", result)
}

// Release - POST /api/v1/lits/:id/liberer
func (ctrl *LitController) Release(c *gin.Context) {
	id, err := utils.ParamUUID(c, "id", litNotFound)
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	result, err := ctrl.beds.Release(c.Request.Context(), id)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondMessage(c, http.StatusOK, "Lit libéré avec succès", result)
}
