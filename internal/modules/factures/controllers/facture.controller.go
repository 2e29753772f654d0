package controllers

import (
	"io"
	"net/http"
	"slices"

	"gestion-hospitaliere/internal/modules/factures/dto"
	"gestion-hospitaliere/internal/modules/factures/services"
	"gestion-hospitaliere/internal/shared/apperror"
	"gestion-hospitaliere/internal/shared/utils"

	"github.com/gin-gonic/gin"
)

const factureNotFound = "Facture non trouvée"

type FactureController struct {
	factureService *services.FactureService
}

func NewFactureController(factureService *services.FactureService) *FactureController {
	return &FactureController{factureService: factureService}
}

// List - GET /api/v1/factures?patient_id=&statut=
func (ctrl *FactureController) List(c *gin.Context) {
	var filter dto.FactureFilter
	var err error
	if filter.PatientID, err = utils.QueryUUID(c, "patient_id"); err != nil {
		utils.RespondError(c, err)
		return
	}
	if statut := c.Query("statut"); statut != "" {
		if !slices.Contains(utils.StatutsFacture, statut) {
			utils.RespondError(c, apperror.Field("statut", "Le statut doit être: en_attente, payee ou annulee"))
			return
		}
		filter.Statut = statut
	}
	page := utils.ParsePagination(c)

	items, total, err := ctrl.factureService.List(c.Request.Context(), filter, page)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondPaginated(c, items, page.Meta(total))
}

// Get - GET /api/v1/factures/:id
func (ctrl *FactureController) Get(c *gin.Context) {
	id, err := utils.ParamUUID(c, "id", factureNotFound)
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	result, err := ctrl.factureService.Get(c.Request.Context(), id)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondSuccess(c, http.StatusOK, result)
}

// Create - POST /api/v1/factures (JSON ou multipart avec fichier_pdf)
func (ctrl *FactureController) Create(c *gin.Context) {
	var req dto.CreateFactureRequest
	if err := c.ShouldBind(&req); err != nil {
		utils.RespondError(c, utils.BindingError(err))
		return
	}

	file, err := optionalPDF(c)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	if file != nil {
		defer file.Close()
	}
	attachment, content := asAttachment(file)

	result, err := ctrl.factureService.Create(c.Request.Context(), req, attachment, content)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondMessage(c, http.StatusCreated, "Facture créée avec succès", result)
}

// Update - PUT /api/v1/factures/:id
func (ctrl *FactureController) Update(c *gin.Context) {
	id, err := utils.ParamUUID(c, "id", factureNotFound)
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	var req dto.UpdateFactureRequest
	if err := c.ShouldBind(&req); err != nil {
		utils.RespondError(c, utils.BindingError(err))
		return
	}

	file, err := optionalPDF(c)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	if file != nil {
		defer file.Close()
	}
	attachment, content := asAttachment(file)

	result, err := ctrl.factureService.Update(c.Request.Context(), id, req, attachment, content)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondMessage(c, http.StatusOK, "Facture mise à jour avec succès", result)
}

// Delete - DELETE /api/v1/factures/:id
func (ctrl *FactureController) Delete(c *gin.Context) {
	id, err := utils.ParamUUID(c, "id", factureNotFound)
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	if err := ctrl.factureService.Delete(c.Request.Context(), id); err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondMessage(c, http.StatusOK, "Facture supprimée avec succès", nil)
}

func optionalPDF(c *gin.Context) (*utils.UploadedFile, error) {
	if c.ContentType() != "multipart/form-data" {
		return nil, nil
	}
	file, err := utils.FormFile(c, "fichier_pdf")
	if err != nil {
		return nil, apperror.Field("fichier_pdf", "Le fichier envoyé est illisible")
	}
	return file, nil
}

func asAttachment(file *utils.UploadedFile) (*dto.Attachment, io.Reader) {
	if file == nil {
		return nil, nil
	}
	return &dto.Attachment{Filename: file.Filename, ContentType: file.ContentType, Size: file.Size}, file.Content
}
