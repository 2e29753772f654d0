package controllers

import (
	"io"
	"net/http"

	"gestion-hospitaliere/internal/modules/prescriptions/dto"
	"gestion-hospitaliere/internal/modules/prescriptions/services"
	"gestion-hospitaliere/internal/shared/apperror"
	authMiddleware "gestion-hospitaliere/internal/shared/middleware/auth"
	"gestion-hospitaliere/internal/shared/utils"

	"github.com/gin-gonic/gin"
)

const (
	prescriptionNotFound = "Prescription non trouvée"
	pdfField             = "fichier_pdf"
)

type PrescriptionController struct {
	prescriptionService *services.PrescriptionService
}

func NewPrescriptionController(prescriptionService *services.PrescriptionService) *PrescriptionController {
	return &PrescriptionController{prescriptionService: prescriptionService}
}

// List - GET /api/v1/prescriptions?patient_id=&medecin_id=
func (ctrl *PrescriptionController) List(c *gin.Context) {
	var filter dto.PrescriptionFilter
	var err error
	if filter.PatientID, err = utils.QueryUUID(c, "patient_id"); err != nil {
		utils.RespondError(c, err)
		return
	}
	if filter.MedecinID, err = utils.QueryUUID(c, "medecin_id"); err != nil {
		utils.RespondError(c, err)
		return
	}
	page := utils.ParsePagination(c)

	items, total, err := ctrl.prescriptionService.List(c.Request.Context(), authMiddleware.CurrentPrincipal(c), filter, page)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondPaginated(c, items, page.Meta(total))
}

// Get - GET /api/v1/prescriptions/:id
func (ctrl *PrescriptionController) Get(c *gin.Context) {
	id, err := utils.ParamUUID(c, "id", prescriptionNotFound)
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	result, err := ctrl.prescriptionService.Get(c.Request.Context(), authMiddleware.CurrentPrincipal(c), id)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondSuccess(c, http.StatusOK, result)
}

// Create - POST /api/v1/prescriptions (JSON ou multipart avec fichier_pdf)
func (ctrl *PrescriptionController) Create(c *gin.Context) {
	var req dto.CreatePrescriptionRequest
	if err := c.ShouldBind(&req); err != nil {
		utils.RespondError(c, utils.BindingError(err))
		return
	}

	file, err := optionalPDF(c)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	attachment, content := asAttachment(file)
	if file != nil {
		defer file.Close()
	}

	result, err := ctrl.prescriptionService.Create(c.Request.Context(), authMiddleware.CurrentPrincipal(c), req, attachment, content)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondMessage(c, http.StatusCreated, "Prescription créée avec succès", result)
}

// Update - PUT /api/v1/prescriptions/:id
func (ctrl *PrescriptionController) Update(c *gin.Context) {
	id, err := utils.ParamUUID(c, "id", prescriptionNotFound)
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	var req dto.UpdatePrescriptionRequest
	if err := c.ShouldBind(&req); err != nil {
		utils.RespondError(c, utils.BindingError(err))
		return
	}

	file, err := optionalPDF(c)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	attachment, content := asAttachment(file)
	if file != nil {
		defer file.Close()
	}

	result, err := ctrl.prescriptionService.Update(c.Request.Context(), authMiddleware.CurrentPrincipal(c), id, req, attachment, content)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondMessage(c, http.StatusOK, "Prescription mise à jour avec succès", result)
}

// Delete - DELETE /api/v1/prescriptions/:id
func (ctrl *PrescriptionController) Delete(c *gin.Context) {
	id, err := utils.ParamUUID(c, "id", prescriptionNotFound)
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	if err := ctrl.prescriptionService.Delete(c.Request.Context(), authMiddleware.CurrentPrincipal(c), id); err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondMessage(c, http.StatusOK, "Prescription supprimée avec succès", nil)
}

// optionalPDF nil hors multipart ou sans fichier joint
func optionalPDF(c *gin.Context) (*utils.UploadedFile, error) {
	if c.ContentType() != "multipart/form-data" {
		return nil, nil
	}
	file, err := utils.FormFile(c, pdfField)
	if err != nil {
		return nil, apperror.Field(pdfField, "Le fichier envoyé est illisible")
	}
	return file, nil
}

func asAttachment(file *utils.UploadedFile) (*dto.Attachment, io.Reader) {
	if file == nil {
		return nil, nil
	}
	return &dto.Attachment{Filename: file.Filename, ContentType: file.ContentType, Size: file.Size}, file.Content
}
