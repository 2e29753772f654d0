package controllers

import (
	"fmt"
	"net/http"
	"strings"

	"gestion-hospitaliere/internal/modules/core-services/patient/dto"
	"gestion-hospitaliere/internal/modules/core-services/patient/services"
	authMiddleware "gestion-hospitaliere/internal/shared/middleware/auth"
	"gestion-hospitaliere/internal/shared/utils"

	"github.com/gin-gonic/gin"
)

const (
	patientNotFound  = "Patient non trouvé"
	documentNotFound = "Document non trouvé"
)

type PatientController struct {
	patientService *services.PatientService
	fileService    *services.PatientFileService
}

func NewPatientController(patientService *services.PatientService, fileService *services.PatientFileService) *PatientController {
	return &PatientController{patientService: patientService, fileService: fileService}
}

// List - GET /api/v1/patients?search=&groupe_sanguin=
func (ctrl *PatientController) List(c *gin.Context) {
	filter := dto.PatientFilter{
		Search:        strings.TrimSpace(c.Query("search")),
		GroupeSanguin: strings.TrimSpace(c.Query("groupe_sanguin")),
	}
	page := utils.ParsePagination(c)

	result, total, err := ctrl.patientService.List(c.Request.Context(), authMiddleware.CurrentPrincipal(c), filter, page)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondPaginated(c, result, page.Meta(total))
}

// Get - GET /api/v1/patients/:id
func (ctrl *PatientController) Get(c *gin.Context) {
	id, err := utils.ParamUUID(c, "id", patientNotFound)
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	result, err := ctrl.patientService.Get(c.Request.Context(), authMiddleware.CurrentPrincipal(c), id)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondSuccess(c, http.StatusOK, result)
}

// Create - POST /api/v1/patients
func (ctrl *PatientController) Create(c *gin.Context) {
	var req dto.CreatePatientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, utils.BindingError(err))
		return
	}

	result, err := ctrl.patientService.Create(c.Request.Context(), req)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondMessage(c, http.StatusCreated, "Patient créé avec succès", result)
}

// Update - PUT /api/v1/patients/:id
func (ctrl *PatientController) Update(c *gin.Context) {
	id, err := utils.ParamUUID(c, "id", patientNotFound)
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	var req dto.UpdatePatientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, utils.BindingError(err))
		return
	}

	result, err := ctrl.patientService.Update(c.Request.Context(), authMiddleware.CurrentPrincipal(c), id, req)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondMessage(c, http.StatusOK, "Patient mis à jour avec succès", result)
}

// Delete - DELETE /api/v1/patients/:id
func (ctrl *PatientController) Delete(c *gin.Context) {
	id, err := utils.ParamUUID(c, "id", patientNotFound)
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	if err := ctrl.patientService.Delete(c.Request.Context(), id); err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondMessage(c, http.StatusOK, "Patient supprimé avec succès", nil)
}

// UploadPhoto - POST /api/v1/patients/:id/photo (multipart, champ photo)
func (ctrl *PatientController) UploadPhoto(c *gin.Context) {
	id, err := utils.ParamUUID(c, "id", patientNotFound)
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	file, err := requiredFile(c, "photo")
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	defer file.Close()

	result, err := ctrl.fileService.SetPhoto(c.Request.Context(), authMiddleware.CurrentPrincipal(c), id, toUpload(file), file.Content)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondMessage(c, http.StatusOK, "Photo mise à jour avec succès", result)
}

// UploadDocument - POST /api/v1/patients/:id/documents (multipart, champ document)
func (ctrl *PatientController) UploadDocument(c *gin.Context) {
	id, err := utils.ParamUUID(c, "id", patientNotFound)
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	file, err := requiredFile(c, "document")
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	defer file.Close()

	result, err := ctrl.fileService.AddDocument(c.Request.Context(), authMiddleware.CurrentPrincipal(c), id, toUpload(file), file.Content)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondMessage(c, http.StatusCreated, "Document ajouté avec succès", result)
}

// DownloadDocument - GET /api/v1/patients/:id/documents/:documentId
func (ctrl *PatientController) DownloadDocument(c *gin.Context) {
	id, docID, err := documentParams(c)
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	doc, file, err := ctrl.fileService.OpenDocument(c.Request.Context(), authMiddleware.CurrentPrincipal(c), id, docID)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	defer file.Close()

	c.DataFromReader(http.StatusOK, -1, doc.Type, file, map[string]string{
		"Content-Disposition": fmt.Sprintf(`attachment; filename="%s"`, strings.ReplaceAll(doc.Nom, `"`, "")),
	})
}

// DeleteDocument - DELETE /api/v1/patients/:id/documents/:documentId
func (ctrl *PatientController) DeleteDocument(c *gin.Context) {
	id, docID, err := documentParams(c)
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	if err := ctrl.fileService.DeleteDocument(c.Request.Context(), authMiddleware.CurrentPrincipal(c), id, docID); err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondMessage(c, http.StatusOK, "Document supprimé avec succès", nil)
}
