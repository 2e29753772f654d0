package controllers

import (
	"gestion-hospitaliere/internal/modules/core-services/patient/dto"
	"gestion-hospitaliere/internal/shared/apperror"
	"gestion-hospitaliere/internal/shared/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

func requiredFile(c *gin.Context, field string) (*utils.UploadedFile, error) {
	file, err := utils.FormFile(c, field)
	if err != nil {
		return nil, apperror.Field(field, "Le fichier envoyé est illisible")
	}
	if file == nil {
		return nil, apperror.Field(field, "Le champ "+field+" est requis")
	}
	return file, nil
}

func toUpload(file *utils.UploadedFile) dto.Upload {
	return dto.Upload{Filename: file.Filename, ContentType: file.ContentType, Size: file.Size}
}

func documentParams(c *gin.Context) (uuid.UUID, uuid.UUID, error) {
	id, err := utils.ParamUUID(c, "id", patientNotFound)
	if err != nil {
		return uuid.Nil, uuid.Nil, err
	}
	docID, err := utils.ParamUUID(c, "documentId", documentNotFound)
	if err != nil {
		return uuid.Nil, uuid.Nil, err
	}
	return id, docID, nil
}
