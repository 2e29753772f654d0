package patients

import (
	"gestion-hospitaliere/internal/modules/patients/controllers"
	authMiddleware "gestion-hospitaliere/internal/shared/middleware/auth"
	"gestion-hospitaliere/internal/shared/policy"

	"github.com/gin-gonic/gin"
	"go.uber.org/fx"
)

// Module endpoints du dossier patient. La logique vit dans core-services/patient.
var Module = fx.Options(
	fx.Provide(controllers.NewPatientController),
	fx.Invoke(RegisterPatientRoutes),
)

func RegisterPatientRoutes(
	r *gin.Engine,
	ctrl *controllers.PatientController,
	authStack *authMiddleware.AuthMiddlewareStack,
) {
	api := r.Group("/api/v1/patients")
	api.Use(authMiddleware.Protected(authStack)...)
	{
		api.GET("", authStack.Require(policy.PatientsList), ctrl.List)
		api.POST("", authStack.Require(policy.PatientsCreate), ctrl.Create)
		api.GET("/:id", authStack.Require(policy.PatientsRead), ctrl.Get)
		api.PUT("/:id", authStack.Require(policy.PatientsUpdate), ctrl.Update)
		api.DELETE("/:id", authStack.Require(policy.PatientsDelete), ctrl.Delete)

		api.POST("/:id/photo", authStack.Require(policy.PatientsUpdate), ctrl.UploadPhoto)
		api.POST("/:id/documents", authStack.Require(policy.PatientsUpdate), ctrl.UploadDocument)
		api.GET("/:id/documents/:documentId", authStack.Require(policy.PatientsRead), ctrl.DownloadDocument)
		api.DELETE("/:id/documents/:documentId", authStack.Require(policy.PatientsUpdate), ctrl.DeleteDocument)
	}
}
