package comptes

import (
	"net/http"

	dto "gestion-hospitaliere/internal/modules/back-office/users/dto/comptes"
	services "gestion-hospitaliere/internal/modules/back-office/users/services/comptes"
	authMiddleware "gestion-hospitaliere/internal/shared/middleware/auth"
	"gestion-hospitaliere/internal/shared/utils"

	"github.com/gin-gonic/gin"
)

const userNotFound = "Utilisateur non trouvé"

type ComptesController struct {
	comptesService *services.ComptesService
}

func NewComptesController(comptesService *services.ComptesService) *ComptesController {
	return &ComptesController{comptesService: comptesService}
}

// List - GET /api/v1/users?role=&search=
func (ctrl *ComptesController) List(c *gin.Context) {
	var filter dto.UserFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		utils.RespondError(c, utils.BindingError(err))
		return
	}
	page := utils.ParsePagination(c)

	accounts, total, err := ctrl.comptesService.List(c.Request.Context(), filter, page)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondPaginated(c, accounts, page.Meta(total))
}

// Get - GET /api/v1/users/:id
func (ctrl *ComptesController) Get(c *gin.Context) {
	id, err := utils.ParamUUID(c, "id", userNotFound)
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	account, err := ctrl.comptesService.Get(c.Request.Context(), id)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondSuccess(c, http.StatusOK, account)
}

// Promote - PUT /api/v1/users/:id/promote
func (ctrl *ComptesController) Promote(c *gin.Context) {
	id, err := utils.ParamUUID(c, "id", userNotFound)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	var req dto.PromoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, utils.BindingError(err))
		return
	}

	account, err := ctrl.comptesService.Promote(c.Request.Context(), authMiddleware.CurrentPrincipal(c), id, req)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondMessage(c, http.StatusOK, "Rôle mis à jour", account)
}
