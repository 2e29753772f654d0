package controllers

import (
	"net/http"
	"time"

	"gestion-hospitaliere/internal/modules/dashboard/services"
	"gestion-hospitaliere/internal/shared/utils"

	"github.com/gin-gonic/gin"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type DashboardController struct {
	dashboardService *services.DashboardService
}

func NewDashboardController(dashboardService *services.DashboardService) *DashboardController {
	return &DashboardController{dashboardService: dashboardService}
}

// Overview - GET /api/v1/dashboard
func (ctrl *DashboardController) Overview(c *gin.Context) {
	result, err := ctrl.dashboardService.Overview(c.Request.Context())
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondSuccess(c, http.StatusOK, result)
}

// Graphiques - GET /api/v1/dashboard/graphiques?periode=7days|30days|12months
func (ctrl *DashboardController) Graphiques(c *gin.Context) {
	result, err := ctrl.dashboardService.Graphiques(c.Request.Context(), c.Query("periode"))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondSuccess(c, http.StatusOK, result)
}

// Export - GET /api/v1/dashboard/export
func (ctrl *DashboardController) Export(c *gin.Context) {
	content, err := ctrl.dashboardService.Export(c.Request.Context())
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	filename := "tableau-de-bord-" + time.Now().Format(utils.DateLayout) + ".xlsx"
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, xlsxContentType, content)
}
