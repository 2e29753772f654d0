package controllers

import (
	"net/http"

	"gestion-hospitaliere/internal/modules/notifications/services"
	authMiddleware "gestion-hospitaliere/internal/shared/middleware/auth"
	"gestion-hospitaliere/internal/shared/utils"

	"github.com/gin-gonic/gin"
)

type NotificationController struct {
	notificationService *services.NotificationService
}

func NewNotificationController(notificationService *services.NotificationService) *NotificationController {
	return &NotificationController{notificationService: notificationService}
}

func currentUserID(c *gin.Context) string {
	return authMiddleware.CurrentPrincipal(c).UserID.String()
}

// List - GET /api/v1/notifications
func (ctrl *NotificationController) List(c *gin.Context) {
	page := utils.ParsePagination(c)

	items, total, err := ctrl.notificationService.List(c.Request.Context(), currentUserID(c), page)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondPaginated(c, items, page.Meta(total))
}

// Unread - GET /api/v1/notifications/unread
func (ctrl *NotificationController) Unread(c *gin.Context) {
	result, err := ctrl.notificationService.Unread(c.Request.Context(), currentUserID(c))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondSuccess(c, http.StatusOK, result)
}

// MarkRead - POST /api/v1/notifications/:id/read
func (ctrl *NotificationController) MarkRead(c *gin.Context) {
	if err := ctrl.notificationService.MarkRead(c.Request.Context(), currentUserID(c), c.Param("id")); err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondMessage(c, http.StatusOK, "Notification marquée comme lue", nil)
}

// MarkAllRead - POST /api/v1/notifications/read-all
func (ctrl *NotificationController) MarkAllRead(c *gin.Context) {
	count, err := ctrl.notificationService.MarkAllRead(c.Request.Context(), currentUserID(c))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondMessage(c, http.StatusOK, "Toutes les notifications ont été marquées comme lues", gin.H{"count": count})
}

// Delete - DELETE /api/v1/notifications/:id
func (ctrl *NotificationController) Delete(c *gin.Context) {
	if err := ctrl.notificationService.Delete(c.Request.Context(), currentUserID(c), c.Param("id")); err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondMessage(c, http.StatusOK, "Notification supprimée", nil)
}

// DeleteRead - DELETE /api/v1/notifications/read
func (ctrl *NotificationController) DeleteRead(c *gin.Context) {
	count, err := ctrl.notificationService.DeleteRead(c.Request.Context(), currentUserID(c))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondMessage(c, http.StatusOK, "Notifications lues supprimées", gin.H{"count": count})
}
