package controllers

import (
	"net/http"

	"gestion-hospitaliere/internal/modules/auth/dto"
	"gestion-hospitaliere/internal/modules/auth/services"
	authMiddleware "gestion-hospitaliere/internal/shared/middleware/auth"
	"gestion-hospitaliere/internal/shared/utils"

	"github.com/gin-gonic/gin"
)

type AuthController struct {
	authService *services.AuthService
}

func NewAuthController(authService *services.AuthService) *AuthController {
	return &AuthController{
		authService: authService,
	}
}

// Register - POST /api/v1/register
func (c *AuthController) Register(ctx *gin.Context) {
	var req dto.RegisterRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.RespondError(ctx, utils.BindingError(err))
		return
	}

	result, err := c.authService.Register(ctx.Request.Context(), req)
	if err != nil {
		utils.RespondError(ctx, err)
		return
	}

	utils.RespondSuccess(ctx, http.StatusCreated, result)
}

// Login - POST /api/v1/login
func (c *AuthController) Login(ctx *gin.Context) {
	var req dto.LoginRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.RespondError(ctx, utils.BindingError(err))
		return
	}

	result, err := c.authService.Login(ctx.Request.Context(), req)
	if err != nil {
		utils.RespondError(ctx, err)
		return
	}

	utils.RespondSuccess(ctx, http.StatusOK, result)
}

// Logout - POST /api/v1/logout (idempotent)
func (c *AuthController) Logout(ctx *gin.Context) {
	if err := c.authService.Logout(ctx.Request.Context(), authMiddleware.CurrentClaims(ctx)); err != nil {
		utils.RespondError(ctx, err)
		return
	}

	utils.RespondMessage(ctx, http.StatusOK, "Déconnexion réussie", nil)
}

// Profile - GET /api/v1/profile
func (c *AuthController) Profile(ctx *gin.Context) {
	principal := authMiddleware.CurrentPrincipal(ctx)

	result, err := c.authService.Profile(ctx.Request.Context(), principal.UserID)
	if err != nil {
		utils.RespondError(ctx, err)
		return
	}

	utils.RespondSuccess(ctx, http.StatusOK, result)
}
