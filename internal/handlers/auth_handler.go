package handlers

import (
	"github.com/gin-gonic/gin"

	"rentride/internal/services"
	"rentride/internal/utils"
	"rentride/internal/validators"
)

type AuthHandler struct {
	authService services.AuthService
}

func NewAuthHandler(authService services.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

func (h *AuthHandler) Register(c *gin.Context) {
	var request validators.RegisterRequest
	if !bindJSON(c, &request) {
		return
	}

	resp, err := h.authService.Register(c.Request.Context(), &services.RegisterRequest{
		Name:     request.Name,
		Email:    request.Email,
		Password: request.Password,
	})
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.CreatedResponse(c, "User registered successfully", resp)
}

func (h *AuthHandler) Login(c *gin.Context) {
	var request validators.LoginRequest
	if !bindJSON(c, &request) {
		return
	}

	resp, err := h.authService.Login(c.Request.Context(), &services.LoginRequest{
		Email:     request.Email,
		Password:  request.Password,
		IPAddress: c.ClientIP(),
	})
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.SuccessResponse(c, "Login successful", resp)
}
