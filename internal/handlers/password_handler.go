package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"taskmanager/internal/models"
	"taskmanager/internal/services"
	"taskmanager/internal/validation"
)

type PasswordHandler struct {
	resets services.PasswordResetService
}

func NewPasswordHandler(resets services.PasswordResetService) *PasswordHandler {
	return &PasswordHandler{resets: resets}
}

// @Summary      Запрос сброса пароля
// @Description  Emails a one-time reset token. The response is the same whether or not the email is registered.
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Param        request  body      models.ForgotPasswordRequest  true  "email"
// @Success      200      {object}  MessageResponse
// @Failure      400      {object}  ValidationResponse
// @Failure      429      {object}  MessageResponse
// @Router       /auth/forgot-password [post]
func (h *PasswordHandler) ForgotPassword(c *gin.Context) {
	var req models.ForgotPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ValidationResponse{Errors: bindErrors(err)})
		return
	}
	if err := h.resets.RequestReset(c.Request.Context(), req); err != nil {
		var verrs validation.Errors
		if errors.As(err, &verrs) {
			c.JSON(http.StatusBadRequest, ValidationResponse{Errors: verrs})
			return
		}
		log.Printf("[auth][forgot-password][err] %v", err)
		c.JSON(http.StatusInternalServerError, MessageResponse{Message: "Server error"})
		return
	}
	c.JSON(http.StatusOK, MessageResponse{Message: "If the email is registered, a reset link has been sent"})
}

// @Summary      Сброс пароля
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Param        request  body      models.ResetPasswordRequest  true  "token, new password"
// @Success      200      {object}  MessageResponse
// @Failure      400      {object}  ValidationResponse
// @Failure      429      {object}  MessageResponse
// @Router       /auth/reset-password [post]
func (h *PasswordHandler) ResetPassword(c *gin.Context) {
	var req models.ResetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ValidationResponse{Errors: bindErrors(err)})
		return
	}
	if err := h.resets.ResetPassword(c.Request.Context(), req); err != nil {
		var verrs validation.Errors
		if errors.As(err, &verrs) {
			log.Printf("[auth][reset-password] rejected: %v", verrs)
			c.JSON(http.StatusBadRequest, ValidationResponse{Errors: verrs})
			return
		}
		log.Printf("[auth][reset-password][err] %v", err)
		c.JSON(http.StatusInternalServerError, MessageResponse{Message: "Server error"})
		return
	}
	c.JSON(http.StatusOK, MessageResponse{Message: "Password has been reset"})
}
