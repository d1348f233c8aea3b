package handlers

import (
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"taskmanager/internal/models"
	"taskmanager/internal/services"
	"taskmanager/internal/validation"
)

type AuthHandler struct {
	userService services.UserService
}

func NewAuthHandler(userService services.UserService) *AuthHandler {
	return &AuthHandler{userService: userService}
}

// @Summary      Регистрация
// @Description  Creates an account and returns an access token
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Param        user  body      models.RegisterRequest  true  "username, email, password"
// @Success      201   {object}  models.AuthResponse
// @Failure      400   {object}  ValidationResponse
// @Failure      500   {object}  MessageResponse
// @Router       /auth/register [post]
func (h *AuthHandler) Register(c *gin.Context) {
	var req models.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Printf("[auth][register] bad request: bind json failed: err=%v", err)
		c.JSON(http.StatusBadRequest, ValidationResponse{Errors: bindErrors(err)})
		return
	}

	resp, err := h.userService.Register(c.Request.Context(), req)
	if err != nil {
		var verrs validation.Errors
		if errors.As(err, &verrs) {
			log.Printf("[auth][register] rejected email=%q: %v", req.Email, verrs)
			c.JSON(http.StatusBadRequest, ValidationResponse{Errors: verrs})
			return
		}
		log.Printf("[auth][register][err] email=%q: %v", req.Email, err)
		c.JSON(http.StatusInternalServerError, MessageResponse{Message: "Server error during registration"})
		return
	}
	log.Printf("[auth][register] success userID=%s", resp.User.ID)
	c.JSON(http.StatusCreated, resp)
}

// @Summary      Вход в систему
// @Description  Authenticates a user and returns an access token
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Param        login  body      models.LoginRequest  true  "Данные для входа"
// @Success      200    {object}  models.AuthResponse
// @Failure      400    {object}  ValidationResponse
// @Failure      401    {object}  MessageResponse
// @Failure      429    {object}  MessageResponse
// @Router       /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	start := time.Now()

	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Printf("[auth][login] bad request: bind json failed: err=%v", err)
		c.JSON(http.StatusBadRequest, ValidationResponse{Errors: bindErrors(err)})
		return
	}

	resp, err := h.userService.Login(c.Request.Context(), req)
	if err != nil {
		var verrs validation.Errors
		switch {
		case errors.As(err, &verrs):
			c.JSON(http.StatusBadRequest, ValidationResponse{Errors: verrs})
		case errors.Is(err, services.ErrInvalidCredentials):
			log.Printf("[auth][login] invalid credentials email=%q", req.Email)
			c.JSON(http.StatusUnauthorized, MessageResponse{Message: "Invalid credentials"})
		default:
			log.Printf("[auth][login][err] email=%q: %v", req.Email, err)
			c.JSON(http.StatusInternalServerError, MessageResponse{Message: "Server error during login"})
		}
		return
	}

	log.Printf("[auth][login] success userID=%s took=%s", resp.User.ID, time.Since(start).Truncate(time.Millisecond))
	c.JSON(http.StatusOK, resp)
}

// @Summary      Current user
// @Tags         Auth
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  models.User
// @Failure      401  {object}  MessageResponse
// @Router       /auth/me [get]
func (h *AuthHandler) Me(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	user, err := h.userService.GetUserByID(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, models.ErrUserNotFound) {
			c.JSON(http.StatusUnauthorized, MessageResponse{Message: "Token is not valid"})
			return
		}
		log.Printf("[auth][me][err] userID=%s: %v", userID, err)
		c.JSON(http.StatusInternalServerError, MessageResponse{Message: "Server error"})
		return
	}
	c.JSON(http.StatusOK, user)
}

// GET /api/health
func Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
