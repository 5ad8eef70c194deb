package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dosecare/dosecare-backend/internal/services"
)

type AuthHandler struct {
	userService services.UserService
	authService services.AuthService
}

func NewAuthHandler(userService services.UserService, authService services.AuthService) *AuthHandler {
	return &AuthHandler{userService: userService, authService: authService}
}

func (ah *AuthHandler) Signup(c *gin.Context) {
	var in services.SignupInput
	if err := c.ShouldBindJSON(&in); err != nil {
		RespondError(c, http.StatusBadRequest, "validation", err)
		return
	}
	user, err := ah.userService.Signup(c.Request.Context(), in)
	if err != nil {
		RespondAppError(c, err)
		return
	}
	pair, err := ah.authService.Login(c.Request.Context(), in.Phone, in.Password)
	if err != nil {
		RespondAppError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"user_id": user.ID, "tokens": pair})
}

func (ah *AuthHandler) Login(c *gin.Context) {
	var in struct {
		Phone    string `json:"phone"`
		Password string `json:"password"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		RespondError(c, http.StatusBadRequest, "validation", err)
		return
	}
	pair, err := ah.authService.Login(c.Request.Context(), in.Phone, in.Password)
	if err != nil {
		RespondAppError(c, err)
		return
	}
	RespondOK(c, pair)
}

func (ah *AuthHandler) Refresh(c *gin.Context) {
	var in struct {
		RefreshToken string `json:"refresh_token"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		RespondError(c, http.StatusBadRequest, "validation", err)
		return
	}
	pair, err := ah.authService.Refresh(c.Request.Context(), in.RefreshToken)
	if err != nil {
		RespondAppError(c, err)
		return
	}
	RespondOK(c, pair)
}
