package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dosecare/dosecare-backend/internal/services"
)

type UserHandler struct {
	userService services.UserService
}

func NewUserHandler(userService services.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

func (uh *UserHandler) GetMe(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	info, err := uh.userService.GetInfo(c.Request.Context(), userID)
	if err != nil {
		RespondAppError(c, err)
		return
	}
	RespondOK(c, info)
}

func (uh *UserHandler) UpdateMe(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	var in services.UserUpdateInput
	if err := c.ShouldBindJSON(&in); err != nil {
		RespondError(c, http.StatusBadRequest, "validation", err)
		return
	}
	info, err := uh.userService.Update(c.Request.Context(), userID, in)
	if err != nil {
		RespondAppError(c, err)
		return
	}
	RespondOK(c, info)
}

func (uh *UserHandler) Deactivate(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	if err := uh.userService.Deactivate(c.Request.Context(), userID); err != nil {
		RespondAppError(c, err)
		return
	}
	RespondOK(c, gin.H{"deactivated": true})
}

func (uh *UserHandler) GetSlotTime(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	slot, ok := parseSlotParam(c)
	if !ok {
		return
	}
	hour, err := uh.userService.GetSlotTime(c.Request.Context(), userID, slot)
	if err != nil {
		RespondAppError(c, err)
		return
	}
	RespondOK(c, gin.H{"slot": slot, "hour": hour})
}

func (uh *UserHandler) SetSlotTime(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	var in struct {
		Hour int `json:"hour"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		RespondError(c, http.StatusBadRequest, "validation", err)
		return
	}
	slot, ok := parseSlotParam(c)
	if !ok {
		return
	}
	if err := uh.userService.SetSlotTime(c.Request.Context(), userID, slot, in.Hour); err != nil {
		RespondAppError(c, err)
		return
	}
	RespondOK(c, gin.H{"slot": slot, "hour": in.Hour})
}
