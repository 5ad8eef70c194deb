package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/dosecare/dosecare-backend/internal/services"
)

type ConditionHandler struct {
	conditionService services.ConditionService
	presetService    services.PresetService
}

func NewConditionHandler(conditionService services.ConditionService, presetService services.PresetService) *ConditionHandler {
	return &ConditionHandler{conditionService: conditionService, presetService: presetService}
}

func (ch *ConditionHandler) Record(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	var in struct {
		EffectIDs []uuid.UUID `json:"effect_ids"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		RespondError(c, http.StatusBadRequest, "validation", err)
		return
	}
	if err := ch.conditionService.Record(c.Request.Context(), userID, in.EffectIDs); err != nil {
		RespondAppError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"recorded": len(in.EffectIDs)})
}

func (ch *ConditionHandler) Effects(c *gin.Context) {
	if _, ok := currentUserID(c); !ok {
		return
	}
	effects, err := ch.presetService.Effects(c.Request.Context())
	if err != nil {
		RespondAppError(c, err)
		return
	}
	RespondOK(c, gin.H{"effects": effects})
}

func (ch *ConditionHandler) SlotHours(c *gin.Context) {
	if _, ok := currentUserID(c); !ok {
		return
	}
	slot, ok := parseSlotParam(c)
	if !ok {
		return
	}
	hours, err := ch.presetService.SlotHours(c.Request.Context(), slot)
	if err != nil {
		RespondAppError(c, err)
		return
	}
	RespondOK(c, gin.H{"slot": slot, "hours": hours})
}
