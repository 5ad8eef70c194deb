package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/dosecare/dosecare-backend/internal/services"
)

type EventHandler struct {
	eventService services.EventService
}

func NewEventHandler(eventService services.EventService) *EventHandler {
	return &EventHandler{eventService: eventService}
}

func (eh *EventHandler) Today(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	events, err := eh.eventService.TodayEvents(c.Request.Context(), userID)
	if err != nil {
		RespondAppError(c, err)
		return
	}
	RespondOK(c, gin.H{"events": events})
}

func (eh *EventHandler) Complete(c *gin.Context) {
	if _, ok := currentUserID(c); !ok {
		return
	}
	eventID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	event, err := eh.eventService.Complete(c.Request.Context(), eventID)
	if err != nil {
		RespondAppError(c, err)
		return
	}
	RespondOK(c, gin.H{"event_id": event.ID, "status": event.Status})
}

// AIScript serves the spoken guidance for a medication: the composed text
// plus base64 audio when synthesis is configured.
func (eh *EventHandler) AIScript(c *gin.Context) {
	if _, ok := currentUserID(c); !ok {
		return
	}
	medicationID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	text, audio, err := eh.eventService.AIScript(c.Request.Context(), medicationID)
	if err != nil {
		RespondAppError(c, err)
		return
	}
	RespondOK(c, gin.H{"text": text, "audio": audio})
}
