package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/dosecare/dosecare-backend/internal/apperr"
	"github.com/dosecare/dosecare-backend/internal/requestdata"
	"github.com/dosecare/dosecare-backend/internal/types"
)

type APIError struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

func RespondOK(c *gin.Context, payload any) {
	c.JSON(http.StatusOK, payload)
}

func RespondError(c *gin.Context, status int, code string, err error) {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	c.JSON(status, ErrorEnvelope{Error: APIError{Message: msg, Code: code}})
}

// RespondAppError maps the service error kinds onto HTTP statuses. Anything
// unclassified is a 500 with a generic message so internals never leak.
func RespondAppError(c *gin.Context, err error) {
	switch {
	case apperr.IsKind(err, apperr.KindValidation):
		RespondError(c, http.StatusBadRequest, "validation", err)
	case apperr.IsKind(err, apperr.KindNotFound):
		RespondError(c, http.StatusNotFound, "not_found", err)
	case apperr.IsKind(err, apperr.KindParse):
		RespondError(c, http.StatusUnprocessableEntity, "unreadable", err)
	case apperr.IsKind(err, apperr.KindExternal):
		RespondError(c, http.StatusBadGateway, "upstream", err)
	default:
		c.JSON(http.StatusInternalServerError, ErrorEnvelope{
			Error: APIError{Message: "internal error", Code: "internal"},
		})
	}
}

// currentUserID reads the authenticated user set by the auth middleware.
func currentUserID(c *gin.Context) (uuid.UUID, bool) {
	rd := requestdata.GetRequestData(c.Request.Context())
	if rd == nil || rd.UserID == uuid.Nil {
		RespondError(c, http.StatusForbidden, "forbidden", nil)
		return uuid.Nil, false
	}
	return rd.UserID, true
}

func parseSlotParam(c *gin.Context) (types.Slot, bool) {
	slot, ok := types.ParseSlot(c.Param("slot"))
	if !ok {
		RespondError(c, http.StatusBadRequest, "validation", fmt.Errorf("unknown slot %q", c.Param("slot")))
		return "", false
	}
	return slot, true
}

func parseIDParam(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "validation", err)
		return uuid.Nil, false
	}
	return id, true
}
