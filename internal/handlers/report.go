package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/dosecare/dosecare-backend/internal/services"
)

type ReportHandler struct {
	reportService services.ReportService
}

func NewReportHandler(reportService services.ReportService) *ReportHandler {
	return &ReportHandler{reportService: reportService}
}

func (rh *ReportHandler) List(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	reports, err := rh.reportService.List(c.Request.Context(), userID)
	if err != nil {
		RespondAppError(c, err)
		return
	}
	RespondOK(c, gin.H{"reports": reports})
}

func (rh *ReportHandler) Summary(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	medicationID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	colors, err := rh.reportService.Summary(c.Request.Context(), userID, medicationID)
	if err != nil {
		RespondAppError(c, err)
		return
	}
	RespondOK(c, gin.H{"days": colors})
}

func (rh *ReportHandler) Detail(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	medicationID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	detail, err := rh.reportService.Detail(c.Request.Context(), userID, medicationID)
	if err != nil {
		RespondAppError(c, err)
		return
	}
	RespondOK(c, detail)
}
