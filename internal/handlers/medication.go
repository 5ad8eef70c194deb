package handlers

import (
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dosecare/dosecare-backend/internal/clients/ocr"
	"github.com/dosecare/dosecare-backend/internal/services"
	"github.com/dosecare/dosecare-backend/internal/types"
)

// 10 MiB is plenty for a phone photo.
const maxImageBytes = 10 << 20

type MedicationHandler struct {
	medicationService services.MedicationService
	scheduleBuilder   services.ScheduleBuilder
}

func NewMedicationHandler(medicationService services.MedicationService, scheduleBuilder services.ScheduleBuilder) *MedicationHandler {
	return &MedicationHandler{medicationService: medicationService, scheduleBuilder: scheduleBuilder}
}

// Register accepts a multipart form with an "image" file and a "mode" field
// of either "prescription" or "envelope".
func (mh *MedicationHandler) Register(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	mode := c.PostForm("mode")
	if mode == "" {
		mode = ocr.ModePrescription
	}
	if mode != ocr.ModePrescription && mode != ocr.ModeEnvelope {
		RespondError(c, http.StatusBadRequest, "validation", fmt.Errorf("unknown mode %q", mode))
		return
	}

	fileHeader, err := c.FormFile("image")
	if err != nil {
		RespondError(c, http.StatusBadRequest, "validation", fmt.Errorf("image file required"))
		return
	}
	if fileHeader.Size > maxImageBytes {
		RespondError(c, http.StatusBadRequest, "validation", fmt.Errorf("image larger than %d bytes", maxImageBytes))
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		RespondError(c, http.StatusBadRequest, "validation", err)
		return
	}
	defer file.Close()
	image, err := io.ReadAll(file)
	if err != nil {
		RespondError(c, http.StatusBadRequest, "validation", err)
		return
	}

	result, err := mh.medicationService.Register(c.Request.Context(), userID, mode, image, fileHeader.Filename)
	if err != nil {
		RespondAppError(c, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

func (mh *MedicationHandler) List(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	summaries, err := mh.medicationService.ListSummaries(c.Request.Context(), userID)
	if err != nil {
		RespondAppError(c, err)
		return
	}
	RespondOK(c, gin.H{"medications": summaries})
}

func (mh *MedicationHandler) ListToday(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	summaries, err := mh.medicationService.ListToday(c.Request.Context(), userID)
	if err != nil {
		RespondAppError(c, err)
		return
	}
	RespondOK(c, gin.H{"medications": summaries})
}

func (mh *MedicationHandler) GetDetail(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	medicationID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	detail, err := mh.medicationService.GetDetail(c.Request.Context(), userID, medicationID)
	if err != nil {
		RespondAppError(c, err)
		return
	}
	RespondOK(c, detail)
}

func (mh *MedicationHandler) RenameCategory(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	medicationID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var in struct {
		Category string `json:"category"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		RespondError(c, http.StatusBadRequest, "validation", err)
		return
	}
	if err := mh.medicationService.RenameCategory(c.Request.Context(), userID, medicationID, in.Category); err != nil {
		RespondAppError(c, err)
		return
	}
	RespondOK(c, gin.H{"category": in.Category})
}

func (mh *MedicationHandler) GetCombination(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	medicationID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	dto, err := mh.medicationService.GetCombination(c.Request.Context(), userID, medicationID)
	if err != nil {
		RespondAppError(c, err)
		return
	}
	RespondOK(c, dto)
}

// UpdateCombination moves the medication onto a different slot combination.
// The slot count must match the medication's doses per day.
func (mh *MedicationHandler) UpdateCombination(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	medicationID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var in struct {
		Slots []string `json:"slots"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		RespondError(c, http.StatusBadRequest, "validation", err)
		return
	}
	slots := make([]types.Slot, 0, len(in.Slots))
	for _, raw := range in.Slots {
		slot, ok := types.ParseSlot(raw)
		if !ok {
			RespondError(c, http.StatusBadRequest, "validation", fmt.Errorf("unknown slot %q", raw))
			return
		}
		slots = append(slots, slot)
	}
	if err := mh.scheduleBuilder.UpdateCombination(c.Request.Context(), userID, medicationID, slots); err != nil {
		RespondAppError(c, err)
		return
	}
	RespondOK(c, gin.H{"slots": in.Slots})
}

func (mh *MedicationHandler) UpdateAlarmTime(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	alarmTimeID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var in struct {
		Slot string `json:"slot"`
		Hour int    `json:"hour"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		RespondError(c, http.StatusBadRequest, "validation", err)
		return
	}
	slot, ok := types.ParseSlot(in.Slot)
	if !ok {
		RespondError(c, http.StatusBadRequest, "validation", fmt.Errorf("unknown slot %q", in.Slot))
		return
	}
	if err := mh.scheduleBuilder.UpdateAlarmTime(c.Request.Context(), userID, alarmTimeID, slot, in.Hour); err != nil {
		RespondAppError(c, err)
		return
	}
	RespondOK(c, gin.H{"slot": in.Slot, "hour": in.Hour})
}
