package types

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// MedicationItem links one catalog medicine into a medication, carrying the
// composed per-medicine guidance text.
type MedicationItem struct {
	ID           uuid.UUID   `gorm:"type:uuid;primaryKey" json:"id"`
	MedicationID uuid.UUID   `gorm:"type:uuid;not null;index" json:"medication_id"`
	Medication   *Medication `gorm:"constraint:OnDelete:CASCADE;foreignKey:MedicationID;references:ID" json:"medication,omitempty"`
	MedicineID   uuid.UUID   `gorm:"type:uuid;not null" json:"medicine_id"`
	Medicine     *Medicine   `gorm:"foreignKey:MedicineID;references:ID" json:"medicine,omitempty"`
	Description  string      `gorm:"column:description" json:"description"`
}

func (MedicationItem) TableName() string { return "medication_item" }

func (m *MedicationItem) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}
