package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AlarmTime binds one active slot of a medication to a concrete preset clock
// time. Rows are created in fixed slot order at registration and are treated
// as stable positional slots afterwards: combination updates repoint
// SlotTimeID but never add, remove, or reorder rows.
type AlarmTime struct {
	ID           uuid.UUID   `gorm:"type:uuid;primaryKey" json:"id"`
	MedicationID uuid.UUID   `gorm:"type:uuid;not null;index" json:"medication_id"`
	Medication   *Medication `gorm:"constraint:OnDelete:CASCADE;foreignKey:MedicationID;references:ID" json:"medication,omitempty"`
	SlotTimeID   uuid.UUID   `gorm:"type:uuid;not null" json:"slot_time_id"`
	SlotTime     *SlotTime   `gorm:"foreignKey:SlotTimeID;references:ID" json:"slot_time,omitempty"`

	// Position is the creation index within the medication (0-based). It is
	// the stable slot identity used when combinations are repointed.
	Position int `gorm:"column:position;not null;default:0;index" json:"position"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
}

func (AlarmTime) TableName() string { return "alarm_time" }

func (a *AlarmTime) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}
