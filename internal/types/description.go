package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Description is a reminder or guidance text attached to a medication for a
// given event kind. The ai_call description is written once at registration;
// alarm descriptions are written fresh per batch run.
type Description struct {
	ID           uuid.UUID   `gorm:"type:uuid;primaryKey" json:"id"`
	MedicationID uuid.UUID   `gorm:"type:uuid;not null;index" json:"medication_id"`
	Medication   *Medication `gorm:"constraint:OnDelete:CASCADE;foreignKey:MedicationID;references:ID" json:"medication,omitempty"`
	EventKindID  uuid.UUID   `gorm:"type:uuid;not null;index" json:"event_kind_id"`
	EventKind    *EventKind  `gorm:"foreignKey:EventKindID;references:ID" json:"event_kind,omitempty"`
	Text         string      `gorm:"column:text;not null" json:"text"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
}

func (Description) TableName() string { return "description" }

func (d *Description) BeforeCreate(tx *gorm.DB) error {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	return nil
}
