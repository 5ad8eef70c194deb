package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type EventStatus string

const (
	EventPublished EventStatus = "published"
	EventCompleted EventStatus = "completed"
)

// Event is one scheduled reminder instance for one slot on one day. The
// unique index over (medication, alarm time, day) enforces at-most-once
// creation per day per slot.
type Event struct {
	ID           uuid.UUID    `gorm:"type:uuid;primaryKey" json:"id"`
	MedicationID uuid.UUID    `gorm:"type:uuid;not null;index:idx_event_day,unique,priority:1" json:"medication_id"`
	Medication   *Medication  `gorm:"constraint:OnDelete:CASCADE;foreignKey:MedicationID;references:ID" json:"medication,omitempty"`
	AlarmTimeID  uuid.UUID    `gorm:"type:uuid;not null;index:idx_event_day,unique,priority:2" json:"alarm_time_id"`
	AlarmTime    *AlarmTime   `gorm:"foreignKey:AlarmTimeID;references:ID" json:"alarm_time,omitempty"`
	EventKindID  uuid.UUID    `gorm:"type:uuid;not null" json:"event_kind_id"`
	EventKind    *EventKind   `gorm:"foreignKey:EventKindID;references:ID" json:"event_kind,omitempty"`
	DescriptionID uuid.UUID   `gorm:"type:uuid;not null" json:"description_id"`
	Description  *Description `gorm:"foreignKey:DescriptionID;references:ID" json:"description,omitempty"`
	QuizID       *uuid.UUID   `gorm:"type:uuid" json:"quiz_id,omitempty"`
	Quiz         *Quiz        `gorm:"foreignKey:QuizID;references:ID" json:"quiz,omitempty"`

	Status    EventStatus    `gorm:"column:status;not null;default:'published';index" json:"status"`
	EventDate datatypes.Date `gorm:"column:event_date;not null;index:idx_event_day,unique,priority:3" json:"event_date"`

	CreatedAt time.Time  `gorm:"not null" json:"created_at"`
	UpdatedAt *time.Time `gorm:"column:updated_at" json:"updated_at,omitempty"`
}

func (Event) TableName() string { return "event" }

func (e *Event) BeforeCreate(tx *gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return nil
}
