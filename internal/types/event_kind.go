package types

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Seeded event kind names.
const (
	EventKindAlarm  = "alarm"
	EventKindAICall = "ai_call"
)

type EventKind struct {
	ID   uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name string    `gorm:"not null;uniqueIndex" json:"name"`
}

func (EventKind) TableName() string { return "event_kind" }

func (e *EventKind) BeforeCreate(tx *gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return nil
}
