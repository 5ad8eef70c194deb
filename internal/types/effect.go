package types

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Effect is a side-effect preset users can record against.
type Effect struct {
	ID   uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name string    `gorm:"not null;uniqueIndex" json:"name"`
}

func (Effect) TableName() string { return "effect" }

func (e *Effect) BeforeCreate(tx *gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return nil
}
