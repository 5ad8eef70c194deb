package types

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Material is an ingestible substance (probiotics, alcohol, caffeine...) that
// interaction rules can reference and quizzes draw answers and decoys from.
type Material struct {
	ID   uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name string    `gorm:"not null;uniqueIndex" json:"name"`
}

func (Material) TableName() string { return "material" }

func (m *Material) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}
