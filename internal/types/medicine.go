package types

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Medicine is immutable catalog reference data.
type Medicine struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name           string    `gorm:"not null;index" json:"name"`
	Classification string    `gorm:"column:classification;index" json:"classification"`
	// Comma-joined ingredient list, e.g. "metformin, evogliptin".
	Ingredient  string `gorm:"column:ingredient" json:"ingredient"`
	Information string `gorm:"column:information" json:"information"`
	Description string `gorm:"column:description" json:"description"`
	Image       string `gorm:"column:image" json:"image"`
}

func (Medicine) TableName() string { return "medicine" }

func (m *Medicine) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}
