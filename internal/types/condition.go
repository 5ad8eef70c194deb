package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Condition is one recorded side-effect occurrence. Append-only; reports
// aggregate these per week.
type Condition struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID   uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	User     *User     `gorm:"constraint:OnDelete:CASCADE;foreignKey:UserID;references:ID" json:"user,omitempty"`
	EffectID uuid.UUID `gorm:"type:uuid;not null" json:"effect_id"`
	Effect   *Effect   `gorm:"foreignKey:EffectID;references:ID" json:"effect,omitempty"`

	RecordedAt time.Time `gorm:"column:recorded_at;not null;index" json:"recorded_at"`
}

func (Condition) TableName() string { return "condition" }

func (c *Condition) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}
