package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Medication is one registered prescription for one user.
type Medication struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID   uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	User     *User     `gorm:"constraint:OnDelete:CASCADE;foreignKey:UserID;references:ID" json:"user,omitempty"`
	Hospital string    `gorm:"column:hospital" json:"hospital"`
	Category string    `gorm:"column:category" json:"category"`
	// Taken is the fixed doses-per-day count. Combination updates must keep
	// the number of active slots equal to it.
	Taken        int         `gorm:"column:taken;not null" json:"taken"`
	AlarmComboID uuid.UUID   `gorm:"type:uuid;not null" json:"alarm_combo_id"`
	AlarmCombo   *AlarmCombo `gorm:"foreignKey:AlarmComboID;references:ID" json:"alarm_combo,omitempty"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
}

func (Medication) TableName() string { return "medication" }

func (m *Medication) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}
