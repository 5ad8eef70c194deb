package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// UserSlotTime is the user's personally configured clock time for one slot.
type UserSlotTime struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID     uuid.UUID `gorm:"type:uuid;not null;index:idx_user_slot,unique,priority:1" json:"user_id"`
	User       *User     `gorm:"constraint:OnDelete:CASCADE;foreignKey:UserID;references:ID" json:"user,omitempty"`
	SlotTimeID uuid.UUID `gorm:"type:uuid;not null" json:"slot_time_id"`
	SlotTime   *SlotTime `gorm:"foreignKey:SlotTimeID;references:ID" json:"slot_time,omitempty"`
	Slot       Slot      `gorm:"column:slot;not null;index:idx_user_slot,unique,priority:2" json:"slot"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (UserSlotTime) TableName() string { return "user_slot_time" }

func (u *UserSlotTime) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}
