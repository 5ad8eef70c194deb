package types

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Slot is one of the four fixed daily dosing moments.
type Slot string

const (
	SlotBreakfast Slot = "breakfast"
	SlotLunch     Slot = "lunch"
	SlotDinner    Slot = "dinner"
	SlotNight     Slot = "night"
)

// SlotOrder is the fixed priority order used everywhere alarm rows are
// created or repointed. Never reorder.
var SlotOrder = []Slot{SlotBreakfast, SlotLunch, SlotDinner, SlotNight}

func ParseSlot(s string) (Slot, bool) {
	switch Slot(s) {
	case SlotBreakfast, SlotLunch, SlotDinner, SlotNight:
		return Slot(s), true
	}
	return "", false
}

// SlotTime is a catalog preset binding a slot to a clock hour. The first row
// per slot doubles as the fallback when a user never picked a time.
type SlotTime struct {
	ID    uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Slot  Slot      `gorm:"column:slot;not null;index:idx_slot_time,unique,priority:1" json:"slot"`
	Clock int       `gorm:"column:clock;not null;index:idx_slot_time,unique,priority:2" json:"clock"`
}

func (SlotTime) TableName() string { return "slot_time" }

func (s *SlotTime) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}
