package types

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AlarmCombo is one of the 15 fixed non-empty combinations over the four
// slots. Seeded once; schedules only look rows up, never mutate them.
type AlarmCombo struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Breakfast bool      `gorm:"not null;index:idx_alarm_combo,unique,priority:1" json:"breakfast"`
	Lunch     bool      `gorm:"not null;index:idx_alarm_combo,unique,priority:2" json:"lunch"`
	Dinner    bool      `gorm:"not null;index:idx_alarm_combo,unique,priority:3" json:"dinner"`
	Night     bool      `gorm:"not null;index:idx_alarm_combo,unique,priority:4" json:"night"`
}

func (AlarmCombo) TableName() string { return "alarm_combo" }

func (c *AlarmCombo) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

// ActiveSlots returns the active slots in fixed slot-priority order.
func (c *AlarmCombo) ActiveSlots() []Slot {
	var slots []Slot
	if c.Breakfast {
		slots = append(slots, SlotBreakfast)
	}
	if c.Lunch {
		slots = append(slots, SlotLunch)
	}
	if c.Dinner {
		slots = append(slots, SlotDinner)
	}
	if c.Night {
		slots = append(slots, SlotNight)
	}
	return slots
}
