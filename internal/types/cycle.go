package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Cycle is the bounded date-range + count-based dosing schedule for one
// medication. Invariant: 0 <= SaveCycle <= CurCycle <= TotalCycle and
// StartDate <= EndDate. CurCycle is advanced only by the daily batch,
// SaveCycle only by event completion.
type Cycle struct {
	ID           uuid.UUID   `gorm:"type:uuid;primaryKey" json:"id"`
	MedicationID uuid.UUID   `gorm:"type:uuid;not null;uniqueIndex" json:"medication_id"`
	Medication   *Medication `gorm:"constraint:OnDelete:CASCADE;foreignKey:MedicationID;references:ID" json:"medication,omitempty"`

	TotalCycle int `gorm:"column:total_cycle;not null" json:"total_cycle"`
	CurCycle   int `gorm:"column:cur_cycle;not null;default:0" json:"cur_cycle"`
	SaveCycle  int `gorm:"column:save_cycle;not null;default:0" json:"save_cycle"`

	StartDate datatypes.Date `gorm:"column:start_date;not null" json:"start_date"`
	EndDate   datatypes.Date `gorm:"column:end_date;not null" json:"end_date"`
}

func (Cycle) TableName() string { return "cycle" }

func (c *Cycle) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

// ContainsDay reports whether day falls inside [StartDate, EndDate], both
// ends inclusive.
func (c *Cycle) ContainsDay(day time.Time) bool {
	d := truncateToDay(day)
	start := truncateToDay(time.Time(c.StartDate))
	end := truncateToDay(time.Time(c.EndDate))
	return !d.Before(start) && !d.After(end)
}

func truncateToDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
