package types

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Report is the per-medication adherence report skeleton, created together
// with the cycle. Description stays empty until the cycle has ended and the
// overall summary is generated.
type Report struct {
	ID           uuid.UUID   `gorm:"type:uuid;primaryKey" json:"id"`
	MedicationID uuid.UUID   `gorm:"type:uuid;not null;index" json:"medication_id"`
	Medication   *Medication `gorm:"constraint:OnDelete:CASCADE;foreignKey:MedicationID;references:ID" json:"medication,omitempty"`
	CycleID      uuid.UUID   `gorm:"type:uuid;not null" json:"cycle_id"`
	Cycle        *Cycle      `gorm:"foreignKey:CycleID;references:ID" json:"cycle,omitempty"`
	Description  string      `gorm:"column:description" json:"description"`
}

func (Report) TableName() string { return "report" }

func (r *Report) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}
