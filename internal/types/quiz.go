package types

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type QuizType string

const (
	QuizInteraction    QuizType = "interaction"
	QuizClassification QuizType = "classification"
)

type Quiz struct {
	ID           uuid.UUID   `gorm:"type:uuid;primaryKey" json:"id"`
	MedicationID uuid.UUID   `gorm:"type:uuid;not null;index" json:"medication_id"`
	Medication   *Medication `gorm:"constraint:OnDelete:CASCADE;foreignKey:MedicationID;references:ID" json:"medication,omitempty"`
	Type         QuizType    `gorm:"column:type;not null" json:"type"`
	Question     string      `gorm:"column:question;not null" json:"question"`
}

func (Quiz) TableName() string { return "quiz" }

func (q *Quiz) BeforeCreate(tx *gorm.DB) error {
	if q.ID == uuid.Nil {
		q.ID = uuid.New()
	}
	return nil
}
