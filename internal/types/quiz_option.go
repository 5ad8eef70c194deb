package types

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type QuizOption struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	QuizID    uuid.UUID `gorm:"type:uuid;not null;index" json:"quiz_id"`
	Quiz      *Quiz     `gorm:"constraint:OnDelete:CASCADE;foreignKey:QuizID;references:ID" json:"quiz,omitempty"`
	Content   string    `gorm:"column:content;not null" json:"content"`
	IsCorrect bool      `gorm:"column:is_correct;not null" json:"is_correct"`
}

func (QuizOption) TableName() string { return "quiz_option" }

func (o *QuizOption) BeforeCreate(tx *gorm.DB) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	return nil
}
