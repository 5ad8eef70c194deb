package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type User struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name         string    `gorm:"not null" json:"name"`
	Birth        string    `gorm:"column:birth" json:"birth"`
	Phone        string    `gorm:"column:phone;index" json:"phone"`
	PasswordHash string    `gorm:"column:password_hash" json:"-"`
	FcmToken     string    `gorm:"column:fcm_token" json:"-"`
	IsActive     bool      `gorm:"not null;default:true;index" json:"is_active"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (User) TableName() string { return "users" }

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}
