package repos

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/dosecare/dosecare-backend/internal/logger"
	"github.com/dosecare/dosecare-backend/internal/types"
)

type AlarmComboRepo interface {
	GetByID(ctx context.Context, tx *gorm.DB, comboID uuid.UUID) (*types.AlarmCombo, error)
	GetByFlags(ctx context.Context, tx *gorm.DB, breakfast, lunch, dinner, night bool) (*types.AlarmCombo, error)
}

type alarmComboRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewAlarmComboRepo(db *gorm.DB, baseLog *logger.Logger) AlarmComboRepo {
	return &alarmComboRepo{db: db, log: baseLog.With("repo", "AlarmComboRepo")}
}

func (r *alarmComboRepo) GetByID(ctx context.Context, tx *gorm.DB, comboID uuid.UUID) (*types.AlarmCombo, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var combo types.AlarmCombo
	if err := transaction.WithContext(ctx).
		Where("id = ?", comboID).
		First(&combo).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &combo, nil
}

func (r *alarmComboRepo) GetByFlags(ctx context.Context, tx *gorm.DB, breakfast, lunch, dinner, night bool) (*types.AlarmCombo, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var combo types.AlarmCombo
	if err := transaction.WithContext(ctx).
		Where("breakfast = ? AND lunch = ? AND dinner = ? AND night = ?", breakfast, lunch, dinner, night).
		First(&combo).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &combo, nil
}
