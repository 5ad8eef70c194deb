package repos

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/dosecare/dosecare-backend/internal/logger"
	"github.com/dosecare/dosecare-backend/internal/types"
)

type AlarmTimeRepo interface {
	CreateBatch(ctx context.Context, tx *gorm.DB, alarmTimes []types.AlarmTime) error
	GetByID(ctx context.Context, tx *gorm.DB, alarmTimeID uuid.UUID) (*types.AlarmTime, error)
	GetByMedicationID(ctx context.Context, tx *gorm.DB, medicationID uuid.UUID) ([]types.AlarmTime, error)
	SaveAll(ctx context.Context, tx *gorm.DB, alarmTimes []types.AlarmTime) error
}

type alarmTimeRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewAlarmTimeRepo(db *gorm.DB, baseLog *logger.Logger) AlarmTimeRepo {
	return &alarmTimeRepo{db: db, log: baseLog.With("repo", "AlarmTimeRepo")}
}

func (r *alarmTimeRepo) CreateBatch(ctx context.Context, tx *gorm.DB, alarmTimes []types.AlarmTime) error {
	if len(alarmTimes) == 0 {
		return nil
	}
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(ctx).Create(&alarmTimes).Error
}

func (r *alarmTimeRepo) GetByID(ctx context.Context, tx *gorm.DB, alarmTimeID uuid.UUID) (*types.AlarmTime, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var alarmTime types.AlarmTime
	if err := transaction.WithContext(ctx).
		Preload("SlotTime").
		Where("id = ?", alarmTimeID).
		First(&alarmTime).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &alarmTime, nil
}

func (r *alarmTimeRepo) GetByMedicationID(ctx context.Context, tx *gorm.DB, medicationID uuid.UUID) ([]types.AlarmTime, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var alarmTimes []types.AlarmTime
	if err := transaction.WithContext(ctx).
		Preload("SlotTime").
		Where("medication_id = ?", medicationID).
		Order("position ASC").
		Find(&alarmTimes).Error; err != nil {
		return nil, err
	}
	return alarmTimes, nil
}

func (r *alarmTimeRepo) SaveAll(ctx context.Context, tx *gorm.DB, alarmTimes []types.AlarmTime) error {
	if len(alarmTimes) == 0 {
		return nil
	}
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	for i := range alarmTimes {
		if err := transaction.WithContext(ctx).
			Omit(clause.Associations).
			Save(&alarmTimes[i]).Error; err != nil {
			return err
		}
	}
	return nil
}
