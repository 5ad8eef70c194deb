package repos

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/dosecare/dosecare-backend/internal/logger"
	"github.com/dosecare/dosecare-backend/internal/types"
)

type ConditionRepo interface {
	CreateBatch(ctx context.Context, tx *gorm.DB, conditions []types.Condition) error
	GetByUserRecordedBetween(ctx context.Context, tx *gorm.DB, userID uuid.UUID, from, to time.Time) ([]types.Condition, error)
}

type conditionRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewConditionRepo(db *gorm.DB, baseLog *logger.Logger) ConditionRepo {
	return &conditionRepo{db: db, log: baseLog.With("repo", "ConditionRepo")}
}

func (r *conditionRepo) CreateBatch(ctx context.Context, tx *gorm.DB, conditions []types.Condition) error {
	if len(conditions) == 0 {
		return nil
	}
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(ctx).Create(&conditions).Error
}

func (r *conditionRepo) GetByUserRecordedBetween(ctx context.Context, tx *gorm.DB, userID uuid.UUID, from, to time.Time) ([]types.Condition, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var conditions []types.Condition
	if err := transaction.WithContext(ctx).
		Preload("Effect").
		Where("user_id = ? AND recorded_at >= ? AND recorded_at < ?", userID, from, to).
		Order("recorded_at ASC").
		Find(&conditions).Error; err != nil {
		return nil, err
	}
	return conditions, nil
}
