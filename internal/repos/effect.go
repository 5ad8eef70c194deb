package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/dosecare/dosecare-backend/internal/logger"
	"github.com/dosecare/dosecare-backend/internal/types"
)

type EffectRepo interface {
	GetAll(ctx context.Context, tx *gorm.DB) ([]types.Effect, error)
	GetByIDs(ctx context.Context, tx *gorm.DB, effectIDs []uuid.UUID) ([]types.Effect, error)
}

type effectRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewEffectRepo(db *gorm.DB, baseLog *logger.Logger) EffectRepo {
	return &effectRepo{db: db, log: baseLog.With("repo", "EffectRepo")}
}

func (r *effectRepo) GetAll(ctx context.Context, tx *gorm.DB) ([]types.Effect, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var effects []types.Effect
	if err := transaction.WithContext(ctx).
		Order("name ASC").
		Find(&effects).Error; err != nil {
		return nil, err
	}
	return effects, nil
}

func (r *effectRepo) GetByIDs(ctx context.Context, tx *gorm.DB, effectIDs []uuid.UUID) ([]types.Effect, error) {
	if len(effectIDs) == 0 {
		return nil, nil
	}
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var effects []types.Effect
	if err := transaction.WithContext(ctx).
		Where("id IN ?", effectIDs).
		Find(&effects).Error; err != nil {
		return nil, err
	}
	return effects, nil
}
