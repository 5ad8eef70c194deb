package repos

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/dosecare/dosecare-backend/internal/logger"
	"github.com/dosecare/dosecare-backend/internal/types"
)

type EventKindRepo interface {
	GetByName(ctx context.Context, tx *gorm.DB, name string) (*types.EventKind, error)
}

type eventKindRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewEventKindRepo(db *gorm.DB, baseLog *logger.Logger) EventKindRepo {
	return &eventKindRepo{db: db, log: baseLog.With("repo", "EventKindRepo")}
}

func (r *eventKindRepo) GetByName(ctx context.Context, tx *gorm.DB, name string) (*types.EventKind, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var kind types.EventKind
	if err := transaction.WithContext(ctx).
		Where("name = ?", name).
		First(&kind).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &kind, nil
}
