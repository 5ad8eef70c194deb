package repos

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/dosecare/dosecare-backend/internal/logger"
	"github.com/dosecare/dosecare-backend/internal/types"
)

type UserSlotTimeRepo interface {
	Create(ctx context.Context, tx *gorm.DB, ust *types.UserSlotTime) (*types.UserSlotTime, error)
	GetByUserAndSlot(ctx context.Context, tx *gorm.DB, userID uuid.UUID, slot types.Slot) (*types.UserSlotTime, error)
	Save(ctx context.Context, tx *gorm.DB, ust *types.UserSlotTime) error
}

type userSlotTimeRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewUserSlotTimeRepo(db *gorm.DB, baseLog *logger.Logger) UserSlotTimeRepo {
	return &userSlotTimeRepo{db: db, log: baseLog.With("repo", "UserSlotTimeRepo")}
}

func (r *userSlotTimeRepo) Create(ctx context.Context, tx *gorm.DB, ust *types.UserSlotTime) (*types.UserSlotTime, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if err := transaction.WithContext(ctx).Create(ust).Error; err != nil {
		return nil, err
	}
	return ust, nil
}

func (r *userSlotTimeRepo) GetByUserAndSlot(ctx context.Context, tx *gorm.DB, userID uuid.UUID, slot types.Slot) (*types.UserSlotTime, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var ust types.UserSlotTime
	if err := transaction.WithContext(ctx).
		Preload("SlotTime").
		Where("user_id = ? AND slot = ?", userID, slot).
		First(&ust).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &ust, nil
}

func (r *userSlotTimeRepo) Save(ctx context.Context, tx *gorm.DB, ust *types.UserSlotTime) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(ctx).Save(ust).Error
}
