package repos

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/dosecare/dosecare-backend/internal/logger"
	"github.com/dosecare/dosecare-backend/internal/types"
)

type SlotTimeRepo interface {
	GetBySlotAndClock(ctx context.Context, tx *gorm.DB, slot types.Slot, clock int) (*types.SlotTime, error)
	// DefaultForSlot returns the catalog fallback preset for a slot (lowest
	// clock), or nil when the slot has no presets at all.
	DefaultForSlot(ctx context.Context, tx *gorm.DB, slot types.Slot) (*types.SlotTime, error)
	ListBySlot(ctx context.Context, tx *gorm.DB, slot types.Slot) ([]*types.SlotTime, error)
}

type slotTimeRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewSlotTimeRepo(db *gorm.DB, baseLog *logger.Logger) SlotTimeRepo {
	return &slotTimeRepo{db: db, log: baseLog.With("repo", "SlotTimeRepo")}
}

func (r *slotTimeRepo) GetBySlotAndClock(ctx context.Context, tx *gorm.DB, slot types.Slot, clock int) (*types.SlotTime, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var preset types.SlotTime
	if err := transaction.WithContext(ctx).
		Where("slot = ? AND clock = ?", slot, clock).
		First(&preset).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &preset, nil
}

func (r *slotTimeRepo) DefaultForSlot(ctx context.Context, tx *gorm.DB, slot types.Slot) (*types.SlotTime, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var preset types.SlotTime
	if err := transaction.WithContext(ctx).
		Where("slot = ?", slot).
		Order("clock ASC").
		First(&preset).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &preset, nil
}

func (r *slotTimeRepo) ListBySlot(ctx context.Context, tx *gorm.DB, slot types.Slot) ([]*types.SlotTime, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var presets []*types.SlotTime
	if err := transaction.WithContext(ctx).
		Where("slot = ?", slot).
		Order("clock ASC").
		Find(&presets).Error; err != nil {
		return nil, err
	}
	return presets, nil
}
