package repos

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/dosecare/dosecare-backend/internal/logger"
	"github.com/dosecare/dosecare-backend/internal/types"
)

type CycleRepo interface {
	Create(ctx context.Context, tx *gorm.DB, cycle *types.Cycle) error
	GetByID(ctx context.Context, tx *gorm.DB, cycleID uuid.UUID) (*types.Cycle, error)
	GetByMedicationID(ctx context.Context, tx *gorm.DB, medicationID uuid.UUID) (*types.Cycle, error)
	GetByMedicationIDs(ctx context.Context, tx *gorm.DB, medicationIDs []uuid.UUID) ([]types.Cycle, error)
	Save(ctx context.Context, tx *gorm.DB, cycle *types.Cycle) error
}

type cycleRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewCycleRepo(db *gorm.DB, baseLog *logger.Logger) CycleRepo {
	return &cycleRepo{db: db, log: baseLog.With("repo", "CycleRepo")}
}

func (r *cycleRepo) Create(ctx context.Context, tx *gorm.DB, cycle *types.Cycle) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(ctx).Create(cycle).Error
}

func (r *cycleRepo) GetByID(ctx context.Context, tx *gorm.DB, cycleID uuid.UUID) (*types.Cycle, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var cycle types.Cycle
	if err := transaction.WithContext(ctx).
		Where("id = ?", cycleID).
		First(&cycle).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &cycle, nil
}

func (r *cycleRepo) GetByMedicationID(ctx context.Context, tx *gorm.DB, medicationID uuid.UUID) (*types.Cycle, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var cycle types.Cycle
	if err := transaction.WithContext(ctx).
		Where("medication_id = ?", medicationID).
		First(&cycle).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &cycle, nil
}

func (r *cycleRepo) GetByMedicationIDs(ctx context.Context, tx *gorm.DB, medicationIDs []uuid.UUID) ([]types.Cycle, error) {
	if len(medicationIDs) == 0 {
		return nil, nil
	}
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var cycles []types.Cycle
	if err := transaction.WithContext(ctx).
		Where("medication_id IN ?", medicationIDs).
		Find(&cycles).Error; err != nil {
		return nil, err
	}
	return cycles, nil
}

func (r *cycleRepo) Save(ctx context.Context, tx *gorm.DB, cycle *types.Cycle) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(ctx).Save(cycle).Error
}
