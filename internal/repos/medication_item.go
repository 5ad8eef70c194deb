package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/dosecare/dosecare-backend/internal/logger"
	"github.com/dosecare/dosecare-backend/internal/types"
)

type MedicationItemRepo interface {
	CreateBatch(ctx context.Context, tx *gorm.DB, items []types.MedicationItem) error
	GetByMedicationID(ctx context.Context, tx *gorm.DB, medicationID uuid.UUID) ([]types.MedicationItem, error)
}

type medicationItemRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewMedicationItemRepo(db *gorm.DB, baseLog *logger.Logger) MedicationItemRepo {
	return &medicationItemRepo{db: db, log: baseLog.With("repo", "MedicationItemRepo")}
}

func (r *medicationItemRepo) CreateBatch(ctx context.Context, tx *gorm.DB, items []types.MedicationItem) error {
	if len(items) == 0 {
		return nil
	}
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(ctx).Create(&items).Error
}

func (r *medicationItemRepo) GetByMedicationID(ctx context.Context, tx *gorm.DB, medicationID uuid.UUID) ([]types.MedicationItem, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var items []types.MedicationItem
	if err := transaction.WithContext(ctx).
		Preload("Medicine").
		Where("medication_id = ?", medicationID).
		Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}
