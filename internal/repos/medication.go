package repos

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/dosecare/dosecare-backend/internal/logger"
	"github.com/dosecare/dosecare-backend/internal/types"
)

type MedicationRepo interface {
	Create(ctx context.Context, tx *gorm.DB, medication *types.Medication) error
	GetByID(ctx context.Context, tx *gorm.DB, medicationID uuid.UUID) (*types.Medication, error)
	GetByIDForUser(ctx context.Context, tx *gorm.DB, medicationID, userID uuid.UUID) (*types.Medication, error)
	GetAllByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]types.Medication, error)
	Save(ctx context.Context, tx *gorm.DB, medication *types.Medication) error
}

type medicationRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewMedicationRepo(db *gorm.DB, baseLog *logger.Logger) MedicationRepo {
	return &medicationRepo{db: db, log: baseLog.With("repo", "MedicationRepo")}
}

func (r *medicationRepo) Create(ctx context.Context, tx *gorm.DB, medication *types.Medication) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(ctx).Create(medication).Error
}

func (r *medicationRepo) GetByID(ctx context.Context, tx *gorm.DB, medicationID uuid.UUID) (*types.Medication, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var medication types.Medication
	if err := transaction.WithContext(ctx).
		Where("id = ?", medicationID).
		First(&medication).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &medication, nil
}

func (r *medicationRepo) GetByIDForUser(ctx context.Context, tx *gorm.DB, medicationID, userID uuid.UUID) (*types.Medication, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var medication types.Medication
	if err := transaction.WithContext(ctx).
		Where("id = ? AND user_id = ?", medicationID, userID).
		First(&medication).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &medication, nil
}

func (r *medicationRepo) GetAllByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]types.Medication, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var medications []types.Medication
	if err := transaction.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&medications).Error; err != nil {
		return nil, err
	}
	return medications, nil
}

func (r *medicationRepo) Save(ctx context.Context, tx *gorm.DB, medication *types.Medication) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(ctx).Save(medication).Error
}
