package repos

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/dosecare/dosecare-backend/internal/logger"
	"github.com/dosecare/dosecare-backend/internal/types"
)

type DescriptionRepo interface {
	Create(ctx context.Context, tx *gorm.DB, description *types.Description) error
	GetLatestByMedicationAndKind(ctx context.Context, tx *gorm.DB, medicationID, eventKindID uuid.UUID) (*types.Description, error)
}

type descriptionRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewDescriptionRepo(db *gorm.DB, baseLog *logger.Logger) DescriptionRepo {
	return &descriptionRepo{db: db, log: baseLog.With("repo", "DescriptionRepo")}
}

func (r *descriptionRepo) Create(ctx context.Context, tx *gorm.DB, description *types.Description) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(ctx).Create(description).Error
}

func (r *descriptionRepo) GetLatestByMedicationAndKind(ctx context.Context, tx *gorm.DB, medicationID, eventKindID uuid.UUID) (*types.Description, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var description types.Description
	if err := transaction.WithContext(ctx).
		Where("medication_id = ? AND event_kind_id = ?", medicationID, eventKindID).
		Order("created_at DESC").
		First(&description).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &description, nil
}
