package repos

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/dosecare/dosecare-backend/internal/logger"
	"github.com/dosecare/dosecare-backend/internal/types"
)

type ReportRepo interface {
	Create(ctx context.Context, tx *gorm.DB, report *types.Report) error
	GetByMedicationID(ctx context.Context, tx *gorm.DB, medicationID uuid.UUID) (*types.Report, error)
	GetByMedicationIDs(ctx context.Context, tx *gorm.DB, medicationIDs []uuid.UUID) ([]types.Report, error)
	Save(ctx context.Context, tx *gorm.DB, report *types.Report) error
}

type reportRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewReportRepo(db *gorm.DB, baseLog *logger.Logger) ReportRepo {
	return &reportRepo{db: db, log: baseLog.With("repo", "ReportRepo")}
}

func (r *reportRepo) Create(ctx context.Context, tx *gorm.DB, report *types.Report) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(ctx).Create(report).Error
}

func (r *reportRepo) GetByMedicationID(ctx context.Context, tx *gorm.DB, medicationID uuid.UUID) (*types.Report, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var report types.Report
	if err := transaction.WithContext(ctx).
		Where("medication_id = ?", medicationID).
		First(&report).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &report, nil
}

func (r *reportRepo) GetByMedicationIDs(ctx context.Context, tx *gorm.DB, medicationIDs []uuid.UUID) ([]types.Report, error) {
	if len(medicationIDs) == 0 {
		return nil, nil
	}
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var reports []types.Report
	if err := transaction.WithContext(ctx).
		Where("medication_id IN ?", medicationIDs).
		Find(&reports).Error; err != nil {
		return nil, err
	}
	return reports, nil
}

func (r *reportRepo) Save(ctx context.Context, tx *gorm.DB, report *types.Report) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(ctx).Save(report).Error
}
