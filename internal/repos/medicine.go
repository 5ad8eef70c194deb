package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/dosecare/dosecare-backend/internal/logger"
	"github.com/dosecare/dosecare-backend/internal/types"
)

type MedicineRepo interface {
	GetByIDs(ctx context.Context, tx *gorm.DB, medicineIDs []uuid.UUID) ([]*types.Medicine, error)
	GetAll(ctx context.Context, tx *gorm.DB) ([]*types.Medicine, error)
	// RandomClassificationsNotIn samples up to limit distinct classifications
	// excluding the given set. Ordering is intentionally random.
	RandomClassificationsNotIn(ctx context.Context, tx *gorm.DB, excluded []string, limit int) ([]string, error)
}

type medicineRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewMedicineRepo(db *gorm.DB, baseLog *logger.Logger) MedicineRepo {
	return &medicineRepo{db: db, log: baseLog.With("repo", "MedicineRepo")}
}

func (r *medicineRepo) GetByIDs(ctx context.Context, tx *gorm.DB, medicineIDs []uuid.UUID) ([]*types.Medicine, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var results []*types.Medicine
	if len(medicineIDs) == 0 {
		return results, nil
	}
	if err := transaction.WithContext(ctx).
		Where("id IN ?", medicineIDs).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *medicineRepo) GetAll(ctx context.Context, tx *gorm.DB) ([]*types.Medicine, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var results []*types.Medicine
	if err := transaction.WithContext(ctx).Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *medicineRepo) RandomClassificationsNotIn(ctx context.Context, tx *gorm.DB, excluded []string, limit int) ([]string, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	query := transaction.WithContext(ctx).
		Model(&types.Medicine{}).
		Distinct("classification").
		Where("classification <> ''")
	if len(excluded) > 0 {
		query = query.Where("classification NOT IN ?", excluded)
	}
	var results []string
	if err := query.Order("RANDOM()").Limit(limit).Pluck("classification", &results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
