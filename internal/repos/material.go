package repos

import (
	"context"

	"gorm.io/gorm"

	"github.com/dosecare/dosecare-backend/internal/logger"
	"github.com/dosecare/dosecare-backend/internal/types"
)

type MaterialRepo interface {
	// RandomNamesNotIn samples up to limit material names excluding the
	// given set, guaranteeing quiz decoys never overlap correct answers.
	RandomNamesNotIn(ctx context.Context, tx *gorm.DB, excluded []string, limit int) ([]string, error)
}

type materialRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewMaterialRepo(db *gorm.DB, baseLog *logger.Logger) MaterialRepo {
	return &materialRepo{db: db, log: baseLog.With("repo", "MaterialRepo")}
}

func (r *materialRepo) RandomNamesNotIn(ctx context.Context, tx *gorm.DB, excluded []string, limit int) ([]string, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	query := transaction.WithContext(ctx).Model(&types.Material{})
	if len(excluded) > 0 {
		query = query.Where("name NOT IN ?", excluded)
	}
	var names []string
	if err := query.Order("RANDOM()").Limit(limit).Pluck("name", &names).Error; err != nil {
		return nil, err
	}
	return names, nil
}
