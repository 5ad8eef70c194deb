package repos

import (
	"context"

	"gorm.io/gorm"

	"github.com/dosecare/dosecare-backend/internal/logger"
	"github.com/dosecare/dosecare-backend/internal/types"
)

type InteractionRuleRepo interface {
	// FindMatching bulk-loads every rule whose match_name, match_ingredient
	// or match_classification falls in the given candidate sets.
	FindMatching(ctx context.Context, tx *gorm.DB, names, ingredients, classifications []string) ([]*types.InteractionRule, error)
}

type interactionRuleRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewInteractionRuleRepo(db *gorm.DB, baseLog *logger.Logger) InteractionRuleRepo {
	return &interactionRuleRepo{db: db, log: baseLog.With("repo", "InteractionRuleRepo")}
}

func (r *interactionRuleRepo) FindMatching(ctx context.Context, tx *gorm.DB, names, ingredients, classifications []string) ([]*types.InteractionRule, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	// Empty IN-lists never match; substitute an impossible sentinel so the
	// query stays a single statement.
	if len(names) == 0 {
		names = []string{""}
	}
	if len(ingredients) == 0 {
		ingredients = []string{""}
	}
	if len(classifications) == 0 {
		classifications = []string{""}
	}
	var rules []*types.InteractionRule
	if err := transaction.WithContext(ctx).
		Preload("Material").
		Where(
			"(match_name <> '' AND match_name IN ?) OR (match_ingredient <> '' AND match_ingredient IN ?) OR (match_classification <> '' AND match_classification IN ?)",
			names, ingredients, classifications,
		).
		Find(&rules).Error; err != nil {
		return nil, err
	}
	return rules, nil
}
