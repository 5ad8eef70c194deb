package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/dosecare/dosecare-backend/internal/apperr"
	"github.com/dosecare/dosecare-backend/internal/logger"
	"github.com/dosecare/dosecare-backend/internal/repos"
	"github.com/dosecare/dosecare-backend/internal/types"
)

// ConditionService records the user's reported side effects. Records are
// append-only; the report views aggregate them later.
type ConditionService interface {
	Record(ctx context.Context, userID uuid.UUID, effectIDs []uuid.UUID) error
}

type conditionService struct {
	db    *gorm.DB
	log   *logger.Logger
	clock func() time.Time

	effectRepo    repos.EffectRepo
	conditionRepo repos.ConditionRepo
}

func NewConditionService(
	db *gorm.DB,
	log *logger.Logger,
	effectRepo repos.EffectRepo,
	conditionRepo repos.ConditionRepo,
) ConditionService {
	return &conditionService{
		db:            db,
		log:           log.With("service", "ConditionService"),
		clock:         time.Now,
		effectRepo:    effectRepo,
		conditionRepo: conditionRepo,
	}
}

func (s *conditionService) Record(ctx context.Context, userID uuid.UUID, effectIDs []uuid.UUID) error {
	if len(effectIDs) == 0 {
		return apperr.Validation("at least one effect is required")
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		effects, err := s.effectRepo.GetByIDs(ctx, tx, effectIDs)
		if err != nil {
			return fmt.Errorf("failed to load effects: %w", err)
		}
		known := make(map[uuid.UUID]bool, len(effects))
		for _, e := range effects {
			known[e.ID] = true
		}
		for _, id := range effectIDs {
			if !known[id] {
				return apperr.Validation("unknown effect %s", id)
			}
		}

		now := s.clock()
		conditions := make([]types.Condition, 0, len(effectIDs))
		for _, id := range effectIDs {
			conditions = append(conditions, types.Condition{
				UserID:     userID,
				EffectID:   id,
				RecordedAt: now,
			})
		}
		if err := s.conditionRepo.CreateBatch(ctx, tx, conditions); err != nil {
			return fmt.Errorf("failed to record conditions: %w", err)
		}
		return nil
	})
}
