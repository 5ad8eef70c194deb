package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/dosecare/dosecare-backend/internal/logger"
	"github.com/dosecare/dosecare-backend/internal/types"
)

type QuizOptionRepo interface {
	CreateBatch(ctx context.Context, tx *gorm.DB, options []types.QuizOption) error
	GetByQuizID(ctx context.Context, tx *gorm.DB, quizID uuid.UUID) ([]types.QuizOption, error)
	GetByQuizIDs(ctx context.Context, tx *gorm.DB, quizIDs []uuid.UUID) ([]types.QuizOption, error)
}

type quizOptionRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewQuizOptionRepo(db *gorm.DB, baseLog *logger.Logger) QuizOptionRepo {
	return &quizOptionRepo{db: db, log: baseLog.With("repo", "QuizOptionRepo")}
}

func (r *quizOptionRepo) CreateBatch(ctx context.Context, tx *gorm.DB, options []types.QuizOption) error {
	if len(options) == 0 {
		return nil
	}
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(ctx).Create(&options).Error
}

func (r *quizOptionRepo) GetByQuizID(ctx context.Context, tx *gorm.DB, quizID uuid.UUID) ([]types.QuizOption, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var options []types.QuizOption
	if err := transaction.WithContext(ctx).
		Where("quiz_id = ?", quizID).
		Find(&options).Error; err != nil {
		return nil, err
	}
	return options, nil
}

func (r *quizOptionRepo) GetByQuizIDs(ctx context.Context, tx *gorm.DB, quizIDs []uuid.UUID) ([]types.QuizOption, error) {
	if len(quizIDs) == 0 {
		return nil, nil
	}
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var options []types.QuizOption
	if err := transaction.WithContext(ctx).
		Where("quiz_id IN ?", quizIDs).
		Find(&options).Error; err != nil {
		return nil, err
	}
	return options, nil
}
