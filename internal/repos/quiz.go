package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/dosecare/dosecare-backend/internal/logger"
	"github.com/dosecare/dosecare-backend/internal/types"
)

type QuizRepo interface {
	Create(ctx context.Context, tx *gorm.DB, quiz *types.Quiz) error
	GetByMedicationID(ctx context.Context, tx *gorm.DB, medicationID uuid.UUID) ([]types.Quiz, error)
}

type quizRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewQuizRepo(db *gorm.DB, baseLog *logger.Logger) QuizRepo {
	return &quizRepo{db: db, log: baseLog.With("repo", "QuizRepo")}
}

func (r *quizRepo) Create(ctx context.Context, tx *gorm.DB, quiz *types.Quiz) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(ctx).Create(quiz).Error
}

func (r *quizRepo) GetByMedicationID(ctx context.Context, tx *gorm.DB, medicationID uuid.UUID) ([]types.Quiz, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var quizzes []types.Quiz
	if err := transaction.WithContext(ctx).
		Where("medication_id = ?", medicationID).
		Find(&quizzes).Error; err != nil {
		return nil, err
	}
	return quizzes, nil
}
