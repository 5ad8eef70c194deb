package repos

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/dosecare/dosecare-backend/internal/logger"
	"github.com/dosecare/dosecare-backend/internal/types"
)

type EventRepo interface {
	CreateBatch(ctx context.Context, tx *gorm.DB, events []types.Event) error
	GetByID(ctx context.Context, tx *gorm.DB, eventID uuid.UUID) (*types.Event, error)
	ExistsForMedicationOnDay(ctx context.Context, tx *gorm.DB, medicationID uuid.UUID, day time.Time) (bool, error)
	GetByMedicationIDs(ctx context.Context, tx *gorm.DB, medicationIDs []uuid.UUID) ([]types.Event, error)
	GetPublishedByUserCreatedBetween(ctx context.Context, tx *gorm.DB, userID uuid.UUID, from, to time.Time) ([]types.Event, error)
	Save(ctx context.Context, tx *gorm.DB, event *types.Event) error
}

type eventRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewEventRepo(db *gorm.DB, baseLog *logger.Logger) EventRepo {
	return &eventRepo{db: db, log: baseLog.With("repo", "EventRepo")}
}

func (r *eventRepo) CreateBatch(ctx context.Context, tx *gorm.DB, events []types.Event) error {
	if len(events) == 0 {
		return nil
	}
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(ctx).Create(&events).Error
}

func (r *eventRepo) GetByID(ctx context.Context, tx *gorm.DB, eventID uuid.UUID) (*types.Event, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var event types.Event
	if err := transaction.WithContext(ctx).
		Where("id = ?", eventID).
		First(&event).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &event, nil
}

func (r *eventRepo) ExistsForMedicationOnDay(ctx context.Context, tx *gorm.DB, medicationID uuid.UUID, day time.Time) (bool, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var count int64
	if err := transaction.WithContext(ctx).
		Model(&types.Event{}).
		Where("medication_id = ? AND event_date = ?", medicationID, toDate(day)).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *eventRepo) GetByMedicationIDs(ctx context.Context, tx *gorm.DB, medicationIDs []uuid.UUID) ([]types.Event, error) {
	if len(medicationIDs) == 0 {
		return nil, nil
	}
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var events []types.Event
	if err := transaction.WithContext(ctx).
		Where("medication_id IN ?", medicationIDs).
		Order("event_date ASC").
		Find(&events).Error; err != nil {
		return nil, err
	}
	return events, nil
}

// toDate normalizes a timestamp to the column representation of its calendar
// day so comparisons behave the same across drivers.
func toDate(day time.Time) datatypes.Date {
	y, m, d := day.Date()
	return datatypes.Date(time.Date(y, m, d, 0, 0, 0, 0, time.UTC))
}

func (r *eventRepo) GetPublishedByUserCreatedBetween(ctx context.Context, tx *gorm.DB, userID uuid.UUID, from, to time.Time) ([]types.Event, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var events []types.Event
	if err := transaction.WithContext(ctx).
		Preload("Medication").
		Preload("EventKind").
		Preload("AlarmTime").
		Preload("AlarmTime.SlotTime").
		Preload("Description").
		Preload("Quiz").
		Joins("JOIN medication ON medication.id = event.medication_id").
		Where("medication.user_id = ? AND event.status = ? AND event.created_at >= ? AND event.created_at < ?",
			userID, types.EventPublished, from, to).
		Order("event.created_at ASC").
		Find(&events).Error; err != nil {
		return nil, err
	}
	return events, nil
}

func (r *eventRepo) Save(ctx context.Context, tx *gorm.DB, event *types.Event) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(ctx).
		Omit(clause.Associations).
		Save(event).Error
}
