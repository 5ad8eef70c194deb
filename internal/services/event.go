package services

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/dosecare/dosecare-backend/internal/apperr"
	"github.com/dosecare/dosecare-backend/internal/logger"
	"github.com/dosecare/dosecare-backend/internal/repos"
	"github.com/dosecare/dosecare-backend/internal/types"
)

type QuizDTO struct {
	QuizID     uuid.UUID `json:"quiz_id"`
	Question   string    `json:"question"`
	Candidates []string  `json:"candidates"`
	Answer     string    `json:"answer"`
}

type EventDTO struct {
	EventID     uuid.UUID  `json:"event_id"`
	Kind        string     `json:"kind"`
	Slot        types.Slot `json:"slot"`
	Hour        int        `json:"hour"`
	Hospital    string     `json:"hospital"`
	Category    string     `json:"category"`
	Description string     `json:"description"`
	Quiz        *QuizDTO   `json:"quiz,omitempty"`
}

// EventService owns the daily reminder lifecycle: generating the day's
// events per medication, marking them completed, and serving today's list.
type EventService interface {
	// GenerateForUser creates the day's events for every medication of one
	// user whose cycle window contains day. Already-generated medications are
	// skipped; the returned DTOs cover only freshly created events.
	GenerateForUser(ctx context.Context, userID uuid.UUID, day time.Time) ([]EventDTO, error)
	Complete(ctx context.Context, eventID uuid.UUID) (*types.Event, error)
	TodayEvents(ctx context.Context, userID uuid.UUID) ([]EventDTO, error)
	AIScript(ctx context.Context, medicationID uuid.UUID) (text string, audio string, err error)
}

type eventService struct {
	db  *gorm.DB
	log *logger.Logger
	rng *rand.Rand
	tts TTSService

	medicationRepo repos.MedicationRepo
	cycleRepo      repos.CycleRepo
	alarmTimeRepo  repos.AlarmTimeRepo
	eventRepo      repos.EventRepo
	eventKindRepo  repos.EventKindRepo
	descRepo       repos.DescriptionRepo
	quizRepo       repos.QuizRepo
	quizOptionRepo repos.QuizOptionRepo
}

func NewEventService(
	db *gorm.DB,
	log *logger.Logger,
	rng *rand.Rand,
	tts TTSService,
	medicationRepo repos.MedicationRepo,
	cycleRepo repos.CycleRepo,
	alarmTimeRepo repos.AlarmTimeRepo,
	eventRepo repos.EventRepo,
	eventKindRepo repos.EventKindRepo,
	descRepo repos.DescriptionRepo,
	quizRepo repos.QuizRepo,
	quizOptionRepo repos.QuizOptionRepo,
) EventService {
	return &eventService{
		db:             db,
		log:            log.With("service", "EventService"),
		rng:            rng,
		tts:            tts,
		medicationRepo: medicationRepo,
		cycleRepo:      cycleRepo,
		alarmTimeRepo:  alarmTimeRepo,
		eventRepo:      eventRepo,
		eventKindRepo:  eventKindRepo,
		descRepo:       descRepo,
		quizRepo:       quizRepo,
		quizOptionRepo: quizOptionRepo,
	}
}

// isUniqueViolation detects a postgres duplicate-key error, which here means
// a concurrent run already created the day's events.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

func (s *eventService) GenerateForUser(ctx context.Context, userID uuid.UUID, day time.Time) ([]EventDTO, error) {
	medications, err := s.medicationRepo.GetAllByUser(ctx, nil, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load medications: %w", err)
	}
	if len(medications) == 0 {
		return nil, nil
	}

	ids := make([]uuid.UUID, 0, len(medications))
	for _, m := range medications {
		ids = append(ids, m.ID)
	}
	cycles, err := s.cycleRepo.GetByMedicationIDs(ctx, nil, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load cycles: %w", err)
	}
	cycleByMedication := make(map[uuid.UUID]*types.Cycle, len(cycles))
	for i := range cycles {
		cycleByMedication[cycles[i].MedicationID] = &cycles[i]
	}

	var dtos []EventDTO
	for i := range medications {
		medication := &medications[i]
		cycle := cycleByMedication[medication.ID]
		if cycle == nil || !cycle.ContainsDay(day) {
			continue
		}
		created, err := s.generateForMedication(ctx, medication, cycle, day)
		if err != nil {
			if isUniqueViolation(err) {
				s.log.Info("Events already generated concurrently, skipping",
					"medication_id", medication.ID,
					"day", day.Format("2006-01-02"),
				)
				continue
			}
			return nil, err
		}
		dtos = append(dtos, created...)
	}
	return dtos, nil
}

// generateForMedication runs one medication's generation in its own
// transaction so a failure never poisons the user's other medications.
func (s *eventService) generateForMedication(ctx context.Context, medication *types.Medication, cycle *types.Cycle, day time.Time) ([]EventDTO, error) {
	var dtos []EventDTO
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		exists, err := s.eventRepo.ExistsForMedicationOnDay(ctx, tx, medication.ID, day)
		if err != nil {
			return fmt.Errorf("failed to check existing events: %w", err)
		}
		if exists {
			return nil
		}

		alarmKind, err := s.eventKindRepo.GetByName(ctx, tx, types.EventKindAlarm)
		if err != nil {
			return fmt.Errorf("failed to load event kind: %w", err)
		}
		if alarmKind == nil {
			return apperr.Config("event kind %s is not seeded", types.EventKindAlarm)
		}

		description := &types.Description{
			MedicationID: medication.ID,
			EventKindID:  alarmKind.ID,
			Text:         fmt.Sprintf("It is time to take your %s medication.", medication.Category),
		}
		if err := s.descRepo.Create(ctx, tx, description); err != nil {
			return fmt.Errorf("failed to create description: %w", err)
		}

		alarmTimes, err := s.alarmTimeRepo.GetByMedicationID(ctx, tx, medication.ID)
		if err != nil {
			return fmt.Errorf("failed to load alarm times: %w", err)
		}
		quizzes, err := s.quizRepo.GetByMedicationID(ctx, tx, medication.ID)
		if err != nil {
			return fmt.Errorf("failed to load quizzes: %w", err)
		}

		events := make([]types.Event, 0, len(alarmTimes))
		for i := range alarmTimes {
			event := types.Event{
				MedicationID:  medication.ID,
				AlarmTimeID:   alarmTimes[i].ID,
				EventKindID:   alarmKind.ID,
				DescriptionID: description.ID,
				Status:        types.EventPublished,
				EventDate:     datatypes.Date(truncateDay(day)),
			}
			if len(quizzes) > 0 {
				quizID := quizzes[s.rng.Intn(len(quizzes))].ID
				event.QuizID = &quizID
			}
			events = append(events, event)
		}
		if err := s.eventRepo.CreateBatch(ctx, tx, events); err != nil {
			return err
		}

		cycle.CurCycle += len(events)
		if err := s.cycleRepo.Save(ctx, tx, cycle); err != nil {
			return fmt.Errorf("failed to advance cycle counter: %w", err)
		}

		quizByID := make(map[uuid.UUID]*types.Quiz, len(quizzes))
		quizIDs := make([]uuid.UUID, 0, len(quizzes))
		for i := range quizzes {
			quizByID[quizzes[i].ID] = &quizzes[i]
			quizIDs = append(quizIDs, quizzes[i].ID)
		}
		options, err := s.quizOptionRepo.GetByQuizIDs(ctx, tx, quizIDs)
		if err != nil {
			return fmt.Errorf("failed to load quiz options: %w", err)
		}
		optionsByQuiz := groupOptions(options)

		for i := range events {
			dto := EventDTO{
				EventID:     events[i].ID,
				Kind:        types.EventKindAlarm,
				Hospital:    medication.Hospital,
				Category:    medication.Category,
				Description: description.Text,
			}
			if alarmTimes[i].SlotTime != nil {
				dto.Slot = alarmTimes[i].SlotTime.Slot
				dto.Hour = alarmTimes[i].SlotTime.Clock
			}
			if events[i].QuizID != nil {
				if quiz := quizByID[*events[i].QuizID]; quiz != nil {
					dto.Quiz = s.quizDTO(quiz, optionsByQuiz[quiz.ID])
				}
			}
			dtos = append(dtos, dto)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return dtos, nil
}

// quizDTO samples one correct answer and up to three wrong candidates and
// shuffles them together.
func (s *eventService) quizDTO(quiz *types.Quiz, options []types.QuizOption) *QuizDTO {
	var correct, wrong []string
	for _, o := range options {
		if o.IsCorrect {
			correct = append(correct, o.Content)
		} else {
			wrong = append(wrong, o.Content)
		}
	}
	if len(correct) == 0 {
		return nil
	}
	answer := correct[s.rng.Intn(len(correct))]

	s.rng.Shuffle(len(wrong), func(i, j int) { wrong[i], wrong[j] = wrong[j], wrong[i] })
	if len(wrong) > 3 {
		wrong = wrong[:3]
	}

	candidates := append([]string{answer}, wrong...)
	s.rng.Shuffle(len(candidates), func(i, j int) { candidates[i], candidates[j] = candidates[j], candidates[i] })

	return &QuizDTO{
		QuizID:     quiz.ID,
		Question:   quiz.Question,
		Candidates: candidates,
		Answer:     answer,
	}
}

// Complete marks an event taken. Completing twice is a no-op returning the
// stored event. The cycle counter bump is best-effort: a medication whose
// cycle row is gone still gets its event completed.
func (s *eventService) Complete(ctx context.Context, eventID uuid.UUID) (*types.Event, error) {
	var completed *types.Event
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		event, err := s.eventRepo.GetByID(ctx, tx, eventID)
		if err != nil {
			return fmt.Errorf("failed to load event: %w", err)
		}
		if event == nil {
			return apperr.NotFound("event %s not found", eventID)
		}
		if event.Status == types.EventCompleted {
			completed = event
			return nil
		}

		now := time.Now()
		event.Status = types.EventCompleted
		event.UpdatedAt = &now
		if err := s.eventRepo.Save(ctx, tx, event); err != nil {
			return fmt.Errorf("failed to save event: %w", err)
		}

		cycle, err := s.cycleRepo.GetByMedicationID(ctx, tx, event.MedicationID)
		if err != nil {
			return fmt.Errorf("failed to load cycle: %w", err)
		}
		if cycle == nil {
			s.log.Warn("Completed event has no cycle, counter not advanced",
				"event_id", eventID,
				"medication_id", event.MedicationID,
			)
		} else {
			cycle.SaveCycle++
			if err := s.cycleRepo.Save(ctx, tx, cycle); err != nil {
				return fmt.Errorf("failed to advance save counter: %w", err)
			}
		}

		completed = event
		return nil
	})
	if err != nil {
		return nil, err
	}
	return completed, nil
}

func (s *eventService) TodayEvents(ctx context.Context, userID uuid.UUID) ([]EventDTO, error) {
	from := truncateDay(time.Now())
	to := from.AddDate(0, 0, 1)
	events, err := s.eventRepo.GetPublishedByUserCreatedBetween(ctx, nil, userID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to load today's events: %w", err)
	}

	quizIDs := make([]uuid.UUID, 0, len(events))
	seen := map[uuid.UUID]bool{}
	for i := range events {
		if events[i].QuizID != nil && !seen[*events[i].QuizID] {
			seen[*events[i].QuizID] = true
			quizIDs = append(quizIDs, *events[i].QuizID)
		}
	}
	options, err := s.quizOptionRepo.GetByQuizIDs(ctx, nil, quizIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to load quiz options: %w", err)
	}
	optionsByQuiz := groupOptions(options)

	dtos := make([]EventDTO, 0, len(events))
	for i := range events {
		event := &events[i]
		dto := EventDTO{
			EventID: event.ID,
			Kind:    types.EventKindAlarm,
		}
		if event.EventKind != nil {
			dto.Kind = event.EventKind.Name
		}
		if event.Medication != nil {
			dto.Hospital = event.Medication.Hospital
			dto.Category = event.Medication.Category
		}
		if event.Description != nil {
			dto.Description = event.Description.Text
		}
		if event.AlarmTime != nil && event.AlarmTime.SlotTime != nil {
			dto.Slot = event.AlarmTime.SlotTime.Slot
			dto.Hour = event.AlarmTime.SlotTime.Clock
		}
		if event.Quiz != nil {
			dto.Quiz = s.quizDTO(event.Quiz, optionsByQuiz[event.Quiz.ID])
		}
		dtos = append(dtos, dto)
	}
	return dtos, nil
}

func (s *eventService) AIScript(ctx context.Context, medicationID uuid.UUID) (string, string, error) {
	kind, err := s.eventKindRepo.GetByName(ctx, nil, types.EventKindAICall)
	if err != nil {
		return "", "", fmt.Errorf("failed to load event kind: %w", err)
	}
	if kind == nil {
		return "", "", apperr.Config("event kind %s is not seeded", types.EventKindAICall)
	}
	description, err := s.descRepo.GetLatestByMedicationAndKind(ctx, nil, medicationID, kind.ID)
	if err != nil {
		return "", "", fmt.Errorf("failed to load call description: %w", err)
	}
	if description == nil {
		return "", "", apperr.NotFound("medication %s has no call script", medicationID)
	}
	return description.Text, s.tts.Speak(ctx, description.Text), nil
}

func groupOptions(options []types.QuizOption) map[uuid.UUID][]types.QuizOption {
	grouped := make(map[uuid.UUID][]types.QuizOption)
	for _, o := range options {
		grouped[o.QuizID] = append(grouped[o.QuizID], o)
	}
	return grouped
}
