package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/dosecare/dosecare-backend/internal/apperr"
	"github.com/dosecare/dosecare-backend/internal/logger"
	"github.com/dosecare/dosecare-backend/internal/parser"
	"github.com/dosecare/dosecare-backend/internal/repos"
	"github.com/dosecare/dosecare-backend/internal/types"
)

// ScheduleBuilder owns everything about when a medication is taken: the
// dose-count to slot-combination mapping, the bounded cycle window, and the
// alarm rows binding slots to concrete clock times.
type ScheduleBuilder interface {
	PrimaryItem(items []parser.ParsedItem) parser.ParsedItem
	BuildCycle(taken, totalDays int, today time.Time) *types.Cycle
	ComboForTaken(ctx context.Context, tx *gorm.DB, taken int) (*types.AlarmCombo, error)
	InstantiateAlarmTimes(ctx context.Context, tx *gorm.DB, userID, medicationID uuid.UUID, combo *types.AlarmCombo) ([]types.AlarmTime, error)
	UpdateCombination(ctx context.Context, userID, medicationID uuid.UUID, slots []types.Slot) error
	UpdateAlarmTime(ctx context.Context, userID, alarmTimeID uuid.UUID, slot types.Slot, hour int) error
}

type scheduleBuilder struct {
	db               *gorm.DB
	log              *logger.Logger
	medicationRepo   repos.MedicationRepo
	alarmComboRepo   repos.AlarmComboRepo
	alarmTimeRepo    repos.AlarmTimeRepo
	slotTimeRepo     repos.SlotTimeRepo
	userSlotTimeRepo repos.UserSlotTimeRepo
}

func NewScheduleBuilder(
	db *gorm.DB,
	log *logger.Logger,
	medicationRepo repos.MedicationRepo,
	alarmComboRepo repos.AlarmComboRepo,
	alarmTimeRepo repos.AlarmTimeRepo,
	slotTimeRepo repos.SlotTimeRepo,
	userSlotTimeRepo repos.UserSlotTimeRepo,
) ScheduleBuilder {
	return &scheduleBuilder{
		db:               db,
		log:              log.With("service", "ScheduleBuilder"),
		medicationRepo:   medicationRepo,
		alarmComboRepo:   alarmComboRepo,
		alarmTimeRepo:    alarmTimeRepo,
		slotTimeRepo:     slotTimeRepo,
		userSlotTimeRepo: userSlotTimeRepo,
	}
}

// PrimaryItem picks the item whose course dominates the schedule: highest
// DoseDays, first one winning ties.
func (s *scheduleBuilder) PrimaryItem(items []parser.ParsedItem) parser.ParsedItem {
	primary := items[0]
	for _, item := range items[1:] {
		if item.DoseDays > primary.DoseDays {
			primary = item
		}
	}
	return primary
}

// BuildCycle derives the bounded schedule: taken doses a day for totalDays
// days, ending the day before today+totalDays.
func (s *scheduleBuilder) BuildCycle(taken, totalDays int, today time.Time) *types.Cycle {
	if totalDays < 1 {
		totalDays = 1
	}
	start := truncateDay(today)
	end := start.AddDate(0, 0, totalDays-1)
	return &types.Cycle{
		TotalCycle: taken * totalDays,
		CurCycle:   0,
		SaveCycle:  0,
		StartDate:  datatypes.Date(start),
		EndDate:    datatypes.Date(end),
	}
}

// comboFlagsForTaken maps a daily dose count onto slot flags. Anything
// outside 1..4 gets the full four-slot day.
func comboFlagsForTaken(taken int) (breakfast, lunch, dinner, night bool) {
	switch taken {
	case 1:
		return true, false, false, false
	case 2:
		return true, false, true, false
	case 3:
		return true, true, true, false
	default:
		return true, true, true, true
	}
}

func (s *scheduleBuilder) ComboForTaken(ctx context.Context, tx *gorm.DB, taken int) (*types.AlarmCombo, error) {
	breakfast, lunch, dinner, night := comboFlagsForTaken(taken)
	combo, err := s.alarmComboRepo.GetByFlags(ctx, tx, breakfast, lunch, dinner, night)
	if err != nil {
		return nil, fmt.Errorf("failed to load alarm combo: %w", err)
	}
	if combo == nil {
		return nil, apperr.Config("alarm combo row for taken=%d is not seeded", taken)
	}
	return combo, nil
}

// slotTimeFor resolves the clock preset for one slot: the user's configured
// time first, then the catalog default.
func (s *scheduleBuilder) slotTimeFor(ctx context.Context, tx *gorm.DB, userID uuid.UUID, slot types.Slot) (*types.SlotTime, error) {
	ust, err := s.userSlotTimeRepo.GetByUserAndSlot(ctx, tx, userID, slot)
	if err != nil {
		return nil, fmt.Errorf("failed to load user slot time: %w", err)
	}
	if ust != nil && ust.SlotTime != nil {
		return ust.SlotTime, nil
	}
	preset, err := s.slotTimeRepo.DefaultForSlot(ctx, tx, slot)
	if err != nil {
		return nil, fmt.Errorf("failed to load slot time preset: %w", err)
	}
	if preset == nil {
		return nil, apperr.Config("no slot time preset seeded for slot %s", slot)
	}
	return preset, nil
}

func (s *scheduleBuilder) InstantiateAlarmTimes(ctx context.Context, tx *gorm.DB, userID, medicationID uuid.UUID, combo *types.AlarmCombo) ([]types.AlarmTime, error) {
	var alarmTimes []types.AlarmTime
	for i, slot := range combo.ActiveSlots() {
		st, err := s.slotTimeFor(ctx, tx, userID, slot)
		if err != nil {
			return nil, err
		}
		alarmTimes = append(alarmTimes, types.AlarmTime{
			MedicationID: medicationID,
			SlotTimeID:   st.ID,
			Position:     i,
		})
	}
	if err := s.alarmTimeRepo.CreateBatch(ctx, tx, alarmTimes); err != nil {
		return nil, fmt.Errorf("failed to create alarm times: %w", err)
	}
	return alarmTimes, nil
}

// UpdateCombination moves a medication to a different set of active slots
// with the same daily dose count. Existing alarm rows keep their identity:
// they are repointed in slot-priority order, never added or removed.
func (s *scheduleBuilder) UpdateCombination(ctx context.Context, userID, medicationID uuid.UUID, slots []types.Slot) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		medication, err := s.medicationRepo.GetByIDForUser(ctx, tx, medicationID, userID)
		if err != nil {
			return fmt.Errorf("failed to load medication: %w", err)
		}
		if medication == nil {
			return apperr.NotFound("medication %s not found", medicationID)
		}

		active := map[types.Slot]bool{}
		for _, slot := range slots {
			active[slot] = true
		}
		if len(active) != medication.Taken {
			return apperr.Validation("combination needs exactly %d slots, got %d", medication.Taken, len(active))
		}

		combo, err := s.alarmComboRepo.GetByFlags(ctx, tx,
			active[types.SlotBreakfast], active[types.SlotLunch],
			active[types.SlotDinner], active[types.SlotNight])
		if err != nil {
			return fmt.Errorf("failed to load alarm combo: %w", err)
		}
		if combo == nil {
			return apperr.Config("alarm combo for requested slots is not seeded")
		}

		alarmTimes, err := s.alarmTimeRepo.GetByMedicationID(ctx, tx, medicationID)
		if err != nil {
			return fmt.Errorf("failed to load alarm times: %w", err)
		}
		if len(alarmTimes) == 0 {
			return apperr.NotFound("medication %s has no alarm times", medicationID)
		}
		if len(alarmTimes) != medication.Taken {
			return apperr.Validation("medication has %d alarm times but takes %d doses", len(alarmTimes), medication.Taken)
		}

		for i, slot := range combo.ActiveSlots() {
			st, err := s.slotTimeFor(ctx, tx, userID, slot)
			if err != nil {
				return err
			}
			alarmTimes[i].SlotTimeID = st.ID
			alarmTimes[i].SlotTime = nil
		}
		if err := s.alarmTimeRepo.SaveAll(ctx, tx, alarmTimes); err != nil {
			return fmt.Errorf("failed to save alarm times: %w", err)
		}

		medication.AlarmComboID = combo.ID
		if err := s.medicationRepo.Save(ctx, tx, medication); err != nil {
			return fmt.Errorf("failed to save medication: %w", err)
		}
		return nil
	})
}

// UpdateAlarmTime repoints a single alarm row to the preset of (slot, hour).
func (s *scheduleBuilder) UpdateAlarmTime(ctx context.Context, userID, alarmTimeID uuid.UUID, slot types.Slot, hour int) error {
	if hour < 0 || hour > 23 {
		return apperr.Validation("hour %d outside 0..23", hour)
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		alarmTime, err := s.alarmTimeRepo.GetByID(ctx, tx, alarmTimeID)
		if err != nil {
			return fmt.Errorf("failed to load alarm time: %w", err)
		}
		if alarmTime == nil {
			return apperr.NotFound("alarm time %s not found", alarmTimeID)
		}
		medication, err := s.medicationRepo.GetByIDForUser(ctx, tx, alarmTime.MedicationID, userID)
		if err != nil {
			return fmt.Errorf("failed to load medication: %w", err)
		}
		if medication == nil {
			return apperr.NotFound("alarm time %s not found", alarmTimeID)
		}
		if alarmTime.SlotTime != nil && alarmTime.SlotTime.Slot != slot {
			return apperr.Validation("alarm time is a %s slot, not %s", alarmTime.SlotTime.Slot, slot)
		}
		preset, err := s.slotTimeRepo.GetBySlotAndClock(ctx, tx, slot, hour)
		if err != nil {
			return fmt.Errorf("failed to load slot time preset: %w", err)
		}
		if preset == nil {
			return apperr.Validation("no %s preset at hour %d", slot, hour)
		}
		alarmTime.SlotTimeID = preset.ID
		alarmTime.SlotTime = nil
		if err := s.alarmTimeRepo.SaveAll(ctx, tx, []types.AlarmTime{*alarmTime}); err != nil {
			return fmt.Errorf("failed to save alarm time: %w", err)
		}
		return nil
	})
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
