package db

import (
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/dosecare/dosecare-backend/internal/types"
)

// SeedReferenceData inserts the fixed catalog rows the schedule pipeline
// depends on: the 15 alarm combinations, the event kinds, and the default
// slot time presets. Idempotent; existing rows are left untouched.
func SeedReferenceData(db *gorm.DB) error {
	if err := seedAlarmCombos(db); err != nil {
		return fmt.Errorf("failed to seed alarm combos: %w", err)
	}
	if err := seedEventKinds(db); err != nil {
		return fmt.Errorf("failed to seed event kinds: %w", err)
	}
	if err := seedSlotTimes(db); err != nil {
		return fmt.Errorf("failed to seed slot times: %w", err)
	}
	return nil
}

func seedAlarmCombos(db *gorm.DB) error {
	// All 15 non-empty subsets of {breakfast, lunch, dinner, night}.
	var combos []*types.AlarmCombo
	for mask := 1; mask < 16; mask++ {
		combos = append(combos, &types.AlarmCombo{
			Breakfast: mask&8 != 0,
			Lunch:     mask&4 != 0,
			Dinner:    mask&2 != 0,
			Night:     mask&1 != 0,
		})
	}
	return db.Clauses(clause.OnConflict{DoNothing: true}).Create(&combos).Error
}

func seedEventKinds(db *gorm.DB) error {
	kinds := []*types.EventKind{
		{Name: types.EventKindAlarm},
		{Name: types.EventKindAICall},
	}
	return db.Clauses(clause.OnConflict{DoNothing: true}).Create(&kinds).Error
}

func seedSlotTimes(db *gorm.DB) error {
	// The lowest clock per slot is the fallback when a user never set a time.
	presets := []*types.SlotTime{}
	defaults := map[types.Slot][]int{
		types.SlotBreakfast: {7, 8, 9, 10},
		types.SlotLunch:     {11, 12, 13, 14},
		types.SlotDinner:    {17, 18, 19, 20},
		types.SlotNight:     {21, 22, 23},
	}
	for _, slot := range types.SlotOrder {
		for _, hour := range defaults[slot] {
			presets = append(presets, &types.SlotTime{Slot: slot, Clock: hour})
		}
	}
	return db.Clauses(clause.OnConflict{DoNothing: true}).Create(&presets).Error
}
