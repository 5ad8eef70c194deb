package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/dosecare/dosecare-backend/internal/apperr"
	"github.com/dosecare/dosecare-backend/internal/parser"
	"github.com/dosecare/dosecare-backend/internal/types"
)

func TestComboFlagsForTaken(t *testing.T) {
	cases := []struct {
		taken                           int
		breakfast, lunch, dinner, night bool
	}{
		{1, true, false, false, false},
		{2, true, false, true, false},
		{3, true, true, true, false},
		{4, true, true, true, true},
		{5, true, true, true, true},
		{0, true, true, true, true},
		{-1, true, true, true, true},
	}
	for _, tc := range cases {
		b, l, d, n := comboFlagsForTaken(tc.taken)
		if b != tc.breakfast || l != tc.lunch || d != tc.dinner || n != tc.night {
			t.Errorf("taken=%d: got %v/%v/%v/%v", tc.taken, b, l, d, n)
		}
	}
}

func TestBuildCycle(t *testing.T) {
	env := newTestEnv(t)
	sb := env.scheduleBuilder()

	today := time.Date(2026, 8, 28, 15, 4, 0, 0, time.UTC)
	cycle := sb.BuildCycle(3, 5, today)

	if cycle.TotalCycle != 15 {
		t.Errorf("totalCycle = %d, want 15", cycle.TotalCycle)
	}
	if cycle.CurCycle != 0 || cycle.SaveCycle != 0 {
		t.Errorf("counters not zero: %+v", cycle)
	}
	start := time.Time(cycle.StartDate)
	end := time.Time(cycle.EndDate)
	if !start.Equal(time.Date(2026, 8, 28, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("start = %v", start)
	}
	if !end.Equal(time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("end = %v, want start+4d", end)
	}

	// A single-day course ends the day it starts.
	one := sb.BuildCycle(2, 1, today)
	if !time.Time(one.StartDate).Equal(time.Time(one.EndDate)) {
		t.Errorf("one-day cycle: start %v end %v", one.StartDate, one.EndDate)
	}
}

func TestPrimaryItem(t *testing.T) {
	env := newTestEnv(t)
	sb := env.scheduleBuilder()

	items := []parser.ParsedItem{
		{Name: "a", DoseCount: 3, DoseDays: 5},
		{Name: "b", DoseCount: 2, DoseDays: 7},
		{Name: "c", DoseCount: 1, DoseDays: 7},
	}
	if got := sb.PrimaryItem(items); got.Name != "b" {
		t.Errorf("primary = %s, want b (first of the longest courses)", got.Name)
	}
}

func TestComboForTaken_Seeded(t *testing.T) {
	env := newTestEnv(t)
	sb := env.scheduleBuilder()
	ctx := context.Background()

	combo, err := sb.ComboForTaken(ctx, nil, 2)
	if err != nil {
		t.Fatalf("ComboForTaken: %v", err)
	}
	if !combo.Breakfast || combo.Lunch || !combo.Dinner || combo.Night {
		t.Errorf("taken=2 combo = %+v", combo)
	}
}

func TestInstantiateAlarmTimes_UsesUserTimesThenDefaults(t *testing.T) {
	env := newTestEnv(t)
	sb := env.scheduleBuilder()
	ctx := context.Background()
	user := env.newUser(t)

	// The user picked 9 for breakfast; dinner falls back to the catalog default.
	nine, err := env.slotTimes.GetBySlotAndClock(ctx, nil, types.SlotBreakfast, 9)
	if err != nil || nine == nil {
		t.Fatalf("breakfast 9 preset: %v", err)
	}
	env.mustCreate(t, &types.UserSlotTime{UserID: user.ID, SlotTimeID: nine.ID, Slot: types.SlotBreakfast})

	combo, err := sb.ComboForTaken(ctx, nil, 2)
	if err != nil {
		t.Fatalf("ComboForTaken: %v", err)
	}
	medication := &types.Medication{UserID: user.ID, Hospital: "h", Category: "c", Taken: 2, AlarmComboID: combo.ID}
	env.mustCreate(t, medication)

	created, err := sb.InstantiateAlarmTimes(ctx, nil, user.ID, medication.ID, combo)
	if err != nil {
		t.Fatalf("InstantiateAlarmTimes: %v", err)
	}
	if len(created) != 2 {
		t.Fatalf("alarm times = %d, want 2", len(created))
	}

	loaded, err := env.alarmTimes.GetByMedicationID(ctx, nil, medication.ID)
	if err != nil {
		t.Fatalf("load alarm times: %v", err)
	}
	if loaded[0].SlotTime.Slot != types.SlotBreakfast || loaded[0].SlotTime.Clock != 9 {
		t.Errorf("breakfast row = %+v", loaded[0].SlotTime)
	}
	if loaded[1].SlotTime.Slot != types.SlotDinner || loaded[1].SlotTime.Clock != 17 {
		t.Errorf("dinner row = %+v", loaded[1].SlotTime)
	}
}

func TestUpdateCombination(t *testing.T) {
	env := newTestEnv(t)
	sb := env.scheduleBuilder()
	ctx := context.Background()
	user := env.newUser(t)

	combo, err := sb.ComboForTaken(ctx, nil, 2)
	if err != nil {
		t.Fatalf("ComboForTaken: %v", err)
	}
	medication := &types.Medication{UserID: user.ID, Hospital: "h", Category: "c", Taken: 2, AlarmComboID: combo.ID}
	env.mustCreate(t, medication)
	if _, err := sb.InstantiateAlarmTimes(ctx, nil, user.ID, medication.ID, combo); err != nil {
		t.Fatalf("InstantiateAlarmTimes: %v", err)
	}
	before, err := env.alarmTimes.GetByMedicationID(ctx, nil, medication.ID)
	if err != nil {
		t.Fatalf("load alarm times: %v", err)
	}

	t.Run("wrong slot count rejected", func(t *testing.T) {
		err := sb.UpdateCombination(ctx, user.ID, medication.ID,
			[]types.Slot{types.SlotBreakfast, types.SlotLunch, types.SlotNight})
		if !apperr.IsKind(err, apperr.KindValidation) {
			t.Fatalf("err = %v, want validation", err)
		}
	})

	t.Run("repoints without changing row identity", func(t *testing.T) {
		err := sb.UpdateCombination(ctx, user.ID, medication.ID,
			[]types.Slot{types.SlotLunch, types.SlotNight})
		if err != nil {
			t.Fatalf("UpdateCombination: %v", err)
		}
		after, err := env.alarmTimes.GetByMedicationID(ctx, nil, medication.ID)
		if err != nil {
			t.Fatalf("load alarm times: %v", err)
		}
		if len(after) != 2 {
			t.Fatalf("alarm times = %d, want 2", len(after))
		}
		for i := range after {
			if after[i].ID != before[i].ID {
				t.Errorf("row %d identity changed: %s -> %s", i, before[i].ID, after[i].ID)
			}
		}
		if after[0].SlotTime.Slot != types.SlotLunch {
			t.Errorf("first row slot = %s, want lunch", after[0].SlotTime.Slot)
		}
		if after[1].SlotTime.Slot != types.SlotNight {
			t.Errorf("second row slot = %s, want night", after[1].SlotTime.Slot)
		}

		// The medication now points at the lunch+night combo.
		med, err := env.medications.GetByID(ctx, nil, medication.ID)
		if err != nil {
			t.Fatalf("load medication: %v", err)
		}
		newCombo, err := env.combos.GetByID(ctx, nil, med.AlarmComboID)
		if err != nil {
			t.Fatalf("load combo: %v", err)
		}
		if newCombo.Breakfast || !newCombo.Lunch || newCombo.Dinner || !newCombo.Night {
			t.Errorf("combo = %+v", newCombo)
		}
	})
}

func TestUpdateAlarmTime(t *testing.T) {
	env := newTestEnv(t)
	sb := env.scheduleBuilder()
	ctx := context.Background()
	user := env.newUser(t)

	combo, err := sb.ComboForTaken(ctx, nil, 1)
	if err != nil {
		t.Fatalf("ComboForTaken: %v", err)
	}
	medication := &types.Medication{UserID: user.ID, Hospital: "h", Category: "c", Taken: 1, AlarmComboID: combo.ID}
	env.mustCreate(t, medication)
	created, err := sb.InstantiateAlarmTimes(ctx, nil, user.ID, medication.ID, combo)
	if err != nil {
		t.Fatalf("InstantiateAlarmTimes: %v", err)
	}
	atID := created[0].ID

	if err := sb.UpdateAlarmTime(ctx, user.ID, atID, types.SlotBreakfast, 25); !apperr.IsKind(err, apperr.KindValidation) {
		t.Errorf("hour 25: err = %v, want validation", err)
	}
	if err := sb.UpdateAlarmTime(ctx, user.ID, atID, types.SlotDinner, 18); !apperr.IsKind(err, apperr.KindValidation) {
		t.Errorf("slot mismatch: err = %v, want validation", err)
	}
	if err := sb.UpdateAlarmTime(ctx, user.ID, uuid.New(), types.SlotBreakfast, 8); !apperr.IsKind(err, apperr.KindNotFound) {
		t.Errorf("missing row: err = %v, want not found", err)
	}

	if err := sb.UpdateAlarmTime(ctx, user.ID, atID, types.SlotBreakfast, 10); err != nil {
		t.Fatalf("UpdateAlarmTime: %v", err)
	}
	after, err := env.alarmTimes.GetByID(ctx, nil, atID)
	if err != nil {
		t.Fatalf("load alarm time: %v", err)
	}
	if after.SlotTime.Clock != 10 {
		t.Errorf("clock = %d, want 10", after.SlotTime.Clock)
	}
}
