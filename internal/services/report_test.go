package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/dosecare/dosecare-backend/internal/apperr"
	"github.com/dosecare/dosecare-backend/internal/types"
)

type fakeLLM struct {
	text string
	err  error
}

func (f *fakeLLM) GenerateJSON(ctx context.Context, system, user, schemaName string, schema map[string]any) (map[string]any, error) {
	return nil, errors.New("not used")
}

func (f *fakeLLM) GenerateText(ctx context.Context, system, user string) (string, error) {
	return f.text, f.err
}

func (e *testEnv) reportService(llm *fakeLLM) *reportService {
	svc := NewReportService(e.db, e.log, llm, e.medications, e.cycles, e.reports, e.events, e.items, e.conditions)
	return svc.(*reportService)
}

// seedDayEvents writes count reminder events for one day, completing the
// first completed of them on that same day.
func seedDayEvents(t *testing.T, env *testEnv, medication *types.Medication, day time.Time, count, completed int) {
	t.Helper()
	ctx := context.Background()

	kind, err := env.eventKinds.GetByName(ctx, nil, types.EventKindAlarm)
	if err != nil || kind == nil {
		t.Fatalf("alarm kind: %v", err)
	}
	description := &types.Description{MedicationID: medication.ID, EventKindID: kind.ID, Text: "time to take it"}
	env.mustCreate(t, description)

	alarmTimes, err := env.alarmTimes.GetByMedicationID(ctx, nil, medication.ID)
	if err != nil {
		t.Fatalf("alarm times: %v", err)
	}
	if count > len(alarmTimes) {
		t.Fatalf("count %d exceeds %d alarm times", count, len(alarmTimes))
	}
	for i := 0; i < count; i++ {
		event := &types.Event{
			MedicationID:  medication.ID,
			AlarmTimeID:   alarmTimes[i].ID,
			EventKindID:   kind.ID,
			DescriptionID: description.ID,
			Status:        types.EventPublished,
			EventDate:     datatypes.Date(truncateDay(day)),
		}
		if i < completed {
			done := truncateDay(day).Add(12 * time.Hour)
			event.Status = types.EventCompleted
			event.UpdatedAt = &done
		}
		env.mustCreate(t, event)
	}
}

func TestSummary_Colors(t *testing.T) {
	env := newTestEnv(t)
	svc := env.reportService(&fakeLLM{})
	ctx := context.Background()
	user := env.newUser(t)

	start := truncateDay(time.Now().UTC()).AddDate(0, 0, -3)
	medication := setupMedication(t, env, user, 2, 5, start)

	seedDayEvents(t, env, medication, start, 2, 2)                  // everything taken
	seedDayEvents(t, env, medication, start.AddDate(0, 0, 1), 2, 1) // half taken
	seedDayEvents(t, env, medication, start.AddDate(0, 0, 2), 2, 0) // nothing taken
	// day 4 has no events at all

	colors, err := svc.Summary(ctx, user.ID, medication.ID)
	if err != nil {
		t.Fatalf("Summary: %v", err)
	}

	want := map[string]string{
		formatDate(start):                  ColorGreen,
		formatDate(start.AddDate(0, 0, 1)): ColorYellow,
		formatDate(start.AddDate(0, 0, 2)): ColorRed,
	}
	if len(colors) != len(want) {
		t.Errorf("colors = %v, want %v", colors, want)
	}
	for day, color := range want {
		if colors[day] != color {
			t.Errorf("day %s = %q, want %q", day, colors[day], color)
		}
	}
	if _, ok := colors[formatDate(start.AddDate(0, 0, 3))]; ok {
		t.Errorf("eventless day must have no entry")
	}
}

func TestSummary_LateCompletionStaysOnItsDay(t *testing.T) {
	env := newTestEnv(t)
	svc := env.reportService(&fakeLLM{})
	ctx := context.Background()
	user := env.newUser(t)

	day1 := truncateDay(time.Now().UTC()).AddDate(0, 0, -2)
	day2 := day1.AddDate(0, 0, 1)
	medication := setupMedication(t, env, user, 1, 2, day1)

	kind, err := env.eventKinds.GetByName(ctx, nil, types.EventKindAlarm)
	if err != nil || kind == nil {
		t.Fatalf("alarm kind: %v", err)
	}
	description := &types.Description{MedicationID: medication.ID, EventKindID: kind.ID, Text: "time to take it"}
	env.mustCreate(t, description)
	alarmTimes, err := env.alarmTimes.GetByMedicationID(ctx, nil, medication.ID)
	if err != nil || len(alarmTimes) == 0 {
		t.Fatalf("alarm times: %v", err)
	}

	// Both events were completed on day 2; day 1's event was taken a day late.
	lateDone := day2.Add(9 * time.Hour)
	onTimeDone := day2.Add(12 * time.Hour)
	env.mustCreate(t, &types.Event{
		MedicationID:  medication.ID,
		AlarmTimeID:   alarmTimes[0].ID,
		EventKindID:   kind.ID,
		DescriptionID: description.ID,
		Status:        types.EventCompleted,
		EventDate:     datatypes.Date(day1),
		UpdatedAt:     &lateDone,
	})
	env.mustCreate(t, &types.Event{
		MedicationID:  medication.ID,
		AlarmTimeID:   alarmTimes[0].ID,
		EventKindID:   kind.ID,
		DescriptionID: description.ID,
		Status:        types.EventCompleted,
		EventDate:     datatypes.Date(day2),
		UpdatedAt:     &onTimeDone,
	})

	colors, err := svc.Summary(ctx, user.ID, medication.ID)
	if err != nil {
		t.Fatalf("Summary: %v", err)
	}
	if colors[formatDate(day1)] != ColorRed {
		t.Errorf("day1 = %q, want %q for a completion recorded the next day", colors[formatDate(day1)], ColorRed)
	}
	if colors[formatDate(day2)] != ColorGreen {
		t.Errorf("day2 = %q, want %q, late day1 completion must not bleed in", colors[formatDate(day2)], ColorGreen)
	}
}

func TestSummary_UnknownMedication(t *testing.T) {
	env := newTestEnv(t)
	svc := env.reportService(&fakeLLM{})
	user := env.newUser(t)

	if _, err := svc.Summary(context.Background(), user.ID, uuid.New()); !apperr.IsKind(err, apperr.KindNotFound) {
		t.Errorf("err = %v, want not found", err)
	}
}

func TestSummary_OtherUsersMedicationHidden(t *testing.T) {
	env := newTestEnv(t)
	svc := env.reportService(&fakeLLM{})
	ctx := context.Background()
	owner := env.newUser(t)
	other := &types.User{Name: "Min", Birth: "1949-11-20", Phone: "010-8765-4321", IsActive: true}
	env.mustCreate(t, other)

	medication := setupMedication(t, env, owner, 1, 5, time.Now().UTC())

	if _, err := svc.Summary(ctx, other.ID, medication.ID); !apperr.IsKind(err, apperr.KindNotFound) {
		t.Errorf("err = %v, want not found for a foreign medication", err)
	}
}

func TestList(t *testing.T) {
	env := newTestEnv(t)
	svc := env.reportService(&fakeLLM{})
	ctx := context.Background()
	user := env.newUser(t)

	start := truncateDay(time.Now().UTC())
	medication := setupMedication(t, env, user, 1, 3, start)
	cycle, err := env.cycles.GetByMedicationID(ctx, nil, medication.ID)
	if err != nil {
		t.Fatalf("cycle: %v", err)
	}
	env.mustCreate(t, &types.Report{MedicationID: medication.ID, CycleID: cycle.ID})

	items, err := svc.List(ctx, user.ID)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("items = %d, want 1", len(items))
	}
	if items[0].MedicationID != medication.ID || items[0].Hospital != "Seoul Clinic" {
		t.Errorf("item = %+v", items[0])
	}
	if items[0].StartDate != formatDate(start) || items[0].EndDate != formatDate(start.AddDate(0, 0, 2)) {
		t.Errorf("window = %s..%s", items[0].StartDate, items[0].EndDate)
	}
}

func TestDetail(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := env.newUser(t)

	// A three-day course that ended last week.
	start := truncateDay(time.Now().UTC()).AddDate(0, 0, -9)
	medication := setupMedication(t, env, user, 1, 3, start)
	cycle, err := env.cycles.GetByMedicationID(ctx, nil, medication.ID)
	if err != nil {
		t.Fatalf("cycle: %v", err)
	}
	env.mustCreate(t, &types.Report{MedicationID: medication.ID, CycleID: cycle.ID})

	medicine := &types.Medicine{Name: "Pressurex", Classification: "antihypertensive"}
	env.mustCreate(t, medicine)
	env.mustCreate(t, &types.MedicationItem{MedicationID: medication.ID, MedicineID: medicine.ID})

	nausea := &types.Effect{Name: "nausea"}
	env.mustCreate(t, nausea)
	env.mustCreate(t, &types.Condition{UserID: user.ID, EffectID: nausea.ID, RecordedAt: start.Add(30 * time.Hour)})
	env.mustCreate(t, &types.Condition{UserID: user.ID, EffectID: nausea.ID, RecordedAt: start.Add(40 * time.Hour)})

	t.Run("generates and persists the summary", func(t *testing.T) {
		svc := env.reportService(&fakeLLM{text: "You kept to your schedule well."})
		detail, err := svc.Detail(ctx, user.ID, medication.ID)
		if err != nil {
			t.Fatalf("Detail: %v", err)
		}
		if detail.Description != "You kept to your schedule well." {
			t.Errorf("description = %q", detail.Description)
		}
		if len(detail.Medicines) != 1 || detail.Medicines[0] != "Pressurex" {
			t.Errorf("medicines = %v", detail.Medicines)
		}
		if len(detail.Weekly) != 1 {
			t.Fatalf("weekly windows = %d, want 1 for a three-day course", len(detail.Weekly))
		}
		if detail.Weekly[0].Counts["nausea"] != 2 {
			t.Errorf("nausea count = %d, want 2", detail.Weekly[0].Counts["nausea"])
		}
		if detail.TotalCycle != 3 {
			t.Errorf("totalCycle = %d, want 3", detail.TotalCycle)
		}

		// A later call never touches the LLM again.
		failing := env.reportService(&fakeLLM{err: errors.New("backend down")})
		again, err := failing.Detail(ctx, user.ID, medication.ID)
		if err != nil {
			t.Fatalf("Detail: %v", err)
		}
		if again.Description != "You kept to your schedule well." {
			t.Errorf("persisted description = %q", again.Description)
		}
	})
}

func TestDetail_SummaryFailureDegrades(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := env.newUser(t)

	start := truncateDay(time.Now().UTC()).AddDate(0, 0, -9)
	medication := setupMedication(t, env, user, 1, 3, start)
	cycle, err := env.cycles.GetByMedicationID(ctx, nil, medication.ID)
	if err != nil {
		t.Fatalf("cycle: %v", err)
	}
	env.mustCreate(t, &types.Report{MedicationID: medication.ID, CycleID: cycle.ID})

	svc := env.reportService(&fakeLLM{err: errors.New("backend down")})
	detail, err := svc.Detail(ctx, user.ID, medication.ID)
	if err != nil {
		t.Fatalf("Detail: %v", err)
	}
	if detail.Description != ReportApology {
		t.Errorf("description = %q, want the apology", detail.Description)
	}

	// The apology is never persisted, so a recovered backend fills the row.
	report, err := env.reports.GetByMedicationID(ctx, nil, medication.ID)
	if err != nil {
		t.Fatalf("report: %v", err)
	}
	if report.Description != "" {
		t.Errorf("persisted description = %q, want empty", report.Description)
	}
}

func TestDetail_BeforeCycleEnds(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := env.newUser(t)

	start := truncateDay(time.Now().UTC())
	medication := setupMedication(t, env, user, 1, 7, start)
	cycle, err := env.cycles.GetByMedicationID(ctx, nil, medication.ID)
	if err != nil {
		t.Fatalf("cycle: %v", err)
	}
	env.mustCreate(t, &types.Report{MedicationID: medication.ID, CycleID: cycle.ID})

	svc := env.reportService(&fakeLLM{text: "should not be asked yet"})
	detail, err := svc.Detail(ctx, user.ID, medication.ID)
	if err != nil {
		t.Fatalf("Detail: %v", err)
	}
	if detail.Description != "" {
		t.Errorf("description = %q, want empty while the cycle is running", detail.Description)
	}
}
