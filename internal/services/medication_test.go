package services

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/dosecare/dosecare-backend/internal/apperr"
	"github.com/dosecare/dosecare-backend/internal/clients/ocr"
	"github.com/dosecare/dosecare-backend/internal/parser"
	"github.com/dosecare/dosecare-backend/internal/types"
)

// fakeOCR hands back a canned recognition payload.
type fakeOCR struct {
	payload string
}

func (f *fakeOCR) Recognize(ctx context.Context, image []byte, filename, mode string) (string, error) {
	return f.payload, nil
}

// scriptedLLM resolves every prescription to the given catalog IDs and
// answers text prompts with a fixed line.
type scriptedLLM struct {
	medicineIDs []uuid.UUID
	text        string
}

func (f *scriptedLLM) GenerateJSON(ctx context.Context, system, user, schemaName string, schema map[string]any) (map[string]any, error) {
	ids := make([]any, 0, len(f.medicineIDs))
	for _, id := range f.medicineIDs {
		ids = append(ids, id.String())
	}
	return map[string]any{"medicine_ids": ids}, nil
}

func (f *scriptedLLM) GenerateText(ctx context.Context, system, user string) (string, error) {
	return f.text, nil
}

func (e *testEnv) medicationService(ocrClient ocr.Client, llm *scriptedLLM) MedicationService {
	resolver := NewMedicineResolver(e.log, llm, e.medicines, e.rules)
	return NewMedicationService(
		e.db, e.log, ocrClient, parser.New(e.log), resolver,
		e.scheduleBuilder(), e.quizGenerator(11), NewTTSService(e.log, nil),
		e.medications, e.items, e.cycles, e.reports, e.descriptions,
		e.eventKinds, e.alarmTimes, e.rules,
	)
}

// documentPayload builds the recognition shape for a prescription photo.
func documentPayload(t *testing.T, hospital string, meds []map[string]string) string {
	t.Helper()
	var cl []map[string]any
	cl = append(cl, map[string]any{"category": "institution name", "value": hospital})
	for _, m := range meds {
		cl = append(cl, map[string]any{
			"category": "prescribed medicine name",
			"value":    m["name"],
			"sub": []map[string]any{
				{"category": "daily dose count", "value": m["count"]},
				{"category": "total dose days", "value": m["days"]},
			},
		})
	}
	payload := map[string]any{
		"result": map[string]any{
			"images": []map[string]any{
				{"result": map[string]any{"cl": cl}},
			},
		},
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}
	return string(raw)
}

func TestRegister(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := env.newUser(t)

	glucodin := &types.Medicine{Name: "Glucodin", Classification: "antidiabetic", Ingredient: "metformin", Information: "take with food"}
	pressurex := &types.Medicine{Name: "Pressurex", Classification: "antihypertensive", Ingredient: "amlodipine"}
	env.mustCreate(t, glucodin)
	env.mustCreate(t, pressurex)

	grapefruit := &types.Material{Name: "grapefruit"}
	env.mustCreate(t, grapefruit)
	env.mustCreate(t, &types.InteractionRule{MaterialID: &grapefruit.ID, MatchIngredient: "amlodipine", Information: "raises blood levels"})

	payload := documentPayload(t, "Seoul Clinic", []map[string]string{
		{"name": "Glucodin", "count": "3", "days": "5"},
		{"name": "Pressurex", "count": "1", "days": "3"},
	})
	svc := env.medicationService(&fakeOCR{payload: payload},
		&scriptedLLM{medicineIDs: []uuid.UUID{glucodin.ID, pressurex.ID}, text: "diabetes"})

	result, err := svc.Register(ctx, user.ID, ocr.ModePrescription, []byte("img"), "rx.jpg")
	if err != nil {
		t.Fatalf("Register: %v", err)
	}

	if result.Hospital != "Seoul Clinic" {
		t.Errorf("hospital = %q", result.Hospital)
	}
	if result.Category != "diabetes" {
		t.Errorf("category = %q", result.Category)
	}
	// Glucodin prescribes the longest course, so its count drives the plan.
	if result.Taken != 3 {
		t.Errorf("taken = %d, want 3", result.Taken)
	}
	if len(result.Items) != 2 {
		t.Fatalf("items = %d, want 2", len(result.Items))
	}

	cycle, err := env.cycles.GetByMedicationID(ctx, nil, result.MedicationID)
	if err != nil || cycle == nil {
		t.Fatalf("cycle: %v", err)
	}
	if cycle.TotalCycle != 15 {
		t.Errorf("totalCycle = %d, want 3 doses over 5 days", cycle.TotalCycle)
	}

	alarmTimes, err := env.alarmTimes.GetByMedicationID(ctx, nil, result.MedicationID)
	if err != nil {
		t.Fatalf("alarm times: %v", err)
	}
	if len(alarmTimes) != 3 {
		t.Fatalf("alarm times = %d, want 3", len(alarmTimes))
	}
	wantSlots := []types.Slot{types.SlotBreakfast, types.SlotLunch, types.SlotDinner}
	for i, at := range alarmTimes {
		if at.SlotTime == nil || at.SlotTime.Slot != wantSlots[i] {
			t.Errorf("alarm %d slot = %+v, want %s", i, at.SlotTime, wantSlots[i])
		}
	}

	quizzes, err := env.quizzes.GetByMedicationID(ctx, nil, result.MedicationID)
	if err != nil {
		t.Fatalf("quizzes: %v", err)
	}
	if len(quizzes) != 2 {
		t.Errorf("quizzes = %d, want interaction + classification", len(quizzes))
	}

	report, err := env.reports.GetByMedicationID(ctx, nil, result.MedicationID)
	if err != nil || report == nil {
		t.Fatalf("report skeleton: %v", err)
	}

	kind, err := env.eventKinds.GetByName(ctx, nil, types.EventKindAICall)
	if err != nil || kind == nil {
		t.Fatalf("ai_call kind: %v", err)
	}
	script, err := env.descriptions.GetLatestByMedicationAndKind(ctx, nil, result.MedicationID, kind.ID)
	if err != nil || script == nil {
		t.Fatalf("call script: %v", err)
	}
}

func TestRegister_NoCatalogMatch(t *testing.T) {
	env := newTestEnv(t)
	user := env.newUser(t)

	payload := documentPayload(t, "Seoul Clinic", []map[string]string{
		{"name": "Unknownol", "count": "1", "days": "3"},
	})
	svc := env.medicationService(&fakeOCR{payload: payload}, &scriptedLLM{})

	_, err := svc.Register(context.Background(), user.ID, ocr.ModePrescription, []byte("img"), "rx.jpg")
	if !apperr.IsKind(err, apperr.KindNotFound) {
		t.Errorf("err = %v, want not found", err)
	}
}

func TestRegister_SingleMedicineCategoryFallback(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := env.newUser(t)

	// A medicine with no classification leaves nothing to name the category.
	plain := &types.Medicine{Name: "Plainol"}
	env.mustCreate(t, plain)

	payload := documentPayload(t, "Seoul Clinic", []map[string]string{
		{"name": "Plainol", "count": "1", "days": "3"},
	})
	svc := env.medicationService(&fakeOCR{payload: payload}, &scriptedLLM{medicineIDs: []uuid.UUID{plain.ID}})

	result, err := svc.Register(ctx, user.ID, ocr.ModePrescription, []byte("img"), "rx.jpg")
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if result.Category != FallbackCategory {
		t.Errorf("category = %q, want %q", result.Category, FallbackCategory)
	}
}

func TestListToday(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := env.newUser(t)
	svc := env.medicationService(&fakeOCR{}, &scriptedLLM{})

	now := time.Now().UTC()
	running := setupMedication(t, env, user, 1, 5, now)
	setupMedication(t, env, user, 1, 3, now.AddDate(0, 0, -10))

	all, err := svc.ListSummaries(ctx, user.ID)
	if err != nil {
		t.Fatalf("ListSummaries: %v", err)
	}
	if len(all) != 2 {
		t.Errorf("summaries = %d, want 2", len(all))
	}

	today, err := svc.ListToday(ctx, user.ID)
	if err != nil {
		t.Fatalf("ListToday: %v", err)
	}
	if len(today) != 1 || today[0].MedicationID != running.ID {
		t.Errorf("today = %+v, want only the running course", today)
	}
}

func TestGetDetail(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := env.newUser(t)
	svc := env.medicationService(&fakeOCR{}, &scriptedLLM{})

	medication := setupMedication(t, env, user, 1, 5, time.Now().UTC())
	medicine := &types.Medicine{Name: "Pressurex", Classification: "antihypertensive", Ingredient: "amlodipine"}
	env.mustCreate(t, medicine)
	env.mustCreate(t, &types.MedicationItem{MedicationID: medication.ID, MedicineID: medicine.ID, Description: "take in the morning"})

	grapefruit := &types.Material{Name: "grapefruit"}
	env.mustCreate(t, grapefruit)
	env.mustCreate(t, &types.InteractionRule{MaterialID: &grapefruit.ID, MatchIngredient: "amlodipine", Information: "raises blood levels"})

	detail, err := svc.GetDetail(ctx, user.ID, medication.ID)
	if err != nil {
		t.Fatalf("GetDetail: %v", err)
	}
	if len(detail.Items) != 1 {
		t.Fatalf("items = %d, want 1", len(detail.Items))
	}
	item := detail.Items[0]
	if item.Name != "Pressurex" || item.Description != "take in the morning" {
		t.Errorf("item = %+v", item)
	}
	if len(item.Materials) != 1 || item.Materials[0] != "grapefruit" {
		t.Errorf("materials = %v", item.Materials)
	}

	t.Run("foreign medication hidden", func(t *testing.T) {
		other := &types.User{Name: "Min", Birth: "1949-11-20", Phone: "010-8765-4321", IsActive: true}
		env.mustCreate(t, other)
		if _, err := svc.GetDetail(ctx, other.ID, medication.ID); !apperr.IsKind(err, apperr.KindNotFound) {
			t.Errorf("err = %v, want not found", err)
		}
	})
}

func TestGetCombination(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := env.newUser(t)
	svc := env.medicationService(&fakeOCR{}, &scriptedLLM{})

	medication := setupMedication(t, env, user, 2, 5, time.Now().UTC())

	dto, err := svc.GetCombination(ctx, user.ID, medication.ID)
	if err != nil {
		t.Fatalf("GetCombination: %v", err)
	}
	if dto.Taken != 2 || len(dto.Slots) != 2 {
		t.Fatalf("combination = %+v", dto)
	}
	if dto.Slots[0].Slot != types.SlotBreakfast || dto.Slots[1].Slot != types.SlotDinner {
		t.Errorf("slots = %+v", dto.Slots)
	}
}

func TestRenameCategory(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := env.newUser(t)
	svc := env.medicationService(&fakeOCR{}, &scriptedLLM{})

	medication := setupMedication(t, env, user, 1, 5, time.Now().UTC())

	if err := svc.RenameCategory(ctx, user.ID, medication.ID, "  "); !apperr.IsKind(err, apperr.KindValidation) {
		t.Errorf("blank: err = %v, want validation", err)
	}
	if err := svc.RenameCategory(ctx, user.ID, medication.ID, "a category name far beyond the limit"); !apperr.IsKind(err, apperr.KindValidation) {
		t.Errorf("too long: err = %v, want validation", err)
	}

	if err := svc.RenameCategory(ctx, user.ID, medication.ID, "heart"); err != nil {
		t.Fatalf("RenameCategory: %v", err)
	}
	saved, err := env.medications.GetByID(ctx, nil, medication.ID)
	if err != nil {
		t.Fatalf("load medication: %v", err)
	}
	if saved.Category != "heart" {
		t.Errorf("category = %q", saved.Category)
	}
}
