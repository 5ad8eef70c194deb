package services

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"github.com/dosecare/dosecare-backend/internal/types"
)

func seedQuizCatalog(t *testing.T, env *testEnv) (medicines []*types.Medicine, rules []*types.InteractionRule) {
	t.Helper()

	meds := []*types.Medicine{
		{Name: "Glucodin", Classification: "antidiabetic", Ingredient: "metformin, evogliptin"},
		{Name: "Pressurex", Classification: "antihypertensive", Ingredient: "amlodipine"},
		{Name: "Sleepwell", Classification: "sedative", Ingredient: "zolpidem"},
	}
	for _, m := range meds {
		env.mustCreate(t, m)
	}

	materials := []*types.Material{
		{Name: "alcohol"}, {Name: "grapefruit"}, {Name: "caffeine"},
		{Name: "milk"}, {Name: "vitamin K"},
	}
	for _, m := range materials {
		env.mustCreate(t, m)
	}

	grapefruit := materials[1]
	alcohol := materials[0]
	ruleRows := []*types.InteractionRule{
		{MaterialID: &grapefruit.ID, Material: grapefruit, MatchIngredient: "amlodipine", Information: "raises blood levels"},
		{MaterialID: &alcohol.ID, Material: alcohol, MatchClassification: "sedative", Information: "compounds drowsiness"},
		{MaterialID: &alcohol.ID, Material: alcohol, MatchName: "Glucodin", Information: "risk of lactic acidosis"},
	}
	for _, r := range ruleRows {
		rule := *r
		rule.Material = nil
		env.mustCreate(t, &rule)
	}
	return meds, ruleRows
}

func TestGenerate_InteractionAndClassification(t *testing.T) {
	env := newTestEnv(t)
	gen := env.quizGenerator(1)
	ctx := context.Background()
	user := env.newUser(t)

	meds, rules := seedQuizCatalog(t, env)
	combo, err := env.combos.GetByFlags(ctx, nil, true, false, false, false)
	if err != nil {
		t.Fatalf("combo: %v", err)
	}
	medication := &types.Medication{UserID: user.ID, Hospital: "h", Category: "blood pressure", Taken: 1, AlarmComboID: combo.ID}
	env.mustCreate(t, medication)

	quizzes, err := gen.Generate(ctx, nil, medication.ID, "blood pressure", meds[:2], rules)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if len(quizzes) != 2 {
		t.Fatalf("quizzes = %d, want interaction + classification", len(quizzes))
	}
	if quizzes[0].Type != types.QuizInteraction || quizzes[1].Type != types.QuizClassification {
		t.Fatalf("quiz types = %s, %s", quizzes[0].Type, quizzes[1].Type)
	}

	// Glucodin and Pressurex both match rules carrying a material, but the
	// same material only appears once among the correct answers.
	interactionOpts, err := env.quizOptions.GetByQuizID(ctx, nil, quizzes[0].ID)
	if err != nil {
		t.Fatalf("options: %v", err)
	}
	correct := map[string]bool{}
	for _, o := range interactionOpts {
		if o.IsCorrect {
			if correct[o.Content] {
				t.Errorf("duplicate correct option %q", o.Content)
			}
			correct[o.Content] = true
		}
	}
	if !correct["grapefruit"] || !correct["alcohol"] || len(correct) != 2 {
		t.Errorf("correct materials = %v", correct)
	}
	for _, o := range interactionOpts {
		if !o.IsCorrect && correct[o.Content] {
			t.Errorf("decoy %q overlaps a correct answer", o.Content)
		}
	}

	classOpts, err := env.quizOptions.GetByQuizID(ctx, nil, quizzes[1].ID)
	if err != nil {
		t.Fatalf("options: %v", err)
	}
	classCorrect := map[string]bool{}
	for _, o := range classOpts {
		if o.IsCorrect {
			classCorrect[o.Content] = true
		} else if o.Content == "antidiabetic" || o.Content == "antihypertensive" {
			t.Errorf("decoy %q is a prescribed classification", o.Content)
		}
	}
	if !classCorrect["antidiabetic"] || !classCorrect["antihypertensive"] || len(classCorrect) != 2 {
		t.Errorf("correct classifications = %v", classCorrect)
	}
}

func TestGenerate_SkipsInteractionQuizWithoutMaterials(t *testing.T) {
	env := newTestEnv(t)
	gen := env.quizGenerator(2)
	ctx := context.Background()
	user := env.newUser(t)

	meds, _ := seedQuizCatalog(t, env)
	combo, err := env.combos.GetByFlags(ctx, nil, true, false, false, false)
	if err != nil {
		t.Fatalf("combo: %v", err)
	}
	medication := &types.Medication{UserID: user.ID, Hospital: "h", Category: "diabetes", Taken: 1, AlarmComboID: combo.ID}
	env.mustCreate(t, medication)

	// A rule without a material cannot seed answers even when it matches.
	rules := []*types.InteractionRule{
		{MatchClassification: "antidiabetic", Information: "monitor blood sugar"},
	}

	quizzes, err := gen.Generate(ctx, nil, medication.ID, "diabetes", meds[:1], rules)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if len(quizzes) != 1 || quizzes[0].Type != types.QuizClassification {
		t.Fatalf("quizzes = %+v, want classification only", quizzes)
	}

	stored, err := env.quizzes.GetByMedicationID(ctx, nil, medication.ID)
	if err != nil {
		t.Fatalf("load quizzes: %v", err)
	}
	if len(stored) != 1 {
		t.Errorf("stored quizzes = %d, want 1", len(stored))
	}
}

func TestGenerate_DecoyCountCapped(t *testing.T) {
	env := newTestEnv(t)
	gen := env.quizGenerator(3)
	ctx := context.Background()
	user := env.newUser(t)

	meds, rules := seedQuizCatalog(t, env)

	// Grow the material catalog well past the decoy budget.
	for _, name := range []string{"spinach", "cheese", "tea", "soda", "kimchi", "ginger", "honey"} {
		env.mustCreate(t, &types.Material{ID: uuid.New(), Name: name})
	}

	combo, err := env.combos.GetByFlags(ctx, nil, true, false, false, false)
	if err != nil {
		t.Fatalf("combo: %v", err)
	}
	medication := &types.Medication{UserID: user.ID, Hospital: "h", Category: "sleep", Taken: 1, AlarmComboID: combo.ID}
	env.mustCreate(t, medication)

	quizzes, err := gen.Generate(ctx, nil, medication.ID, "sleep", meds[2:], rules)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	opts, err := env.quizOptions.GetByQuizID(ctx, nil, quizzes[0].ID)
	if err != nil {
		t.Fatalf("options: %v", err)
	}
	decoys := 0
	for _, o := range opts {
		if !o.IsCorrect {
			decoys++
		}
	}
	if decoys > maxQuizDecoys {
		t.Errorf("decoys = %d, want at most %d", decoys, maxQuizDecoys)
	}
}
