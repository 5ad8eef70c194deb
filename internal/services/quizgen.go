package services

import (
	"context"
	"fmt"
	"math/rand"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/dosecare/dosecare-backend/internal/logger"
	"github.com/dosecare/dosecare-backend/internal/repos"
	"github.com/dosecare/dosecare-backend/internal/types"
)

const maxQuizDecoys = 5

// QuizGenerator builds the recall quizzes attached to a medication at
// registration time. The rand source is injected so tests can seed it.
type QuizGenerator interface {
	Generate(ctx context.Context, tx *gorm.DB, medicationID uuid.UUID, category string, medicines []*types.Medicine, rules []*types.InteractionRule) ([]types.Quiz, error)
}

type quizGenerator struct {
	log            *logger.Logger
	rng            *rand.Rand
	quizRepo       repos.QuizRepo
	quizOptionRepo repos.QuizOptionRepo
	medicineRepo   repos.MedicineRepo
	materialRepo   repos.MaterialRepo
}

func NewQuizGenerator(
	log *logger.Logger,
	rng *rand.Rand,
	quizRepo repos.QuizRepo,
	quizOptionRepo repos.QuizOptionRepo,
	medicineRepo repos.MedicineRepo,
	materialRepo repos.MaterialRepo,
) QuizGenerator {
	return &quizGenerator{
		log:            log.With("service", "QuizGenerator"),
		rng:            rng,
		quizRepo:       quizRepo,
		quizOptionRepo: quizOptionRepo,
		medicineRepo:   medicineRepo,
		materialRepo:   materialRepo,
	}
}

func (g *quizGenerator) Generate(ctx context.Context, tx *gorm.DB, medicationID uuid.UUID, category string, medicines []*types.Medicine, rules []*types.InteractionRule) ([]types.Quiz, error) {
	var quizzes []types.Quiz

	interaction, err := g.interactionQuiz(ctx, tx, medicationID, category, medicines, rules)
	if err != nil {
		return nil, err
	}
	if interaction != nil {
		quizzes = append(quizzes, *interaction)
	}

	classification, err := g.classificationQuiz(ctx, tx, medicationID, category, medicines)
	if err != nil {
		return nil, err
	}
	quizzes = append(quizzes, *classification)

	return quizzes, nil
}

// interactionQuiz asks which materials clash with the prescription. Returns
// nil without error when no matching rule carries a material; there is
// nothing to quiz in that case.
func (g *quizGenerator) interactionQuiz(ctx context.Context, tx *gorm.DB, medicationID uuid.UUID, category string, medicines []*types.Medicine, rules []*types.InteractionRule) (*types.Quiz, error) {
	tokensByMedicine := make([][]string, len(medicines))
	for i, m := range medicines {
		tokensByMedicine[i] = types.SplitIngredients(m.Ingredient)
	}

	seen := map[string]bool{}
	var correct []string
	for _, rule := range rules {
		if rule.Material == nil {
			continue
		}
		matched := false
		for i, m := range medicines {
			if rule.Matches(m, tokensByMedicine[i]) {
				matched = true
				break
			}
		}
		if !matched || seen[rule.Material.Name] {
			continue
		}
		seen[rule.Material.Name] = true
		correct = append(correct, rule.Material.Name)
	}
	if len(correct) == 0 {
		return nil, nil
	}

	decoys, err := g.materialRepo.RandomNamesNotIn(ctx, tx, correct, maxQuizDecoys)
	if err != nil {
		return nil, fmt.Errorf("failed to sample decoy materials: %w", err)
	}

	quiz := &types.Quiz{
		MedicationID: medicationID,
		Type:         types.QuizInteraction,
		Question:     fmt.Sprintf("Which of these should you avoid while taking your %s medication?", category),
	}
	if err := g.quizRepo.Create(ctx, tx, quiz); err != nil {
		return nil, fmt.Errorf("failed to create interaction quiz: %w", err)
	}
	if err := g.createOptions(ctx, tx, quiz.ID, correct, decoys); err != nil {
		return nil, err
	}
	return quiz, nil
}

// classificationQuiz asks which drug classes the prescription contains. It is
// always created, even when every classification is blank.
func (g *quizGenerator) classificationQuiz(ctx context.Context, tx *gorm.DB, medicationID uuid.UUID, category string, medicines []*types.Medicine) (*types.Quiz, error) {
	correct := distinctClassifications(medicines)

	decoys, err := g.medicineRepo.RandomClassificationsNotIn(ctx, tx, correct, maxQuizDecoys)
	if err != nil {
		return nil, fmt.Errorf("failed to sample decoy classifications: %w", err)
	}

	quiz := &types.Quiz{
		MedicationID: medicationID,
		Type:         types.QuizClassification,
		Question:     fmt.Sprintf("Which kinds of medicine are in your %s prescription?", category),
	}
	if err := g.quizRepo.Create(ctx, tx, quiz); err != nil {
		return nil, fmt.Errorf("failed to create classification quiz: %w", err)
	}
	if err := g.createOptions(ctx, tx, quiz.ID, correct, decoys); err != nil {
		return nil, err
	}
	return quiz, nil
}

func (g *quizGenerator) createOptions(ctx context.Context, tx *gorm.DB, quizID uuid.UUID, correct, decoys []string) error {
	options := make([]types.QuizOption, 0, len(correct)+len(decoys))
	for _, c := range correct {
		options = append(options, types.QuizOption{QuizID: quizID, Content: c, IsCorrect: true})
	}
	for _, d := range decoys {
		options = append(options, types.QuizOption{QuizID: quizID, Content: d, IsCorrect: false})
	}
	g.rng.Shuffle(len(options), func(i, j int) {
		options[i], options[j] = options[j], options[i]
	})
	if err := g.quizOptionRepo.CreateBatch(ctx, tx, options); err != nil {
		return fmt.Errorf("failed to create quiz options: %w", err)
	}
	return nil
}
