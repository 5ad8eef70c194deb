package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/dosecare/dosecare-backend/internal/clients/openai"
	"github.com/dosecare/dosecare-backend/internal/logger"
	"github.com/dosecare/dosecare-backend/internal/repos"
	"github.com/dosecare/dosecare-backend/internal/types"
)

// MedicineResolver maps free-form recognized medicine names onto the catalog
// and derives the interaction and description data hanging off the match.
type MedicineResolver interface {
	Resolve(ctx context.Context, tx *gorm.DB, names []string) ([]*types.Medicine, error)
	FindInteractions(ctx context.Context, tx *gorm.DB, medicines []*types.Medicine) ([]*types.InteractionRule, error)
	RepresentativeCategory(ctx context.Context, medicines []*types.Medicine) (string, error)
	ComposeDescription(ctx context.Context, medicine *types.Medicine, rules []*types.InteractionRule) (string, error)
}

type medicineResolver struct {
	log          *logger.Logger
	llm          openai.Client
	medicineRepo repos.MedicineRepo
	ruleRepo     repos.InteractionRuleRepo
}

func NewMedicineResolver(
	log *logger.Logger,
	llm openai.Client,
	medicineRepo repos.MedicineRepo,
	ruleRepo repos.InteractionRuleRepo,
) MedicineResolver {
	return &medicineResolver{
		log:          log.With("service", "MedicineResolver"),
		llm:          llm,
		medicineRepo: medicineRepo,
		ruleRepo:     ruleRepo,
	}
}

var resolveSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"medicine_ids": map[string]any{
			"type":  "array",
			"items": map[string]any{"type": "string"},
		},
	},
	"required":             []string{"medicine_ids"},
	"additionalProperties": false,
}

// Resolve asks the LLM to match OCR-recognized names against the catalog.
// The result may be shorter than the input when a name has no plausible
// match, or longer when a combination drug maps to several entries.
func (r *medicineResolver) Resolve(ctx context.Context, tx *gorm.DB, names []string) ([]*types.Medicine, error) {
	if len(names) == 0 {
		return nil, nil
	}
	catalog, err := r.medicineRepo.GetAll(ctx, tx)
	if err != nil {
		return nil, fmt.Errorf("failed to load medicine catalog: %w", err)
	}

	type entry struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	}
	entries := make([]entry, 0, len(catalog))
	for _, m := range catalog {
		entries = append(entries, entry{ID: m.ID.String(), Name: m.Name})
	}
	catalogJSON, err := json.Marshal(entries)
	if err != nil {
		return nil, err
	}

	system := "You match recognized prescription medicine names against a catalog. " +
		"Return only ids present in the catalog. Skip names with no plausible match."
	user := fmt.Sprintf("Catalog:\n%s\n\nRecognized names:\n%s", catalogJSON, strings.Join(names, "\n"))

	out, err := r.llm.GenerateJSON(ctx, system, user, "medicine_match", resolveSchema)
	if err != nil {
		return nil, fmt.Errorf("medicine match failed: %w", err)
	}

	rawIDs, _ := out["medicine_ids"].([]any)
	ids := make([]uuid.UUID, 0, len(rawIDs))
	seen := map[uuid.UUID]bool{}
	for _, raw := range rawIDs {
		s, ok := raw.(string)
		if !ok {
			continue
		}
		id, err := uuid.Parse(s)
		if err != nil || seen[id] {
			continue
		}
		seen[id] = true
		ids = append(ids, id)
	}
	if len(ids) == 0 {
		return nil, nil
	}

	medicines, err := r.medicineRepo.GetByIDs(ctx, tx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load matched medicines: %w", err)
	}
	return medicines, nil
}

// FindInteractions bulk-matches the rule table against everything the
// medicines expose: exact names, classification labels, and individual
// ingredient tokens.
func (r *medicineResolver) FindInteractions(ctx context.Context, tx *gorm.DB, medicines []*types.Medicine) ([]*types.InteractionRule, error) {
	if len(medicines) == 0 {
		return nil, nil
	}
	var names, ingredients, classifications []string
	for _, m := range medicines {
		names = append(names, m.Name)
		if m.Classification != "" {
			classifications = append(classifications, m.Classification)
		}
		ingredients = append(ingredients, types.SplitIngredients(m.Ingredient)...)
	}
	rules, err := r.ruleRepo.FindMatching(ctx, tx, names, ingredients, classifications)
	if err != nil {
		return nil, fmt.Errorf("failed to load interaction rules: %w", err)
	}
	return rules, nil
}

// RepresentativeCategory condenses the distinct classifications into one
// short label for the whole prescription.
func (r *medicineResolver) RepresentativeCategory(ctx context.Context, medicines []*types.Medicine) (string, error) {
	distinct := distinctClassifications(medicines)
	if len(distinct) == 0 {
		return "", nil
	}
	if len(distinct) == 1 {
		return distinct[0], nil
	}
	system := "You label prescriptions. Given drug classifications, answer with one short representative category label. Answer with the label only."
	out, err := r.llm.GenerateText(ctx, system, strings.Join(distinct, ", "))
	if err != nil {
		return "", fmt.Errorf("category summarization failed: %w", err)
	}
	return strings.TrimSpace(out), nil
}

// ComposeDescription turns the catalog info plus matching cautions into the
// guidance text read to the user at reminder time.
func (r *medicineResolver) ComposeDescription(ctx context.Context, medicine *types.Medicine, rules []*types.InteractionRule) (string, error) {
	tokens := types.SplitIngredients(medicine.Ingredient)

	var warnings []string
	for _, rule := range rules {
		if !rule.Matches(medicine, tokens) {
			continue
		}
		subject := rule.MatchIngredient
		if rule.Material != nil {
			subject = rule.Material.Name
		}
		warnings = append(warnings, fmt.Sprintf("'%s' caution: %s", subject, rule.Information))
	}

	system := "You write short spoken medication guidance for elderly patients. Plain words, a few sentences, mention each caution."
	user := fmt.Sprintf("Medicine: %s\nInformation: %s\nDescription: %s\nCautions:\n%s",
		medicine.Name, medicine.Information, medicine.Description, strings.Join(warnings, "\n"))

	out, err := r.llm.GenerateText(ctx, system, user)
	if err != nil {
		return "", fmt.Errorf("description composition failed: %w", err)
	}
	return strings.TrimSpace(out), nil
}

func distinctClassifications(medicines []*types.Medicine) []string {
	seen := map[string]bool{}
	var out []string
	for _, m := range medicines {
		c := strings.TrimSpace(m.Classification)
		if c == "" || seen[c] {
			continue
		}
		seen[c] = true
		out = append(out, c)
	}
	return out
}
