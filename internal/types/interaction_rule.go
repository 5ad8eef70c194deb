package types

import (
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// InteractionRule flags a caution for medicines matched by exact name, exact
// classification, or a single ingredient token. MaterialID is optional; rules
// like "alcohol" carry only an ingredient.
type InteractionRule struct {
	ID         uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	MaterialID *uuid.UUID `gorm:"type:uuid" json:"material_id,omitempty"`
	Material   *Material  `gorm:"foreignKey:MaterialID;references:ID" json:"material,omitempty"`

	MatchName           string `gorm:"column:match_name;index" json:"match_name,omitempty"`
	MatchIngredient     string `gorm:"column:match_ingredient;index" json:"match_ingredient,omitempty"`
	MatchClassification string `gorm:"column:match_classification;index" json:"match_classification,omitempty"`

	Information string `gorm:"column:information;not null" json:"information"`
}

func (InteractionRule) TableName() string { return "interaction_rule" }

func (r *InteractionRule) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

// SplitIngredients splits a comma-joined ingredient list into trimmed,
// non-empty tokens.
func SplitIngredients(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	tokens := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			tokens = append(tokens, t)
		}
	}
	return tokens
}

// Matches reports whether the rule applies to the medicine: name equality,
// classification equality, or the rule ingredient appearing as a distinct
// comma-separated token of the medicine's ingredient list.
func (r *InteractionRule) Matches(med *Medicine, medTokens []string) bool {
	if r.MatchName != "" && r.MatchName == med.Name {
		return true
	}
	if r.MatchClassification != "" && r.MatchClassification == med.Classification {
		return true
	}
	if r.MatchIngredient != "" {
		for _, tok := range medTokens {
			if tok == r.MatchIngredient {
				return true
			}
		}
	}
	return false
}
