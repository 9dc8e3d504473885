// Package domain defines the core types and interfaces for the cooking
// assistant. All other packages depend on domain; domain depends on nothing.
package domain

import (
	"strings"
	"time"
)

// Difficulty is the author's rating of a recipe.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "Easy"
	DifficultyMedium Difficulty = "Medium"
	DifficultyHard   Difficulty = "Hard"
)

// ParseDifficulty matches a difficulty name case-insensitively.
func ParseDifficulty(s string) (Difficulty, bool) {
	for _, d := range []Difficulty{DifficultyEasy, DifficultyMedium, DifficultyHard} {
		if strings.EqualFold(string(d), strings.TrimSpace(s)) {
			return d, true
		}
	}
	return "", false
}

// Weight is the multiplier used for the complexity score.
func (d Difficulty) Weight() int {
	switch d {
	case DifficultyMedium:
		return 2
	case DifficultyHard:
		return 3
	default:
		return 1
	}
}

// Recipe represents a complete cooking recipe.
type Recipe struct {
	ID          string       `json:"id" yaml:"id"`
	Title       string       `json:"title" yaml:"title"`
	Difficulty  Difficulty   `json:"difficulty" yaml:"difficulty"`
	Ingredients []Ingredient `json:"ingredients" yaml:"ingredients"`
	Steps       []Step       `json:"steps" yaml:"steps"`
	IsFavorite  bool         `json:"isFavorite" yaml:"favorite"`
	CreatedAt   time.Time    `json:"createdAt" yaml:"-"`
	UpdatedAt   time.Time    `json:"updatedAt" yaml:"-"`
}

// RecipeSummary is a lightweight view of a recipe for listing.
type RecipeSummary struct {
	ID               string
	Title            string
	Difficulty       Difficulty
	TotalTimeMinutes int
	TotalIngredients int
	ComplexityScore  int
	IsFavorite       bool
}

// Ingredient represents a single ingredient with a measured quantity.
type Ingredient struct {
	ID       string  `json:"id" yaml:"id"`
	Name     string  `json:"name" yaml:"name"`
	Quantity float64 `json:"quantity" yaml:"quantity"`
	Unit     string  `json:"unit" yaml:"unit"`
}

// StepKind says what sort of action a step is.
type StepKind string

const (
	// StepInstruction is a manual step that works with ingredients.
	StepInstruction StepKind = "instruction"
	// StepCooking runs the appliance at a temperature and speed.
	StepCooking StepKind = "cooking"
)

// CookingSettings are the appliance settings of a cooking step.
type CookingSettings struct {
	TemperatureC int `json:"temperature" yaml:"temperature"`
	Speed        int `json:"speed" yaml:"speed"`
}

// Step represents a single timed step.
type Step struct {
	ID              string           `json:"id" yaml:"id"`
	Description     string           `json:"description" yaml:"description"`
	DurationMinutes int              `json:"durationMinutes" yaml:"duration_minutes"`
	Kind            StepKind         `json:"type" yaml:"kind"`
	Cooking         *CookingSettings `json:"cookingSettings,omitempty" yaml:"cooking,omitempty"`
	IngredientIDs   []string         `json:"ingredientIds,omitempty" yaml:"ingredients,omitempty"`
}

// DurationSec is the nominal length of the step in seconds.
func (s Step) DurationSec() int { return s.DurationMinutes * 60 }

// TotalDurationSec sums the nominal durations of all steps.
func (r *Recipe) TotalDurationSec() int {
	total := 0
	for _, s := range r.Steps {
		total += s.DurationSec()
	}
	return total
}

// TotalTimeMinutes sums the step durations in minutes.
func (r *Recipe) TotalTimeMinutes() int {
	total := 0
	for _, s := range r.Steps {
		total += s.DurationMinutes
	}
	return total
}

// ComplexityScore weighs the step count by difficulty.
func (r *Recipe) ComplexityScore() int {
	return r.Difficulty.Weight() * max(1, len(r.Steps))
}

// Summary returns the listing view of the recipe.
func (r *Recipe) Summary() RecipeSummary {
	return RecipeSummary{
		ID:               r.ID,
		Title:            r.Title,
		Difficulty:       r.Difficulty,
		TotalTimeMinutes: r.TotalTimeMinutes(),
		TotalIngredients: len(r.Ingredients),
		ComplexityScore:  r.ComplexityScore(),
		IsFavorite:       r.IsFavorite,
	}
}

// Ingredient looks up an ingredient by ID.
func (r *Recipe) Ingredient(id string) (Ingredient, bool) {
	for _, ing := range r.Ingredients {
		if ing.ID == id {
			return ing, true
		}
	}
	return Ingredient{}, false
}

// Clone returns a deep copy. Sessions keep a clone so later edits to the
// stored recipe never reach a running session.
func (r *Recipe) Clone() *Recipe {
	if r == nil {
		return nil
	}
	c := *r
	c.Ingredients = append([]Ingredient(nil), r.Ingredients...)
	c.Steps = make([]Step, len(r.Steps))
	for i, s := range r.Steps {
		if s.Cooking != nil {
			cs := *s.Cooking
			s.Cooking = &cs
		}
		s.IngredientIDs = append([]string(nil), s.IngredientIDs...)
		c.Steps[i] = s
	}
	return &c
}
