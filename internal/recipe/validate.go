package recipe

import (
	"fmt"
	"strings"

	"github.com/hammamikhairi/stepchef/internal/domain"
)

// Builder limits.
const (
	MinTitleLen    = 3
	MinTemperature = 40
	MaxTemperature = 200
	MinSpeed       = 1
	MaxSpeed       = 5
)

// Validate checks a recipe against the builder rules and returns the first
// broken one as a *domain.ValidationError.
func Validate(r *domain.Recipe) error {
	if r == nil {
		return invalid("", "recipe is required")
	}
	if len([]rune(strings.TrimSpace(r.Title))) < MinTitleLen {
		return invalid("title", fmt.Sprintf("must be at least %d characters", MinTitleLen))
	}
	if r.Difficulty != "" {
		if _, ok := domain.ParseDifficulty(string(r.Difficulty)); !ok {
			return invalid("difficulty", fmt.Sprintf("unknown difficulty %q", r.Difficulty))
		}
	}
	if len(r.Ingredients) == 0 {
		return invalid("ingredients", "add at least one ingredient")
	}
	if len(r.Steps) == 0 {
		return invalid("steps", "add at least one step")
	}

	seen := make(map[string]bool, len(r.Ingredients))
	for i, ing := range r.Ingredients {
		field := fmt.Sprintf("ingredients[%d]", i)
		if strings.TrimSpace(ing.Name) == "" {
			return invalid(field, "name is required")
		}
		if strings.TrimSpace(ing.Unit) == "" {
			return invalid(field, "unit is required")
		}
		if ing.Quantity <= 0 {
			return invalid(field, "quantity must be greater than 0")
		}
		key := fmt.Sprintf("%s|%g|%s",
			strings.ToLower(strings.TrimSpace(ing.Name)), ing.Quantity,
			strings.ToLower(strings.TrimSpace(ing.Unit)))
		if seen[key] {
			return invalid(field, fmt.Sprintf("%s is already in the list", ing.Name))
		}
		seen[key] = true
	}

	for i, step := range r.Steps {
		if err := validateStep(r, i, step); err != nil {
			return err
		}
	}
	return nil
}

func validateStep(r *domain.Recipe, i int, step domain.Step) error {
	field := fmt.Sprintf("steps[%d]", i)
	if strings.TrimSpace(step.Description) == "" {
		return invalid(field, "description is required")
	}
	if step.DurationMinutes <= 0 {
		return invalid(field, "duration must be greater than 0")
	}

	switch step.Kind {
	case domain.StepCooking:
		c := step.Cooking
		if c == nil {
			return invalid(field, "cooking settings are required")
		}
		if c.TemperatureC < MinTemperature || c.TemperatureC > MaxTemperature {
			return invalid(field, fmt.Sprintf("temperature must be between %d and %d", MinTemperature, MaxTemperature))
		}
		if c.Speed < MinSpeed || c.Speed > MaxSpeed {
			return invalid(field, fmt.Sprintf("speed must be between %d and %d", MinSpeed, MaxSpeed))
		}
	case domain.StepInstruction:
		if len(step.IngredientIDs) == 0 {
			return invalid(field, "select at least one ingredient")
		}
		for _, id := range step.IngredientIDs {
			if _, ok := r.Ingredient(id); !ok {
				return invalid(field, fmt.Sprintf("unknown ingredient %q", id))
			}
		}
	default:
		return invalid(field, fmt.Sprintf("unknown step kind %q", step.Kind))
	}
	return nil
}

func invalid(field, msg string) error {
	return &domain.ValidationError{Field: field, Message: msg}
}
