package recipe

import (
	"context"
	"errors"
	"fmt"

	"github.com/hammamikhairi/stepchef/internal/domain"
)

// Seed stores the built-in recipes that are not already present and
// returns how many were added.
func (s *Store) Seed(ctx context.Context) (int, error) {
	added := 0
	for _, r := range Builtin() {
		err := s.Create(ctx, r)
		switch {
		case err == nil:
			added++
		case errors.Is(err, domain.ErrAlreadyExists):
			s.log.Debug("seed recipe %s already present", r.ID)
		default:
			return added, fmt.Errorf("seeding %s: %w", r.ID, err)
		}
	}
	s.log.Debug("seeded %d recipes", added)
	return added, nil
}

// Builtin returns fresh copies of the built-in recipes.
func Builtin() []*domain.Recipe {
	return []*domain.Recipe{
		vegetableStirFry(),
		chickenAlfredo(),
	}
}

func chickenAlfredo() *domain.Recipe {
	return &domain.Recipe{
		ID:         "chicken-alfredo",
		Title:      "Chicken Alfredo",
		Difficulty: domain.DifficultyMedium,
		Ingredients: []domain.Ingredient{
			{ID: "ca-spaghetti", Name: "spaghetti", Quantity: 250, Unit: "grams"},
			{ID: "ca-chicken", Name: "chicken breast", Quantity: 2, Unit: "pieces"},
			{ID: "ca-creme", Name: "creme fraiche", Quantity: 1, Unit: "cup"},
			{ID: "ca-gruyere", Name: "gruyere cheese", Quantity: 1, Unit: "cup"},
			{ID: "ca-margarine", Name: "margarine", Quantity: 3, Unit: "tablespoons"},
			{ID: "ca-garlic", Name: "garlic", Quantity: 4, Unit: "cloves"},
			{ID: "ca-oil", Name: "olive oil", Quantity: 1, Unit: "tablespoon"},
		},
		Steps: []domain.Step{
			{
				ID: "ca-1", Kind: domain.StepCooking, DurationMinutes: 8,
				Description: "Bring a large pot of salted water to a boil for the pasta. Don't be shy with the salt, it should taste like the sea.",
				Cooking:     &domain.CookingSettings{TemperatureC: 100, Speed: 1},
			},
			{
				ID: "ca-2", Kind: domain.StepInstruction, DurationMinutes: 3,
				Description:   "Season the chicken breasts with salt and pepper on both sides. Pound them to even thickness so the thin end doesn't dry out.",
				IngredientIDs: []string{"ca-chicken"},
			},
			{
				ID: "ca-3", Kind: domain.StepCooking, DurationMinutes: 12,
				Description: "Heat olive oil in a skillet and sear the chicken about 6 minutes per side until golden and cooked through. Set aside to rest.",
				Cooking:     &domain.CookingSettings{TemperatureC: 190, Speed: 2},
			},
			{
				ID: "ca-4", Kind: domain.StepInstruction, DurationMinutes: 10,
				Description:   "Drop the spaghetti into the boiling water and cook until al dente. Reserve a cup of pasta water before draining.",
				IngredientIDs: []string{"ca-spaghetti"},
			},
			{
				ID: "ca-5", Kind: domain.StepCooking, DurationMinutes: 1,
				Description: "In the same skillet, melt margarine and cook the minced garlic until fragrant. Do not burn it.",
				Cooking:     &domain.CookingSettings{TemperatureC: 120, Speed: 2},
			},
			{
				ID: "ca-6", Kind: domain.StepCooking, DurationMinutes: 3,
				Description: "Stir in the creme fraiche and let it reduce at a gentle simmer until it coats the back of a spoon.",
				Cooking:     &domain.CookingSettings{TemperatureC: 90, Speed: 3},
			},
			{
				ID: "ca-7", Kind: domain.StepInstruction, DurationMinutes: 2,
				Description:   "Off the heat, stir in the gruyere gradually until smooth. Loosen with pasta water if it's too thick.",
				IngredientIDs: []string{"ca-gruyere"},
			},
			{
				ID: "ca-8", Kind: domain.StepInstruction, DurationMinutes: 2,
				Description:   "Slice the chicken into strips, toss the pasta in the sauce and top with the chicken. Serve immediately.",
				IngredientIDs: []string{"ca-chicken", "ca-spaghetti"},
			},
		},
	}
}

func vegetableStirFry() *domain.Recipe {
	return &domain.Recipe{
		ID:         "vegetable-stir-fry",
		Title:      "Vegetable Stir Fry",
		Difficulty: domain.DifficultyEasy,
		Ingredients: []domain.Ingredient{
			{ID: "vsf-pepper", Name: "bell pepper", Quantity: 1, Unit: "pieces"},
			{ID: "vsf-broccoli", Name: "broccoli florets", Quantity: 2, Unit: "cups"},
			{ID: "vsf-carrot", Name: "carrot", Quantity: 1, Unit: "pieces"},
			{ID: "vsf-peas", Name: "snap peas", Quantity: 1, Unit: "cup"},
			{ID: "vsf-garlic", Name: "garlic", Quantity: 3, Unit: "cloves"},
			{ID: "vsf-ginger", Name: "fresh ginger", Quantity: 1, Unit: "tablespoon"},
			{ID: "vsf-soy", Name: "soy sauce", Quantity: 2, Unit: "tablespoons"},
			{ID: "vsf-sesame", Name: "sesame oil", Quantity: 1, Unit: "tablespoon"},
			{ID: "vsf-oil", Name: "vegetable oil", Quantity: 2, Unit: "tablespoons"},
		},
		Steps: []domain.Step{
			{
				ID: "vsf-1", Kind: domain.StepInstruction, DurationMinutes: 6,
				Description:   "Prep all vegetables: slice the pepper, cut the broccoli small, julienne the carrot, trim the peas. Mince garlic and grate ginger.",
				IngredientIDs: []string{"vsf-pepper", "vsf-broccoli", "vsf-carrot", "vsf-peas", "vsf-garlic", "vsf-ginger"},
			},
			{
				ID: "vsf-2", Kind: domain.StepInstruction, DurationMinutes: 1,
				Description:   "Mix the sauce: soy sauce and sesame oil with 2 tablespoons of water. Set aside.",
				IngredientIDs: []string{"vsf-soy", "vsf-sesame"},
			},
			{
				ID: "vsf-3", Kind: domain.StepCooking, DurationMinutes: 4,
				Description: "Stir-fry broccoli and carrots in hot oil for 2 minutes, then add pepper and peas for 2 more. Let things char.",
				Cooking:     &domain.CookingSettings{TemperatureC: 200, Speed: 2},
			},
			{
				ID: "vsf-4", Kind: domain.StepCooking, DurationMinutes: 1,
				Description: "Push the vegetables aside, fry the garlic and ginger until fragrant, then pour in the sauce and toss to coat.",
				Cooking:     &domain.CookingSettings{TemperatureC: 180, Speed: 3},
			},
		},
	}
}
