package cli

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/hammamikhairi/stepchef/internal/domain"
	"github.com/hammamikhairi/stepchef/internal/recipe"
)

func newRecipesNewCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "new",
		Short: "Build a recipe step by step in an interactive form",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !app.interactive() {
				return fmt.Errorf("recipes new needs a terminal; use recipes add --file instead")
			}
			r, err := buildRecipe()
			if errors.Is(err, huh.ErrUserAborted) {
				fmt.Fprintln(cmd.OutOrStdout(), "Discarded.")
				return nil
			}
			if err != nil {
				return err
			}
			if err := app.Recipes.Create(cmd.Context(), r); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created recipe %s [%s]\n", r.Title, r.ID)
			return nil
		},
	}
}

func builderTheme() *huh.Theme {
	t := huh.ThemeBase()
	accent := lipgloss.Color("#a5b4fc")
	dim := lipgloss.Color("#71717a")

	t.Focused.Title = lipgloss.NewStyle().Foreground(accent).Bold(true)
	t.Focused.SelectSelector = lipgloss.NewStyle().Foreground(accent)
	t.Focused.SelectedOption = lipgloss.NewStyle().Foreground(lipgloss.Color("#bbf7d0"))
	t.Focused.TextInput.Prompt = lipgloss.NewStyle().Foreground(accent)
	t.Focused.TextInput.Placeholder = lipgloss.NewStyle().Foreground(dim)
	t.Focused.Description = lipgloss.NewStyle().Foreground(dim)
	t.Blurred.Title = lipgloss.NewStyle().Foreground(dim)
	return t
}

func runForm(groups ...*huh.Group) error {
	return huh.NewForm(groups...).WithTheme(builderTheme()).WithShowHelp(false).Run()
}

// buildRecipe walks the cook through title, ingredients and steps. The
// result still goes through recipe.Validate on Create.
func buildRecipe() (*domain.Recipe, error) {
	var title string
	difficulty := string(domain.DifficultyEasy)

	err := runForm(huh.NewGroup(
		huh.NewInput().Title("Title").Value(&title).Validate(validateTitle),
		huh.NewSelect[string]().
			Title("Difficulty").
			Options(huh.NewOptions(string(domain.DifficultyEasy), string(domain.DifficultyMedium), string(domain.DifficultyHard))...).
			Value(&difficulty),
	))
	if err != nil {
		return nil, err
	}

	r := &domain.Recipe{Title: strings.TrimSpace(title), Difficulty: domain.Difficulty(difficulty)}

	for more := true; more; {
		ing, err := askIngredient(r)
		if err != nil {
			return nil, err
		}
		r.Ingredients = append(r.Ingredients, ing)
		if err := runForm(huh.NewGroup(huh.NewConfirm().Title("Add another ingredient?").Value(&more))); err != nil {
			return nil, err
		}
	}

	for more := true; more; {
		st, err := askStep(r)
		if err != nil {
			return nil, err
		}
		r.Steps = append(r.Steps, st)
		if err := runForm(huh.NewGroup(huh.NewConfirm().Title("Add another step?").Value(&more))); err != nil {
			return nil, err
		}
	}
	return r, nil
}

func askIngredient(r *domain.Recipe) (domain.Ingredient, error) {
	var name, qty, unit string
	err := runForm(huh.NewGroup(
		huh.NewInput().Title(fmt.Sprintf("Ingredient %d", len(r.Ingredients)+1)).Placeholder("flour").Value(&name).Validate(validateRequired),
		huh.NewInput().Title("Quantity").Placeholder("200").Value(&qty).Validate(validatePositiveFloat),
		huh.NewInput().Title("Unit").Placeholder("g").Value(&unit).Validate(validateRequired),
	).WithShowErrors(true))
	if err != nil {
		return domain.Ingredient{}, err
	}
	q, _ := strconv.ParseFloat(strings.TrimSpace(qty), 64)
	ing := domain.Ingredient{ID: uuid.NewString(), Name: strings.TrimSpace(name), Quantity: q, Unit: strings.TrimSpace(unit)}
	if err := duplicateIngredient(r, ing); err != nil {
		return domain.Ingredient{}, err
	}
	return ing, nil
}

func askStep(r *domain.Recipe) (domain.Step, error) {
	var desc, minutes string
	kind := string(domain.StepInstruction)
	err := runForm(huh.NewGroup(
		huh.NewText().Title(fmt.Sprintf("Step %d", len(r.Steps)+1)).Value(&desc).Validate(validateRequired),
		huh.NewInput().Title("Duration (minutes)").Placeholder("5").Value(&minutes).Validate(validatePositiveInt),
		huh.NewSelect[string]().
			Title("Kind").
			Options(
				huh.NewOption("Instruction (uses ingredients)", string(domain.StepInstruction)),
				huh.NewOption("Cooking (temperature and speed)", string(domain.StepCooking)),
			).
			Value(&kind),
	))
	if err != nil {
		return domain.Step{}, err
	}

	n, _ := strconv.Atoi(strings.TrimSpace(minutes))
	st := domain.Step{
		ID:              uuid.NewString(),
		Description:     strings.TrimSpace(desc),
		DurationMinutes: n,
		Kind:            domain.StepKind(kind),
	}

	if st.Kind == domain.StepCooking {
		var temp, speed string
		err := runForm(huh.NewGroup(
			huh.NewInput().Title("Temperature (°C)").Placeholder("100").Value(&temp).
				Validate(validateIntRange(recipe.MinTemperature, recipe.MaxTemperature)),
			huh.NewInput().Title("Speed").Placeholder("1").Value(&speed).
				Validate(validateIntRange(recipe.MinSpeed, recipe.MaxSpeed)),
		))
		if err != nil {
			return domain.Step{}, err
		}
		t, _ := strconv.Atoi(strings.TrimSpace(temp))
		s, _ := strconv.Atoi(strings.TrimSpace(speed))
		st.Cooking = &domain.CookingSettings{TemperatureC: t, Speed: s}
		return st, nil
	}

	opts := make([]huh.Option[string], 0, len(r.Ingredients))
	for _, ing := range r.Ingredients {
		opts = append(opts, huh.NewOption(ing.Name, ing.ID))
	}
	err = runForm(huh.NewGroup(
		huh.NewMultiSelect[string]().
			Title("Ingredients used").
			Options(opts...).
			Value(&st.IngredientIDs).
			Validate(validateSelection),
	))
	if err != nil {
		return domain.Step{}, err
	}
	return st, nil
}

func validateTitle(s string) error {
	if len([]rune(strings.TrimSpace(s))) < recipe.MinTitleLen {
		return fmt.Errorf("at least %d characters", recipe.MinTitleLen)
	}
	return nil
}

func validateRequired(s string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("required")
	}
	return nil
}

func validatePositiveInt(s string) error {
	v, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || v <= 0 {
		return fmt.Errorf("enter a positive whole number")
	}
	return nil
}

func validatePositiveFloat(s string) error {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || v <= 0 {
		return fmt.Errorf("enter a number greater than 0")
	}
	return nil
}

func validateIntRange(lo, hi int) func(string) error {
	return func(s string) error {
		v, err := strconv.Atoi(strings.TrimSpace(s))
		if err != nil || v < lo || v > hi {
			return fmt.Errorf("enter a whole number from %d to %d", lo, hi)
		}
		return nil
	}
}

func validateSelection(ids []string) error {
	if len(ids) == 0 {
		return fmt.Errorf("pick at least one ingredient")
	}
	return nil
}

// duplicateIngredient rejects an ingredient with the same name, quantity
// and unit as one already on the recipe, ignoring case.
func duplicateIngredient(r *domain.Recipe, ing domain.Ingredient) error {
	for _, have := range r.Ingredients {
		if strings.EqualFold(have.Name, ing.Name) && strings.EqualFold(have.Unit, ing.Unit) && have.Quantity == ing.Quantity {
			return fmt.Errorf("%s %s %s is already in the list", strconv.FormatFloat(ing.Quantity, 'f', -1, 64), ing.Unit, ing.Name)
		}
	}
	return nil
}
