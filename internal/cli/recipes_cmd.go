package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/hammamikhairi/stepchef/internal/domain"
	"github.com/hammamikhairi/stepchef/internal/recipe"
)

func newRecipesCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "recipes",
		Aliases: []string{"recipe", "r"},
		Short:   "Manage recipes",
	}

	cmd.AddCommand(
		newRecipesListCmd(app),
		newRecipesShowCmd(app),
		newRecipesAddCmd(app),
		newRecipesNewCmd(app),
		newRecipesDeleteCmd(app),
		newRecipesFavoriteCmd(app),
		newRecipesSeedCmd(app),
	)

	return cmd
}

func newRecipesListCmd(app *App) *cobra.Command {
	var difficulties []string
	var sortOrder string
	var favorites bool

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List recipes",
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := listOptions(difficulties, sortOrder, favorites)
			if err != nil {
				return err
			}
			list, err := app.Recipes.List(cmd.Context(), opts)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), formatRecipeList(list))
			return nil
		},
	}

	cmd.Flags().StringSliceVarP(&difficulties, "difficulty", "d", nil, "Only show these difficulties (easy, medium, hard)")
	cmd.Flags().StringVarP(&sortOrder, "sort", "s", "asc", "Sort by total time: asc or desc")
	cmd.Flags().BoolVarP(&favorites, "favorites", "f", false, "Only show favorites")
	return cmd
}

func listOptions(difficulties []string, sortOrder string, favorites bool) (domain.ListOptions, error) {
	opts := domain.ListOptions{FavoritesOnly: favorites}
	for _, s := range difficulties {
		d, ok := domain.ParseDifficulty(s)
		if !ok {
			return opts, fmt.Errorf("unknown difficulty %q (want easy, medium or hard)", s)
		}
		opts.Difficulties = append(opts.Difficulties, d)
	}
	switch strings.ToLower(sortOrder) {
	case "", "asc":
		opts.Sort = domain.SortByTimeAsc
	case "desc":
		opts.Sort = domain.SortByTimeDesc
	default:
		return opts, fmt.Errorf("unknown sort order %q (want asc or desc)", sortOrder)
	}
	return opts, nil
}

func newRecipesShowCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show <recipe>",
		Short: "Show a recipe",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := resolveRecipe(cmd.Context(), app.Recipes, args[0])
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), formatRecipe(r))
			return nil
		},
	}
}

func newRecipesAddCmd(app *App) *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a recipe from a YAML file",
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := recipe.LoadFile(file)
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

	cmd.Flags().StringVar(&file, "file", "", "Path to the recipe YAML file")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func newRecipesDeleteCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:     "delete <recipe>",
		Aliases: []string{"rm"},
		Short:   "Delete a recipe",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := resolveRecipe(cmd.Context(), app.Recipes, args[0])
			if err != nil {
				return err
			}
			if err := app.Recipes.Delete(cmd.Context(), r.ID); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", r.Title)
			return nil
		},
	}
}

func newRecipesFavoriteCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:     "favorite <recipe>",
		Aliases: []string{"fav"},
		Short:   "Toggle a recipe's favorite flag",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := resolveRecipe(cmd.Context(), app.Recipes, args[0])
			if err != nil {
				return err
			}
			fav, err := app.Recipes.ToggleFavorite(cmd.Context(), r.ID)
			if err != nil {
				return err
			}
			if fav {
				fmt.Fprintf(cmd.OutOrStdout(), "%s is now a favorite\n", r.Title)
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "%s is no longer a favorite\n", r.Title)
			}
			return nil
		},
	}
}

func newRecipesSeedCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Add the built-in recipes",
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := app.Recipes.Seed(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added %d built-in recipes\n", n)
			return nil
		},
	}
}

// resolveRecipe finds a recipe by list position (1-based, default
// listing order), exact ID, or unique ID prefix.
func resolveRecipe(ctx context.Context, store domain.RecipeStore, input string) (*domain.Recipe, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return nil, fmt.Errorf("recipe is required")
	}

	list, err := store.List(ctx, domain.ListOptions{})
	if err != nil {
		return nil, err
	}

	if n, err := strconv.Atoi(input); err == nil {
		if n < 1 || n > len(list) {
			return nil, fmt.Errorf("no recipe at position %d (have %d)", n, len(list))
		}
		return store.Get(ctx, list[n-1].ID)
	}

	for _, r := range list {
		if r.ID == input {
			return store.Get(ctx, r.ID)
		}
	}

	var matches []string
	for _, r := range list {
		if strings.HasPrefix(r.ID, input) {
			matches = append(matches, r.ID)
		}
	}
	switch len(matches) {
	case 0:
		return nil, fmt.Errorf("recipe %q: %w", input, domain.ErrNotFound)
	case 1:
		return store.Get(ctx, matches[0])
	default:
		return nil, fmt.Errorf("recipe ID prefix %q is ambiguous (%d matches)", input, len(matches))
	}
}
