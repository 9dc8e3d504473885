// Package cli wires the stepchef command tree.
package cli

import (
	"context"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/hammamikhairi/stepchef/internal/config"
	"github.com/hammamikhairi/stepchef/internal/domain"
	"github.com/hammamikhairi/stepchef/internal/logger"
)

// RecipeStore is the recipe store plus the built-in seed.
type RecipeStore interface {
	domain.RecipeStore
	Seed(ctx context.Context) (int, error)
}

// App holds what CLI commands need.
type App struct {
	Recipes RecipeStore
	Config  config.Config
	Log     *logger.Logger

	// IsInteractive reports whether stdin is a terminal. When false, cook
	// runs the line-mode loop instead of the full-screen UI.
	IsInteractive func() bool

	// In and Out default to os.Stdin and os.Stdout.
	In  io.Reader
	Out io.Writer
}

func (a *App) in() io.Reader {
	if a.In == nil {
		return os.Stdin
	}
	return a.In
}

func (a *App) out() io.Writer {
	if a.Out == nil {
		return os.Stdout
	}
	return a.Out
}

func (a *App) interactive() bool {
	return a.IsInteractive != nil && a.IsInteractive()
}

// NewRootCmd creates the top-level "stepchef" command and registers all
// subcommands against the provided App.
func NewRootCmd(app *App) *cobra.Command {
	root := &cobra.Command{
		Use:           "stepchef",
		Short:         "Recipe manager with a guided cooking timer",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(app.out())
	root.SetIn(app.in())

	root.AddCommand(
		newRecipesCmd(app),
		newCookCmd(app),
	)

	return root
}
