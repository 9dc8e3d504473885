package cli

import (
	"bufio"
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hammamikhairi/stepchef/internal/chime"
	"github.com/hammamikhairi/stepchef/internal/conversation"
	"github.com/hammamikhairi/stepchef/internal/display"
	"github.com/hammamikhairi/stepchef/internal/domain"
	"github.com/hammamikhairi/stepchef/internal/engine"
	"github.com/hammamikhairi/stepchef/internal/timer"
)

func newCookCmd(app *App) *cobra.Command {
	var noChime bool

	cmd := &cobra.Command{
		Use:   "cook [recipe]",
		Short: "Start the kitchen and optionally a recipe (ID, ID prefix or list number)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			first := ""
			if len(args) == 1 {
				first = args[0]
			}
			if app.interactive() {
				return runTUI(cmd.Context(), app, first, !noChime)
			}
			return runLines(cmd.Context(), app, first, !noChime)
		},
	}

	cmd.Flags().BoolVar(&noChime, "no-chime", false, "Do not play a sound when a step finishes")
	return cmd
}

// newEngine builds the session engine from config. The clock runs until ctx
// is cancelled or the engine is closed.
func newEngine(ctx context.Context, app *App) *engine.Engine {
	log := app.Log.Named("engine")
	return engine.New(log,
		engine.WithScheduler(timer.NewTickerScheduler(ctx, log)),
		engine.WithTickInterval(app.Config.TickInterval),
		engine.WithAdvanceMode(app.Config.Mode()),
	)
}

// newNotifier wraps text with the chime when sound is wanted and an audio
// device is available. The returned func releases the audio player.
func newNotifier(app *App, text domain.Notifier, sound bool) (domain.Notifier, func()) {
	if !sound || !app.Config.Chime {
		return text, func() {}
	}
	log := app.Log.Named("chime")
	var sounder chime.Sounder
	player, err := chime.NewPlayer(log)
	if err != nil {
		log.Warn("audio unavailable, chime disabled: %v", err)
		sounder = chime.NewSilent(log)
	} else {
		sounder = player
	}
	n := chime.NewNotifier(text, sounder, log)
	return n, n.Close
}

// startWatcher runs the session watcher until ctx is cancelled or the
// engine closes. The returned channel closes when it has stopped.
func startWatcher(ctx context.Context, app *App, eng *engine.Engine, n domain.Notifier) <-chan struct{} {
	w := timer.NewWatcher(eng, n, app.Log.Named("watcher"),
		timer.WithWatchInterval(app.Config.WatchInterval),
		timer.WithPausedNudgeAfter(app.Config.PausedNudgeAfter),
	)
	done := make(chan struct{})
	go func() {
		defer close(done)
		w.Run(ctx)
	}()
	return done
}

func runTUI(ctx context.Context, app *App, first string, sound bool) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	eng := newEngine(ctx, app)

	ui := display.NewUI(eng)
	text := conversation.NewCLINotifier(app.Log.Named("notify"), ui.Printf, true)
	notifier, closeNotifier := newNotifier(app, text, sound)
	watched := startWatcher(ctx, app, eng, notifier)
	defer func() {
		cancel()
		eng.Close()
		<-watched
		closeNotifier()
	}()

	k := &kitchen{
		engine:  eng,
		recipes: app.Recipes,
		parser:  conversation.NewKeywordParser(app.Log.Named("parser")),
		out:     ui,
		views:   ui,
		log:     app.Log.Named("kitchen"),
	}

	fmt.Fprintln(app.out(), display.RenderBanner())
	fmt.Fprintln(app.out(), display.BannerStyle.Render("  Type 'help' for commands, tab to switch views, 'quit' to exit."))

	go func() {
		ui.WaitReady()
		if first != "" {
			k.start(ctx, first)
		} else {
			k.listRecipes(ctx)
		}
		k.run(ctx, ui.InputChan())
		ui.Quit()
	}()

	if err := ui.Run(); err != nil {
		return fmt.Errorf("display: %w", err)
	}
	return nil
}

// runLines drives the kitchen from plain stdin lines, for pipes and
// terminals without full-screen support.
func runLines(ctx context.Context, app *App, first string, sound bool) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	eng := newEngine(ctx, app)

	out := newLinePrinter(app.out())
	text := conversation.NewCLINotifier(app.Log.Named("notify"), out.Printf, false)
	notifier, closeNotifier := newNotifier(app, text, sound)
	watched := startWatcher(ctx, app, eng, notifier)
	defer func() {
		cancel()
		eng.Close()
		<-watched
		closeNotifier()
	}()

	k := &kitchen{
		engine:  eng,
		recipes: app.Recipes,
		parser:  conversation.NewKeywordParser(app.Log.Named("parser")),
		out:     out,
		log:     app.Log.Named("kitchen"),
	}

	if first != "" {
		k.start(ctx, first)
	}

	lines := make(chan string)
	go func() {
		defer close(lines)
		sc := bufio.NewScanner(app.in())
		for sc.Scan() {
			select {
			case lines <- sc.Text():
			case <-ctx.Done():
				return
			}
		}
	}()

	k.run(ctx, lines)
	return nil
}
