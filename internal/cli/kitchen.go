package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/hammamikhairi/stepchef/internal/conversation"
	"github.com/hammamikhairi/stepchef/internal/domain"
	"github.com/hammamikhairi/stepchef/internal/engine"
	"github.com/hammamikhairi/stepchef/internal/logger"
)

// output is where the kitchen writes replies. display.UI and linePrinter
// both satisfy it.
type output interface {
	PrintChat(text string)
	PrintHint(text string)
	PrintUrgent(text string)
}

// viewSwitcher is implemented by surfaces with more than one view.
type viewSwitcher interface {
	ShowPage()
	ToggleView()
}

// kitchen turns typed commands into engine calls. Session announcements
// (started, next step, paused, done) come from the watcher, so successful
// commands print nothing here.
type kitchen struct {
	engine  *engine.Engine
	recipes domain.RecipeStore
	parser  domain.IntentParser
	out     output
	views   viewSwitcher // nil in line mode
	log     *logger.Logger
}

// run reads commands until quit, ctx cancellation, or input closes.
func (k *kitchen) run(ctx context.Context, input <-chan string) {
	for {
		select {
		case <-ctx.Done():
			return
		case line, ok := <-input:
			if !ok {
				return
			}
			if k.handle(ctx, line) {
				return
			}
		}
	}
}

// handle processes one line and reports whether the user asked to quit.
func (k *kitchen) handle(ctx context.Context, line string) bool {
	line = strings.TrimSpace(line)
	if line == "" {
		return false
	}

	intent, err := k.parser.Parse(ctx, line)
	if err != nil {
		k.log.Error("parsing input: %v", err)
		return false
	}
	k.log.Debug("intent: %s (payload=%q)", intent.Type, intent.Payload)

	switch intent.Type {
	case domain.IntentQuit:
		return true
	case domain.IntentHelp:
		for _, l := range strings.Split(conversation.HelpText, "\n") {
			k.out.PrintHint(l)
		}
	case domain.IntentListRecipes:
		k.listRecipes(ctx)
	case domain.IntentStartCooking:
		k.start(ctx, intent.Payload)
	case domain.IntentPauseResume:
		if k.requireSession() {
			k.engine.PauseResume()
		}
	case domain.IntentPause:
		if k.requireSession() {
			k.engine.Pause()
		}
	case domain.IntentResume:
		if k.requireSession() {
			k.engine.Resume()
		}
	case domain.IntentStopStep:
		if k.requireSession() {
			k.engine.StopCurrentStep()
		}
	case domain.IntentClear:
		if k.requireSession() {
			k.engine.ClearSession()
		}
	case domain.IntentStatus:
		k.status()
	case domain.IntentToggleView:
		if k.views != nil {
			k.views.ToggleView()
		} else {
			k.status()
		}
	default:
		k.out.PrintHint(fmt.Sprintf("Didn't catch %q. Type help for commands.", line))
	}
	return false
}

func (k *kitchen) listRecipes(ctx context.Context) {
	list, err := k.recipes.List(ctx, domain.ListOptions{})
	if err != nil {
		k.out.PrintUrgent(fmt.Sprintf("Could not load recipes: %v", err))
		return
	}
	if len(list) == 0 {
		k.out.PrintHint("No recipes yet. Run stepchef recipes seed to add a few.")
		return
	}
	for i, r := range list {
		k.out.PrintChat(fmt.Sprintf("%d. %s (%s, %d min)", i+1, r.Title, difficultyOrDash(r.Difficulty), r.TotalTimeMinutes))
	}
	k.out.PrintHint("Type cook <number> to start.")
}

func (k *kitchen) start(ctx context.Context, which string) {
	if which == "" {
		k.out.PrintHint("Which recipe? Type list, then cook <number>.")
		return
	}
	r, err := resolveRecipe(ctx, k.recipes, which)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			k.out.PrintUrgent(fmt.Sprintf("No recipe matches %q.", which))
		} else {
			k.out.PrintUrgent(err.Error())
		}
		return
	}

	res := engine.StartResult(k.engine.Start(r))
	if !res.OK {
		k.out.PrintUrgent(res.Message)
		return
	}
	if k.views != nil {
		k.views.ShowPage()
	}
}

// requireSession reports whether a session is active, hinting if not.
func (k *kitchen) requireSession() bool {
	if _, ok := k.engine.State().Active(); ok {
		return true
	}
	k.out.PrintHint("Nothing is cooking. Type list to pick a recipe.")
	return false
}

func (k *kitchen) status() {
	p, ok := k.engine.Progress()
	if !ok {
		k.out.PrintHint("Nothing is cooking.")
		return
	}
	k.out.PrintChat(statusLine(p))
}

func statusLine(p engine.Progress) string {
	return fmt.Sprintf("%s: step %d/%d, %s left on this step, %s overall (%s, %d%% done)",
		p.Title, p.StepIndex+1, p.StepCount,
		shortDuration(p.StepRemaining), shortDuration(p.OverallRemaining),
		p.Status, p.OverallPercent)
}

func shortDuration(d time.Duration) string {
	d = d.Round(time.Second)
	m := int(d.Minutes())
	s := int(d.Seconds()) % 60
	if m == 0 {
		return fmt.Sprintf("%ds", s)
	}
	return fmt.Sprintf("%dm%02ds", m, s)
}

// linePrinter writes plain lines for line mode. Safe for concurrent use,
// since the watcher prints from its own goroutine.
type linePrinter struct {
	mu sync.Mutex
	w  io.Writer
}

func newLinePrinter(w io.Writer) *linePrinter { return &linePrinter{w: w} }

func (p *linePrinter) Printf(format string, a ...interface{}) {
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintf(p.w, format+"\n", a...)
}

func (p *linePrinter) PrintChat(text string)   { p.Printf("  %s", text) }
func (p *linePrinter) PrintHint(text string)   { p.Printf("  %s", text) }
func (p *linePrinter) PrintUrgent(text string) { p.Printf("! %s", text) }
