package timer

import (
	"context"
	"fmt"
	"time"

	"github.com/hammamikhairi/stepchef/internal/domain"
	"github.com/hammamikhairi/stepchef/internal/logger"
)

// WatcherOption configures the watcher.
type WatcherOption func(*Watcher)

// WithWatchInterval sets how often the watcher checks on a paused session.
func WithWatchInterval(d time.Duration) WatcherOption {
	return func(w *Watcher) {
		w.interval = d
	}
}

// WithPausedNudgeAfter sets how long a session may stay paused before the
// watcher nudges the cook. Zero disables nudging.
func WithPausedNudgeAfter(d time.Duration) WatcherOption {
	return func(w *Watcher) {
		w.nudgeAfter = d
	}
}

// WithWatcherClock replaces time.Now.
func WithWatcherClock(now func() time.Time) WatcherOption {
	return func(w *Watcher) {
		w.now = now
	}
}

// Watcher follows the session engine and tells the cook what changed: a new
// step, a pause, the end of the recipe. It also nudges when a session has
// been paused for too long.
type Watcher struct {
	source     domain.SessionSource
	notifier   domain.Notifier
	log        *logger.Logger
	interval   time.Duration
	nudgeAfter time.Duration
	now        func() time.Time

	last   domain.SessionState
	recipe *domain.Recipe // snapshot of the recipe being watched
	nudged bool
}

// NewWatcher creates a watcher with the given dependencies.
func NewWatcher(source domain.SessionSource, notifier domain.Notifier, log *logger.Logger, opts ...WatcherOption) *Watcher {
	w := &Watcher{
		source:     source,
		notifier:   notifier,
		log:        log,
		interval:   30 * time.Second,
		nudgeAfter: 5 * time.Minute,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Run starts the watcher loop. Blocks until ctx is cancelled or the source
// closes its subscription. Intended to be called as a goroutine.
func (w *Watcher) Run(ctx context.Context) {
	states, cancel := w.source.Subscribe()
	defer cancel()

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.log.Info("watcher started (interval=%s, nudge=%s)", w.interval, w.nudgeAfter)

	for {
		select {
		case <-ctx.Done():
			w.log.Info("watcher stopped")
			return
		case st, ok := <-states:
			if !ok {
				w.log.Info("watcher source closed")
				return
			}
			w.observe(ctx, st)
		case <-ticker.C:
			w.check(ctx)
		}
	}
}

// observe compares the new state to the last one and announces changes.
func (w *Watcher) observe(ctx context.Context, next domain.SessionState) {
	prev := w.last
	w.last = next

	prevEntry, hadActive := prev.Active()
	nextEntry, hasActive := next.Active()

	switch {
	case hasActive && next.ActiveRecipeID != prev.ActiveRecipeID:
		if r, ok := w.source.Recipe(next.ActiveRecipeID); ok {
			w.recipe = r
		}
		w.nudged = false
		w.notify(ctx, false, "[Cook] Starting %s. %s", w.title(), w.describeStep(nextEntry.CurrentStepIndex))

	case hadActive && !hasActive:
		if next.LastEnd == domain.EndFinished {
			w.notify(ctx, true, "[Cook] %s is done. Enjoy!", w.title())
		} else {
			w.notify(ctx, false, "[Cook] %s session cleared.", w.title())
		}
		w.recipe = nil

	case hasActive && nextEntry.CurrentStepIndex != prevEntry.CurrentStepIndex:
		w.nudged = false
		w.notify(ctx, true, "[Timer] Next up. %s", w.describeStep(nextEntry.CurrentStepIndex))

	case hasActive && nextEntry.IsRunning != prevEntry.IsRunning:
		w.nudged = false
		if nextEntry.IsRunning {
			w.notify(ctx, false, "[Cook] Resumed, %s left on this step.", formatRemaining(nextEntry.StepRemainingSec))
		} else {
			w.notify(ctx, false, "[Cook] Paused with %s left on this step.", formatRemaining(nextEntry.StepRemainingSec))
		}
	}
}

// check nudges the cook about a session that has been paused too long.
func (w *Watcher) check(ctx context.Context) {
	entry, ok := w.last.Active()
	if !ok || entry.IsRunning || w.nudged || w.nudgeAfter <= 0 {
		return
	}

	pausedFor := w.now().Sub(entry.LastTickAt)
	w.log.Debug("watcher: %s paused for %s", w.last.ActiveRecipeID, pausedFor.Round(time.Second))
	if pausedFor < w.nudgeAfter {
		return
	}

	w.nudged = true
	w.notify(ctx, false, "[Watcher] Session paused for %s. Your food isn't cooking itself.", pausedFor.Round(time.Second))
}

func (w *Watcher) notify(ctx context.Context, urgent bool, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	var err error
	if urgent {
		err = w.notifier.NotifyUrgent(ctx, msg)
	} else {
		err = w.notifier.Notify(ctx, msg)
	}
	if err != nil {
		w.log.Error("watcher: notify: %v", err)
	}
}

func (w *Watcher) title() string {
	if w.recipe == nil {
		return "The recipe"
	}
	return w.recipe.Title
}

func (w *Watcher) describeStep(idx int) string {
	if w.recipe == nil || idx < 0 || idx >= len(w.recipe.Steps) {
		return fmt.Sprintf("Step %d.", idx+1)
	}
	s := w.recipe.Steps[idx]
	msg := fmt.Sprintf("Step %d/%d: %s (%s)", idx+1, len(w.recipe.Steps), s.Description, formatRemaining(s.DurationSec()))
	if s.Kind == domain.StepCooking && s.Cooking != nil {
		msg += fmt.Sprintf(" at %d°C, speed %d", s.Cooking.TemperatureC, s.Cooking.Speed)
	}
	return msg + "."
}

// formatRemaining returns a human-friendly spoken duration.
// Rounds to the nearest minute once there's at least 1 minute left.
func formatRemaining(totalSec int) string {
	if totalSec < 60 {
		if totalSec == 1 {
			return "1 second"
		}
		return fmt.Sprintf("%d seconds", max(0, totalSec))
	}
	m := (totalSec + 30) / 60
	if m == 1 {
		return "1 minute"
	}
	return fmt.Sprintf("%d minutes", m)
}
