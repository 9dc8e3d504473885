// Package engine implements the cooking session state machine: one active
// session at a time, advanced against wall-clock time by a repeating clock.
package engine

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/hammamikhairi/stepchef/internal/domain"
	"github.com/hammamikhairi/stepchef/internal/logger"
	"github.com/hammamikhairi/stepchef/internal/timer"
)

// AdvanceMode decides how a tick that spans several step boundaries is
// applied.
type AdvanceMode int

const (
	// AdvanceLoop walks through every boundary the elapsed time crosses and
	// carries the overshoot into the following steps.
	AdvanceLoop AdvanceMode = iota
	// AdvanceSingleStep advances at most one step per tick and restarts the
	// next step at its full duration, dropping any overshoot. The overall
	// clock still loses the whole delta, so the two clocks can drift apart.
	AdvanceSingleStep
)

// String returns the config spelling of the mode.
func (m AdvanceMode) String() string {
	if m == AdvanceSingleStep {
		return "single"
	}
	return "loop"
}

// ParseAdvanceMode accepts "loop" or "single".
func ParseAdvanceMode(s string) (AdvanceMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "loop":
		return AdvanceLoop, nil
	case "single", "single-step":
		return AdvanceSingleStep, nil
	}
	return AdvanceLoop, fmt.Errorf("unknown advance mode %q", s)
}

// Option configures the engine.
type Option func(*Engine)

// WithClock replaces time.Now as the source of wall-clock samples.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		e.now = now
	}
}

// WithScheduler sets the scheduler that runs the session clock.
func WithScheduler(s timer.Scheduler) Option {
	return func(e *Engine) {
		e.sched = s
	}
}

// WithTickInterval sets the clock cadence. Defaults to one second.
func WithTickInterval(d time.Duration) Option {
	return func(e *Engine) {
		e.tickInterval = d
	}
}

// WithAdvanceMode picks the step advance policy.
func WithAdvanceMode(m AdvanceMode) Option {
	return func(e *Engine) {
		e.mode = m
	}
}

// Engine owns all cooking session state. Commands and clock ticks are
// serialized by a single mutex, so every tick sees a consistent entry and no
// command is applied halfway through a tick.
type Engine struct {
	log          *logger.Logger
	now          func() time.Time
	sched        timer.Scheduler
	tickInterval time.Duration
	mode         AdvanceMode

	mu       sync.Mutex
	activeID string
	lastEnd  domain.EndReason
	entries  map[string]domain.SessionEntry
	recipes  map[string]*domain.Recipe // snapshots taken at Start
	clock    timer.Task                // nil while idle
	subs     map[int]chan domain.SessionState
	nextSub  int
	closed   bool
}

// Compile-time interface check.
var _ domain.SessionSource = (*Engine)(nil)

// New creates an idle engine.
func New(log *logger.Logger, opts ...Option) *Engine {
	e := &Engine{
		log:          log,
		now:          time.Now,
		tickInterval: time.Second,
		entries:      make(map[string]domain.SessionEntry),
		recipes:      make(map[string]*domain.Recipe),
		subs:         make(map[int]chan domain.SessionState),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.sched == nil {
		e.sched = timer.NewTickerScheduler(context.Background(), log)
	}
	return e
}

// Result is the ok/message pair views show after a start attempt.
type Result struct {
	OK      bool
	Message string
}

// StartResult converts the error from Start into a Result.
func StartResult(err error) Result {
	if err == nil {
		return Result{OK: true}
	}
	return Result{OK: false, Message: err.Error()}
}

// Start begins a session for recipe. Starting the recipe that is already
// active is a no-op. Starting a different one while a session is active
// fails with ErrSessionBusy and changes nothing.
func (e *Engine) Start(recipe *domain.Recipe) error {
	if err := checkCookable(recipe); err != nil {
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.activeID == recipe.ID {
		e.log.Debug("start: recipe %s already active", recipe.ID)
		return nil
	}
	if e.activeID != "" {
		e.log.Info("start: refusing %s, %s is cooking", recipe.ID, e.activeID)
		return domain.ErrSessionBusy
	}

	snap := recipe.Clone()
	e.recipes[snap.ID] = snap
	e.entries[snap.ID] = domain.SessionEntry{
		CurrentStepIndex:    0,
		IsRunning:           true,
		StepRemainingSec:    snap.Steps[0].DurationSec(),
		OverallRemainingSec: snap.TotalDurationSec(),
		LastTickAt:          e.now(),
	}
	e.activeID = snap.ID
	e.lastEnd = domain.EndNone
	e.ensureClockLocked()
	e.publishLocked()

	e.log.Info("started session for %q (%d steps, %ds)", snap.Title, len(snap.Steps), snap.TotalDurationSec())
	return nil
}

// checkCookable rejects recipes the clock cannot run.
func checkCookable(r *domain.Recipe) error {
	if r == nil || r.ID == "" {
		return fmt.Errorf("%w: missing recipe", domain.ErrInvalidRecipe)
	}
	if len(r.Steps) == 0 {
		return fmt.Errorf("%w: %q has no steps", domain.ErrInvalidRecipe, r.Title)
	}
	for i, s := range r.Steps {
		if s.DurationMinutes <= 0 {
			return fmt.Errorf("%w: step %d of %q has no duration", domain.ErrInvalidRecipe, i+1, r.Title)
		}
	}
	return nil
}

// PauseResume toggles the active session between running and paused. The
// tick timestamp is reset on every toggle so paused time is never counted.
func (e *Engine) PauseResume() {
	e.mu.Lock()
	defer e.mu.Unlock()

	entry, ok := e.activeLocked()
	if !ok {
		return
	}
	e.setRunningLocked(entry, !entry.IsRunning)
}

// Pause pauses the active session. No-op when nothing is running.
func (e *Engine) Pause() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if entry, ok := e.activeLocked(); ok && entry.IsRunning {
		e.setRunningLocked(entry, false)
	}
}

// Resume resumes a paused session. No-op when nothing is paused.
func (e *Engine) Resume() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if entry, ok := e.activeLocked(); ok && !entry.IsRunning {
		e.setRunningLocked(entry, true)
	}
}

func (e *Engine) setRunningLocked(entry domain.SessionEntry, running bool) {
	entry.IsRunning = running
	entry.LastTickAt = e.now()
	e.entries[e.activeID] = entry
	e.ensureClockLocked()
	e.publishLocked()
	e.log.Info("session %s %s", e.activeID, entry.Status())
}

// StopCurrentStep cuts the current step short. On the final step it ends
// the session; otherwise the next step starts immediately at full length.
func (e *Engine) StopCurrentStep() {
	e.mu.Lock()
	defer e.mu.Unlock()

	entry, ok := e.activeLocked()
	if !ok {
		return
	}
	recipe := e.recipes[e.activeID]

	if entry.CurrentStepIndex >= len(recipe.Steps)-1 {
		e.log.Info("session %s stopped on its final step", e.activeID)
		e.endLocked()
		e.publishLocked()
		return
	}

	entry.OverallRemainingSec = max(0, entry.OverallRemainingSec-entry.StepRemainingSec)
	entry.CurrentStepIndex++
	entry.StepRemainingSec = recipe.Steps[entry.CurrentStepIndex].DurationSec()
	entry.IsRunning = true
	entry.LastTickAt = e.now()
	e.entries[e.activeID] = entry
	e.publishLocked()

	e.log.Info("session %s skipped to step %d/%d", e.activeID, entry.CurrentStepIndex+1, len(recipe.Steps))
}

// ClearSession drops every session and stops the clock. Always safe.
func (e *Engine) ClearSession() {
	e.mu.Lock()
	defer e.mu.Unlock()

	hadActive := e.activeID != ""
	if hadActive {
		e.lastEnd = domain.EndCleared
	}
	e.activeID = ""
	clear(e.entries)
	clear(e.recipes)
	e.stopClockLocked()
	if hadActive {
		e.publishLocked()
		e.log.Info("session cleared")
	}
}

// Tick samples the clock and advances the active session by the whole
// seconds elapsed since LastTickAt. LastTickAt moves forward by exactly the
// seconds consumed, so sub-second ticker jitter never loses time. Paused
// sessions are skipped.
func (e *Engine) Tick() {
	e.mu.Lock()
	defer e.mu.Unlock()

	entry, ok := e.activeLocked()
	if !ok || !entry.IsRunning {
		return
	}
	recipe := e.recipes[e.activeID]

	now := e.now()
	last := entry.LastTickAt
	if last.IsZero() || now.Before(last) {
		// Unset or the wall clock stepped backwards: restart the sample.
		entry.LastTickAt = now
		e.entries[e.activeID] = entry
		return
	}
	delta := int(now.Sub(last) / time.Second)
	if delta <= 0 {
		return
	}
	// Only whole seconds are consumed; the remainder carries into the next tick.
	entry.LastTickAt = last.Add(time.Duration(delta) * time.Second)

	entry.OverallRemainingSec = max(0, entry.OverallRemainingSec-delta)

	var finished bool
	if e.mode == AdvanceSingleStep {
		finished = advanceOnce(&entry, recipe, delta)
	} else {
		finished = advanceThrough(&entry, recipe, delta)
	}

	if finished {
		e.log.Info("session %s finished", e.activeID)
		e.endLocked()
	} else {
		e.entries[e.activeID] = entry
	}
	e.publishLocked()
}

// advanceOnce applies delta to the current step and moves on at most once.
func advanceOnce(entry *domain.SessionEntry, recipe *domain.Recipe, delta int) bool {
	remaining := entry.StepRemainingSec - delta
	entry.StepRemainingSec = max(0, remaining)
	if remaining > 0 {
		return false
	}
	if entry.CurrentStepIndex >= len(recipe.Steps)-1 {
		return true
	}
	entry.CurrentStepIndex++
	entry.StepRemainingSec = recipe.Steps[entry.CurrentStepIndex].DurationSec()
	entry.IsRunning = true
	return false
}

// advanceThrough spends delta across as many steps as it covers.
func advanceThrough(entry *domain.SessionEntry, recipe *domain.Recipe, delta int) bool {
	for delta > 0 {
		if delta < entry.StepRemainingSec {
			entry.StepRemainingSec -= delta
			return false
		}
		delta -= entry.StepRemainingSec
		entry.StepRemainingSec = 0
		if entry.CurrentStepIndex >= len(recipe.Steps)-1 {
			return true
		}
		entry.CurrentStepIndex++
		entry.StepRemainingSec = recipe.Steps[entry.CurrentStepIndex].DurationSec()
		entry.IsRunning = true
	}
	return false
}

// Entry returns the session entry for recipeID, if one exists.
func (e *Engine) Entry(recipeID string) (domain.SessionEntry, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	entry, ok := e.entries[recipeID]
	return entry, ok
}

// State returns a copy of the process-wide session state.
func (e *Engine) State() domain.SessionState {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.stateLocked()
}

// Recipe returns a copy of the snapshot a session is cooking from.
func (e *Engine) Recipe(id string) (*domain.Recipe, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	r, ok := e.recipes[id]
	if !ok {
		return nil, false
	}
	return r.Clone(), true
}

// Subscribe returns a channel that receives the latest state after every
// change, starting with the current one. Slow readers only ever miss
// intermediate states. Call cancel to unsubscribe.
func (e *Engine) Subscribe() (<-chan domain.SessionState, func()) {
	e.mu.Lock()
	defer e.mu.Unlock()

	ch := make(chan domain.SessionState, 1)
	if e.closed {
		close(ch)
		return ch, func() {}
	}
	id := e.nextSub
	e.nextSub++
	e.subs[id] = ch
	ch <- e.stateLocked()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			e.mu.Lock()
			defer e.mu.Unlock()
			if c, ok := e.subs[id]; ok {
				delete(e.subs, id)
				close(c)
			}
		})
	}
}

// Close stops the clock and closes all subscriptions.
func (e *Engine) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.stopClockLocked()
	for id, ch := range e.subs {
		delete(e.subs, id)
		close(ch)
	}
	e.closed = true
}

// ClockRunning reports whether the periodic clock is live.
func (e *Engine) ClockRunning() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.clock != nil
}

func (e *Engine) activeLocked() (domain.SessionEntry, bool) {
	if e.activeID == "" {
		return domain.SessionEntry{}, false
	}
	entry, ok := e.entries[e.activeID]
	if !ok {
		return domain.SessionEntry{}, false
	}
	if _, ok := e.recipes[e.activeID]; !ok {
		return domain.SessionEntry{}, false
	}
	return entry, true
}

// endLocked removes the finished session and idles the clock.
func (e *Engine) endLocked() {
	e.lastEnd = domain.EndFinished
	delete(e.entries, e.activeID)
	delete(e.recipes, e.activeID)
	e.activeID = ""
	e.stopClockLocked()
}

func (e *Engine) ensureClockLocked() {
	if e.clock != nil || e.closed {
		return
	}
	e.clock = e.sched.Every(e.tickInterval, e.Tick)
	e.log.Debug("clock started (interval=%s, mode=%s)", e.tickInterval, e.mode)
}

func (e *Engine) stopClockLocked() {
	if e.clock == nil {
		return
	}
	e.clock.Stop()
	e.clock = nil
	e.log.Debug("clock stopped")
}

func (e *Engine) stateLocked() domain.SessionState {
	return domain.SessionState{ActiveRecipeID: e.activeID, Entries: e.entries, LastEnd: e.lastEnd}.Clone()
}

func (e *Engine) publishLocked() {
	if len(e.subs) == 0 {
		return
	}
	st := e.stateLocked()
	for _, ch := range e.subs {
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- st:
		default:
		}
	}
}

// IsBusy reports whether err means another session holds the engine.
func IsBusy(err error) bool { return errors.Is(err, domain.ErrSessionBusy) }
