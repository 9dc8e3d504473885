// Package timer provides the repeating clock that drives cooking sessions
// and the watcher that comments on session progress.
package timer

import (
	"context"
	"sync"
	"time"

	"github.com/hammamikhairi/stepchef/internal/logger"
)

// Task is a running repeating job.
type Task interface {
	Stop()
}

// Scheduler starts repeating jobs. The engine asks for one task per active
// session and stops it once nothing is cooking.
type Scheduler interface {
	Every(interval time.Duration, fn func()) Task
}

// Compile-time interface checks.
var (
	_ Scheduler = (*TickerScheduler)(nil)
	_ Task      = (*Ticker)(nil)
)

// TickerScheduler runs each job on its own goroutine driven by a time.Ticker.
type TickerScheduler struct {
	ctx context.Context
	log *logger.Logger
}

// NewTickerScheduler creates a scheduler whose tasks all end when ctx is
// cancelled.
func NewTickerScheduler(ctx context.Context, log *logger.Logger) *TickerScheduler {
	return &TickerScheduler{ctx: ctx, log: log}
}

// Every starts fn on a fixed interval. Non-blocking.
func (s *TickerScheduler) Every(interval time.Duration, fn func()) Task {
	t := NewTicker(interval, fn, s.log)
	t.Start(s.ctx)
	return t
}

// Ticker calls fn every interval until stopped.
type Ticker struct {
	interval time.Duration
	fn       func()
	log      *logger.Logger

	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc
}

// NewTicker creates a stopped ticker.
func NewTicker(interval time.Duration, fn func(), log *logger.Logger) *Ticker {
	if interval <= 0 {
		interval = time.Second
	}
	return &Ticker{interval: interval, fn: fn, log: log}
}

// Start begins the background loop. Non-blocking.
func (t *Ticker) Start(ctx context.Context) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.running {
		t.log.Warn("ticker already running")
		return
	}

	childCtx, cancel := context.WithCancel(ctx)
	t.cancel = cancel
	t.running = true

	go t.loop(childCtx)

	t.log.Debug("ticker started (interval=%s)", t.interval)
}

// Stop cancels the loop. It does not wait for an in-flight call to fn, so
// fn itself may stop its own ticker.
func (t *Ticker) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.running {
		return
	}

	t.cancel()
	t.running = false
	t.log.Debug("ticker stopped")
}

// Running reports whether the loop is active.
func (t *Ticker) Running() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.running
}

func (t *Ticker) loop(ctx context.Context) {
	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			// A stop may race with the tick; don't call fn after it.
			if ctx.Err() != nil {
				return
			}
			t.fn()
		}
	}
}
