package timer

import (
	"sync"
	"time"
)

// Compile-time interface check.
var _ Scheduler = (*ManualScheduler)(nil)

// ManualScheduler only runs jobs when Fire is called. Tests use it with a
// fake clock to step the engine deterministically.
type ManualScheduler struct {
	mu      sync.Mutex
	tasks   []*manualTask
	started int
}

type manualTask struct {
	owner    *ManualScheduler
	interval time.Duration
	fn       func()
	stopped  bool
}

// NewManualScheduler creates an empty manual scheduler.
func NewManualScheduler() *ManualScheduler {
	return &ManualScheduler{}
}

// Every registers fn. It runs on each Fire until the task is stopped.
func (m *ManualScheduler) Every(interval time.Duration, fn func()) Task {
	m.mu.Lock()
	defer m.mu.Unlock()
	t := &manualTask{owner: m, interval: interval, fn: fn}
	m.tasks = append(m.tasks, t)
	m.started++
	return t
}

// Fire runs every live task once.
func (m *ManualScheduler) Fire() {
	m.mu.Lock()
	live := make([]*manualTask, 0, len(m.tasks))
	for _, t := range m.tasks {
		if !t.stopped {
			live = append(live, t)
		}
	}
	m.mu.Unlock()

	for _, t := range live {
		t.fn()
	}
}

// Active returns the number of tasks not yet stopped.
func (m *ManualScheduler) Active() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, t := range m.tasks {
		if !t.stopped {
			n++
		}
	}
	return n
}

// Started returns how many tasks were ever registered.
func (m *ManualScheduler) Started() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.started
}

func (t *manualTask) Stop() {
	t.owner.mu.Lock()
	defer t.owner.mu.Unlock()
	t.stopped = true
}
