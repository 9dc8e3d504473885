package engine

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hammamikhairi/stepchef/internal/domain"
	"github.com/hammamikhairi/stepchef/internal/logger"
	"github.com/hammamikhairi/stepchef/internal/timer"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func setupEngine(t *testing.T, opts ...Option) (*Engine, *fakeClock, *timer.ManualScheduler) {
	t.Helper()
	clock := &fakeClock{now: time.Date(2026, 3, 1, 18, 0, 0, 0, time.UTC)}
	sched := timer.NewManualScheduler()
	opts = append([]Option{WithClock(clock.Now), WithScheduler(sched)}, opts...)
	eng := New(logger.Nop(), opts...)
	t.Cleanup(eng.Close)
	return eng, clock, sched
}

// testRecipe builds a recipe with one cooking step per duration (minutes).
func testRecipe(id string, minutes ...int) *domain.Recipe {
	r := &domain.Recipe{ID: id, Title: "Recipe " + id, Difficulty: domain.DifficultyEasy}
	for i, m := range minutes {
		r.Steps = append(r.Steps, domain.Step{
			ID:              fmt.Sprintf("%s-s%d", id, i),
			Description:     fmt.Sprintf("step %d", i+1),
			DurationMinutes: m,
			Kind:            domain.StepCooking,
			Cooking:         &domain.CookingSettings{TemperatureC: 100, Speed: 2},
		})
	}
	return r
}

// tickFor advances the clock by d and fires the scheduler once.
func tickFor(clock *fakeClock, sched *timer.ManualScheduler, d time.Duration) {
	clock.Advance(d)
	sched.Fire()
}

func TestStartCreatesEntry(t *testing.T) {
	eng, clock, sched := setupEngine(t)

	require.NoError(t, eng.Start(testRecipe("a", 2, 3)))

	st := eng.State()
	assert.Equal(t, "a", st.ActiveRecipeID)
	entry, ok := eng.Entry("a")
	require.True(t, ok)
	assert.Equal(t, 0, entry.CurrentStepIndex)
	assert.True(t, entry.IsRunning)
	assert.Equal(t, 120, entry.StepRemainingSec)
	assert.Equal(t, 300, entry.OverallRemainingSec)
	assert.Equal(t, clock.Now(), entry.LastTickAt)
	assert.Equal(t, 1, sched.Active())
	assert.True(t, eng.ClockRunning())
}

func TestStartRejectsInvalidRecipe(t *testing.T) {
	eng, _, sched := setupEngine(t)

	tests := []struct {
		name   string
		recipe *domain.Recipe
	}{
		{"nil", nil},
		{"no steps", testRecipe("empty")},
		{"zero duration", testRecipe("zero", 2, 0)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := eng.Start(tt.recipe)
			require.Error(t, err)
			assert.ErrorIs(t, err, domain.ErrInvalidRecipe)
			assert.Empty(t, eng.State().ActiveRecipeID)
		})
	}
	assert.Equal(t, 0, sched.Started())
}

func TestStartWhileBusy(t *testing.T) {
	eng, clock, sched := setupEngine(t)

	require.NoError(t, eng.Start(testRecipe("a", 2)))
	tickFor(clock, sched, 5*time.Second)
	before, _ := eng.Entry("a")

	err := eng.Start(testRecipe("b", 1))
	require.Error(t, err)
	assert.True(t, IsBusy(err))

	res := StartResult(err)
	assert.False(t, res.OK)
	assert.Equal(t, "another session is active, stop it first", res.Message)

	after, _ := eng.Entry("a")
	assert.Equal(t, before, after)
	_, ok := eng.Entry("b")
	assert.False(t, ok)
	assert.Equal(t, "a", eng.State().ActiveRecipeID)
}

func TestStartSameRecipeIsNoOp(t *testing.T) {
	eng, clock, sched := setupEngine(t)

	r := testRecipe("a", 2)
	require.NoError(t, eng.Start(r))
	tickFor(clock, sched, 7*time.Second)
	before := eng.State()

	err := eng.Start(r)
	require.NoError(t, err)
	assert.True(t, StartResult(err).OK)
	assert.Equal(t, before, eng.State())
	assert.Equal(t, 1, sched.Started())
}

func TestPauseResumeToggles(t *testing.T) {
	eng, clock, _ := setupEngine(t)

	require.NoError(t, eng.Start(testRecipe("a", 2)))

	clock.Advance(3 * time.Second)
	eng.PauseResume()
	entry, _ := eng.Entry("a")
	assert.False(t, entry.IsRunning)
	assert.Equal(t, clock.Now(), entry.LastTickAt)

	clock.Advance(2 * time.Second)
	eng.PauseResume()
	entry, _ = eng.Entry("a")
	assert.True(t, entry.IsRunning)
	assert.Equal(t, clock.Now(), entry.LastTickAt)
}

func TestPauseResumeTwiceRestoresRunning(t *testing.T) {
	eng, _, _ := setupEngine(t)

	require.NoError(t, eng.Start(testRecipe("a", 2)))
	eng.PauseResume()
	eng.PauseResume()

	entry, _ := eng.Entry("a")
	assert.True(t, entry.IsRunning)
}

func TestPausedTimeIsNotCounted(t *testing.T) {
	eng, clock, sched := setupEngine(t)

	require.NoError(t, eng.Start(testRecipe("a", 2)))
	tickFor(clock, sched, 10*time.Second)
	eng.PauseResume()

	// Ticks while paused leave the entry alone.
	for range 5 {
		tickFor(clock, sched, time.Minute)
	}
	entry, _ := eng.Entry("a")
	assert.Equal(t, 110, entry.StepRemainingSec)

	eng.PauseResume()
	tickFor(clock, sched, 4*time.Second)
	entry, _ = eng.Entry("a")
	assert.Equal(t, 106, entry.StepRemainingSec)
	assert.Equal(t, 106, entry.OverallRemainingSec)
}

func TestExplicitPauseAndResume(t *testing.T) {
	eng, _, _ := setupEngine(t)

	require.NoError(t, eng.Start(testRecipe("a", 2)))
	eng.Pause()
	eng.Pause()
	entry, _ := eng.Entry("a")
	assert.False(t, entry.IsRunning)

	eng.Resume()
	eng.Resume()
	entry, _ = eng.Entry("a")
	assert.True(t, entry.IsRunning)
}

func TestCommandsWithoutSessionAreNoOps(t *testing.T) {
	eng, _, sched := setupEngine(t)

	eng.PauseResume()
	eng.Pause()
	eng.Resume()
	eng.StopCurrentStep()
	eng.Tick()

	st := eng.State()
	assert.Empty(t, st.ActiveRecipeID)
	assert.Empty(t, st.Entries)
	assert.Equal(t, 0, sched.Started())
}

func TestStopCurrentStepAdvances(t *testing.T) {
	eng, clock, sched := setupEngine(t)

	require.NoError(t, eng.Start(testRecipe("a", 2, 3, 1)))
	tickFor(clock, sched, 20*time.Second)
	eng.PauseResume()

	clock.Advance(time.Second)
	eng.StopCurrentStep()

	entry, ok := eng.Entry("a")
	require.True(t, ok)
	assert.Equal(t, 1, entry.CurrentStepIndex)
	assert.Equal(t, 180, entry.StepRemainingSec)
	// 360 total - 20 elapsed - 100 left on the skipped step.
	assert.Equal(t, 240, entry.OverallRemainingSec)
	assert.True(t, entry.IsRunning)
	assert.Equal(t, clock.Now(), entry.LastTickAt)
}

func TestStopCurrentStepOnFinalStepEndsSession(t *testing.T) {
	eng, _, sched := setupEngine(t)

	require.NoError(t, eng.Start(testRecipe("a", 1, 1)))
	eng.StopCurrentStep()
	eng.StopCurrentStep()

	st := eng.State()
	assert.Empty(t, st.ActiveRecipeID)
	assert.Empty(t, st.Entries)
	assert.Equal(t, 0, sched.Active())
	assert.False(t, eng.ClockRunning())
}

func TestStopOnSingleStepRecipeEndsSession(t *testing.T) {
	eng, _, _ := setupEngine(t)

	require.NoError(t, eng.Start(testRecipe("one", 10)))
	eng.StopCurrentStep()

	_, ok := eng.Entry("one")
	assert.False(t, ok)
	assert.Empty(t, eng.State().ActiveRecipeID)
}

func TestAutoAdvanceScenario(t *testing.T) {
	for _, mode := range []AdvanceMode{AdvanceLoop, AdvanceSingleStep} {
		t.Run(mode.String(), func(t *testing.T) {
			eng, clock, sched := setupEngine(t, WithAdvanceMode(mode))

			require.NoError(t, eng.Start(testRecipe("a", 2, 1)))

			tickFor(clock, sched, 120*time.Second)
			entry, ok := eng.Entry("a")
			require.True(t, ok)
			assert.Equal(t, 1, entry.CurrentStepIndex)
			assert.Equal(t, 60, entry.StepRemainingSec)
			assert.Equal(t, 60, entry.OverallRemainingSec)

			tickFor(clock, sched, 60*time.Second)
			st := eng.State()
			assert.Empty(t, st.ActiveRecipeID)
			assert.Empty(t, st.Entries)
		})
	}
}

func TestRunToCompletionTickCount(t *testing.T) {
	for _, mode := range []AdvanceMode{AdvanceLoop, AdvanceSingleStep} {
		t.Run(mode.String(), func(t *testing.T) {
			eng, clock, sched := setupEngine(t, WithAdvanceMode(mode))

			r := testRecipe("a", 1, 2, 1)
			total := r.TotalDurationSec()
			require.NoError(t, eng.Start(r))

			for i := 1; i < total; i++ {
				tickFor(clock, sched, time.Second)
				require.Equal(t, "a", eng.State().ActiveRecipeID, "ended early at tick %d", i)
				entry, _ := eng.Entry("a")
				require.GreaterOrEqual(t, entry.OverallRemainingSec, entry.StepRemainingSec)
				require.Equal(t, total-i, entry.OverallRemainingSec)
			}

			tickFor(clock, sched, time.Second)
			assert.Empty(t, eng.State().ActiveRecipeID)
			assert.Equal(t, 0, sched.Active())
		})
	}
}

func TestSubSecondTickKeepsRemainder(t *testing.T) {
	eng, clock, sched := setupEngine(t)

	require.NoError(t, eng.Start(testRecipe("a", 2)))
	started := clock.Now()
	tickFor(clock, sched, 800*time.Millisecond)

	entry, _ := eng.Entry("a")
	assert.Equal(t, 120, entry.StepRemainingSec)
	assert.Equal(t, started, entry.LastTickAt)

	tickFor(clock, sched, 800*time.Millisecond)
	entry, _ = eng.Entry("a")
	assert.Equal(t, 119, entry.StepRemainingSec)
	assert.Equal(t, started.Add(time.Second), entry.LastTickAt)
}

func TestJitteredTicksKeepWallTime(t *testing.T) {
	for _, mode := range []AdvanceMode{AdvanceLoop, AdvanceSingleStep} {
		t.Run(mode.String(), func(t *testing.T) {
			eng, clock, sched := setupEngine(t, WithAdvanceMode(mode))

			require.NoError(t, eng.Start(testRecipe("a", 1)))
			for i := 0; i < 20; i++ {
				jitter := 3 * time.Millisecond
				if i%2 == 1 {
					jitter = -jitter
				}
				tickFor(clock, sched, time.Second+jitter)
			}

			entry, ok := eng.Entry("a")
			require.True(t, ok)
			assert.Equal(t, 40, entry.StepRemainingSec)
			assert.Equal(t, 40, entry.OverallRemainingSec)
		})
	}
}

func TestTickerSchedulerTracksWallTime(t *testing.T) {
	if testing.Short() {
		t.Skip("runs against the real clock")
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	eng := New(logger.Nop(),
		WithScheduler(timer.NewTickerScheduler(ctx, logger.Nop())),
		WithTickInterval(100*time.Millisecond),
	)
	t.Cleanup(eng.Close)

	started := time.Now()
	require.NoError(t, eng.Start(testRecipe("a", 1)))
	time.Sleep(2500 * time.Millisecond)

	entry, ok := eng.Entry("a")
	require.True(t, ok)
	counted := 60 - entry.StepRemainingSec
	wall := time.Since(started).Seconds()
	assert.InDelta(t, wall, float64(counted), 1.0, "counted %ds over %.2fs", counted, wall)
}

func TestClockGoingBackwardsIsIgnored(t *testing.T) {
	eng, clock, sched := setupEngine(t)

	require.NoError(t, eng.Start(testRecipe("a", 2)))
	tickFor(clock, sched, -30*time.Second)

	entry, _ := eng.Entry("a")
	assert.Equal(t, 120, entry.StepRemainingSec)
	assert.Equal(t, clock.Now(), entry.LastTickAt)

	tickFor(clock, sched, time.Second)
	entry, _ = eng.Entry("a")
	assert.Equal(t, 119, entry.StepRemainingSec)
}

func TestLongGapLoopAdvance(t *testing.T) {
	eng, clock, sched := setupEngine(t)

	require.NoError(t, eng.Start(testRecipe("a", 2, 1, 3)))

	// 150s crosses the first boundary and lands 30s into step two.
	tickFor(clock, sched, 150*time.Second)
	entry, _ := eng.Entry("a")
	assert.Equal(t, 1, entry.CurrentStepIndex)
	assert.Equal(t, 30, entry.StepRemainingSec)
	assert.Equal(t, 210, entry.OverallRemainingSec)

	// 40s more crosses into the last step.
	tickFor(clock, sched, 40*time.Second)
	entry, _ = eng.Entry("a")
	assert.Equal(t, 2, entry.CurrentStepIndex)
	assert.Equal(t, 170, entry.StepRemainingSec)
	assert.Equal(t, 170, entry.OverallRemainingSec)
}

func TestLongGapLoopAdvanceFinishes(t *testing.T) {
	eng, clock, sched := setupEngine(t)

	require.NoError(t, eng.Start(testRecipe("a", 2, 1, 3)))
	tickFor(clock, sched, time.Hour)

	assert.Empty(t, eng.State().ActiveRecipeID)
	assert.False(t, eng.ClockRunning())
}

// The single-step policy drops overshoot at a boundary: the next step starts
// at full length while the overall clock loses the whole gap.
func TestLongGapSingleStepDrift(t *testing.T) {
	eng, clock, sched := setupEngine(t, WithAdvanceMode(AdvanceSingleStep))

	require.NoError(t, eng.Start(testRecipe("a", 2, 1, 3)))
	tickFor(clock, sched, 150*time.Second)

	entry, _ := eng.Entry("a")
	assert.Equal(t, 1, entry.CurrentStepIndex)
	assert.Equal(t, 60, entry.StepRemainingSec)
	assert.Equal(t, 210, entry.OverallRemainingSec)

	// An hour-long gap only moves one step and empties the overall clock.
	tickFor(clock, sched, time.Hour)
	entry, ok := eng.Entry("a")
	require.True(t, ok)
	assert.Equal(t, 2, entry.CurrentStepIndex)
	assert.Equal(t, 180, entry.StepRemainingSec)
	assert.Equal(t, 0, entry.OverallRemainingSec)
	assert.Less(t, entry.OverallRemainingSec, entry.StepRemainingSec)
}

func TestEndReason(t *testing.T) {
	eng, clock, sched := setupEngine(t)

	require.NoError(t, eng.Start(testRecipe("a", 1, 1)))
	assert.Equal(t, domain.EndNone, eng.State().LastEnd)

	eng.StopCurrentStep()
	eng.ClearSession()
	assert.Equal(t, domain.EndCleared, eng.State().LastEnd, "clear on the final step abandons the recipe")

	require.NoError(t, eng.Start(testRecipe("b", 1)))
	assert.Equal(t, domain.EndNone, eng.State().LastEnd)
	tickFor(clock, sched, time.Minute)
	assert.Equal(t, domain.EndFinished, eng.State().LastEnd)

	eng.ClearSession()
	assert.Equal(t, domain.EndFinished, eng.State().LastEnd, "clearing while idle keeps the reason")

	require.NoError(t, eng.Start(testRecipe("c", 1)))
	eng.StopCurrentStep()
	assert.Equal(t, domain.EndFinished, eng.State().LastEnd)
}

func TestClearSessionIsIdempotent(t *testing.T) {
	eng, _, sched := setupEngine(t)

	require.NoError(t, eng.Start(testRecipe("a", 2, 2)))
	eng.StopCurrentStep()

	eng.ClearSession()
	st := eng.State()
	assert.Empty(t, st.ActiveRecipeID)
	assert.Empty(t, st.Entries)
	assert.Equal(t, 0, sched.Active())

	eng.ClearSession()
	st = eng.State()
	assert.Empty(t, st.ActiveRecipeID)
	assert.Empty(t, st.Entries)
}

func TestClockStartsLazilyAndRestarts(t *testing.T) {
	eng, _, sched := setupEngine(t)
	assert.False(t, eng.ClockRunning())

	require.NoError(t, eng.Start(testRecipe("a", 1)))
	eng.PauseResume()
	eng.PauseResume()
	assert.Equal(t, 1, sched.Started())

	eng.StopCurrentStep()
	assert.Equal(t, 0, sched.Active())

	require.NoError(t, eng.Start(testRecipe("b", 1)))
	assert.Equal(t, 2, sched.Started())
	assert.Equal(t, 1, sched.Active())
}

func TestSessionUsesRecipeSnapshot(t *testing.T) {
	eng, clock, sched := setupEngine(t)

	r := testRecipe("a", 1, 1)
	require.NoError(t, eng.Start(r))

	r.Steps[1].DurationMinutes = 30
	r.Steps = append(r.Steps, domain.Step{ID: "late", DurationMinutes: 5})
	r.Title = "edited"

	tickFor(clock, sched, 60*time.Second)
	entry, _ := eng.Entry("a")
	assert.Equal(t, 1, entry.CurrentStepIndex)
	assert.Equal(t, 60, entry.StepRemainingSec)

	snap, ok := eng.Recipe("a")
	require.True(t, ok)
	assert.Equal(t, "Recipe a", snap.Title)
	assert.Len(t, snap.Steps, 2)
}

func TestSubscribeReceivesChanges(t *testing.T) {
	eng, clock, sched := setupEngine(t)

	ch, cancel := eng.Subscribe()
	defer cancel()

	st := <-ch
	assert.Empty(t, st.ActiveRecipeID)

	require.NoError(t, eng.Start(testRecipe("a", 1)))
	st = <-ch
	assert.Equal(t, "a", st.ActiveRecipeID)

	// Two changes without a read collapse into the latest.
	tickFor(clock, sched, 5*time.Second)
	tickFor(clock, sched, 5*time.Second)
	st = <-ch
	assert.Equal(t, 50, st.Entries["a"].StepRemainingSec)

	// The delivered state is a copy.
	st.Entries["a"] = domain.SessionEntry{}
	entry, _ := eng.Entry("a")
	assert.Equal(t, 50, entry.StepRemainingSec)

	cancel()
	_, open := <-ch
	assert.False(t, open)
}

func TestCloseEndsSubscriptions(t *testing.T) {
	eng, _, _ := setupEngine(t)
	ch, cancel := eng.Subscribe()
	<-ch

	eng.Close()
	_, open := <-ch
	assert.False(t, open)
	cancel()

	late, _ := eng.Subscribe()
	_, open = <-late
	assert.False(t, open)
}

func TestProgress(t *testing.T) {
	eng, clock, sched := setupEngine(t)

	_, ok := eng.Progress()
	assert.False(t, ok)

	require.NoError(t, eng.Start(testRecipe("a", 2, 2)))
	tickFor(clock, sched, 60*time.Second)

	p, ok := eng.Progress()
	require.True(t, ok)
	assert.Equal(t, "Recipe a", p.Title)
	assert.Equal(t, 0, p.StepIndex)
	assert.Equal(t, 2, p.StepCount)
	assert.Equal(t, 50, p.StepPercent)
	assert.Equal(t, 25, p.OverallPercent)
	assert.Equal(t, time.Minute, p.StepRemaining)
	assert.Equal(t, 3*time.Minute, p.OverallRemaining)
	assert.Equal(t, domain.SessionRunning, p.Status)
}

func TestTimeline(t *testing.T) {
	r := testRecipe("a", 1, 1, 1)

	assert.Equal(t, []domain.StepStatus{domain.StepUpcoming, domain.StepUpcoming, domain.StepUpcoming}, Timeline(r, nil))

	entry := &domain.SessionEntry{CurrentStepIndex: 1}
	assert.Equal(t, []domain.StepStatus{domain.StepCompleted, domain.StepCurrent, domain.StepUpcoming}, Timeline(r, entry))
}

func TestParseAdvanceMode(t *testing.T) {
	m, err := ParseAdvanceMode("single")
	require.NoError(t, err)
	assert.Equal(t, AdvanceSingleStep, m)

	m, err = ParseAdvanceMode("")
	require.NoError(t, err)
	assert.Equal(t, AdvanceLoop, m)

	_, err = ParseAdvanceMode("sometimes")
	assert.Error(t, err)
}

func TestConcurrentCommandsKeepInvariants(t *testing.T) {
	eng, clock, sched := setupEngine(t)

	require.NoError(t, eng.Start(testRecipe("a", 3, 3, 3)))

	var wg sync.WaitGroup
	for w := range 4 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range 200 {
				switch (w + i) % 4 {
				case 0:
					tickFor(clock, sched, time.Second)
				case 1:
					eng.PauseResume()
				case 2:
					_ = eng.Start(testRecipe("a", 3, 3, 3))
				case 3:
					if err := eng.Start(testRecipe("b", 1)); err != nil && !errors.Is(err, domain.ErrSessionBusy) {
						t.Errorf("unexpected start error: %v", err)
					}
				}
				st := eng.State()
				if entry, ok := st.Active(); ok {
					if entry.OverallRemainingSec < entry.StepRemainingSec {
						t.Errorf("overall %d < step %d", entry.OverallRemainingSec, entry.StepRemainingSec)
					}
				}
			}
		}()
	}
	wg.Wait()

	st := eng.State()
	if st.ActiveRecipeID != "" {
		_, ok := st.Entries[st.ActiveRecipeID]
		assert.True(t, ok)
	}
}
