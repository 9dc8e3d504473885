package engine

import (
	"math"
	"time"

	"github.com/hammamikhairi/stepchef/internal/domain"
)

// Progress is what the cooking page and mini-player render for a session.
type Progress struct {
	RecipeID         string
	Title            string
	StepIndex        int
	StepCount        int
	Step             domain.Step
	Status           domain.SessionStatus
	StepRemaining    time.Duration
	StepTotal        time.Duration
	OverallRemaining time.Duration
	OverallTotal     time.Duration
	StepPercent      int
	OverallPercent   int
}

// Progress describes the active session, if any.
func (e *Engine) Progress() (Progress, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	entry, ok := e.activeLocked()
	if !ok {
		return Progress{}, false
	}
	return ProgressOf(e.recipes[e.activeID], entry), true
}

// ProgressOf computes the progress of entry through recipe.
func ProgressOf(recipe *domain.Recipe, entry domain.SessionEntry) Progress {
	idx := min(max(entry.CurrentStepIndex, 0), len(recipe.Steps)-1)
	step := recipe.Steps[idx]
	stepTotal := step.DurationSec()
	overallTotal := recipe.TotalDurationSec()

	return Progress{
		RecipeID:         recipe.ID,
		Title:            recipe.Title,
		StepIndex:        idx,
		StepCount:        len(recipe.Steps),
		Step:             step,
		Status:           entry.Status(),
		StepRemaining:    seconds(entry.StepRemainingSec),
		StepTotal:        seconds(stepTotal),
		OverallRemaining: seconds(entry.OverallRemainingSec),
		OverallTotal:     seconds(overallTotal),
		StepPercent:      percent(stepTotal-entry.StepRemainingSec, stepTotal),
		OverallPercent:   percent(overallTotal-entry.OverallRemainingSec, overallTotal),
	}
}

// Timeline labels each step of recipe relative to entry. A nil entry means
// no session, so every step is upcoming.
func Timeline(recipe *domain.Recipe, entry *domain.SessionEntry) []domain.StepStatus {
	out := make([]domain.StepStatus, len(recipe.Steps))
	if entry == nil {
		return out
	}
	for i := range out {
		switch {
		case i < entry.CurrentStepIndex:
			out[i] = domain.StepCompleted
		case i == entry.CurrentStepIndex:
			out[i] = domain.StepCurrent
		}
	}
	return out
}

func seconds(n int) time.Duration { return time.Duration(n) * time.Second }

func percent(elapsed, total int) int {
	if total <= 0 {
		return 0
	}
	p := int(math.Round(float64(max(0, elapsed)) / float64(total) * 100))
	return min(p, 100)
}
