package display

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"

	"github.com/hammamikhairi/stepchef/internal/domain"
	"github.com/hammamikhairi/stepchef/internal/engine"
)

// timelineMarks is the glyph drawn in front of each timeline entry.
var timelineMarks = map[domain.StepStatus]string{
	domain.StepCompleted: "✓",
	domain.StepCurrent:   "▶",
	domain.StepUpcoming:  "·",
}

// renderPage draws the full cooking page for one session.
func renderPage(p engine.Progress, r *domain.Recipe, timeline []domain.StepStatus, bar progress.Model, width int) string {
	inner := max(width-4, 20)
	bar.Width = max(inner-12, 10)

	var b strings.Builder
	b.WriteString(titleStyle.Render(p.Title))
	b.WriteString("  ")
	b.WriteString(statusText(p.Status))
	b.WriteByte('\n')

	b.WriteString(stepStyle.Render(fmt.Sprintf("Step %d/%d", p.StepIndex+1, p.StepCount)))
	b.WriteString(secondaryStyle.Render(fmt.Sprintf("  (%s)", p.Step.Kind)))
	b.WriteByte('\n')
	b.WriteString(primaryStyle.Width(inner).Render(p.Step.Description))
	b.WriteByte('\n')

	if c := stepChips(p.Step, r); len(c) > 0 {
		rendered := make([]string, len(c))
		for i, s := range c {
			rendered[i] = chipStyle.Render(s)
		}
		b.WriteString(strings.Join(rendered, " "))
		b.WriteByte('\n')
	}
	b.WriteByte('\n')

	b.WriteString(labelStyle.Render("step    "))
	b.WriteString(bar.ViewAs(float64(p.StepPercent) / 100))
	b.WriteString(" " + timerRunStyle.Render(fmtDuration(p.StepRemaining)))
	b.WriteByte('\n')
	b.WriteString(labelStyle.Render("overall "))
	b.WriteString(bar.ViewAs(float64(p.OverallPercent) / 100))
	b.WriteString(" " + timerRunStyle.Render(fmtDuration(p.OverallRemaining)))
	b.WriteString("\n\n")

	b.WriteString(renderTimeline(r, timeline))
	return pageStyle.Width(width - 2).Render(strings.TrimRight(b.String(), "\n"))
}

// renderTimeline lists every step with its Completed/Current/Upcoming mark.
func renderTimeline(r *domain.Recipe, timeline []domain.StepStatus) string {
	var b strings.Builder
	for i, st := range r.Steps {
		status := domain.StepUpcoming
		if i < len(timeline) {
			status = timeline[i]
		}
		line := fmt.Sprintf("%s %d. %s  %s", timelineMarks[status], i+1, truncate(st.Description, 48), fmtMinutes(st.DurationMinutes))
		switch status {
		case domain.StepCurrent:
			b.WriteString(stepStyle.Render(line))
		case domain.StepCompleted:
			b.WriteString(secondaryStyle.Render(line))
		default:
			b.WriteString(primaryStyle.Render(line))
		}
		b.WriteByte('\n')
	}
	return b.String()
}

// renderMini draws the one-line mini-player bar.
func renderMini(p engine.Progress, width int) string {
	parts := []string{
		labelStyle.Render(truncate(p.Title, 24)),
		labelStyle.Render(fmt.Sprintf("step %d/%d", p.StepIndex+1, p.StepCount)),
	}
	remaining := fmtDuration(p.StepRemaining)
	if p.Status == domain.SessionPaused {
		parts = append(parts, timerPausedStyle.Render(remaining+" paused"))
	} else {
		parts = append(parts, timerRunStyle.Render(remaining))
	}
	parts = append(parts, labelStyle.Render(strconv.Itoa(p.OverallPercent)+"% overall"))

	content := " " + strings.Join(parts, sepStyle.Render("  │  ")) + " "
	if width <= 0 {
		width = 80
	}
	return barBg.Width(width).Render(content)
}

// stepChips are the small labels under the step description: appliance
// settings for cooking steps, ingredients for instruction steps.
func stepChips(step domain.Step, r *domain.Recipe) []string {
	var out []string
	switch step.Kind {
	case domain.StepCooking:
		if step.Cooking != nil {
			out = append(out,
				fmt.Sprintf("%d°C", step.Cooking.TemperatureC),
				fmt.Sprintf("speed %d", step.Cooking.Speed))
		}
	case domain.StepInstruction:
		for _, id := range step.IngredientIDs {
			if ing, ok := r.Ingredient(id); ok {
				out = append(out, fmt.Sprintf("%s %s %s", ing.Name, fmtQuantity(ing.Quantity), ing.Unit))
			}
		}
	}
	return out
}

func statusText(s domain.SessionStatus) string {
	if s == domain.SessionPaused {
		return timerPausedStyle.Render("paused")
	}
	return timerRunStyle.Render(strings.ToLower(s.String()))
}

// ── Helpers ──────────────────────────────────────────────────────

func fmtDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	d = d.Round(time.Second)
	m := int(d.Minutes())
	s := int(d.Seconds()) % 60
	if m == 0 {
		return fmt.Sprintf("%ds", s)
	}
	return fmt.Sprintf("%dm%02ds", m, s)
}

func fmtMinutes(n int) string {
	if n < 60 {
		return fmt.Sprintf("%dm", n)
	}
	if n%60 == 0 {
		return fmt.Sprintf("%dh", n/60)
	}
	return fmt.Sprintf("%dh%02dm", n/60, n%60)
}

func fmtQuantity(q float64) string {
	return strconv.FormatFloat(q, 'f', -1, 64)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	if n <= 1 {
		return string(r[:n])
	}
	return string(r[:n-1]) + "…"
}
