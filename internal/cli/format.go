package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/hammamikhairi/stepchef/internal/domain"
)

var (
	styleHeader = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#a5b4fc"))
	styleDim    = lipgloss.NewStyle().Foreground(lipgloss.Color("#71717a"))
	styleFav    = lipgloss.NewStyle().Foreground(lipgloss.Color("#fca5a5"))
)

// renderTable renders an aligned table with a header separator line.
// Widths are measured with lipgloss so styled cells line up.
func renderTable(headers []string, rows [][]string) string {
	if len(headers) == 0 {
		return ""
	}
	cols := len(headers)

	widths := make([]int, cols)
	for i, h := range headers {
		widths[i] = lipgloss.Width(h)
	}
	for _, row := range rows {
		for i := 0; i < cols && i < len(row); i++ {
			widths[i] = max(widths[i], lipgloss.Width(row[i]))
		}
	}

	const colGap = 2
	var b strings.Builder
	writeRow := func(cells []string, style func(string) string) {
		for i := 0; i < cols; i++ {
			cell := ""
			if i < len(cells) {
				cell = cells[i]
			}
			b.WriteString(style(cell))
			if i < cols-1 {
				b.WriteString(strings.Repeat(" ", widths[i]-lipgloss.Width(cell)+colGap))
			}
		}
		b.WriteString("\n")
	}

	writeRow(headers, func(s string) string { return styleHeader.Render(s) })
	for i, w := range widths {
		b.WriteString(styleDim.Render(strings.Repeat("─", w)))
		if i < cols-1 {
			b.WriteString(strings.Repeat(" ", colGap))
		}
	}
	b.WriteString("\n")
	for _, row := range rows {
		writeRow(row, func(s string) string { return s })
	}
	return b.String()
}

// formatRecipeList renders summaries numbered from 1, the positions the
// cook command accepts.
func formatRecipeList(list []domain.RecipeSummary) string {
	if len(list) == 0 {
		return styleDim.Render("No recipes yet. Run `stepchef recipes seed` or `stepchef recipes add --file recipe.yaml`.") + "\n"
	}
	rows := make([][]string, 0, len(list))
	for i, r := range list {
		fav := ""
		if r.IsFavorite {
			fav = styleFav.Render("★")
		}
		rows = append(rows, []string{
			strconv.Itoa(i + 1),
			fav,
			r.Title,
			string(r.Difficulty),
			fmt.Sprintf("%d min", r.TotalTimeMinutes),
			strconv.Itoa(r.TotalIngredients),
			strconv.Itoa(r.ComplexityScore),
			r.ID,
		})
	}
	return renderTable([]string{"#", "", "TITLE", "DIFFICULTY", "TIME", "INGREDIENTS", "COMPLEXITY", "ID"}, rows)
}

// formatRecipe renders one recipe in full.
func formatRecipe(r *domain.Recipe) string {
	var b strings.Builder
	title := r.Title
	if r.IsFavorite {
		title += " " + styleFav.Render("★")
	}
	b.WriteString(styleHeader.Render(title) + "\n")
	fmt.Fprintf(&b, "%s · %d min · complexity %d · %s\n\n",
		difficultyOrDash(r.Difficulty), r.TotalTimeMinutes(), r.ComplexityScore(), styleDim.Render(r.ID))

	b.WriteString(styleHeader.Render("Ingredients") + "\n")
	for _, ing := range r.Ingredients {
		fmt.Fprintf(&b, "  - %s %s %s\n", strconv.FormatFloat(ing.Quantity, 'f', -1, 64), ing.Unit, ing.Name)
	}

	b.WriteString("\n" + styleHeader.Render("Steps") + "\n")
	for i, st := range r.Steps {
		fmt.Fprintf(&b, "  %d. %s (%d min)\n", i+1, st.Description, st.DurationMinutes)
		if d := stepDetail(r, st); d != "" {
			b.WriteString("     " + styleDim.Render(d) + "\n")
		}
	}
	return b.String()
}

func stepDetail(r *domain.Recipe, st domain.Step) string {
	switch st.Kind {
	case domain.StepCooking:
		if st.Cooking != nil {
			return fmt.Sprintf("%d°C, speed %d", st.Cooking.TemperatureC, st.Cooking.Speed)
		}
	case domain.StepInstruction:
		names := make([]string, 0, len(st.IngredientIDs))
		for _, id := range st.IngredientIDs {
			if ing, ok := r.Ingredient(id); ok {
				names = append(names, ing.Name)
			}
		}
		return strings.Join(names, ", ")
	}
	return ""
}

func difficultyOrDash(d domain.Difficulty) string {
	if d == "" {
		return "-"
	}
	return string(d)
}
