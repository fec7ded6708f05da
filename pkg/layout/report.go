package layout

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
)

var (
	mintGreen = lipgloss.Color("#A8E6CF") // passed
	errorRed  = lipgloss.Color("203")     // failed
	mutedGray = lipgloss.Color("#6B7280") // durations and details
	salmon    = lipgloss.Color("#FFB3BA") // summary border

	passStyle   = lipgloss.NewStyle().Foreground(mintGreen)
	failStyle   = lipgloss.NewStyle().Foreground(errorRed).Bold(true)
	detailStyle = lipgloss.NewStyle().Foreground(mutedGray)
)

// Report renders results as one line per page or section followed by a
// summary box. width bounds the summary box; zero means 60 columns.
func Report(results []Result, width int) string {
	if width <= 0 {
		width = 60
	}

	var b strings.Builder
	for _, r := range results {
		depth := strings.Count(r.Path, " > ")
		name := r.Path
		if i := strings.LastIndex(name, " > "); i >= 0 {
			name = name[i+3:]
		}
		if r.Portal {
			name += " (portal)"
		}

		indent := strings.Repeat("  ", depth)
		duration := detailStyle.Render(r.Duration.Round(time.Millisecond).String())
		if r.Passed() {
			fmt.Fprintf(&b, "%s%s %s %s\n", indent, passStyle.Render("✓"), name, duration)
			continue
		}
		fmt.Fprintf(&b, "%s%s %s %s\n", indent, failStyle.Render("✗"), name, duration)
		fmt.Fprintf(&b, "%s  %s\n", indent, detailStyle.Render(r.Err.Error()))
	}

	failed := Failed(results)
	summary := fmt.Sprintf("%d checked, %d passed, %d failed", len(results), len(results)-failed, failed)
	border := mintGreen
	if failed > 0 {
		border = errorRed
	}
	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(border).
		Padding(0, 1).
		Width(width)
	if len(results) == 0 {
		box = box.BorderForeground(salmon)
		summary = "no pages selected"
	}

	b.WriteString(box.Render(summary))
	b.WriteString("\n")
	return b.String()
}
