package components

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/rxdrill/internal/ui/theme"
)

// ProgressBar is a one-line horizontal bar.
type ProgressBar struct {
	Label       string
	Percent     float64
	ShowPercent bool
	Width       int
}

// NewProgressBar creates a bar for current out of target.
func NewProgressBar(label string, current, target, width int) ProgressBar {
	var pct float64
	if target > 0 {
		pct = float64(current) / float64(target)
	}
	return ProgressBar{Label: label, Percent: pct, ShowPercent: true, Width: width}
}

// View renders the bar.
func (p ProgressBar) View() string {
	var b strings.Builder
	if p.Label != "" {
		b.WriteString(theme.Label.Render(p.Label))
	}

	barWidth := p.Width - lipgloss.Width(b.String())
	if p.ShowPercent {
		barWidth -= 6
	}
	barWidth = max(barWidth, 4)

	filled := min(max(int(float64(barWidth)*p.Percent), 0), barWidth)
	b.WriteString(theme.ProgressFilled.Render(strings.Repeat(" ", filled)))
	b.WriteString(theme.ProgressEmpty.Render(strings.Repeat(" ", barWidth-filled)))

	if p.ShowPercent {
		pct := min(max(int(p.Percent*100), 0), 100)
		b.WriteString(theme.Hint.Render(fmt.Sprintf("  %d%%", pct)))
	}
	return b.String()
}

// Stars renders a 0-3 star rating.
func Stars(n int) string {
	n = min(max(n, 0), 3)
	return theme.Warning.Render(strings.Repeat("★", n)) + theme.Hint.Render(strings.Repeat("☆", 3-n))
}
