package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/muesli/reflow/wordwrap"
	"github.com/muesli/reflow/wrap"
)

// truncate shortens value to limit display cells, adding an ellipsis.
func truncate(value string, limit int) string {
	value = strings.TrimSpace(value)
	if limit <= 0 {
		return value
	}
	return ansi.Truncate(value, limit, "…")
}

// firstLine returns the first non-empty line of value.
func firstLine(value string) string {
	for _, line := range strings.Split(value, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			return line
		}
	}
	return ""
}

// padRight pads s with spaces to width display cells.
func padRight(s string, width int) string {
	if width <= 0 {
		return s
	}
	w := lipgloss.Width(s)
	if w >= width {
		return s
	}
	return s + strings.Repeat(" ", width-w)
}

// spread places left and right on one line of width cells, truncating left
// when both do not fit.
func spread(left, right string, width int) string {
	rw := lipgloss.Width(right)
	if rw >= width {
		return ansi.Truncate(right, width, "")
	}
	left = ansi.Truncate(left, max(0, width-rw-1), "…")
	gap := width - lipgloss.Width(left) - rw
	return left + strings.Repeat(" ", max(1, gap)) + right
}

// wrapText word-wraps value to width, hard-breaking words longer than a line.
func wrapText(value string, width int) string {
	if width <= 0 {
		return value
	}
	return wrap.String(wordwrap.String(value, width), width)
}

// formatRelativeTime renders t relative to now: "just now", "5m ago", "3h ago",
// "yesterday", "4d ago", then a date.
func formatRelativeTime(t, now time.Time) string {
	if t.IsZero() {
		return ""
	}
	diff := now.Sub(t)
	if diff < 0 {
		diff = 0
	}
	minutes := int(diff / time.Minute)
	hours := int(diff / time.Hour)
	days := hours / 24
	switch {
	case diff < time.Minute:
		return "just now"
	case minutes < 60:
		return fmt.Sprintf("%dm ago", minutes)
	case hours < 24:
		return fmt.Sprintf("%dh ago", hours)
	case days == 1:
		return "yesterday"
	case days < 7:
		return fmt.Sprintf("%dd ago", days)
	default:
		return t.Local().Format("2006-01-02")
	}
}

// formatClock renders the time of day of t, with the date when it is not today.
func formatClock(t, now time.Time) string {
	if t.IsZero() {
		return ""
	}
	t = t.Local()
	now = now.Local()
	if t.Year() == now.Year() && t.YearDay() == now.YearDay() {
		return t.Format("15:04")
	}
	return t.Format("Jan 2 15:04")
}
