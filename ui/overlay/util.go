package overlay

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
)

var overlayStyle = lipgloss.NewStyle().
	Border(lipgloss.RoundedBorder()).
	BorderForeground(lipgloss.Color("#F0A868")).
	Padding(0, 1)

var overlayTitleStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(lipgloss.Color("#F0A868")).
	MarginBottom(1)

var overlayHintStyle = lipgloss.NewStyle().
	Foreground(lipgloss.Color("#666666")).
	MarginTop(1)

var overlaySelectedStyle = lipgloss.NewStyle().
	Foreground(lipgloss.Color("#1a1a1a")).
	Background(lipgloss.Color("#7EC8D8"))

// fit truncates s to width display cells, marking the cut with "…", and
// pads the result to exactly width cells. Wide runes count double.
func fit(s string, width int) string {
	if width <= 0 {
		return ""
	}
	return runewidth.FillRight(runewidth.Truncate(s, width, "…"), width)
}

// window returns the [start, end) slice of n items that keeps selected in
// view, given the current offset and page size.
func window(offset, selected, size, n int) (int, int) {
	if size < 1 {
		size = 1
	}
	if selected >= offset+size {
		offset = selected - size + 1
	}
	if selected < offset {
		offset = selected
	}
	if offset < 0 {
		offset = 0
	}
	end := offset + size
	if end > n {
		end = n
	}
	return offset, end
}

func scrollHint(above, below int) string {
	var parts []string
	if above > 0 {
		parts = append(parts, fmt.Sprintf("↑ %d", above))
	}
	if below > 0 {
		parts = append(parts, fmt.Sprintf("↓ %d", below))
	}
	return "  " + strings.Join(parts, "  ")
}
