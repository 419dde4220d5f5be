package overlay

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
)

var pickerItemStyle = lipgloss.NewStyle().
	Foreground(lipgloss.Color("#dddddd"))

var pickerSummaryStyle = lipgloss.NewStyle().
	Foreground(lipgloss.Color("#777777"))

var pickerDoneStyle = lipgloss.NewStyle().
	Foreground(lipgloss.Color("#36CFC9"))

var pickerSearchStyle = lipgloss.NewStyle().
	Border(lipgloss.RoundedBorder()).
	BorderForeground(lipgloss.Color("#555555")).
	Padding(0, 1)

var pickerPlaceholderStyle = lipgloss.NewStyle().
	Foreground(lipgloss.Color("#666666"))

// SandboxID is returned when the learner picks the free sandbox entry.
const SandboxID = "sandbox"

// PickerItem is one lesson row.
type PickerItem struct {
	ID      string
	Title   string
	Summary string
	// Progress is shown on the right, e.g. "3/5" or "done".
	Progress  string
	Completed bool
}

// LessonPicker is a searchable list of lessons. The first row is always the
// sandbox.
type LessonPicker struct {
	items       []PickerItem
	filtered    []PickerItem
	selectedIdx int
	viewOffset  int
	query       string
	width       int
	maxVisible  int
}

// NewLessonPicker creates a picker over items, preselecting currentID.
func NewLessonPicker(items []PickerItem, currentID string) *LessonPicker {
	all := append([]PickerItem{{ID: SandboxID, Title: "Sandbox", Summary: "Free practice, no grading"}}, items...)
	p := &LessonPicker{items: all, width: 64, maxVisible: 10}
	p.applyFilter()
	if currentID == "" {
		currentID = SandboxID
	}
	for i, it := range p.filtered {
		if it.ID == currentID {
			p.selectedIdx = i
		}
	}
	p.viewOffset, _ = window(p.viewOffset, p.selectedIdx, p.maxVisible, len(p.filtered))
	return p
}

func (p *LessonPicker) applyFilter() {
	p.filtered = p.filtered[:0]
	q := strings.ToLower(p.query)
	for _, it := range p.items {
		if q == "" ||
			strings.Contains(strings.ToLower(it.Title), q) ||
			strings.Contains(strings.ToLower(it.ID), q) ||
			strings.Contains(strings.ToLower(it.Summary), q) {
			p.filtered = append(p.filtered, it)
		}
	}
	p.selectedIdx = 0
	p.viewOffset = 0
}

// Selected returns the highlighted item.
func (p *LessonPicker) Selected() (PickerItem, bool) {
	if p.selectedIdx >= len(p.filtered) {
		return PickerItem{}, false
	}
	return p.filtered[p.selectedIdx], true
}

// HandleKeyPress processes key events.
// Returns (id, closed): id is non-empty when a lesson was chosen.
func (p *LessonPicker) HandleKeyPress(msg tea.KeyMsg) (string, bool) {
	switch msg.String() {
	case "esc":
		return "", true
	case "enter":
		if it, ok := p.Selected(); ok {
			return it.ID, true
		}
		return "", false
	case "up", "ctrl+k":
		p.ScrollUp()
	case "down", "ctrl+j":
		p.ScrollDown()
	case "backspace":
		if p.query != "" {
			runes := []rune(p.query)
			p.query = string(runes[:len(runes)-1])
			p.applyFilter()
		}
	default:
		if msg.Type == tea.KeyRunes {
			p.query += string(msg.Runes)
			p.applyFilter()
		} else if msg.Type == tea.KeySpace {
			p.query += " "
			p.applyFilter()
		}
	}
	return "", false
}

// ScrollUp moves the selection up by one.
func (p *LessonPicker) ScrollUp() {
	if p.selectedIdx > 0 {
		p.selectedIdx--
	}
	p.viewOffset, _ = window(p.viewOffset, p.selectedIdx, p.maxVisible, len(p.filtered))
}

// ScrollDown moves the selection down by one.
func (p *LessonPicker) ScrollDown() {
	if p.selectedIdx < len(p.filtered)-1 {
		p.selectedIdx++
	}
	p.viewOffset, _ = window(p.viewOffset, p.selectedIdx, p.maxVisible, len(p.filtered))
}

// SetSize sets the display dimensions for the picker.
func (p *LessonPicker) SetSize(width, height int) {
	if width > 24 {
		p.width = width
	}
	if height > 8 {
		// title, search box, hint, borders
		p.maxVisible = (height - 8) / 2
		if p.maxVisible < 1 {
			p.maxVisible = 1
		}
	}
}

// Render returns the styled picker.
func (p *LessonPicker) Render() string {
	var b strings.Builder
	b.WriteString(overlayTitleStyle.Render("Lessons"))
	b.WriteString("\n")

	innerWidth := p.width - 4
	if innerWidth < 16 {
		innerWidth = 16
	}
	search := p.query
	if search == "" {
		search = pickerPlaceholderStyle.Render("Type to filter...")
	}
	b.WriteString(pickerSearchStyle.Width(innerWidth).Render(search))
	b.WriteString("\n")

	if len(p.filtered) == 0 {
		b.WriteString(overlayHintStyle.Render("  No matches"))
	} else {
		progWidth := 1
		for _, it := range p.filtered {
			if w := runewidth.StringWidth(it.Progress); w > progWidth {
				progWidth = w
			}
		}
		// indicator(2) + " " + title + "  " + progress
		titleWidth := innerWidth - 5 - progWidth
		if titleWidth < 8 {
			titleWidth = 8
		}

		start, end := window(p.viewOffset, p.selectedIdx, p.maxVisible, len(p.filtered))
		for i := start; i < end; i++ {
			it := p.filtered[i]
			indicator := "  "
			if i == p.selectedIdx {
				indicator = " ▸"
			}
			title := fit(it.Title, titleWidth)
			prog := fit(it.Progress, progWidth)

			if i == p.selectedIdx {
				b.WriteString(overlaySelectedStyle.Render(indicator + " " + title + "  " + prog))
			} else {
				progStyle := pickerSummaryStyle
				if it.Completed {
					progStyle = pickerDoneStyle
				}
				b.WriteString(indicator + " " + pickerItemStyle.Render(title) + "  " + progStyle.Render(prog))
			}
			if it.Summary != "" {
				b.WriteString("\n")
				b.WriteString(pickerSummaryStyle.Render("    " + fit(it.Summary, innerWidth-4)))
			}
			if i < end-1 {
				b.WriteString("\n")
			}
		}
		if start > 0 || end < len(p.filtered) {
			b.WriteString("\n")
			b.WriteString(overlayHintStyle.Render(scrollHint(start, len(p.filtered)-end)))
		}
	}

	b.WriteString("\n")
	b.WriteString(overlayHintStyle.Render("↑↓ navigate • enter start • esc close"))
	return overlayStyle.Render(b.String())
}
