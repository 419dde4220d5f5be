package overlay

import (
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
)

var settingsItemStyle = lipgloss.NewStyle().
	Foreground(lipgloss.Color("#dddddd"))

var settingsValueOnStyle = lipgloss.NewStyle().
	Foreground(lipgloss.Color("#36CFC9")).
	Bold(true)

var settingsValueOffStyle = lipgloss.NewStyle().
	Foreground(lipgloss.Color("#555555"))

var settingsValueStyle = lipgloss.NewStyle().
	Foreground(lipgloss.Color("#FFCC00"))

var settingsEditStyle = lipgloss.NewStyle().
	Foreground(lipgloss.Color("#1a1a1a")).
	Background(lipgloss.Color("#FFCC00"))

var settingsDescStyle = lipgloss.NewStyle().
	Foreground(lipgloss.Color("#777777")).
	Italic(true)

var settingsSeparatorStyle = lipgloss.NewStyle().
	Foreground(lipgloss.Color("#333333"))

// SettingType defines the kind of setting control.
type SettingType int

const (
	SettingToggle SettingType = iota // ON/OFF switch
	SettingPicker                    // Cycles through Options
	SettingText                      // Editable text field
	SettingNumber                    // Editable non-negative integer
)

// SettingItem represents a single configurable setting.
type SettingItem struct {
	Label       string
	Description string
	Type        SettingType
	Value       string // "true"/"false" for toggles
	Options     []string
	Key         string
}

// SettingsOverlay is an interactive settings screen.
type SettingsOverlay struct {
	items       []SettingItem
	selectedIdx int
	viewOffset  int
	maxVisible  int
	width       int
	editing     bool
	editBuffer  string
}

// NewSettingsOverlay creates a settings overlay over items.
func NewSettingsOverlay(items []SettingItem) *SettingsOverlay {
	return &SettingsOverlay{items: items, width: 60, maxVisible: 6}
}

// Editing reports whether a text or number field is being edited.
func (s *SettingsOverlay) Editing() bool {
	return s.editing
}

// HandleKeyPress processes key events.
// Returns (changedKey, closed): changedKey is non-empty when a value changed.
func (s *SettingsOverlay) HandleKeyPress(msg tea.KeyMsg) (string, bool) {
	if s.editing {
		return s.handleEditMode(msg)
	}

	switch msg.String() {
	case "esc", "q":
		return "", true
	case "up", "k":
		if s.selectedIdx > 0 {
			s.selectedIdx--
		}
	case "down", "j":
		if s.selectedIdx < len(s.items)-1 {
			s.selectedIdx++
		}
	case "enter", " ":
		if s.selectedIdx >= len(s.items) {
			return "", false
		}
		item := &s.items[s.selectedIdx]
		switch item.Type {
		case SettingToggle:
			item.Value = strconv.FormatBool(item.Value != "true")
			return item.Key, false
		case SettingPicker:
			if len(item.Options) == 0 {
				return "", false
			}
			next := 0
			for i, opt := range item.Options {
				if opt == item.Value {
					next = (i + 1) % len(item.Options)
					break
				}
			}
			item.Value = item.Options[next]
			return item.Key, false
		case SettingText, SettingNumber:
			s.editing = true
			s.editBuffer = item.Value
		}
	}
	s.viewOffset, _ = window(s.viewOffset, s.selectedIdx, s.maxVisible, len(s.items))
	return "", false
}

func (s *SettingsOverlay) handleEditMode(msg tea.KeyMsg) (string, bool) {
	item := &s.items[s.selectedIdx]
	switch msg.String() {
	case "esc":
		s.editing = false
		s.editBuffer = ""
	case "enter":
		s.editing = false
		value := strings.TrimSpace(s.editBuffer)
		s.editBuffer = ""
		if item.Type == SettingNumber && value == "" {
			return "", false
		}
		if value == item.Value {
			return "", false
		}
		item.Value = value
		return item.Key, false
	case "backspace":
		if s.editBuffer != "" {
			runes := []rune(s.editBuffer)
			s.editBuffer = string(runes[:len(runes)-1])
		}
	default:
		switch {
		case msg.Type == tea.KeyRunes && item.Type == SettingNumber:
			for _, r := range msg.Runes {
				if r >= '0' && r <= '9' {
					s.editBuffer += string(r)
				}
			}
		case msg.Type == tea.KeyRunes:
			s.editBuffer += string(msg.Runes)
		case msg.Type == tea.KeySpace && item.Type == SettingText:
			s.editBuffer += " "
		}
	}
	return "", false
}

// GetItem returns the setting with the given key.
func (s *SettingsOverlay) GetItem(key string) *SettingItem {
	for i := range s.items {
		if s.items[i].Key == key {
			return &s.items[i]
		}
	}
	return nil
}

// Values returns every setting keyed by Key.
func (s *SettingsOverlay) Values() map[string]string {
	out := make(map[string]string, len(s.items))
	for _, it := range s.items {
		out[it.Key] = it.Value
	}
	return out
}

// SetSize sets the display dimensions for the overlay.
func (s *SettingsOverlay) SetSize(width, height int) {
	if width > 20 {
		s.width = width
	}
	if height > 10 {
		// two lines per item; title, separator, hint and borders take 6
		s.maxVisible = (height - 6) / 2
		if s.maxVisible < 1 {
			s.maxVisible = 1
		}
	}
}

// Render returns the styled settings screen.
func (s *SettingsOverlay) Render() string {
	var b strings.Builder

	b.WriteString(overlayTitleStyle.Render("Settings"))
	b.WriteString("\n")

	innerWidth := s.width - 4
	if innerWidth < 20 {
		innerWidth = 20
	}
	b.WriteString(settingsSeparatorStyle.Render(strings.Repeat("─", innerWidth)))
	b.WriteString("\n")

	valueWidth := 5 // "[OFF]"
	for _, item := range s.items {
		switch item.Type {
		case SettingPicker:
			for _, opt := range item.Options {
				valueWidth = max(valueWidth, runewidth.StringWidth(opt))
			}
		case SettingText, SettingNumber:
			valueWidth = max(valueWidth, runewidth.StringWidth(item.Value))
		}
	}
	labelWidth := max(innerWidth-5-valueWidth, 10)

	start, end := window(s.viewOffset, s.selectedIdx, s.maxVisible, len(s.items))
	for i := start; i < end; i++ {
		item := s.items[i]
		selected := i == s.selectedIdx

		indicator := "  "
		if selected {
			indicator = " ▸"
		}

		var value string
		switch {
		case item.Type == SettingToggle && item.Value == "true":
			value = settingsValueOnStyle.Render("[ON]")
		case item.Type == SettingToggle:
			value = settingsValueOffStyle.Render("[OFF]")
		case s.editing && selected:
			buf := s.editBuffer
			if buf == "" {
				buf = " "
			}
			value = settingsEditStyle.Render(buf)
		default:
			value = settingsValueStyle.Render(item.Value)
		}

		label := fit(item.Label, labelWidth)
		if selected && !s.editing {
			b.WriteString(overlaySelectedStyle.Render(indicator+" "+label) + "  " + value)
		} else {
			b.WriteString(settingsItemStyle.Render(indicator+" "+label) + "  " + value)
		}
		if item.Description != "" {
			b.WriteString("\n")
			b.WriteString(settingsDescStyle.Render("    " + fit(item.Description, innerWidth-4)))
		}
		if i < end-1 {
			b.WriteString("\n")
		}
	}

	if start > 0 || end < len(s.items) {
		b.WriteString("\n")
		b.WriteString(overlayHintStyle.Render(scrollHint(start, len(s.items)-end)))
	}

	b.WriteString("\n")
	if s.editing {
		b.WriteString(overlayHintStyle.Render("type to edit • enter save • esc cancel"))
	} else {
		b.WriteString(overlayHintStyle.Render("↑↓ navigate • enter toggle/edit • esc close"))
	}
	return overlayStyle.Render(b.String())
}
