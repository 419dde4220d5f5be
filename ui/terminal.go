package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/muesli/reflow/wordwrap"

	"github.com/ByteMirror/gitcoach/gitsim"
)

const (
	terminalPrompt = "$ "
	historyLimit   = 200
)

// TerminalPane shows the transcript and the input line the learner types
// commands into.
type TerminalPane struct {
	viewport viewport.Model
	input    textinput.Model

	width, height int
	focused       bool
	entries       []gitsim.TranscriptEntry

	// history holds submitted lines, oldest first. histPos == len(history)
	// means the learner is editing a fresh line, saved in draft.
	history []string
	histPos int
	draft   string
}

// NewTerminalPane creates an empty terminal with a focused input.
func NewTerminalPane() *TerminalPane {
	ti := textinput.New()
	ti.Prompt = promptStyle.Render(terminalPrompt)
	ti.Placeholder = "git status"
	ti.CharLimit = 512
	ti.Focus()

	return &TerminalPane{
		viewport: viewport.New(0, 0),
		input:    ti,
		focused:  true,
	}
}

// SetSize sets the outer size of the pane, border included.
func (t *TerminalPane) SetSize(width, height int) {
	t.width = width
	t.height = height
	// border (2) + input line (1)
	t.viewport.Width = max(width-4, 1)
	t.viewport.Height = max(height-3, 1)
	t.input.Width = max(width-6-len(terminalPrompt), 1)
	t.refresh()
}

// SetFocused toggles the input cursor and border highlight.
func (t *TerminalPane) SetFocused(focused bool) {
	t.focused = focused
	if focused {
		t.input.Focus()
	} else {
		t.input.Blur()
	}
}

// SetEntries replaces the displayed transcript and scrolls to the bottom.
func (t *TerminalPane) SetEntries(entries []gitsim.TranscriptEntry) {
	t.entries = append(t.entries[:0], entries...)
	t.refresh()
}

// Append shows one more entry and scrolls to the bottom.
func (t *TerminalPane) Append(e gitsim.TranscriptEntry) {
	t.entries = append(t.entries, e)
	t.refresh()
}

// Clear empties the display. The session transcript is untouched.
func (t *TerminalPane) Clear() {
	t.entries = nil
	t.refresh()
}

func (t *TerminalPane) refresh() {
	width := t.viewport.Width
	blocks := make([]string, 0, len(t.entries))
	for _, e := range t.entries {
		blocks = append(blocks, RenderEntry(e, width))
	}
	t.viewport.SetContent(strings.Join(blocks, "\n"))
	t.viewport.GotoBottom()
}

// Value is the current input line.
func (t *TerminalPane) Value() string {
	return t.input.Value()
}

// SetValue replaces the input line, e.g. when a demo types a command.
func (t *TerminalPane) SetValue(s string) {
	t.input.SetValue(s)
	t.input.CursorEnd()
}

// Submit takes the input line, records it in history and clears the input.
// ok is false for a blank line.
func (t *TerminalPane) Submit() (line string, ok bool) {
	line = strings.TrimSpace(t.input.Value())
	t.input.Reset()
	t.draft = ""
	if line == "" {
		t.histPos = len(t.history)
		return "", false
	}
	if n := len(t.history); n == 0 || t.history[n-1] != line {
		t.history = append(t.history, line)
		if len(t.history) > historyLimit {
			t.history = t.history[len(t.history)-historyLimit:]
		}
	}
	t.histPos = len(t.history)
	return line, true
}

// HistoryPrev recalls the previous submitted line.
func (t *TerminalPane) HistoryPrev() {
	if t.histPos == 0 {
		return
	}
	if t.histPos == len(t.history) {
		t.draft = t.input.Value()
	}
	t.histPos--
	t.SetValue(t.history[t.histPos])
}

// HistoryNext walks forward through history, ending on the saved draft.
func (t *TerminalPane) HistoryNext() {
	if t.histPos >= len(t.history) {
		return
	}
	t.histPos++
	if t.histPos == len(t.history) {
		t.SetValue(t.draft)
		return
	}
	t.SetValue(t.history[t.histPos])
}

// Update forwards messages (keys, cursor blink) to the input.
func (t *TerminalPane) Update(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	t.input, cmd = t.input.Update(msg)
	return cmd
}

func (t *TerminalPane) ScrollUp()   { t.viewport.LineUp(3) }
func (t *TerminalPane) ScrollDown() { t.viewport.LineDown(3) }
func (t *TerminalPane) PageUp()     { t.viewport.ViewUp() }
func (t *TerminalPane) PageDown()   { t.viewport.ViewDown() }

// String renders the pane.
func (t *TerminalPane) String() string {
	if t.width == 0 || t.height == 0 {
		return ""
	}
	body := t.viewport.View() + "\n" + t.input.View()
	style := windowStyle
	if t.focused {
		style = focusedWindowStyle
	}
	return style.Width(t.width - 2).Height(t.height - 2).Render(body)
}

// RenderEntry formats one transcript entry the way a shell shows it: the
// prompt and command, then the output wrapped to width.
func RenderEntry(e gitsim.TranscriptEntry, width int) string {
	var b strings.Builder
	b.WriteString(promptStyle.Render(terminalPrompt))
	b.WriteString(e.Command)
	if e.Output == "" {
		return b.String()
	}
	out := e.Output
	if width > 0 {
		out = wordwrap.String(out, width)
	}
	b.WriteString("\n")
	if e.Success {
		b.WriteString(out)
	} else {
		b.WriteString(errorStyle.Render(out))
	}
	return b.String()
}

// PlainTranscript renders entries without styling, for the clipboard and
// non-interactive output.
func PlainTranscript(entries []gitsim.TranscriptEntry) string {
	var b strings.Builder
	for i, e := range entries {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(terminalPrompt)
		b.WriteString(e.Command)
		if e.Output != "" {
			b.WriteString("\n")
			b.WriteString(e.Output)
		}
	}
	return b.String()
}
