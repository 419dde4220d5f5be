package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"

	"github.com/ByteMirror/gitcoach/lesson"
)

const sandboxHelp = `## Sandbox

Type git commands and watch the repository change.

- ` + "`touch <file>`" + ` creates or edits a file
- ` + "`git help`" + ` lists supported commands
- **ctrl+p** picks a lesson, **ctrl+d** plays a demo
`

var (
	checkDone    = lipgloss.NewStyle().Foreground(greenColor).Render("✓")
	checkCurrent = lipgloss.NewStyle().Foreground(accentColor).Render("▸")
	checkPending = lipgloss.NewStyle().Foreground(dimColor).Render("○")
	hintStyle    = lipgloss.NewStyle().Foreground(cyanColor).Italic(true)
	currentStyle = lipgloss.NewStyle().Bold(true)
)

// LessonPanel shows the lesson text, its steps and the hint for the current
// step. With no lesson it shows sandbox help.
type LessonPanel struct {
	width, height int
	style         string
	lesson        *lesson.Lesson
	done          int
	showHint      bool

	// body caches the glamour output, which is slow to produce.
	body      string
	bodyKey   string
	bodyWidth int
}

// NewLessonPanel creates a panel rendering markdown with the given glamour
// style ("dark", "light", "notty", "auto", ...).
func NewLessonPanel(style string) *LessonPanel {
	return &LessonPanel{style: style}
}

func (p *LessonPanel) SetSize(width, height int) {
	p.width = width
	p.height = height
}

// SetLesson switches lessons. Nil shows the sandbox help.
func (p *LessonPanel) SetLesson(l *lesson.Lesson) {
	p.lesson = l
	p.done = 0
	p.body = ""
}

// SetProgress records how many steps are complete.
func (p *LessonPanel) SetProgress(done int) {
	p.done = done
}

func (p *LessonPanel) SetStyle(style string) {
	if style != p.style {
		p.style = style
		p.body = ""
	}
}

func (p *LessonPanel) SetShowHint(show bool) {
	p.showHint = show
}

func (p *LessonPanel) ToggleHint() {
	p.showHint = !p.showHint
}

func (p *LessonPanel) HintShown() bool {
	return p.showHint
}

func (p *LessonPanel) String() string {
	if p.width == 0 || p.height == 0 {
		return ""
	}
	inner := max(p.width-4, 10)
	innerHeight := max(p.height-2, 1)

	var content string
	if p.lesson == nil {
		content = p.markdown(sandboxHelp, "sandbox", inner)
	} else {
		content = p.renderLesson(inner)
	}
	lines := strings.Split(content, "\n")
	if len(lines) > innerHeight {
		lines = lines[:innerHeight]
	}
	return windowStyle.Width(p.width - 2).Height(innerHeight).Render(strings.Join(lines, "\n"))
}

func (p *LessonPanel) renderLesson(width int) string {
	l := p.lesson
	var b strings.Builder
	b.WriteString(titleStyle.Render(l.Title))
	b.WriteString("\n")
	b.WriteString(ProgressBar(p.done, len(l.Steps), min(width, 24)))
	b.WriteString("\n")

	if strings.TrimSpace(l.Body) != "" {
		b.WriteString(p.markdown(l.Body, l.ID, width))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	for i, step := range l.Steps {
		mark := checkPending
		prompt := step.Prompt
		if prompt == "" {
			prompt = fmt.Sprintf("Step %d", i+1)
		}
		switch {
		case i < p.done:
			mark = checkDone
			prompt = dimStyle.Render(prompt)
		case i == p.done:
			mark = checkCurrent
			prompt = currentStyle.Render(prompt)
		}
		b.WriteString(mark + " " + wordwrap.String(prompt, width-2))
		b.WriteString("\n")
	}

	if p.done >= len(l.Steps) {
		b.WriteString("\n")
		b.WriteString(successStyle.Render("Lesson complete! ctrl+p picks the next one."))
		return b.String()
	}
	if step := l.Steps[p.done]; p.showHint && step.Hint != "" {
		b.WriteString("\n")
		b.WriteString(hintStyle.Render(wordwrap.String("Hint: "+step.Hint, width)))
	} else if step.Hint != "" {
		b.WriteString("\n")
		b.WriteString(dimStyle.Render("ctrl+t shows a hint"))
	}
	return b.String()
}

// markdown renders md through glamour, falling back to plain wrapped text.
func (p *LessonPanel) markdown(md, key string, width int) string {
	if p.body != "" && p.bodyKey == key && p.bodyWidth == width {
		return p.body
	}
	opt := glamour.WithStandardStyle(p.style)
	if p.style == "" || p.style == "auto" {
		opt = glamour.WithAutoStyle()
	}
	r, err := glamour.NewTermRenderer(opt, glamour.WithWordWrap(width))
	if err != nil {
		return wordwrap.String(md, width)
	}
	rendered, err := r.Render(md)
	if err != nil {
		return wordwrap.String(md, width)
	}
	// glamour pads with blank lines on both ends
	rendered = strings.Trim(rendered, "\n")
	p.body, p.bodyKey, p.bodyWidth = rendered, key, width
	return rendered
}

// ProgressBar draws "■■■□□ 3/5" fitting in width cells.
func ProgressBar(done, total, width int) string {
	label := fmt.Sprintf(" %d/%d", done, total)
	cells := width - len(label)
	if total == 0 || cells < 1 {
		return strings.TrimSpace(label)
	}
	filled := done * cells / total
	return successStyle.Render(strings.Repeat("■", filled)) +
		dimStyle.Render(strings.Repeat("□", cells-filled)) + label
}
