package app

import (
	"context"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/ByteMirror/gitcoach/config"
	"github.com/ByteMirror/gitcoach/gitsim"
	"github.com/ByteMirror/gitcoach/lesson"
	"github.com/ByteMirror/gitcoach/log"
	"github.com/ByteMirror/gitcoach/session"
	"github.com/ByteMirror/gitcoach/ui"
	"github.com/ByteMirror/gitcoach/ui/overlay"
)

// Options configures Run.
type Options struct {
	// LessonID starts a lesson directly. Empty resumes the saved lesson, or
	// the sandbox.
	LessonID string
	Config   *config.Config
	Catalog  *lesson.Catalog
	// LessonsDir is watched for lesson edits when non-empty.
	LessonsDir string
	// History records finished sessions. May be nil.
	History *session.HistoryStore
	// Now defaults to time.Now.
	Now func() time.Time
}

// Run starts the TUI and blocks until the learner quits.
func Run(ctx context.Context, opts Options) error {
	h, err := newHome(ctx, opts)
	if err != nil {
		return err
	}
	p := tea.NewProgram(h, tea.WithAltScreen(), tea.WithContext(ctx))

	if opts.LessonsDir != "" {
		stop, err := lesson.Watch(opts.Catalog, opts.LessonsDir, func() {
			p.Send(lessonsReloadedMsg{})
		})
		if err != nil {
			log.WarningLog.Printf("lesson watcher: %v", err)
		} else {
			defer stop()
		}
	}

	_, err = p.Run()
	h.shutdown()
	return err
}

type state int

const (
	stateDefault state = iota
	stateWelcome
	stateLessonPicker
	stateSettings
)

type lessonsReloadedMsg struct{}

type home struct {
	ctx context.Context
	now func() time.Time

	appConfig *config.Config
	appState  *config.State
	catalog   *lesson.Catalog
	history   *session.HistoryStore

	session     *session.Session
	playback    *session.Playback
	playbackGen int

	terminal    *ui.TerminalPane
	repoPanel   *ui.RepoPanel
	lessonPanel *ui.LessonPanel

	picker          *overlay.LessonPicker
	settingsOverlay *overlay.SettingsOverlay

	state  state
	status string
	width  int
	height int
}

func newHome(ctx context.Context, opts Options) (*home, error) {
	if opts.Config == nil {
		opts.Config = config.DefaultConfig()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Catalog == nil {
		opts.Catalog = lesson.NewCatalog()
	}

	appState, err := config.LoadState()
	if err != nil {
		log.WarningLog.Printf("load state: %v", err)
		appState = config.DefaultState()
	}

	m := &home{
		ctx:         ctx,
		now:         opts.Now,
		appConfig:   opts.Config,
		appState:    appState,
		catalog:     opts.Catalog,
		history:     opts.History,
		terminal:    ui.NewTerminalPane(),
		repoPanel:   ui.NewRepoPanel(),
		lessonPanel: ui.NewLessonPanel(opts.Config.MarkdownStyle),
	}
	m.lessonPanel.SetShowHint(opts.Config.AreHintsShown())

	lessonID := opts.LessonID
	if lessonID == "" {
		lessonID = appState.CurrentLesson
	}
	if lessonID == overlay.SandboxID {
		lessonID = ""
	}
	if err := m.openSession(lessonID, lessonID == appState.CurrentLesson); err != nil {
		if opts.LessonID != "" {
			return nil, err
		}
		log.WarningLog.Printf("resume lesson %q: %v", lessonID, err)
		if err := m.openSession("", false); err != nil {
			return nil, err
		}
	}

	if opts.LessonID == "" && !appState.Welcomed {
		m.setState(stateWelcome)
	}
	return m, nil
}

// setState switches screens. The terminal only takes input on the main one.
func (m *home) setState(s state) {
	m.state = s
	m.terminal.SetFocused(s == stateDefault)
}

func (m *home) sessionOptions(l *lesson.Lesson) session.Options {
	return session.Options{
		DefaultBranch: m.appConfig.DefaultBranch,
		Lesson:        l,
		Interpreter:   gitsim.NewInterpreter(gitsim.WithClock(m.now)),
		Now:           m.now,
	}
}

// openSession replaces the current session with one for lessonID ("" is the
// sandbox). With resume set, a saved snapshot for the same lesson is
// restored instead of starting over.
func (m *home) openSession(lessonID string, resume bool) error {
	var l *lesson.Lesson
	if lessonID != "" {
		found, err := m.catalog.Get(lessonID)
		if err != nil {
			return err
		}
		l = &found
	}
	opts := m.sessionOptions(l)

	var s *session.Session
	if resume {
		s = m.restoreSnapshot(opts)
	}
	if s == nil {
		var err error
		if s, err = session.New(opts); err != nil {
			return err
		}
	}

	m.stopPlayback("")
	m.recordHistory()
	m.session = s
	m.appState.CurrentLesson = lessonID
	m.lessonPanel.SetLesson(l)
	m.terminal.SetEntries(s.Entries())
	m.refreshPanels()
	return nil
}

func (m *home) refreshPanels() {
	m.repoPanel.SetRepository(m.session.Repository())
	done, _ := m.session.Progress()
	m.lessonPanel.SetProgress(done)
}

func (m *home) Init() tea.Cmd {
	return nil
}

func (m *home) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.updateHandleWindowSizeEvent(msg)
		return m, nil
	case lessonsReloadedMsg:
		m.status = fmt.Sprintf("Lessons reloaded (%d available)", m.catalog.Len())
		return m, nil
	case playbackTickMsg:
		return m, m.stepPlayback(msg)
	case tea.KeyMsg:
		return m.handleKeyPress(msg)
	}
	return m, m.terminal.Update(msg)
}

func (m *home) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}

	switch m.state {
	case stateWelcome:
		return m.handleWelcomeKeys(msg)
	case stateLessonPicker:
		id, closed := m.picker.HandleKeyPress(msg)
		if closed {
			m.setState(stateDefault)
			m.picker = nil
		}
		if id != "" {
			m.startLesson(id)
		}
		return m, nil
	case stateSettings:
		changed, closed := m.settingsOverlay.HandleKeyPress(msg)
		if changed != "" {
			m.applySettingChange(changed)
		}
		if closed {
			m.setState(stateDefault)
			m.settingsOverlay = nil
		}
		return m, nil
	}
	return m.handleDefaultKeys(msg)
}

func (m *home) handleDefaultKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		if m.playback != nil {
			m.stopPlayback("Demo stopped")
			return m, nil
		}
		return m, tea.Quit
	case "enter":
		if m.playback != nil {
			return m, nil
		}
		if line, ok := m.terminal.Submit(); ok {
			m.runLine(line)
		}
		return m, nil
	case "up":
		m.terminal.HistoryPrev()
		return m, nil
	case "down":
		m.terminal.HistoryNext()
		return m, nil
	case "pgup":
		m.terminal.PageUp()
		return m, nil
	case "pgdown":
		m.terminal.PageDown()
		return m, nil
	case "ctrl+up":
		m.terminal.ScrollUp()
		return m, nil
	case "ctrl+down":
		m.terminal.ScrollDown()
		return m, nil
	case "ctrl+p":
		return m.openLessonPicker()
	case "ctrl+s":
		return m.openSettings()
	case "ctrl+r":
		m.resetSession()
		return m, nil
	case "ctrl+t":
		m.lessonPanel.ToggleHint()
		return m, nil
	case "ctrl+d":
		return m, m.togglePlayback()
	case "ctrl+y":
		m.copyTranscript()
		return m, nil
	case "ctrl+l":
		m.terminal.Clear()
		return m, nil
	}
	if m.playback != nil {
		return m, nil
	}
	return m, m.terminal.Update(msg)
}

// runLine executes one line typed by the learner.
func (m *home) runLine(line string) {
	m.showResult(m.session.Run(line))
}

// showResult updates the panes after the session ran a line.
func (m *home) showResult(res session.Result) {
	m.terminal.Append(res.Entry)
	m.refreshPanels()

	switch {
	case res.LessonDone:
		m.status = "Lesson complete!"
	case res.StepCompleted:
		done, total := m.session.Progress()
		m.status = fmt.Sprintf("Step %d of %d complete", done, total)
	case !res.Entry.Success:
		m.status = ""
	}
	if res.StepCompleted {
		m.saveProgress()
	}
}

func (m *home) resetSession() {
	m.stopPlayback("")
	m.recordHistory()
	if err := m.session.Reset(); err != nil {
		m.handleError(fmt.Errorf("reset: %w", err))
		return
	}
	m.terminal.SetEntries(nil)
	m.refreshPanels()
	m.saveProgress()
	m.status = "Started over"
}

func (m *home) handleError(err error) {
	log.ErrorLog.Printf("%v", err)
	m.status = "Error: " + err.Error()
}

func (m *home) updateHandleWindowSizeEvent(msg tea.WindowSizeMsg) {
	m.width = msg.Width
	m.height = msg.Height

	bodyHeight := max(msg.Height-1, 4)
	leftWidth := msg.Width * 2 / 5
	rightWidth := msg.Width - leftWidth
	termHeight := bodyHeight * 3 / 5

	m.lessonPanel.SetSize(leftWidth, bodyHeight)
	m.terminal.SetSize(rightWidth, termHeight)
	m.repoPanel.SetSize(rightWidth, bodyHeight-termHeight)

	if m.picker != nil {
		m.picker.SetSize(min(msg.Width-4, 72), msg.Height-2)
	}
	if m.settingsOverlay != nil {
		m.settingsOverlay.SetSize(min(msg.Width-4, 64), msg.Height-2)
	}
}

var (
	footerKeyStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0A868"))
	footerDescStyle   = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#888888", Dark: "#666666"})
	footerStatusStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#36CFC9")).Bold(true)
)

func (m *home) footer() string {
	keys := [][2]string{
		{"enter", "run"}, {"ctrl+p", "lessons"}, {"ctrl+t", "hint"}, {"ctrl+d", "demo"},
		{"ctrl+r", "reset"}, {"ctrl+y", "copy"}, {"ctrl+s", "settings"}, {"esc", "quit"},
	}
	var line string
	for i, k := range keys {
		if i > 0 {
			line += footerDescStyle.Render(" • ")
		}
		line += footerKeyStyle.Render(k[0]) + " " + footerDescStyle.Render(k[1])
	}
	if m.status != "" {
		line = footerStatusStyle.Render(m.status) + "  " + line
	}
	return lipgloss.NewStyle().MaxWidth(m.width).Render(line)
}

func (m *home) View() string {
	if m.width == 0 {
		return ""
	}
	switch m.state {
	case stateWelcome:
		return m.viewWelcome()
	case stateLessonPicker:
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, m.picker.Render())
	case stateSettings:
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, m.settingsOverlay.Render())
	}

	right := lipgloss.JoinVertical(lipgloss.Left, m.terminal.String(), m.repoPanel.String())
	body := lipgloss.JoinHorizontal(lipgloss.Top, m.lessonPanel.String(), right)
	return lipgloss.JoinVertical(lipgloss.Left, body, m.footer())
}
