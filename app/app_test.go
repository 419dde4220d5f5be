package app

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ByteMirror/gitcoach/config"
	"github.com/ByteMirror/gitcoach/lesson"
	"github.com/ByteMirror/gitcoach/session"
)

var fixedNow = func() time.Time { return time.Date(2024, 7, 1, 9, 0, 0, 0, time.UTC) }

func newTestHome(t *testing.T, opts Options) *home {
	t.Helper()
	if opts.Catalog == nil {
		builtins, err := lesson.Builtin()
		require.NoError(t, err)
		opts.Catalog = lesson.NewCatalog(builtins)
	}
	if opts.Config == nil {
		opts.Config = config.DefaultConfig()
	}
	opts.Now = fixedNow
	m, err := newHome(context.Background(), opts)
	require.NoError(t, err)
	m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	return m
}

func press(m *home, keys ...string) {
	for _, k := range keys {
		var msg tea.KeyMsg
		switch k {
		case "enter":
			msg = tea.KeyMsg{Type: tea.KeyEnter}
		case "esc":
			msg = tea.KeyMsg{Type: tea.KeyEsc}
		case "up":
			msg = tea.KeyMsg{Type: tea.KeyUp}
		case "down":
			msg = tea.KeyMsg{Type: tea.KeyDown}
		case "ctrl+d":
			msg = tea.KeyMsg{Type: tea.KeyCtrlD}
		case "ctrl+p":
			msg = tea.KeyMsg{Type: tea.KeyCtrlP}
		case "ctrl+r":
			msg = tea.KeyMsg{Type: tea.KeyCtrlR}
		case "ctrl+s":
			msg = tea.KeyMsg{Type: tea.KeyCtrlS}
		case "ctrl+t":
			msg = tea.KeyMsg{Type: tea.KeyCtrlT}
		default:
			msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
		}
		m.Update(msg)
	}
}

func typeLine(m *home, line string) {
	m.terminal.SetValue(line)
	press(m, "enter")
}

func TestWelcomeShownOnce(t *testing.T) {
	t.Setenv(config.HomeEnv, t.TempDir())

	m := newTestHome(t, Options{})
	assert.Equal(t, stateWelcome, m.state)
	assert.Contains(t, m.View(), "Welcome to gitcoach")

	press(m, "s")
	assert.Equal(t, stateDefault, m.state)

	again := newTestHome(t, Options{})
	assert.Equal(t, stateDefault, again.state)
}

func TestRunLinesGradeLesson(t *testing.T) {
	t.Setenv(config.HomeEnv, t.TempDir())
	m := newTestHome(t, Options{LessonID: "first-commit"})
	require.Equal(t, stateDefault, m.state)

	typeLine(m, "git status")
	assert.Equal(t, "Step 1 of 4 complete", m.status)

	typeLine(m, "git push")
	assert.Len(t, m.session.Entries(), 2)

	typeLine(m, "git add README.md")
	typeLine(m, `git commit -m "first"`)
	typeLine(m, "git log")
	assert.True(t, m.session.Done())
	assert.Equal(t, "Lesson complete!", m.status)

	state, err := config.LoadState()
	require.NoError(t, err)
	assert.Equal(t, "first-commit", state.CurrentLesson)
	assert.True(t, state.Progress["first-commit"].Completed)
	assert.Equal(t, 4, state.Progress["first-commit"].Step)
}

func TestHistoryKeys(t *testing.T) {
	t.Setenv(config.HomeEnv, t.TempDir())
	m := newTestHome(t, Options{LessonID: "first-commit"})
	typeLine(m, "git status")
	typeLine(m, "git add .")

	press(m, "up")
	assert.Equal(t, "git add .", m.terminal.Value())
	press(m, "up")
	assert.Equal(t, "git status", m.terminal.Value())
	press(m, "down", "down")
	assert.Equal(t, "", m.terminal.Value())
}

func TestResetKey(t *testing.T) {
	t.Setenv(config.HomeEnv, t.TempDir())
	m := newTestHome(t, Options{LessonID: "first-commit"})
	typeLine(m, "git status")
	oldID := m.session.ID

	press(m, "ctrl+r")

	assert.NotEqual(t, oldID, m.session.ID)
	assert.Empty(t, m.session.Entries())
	done, _ := m.session.Progress()
	assert.Equal(t, 0, done)
}

func TestLessonPickerStartsLesson(t *testing.T) {
	t.Setenv(config.HomeEnv, t.TempDir())
	m := newTestHome(t, Options{LessonID: "sandbox"})
	assert.Equal(t, "", m.session.LessonID())

	press(m, "ctrl+p")
	require.Equal(t, stateLessonPicker, m.state)
	assert.Contains(t, m.View(), "Lessons")

	press(m, "b", "r", "a", "n", "c", "h", "enter")
	assert.Equal(t, stateDefault, m.state)
	assert.Equal(t, "branching", m.session.LessonID())
	assert.Contains(t, m.status, "Started")
}

func TestDemoPlaybackCompletesLesson(t *testing.T) {
	t.Setenv(config.HomeEnv, t.TempDir())
	m := newTestHome(t, Options{LessonID: "first-commit"})

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlD})
	require.NotNil(t, cmd)
	require.NotNil(t, m.playback)

	// Typing is ignored while the demo runs.
	typeLine(m, "git branch nope")
	assert.Empty(t, m.session.Entries())

	for i := 0; i < 10 && m.playback != nil; i++ {
		m.Update(playbackTickMsg{gen: m.playbackGen})
	}
	assert.Nil(t, m.playback)
	assert.True(t, m.session.Done())
	assert.Equal(t, "Demo finished", m.status)
}

func TestDemoStaleTickIgnored(t *testing.T) {
	t.Setenv(config.HomeEnv, t.TempDir())
	m := newTestHome(t, Options{LessonID: "first-commit"})

	m.Update(tea.KeyMsg{Type: tea.KeyCtrlD})
	stale := m.playbackGen
	press(m, "esc")
	assert.Nil(t, m.playback)
	assert.Equal(t, "Demo stopped", m.status)

	m.Update(playbackTickMsg{gen: stale})
	assert.Empty(t, m.session.Entries())
}

func TestSettingsPersist(t *testing.T) {
	t.Setenv(config.HomeEnv, t.TempDir())
	cfg := config.DefaultConfig()
	m := newTestHome(t, Options{LessonID: "sandbox", Config: cfg})

	press(m, "ctrl+s")
	require.Equal(t, stateSettings, m.state)
	press(m, "enter") // show hints off
	press(m, "esc")
	assert.Equal(t, stateDefault, m.state)
	assert.False(t, m.lessonPanel.HintShown())

	saved := config.LoadConfig()
	assert.False(t, saved.AreHintsShown())
}

func TestSettingsRejectInvalidBranch(t *testing.T) {
	t.Setenv(config.HomeEnv, t.TempDir())
	cfg := config.DefaultConfig()
	m := newTestHome(t, Options{LessonID: "sandbox", Config: cfg})

	press(m, "ctrl+s", "down", "down", "enter")
	for range 4 {
		m.Update(tea.KeyMsg{Type: tea.KeyBackspace})
	}
	press(m, "a..b", "enter")

	assert.Equal(t, "main", cfg.DefaultBranch)
	assert.Contains(t, m.status, "not a valid branch name")
}

func TestShutdownSnapshotResumes(t *testing.T) {
	t.Setenv(config.HomeEnv, t.TempDir())
	m := newTestHome(t, Options{LessonID: "first-commit"})
	typeLine(m, "git status")
	typeLine(m, "git add README.md")
	m.shutdown()

	resumed := newTestHome(t, Options{})
	assert.Equal(t, m.session.ID, resumed.session.ID)
	done, _ := resumed.session.Progress()
	assert.Equal(t, 2, done)
	assert.Len(t, resumed.session.Entries(), 2)
	assert.Equal(t, []string{"README.md"}, resumed.session.Repository().Staged)
}

func TestShutdownRecordsHistory(t *testing.T) {
	home := t.TempDir()
	t.Setenv(config.HomeEnv, home)
	store, err := session.OpenHistory(filepath.Join(home, "history.db"))
	require.NoError(t, err)
	defer store.Close()

	m := newTestHome(t, Options{LessonID: "first-commit", History: store})
	typeLine(m, "git status")
	m.shutdown()

	records, err := store.Recent(context.Background(), 5)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "first-commit", records[0].LessonID)
	assert.Equal(t, 1, records[0].Commands)
}

func TestUnknownLessonFails(t *testing.T) {
	t.Setenv(config.HomeEnv, t.TempDir())
	builtins, err := lesson.Builtin()
	require.NoError(t, err)
	_, err = newHome(context.Background(), Options{
		LessonID: "does-not-exist",
		Catalog:  lesson.NewCatalog(builtins),
		Now:      fixedNow,
	})
	assert.ErrorIs(t, err, lesson.ErrLessonNotFound)
}

func TestMainViewLayout(t *testing.T) {
	t.Setenv(config.HomeEnv, t.TempDir())
	m := newTestHome(t, Options{LessonID: "first-commit"})
	typeLine(m, "git status")

	view := m.View()
	assert.Contains(t, view, "Your first commit")
	assert.Contains(t, view, "Branches")
	assert.Contains(t, view, "On branch main")
	assert.Contains(t, view, "ctrl+p")
}

func TestOverlaysTakeInputFromTerminal(t *testing.T) {
	t.Setenv(config.HomeEnv, t.TempDir())
	m := newTestHome(t, Options{})
	require.Equal(t, stateWelcome, m.state)

	press(m, "s")
	press(m, "g")
	assert.Equal(t, "g", m.terminal.Value())

	press(m, "ctrl+p", "esc")
	require.Equal(t, stateDefault, m.state)
	press(m, "i")
	assert.Equal(t, "gi", m.terminal.Value())
}

func TestScrollKeys(t *testing.T) {
	t.Setenv(config.HomeEnv, t.TempDir())
	m := newTestHome(t, Options{LessonID: "sandbox"})
	for range 20 {
		typeLine(m, "git status")
	}
	bottom := m.View()

	m.Update(tea.KeyMsg{Type: tea.KeyCtrlUp})
	assert.NotEqual(t, bottom, m.View())
	m.Update(tea.KeyMsg{Type: tea.KeyCtrlDown})
	assert.Equal(t, bottom, m.View())
}
