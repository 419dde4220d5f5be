package app

import (
	"fmt"
	"strconv"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour/styles"

	"github.com/ByteMirror/gitcoach/config"
	"github.com/ByteMirror/gitcoach/gitsim"
	"github.com/ByteMirror/gitcoach/ui/overlay"
)

// markdownStyles are the glamour standard styles offered in settings.
var markdownStyles = []string{
	styles.AutoStyle, styles.DarkStyle, styles.LightStyle, styles.DraculaStyle,
	styles.TokyoNightStyle, styles.PinkStyle, styles.NoTTYStyle,
}

// buildPickerItems lists every lesson with the learner's saved progress.
func (m *home) buildPickerItems() []overlay.PickerItem {
	lessons := m.catalog.List()
	items := make([]overlay.PickerItem, 0, len(lessons))
	for _, l := range lessons {
		item := overlay.PickerItem{ID: l.ID, Title: l.Title, Summary: l.Summary}
		if p, ok := m.appState.Progress[l.ID]; ok {
			switch {
			case p.Completed:
				item.Progress = "done"
				item.Completed = true
			case p.Step > 0:
				item.Progress = fmt.Sprintf("%d/%d", p.Step, len(l.Steps))
			}
		}
		items = append(items, item)
	}
	return items
}

func (m *home) openLessonPicker() (tea.Model, tea.Cmd) {
	m.stopPlayback("")
	m.picker = overlay.NewLessonPicker(m.buildPickerItems(), m.session.LessonID())
	m.picker.SetSize(min(m.width-4, 72), m.height-2)
	m.setState(stateLessonPicker)
	return m, nil
}

// startLesson switches to lesson id, or the sandbox.
func (m *home) startLesson(id string) {
	if id == overlay.SandboxID {
		id = ""
	}
	if id == m.session.LessonID() {
		return
	}
	m.saveProgress()
	if err := m.openSession(id, false); err != nil {
		m.handleError(fmt.Errorf("start lesson %s: %w", id, err))
		return
	}
	m.saveProgress()
	if l, ok := m.session.Lesson(); ok {
		m.status = "Started " + l.Title
	} else {
		m.status = "Sandbox"
	}
}

// openSettings builds the settings overlay from the current config.
func (m *home) openSettings() (tea.Model, tea.Cmd) {
	m.stopPlayback("")
	items := []overlay.SettingItem{
		{
			Label:       "Show hints",
			Description: "Show the hint for each step without pressing ctrl+t",
			Type:        overlay.SettingToggle,
			Value:       strconv.FormatBool(m.appConfig.AreHintsShown()),
			Key:         "show_hints",
		},
		{
			Label:       "Markdown style",
			Description: "Colors used for lesson text",
			Type:        overlay.SettingPicker,
			Value:       m.appConfig.MarkdownStyle,
			Options:     markdownStyles,
			Key:         "markdown_style",
		},
		{
			Label:       "Default branch",
			Description: "First branch of new practice repositories (applies on reset)",
			Type:        overlay.SettingText,
			Value:       m.appConfig.DefaultBranch,
			Key:         "default_branch",
		},
		{
			Label:       "Demo delay (ms)",
			Description: "Pause between commands when playing a demo",
			Type:        overlay.SettingNumber,
			Value:       strconv.Itoa(m.appConfig.PlaybackDelayMs),
			Key:         "playback_delay_ms",
		},
		{
			Label:       "Session history",
			Description: "Keep finished sessions for gitcoach history",
			Type:        overlay.SettingToggle,
			Value:       strconv.FormatBool(m.appConfig.HistoryEnabled),
			Key:         "history_enabled",
		},
	}

	m.settingsOverlay = overlay.NewSettingsOverlay(items)
	m.settingsOverlay.SetSize(min(m.width-4, 64), m.height-2)
	m.setState(stateSettings)
	return m, nil
}

// applySettingChange reads the changed value from the overlay and persists it.
func (m *home) applySettingChange(key string) {
	item := m.settingsOverlay.GetItem(key)
	if item == nil {
		return
	}

	switch key {
	case "show_hints":
		val := item.Value == "true"
		m.appConfig.SetShowHints(val)
		m.lessonPanel.SetShowHint(val)
	case "markdown_style":
		m.appConfig.MarkdownStyle = item.Value
		m.lessonPanel.SetStyle(item.Value)
	case "default_branch":
		if !gitsim.ValidBranchName(item.Value) {
			m.status = fmt.Sprintf("'%s' is not a valid branch name", item.Value)
			item.Value = m.appConfig.DefaultBranch
			return
		}
		m.appConfig.DefaultBranch = item.Value
	case "playback_delay_ms":
		ms, err := strconv.Atoi(item.Value)
		if err != nil || ms <= 0 {
			item.Value = strconv.Itoa(m.appConfig.PlaybackDelayMs)
			return
		}
		m.appConfig.PlaybackDelayMs = ms
	case "history_enabled":
		m.appConfig.HistoryEnabled = item.Value == "true"
	}

	if err := config.SaveConfig(m.appConfig); err != nil {
		m.handleError(fmt.Errorf("failed to save settings: %w", err))
	}
}
