package app

import (
	"errors"
	"time"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/ByteMirror/gitcoach/session"
	"github.com/ByteMirror/gitcoach/ui"
)

// playbackTickMsg advances the demo. gen ties the tick to the demo that
// scheduled it so a stopped demo's ticks are dropped.
type playbackTickMsg struct {
	gen int
}

func (m *home) playbackDelay() time.Duration {
	return time.Duration(m.appConfig.PlaybackDelayMs) * time.Millisecond
}

// togglePlayback starts a demo of the remaining lesson steps (or the sandbox
// tour), or stops the running one.
func (m *home) togglePlayback() tea.Cmd {
	if m.playback != nil {
		m.stopPlayback("Demo stopped")
		return nil
	}
	p := m.session.Demo()
	if p.Remaining() == 0 {
		m.status = "Nothing left to demo"
		return nil
	}
	m.playback = p
	m.playbackGen++
	m.status = "Playing demo (esc stops)"
	gen := m.playbackGen
	return func() tea.Msg { return playbackTickMsg{gen: gen} }
}

func (m *home) stopPlayback(status string) {
	if m.playback == nil {
		return
	}
	m.playback = nil
	m.playbackGen++
	if status != "" {
		m.status = status
	}
}

func (m *home) stepPlayback(msg playbackTickMsg) tea.Cmd {
	if m.playback == nil || msg.gen != m.playbackGen {
		return nil
	}
	res, err := m.playback.Next()
	if errors.Is(err, session.ErrPlaybackDone) {
		m.stopPlayback("Demo finished")
		return nil
	}
	m.showResult(res)
	if m.playback.Remaining() == 0 {
		m.stopPlayback("Demo finished")
		return nil
	}
	gen := m.playbackGen
	return tea.Tick(m.playbackDelay(), func(time.Time) tea.Msg {
		return playbackTickMsg{gen: gen}
	})
}

func (m *home) copyTranscript() {
	text := ui.PlainTranscript(m.session.Entries())
	if text == "" {
		m.status = "Nothing to copy yet"
		return
	}
	if err := clipboard.WriteAll(text); err != nil {
		m.handleError(err)
		return
	}
	m.status = "Transcript copied"
}
