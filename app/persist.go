package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ByteMirror/gitcoach/config"
	"github.com/ByteMirror/gitcoach/log"
	"github.com/ByteMirror/gitcoach/session"
)

const snapshotFileName = "session.json"

func snapshotPath() (string, error) {
	dir, err := config.GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, snapshotFileName), nil
}

// saveProgress writes the current lesson and step to state.json.
func (m *home) saveProgress() {
	if id := m.session.LessonID(); id != "" {
		done, _ := m.session.Progress()
		m.appState.Record(id, done, m.session.Done(), m.now())
	}
	if err := config.SaveState(m.appState); err != nil {
		log.WarningLog.Printf("save state: %v", err)
	}
}

// restoreSnapshot returns the saved session if it belongs to the lesson in
// opts, or nil.
func (m *home) restoreSnapshot(opts session.Options) *session.Session {
	path, err := snapshotPath()
	if err != nil {
		return nil
	}
	data, err := session.LoadSnapshot(path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			log.WarningLog.Printf("load snapshot: %v", err)
		}
		return nil
	}
	want := ""
	if opts.Lesson != nil {
		want = opts.Lesson.ID
	}
	if data.LessonID != want {
		return nil
	}
	s, err := session.FromData(data, opts)
	if err != nil {
		log.WarningLog.Printf("restore snapshot: %v", err)
		return nil
	}
	log.InfoLog.Printf("restored session %s (%d entries)", s.ID, len(s.Entries()))
	return s
}

func (m *home) saveSnapshot() {
	path, err := snapshotPath()
	if err != nil {
		log.WarningLog.Printf("snapshot path: %v", err)
		return
	}
	if err := m.session.SaveSnapshot(path); err != nil {
		log.WarningLog.Printf("save snapshot: %v", err)
	}
}

// recordHistory stores the current session in the history database.
func (m *home) recordHistory() {
	if m.history == nil || m.session == nil || !m.appConfig.HistoryEnabled {
		return
	}
	ctx := context.WithoutCancel(m.ctx)
	if err := m.history.Record(ctx, m.session, m.now()); err != nil {
		log.WarningLog.Printf("record history: %v", err)
	}
}

// shutdown persists everything worth keeping once the program exits.
func (m *home) shutdown() {
	m.stopPlayback("")
	m.saveProgress()
	m.saveSnapshot()
	m.recordHistory()
}

// ClearSaved forgets progress for lessonID, or for everything when lessonID
// is "", and removes the saved session if it belongs to what was cleared.
func ClearSaved(lessonID string) error {
	state, err := config.LoadState()
	if err != nil {
		return err
	}
	state.Clear(lessonID)
	if lessonID == "" {
		state.Welcomed = false
	}
	if err := config.SaveState(state); err != nil {
		return err
	}

	path, err := snapshotPath()
	if err != nil {
		return err
	}
	if lessonID != "" {
		data, err := session.LoadSnapshot(path)
		if err != nil || data.LessonID != lessonID {
			return nil
		}
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove saved session: %w", err)
	}
	return nil
}
