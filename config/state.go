package config

import (
	"fmt"
	"path/filepath"
	"time"
)

const stateFileName = "state.json"

// LessonProgress is the saved position within one lesson.
type LessonProgress struct {
	Step      int       `json:"step"`
	Completed bool      `json:"completed"`
	UpdatedAt time.Time `json:"updated_at"`
}

// State is the saved-progress blob: which lesson is open and how far the
// learner got in each.
type State struct {
	CurrentLesson string                    `json:"current_lesson,omitempty"`
	Progress      map[string]LessonProgress `json:"progress"`
	// Welcomed is set once the first-launch screen has been dismissed.
	Welcomed bool `json:"welcomed,omitempty"`
}

// DefaultState returns an empty state.
func DefaultState() *State {
	return &State{Progress: map[string]LessonProgress{}}
}

// Record stores progress for lessonID. Progress never moves backwards unless
// the lesson is explicitly cleared.
func (s *State) Record(lessonID string, step int, completed bool, now time.Time) {
	if s.Progress == nil {
		s.Progress = map[string]LessonProgress{}
	}
	prev := s.Progress[lessonID]
	if step < prev.Step {
		step = prev.Step
	}
	s.Progress[lessonID] = LessonProgress{
		Step:      step,
		Completed: completed || prev.Completed,
		UpdatedAt: now,
	}
}

// Clear forgets progress for lessonID, or for every lesson when lessonID is "".
func (s *State) Clear(lessonID string) {
	if lessonID == "" {
		s.Progress = map[string]LessonProgress{}
		s.CurrentLesson = ""
		return
	}
	delete(s.Progress, lessonID)
	if s.CurrentLesson == lessonID {
		s.CurrentLesson = ""
	}
}

// CompletedCount returns how many lessons are finished.
func (s *State) CompletedCount() int {
	n := 0
	for _, p := range s.Progress {
		if p.Completed {
			n++
		}
	}
	return n
}

func statePath() (string, error) {
	dir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, stateFileName), nil
}

// LoadState loads state.json. A missing file yields an empty state.
func LoadState() (*State, error) {
	path, err := statePath()
	if err != nil {
		return nil, fmt.Errorf("failed to get state path: %w", err)
	}
	state := DefaultState()
	if _, err := readJSON(path, state); err != nil {
		return nil, err
	}
	if state.Progress == nil {
		state.Progress = map[string]LessonProgress{}
	}
	return state, nil
}

// SaveState persists state atomically.
func SaveState(state *State) error {
	path, err := statePath()
	if err != nil {
		return fmt.Errorf("failed to get state path: %w", err)
	}
	return writeJSON(path, state)
}
