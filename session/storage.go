package session

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/ByteMirror/gitcoach/config"
	"github.com/ByteMirror/gitcoach/gitsim"
)

// SessionData is the serializable form of a Session.
type SessionData struct {
	ID         string                   `json:"id"`
	LessonID   string                   `json:"lesson_id,omitempty"`
	Step       int                      `json:"step"`
	StartedAt  time.Time                `json:"started_at"`
	Repository gitsim.Repository        `json:"repository"`
	Transcript []gitsim.TranscriptEntry `json:"transcript"`
}

// ToData converts the session to its serializable form.
func (s *Session) ToData() SessionData {
	done, _ := s.Progress()
	return SessionData{
		ID:         s.ID,
		LessonID:   s.LessonID(),
		Step:       done,
		StartedAt:  s.StartedAt,
		Repository: s.repo.Clone(),
		Transcript: s.transcript.Entries(),
	}
}

// FromData restores a session. opts.Lesson must be the lesson named by
// data.LessonID (nil for a sandbox). The repository is validated before use.
func FromData(data SessionData, opts Options) (*Session, error) {
	if err := data.Repository.Validate(); err != nil {
		return nil, fmt.Errorf("invalid session repository: %w", err)
	}
	gotID := ""
	if opts.Lesson != nil {
		gotID = opts.Lesson.ID
	}
	if gotID != data.LessonID {
		return nil, fmt.Errorf("session is for lesson %q, got %q", data.LessonID, gotID)
	}

	s, err := New(opts)
	if err != nil {
		return nil, err
	}
	s.ID = data.ID
	s.StartedAt = data.StartedAt
	s.repo = data.Repository.Clone()
	if s.repo.Heads == nil {
		s.repo.Heads = map[string]string{}
	}
	s.transcript = gitsim.NewTranscript(data.Transcript...)
	if s.driver != nil {
		s.driver.Seek(data.Step)
	}
	return s, nil
}

// SaveSnapshot writes the session to path atomically.
func (s *Session) SaveSnapshot(path string) error {
	data, err := json.MarshalIndent(s.ToData(), "", "  ")
	if err != nil {
		return fmt.Errorf("session: marshal snapshot: %w", err)
	}
	if err := config.AtomicWriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("session: write snapshot: %w", err)
	}
	return nil
}

// LoadSnapshot reads a snapshot written by SaveSnapshot. A missing file
// returns os.ErrNotExist.
func LoadSnapshot(path string) (SessionData, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return SessionData{}, err
	}
	var data SessionData
	if err := json.Unmarshal(raw, &data); err != nil {
		return SessionData{}, fmt.Errorf("session: parse snapshot: %w", err)
	}
	return data, nil
}
