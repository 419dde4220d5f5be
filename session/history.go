package session

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/ByteMirror/gitcoach/config"
	"github.com/ByteMirror/gitcoach/gitsim"
)

const historySchema = `
PRAGMA journal_mode=WAL;

CREATE TABLE IF NOT EXISTS sessions (
    id         TEXT    NOT NULL PRIMARY KEY,
    lesson_id  TEXT    NOT NULL DEFAULT '',
    started_at INTEGER NOT NULL,
    ended_at   INTEGER NOT NULL,
    commands   INTEGER NOT NULL,
    failures   INTEGER NOT NULL,
    completed  INTEGER NOT NULL,
    transcript TEXT    NOT NULL
);

CREATE INDEX IF NOT EXISTS sessions_ended_at ON sessions(ended_at);
`

// HistoryRecord summarizes one finished session.
type HistoryRecord struct {
	ID         string
	LessonID   string
	StartedAt  time.Time
	EndedAt    time.Time
	Commands   int
	Failures   int
	Completed  bool
	Transcript []gitsim.TranscriptEntry
}

// HistoryStore keeps finished sessions in a sqlite database.
type HistoryStore struct {
	db *sql.DB
}

// DefaultHistoryPath is history.db in the config dir.
func DefaultHistoryPath() (string, error) {
	dir, err := config.GetConfigDir()
	if err != nil {
		return "", fmt.Errorf("history: get config dir: %w", err)
	}
	return filepath.Join(dir, "history.db"), nil
}

// OpenHistory opens (creating if needed) the database at path.
func OpenHistory(path string) (*HistoryStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if _, err := db.Exec(historySchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &HistoryStore{db: db}, nil
}

// Close closes the database.
func (h *HistoryStore) Close() error {
	return h.db.Close()
}

// Record saves s as ended at endedAt. Recording the same session again
// replaces the earlier row. Sessions with no commands are skipped.
func (h *HistoryStore) Record(ctx context.Context, s *Session, endedAt time.Time) error {
	entries := s.Entries()
	if len(entries) == 0 {
		return nil
	}
	transcript, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("history: marshal transcript: %w", err)
	}
	_, err = h.db.ExecContext(ctx, `
INSERT INTO sessions (id, lesson_id, started_at, ended_at, commands, failures, completed, transcript)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
    ended_at   = excluded.ended_at,
    commands   = excluded.commands,
    failures   = excluded.failures,
    completed  = excluded.completed,
    transcript = excluded.transcript`,
		s.ID, s.LessonID(), s.StartedAt.UnixNano(), endedAt.UnixNano(),
		len(entries), s.transcript.Failures(), boolToInt(s.Done()), string(transcript))
	if err != nil {
		return fmt.Errorf("history: record session %s: %w", s.ID, err)
	}
	return nil
}

// Recent returns up to limit sessions, most recently ended first.
func (h *HistoryStore) Recent(ctx context.Context, limit int) ([]HistoryRecord, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := h.db.QueryContext(ctx, `
SELECT id, lesson_id, started_at, ended_at, commands, failures, completed, transcript
FROM sessions ORDER BY ended_at DESC, id LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("history: query: %w", err)
	}
	defer rows.Close()

	var records []HistoryRecord
	for rows.Next() {
		var (
			r              HistoryRecord
			started, ended int64
			completed      int
			transcript     string
		)
		if err := rows.Scan(&r.ID, &r.LessonID, &started, &ended, &r.Commands, &r.Failures, &completed, &transcript); err != nil {
			return nil, fmt.Errorf("history: scan: %w", err)
		}
		r.StartedAt = time.Unix(0, started)
		r.EndedAt = time.Unix(0, ended)
		r.Completed = completed != 0
		if err := json.Unmarshal([]byte(transcript), &r.Transcript); err != nil {
			return nil, fmt.Errorf("history: decode transcript of %s: %w", r.ID, err)
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
