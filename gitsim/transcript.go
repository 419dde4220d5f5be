package gitsim

import (
	"slices"
	"time"
)

// TranscriptEntry records one executed line and what the learner saw.
type TranscriptEntry struct {
	Command   string    `json:"command"`
	Output    string    `json:"output"`
	Success   bool      `json:"success"`
	Kind      ErrorKind `json:"kind,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Transcript is an append-only log of entries in execution order.
type Transcript struct {
	entries []TranscriptEntry
}

// NewTranscript returns an empty transcript, optionally seeded with entries
// restored from a snapshot.
func NewTranscript(entries ...TranscriptEntry) *Transcript {
	return &Transcript{entries: slices.Clone(entries)}
}

// Append adds e at the end of the log.
func (t *Transcript) Append(e TranscriptEntry) {
	t.entries = append(t.entries, e)
}

// Len returns the number of entries.
func (t *Transcript) Len() int {
	return len(t.entries)
}

// Entries returns a copy of all entries, oldest first.
func (t *Transcript) Entries() []TranscriptEntry {
	return slices.Clone(t.entries)
}

// Tail returns a copy of the last n entries, oldest first.
func (t *Transcript) Tail(n int) []TranscriptEntry {
	if n <= 0 {
		return nil
	}
	if n > len(t.entries) {
		n = len(t.entries)
	}
	return slices.Clone(t.entries[len(t.entries)-n:])
}

// Failures counts entries that did not succeed.
func (t *Transcript) Failures() int {
	n := 0
	for _, e := range t.entries {
		if !e.Success {
			n++
		}
	}
	return n
}
