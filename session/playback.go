package session

import (
	"context"
	"errors"
	"time"
)

// ErrPlaybackDone is returned by Next when the queue is empty.
var ErrPlaybackDone = errors.New("playback finished")

// SandboxDemo is played when no lesson is active.
var SandboxDemo = []string{
	"git status",
	"git add .",
	`git commit -m "Initial commit"`,
	"git checkout -b feature",
	"touch feature.txt",
	"git add feature.txt",
	`git commit -m "Add feature"`,
	"git checkout main",
	"git merge feature",
	"git log --oneline",
}

// Playback is an ordered queue of input lines replayed into a session. Pacing
// belongs to the caller; Playback only decides what runs next.
type Playback struct {
	s     *Session
	lines []string
	pos   int
}

// NewPlayback queues lines for s.
func NewPlayback(s *Session, lines []string) *Playback {
	return &Playback{s: s, lines: append([]string(nil), lines...)}
}

// Demo queues the solution of the remaining lesson steps, or SandboxDemo for
// a sandbox.
func (s *Session) Demo() *Playback {
	if s.driver == nil {
		return NewPlayback(s, SandboxDemo)
	}
	return NewPlayback(s, s.driver.Solution())
}

// Next runs the next queued line.
func (p *Playback) Next() (Result, error) {
	if p.pos >= len(p.lines) {
		return Result{}, ErrPlaybackDone
	}
	line := p.lines[p.pos]
	p.pos++
	return p.s.Run(line), nil
}

// Peek returns the next line without running it.
func (p *Playback) Peek() (string, bool) {
	if p.pos >= len(p.lines) {
		return "", false
	}
	return p.lines[p.pos], true
}

// Remaining is the number of queued lines left.
func (p *Playback) Remaining() int {
	return len(p.lines) - p.pos
}

// Play runs every remaining line, waiting delay between lines and calling
// onStep (which may be nil) after each. It stops early when ctx is done.
func (p *Playback) Play(ctx context.Context, delay time.Duration, onStep func(Result)) error {
	first := true
	for p.Remaining() > 0 {
		if !first && delay > 0 {
			timer := time.NewTimer(delay)
			select {
			case <-ctx.Done():
				timer.Stop()
				return ctx.Err()
			case <-timer.C:
			}
		} else if err := ctx.Err(); err != nil {
			return err
		}
		first = false

		res, err := p.Next()
		if err != nil {
			return err
		}
		if onStep != nil {
			onStep(res)
		}
	}
	return nil
}
