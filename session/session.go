package session

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ByteMirror/gitcoach/gitsim"
	"github.com/ByteMirror/gitcoach/lesson"
	"github.com/ByteMirror/gitcoach/log"
)

// Options configures a new Session.
type Options struct {
	// DefaultBranch names the first branch. Empty means gitsim.DefaultBranch.
	DefaultBranch string
	// Lesson, when set, seeds the repository from its setup and grades
	// every command against its steps. Nil gives a free sandbox.
	Lesson *lesson.Lesson
	// Sandbox lists untracked files a sandbox starts with. Ignored when a
	// lesson is set.
	Sandbox []string
	// Interpreter defaults to gitsim.NewInterpreter().
	Interpreter *gitsim.Interpreter
	// Now defaults to time.Now.
	Now func() time.Time
}

// DefaultSandbox is what a lesson-free session starts with.
var DefaultSandbox = []string{"README.md", "main.go"}

// Result is the outcome of one Run.
type Result struct {
	Entry gitsim.TranscriptEntry
	// StepCompleted is true when the entry completed the current lesson step.
	StepCompleted bool
	// LessonDone is true once every step is complete.
	LessonDone bool
}

// Session is one practice run: a repository, the transcript of everything
// typed into it and, optionally, the lesson being graded. It is not safe for
// concurrent use; callers serialize access.
type Session struct {
	ID        string
	StartedAt time.Time

	opts       Options
	interp     *gitsim.Interpreter
	repo       gitsim.Repository
	transcript *gitsim.Transcript
	driver     *lesson.Driver
}

// New creates a session and applies the lesson setup, if any.
func New(opts Options) (*Session, error) {
	if opts.Interpreter == nil {
		opts.Interpreter = gitsim.NewInterpreter()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Sandbox == nil {
		opts.Sandbox = DefaultSandbox
	}
	s := &Session{opts: opts, interp: opts.Interpreter}
	if err := s.Reset(); err != nil {
		return nil, err
	}
	return s, nil
}

// Reset discards the repository, transcript and lesson progress and builds
// fresh ones. The session gets a new ID.
func (s *Session) Reset() error {
	repo := gitsim.NewRepository(s.opts.DefaultBranch)
	var driver *lesson.Driver

	if l := s.opts.Lesson; l != nil {
		var err error
		repo, err = l.Setup.Apply(s.interp, repo)
		if err != nil {
			return fmt.Errorf("lesson %s: %w", l.ID, err)
		}
		driver = s.driver
		if driver == nil {
			driver = lesson.NewDriver(*l)
		} else {
			driver.Reset()
		}
	} else {
		for _, f := range s.opts.Sandbox {
			repo.Touch(f)
		}
	}

	s.ID = uuid.NewString()
	s.StartedAt = s.opts.Now()
	s.repo = repo
	s.transcript = gitsim.NewTranscript()
	s.driver = driver
	s.touchCurrentStep()
	log.InfoLog.Printf("session %s: started (lesson %q)", s.ID, s.LessonID())
	return nil
}

// Run executes one input line, records it and grades it.
func (s *Session) Run(line string) Result {
	var entry gitsim.TranscriptEntry
	if files, ok := touchBuiltin(line); ok {
		entry = s.touch(line, files)
	} else {
		s.repo, entry = s.interp.Run(s.repo, line)
	}
	s.transcript.Append(entry)

	res := Result{Entry: entry}
	if s.driver != nil && s.driver.Observe(entry) {
		res.StepCompleted = true
		res.LessonDone = s.driver.Done()
		s.touchCurrentStep()
	}
	return res
}

// Touch edits files in the simulated working tree without going through
// the transcript.
func (s *Session) Touch(files ...string) {
	for _, f := range files {
		s.repo.Touch(f)
	}
}

func (s *Session) touchCurrentStep() {
	if s.driver == nil {
		return
	}
	if step, ok := s.driver.Current(); ok {
		s.Touch(step.Touch...)
	}
}

// Repository returns a copy of the current repository.
func (s *Session) Repository() gitsim.Repository {
	return s.repo.Clone()
}

// Entries returns the transcript, oldest first.
func (s *Session) Entries() []gitsim.TranscriptEntry {
	return s.transcript.Entries()
}

// Transcript exposes the transcript for read-only helpers such as Tail.
func (s *Session) Transcript() *gitsim.Transcript {
	return s.transcript
}

// Lesson returns the lesson being graded.
func (s *Session) Lesson() (lesson.Lesson, bool) {
	if s.opts.Lesson == nil {
		return lesson.Lesson{}, false
	}
	return *s.opts.Lesson, true
}

// LessonID is "" for a sandbox.
func (s *Session) LessonID() string {
	if s.opts.Lesson == nil {
		return ""
	}
	return s.opts.Lesson.ID
}

// CurrentStep returns the step waiting to be completed.
func (s *Session) CurrentStep() (lesson.Step, bool) {
	if s.driver == nil {
		return lesson.Step{}, false
	}
	return s.driver.Current()
}

// Progress returns completed and total step counts. A sandbox reports 0, 0.
func (s *Session) Progress() (done, total int) {
	if s.driver == nil {
		return 0, 0
	}
	return s.driver.Progress()
}

// Done reports whether the lesson is complete. Always false for a sandbox.
func (s *Session) Done() bool {
	return s.driver != nil && s.driver.Done()
}

// touchBuiltin recognizes "touch <file>..." so learners can create and edit
// files in the simulated working tree.
func touchBuiltin(line string) ([]string, bool) {
	toks, err := gitsim.Tokenize(line)
	if err != nil || len(toks) == 0 || toks[0] != "touch" {
		return nil, false
	}
	return toks[1:], true
}

func (s *Session) touch(line string, files []string) gitsim.TranscriptEntry {
	entry := gitsim.TranscriptEntry{Command: strings.TrimSpace(line), Timestamp: s.opts.Now()}
	if len(files) == 0 {
		entry.Output = "touch: missing file operand"
		entry.Kind = gitsim.KindUsage
		return entry
	}
	if slices.Contains(files, "") {
		entry.Output = "touch: cannot touch '': No such file or directory"
		entry.Kind = gitsim.KindUsage
		return entry
	}
	s.Touch(files...)
	entry.Success = true
	return entry
}
