package lesson

import (
	"errors"
	"fmt"

	"github.com/ByteMirror/gitcoach/gitsim"
)

// ErrLessonNotFound is returned by Catalog.Get for unknown IDs.
var ErrLessonNotFound = errors.New("lesson not found")

// Lesson is one guided exercise. Lessons are data: every exercise shares
// the same interpreter and driver and differs only in its setup and the
// commands each step accepts.
type Lesson struct {
	ID      string
	Title   string
	Summary string
	Order   int
	// Body is markdown shown above the steps.
	Body  string
	Setup Setup
	Steps []Step
	// Source is the file the lesson was read from ("builtin:<name>" for
	// embedded lessons).
	Source string
}

// Step is a single prompt and the commands that complete it.
type Step struct {
	Prompt string   `yaml:"prompt"`
	Hint   string   `yaml:"hint"`
	Accept []string `yaml:"accept"`
	// Strict disables normalized matching: only token-for-token equivalents
	// of an accepted command count.
	Strict bool `yaml:"strict"`
	// Touch lists files edited in the working tree when this step becomes
	// current, so the learner has something to stage.
	Touch []string `yaml:"touch"`
}

// SetupCommit is a commit replayed before the lesson starts.
type SetupCommit struct {
	Message string   `yaml:"message"`
	Files   []string `yaml:"files"`
}

// Setup describes the repository a lesson starts from.
type Setup struct {
	Commits   []SetupCommit `yaml:"commits"`
	Branches  []string      `yaml:"branches"`
	Checkout  string        `yaml:"checkout"`
	Modified  []string      `yaml:"modified"`
	Untracked []string      `yaml:"untracked"`
}

// Validate checks that every step can be completed.
func (l Lesson) Validate() error {
	if l.ID == "" {
		return fmt.Errorf("lesson has no id")
	}
	if len(l.Steps) == 0 {
		return fmt.Errorf("lesson %s has no steps", l.ID)
	}
	for i, s := range l.Steps {
		if len(s.Accept) == 0 {
			return fmt.Errorf("lesson %s step %d accepts no commands", l.ID, i+1)
		}
		for _, a := range s.Accept {
			cmd, err := gitsim.Parse(a)
			if err != nil {
				return fmt.Errorf("lesson %s step %d: accepted command %q: %w", l.ID, i+1, a, err)
			}
			if !gitsim.Supported(cmd.Name) {
				return fmt.Errorf("lesson %s step %d: %q uses unsupported command %q", l.ID, i+1, a, cmd.Name)
			}
		}
	}
	for _, b := range l.Setup.Branches {
		if !gitsim.ValidBranchName(b) {
			return fmt.Errorf("lesson %s: invalid setup branch %q", l.ID, b)
		}
	}
	return nil
}

// Apply builds the starting repository by replaying the setup through in, so
// the result satisfies every model invariant.
func (s Setup) Apply(in *gitsim.Interpreter, repo gitsim.Repository) (gitsim.Repository, error) {
	run := func(cmd gitsim.Command) error {
		var entry gitsim.TranscriptEntry
		repo, entry = in.Execute(repo, cmd)
		if !entry.Success {
			return fmt.Errorf("setup: %s: %s", cmd.Raw, entry.Output)
		}
		return nil
	}

	for i, c := range s.Commits {
		files := c.Files
		if len(files) == 0 {
			files = []string{fmt.Sprintf("file%d.txt", i+1)}
		}
		for _, f := range files {
			repo.Touch(f)
		}
		if err := run(command("add", nil, files...)); err != nil {
			return repo, err
		}
		if err := run(command("commit", map[string]string{"-m": c.Message})); err != nil {
			return repo, err
		}
	}
	for _, b := range s.Branches {
		if err := run(command("branch", nil, b)); err != nil {
			return repo, err
		}
	}
	if s.Checkout != "" {
		if err := run(command("checkout", nil, s.Checkout)); err != nil {
			return repo, err
		}
	}
	for _, f := range s.Modified {
		repo.MarkTracked(f)
		repo.Touch(f)
	}
	for _, f := range s.Untracked {
		repo.Touch(f)
	}
	return repo, repo.Validate()
}

func command(name string, flags map[string]string, args ...string) gitsim.Command {
	if flags == nil {
		flags = map[string]string{}
	}
	raw := "git " + name
	for f, v := range flags {
		raw += fmt.Sprintf(" %s %q", f, v)
	}
	for _, a := range args {
		raw += " " + a
	}
	return gitsim.Command{
		Raw:    raw,
		Tokens: append([]string{name}, args...),
		Name:   name,
		Args:   args,
		Flags:  flags,
	}
}
