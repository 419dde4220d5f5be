package gitsim

import (
	"fmt"
	"slices"
	"strings"
	"time"
)

// Interpreter executes parsed commands against a Repository. It holds only
// configuration (clock and hash function); all state travels through the
// Repository values passed in and returned.
type Interpreter struct {
	now  func() time.Time
	hash HashFunc
}

// Option configures an Interpreter.
type Option func(*Interpreter)

// WithClock sets the time source used for commit and transcript timestamps.
func WithClock(now func() time.Time) Option {
	return func(in *Interpreter) {
		if now != nil {
			in.now = now
		}
	}
}

// WithHashFunc replaces DefaultHash.
func WithHashFunc(h HashFunc) Option {
	return func(in *Interpreter) {
		if h != nil {
			in.hash = h
		}
	}
}

// NewInterpreter returns an interpreter using the wall clock and DefaultHash.
func NewInterpreter(opts ...Option) *Interpreter {
	in := &Interpreter{now: time.Now, hash: DefaultHash}
	for _, opt := range opts {
		opt(in)
	}
	return in
}

// commandSpec describes a supported subcommand.
type commandSpec struct {
	usage   string
	summary string
	flags   []string
}

var commandTable = map[string]commandSpec{
	"init":     {usage: "git init", summary: "Create an empty Git repository"},
	"status":   {usage: "git status [-s]", summary: "Show the working tree status", flags: []string{"-s", "--short"}},
	"add":      {usage: "git add <file>... | git add .", summary: "Add file contents to the index", flags: []string{"-A", "--all"}},
	"restore":  {usage: "git restore [--staged] <file>...", summary: "Unstage or discard changes to files", flags: []string{"-S", "--staged"}},
	"commit":   {usage: "git commit [-a] -m <message>", summary: "Record changes to the repository", flags: []string{"-m", "--message", "-a", "--all"}},
	"branch":   {usage: "git branch [-d] [<name>]", summary: "List, create, or delete branches", flags: []string{"-d", "-D", "--delete"}},
	"checkout": {usage: "git checkout [-b] <branch>", summary: "Switch branches", flags: []string{"-b"}},
	"switch":   {usage: "git switch [-c] <branch>", summary: "Switch branches", flags: []string{"-c", "--create"}},
	"merge":    {usage: "git merge <branch>", summary: "Join another branch into the current one", flags: []string{}},
	"log":      {usage: "git log [--oneline] [-n <count>]", summary: "Show commit logs", flags: []string{"--oneline", "-n", "--max-count"}},
	"help":     {usage: "git help [<command>]", summary: "Display help about commands"},
}

// commandOrder is the listing order for "git help".
var commandOrder = []string{"init", "status", "add", "restore", "commit", "branch", "checkout", "switch", "merge", "log", "help"}

// Supported reports whether name is a subcommand the simulator understands.
func Supported(name string) bool {
	_, ok := commandTable[name]
	return ok
}

// Run parses line and executes it. Parse failures produce a failed entry and
// return repo unchanged.
func (in *Interpreter) Run(repo Repository, line string) (Repository, TranscriptEntry) {
	cmd, err := Parse(line)
	if err != nil {
		return repo, in.failure(cmd.Raw, err)
	}
	return in.Execute(repo, cmd)
}

// Execute applies cmd to a copy of repo. On success the copy is returned;
// on any failure repo itself is returned untouched. It never panics on bad
// input and never returns an error: failures are reported in the entry.
func (in *Interpreter) Execute(repo Repository, cmd Command) (Repository, TranscriptEntry) {
	next := repo.Clone()
	out, err := in.dispatch(&next, cmd)
	if err != nil {
		return repo, in.failure(cmd.Raw, err)
	}
	return next, TranscriptEntry{
		Command:   cmd.Raw,
		Output:    out,
		Success:   true,
		Timestamp: in.now(),
	}
}

func (in *Interpreter) failure(raw string, err error) TranscriptEntry {
	return TranscriptEntry{
		Command:   raw,
		Output:    err.Error(),
		Success:   false,
		Kind:      KindOf(err),
		Timestamp: in.now(),
	}
}

func (in *Interpreter) dispatch(repo *Repository, cmd Command) (string, error) {
	if cmd.Name == "" {
		return "", usageError("usage: git <command> [<args>]\n\n%s", helpText())
	}
	if strings.HasPrefix(cmd.Name, "-") {
		return "", usageError("unknown option: %s\nusage: git <command> [<args>]", cmd.Name)
	}
	spec, ok := commandTable[cmd.Name]
	if !ok {
		return "", unknownCommandError(cmd.Name)
	}
	if err := checkFlags(cmd, spec); err != nil {
		return "", err
	}

	switch cmd.Name {
	case "init":
		return in.runInit(repo, cmd)
	case "status":
		return in.runStatus(repo, cmd)
	case "add":
		return in.runAdd(repo, cmd)
	case "restore":
		return in.runRestore(repo, cmd)
	case "commit":
		return in.runCommit(repo, cmd)
	case "branch":
		return in.runBranch(repo, cmd)
	case "checkout":
		return in.runCheckout(repo, cmd, cmd.HasFlag("-b"))
	case "switch":
		return in.runCheckout(repo, cmd, cmd.HasFlag("-c", "--create"))
	case "merge":
		return in.runMerge(repo, cmd)
	case "log":
		return in.runLog(repo, cmd)
	case "help":
		return in.runHelp(repo, cmd)
	}
	return "", unknownCommandError(cmd.Name)
}

func checkFlags(cmd Command, spec commandSpec) error {
	for _, name := range cmd.FlagNames() {
		if !slices.Contains(spec.flags, name) {
			return usageError("error: unknown option '%s'\nusage: %s", strings.TrimLeft(name, "-"), spec.usage)
		}
	}
	return nil
}

func (in *Interpreter) runInit(repo *Repository, _ Command) (string, error) {
	if len(repo.Commits) == 0 {
		return "Initialized empty Git repository in .git/", nil
	}
	return "Reinitialized existing Git repository in .git/", nil
}

func (in *Interpreter) runHelp(_ *Repository, cmd Command) (string, error) {
	if len(cmd.Args) == 0 {
		return helpText(), nil
	}
	name := cmd.Args[0]
	spec, ok := commandTable[name]
	if !ok {
		return "", unknownCommandError(name)
	}
	return fmt.Sprintf("usage: %s\n\n    %s", spec.usage, spec.summary), nil
}

func helpText() string {
	var b strings.Builder
	b.WriteString("These are the git commands available in this simulator:\n")
	for _, name := range commandOrder {
		fmt.Fprintf(&b, "\n   %-10s %s", name, commandTable[name].summary)
	}
	return b.String()
}
