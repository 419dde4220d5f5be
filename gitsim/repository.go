package gitsim

import (
	"fmt"
	"maps"
	"slices"
	"time"

	"github.com/go-git/go-git/v5/plumbing"
)

// DefaultBranch is the branch a fresh repository starts on.
const DefaultBranch = "main"

// Commit is an immutable record in the simulated history.
type Commit struct {
	Hash       string    `json:"hash"`
	Message    string    `json:"message"`
	Branch     string    `json:"branch"`
	Parents    []string  `json:"parents,omitempty"`
	MergedFrom string    `json:"merged_from,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
}

// IsMerge reports whether the commit was created by "git merge".
func (c Commit) IsMerge() bool {
	return c.MergedFrom != ""
}

// FileStatus is the state of a single file in the simulated working tree.
type FileStatus int

const (
	// StatusUnknown means the file was never seen by the repository.
	StatusUnknown FileStatus = iota
	// StatusClean means the file is tracked and unchanged since its last commit.
	StatusClean
	StatusUntracked
	StatusModified
	StatusStaged
)

// Repository is the toy repository record. It is a plain value: the
// interpreter receives one and returns the next one, it never mutates the
// caller's copy.
//
// Staged, Modified and Untracked are mutually exclusive. Tracked lists files
// recorded by at least one commit and may overlap with Staged or Modified.
// All slices keep insertion order.
type Repository struct {
	Branches      []string          `json:"branches"`
	CurrentBranch string            `json:"current_branch"`
	Heads         map[string]string `json:"heads"`
	Commits       []Commit          `json:"commits"`
	Staged        []string          `json:"staged"`
	Modified      []string          `json:"modified"`
	Untracked     []string          `json:"untracked"`
	Tracked       []string          `json:"tracked"`
}

// NewRepository returns an empty repository with a single branch. An empty
// name falls back to DefaultBranch.
func NewRepository(defaultBranch string) Repository {
	if defaultBranch == "" {
		defaultBranch = DefaultBranch
	}
	return Repository{
		Branches:      []string{defaultBranch},
		CurrentBranch: defaultBranch,
		Heads:         map[string]string{defaultBranch: ""},
		Commits:       []Commit{},
		Staged:        []string{},
		Modified:      []string{},
		Untracked:     []string{},
		Tracked:       []string{},
	}
}

// Clone returns a deep copy. Commit parent slices are shared since commits
// are never mutated after creation.
func (r Repository) Clone() Repository {
	return Repository{
		Branches:      slices.Clone(r.Branches),
		CurrentBranch: r.CurrentBranch,
		Heads:         maps.Clone(r.Heads),
		Commits:       slices.Clone(r.Commits),
		Staged:        slices.Clone(r.Staged),
		Modified:      slices.Clone(r.Modified),
		Untracked:     slices.Clone(r.Untracked),
		Tracked:       slices.Clone(r.Tracked),
	}
}

// HasBranch reports whether name is a local branch.
func (r Repository) HasBranch(name string) bool {
	return slices.Contains(r.Branches, name)
}

// Head returns the head commit hash of the current branch ("" before the
// first commit).
func (r Repository) Head() string {
	return r.Heads[r.CurrentBranch]
}

// HeadOf returns the head commit hash of branch.
func (r Repository) HeadOf(branch string) string {
	return r.Heads[branch]
}

// StatusOf reports where file currently lives.
func (r Repository) StatusOf(file string) FileStatus {
	switch {
	case slices.Contains(r.Staged, file):
		return StatusStaged
	case slices.Contains(r.Modified, file):
		return StatusModified
	case slices.Contains(r.Untracked, file):
		return StatusUntracked
	case slices.Contains(r.Tracked, file):
		return StatusClean
	}
	return StatusUnknown
}

// IsClean reports whether there is nothing staged, modified or untracked.
func (r Repository) IsClean() bool {
	return len(r.Staged) == 0 && len(r.Modified) == 0 && len(r.Untracked) == 0
}

// Refs returns every branch as a full ref name mapped to its head hash, plus
// the symbolic HEAD.
func (r Repository) Refs() map[string]string {
	refs := make(map[string]string, len(r.Branches)+1)
	for _, b := range r.Branches {
		refs[plumbing.NewBranchReferenceName(b).String()] = r.Heads[b]
	}
	refs[plumbing.HEAD.String()] = "ref: " + plumbing.NewBranchReferenceName(r.CurrentBranch).String()
	return refs
}

// Touch simulates editing file in the working tree: a tracked file becomes
// modified, an unknown file becomes untracked. Files that are already dirty
// are left where they are.
func (r *Repository) Touch(file string) {
	switch r.StatusOf(file) {
	case StatusClean:
		r.Modified = append(r.Modified, file)
	case StatusUnknown:
		r.Untracked = append(r.Untracked, file)
	}
}

// MarkTracked records file as known to the repository without a commit.
// Lessons use it to seed modified files.
func (r *Repository) MarkTracked(file string) {
	if !slices.Contains(r.Tracked, file) {
		r.Tracked = append(r.Tracked, file)
	}
}

// Validate checks the structural invariants of the model.
func (r Repository) Validate() error {
	if len(r.Branches) == 0 {
		return fmt.Errorf("repository has no branches")
	}
	seen := make(map[string]bool, len(r.Branches))
	for _, b := range r.Branches {
		if seen[b] {
			return fmt.Errorf("duplicate branch %q", b)
		}
		seen[b] = true
	}
	if !seen[r.CurrentBranch] {
		return fmt.Errorf("current branch %q is not a branch", r.CurrentBranch)
	}

	owner := map[string]string{}
	sets := []struct {
		name  string
		files []string
	}{
		{"staged", r.Staged},
		{"modified", r.Modified},
		{"untracked", r.Untracked},
	}
	for _, set := range sets {
		for _, f := range set.files {
			if prev, ok := owner[f]; ok {
				return fmt.Errorf("file %q is both %s and %s", f, prev, set.name)
			}
			owner[f] = set.name
		}
	}

	hashes := make(map[string]bool, len(r.Commits))
	for _, c := range r.Commits {
		if c.Hash == "" {
			return fmt.Errorf("commit with empty hash")
		}
		if hashes[c.Hash] {
			return fmt.Errorf("duplicate commit hash %s", c.Hash)
		}
		hashes[c.Hash] = true
	}
	for b, head := range r.Heads {
		if head != "" && !hashes[head] {
			return fmt.Errorf("branch %q points to unknown commit %s", b, head)
		}
	}
	return nil
}

func removeFile(files []string, file string) []string {
	return slices.DeleteFunc(files, func(f string) bool { return f == file })
}
