package gitsim

import (
	"fmt"
	"slices"
	"strings"
)

func (in *Interpreter) runStatus(repo *Repository, cmd Command) (string, error) {
	if cmd.HasFlag("-s", "--short") {
		return shortStatus(repo), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "On branch %s", repo.CurrentBranch)
	if repo.Head() == "" {
		b.WriteString("\n\nNo commits yet")
	}
	if repo.IsClean() {
		b.WriteString("\n\nnothing to commit, working tree clean")
		return b.String(), nil
	}

	if len(repo.Staged) > 0 {
		b.WriteString("\n\nChanges to be committed:\n  (use \"git restore --staged <file>...\" to unstage)")
		for _, f := range repo.Staged {
			label := "modified:"
			if !slices.Contains(repo.Tracked, f) {
				label = "new file:"
			}
			fmt.Fprintf(&b, "\n\t%-12s%s", label, f)
		}
	}
	if len(repo.Modified) > 0 {
		b.WriteString("\n\nChanges not staged for commit:\n  (use \"git add <file>...\" to update what will be committed)")
		for _, f := range repo.Modified {
			fmt.Fprintf(&b, "\n\t%-12s%s", "modified:", f)
		}
	}
	if len(repo.Untracked) > 0 {
		b.WriteString("\n\nUntracked files:\n  (use \"git add <file>...\" to include in what will be committed)")
		for _, f := range repo.Untracked {
			fmt.Fprintf(&b, "\n\t%s", f)
		}
	}
	return b.String(), nil
}

func shortStatus(repo *Repository) string {
	lines := make([]string, 0, len(repo.Staged)+len(repo.Modified)+len(repo.Untracked))
	for _, f := range repo.Staged {
		code := "M "
		if !slices.Contains(repo.Tracked, f) {
			code = "A "
		}
		lines = append(lines, code+" "+f)
	}
	for _, f := range repo.Modified {
		lines = append(lines, " M "+f)
	}
	for _, f := range repo.Untracked {
		lines = append(lines, "?? "+f)
	}
	return strings.Join(lines, "\n")
}

func (in *Interpreter) runAdd(repo *Repository, cmd Command) (string, error) {
	all := cmd.HasFlag("-A", "--all") || slices.Contains(cmd.Args, ".")
	if !all && len(cmd.Args) == 0 {
		return "", usageError("Nothing specified, nothing added.\nhint: Maybe you wanted to say 'git add .'?")
	}

	if all {
		pending := append(slices.Clone(repo.Modified), repo.Untracked...)
		for _, f := range pending {
			stage(repo, f)
		}
		return "", nil
	}

	// Validate every path before touching the model.
	for _, f := range cmd.Args {
		switch repo.StatusOf(f) {
		case StatusUnknown:
			return "", preconditionError("fatal: pathspec '%s' did not match any files", f)
		}
	}
	for _, f := range cmd.Args {
		stage(repo, f)
	}
	return "", nil
}

// stage moves a modified or untracked file into the index. Staged and clean
// files are left alone.
func stage(repo *Repository, f string) {
	switch repo.StatusOf(f) {
	case StatusModified:
		repo.Modified = removeFile(repo.Modified, f)
	case StatusUntracked:
		repo.Untracked = removeFile(repo.Untracked, f)
	default:
		return
	}
	repo.Staged = append(repo.Staged, f)
}

func (in *Interpreter) runRestore(repo *Repository, cmd Command) (string, error) {
	if len(cmd.Args) == 0 {
		return "", usageError("fatal: you must specify path(s) to restore")
	}
	staged := cmd.HasFlag("-S", "--staged")

	for _, f := range cmd.Args {
		status := repo.StatusOf(f)
		if staged && status != StatusStaged {
			return "", preconditionError("error: pathspec '%s' did not match any file(s) staged for commit", f)
		}
		if !staged && status != StatusModified {
			return "", preconditionError("error: pathspec '%s' did not match any modified file(s) known to git", f)
		}
	}

	for _, f := range cmd.Args {
		if !staged {
			// Discarding working tree changes leaves the file clean.
			repo.Modified = removeFile(repo.Modified, f)
			continue
		}
		repo.Staged = removeFile(repo.Staged, f)
		if slices.Contains(repo.Tracked, f) {
			repo.Modified = append(repo.Modified, f)
		} else {
			repo.Untracked = append(repo.Untracked, f)
		}
	}
	return "", nil
}
