package gitsim

import (
	"fmt"
	"strings"
)

func (in *Interpreter) runBranch(repo *Repository, cmd Command) (string, error) {
	if cmd.HasFlag("-d", "-D", "--delete") {
		return deleteBranch(repo, cmd)
	}

	switch len(cmd.Args) {
	case 0:
		lines := make([]string, 0, len(repo.Branches))
		for _, b := range repo.Branches {
			marker := "  "
			if b == repo.CurrentBranch {
				marker = "* "
			}
			lines = append(lines, marker+b)
		}
		return strings.Join(lines, "\n"), nil
	case 1:
		return "", createBranch(repo, cmd.Args[0])
	default:
		return "", usageError("fatal: too many arguments\nusage: %s", commandTable["branch"].usage)
	}
}

// createBranch adds name pointing at the current head without switching to it.
func createBranch(repo *Repository, name string) error {
	if !ValidBranchName(name) {
		msg := fmt.Sprintf("fatal: '%s' is not a valid branch name", name)
		if hint := SanitizeBranchName(name); hint != "" && ValidBranchName(hint) && hint != name {
			msg += fmt.Sprintf("\nhint: try '%s'", hint)
		}
		return preconditionError("%s", msg)
	}
	if repo.HasBranch(name) {
		return preconditionError("fatal: a branch named '%s' already exists", name)
	}
	repo.Branches = append(repo.Branches, name)
	if repo.Heads == nil {
		repo.Heads = map[string]string{}
	}
	repo.Heads[name] = repo.Head()
	return nil
}

func deleteBranch(repo *Repository, cmd Command) (string, error) {
	if len(cmd.Args) == 0 {
		return "", usageError("fatal: branch name required")
	}
	for _, name := range cmd.Args {
		if !repo.HasBranch(name) {
			return "", preconditionError("error: branch '%s' not found", name)
		}
		if name == repo.CurrentBranch {
			return "", preconditionError("error: cannot delete branch '%s' checked out", name)
		}
	}

	lines := make([]string, 0, len(cmd.Args))
	for _, name := range cmd.Args {
		if !repo.HasBranch(name) {
			continue // repeated argument
		}
		head := repo.HeadOf(name)
		repo.Branches = removeFile(repo.Branches, name)
		delete(repo.Heads, name)
		if head == "" {
			lines = append(lines, fmt.Sprintf("Deleted branch %s.", name))
		} else {
			lines = append(lines, fmt.Sprintf("Deleted branch %s (was %s).", name, head))
		}
	}
	return strings.Join(lines, "\n"), nil
}

// runCheckout backs both "checkout [-b]" and "switch [-c]".
func (in *Interpreter) runCheckout(repo *Repository, cmd Command, create bool) (string, error) {
	usage := commandTable[cmd.Name].usage
	if len(cmd.Args) != 1 {
		return "", usageError("usage: %s", usage)
	}
	name := cmd.Args[0]

	if create {
		if err := createBranch(repo, name); err != nil {
			return "", err
		}
		repo.CurrentBranch = name
		return fmt.Sprintf("Switched to a new branch '%s'", name), nil
	}

	if !repo.HasBranch(name) {
		if cmd.Name == "switch" {
			return "", preconditionError("fatal: invalid reference: %s (branch '%s' does not exist)", name, name)
		}
		return "", preconditionError("error: pathspec '%s' did not match any file(s) known to git (branch '%s' does not exist)", name, name)
	}
	if name == repo.CurrentBranch {
		return fmt.Sprintf("Already on '%s'", name), nil
	}
	repo.CurrentBranch = name
	return fmt.Sprintf("Switched to branch '%s'", name), nil
}
