package gitsim

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
)

const logDateLayout = "Mon Jan 2 15:04:05 2006 -0700"

func (in *Interpreter) runCommit(repo *Repository, cmd Command) (string, error) {
	msg, _ := cmd.FlagValue("-m", "--message")
	msg = strings.TrimSpace(msg)
	if msg == "" {
		return "", preconditionError("fatal: commit message required (use -m \"<message>\")")
	}
	if len(cmd.Args) > 0 {
		return "", usageError("error: pathspec '%s' did not match any file(s) known to git\nusage: %s",
			cmd.Args[0], commandTable["commit"].usage)
	}

	if cmd.HasFlag("-a", "--all") {
		for _, f := range slices.Clone(repo.Modified) {
			stage(repo, f)
		}
	}
	if len(repo.Staged) == 0 {
		if repo.IsClean() {
			return "", preconditionError("On branch %s\nnothing to commit, working tree clean", repo.CurrentBranch)
		}
		return "", preconditionError("On branch %s\nnothing to commit (use \"git add\" to stage changes)", repo.CurrentBranch)
	}

	var parents []string
	if head := repo.Head(); head != "" {
		parents = []string{head}
	}
	c := in.record(repo, msg, parents, "")
	n := len(repo.Staged)
	for _, f := range repo.Staged {
		repo.MarkTracked(f)
	}
	repo.Staged = []string{}

	noun := "files"
	if n == 1 {
		noun = "file"
	}
	return fmt.Sprintf("[%s %s] %s\n %d %s changed", c.Branch, c.Hash, c.Message, n, noun), nil
}

// record appends a new commit on the current branch and moves its head.
func (in *Interpreter) record(repo *Repository, msg string, parents []string, mergedFrom string) Commit {
	c := Commit{
		Message:    msg,
		Branch:     repo.CurrentBranch,
		Parents:    parents,
		MergedFrom: mergedFrom,
		Timestamp:  in.now(),
	}
	c.Hash = in.nextHash(repo, c)
	repo.Commits = append(repo.Commits, c)
	if repo.Heads == nil {
		repo.Heads = map[string]string{}
	}
	repo.Heads[repo.CurrentBranch] = c.Hash
	return c
}

func (in *Interpreter) runMerge(repo *Repository, cmd Command) (string, error) {
	if len(cmd.Args) != 1 {
		return "", usageError("usage: %s", commandTable["merge"].usage)
	}
	name := cmd.Args[0]
	if !repo.HasBranch(name) {
		return "", preconditionError("merge: branch '%s' does not exist", name)
	}
	if name == repo.CurrentBranch {
		return "", preconditionError("fatal: cannot merge branch '%s' into itself", name)
	}

	var parents []string
	for _, h := range []string{repo.Head(), repo.HeadOf(name)} {
		if h != "" && !slices.Contains(parents, h) {
			parents = append(parents, h)
		}
	}
	msg := fmt.Sprintf("Merge branch '%s' into %s", name, repo.CurrentBranch)
	c := in.record(repo, msg, parents, name)
	return fmt.Sprintf("Merge made by the 'ort' strategy.\n[%s %s] %s", c.Branch, c.Hash, c.Message), nil
}

func (in *Interpreter) runLog(repo *Repository, cmd Command) (string, error) {
	if len(cmd.Args) > 0 {
		return "", usageError("fatal: ambiguous argument '%s': unknown revision or path\nusage: %s",
			cmd.Args[0], commandTable["log"].usage)
	}
	limit := len(repo.Commits)
	if v, ok := cmd.FlagValue("-n", "--max-count"); ok {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return "", usageError("fatal: invalid commit count '%s'\nusage: %s", v, commandTable["log"].usage)
		}
		limit = min(n, limit)
	}
	if len(repo.Commits) == 0 {
		return "no commits yet", nil
	}

	oneline := cmd.HasFlag("--oneline")
	decorations := decorate(*repo)
	blocks := make([]string, 0, limit)
	for i := len(repo.Commits) - 1; i >= 0 && len(blocks) < limit; i-- {
		c := repo.Commits[i]
		deco := ""
		if d := decorations[c.Hash]; d != "" {
			deco = " (" + d + ")"
		}
		if oneline {
			blocks = append(blocks, c.Hash+deco+" "+c.Message)
			continue
		}
		var b strings.Builder
		fmt.Fprintf(&b, "commit %s%s\n", c.Hash, deco)
		if len(c.Parents) > 1 {
			fmt.Fprintf(&b, "Merge: %s\n", strings.Join(c.Parents, " "))
		}
		fmt.Fprintf(&b, "Date:   %s\n\n    %s", c.Timestamp.Format(logDateLayout), c.Message)
		blocks = append(blocks, b.String())
	}
	if oneline {
		return strings.Join(blocks, "\n"), nil
	}
	return strings.Join(blocks, "\n\n"), nil
}

// decorate maps each head commit to its ref list, "HEAD -> main, feature".
func decorate(repo Repository) map[string]string {
	refs := map[string][]string{}
	if head := repo.Head(); head != "" {
		refs[head] = append(refs[head], "HEAD -> "+repo.CurrentBranch)
	}
	for _, b := range repo.Branches {
		h := repo.HeadOf(b)
		if h == "" || b == repo.CurrentBranch {
			continue
		}
		refs[h] = append(refs[h], b)
	}
	out := make(map[string]string, len(refs))
	for h, names := range refs {
		out[h] = strings.Join(names, ", ")
	}
	return out
}
