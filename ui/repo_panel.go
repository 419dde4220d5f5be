package ui

import (
	"fmt"
	"slices"
	"strings"

	"github.com/muesli/ansi"
	"github.com/muesli/reflow/truncate"

	"github.com/ByteMirror/gitcoach/gitsim"
)

// RepoPanel draws the simulated repository: branches, the working tree and
// the commit history, newest first.
type RepoPanel struct {
	width, height int
	repo          gitsim.Repository
}

func NewRepoPanel() *RepoPanel {
	return &RepoPanel{}
}

func (r *RepoPanel) SetSize(width, height int) {
	r.width = width
	r.height = height
}

func (r *RepoPanel) SetRepository(repo gitsim.Repository) {
	r.repo = repo
}

func (r *RepoPanel) String() string {
	if r.width == 0 || r.height == 0 {
		return ""
	}
	inner := max(r.width-4, 1)
	lines := RenderRepository(r.repo, inner)
	if limit := r.height - 2; len(lines) > limit {
		lines = lines[:limit]
	}
	return windowStyle.Width(r.width - 2).Height(r.height - 2).Render(strings.Join(lines, "\n"))
}

// RenderRepository returns the panel body as lines no wider than width
// cells.
func RenderRepository(repo gitsim.Repository, width int) []string {
	var lines []string
	add := func(s string) {
		if ansi.PrintableRuneWidth(s) > width {
			s = truncate.StringWithTail(s, uint(width), "…")
		}
		lines = append(lines, s)
	}

	add(sectionStyle.Render("Branches"))
	for _, b := range repo.Branches {
		marker := "  "
		name := b
		if b == repo.CurrentBranch {
			marker = "* "
			name = branchStyle.Render(b)
		}
		head := repo.HeadOf(b)
		if head == "" {
			head = "(no commits)"
		}
		add(marker + name + " " + hashStyle.Render(head))
	}

	add("")
	add(sectionStyle.Render("Working tree"))
	if repo.IsClean() {
		add(dimStyle.Render("  clean"))
	}
	for _, f := range repo.Staged {
		add(successStyle.Render("  + " + f))
	}
	for _, f := range repo.Modified {
		add(errorStyle.Render("  ~ " + f))
	}
	for _, f := range repo.Untracked {
		add(dimStyle.Render("  ? " + f))
	}

	add("")
	add(sectionStyle.Render("History"))
	if len(repo.Commits) == 0 {
		add(dimStyle.Render("  no commits yet"))
		return lines
	}
	labels := branchLabels(repo)
	for _, c := range slices.Backward(repo.Commits) {
		add(commitLine(c, labels[c.Hash]))
	}
	return lines
}

func commitLine(c gitsim.Commit, labels []string) string {
	node := "●"
	if c.IsMerge() {
		node = "◆"
	}
	line := fmt.Sprintf("%s %s", node, hashStyle.Render(c.Hash))
	if len(labels) > 0 {
		line += " " + branchStyle.Render("("+strings.Join(labels, ", ")+")")
	}
	return line + " " + c.Message
}

// branchLabels maps each head commit to the branches pointing at it, with
// the current branch first as "HEAD -> name".
func branchLabels(repo gitsim.Repository) map[string][]string {
	out := map[string][]string{}
	if head := repo.Head(); head != "" {
		out[head] = append(out[head], "HEAD -> "+repo.CurrentBranch)
	}
	for _, b := range repo.Branches {
		if b == repo.CurrentBranch {
			continue
		}
		if h := repo.HeadOf(b); h != "" {
			out[h] = append(out[h], b)
		}
	}
	return out
}
