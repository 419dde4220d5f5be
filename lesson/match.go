package lesson

import (
	"strings"

	"github.com/samber/lo"

	"github.com/ByteMirror/gitcoach/gitsim"
)

// Wildcard in an accepted command matches any single token, so
// `git commit -m "*"` accepts every commit message.
const Wildcard = "*"

// Matches reports whether command completes step. It does not look at
// whether the command succeeded; the driver does.
func (s Step) Matches(command string) bool {
	got := collapse(command)
	if lo.ContainsBy(s.Accept, func(a string) bool { return collapse(a) == got }) {
		return true
	}

	gotTokens, err := gitsim.Tokenize(command)
	if err != nil {
		return false
	}
	if s.Strict {
		return lo.ContainsBy(s.Accept, func(a string) bool {
			want, err := gitsim.Tokenize(a)
			return err == nil && tokensMatch(want, gotTokens)
		})
	}

	gotCmd, err := gitsim.Parse(command)
	if err != nil {
		return false
	}
	gotCanon := gotCmd.Canonical()
	return lo.ContainsBy(s.Accept, func(a string) bool {
		wantCmd, err := gitsim.Parse(a)
		return err == nil && tokensMatch(wantCmd.Canonical(), gotCanon)
	})
}

// collapse folds runs of whitespace to single spaces.
func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func tokensMatch(want, got []string) bool {
	if len(want) != len(got) || len(want) == 0 {
		return false
	}
	for i := range want {
		if want[i] != Wildcard && want[i] != got[i] {
			return false
		}
	}
	return true
}
