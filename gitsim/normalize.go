package gitsim

import (
	"slices"
	"strings"
)

// flagAliases folds equivalent spellings to one canonical flag per subcommand.
var flagAliases = map[string]map[string]string{
	"status":   {"--short": "-s"},
	"add":      {"--all": "-A"},
	"restore":  {"-S": "--staged"},
	"commit":   {"--message": "-m", "--all": "-a"},
	"branch":   {"-D": "-d", "--delete": "-d"},
	"checkout": {"-c": "-b", "--create": "-b"},
	"log":      {"--max-count": "-n"},
}

// commandAliases maps subcommands to the one they behave like.
var commandAliases = map[string]string{
	"switch": "checkout",
}

// orderFreeArgs lists subcommands whose positional arguments are a set.
var orderFreeArgs = map[string]bool{
	"add":     true,
	"restore": true,
	"branch":  true,
}

// Canonical returns the normalized token list of c: subcommand aliases folded,
// flag spellings folded and sorted, flag values following their flag. Two
// commands with equal canonical forms have the same effect on a repository.
func (c Command) Canonical() []string {
	if c.Name == "" {
		return nil
	}
	name := c.Name
	if alias, ok := commandAliases[name]; ok {
		name = alias
	}

	// Alias spellings go first so the canonical spelling's value wins, the
	// same precedence FlagValue gives it when the command runs.
	flags := map[string]string{}
	names := c.FlagNames()
	for _, f := range names {
		if alias, ok := flagAliases[name][f]; ok {
			flags[alias] = c.Flags[f]
		}
	}
	for _, f := range names {
		if _, ok := flagAliases[name][f]; !ok {
			flags[f] = c.Flags[f]
		}
	}
	args := slices.Clone(c.Args)

	// "add -A" and "add ." stage the same files.
	if name == "add" {
		if _, ok := flags["-A"]; ok || slices.Contains(args, ".") {
			delete(flags, "-A")
			args = []string{"."}
		}
	}
	if orderFreeArgs[name] {
		slices.Sort(args)
		args = slices.Compact(args)
	}

	folded := make([]string, 0, len(flags))
	for f := range flags {
		folded = append(folded, f)
	}
	slices.Sort(folded)

	out := []string{"git", name}
	for _, f := range folded {
		out = append(out, f)
		if valueFlags[c.Name][f] || valueFlags[name][f] {
			out = append(out, flags[f])
		}
	}
	return append(out, args...)
}

// CanonicalString joins Canonical with spaces, quoting tokens that contain
// whitespace or are empty.
func (c Command) CanonicalString() string {
	toks := c.Canonical()
	for i, t := range toks {
		if t == "" || strings.ContainsAny(t, " \t\"'") {
			toks[i] = `"` + strings.ReplaceAll(t, `"`, `\"`) + `"`
		}
	}
	return strings.Join(toks, " ")
}
