package gitsim

import (
	"regexp"
	"slices"
	"strings"
	"unicode"
)

// Command is one parsed input line.
type Command struct {
	// Raw is the input line with surrounding whitespace trimmed.
	Raw string
	// Tokens holds every token after the leading "git".
	Tokens []string
	// Name is the subcommand ("commit", "checkout", ...). Empty for a bare "git".
	Name string
	// Args are the positional arguments in input order.
	Args []string
	// Flags maps each flag as typed ("-m", "--oneline") to its value. Flags
	// that take no value map to "".
	Flags map[string]string
}

// HasFlag reports whether any of the given spellings was passed.
func (c Command) HasFlag(names ...string) bool {
	for _, n := range names {
		if _, ok := c.Flags[n]; ok {
			return true
		}
	}
	return false
}

// FlagValue returns the value of the first given spelling that was passed.
func (c Command) FlagValue(names ...string) (string, bool) {
	for _, n := range names {
		if v, ok := c.Flags[n]; ok {
			return v, true
		}
	}
	return "", false
}

// FlagNames returns the passed flags sorted by name.
func (c Command) FlagNames() []string {
	names := make([]string, 0, len(c.Flags))
	for n := range c.Flags {
		names = append(names, n)
	}
	slices.Sort(names)
	return names
}

// valueFlags lists, per subcommand, the flags that consume a value.
var valueFlags = map[string]map[string]bool{
	"commit": {"-m": true, "--message": true},
	"log":    {"-n": true, "--max-count": true},
}

var countFlagRegex = regexp.MustCompile(`^-[0-9]+$`)

// Parse tokenizes line and splits it into subcommand, flags and positional
// arguments. It has no side effects. Errors are *Error values of KindParse.
func Parse(line string) (Command, error) {
	raw := strings.TrimSpace(line)
	tokens, err := Tokenize(raw)
	if err != nil {
		return Command{Raw: raw}, err
	}
	if len(tokens) == 0 {
		return Command{Raw: raw}, parseError("fatal: empty command")
	}
	if tokens[0] != "git" {
		return Command{Raw: raw}, parseError("fatal: not a git command: '%s'", tokens[0])
	}

	cmd := Command{
		Raw:    raw,
		Tokens: tokens[1:],
		Flags:  map[string]string{},
	}
	if len(cmd.Tokens) == 0 {
		return cmd, nil
	}
	cmd.Name = cmd.Tokens[0]
	takesValue := valueFlags[cmd.Name]

	rest := cmd.Tokens[1:]
	endOfFlags := false
	for i := 0; i < len(rest); i++ {
		tok := rest[i]
		switch {
		case endOfFlags || tok == "-" || !strings.HasPrefix(tok, "-"):
			cmd.Args = append(cmd.Args, tok)
		case tok == "--":
			endOfFlags = true
		case strings.HasPrefix(tok, "--"):
			name, value, hasValue := strings.Cut(tok, "=")
			if !hasValue && takesValue[name] && i+1 < len(rest) {
				i++
				value = rest[i]
			}
			cmd.Flags[name] = value
		case countFlagRegex.MatchString(tok) && takesValue["-n"]:
			cmd.Flags["-n"] = tok[1:]
		default:
			// Bundled short flags: "-am msg" is "-a -m msg", "-mmsg" is "-m msg".
			shorts := tok[1:]
			for j, ch := range shorts {
				name := "-" + string(ch)
				if !takesValue[name] {
					cmd.Flags[name] = ""
					continue
				}
				value := shorts[j+len(string(ch)):]
				if value == "" && i+1 < len(rest) {
					i++
					value = rest[i]
				}
				cmd.Flags[name] = value
				break
			}
		}
	}
	return cmd, nil
}

// Tokenize splits line on whitespace. Double- and single-quoted substrings
// form a single token with the quotes removed; a backslash outside single
// quotes escapes the next character. An empty quoted string is kept as an
// empty token.
func Tokenize(line string) ([]string, error) {
	var (
		tokens  []string
		cur     strings.Builder
		inToken bool
		quote   rune
		escaped bool
	)
	for _, r := range line {
		switch {
		case escaped:
			cur.WriteRune(r)
			escaped = false
		case r == '\\' && quote != '\'':
			escaped = true
			inToken = true
		case quote != 0:
			if r == quote {
				quote = 0
			} else {
				cur.WriteRune(r)
			}
		case r == '"' || r == '\'':
			quote = r
			inToken = true
		case unicode.IsSpace(r):
			if inToken {
				tokens = append(tokens, cur.String())
				cur.Reset()
				inToken = false
			}
		default:
			cur.WriteRune(r)
			inToken = true
		}
	}
	if quote != 0 {
		return nil, parseError("fatal: unterminated quote")
	}
	if escaped {
		cur.WriteRune('\\')
	}
	if inToken {
		tokens = append(tokens, cur.String())
	}
	return tokens, nil
}
