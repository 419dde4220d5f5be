package gitsim

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		wantName  string
		wantArgs  []string
		wantFlags map[string]string
	}{
		{
			name:      "quoted message stays one token",
			input:     `git commit -m "fix bug"`,
			wantName:  "commit",
			wantFlags: map[string]string{"-m": "fix bug"},
		},
		{
			name:      "single quotes",
			input:     `git commit -m 'first commit'`,
			wantName:  "commit",
			wantFlags: map[string]string{"-m": "first commit"},
		},
		{
			name:      "bundled short flags",
			input:     "git commit -am wip",
			wantName:  "commit",
			wantFlags: map[string]string{"-a": "", "-m": "wip"},
		},
		{
			name:      "attached short value",
			input:     "git commit -mwip",
			wantName:  "commit",
			wantFlags: map[string]string{"-m": "wip"},
		},
		{
			name:      "long flag with equals",
			input:     "git log --max-count=2 --oneline",
			wantName:  "log",
			wantFlags: map[string]string{"--max-count": "2", "--oneline": ""},
		},
		{
			name:      "numeric count flag",
			input:     "git log -3",
			wantName:  "log",
			wantFlags: map[string]string{"-n": "3"},
		},
		{
			name:      "flag before positional",
			input:     "git checkout -b feature/login",
			wantName:  "checkout",
			wantArgs:  []string{"feature/login"},
			wantFlags: map[string]string{"-b": ""},
		},
		{
			name:      "double dash ends flags",
			input:     "git add -- -weird.txt",
			wantName:  "add",
			wantArgs:  []string{"-weird.txt"},
			wantFlags: map[string]string{},
		},
		{
			name:      "extra whitespace",
			input:     "   git   add\tREADME.md  ",
			wantName:  "add",
			wantArgs:  []string{"README.md"},
			wantFlags: map[string]string{},
		},
		{
			name:      "bare git",
			input:     "git",
			wantName:  "",
			wantFlags: map[string]string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd, err := Parse(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.wantName, cmd.Name)
			assert.Equal(t, tt.wantArgs, cmd.Args)
			assert.Equal(t, tt.wantFlags, cmd.Flags)
		})
	}
}

func TestParse_Tokens(t *testing.T) {
	cmd, err := Parse(`git commit -m "fix bug"`)
	require.NoError(t, err)
	assert.Equal(t, []string{"commit", "-m", "fix bug"}, cmd.Tokens)
	assert.Equal(t, `git commit -m "fix bug"`, cmd.Raw)
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantMsg string
	}{
		{name: "empty", input: "", wantMsg: "empty command"},
		{name: "whitespace only", input: "  \t ", wantMsg: "empty command"},
		{name: "not git", input: "svn commit", wantMsg: "not a git command"},
		{name: "unterminated quote", input: `git commit -m "oops`, wantMsg: "unterminated quote"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.input)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantMsg)
			assert.Equal(t, KindParse, KindOf(err))
		})
	}
}

func TestTokenize(t *testing.T) {
	tests := []struct {
		input string
		want  []string
	}{
		{input: `a "b c" d`, want: []string{"a", "b c", "d"}},
		{input: `a ""`, want: []string{"a", ""}},
		{input: `a\ b`, want: []string{"a b"}},
		{input: `"it's"`, want: []string{"it's"}},
		{input: `'say "hi"'`, want: []string{`say "hi"`}},
		{input: `pre"fix"post`, want: []string{"prefixpost"}},
		{input: "git\u00a0status", want: []string{"git", "status"}},
		{input: "a\u2003b\u3000c", want: []string{"a", "b", "c"}},
		{input: "\"a\u00a0b\"", want: []string{"a\u00a0b"}},
	}
	for _, tt := range tests {
		got, err := Tokenize(tt.input)
		require.NoError(t, err, tt.input)
		assert.Equal(t, tt.want, got, tt.input)
	}
}

func TestCanonical(t *testing.T) {
	same := [][2]string{
		{"git switch -c feat", "git checkout -b feat"},
		{"git switch feat", "git checkout feat"},
		{"git commit --message=wip -a", "git commit -am wip"},
		{"git commit -m wip", `git commit --message "wip"`},
		{"git add -A", "git add ."},
		{"git add --all", "git add ."},
		{"git add b.txt a.txt", "git add a.txt b.txt"},
		{"git log -n 2", "git log --max-count=2"},
		{"git log -2", "git log -n 2"},
		{"git status --short", "git status -s"},
		{"git branch -D old", "git branch --delete old"},
		{"git restore -S a.txt", "git restore --staged a.txt"},
		{"git log --oneline -n 1", "git log -n 1 --oneline"},
		{"git commit -m a --message b", "git commit -m a"},
		{"git commit --message b -m a", "git commit -m a"},
		{"git log --max-count=5 -n 2", "git log -n 2"},
	}
	for _, pair := range same {
		a, err := Parse(pair[0])
		require.NoError(t, err)
		b, err := Parse(pair[1])
		require.NoError(t, err)
		assert.Equal(t, a.Canonical(), b.Canonical(), "%q vs %q", pair[0], pair[1])
	}

	different := [][2]string{
		{"git commit -m a", "git commit -m b"},
		{"git checkout feat", "git checkout -b feat"},
		{"git add a.txt", "git add ."},
		{"git restore a.txt", "git restore --staged a.txt"},
		{"git commit -m a --message b", "git commit -m b"},
	}
	for _, pair := range different {
		a, err := Parse(pair[0])
		require.NoError(t, err)
		b, err := Parse(pair[1])
		require.NoError(t, err)
		assert.NotEqual(t, a.Canonical(), b.Canonical(), "%q vs %q", pair[0], pair[1])
	}
}

func TestCanonicalString(t *testing.T) {
	cmd, err := Parse(`git commit --message="fix bug" -a`)
	require.NoError(t, err)
	assert.Equal(t, `git commit -a -m "fix bug"`, cmd.CanonicalString())
}
