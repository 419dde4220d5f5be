package lesson

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ByteMirror/gitcoach/gitsim"
)

func TestStepMatches(t *testing.T) {
	tests := []struct {
		name    string
		step    Step
		command string
		want    bool
	}{
		{"exact", Step{Accept: []string{"git status"}}, "git status", true},
		{"extra whitespace", Step{Accept: []string{"git status"}}, "  git   status ", true},
		{"one of several", Step{Accept: []string{"git add README.md", "git add ."}}, "git add .", true},
		{"alias switch", Step{Accept: []string{"git checkout -b feat"}}, "git switch -c feat", true},
		{"flag order", Step{Accept: []string{"git log --oneline -n 3"}}, "git log -3 --oneline", true},
		{"add -A equals add .", Step{Accept: []string{"git add ."}}, "git add -A", true},
		{"long message flag", Step{Accept: []string{`git commit -m "msg"`}}, "git commit --message=msg", true},
		{"wildcard message", Step{Accept: []string{`git commit -m "*"`}}, `git commit -m "anything at all"`, true},
		{"wildcard needs a token", Step{Accept: []string{`git commit -m "*"`}}, `git commit -am "x"`, false},
		{"different branch", Step{Accept: []string{"git checkout main"}}, "git checkout dev", false},
		{"different command", Step{Accept: []string{"git status"}}, "git log", false},
		{"unparsable input", Step{Accept: []string{"git status"}}, `git status "`, false},
		{"strict rejects alias", Step{Accept: []string{"git checkout -b feat"}, Strict: true}, "git switch -c feat", false},
		{"strict allows quoting differences", Step{Accept: []string{`git commit -m "a b"`}, Strict: true}, `git commit -m 'a b'`, true},
		{"strict wildcard", Step{Accept: []string{"git branch *"}, Strict: true}, "git branch topic", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.step.Matches(tt.command))
		})
	}
}

// A message given twice is graded on the one the commit actually uses.
func TestStepMatchesRepeatedMessageFlag(t *testing.T) {
	usesB := Step{Accept: []string{`git commit -m "b"`}}
	usesA := Step{Accept: []string{`git commit -m "a"`}}
	for range 100 {
		assert.False(t, usesB.Matches("git commit -m a --message b"))
		assert.True(t, usesA.Matches("git commit -m a --message b"))
	}
}

func testLesson() Lesson {
	return Lesson{
		ID: "t",
		Steps: []Step{
			{Accept: []string{"git add ."}},
			{Accept: []string{`git commit -m "*"`}},
		},
	}
}

func TestDriver(t *testing.T) {
	d := NewDriver(testLesson())
	done, total := d.Progress()
	assert.Equal(t, 0, done)
	assert.Equal(t, 2, total)

	// Failed entries never advance, even when the command matches.
	assert.False(t, d.Observe(gitsim.TranscriptEntry{Command: "git add .", Success: false}))
	// Out-of-order commands do not advance.
	assert.False(t, d.Observe(gitsim.TranscriptEntry{Command: `git commit -m "x"`, Success: true}))

	assert.True(t, d.Observe(gitsim.TranscriptEntry{Command: "git add .", Success: true}))
	cur, ok := d.Current()
	require.True(t, ok)
	assert.Equal(t, []string{`git commit -m "*"`}, cur.Accept)

	// One entry advances at most one step.
	assert.False(t, d.Observe(gitsim.TranscriptEntry{Command: "git add .", Success: true}))
	assert.True(t, d.Observe(gitsim.TranscriptEntry{Command: `git commit -m "x"`, Success: true}))
	assert.True(t, d.Done())
	_, ok = d.Current()
	assert.False(t, ok)
	assert.False(t, d.Observe(gitsim.TranscriptEntry{Command: `git commit -m "y"`, Success: true}))

	d.Reset()
	assert.False(t, d.Done())
	assert.Equal(t, 0, d.Index())
}

func TestDriverSolution(t *testing.T) {
	d := NewDriver(Lesson{
		ID: "t",
		Steps: []Step{
			{Accept: []string{"git checkout -b feature/login", "git switch -c feature/login"}},
			{Accept: []string{`git commit -m "*"`}},
			{Accept: []string{`git commit -m "two words"`}},
		},
	})
	assert.Equal(t, []string{
		"git checkout -b feature/login",
		`git commit -m "demo"`,
		`git commit -m "two words"`,
	}, d.Solution())

	d.Observe(gitsim.TranscriptEntry{Command: "git switch -c feature/login", Success: true})
	assert.Len(t, d.Solution(), 2)
}
