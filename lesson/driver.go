package lesson

import (
	"strings"

	"github.com/ByteMirror/gitcoach/gitsim"
)

// Driver grades a transcript against a lesson. It holds no repository
// state; it only watches entries go by.
type Driver struct {
	lesson Lesson
	step   int
}

func NewDriver(l Lesson) *Driver {
	return &Driver{lesson: l}
}

// Observe advances at most one step when entry succeeded and matches the
// current step. It reports whether the step advanced.
func (d *Driver) Observe(entry gitsim.TranscriptEntry) bool {
	if !entry.Success || d.Done() {
		return false
	}
	if !d.lesson.Steps[d.step].Matches(entry.Command) {
		return false
	}
	d.step++
	return true
}

// Done reports whether every step is complete.
func (d *Driver) Done() bool {
	return d.step >= len(d.lesson.Steps)
}

// Current returns the step waiting to be completed.
func (d *Driver) Current() (Step, bool) {
	if d.Done() {
		return Step{}, false
	}
	return d.lesson.Steps[d.step], true
}

// Index is the zero-based index of the current step.
func (d *Driver) Index() int {
	return d.step
}

// Progress returns completed and total step counts.
func (d *Driver) Progress() (done, total int) {
	return d.step, len(d.lesson.Steps)
}

// Seek jumps to step, clamped to the lesson length. Used when restoring a
// saved session whose repository already reflects the earlier steps.
func (d *Driver) Seek(step int) {
	d.step = max(0, min(step, len(d.lesson.Steps)))
}

// Reset rewinds to the first step.
func (d *Driver) Reset() {
	d.step = 0
}

// Solution returns the first accepted command of each remaining step with
// wildcards filled in, for demo playback.
func (d *Driver) Solution() []string {
	var lines []string
	for _, s := range d.lesson.Steps[min(d.step, len(d.lesson.Steps)):] {
		if len(s.Accept) == 0 {
			continue
		}
		lines = append(lines, fillWildcards(s.Accept[0]))
	}
	return lines
}

func fillWildcards(accept string) string {
	toks, err := gitsim.Tokenize(accept)
	if err != nil {
		return accept
	}
	out := make([]string, len(toks))
	for i, t := range toks {
		switch {
		case t == Wildcard:
			out[i] = `"demo"`
		case t == "" || strings.ContainsAny(t, " \t"):
			out[i] = `"` + t + `"`
		default:
			out[i] = t
		}
	}
	return strings.Join(out, " ")
}
