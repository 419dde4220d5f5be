package session

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ByteMirror/gitcoach/gitsim"
	"github.com/ByteMirror/gitcoach/lesson"
)

var testNow = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

func testOptions(l *lesson.Lesson) Options {
	now := func() time.Time { return testNow }
	return Options{
		Lesson:      l,
		Interpreter: gitsim.NewInterpreter(gitsim.WithClock(now)),
		Now:         now,
	}
}

func stagingLesson() *lesson.Lesson {
	return &lesson.Lesson{
		ID:    "staging",
		Title: "Staging",
		Setup: lesson.Setup{
			Commits: []lesson.SetupCommit{{Message: "Initial commit", Files: []string{"README.md"}}},
		},
		Steps: []lesson.Step{
			{Accept: []string{"git add app.go", "git add ."}, Touch: []string{"app.go"}},
			{Accept: []string{`git commit -m "*"`}},
		},
	}
}

func TestNew_Sandbox(t *testing.T) {
	s, err := New(testOptions(nil))
	require.NoError(t, err)

	repo := s.Repository()
	assert.Equal(t, DefaultSandbox, repo.Untracked)
	assert.Empty(t, repo.Commits)
	assert.NotEmpty(t, s.ID)
	assert.Equal(t, testNow, s.StartedAt)
	assert.Equal(t, "", s.LessonID())
	_, ok := s.CurrentStep()
	assert.False(t, ok)
	assert.False(t, s.Done())
}

func TestNew_DefaultBranch(t *testing.T) {
	opts := testOptions(nil)
	opts.DefaultBranch = "trunk"
	s, err := New(opts)
	require.NoError(t, err)
	assert.Equal(t, "trunk", s.Repository().CurrentBranch)
}

func TestRun_GradesLesson(t *testing.T) {
	s, err := New(testOptions(stagingLesson()))
	require.NoError(t, err)

	// Setup commit replayed, and the first step's file is waiting.
	repo := s.Repository()
	require.Len(t, repo.Commits, 1)
	assert.Equal(t, []string{"app.go"}, repo.Untracked)

	res := s.Run("git commit -m early")
	assert.False(t, res.Entry.Success)
	assert.False(t, res.StepCompleted)

	res = s.Run("git add -A")
	assert.True(t, res.Entry.Success)
	assert.True(t, res.StepCompleted)
	assert.False(t, res.LessonDone)

	res = s.Run(`git commit -m "Add app"`)
	assert.True(t, res.StepCompleted)
	assert.True(t, res.LessonDone)
	assert.True(t, s.Done())

	done, total := s.Progress()
	assert.Equal(t, 2, done)
	assert.Equal(t, 2, total)
	assert.Len(t, s.Entries(), 3)
	assert.Equal(t, 1, s.Transcript().Failures())
}

func TestRun_FailureLeavesRepositoryUnchanged(t *testing.T) {
	s, err := New(testOptions(nil))
	require.NoError(t, err)
	before := s.Repository()

	res := s.Run("git checkout nowhere")

	assert.False(t, res.Entry.Success)
	assert.Equal(t, gitsim.KindPrecondition, res.Entry.Kind)
	assert.Equal(t, before, s.Repository())
}

func TestRun_Touch(t *testing.T) {
	s, err := New(testOptions(nil))
	require.NoError(t, err)

	res := s.Run("touch notes.txt README.md")
	assert.True(t, res.Entry.Success)
	assert.Equal(t, []string{"README.md", "main.go", "notes.txt"}, s.Repository().Untracked)

	res = s.Run("touch")
	assert.False(t, res.Entry.Success)
	assert.Equal(t, gitsim.KindUsage, res.Entry.Kind)
}

func TestReset(t *testing.T) {
	s, err := New(testOptions(stagingLesson()))
	require.NoError(t, err)
	firstID := s.ID
	s.Run("git add .")
	s.Run("git branch extra")

	require.NoError(t, s.Reset())

	assert.NotEqual(t, firstID, s.ID)
	assert.Empty(t, s.Entries())
	assert.Equal(t, []string{"main"}, s.Repository().Branches)
	assert.Equal(t, []string{"app.go"}, s.Repository().Untracked)
	done, _ := s.Progress()
	assert.Equal(t, 0, done)
}

func TestNew_BadSetup(t *testing.T) {
	l := &lesson.Lesson{ID: "broken", Setup: lesson.Setup{Checkout: "ghost"}, Steps: []lesson.Step{{Accept: []string{"git status"}}}}
	_, err := New(testOptions(l))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broken")
}

func TestSnapshotRoundTrip(t *testing.T) {
	l := stagingLesson()
	s, err := New(testOptions(l))
	require.NoError(t, err)
	s.Run("git add app.go")
	s.Run("git status")

	path := filepath.Join(t.TempDir(), "session.json")
	require.NoError(t, s.SaveSnapshot(path))

	data, err := LoadSnapshot(path)
	require.NoError(t, err)
	assert.Equal(t, "staging", data.LessonID)
	assert.Equal(t, 1, data.Step)

	restored, err := FromData(data, testOptions(l))
	require.NoError(t, err)
	assert.Equal(t, s.ID, restored.ID)
	assert.Equal(t, s.Repository(), restored.Repository())
	assert.Len(t, restored.Entries(), 2)
	step, ok := restored.CurrentStep()
	require.True(t, ok)
	assert.Equal(t, []string{`git commit -m "*"`}, step.Accept)

	res := restored.Run(`git commit -m "done"`)
	assert.True(t, res.LessonDone)
}

func TestLoadSnapshot_Missing(t *testing.T) {
	_, err := LoadSnapshot(filepath.Join(t.TempDir(), "none.json"))
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestFromData_Rejects(t *testing.T) {
	s, err := New(testOptions(nil))
	require.NoError(t, err)

	t.Run("wrong lesson", func(t *testing.T) {
		_, err := FromData(s.ToData(), testOptions(stagingLesson()))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "lesson")
	})

	t.Run("broken invariants", func(t *testing.T) {
		data := s.ToData()
		data.Repository.CurrentBranch = "ghost"
		_, err := FromData(data, testOptions(nil))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid session repository")
	})

	t.Run("overlapping file sets", func(t *testing.T) {
		data := s.ToData()
		data.Repository.Staged = []string{"README.md"}
		_, err := FromData(data, testOptions(nil))
		require.Error(t, err)
	})
}

func TestPlayback_Next(t *testing.T) {
	s, err := New(testOptions(nil))
	require.NoError(t, err)
	p := NewPlayback(s, []string{"git add .", "git status"})

	line, ok := p.Peek()
	require.True(t, ok)
	assert.Equal(t, "git add .", line)

	res, err := p.Next()
	require.NoError(t, err)
	assert.True(t, res.Entry.Success)
	assert.Equal(t, 1, p.Remaining())

	_, err = p.Next()
	require.NoError(t, err)
	_, err = p.Next()
	assert.ErrorIs(t, err, ErrPlaybackDone)
	_, ok = p.Peek()
	assert.False(t, ok)
}

func TestPlayback_SandboxDemoSucceeds(t *testing.T) {
	s, err := New(testOptions(nil))
	require.NoError(t, err)

	var results []Result
	require.NoError(t, s.Demo().Play(context.Background(), 0, func(r Result) {
		results = append(results, r)
	}))

	require.Len(t, results, len(SandboxDemo))
	for _, r := range results {
		assert.True(t, r.Entry.Success, "%s: %s", r.Entry.Command, r.Entry.Output)
	}
	repo := s.Repository()
	assert.Len(t, repo.Commits, 3)
	assert.True(t, repo.Commits[2].IsMerge())
}

func TestPlayback_LessonDemoCompletesLesson(t *testing.T) {
	s, err := New(testOptions(stagingLesson()))
	require.NoError(t, err)

	require.NoError(t, s.Demo().Play(context.Background(), time.Millisecond, nil))
	assert.True(t, s.Done())
}

func TestPlayback_Cancel(t *testing.T) {
	s, err := New(testOptions(nil))
	require.NoError(t, err)
	p := s.Demo()

	ctx, cancel := context.WithCancel(context.Background())
	steps := 0
	err = p.Play(ctx, time.Hour, func(Result) {
		steps++
		cancel()
	})

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, steps)
	assert.Equal(t, len(SandboxDemo)-1, p.Remaining())
}

func TestHistoryStore(t *testing.T) {
	store, err := OpenHistory(filepath.Join(t.TempDir(), "sub", "history.db"))
	require.NoError(t, err)
	defer store.Close()
	ctx := context.Background()

	empty, err := New(testOptions(nil))
	require.NoError(t, err)
	require.NoError(t, store.Record(ctx, empty, testNow))

	first, err := New(testOptions(stagingLesson()))
	require.NoError(t, err)
	first.Run("git add .")
	first.Run("git push")
	require.NoError(t, store.Record(ctx, first, testNow.Add(time.Minute)))

	second, err := New(testOptions(nil))
	require.NoError(t, err)
	second.Run("git status")
	require.NoError(t, store.Record(ctx, second, testNow.Add(2*time.Minute)))

	// Recording again updates in place.
	first.Run(`git commit -m "x"`)
	require.NoError(t, store.Record(ctx, first, testNow.Add(3*time.Minute)))

	records, err := store.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, records, 2, "sessions without commands are not recorded")

	assert.Equal(t, first.ID, records[0].ID)
	assert.Equal(t, "staging", records[0].LessonID)
	assert.Equal(t, 3, records[0].Commands)
	assert.Equal(t, 1, records[0].Failures)
	assert.True(t, records[0].Completed)
	assert.True(t, records[0].EndedAt.Equal(testNow.Add(3*time.Minute)))
	assert.True(t, records[0].StartedAt.Equal(testNow))
	assert.Len(t, records[0].Transcript, 3)

	assert.Equal(t, second.ID, records[1].ID)
	assert.False(t, records[1].Completed)

	limited, err := store.Recent(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}
