package mcp

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	gomcp "github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ByteMirror/gitcoach/gitsim"
	"github.com/ByteMirror/gitcoach/lesson"
	"github.com/ByteMirror/gitcoach/session"
)

func newTestServer(t *testing.T) *GitCoachMCPServer {
	t.Helper()
	builtins, err := lesson.Builtin()
	require.NoError(t, err)
	now := func() time.Time { return time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC) }
	h, err := NewGitCoachMCPServer(lesson.NewCatalog(builtins), session.Options{
		Interpreter: gitsim.NewInterpreter(gitsim.WithClock(now)),
		Now:         now,
	})
	require.NoError(t, err)
	return h
}

func call(t *testing.T, handler mcpserver.ToolHandlerFunc, args map[string]any) *gomcp.CallToolResult {
	t.Helper()
	req := gomcp.CallToolRequest{}
	req.Params.Arguments = args
	result, err := handler(context.Background(), req)
	require.NoError(t, err)
	require.NotNil(t, result)
	return result
}

func resultText(t *testing.T, result *gomcp.CallToolResult) string {
	t.Helper()
	require.NotEmpty(t, result.Content)
	text, ok := result.Content[0].(gomcp.TextContent)
	require.True(t, ok, "expected text content, got %T", result.Content[0])
	return text.Text
}

func decode[T any](t *testing.T, result *gomcp.CallToolResult) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal([]byte(resultText(t, result)), &v))
	return v
}

func TestGitExec_FailureIsNotToolError(t *testing.T) {
	h := newTestServer(t)

	result := call(t, handleGitExec(h), map[string]any{"command": "git checkout nowhere"})
	assert.False(t, result.IsError)
	res := decode[execResult](t, result)
	assert.False(t, res.Success)
	assert.Equal(t, gitsim.KindPrecondition, res.Kind)
	assert.Contains(t, res.Output, "nowhere")

	result = call(t, handleGitExec(h), map[string]any{"command": "git add ."})
	res = decode[execResult](t, result)
	assert.True(t, res.Success)
	assert.Equal(t, gitsim.KindNone, res.Kind)
}

func TestGitExec_MissingCommand(t *testing.T) {
	h := newTestServer(t)
	result := call(t, handleGitExec(h), nil)
	assert.True(t, result.IsError)
	assert.Contains(t, resultText(t, result), "missing required parameter: command")
}

func TestRepoStateAndTranscript(t *testing.T) {
	h := newTestServer(t)
	for _, line := range []string{"git add .", `git commit -m "first"`, "git status"} {
		call(t, handleGitExec(h), map[string]any{"command": line})
	}

	repo := decode[gitsim.Repository](t, call(t, handleRepoState(h), nil))
	require.Len(t, repo.Commits, 1)
	assert.Equal(t, "first", repo.Commits[0].Message)
	assert.NoError(t, repo.Validate())

	state := decode[repoState](t, call(t, handleRepoState(h), nil))
	assert.Equal(t, repo.Commits[0].Hash, state.Refs["refs/heads/main"])
	assert.Equal(t, "ref: refs/heads/main", state.Refs["HEAD"])

	all := decode[[]gitsim.TranscriptEntry](t, call(t, handleTranscript(h), nil))
	assert.Len(t, all, 3)

	tail := decode[[]gitsim.TranscriptEntry](t, call(t, handleTranscript(h), map[string]any{"limit": 1.0}))
	require.Len(t, tail, 1)
	assert.Equal(t, "git status", tail[0].Command)
}

func TestTranscript_EmptyIsArray(t *testing.T) {
	h := newTestServer(t)
	assert.Equal(t, "[]", resultText(t, call(t, handleTranscript(h), nil)))
}

func TestLessonFlow(t *testing.T) {
	h := newTestServer(t)

	list := decode[[]lessonSummary](t, call(t, handleLessonList(h), nil))
	require.NotEmpty(t, list)
	assert.Equal(t, "first-commit", list[0].ID)

	status := decode[lessonStatus](t, call(t, handleLessonStart(h), map[string]any{"id": "first-commit"}))
	assert.Equal(t, "first-commit", status.LessonID)
	assert.Equal(t, 0, status.Done)
	assert.NotEmpty(t, status.Next)

	res := decode[execResult](t, call(t, handleGitExec(h), map[string]any{"command": "git status"}))
	assert.True(t, res.StepCompleted)

	status = decode[lessonStatus](t, call(t, handleLessonStatus(h), nil))
	assert.Equal(t, 1, status.Done)
	assert.False(t, status.Complete)

	for _, line := range []string{"git add README.md", `git commit -m "hello"`, "git log"} {
		res = decode[execResult](t, call(t, handleGitExec(h), map[string]any{"command": line}))
		require.True(t, res.Success, res.Output)
	}
	assert.True(t, res.LessonDone)
	status = decode[lessonStatus](t, call(t, handleLessonStatus(h), nil))
	assert.True(t, status.Complete)
	assert.Equal(t, status.Total, status.Done)
}

func TestLessonStart_Errors(t *testing.T) {
	h := newTestServer(t)

	result := call(t, handleLessonStart(h), map[string]any{"id": "no-such-lesson"})
	assert.True(t, result.IsError)
	assert.Contains(t, resultText(t, result), "unknown lesson")
	assert.Contains(t, resultText(t, result), "lesson_list")

	result = call(t, handleLessonStart(h), nil)
	assert.True(t, result.IsError)

	status := decode[lessonStatus](t, call(t, handleLessonStart(h), map[string]any{"id": sandboxID}))
	assert.Equal(t, sandboxID, status.LessonID)
}

func TestReset(t *testing.T) {
	h := newTestServer(t)
	call(t, handleGitExec(h), map[string]any{"command": "git add ."})

	result := call(t, handleReset(h), nil)
	assert.False(t, result.IsError)
	assert.Equal(t, "Session reset.", resultText(t, result))

	repo := decode[gitsim.Repository](t, call(t, handleRepoState(h), nil))
	assert.Empty(t, repo.Staged)
	assert.Equal(t, session.DefaultSandbox, repo.Untracked)
}

func TestGitExec_Concurrent(t *testing.T) {
	h := newTestServer(t)
	handler := handleGitExec(h)
	errs := make(chan error, 8)
	for i := 0; i < 8; i++ {
		go func() {
			req := gomcp.CallToolRequest{}
			req.Params.Arguments = map[string]any{"command": "git status"}
			_, err := handler(context.Background(), req)
			errs <- err
		}()
	}
	for i := 0; i < 8; i++ {
		require.NoError(t, <-errs)
	}
	entries := decode[[]gitsim.TranscriptEntry](t, call(t, handleTranscript(h), nil))
	assert.Len(t, entries, 8)
}
