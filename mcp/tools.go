package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	gomcp "github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/samber/lo"

	"github.com/ByteMirror/gitcoach/gitsim"
	"github.com/ByteMirror/gitcoach/lesson"
	"github.com/ByteMirror/gitcoach/session"
)

// sandboxID starts a lesson-free session in lesson_start.
const sandboxID = "sandbox"

type execResult struct {
	Command       string           `json:"command"`
	Output        string           `json:"output"`
	Success       bool             `json:"success"`
	Kind          gitsim.ErrorKind `json:"kind,omitempty"`
	StepCompleted bool             `json:"step_completed,omitempty"`
	LessonDone    bool             `json:"lesson_done,omitempty"`
}

type lessonSummary struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	Summary string `json:"summary,omitempty"`
	Steps   int    `json:"steps"`
}

type lessonStatus struct {
	LessonID string `json:"lesson_id"`
	Title    string `json:"title,omitempty"`
	Done     int    `json:"done"`
	Total    int    `json:"total"`
	Complete bool   `json:"complete"`
	Next     string `json:"next,omitempty"`
	Hint     string `json:"hint,omitempty"`
}

func parseOptionalIntArg(req gomcp.CallToolRequest, key string, fallback int) int {
	if args := req.GetArguments(); args != nil {
		if v, ok := args[key].(float64); ok {
			return int(v)
		}
	}
	return fallback
}

func missingParamErr(param, example string) *gomcp.CallToolResult {
	msg := "missing required parameter: " + param
	if strings.TrimSpace(example) != "" {
		msg += ". Example: " + example
	}
	return gomcp.NewToolResultError(msg)
}

func toolErrWithHint(prefix string, err error, hint string) *gomcp.CallToolResult {
	msg := prefix
	if err != nil {
		msg += ": " + err.Error()
	}
	if strings.TrimSpace(hint) != "" {
		msg += " Hint: " + hint
	}
	return gomcp.NewToolResultError(msg)
}

func jsonResult(v any) (*gomcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, err
	}
	return gomcp.NewToolResultText(string(data)), nil
}

// handleGitExec runs one line. Interpreter failures are ordinary results.
func handleGitExec(h *GitCoachMCPServer) mcpserver.ToolHandlerFunc {
	return func(ctx context.Context, req gomcp.CallToolRequest) (*gomcp.CallToolResult, error) {
		command := strings.TrimSpace(req.GetString("command", ""))
		Log("tool call: git_exec %q", command)
		if command == "" {
			return missingParamErr("command", `git_exec(command="git status")`), nil
		}

		h.mu.Lock()
		res := h.session.Run(command)
		h.mu.Unlock()

		return jsonResult(execResult{
			Command:       res.Entry.Command,
			Output:        res.Entry.Output,
			Success:       res.Entry.Success,
			Kind:          res.Entry.Kind,
			StepCompleted: res.StepCompleted,
			LessonDone:    res.LessonDone,
		})
	}
}

// repoState is the repository plus its refs the way git names them
// ("refs/heads/main", "HEAD").
type repoState struct {
	gitsim.Repository
	Refs map[string]string `json:"refs"`
}

func handleRepoState(h *GitCoachMCPServer) mcpserver.ToolHandlerFunc {
	return func(ctx context.Context, req gomcp.CallToolRequest) (*gomcp.CallToolResult, error) {
		Log("tool call: repo_state")
		h.mu.Lock()
		repo := h.session.Repository()
		h.mu.Unlock()
		return jsonResult(repoState{Repository: repo, Refs: repo.Refs()})
	}
}

func handleTranscript(h *GitCoachMCPServer) mcpserver.ToolHandlerFunc {
	return func(ctx context.Context, req gomcp.CallToolRequest) (*gomcp.CallToolResult, error) {
		limit := parseOptionalIntArg(req, "limit", 0)
		Log("tool call: transcript limit=%d", limit)

		h.mu.Lock()
		entries := h.session.Entries()
		if limit > 0 {
			entries = h.session.Transcript().Tail(limit)
		}
		h.mu.Unlock()

		if entries == nil {
			entries = []gitsim.TranscriptEntry{}
		}
		return jsonResult(entries)
	}
}

func handleReset(h *GitCoachMCPServer) mcpserver.ToolHandlerFunc {
	return func(ctx context.Context, req gomcp.CallToolRequest) (*gomcp.CallToolResult, error) {
		Log("tool call: reset")
		h.mu.Lock()
		err := h.session.Reset()
		h.mu.Unlock()
		if err != nil {
			Log("reset error: %v", err)
			return toolErrWithHint("failed to reset session", err, ""), nil
		}
		return gomcp.NewToolResultText("Session reset."), nil
	}
}

func handleLessonList(h *GitCoachMCPServer) mcpserver.ToolHandlerFunc {
	return func(ctx context.Context, req gomcp.CallToolRequest) (*gomcp.CallToolResult, error) {
		Log("tool call: lesson_list")
		out := lo.Map(h.catalog.List(), func(l lesson.Lesson, _ int) lessonSummary {
			return lessonSummary{ID: l.ID, Title: l.Title, Summary: l.Summary, Steps: len(l.Steps)}
		})
		return jsonResult(out)
	}
}

func handleLessonStart(h *GitCoachMCPServer) mcpserver.ToolHandlerFunc {
	return func(ctx context.Context, req gomcp.CallToolRequest) (*gomcp.CallToolResult, error) {
		id := strings.TrimSpace(req.GetString("id", ""))
		Log("tool call: lesson_start %q", id)
		if id == "" {
			return missingParamErr("id", `lesson_start(id="first-commit")`), nil
		}

		opts := h.base
		if id != sandboxID {
			l, err := h.catalog.Get(id)
			if errors.Is(err, lesson.ErrLessonNotFound) {
				return toolErrWithHint("unknown lesson", err, "Call lesson_list() for valid ids."), nil
			}
			if err != nil {
				return toolErrWithHint("failed to load lesson", err, ""), nil
			}
			opts.Lesson = &l
		}

		s, err := session.New(opts)
		if err != nil {
			Log("lesson_start error: %v", err)
			return toolErrWithHint("failed to start lesson", err, ""), nil
		}
		h.mu.Lock()
		h.session = s
		status := statusOf(s)
		h.mu.Unlock()
		return jsonResult(status)
	}
}

func handleLessonStatus(h *GitCoachMCPServer) mcpserver.ToolHandlerFunc {
	return func(ctx context.Context, req gomcp.CallToolRequest) (*gomcp.CallToolResult, error) {
		Log("tool call: lesson_status")
		h.mu.Lock()
		status := statusOf(h.session)
		h.mu.Unlock()
		return jsonResult(status)
	}
}

func statusOf(s *session.Session) lessonStatus {
	l, ok := s.Lesson()
	if !ok {
		return lessonStatus{LessonID: sandboxID, Title: "Sandbox"}
	}
	done, total := s.Progress()
	st := lessonStatus{
		LessonID: l.ID,
		Title:    l.Title,
		Done:     done,
		Total:    total,
		Complete: s.Done(),
	}
	if step, ok := s.CurrentStep(); ok {
		st.Next = step.Prompt
		st.Hint = step.Hint
	}
	return st
}
