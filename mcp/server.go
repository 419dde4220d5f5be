package mcp

import (
	"sync"

	gomcp "github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/ByteMirror/gitcoach/lesson"
	"github.com/ByteMirror/gitcoach/session"
)

const serverInstructions = "You are connected to gitcoach, a simulated git repository used for practice. " +
	"Nothing here touches a real repository or the filesystem. " +
	"Run commands with git_exec (\"git status\", \"git add .\", \"touch file.txt\"). " +
	"Failed commands are normal results with success=false, not tool errors. " +
	"Inspect the simulated repository with repo_state and past commands with transcript. " +
	"To follow a guided lesson call lesson_list, then lesson_start, and check lesson_status after each command."

// Version is reported to MCP clients.
const Version = "0.1.0"

// GitCoachMCPServer exposes one practice session over MCP. Every tool call
// takes mu, so the session is never touched concurrently.
type GitCoachMCPServer struct {
	server  *mcpserver.MCPServer
	catalog *lesson.Catalog
	base    session.Options

	mu      sync.Mutex
	session *session.Session
}

// NewGitCoachMCPServer creates a server holding a fresh sandbox session.
// base.Lesson is ignored; lessons are picked with lesson_start.
func NewGitCoachMCPServer(catalog *lesson.Catalog, base session.Options) (*GitCoachMCPServer, error) {
	base.Lesson = nil
	s, err := session.New(base)
	if err != nil {
		return nil, err
	}

	h := &GitCoachMCPServer{
		server: mcpserver.NewMCPServer(
			"gitcoach",
			Version,
			mcpserver.WithInstructions(serverInstructions),
		),
		catalog: catalog,
		base:    base,
		session: s,
	}
	h.registerSessionTools()
	h.registerLessonTools()

	Log("server created: %d lessons", catalog.Len())
	return h, nil
}

func (h *GitCoachMCPServer) registerSessionTools() {
	gitExec := gomcp.NewTool("git_exec",
		gomcp.WithDescription(
			"Run one command line in the simulated repository, e.g. \"git commit -m 'msg'\" or "+
				"\"touch notes.txt\". Returns the output, whether it succeeded and whether it "+
				"completed the current lesson step.",
		),
		gomcp.WithString("command",
			gomcp.Required(),
			gomcp.Description("The full command line, starting with git or touch."),
		),
	)
	h.server.AddTool(gitExec, handleGitExec(h))

	repoState := gomcp.NewTool("repo_state",
		gomcp.WithDescription("Show the simulated repository: branches, heads, refs, commits and working tree file sets."),
		gomcp.WithReadOnlyHintAnnotation(true),
	)
	h.server.AddTool(repoState, handleRepoState(h))

	transcript := gomcp.NewTool("transcript",
		gomcp.WithDescription("List commands run in this session with their output, oldest first."),
		gomcp.WithReadOnlyHintAnnotation(true),
		gomcp.WithNumber("limit",
			gomcp.Description("Return only the last N entries (default: all)."),
		),
	)
	h.server.AddTool(transcript, handleTranscript(h))

	reset := gomcp.NewTool("reset",
		gomcp.WithDescription("Start over: fresh repository, empty transcript and, in a lesson, step one again."),
	)
	h.server.AddTool(reset, handleReset(h))
}

func (h *GitCoachMCPServer) registerLessonTools() {
	list := gomcp.NewTool("lesson_list",
		gomcp.WithDescription("List available lessons in their suggested order."),
		gomcp.WithReadOnlyHintAnnotation(true),
	)
	h.server.AddTool(list, handleLessonList(h))

	start := gomcp.NewTool("lesson_start",
		gomcp.WithDescription(
			"Start a lesson by id, replacing the current session. Use id \"sandbox\" for free practice.",
		),
		gomcp.WithString("id",
			gomcp.Required(),
			gomcp.Description("Lesson id from lesson_list."),
		),
	)
	h.server.AddTool(start, handleLessonStart(h))

	status := gomcp.NewTool("lesson_status",
		gomcp.WithDescription("Show the current lesson, completed steps and what to do next."),
		gomcp.WithReadOnlyHintAnnotation(true),
	)
	h.server.AddTool(status, handleLessonStatus(h))
}

// Serve starts the MCP server using stdio transport.
func (h *GitCoachMCPServer) Serve() error {
	return mcpserver.ServeStdio(h.server)
}
