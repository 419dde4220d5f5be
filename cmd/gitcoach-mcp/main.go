package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/ByteMirror/gitcoach/config"
	"github.com/ByteMirror/gitcoach/gitsim"
	"github.com/ByteMirror/gitcoach/lesson"
	coachlog "github.com/ByteMirror/gitcoach/log"
	coachmcp "github.com/ByteMirror/gitcoach/mcp"
	"github.com/ByteMirror/gitcoach/session"
)

func main() {
	configDir, err := config.GetConfigDir()
	if err != nil {
		fmt.Fprintf(os.Stderr, "gitcoach-mcp: %v\n", err)
		os.Exit(1)
	}

	// Stdout is the MCP protocol; logs go to a file.
	if err := os.MkdirAll(configDir, 0700); err == nil {
		logPath := filepath.Join(configDir, "mcp-server.log")
		if f, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600); err == nil {
			coachmcp.SetLogger(log.New(f, "[mcp] ", log.Ldate|log.Ltime|log.Lshortfile))
			defer f.Close()
		}
	}
	if err := coachlog.Initialize("mcp"); err == nil {
		defer coachlog.Close()
	}

	cfg := config.LoadConfig()
	lessonsDir, err := cfg.ResolveLessonsDir()
	if err != nil {
		coachmcp.Log("lessons dir: %v", err)
	}
	catalog, err := lesson.LoadCatalog(lessonsDir)
	if err != nil {
		coachmcp.Log("fatal: load lessons: %v", err)
		fmt.Fprintf(os.Stderr, "gitcoach-mcp: %v\n", err)
		os.Exit(1)
	}
	if lessonsDir != "" {
		stop, err := lesson.Watch(catalog, lessonsDir, func() {
			coachmcp.Log("lessons reloaded: %d available", catalog.Len())
		})
		if err != nil {
			coachmcp.Log("lesson watcher failed: %v", err)
		} else {
			defer stop()
		}
	}

	srv, err := coachmcp.NewGitCoachMCPServer(catalog, session.Options{
		DefaultBranch: cfg.DefaultBranch,
		Interpreter:   gitsim.NewInterpreter(),
	})
	if err != nil {
		coachmcp.Log("fatal: %v", err)
		fmt.Fprintf(os.Stderr, "gitcoach-mcp: %v\n", err)
		os.Exit(1)
	}

	coachmcp.Log("starting: configDir=%s lessonsDir=%s", configDir, lessonsDir)
	if err := srv.Serve(); err != nil {
		coachmcp.Log("fatal: %v", err)
		fmt.Fprintf(os.Stderr, "gitcoach-mcp: %v\n", err)
		os.Exit(1)
	}
	coachmcp.Log("shutdown cleanly")
}
