package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/ByteMirror/gitcoach/app"
	"github.com/ByteMirror/gitcoach/config"
	"github.com/ByteMirror/gitcoach/gitsim"
	"github.com/ByteMirror/gitcoach/session"
	"github.com/ByteMirror/gitcoach/ui"
)

var errScriptFailed = errors.New("one or more commands failed")

type runOptions struct {
	lessonID string
	strict   bool
	demo     bool
}

func newRunCmd() *cobra.Command {
	var opts runOptions
	cmd := &cobra.Command{
		Use:   "run [command...]",
		Short: "Run git commands non-interactively and print the transcript",
		Long: "Each argument is one input line. With no arguments, lines are read from\n" +
			"stdin; blank lines and lines starting with # are skipped.",
		Example: "  gitcoach run 'git add .' 'git commit -m \"first\"' 'git log --oneline'\n" +
			"  gitcoach run --lesson first-commit --demo",
		RunE: func(cmd *cobra.Command, args []string) error {
			lines := args
			if len(lines) == 0 && !opts.demo {
				var err error
				if lines, err = readScript(cmd.InOrStdin()); err != nil {
					return err
				}
			}
			return runScript(cmd.Context(), cmd.OutOrStdout(), opts, lines)
		},
	}
	cmd.Flags().StringVarP(&opts.lessonID, "lesson", "l", "", "Grade the commands against this lesson")
	cmd.Flags().BoolVar(&opts.strict, "strict", false, "Exit with status 1 if any command fails")
	cmd.Flags().BoolVar(&opts.demo, "demo", false, "Play the lesson solution (or the sandbox tour) instead of reading commands")
	return cmd
}

func readScript(r io.Reader) ([]string, error) {
	var lines []string
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		lines = append(lines, line)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read script: %w", err)
	}
	return lines, nil
}

func runScript(ctx context.Context, w io.Writer, opts runOptions, lines []string) error {
	cfg := config.LoadConfig()
	catalog, _, err := loadCatalog(cfg)
	if err != nil {
		return err
	}

	sessOpts := session.Options{
		DefaultBranch: cfg.DefaultBranch,
		Interpreter:   gitsim.NewInterpreter(),
	}
	if opts.lessonID != "" {
		l, err := catalog.Get(opts.lessonID)
		if err != nil {
			return err
		}
		sessOpts.Lesson = &l
	}
	s, err := session.New(sessOpts)
	if err != nil {
		return err
	}

	width := outputWidth()
	show := func(res session.Result) {
		fmt.Fprintln(w, ui.RenderEntry(res.Entry, width))
		if res.StepCompleted {
			done, total := s.Progress()
			fmt.Fprintf(w, "✓ step %d/%d\n", done, total)
		}
	}

	if opts.demo {
		var delay time.Duration
		if width > 0 {
			delay = time.Duration(cfg.PlaybackDelayMs) * time.Millisecond
		}
		if err := s.Demo().Play(ctx, delay, show); err != nil {
			return err
		}
	} else {
		for _, line := range lines {
			if err := ctx.Err(); err != nil {
				return err
			}
			show(s.Run(line))
		}
	}

	failures := s.Transcript().Failures()
	if l, ok := s.Lesson(); ok {
		done, total := s.Progress()
		status := "incomplete"
		if s.Done() {
			status = "complete"
		}
		fmt.Fprintf(w, "\nlesson %s: %d/%d steps, %s\n", l.ID, done, total, status)
	} else {
		fmt.Fprintf(w, "\n%d commands, %d failed\n", len(s.Entries()), failures)
	}

	if opts.strict && failures > 0 {
		return errScriptFailed
	}
	return nil
}

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.NormalBorder()).
		BorderRow(false).
		Headers(headers...)
}

func newLessonsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "lessons",
		Short: "List the available lessons and your progress",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			catalog, _, err := loadCatalog(config.LoadConfig())
			if err != nil {
				return err
			}
			state, err := config.LoadState()
			if err != nil {
				return err
			}

			t := newTable("ID", "TITLE", "STEPS", "PROGRESS")
			for _, l := range catalog.List() {
				progress := "-"
				if p, ok := state.Progress[l.ID]; ok {
					switch {
					case p.Completed:
						progress = "done"
					case p.Step > 0:
						progress = fmt.Sprintf("%d/%d", p.Step, len(l.Steps))
					}
				}
				if l.ID == state.CurrentLesson {
					progress += " (current)"
				}
				t.Row(l.ID, l.Title, strconv.Itoa(len(l.Steps)), progress)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, t.String())
			fmt.Fprintf(out, "%d of %d complete\n", state.CompletedCount(), catalog.Len())
			return nil
		},
	}
}

func newHistoryCmd() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "history [session-id]",
		Short: "Show recent practice sessions, or the transcript of one",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openHistory()
			if err != nil {
				return err
			}
			defer store.Close()

			out := cmd.OutOrStdout()
			if len(args) == 1 {
				records, err := store.Recent(cmd.Context(), 1000)
				if err != nil {
					return err
				}
				for _, r := range records {
					if strings.HasPrefix(r.ID, args[0]) {
						fmt.Fprintln(out, ui.PlainTranscript(r.Transcript))
						return nil
					}
				}
				return fmt.Errorf("no session matching %q", args[0])
			}

			records, err := store.Recent(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if len(records) == 0 {
				fmt.Fprintln(out, "No sessions recorded yet.")
				return nil
			}
			t := newTable("SESSION", "ENDED", "LESSON", "COMMANDS", "FAILED", "DONE")
			for _, r := range records {
				lessonID := r.LessonID
				if lessonID == "" {
					lessonID = "sandbox"
				}
				done := ""
				if r.Completed {
					done = "✓"
				}
				t.Row(r.ID[:min(8, len(r.ID))], r.EndedAt.Local().Format(time.DateTime), lessonID,
					strconv.Itoa(r.Commands), strconv.Itoa(r.Failures), done)
			}
			fmt.Fprintln(out, t.String())
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 10, "Number of sessions to show")
	return cmd
}

func newResetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reset [lesson-id]",
		Short: "Forget saved progress for one lesson, or for everything",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			lessonID := ""
			if len(args) == 1 {
				lessonID = args[0]
			}
			if err := app.ClearSaved(lessonID); err != nil {
				return err
			}
			if lessonID == "" {
				fmt.Fprintln(cmd.OutOrStdout(), "Cleared all progress.")
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "Cleared progress for %s.\n", lessonID)
			}
			return nil
		},
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version number of gitcoach",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "gitcoach version %s\n", version)
		},
	}
}
