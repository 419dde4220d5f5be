package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/ByteMirror/gitcoach/app"
	"github.com/ByteMirror/gitcoach/config"
	"github.com/ByteMirror/gitcoach/lesson"
	"github.com/ByteMirror/gitcoach/log"
	"github.com/ByteMirror/gitcoach/session"
)

var version = "0.1.0"

func newRootCmd() *cobra.Command {
	var (
		lessonFlag  string
		noColorFlag bool
	)
	rootCmd := &cobra.Command{
		Use:   "gitcoach",
		Short: "gitcoach teaches git in a simulated repository",
		Long: "gitcoach opens a terminal UI with guided git lessons. Every command runs\n" +
			"against an in-memory repository, so nothing on disk is touched.",
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			setColorProfile(noColorFlag)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if !isTerminal(os.Stdout) {
				return fmt.Errorf("gitcoach needs an interactive terminal; use 'gitcoach run' for scripts")
			}
			if err := log.Initialize("tui"); err != nil {
				return err
			}
			defer log.Close()

			cfg := config.LoadConfig()
			catalog, lessonsDir, err := loadCatalog(cfg)
			if err != nil {
				return err
			}

			var history *session.HistoryStore
			if cfg.HistoryEnabled {
				history, err = openHistory()
				if err != nil {
					log.WarningLog.Printf("history disabled: %v", err)
				} else {
					defer history.Close()
				}
			}

			return app.Run(cmd.Context(), app.Options{
				LessonID:   lessonFlag,
				Config:     cfg,
				Catalog:    catalog,
				LessonsDir: lessonsDir,
				History:    history,
			})
		},
	}

	rootCmd.PersistentFlags().BoolVar(&noColorFlag, "no-color", false, "Disable colors")
	rootCmd.Flags().StringVarP(&lessonFlag, "lesson", "l", "", "Start this lesson (use 'sandbox' for free practice)")

	rootCmd.AddCommand(newRunCmd(), newLessonsCmd(), newHistoryCmd(), newResetCmd(), newVersionCmd())
	return rootCmd
}

// setColorProfile drops colors when asked to or when stdout is not a terminal.
func setColorProfile(noColor bool) {
	if noColor || !isTerminal(os.Stdout) {
		lipgloss.SetColorProfile(termenv.Ascii)
	}
}

func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// outputWidth is the wrap width for transcript output, 0 when stdout is not
// a terminal.
func outputWidth() int {
	if !isTerminal(os.Stdout) {
		return 0
	}
	w, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil {
		return 0
	}
	return w
}

// loadCatalog loads the built-in lessons plus the configured lessons dir.
func loadCatalog(cfg *config.Config) (*lesson.Catalog, string, error) {
	lessonsDir, err := cfg.ResolveLessonsDir()
	if err != nil {
		log.WarningLog.Printf("lessons dir: %v", err)
		lessonsDir = ""
	}
	catalog, err := lesson.LoadCatalog(lessonsDir)
	if err != nil {
		return nil, "", err
	}
	return catalog, lessonsDir, nil
}

func openHistory() (*session.HistoryStore, error) {
	path, err := session.DefaultHistoryPath()
	if err != nil {
		return nil, err
	}
	return session.OpenHistory(path)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}
