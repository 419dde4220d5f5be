package log

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"
)

var (
	WarningLog = log.New(io.Discard, "", 0)
	InfoLog    = log.New(io.Discard, "", 0)
	ErrorLog   = log.New(io.Discard, "", 0)
)

// FileName is where Initialize writes logs. The TUI owns the terminal, so
// nothing is ever logged to stdout or stderr while it runs.
var FileName = filepath.Join(os.TempDir(), "gitcoach.log")

var (
	globalLogFile *os.File
	mu            sync.Mutex
)

// Initialize should be called once at the beginning of the program to set up logging.
// defer Close() after calling this function. component tags every line so the
// TUI and the MCP server can share one file.
func Initialize(component string) error {
	mu.Lock()
	defer mu.Unlock()

	f, err := os.OpenFile(FileName, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("could not open log file %s: %w", FileName, err)
	}

	prefix := ""
	if component != "" {
		prefix = "[" + component + "] "
	}
	flags := log.Ldate | log.Ltime | log.Lshortfile
	InfoLog = log.New(f, prefix+"INFO:", flags)
	WarningLog = log.New(f, prefix+"WARNING:", flags)
	ErrorLog = log.New(f, prefix+"ERROR:", flags)

	globalLogFile = f
	return nil
}

// Close flushes the log file. Loggers fall back to discarding output.
func Close() {
	mu.Lock()
	defer mu.Unlock()
	if globalLogFile == nil {
		return
	}
	_ = globalLogFile.Close()
	globalLogFile = nil
	InfoLog.SetOutput(io.Discard)
	WarningLog.SetOutput(io.Discard)
	ErrorLog.SetOutput(io.Discard)
}

// Every is used to log at most once every timeout duration.
type Every struct {
	timeout time.Duration
	timer   *time.Timer
}

func NewEvery(timeout time.Duration) *Every {
	return &Every{timeout: timeout}
}

// ShouldLog returns true if the timeout has passed since the last log.
func (e *Every) ShouldLog() bool {
	if e.timer == nil {
		e.timer = time.NewTimer(e.timeout)
		return true
	}

	select {
	case <-e.timer.C:
		e.timer.Reset(e.timeout)
		return true
	default:
		return false
	}
}
