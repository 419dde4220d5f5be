package mcp

import (
	"io"
	"log"
	"sync"
)

var (
	loggerMu sync.Mutex
	logger   = log.New(io.Discard, "", 0)
)

// SetLogger routes server logs to l. Stdout carries the protocol, so the
// binary points this at a file.
func SetLogger(l *log.Logger) {
	loggerMu.Lock()
	defer loggerMu.Unlock()
	if l == nil {
		l = log.New(io.Discard, "", 0)
	}
	logger = l
}

// Log writes one formatted line to the server log.
func Log(format string, args ...any) {
	loggerMu.Lock()
	l := logger
	loggerMu.Unlock()
	l.Printf(format, args...)
}
