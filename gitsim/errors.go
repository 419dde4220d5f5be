package gitsim

import (
	"errors"
	"fmt"
)

// ErrorKind classifies why a line could not be executed.
type ErrorKind int

const (
	// KindNone marks a successful entry.
	KindNone ErrorKind = iota
	// KindParse is malformed top-level input: an empty line, a line that does
	// not start with "git", or an unterminated quote.
	KindParse
	// KindPrecondition is a valid subcommand run in a state that forbids it.
	KindPrecondition
	// KindUnknownCommand is "git <x>" where x is not a supported subcommand.
	KindUnknownCommand
	// KindUsage is a supported subcommand with malformed flags or arguments.
	KindUsage
)

var kindNames = map[ErrorKind]string{
	KindNone:           "",
	KindParse:          "parse",
	KindPrecondition:   "precondition",
	KindUnknownCommand: "unknown_command",
	KindUsage:          "usage",
}

func (k ErrorKind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// MarshalText encodes the kind by name so snapshots stay readable.
func (k ErrorKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText decodes a kind written by MarshalText.
func (k *ErrorKind) UnmarshalText(text []byte) error {
	for kind, name := range kindNames {
		if name == string(text) {
			*k = kind
			return nil
		}
	}
	return fmt.Errorf("unknown error kind %q", string(text))
}

// Error is the only error type produced by the parser and the interpreter.
// Its message is the exact text shown to the learner.
type Error struct {
	Kind ErrorKind
	Msg  string
}

func (e *Error) Error() string { return e.Msg }

// KindOf returns the kind carried by err, or KindPrecondition for foreign errors.
func KindOf(err error) ErrorKind {
	if err == nil {
		return KindNone
	}
	var gerr *Error
	if errors.As(err, &gerr) {
		return gerr.Kind
	}
	return KindPrecondition
}

func newError(kind ErrorKind, format string, args ...any) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

func parseError(format string, args ...any) *Error {
	return newError(KindParse, format, args...)
}

func preconditionError(format string, args ...any) *Error {
	return newError(KindPrecondition, format, args...)
}

func usageError(format string, args ...any) *Error {
	return newError(KindUsage, format, args...)
}

func unknownCommandError(name string) *Error {
	return newError(KindUnknownCommand, "git: '%s' is not a git command. See 'git help'.", name)
}
