// Package logger writes leveled diagnostics to stderr. Warnings are always
// shown; --verbose adds info lines and --debug adds debug lines.
package logger

import (
	"fmt"
	"io"
	"os"
	"sync"
)

// Level is the most detailed kind of message that is printed.
type Level int

const (
	LevelWarn Level = iota
	LevelInfo
	LevelDebug
)

var (
	mu     sync.RWMutex
	level  = LevelWarn
	output io.Writer = os.Stderr
)

// SetLevel sets the current level.
func SetLevel(l Level) {
	mu.Lock()
	defer mu.Unlock()
	level = l
}

// Configure maps the --verbose and --debug flags onto a level.
func Configure(verbose, debug bool) {
	switch {
	case debug:
		SetLevel(LevelDebug)
	case verbose:
		SetLevel(LevelInfo)
	default:
		SetLevel(LevelWarn)
	}
}

// Enabled reports whether messages at l are printed.
func Enabled(l Level) bool {
	mu.RLock()
	defer mu.RUnlock()
	return l <= level
}

// SetOutput sets the writer; tests use it to capture logs.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	output = w
}

func logf(l Level, prefix, format string, args ...any) {
	mu.RLock()
	defer mu.RUnlock()
	if l <= level {
		fmt.Fprintf(output, prefix+format+"\n", args...)
	}
}

// Debug prints a message when --debug is set.
func Debug(format string, args ...any) { logf(LevelDebug, "[DEBUG] ", format, args...) }

// Info prints a progress message when --verbose or --debug is set.
func Info(format string, args ...any) { logf(LevelInfo, "[INFO] ", format, args...) }

// Warn prints a warning. Warnings are never suppressed.
func Warn(format string, args ...any) { logf(LevelWarn, "[WARN] ", format, args...) }

// Section prints a header at info level.
func Section(name string) { logf(LevelInfo, "\n=== ", "%s ===", name) }
