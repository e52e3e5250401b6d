// Package log is the small leveled logger the spindle CLI and engine
// share. The parse pipeline itself never logs; it is a pure text
// transformation and reports failures through errors instead.
package log

import (
	"fmt"
	"io"
	"os"
	"sync"
)

// Level represents the severity of a log message
type Level int

const (
	// LevelDebug is for verbose tracing, like per-import expansion
	LevelDebug Level = iota
	// LevelInfo is for operational events
	LevelInfo
	// LevelWarn is for conditions that don't stop a compilation
	LevelWarn
	// LevelError is for failures
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "debug"
	case LevelInfo:
		return "info"
	case LevelWarn:
		return "warn"
	default:
		return "error"
	}
}

var (
	mu       sync.Mutex
	output   io.Writer = os.Stderr
	minLevel           = LevelInfo
)

// SetOutput sets the output destination (primarily for testing)
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	output = w
}

// SetLevel sets the minimum log level to display
func SetLevel(level Level) {
	mu.Lock()
	defer mu.Unlock()
	minLevel = level
}

// Debug logs a debug message
func Debug(format string, args ...interface{}) { write(LevelDebug, format, args...) }

// Info logs an info message
func Info(format string, args ...interface{}) { write(LevelInfo, format, args...) }

// Warn logs a warning
func Warn(format string, args ...interface{}) { write(LevelWarn, format, args...) }

// Error logs an error
func Error(format string, args ...interface{}) { write(LevelError, format, args...) }

func write(level Level, format string, args ...interface{}) {
	mu.Lock()
	defer mu.Unlock()
	if level < minLevel || output == nil {
		return
	}
	fmt.Fprintf(output, "[spindle] "+level.String()+": "+format+"\n", args...)
}
