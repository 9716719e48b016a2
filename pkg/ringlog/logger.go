package ringlog

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/phroun/debugconsole/pkg/surface"
)

// Category represents the subsystem generating the message. It becomes the
// entry's source tag.
type Category string

const (
	CatNone    Category = ""        // Uncategorized, logged as "app"
	CatConsole Category = "console" // Debug console lifecycle
	CatEval    Category = "eval"    // Fragment evaluation
	CatScript  Category = "script"  // Output produced by scripts
	CatHost    Category = "host"    // Host application (CLI/GUI)
	CatConfig  Category = "config"  // Configuration loading
)

// ANSI color codes for the mirror output
const (
	colorYellow = "\x1b[93m"
	colorReset  = "\x1b[0m"
)

// Logger writes leveled, categorized entries into a Ring.
type Logger struct {
	mu           sync.Mutex
	ring         *Ring
	level        Level
	mirror       io.Writer // optional copy of every accepted entry
	colorEnabled bool      // color warnings/errors on the mirror
}

// NewLogger creates a logger writing into ring (Default when nil) that
// accepts entries at or above level.
func NewLogger(ring *Ring, level Level) *Logger {
	if ring == nil {
		ring = Default
	}
	return &Logger{
		ring:  ring,
		level: level,
	}
}

// Ring returns the ring the logger writes into.
func (l *Logger) Ring() *Ring {
	return l.ring
}

// SetLevel changes the minimum accepted level.
func (l *Logger) SetLevel(level Level) {
	l.mu.Lock()
	l.level = level
	l.mu.Unlock()
}

// Level returns the minimum accepted level.
func (l *Logger) Level() Level {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.level
}

// SetMirror copies every accepted entry to w as a text line. When w is a
// terminal that supports color, warnings and errors are highlighted.
func (l *Logger) SetMirror(w io.Writer) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.mirror = w
	l.colorEnabled = false
	if f, ok := w.(*os.File); ok {
		l.colorEnabled = surface.DetectColor(f)
	}
}

// Enabled reports whether an entry at level would be accepted.
func (l *Logger) Enabled(level Level) bool {
	return l != nil && level >= l.Level()
}

// Log is the unified logging method
func (l *Logger) Log(level Level, cat Category, message string) {
	if !l.Enabled(level) {
		return
	}
	target := string(cat)
	if target == "" {
		target = "app"
	}
	e := l.ring.Append(Entry{Level: level, Target: target, Message: message})

	l.mu.Lock()
	mirror, color := l.mirror, l.colorEnabled
	l.mu.Unlock()
	if mirror == nil {
		return
	}
	line := fmt.Sprintf("%s %-5s %s > %s", e.Time.Format("15:04:05.000"), e.Level, e.Target, e.Message)
	if color && level >= LevelWarn {
		_, _ = fmt.Fprintf(mirror, "%s%s%s\n", colorYellow, line, colorReset)
	} else {
		_, _ = fmt.Fprintln(mirror, line)
	}
}

// Convenience methods that route through Log
// Ordered by severity: Error, Warn, Info, Debug, Trace

// Error logs an error message
func (l *Logger) Error(format string, args ...interface{}) {
	l.Log(LevelError, CatNone, fmt.Sprintf(format, args...))
}

// ErrorCat logs a categorized error message
func (l *Logger) ErrorCat(cat Category, format string, args ...interface{}) {
	l.Log(LevelError, cat, fmt.Sprintf(format, args...))
}

// Warn logs a warning message
func (l *Logger) Warn(format string, args ...interface{}) {
	l.Log(LevelWarn, CatNone, fmt.Sprintf(format, args...))
}

// WarnCat logs a categorized warning message
func (l *Logger) WarnCat(cat Category, format string, args ...interface{}) {
	l.Log(LevelWarn, cat, fmt.Sprintf(format, args...))
}

// Info logs an informational message
func (l *Logger) Info(format string, args ...interface{}) {
	l.Log(LevelInfo, CatNone, fmt.Sprintf(format, args...))
}

// InfoCat logs a categorized informational message
func (l *Logger) InfoCat(cat Category, format string, args ...interface{}) {
	l.Log(LevelInfo, cat, fmt.Sprintf(format, args...))
}

// Debug logs a debug message
func (l *Logger) Debug(format string, args ...interface{}) {
	l.Log(LevelDebug, CatNone, fmt.Sprintf(format, args...))
}

// DebugCat logs a categorized debug message
func (l *Logger) DebugCat(cat Category, format string, args ...interface{}) {
	l.Log(LevelDebug, cat, fmt.Sprintf(format, args...))
}

// Trace logs a detailed trace message
func (l *Logger) Trace(format string, args ...interface{}) {
	l.Log(LevelTrace, CatNone, fmt.Sprintf(format, args...))
}

// TraceCat logs a categorized trace message
func (l *Logger) TraceCat(cat Category, format string, args ...interface{}) {
	l.Log(LevelTrace, cat, fmt.Sprintf(format, args...))
}
