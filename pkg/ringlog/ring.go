// Package ringlog keeps the application's recent log entries in a bounded,
// process-wide ring buffer and provides a leveled, categorized logger that
// writes into it.
package ringlog

import (
	"fmt"
	"strings"
	"sync"
	"time"
)

// DefaultCapacity is the number of entries Default retains.
const DefaultCapacity = 1024

// Level is the severity of an entry (higher value = higher severity).
type Level int

const (
	LevelTrace Level = iota // Detailed tracing
	LevelDebug              // Development debugging
	LevelInfo               // Informational messages
	LevelWarn               // Warnings
	LevelError              // Errors
)

var levelNames = [...]string{"TRACE", "DEBUG", "INFO", "WARN", "ERROR"}

func (l Level) String() string {
	if l >= LevelTrace && l <= LevelError {
		return levelNames[l]
	}
	return fmt.Sprintf("LEVEL(%d)", int(l))
}

// ParseLevel converts a level name (case-insensitive) to a Level.
func ParseLevel(s string) (Level, error) {
	name := strings.ToUpper(strings.TrimSpace(s))
	if name == "WARNING" {
		return LevelWarn, nil
	}
	for i, n := range levelNames {
		if n == name {
			return Level(i), nil
		}
	}
	return LevelInfo, fmt.Errorf("unknown log level %q", s)
}

// Entry is one immutable log record.
type Entry struct {
	Time    time.Time
	Level   Level
	Target  string
	Message string
}

// Ring is a bounded, append-only buffer of entries that is safe for
// concurrent use. When the capacity is exceeded the oldest entries are
// dropped.
//
// Timestamps are made strictly increasing on append, so a reader that
// remembers the last timestamp it saw never confuses two entries.
type Ring struct {
	mu    sync.Mutex
	cap   int
	items []Entry
	last  time.Time
}

// New constructs a Ring retaining at most capacity entries.
// If capacity <= 0 the ring retains nothing.
func New(capacity int) *Ring {
	if capacity < 0 {
		capacity = 0
	}
	return &Ring{cap: capacity}
}

// Default is the process-wide ring.
var Default = New(DefaultCapacity)

// Append adds an entry, stamping it with the current time when e.Time is
// zero, and trims the ring to its capacity. It returns the stored entry.
func (r *Ring) Append(e Entry) Entry {
	if e.Time.IsZero() {
		e.Time = time.Now()
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.last.IsZero() && !e.Time.After(r.last) {
		e.Time = r.last.Add(time.Nanosecond)
	}
	r.last = e.Time

	if r.cap <= 0 {
		r.items = nil
		return e
	}
	r.items = append(r.items, e)
	if len(r.items) > r.cap {
		r.items = r.items[len(r.items)-r.cap:]
	}
	return e
}

// Entries returns a copy of every buffered entry, oldest first.
func (r *Ring) Entries() []Entry {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Entry, len(r.items))
	copy(out, r.items)
	return out
}

// Len returns the number of buffered entries.
func (r *Ring) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.items)
}

// Clear removes all entries. The timestamp floor is kept.
func (r *Ring) Clear() {
	r.mu.Lock()
	r.items = nil
	r.mu.Unlock()
}

// Entries returns the contents of Default.
func Entries() []Entry {
	return Default.Entries()
}
