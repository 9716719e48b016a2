package debugconsole

import (
	"sort"
	"strings"
	"time"

	"github.com/phroun/debugconsole/pkg/ringlog"
	"github.com/phroun/debugconsole/pkg/surface"
)

// LogSource returns every log entry currently buffered. Entries are never
// consumed; the console remembers what it already drew.
type LogSource interface {
	Entries() []ringlog.Entry
}

// levelColors is the severity to color mapping of the log tail.
var levelColors = map[ringlog.Level]surface.Color{
	ringlog.LevelError: surface.Maroon,
	ringlog.LevelWarn:  surface.Red,
	ringlog.LevelInfo:  surface.Green,
	ringlog.LevelDebug: surface.Blue,
	ringlog.LevelTrace: surface.Fuchsia,
}

func levelColor(l ringlog.Level) surface.Color {
	if c, ok := levelColors[l]; ok {
		return c
	}
	return surface.Default
}

// crlf rewrites line breaks to the terminal's CR LF convention.
func crlf(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return strings.ReplaceAll(s, "\n", "\r\n")
}

// entryChanges draws one log line:
// "15:04:05.000 LEVEL target > message".
func entryChanges(e ringlog.Entry) []surface.Change {
	return []surface.Change{
		surface.Reset{},
		surface.Text(e.Time.Format("15:04:05.000") + " "),
		surface.Foreground(levelColor(e.Level)),
		surface.Text(e.Level.String()),
		surface.Reset{},
		surface.Intensity(surface.Bold),
		surface.Text(" " + e.Target),
		surface.Reset{},
		surface.Text(" > " + crlf(e.Message) + "\r\n"),
	}
}

// logTail tracks the high-water timestamp of the entries already drawn.
type logTail struct {
	latest    time.Time
	hasLatest bool
}

// poll returns the changes for entries newer than the high-water mark, in
// timestamp order, and advances the mark past them.
func (t *logTail) poll(src LogSource) []surface.Change {
	if src == nil {
		return nil
	}
	var fresh []ringlog.Entry
	for _, e := range src.Entries() {
		if !t.hasLatest || e.Time.After(t.latest) {
			fresh = append(fresh, e)
		}
	}
	if len(fresh) == 0 {
		return nil
	}
	sort.SliceStable(fresh, func(i, j int) bool {
		return fresh[i].Time.Before(fresh[j].Time)
	})

	var changes []surface.Change
	for _, e := range fresh {
		changes = append(changes, entryChanges(e)...)
	}
	t.latest = fresh[len(fresh)-1].Time
	t.hasLatest = true
	return changes
}
