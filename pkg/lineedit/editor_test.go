package lineedit

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/phroun/debugconsole/pkg/surface"
)

type testHost struct {
	history  BasicHistory
	preview  string
	override map[string]Action
}

func (h *testHost) History() History { return &h.history }

func (h *testHost) ResolveAction(key, line string, cursor int) (Action, bool) {
	a, ok := h.override[key]
	return a, ok
}

func (h *testHost) RenderPreview(line string) []surface.Change {
	if h.preview == "" || line == "" {
		return nil
	}
	return []surface.Change{surface.Text(h.preview)}
}

func keysOf(keys ...string) <-chan string {
	ch := make(chan string, len(keys))
	for _, k := range keys {
		ch <- k
	}
	close(ch)
	return ch
}

func readLine(t *testing.T, host Host, keys ...string) (string, bool, *surface.Recorder, error) {
	t.Helper()
	rec := &surface.Recorder{}
	ed := New(rec, keysOf(keys...))
	line, ok, err := ed.ReadLine(context.Background(), "> ", host)
	return line, ok, rec, err
}

func TestReadLineEditing(t *testing.T) {
	tests := []struct {
		name string
		keys []string
		want string
	}{
		{"simple", []string{"a", "b", "Enter"}, "ab"},
		{"backspace", []string{"a", "b", "Backspace", "c", "Enter"}, "ac"},
		{"insert middle", []string{"a", "c", "Left", "b", "Enter"}, "abc"},
		{"home end", []string{"b", "Home", "a", "End", "c", "Enter"}, "abc"},
		{"kill to end", []string{"a", "b", "c", "Left", "Left", "^K", "Enter"}, "a"},
		{"kill line", []string{"a", "b", "^U", "z", "Enter"}, "z"},
		{"delete forward", []string{"a", "b", "^A", "^D", "Enter"}, "b"},
		{"unicode", []string{"é", "日", "Enter"}, "é日"},
		{"ignored keys", []string{"F5", "x", "Tab", "Enter"}, "x"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			line, ok, _, err := readLine(t, &testHost{}, tt.keys...)
			if err != nil || !ok {
				t.Fatalf("ReadLine = %q, %v, %v", line, ok, err)
			}
			if line != tt.want {
				t.Errorf("Expected %q, got %q", tt.want, line)
			}
		})
	}
}

func TestReadLineCancel(t *testing.T) {
	_, ok, _, err := readLine(t, &testHost{}, "^D")
	if ok || err != nil {
		t.Errorf("Ctrl-D on empty line should cancel, got ok=%v err=%v", ok, err)
	}

	_, ok, _, err = readLine(t, &testHost{}, "a", "^C")
	if ok || err != nil {
		t.Errorf("Ctrl-C should cancel, got ok=%v err=%v", ok, err)
	}
}

func TestReadLineHostOverride(t *testing.T) {
	host := &testHost{override: map[string]Action{"Escape": Cancel}}
	_, ok, _, err := readLine(t, host, "Escape")
	if ok || err != nil {
		t.Errorf("Host override should cancel, got ok=%v err=%v", ok, err)
	}
}

func TestReadLineHistory(t *testing.T) {
	host := &testHost{}
	host.history.Add("first")
	host.history.Add("second")

	line, _, _, _ := readLine(t, host, "Up", "Up", "Enter")
	if line != "first" {
		t.Errorf("Expected 'first', got %q", line)
	}

	line, _, _, _ = readLine(t, host, "d", "Up", "Down", "Enter")
	if line != "d" {
		t.Errorf("Down past the newest entry should restore the draft, got %q", line)
	}

	line, _, _, _ = readLine(t, host, "Up", "Up", "Up", "Down", "Enter")
	if line != "second" {
		t.Errorf("Expected 'second', got %q", line)
	}
	if host.history.Len() != 2 {
		t.Errorf("Editor must not add to history, got %d entries", host.history.Len())
	}
}

func TestReadLineEOF(t *testing.T) {
	_, ok, _, err := readLine(t, &testHost{}, "a")
	if ok || !errors.Is(err, io.EOF) {
		t.Errorf("Expected io.EOF, got ok=%v err=%v", ok, err)
	}
}

func TestReadLineContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	ed := New(&surface.Recorder{}, make(chan string))
	if _, _, err := ed.ReadLine(ctx, "> ", nil); !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
}

func TestReadLineSurfaceError(t *testing.T) {
	rec := &surface.Recorder{Err: errors.New("session closed")}
	ed := New(rec, keysOf("a"))
	if _, _, err := ed.ReadLine(context.Background(), "> ", nil); err == nil || !strings.Contains(err.Error(), "session closed") {
		t.Errorf("Expected surface error, got %v", err)
	}
}

func TestReadLinePreview(t *testing.T) {
	host := &testHost{preview: "..."}
	_, _, rec, _ := readLine(t, host, "x", "Enter")

	// The batch after typing "x" carries the preview under the input line
	if len(rec.Batches) < 2 {
		t.Fatalf("Expected at least 2 batches, got %d", len(rec.Batches))
	}
	batch := rec.Batches[1]
	var sawPreview, sawMoveUp bool
	for _, c := range batch {
		switch c := c.(type) {
		case surface.Text:
			if c == "..." {
				sawPreview = true
			}
		case surface.MoveUp:
			sawMoveUp = c == 1
		}
	}
	if !sawPreview || !sawMoveUp {
		t.Errorf("Expected preview and cursor return in %v", batch)
	}
	if last := batch[len(batch)-1]; last != surface.MoveToColumn(3) {
		t.Errorf("Expected cursor at column 3, got %v", last)
	}

	// Accepting clears the preview and ends the line
	final := rec.Batches[len(rec.Batches)-1]
	if final[len(final)-1] != surface.Text("> x\r\n") {
		t.Errorf("Unexpected final batch %v", final)
	}
}

func TestDisplayWidth(t *testing.T) {
	tests := map[string]int{
		"abc":           3,
		"\u65e5\u672c":  4,
		"\u00e9":        1,
		"e\u0301":       1,
		"":              0,
	}
	for s, want := range tests {
		if got := displayWidth(s); got != want {
			t.Errorf("displayWidth(%q) = %d, want %d", s, got, want)
		}
	}
}
