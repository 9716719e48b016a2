package lineedit

import (
	"context"
	"fmt"
	"io"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/width"

	"github.com/phroun/debugconsole/pkg/surface"
)

// Editor reads one line at a time from a stream of key events.
// It is used from a single goroutine.
type Editor struct {
	surf surface.Surface
	keys <-chan string
}

// New returns an editor drawing on surf and reading keys. When keys is
// closed, ReadLine returns io.EOF.
func New(surf surface.Surface, keys <-chan string) *Editor {
	return &Editor{surf: surf, keys: keys}
}

// lineState is the state of one ReadLine call
type lineState struct {
	prompt  string
	host    Host
	history History

	line   []rune
	cursor int

	histPos   int
	savedLine string
	inHistory bool
}

// ReadLine shows prompt and edits a line until it is accepted (ok true) or
// cancelled (ok false). Errors come from the surface, the context, or the
// end of the key stream (io.EOF).
func (e *Editor) ReadLine(ctx context.Context, prompt string, host Host) (string, bool, error) {
	st := &lineState{prompt: prompt, host: host}
	if host != nil {
		st.history = host.History()
	}
	if st.history != nil {
		st.histPos = st.history.Len()
	}

	if err := e.redraw(st); err != nil {
		return "", false, err
	}

	for {
		var key string
		select {
		case <-ctx.Done():
			return "", false, ctx.Err()
		case k, ok := <-e.keys:
			if !ok {
				return "", false, io.EOF
			}
			key = k
		}

		switch action := st.resolve(key); action {
		case AcceptLine:
			if err := e.finish(st); err != nil {
				return "", false, err
			}
			return string(st.line), true, nil
		case Cancel:
			return "", false, e.finish(st)
		case NoAction:
			continue
		default:
			if !st.apply(action, key) {
				continue
			}
		}
		if err := e.redraw(st); err != nil {
			return "", false, err
		}
	}
}

// resolve asks the host first, then falls back to the default bindings.
func (st *lineState) resolve(key string) Action {
	if st.host != nil {
		if action, ok := st.host.ResolveAction(key, string(st.line), st.cursor); ok {
			return action
		}
	}
	if key == "^D" {
		if len(st.line) == 0 {
			return Cancel
		}
		return DeleteForward
	}
	if action, ok := DefaultBindings[key]; ok {
		return action
	}
	if r, size := utf8.DecodeRuneInString(key); size == len(key) && r != utf8.RuneError && unicode.IsPrint(r) {
		return InsertChar
	}
	return NoAction
}

// apply performs an editing action and reports whether the display changed.
func (st *lineState) apply(action Action, key string) bool {
	switch action {
	case InsertChar:
		r, _ := utf8.DecodeRuneInString(key)
		st.line = append(st.line[:st.cursor], append([]rune{r}, st.line[st.cursor:]...)...)
		st.cursor++
		st.inHistory = false
	case MoveLeft:
		if st.cursor == 0 {
			return false
		}
		st.cursor--
	case MoveRight:
		if st.cursor >= len(st.line) {
			return false
		}
		st.cursor++
	case MoveHome:
		st.cursor = 0
	case MoveEnd:
		st.cursor = len(st.line)
	case DeleteBackward:
		if st.cursor == 0 {
			return false
		}
		st.line = append(st.line[:st.cursor-1], st.line[st.cursor:]...)
		st.cursor--
	case DeleteForward:
		if st.cursor >= len(st.line) {
			return false
		}
		st.line = append(st.line[:st.cursor], st.line[st.cursor+1:]...)
	case KillToEnd:
		st.line = st.line[:st.cursor]
	case KillLine:
		st.line = nil
		st.cursor = 0
	case HistoryPrevious:
		if st.history == nil || st.histPos == 0 {
			return false
		}
		if !st.inHistory {
			st.savedLine = string(st.line)
			st.inHistory = true
		}
		st.histPos--
		st.setLine(st.history.At(st.histPos))
	case HistoryNext:
		if !st.inHistory {
			return false
		}
		if st.histPos < st.history.Len()-1 {
			st.histPos++
			st.setLine(st.history.At(st.histPos))
		} else {
			st.histPos = st.history.Len()
			st.setLine(st.savedLine)
			st.inHistory = false
		}
	case Repaint:
	default:
		return false
	}
	return true
}

func (st *lineState) setLine(s string) {
	st.line = []rune(s)
	st.cursor = len(st.line)
}

// redraw repaints the prompt, the line and the host's preview, leaving the
// cursor at its place on the input line.
func (e *Editor) redraw(st *lineState) error {
	changes := []surface.Change{
		surface.MoveToColumn(0),
		surface.ClearToEndOfScreen{},
		surface.Text(st.prompt),
		surface.Text(string(st.line)),
	}
	if st.host != nil {
		if preview := st.host.RenderPreview(string(st.line)); len(preview) > 0 {
			changes = append(changes, surface.Text("\r\n"))
			changes = append(changes, preview...)
			changes = append(changes, surface.Reset{}, surface.MoveUp(1+countLines(preview)))
		}
	}
	changes = append(changes, surface.MoveToColumn(displayWidth(st.prompt)+displayWidth(string(st.line[:st.cursor]))))
	if err := e.surf.Render(changes); err != nil {
		return fmt.Errorf("line editor: %w", err)
	}
	return nil
}

// finish clears any preview and leaves the cursor on a fresh line.
func (e *Editor) finish(st *lineState) error {
	err := e.surf.Render([]surface.Change{
		surface.MoveToColumn(0),
		surface.ClearToEndOfScreen{},
		surface.Text(st.prompt + string(st.line) + "\r\n"),
	})
	if err != nil {
		return fmt.Errorf("line editor: %w", err)
	}
	return nil
}

// countLines counts the line breaks inside preview text.
func countLines(changes []surface.Change) int {
	n := 0
	for _, c := range changes {
		if t, ok := c.(surface.Text); ok {
			n += strings.Count(string(t), "\n")
		}
	}
	return n
}

// displayWidth returns the terminal cell width of s. Wide East Asian
// characters take two cells and combining marks take none.
func displayWidth(s string) int {
	w := 0
	for _, r := range s {
		switch {
		case r < 0x20 || r == 0x7f:
		case unicode.Is(unicode.Mn, r):
		default:
			switch width.LookupRune(r).Kind() {
			case width.EastAsianWide, width.EastAsianFullwidth:
				w += 2
			default:
				w++
			}
		}
	}
	return w
}
