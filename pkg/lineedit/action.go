// Package lineedit is a small single-line editor that reads key events
// (as produced by package keyboard) and draws onto a surface.Surface.
//
// The embedding application supplies a Host: it owns the history, can
// override what a key does, and can render a preview under the input.
package lineedit

import "github.com/phroun/debugconsole/pkg/surface"

// Action is what the editor does in response to a key.
type Action int

const (
	NoAction Action = iota
	InsertChar
	AcceptLine
	Cancel
	MoveLeft
	MoveRight
	MoveHome
	MoveEnd
	DeleteBackward
	DeleteForward
	KillToEnd
	KillLine
	HistoryPrevious
	HistoryNext
	Repaint
)

var actionNames = map[Action]string{
	NoAction:        "none",
	InsertChar:      "insert",
	AcceptLine:      "accept-line",
	Cancel:          "cancel",
	MoveLeft:        "move-left",
	MoveRight:       "move-right",
	MoveHome:        "move-home",
	MoveEnd:         "move-end",
	DeleteBackward:  "delete-backward",
	DeleteForward:   "delete-forward",
	KillToEnd:       "kill-to-end",
	KillLine:        "kill-line",
	HistoryPrevious: "history-previous",
	HistoryNext:     "history-next",
	Repaint:         "repaint",
}

func (a Action) String() string {
	if s, ok := actionNames[a]; ok {
		return s
	}
	return "unknown"
}

// DefaultBindings maps key names to actions. Keys that are a single
// printable character insert themselves. ^D deletes forward, or cancels
// on an empty line.
var DefaultBindings = map[string]Action{
	"Enter":     AcceptLine,
	"^C":        Cancel,
	"Left":      MoveLeft,
	"^B":        MoveLeft,
	"Right":     MoveRight,
	"^F":        MoveRight,
	"Home":      MoveHome,
	"^A":        MoveHome,
	"End":       MoveEnd,
	"^E":        MoveEnd,
	"Backspace": DeleteBackward,
	"Delete":    DeleteForward,
	"^K":        KillToEnd,
	"^U":        KillLine,
	"Up":        HistoryPrevious,
	"^P":        HistoryPrevious,
	"Down":      HistoryNext,
	"^N":        HistoryNext,
	"^L":        Repaint,
}

// Host is implemented by the application embedding the editor.
type Host interface {
	// History is the recall list used by HistoryPrevious/HistoryNext.
	History() History

	// ResolveAction may override the action for key given the current
	// line and cursor (in runes). Returning false keeps the default.
	ResolveAction(key, line string, cursor int) (Action, bool)

	// RenderPreview returns changes drawn under the input line after every
	// edit. Nil means no preview.
	RenderPreview(line string) []surface.Change
}
