// Package surface describes display changes for a terminal-like surface and
// renders them as ANSI escape sequences.
//
// A Surface applies an ordered batch of changes atomically. The console core
// only emits Title, Text, Foreground, Intensity and Reset; the cursor and
// clearing changes exist for the line editor.
package surface

// Change is one display operation. The concrete types below are the only
// implementations.
type Change interface {
	isChange()
}

// Surface applies batches of changes. Render fails once the underlying
// session is gone.
type Surface interface {
	Render(changes []Change) error
}

// Title sets the window or tab title.
type Title string

// Text writes a run of text at the cursor using the current attributes.
type Text string

// Foreground sets the foreground color for following text.
type Foreground Color

// Intensity sets the text intensity for following text.
type Intensity uint8

const (
	Normal Intensity = iota
	Bold
	Half
)

// Reset restores all attributes to their defaults.
type Reset struct{}

// MoveToColumn moves the cursor to a zero-based column on the current row.
type MoveToColumn int

// MoveUp moves the cursor up the given number of rows.
type MoveUp int

// ClearToEndOfScreen erases from the cursor to the end of the screen.
type ClearToEndOfScreen struct{}

func (Title) isChange()              {}
func (Text) isChange()               {}
func (Foreground) isChange()         {}
func (Intensity) isChange()          {}
func (Reset) isChange()              {}
func (MoveToColumn) isChange()       {}
func (MoveUp) isChange()             {}
func (ClearToEndOfScreen) isChange() {}

// Recorder is a Surface that keeps every batch it is given. It is used by
// hosts that need a transcript and by tests.
type Recorder struct {
	Batches [][]Change
	// Err, when set, is returned from Render instead of recording.
	Err error
}

// Render records the batch.
func (r *Recorder) Render(changes []Change) error {
	if r.Err != nil {
		return r.Err
	}
	batch := make([]Change, len(changes))
	copy(batch, changes)
	r.Batches = append(r.Batches, batch)
	return nil
}

// Changes returns every recorded change flattened in order.
func (r *Recorder) Changes() []Change {
	var all []Change
	for _, b := range r.Batches {
		all = append(all, b...)
	}
	return all
}

// Text returns the concatenation of every recorded Text change.
func (r *Recorder) Text() string {
	var s string
	for _, c := range r.Changes() {
		if t, ok := c.(Text); ok {
			s += string(t)
		}
	}
	return s
}
