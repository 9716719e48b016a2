package surface

import (
	"bytes"
	"fmt"
	"io"
	"strings"
	"sync"
)

// ANSI renders changes as VT100/xterm escape sequences onto a writer.
// Each batch is encoded into one buffer and written with a single Write,
// so a batch never interleaves with output from another goroutine.
type ANSI struct {
	mu    sync.Mutex
	w     io.Writer
	color bool
}

// NewANSI returns a renderer writing to w. When color is false, color and
// intensity changes are dropped but titles and cursor motion are kept.
func NewANSI(w io.Writer, color bool) *ANSI {
	return &ANSI{w: w, color: color}
}

// Render encodes and writes the batch.
func (a *ANSI) Render(changes []Change) error {
	var buf bytes.Buffer
	for _, c := range changes {
		a.encode(&buf, c)
	}
	if buf.Len() == 0 {
		return nil
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	if _, err := a.w.Write(buf.Bytes()); err != nil {
		return fmt.Errorf("render: %w", err)
	}
	return nil
}

func (a *ANSI) encode(buf *bytes.Buffer, c Change) {
	switch c := c.(type) {
	case Title:
		// OSC 0 sets both icon name and window title
		title := strings.Map(func(r rune) rune {
			if r < 0x20 || r == 0x7f {
				return -1
			}
			return r
		}, string(c))
		fmt.Fprintf(buf, "\x1b]0;%s\x07", title)
	case Text:
		buf.WriteString(string(c))
	case Foreground:
		if a.color {
			fmt.Fprintf(buf, "\x1b[%dm", fgCode(Color(c)))
		}
	case Intensity:
		if !a.color {
			return
		}
		switch c {
		case Bold:
			buf.WriteString("\x1b[1m")
		case Half:
			buf.WriteString("\x1b[2m")
		default:
			buf.WriteString("\x1b[22m")
		}
	case Reset:
		if a.color {
			buf.WriteString("\x1b[0m")
		}
	case MoveToColumn:
		buf.WriteByte('\r')
		if c > 0 {
			fmt.Fprintf(buf, "\x1b[%dC", int(c))
		}
	case MoveUp:
		if c > 0 {
			fmt.Fprintf(buf, "\x1b[%dA", int(c))
		}
	case ClearToEndOfScreen:
		buf.WriteString("\x1b[J")
	}
}
