package debugconsole

import (
	"errors"
	"fmt"
	"strings"
)

// ContinuationMarker is shown by the live preview while the input is an
// unfinished prefix of valid code.
const ContinuationMarker = "..."

// DiagKind tells apart the two shapes of syntax diagnostic.
type DiagKind int

const (
	DiagFull       DiagKind = iota // a genuine syntax error
	DiagIncomplete                 // input ended before the construct was closed
)

func (k DiagKind) String() string {
	if k == DiagIncomplete {
		return "incomplete"
	}
	return "full"
}

// SyntaxError is a compile-time diagnostic reported by an Interpreter.
type SyntaxError struct {
	Kind    DiagKind
	Chunk   string // chunk name
	Line    int    // 1-based, 0 when unknown
	Column  int    // 1-based, 0 when unknown
	Message string
	Err     error // runtime-specific cause, optional
}

func (e *SyntaxError) Error() string {
	var b strings.Builder
	b.WriteString("syntax error")
	if e.Chunk != "" {
		b.WriteString(" in ")
		b.WriteString(e.Chunk)
	}
	if e.Line > 0 {
		fmt.Fprintf(&b, " at line %d", e.Line)
		if e.Column > 0 {
			fmt.Fprintf(&b, ", column %d", e.Column)
		}
	}
	b.WriteString(": ")
	b.WriteString(e.Message)
	return b.String()
}

func (e *SyntaxError) Unwrap() error { return e.Err }

// RuntimeError is an error raised while a chunk was running.
type RuntimeError struct {
	Message   string
	Traceback string // runtime stack traceback, optional
	Err       error  // underlying cause, optional
}

func (e *RuntimeError) Error() string {
	return "runtime error: " + e.Message
}

func (e *RuntimeError) Unwrap() error { return e.Err }

// IsIncomplete reports whether err is a syntax error caused only by the
// input ending too early.
func IsIncomplete(err error) bool {
	var se *SyntaxError
	return errors.As(err, &se) && se.Kind == DiagIncomplete
}

// FormatError renders err for the live preview: incomplete input becomes
// ContinuationMarker, anything else the full diagnostic.
func FormatError(err error) string {
	if IsIncomplete(err) {
		return ContinuationMarker
	}
	return FormatDiagnostic(err)
}

// FormatDiagnostic renders err with every wrapped cause and any runtime
// traceback, one cause per line.
func FormatDiagnostic(err error) string {
	if err == nil {
		return ""
	}
	var b strings.Builder
	b.WriteString(err.Error())
	seen := err.Error()

	var traceback string
	var walk func(e error)
	walk = func(e error) {
		if e == nil {
			return
		}
		if re, ok := e.(*RuntimeError); ok && traceback == "" {
			traceback = re.Traceback
		}
		if msg := e.Error(); msg != "" && !strings.Contains(seen, msg) {
			b.WriteString("\ncaused by: ")
			b.WriteString(msg)
			seen += "\n" + msg
		}
		switch u := e.(type) {
		case interface{ Unwrap() []error }:
			for _, inner := range u.Unwrap() {
				walk(inner)
			}
		case interface{ Unwrap() error }:
			walk(u.Unwrap())
		}
	}
	walk(err)

	if traceback != "" {
		b.WriteString("\n")
		b.WriteString(strings.TrimRight(traceback, "\n"))
	}
	return b.String()
}
