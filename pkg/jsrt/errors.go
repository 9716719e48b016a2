package jsrt

import (
	"bytes"
	"errors"
	"strings"

	"github.com/dop251/goja"
	"github.com/dop251/goja/parser"

	"github.com/phroun/debugconsole"
)

// endOfInput is the parser's message when the source stops mid-construct.
const endOfInput = "Unexpected end of input"

func syntaxError(name string, err error) error {
	se := &debugconsole.SyntaxError{Chunk: chunkName(name)}

	var list parser.ErrorList
	var perr *parser.Error
	var cerr *goja.CompilerSyntaxError
	var rerr *goja.CompilerReferenceError
	switch {
	case errors.As(err, &list) && len(list) > 0:
		perr = list[0]
	case errors.As(err, &perr):
	case errors.As(err, &cerr):
		se.Message = cerr.Message
		if cerr.File != nil {
			pos := cerr.File.Position(cerr.Offset)
			se.Line, se.Column = pos.Line, pos.Column
		}
		return se
	case errors.As(err, &rerr):
		se.Message = rerr.Message
		return se
	default:
		se.Message = strings.TrimSpace(err.Error())
		se.Err = err
		return se
	}

	se.Message = perr.Message
	if perr.Message == endOfInput {
		se.Kind = debugconsole.DiagIncomplete
		return se
	}
	se.Line, se.Column = perr.Position.Line, perr.Position.Column
	return se
}

func notExpression(name string) error {
	return &debugconsole.SyntaxError{Chunk: chunkName(name), Message: "not a single expression"}
}

// runtimeError converts an exception into a console diagnostic with a
// JavaScript style stack.
func runtimeError(err error) error {
	var interrupted *goja.InterruptedError
	if errors.As(err, &interrupted) {
		return &debugconsole.RuntimeError{Message: "interrupted: " + interrupted.Error(), Err: err}
	}
	var ex *goja.Exception
	if !errors.As(err, &ex) {
		return &debugconsole.RuntimeError{Message: err.Error(), Err: err}
	}
	msg := ex.Error()
	if v := ex.Value(); v != nil {
		msg = v.String()
	}
	var b bytes.Buffer
	for i, frame := range ex.Stack() {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString("    at ")
		frame.Write(&b)
	}
	return &debugconsole.RuntimeError{Message: msg, Traceback: b.String(), Err: ex.Unwrap()}
}
