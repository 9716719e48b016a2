package luart

import (
	"errors"
	"strings"

	lua "github.com/yuin/gopher-lua"
	"github.com/yuin/gopher-lua/parse"

	"github.com/phroun/debugconsole"
)

// syntaxError converts a load failure into a console diagnostic. The input
// is incomplete when the parser stopped at end of input. Only unknown error
// shapes keep the original error as a cause.
func syntaxError(name string, err error) error {
	cause := err
	var apiErr *lua.ApiError
	if errors.As(err, &apiErr) && apiErr.Cause != nil {
		cause = apiErr.Cause
	}
	chunkName := strings.TrimPrefix(name, "=")

	var perr *parse.Error
	if errors.As(cause, &perr) {
		msg := perr.Message
		if msg == "syntax error" {
			msg = "unexpected symbol"
		}
		se := &debugconsole.SyntaxError{
			Kind:    debugconsole.DiagFull,
			Chunk:   chunkName,
			Message: msg,
		}
		if perr.Pos.Line == parse.EOF {
			se.Kind = debugconsole.DiagIncomplete
			se.Message = msg + " near <eof>"
		} else {
			se.Line = perr.Pos.Line
			se.Column = perr.Pos.Column
			if perr.Token != "" {
				se.Message = msg + " near '" + perr.Token + "'"
			}
		}
		return se
	}

	var cerr *lua.CompileError
	if errors.As(cause, &cerr) {
		return &debugconsole.SyntaxError{
			Chunk:   chunkName,
			Line:    cerr.Line,
			Message: cerr.Message,
		}
	}
	return &debugconsole.SyntaxError{
		Chunk:   chunkName,
		Message: strings.TrimSpace(cause.Error()),
		Err:     err,
	}
}

// runtimeError converts a failed resume into a console diagnostic.
func runtimeError(err error) error {
	var apiErr *lua.ApiError
	if !errors.As(err, &apiErr) {
		return &debugconsole.RuntimeError{Message: err.Error(), Err: err}
	}
	msg := "error"
	if apiErr.Object != nil {
		msg = apiErr.Object.String()
	}
	return &debugconsole.RuntimeError{
		Message:   msg,
		Traceback: apiErr.StackTrace,
		Err:       apiErr.Cause,
	}
}
