// Package debugconsole is an interactive debug console: a read-eval-print
// loop over an embedded script runtime that also tails the application's
// log ring, all drawn on a terminal-like surface.
//
// The console owns no runtime, editor or terminal of its own. It is handed
// an Interpreter, a surface.Surface and a LineReader, and orchestrates them:
// each submitted line is classified as an expression or a statement,
// evaluated on a worker goroutine, and the pretty-printed result is drawn
// together with any log entries that arrived in the meantime.
package debugconsole

import "context"

// Value is a runtime value produced by an evaluation.
type Value any

// Chunk is compiled code ready to run.
type Chunk interface {
	// Eval runs the chunk to completion and returns its single result.
	// The runtime may suspend internally; Eval waits for it.
	Eval(ctx context.Context) (Value, error)
}

// Interpreter is a live script runtime. It is not safe for concurrent use:
// at any instant exactly one goroutine may hold it.
type Interpreter interface {
	// LoadExpression compiles text as a value-producing expression without
	// running it (for Lua, "return <text>").
	LoadExpression(name, text string) (Chunk, error)

	// LoadStatement compiles text verbatim as a statement block without
	// running it.
	LoadStatement(name, text string) (Chunk, error)

	// Pretty renders v as deeply expanded structural text.
	Pretty(v Value) string
}

// Chunk names used for diagnostics.
const (
	classifyChunk = "=repl"
	evalChunk     = "repl"
)
