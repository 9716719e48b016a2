package debugconsole_test

import (
	"context"
	"fmt"

	"github.com/phroun/debugconsole"
	"github.com/phroun/debugconsole/pkg/luart"
	"github.com/phroun/debugconsole/pkg/ringlog"
)

// Embedding the evaluation path in a Go application: each line is handed
// to a worker with the interpreter and comes back as text.
func Example() {
	in, err := luart.New(luart.Options{Logger: ringlog.NewLogger(ringlog.New(16), ringlog.LevelInfo)})
	if err != nil {
		panic(err)
	}
	defer in.Close()

	for _, line := range []string{"x = 40", "x + 2", "{x, 'y'}", "(x +"} {
		out := debugconsole.Await(debugconsole.Evaluate(context.Background(), in, line))
		fmt.Println(out.Text)
	}
	// Output:
	// nil
	// 42
	// [
	//     40,
	//     "y",
	// ]
	// syntax error in repl: unexpected symbol near <eof>
}

func ExampleFormatError() {
	incomplete := &debugconsole.SyntaxError{Kind: debugconsole.DiagIncomplete, Message: "unexpected symbol near <eof>"}
	full := &debugconsole.SyntaxError{Chunk: "repl", Line: 1, Column: 5, Message: "unexpected symbol near '='"}

	fmt.Println(debugconsole.FormatError(incomplete))
	fmt.Println(debugconsole.FormatError(full))
	// Output:
	// ...
	// syntax error in repl at line 1, column 5: unexpected symbol near '='
}
