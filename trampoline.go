package debugconsole

import (
	"context"
	"fmt"
)

// Outcome is the result of one evaluation: the interpreter, handed back to
// the caller, and the text to show. Results and errors are both plain text.
type Outcome struct {
	Interp Interpreter
	Text   string
}

// Evaluate runs line against in on a new goroutine and returns a channel
// that delivers exactly one Outcome and is then closed. Ownership of in
// passes to the goroutine until the Outcome is received; the caller must
// not touch it in between.
func Evaluate(ctx context.Context, in Interpreter, line string) <-chan Outcome {
	ch := make(chan Outcome, 1)
	go func() {
		out := Outcome{Interp: in}
		defer func() {
			if r := recover(); r != nil {
				out.Text = fmt.Sprintf("runtime panic: %v", r)
			}
			ch <- out
			close(ch)
		}()
		out.Text = evaluate(ctx, in, line)
	}()
	return ch
}

// evaluate does the work of Evaluate on the worker goroutine. The compiled
// chunk never leaves this function.
func evaluate(ctx context.Context, in Interpreter, line string) string {
	frag, err := Classify(in, line)
	if err != nil {
		// A submitted line is final, so even incomplete input gets the
		// concrete diagnostic.
		return FormatDiagnostic(err)
	}
	chunk, err := frag.load(in, evalChunk)
	if err != nil {
		return FormatDiagnostic(err)
	}
	value, err := chunk.Eval(ctx)
	if err != nil {
		return FormatError(err)
	}
	return in.Pretty(value)
}

// Await receives the Outcome from ch. A channel closed without delivering
// one means the worker broke its contract, and Await panics.
func Await(ch <-chan Outcome) Outcome {
	out, ok := <-ch
	if !ok {
		panic("debugconsole: evaluation ended without delivering an outcome")
	}
	return out
}
