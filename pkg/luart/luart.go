// Package luart adapts gopher-lua to the debug console's Interpreter
// interface.
//
// Every evaluation runs in a fresh coroutine of one long-lived LState, so
// globals persist between lines. Go functions can suspend the coroutine with
// Suspend; the evaluation then waits for the operation outside the VM and
// resumes the script with its results.
package luart

import (
	"context"
	"fmt"
	"strings"

	lua "github.com/yuin/gopher-lua"

	"github.com/phroun/debugconsole"
	"github.com/phroun/debugconsole/pkg/ringlog"
)

// Options configures an Interpreter.
type Options struct {
	// Logger receives script output (print, log.*). Defaults to an info
	// level logger on ringlog.Default.
	Logger *ringlog.Logger

	// Setup runs after the builtins are installed and may expose host
	// objects to scripts. An error aborts New.
	Setup func(L *lua.LState) error

	// CallStackSize and RegistrySize tune the VM; zero keeps gopher-lua's
	// defaults.
	CallStackSize int
	RegistrySize  int
}

// Interpreter is a Lua runtime. Like the LState it wraps, it must only be
// used by one goroutine at a time.
type Interpreter struct {
	L      *lua.LState
	logger *ringlog.Logger
}

// New creates a Lua runtime with the standard libraries and the console
// builtins.
func New(opts Options) (*Interpreter, error) {
	logger := opts.Logger
	if logger == nil {
		logger = ringlog.NewLogger(nil, ringlog.LevelInfo)
	}
	L := lua.NewState(lua.Options{
		CallStackSize: opts.CallStackSize,
		RegistrySize:  opts.RegistrySize,
	})
	in := &Interpreter{L: L, logger: logger}
	in.installBuiltins()

	if opts.Setup != nil {
		if err := opts.Setup(L); err != nil {
			L.Close()
			return nil, fmt.Errorf("lua setup: %w", err)
		}
	}
	return in, nil
}

// Close releases the VM.
func (in *Interpreter) Close() error {
	in.L.Close()
	return nil
}

// LoadExpression accepts text if "return <text>;" compiles. The chunk it
// returns binds the value to a local first, so a suspending call in the
// expression is not a tail call and yields the evaluation coroutine.
func (in *Interpreter) LoadExpression(name, text string) (debugconsole.Chunk, error) {
	if _, err := in.load(name, "return "+text+";"); err != nil {
		return nil, err
	}
	return in.load(name, "local __value = "+text+"\nreturn __value")
}

// LoadStatement compiles text as a block.
func (in *Interpreter) LoadStatement(name, text string) (debugconsole.Chunk, error) {
	return in.load(name, text)
}

func (in *Interpreter) load(name, src string) (debugconsole.Chunk, error) {
	fn, err := in.L.Load(strings.NewReader(src), name)
	if err != nil {
		return nil, syntaxError(name, err)
	}
	return &chunk{in: in, fn: fn}, nil
}

// Run compiles and evaluates src as a block, for init scripts.
func (in *Interpreter) Run(ctx context.Context, name, src string) error {
	c, err := in.LoadStatement(name, src)
	if err != nil {
		return err
	}
	_, err = c.Eval(ctx)
	return err
}

// chunk is a compiled function bound to its interpreter.
type chunk struct {
	in *Interpreter
	fn *lua.LFunction
}

// Eval runs the function in a new coroutine, servicing suspended
// operations until it returns or fails. Only the first result is kept.
func (c *chunk) Eval(ctx context.Context) (debugconsole.Value, error) {
	L := c.in.L
	th, cancel := L.NewThread()
	if cancel != nil {
		defer cancel()
	}

	state, err, values := L.Resume(th, c.fn)
	for {
		if state == lua.ResumeError {
			return nil, runtimeError(err)
		}
		op, ok := pendingOf(values)
		if state == lua.ResumeOK {
			if ok {
				// "return f()" tail-calls f, so its yield ends the coroutine.
				results, werr := await(ctx, op)
				if werr != nil {
					return nil, werr
				}
				values = results
			}
			if len(values) == 0 {
				return lua.LNil, nil
			}
			return values[0], nil
		}

		if !ok {
			return nil, &debugconsole.RuntimeError{Message: "attempt to yield from the top level of the console"}
		}
		results, werr := await(ctx, op)
		if werr != nil {
			return nil, werr
		}
		state, err, values = L.Resume(th, c.fn, results...)
	}
}

func await(ctx context.Context, op *pendingOp) ([]lua.LValue, error) {
	results, err := op.wait(ctx)
	if err != nil {
		return nil, &debugconsole.RuntimeError{Message: op.name + ": " + err.Error(), Err: err}
	}
	return results, nil
}

// pendingOp is a suspended operation carried out of the VM by a yield.
type pendingOp struct {
	name string
	wait func(ctx context.Context) ([]lua.LValue, error)
}

// Suspend yields the running coroutine with an operation. The evaluation
// calls wait outside the VM and resumes the script with its results. Use it
// as the return statement of an LGFunction:
//
//	return luart.Suspend(L, "fetch", func(ctx context.Context) ([]lua.LValue, error) { ... })
//
// Only the evaluation coroutine can be suspended. Calling Suspend inside a
// coroutine created by the script raises a Lua error.
func Suspend(L *lua.LState, name string, wait func(ctx context.Context) ([]lua.LValue, error)) int {
	if L.Parent == nil || L.Parent.Parent != nil {
		L.RaiseError("%s: cannot suspend inside a coroutine", name)
		return 0
	}
	ud := L.NewUserData()
	ud.Value = &pendingOp{name: name, wait: wait}
	return L.Yield(ud)
}

func pendingOf(values []lua.LValue) (*pendingOp, bool) {
	if len(values) != 1 {
		return nil, false
	}
	ud, ok := values[0].(*lua.LUserData)
	if !ok {
		return nil, false
	}
	op, ok := ud.Value.(*pendingOp)
	return op, ok
}
