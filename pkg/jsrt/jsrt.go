// Package jsrt adapts the goja JavaScript engine to the debug console's
// Interpreter interface.
//
// A fragment that parses as a single expression statement is an
// expression; anything else runs as a script and yields its completion
// value. Promises returned by a fragment are awaited while asynchronous
// host operations (see Async) are still outstanding.
package jsrt

import (
	"context"
	"fmt"
	"strings"

	"github.com/dop251/goja"
	"github.com/dop251/goja/ast"
	"github.com/dop251/goja/parser"

	"github.com/phroun/debugconsole"
	"github.com/phroun/debugconsole/pkg/ringlog"
)

// Options configures an Interpreter.
type Options struct {
	// Logger receives console.* output. Defaults to an info level logger on
	// ringlog.Default.
	Logger *ringlog.Logger

	// Setup runs after the builtins are installed and may expose host
	// objects to scripts. An error aborts New.
	Setup func(vm *goja.Runtime) error

	// MaxCallStackSize limits recursion; zero keeps goja's default.
	MaxCallStackSize int
}

// Interpreter is a JavaScript runtime. It must only be used by one
// goroutine at a time.
type Interpreter struct {
	vm     *goja.Runtime
	logger *ringlog.Logger

	ctx     context.Context // the running evaluation's context
	pending int             // Async operations not yet settled
	settled chan func() error
	closed  chan struct{}
}

// New creates a JavaScript runtime with the console builtins.
func New(opts Options) (*Interpreter, error) {
	logger := opts.Logger
	if logger == nil {
		logger = ringlog.NewLogger(nil, ringlog.LevelInfo)
	}
	vm := goja.New()
	if opts.MaxCallStackSize > 0 {
		vm.SetMaxCallStackSize(opts.MaxCallStackSize)
	}
	in := &Interpreter{
		vm:      vm,
		logger:  logger,
		ctx:     context.Background(),
		settled: make(chan func() error, 16),
		closed:  make(chan struct{}),
	}
	if err := in.installBuiltins(); err != nil {
		return nil, fmt.Errorf("javascript builtins: %w", err)
	}
	if opts.Setup != nil {
		if err := opts.Setup(vm); err != nil {
			return nil, fmt.Errorf("javascript setup: %w", err)
		}
	}
	return in, nil
}

// Runtime exposes the underlying goja runtime for host bindings.
func (in *Interpreter) Runtime() *goja.Runtime {
	return in.vm
}

// Close abandons outstanding asynchronous operations.
func (in *Interpreter) Close() error {
	select {
	case <-in.closed:
	default:
		close(in.closed)
	}
	return nil
}

// LoadExpression compiles text if it is a single expression. A leading
// brace is read as an object literal rather than a block.
func (in *Interpreter) LoadExpression(name, text string) (debugconsole.Chunk, error) {
	src := text
	if strings.HasPrefix(strings.TrimSpace(text), "{") {
		src = "(" + text + "\n)"
	}
	prg, err := parse(name, src)
	if err != nil {
		return nil, err
	}
	if len(prg.Body) != 1 {
		return nil, notExpression(name)
	}
	if _, ok := prg.Body[0].(*ast.ExpressionStatement); !ok {
		return nil, notExpression(name)
	}
	return in.compile(name, prg)
}

// LoadStatement compiles text as a script.
func (in *Interpreter) LoadStatement(name, text string) (debugconsole.Chunk, error) {
	prg, err := parse(name, text)
	if err != nil {
		return nil, err
	}
	return in.compile(name, prg)
}

func parse(name, src string) (*ast.Program, error) {
	prg, err := parser.ParseFile(nil, chunkName(name), src, 0)
	if err != nil {
		return nil, syntaxError(name, err)
	}
	return prg, nil
}

func (in *Interpreter) compile(name string, prg *ast.Program) (debugconsole.Chunk, error) {
	p, err := goja.CompileAST(prg, false)
	if err != nil {
		return nil, syntaxError(name, err)
	}
	return &chunk{in: in, prg: p}, nil
}

// Run compiles and evaluates src as a script, for init scripts.
func (in *Interpreter) Run(ctx context.Context, name, src string) error {
	c, err := in.LoadStatement(name, src)
	if err != nil {
		return err
	}
	_, err = c.Eval(ctx)
	return err
}

type chunk struct {
	in  *Interpreter
	prg *goja.Program
}

// Eval runs the program. Cancelling ctx interrupts running script code
// and stops waiting for asynchronous operations.
func (c *chunk) Eval(ctx context.Context) (debugconsole.Value, error) {
	in := c.in
	in.ctx = ctx
	defer func() { in.ctx = context.Background() }()

	stop := context.AfterFunc(ctx, func() { in.vm.Interrupt(ctx.Err()) })
	defer func() {
		stop()
		in.vm.ClearInterrupt()
	}()

	if err := in.drain(); err != nil {
		return nil, runtimeError(err)
	}
	v, err := in.vm.RunProgram(c.prg)
	if err != nil {
		return nil, runtimeError(err)
	}
	return in.settle(ctx, v)
}

// settle waits for a promise result while operations that could settle it
// are outstanding.
func (in *Interpreter) settle(ctx context.Context, v goja.Value) (debugconsole.Value, error) {
	p, ok := v.Export().(*goja.Promise)
	if !ok {
		return v, nil
	}
	for p.State() == goja.PromiseStatePending && in.pending > 0 {
		select {
		case fn := <-in.settled:
			in.pending--
			if err := fn(); err != nil {
				return nil, runtimeError(err)
			}
		case <-ctx.Done():
			return nil, &debugconsole.RuntimeError{Message: "awaiting promise: " + ctx.Err().Error(), Err: ctx.Err()}
		}
	}
	switch p.State() {
	case goja.PromiseStateFulfilled:
		return p.Result(), nil
	case goja.PromiseStateRejected:
		return nil, &debugconsole.RuntimeError{Message: "Uncaught (in promise) " + p.Result().String()}
	}
	return v, nil
}

// drain runs the settlements of operations that finished since the last
// evaluation.
func (in *Interpreter) drain() error {
	for {
		select {
		case fn := <-in.settled:
			in.pending--
			if err := fn(); err != nil {
				return err
			}
		default:
			return nil
		}
	}
}

// Async starts wait on its own goroutine and returns a promise that is
// settled with its result on the evaluating goroutine. Call it from a Go
// function invoked by script code.
func (in *Interpreter) Async(name string, wait func(ctx context.Context) (interface{}, error)) goja.Value {
	p, resolve, reject := in.vm.NewPromise()
	ctx := in.ctx
	in.pending++
	go func() {
		v, err := wait(ctx)
		settle := func() error {
			if err != nil {
				return reject(in.vm.NewGoError(fmt.Errorf("%s: %w", name, err)))
			}
			return resolve(v)
		}
		select {
		case in.settled <- settle:
		case <-in.closed:
		}
	}()
	return in.vm.ToValue(p)
}

func chunkName(name string) string {
	return strings.TrimPrefix(name, "=")
}
