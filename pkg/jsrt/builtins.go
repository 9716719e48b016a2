package jsrt

import (
	"context"
	"math"
	"strings"
	"time"

	"github.com/dop251/goja"

	"github.com/phroun/debugconsole/pkg/ringlog"
)

// installBuiltins adds console.<level>, print and sleep. Script output goes
// to the log ring because the terminal belongs to the console.
func (in *Interpreter) installBuiltins() error {
	console := in.vm.NewObject()
	methods := map[string]ringlog.Level{
		"log":   ringlog.LevelInfo,
		"info":  ringlog.LevelInfo,
		"warn":  ringlog.LevelWarn,
		"error": ringlog.LevelError,
		"debug": ringlog.LevelDebug,
		"trace": ringlog.LevelTrace,
	}
	for name, level := range methods {
		if err := console.Set(name, in.logAt(level)); err != nil {
			return err
		}
	}
	if err := in.vm.Set("console", console); err != nil {
		return err
	}
	if err := in.vm.Set("print", in.logAt(ringlog.LevelInfo)); err != nil {
		return err
	}
	if err := in.vm.Set("sleep", in.sleep); err != nil {
		return err
	}

	in.vm.SetPromiseRejectionTracker(func(p *goja.Promise, op goja.PromiseRejectionOperation) {
		if op == goja.PromiseRejectionReject {
			in.logger.DebugCat(ringlog.CatScript, "promise rejected: %s", p.Result())
		}
	})
	return nil
}

func (in *Interpreter) logAt(level ringlog.Level) func(goja.FunctionCall) goja.Value {
	return func(call goja.FunctionCall) goja.Value {
		parts := make([]string, 0, len(call.Arguments))
		for _, arg := range call.Arguments {
			if s, ok := arg.Export().(string); ok {
				parts = append(parts, s)
				continue
			}
			parts = append(parts, in.Pretty(arg))
		}
		in.logger.Log(level, ringlog.CatScript, strings.Join(parts, " "))
		return goja.Undefined()
	}
}

// sleep returns a promise that resolves after the given milliseconds.
func (in *Interpreter) sleep(call goja.FunctionCall) goja.Value {
	ms := call.Argument(0).ToFloat()
	if math.IsNaN(ms) || ms < 0 {
		panic(in.vm.NewTypeError("sleep: duration must be a non-negative number of milliseconds"))
	}
	d := time.Duration(ms * float64(time.Millisecond))
	return in.Async("sleep", func(ctx context.Context) (interface{}, error) {
		t := time.NewTimer(d)
		defer t.Stop()
		select {
		case <-t.C:
			return nil, nil
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	})
}
