// Package host holds the startup code shared by the terminal and windowed
// debug console commands: choosing the script runtime, exposing host
// bindings to scripts, and running the init script.
package host

import (
	"context"
	"fmt"
	"time"

	"github.com/dop251/goja"
	lua "github.com/yuin/gopher-lua"

	"github.com/phroun/debugconsole"
	"github.com/phroun/debugconsole/pkg/config"
	"github.com/phroun/debugconsole/pkg/jsrt"
	"github.com/phroun/debugconsole/pkg/luart"
	"github.com/phroun/debugconsole/pkg/ringlog"
)

// Bindings are host operations made available to scripts as the global
// window object. Nil members are left out.
type Bindings struct {
	SetTitle func(title string)
}

// Runtime is an interpreter that can also run init scripts.
type Runtime interface {
	debugconsole.Interpreter
	Run(ctx context.Context, name, src string) error
	Close() error
}

// NewRuntime creates the interpreter selected by cfg.Language, installs b
// and runs the configured init script. A failing init script is an error;
// the runtime is closed before returning it.
func NewRuntime(ctx context.Context, cfg *config.Config, logger *ringlog.Logger, b Bindings) (Runtime, error) {
	var (
		rt  Runtime
		err error
	)
	switch cfg.Language {
	case config.LanguageLua:
		rt, err = luart.New(luart.Options{Logger: logger, Setup: b.installLua})
	case config.LanguageJS:
		rt, err = jsrt.New(jsrt.Options{Logger: logger, Setup: b.installJS})
	default:
		err = fmt.Errorf("unsupported language %q", cfg.Language)
	}
	if err != nil {
		return nil, err
	}

	name, src, err := cfg.InitScript()
	if err != nil {
		rt.Close()
		return nil, err
	}
	if src == "" {
		return rt, nil
	}
	logger.InfoCat(ringlog.CatHost, "running init script %s", name)
	if err := rt.Run(ctx, name, src); err != nil {
		rt.Close()
		return nil, fmt.Errorf("init script %s: %s", name, debugconsole.FormatDiagnostic(err))
	}
	return rt, nil
}

func (b Bindings) installLua(L *lua.LState) error {
	window := L.NewTable()
	if b.SetTitle != nil {
		L.SetField(window, "set_title", L.NewFunction(func(L *lua.LState) int {
			b.SetTitle(L.CheckString(1))
			return 0
		}))
	}
	L.SetGlobal("window", window)
	return nil
}

func (b Bindings) installJS(vm *goja.Runtime) error {
	window := vm.NewObject()
	if b.SetTitle != nil {
		if err := window.Set("setTitle", func(call goja.FunctionCall) goja.Value {
			b.SetTitle(call.Argument(0).String())
			return goja.Undefined()
		}); err != nil {
			return err
		}
	}
	return vm.Set("window", window)
}

// Heartbeat logs a numbered entry every interval until ctx ends.
func Heartbeat(ctx context.Context, logger *ringlog.Logger, interval time.Duration) {
	if interval <= 0 {
		return
	}
	t := time.NewTicker(interval)
	defer t.Stop()
	for n := 1; ; n++ {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			logger.InfoCat(ringlog.CatHost, "heartbeat %d", n)
		}
	}
}
