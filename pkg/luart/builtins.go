package luart

import (
	"context"
	"strings"
	"time"

	lua "github.com/yuin/gopher-lua"

	"github.com/phroun/debugconsole/pkg/ringlog"
)

// installBuiltins replaces print and adds log.<level> and sleep. Script
// output goes to the log ring because the terminal belongs to the console.
func (in *Interpreter) installBuiltins() {
	L := in.L
	L.SetGlobal("print", L.NewFunction(in.logAt(ringlog.LevelInfo)))

	logTable := L.SetFuncs(L.NewTable(), map[string]lua.LGFunction{
		"error": in.logAt(ringlog.LevelError),
		"warn":  in.logAt(ringlog.LevelWarn),
		"info":  in.logAt(ringlog.LevelInfo),
		"debug": in.logAt(ringlog.LevelDebug),
		"trace": in.logAt(ringlog.LevelTrace),
	})
	L.SetGlobal("log", logTable)
	L.SetGlobal("sleep", L.NewFunction(luaSleep))
}

// joinArgs renders all arguments with tostring semantics, tab separated.
func joinArgs(L *lua.LState) string {
	n := L.GetTop()
	parts := make([]string, 0, n)
	for i := 1; i <= n; i++ {
		parts = append(parts, L.ToStringMeta(L.Get(i)).String())
	}
	return strings.Join(parts, "\t")
}

func (in *Interpreter) logAt(level ringlog.Level) lua.LGFunction {
	return func(L *lua.LState) int {
		in.logger.Log(level, ringlog.CatScript, joinArgs(L))
		return 0
	}
}

// luaSleep suspends the script for the given number of seconds.
func luaSleep(L *lua.LState) int {
	secs := float64(L.CheckNumber(1))
	if secs < 0 {
		L.ArgError(1, "duration must not be negative")
	}
	d := time.Duration(secs * float64(time.Second))
	return Suspend(L, "sleep", func(ctx context.Context) ([]lua.LValue, error) {
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
