package luart

import (
	"fmt"
	"sort"

	lua "github.com/yuin/gopher-lua"

	"github.com/phroun/debugconsole"
	"github.com/phroun/debugconsole/pkg/pretty"
)

// Pretty renders a Lua value with tables fully expanded. Tables seen
// earlier on the current path render as a cycle marker.
func (in *Interpreter) Pretty(v debugconsole.Value) string {
	lv, ok := v.(lua.LValue)
	if !ok {
		if v == nil {
			return "nil"
		}
		return fmt.Sprint(v)
	}
	return pretty.Format(toNode(lv, map[*lua.LTable]bool{}))
}

func toNode(v lua.LValue, path map[*lua.LTable]bool) pretty.Node {
	switch v := v.(type) {
	case *lua.LNilType:
		return pretty.Scalar("nil")
	case lua.LString:
		return pretty.Quote(string(v))
	case *lua.LTable:
		if path[v] {
			return pretty.Scalar(fmt.Sprintf("<cycle %s>", v.String()))
		}
		path[v] = true
		defer delete(path, v)
		return tableNode(v, path)
	case *lua.LUserData:
		if op, ok := v.Value.(*pendingOp); ok {
			return pretty.Scalar(fmt.Sprintf("<pending %s>", op.name))
		}
		return pretty.Scalar(v.String())
	default:
		return pretty.Scalar(v.String())
	}
}

// tableNode renders a sequence as a list and anything else as a map with
// the array part first, then the remaining keys in sorted order.
func tableNode(t *lua.LTable, path map[*lua.LTable]bool) pretty.Node {
	n := t.MaxN()
	var (
		seq   pretty.List
		other []pretty.Field
		count int
	)
	for i := 1; i <= n; i++ {
		seq = append(seq, toNode(t.RawGetInt(i), path))
	}
	t.ForEach(func(k, val lua.LValue) {
		count++
		if num, ok := k.(lua.LNumber); ok {
			if i := int(num); lua.LNumber(i) == num && i >= 1 && i <= n {
				return
			}
		}
		other = append(other, pretty.Field{Key: keyString(k), Value: toNode(val, path)})
	})

	if len(other) == 0 && count == n {
		if n == 0 {
			return pretty.Map{}
		}
		return seq
	}

	fields := make([]pretty.Field, 0, len(seq)+len(other))
	for i, item := range seq {
		fields = append(fields, pretty.Field{Key: fmt.Sprintf("[%d]", i+1), Value: item})
	}
	sort.SliceStable(other, func(i, j int) bool { return other[i].Key < other[j].Key })
	return pretty.Map{Fields: append(fields, other...)}
}

// keyString renders a table key: identifiers bare, anything else in
// brackets.
func keyString(k lua.LValue) string {
	if s, ok := k.(lua.LString); ok && isIdentifier(string(s)) {
		return string(s)
	}
	if s, ok := k.(lua.LString); ok {
		return "[" + string(pretty.Quote(string(s))) + "]"
	}
	return "[" + k.String() + "]"
}

func isIdentifier(s string) bool {
	if s == "" || luaKeywords[s] {
		return false
	}
	for i, r := range s {
		switch {
		case r == '_', r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case i > 0 && r >= '0' && r <= '9':
		default:
			return false
		}
	}
	return true
}

var luaKeywords = map[string]bool{
	"and": true, "break": true, "do": true, "else": true, "elseif": true,
	"end": true, "false": true, "for": true, "function": true, "goto": true,
	"if": true, "in": true, "local": true, "nil": true, "not": true,
	"or": true, "repeat": true, "return": true, "then": true, "true": true,
	"until": true, "while": true,
}
