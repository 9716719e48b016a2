package jsrt

import (
	"fmt"
	"strconv"

	"github.com/dop251/goja"

	"github.com/phroun/debugconsole"
	"github.com/phroun/debugconsole/pkg/pretty"
)

// Pretty renders a JavaScript value in the style of Node's inspector,
// fully expanded.
func (in *Interpreter) Pretty(v debugconsole.Value) string {
	jv, ok := v.(goja.Value)
	if !ok {
		if v == nil {
			return "undefined"
		}
		return fmt.Sprint(v)
	}
	return pretty.Format(in.toNode(jv, map[*goja.Object]bool{}))
}

func (in *Interpreter) toNode(v goja.Value, path map[*goja.Object]bool) pretty.Node {
	switch {
	case v == nil || goja.IsUndefined(v):
		return pretty.Scalar("undefined")
	case goja.IsNull(v):
		return pretty.Scalar("null")
	}
	obj, ok := v.(*goja.Object)
	if !ok {
		if s, ok := v.Export().(string); ok {
			return pretty.Quote(s)
		}
		return pretty.Scalar(v.String())
	}
	if path[obj] {
		return pretty.Scalar("[Circular]")
	}
	path[obj] = true
	defer delete(path, obj)

	// Promises report the "Object" class.
	if p, ok := obj.Export().(*goja.Promise); ok {
		return in.promiseNode(p, path)
	}
	switch obj.ClassName() {
	case "Function", "AsyncFunction", "GeneratorFunction":
		name := obj.Get("name").String()
		if name == "" {
			return pretty.Scalar("[Function (anonymous)]")
		}
		return pretty.Scalar("[Function: " + name + "]")
	case "Error", "Date", "RegExp":
		return pretty.Scalar(obj.String())
	case "Array":
		n := obj.Get("length").ToInteger()
		list := make(pretty.List, 0, n)
		for i := int64(0); i < n; i++ {
			list = append(list, in.toNode(obj.Get(strconv.FormatInt(i, 10)), path))
		}
		return list
	}

	m := pretty.Map{Name: constructorName(obj)}
	for _, key := range obj.Keys() {
		m.Fields = append(m.Fields, pretty.Field{Key: keyString(key), Value: in.toNode(obj.Get(key), path)})
	}
	return m
}

func (in *Interpreter) promiseNode(p *goja.Promise, path map[*goja.Object]bool) pretty.Node {
	switch p.State() {
	case goja.PromiseStateFulfilled:
		return pretty.Map{Name: "Promise", Fields: []pretty.Field{{Key: "value", Value: in.toNode(p.Result(), path)}}}
	case goja.PromiseStateRejected:
		return pretty.Map{Name: "Promise", Fields: []pretty.Field{{Key: "rejected", Value: in.toNode(p.Result(), path)}}}
	}
	return pretty.Scalar("Promise { <pending> }")
}

// constructorName names class instances; plain objects stay unnamed.
func constructorName(obj *goja.Object) string {
	ctor, ok := obj.Get("constructor").(*goja.Object)
	if !ok {
		return ""
	}
	name := ctor.Get("name")
	if name == nil || goja.IsUndefined(name) {
		return ""
	}
	if s := name.String(); s != "Object" {
		return s
	}
	return ""
}

func keyString(key string) string {
	if isIdentifier(key) {
		return key
	}
	return string(pretty.Quote(key))
}

func isIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		switch {
		case r == '_', r == '$', r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case i > 0 && r >= '0' && r <= '9':
		default:
			return false
		}
	}
	return true
}
