package debugconsole

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"unicode"
)

// calc is a tiny interpreter used by the tests. Expressions are sums of
// integers and variables; statements are "local x = expr" and "x = expr".
// "fail" raises a runtime error, "boom" panics, "wait" blocks until the
// release channel is closed. An unbalanced "(" is incomplete input.
type calc struct {
	mu      sync.Mutex // guards loads only; the interpreter is not shared
	vars    map[string]int
	loads   []string
	release chan struct{}

	evals     atomic.Int32
	active    atomic.Int32
	maxActive atomic.Int32
	closed    bool
}

func newCalc() *calc {
	return &calc{vars: map[string]int{}}
}

type calcChunk func(ctx context.Context) (Value, error)

func (f calcChunk) Eval(ctx context.Context) (Value, error) { return f(ctx) }

func (c *calc) record(s string) {
	c.mu.Lock()
	c.loads = append(c.loads, s)
	c.mu.Unlock()
}

func (c *calc) loaded() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.loads...)
}

func incomplete(name, text string) error {
	if strings.Count(text, "(") > strings.Count(text, ")") {
		return &SyntaxError{Kind: DiagIncomplete, Chunk: name, Message: "unexpected <eof>"}
	}
	return nil
}

func (c *calc) LoadExpression(name, text string) (Chunk, error) {
	c.record("expr " + name + " " + text)
	if err := incomplete(name, text); err != nil {
		return nil, err
	}
	terms, err := parseSum(text)
	if err != nil {
		return nil, &SyntaxError{Chunk: name, Line: 1, Message: "expression: " + err.Error()}
	}
	return calcChunk(func(ctx context.Context) (Value, error) {
		return c.run(ctx, terms)
	}), nil
}

func (c *calc) LoadStatement(name, text string) (Chunk, error) {
	c.record("stmt " + name + " " + text)
	if err := incomplete(name, text); err != nil {
		return nil, err
	}
	lhs, rhs, found := strings.Cut(text, "=")
	target := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(lhs), "local "))
	if !found || !isIdent(target) {
		return nil, &SyntaxError{Chunk: name, Line: 1, Message: "statement: unexpected symbol near '" + strings.TrimSpace(text) + "'"}
	}
	terms, err := parseSum(rhs)
	if err != nil {
		return nil, &SyntaxError{Chunk: name, Line: 1, Message: "statement: " + err.Error()}
	}
	return calcChunk(func(ctx context.Context) (Value, error) {
		v, err := c.run(ctx, terms)
		if err != nil {
			return nil, err
		}
		c.vars[target] = v.(int)
		return nil, nil
	}), nil
}

func (c *calc) run(ctx context.Context, terms []string) (Value, error) {
	c.evals.Add(1)
	n := c.active.Add(1)
	defer c.active.Add(-1)
	for {
		peak := c.maxActive.Load()
		if n <= peak || c.maxActive.CompareAndSwap(peak, n) {
			break
		}
	}

	sum := 0
	for _, t := range terms {
		switch {
		case t == "fail":
			return nil, &RuntimeError{Message: "fail called", Traceback: "stack traceback:\n\t[G]: in fail", Err: errors.New("script failure")}
		case t == "boom":
			panic("boom")
		case t == "wait":
			select {
			case <-c.release:
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		case isIdent(t):
			v, ok := c.vars[t]
			if !ok {
				return nil, &RuntimeError{Message: "undefined variable " + t}
			}
			sum += v
		default:
			v, _ := strconv.Atoi(t)
			sum += v
		}
	}
	return sum, nil
}

func (c *calc) Pretty(v Value) string {
	if v == nil {
		return "nil"
	}
	return fmt.Sprint(v)
}

func (c *calc) Close() error {
	c.closed = true
	return nil
}

func parseSum(text string) ([]string, error) {
	text = strings.ReplaceAll(strings.ReplaceAll(text, "(", ""), ")", "")
	parts := strings.Split(text, "+")
	terms := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if _, err := strconv.Atoi(p); err != nil && !isIdent(p) {
			return nil, fmt.Errorf("unexpected symbol near '%s'", p)
		}
		terms = append(terms, p)
	}
	return terms, nil
}

func isIdent(s string) bool {
	if s == "" || s == "local" {
		return false
	}
	for i, r := range s {
		if !(unicode.IsLetter(r) || r == '_' || (i > 0 && unicode.IsDigit(r))) {
			return false
		}
	}
	return true
}
