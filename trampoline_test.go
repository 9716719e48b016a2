package debugconsole

import (
	"context"
	"strings"
	"testing"
	"time"
)

func TestEvaluate(t *testing.T) {
	tests := []struct {
		name string
		line string
		want string
	}{
		{"expression", "1 + 2", "3"},
		{"statement", "local x = 5", "nil"},
		{"syntax error", "x = = =", "syntax error in =repl at line 1: statement: unexpected symbol near '= ='"},
		{"runtime error", "fail", "runtime error: fail called\ncaused by: script failure\nstack traceback:\n\t[G]: in fail"},
		{"incomplete is concrete", "(1 + 2", "syntax error in =repl: unexpected <eof>"},
		{"panic", "boom", "runtime panic: boom"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := newCalc()
			out := Await(Evaluate(context.Background(), in, tt.line))
			if out.Text != tt.want {
				t.Errorf("Expected %q, got %q", tt.want, out.Text)
			}
			if out.Interp != in {
				t.Error("Interpreter was not handed back")
			}
		})
	}
}

func TestEvaluateExecutesUnderEvalName(t *testing.T) {
	in := newCalc()
	Await(Evaluate(context.Background(), in, "1 + 2"))
	loads := in.loaded()
	if last := loads[len(loads)-1]; last != "expr repl 1 + 2" {
		t.Errorf("Expected final load under chunk name repl, got %q", last)
	}
}

func TestEvaluateKeepsState(t *testing.T) {
	var in Interpreter = newCalc()
	for _, line := range []string{"local x = 5", "y = x + 1"} {
		in = Await(Evaluate(context.Background(), in, line)).Interp
	}
	out := Await(Evaluate(context.Background(), in, "x + y"))
	if out.Text != "11" {
		t.Errorf("Expected 11, got %q", out.Text)
	}
}

func TestEvaluateDoesNotBlockCaller(t *testing.T) {
	in := newCalc()
	in.release = make(chan struct{})
	ch := Evaluate(context.Background(), in, "wait + 1")

	select {
	case out := <-ch:
		t.Fatalf("Outcome delivered before release: %+v", out)
	case <-time.After(20 * time.Millisecond):
	}
	close(in.release)

	select {
	case out := <-ch:
		if out.Text != "1" {
			t.Errorf("Expected 1, got %q", out.Text)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Evaluation never completed")
	}
	if _, ok := <-ch; ok {
		t.Error("Channel should be closed after the outcome")
	}
}

func TestAwaitPanicsWithoutOutcome(t *testing.T) {
	ch := make(chan Outcome)
	close(ch)
	defer func() {
		r := recover()
		if r == nil || !strings.Contains(r.(string), "without delivering") {
			t.Errorf("Expected contract violation panic, got %v", r)
		}
	}()
	Await(ch)
}
