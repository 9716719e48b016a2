package host

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/phroun/debugconsole"
	"github.com/phroun/debugconsole/pkg/config"
	"github.com/phroun/debugconsole/pkg/ringlog"
)

func evalLine(t *testing.T, in debugconsole.Interpreter, line string) string {
	t.Helper()
	return debugconsole.Await(debugconsole.Evaluate(context.Background(), in, line)).Text
}

func TestNewRuntimeRunsInit(t *testing.T) {
	tests := []struct {
		language config.Language
		init     string
		check    string
		want     string
	}{
		{config.LanguageLua, "answer = 6 * 7", "answer", "42"},
		{config.LanguageJS, "var answer = 6 * 7", "answer", "42"},
	}
	for _, tt := range tests {
		t.Run(string(tt.language), func(t *testing.T) {
			cfg := config.Default()
			cfg.Language = tt.language
			cfg.Init = tt.init
			logger := ringlog.NewLogger(ringlog.New(16), ringlog.LevelInfo)

			rt, err := NewRuntime(context.Background(), cfg, logger, Bindings{})
			if err != nil {
				t.Fatalf("NewRuntime() error: %v", err)
			}
			defer rt.Close()
			if got := evalLine(t, rt, tt.check); got != tt.want {
				t.Errorf("%s = %q, want %q", tt.check, got, tt.want)
			}
			entries := logger.Ring().Entries()
			if len(entries) != 1 || entries[0].Message != "running init script init" {
				t.Errorf("log entries = %+v", entries)
			}
		})
	}
}

func TestNewRuntimeInitFailure(t *testing.T) {
	cfg := config.Default()
	cfg.Init = "error('boot failed')"
	_, err := NewRuntime(context.Background(), cfg, ringlog.NewLogger(ringlog.New(4), ringlog.LevelInfo), Bindings{})
	if err == nil || !strings.Contains(err.Error(), "boot failed") {
		t.Errorf("NewRuntime() error = %v, want init failure", err)
	}
}

func TestBindings(t *testing.T) {
	for _, tc := range []struct {
		language config.Language
		call     string
	}{
		{config.LanguageLua, "window.set_title('from lua')"},
		{config.LanguageJS, "window.setTitle('from js')"},
	} {
		t.Run(string(tc.language), func(t *testing.T) {
			var title string
			cfg := config.Default()
			cfg.Language = tc.language
			rt, err := NewRuntime(context.Background(), cfg, ringlog.NewLogger(ringlog.New(4), ringlog.LevelInfo),
				Bindings{SetTitle: func(s string) { title = s }})
			if err != nil {
				t.Fatalf("NewRuntime() error: %v", err)
			}
			defer rt.Close()
			evalLine(t, rt, tc.call)
			if !strings.HasPrefix(title, "from ") {
				t.Errorf("title = %q", title)
			}
		})
	}
}

func TestHeartbeat(t *testing.T) {
	logger := ringlog.NewLogger(ringlog.New(16), ringlog.LevelInfo)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		Heartbeat(ctx, logger, time.Millisecond)
		close(done)
	}()

	deadline := time.After(2 * time.Second)
	for logger.Ring().Len() < 2 {
		select {
		case <-deadline:
			t.Fatal("no heartbeats logged")
		case <-time.After(time.Millisecond):
		}
	}
	cancel()
	<-done
	if e := logger.Ring().Entries()[0]; e.Message != "heartbeat 1" || e.Target != "host" {
		t.Errorf("first entry = %+v", e)
	}
}
