package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/phroun/debugconsole/pkg/ringlog"
)

func TestLoadMissingFileGivesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "absent.toml")
	c, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if c.Language != LanguageLua || c.Prompt != "> " || c.Title != "Debug" {
		t.Errorf("defaults = %+v", c)
	}
	if c.RingCapacity != DefaultRingCapacity || c.Level() != ringlog.LevelInfo {
		t.Errorf("ring capacity %d, level %v", c.RingCapacity, c.Level())
	}
	if c.GUI.Width != DefaultWidth || c.GUI.Theme != ThemeAuto {
		t.Errorf("gui defaults = %+v", c.GUI)
	}
	if c.Path() != path {
		t.Errorf("Path() = %q, want %q", c.Path(), path)
	}
}

func TestParse(t *testing.T) {
	c, err := Parse(`
language = "js"
prompt = "js> "
banner = "hello"
log_level = "debug"
ring_capacity = 50

[gui]
width = 1200
theme = "dark"
`)
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	if c.Language != LanguageJS || c.Prompt != "js> " || c.Banner != "hello" {
		t.Errorf("config = %+v", c)
	}
	if c.Level() != ringlog.LevelDebug || c.RingCapacity != 50 {
		t.Errorf("level %v, capacity %d", c.Level(), c.RingCapacity)
	}
	if c.GUI.Width != 1200 || c.GUI.Height != DefaultHeight || c.GUI.Theme != ThemeDark {
		t.Errorf("gui = %+v", c.GUI)
	}
	if c.Title != DefaultTitle {
		t.Errorf("Title = %q, want default", c.Title)
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{"unknown key", "colour = 1", "unknown keys: colour"},
		{"unknown nested key", "[gui]\nzoom = 2", "unknown keys: gui.zoom"},
		{"language", `language = "python"`, `language "python"`},
		{"level", `log_level = "loud"`, "log_level"},
		{"capacity", "ring_capacity = -1", "ring_capacity -1"},
		{"theme", "[gui]\ntheme = \"neon\"", "gui.theme"},
		{"syntax", "language = ", "config:"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.text)
			if err == nil {
				t.Fatal("Parse() succeeded, want error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("Parse() error = %q, want it to contain %q", err, tt.want)
			}
		})
	}
}

func TestInitScript(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "boot.lua"), []byte("x = 1"), 0o644); err != nil {
		t.Fatal(err)
	}
	cfgPath := filepath.Join(dir, "config.toml")
	if err := os.WriteFile(cfgPath, []byte("init = \"y = 2\"\ninit_file = \"boot.lua\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	c, err := Load(cfgPath)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	name, src, err := c.InitScript()
	if err != nil {
		t.Fatalf("InitScript() error: %v", err)
	}
	if name != "init" || src != "y = 2\nx = 1" {
		t.Errorf("InitScript() = %q, %q", name, src)
	}

	c.Init = ""
	if name, src, _ := c.InitScript(); name != "boot.lua" || src != "x = 1" {
		t.Errorf("InitScript() without init = %q, %q", name, src)
	}

	c.InitFile = "missing.lua"
	if _, _, err := c.InitScript(); err == nil {
		t.Error("InitScript() with a missing file succeeded")
	}
}

func TestLoadRejectsBadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("language = \"cobol\""), 0o644); err != nil {
		t.Fatal(err)
	}
	_, err := Load(path)
	if err == nil || !strings.Contains(err.Error(), path) {
		t.Errorf("Load() error = %v, want it to name the file", err)
	}
}
