// Package config loads the debug console's TOML configuration file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/phroun/debugconsole/pkg/ringlog"
)

// Language selects the script runtime.
type Language string

const (
	LanguageLua Language = "lua"
	LanguageJS  Language = "js"
)

// ThemeMode represents the GUI theme setting
type ThemeMode string

const (
	ThemeAuto  ThemeMode = "auto"  // Follow OS preference
	ThemeDark  ThemeMode = "dark"  // Force dark theme
	ThemeLight ThemeMode = "light" // Force light theme
)

// Default settings
const (
	DefaultPrompt       = "> "
	DefaultTitle        = "Debug"
	DefaultLogLevel     = "info"
	DefaultRingCapacity = 1024
	DefaultWidth        = 900
	DefaultHeight       = 600
)

// Config is the contents of config.toml. Zero values mean "use the
// default"; Load fills them in.
type Config struct {
	Language     Language `toml:"language"`
	Prompt       string   `toml:"prompt"`
	Title        string   `toml:"title"`
	Banner       string   `toml:"banner"`
	LogLevel     string   `toml:"log_level"`
	RingCapacity int      `toml:"ring_capacity"`

	// Init is script source run before the first prompt. InitFile names a
	// file to run after it, relative to the config file's directory.
	Init     string `toml:"init"`
	InitFile string `toml:"init_file"`

	GUI GUI `toml:"gui"`

	path string
}

// GUI holds settings used only by the windowed host.
type GUI struct {
	Width    float32   `toml:"width"`
	Height   float32   `toml:"height"`
	Theme    ThemeMode `toml:"theme"`
	FontSize float32   `toml:"font_size"`
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	c := &Config{}
	c.applyDefaults()
	return c
}

// DefaultPath returns <user config dir>/debugconsole/config.toml.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("locating config directory: %w", err)
	}
	return filepath.Join(dir, "debugconsole", "config.toml"), nil
}

// Load reads path. A missing file yields the defaults; unknown keys and
// invalid values are errors.
func Load(path string) (*Config, error) {
	c := &Config{path: path}
	md, err := toml.DecodeFile(path, c)
	if errors.Is(err, fs.ErrNotExist) {
		d := Default()
		d.path = path
		return d, nil
	}
	if err := c.finish(md, err); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return c, nil
}

// Parse decodes TOML text with the same rules as Load.
func Parse(text string) (*Config, error) {
	c := &Config{}
	md, err := toml.Decode(text, c)
	if err := c.finish(md, err); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return c, nil
}

func (c *Config) finish(md toml.MetaData, err error) error {
	if err != nil {
		return err
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return fmt.Errorf("unknown keys: %s", strings.Join(keys, ", "))
	}
	c.applyDefaults()
	return c.Validate()
}

func (c *Config) applyDefaults() {
	if c.Language == "" {
		c.Language = LanguageLua
	}
	if c.Prompt == "" {
		c.Prompt = DefaultPrompt
	}
	if c.Title == "" {
		c.Title = DefaultTitle
	}
	if c.LogLevel == "" {
		c.LogLevel = DefaultLogLevel
	}
	if c.RingCapacity == 0 {
		c.RingCapacity = DefaultRingCapacity
	}
	if c.GUI.Width == 0 {
		c.GUI.Width = DefaultWidth
	}
	if c.GUI.Height == 0 {
		c.GUI.Height = DefaultHeight
	}
	if c.GUI.Theme == "" {
		c.GUI.Theme = ThemeAuto
	}
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	switch c.Language {
	case LanguageLua, LanguageJS:
	default:
		return fmt.Errorf("language %q: want %q or %q", c.Language, LanguageLua, LanguageJS)
	}
	if _, err := ringlog.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("log_level: %w", err)
	}
	if c.RingCapacity < 0 {
		return fmt.Errorf("ring_capacity %d: must not be negative", c.RingCapacity)
	}
	if c.GUI.Width < 0 || c.GUI.Height < 0 || c.GUI.FontSize < 0 {
		return errors.New("gui: sizes must not be negative")
	}
	switch c.GUI.Theme {
	case ThemeAuto, ThemeDark, ThemeLight:
	default:
		return fmt.Errorf("gui.theme %q: want auto, dark or light", c.GUI.Theme)
	}
	return nil
}

// Level returns the parsed log level.
func (c *Config) Level() ringlog.Level {
	level, err := ringlog.ParseLevel(c.LogLevel)
	if err != nil {
		return ringlog.LevelInfo
	}
	return level
}

// InitScript returns the init source followed by the init file's contents,
// with a name for diagnostics. Both are empty when nothing is configured.
func (c *Config) InitScript() (name, src string, err error) {
	if c.InitFile == "" {
		return "init", c.Init, nil
	}
	path := c.InitFile
	if !filepath.IsAbs(path) && c.path != "" {
		path = filepath.Join(filepath.Dir(c.path), path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", "", fmt.Errorf("init_file: %w", err)
	}
	if c.Init == "" {
		return filepath.Base(path), string(data), nil
	}
	return "init", c.Init + "\n" + string(data), nil
}

// Path returns the file the configuration was loaded from, if any.
func (c *Config) Path() string {
	return c.path
}
