package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/term"

	"github.com/phroun/debugconsole"
	"github.com/phroun/debugconsole/pkg/config"
	"github.com/phroun/debugconsole/pkg/host"
	"github.com/phroun/debugconsole/pkg/keyboard"
	"github.com/phroun/debugconsole/pkg/lineedit"
	"github.com/phroun/debugconsole/pkg/ringlog"
	"github.com/phroun/debugconsole/pkg/surface"
)

var version = "dev" // set via -ldflags at build time

// ANSI color codes for terminal output
const (
	colorYellow = "\x1b[93m"
	colorReset  = "\x1b[0m"
)

// errorPrintf prints an error message to stderr, using color if supported
func errorPrintf(format string, args ...interface{}) {
	message := fmt.Sprintf(format, args...)
	if surface.DetectColor(os.Stderr) {
		fmt.Fprintf(os.Stderr, "%s%s%s", colorYellow, message, colorReset)
	} else {
		fmt.Fprint(os.Stderr, message)
	}
}

func showUsage() {
	usage := `Usage: debugconsole [options]

Interactive debug console over a Lua or JavaScript runtime, with a live
tail of the application log.

Options:
  -config FILE        Configuration file (default: <config dir>/debugconsole/config.toml)
  -lang lua|js        Script language, overrides the config file
  -level LEVEL        Minimum log level: trace, debug, info, warn, error
  -heartbeat DUR      Log a heartbeat entry at this interval (e.g. 2s)
  -version            Print the version and exit

Keys:
  Enter               Evaluate the line
  Up/Down             History
  Ctrl-C, Escape      Leave (on an empty line)
`
	fmt.Fprint(os.Stderr, usage)
}

func main() {
	configFlag := flag.String("config", "", "Configuration file")
	langFlag := flag.String("lang", "", "Script language (lua or js)")
	levelFlag := flag.String("level", "", "Minimum log level")
	heartbeatFlag := flag.Duration("heartbeat", 0, "Heartbeat log interval")
	versionFlag := flag.Bool("version", false, "Print the version")
	flag.Usage = showUsage
	flag.Parse()

	if *versionFlag {
		fmt.Printf("debugconsole %s\n", version)
		return
	}
	os.Exit(run(*configFlag, *langFlag, *levelFlag, *heartbeatFlag))
}

func run(configPath, lang, level string, heartbeat time.Duration) int {
	cfg, err := loadConfig(configPath, lang, level)
	if err != nil {
		errorPrintf("%v\n", err)
		return 2
	}

	ring := ringlog.New(cfg.RingCapacity)
	logger := ringlog.NewLogger(ring, cfg.Level())
	slog.SetDefault(slog.New(ringlog.NewHandler(logger)))
	if cfg.Path() != "" {
		logger.DebugCat(ringlog.CatConfig, "configuration from %s", cfg.Path())
	}

	if !term.IsTerminal(int(os.Stdin.Fd())) {
		errorPrintf("debugconsole requires a terminal\n")
		return 1
	}

	// Interrupt and terminate signals end the console through ctx; while
	// idle the line editor returns immediately.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	rt, err := host.NewRuntime(ctx, cfg, logger, host.Bindings{})
	if err != nil {
		errorPrintf("%v\n", err)
		return 1
	}

	keys := keyboard.New(keyboard.Options{Input: os.Stdin, Logger: logger})
	if err := keys.Start(); err != nil {
		rt.Close()
		errorPrintf("%v\n", err)
		return 1
	}

	surf := surface.NewANSI(os.Stdout, surface.DetectColor(os.Stdout))
	console, err := debugconsole.New(rt, surf, lineedit.New(surf, keys.Keys()), debugconsole.Options{
		Title:  cfg.Title,
		Prompt: cfg.Prompt,
		Banner: cfg.Banner,
		Logs:   ring,
		Logger: logger,
	})
	if err != nil {
		rt.Close()
		stopKeys(keys)
		errorPrintf("%v\n", err)
		return 1
	}

	go host.Heartbeat(ctx, logger, heartbeat)

	err = console.Run(ctx)
	if !stopKeys(keys) && err == nil {
		return 1
	}
	switch {
	case err == nil, errors.Is(err, io.EOF):
		return 0
	case errors.Is(err, context.Canceled):
		return 130 // Standard exit code for SIGINT
	default:
		errorPrintf("%v\n", err)
		return 1
	}
}

// stopKeys stops the keyboard reader and restores the terminal, reporting
// a failure on stderr.
func stopKeys(keys *keyboard.Reader) bool {
	if err := keys.Stop(); err != nil {
		errorPrintf("%v\n", err)
		return false
	}
	return true
}

// loadConfig reads the config file and applies command-line overrides.
func loadConfig(path, lang, level string) (*config.Config, error) {
	if path == "" {
		p, err := config.DefaultPath()
		if err != nil {
			return nil, err
		}
		path = p
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if lang != "" {
		cfg.Language = config.Language(lang)
	}
	if level != "" {
		cfg.LogLevel = level
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
