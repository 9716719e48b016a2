// debugconsole-gui - the debug console in a window
// The console draws into a fyne-io/terminal widget connected through pipes.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/widget"
	"github.com/fyne-io/terminal"
	"github.com/sqweek/dialog"

	"github.com/phroun/debugconsole"
	"github.com/phroun/debugconsole/pkg/config"
	"github.com/phroun/debugconsole/pkg/host"
	"github.com/phroun/debugconsole/pkg/keyboard"
	"github.com/phroun/debugconsole/pkg/lineedit"
	"github.com/phroun/debugconsole/pkg/ringlog"
	"github.com/phroun/debugconsole/pkg/surface"
)

func main() {
	configFlag := flag.String("config", "", "Configuration file")
	langFlag := flag.String("lang", "", "Script language (lua or js)")
	heartbeatFlag := flag.Duration("heartbeat", 0, "Heartbeat log interval")
	flag.Parse()

	cfg, err := loadConfig(*configFlag, *langFlag)
	if err != nil {
		fatal(err)
	}

	ring := ringlog.New(cfg.RingCapacity)
	logger := ringlog.NewLogger(ring, cfg.Level())
	logger.SetMirror(os.Stderr)
	slog.SetDefault(slog.New(ringlog.NewHandler(logger)))

	// Create the Fyne application
	fyneApp := app.New()
	fyneApp.Settings().SetTheme(newConsoleTheme(cfg.GUI.Theme, cfg.GUI.FontSize))
	mainWindow := fyneApp.NewWindow(cfg.Title)
	mainWindow.Resize(fyne.NewSize(cfg.GUI.Width, cfg.GUI.Height))

	setTitle := func(title string) {
		fyne.Do(func() { mainWindow.SetTitle(title) })
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	rt, err := host.NewRuntime(ctx, cfg, logger, host.Bindings{SetTitle: setTitle})
	if err != nil {
		fatal(err)
	}

	// Create IO pipes for the console
	// RunWithConnection expects: in = where to write keyboard input, out = what to display
	stdinReader, stdinWriter := io.Pipe()
	stdoutReader, stdoutWriter := io.Pipe()

	term := terminal.New()
	mainWindow.SetContent(newSizedWidget(term, fyne.NewSize(cfg.GUI.Width, cfg.GUI.Height)))
	go func() {
		if err := term.RunWithConnection(stdinWriter, stdoutReader); err != nil {
			logger.ErrorCat(ringlog.CatHost, "terminal error: %v", err)
		}
	}()

	manage := false
	keys := keyboard.New(keyboard.Options{Input: stdinReader, ManageTerminal: &manage, Logger: logger})
	if err := keys.Start(); err != nil {
		rt.Close()
		fatal(err)
	}

	surf := &titleSurface{Surface: surface.NewANSI(stdoutWriter, true), setTitle: setTitle}
	console, err := debugconsole.New(rt, surf, lineedit.New(surf, keys.Keys()), debugconsole.Options{
		Title:  cfg.Title,
		Prompt: cfg.Prompt,
		Banner: cfg.Banner,
		Logs:   ring,
		Logger: logger,
	})
	if err != nil {
		rt.Close()
		fatal(err)
	}

	go host.Heartbeat(ctx, logger, *heartbeatFlag)
	go func() {
		err := console.Run(ctx)
		if serr := keys.Stop(); serr != nil {
			logger.ErrorCat(ringlog.CatHost, "%v", serr)
		}
		if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, context.Canceled) {
			logger.ErrorCat(ringlog.CatHost, "%v", err)
		}
		_ = stdoutWriter.Close()
		fyne.Do(fyneApp.Quit)
	}()

	// Closing the window cancels an idle console; Run returns and quits.
	mainWindow.SetCloseIntercept(func() {
		cancel()
		_ = stdinWriter.Close()
		mainWindow.Close()
	})

	// Run the Fyne event loop (blocking)
	mainWindow.ShowAndRun()
}

// fatal reports a startup failure in a native dialog and exits.
func fatal(err error) {
	fmt.Fprintf(os.Stderr, "debugconsole-gui: %v\n", err)
	dialog.Message("%s", err).Title("Debug console").Error()
	os.Exit(1)
}

func loadConfig(path, lang string) (*config.Config, error) {
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
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

// titleSurface sends title changes to the window instead of the terminal
// widget, which has no title bar of its own.
type titleSurface struct {
	surface.Surface
	setTitle func(string)
}

func (s *titleSurface) Render(changes []surface.Change) error {
	rest := changes[:0:0]
	for _, c := range changes {
		if t, ok := c.(surface.Title); ok {
			s.setTitle(string(t))
			continue
		}
		rest = append(rest, c)
	}
	if len(rest) == 0 {
		return nil
	}
	return s.Surface.Render(rest)
}

// sizedWidget wraps a canvas object and enforces a minimum size
type sizedWidget struct {
	widget.BaseWidget
	wrapped fyne.CanvasObject
	minSize fyne.Size
}

func newSizedWidget(wrapped fyne.CanvasObject, minSize fyne.Size) *sizedWidget {
	s := &sizedWidget{
		wrapped: wrapped,
		minSize: minSize,
	}
	s.ExtendBaseWidget(s)
	return s
}

func (s *sizedWidget) CreateRenderer() fyne.WidgetRenderer {
	return &sizedWidgetRenderer{widget: s}
}

func (s *sizedWidget) MinSize() fyne.Size {
	return s.minSize
}

type sizedWidgetRenderer struct {
	widget *sizedWidget
}

func (r *sizedWidgetRenderer) Layout(size fyne.Size) {
	r.widget.wrapped.Resize(size)
	r.widget.wrapped.Move(fyne.NewPos(0, 0))
}

func (r *sizedWidgetRenderer) MinSize() fyne.Size {
	return r.widget.minSize
}

func (r *sizedWidgetRenderer) Refresh() {
	r.widget.wrapped.Refresh()
}

func (r *sizedWidgetRenderer) Objects() []fyne.CanvasObject {
	return []fyne.CanvasObject{r.widget.wrapped}
}

func (r *sizedWidgetRenderer) Destroy() {}
