package debugconsole

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync/atomic"

	"github.com/phroun/debugconsole/pkg/lineedit"
	"github.com/phroun/debugconsole/pkg/ringlog"
	"github.com/phroun/debugconsole/pkg/surface"
)

// LineReader solicits one line of input. ok is false when the user
// cancelled. lineedit.Editor implements it.
type LineReader interface {
	ReadLine(ctx context.Context, prompt string, host lineedit.Host) (line string, ok bool, err error)
}

// State is the console's position in its lifecycle.
type State int32

const (
	StateIdle       State = iota // prompting or ready to prompt
	StateEvaluating              // a line is running on the worker
	StateClosed                  // Run has returned
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateEvaluating:
		return "evaluating"
	case StateClosed:
		return "closed"
	}
	return fmt.Sprintf("State(%d)", int32(s))
}

// Options configures a Console. Zero values select the defaults.
type Options struct {
	Title  string // window title, default "Debug"
	Prompt string // default "> "
	Banner string // printed once at startup, optional

	Logs    LogSource         // default ringlog.Default
	Logger  *ringlog.Logger  // default writes into ringlog.Default at info
	History lineedit.History // default a fresh lineedit.BasicHistory
}

// Console is the read-eval-print loop. Run drives it from one goroutine,
// the UI goroutine; only State may be called from others.
type Console struct {
	interp Interpreter // nil while an evaluation holds it
	surf   surface.Surface
	lines  LineReader
	opts   Options

	history lineedit.History
	logger  *ringlog.Logger
	tail    logTail
	state   atomic.Int32
	ran     bool
}

// New creates a console around an initialized interpreter. The console
// takes ownership of interp and closes it (if it is an io.Closer) when Run
// returns.
func New(interp Interpreter, surf surface.Surface, lines LineReader, opts Options) (*Console, error) {
	switch {
	case interp == nil:
		return nil, errors.New("debug console: no interpreter")
	case surf == nil:
		return nil, errors.New("debug console: no surface")
	case lines == nil:
		return nil, errors.New("debug console: no line reader")
	}
	if opts.Title == "" {
		opts.Title = "Debug"
	}
	if opts.Prompt == "" {
		opts.Prompt = "> "
	}
	if opts.Logs == nil {
		opts.Logs = ringlog.Default
	}
	if opts.Logger == nil {
		opts.Logger = ringlog.NewLogger(ringlog.Default, ringlog.LevelInfo)
	}
	if opts.History == nil {
		opts.History = &lineedit.BasicHistory{}
	}
	return &Console{
		interp:  interp,
		surf:    surf,
		lines:   lines,
		opts:    opts,
		history: opts.History,
		logger:  opts.Logger,
	}, nil
}

// State reports what the console is doing. Safe from any goroutine.
func (c *Console) State() State {
	return State(c.state.Load())
}

func (c *Console) setState(s State) {
	c.state.Store(int32(s))
}

// History returns the lines submitted so far.
func (c *Console) History() lineedit.History {
	return c.history
}

// Run executes the loop until the user cancels on an empty line (nil
// error), ctx is cancelled while idle (ctx.Err()), or the surface or input
// fails (that error). Evaluation errors never end the loop. Run may be
// called once.
func (c *Console) Run(ctx context.Context) error {
	if c.ran {
		return errors.New("debug console: already run")
	}
	c.ran = true
	defer c.shutdown()

	if err := c.render(surface.Title(c.opts.Title)); err != nil {
		return err
	}
	if c.opts.Banner != "" {
		if err := c.render(surface.Reset{}, surface.Text(crlf(c.opts.Banner)+"\r\n")); err != nil {
			return err
		}
	}
	c.logger.InfoCat(ringlog.CatConsole, "debug console ready")

	host := &replHost{c: c}
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		if changes := c.tail.poll(c.opts.Logs); len(changes) > 0 {
			if err := c.render(changes...); err != nil {
				return err
			}
		}

		line, ok, err := c.lines.ReadLine(ctx, c.opts.Prompt, host)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return fmt.Errorf("debug console: read line: %w", err)
		}
		if !ok {
			c.logger.InfoCat(ringlog.CatConsole, "debug console closed")
			return nil
		}
		if line == "" {
			continue
		}
		c.history.Add(line)

		if err := c.evaluate(ctx, line); err != nil {
			return err
		}
	}
}

// evaluate hands the interpreter to the trampoline and waits for it to
// come back. The evaluation itself is never cancelled.
func (c *Console) evaluate(ctx context.Context, line string) error {
	in := c.interp
	c.interp = nil
	c.setState(StateEvaluating)
	c.logger.DebugCat(ringlog.CatEval, "evaluating %q", line)

	out := Await(Evaluate(context.WithoutCancel(ctx), in, line))

	c.interp = out.Interp
	c.setState(StateIdle)
	return c.render(surface.Reset{}, surface.Text(crlf(out.Text)+"\r\n"))
}

func (c *Console) render(changes ...surface.Change) error {
	if err := c.surf.Render(changes); err != nil {
		return fmt.Errorf("debug console: render: %w", err)
	}
	return nil
}

func (c *Console) shutdown() {
	c.setState(StateClosed)
	if closer, ok := c.interp.(io.Closer); ok {
		if err := closer.Close(); err != nil {
			c.logger.WarnCat(ringlog.CatConsole, "closing interpreter: %v", err)
		}
	}
	c.interp = nil
}

// replHost connects the line editor to the console: shared history,
// Escape on an empty line cancels, and a live diagnostic preview.
type replHost struct {
	c *Console
}

func (h *replHost) History() lineedit.History {
	return h.c.history
}

func (h *replHost) ResolveAction(key, line string, cursor int) (lineedit.Action, bool) {
	if key == "Escape" && line == "" {
		return lineedit.Cancel, true
	}
	return lineedit.NoAction, false
}

func (h *replHost) RenderPreview(line string) []surface.Change {
	if line == "" || h.c.interp == nil {
		return nil
	}
	if _, err := Classify(h.c.interp, line); err != nil {
		return []surface.Change{surface.Text(crlf(FormatError(err)))}
	}
	return nil
}
