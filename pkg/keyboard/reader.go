package keyboard

import (
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"golang.org/x/term"

	"github.com/phroun/debugconsole/pkg/ringlog"
)

// EscapeTimeout is how long a lone ESC waits for the rest of a sequence.
const EscapeTimeout = 50 * time.Millisecond

// Reader reads raw bytes from an input, decodes them and publishes key
// events on Keys. Keys is closed when the input ends or Stop is called.
type Reader struct {
	mu sync.Mutex

	input    io.Reader
	rawBytes chan []byte
	stopChan chan struct{}
	keys     chan string

	// Terminal handling (only when input is a terminal file)
	terminalFd        int
	originalTermState *term.State
	managesTerminal   bool

	running bool
	stopped bool
	logger  *ringlog.Logger
}

// Options configures the Reader
type Options struct {
	// Input is the source of raw bytes (required)
	Input io.Reader

	// KeyBufferSize is the size of the Keys channel buffer (default: 64)
	KeyBufferSize int

	// ManageTerminal controls whether to put Input in raw mode while
	// running. Only applies if Input is a terminal. Default: true
	ManageTerminal *bool

	// Logger receives trace output (optional)
	Logger *ringlog.Logger
}

// New creates a Reader. Call Start to begin reading.
func New(opts Options) *Reader {
	keyBufSize := opts.KeyBufferSize
	if keyBufSize <= 0 {
		keyBufSize = 64
	}
	manageTerminal := true
	if opts.ManageTerminal != nil {
		manageTerminal = *opts.ManageTerminal
	}

	r := &Reader{
		input:      opts.Input,
		rawBytes:   make(chan []byte, 16),
		stopChan:   make(chan struct{}),
		keys:       make(chan string, keyBufSize),
		terminalFd: -1,
		logger:     opts.Logger,
	}
	if manageTerminal {
		if f, ok := opts.Input.(interface{ Fd() uintptr }); ok {
			fd := int(f.Fd())
			if term.IsTerminal(fd) {
				r.terminalFd = fd
				r.managesTerminal = true
			}
		}
	}
	return r
}

// Keys returns the channel of decoded key events.
func (r *Reader) Keys() <-chan string {
	return r.keys
}

// ManagesTerminal returns true if the reader puts its input in raw mode.
func (r *Reader) ManagesTerminal() bool {
	return r.managesTerminal
}

// Start puts the terminal in raw mode (when managed) and begins reading.
func (r *Reader) Start() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.running {
		return errors.New("keyboard reader already running")
	}
	if r.stopped {
		return errors.New("keyboard reader was stopped")
	}
	if r.input == nil {
		return errors.New("keyboard reader has no input")
	}

	if r.managesTerminal {
		state, err := term.MakeRaw(r.terminalFd)
		if err != nil {
			return fmt.Errorf("failed to enable raw mode: %w", err)
		}
		r.originalTermState = state
		r.trace("terminal set to raw mode")
	}

	r.running = true
	go r.readLoop()
	go r.processLoop()
	return nil
}

// Stop ends decoding and restores the terminal state. A read blocked in
// the input is abandoned.
func (r *Reader) Stop() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.running {
		return nil
	}
	close(r.stopChan)
	r.running = false
	r.stopped = true

	if r.managesTerminal && r.originalTermState != nil {
		if err := term.Restore(r.terminalFd, r.originalTermState); err != nil {
			return fmt.Errorf("failed to restore terminal: %w", err)
		}
		r.originalTermState = nil
		r.trace("terminal restored")
	}
	return nil
}

// readLoop continuously reads raw bytes from input. It closes rawBytes
// when the input ends.
func (r *Reader) readLoop() {
	defer close(r.rawBytes)
	buf := make([]byte, 256)
	for {
		n, err := r.input.Read(buf)
		if n > 0 {
			data := make([]byte, n)
			copy(data, buf[:n])
			select {
			case r.rawBytes <- data:
			case <-r.stopChan:
				return
			}
		}
		if err != nil {
			if !errors.Is(err, io.EOF) {
				r.trace(fmt.Sprintf("read error: %v", err))
			}
			return
		}
	}
}

// processLoop decodes raw bytes into key events. It is the only sender
// on keys and closes it on exit.
func (r *Reader) processLoop() {
	defer close(r.keys)

	var dec Decoder
	escTimeout := time.NewTimer(EscapeTimeout)
	escTimeout.Stop()
	defer escTimeout.Stop()

	for {
		select {
		case <-r.stopChan:
			return

		case data, ok := <-r.rawBytes:
			if !ok {
				r.emit(dec.Flush())
				return
			}
			for _, b := range data {
				if !r.emit(dec.Feed(b)) {
					return
				}
			}
			if dec.Pending() {
				escTimeout.Reset(EscapeTimeout)
			} else {
				escTimeout.Stop()
			}

		case <-escTimeout.C:
			if !r.emit(dec.Flush()) {
				return
			}
		}
	}
}

// emit publishes keys, returning false if the reader was stopped.
func (r *Reader) emit(keys []string) bool {
	for _, k := range keys {
		select {
		case r.keys <- k:
		case <-r.stopChan:
			return false
		}
	}
	return true
}

func (r *Reader) trace(msg string) {
	if r.logger != nil {
		r.logger.TraceCat(ringlog.CatHost, "keyboard: %s", msg)
	}
}
