package interact

import (
	"io"
	"log/slog"
	"os"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/wagiedev/expectr-go/internal/config"
	"github.com/wagiedev/expectr-go/internal/errors"
	"github.com/wagiedev/expectr-go/internal/transport"
)

// DefaultPollInterval bounds each keyboard read so Leave is noticed.
const DefaultPollInterval = time.Second

// Control bytes sent in place of intercepted signals.
const (
	ctrlC = 0x03
	ctrlZ = 0x1a
)

// Options configures one interact session.
type Options struct {
	// Blocking makes Enter return only after interaction ends.
	Blocking bool

	// PollInterval bounds each keyboard read. Zero means DefaultPollInterval.
	PollInterval time.Duration
}

// Handle tracks a running interaction.
type Handle struct {
	done chan struct{}
	err  error
}

// Wait blocks until the interaction ends and returns the error, if any,
// from restoring the terminal.
func (h *Handle) Wait() error {
	<-h.done

	return h.err
}

// Done is closed when the interaction ends.
func (h *Handle) Done() <-chan struct{} {
	return h.done
}

// Controller is the Idle/Interacting state machine of one session.
type Controller struct {
	log       *slog.Logger
	ops       *Ops
	transport config.Transport
	input     io.Reader
	fd        int

	readerOnce sync.Once
	reader     transport.BoundedReader

	mu          sync.Mutex
	interacting bool
	leaving     atomic.Bool
	current     *Handle
}

// New creates a controller that forwards input to tr. When input is a
// terminal its mode is changed while interacting. A nil ops means DefaultOps.
func New(log *slog.Logger, tr config.Transport, input io.Reader, ops *Ops) *Controller {
	if ops == nil {
		ops = DefaultOps()
	}

	fd := -1
	if f, ok := input.(*os.File); ok {
		fd = int(f.Fd())
	}

	return &Controller{
		log:       log.With("component", "interact"),
		ops:       ops,
		transport: tr,
		input:     input,
		fd:        fd,
	}
}

// Enter starts interacting. It fails with a ProcessError when the process is
// gone or an interaction is already running.
func (c *Controller) Enter(opts Options) (*Handle, error) {
	if !c.transport.Alive() {
		return nil, &errors.ProcessError{Pid: c.transport.Pid(), Op: "interact", Err: errors.ErrProcessGone}
	}

	c.mu.Lock()

	if c.interacting {
		c.mu.Unlock()

		return nil, &errors.ProcessError{Pid: c.transport.Pid(), Op: "interact", Err: errors.ErrAlreadyInteracting}
	}

	env, err := acquire(c.ops, c.fd)
	if err != nil {
		c.mu.Unlock()

		return nil, err
	}

	c.interacting = true
	c.leaving.Store(false)

	h := &Handle{done: make(chan struct{})}
	c.current = h
	c.mu.Unlock()

	poll := opts.PollInterval
	if poll <= 0 {
		poll = DefaultPollInterval
	}

	c.log.Info("Entered interact mode", "terminal", env.terminal())

	go c.run(env, h, poll)

	if opts.Blocking {
		return h, h.Wait()
	}

	return h, nil
}

// Leave asks the forwarder to stop. It is observed within one poll interval.
func (c *Controller) Leave() {
	c.leaving.Store(true)
}

// Interacting reports whether an interaction is running and Leave has not
// been requested.
func (c *Controller) Interacting() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.interacting && !c.leaving.Load()
}

// Current returns the handle of the running interaction, or nil.
func (c *Controller) Current() *Handle {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.interacting {
		return nil
	}

	return c.current
}

func (c *Controller) run(env *environment, h *Handle, poll time.Duration) {
	stop := make(chan struct{})

	var wg sync.WaitGroup

	wg.Go(func() { c.handleSignals(env, stop) })

	c.forward(poll)

	close(stop)
	wg.Wait()

	h.err = env.release()
	if h.err != nil {
		c.log.Warn("Failed to restore terminal", "error", h.err)
	}

	c.mu.Lock()
	c.interacting = false
	c.current = nil
	c.mu.Unlock()

	c.log.Info("Left interact mode")
	close(h.done)
}

// forward copies keyboard input to the process one byte at a time until
// Leave is called, the process goes away or the input ends.
func (c *Controller) forward(poll time.Duration) {
	c.readerOnce.Do(func() {
		c.reader = transport.NewBoundedReader(c.input, 1)
	})

	b := make([]byte, 1)

	for !c.leaving.Load() && c.transport.Alive() {
		n, err := c.reader.Read(b, poll)
		if n > 0 && !c.leaving.Load() {
			if _, werr := c.transport.Write(b[:n]); werr != nil {
				c.log.Debug("Forwarding stopped", "error", werr)

				return
			}
		}

		if err != nil {
			c.log.Debug("Keyboard input ended", "error", err)

			return
		}
	}
}

func (c *Controller) handleSignals(env *environment, stop <-chan struct{}) {
	for {
		select {
		case <-stop:
			return
		case sig := <-env.signals:
			c.handleSignal(sig)
		}
	}
}

func (c *Controller) handleSignal(sig os.Signal) {
	switch sig {
	case syscall.SIGINT:
		c.send(ctrlC)
	case syscall.SIGTSTP:
		c.send(ctrlZ)
	case syscall.SIGWINCH:
		c.resize()
	}
}

func (c *Controller) send(b byte) {
	if _, err := c.transport.Write([]byte{b}); err != nil {
		c.log.Debug("Failed to forward control byte", "byte", b, "error", err)
	}
}

// resize copies the real terminal's size to the process. Best effort.
func (c *Controller) resize() {
	resizer, ok := c.transport.(config.Resizer)
	if !ok || c.fd < 0 {
		return
	}

	ws, err := c.ops.TerminalSize(c.fd)
	if err != nil {
		c.log.Warn("Failed to read terminal size", "error", err)

		return
	}

	if err := resizer.SetWindowSize(ws); err != nil {
		c.log.Warn("Failed to resize process terminal", "error", err)

		return
	}

	c.log.Debug("Propagated window size", "rows", ws.Rows, "cols", ws.Cols)
}
