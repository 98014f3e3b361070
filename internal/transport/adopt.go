package transport

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"
	"syscall"
	"time"

	"github.com/creack/pty"
	"golang.org/x/sys/unix"
	"golang.org/x/term"

	"github.com/wagiedev/expectr-go/internal/config"
	"github.com/wagiedev/expectr-go/internal/errors"
)

// AdoptedTransport implements Transport over handles to a process the caller
// started. It spawns nothing. A pid of 0 means the process is untracked:
// liveness then follows the output handle alone and signals are unsupported.
type AdoptedTransport struct {
	*Liveness

	log     *slog.Logger
	options *config.Options
	input   io.Writer
	output  io.Reader
	pid     int
	reader  BoundedReader

	mu        sync.Mutex // Protects input writes
	closeOnce sync.Once
}

// Compile-time verification that AdoptedTransport implements the Transport and Resizer interfaces.
var (
	_ config.Transport = (*AdoptedTransport)(nil)
	_ config.Resizer   = (*AdoptedTransport)(nil)
)

// NewAdoptedTransport wraps input (the process's stdin side) and output
// (its stdout side). Arguments are checked by Validate before Start.
func NewAdoptedTransport(
	log *slog.Logger,
	input io.Writer,
	output io.Reader,
	pid int,
	options *config.Options,
) *AdoptedTransport {
	return &AdoptedTransport{
		Liveness: NewLiveness(),
		log:      log.With("component", "adopted_transport"),
		options:  options,
		input:    input,
		output:   output,
		pid:      pid,
	}
}

// Validate reports missing handles or a negative pid as an ArgumentError.
func (t *AdoptedTransport) Validate() error {
	switch {
	case t.input == nil:
		return &errors.ArgumentError{Argument: "input", Reason: "must not be nil"}
	case t.output == nil:
		return &errors.ArgumentError{Argument: "output", Reason: "must not be nil"}
	case t.pid < 0:
		return &errors.ArgumentError{Argument: "pid", Reason: "must not be negative"}
	}

	return nil
}

// Start begins reading from the output handle.
func (t *AdoptedTransport) Start(_ context.Context) error {
	if err := t.Validate(); err != nil {
		return err
	}

	t.reader = NewBoundedReader(t.output, t.options.BufferSize)
	t.log.Info("Adopted process handles", "pid", t.pid)

	return nil
}

// Read waits at most wait for output from the adopted process.
func (t *AdoptedTransport) Read(p []byte, wait time.Duration) (int, error) {
	if t.reader == nil {
		return 0, &errors.TransportError{Op: "read", Err: errors.ErrProcessNotRunning}
	}

	n, err := t.reader.Read(p, wait)
	if err != nil {
		t.MarkGone(err)

		return n, &errors.TransportError{Op: "read", Err: err}
	}

	return n, nil
}

// Write sends p to the adopted process's input handle.
func (t *AdoptedTransport) Write(p []byte) (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.Alive() {
		return 0, &errors.TransportError{Op: "write", Err: errors.ErrProcessGone}
	}

	n, err := t.input.Write(p)
	if err != nil {
		t.MarkGone(err)

		return n, &errors.TransportError{Op: "write", Err: err}
	}

	return n, nil
}

// Signal delivers sig to the tracked pid.
func (t *AdoptedTransport) Signal(sig syscall.Signal) (bool, error) {
	if t.pid == 0 {
		return false, &errors.UnsupportedOperationError{Operation: "signal", Transport: config.KindAdopt + " (untracked)"}
	}

	if err := unix.Kill(t.pid, sig); err != nil {
		if stderrors.Is(err, unix.ESRCH) {
			return false, nil
		}

		return false, fmt.Errorf("signal %s: %w", sig, err)
	}

	return true, nil
}

// Wait blocks until the tracked process disappears. Processes the caller
// started are not our children, so existence is probed with signal 0 every
// poll interval. Untracked handles wait for the output channel to close.
func (t *AdoptedTransport) Wait(ctx context.Context) error {
	if t.pid == 0 {
		select {
		case <-t.Done():
			return t.Reason()
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	ticker := time.NewTicker(t.options.PollInterval)
	defer ticker.Stop()

	for {
		if err := unix.Kill(t.pid, 0); stderrors.Is(err, unix.ESRCH) {
			return nil
		}

		select {
		case <-ticker.C:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// Pid returns the tracked pid, or 0 when untracked.
func (t *AdoptedTransport) Pid() int {
	return t.pid
}

// Kind returns config.KindAdopt.
func (t *AdoptedTransport) Kind() string {
	return config.KindAdopt
}

// WindowSize returns the size of the output handle when it is a terminal.
func (t *AdoptedTransport) WindowSize() (*config.Winsize, error) {
	f, ok := t.terminal()
	if !ok {
		return nil, &errors.UnsupportedOperationError{Operation: "window size", Transport: config.KindAdopt}
	}

	ws, err := pty.GetsizeFull(f)
	if err != nil {
		return nil, fmt.Errorf("get window size: %w", err)
	}

	return fromPty(ws), nil
}

// SetWindowSize resizes the output handle when it is a terminal.
func (t *AdoptedTransport) SetWindowSize(ws *config.Winsize) error {
	f, ok := t.terminal()
	if !ok {
		return &errors.UnsupportedOperationError{Operation: "set window size", Transport: config.KindAdopt}
	}

	if err := pty.Setsize(f, toPty(ws)); err != nil {
		return fmt.Errorf("set window size: %w", err)
	}

	return nil
}

func (t *AdoptedTransport) terminal() (*os.File, bool) {
	f, ok := t.output.(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		return nil, false
	}

	return f, true
}

// Close marks the transport gone and closes any handle that is an io.Closer.
func (t *AdoptedTransport) Close() error {
	var errs []error

	t.closeOnce.Do(func() {
		t.MarkGone(errors.ErrTransportClosed)

		if c, ok := t.reader.(*chunkReader); ok {
			c.Close()
		}

		if c, ok := t.input.(io.Closer); ok {
			errs = append(errs, c.Close())
		}

		if c, ok := t.output.(io.Closer); ok && !sameFile(t.input, t.output) {
			errs = append(errs, c.Close())
		}
	})

	return stderrors.Join(errs...)
}

// sameFile reports whether both handles are the same *os.File, as with a
// pseudoterminal master used for both directions.
func sameFile(w io.Writer, r io.Reader) bool {
	wf, ok := w.(*os.File)
	if !ok {
		return false
	}

	rf, ok := r.(*os.File)

	return ok && wf == rf
}
