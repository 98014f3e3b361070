package transport

import (
	"context"
	stderrors "errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"sync"
	"syscall"
	"time"

	"github.com/creack/pty"

	"github.com/wagiedev/expectr-go/internal/command"
	"github.com/wagiedev/expectr-go/internal/config"
	"github.com/wagiedev/expectr-go/internal/errors"
)

// PTYTransport implements Transport by running a program on a pseudoterminal.
type PTYTransport struct {
	*Liveness

	log     *slog.Logger
	options *config.Options
	cmdline string
	cmd     *exec.Cmd
	ptmx    *os.File
	reader  BoundedReader

	mu        sync.Mutex // Protects ptmx writes
	waitOnce  sync.Once
	exited    chan struct{}
	exitErr   error
	closeOnce sync.Once
	closeErr  error
}

// Compile-time verification that PTYTransport implements the Transport and Resizer interfaces.
var (
	_ config.Transport = (*PTYTransport)(nil)
	_ config.Resizer   = (*PTYTransport)(nil)
)

// NewPTYTransport creates a transport that will run cmdline.
//
// Program discovery is deferred to Start(). Command strings containing shell
// metacharacters run through options.Shell with -c.
func NewPTYTransport(log *slog.Logger, cmdline string, options *config.Options) *PTYTransport {
	return &PTYTransport{
		Liveness: NewLiveness(),
		log:      log.With("component", "pty_transport"),
		options:  options,
		cmdline:  cmdline,
		exited:   make(chan struct{}),
	}
}

// NewPTYTransportCmd creates a transport that will run a prepared command.
// The command must not have been started.
func NewPTYTransportCmd(log *slog.Logger, cmd *exec.Cmd, options *config.Options) *PTYTransport {
	t := NewPTYTransport(log, "", options)
	t.cmd = cmd

	return t
}

// Start spawns the program with its standard streams attached to a new pseudoterminal.
//
// Returns CommandNotFoundError if the program cannot be located.
func (t *PTYTransport) Start(ctx context.Context) error {
	if t.cmd == nil {
		cmd, err := command.Build(ctx, t.log, t.cmdline, t.options)
		if err != nil {
			return err
		}

		t.cmd = cmd
	}

	ws := InitialWindowSize(t.options)

	ptmx, err := pty.StartWithSize(t.cmd, toPty(ws))
	if err != nil {
		return fmt.Errorf("start %s on pty: %w", t.cmd.Path, err)
	}

	t.ptmx = ptmx
	t.reader = NewBoundedReader(ptmx, t.options.BufferSize)

	t.log.Info("Spawned process",
		"path", t.cmd.Path,
		"args", t.cmd.Args,
		"pid", t.cmd.Process.Pid,
		"rows", ws.Rows,
		"cols", ws.Cols,
	)

	return nil
}

// Read waits at most wait for output from the pseudoterminal.
func (t *PTYTransport) Read(p []byte, wait time.Duration) (int, error) {
	if t.reader == nil {
		return 0, &errors.TransportError{Op: "read", Err: errors.ErrProcessNotRunning}
	}

	n, err := t.reader.Read(p, wait)
	if err != nil {
		t.log.Debug("Pseudoterminal read ended", "error", err)
		t.MarkGone(err)

		return n, &errors.TransportError{Op: "read", Err: err}
	}

	return n, nil
}

// Write sends p to the program's terminal input.
func (t *PTYTransport) Write(p []byte) (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.ptmx == nil || !t.Alive() {
		return 0, &errors.TransportError{Op: "write", Err: errors.ErrProcessGone}
	}

	n, err := t.ptmx.Write(p)
	if err != nil {
		t.MarkGone(err)

		return n, &errors.TransportError{Op: "write", Err: err}
	}

	return n, nil
}

// Signal delivers sig to the spawned process.
// It reports false when the process has already exited.
func (t *PTYTransport) Signal(sig syscall.Signal) (bool, error) {
	if t.cmd == nil || t.cmd.Process == nil {
		return false, &errors.ProcessError{Op: "signal", Err: errors.ErrProcessNotRunning}
	}

	if err := t.cmd.Process.Signal(sig); err != nil {
		if stderrors.Is(err, os.ErrProcessDone) {
			return false, nil
		}

		return false, fmt.Errorf("signal %s: %w", sig, err)
	}

	t.log.Debug("Delivered signal", "pid", t.cmd.Process.Pid, "signal", sig)

	return true, nil
}

// Wait reaps the process. The first caller starts the reaper; every caller
// observes the same exit error.
func (t *PTYTransport) Wait(ctx context.Context) error {
	if t.cmd == nil || t.cmd.Process == nil {
		return &errors.ProcessError{Op: "wait", Err: errors.ErrProcessNotRunning}
	}

	t.waitOnce.Do(func() {
		go func() {
			t.exitErr = t.cmd.Wait()
			close(t.exited)
		}()
	})

	select {
	case <-t.exited:
		return t.exitErr
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Pid returns the spawned process id.
func (t *PTYTransport) Pid() int {
	if t.cmd == nil || t.cmd.Process == nil {
		return 0
	}

	return t.cmd.Process.Pid
}

// Kind returns config.KindSpawn.
func (t *PTYTransport) Kind() string {
	return config.KindSpawn
}

// WindowSize returns the pseudoterminal's current size.
func (t *PTYTransport) WindowSize() (*config.Winsize, error) {
	if t.ptmx == nil {
		return nil, &errors.ProcessError{Op: "window size", Err: errors.ErrProcessNotRunning}
	}

	ws, err := pty.GetsizeFull(t.ptmx)
	if err != nil {
		return nil, fmt.Errorf("get window size: %w", err)
	}

	return fromPty(ws), nil
}

// SetWindowSize resizes the pseudoterminal; the program receives SIGWINCH.
func (t *PTYTransport) SetWindowSize(ws *config.Winsize) error {
	if t.ptmx == nil {
		return &errors.ProcessError{Op: "set window size", Err: errors.ErrProcessNotRunning}
	}

	if err := pty.Setsize(t.ptmx, toPty(ws)); err != nil {
		return fmt.Errorf("set window size: %w", err)
	}

	return nil
}

// Close closes the pseudoterminal master. The process itself is left to
// the caller to terminate.
func (t *PTYTransport) Close() error {
	t.closeOnce.Do(func() {
		t.MarkGone(errors.ErrTransportClosed)

		t.mu.Lock()
		defer t.mu.Unlock()

		if t.ptmx != nil {
			t.closeErr = t.ptmx.Close()
		}
	})

	return t.closeErr
}
