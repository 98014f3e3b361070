package session

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os/exec"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/wagiedev/expectr-go/internal/buffer"
	"github.com/wagiedev/expectr-go/internal/config"
	"github.com/wagiedev/expectr-go/internal/errors"
	"github.com/wagiedev/expectr-go/internal/interact"
	"github.com/wagiedev/expectr-go/internal/pump"
	"github.com/wagiedev/expectr-go/internal/supervisor"
	"github.com/wagiedev/expectr-go/internal/transport"
)

// Session drives one transport.
type Session struct {
	log       *slog.Logger
	options   *config.Options
	transport config.Transport
	buffer    *buffer.Buffer
	history   *buffer.History
	interact  *interact.Controller

	flush   atomic.Bool
	timeout atomic.Int64

	// Errgroup for the pump and supervisor
	eg     *errgroup.Group
	cancel context.CancelFunc

	// Lifecycle management
	closed    atomic.Bool
	closeOnce sync.Once
	closeErr  error
}

// Spawn runs cmdline on a new pseudoterminal.
func Spawn(ctx context.Context, cmdline string, options *config.Options) (*Session, error) {
	options, err := prepare(options)
	if err != nil {
		return nil, err
	}

	if cmdline == "" {
		return nil, &errors.ArgumentError{Argument: "command", Reason: "must not be empty"}
	}

	return start(ctx, transport.NewPTYTransport(options.Logger, cmdline, options), options)
}

// SpawnCmd runs a prepared, not yet started command on a new pseudoterminal.
func SpawnCmd(ctx context.Context, cmd *exec.Cmd, options *config.Options) (*Session, error) {
	options, err := prepare(options)
	if err != nil {
		return nil, err
	}

	switch {
	case cmd == nil:
		return nil, &errors.ArgumentError{Argument: "cmd", Reason: "must not be nil"}
	case cmd.Process != nil:
		return nil, &errors.ArgumentError{Argument: "cmd", Reason: "already started"}
	}

	return start(ctx, transport.NewPTYTransportCmd(options.Logger, cmd, options), options)
}

// Adopt drives a process the caller already started through its input and
// output handles. A pid of 0 leaves the process untracked.
func Adopt(ctx context.Context, input io.Writer, output io.Reader, pid int, options *config.Options) (*Session, error) {
	options, err := prepare(options)
	if err != nil {
		return nil, err
	}

	tr := transport.NewAdoptedTransport(options.Logger, input, output, pid, options)
	if err := tr.Validate(); err != nil {
		return nil, err
	}

	return start(ctx, tr, options)
}

// FromFuncs drives an in-process producer and consumer as if they were a process.
func FromFuncs(
	ctx context.Context,
	producer transport.Producer,
	consumer transport.Consumer,
	options *config.Options,
) (*Session, error) {
	options, err := prepare(options)
	if err != nil {
		return nil, err
	}

	tr := transport.NewFuncTransport(options.Logger, producer, consumer, options)
	if err := tr.Validate(); err != nil {
		return nil, err
	}

	return start(ctx, tr, options)
}

// New starts a session over an arbitrary transport. The transport must not
// have been started.
func New(ctx context.Context, tr config.Transport, options *config.Options) (*Session, error) {
	options, err := prepare(options)
	if err != nil {
		return nil, err
	}

	if tr == nil {
		return nil, &errors.ArgumentError{Argument: "transport", Reason: "must not be nil"}
	}

	return start(ctx, tr, options)
}

// prepare validates options and fills in defaults.
func prepare(options *config.Options) (*config.Options, error) {
	if options != nil {
		if err := options.Validate(); err != nil {
			return nil, err
		}
	}

	return options.WithDefaults(), nil
}

func start(ctx context.Context, tr config.Transport, options *config.Options) (*Session, error) {
	log := options.Logger.With("component", "session")

	if err := tr.Start(ctx); err != nil {
		return nil, fmt.Errorf("start transport: %w", err)
	}

	s := &Session{
		log:       log,
		options:   options,
		transport: tr,
		buffer:    buffer.New(options.BufferSize, options.Constrain),
		history:   buffer.NewHistory(options.HistorySize),
	}

	s.flush.Store(*options.FlushBuffer)
	s.timeout.Store(int64(options.Timeout))
	s.interact = interact.New(options.Logger, tr, options.Input, nil)

	p := pump.New(options.Logger, pump.Config{
		Transport: tr,
		Buffer:    s.buffer,
		History:   s.history,
		Output:    options.Output,
		Flush:     &s.flush,
		Wait:      s.readWait,
	})
	sup := supervisor.New(options.Logger, tr)

	// The background tasks live until Close, not until the caller's ctx ends.
	var egCtx context.Context

	egCtx, s.cancel = context.WithCancel(context.Background())
	s.eg, egCtx = errgroup.WithContext(egCtx)

	s.eg.Go(func() error {
		return p.Run(egCtx)
	})

	s.eg.Go(func() error {
		return sup.Run(egCtx)
	})

	log.Info("Session started", "kind", tr.Kind(), "pid", tr.Pid())

	return s, nil
}

// readWait bounds each pump read so that liveness changes and Close are
// noticed promptly.
func (s *Session) readWait() time.Duration {
	return min(s.Timeout(), s.options.PollInterval)
}

// checkOpen returns ErrSessionClosed after Close.
func (s *Session) checkOpen() error {
	if s.closed.Load() {
		return errors.ErrSessionClosed
	}

	return nil
}

// Transport returns the underlying transport.
func (s *Session) Transport() config.Transport {
	return s.transport
}

// Buffer returns the unconsumed output.
func (s *Session) Buffer() string {
	return s.buffer.String()
}

// Discard returns the output consumed by the most recent successful match.
func (s *Session) Discard() string {
	return s.buffer.Discard()
}

// History returns the most recent raw output bytes, before decoding.
func (s *Session) History() []byte {
	return s.history.Bytes()
}

// ClearBuffer empties the buffer, leaving the discard untouched.
func (s *Session) ClearBuffer() {
	s.buffer.Clear()
}

// Pid returns the process id, or 0 when there is none.
func (s *Session) Pid() int {
	return s.transport.Pid()
}

// Alive reports whether the process or channel is still usable.
func (s *Session) Alive() bool {
	return s.transport.Alive()
}

// Done is closed once liveness becomes gone.
func (s *Session) Done() <-chan struct{} {
	return s.transport.Done()
}

// WindowSize returns the process's terminal size.
func (s *Session) WindowSize() (*config.Winsize, error) {
	resizer, ok := s.transport.(config.Resizer)
	if !ok {
		return nil, &errors.UnsupportedOperationError{Operation: "window size", Transport: s.transport.Kind()}
	}

	return resizer.WindowSize()
}

// SetWindowSize resizes the process's terminal.
func (s *Session) SetWindowSize(ws *config.Winsize) error {
	if ws == nil {
		return &errors.ArgumentError{Argument: "window size", Reason: "must not be nil"}
	}

	resizer, ok := s.transport.(config.Resizer)
	if !ok {
		return &errors.UnsupportedOperationError{Operation: "set window size", Transport: s.transport.Kind()}
	}

	return resizer.SetWindowSize(ws)
}

// Timeout returns the default expect timeout.
func (s *Session) Timeout() time.Duration {
	return time.Duration(s.timeout.Load())
}

// SetTimeout changes the default expect timeout.
func (s *Session) SetTimeout(d time.Duration) error {
	if d <= 0 {
		return &errors.ArgumentError{Argument: "timeout", Reason: "must be positive"}
	}

	s.timeout.Store(int64(d))

	return nil
}

// FlushBuffer reports whether output is echoed.
func (s *Session) FlushBuffer() bool {
	return s.flush.Load()
}

// SetFlushBuffer turns echoing of output on or off.
func (s *Session) SetFlushBuffer(flush bool) {
	s.flush.Store(flush)
}

// Constrain reports whether the buffer is capped at BufferSize.
func (s *Session) Constrain() bool {
	return s.buffer.Constrain()
}

// SetConstrain turns the buffer cap on or off.
func (s *Session) SetConstrain(constrain bool) {
	s.buffer.SetConstrain(constrain)
}

// BufferSize returns the read chunk size and buffer cap.
func (s *Session) BufferSize() int {
	return s.buffer.Size()
}

// SetBufferSize changes the read chunk size and buffer cap.
func (s *Session) SetBufferSize(size int) error {
	if size <= 0 {
		return &errors.ArgumentError{Argument: "buffer_size", Reason: "must be positive"}
	}

	s.buffer.SetSize(size)

	return nil
}

// Close leaves interact mode, terminates a spawned process (SIGTERM, then
// SIGKILL after the grace period), closes the transport and waits for the
// background tasks. It is safe to call Close multiple times.
func (s *Session) Close() error {
	s.closeOnce.Do(func() {
		s.closed.Store(true)
		s.log.Info("Closing session")

		s.interact.Leave()

		if h := s.interact.Current(); h != nil {
			select {
			case <-h.Done():
			case <-time.After(interact.DefaultPollInterval + time.Second):
				s.log.Warn("Interaction did not end before close")
			}
		}

		if s.transport.Kind() == config.KindSpawn && s.transport.Alive() {
			s.terminate()
		}

		s.transport.MarkGone(errors.ErrSessionClosed)
		s.cancel()

		if err := s.eg.Wait(); err != nil {
			s.closeErr = err
		}

		if err := s.transport.Close(); err != nil && s.closeErr == nil {
			s.closeErr = err
		}

		s.log.Info("Session closed")
	})

	return s.closeErr
}

// terminate asks the process to exit and forces it after the grace period.
func (s *Session) terminate() {
	for _, sig := range []syscall.Signal{syscall.SIGTERM, syscall.SIGKILL} {
		if delivered, err := s.transport.Signal(sig); err != nil || !delivered {
			return
		}

		select {
		case <-s.transport.Done():
			return
		case <-time.After(s.options.GracePeriod):
			s.log.Debug("Process ignored signal", "signal", sig)
		}
	}
}
