package session

import (
	"context"
	"fmt"

	"github.com/wagiedev/expectr-go/internal/config"
	"github.com/wagiedev/expectr-go/internal/errors"
	"github.com/wagiedev/expectr-go/internal/interact"
	"github.com/wagiedev/expectr-go/internal/transport"
)

// InteractOptions configures Interact.
type InteractOptions struct {
	interact.Options

	// Flush sets the session's echo flag for the interaction and after it.
	Flush bool
}

// Send writes text to the process. It fails with a ProcessError when the
// process is gone, including when the write itself discovers that. The
// write never blocks past ctx or the process going away.
func (s *Session) Send(ctx context.Context, text string) error {
	if err := s.checkOpen(); err != nil {
		return err
	}

	if !s.transport.Alive() {
		return s.goneError("send", nil)
	}

	// Write in goroutine to respect context cancellation
	done := make(chan error, 1)

	go func() {
		_, err := s.transport.Write([]byte(text))
		done <- err
	}()

	select {
	case err := <-done:
		if err != nil {
			s.log.Debug("Write failed", "error", err)
			s.transport.MarkGone(err)

			return s.goneError("send", err)
		}

		return nil
	case <-s.transport.Done():
		return s.goneError("send", nil)
	case <-ctx.Done():
		return ctx.Err()
	}
}

// SendLine writes text followed by a newline.
func (s *Session) SendLine(ctx context.Context, text string) error {
	return s.Send(ctx, text+"\n")
}

// Kill delivers the named signal ("TERM", "SIGKILL", "9", ...; empty means
// TERM) and reports whether it was delivered.
func (s *Session) Kill(signal string) (bool, error) {
	if err := s.checkOpen(); err != nil {
		return false, err
	}

	sig, err := transport.ParseSignal(signal)
	if err != nil {
		return false, err
	}

	if s.transport.Kind() == config.KindFunc {
		return false, &errors.UnsupportedOperationError{Operation: "kill", Transport: config.KindFunc}
	}

	if !s.transport.Alive() {
		return false, &errors.ProcessError{Pid: s.transport.Pid(), Op: "kill", Err: errors.ErrProcessNotRunning}
	}

	delivered, err := s.transport.Signal(sig)
	if err != nil {
		return false, err
	}

	s.log.Info("Sent signal", "pid", s.transport.Pid(), "signal", sig, "delivered", delivered)

	return delivered, nil
}

// Interact hands the process to the real terminal. See interact.Controller.
func (s *Session) Interact(opts InteractOptions) (*interact.Handle, error) {
	if err := s.checkOpen(); err != nil {
		return nil, err
	}

	if !s.transport.Alive() {
		return nil, s.goneError("interact", nil)
	}

	if s.interact.Current() != nil {
		return nil, &errors.ProcessError{Pid: s.transport.Pid(), Op: "interact", Err: errors.ErrAlreadyInteracting}
	}

	s.flush.Store(opts.Flush)

	return s.interact.Enter(opts.Options)
}

// Leave ends interact mode within one keyboard poll interval.
func (s *Session) Leave() {
	s.interact.Leave()
}

// Interacting reports whether interact mode is active.
func (s *Session) Interacting() bool {
	return s.interact.Interacting()
}

func (s *Session) goneError(op string, cause error) error {
	err := errors.ErrProcessGone
	if cause != nil {
		err = fmt.Errorf("%w: %w", errors.ErrProcessGone, cause)
	}

	return &errors.ProcessError{Pid: s.transport.Pid(), Op: op, Err: err}
}
