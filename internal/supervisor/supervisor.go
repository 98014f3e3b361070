// Package supervisor reaps session processes in the background and flips
// transport liveness to gone the moment the process or channel ends.
package supervisor

import (
	"context"
	stderrors "errors"
	"log/slog"
	"os/exec"

	"github.com/wagiedev/expectr-go/internal/config"
	"github.com/wagiedev/expectr-go/internal/errors"
)

// Supervisor watches a single transport.
type Supervisor struct {
	log       *slog.Logger
	transport config.Transport
}

// New creates a supervisor for transport.
func New(log *slog.Logger, transport config.Transport) *Supervisor {
	return &Supervisor{
		log:       log.With("component", "supervisor"),
		transport: transport,
	}
}

// Run blocks until the transport's process or channel ends, then marks the
// transport gone. Cancelling ctx stops the watch without touching liveness.
//
// Run always returns nil so that it never fails the group it runs in.
func (s *Supervisor) Run(ctx context.Context) error {
	err := s.transport.Wait(ctx)
	if ctx.Err() != nil {
		s.log.Debug("Supervisor stopped")

		return nil
	}

	reason := errors.ErrProcessGone
	if err != nil {
		reason = err
	}

	if exitErr, ok := stderrors.AsType[*exec.ExitError](err); ok {
		s.log.Info("Process exited", "pid", s.transport.Pid(), "exit_code", exitErr.ExitCode(), "status", exitErr.String())
	} else {
		s.log.Info("Process gone", "pid", s.transport.Pid(), "kind", s.transport.Kind(), "error", err)
	}

	s.transport.MarkGone(reason)

	return nil
}
