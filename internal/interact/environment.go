package interact

import (
	"os"
	"sync"
	"syscall"

	"golang.org/x/term"
)

// interceptedSignals are remapped while interacting.
var interceptedSignals = []os.Signal{syscall.SIGINT, syscall.SIGTSTP, syscall.SIGWINCH}

// environment is the terminal mode and signal registration held while
// interacting. It is released exactly once.
type environment struct {
	ops      *Ops
	fd       int
	state    *term.State
	signals  chan os.Signal
	released sync.Once
	err      error
}

// acquire snapshots the terminal mode of fd (when it is a terminal), switches
// it to interactive mode and registers for the intercepted signals.
// A negative fd skips the terminal entirely.
func acquire(ops *Ops, fd int) (*environment, error) {
	env := &environment{ops: ops, fd: -1}

	if fd >= 0 && ops.IsTerminal(fd) {
		state, err := ops.GetState(fd)
		if err != nil {
			return nil, err
		}

		env.fd = fd
		env.state = state

		if err := ops.SetInteractive(fd); err != nil {
			_ = ops.Restore(fd, state)

			return nil, err
		}
	}

	env.signals = make(chan os.Signal, 16)
	ops.Notify(env.signals, interceptedSignals...)

	return env, nil
}

// terminal reports whether the environment changed a terminal's mode.
func (e *environment) terminal() bool {
	return e.state != nil
}

// release undoes acquire. Calls after the first return the first result.
func (e *environment) release() error {
	e.released.Do(func() {
		e.ops.Stop(e.signals)

		if e.state != nil {
			e.err = e.ops.Restore(e.fd, e.state)
		}
	})

	return e.err
}
