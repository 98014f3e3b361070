package expectr

import "github.com/wagiedev/expectr-go/internal/errors"

// Re-export error types from internal package

// ExpectrError is the base interface for all expectr errors.
type ExpectrError = errors.ExpectrError

// ArgumentError indicates a constructor or option argument was invalid.
type ArgumentError = errors.ArgumentError

// PatternTypeError indicates an expect pattern was neither a string nor a *regexp.Regexp.
type PatternTypeError = errors.PatternTypeError

// TimeoutError indicates an expect found no match in time.
type TimeoutError = errors.TimeoutError

// ProcessError indicates an operation needed a live process.
type ProcessError = errors.ProcessError

// UnsupportedOperationError indicates the transport has no process to signal.
type UnsupportedOperationError = errors.UnsupportedOperationError

// CommandNotFoundError indicates the spawned program could not be located.
type CommandNotFoundError = errors.CommandNotFoundError

// TransportError indicates an I/O failure on the transport channel.
type TransportError = errors.TransportError

// Re-export sentinel errors from internal package.
var (
	// ErrTimeout matches any TimeoutError.
	ErrTimeout = errors.ErrTimeout

	// ErrProcessNotRunning indicates no process was running.
	ErrProcessNotRunning = errors.ErrProcessNotRunning

	// ErrProcessGone indicates the process or channel went away while in use.
	ErrProcessGone = errors.ErrProcessGone

	// ErrAlreadyInteracting indicates interact mode was already active.
	ErrAlreadyInteracting = errors.ErrAlreadyInteracting

	// ErrUnsupported matches any UnsupportedOperationError.
	ErrUnsupported = errors.ErrUnsupported

	// ErrSessionClosed indicates the session has been closed and cannot be reused.
	ErrSessionClosed = errors.ErrSessionClosed
)
