package errors

import (
	"errors"
	"fmt"
	"time"
)

// ExpectrError is the base interface for all expectr errors.
type ExpectrError interface {
	error
	IsExpectrError() bool
}

// Compile-time verification that all error types implement ExpectrError.
var (
	_ ExpectrError = (*ArgumentError)(nil)
	_ ExpectrError = (*PatternTypeError)(nil)
	_ ExpectrError = (*TimeoutError)(nil)
	_ ExpectrError = (*ProcessError)(nil)
	_ ExpectrError = (*UnsupportedOperationError)(nil)
	_ ExpectrError = (*CommandNotFoundError)(nil)
	_ ExpectrError = (*TransportError)(nil)
)

// Sentinel errors for commonly checked conditions.
var (
	// ErrTimeout matches any TimeoutError via errors.Is.
	ErrTimeout = errors.New("expect timed out")

	// ErrProcessNotRunning indicates an operation needed a live process but none was running.
	ErrProcessNotRunning = errors.New("no process is running")

	// ErrProcessGone indicates the child process or channel went away while in use.
	ErrProcessGone = errors.New("child process no longer exists")

	// ErrAlreadyInteracting indicates interact mode was requested while already active.
	ErrAlreadyInteracting = errors.New("already in interact mode")

	// ErrUnsupported matches any UnsupportedOperationError via errors.Is.
	ErrUnsupported = errors.New("operation not supported by transport")

	// ErrSessionClosed indicates the session has been closed and cannot be reused.
	ErrSessionClosed = errors.New("session closed")

	// ErrTransportClosed indicates the transport's channel is closed.
	ErrTransportClosed = errors.New("transport closed")
)

// ArgumentError indicates a constructor or option argument was invalid.
// It is raised before any resource is acquired.
type ArgumentError struct {
	Argument string
	Reason   string
}

func (e *ArgumentError) Error() string {
	return fmt.Sprintf("invalid argument %s: %s", e.Argument, e.Reason)
}

// IsExpectrError implements ExpectrError.
func (e *ArgumentError) IsExpectrError() bool { return true }

// PatternTypeError indicates an expect pattern was neither literal text nor a regular expression.
type PatternTypeError struct {
	Value any
}

func (e *PatternTypeError) Error() string {
	return fmt.Sprintf("pattern should be a string or *regexp.Regexp, got %T", e.Value)
}

// IsExpectrError implements ExpectrError.
func (e *PatternTypeError) IsExpectrError() bool { return true }

// TimeoutError indicates no match was found within the time budget.
type TimeoutError struct {
	Pattern string
	After   time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("no match for %q within %s", e.Pattern, e.After)
}

// Is reports whether target is ErrTimeout.
func (e *TimeoutError) Is(target error) bool {
	return target == ErrTimeout
}

// Timeout reports true, for callers probing with an interface assertion.
func (e *TimeoutError) Timeout() bool { return true }

// IsExpectrError implements ExpectrError.
func (e *TimeoutError) IsExpectrError() bool { return true }

// ProcessError indicates an operation needed a live process and none exists,
// or that interact mode was requested while already interacting.
type ProcessError struct {
	Pid int
	Op  string
	Err error
}

func (e *ProcessError) Error() string {
	if e.Pid > 0 {
		return fmt.Sprintf("%s (pid %d): %v", e.Op, e.Pid, e.Err)
	}

	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *ProcessError) Unwrap() error {
	return e.Err
}

// IsExpectrError implements ExpectrError.
func (e *ProcessError) IsExpectrError() bool { return true }

// UnsupportedOperationError indicates the transport has no real process to act on.
type UnsupportedOperationError struct {
	Operation string
	Transport string
}

func (e *UnsupportedOperationError) Error() string {
	return fmt.Sprintf("%s not supported by %s transport", e.Operation, e.Transport)
}

// Is reports whether target is ErrUnsupported.
func (e *UnsupportedOperationError) Is(target error) bool {
	return target == ErrUnsupported
}

// IsExpectrError implements ExpectrError.
func (e *UnsupportedOperationError) IsExpectrError() bool { return true }

// CommandNotFoundError indicates the program named by a spawn command could not be located.
type CommandNotFoundError struct {
	Command       string
	SearchedPaths []string
}

func (e *CommandNotFoundError) Error() string {
	return fmt.Sprintf("command %q not found in: %v", e.Command, e.SearchedPaths)
}

// IsExpectrError implements ExpectrError.
func (e *CommandNotFoundError) IsExpectrError() bool { return true }

// TransportError indicates an I/O failure on the transport channel.
// Sessions translate it into a liveness transition instead of surfacing it.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("transport %s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// IsExpectrError implements ExpectrError.
func (e *TransportError) IsExpectrError() bool { return true }
