// Package config provides configuration types for expectr sessions.
package config

import (
	"context"
	"syscall"
	"time"
)

// Transport kinds reported by Transport.Kind.
const (
	KindSpawn = "spawn"
	KindAdopt = "adopt"
	KindFunc  = "func"
)

// Transport defines the backend a session drives: a readable stream,
// a writable stream, and a liveness handle.
//
// Three implementations exist (spawned pseudoterminal process, adopted
// handles, producer/consumer function pair); the session picks one at
// construction and never swaps it.
type Transport interface {
	// Start acquires the transport's resources (for example, spawns the process).
	// Argument validation happens before Start is ever called.
	Start(ctx context.Context) error

	// Read waits at most wait for output and copies it into p.
	// It returns 0 and a nil error when no output arrived in time.
	// A non-nil error means the channel is closed; the transport has
	// already marked itself gone when it returns one.
	Read(p []byte, wait time.Duration) (int, error)

	// Write sends p to the child's input. It returns a TransportError when
	// the channel is closed or the remote end is gone.
	Write(p []byte) (int, error)

	// Signal delivers sig to the underlying process and reports whether it was delivered.
	// Transports without a real process return UnsupportedOperationError.
	Signal(sig syscall.Signal) (bool, error)

	// Wait blocks until the process or channel is gone, or ctx is done.
	// It returns the exit error, if any.
	Wait(ctx context.Context) error

	// Pid returns the tracked process id, or 0 when the transport tracks no process.
	Pid() int

	// Alive reports whether the transport is still usable.
	Alive() bool

	// Done is closed when the transport becomes gone.
	Done() <-chan struct{}

	// MarkGone records that the transport is no longer usable.
	// Only the first reason is kept.
	MarkGone(reason error)

	// Kind names the transport variant.
	Kind() string

	// Close releases the transport's resources. It's safe to call Close multiple times.
	Close() error
}

// Winsize is a terminal window size.
type Winsize struct {
	Rows uint16
	Cols uint16
	X    uint16
	Y    uint16
}

// Resizer is implemented by transports whose output is a terminal.
type Resizer interface {
	WindowSize() (*Winsize, error)
	SetWindowSize(ws *Winsize) error
}
