package config

import (
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/wagiedev/expectr-go/internal/errors"
)

// Defaults for Options fields left at their zero value.
const (
	DefaultTimeout      = 30 * time.Second
	DefaultBufferSize   = 8192
	DefaultHistorySize  = 64 * 1024
	DefaultPollInterval = 100 * time.Millisecond
	DefaultGracePeriod  = 2 * time.Second
	DefaultRows         = 24
	DefaultCols         = 80
)

// Options configures the behavior of an expectr session.
type Options struct {
	// Logger is the slog logger for debug output.
	// If nil, logging is disabled (silent operation).
	Logger *slog.Logger

	// Timeout bounds each expect call and each bounded read of the output pump.
	Timeout time.Duration

	// BufferSize is the read chunk size and, when Constrain is set, the buffer cap in bytes.
	BufferSize int

	// Constrain keeps the buffer at or below BufferSize by dropping the oldest bytes.
	Constrain bool

	// FlushBuffer echoes process output to Output. Nil means true.
	FlushBuffer *bool

	// ForceMatch attempts a match immediately even without new output
	// since the last failed attempt.
	ForceMatch bool

	// Output receives echoed process output. Defaults to os.Stdout.
	Output io.Writer

	// Input is the keyboard source for interact mode. Defaults to os.Stdin.
	Input io.Reader

	// Env provides additional environment variables for spawned processes.
	Env map[string]string

	// Dir sets the working directory for spawned processes.
	Dir string

	// Shell runs command strings that need shell interpretation. Defaults to /bin/sh.
	Shell string

	// WindowSize is the initial pseudoterminal size. When nil, the size of the
	// controlling terminal is used, falling back to DefaultRows x DefaultCols.
	WindowSize *Winsize

	// HistorySize caps the raw output history in bytes.
	HistorySize int

	// PollInterval is the safety-net interval at which blocked expects recheck the buffer.
	PollInterval time.Duration

	// GracePeriod is how long Close waits after SIGTERM before sending SIGKILL.
	GracePeriod time.Duration
}

// Validate reports the first invalid field as an ArgumentError.
func (o *Options) Validate() error {
	switch {
	case o.Timeout < 0:
		return &errors.ArgumentError{Argument: "timeout", Reason: "must not be negative"}
	case o.BufferSize < 0:
		return &errors.ArgumentError{Argument: "buffer_size", Reason: "must be positive"}
	case o.HistorySize < 0:
		return &errors.ArgumentError{Argument: "history_size", Reason: "must not be negative"}
	case o.PollInterval < 0:
		return &errors.ArgumentError{Argument: "poll_interval", Reason: "must not be negative"}
	case o.GracePeriod < 0:
		return &errors.ArgumentError{Argument: "grace_period", Reason: "must not be negative"}
	}

	return nil
}

// WithDefaults returns a copy of o with zero-valued fields replaced by defaults.
// A nil receiver yields the all-defaults configuration.
func (o *Options) WithDefaults() *Options {
	out := Options{}
	if o != nil {
		out = *o
	}

	if out.Logger == nil {
		out.Logger = slog.New(slog.DiscardHandler)
	}

	if out.Timeout == 0 {
		out.Timeout = DefaultTimeout
	}

	if out.BufferSize == 0 {
		out.BufferSize = DefaultBufferSize
	}

	if out.FlushBuffer == nil {
		flush := true
		out.FlushBuffer = &flush
	}

	if out.Output == nil {
		out.Output = os.Stdout
	}

	if out.Input == nil {
		out.Input = os.Stdin
	}

	if out.Shell == "" {
		out.Shell = "/bin/sh"
	}

	if out.HistorySize == 0 {
		out.HistorySize = DefaultHistorySize
	}

	if out.PollInterval == 0 {
		out.PollInterval = DefaultPollInterval
	}

	if out.GracePeriod == 0 {
		out.GracePeriod = DefaultGracePeriod
	}

	return &out
}
