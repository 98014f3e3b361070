package expectr

import (
	"io"
	"log/slog"
	"time"

	"github.com/wagiedev/expectr-go/internal/session"
)

// Option configures Options using the functional options pattern.
// This is the option type for constructors and WithSession.
type Option func(*Options)

// applyOptions applies functional options to a fresh Options struct.
func applyOptions(opts []Option) *Options {
	options := &Options{}
	for _, opt := range opts {
		opt(options)
	}

	return options
}

// ===== Basic Configuration =====

// WithLogger sets the logger for debug output.
// If not set, logging is disabled (silent operation).
func WithLogger(logger *slog.Logger) Option {
	return func(o *Options) {
		o.Logger = logger
	}
}

// WithTimeout sets the default time budget for each expect.
func WithTimeout(timeout time.Duration) Option {
	return func(o *Options) {
		o.Timeout = timeout
	}
}

// ===== Buffer =====

// WithBufferSize sets the read chunk size and the constrained buffer cap.
func WithBufferSize(size int) Option {
	return func(o *Options) {
		o.BufferSize = size
	}
}

// WithConstrain caps the buffer at the buffer size by dropping the oldest output.
func WithConstrain(constrain bool) Option {
	return func(o *Options) {
		o.Constrain = constrain
	}
}

// WithFlushBuffer controls whether process output is echoed to the output writer.
// Echo is on by default.
func WithFlushBuffer(flush bool) Option {
	return func(o *Options) {
		o.FlushBuffer = &flush
	}
}

// WithForceMatch makes every expect try to match immediately, even when no
// output arrived since the last failed attempt.
func WithForceMatch(force bool) Option {
	return func(o *Options) {
		o.ForceMatch = force
	}
}

// WithHistorySize caps the raw output history kept by the session.
func WithHistorySize(size int) Option {
	return func(o *Options) {
		o.HistorySize = size
	}
}

// WithPollInterval sets how often a waiting expect rechecks the buffer
// when no wake-up arrives.
func WithPollInterval(interval time.Duration) Option {
	return func(o *Options) {
		o.PollInterval = interval
	}
}

// ===== Terminal I/O =====

// WithOutput sets where echoed output goes. Defaults to os.Stdout.
func WithOutput(w io.Writer) Option {
	return func(o *Options) {
		o.Output = w
	}
}

// WithInput sets the keyboard source for interact mode. Defaults to os.Stdin.
func WithInput(r io.Reader) Option {
	return func(o *Options) {
		o.Input = r
	}
}

// WithWindowSize sets the initial pseudoterminal size.
// If not set, the controlling terminal's size is used.
func WithWindowSize(rows, cols uint16) Option {
	return func(o *Options) {
		o.WindowSize = &Winsize{Rows: rows, Cols: cols}
	}
}

// ===== Process =====

// WithEnv provides additional environment variables for spawned processes.
func WithEnv(env map[string]string) Option {
	return func(o *Options) {
		o.Env = env
	}
}

// WithDir sets the working directory for spawned processes.
func WithDir(dir string) Option {
	return func(o *Options) {
		o.Dir = dir
	}
}

// WithShell sets the shell used for command lines with shell syntax.
func WithShell(shell string) Option {
	return func(o *Options) {
		o.Shell = shell
	}
}

// WithGracePeriod sets how long Close waits after SIGTERM before SIGKILL.
func WithGracePeriod(grace time.Duration) Option {
	return func(o *Options) {
		o.GracePeriod = grace
	}
}

// ExpectOption tunes a single Expect call.
type ExpectOption func(*session.ExpectOptions)

func applyExpectOptions(opts []ExpectOption) session.ExpectOptions {
	var options session.ExpectOptions
	for _, opt := range opts {
		opt(&options)
	}

	return options
}

// Recoverable turns a timeout into a nil match and a nil error.
func Recoverable() ExpectOption {
	return func(o *session.ExpectOptions) {
		o.Recoverable = true
	}
}

// ExpectTimeout overrides the session timeout for one expect.
func ExpectTimeout(timeout time.Duration) ExpectOption {
	return func(o *session.ExpectOptions) {
		o.Timeout = timeout
	}
}

// ForceMatch overrides the session's force-match setting for one expect.
func ForceMatch(force bool) ExpectOption {
	return func(o *session.ExpectOptions) {
		o.ForceMatch = &force
	}
}

// InteractOption configures Interact.
type InteractOption func(*session.InteractOptions)

func applyInteractOptions(opts []InteractOption) session.InteractOptions {
	options := session.InteractOptions{Flush: true}
	for _, opt := range opts {
		opt(&options)
	}

	return options
}

// Blocking makes Interact return only after the interaction ends.
func Blocking() InteractOption {
	return func(o *session.InteractOptions) {
		o.Blocking = true
	}
}

// InteractFlush sets whether output is echoed during and after the
// interaction. Defaults to true.
func InteractFlush(flush bool) InteractOption {
	return func(o *session.InteractOptions) {
		o.Flush = flush
	}
}

// InteractPollInterval bounds each keyboard read, and so how quickly Leave
// takes effect.
func InteractPollInterval(interval time.Duration) InteractOption {
	return func(o *session.InteractOptions) {
		o.PollInterval = interval
	}
}
