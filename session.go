package expectr

import (
	"context"
	"io"
	"os/exec"
	"time"

	"github.com/wagiedev/expectr-go/internal/session"
)

// Session drives a child process through its terminal: wait for text to
// appear, send input, and hand the terminal to the user.
//
// Lifecycle: Sessions are single-use. After Close(), create a new one.
//
// Example usage:
//
//	s, err := expectr.Spawn(ctx, "bc -q", expectr.WithFlushBuffer(false))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer s.Close()
//
//	if err := s.SendLine(ctx, "20+301"); err != nil {
//	    log.Fatal(err)
//	}
//
//	m, err := s.Expect(ctx, regexp.MustCompile(`(\d+)`))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(m.Group(1)) // 321
type Session interface {
	// Expect waits until pattern appears in the output. pattern is a string,
	// matched verbatim, or a *regexp.Regexp. On success the buffer keeps only
	// the output after the match and Discard holds the output before it.
	// Returns TimeoutError unless Recoverable is given, in which case a
	// timeout yields a nil Match and a nil error.
	Expect(ctx context.Context, pattern any, opts ...ExpectOption) (*Match, error)

	// ExpectMap waits for the first of several patterns, tried as one
	// alternation, and runs the action of the case that fired.
	ExpectMap(ctx context.Context, cases ExpectCases) (*Match, error)

	// Send writes text to the process.
	// Returns ProcessError when the process is gone.
	Send(ctx context.Context, text string) error

	// SendLine writes text followed by a newline.
	SendLine(ctx context.Context, text string) error

	// Buffer returns the output not yet consumed by a match.
	Buffer() string

	// Discard returns the output skipped over by the last match.
	Discard() string

	// History returns the most recent raw output bytes.
	History() []byte

	// ClearBuffer empties the buffer.
	ClearBuffer()

	// Kill sends a signal by name ("TERM", "SIGINT", "9"); empty means TERM.
	// Returns ProcessError when no process is running and
	// UnsupportedOperationError when there is no process to signal.
	Kill(signal string) (bool, error)

	// Interact forwards the keyboard to the process until Leave is called
	// or the process exits.
	// Returns ErrAlreadyInteracting when an interaction is running.
	Interact(opts ...InteractOption) (*InteractHandle, error)

	// Leave ends a running interaction.
	Leave()

	// Interacting reports whether an interaction is running and not leaving.
	Interacting() bool

	// Pid returns the process id, or 0 when no process is tracked.
	Pid() int

	// Alive reports whether the process or channel is still usable.
	Alive() bool

	// Done is closed once the process or channel is gone.
	Done() <-chan struct{}

	// WindowSize returns the terminal size.
	// Returns UnsupportedOperationError when the output is not a terminal.
	WindowSize() (*Winsize, error)

	// SetWindowSize resizes the terminal.
	SetWindowSize(ws *Winsize) error

	// Timeout returns the default expect timeout.
	Timeout() time.Duration

	// SetTimeout changes the default expect timeout.
	SetTimeout(timeout time.Duration) error

	// FlushBuffer reports whether output is echoed.
	FlushBuffer() bool

	// SetFlushBuffer turns output echo on or off.
	SetFlushBuffer(flush bool)

	// Constrain reports whether the buffer is capped at BufferSize.
	Constrain() bool

	// SetConstrain turns the buffer cap on or off.
	SetConstrain(constrain bool)

	// BufferSize returns the read chunk size and buffer cap.
	BufferSize() int

	// SetBufferSize changes the read chunk size and buffer cap.
	SetBufferSize(size int) error

	// Close terminates a spawned process and releases all resources.
	// It's safe to call Close multiple times.
	Close() error
}

// Spawn runs cmdline on a new pseudoterminal. Command lines with shell
// syntax run through the configured shell.
// Returns CommandNotFoundError if the program cannot be located.
func Spawn(ctx context.Context, cmdline string, opts ...Option) (Session, error) {
	impl, err := session.Spawn(ctx, cmdline, applyOptions(opts))
	if err != nil {
		return nil, err
	}

	return &sessionWrapper{impl: impl}, nil
}

// SpawnCmd runs a prepared, not yet started command on a new pseudoterminal.
func SpawnCmd(ctx context.Context, cmd *exec.Cmd, opts ...Option) (Session, error) {
	impl, err := session.SpawnCmd(ctx, cmd, applyOptions(opts))
	if err != nil {
		return nil, err
	}

	return &sessionWrapper{impl: impl}, nil
}

// Adopt drives a process the caller already started. input is the
// process's stdin, output its stdout. A pid of 0 leaves the process
// untracked, and Kill then fails with UnsupportedOperationError.
func Adopt(ctx context.Context, input io.Writer, output io.Reader, pid int, opts ...Option) (Session, error) {
	impl, err := session.Adopt(ctx, input, output, pid, applyOptions(opts))
	if err != nil {
		return nil, err
	}

	return &sessionWrapper{impl: impl}, nil
}

// FromFuncs drives an in-process producer and consumer as if they were a
// process. Useful for tests and for scripting against simulated programs.
func FromFuncs(ctx context.Context, producer Producer, consumer Consumer, opts ...Option) (Session, error) {
	impl, err := session.FromFuncs(ctx, producer, consumer, applyOptions(opts))
	if err != nil {
		return nil, err
	}

	return &sessionWrapper{impl: impl}, nil
}
