package transport

import (
	stderrors "errors"
	"io"
	"os"
	"sync"
	"syscall"
	"time"

	"golang.org/x/sys/unix"

	"github.com/wagiedev/expectr-go/internal/errors"
)

// BoundedReader reads with an upper bound on how long it waits for data.
// Implementations are not safe for concurrent Read calls.
type BoundedReader interface {
	Read(p []byte, wait time.Duration) (int, error)
}

// NewBoundedReader polls the descriptor directly when r is a file, and
// otherwise falls back to a background reader goroutine.
func NewBoundedReader(r io.Reader, chunkSize int) BoundedReader {
	if f, ok := r.(*os.File); ok {
		return &pollReader{file: f, fd: int(f.Fd())}
	}

	return newChunkReader(r, chunkSize)
}

// pollReader waits for readability with poll(2) before reading.
type pollReader struct {
	file *os.File
	fd   int
}

func (r *pollReader) Read(p []byte, wait time.Duration) (int, error) {
	timeout := int(wait / time.Millisecond)
	if wait > 0 && timeout == 0 {
		timeout = 1
	}

	fds := []unix.PollFd{{Fd: int32(r.fd), Events: unix.POLLIN}}

	ready, err := unix.Poll(fds, timeout)
	if err != nil {
		if stderrors.Is(err, unix.EINTR) {
			return 0, nil
		}

		return 0, err
	}

	if ready == 0 {
		return 0, nil
	}

	if fds[0].Revents&unix.POLLNVAL != 0 {
		return 0, errors.ErrTransportClosed
	}

	n, err := r.file.Read(p)
	if err != nil {
		if n > 0 {
			// Deliver the data now; the error resurfaces on the next read.
			return n, nil
		}

		return 0, normalizeReadError(err)
	}

	return n, nil
}

// chunkReader reads from r on a background goroutine and hands chunks over
// a channel so that Read can give up after the wait elapses.
//
// A blocked read on r cannot be interrupted; the goroutine exits once r
// returns an error.
type chunkReader struct {
	chunks  chan []byte
	stop    chan struct{}
	stopped sync.Once
	readErr error
	pending []byte
	err     error
}

func newChunkReader(r io.Reader, chunkSize int) *chunkReader {
	c := &chunkReader{
		chunks: make(chan []byte),
		stop:   make(chan struct{}),
	}

	go c.run(r, chunkSize)

	return c
}

func (c *chunkReader) run(r io.Reader, chunkSize int) {
	defer close(c.chunks)

	for {
		buf := make([]byte, chunkSize)

		n, err := r.Read(buf)
		if n > 0 {
			select {
			case c.chunks <- buf[:n]:
			case <-c.stop:
				c.readErr = errors.ErrTransportClosed

				return
			}
		}

		if err != nil {
			c.readErr = normalizeReadError(err)

			return
		}
	}
}

func (c *chunkReader) Read(p []byte, wait time.Duration) (int, error) {
	if len(c.pending) > 0 {
		n := copy(p, c.pending)
		c.pending = c.pending[n:]

		return n, nil
	}

	if c.err != nil {
		return 0, c.err
	}

	var timeout <-chan time.Time

	if wait > 0 {
		timer := time.NewTimer(wait)
		defer timer.Stop()

		timeout = timer.C
	} else {
		closed := make(chan time.Time)
		close(closed)

		timeout = closed
	}

	select {
	case chunk, ok := <-c.chunks:
		if !ok {
			// readErr is written before chunks is closed.
			c.err = c.readErr

			return 0, c.err
		}

		n := copy(p, chunk)
		c.pending = chunk[n:]

		return n, nil
	case <-timeout:
		return 0, nil
	}
}

// Close stops handing over chunks. A read already blocked on the underlying
// reader still completes before the goroutine exits.
func (c *chunkReader) Close() {
	c.stopped.Do(func() { close(c.stop) })
}

// normalizeReadError maps the ways a closed channel reports itself to io.EOF.
// A pseudoterminal master returns EIO once the child side is gone.
func normalizeReadError(err error) error {
	switch {
	case stderrors.Is(err, io.EOF),
		stderrors.Is(err, syscall.EIO),
		stderrors.Is(err, os.ErrClosed),
		stderrors.Is(err, io.ErrClosedPipe):
		return io.EOF
	default:
		return err
	}
}
