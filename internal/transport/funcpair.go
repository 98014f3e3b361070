package transport

import (
	"context"
	"log/slog"
	"sync"
	"syscall"
	"time"

	"github.com/wagiedev/expectr-go/internal/config"
	"github.com/wagiedev/expectr-go/internal/errors"
)

// idleBackoff is how long the producer loop sleeps after an empty result.
const idleBackoff = 10 * time.Millisecond

// Producer returns the next piece of simulated output. It returns io.EOF
// once there will be no more output.
type Producer func() (string, error)

// Consumer receives simulated input.
type Consumer func(string) error

// FuncTransport implements Transport over a producer and a consumer
// function. There is no process: liveness is "alive, no pid" until the
// producer reports the end of output.
type FuncTransport struct {
	*Liveness

	log      *slog.Logger
	options  *config.Options
	producer Producer
	consumer Consumer
	reader   *chunkReader
	stop     chan struct{}

	mu        sync.Mutex // Serializes consumer calls
	closeOnce sync.Once
}

// Compile-time verification that FuncTransport implements the Transport interface.
var _ config.Transport = (*FuncTransport)(nil)

// NewFuncTransport creates a transport around producer and consumer.
func NewFuncTransport(log *slog.Logger, producer Producer, consumer Consumer, options *config.Options) *FuncTransport {
	return &FuncTransport{
		Liveness: NewLiveness(),
		log:      log.With("component", "func_transport"),
		options:  options,
		producer: producer,
		consumer: consumer,
		stop:     make(chan struct{}),
	}
}

// Validate reports a missing producer or consumer as an ArgumentError.
func (t *FuncTransport) Validate() error {
	switch {
	case t.producer == nil:
		return &errors.ArgumentError{Argument: "producer", Reason: "must not be nil"}
	case t.consumer == nil:
		return &errors.ArgumentError{Argument: "consumer", Reason: "must not be nil"}
	}

	return nil
}

// Start begins calling the producer on a background goroutine.
func (t *FuncTransport) Start(_ context.Context) error {
	if err := t.Validate(); err != nil {
		return err
	}

	t.reader = newChunkReader(&producerReader{produce: t.producer, stop: t.stop}, t.options.BufferSize)
	t.log.Debug("Started producer")

	return nil
}

// Read waits at most wait for the producer's next output.
func (t *FuncTransport) Read(p []byte, wait time.Duration) (int, error) {
	if t.reader == nil {
		return 0, &errors.TransportError{Op: "read", Err: errors.ErrProcessNotRunning}
	}

	n, err := t.reader.Read(p, wait)
	if err != nil {
		t.log.Debug("Producer finished", "error", err)
		t.MarkGone(err)

		return n, &errors.TransportError{Op: "read", Err: err}
	}

	return n, nil
}

// Write passes p to the consumer as a string.
func (t *FuncTransport) Write(p []byte) (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.Alive() {
		return 0, &errors.TransportError{Op: "write", Err: errors.ErrProcessGone}
	}

	if err := t.consumer(string(p)); err != nil {
		t.MarkGone(err)

		return 0, &errors.TransportError{Op: "write", Err: err}
	}

	return len(p), nil
}

// Signal is unsupported: there is no process to signal.
func (t *FuncTransport) Signal(_ syscall.Signal) (bool, error) {
	return false, &errors.UnsupportedOperationError{Operation: "signal", Transport: config.KindFunc}
}

// Wait blocks until the producer reports the end of output.
func (t *FuncTransport) Wait(ctx context.Context) error {
	select {
	case <-t.Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Pid always returns 0.
func (t *FuncTransport) Pid() int {
	return 0
}

// Kind returns config.KindFunc.
func (t *FuncTransport) Kind() string {
	return config.KindFunc
}

// Close marks the transport gone and stops handing over producer output.
func (t *FuncTransport) Close() error {
	t.closeOnce.Do(func() {
		t.MarkGone(errors.ErrTransportClosed)
		close(t.stop)

		if t.reader != nil {
			t.reader.Close()
		}
	})

	return nil
}

// producerReader adapts a Producer to io.Reader. It stops calling the
// producer once stop is closed.
type producerReader struct {
	produce Producer
	stop    <-chan struct{}
	pending []byte
}

func (r *producerReader) Read(p []byte) (int, error) {
	for len(r.pending) == 0 {
		select {
		case <-r.stop:
			return 0, errors.ErrTransportClosed
		default:
		}

		s, err := r.produce()
		if err != nil {
			return 0, err
		}

		if s == "" {
			time.Sleep(idleBackoff)

			continue
		}

		r.pending = []byte(s)
	}

	n := copy(p, r.pending)
	r.pending = r.pending[n:]

	return n, nil
}
