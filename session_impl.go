package expectr

import (
	"context"
	"time"

	"github.com/wagiedev/expectr-go/internal/session"
)

// sessionWrapper wraps the internal session to adapt it to the public interface.
type sessionWrapper struct {
	impl *session.Session
}

// Compile-time check that *sessionWrapper implements the Session interface.
var _ Session = (*sessionWrapper)(nil)

func (s *sessionWrapper) Expect(ctx context.Context, pattern any, opts ...ExpectOption) (*Match, error) {
	return s.impl.Expect(ctx, pattern, applyExpectOptions(opts))
}

func (s *sessionWrapper) ExpectMap(ctx context.Context, cases ExpectCases) (*Match, error) {
	return s.impl.ExpectMap(ctx, cases)
}

func (s *sessionWrapper) Send(ctx context.Context, text string) error {
	return s.impl.Send(ctx, text)
}

func (s *sessionWrapper) SendLine(ctx context.Context, text string) error {
	return s.impl.SendLine(ctx, text)
}

func (s *sessionWrapper) Buffer() string  { return s.impl.Buffer() }
func (s *sessionWrapper) Discard() string { return s.impl.Discard() }
func (s *sessionWrapper) History() []byte { return s.impl.History() }
func (s *sessionWrapper) ClearBuffer()    { s.impl.ClearBuffer() }

func (s *sessionWrapper) Kill(signal string) (bool, error) {
	return s.impl.Kill(signal)
}

func (s *sessionWrapper) Interact(opts ...InteractOption) (*InteractHandle, error) {
	return s.impl.Interact(applyInteractOptions(opts))
}

func (s *sessionWrapper) Leave()            { s.impl.Leave() }
func (s *sessionWrapper) Interacting() bool { return s.impl.Interacting() }

func (s *sessionWrapper) Pid() int              { return s.impl.Pid() }
func (s *sessionWrapper) Alive() bool           { return s.impl.Alive() }
func (s *sessionWrapper) Done() <-chan struct{} { return s.impl.Done() }

func (s *sessionWrapper) WindowSize() (*Winsize, error) {
	return s.impl.WindowSize()
}

func (s *sessionWrapper) SetWindowSize(ws *Winsize) error {
	return s.impl.SetWindowSize(ws)
}

func (s *sessionWrapper) Timeout() time.Duration { return s.impl.Timeout() }

func (s *sessionWrapper) SetTimeout(timeout time.Duration) error {
	return s.impl.SetTimeout(timeout)
}

func (s *sessionWrapper) FlushBuffer() bool         { return s.impl.FlushBuffer() }
func (s *sessionWrapper) SetFlushBuffer(flush bool) { s.impl.SetFlushBuffer(flush) }
func (s *sessionWrapper) Constrain() bool           { return s.impl.Constrain() }
func (s *sessionWrapper) SetConstrain(c bool)       { s.impl.SetConstrain(c) }
func (s *sessionWrapper) BufferSize() int           { return s.impl.BufferSize() }

func (s *sessionWrapper) SetBufferSize(size int) error {
	return s.impl.SetBufferSize(size)
}

func (s *sessionWrapper) Close() error {
	return s.impl.Close()
}
