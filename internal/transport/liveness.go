package transport

import (
	"sync"
)

// Liveness records whether a transport is still usable.
// The transition from alive to gone happens once and is never undone.
type Liveness struct {
	done   chan struct{}
	once   sync.Once
	mu     sync.Mutex
	reason error
}

// NewLiveness returns an alive record.
func NewLiveness() *Liveness {
	return &Liveness{done: make(chan struct{})}
}

// Alive reports whether MarkGone has not yet been called.
func (l *Liveness) Alive() bool {
	select {
	case <-l.done:
		return false
	default:
		return true
	}
}

// Done is closed once the record is gone.
func (l *Liveness) Done() <-chan struct{} {
	return l.done
}

// MarkGone flips the record to gone. Only the first reason is kept.
func (l *Liveness) MarkGone(reason error) {
	l.once.Do(func() {
		l.mu.Lock()
		l.reason = reason
		l.mu.Unlock()

		close(l.done)
	})
}

// Reason returns the reason passed to the first MarkGone call.
func (l *Liveness) Reason() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.reason
}
