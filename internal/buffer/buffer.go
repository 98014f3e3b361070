package buffer

import (
	"context"
	"regexp"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/wagiedev/expectr-go/internal/errors"
)

// defaultPollInterval applies when Params.PollInterval is not positive.
const defaultPollInterval = 100 * time.Millisecond

// Params tunes a single Expect call.
type Params struct {
	// Timeout is the hard deadline on the wait.
	Timeout time.Duration

	// PollInterval is how often a blocked matcher rechecks without a wake.
	PollInterval time.Duration

	// ForceMatch makes the first attempt unconditional instead of waiting
	// for output that arrived after the last failed attempt.
	ForceMatch bool

	// Pattern describes the pattern in a TimeoutError.
	Pattern string
}

// Buffer is the shared output buffer of one session.
type Buffer struct {
	mu        sync.Mutex
	buf       []byte
	discard   []byte
	notify    chan struct{}
	updated   bool
	sealed    bool
	constrain bool
	size      int
}

// New creates an empty buffer. When constrain is set the buffer never holds
// more than size bytes.
func New(size int, constrain bool) *Buffer {
	return &Buffer{
		notify:    make(chan struct{}),
		constrain: constrain,
		size:      size,
	}
}

// Append adds decoded output and wakes blocked matchers.
func (b *Buffer) Append(text string) {
	if text == "" {
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	b.buf = append(b.buf, text...)
	b.constrainLocked()
	b.updated = true
	b.wakeLocked()
}

// Seal records that no more output will arrive and wakes blocked matchers
// one last time.
func (b *Buffer) Seal() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.sealed = true
	b.wakeLocked()
}

// Sealed reports whether Seal has been called.
func (b *Buffer) Sealed() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.sealed
}

// Clear empties the buffer. The discard is left untouched.
func (b *Buffer) Clear() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.buf = nil
	b.updated = false
}

// String returns the unconsumed output.
func (b *Buffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()

	return string(b.buf)
}

// Discard returns the output consumed by the most recent successful match.
func (b *Buffer) Discard() string {
	b.mu.Lock()
	defer b.mu.Unlock()

	return string(b.discard)
}

// Len returns the length of the unconsumed output in bytes.
func (b *Buffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()

	return len(b.buf)
}

// Size returns the configured cap.
func (b *Buffer) Size() int {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.size
}

// SetSize changes the cap and applies it immediately when constraining.
func (b *Buffer) SetSize(size int) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.size = size
	b.constrainLocked()
}

// Constrain reports whether the cap is enforced.
func (b *Buffer) Constrain() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.constrain
}

// SetConstrain turns enforcement of the cap on or off.
func (b *Buffer) SetConstrain(constrain bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.constrain = constrain
	b.constrainLocked()
}

// Expect waits for the leftmost match of re. On success the discard becomes
// the text before the match and the buffer keeps only the text after it.
//
// Without ForceMatch an attempt is made only when output arrived since the
// last failed attempt, or when a previous match left a remainder. When the
// deadline passes Expect returns a TimeoutError; a cancelled ctx returns
// ctx.Err().
func (b *Buffer) Expect(ctx context.Context, re *regexp.Regexp, p Params) (*Match, error) {
	timer := time.NewTimer(p.Timeout)
	defer timer.Stop()

	interval := p.PollInterval
	if interval <= 0 {
		interval = defaultPollInterval
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	force := p.ForceMatch

	for {
		b.mu.Lock()

		if force || b.updated {
			force = false

			if m := b.matchLocked(re); m != nil {
				b.mu.Unlock()

				return m, nil
			}

			b.updated = false
		}

		notify := b.notify
		b.mu.Unlock()

		select {
		case <-notify:
		case <-ticker.C:
		case <-timer.C:
			return nil, &errors.TimeoutError{Pattern: p.Pattern, After: p.Timeout}
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}

// matchLocked searches the buffer and consumes through the match.
// Caller must hold b.mu.
func (b *Buffer) matchLocked(re *regexp.Regexp) *Match {
	loc := re.FindSubmatchIndex(b.buf)
	if loc == nil {
		return nil
	}

	start, end := loc[0], loc[1]

	m := &Match{
		Text:    string(b.buf[start:end]),
		Start:   start,
		End:     end,
		Groups:  make([]string, len(loc)/2),
		Indices: loc,
		Case:    -1,
	}

	for i := range m.Groups {
		if loc[2*i] >= 0 {
			m.Groups[i] = string(b.buf[loc[2*i]:loc[2*i+1]])
		}
	}

	b.discard = append([]byte(nil), b.buf[:start]...)
	b.buf = append([]byte(nil), b.buf[end:]...)

	// The remainder may already hold the next match.
	b.updated = true

	return m
}

// constrainLocked drops the oldest bytes until the buffer fits, cutting on
// a rune boundary. Caller must hold b.mu.
func (b *Buffer) constrainLocked() {
	if !b.constrain || b.size <= 0 || len(b.buf) <= b.size {
		return
	}

	cut := len(b.buf) - b.size
	for cut < len(b.buf) && !utf8.RuneStart(b.buf[cut]) {
		cut++
	}

	b.buf = append([]byte(nil), b.buf[cut:]...)
}

// wakeLocked releases every matcher waiting on the current notification
// channel. Caller must hold b.mu.
func (b *Buffer) wakeLocked() {
	close(b.notify)
	b.notify = make(chan struct{})
}
