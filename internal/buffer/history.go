package buffer

import "sync"

// History keeps the most recent raw output bytes, before any decoding,
// so malformed output can still be inspected byte for byte.
//
// All methods are safe for concurrent use.
type History struct {
	mu       sync.Mutex
	data     []byte
	capacity int
	total    uint64
}

// NewHistory creates a history that retains at most capacity bytes.
func NewHistory(capacity int) *History {
	return &History{capacity: capacity}
}

// Write appends p, dropping the oldest bytes beyond capacity.
func (h *History) Write(p []byte) (int, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.total += uint64(len(p))

	if h.capacity <= 0 {
		return len(p), nil
	}

	if len(p) >= h.capacity {
		h.data = append(h.data[:0], p[len(p)-h.capacity:]...)

		return len(p), nil
	}

	if overflow := len(h.data) + len(p) - h.capacity; overflow > 0 {
		h.data = append(h.data[:0], h.data[overflow:]...)
	}

	h.data = append(h.data, p...)

	return len(p), nil
}

// Bytes returns a copy of the retained bytes.
func (h *History) Bytes() []byte {
	h.mu.Lock()
	defer h.mu.Unlock()

	return append([]byte(nil), h.data...)
}

// Total returns the number of bytes ever written.
func (h *History) Total() uint64 {
	h.mu.Lock()
	defer h.mu.Unlock()

	return h.total
}
