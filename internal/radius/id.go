package radius

import (
	"crypto/rand"
	"fmt"
	"sync"
)

// IDAllocator generates RADIUS packet identifiers: the 8-bit Identifier
// field (RFC 2865 §3) is a process-wide monotonic counter, seeded from
// a cryptographically strong random source and incremented modulo 256
// on every call so concurrent clients sharing one allocator never hand
// out the same identifier to two in-flight requests.
type IDAllocator struct {
	mu   sync.Mutex
	next uint8
}

// NewIDAllocator returns an IDAllocator seeded with a random starting
// value.
func NewIDAllocator() (*IDAllocator, error) {
	var buf [1]byte
	if _, err := rand.Read(buf[:]); err != nil {
		return nil, fmt.Errorf("seed id allocator: %w", err)
	}
	return &IDAllocator{next: buf[0]}, nil
}

// Next returns the next packet identifier and advances the counter by
// one, wrapping at 256.
func (a *IDAllocator) Next() uint8 {
	a.mu.Lock()
	defer a.mu.Unlock()

	id := a.next
	a.next++
	return id
}
