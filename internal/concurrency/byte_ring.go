// File: internal/concurrency/byte_ring.go
// Package concurrency implements bounded buffers for transport objects.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// ByteRing is a bounded circular byte buffer backing the stream socket
// direction. Capacity is rounded to a power of two so index math stays
// a mask. The ring itself is not synchronized; the owning socket
// serializes access under its endpoint lock.

package concurrency

// ByteRing is a bounded FIFO of bytes.
type ByteRing struct {
	data []byte
	mask uint64
	head uint64
	tail uint64
}

// NewByteRing allocates a ring holding at least capacity bytes.
func NewByteRing(capacity int) *ByteRing {
	if capacity < 2 {
		capacity = 2
	}
	size := uint64(1)
	for size < uint64(capacity) {
		size <<= 1
	}
	return &ByteRing{
		data: make([]byte, size),
		mask: size - 1,
	}
}

// Write copies as much of p as fits and returns the count.
func (r *ByteRing) Write(p []byte) int {
	n := 0
	for n < len(p) && r.tail-r.head < uint64(len(r.data)) {
		r.data[r.tail&r.mask] = p[n]
		r.tail++
		n++
	}
	return n
}

// Read copies up to len(p) buffered bytes into p and returns the count.
func (r *ByteRing) Read(p []byte) int {
	n := 0
	for n < len(p) && r.head < r.tail {
		p[n] = r.data[r.head&r.mask]
		r.head++
		n++
	}
	return n
}

// Len returns the number of buffered bytes.
func (r *ByteRing) Len() int { return int(r.tail - r.head) }

// Cap returns the fixed ring capacity.
func (r *ByteRing) Cap() int { return len(r.data) }

// Free returns the remaining room.
func (r *ByteRing) Free() int { return r.Cap() - r.Len() }
