// File: transport/signals.go
// Author: momentics <momentics@gmail.com>
//
// Signal state and waiter registration for transport objects.
//
// A Signaler is the wait target handed out by wait_begin: one thread
// blocks in Wait while another performs I/O that asserts or deasserts
// bits. Deadlines are the waiter's responsibility, carried by the
// context; the transport layer never arms timers of its own.
//
// Bit state is atomic and separate from the waiter registry. Objects
// that guard a buffer with sig.mu flip bits via raise/Deassert inside
// their critical section and call wake once the lock is released, so
// the asserted state never disagrees with the buffer it describes.

package transport

import (
	"context"
	"sync"
	"sync/atomic"
)

// Signals is a bitmask of transport-object-level conditions.
type Signals uint32

const (
	// Readable: the object has data or messages to consume.
	Readable Signals = 1 << iota
	// Writable: the object has room to accept data or messages.
	Writable
	// ReadDisabled: the read direction was shut down.
	ReadDisabled
	// WriteDisabled: the write direction was shut down.
	WriteDisabled
	// PeerClosed: every handle to the other endpoint is gone.
	PeerClosed
)

// Signaler tracks current signal state and wakes registered waiters.
type Signaler struct {
	cur     atomic.Uint32
	mu      sync.Mutex
	waiters map[*waiter]struct{}
}

type waiter struct {
	mask Signals
	ch   chan Signals
}

// State returns the currently asserted signal bits.
func (s *Signaler) State() Signals {
	return Signals(s.cur.Load())
}

// raise sets bits without waking anyone. Callers holding a buffer
// lock raise here and wake after unlocking.
func (s *Signaler) raise(bits Signals) {
	for {
		old := s.cur.Load()
		if s.cur.CompareAndSwap(old, old|uint32(bits)) {
			return
		}
	}
}

// wake delivers to waiters whose mask overlaps the current state. A
// bit lowered again before wake runs simply wakes nobody.
func (s *Signaler) wake() {
	s.mu.Lock()
	cur := Signals(s.cur.Load())
	var woken []*waiter
	for w := range s.waiters {
		if w.mask&cur != 0 {
			woken = append(woken, w)
		}
	}
	for _, w := range woken {
		delete(s.waiters, w)
		w.ch <- cur & w.mask
	}
	s.mu.Unlock()
}

// Assert raises bits and wakes waiters interested in any of them.
func (s *Signaler) Assert(bits Signals) {
	s.raise(bits)
	s.wake()
}

// Deassert lowers bits. Waiters are never woken by a falling edge.
func (s *Signaler) Deassert(bits Signals) {
	for {
		old := s.cur.Load()
		if s.cur.CompareAndSwap(old, old&^uint32(bits)) {
			return
		}
	}
}

// Wait blocks until any bit in mask is asserted or the context ends.
// It returns the observed bits restricted to mask.
func (s *Signaler) Wait(ctx context.Context, mask Signals) (Signals, error) {
	s.mu.Lock()
	if got := Signals(s.cur.Load()) & mask; got != 0 {
		s.mu.Unlock()
		return got, nil
	}
	// A raise between the check above and this registration is safe:
	// its wake must take s.mu and will find the waiter.
	w := &waiter{mask: mask, ch: make(chan Signals, 1)}
	if s.waiters == nil {
		s.waiters = make(map[*waiter]struct{})
	}
	s.waiters[w] = struct{}{}
	s.mu.Unlock()

	select {
	case got := <-w.ch:
		return got, nil
	case <-ctx.Done():
		s.mu.Lock()
		delete(s.waiters, w)
		s.mu.Unlock()
		// A wake may have raced the cancellation.
		select {
		case got := <-w.ch:
			return got, nil
		default:
		}
		return 0, ctx.Err()
	}
}
