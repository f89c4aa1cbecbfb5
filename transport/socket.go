// File: transport/socket.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// In-process socket pair with stream and datagram flavors. Stream
// directions buffer bytes in a bounded ring; datagram directions queue
// whole records and never split them. Reads and writes are short when
// the buffer runs out; readiness is reported through each endpoint's
// Signaler.

package transport

import (
	"github.com/eapache/queue"

	"github.com/momentics/ioplane/api"
	"github.com/momentics/ioplane/internal/concurrency"
)

// SocketKind selects the transfer discipline of a socket pair.
type SocketKind int

const (
	StreamSocket SocketKind = iota
	DatagramSocket
)

func (k SocketKind) String() string {
	if k == DatagramSocket {
		return "datagram"
	}
	return "stream"
}

// SocketInfo describes a socket endpoint to its owning I/O object.
type SocketInfo struct {
	Kind   SocketKind
	BufMax int
}

// Socket is one endpoint of a socket pair.
type Socket struct {
	refs refs
	peer *Socket
	kind SocketKind
	cap  int

	// sig.mu guards the receive state below. Signal bits flip while
	// the lock is held, so the asserted state always matches the
	// buffer; waiters are woken only after the lock is released.
	sig           Signaler
	rx            *concurrency.ByteRing // stream kind
	rxq           *queue.Queue          // datagram kind, elements are []byte
	rxqBytes      int
	closed        bool
	readDisabled  bool // own read direction shut down
	writeDisabled bool // own write direction shut down
	rxEOF         bool // peer shut down its write direction
}

// NewSocketPair creates two connected endpoints with the given
// per-direction buffer capacity in bytes.
func NewSocketPair(kind SocketKind, capacity int) (*Socket, *Socket, error) {
	if capacity <= 0 {
		return nil, nil, api.ErrInvalidArgument
	}
	a := newSocketEnd(kind, capacity)
	b := newSocketEnd(kind, capacity)
	a.peer, b.peer = b, a
	return a, b, nil
}

func newSocketEnd(kind SocketKind, capacity int) *Socket {
	s := &Socket{kind: kind, cap: capacity}
	s.refs.init()
	if kind == StreamSocket {
		s.rx = concurrency.NewByteRing(capacity)
		s.cap = s.rx.Cap() // ring rounds up to a power of two
	} else {
		s.rxq = queue.New()
	}
	s.sig.Assert(Writable)
	return s
}

// Info describes this endpoint.
func (s *Socket) Info() SocketInfo { return SocketInfo{Kind: s.kind, BufMax: s.cap} }

// Readiness exposes the endpoint's wait target.
func (s *Socket) Readiness() *Signaler { return &s.sig }

// Write moves bytes toward the peer. Stream sockets accept partial
// writes; datagram sockets enqueue p as one atomic record.
func (s *Socket) Write(p []byte) (int, error) {
	s.sig.mu.Lock()
	closed, wd := s.closed, s.writeDisabled
	s.sig.mu.Unlock()
	if closed {
		return 0, api.ErrBadState
	}
	if wd {
		return 0, api.ErrBadState
	}

	peer := s.peer
	peer.sig.mu.Lock()
	if peer.closed {
		peer.sig.mu.Unlock()
		return 0, api.ErrPeerClosed
	}
	if peer.readDisabled {
		peer.sig.mu.Unlock()
		return 0, api.ErrBadState
	}

	var n int
	switch s.kind {
	case StreamSocket:
		n = peer.rx.Write(p)
		if n == 0 && len(p) > 0 {
			peer.sig.mu.Unlock()
			return 0, api.ErrWouldBlock
		}
		if n > 0 {
			peer.sig.raise(Readable)
		}
		if peer.rx.Free() == 0 {
			s.sig.Deassert(Writable)
		}
	case DatagramSocket:
		if len(p) > s.cap {
			peer.sig.mu.Unlock()
			return 0, api.ErrOutOfRange
		}
		if peer.rxqBytes+len(p) > s.cap {
			peer.sig.mu.Unlock()
			return 0, api.ErrWouldBlock
		}
		rec := make([]byte, len(p))
		copy(rec, p)
		peer.rxq.Add(rec)
		peer.rxqBytes += len(rec)
		peer.sig.raise(Readable)
		if peer.rxqBytes >= s.cap {
			s.sig.Deassert(Writable)
		}
		n = len(p)
	}
	peer.sig.mu.Unlock()
	peer.sig.wake()
	return n, nil
}

// Read drains buffered bytes. Stream reads are short when less is
// buffered; datagram reads return one record, truncating it to len(p)
// and discarding the remainder.
func (s *Socket) Read(p []byte) (int, error) {
	s.sig.mu.Lock()
	if s.closed {
		s.sig.mu.Unlock()
		return 0, api.ErrBadState
	}

	var n int
	switch s.kind {
	case StreamSocket:
		n = s.rx.Read(p)
		if n == 0 && len(p) > 0 {
			return 0, s.emptyReadLocked()
		}
		if s.rx.Len() == 0 {
			s.sig.Deassert(Readable)
		}
	case DatagramSocket:
		if s.rxq.Length() == 0 {
			return 0, s.emptyReadLocked()
		}
		rec := s.rxq.Remove().([]byte)
		s.rxqBytes -= len(rec)
		n = copy(p, rec)
		if s.rxq.Length() == 0 {
			s.sig.Deassert(Readable)
		}
	}
	s.peer.sig.raise(Writable)
	s.sig.mu.Unlock()
	s.peer.sig.wake()
	return n, nil
}

// emptyReadLocked classifies a read against an empty buffer and
// releases the endpoint lock.
func (s *Socket) emptyReadLocked() error {
	peerGone := s.sig.State()&PeerClosed != 0
	eof := s.rxEOF
	disabled := s.readDisabled
	s.sig.mu.Unlock()
	switch {
	case peerGone, eof:
		return api.ErrPeerClosed
	case disabled:
		return api.ErrBadState
	default:
		return api.ErrWouldBlock
	}
}

// Shutdown disables the selected directions of this endpoint.
func (s *Socket) Shutdown(read, write bool) error {
	s.sig.mu.Lock()
	if s.closed {
		s.sig.mu.Unlock()
		return api.ErrBadState
	}
	s.readDisabled = s.readDisabled || read
	s.writeDisabled = s.writeDisabled || write
	s.sig.mu.Unlock()

	if read {
		s.sig.Assert(ReadDisabled)
	}
	if write {
		s.sig.Assert(WriteDisabled)
		peer := s.peer
		peer.sig.mu.Lock()
		peer.rxEOF = true
		peer.sig.mu.Unlock()
		peer.sig.Assert(ReadDisabled)
	}
	return nil
}

// Close releases this endpoint. The last owner's close orphans the
// peer, which keeps draining buffered data before observing it.
func (s *Socket) Close() error {
	if !s.refs.release() {
		return nil
	}
	s.sig.mu.Lock()
	s.closed = true
	s.sig.mu.Unlock()
	s.peer.sig.Assert(PeerClosed)
	return nil
}

// Duplicate adds an owner of this endpoint. Both owners share kernel-
// side buffers; serialization beyond single operations is up to them.
func (s *Socket) Duplicate() *Socket {
	s.refs.acquire()
	return s
}
