// File: transport/ossocket_unix.go
//go:build unix

// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// OS descriptor variant of the byte-stream transport: a real
// socketpair wrapped behind the same contract the in-process socket
// offers, for callers bridging to kernel endpoints.

package transport

import (
	"fmt"

	"golang.org/x/sys/unix"

	"github.com/momentics/ioplane/api"
)

// OSSocket wraps one end of an OS-level stream socket pair.
type OSSocket struct {
	refs refs
	fd   int
}

// NewOSSocketPair creates a connected AF_UNIX stream pair in
// non-blocking mode.
func NewOSSocketPair() (*OSSocket, *OSSocket, error) {
	fds, err := unix.Socketpair(unix.AF_UNIX, unix.SOCK_STREAM|unix.SOCK_NONBLOCK, 0)
	if err != nil {
		return nil, nil, fmt.Errorf("socketpair: %w", err)
	}
	a := &OSSocket{fd: fds[0]}
	b := &OSSocket{fd: fds[1]}
	a.refs.init()
	b.refs.init()
	return a, b, nil
}

// FD exposes the raw descriptor for external multiplexers.
func (s *OSSocket) FD() int { return s.fd }

// Read drains available bytes, mapping OS errnos to the layer's
// taxonomy.
func (s *OSSocket) Read(p []byte) (int, error) {
	n, err := unix.Read(s.fd, p)
	if err != nil {
		return 0, mapErrno(err)
	}
	if n == 0 && len(p) > 0 {
		return 0, api.ErrPeerClosed
	}
	return n, nil
}

// Write copies bytes into the kernel socket buffer.
func (s *OSSocket) Write(p []byte) (int, error) {
	n, err := unix.Write(s.fd, p)
	if err != nil {
		return 0, mapErrno(err)
	}
	return n, nil
}

// Close releases this descriptor on the last owner.
func (s *OSSocket) Close() error {
	if !s.refs.release() {
		return nil
	}
	return unix.Close(s.fd)
}

// Duplicate adds an owner of the descriptor.
func (s *OSSocket) Duplicate() *OSSocket {
	s.refs.acquire()
	return s
}

func mapErrno(err error) error {
	switch err {
	// EWOULDBLOCK aliases EAGAIN on every unix port; listing both
	// would be a duplicate case.
	case unix.EAGAIN:
		return api.ErrWouldBlock
	case unix.EPIPE, unix.ECONNRESET:
		return api.ErrPeerClosed
	case unix.EINVAL:
		return api.ErrInvalidArgument
	default:
		return fmt.Errorf("os socket: %w", err)
	}
}
