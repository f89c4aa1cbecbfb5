// File: fake/msgsocket.go
// Author: momentics <momentics@gmail.com>
//
// Loopback message socket for the channel-backed socket backends:
// every sent message becomes the next received message.

package fake

import (
	"sync"

	"github.com/momentics/ioplane/api"
	"github.com/momentics/ioplane/transport"
)

// MessageSocket is a fake api.MessageSocketClient with loopback
// delivery and controllable errors.
type MessageSocket struct {
	mu      sync.Mutex
	queue   [][]byte
	sendErr error
	recvErr error
	closed  bool
	sig     transport.Signaler
}

// NewMessageSocket creates an empty loopback message socket.
func NewMessageSocket() *MessageSocket {
	m := &MessageSocket{}
	m.sig.Assert(transport.Writable)
	return m
}

// Readiness exposes the socket's wait target.
func (m *MessageSocket) Readiness() *transport.Signaler { return &m.sig }

// SendMsg implements api.MessageSocketClient.
func (m *MessageSocket) SendMsg(p []byte) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return 0, api.ErrBadState
	}
	if m.sendErr != nil {
		return 0, m.sendErr
	}
	rec := make([]byte, len(p))
	copy(rec, p)
	m.queue = append(m.queue, rec)
	m.sig.Assert(transport.Readable)
	return len(p), nil
}

// RecvMsg implements api.MessageSocketClient.
func (m *MessageSocket) RecvMsg(p []byte) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return 0, api.ErrBadState
	}
	if m.recvErr != nil {
		return 0, m.recvErr
	}
	if len(m.queue) == 0 {
		return 0, api.ErrWouldBlock
	}
	rec := m.queue[0]
	m.queue = m.queue[1:]
	if len(m.queue) == 0 {
		m.sig.Deassert(transport.Readable)
	}
	return copy(p, rec), nil
}

// Close implements api.MessageSocketClient.
func (m *MessageSocket) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

// SetSendError forces SendMsg to fail with err.
func (m *MessageSocket) SetSendError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sendErr = err
}

// SetRecvError forces RecvMsg to fail with err.
func (m *MessageSocket) SetRecvError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.recvErr = err
}
