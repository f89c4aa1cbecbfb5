// File: transport/channel.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Bidirectional message channel pair. Channels carry the remote-node
// and socket-configuration protocols: datagram messages of bytes plus
// transferred handles, with a synchronous Call helper pairing one
// request with one reply.

package transport

import (
	"context"

	"github.com/eapache/queue"

	"github.com/momentics/ioplane/api"
)

// Message is one unit carried by a channel: a byte payload and any
// transport handles moving with it. Handle ownership transfers to the
// receiver.
type Message struct {
	Data    []byte
	Handles []Handle
}

// Channel is one endpoint of a channel pair.
type Channel struct {
	refs refs
	peer *Channel

	// mu in Signaler guards queue and closed as well: the channel
	// piggybacks on its signal lock and flips the readable bit while
	// holding it, so the bit always matches the queue.
	sig    Signaler
	queue  *queue.Queue
	closed bool
}

// NewChannelPair creates two connected channel endpoints.
func NewChannelPair() (*Channel, *Channel) {
	a := &Channel{queue: queue.New()}
	b := &Channel{queue: queue.New()}
	a.peer, b.peer = b, a
	a.refs.init()
	b.refs.init()
	a.sig.Assert(Writable)
	b.sig.Assert(Writable)
	return a, b
}

// Readiness exposes the endpoint's wait target.
func (c *Channel) Readiness() *Signaler { return &c.sig }

// Write enqueues a message on the peer endpoint.
func (c *Channel) Write(m Message) error {
	p := c.peer
	p.sig.mu.Lock()
	if p.closed {
		p.sig.mu.Unlock()
		return api.ErrPeerClosed
	}
	p.queue.Add(m)
	p.sig.raise(Readable)
	p.sig.mu.Unlock()
	p.sig.wake()
	return nil
}

// Read dequeues the next inbound message. An empty queue yields
// ErrWouldBlock, or ErrPeerClosed once the peer is gone for good.
func (c *Channel) Read() (Message, error) {
	c.sig.mu.Lock()
	if c.closed {
		c.sig.mu.Unlock()
		return Message{}, api.ErrBadState
	}
	if c.queue.Length() == 0 {
		peerClosed := c.sig.State()&PeerClosed != 0
		c.sig.mu.Unlock()
		if peerClosed {
			return Message{}, api.ErrPeerClosed
		}
		return Message{}, api.ErrWouldBlock
	}
	m := c.queue.Remove().(Message)
	if c.queue.Length() == 0 {
		c.sig.Deassert(Readable)
	}
	c.sig.mu.Unlock()
	return m, nil
}

// Call writes a request and blocks for the matching reply. The channel
// protocol is strictly request/reply, so the next readable message is
// the answer.
func (c *Channel) Call(ctx context.Context, m Message) (Message, error) {
	if err := c.Write(m); err != nil {
		return Message{}, err
	}
	for {
		reply, err := c.Read()
		if err == nil {
			return reply, nil
		}
		if err != api.ErrWouldBlock {
			return Message{}, err
		}
		if _, werr := c.sig.Wait(ctx, Readable|PeerClosed); werr != nil {
			return Message{}, werr
		}
	}
}

// Close releases this endpoint. The last owner's close marks the peer
// as orphaned.
func (c *Channel) Close() error {
	if !c.refs.release() {
		return nil
	}
	c.sig.mu.Lock()
	c.closed = true
	c.sig.mu.Unlock()
	c.peer.sig.Assert(PeerClosed)
	return nil
}

// Duplicate adds an owner of this endpoint.
func (c *Channel) Duplicate() *Channel {
	c.refs.acquire()
	return c
}
