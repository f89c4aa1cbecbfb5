// File: backend/node.go
// Author: momentics <momentics@gmail.com>
//
// Remote-node collaborator contract. The layer only invokes the
// request/reply protocol; implementing it (or proxying it over a
// channel) is the service's business. See fake.NodeService for the
// in-memory rendition used by tests.

package backend

import (
	"github.com/momentics/ioplane/api"
	"github.com/momentics/ioplane/transport"
)

// NodeClient is a synchronous client of one remote filesystem node.
// Every method is one request/reply round trip.
type NodeClient interface {
	// Describe performs the capability-description handshake that
	// tells the factory which backend to construct.
	Describe() (NodeInfo, error)
	Read(p []byte) (int, error)
	Write(p []byte) (int, error)
	Seek(offset int64, whence api.Whence) (int64, error)
	// Clone duplicates the node connection, yielding an independent
	// client over the same remote node.
	Clone() (NodeClient, error)
	AttrGet() (api.Attr, error)
	AttrSet(attr api.Attr) error
	Close() error
}

// NodeInfo is the result of the describe handshake: the node kind
// plus whatever handles and metadata the chosen backend needs. Handle
// ownership transfers to the constructed object (or is released by
// the factory when construction fails).
type NodeInfo struct {
	Kind api.NodeKind

	// Socket carries payload bytes for pipe, stream and datagram
	// backends.
	Socket *transport.Socket

	// Region and its window describe memory-file backends. A zero
	// RegionLength means the whole region.
	Region       *transport.Region
	RegionStart  uint64
	RegionLength uint64
	RegionSeek   uint64

	// Log is the record sink handle for logsink nodes.
	Log *transport.Log

	// Prelude reports wire header sizes for datagram sockets.
	Prelude api.PreludeSize

	// Connected marks a stream socket that arrives already connected.
	Connected bool

	// Readiness is an optional wait target for channel-backed nodes.
	Readiness *transport.Signaler

	// Message carries payload for channel-backed sockets.
	Message api.MessageSocketClient

	// Control is the socket-configuration channel client.
	Control api.SocketControl
}

// releaseHandles closes every handle an unconsumed NodeInfo carries.
// Used when the factory meets a kind it cannot construct or an
// initializer refuses the delivered handles.
func (ni *NodeInfo) releaseHandles() {
	if ni.Socket != nil {
		_ = ni.Socket.Close()
	}
	if ni.Region != nil {
		_ = ni.Region.Close()
	}
	if ni.Log != nil {
		_ = ni.Log.Close()
	}
	if ni.Message != nil {
		_ = ni.Message.Close()
	}
	if ni.Control != nil {
		_ = ni.Control.Close()
	}
}
