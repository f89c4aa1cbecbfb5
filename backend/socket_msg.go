// File: backend/socket_msg.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Channel-backed socket backends: synchronous datagram, raw, and
// packet sockets. Payload I/O is a synchronous message exchange with
// the socket service; the three kinds share one state and one ops
// table and differ only in their reported kind.

package backend

import (
	"unsafe"

	"github.com/momentics/ioplane/api"
	"github.com/momentics/ioplane/object"
	"github.com/momentics/ioplane/pool"
	"github.com/momentics/ioplane/transport"
	"github.com/momentics/ioplane/vector"
)

type msgSocketState struct {
	io        object.IO
	client    api.MessageSocketClient
	control   api.SocketControl
	readiness *transport.Signaler
	kind      api.NodeKind
}

var _ = [1]struct{}{}[unsafe.Offsetof(msgSocketState{}.io)]
var _ [object.StorageSize - unsafe.Sizeof(msgSocketState{})]byte

var msgPool = pool.NewBytePool(64 * 1024)

func msgSocketOf(io *object.IO) *msgSocketState { return object.State[msgSocketState](io) }

// SyncDatagramSocketInit constructs a synchronous datagram socket
// object over client.
func SyncDatagramSocketInit(st *object.Storage, client api.MessageSocketClient, control api.SocketControl, readiness *transport.Signaler) (*object.IO, error) {
	return msgSocketInit(st, client, control, readiness, api.NodeSyncDatagramSocket)
}

// RawSocketInit constructs a raw socket object over client.
func RawSocketInit(st *object.Storage, client api.MessageSocketClient, control api.SocketControl, readiness *transport.Signaler) (*object.IO, error) {
	return msgSocketInit(st, client, control, readiness, api.NodeRawSocket)
}

// PacketSocketInit constructs a packet socket object over client.
func PacketSocketInit(st *object.Storage, client api.MessageSocketClient, control api.SocketControl, readiness *transport.Signaler) (*object.IO, error) {
	return msgSocketInit(st, client, control, readiness, api.NodePacketSocket)
}

func msgSocketInit(st *object.Storage, client api.MessageSocketClient, control api.SocketControl, readiness *transport.Signaler, kind api.NodeKind) (*object.IO, error) {
	if client == nil {
		return nil, api.ErrInvalidArgument
	}
	m := object.Place[msgSocketState](st)
	m.io.Init(&msgSocketOps)
	m.client = client
	m.control = control
	m.readiness = readiness
	m.kind = kind
	return &m.io, nil
}

func (m *msgSocketState) close() error {
	err := m.client.Close()
	if m.control != nil {
		if cerr := m.control.Close(); err == nil {
			err = cerr
		}
		m.control = nil
	}
	m.client = nil
	return err
}

// readVector receives one message and scatters it; message payload
// beyond the descriptor is discarded.
func (m *msgSocketState) readVector(vecs [][]byte) (int, error) {
	buf := msgPool.GetBuffer()
	defer msgPool.PutBuffer(buf)
	n, err := m.client.RecvMsg(buf)
	if err != nil {
		return 0, err
	}
	return vector.Scatter(buf[:n], vecs), nil
}

// writeVector gathers the descriptor into one message.
func (m *msgSocketState) writeVector(vecs [][]byte) (int, error) {
	total := vector.Length(vecs)
	buf := msgPool.GetBuffer()
	defer msgPool.PutBuffer(buf)
	if total > cap(buf) {
		buf = make([]byte, total)
	}
	buf = buf[:total]
	vector.Gather(vecs, buf)
	return m.client.SendMsg(buf)
}

func (m *msgSocketState) waitBegin(signals api.Signals) (object.WaitTarget, error) {
	if m.readiness == nil {
		return object.WaitTarget{}, api.ErrNotSupported
	}
	return object.WaitTarget{Signaler: m.readiness, Mask: remoteMask(signals)}, nil
}

var msgSocketOps = func() object.Ops {
	ops := object.DefaultOps()
	ops.Close = func(io *object.IO) error { return msgSocketOf(io).close() }
	ops.Read = func(io *object.IO, p []byte) (int, error) {
		return msgSocketOf(io).client.RecvMsg(p)
	}
	ops.Write = func(io *object.IO, p []byte) (int, error) {
		return msgSocketOf(io).client.SendMsg(p)
	}
	ops.ReadVector = func(io *object.IO, vecs [][]byte) (int, error) {
		return msgSocketOf(io).readVector(vecs)
	}
	ops.WriteVector = func(io *object.IO, vecs [][]byte) (int, error) {
		return msgSocketOf(io).writeVector(vecs)
	}
	ops.WaitBegin = func(io *object.IO, signals api.Signals) (object.WaitTarget, error) {
		return msgSocketOf(io).waitBegin(signals)
	}
	ops.WaitEnd = func(io *object.IO, observed transport.Signals) api.Signals {
		return remoteUnmask(observed)
	}
	ops.AttrGet = func(io *object.IO) (api.Attr, error) {
		return api.Attr{Has: api.AttrHasKind, Kind: msgSocketOf(io).kind}, nil
	}
	return ops
}()
