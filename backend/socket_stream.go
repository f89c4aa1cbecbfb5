// File: backend/socket_stream.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Stream socket backend: payload bytes flow through the socket
// endpoint, connection management flows through the configuration
// channel. The backend tracks connected/unconnected state; byte I/O
// on an unconnected socket is rejected before the transport is
// touched.

package backend

import (
	"unsafe"

	"github.com/momentics/ioplane/api"
	"github.com/momentics/ioplane/object"
	"github.com/momentics/ioplane/transport"
	"github.com/momentics/ioplane/vector"
)

type streamSocketState struct {
	io        object.IO
	sock      *transport.Socket
	control   api.SocketControl
	connected bool
}

var _ = [1]struct{}{}[unsafe.Offsetof(streamSocketState{}.io)]
var _ [object.StorageSize - unsafe.Sizeof(streamSocketState{})]byte

func streamSocketOf(io *object.IO) *streamSocketState {
	return object.State[streamSocketState](io)
}

// StreamSocketInit constructs a stream socket object owning sock and
// control. connected reflects the result of the construction-time
// handshake.
func StreamSocketInit(st *object.Storage, sock *transport.Socket, control api.SocketControl, connected bool) (*object.IO, error) {
	if sock == nil || control == nil {
		return nil, api.ErrInvalidArgument
	}
	if sock.Info().Kind != transport.StreamSocket {
		return nil, api.ErrInvalidArgument
	}
	s := object.Place[streamSocketState](st)
	s.io.Init(&streamSocketOps)
	s.sock = sock
	s.control = control
	s.connected = connected
	return &s.io, nil
}

// StreamSocketConnect drives the connect verb over the configuration
// channel and marks the object connected. io must be a stream socket
// object.
func StreamSocketConnect(io *object.IO, addr string) error {
	s := streamSocketOf(io)
	if err := s.control.Connect(addr); err != nil {
		return err
	}
	s.connected = true
	return nil
}

// StreamSocketBind drives the bind verb over the configuration
// channel.
func StreamSocketBind(io *object.IO, addr string) error {
	return streamSocketOf(io).control.Bind(addr)
}

func (s *streamSocketState) close() error {
	err := s.sock.Close()
	if cerr := s.control.Close(); err == nil {
		err = cerr
	}
	s.sock = nil
	s.control = nil
	return err
}

func (s *streamSocketState) read(p []byte) (int, error) {
	if !s.connected {
		return 0, api.ErrNotConnected
	}
	return s.sock.Read(p)
}

func (s *streamSocketState) write(p []byte) (int, error) {
	if !s.connected {
		return 0, api.ErrNotConnected
	}
	return s.sock.Write(p)
}

func (s *streamSocketState) attrGet() (api.Attr, error) {
	flags := uint32(0)
	if s.connected {
		flags = 1
	}
	return api.Attr{
		Has:         api.AttrHasKind | api.AttrHasStorageSize | api.AttrHasFlags,
		Kind:        api.NodeStreamSocket,
		StorageSize: uint64(s.sock.Info().BufMax),
		Flags:       flags,
	}, nil
}

var streamSocketOps = func() object.Ops {
	ops := object.DefaultOps()
	ops.Close = func(io *object.IO) error { return streamSocketOf(io).close() }
	ops.Read = func(io *object.IO, p []byte) (int, error) {
		return streamSocketOf(io).read(p)
	}
	ops.Write = func(io *object.IO, p []byte) (int, error) {
		return streamSocketOf(io).write(p)
	}
	ops.ReadVector = func(io *object.IO, vecs [][]byte) (int, error) {
		return vector.Do(vecs, streamSocketOf(io).read)
	}
	ops.WriteVector = func(io *object.IO, vecs [][]byte) (int, error) {
		return vector.Do(vecs, streamSocketOf(io).write)
	}
	ops.WaitBegin = func(io *object.IO, signals api.Signals) (object.WaitTarget, error) {
		s := streamSocketOf(io)
		target := object.WaitTarget{Signaler: s.sock.Readiness()}
		if signals&api.SignalReadable != 0 {
			target.Mask |= transport.Readable
		}
		if signals&api.SignalWritable != 0 {
			target.Mask |= transport.Writable
		}
		if signals&api.SignalPeerClosed != 0 {
			target.Mask |= transport.PeerClosed
		}
		return target, nil
	}
	ops.WaitEnd = func(io *object.IO, observed transport.Signals) api.Signals {
		var signals api.Signals
		if observed&transport.Readable != 0 {
			signals |= api.SignalReadable
		}
		if observed&transport.Writable != 0 {
			signals |= api.SignalWritable
		}
		if observed&transport.PeerClosed != 0 {
			signals |= api.SignalPeerClosed
		}
		return signals
	}
	ops.AttrGet = func(io *object.IO) (api.Attr, error) {
		return streamSocketOf(io).attrGet()
	}
	return ops
}()
