// File: backend/pipe.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Pipe backend: direct buffer copy into and out of a byte-stream
// endpoint, either an in-process socket pair or a wrapped OS
// descriptor. Vectorized transfers reduce to the shared adapter with
// the stream's single-buffer primitives.

package backend

import (
	"unsafe"

	"github.com/momentics/ioplane/api"
	"github.com/momentics/ioplane/object"
	"github.com/momentics/ioplane/transport"
	"github.com/momentics/ioplane/vector"
)

type pipeState struct {
	io     object.IO
	stream api.ByteStream
	sock   *transport.Socket // nil when the stream is an OS descriptor
	info   transport.SocketInfo
}

var _ = [1]struct{}{}[unsafe.Offsetof(pipeState{}.io)]
var _ [object.StorageSize - unsafe.Sizeof(pipeState{})]byte

func pipeOf(io *object.IO) *pipeState { return object.State[pipeState](io) }

// PipeInit constructs a pipe object owning sock.
func PipeInit(st *object.Storage, sock *transport.Socket) (*object.IO, error) {
	if sock == nil {
		return nil, api.ErrInvalidArgument
	}
	return PipeStreamInit(st, sock)
}

// PipeStreamInit constructs a pipe object over any byte stream,
// including a wrapped OS descriptor. Readiness waits need an
// in-process socket endpoint; other streams answer ErrNotSupported
// there.
func PipeStreamInit(st *object.Storage, stream api.ByteStream) (*object.IO, error) {
	if stream == nil {
		return nil, api.ErrInvalidArgument
	}
	p := object.Place[pipeState](st)
	p.io.Init(&pipeOps)
	p.stream = stream
	if sock, ok := stream.(*transport.Socket); ok {
		p.sock = sock
		p.info = sock.Info()
	}
	return &p.io, nil
}

func (p *pipeState) close() error {
	err := p.stream.Close()
	p.stream, p.sock = nil, nil
	return err
}

// release hands the stream endpoint back and invalidates the object.
func (p *pipeState) release() (transport.Handle, error) {
	stream := p.stream
	p.stream, p.sock = nil, nil
	return stream, nil
}

func (p *pipeState) clone(st *object.Storage) (*object.IO, error) {
	switch s := p.stream.(type) {
	case *transport.Socket:
		return PipeInit(st, s.Duplicate())
	case *transport.OSSocket:
		return PipeStreamInit(st, s.Duplicate())
	default:
		return nil, api.ErrNotSupported
	}
}

func (p *pipeState) waitBegin(signals api.Signals) (object.WaitTarget, error) {
	if p.sock == nil {
		return object.WaitTarget{}, api.ErrNotSupported
	}
	var mask transport.Signals
	if signals&api.SignalReadable != 0 {
		mask |= transport.Readable
	}
	if signals&api.SignalWritable != 0 {
		mask |= transport.Writable
	}
	if signals&api.SignalReadDisabled != 0 {
		mask |= transport.ReadDisabled
	}
	if signals&api.SignalWriteDisabled != 0 {
		mask |= transport.WriteDisabled
	}
	if signals&api.SignalPeerClosed != 0 {
		mask |= transport.PeerClosed
	}
	return object.WaitTarget{Signaler: p.sock.Readiness(), Mask: mask}, nil
}

func (p *pipeState) waitEnd(observed transport.Signals) api.Signals {
	var signals api.Signals
	if observed&transport.Readable != 0 {
		signals |= api.SignalReadable
	}
	if observed&transport.Writable != 0 {
		signals |= api.SignalWritable
	}
	if observed&transport.ReadDisabled != 0 {
		signals |= api.SignalReadDisabled
	}
	if observed&transport.WriteDisabled != 0 {
		signals |= api.SignalWriteDisabled
	}
	if observed&transport.PeerClosed != 0 {
		signals |= api.SignalPeerClosed
	}
	return signals
}

func (p *pipeState) attrGet() (api.Attr, error) {
	attr := api.Attr{
		Has:  api.AttrHasKind,
		Kind: api.NodePipe,
	}
	// OS descriptors do not report their buffer size.
	if p.sock != nil {
		attr.Has |= api.AttrHasStorageSize
		attr.StorageSize = uint64(p.info.BufMax)
	}
	return attr, nil
}

var pipeOps object.Ops

func init() {
	ops := object.DefaultOps()
	ops.Close = func(io *object.IO) error { return pipeOf(io).close() }
	ops.Release = func(io *object.IO) (transport.Handle, error) {
		return pipeOf(io).release()
	}
	ops.Clone = func(io *object.IO, st *object.Storage) (*object.IO, error) {
		return pipeOf(io).clone(st)
	}
	ops.Read = func(io *object.IO, p []byte) (int, error) {
		return pipeOf(io).stream.Read(p)
	}
	ops.Write = func(io *object.IO, p []byte) (int, error) {
		return pipeOf(io).stream.Write(p)
	}
	ops.ReadVector = func(io *object.IO, vecs [][]byte) (int, error) {
		return vector.Do(vecs, pipeOf(io).stream.Read)
	}
	ops.WriteVector = func(io *object.IO, vecs [][]byte) (int, error) {
		return vector.Do(vecs, pipeOf(io).stream.Write)
	}
	ops.WaitBegin = func(io *object.IO, signals api.Signals) (object.WaitTarget, error) {
		return pipeOf(io).waitBegin(signals)
	}
	ops.WaitEnd = func(io *object.IO, observed transport.Signals) api.Signals {
		return pipeOf(io).waitEnd(observed)
	}
	ops.AttrGet = func(io *object.IO) (api.Attr, error) { return pipeOf(io).attrGet() }
	pipeOps = ops
}
