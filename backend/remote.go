// File: backend/remote.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Remote-node backends: every operation is forwarded synchronously
// over the node protocol and the result unwrapped from the reply.
// The describe handshake distinguishes files, directories, and
// special (tty-like) nodes; they share one state and differ only in
// which ops their tables populate.

package backend

import (
	"unsafe"

	"github.com/momentics/ioplane/api"
	"github.com/momentics/ioplane/object"
	"github.com/momentics/ioplane/transport"
	"github.com/momentics/ioplane/vector"
)

type remoteState struct {
	io        object.IO
	client    NodeClient
	readiness *transport.Signaler
	kind      api.NodeKind
}

// Layout invariants: header at offset 0, state within the storage
// budget.
var _ = [1]struct{}{}[unsafe.Offsetof(remoteState{}.io)]
var _ [object.StorageSize - unsafe.Sizeof(remoteState{})]byte

func remoteOf(io *object.IO) *remoteState { return object.State[remoteState](io) }

// RemoteFileInit constructs a remote file object over client. The
// optional readiness signaler backs the wait pair.
func RemoteFileInit(st *object.Storage, client NodeClient, readiness *transport.Signaler) (*object.IO, error) {
	return remoteInit(st, client, readiness, api.NodeFile, &remoteFileOps)
}

// RemoteDirInit constructs a directory object: byte I/O and seek are
// outside its capability set.
func RemoteDirInit(st *object.Storage, client NodeClient) (*object.IO, error) {
	return remoteInit(st, client, nil, api.NodeDirectory, &remoteDirOps)
}

// RemoteTTYInit constructs a special-node object: byte I/O without a
// seek cursor.
func RemoteTTYInit(st *object.Storage, client NodeClient, readiness *transport.Signaler) (*object.IO, error) {
	return remoteInit(st, client, readiness, api.NodeTTY, &remoteTTYOps)
}

func remoteInit(st *object.Storage, client NodeClient, readiness *transport.Signaler, kind api.NodeKind, ops *object.Ops) (*object.IO, error) {
	if client == nil {
		return nil, api.ErrInvalidArgument
	}
	r := object.Place[remoteState](st)
	r.io.Init(ops)
	r.client = client
	r.readiness = readiness
	r.kind = kind
	return &r.io, nil
}

func (r *remoteState) close() error {
	err := r.client.Close()
	r.client = nil
	return err
}

func (r *remoteState) readVector(vecs [][]byte) (int, error) {
	return vector.Do(vecs, r.client.Read)
}

func (r *remoteState) writeVector(vecs [][]byte) (int, error) {
	return vector.Do(vecs, r.client.Write)
}

func (r *remoteState) clone(st *object.Storage) (*object.IO, error) {
	dup, err := r.client.Clone()
	if err != nil {
		return nil, err
	}
	switch r.kind {
	case api.NodeDirectory:
		return RemoteDirInit(st, dup)
	case api.NodeTTY:
		return RemoteTTYInit(st, dup, r.readiness)
	default:
		return RemoteFileInit(st, dup, r.readiness)
	}
}

func (r *remoteState) waitBegin(signals api.Signals) (object.WaitTarget, error) {
	if r.readiness == nil {
		return object.WaitTarget{}, api.ErrNotSupported
	}
	return object.WaitTarget{Signaler: r.readiness, Mask: remoteMask(signals)}, nil
}

func (r *remoteState) waitEnd(observed transport.Signals) api.Signals {
	return remoteUnmask(observed)
}

func (r *remoteState) attrGet() (api.Attr, error) {
	attr, err := r.client.AttrGet()
	if err != nil {
		return api.Attr{}, err
	}
	attr.Has |= api.AttrHasKind
	attr.Kind = r.kind
	return attr, nil
}

func remoteMask(signals api.Signals) transport.Signals {
	var mask transport.Signals
	if signals&api.SignalReadable != 0 {
		mask |= transport.Readable
	}
	if signals&api.SignalWritable != 0 {
		mask |= transport.Writable
	}
	if signals&api.SignalPeerClosed != 0 {
		mask |= transport.PeerClosed
	}
	return mask
}

func remoteUnmask(observed transport.Signals) api.Signals {
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

var remoteFileOps object.Ops

func init() {
	ops := object.DefaultOps()
	ops.Close = func(io *object.IO) error { return remoteOf(io).close() }
	ops.Read = func(io *object.IO, p []byte) (int, error) {
		return remoteOf(io).client.Read(p)
	}
	ops.Write = func(io *object.IO, p []byte) (int, error) {
		return remoteOf(io).client.Write(p)
	}
	ops.ReadVector = func(io *object.IO, vecs [][]byte) (int, error) {
		return remoteOf(io).readVector(vecs)
	}
	ops.WriteVector = func(io *object.IO, vecs [][]byte) (int, error) {
		return remoteOf(io).writeVector(vecs)
	}
	ops.Seek = func(io *object.IO, offset int64, whence api.Whence) (int64, error) {
		return remoteOf(io).client.Seek(offset, whence)
	}
	ops.Clone = func(io *object.IO, st *object.Storage) (*object.IO, error) {
		return remoteOf(io).clone(st)
	}
	ops.WaitBegin = func(io *object.IO, signals api.Signals) (object.WaitTarget, error) {
		return remoteOf(io).waitBegin(signals)
	}
	ops.WaitEnd = func(io *object.IO, observed transport.Signals) api.Signals {
		return remoteOf(io).waitEnd(observed)
	}
	ops.AttrGet = func(io *object.IO) (api.Attr, error) { return remoteOf(io).attrGet() }
	ops.AttrSet = func(io *object.IO, attr api.Attr) error {
		return remoteOf(io).client.AttrSet(attr)
	}
	remoteFileOps = ops
}

var remoteDirOps object.Ops

func init() {
	ops := object.DefaultOps()
	ops.Close = func(io *object.IO) error { return remoteOf(io).close() }
	ops.Clone = func(io *object.IO, st *object.Storage) (*object.IO, error) {
		return remoteOf(io).clone(st)
	}
	ops.AttrGet = func(io *object.IO) (api.Attr, error) { return remoteOf(io).attrGet() }
	ops.AttrSet = func(io *object.IO, attr api.Attr) error {
		return remoteOf(io).client.AttrSet(attr)
	}
	remoteDirOps = ops
}

var remoteTTYOps object.Ops

func init() {
	ops := remoteFileOps
	ops.Seek = func(*object.IO, int64, api.Whence) (int64, error) {
		return 0, api.ErrNotSupported
	}
	remoteTTYOps = ops
}
