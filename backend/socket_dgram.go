// File: backend/socket_dgram.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Datagram socket backend. Every send prepends a fixed-size protocol
// prelude to the payload, and every receive strips one, so the wire
// carries exactly prelude + payload per datagram. A vectorized write
// is one datagram: the descriptor is gathered before framing.

package backend

import (
	"unsafe"

	"github.com/momentics/ioplane/api"
	"github.com/momentics/ioplane/object"
	"github.com/momentics/ioplane/pool"
	"github.com/momentics/ioplane/transport"
	"github.com/momentics/ioplane/vector"
)

type dgramSocketState struct {
	io      object.IO
	sock    *transport.Socket
	control api.SocketControl
	prelude api.PreludeSize
}

var _ = [1]struct{}{}[unsafe.Offsetof(dgramSocketState{}.io)]
var _ [object.StorageSize - unsafe.Sizeof(dgramSocketState{})]byte

// framePool stages one wire datagram (prelude + payload).
var framePool = pool.NewBytePool(64 * 1024)

func dgramSocketOf(io *object.IO) *dgramSocketState {
	return object.State[dgramSocketState](io)
}

// DatagramSocketInit constructs a datagram socket object owning sock
// and control, framing payloads with the backend-reported prelude
// sizes.
func DatagramSocketInit(st *object.Storage, sock *transport.Socket, control api.SocketControl, prelude api.PreludeSize) (*object.IO, error) {
	if sock == nil || control == nil || prelude.TX < 0 || prelude.RX < 0 {
		return nil, api.ErrInvalidArgument
	}
	if sock.Info().Kind != transport.DatagramSocket {
		return nil, api.ErrInvalidArgument
	}
	d := object.Place[dgramSocketState](st)
	d.io.Init(&dgramSocketOps)
	d.sock = sock
	d.control = control
	d.prelude = prelude
	return &d.io, nil
}

func (d *dgramSocketState) close() error {
	err := d.sock.Close()
	if cerr := d.control.Close(); err == nil {
		err = cerr
	}
	d.sock = nil
	d.control = nil
	return err
}

// sendFrame transmits one prelude+payload datagram and reports the
// payload bytes accepted.
func (d *dgramSocketState) sendFrame(payload []byte) (int, error) {
	wire := framePool.GetBuffer()
	defer framePool.PutBuffer(wire)
	total := d.prelude.TX + len(payload)
	if total > cap(wire) {
		wire = make([]byte, total)
	}
	wire = wire[:total]
	for i := 0; i < d.prelude.TX; i++ {
		wire[i] = 0
	}
	copy(wire[d.prelude.TX:], payload)
	if _, err := d.sock.Write(wire); err != nil {
		return 0, err
	}
	return len(payload), nil
}

// recvFrame receives one datagram, strips the prelude, and reports
// the payload.
func (d *dgramSocketState) recvFrame() ([]byte, []byte, error) {
	wire := framePool.GetBuffer()
	n, err := d.sock.Read(wire)
	if err != nil {
		framePool.PutBuffer(wire)
		return nil, nil, err
	}
	if n < d.prelude.RX {
		framePool.PutBuffer(wire)
		return nil, nil, api.ErrInvalidArgument
	}
	return wire, wire[d.prelude.RX:n], nil
}

func (d *dgramSocketState) read(p []byte) (int, error) {
	wire, payload, err := d.recvFrame()
	if err != nil {
		return 0, err
	}
	defer framePool.PutBuffer(wire)
	return copy(p, payload), nil
}

func (d *dgramSocketState) write(p []byte) (int, error) {
	return d.sendFrame(p)
}

// readVector scatters one datagram's payload across the descriptor;
// payload beyond the descriptor total is discarded, matching datagram
// truncation.
func (d *dgramSocketState) readVector(vecs [][]byte) (int, error) {
	wire, payload, err := d.recvFrame()
	if err != nil {
		return 0, err
	}
	defer framePool.PutBuffer(wire)
	return vector.Scatter(payload, vecs), nil
}

// writeVector gathers the whole descriptor into one datagram.
func (d *dgramSocketState) writeVector(vecs [][]byte) (int, error) {
	total := vector.Length(vecs)
	payload := framePool.GetBuffer()
	defer framePool.PutBuffer(payload)
	if total > cap(payload) {
		payload = make([]byte, total)
	}
	payload = payload[:total]
	vector.Gather(vecs, payload)
	return d.sendFrame(payload)
}

var dgramSocketOps = func() object.Ops {
	ops := object.DefaultOps()
	ops.Close = func(io *object.IO) error { return dgramSocketOf(io).close() }
	ops.Read = func(io *object.IO, p []byte) (int, error) {
		return dgramSocketOf(io).read(p)
	}
	ops.Write = func(io *object.IO, p []byte) (int, error) {
		return dgramSocketOf(io).write(p)
	}
	ops.ReadVector = func(io *object.IO, vecs [][]byte) (int, error) {
		return dgramSocketOf(io).readVector(vecs)
	}
	ops.WriteVector = func(io *object.IO, vecs [][]byte) (int, error) {
		return dgramSocketOf(io).writeVector(vecs)
	}
	ops.WaitBegin = func(io *object.IO, signals api.Signals) (object.WaitTarget, error) {
		d := dgramSocketOf(io)
		target := object.WaitTarget{Signaler: d.sock.Readiness()}
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
		d := dgramSocketOf(io)
		return api.Attr{
			Has:         api.AttrHasKind | api.AttrHasStorageSize,
			Kind:        api.NodeDatagramSocket,
			StorageSize: uint64(d.sock.Info().BufMax),
		}, nil
	}
	return ops
}()
