// File: object/object.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// The I/O object model: a fixed-layout header holding one pointer to a
// static operations table, and a dispatch surface that generic callers
// use without knowing the concrete backend.
//
// Every backend state embeds IO as its first field, so the header
// pointer and the state pointer are the same allocation at offset 0.
// State reinterprets one as the other; backends assert the layout at
// compile time (see the checks next to each backend state).

package object

import (
	"unsafe"

	"github.com/momentics/ioplane/api"
	"github.com/momentics/ioplane/transport"
)

// IO is the header every backend state starts with. Generic callers
// hold only *IO and dispatch through the ops table.
type IO struct {
	ops *Ops
}

// Init binds the header to its backend's static ops table. Called
// exactly once by a backend initializer.
func (io *IO) Init(ops *Ops) { io.ops = ops }

// WaitTarget is what wait_begin hands to an external multiplexer: a
// signaler to block on and the transport-level mask to block for.
type WaitTarget struct {
	Signaler *transport.Signaler
	Mask     transport.Signals
}

// Ops is the static operations table of one backend kind. One
// immutable instance exists per kind, never per object. Every slot is
// populated; operations outside a backend's capability set answer
// api.ErrNotSupported rather than holding a nil entry.
type Ops struct {
	Close       func(io *IO) error
	Release     func(io *IO) (transport.Handle, error)
	Clone       func(io *IO, st *Storage) (*IO, error)
	Read        func(io *IO, p []byte) (int, error)
	Write       func(io *IO, p []byte) (int, error)
	ReadVector  func(io *IO, vecs [][]byte) (int, error)
	WriteVector func(io *IO, vecs [][]byte) (int, error)
	Seek        func(io *IO, offset int64, whence api.Whence) (int64, error)
	WaitBegin   func(io *IO, signals api.Signals) (WaitTarget, error)
	WaitEnd     func(io *IO, observed transport.Signals) api.Signals
	AttrGet     func(io *IO) (api.Attr, error)
	AttrSet     func(io *IO, attr api.Attr) error
}

// State reinterprets a header pointer as the concrete backend state.
// Valid only for the backend kind that initialized io: the header is
// the first field of T, so both pointers address the same allocation.
func State[T any](io *IO) *T {
	return (*T)(unsafe.Pointer(io))
}

// DefaultOps returns a table whose every entry answers not-supported
// and performs no side effects. Backends start from it and override
// the operations they implement.
func DefaultOps() Ops {
	return Ops{
		Close:   func(*IO) error { return api.ErrNotSupported },
		Release: func(*IO) (transport.Handle, error) { return nil, api.ErrNotSupported },
		Clone:   func(*IO, *Storage) (*IO, error) { return nil, api.ErrNotSupported },
		Read:    func(*IO, []byte) (int, error) { return 0, api.ErrNotSupported },
		Write:   func(*IO, []byte) (int, error) { return 0, api.ErrNotSupported },
		ReadVector: func(*IO, [][]byte) (int, error) {
			return 0, api.ErrNotSupported
		},
		WriteVector: func(*IO, [][]byte) (int, error) {
			return 0, api.ErrNotSupported
		},
		Seek: func(*IO, int64, api.Whence) (int64, error) {
			return 0, api.ErrNotSupported
		},
		WaitBegin: func(*IO, api.Signals) (WaitTarget, error) {
			return WaitTarget{}, api.ErrNotSupported
		},
		WaitEnd: func(*IO, transport.Signals) api.Signals { return 0 },
		AttrGet: func(*IO) (api.Attr, error) { return api.Attr{}, api.ErrNotSupported },
		AttrSet: func(*IO, api.Attr) error { return api.ErrNotSupported },
	}
}

// Close tears the object down, releasing its transport exactly once.
// Calling any operation after Close, or Close twice, is a contract
// violation.
func (io *IO) Close() error {
	err := io.ops.Close(io)
	stats.closes.Add(1)
	return err
}

// Release hands the raw transport handle back to the caller and
// invalidates the object.
func (io *IO) Release() (transport.Handle, error) {
	return count(io.ops.Release(io))
}

// Clone duplicates the underlying transport capability into st,
// producing an independent object over the same kernel-side resource.
func (io *IO) Clone(st *Storage) (*IO, error) {
	return count(io.ops.Clone(io, st))
}

// Read moves up to len(p) bytes out of the object.
func (io *IO) Read(p []byte) (int, error) {
	n, err := io.ops.Read(io, p)
	observe(int64(n), 0, err)
	return n, err
}

// Write moves up to len(p) bytes into the object.
func (io *IO) Write(p []byte) (int, error) {
	n, err := io.ops.Write(io, p)
	observe(0, int64(n), err)
	return n, err
}

// ReadVector scatters into vecs in order, stopping at the first short
// transfer or error. The returned count is the true total moved.
func (io *IO) ReadVector(vecs [][]byte) (int, error) {
	n, err := io.ops.ReadVector(io, vecs)
	observe(int64(n), 0, err)
	return n, err
}

// WriteVector gathers from vecs in order, with the same accounting as
// ReadVector.
func (io *IO) WriteVector(vecs [][]byte) (int, error) {
	n, err := io.ops.WriteVector(io, vecs)
	observe(0, int64(n), err)
	return n, err
}

// Seek repositions the object's cursor where the backend has one.
func (io *IO) Seek(offset int64, whence api.Whence) (int64, error) {
	return count(io.ops.Seek(io, offset, whence))
}

// WaitBegin registers readiness interest, returning the wait target an
// external multiplexer blocks on. The wait pair is the one operation
// pair that may run concurrently with I/O on the same object.
func (io *IO) WaitBegin(signals api.Signals) (WaitTarget, error) {
	return count(io.ops.WaitBegin(io, signals))
}

// WaitEnd translates observed transport signals back to the abstract
// signal set.
func (io *IO) WaitEnd(observed transport.Signals) api.Signals {
	return io.ops.WaitEnd(io, observed)
}

// AttrGet queries backend attributes.
func (io *IO) AttrGet() (api.Attr, error) {
	return count(io.ops.AttrGet(io))
}

// AttrSet updates backend attributes.
func (io *IO) AttrSet(attr api.Attr) error {
	err := io.ops.AttrSet(io, attr)
	observe(0, 0, err)
	return err
}
