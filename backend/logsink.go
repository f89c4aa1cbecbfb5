// File: backend/logsink.go
// Author: momentics <momentics@gmail.com>
//
// Log sink backend: write-only, one record per write call. A
// vectorized write gathers the whole descriptor into a single record,
// so there is no short transfer on this backend.

package backend

import (
	"unsafe"

	"github.com/momentics/ioplane/api"
	"github.com/momentics/ioplane/object"
	"github.com/momentics/ioplane/pool"
	"github.com/momentics/ioplane/transport"
	"github.com/momentics/ioplane/vector"
)

type logSinkState struct {
	io  object.IO
	log *transport.Log
}

var _ = [1]struct{}{}[unsafe.Offsetof(logSinkState{}.io)]
var _ [object.StorageSize - unsafe.Sizeof(logSinkState{})]byte

// recordPool stages gathered vector payloads before emission.
var recordPool = pool.NewBytePool(transport.MaxRecord)

func logSinkOf(io *object.IO) *logSinkState { return object.State[logSinkState](io) }

// LogSinkInit constructs a log sink object owning log.
func LogSinkInit(st *object.Storage, log *transport.Log) (*object.IO, error) {
	if log == nil {
		return nil, api.ErrInvalidArgument
	}
	l := object.Place[logSinkState](st)
	l.io.Init(&logSinkOps)
	l.log = log
	return &l.io, nil
}

func (l *logSinkState) close() error {
	err := l.log.Close()
	l.log = nil
	return err
}

func (l *logSinkState) write(p []byte) (int, error) {
	if err := l.log.Emit(p); err != nil {
		return 0, err
	}
	return len(p), nil
}

func (l *logSinkState) writeVector(vecs [][]byte) (int, error) {
	total := vector.Length(vecs)
	buf := recordPool.GetBuffer()
	defer recordPool.PutBuffer(buf)
	if total > cap(buf) {
		buf = make([]byte, total)
	}
	buf = buf[:total]
	vector.Gather(vecs, buf)
	if err := l.log.Emit(buf); err != nil {
		return 0, err
	}
	return total, nil
}

var logSinkOps object.Ops

func init() {
	ops := object.DefaultOps()
	ops.Close = func(io *object.IO) error { return logSinkOf(io).close() }
	ops.Write = func(io *object.IO, p []byte) (int, error) {
		return logSinkOf(io).write(p)
	}
	ops.WriteVector = func(io *object.IO, vecs [][]byte) (int, error) {
		return logSinkOf(io).writeVector(vecs)
	}
	ops.Clone = func(io *object.IO, st *object.Storage) (*object.IO, error) {
		l := logSinkOf(io)
		return LogSinkInit(st, l.log.Duplicate())
	}
	ops.AttrGet = func(io *object.IO) (api.Attr, error) {
		return api.Attr{Has: api.AttrHasKind, Kind: api.NodeLogSink}, nil
	}
	logSinkOps = ops
}
