// File: backend/memfile.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Memory-region file backends: reads and writes are direct memory
// copies against a mapped region, bounded by a fixed length and a
// running seek cursor. The view variant is a read-only window into a
// shared region with a remote-node control channel for metadata.

package backend

import (
	"unsafe"

	"github.com/momentics/ioplane/api"
	"github.com/momentics/ioplane/object"
	"github.com/momentics/ioplane/transport"
	"github.com/momentics/ioplane/vector"
)

type memFileState struct {
	io      object.IO
	region  *transport.Region
	control NodeClient // metadata channel of a view, nil for plain files
	start   uint64     // window base within the region
	length  uint64     // window length
	offset  uint64     // seek cursor, 0 <= offset <= length
}

var _ = [1]struct{}{}[unsafe.Offsetof(memFileState{}.io)]
var _ [object.StorageSize - unsafe.Sizeof(memFileState{})]byte

func memFileOf(io *object.IO) *memFileState { return object.State[memFileState](io) }

// MemFileInit constructs a read-write file over the whole region. The
// file size equals the granted region size, a page-size multiple.
func MemFileInit(st *object.Storage, region *transport.Region) (*object.IO, error) {
	if region == nil {
		return nil, api.ErrInvalidArgument
	}
	m := object.Place[memFileState](st)
	m.io.Init(&memFileOps)
	m.region = region
	m.length = region.Size()
	return &m.io, nil
}

// MemFileViewInit constructs a read-only window [start, start+length)
// into region, with control carrying metadata operations and seek as
// the initial cursor.
func MemFileViewInit(st *object.Storage, region *transport.Region, control NodeClient, start, length, seek uint64) (*object.IO, error) {
	if region == nil || start+length > region.Size() || seek > length {
		return nil, api.ErrInvalidArgument
	}
	m := object.Place[memFileState](st)
	m.io.Init(&memFileViewOps)
	m.region = region
	m.control = control
	m.start = start
	m.length = length
	m.offset = seek
	return &m.io, nil
}

func (m *memFileState) close() error {
	err := m.region.Close()
	m.region = nil
	if m.control != nil {
		if cerr := m.control.Close(); err == nil {
			err = cerr
		}
		m.control = nil
	}
	return err
}

func (m *memFileState) release() (transport.Handle, error) {
	region := m.region
	m.region = nil
	if m.control != nil {
		_ = m.control.Close()
		m.control = nil
	}
	return region, nil
}

func (m *memFileState) readVector(vecs [][]byte) (int, error) {
	return vector.DoBounded(vecs, m.length, &m.offset, func(p []byte, off uint64) (int, error) {
		return m.region.ReadAt(p, m.start+off), nil
	})
}

func (m *memFileState) writeVector(vecs [][]byte) (int, error) {
	return vector.DoBounded(vecs, m.length, &m.offset, func(p []byte, off uint64) (int, error) {
		return m.region.WriteAt(p, m.start+off), nil
	})
}

func (m *memFileState) read(p []byte) (int, error) {
	return m.readVector([][]byte{p})
}

func (m *memFileState) write(p []byte) (int, error) {
	return m.writeVector([][]byte{p})
}

func (m *memFileState) seek(offset int64, whence api.Whence) (int64, error) {
	var base int64
	switch whence {
	case api.SeekStart:
		base = 0
	case api.SeekCurrent:
		base = int64(m.offset)
	case api.SeekEnd:
		base = int64(m.length)
	default:
		return 0, api.ErrInvalidArgument
	}
	target := base + offset
	if target < 0 || uint64(target) > m.length {
		return 0, api.ErrInvalidArgument
	}
	m.offset = uint64(target)
	return target, nil
}

func (m *memFileState) cloneFile(st *object.Storage) (*object.IO, error) {
	return MemFileInit(st, m.region.Duplicate())
}

func (m *memFileState) cloneView(st *object.Storage) (*object.IO, error) {
	var dup NodeClient
	if m.control != nil {
		var err error
		if dup, err = m.control.Clone(); err != nil {
			return nil, err
		}
	}
	return MemFileViewInit(st, m.region.Duplicate(), dup, m.start, m.length, m.offset)
}

func (m *memFileState) attrGet() (api.Attr, error) {
	kind := api.NodeMemFile
	if m.control != nil {
		// Metadata of a view comes from its backing node; size still
		// reflects the local window.
		attr, err := m.control.AttrGet()
		if err != nil {
			return api.Attr{}, err
		}
		attr.Has |= api.AttrHasKind | api.AttrHasContentSize | api.AttrHasStorageSize
		attr.Kind = api.NodeMemFileView
		attr.ContentSize = m.length
		attr.StorageSize = m.region.Size()
		return attr, nil
	}
	return api.Attr{
		Has:         api.AttrHasKind | api.AttrHasContentSize | api.AttrHasStorageSize,
		Kind:        kind,
		ContentSize: m.length,
		StorageSize: m.region.Size(),
	}, nil
}

var memFileOps object.Ops

func init() {
	ops := object.DefaultOps()
	ops.Close = func(io *object.IO) error { return memFileOf(io).close() }
	ops.Release = func(io *object.IO) (transport.Handle, error) {
		return memFileOf(io).release()
	}
	ops.Clone = func(io *object.IO, st *object.Storage) (*object.IO, error) {
		return memFileOf(io).cloneFile(st)
	}
	ops.Read = func(io *object.IO, p []byte) (int, error) { return memFileOf(io).read(p) }
	ops.Write = func(io *object.IO, p []byte) (int, error) { return memFileOf(io).write(p) }
	ops.ReadVector = func(io *object.IO, vecs [][]byte) (int, error) {
		return memFileOf(io).readVector(vecs)
	}
	ops.WriteVector = func(io *object.IO, vecs [][]byte) (int, error) {
		return memFileOf(io).writeVector(vecs)
	}
	ops.Seek = func(io *object.IO, offset int64, whence api.Whence) (int64, error) {
		return memFileOf(io).seek(offset, whence)
	}
	ops.AttrGet = func(io *object.IO) (api.Attr, error) { return memFileOf(io).attrGet() }
	memFileOps = ops
}

var memFileViewOps object.Ops

func init() {
	ops := memFileOps
	ops.Write = func(*object.IO, []byte) (int, error) { return 0, api.ErrNotSupported }
	ops.WriteVector = func(*object.IO, [][]byte) (int, error) {
		return 0, api.ErrNotSupported
	}
	ops.Clone = func(io *object.IO, st *object.Storage) (*object.IO, error) {
		return memFileOf(io).cloneView(st)
	}
	ops.Release = func(*object.IO) (transport.Handle, error) {
		return nil, api.ErrNotSupported
	}
	memFileViewOps = ops
}
