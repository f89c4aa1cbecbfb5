// File: transport/region.go
// Author: momentics <momentics@gmail.com>
//
// Anonymous shared memory regions backing the memory-file I/O objects.
// The granted size is always rounded up to a whole number of pages, so
// a memory-file's size is a page-size multiple by construction.

package transport

import (
	"fmt"
	"os"

	mmap "github.com/edsrzf/mmap-go"

	"github.com/momentics/ioplane/api"
)

// Region is a page-aligned shared memory region.
type Region struct {
	refs refs
	mem  mmap.MMap
	size uint64
}

// NewRegion maps an anonymous region of at least size bytes, rounded
// up to the platform page size.
func NewRegion(size uint64) (*Region, error) {
	if size == 0 {
		return nil, api.ErrInvalidArgument
	}
	page := uint64(os.Getpagesize())
	granted := (size + page - 1) / page * page
	mem, err := mmap.MapRegion(nil, int(granted), mmap.RDWR, mmap.ANON, 0)
	if err != nil {
		return nil, fmt.Errorf("map anonymous region: %w", err)
	}
	r := &Region{mem: mem, size: granted}
	r.refs.init()
	return r, nil
}

// Size returns the granted region size in bytes.
func (r *Region) Size() uint64 { return r.size }

// ReadAt copies region bytes starting at off into p, clipped to the
// region end. It returns the number of bytes copied.
func (r *Region) ReadAt(p []byte, off uint64) int {
	if off >= r.size {
		return 0
	}
	return copy(p, r.mem[off:r.size])
}

// WriteAt copies p into the region starting at off, clipped to the
// region end. It returns the number of bytes copied.
func (r *Region) WriteAt(p []byte, off uint64) int {
	if off >= r.size {
		return 0
	}
	return copy(r.mem[off:r.size], p)
}

// Duplicate adds an owner of the region. Concurrent writers need
// caller-side synchronization; the mapping itself is shared.
func (r *Region) Duplicate() *Region {
	r.refs.acquire()
	return r
}

// Close releases ownership, unmapping on the last owner.
func (r *Region) Close() error {
	if !r.refs.release() {
		return nil
	}
	return r.mem.Unmap()
}
