// File: object/storage.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Fixed-size opaque storage for I/O objects. Callers allocate a
// Storage without knowing which backend will live in it; initializers
// placement-construct their state with Place. The StorageSize budget
// is enforced here at placement and by a compile-time assert next to
// each backend state.

package object

import (
	"fmt"
	"unsafe"

	"github.com/momentics/ioplane/api"
)

// StorageSize is the byte budget every backend state must fit in.
const StorageSize = 256

// Storage is one caller-supplied slot for an I/O object. The zero
// value is ready for use and holds no object.
type Storage struct {
	io *IO
}

// IO returns the header of the placed object, or nil while the
// storage is uninitialized.
func (s *Storage) IO() *IO { return s.io }

// Place constructs a zeroed backend state in the storage and records
// its header. T must embed IO at offset zero and fit the StorageSize
// budget; backends assert both at compile time, and the budget is
// re-checked here. Placing into occupied storage is a contract
// violation.
func Place[T any](s *Storage) *T {
	var zero T
	if size := unsafe.Sizeof(zero); size > StorageSize {
		panic(fmt.Sprintf("object: state of %d bytes exceeds storage budget %d", size, StorageSize))
	}
	if s.io != nil {
		panic(api.ErrStorageInUse)
	}
	t := new(T)
	s.io = (*IO)(unsafe.Pointer(t))
	stats.placed.Add(1)
	return t
}
