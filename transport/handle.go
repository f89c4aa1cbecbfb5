// File: transport/handle.go
// Author: momentics <momentics@gmail.com>
//
// Handle ownership and duplication accounting.

package transport

import "sync/atomic"

// Handle is any kernel-style transport object an I/O object can own.
// Close releases the caller's ownership; the underlying resource is
// torn down when the last owner closes.
type Handle interface {
	Close() error
}

// refs counts owners of a shared transport resource. A freshly
// created object starts with one owner.
type refs struct {
	n atomic.Int32
}

func (r *refs) init() { r.n.Store(1) }

func (r *refs) acquire() { r.n.Add(1) }

// release drops one owner and reports whether it was the last.
func (r *refs) release() bool { return r.n.Add(-1) == 0 }
