// File: object/stats.go
// Author: momentics <momentics@gmail.com>
//
// Layer-wide dispatch counters, exported to the control package as a
// debug probe. Counters are atomic; there is no per-object state here.

package object

import (
	"errors"
	"sync/atomic"

	"github.com/momentics/ioplane/api"
)

// Stats is a snapshot of dispatch-layer counters.
type Stats struct {
	Placed       int64 // objects placement-constructed
	Closes       int64 // close operations dispatched
	BytesRead    int64
	BytesWritten int64
	NotSupported int64 // operations answered with api.ErrNotSupported
}

var stats struct {
	placed       atomic.Int64
	closes       atomic.Int64
	bytesRead    atomic.Int64
	bytesWritten atomic.Int64
	notSupported atomic.Int64
}

// Snapshot returns the current counter values.
func Snapshot() Stats {
	return Stats{
		Placed:       stats.placed.Load(),
		Closes:       stats.closes.Load(),
		BytesRead:    stats.bytesRead.Load(),
		BytesWritten: stats.bytesWritten.Load(),
		NotSupported: stats.notSupported.Load(),
	}
}

func observe(read, written int64, err error) {
	if read > 0 {
		stats.bytesRead.Add(read)
	}
	if written > 0 {
		stats.bytesWritten.Add(written)
	}
	if errors.Is(err, api.ErrNotSupported) {
		stats.notSupported.Add(1)
	}
}

func count[T any](v T, err error) (T, error) {
	observe(0, 0, err)
	return v, err
}
