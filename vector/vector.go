// File: vector/vector.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Scatter/gather adapter shared by every backend that supports
// vectorized transfers. The short-transfer and zero-length-entry
// policy lives here exactly once: entries are visited in list order,
// a short entry ends the walk successfully, and an error ends the
// walk while preserving the bytes already moved.

package vector

import "github.com/momentics/ioplane/api"

// Do walks vecs in order, invoking fn once per nonzero-length entry
// with that entry as the bounded buffer. It returns the total bytes
// moved. fn reporting fewer bytes than the entry holds stops the walk
// with success; an error from fn stops the walk and is returned along
// with the total accumulated before the failing entry.
func Do(vecs [][]byte, fn func(p []byte) (int, error)) (int, error) {
	total := 0
	for _, v := range vecs {
		if len(v) == 0 {
			continue
		}
		n, err := fn(v)
		if err != nil {
			return total, err
		}
		total += n
		if n < len(v) {
			break
		}
	}
	return total, nil
}

// DoBounded is Do against a fixed-length resource with a running
// cursor: before each entry the capacity is clipped to what remains
// of the resource, and after each transfer the cursor advances by the
// bytes actually moved. A cursor already past the resource end fails
// with ErrInvalidArgument before any buffer is touched.
func DoBounded(vecs [][]byte, length uint64, offset *uint64, fn func(p []byte, off uint64) (int, error)) (int, error) {
	if offset == nil || *offset > length {
		return 0, api.ErrInvalidArgument
	}
	return Do(vecs, func(p []byte) (int, error) {
		if remaining := length - *offset; uint64(len(p)) > remaining {
			p = p[:remaining]
		}
		if len(p) == 0 {
			// At the resource end: a zero-byte transfer reads as a
			// short entry and stops the walk with success.
			return 0, nil
		}
		n, err := fn(p, *offset)
		if err != nil {
			return n, err
		}
		*offset += uint64(n)
		return n, nil
	})
}

// Length sums the entry lengths of a vector descriptor.
func Length(vecs [][]byte) int {
	total := 0
	for _, v := range vecs {
		total += len(v)
	}
	return total
}

// Gather copies vector entries in order into dst and returns the
// bytes copied. Used by atomic-record transports that must transmit
// the whole descriptor as one unit.
func Gather(vecs [][]byte, dst []byte) int {
	n := 0
	for _, v := range vecs {
		if n == len(dst) {
			break
		}
		n += copy(dst[n:], v)
	}
	return n
}

// Scatter copies src across vector entries in order and returns the
// bytes copied. Bytes beyond the descriptor's total length are
// discarded by the caller's policy, not here.
func Scatter(src []byte, vecs [][]byte) int {
	n := 0
	for _, v := range vecs {
		if n == len(src) {
			break
		}
		n += copy(v, src[n:])
	}
	return n
}
