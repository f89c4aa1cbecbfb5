// File: pool/bytepool.go
// Author: momentics <momentics@gmail.com>

package pool

import "sync"

// BytePool recycles fixed-capacity staging buffers.
type BytePool struct {
	pool sync.Pool
	size int
}

// NewBytePool creates a pool of buffers with the given capacity.
func NewBytePool(size int) *BytePool {
	b := &BytePool{size: size}
	b.pool.New = func() any {
		buf := make([]byte, size)
		return &buf
	}
	return b
}

// GetBuffer returns a buffer of the pool's capacity, length size.
func (b *BytePool) GetBuffer() []byte {
	return (*b.pool.Get().(*[]byte))[:b.size]
}

// PutBuffer returns a buffer to the pool. Undersized buffers are
// dropped for the GC.
func (b *BytePool) PutBuffer(buf []byte) {
	if cap(buf) < b.size {
		return
	}
	buf = buf[:b.size]
	b.pool.Put(&buf)
}
