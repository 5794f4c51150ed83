package memory

import "sync/atomic"

// bufferRoot is the shared accounting record behind a Buffer and all of its
// slices. The backing memory is returned to the allocator exactly once,
// when the reference count reaches zero.
type bufferRoot struct {
	alloc *Allocator // nil for unmanaged buffers
	size  int64
	refs  atomic.Int64
}

// Buffer is a reference-counted byte buffer.
//
// Slices share the parent's reference count; Retain/Release on any view
// affect the whole allocation.
type Buffer struct {
	root *bufferRoot
	data []byte
}

// NewBufferBytes wraps an existing byte slice in an unmanaged Buffer.
//
// Used when loading serialized data that was produced outside this
// allocator (e.g. read from a segment file or the wire). Release is a
// reference-count no-op for the backing memory.
func NewBufferBytes(data []byte) *Buffer {
	b := &Buffer{data: data}
	b.root = &bufferRoot{size: int64(len(data))}
	b.root.refs.Store(1)
	return b
}

// Bytes returns the buffer contents. The slice aliases the buffer; it is
// valid until the last reference is released.
func (b *Buffer) Bytes() []byte {
	if b == nil {
		return nil
	}
	return b.data
}

// Len returns the buffer length in bytes.
func (b *Buffer) Len() int {
	if b == nil {
		return 0
	}
	return len(b.data)
}

// Slice returns a view of b covering [off, off+length).
//
// The view shares b's reference count; it does not retain. Callers that
// outlive b must Retain the view themselves.
func (b *Buffer) Slice(off, length int) *Buffer {
	return &Buffer{root: b.root, data: b.data[off : off+length]}
}

// Retain increments the reference count.
func (b *Buffer) Retain() {
	if b == nil || b.root == nil {
		return
	}
	b.root.refs.Add(1)
}

// Release decrements the reference count, returning the backing memory to
// the allocator when it reaches zero.
func (b *Buffer) Release() {
	if b == nil || b.root == nil {
		return
	}
	if b.root.refs.Add(-1) == 0 {
		b.root.alloc.release(b.root.size)
	}
}

// Refs returns the current reference count. Intended for tests.
func (b *Buffer) Refs() int64 {
	if b == nil || b.root == nil {
		return 0
	}
	return b.root.refs.Load()
}
