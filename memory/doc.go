// Package memory provides reference-counted buffers and a fallible
// allocator for the vector core.
//
// # Overview
//
// All vector buffers are obtained from an Allocator. An Allocator may carry
// a hard byte limit; when the limit would be exceeded, Allocate fails
// instead of blocking, so callers can retry, spill, or shed load.
//
// Buffers are reference counted. Slices created with Buffer.Slice share the
// parent's count; the backing memory is returned to the allocator when the
// last reference is released.
//
// # Thread Safety
//
// The Allocator is safe for concurrent use. Buffers are not: a Buffer is
// owned by a single vector instance at a time, the same single-writer
// discipline the vectors themselves require.
package memory
