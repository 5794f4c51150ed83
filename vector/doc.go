// Package vector implements the in-memory column vectors of the batch
// engine: fixed-width scalars, variable-width bytes, variable-length lists,
// and the union vector used when an element type becomes heterogeneous.
//
// # Overview
//
// A vector owns one or more reference-counted buffers obtained from a
// memory.Allocator. Vectors move between pipeline stages without copying:
// a TransferPair hands buffer ownership from one instance to another, after
// which the source is empty and valid only for Clear or reallocation.
// SplitAndTransfer is the copying counterpart used to shard batches; it
// never mutates its source.
//
// # Lifecycle
//
//	v := vector.NewListVector(field, alloc)
//	if !v.AllocateNewSafe() { /* retry or back off */ }
//	m := v.Mutator()
//	... write rows ...
//	m.SetValueCount(n)
//	... read, transfer, or serialize ...
//	v.Clear()
//
// Allocation is all-or-nothing: a failed AllocateNewSafe leaves the vector
// fully released, never partially allocated.
//
// # Wire Format
//
// Metadata() describes a vector's buffers as a types.SerializedField whose
// children appear in the exact order Buffers() concatenates them. For a
// list vector that order is offsets, validity, data. Load is the inverse
// and reproduces an observationally equivalent vector.
//
// # Thread Safety
//
// Vectors are single-threaded per instance. Copy operations never mutate
// their source, so a source may be read elsewhere under an external
// happens-before guarantee.
package vector
