// Package batchvec provides the in-memory columnar vector toolkit of a
// batch-processing engine.
//
// # Packages
//
//   - memory: reference-counted buffers and a fallible, limit-aware
//     allocator
//   - types: schema vocabulary and serialized-field metadata
//   - vector: fixed-width, varchar, list, and union column vectors with
//     zero-copy transfer, deep split-copy, and an exact round-trip wire
//     format
//   - batch: record batches, row selection, splitting, and a compressed
//     segment codec
//   - blobstore: segment storage on local disk, memory, or S3-compatible
//     object stores
//
// # Quick Start
//
//	alloc := memory.NewAllocator()
//	field := types.NewField("tags", types.Optional(types.MinorTypeList))
//	v := vector.NewListVector(field, alloc)
//	if !v.AllocateNewSafe() {
//	    // allocator exhausted; retry or back off
//	}
//
//	w := v.Writer()
//	w.SetPosition(0)
//	w.WriteValue([]any{int64(1), int64(2)})
//	v.SetValueCount(1)
//
//	fmt.Println(v.GetObject(0)) // [1 2]
package batchvec
