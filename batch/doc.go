// Package batch groups column vectors into record batches, the unit of
// work of the engine, and provides batch-level reshaping and a persisted
// batch format.
//
// A batch can be filtered by a row selection (copying the selected rows
// into a new batch), split into fixed-size shards, or written to and read
// back from a segment using an optionally compressed binary format.
package batch
