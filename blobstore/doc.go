// Package blobstore abstracts storage of immutable batch segments.
//
// A segment is a serialized record batch (see package batch). Stores are
// interchangeable: local filesystem (mmap-backed reads), in-memory (tests),
// or S3-compatible object storage (see the s3 and minio subpackages).
//
// Implementations return ErrNotFound (errors.Is-compatible) for missing
// segments.
package blobstore
