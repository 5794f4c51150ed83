package batch

import (
	"bytes"
	"context"

	"github.com/hupe1980/batchvec/blobstore"
	"github.com/hupe1980/batchvec/memory"
)

// WriteSegment serializes the batch and stores it under name.
func WriteSegment(ctx context.Context, store blobstore.BlobStore, name string, b *RecordBatch, opts ...WriteOption) error {
	var buf bytes.Buffer
	if err := Write(&buf, b, opts...); err != nil {
		return err
	}
	return store.Put(ctx, name, buf.Bytes())
}

// ReadSegment loads a batch previously stored with WriteSegment.
func ReadSegment(ctx context.Context, store blobstore.BlobStore, name string, alloc *memory.Allocator) (*RecordBatch, error) {
	blob, err := store.Open(ctx, name)
	if err != nil {
		return nil, err
	}
	defer blob.Close()

	data, err := blobstore.ReadAll(blob)
	if err != nil {
		return nil, err
	}
	// Decoded vectors may alias data for uncompressed columns; copy out of
	// any mmap-backed blob before it is closed.
	if _, mapped := blob.(blobstore.Mappable); mapped {
		cp := make([]byte, len(data))
		copy(cp, data)
		data = cp
	}
	return Read(bytes.NewReader(data), alloc)
}
