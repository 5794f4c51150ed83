package batch

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/hupe1980/batchvec/memory"
	"github.com/hupe1980/batchvec/types"
	"github.com/hupe1980/batchvec/vector"
)

const (
	// Magic identifies persisted batch segments (ASCII: "BVC1").
	Magic = 0x42564331
	// Version is the current segment format version.
	Version = 1
)

var (
	ErrInvalidMagic   = errors.New("invalid magic number")
	ErrInvalidVersion = errors.New("unsupported version")
)

// Segment layout:
//
//	header: magic u32 | version u32 | compression u8 | pad [3]byte |
//	        columnCount u32 | rowCount u64
//	per column: metaLen u32 | meta | blockLen u32 | block
//
// where meta is a types.SerializedField and block is a compressBlock
// payload holding the column's buffers concatenated in wire order.
type segmentHeader struct {
	Magic       uint32
	Version     uint32
	Compression uint8
	Pad         [3]byte
	ColumnCount uint32
	RowCount    uint64
}

type writeOptions struct {
	compression CompressionType
	concurrency int
}

// WriteOption configures Write.
type WriteOption func(*writeOptions)

// WithCompression selects the compression applied to column payloads.
func WithCompression(ct CompressionType) WriteOption {
	return func(o *writeOptions) {
		o.compression = ct
	}
}

// WithConcurrency bounds the number of columns encoded in parallel.
func WithConcurrency(n int) WriteOption {
	return func(o *writeOptions) {
		if n > 0 {
			o.concurrency = n
		}
	}
}

// Write serializes the batch to w. Column payloads are encoded in
// parallel and written in schema order. The batch is not mutated.
func Write(w io.Writer, b *RecordBatch, opts ...WriteOption) error {
	o := writeOptions{
		compression: CompressionNone,
		concurrency: runtime.GOMAXPROCS(0),
	}
	for _, opt := range opts {
		opt(&o)
	}

	type colChunk struct {
		meta  []byte
		block []byte
	}
	chunks := make([]colChunk, len(b.columns))

	var g errgroup.Group
	g.SetLimit(o.concurrency)
	for ci, col := range b.columns {
		g.Go(func() error {
			mb, err := col.Metadata().MarshalBinary()
			if err != nil {
				return fmt.Errorf("column %d: marshal metadata: %w", ci, err)
			}
			payload := make([]byte, 0, col.BufferSize())
			for _, buf := range col.Buffers(false) {
				payload = append(payload, buf.Bytes()...)
			}
			block, err := compressBlock(payload, o.compression)
			if err != nil {
				return fmt.Errorf("column %d: compress: %w", ci, err)
			}
			chunks[ci] = colChunk{meta: mb, block: block}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	hdr := segmentHeader{
		Magic:       Magic,
		Version:     Version,
		Compression: uint8(o.compression),
		ColumnCount: uint32(len(b.columns)),
		RowCount:    uint64(b.rowCount),
	}
	if err := binary.Write(w, binary.LittleEndian, hdr); err != nil {
		return err
	}
	for _, c := range chunks {
		if err := binary.Write(w, binary.LittleEndian, uint32(len(c.meta))); err != nil {
			return err
		}
		if _, err := w.Write(c.meta); err != nil {
			return err
		}
		if err := binary.Write(w, binary.LittleEndian, uint32(len(c.block))); err != nil {
			return err
		}
		if _, err := w.Write(c.block); err != nil {
			return err
		}
	}
	return nil
}

// Read deserializes a batch written by Write, allocating reconstructed
// vectors against alloc-independent loaded buffers.
func Read(r io.Reader, alloc *memory.Allocator) (*RecordBatch, error) {
	var hdr segmentHeader
	if err := binary.Read(r, binary.LittleEndian, &hdr); err != nil {
		return nil, err
	}
	if hdr.Magic != Magic {
		return nil, ErrInvalidMagic
	}
	if hdr.Version != Version {
		return nil, ErrInvalidVersion
	}

	ct := CompressionType(hdr.Compression)
	cols := make([]vector.ValueVector, hdr.ColumnCount)
	for ci := range cols {
		var metaLen uint32
		if err := binary.Read(r, binary.LittleEndian, &metaLen); err != nil {
			return nil, err
		}
		mb := make([]byte, metaLen)
		if _, err := io.ReadFull(r, mb); err != nil {
			return nil, err
		}
		meta := &types.SerializedField{}
		if err := meta.UnmarshalBinary(mb); err != nil {
			return nil, fmt.Errorf("column %d: %w", ci, err)
		}

		var blockLen uint32
		if err := binary.Read(r, binary.LittleEndian, &blockLen); err != nil {
			return nil, err
		}
		block := make([]byte, blockLen)
		if _, err := io.ReadFull(r, block); err != nil {
			return nil, err
		}
		payload, err := decompressBlock(block, ct)
		if err != nil {
			return nil, fmt.Errorf("column %d: decompress: %w", ci, err)
		}

		v, err := vector.NewVector(types.NewField(meta.Name, meta.Type), alloc, nil)
		if err != nil {
			return nil, fmt.Errorf("column %d: %w", ci, err)
		}
		v.Load(meta, memory.NewBufferBytes(payload))
		cols[ci] = v
	}
	return New(cols, int(hdr.RowCount)), nil
}
