package batch

import (
	"github.com/RoaringBitmap/roaring/v2"

	"github.com/hupe1980/batchvec/vector"
)

// RecordBatch is a fixed set of rows across an ordered set of column
// vectors. All columns share the same finalized row count.
type RecordBatch struct {
	columns  []vector.ValueVector
	rowCount int
}

// New creates a record batch over finalized columns.
func New(columns []vector.ValueVector, rowCount int) *RecordBatch {
	return &RecordBatch{columns: columns, rowCount: rowCount}
}

// RowCount returns the number of rows.
func (b *RecordBatch) RowCount() int { return b.rowCount }

// Columns returns the column vectors in schema order.
func (b *RecordBatch) Columns() []vector.ValueVector { return b.columns }

// Column returns the i-th column vector.
func (b *RecordBatch) Column(i int) vector.ValueVector { return b.columns[i] }

// BufferSize returns the total byte size of all column buffers.
func (b *RecordBatch) BufferSize() int {
	size := 0
	for _, c := range b.columns {
		size += c.BufferSize()
	}
	return size
}

// Clear releases all column buffers.
func (b *RecordBatch) Clear() {
	for _, c := range b.columns {
		c.Clear()
	}
	b.rowCount = 0
}

// Select deep-copies the rows named by sel, in ascending order, into a
// new batch. The source batch is not mutated.
func (b *RecordBatch) Select(sel *roaring.Bitmap) *RecordBatch {
	n := int(sel.GetCardinality())
	out := make([]vector.ValueVector, len(b.columns))
	for ci, col := range b.columns {
		pair := col.NewTransferPair(col.Field().Name)
		pair.To().AllocateNewSafe()
		it := sel.Iterator()
		for i := 0; it.HasNext(); i++ {
			pair.CopyValueSafe(int(it.Next()), i)
		}
		pair.To().SetValueCount(n)
		out[ci] = pair.To()
	}
	return New(out, n)
}

// Split shards the batch into consecutive sub-batches of at most maxRows
// rows each, deep-copying rows. The source batch is not mutated.
func (b *RecordBatch) Split(maxRows int) []*RecordBatch {
	if maxRows <= 0 || b.rowCount == 0 {
		return nil
	}
	var shards []*RecordBatch
	for start := 0; start < b.rowCount; start += maxRows {
		length := min(maxRows, b.rowCount-start)
		cols := make([]vector.ValueVector, len(b.columns))
		for ci, col := range b.columns {
			pair := col.NewTransferPair(col.Field().Name)
			pair.SplitAndTransfer(start, length)
			pair.To().SetValueCount(length)
			cols[ci] = pair.To()
		}
		shards = append(shards, New(cols, length))
	}
	return shards
}
