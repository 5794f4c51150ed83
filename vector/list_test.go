package vector

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/batchvec/memory"
	"github.com/hupe1980/batchvec/types"
)

func newTestList(t *testing.T, alloc *memory.Allocator) *ListVector {
	t.Helper()
	v := NewListVector(types.NewField("tags", types.Optional(types.MinorTypeList)), alloc)
	require.True(t, v.AllocateNewSafe())
	return v
}

// writeListRows writes one row per entry: nil leaves the row null, a
// []any writes its elements. The vector is finalized for len(rows) rows.
func writeListRows(v *ListVector, rows []any) {
	w := v.Writer()
	for i, row := range rows {
		w.SetPosition(i)
		w.WriteValue(row)
	}
	v.SetValueCount(len(rows))
}

func TestListVectorWriteAndRead(t *testing.T) {
	alloc := memory.NewAllocator()
	v := newTestList(t, alloc)
	defer v.Clear()

	writeListRows(v, []any{
		[]any{int64(1), int64(2)},
		nil, // never written
		[]any{int64(3)},
	})

	require.Equal(t, 3, v.ValueCount())

	// Offsets are non-decreasing with a zero-length span for the skipped
	// row; validity has exactly the written rows set.
	offsets := v.OffsetVector()
	for i, want := range []uint32{0, 2, 2, 3} {
		assert.Equal(t, want, offsets.Get(i), "offset %d", i)
	}
	bits := v.BitsVector()
	for i, want := range []uint8{1, 0, 1} {
		assert.Equal(t, want, bits.Get(i), "bit %d", i)
	}

	// Logical lengths line up: rowCount+1 offsets, child length offsets[n].
	assert.Equal(t, 4, offsets.ValueCount())
	assert.Equal(t, 3, bits.ValueCount())
	assert.Equal(t, 3, v.DataVector().ValueCount())

	assert.Equal(t, []any{int64(1), int64(2)}, v.GetObject(0))
	assert.Nil(t, v.GetObject(1))
	assert.Equal(t, []any{int64(3)}, v.GetObject(2))

	assert.False(t, v.Accessor().IsNull(0))
	assert.True(t, v.Accessor().IsNull(1))
	assert.Positive(t, v.BufferSize())
}

func TestListVectorEmptyRowIsNotNull(t *testing.T) {
	alloc := memory.NewAllocator()
	v := newTestList(t, alloc)
	defer v.Clear()

	writeListRows(v, []any{[]any{}})

	require.Equal(t, 1, v.ValueCount())
	assert.False(t, v.Accessor().IsNull(0))
	assert.Equal(t, []any{}, v.GetObject(0))
}

func TestListVectorSetValueCount(t *testing.T) {
	t.Run("Zero", func(t *testing.T) {
		alloc := memory.NewAllocator()
		v := newTestList(t, alloc)
		defer v.Clear()

		v.SetValueCount(0)
		assert.Equal(t, 0, v.ValueCount())
		assert.Equal(t, 0, v.BufferSize())
	})

	t.Run("BackfillsTrailingRows", func(t *testing.T) {
		alloc := memory.NewAllocator()
		v := newTestList(t, alloc)
		defer v.Clear()

		w := v.Writer()
		w.SetPosition(0)
		w.WriteValue([]any{int64(7)})
		v.SetValueCount(4)

		require.Equal(t, 4, v.ValueCount())
		offsets := v.OffsetVector()
		for i, want := range []uint32{0, 1, 1, 1, 1} {
			assert.Equal(t, want, offsets.Get(i), "offset %d", i)
		}
		for i := 1; i < 4; i++ {
			assert.Nil(t, v.GetObject(i))
		}
	})
}

func TestListVectorTransfer(t *testing.T) {
	alloc := memory.NewAllocator()
	src := newTestList(t, alloc)
	defer src.Clear()

	writeListRows(src, []any{
		[]any{int64(1), int64(2)},
		nil,
		[]any{int64(3)},
	})

	pair := src.NewTransferPair("dst")
	pair.Transfer()
	dst := pair.To().(*ListVector)
	defer dst.Clear()

	// Ownership moved: the source holds no data.
	assert.Equal(t, 0, src.ValueCount())
	assert.Equal(t, 0, src.BufferSize())

	require.Equal(t, 3, dst.ValueCount())
	assert.Equal(t, []any{int64(1), int64(2)}, dst.GetObject(0))
	assert.Nil(t, dst.GetObject(1))
	assert.Equal(t, []any{int64(3)}, dst.GetObject(2))
}

func TestListVectorSplitAndTransfer(t *testing.T) {
	alloc := memory.NewAllocator()
	src := newTestList(t, alloc)
	defer src.Clear()

	writeListRows(src, []any{
		[]any{int64(1), int64(2)},
		nil,
		[]any{int64(3)},
	})

	pair := src.NewTransferPair("dst")
	pair.SplitAndTransfer(1, 2)
	dst := pair.To().(*ListVector)
	dst.SetValueCount(2)
	defer dst.Clear()

	assert.Nil(t, dst.GetObject(0))
	assert.Equal(t, []any{int64(3)}, dst.GetObject(1))

	// The source is deep-copied, not mutated.
	require.Equal(t, 3, src.ValueCount())
	assert.Equal(t, []any{int64(1), int64(2)}, src.GetObject(0))
	assert.Equal(t, []any{int64(3)}, src.GetObject(2))
}

func TestListVectorCopyValueSafe(t *testing.T) {
	alloc := memory.NewAllocator()
	src := newTestList(t, alloc)
	defer src.Clear()

	writeListRows(src, []any{
		[]any{"a", "bb"},
		[]any{"ccc"},
	})

	dst := newTestList(t, alloc)
	defer dst.Clear()

	pair, err := src.MakeTransferPair(dst)
	require.NoError(t, err)
	pair.CopyValueSafe(1, 0)
	pair.CopyValueSafe(0, 1)
	dst.SetValueCount(2)

	assert.Equal(t, []any{"ccc"}, dst.GetObject(0))
	assert.Equal(t, []any{"a", "bb"}, dst.GetObject(1))
}

func TestListVectorLoadRoundTrip(t *testing.T) {
	alloc := memory.NewAllocator()
	src := newTestList(t, alloc)
	defer src.Clear()

	writeListRows(src, []any{
		[]any{int64(1), int64(2)},
		nil,
		[]any{int64(3)},
	})

	meta := src.Metadata()
	require.Len(t, meta.Children, 3)
	assert.Equal(t, types.MinorTypeUint32, meta.Child(0).Type.Minor)
	assert.Equal(t, types.MinorTypeUint8, meta.Child(1).Type.Minor)
	assert.Equal(t, types.MinorTypeInt64, meta.Child(2).Type.Minor)

	var payload []byte
	for _, b := range src.Buffers(false) {
		payload = append(payload, b.Bytes()...)
	}
	require.Len(t, payload, meta.BufferLength)

	got, err := NewVector(types.NewField(meta.Name, meta.Type), alloc, nil)
	require.NoError(t, err)
	got.Load(meta, memory.NewBufferBytes(payload))
	defer got.Clear()

	require.Equal(t, 3, got.ValueCount())
	assert.Equal(t, []any{int64(1), int64(2)}, got.GetObject(0))
	assert.Nil(t, got.GetObject(1))
	assert.Equal(t, []any{int64(3)}, got.GetObject(2))
}

func TestListVectorBuffersClear(t *testing.T) {
	alloc := memory.NewAllocator()
	v := newTestList(t, alloc)

	writeListRows(v, []any{[]any{int64(1)}})

	bufs := v.Buffers(true)
	require.NotEmpty(t, bufs)

	// The vector released its references; the returned buffers carry the
	// caller's.
	assert.Equal(t, 0, v.ValueCount())
	assert.Equal(t, 0, v.BufferSize())
	assert.Positive(t, alloc.AllocatedBytes())

	for _, b := range bufs {
		b.Release()
	}
	assert.Equal(t, int64(0), alloc.AllocatedBytes())
}

func TestListVectorPromoteToUnion(t *testing.T) {
	alloc := memory.NewAllocator()
	v := newTestList(t, alloc)
	defer v.Clear()

	// A heterogeneous row forces promotion mid-write; already appended
	// elements keep their values and positions.
	writeListRows(v, []any{
		[]any{int64(1), "a", float64(2.5), nil},
	})

	_, isUnion := v.DataVector().(*UnionVector)
	require.True(t, isUnion)

	require.Equal(t, 1, v.ValueCount())
	assert.Equal(t, []any{int64(1), "a", float64(2.5), nil}, v.GetObject(0))

	offsets := v.OffsetVector()
	assert.Equal(t, uint32(0), offsets.Get(0))
	assert.Equal(t, uint32(4), offsets.Get(1))
	assert.Equal(t, uint8(1), v.BitsVector().Get(0))
}

func TestListVectorNested(t *testing.T) {
	alloc := memory.NewAllocator()
	v := newTestList(t, alloc)
	defer v.Clear()

	writeListRows(v, []any{
		[]any{
			[]any{int64(1), int64(2)},
			[]any{int64(3)},
		},
		[]any{
			[]any{int64(4)},
		},
	})

	require.Equal(t, 2, v.ValueCount())
	assert.Equal(t, []any{
		[]any{int64(1), int64(2)},
		[]any{int64(3)},
	}, v.GetObject(0))
	assert.Equal(t, []any{[]any{int64(4)}}, v.GetObject(1))
}

func TestListVectorAddOrGetVector(t *testing.T) {
	alloc := memory.NewAllocator()

	var created []*types.Field
	v := NewListVector(types.NewField("tags", types.Optional(types.MinorTypeList)), alloc,
		WithListCallback(func(f *types.Field) {
			created = append(created, f)
		}))
	defer v.Clear()

	dv, ok, err := v.AddOrGetVector(types.Optional(types.MinorTypeInt64))
	require.NoError(t, err)
	require.True(t, ok)
	require.Len(t, created, 1)
	assert.Equal(t, types.MinorTypeInt64, created[0].Type.Minor)

	// Same type again: no structural change.
	dv2, ok, err := v.AddOrGetVector(types.Optional(types.MinorTypeInt64))
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Same(t, dv.(*Int64Vector), dv2.(*Int64Vector))
	assert.Len(t, created, 1)

	// Conflicting type is an error.
	_, _, err = v.AddOrGetVector(types.Optional(types.MinorTypeVarChar))
	require.Error(t, err)
}

func TestListVectorReaderInvalidation(t *testing.T) {
	alloc := memory.NewAllocator()
	v := newTestList(t, alloc)
	defer v.Clear()

	r1 := v.Reader()
	assert.Same(t, r1, v.Reader())

	// A structural change invalidates cached readers.
	v.AddOrGetVector(types.Optional(types.MinorTypeInt64))
	r2 := v.Reader()
	assert.NotSame(t, r1, r2)
	assert.Same(t, r2, v.Reader())
}

func TestListVectorAllocationFailure(t *testing.T) {
	// Enough for the offset vector but not for the data vector.
	alloc := memory.NewAllocator(memory.WithLimit(20_000))

	v := NewListVector(types.NewField("tags", types.Optional(types.MinorTypeList)), alloc)
	_, _, err := v.AddOrGetVector(types.Optional(types.MinorTypeInt64))
	require.NoError(t, err)

	require.False(t, v.AllocateNewSafe())

	// All-or-nothing: every partial allocation was released.
	assert.Equal(t, 0, v.BufferSize())
	assert.Equal(t, int64(0), alloc.AllocatedBytes())
}

func TestListVectorMakeTransferPairMismatch(t *testing.T) {
	alloc := memory.NewAllocator()
	v := newTestList(t, alloc)
	defer v.Clear()

	other := NewInt64Vector(types.NewField("id", types.Required(types.MinorTypeInt64)), alloc)

	_, err := v.MakeTransferPair(other)
	var mismatch *ErrVectorTypeMismatch
	require.ErrorAs(t, err, &mismatch)
	assert.Equal(t, types.MinorTypeList, mismatch.Expected.Minor)
	assert.Equal(t, types.MinorTypeInt64, mismatch.Actual.Minor)
}

func TestListVectorTransferToChildTypeMismatch(t *testing.T) {
	alloc := memory.NewAllocator()
	src := newTestList(t, alloc)
	defer src.Clear()

	writeListRows(src, []any{
		[]any{int64(1)},
	})

	// The target has already established a data vector of a different type.
	dst := newTestList(t, alloc)
	defer dst.Clear()
	_, _, err := dst.AddOrGetVector(types.Optional(types.MinorTypeVarChar))
	require.NoError(t, err)

	require.Panics(t, func() { src.TransferTo(dst) })

	// The mismatch is detected before any buffer moves: the source is intact.
	require.Equal(t, 1, src.ValueCount())
	assert.Equal(t, []any{int64(1)}, src.GetObject(0))
}
