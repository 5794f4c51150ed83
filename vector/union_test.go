package vector

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/batchvec/memory"
	"github.com/hupe1980/batchvec/types"
)

func newTestUnion(t *testing.T, alloc *memory.Allocator) *UnionVector {
	t.Helper()
	v := NewUnionVector(types.NewField("u", types.Optional(types.MinorTypeUnion)), alloc)
	require.True(t, v.AllocateNewSafe())
	return v
}

func TestUnionVectorSetGet(t *testing.T) {
	alloc := memory.NewAllocator()
	v := newTestUnion(t, alloc)
	defer v.Clear()

	v.SetInt64Safe(0, 42)
	v.SetVarCharSafe(1, []byte("hi"))
	v.SetFloat64Safe(2, 2.5)
	v.SetValueSafe(3, nil)
	v.SetValueCount(4)

	assert.Equal(t, types.MinorTypeInt64, v.TypeTag(0))
	assert.Equal(t, types.MinorTypeVarChar, v.TypeTag(1))
	assert.Equal(t, types.MinorTypeFloat64, v.TypeTag(2))
	assert.Equal(t, types.MinorTypeLate, v.TypeTag(3))

	assert.Equal(t, int64(42), v.GetObject(0))
	assert.Equal(t, "hi", v.GetObject(1))
	assert.Equal(t, float64(2.5), v.GetObject(2))
	assert.Nil(t, v.GetObject(3))
}

func TestUnionVectorSetValueSafe(t *testing.T) {
	alloc := memory.NewAllocator()
	v := newTestUnion(t, alloc)
	defer v.Clear()

	v.SetValueSafe(0, int64(1))
	v.SetValueSafe(1, "s")
	v.SetValueSafe(2, []byte("b"))
	v.SetValueSafe(3, float64(0.5))
	v.SetValueSafe(4, []any{int64(7), int64(8)})
	v.SetValueCount(5)

	assert.Equal(t, int64(1), v.GetObject(0))
	assert.Equal(t, "s", v.GetObject(1))
	assert.Equal(t, "b", v.GetObject(2))
	assert.Equal(t, float64(0.5), v.GetObject(3))
	assert.Equal(t, []any{int64(7), int64(8)}, v.GetObject(4))
}

func TestUnionVectorMemberCallback(t *testing.T) {
	alloc := memory.NewAllocator()

	var created []*types.Field
	v := NewUnionVector(types.NewField("u", types.Optional(types.MinorTypeUnion)), alloc,
		WithUnionCallback(func(f *types.Field) {
			created = append(created, f)
		}))
	defer v.Clear()
	require.True(t, v.AllocateNewSafe())

	v.SetInt64Safe(0, 1)
	v.SetInt64Safe(1, 2)
	v.SetVarCharSafe(2, []byte("x"))
	v.SetValueCount(3)

	// One callback per member creation, not per write.
	require.Len(t, created, 2)
	assert.Equal(t, types.MinorTypeInt64, created[0].Type.Minor)
	assert.Equal(t, types.MinorTypeVarChar, created[1].Type.Minor)
}

func TestUnionVectorLoadRoundTrip(t *testing.T) {
	alloc := memory.NewAllocator()
	src := newTestUnion(t, alloc)
	defer src.Clear()

	src.SetInt64Safe(0, 10)
	src.SetVarCharSafe(1, []byte("twenty"))
	src.SetInt64Safe(2, 30)
	src.SetValueCount(3)

	meta := src.Metadata()
	// tags plus one child per present member.
	require.Len(t, meta.Children, 3)

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
	assert.Equal(t, int64(10), got.GetObject(0))
	assert.Equal(t, "twenty", got.GetObject(1))
	assert.Equal(t, int64(30), got.GetObject(2))
}

func TestUnionVectorTransfer(t *testing.T) {
	alloc := memory.NewAllocator()
	src := newTestUnion(t, alloc)
	src.SetInt64Safe(0, 5)
	src.SetFloat64Safe(1, 1.5)
	src.SetValueCount(2)

	pair := src.NewTransferPair("dst")
	pair.Transfer()
	dst := pair.To().(*UnionVector)
	defer dst.Clear()

	assert.Equal(t, 0, src.ValueCount())
	require.Equal(t, 2, dst.ValueCount())
	assert.Equal(t, int64(5), dst.GetObject(0))
	assert.Equal(t, float64(1.5), dst.GetObject(1))
}

func TestUnionVectorSplitAndTransfer(t *testing.T) {
	alloc := memory.NewAllocator()
	src := newTestUnion(t, alloc)
	defer src.Clear()
	src.SetInt64Safe(0, 1)
	src.SetVarCharSafe(1, []byte("two"))
	src.SetFloat64Safe(2, 3.0)
	src.SetValueCount(3)

	pair := src.NewTransferPair("dst")
	pair.SplitAndTransfer(1, 2)
	dst := pair.To().(*UnionVector)
	defer dst.Clear()

	require.Equal(t, 2, dst.ValueCount())
	assert.Equal(t, "two", dst.GetObject(0))
	assert.Equal(t, float64(3.0), dst.GetObject(1))

	require.Equal(t, 3, src.ValueCount())
	assert.Equal(t, int64(1), src.GetObject(0))
}
