package vector

import (
	"unsafe"

	"github.com/hupe1980/batchvec/memory"
	"github.com/hupe1980/batchvec/types"
)

// defaultValueCapacity is the number of values a fresh allocation holds.
const defaultValueCapacity = 4096

// fixedElement enumerates the value types with a fixed byte width.
type fixedElement interface {
	~uint8 | ~uint32 | ~int64 | ~float64
}

// FixedWidthVector is a column of fixed-width scalar values backed by a
// single buffer. Values are stored little endian in native memory order;
// the buffer bytes are the wire representation.
type FixedWidthVector[T fixedElement] struct {
	field      *types.Field
	alloc      *memory.Allocator
	buf        *memory.Buffer
	valueCount int
}

// Concrete instantiations. Uint32Vector serves as the offset vector and
// Uint8Vector as the validity vector of composite vectors.
type (
	Uint8Vector   = FixedWidthVector[uint8]
	Uint32Vector  = FixedWidthVector[uint32]
	Int64Vector   = FixedWidthVector[int64]
	Float64Vector = FixedWidthVector[float64]
)

// NewUint8Vector creates an empty uint8 vector.
func NewUint8Vector(field *types.Field, alloc *memory.Allocator) *Uint8Vector {
	return &Uint8Vector{field: field, alloc: alloc}
}

// NewUint32Vector creates an empty uint32 vector.
func NewUint32Vector(field *types.Field, alloc *memory.Allocator) *Uint32Vector {
	return &Uint32Vector{field: field, alloc: alloc}
}

// NewInt64Vector creates an empty int64 vector.
func NewInt64Vector(field *types.Field, alloc *memory.Allocator) *Int64Vector {
	return &Int64Vector{field: field, alloc: alloc}
}

// NewFloat64Vector creates an empty float64 vector.
func NewFloat64Vector(field *types.Field, alloc *memory.Allocator) *Float64Vector {
	return &Float64Vector{field: field, alloc: alloc}
}

var (
	_ ValueVector = (*Uint8Vector)(nil)
	_ ValueVector = (*Uint32Vector)(nil)
	_ ValueVector = (*Int64Vector)(nil)
	_ ValueVector = (*Float64Vector)(nil)
)

func (v *FixedWidthVector[T]) width() int {
	var zero T
	return int(unsafe.Sizeof(zero))
}

// values returns the buffer viewed as a slice of T. Zero-copy.
func (v *FixedWidthVector[T]) values() []T {
	if v.buf == nil || v.buf.Len() == 0 {
		return nil
	}
	data := v.buf.Bytes()
	return unsafe.Slice((*T)(unsafe.Pointer(&data[0])), len(data)/v.width())
}

func (v *FixedWidthVector[T]) Field() *types.Field { return v.field }

// Get returns the value at index i. Index validity is a caller
// precondition; this is the hot read path.
func (v *FixedWidthVector[T]) Get(i int) T {
	return v.values()[i]
}

// Set writes the value at index i without growing. The index must be
// within the allocated capacity.
func (v *FixedWidthVector[T]) Set(i int, val T) {
	v.values()[i] = val
}

// SetSafe writes the value at index i, growing the buffer as needed.
// Growth that exceeds the allocator's limit panics with ErrOutOfMemory;
// pre-size with AllocateNewSafe to handle memory pressure gracefully.
func (v *FixedWidthVector[T]) SetSafe(i int, val T) {
	v.ensureCapacity(i + 1)
	v.values()[i] = val
}

// ValueCapacity returns the number of values the current buffer can hold.
func (v *FixedWidthVector[T]) ValueCapacity() int {
	if v.buf == nil {
		return 0
	}
	return v.buf.Len() / v.width()
}

func (v *FixedWidthVector[T]) ensureCapacity(n int) {
	need := n * v.width()
	if v.buf != nil && v.buf.Len() >= need {
		return
	}
	newCap := defaultValueCapacity * v.width()
	if v.buf != nil && v.buf.Len() > 0 {
		newCap = v.buf.Len()
	}
	for newCap < need {
		newCap *= 2
	}
	nb, err := v.alloc.Allocate(newCap)
	if err != nil {
		panic(err)
	}
	if v.buf != nil {
		copy(nb.Bytes(), v.buf.Bytes())
		v.buf.Release()
	}
	v.buf = nb
}

// AllocateNewSafe allocates a fresh zero-filled buffer, releasing any
// previous one. Returns false if the allocator is exhausted, leaving the
// vector fully released.
func (v *FixedWidthVector[T]) AllocateNewSafe() bool {
	v.Clear()
	buf, err := v.alloc.Allocate(defaultValueCapacity * v.width())
	if err != nil {
		return false
	}
	v.buf = buf
	return true
}

func (v *FixedWidthVector[T]) Clear() {
	if v.buf != nil {
		v.buf.Release()
		v.buf = nil
	}
	v.valueCount = 0
}

func (v *FixedWidthVector[T]) BufferSize() int {
	if v.valueCount == 0 {
		return 0
	}
	return v.valueCount * v.width()
}

func (v *FixedWidthVector[T]) ValueCount() int { return v.valueCount }

func (v *FixedWidthVector[T]) SetValueCount(n int) {
	if n > 0 {
		v.ensureCapacity(n)
	}
	v.valueCount = n
}

func (v *FixedWidthVector[T]) GetObject(i int) any { return v.Get(i) }

func (v *FixedWidthVector[T]) Buffers(clear bool) []*memory.Buffer {
	size := v.BufferSize()
	if v.buf == nil || size == 0 {
		if clear {
			v.Clear()
		}
		return nil
	}
	out := v.buf.Slice(0, size)
	if clear {
		out.Retain()
		v.Clear()
	}
	return []*memory.Buffer{out}
}

func (v *FixedWidthVector[T]) Metadata() *types.SerializedField {
	return &types.SerializedField{
		Name:         v.field.Name,
		Type:         v.field.Type,
		ValueCount:   v.valueCount,
		BufferLength: v.BufferSize(),
	}
}

func (v *FixedWidthVector[T]) Load(meta *types.SerializedField, buf *memory.Buffer) {
	v.Clear()
	v.buf = buf.Slice(0, meta.BufferLength)
	v.buf.Retain()
	v.valueCount = meta.ValueCount
}

// TransferTo moves buffer ownership to target. Afterwards this vector is
// empty and valid only for Clear or reallocation.
func (v *FixedWidthVector[T]) TransferTo(target *FixedWidthVector[T]) {
	target.Clear()
	target.buf = v.buf
	target.valueCount = v.valueCount
	v.buf = nil
	v.valueCount = 0
}

func (v *FixedWidthVector[T]) MakeTransferPair(target ValueVector) (TransferPair, error) {
	to, ok := target.(*FixedWidthVector[T])
	if !ok {
		return nil, &ErrVectorTypeMismatch{Expected: v.field.Type, Actual: target.Field().Type}
	}
	return &fixedTransferPair[T]{from: v, to: to}, nil
}

func (v *FixedWidthVector[T]) NewTransferPair(name string) TransferPair {
	to := &FixedWidthVector[T]{field: v.field.WithName(name), alloc: v.alloc}
	return &fixedTransferPair[T]{from: v, to: to}
}

type fixedTransferPair[T fixedElement] struct {
	from *FixedWidthVector[T]
	to   *FixedWidthVector[T]
}

func (p *fixedTransferPair[T]) Transfer() {
	p.from.TransferTo(p.to)
}

func (p *fixedTransferPair[T]) SplitAndTransfer(start, length int) {
	p.to.AllocateNewSafe()
	for i := 0; i < length; i++ {
		p.to.SetSafe(i, p.from.Get(start+i))
	}
	p.to.SetValueCount(length)
}

func (p *fixedTransferPair[T]) CopyValueSafe(fromIndex, toIndex int) {
	p.to.SetSafe(toIndex, p.from.Get(fromIndex))
}

func (p *fixedTransferPair[T]) To() ValueVector { return p.to }
