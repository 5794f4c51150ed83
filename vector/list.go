package vector

import (
	"github.com/hupe1980/batchvec/memory"
	"github.com/hupe1980/batchvec/types"
)

// ListVector is a column whose rows each hold zero or more values of a
// possibly evolving element type. It composes three co-located buffers:
// an offset vector (rowCount+1 entries, non-decreasing, offsets[0] = 0),
// a validity vector (one byte per row, 0 = null), and the data vector
// holding the flattened elements of all rows.
//
// A row whose validity byte is 0 reads as null regardless of its offset
// span; an unset row and an explicitly empty row are indistinguishable to
// readers.
type ListVector struct {
	repeatedBase

	bits *Uint8Vector

	// lastSet is the row index one past the last row whose offset span
	// was explicitly closed. Forward-only; reset only by Clear.
	lastSet int

	// version is bumped whenever the data vector's identity or type
	// changes; cached readers rebuild when their captured version is
	// stale.
	version uint64
	reader  *ListReader
}

var _ ValueVector = (*ListVector)(nil)

// ListOption configures a ListVector.
type ListOption func(*ListVector)

// WithListCallback sets the structural-change callback fired when the
// data vector is created or replaced.
func WithListCallback(cb FieldCallback) ListOption {
	return func(v *ListVector) {
		v.callback = cb
	}
}

// NewListVector creates an empty list vector bound to the allocator. The
// data vector starts as an untyped placeholder.
func NewListVector(field *types.Field, alloc *memory.Allocator, opts ...ListOption) *ListVector {
	v := &ListVector{
		repeatedBase: newRepeatedBase(field, alloc),
		bits:         NewUint8Vector(types.NewField(bitsFieldName, types.Required(types.MinorTypeUint8)), alloc),
	}
	for _, opt := range opts {
		opt(v)
	}
	v.field.AddChild(v.data.Field())
	return v
}

// BitsVector returns the validity vector. Intended for tests and for the
// union vector's list member bookkeeping.
func (v *ListVector) BitsVector() *Uint8Vector { return v.bits }

// AllocateNewSafe allocates fresh buffers for offsets, validity, and the
// data vector. All-or-nothing: on any sub-allocation failure everything
// allocated in this attempt is released and false is returned.
func (v *ListVector) AllocateNewSafe() bool {
	success := false
	defer func() {
		if !success {
			v.Clear()
		}
	}()
	if !v.offsets.AllocateNewSafe() {
		return false
	}
	if !v.data.AllocateNewSafe() {
		return false
	}
	if !v.bits.AllocateNewSafe() {
		return false
	}
	success = true
	return true
}

// Clear releases all buffers and resets lastSet. Idempotent.
func (v *ListVector) Clear() {
	v.offsets.Clear()
	v.data.Clear()
	v.bits.Clear()
	v.lastSet = 0
}

func (v *ListVector) BufferSize() int {
	if v.ValueCount() == 0 {
		return 0
	}
	return v.offsets.BufferSize() + v.bits.BufferSize() + v.data.BufferSize()
}

func (v *ListVector) ValueCount() int { return v.bits.ValueCount() }

// SetValueCount finalizes the vector for n rows via the mutator protocol.
func (v *ListVector) SetValueCount(n int) {
	v.Mutator().SetValueCount(n)
}

func (v *ListVector) GetObject(i int) any {
	return v.Accessor().GetObject(i)
}

// AddOrGetVector returns the data vector, creating one of the requested
// type if only the placeholder exists. Creation is a structural change:
// cached readers are invalidated and the callback fires.
func (v *ListVector) AddOrGetVector(t types.MajorType) (ValueVector, bool, error) {
	nv, created, err := v.addOrGet(t)
	if created {
		v.version++
	}
	return nv, created, err
}

// PromoteToUnion replaces the data vector with a freshly created union
// vector, leaving offsets and validity untouched, and returns it for
// population. Used when the element type must become heterogeneous.
func (v *ListVector) PromoteToUnion() *UnionVector {
	u := NewUnionVector(types.NewField(dataFieldName, types.Optional(types.MinorTypeUnion)), v.alloc,
		WithUnionCallback(v.callback))
	v.replaceData(u)
	v.version++
	return u
}

// Accessor returns the read-only view of this vector.
func (v *ListVector) Accessor() ListAccessor { return ListAccessor{v: v} }

// Mutator returns the write-only view of this vector.
func (v *ListVector) Mutator() ListMutator { return ListMutator{v: v} }

// Writer returns a structural writer positioned on this vector.
func (v *ListVector) Writer() *ListWriter { return &ListWriter{v: v} }

// Reader returns the cached structural reader, rebuilding it if the data
// vector changed since it was built.
func (v *ListVector) Reader() *ListReader {
	if v.reader == nil || v.reader.version != v.version {
		v.reader = &ListReader{v: v, version: v.version}
	}
	return v.reader
}

// CopyFrom deep-copies row inIndex of from into row outIndex of this
// vector, delegating to the recursive value copier. Buffers grow as
// needed; callers never pre-size the destination.
func (v *ListVector) CopyFrom(inIndex, outIndex int, from *ListVector) {
	r := from.Reader()
	r.SetPosition(inIndex)
	w := v.Writer()
	w.SetPosition(outIndex)
	CopyValue(r, w)
}

// CopyFromSafe is CopyFrom under the growth-safe allocation discipline.
func (v *ListVector) CopyFromSafe(inIndex, outIndex int, from *ListVector) {
	v.CopyFrom(inIndex, outIndex, from)
}

// TransferTo moves ownership of the offset, validity, and data buffers to
// target. If target still holds the untyped placeholder, a concretely
// typed data vector is instantiated on it first; a target whose
// established data vector is of a different type panics with
// ErrVectorTypeMismatch before any buffer moves. Afterwards this vector
// holds no data; only Clear or reallocation are valid.
func (v *ListVector) TransferTo(target *ListVector) {
	if !target.hasData() && v.hasData() {
		target.AddOrGetVector(v.data.Field().Type)
	}
	pair, err := v.data.MakeTransferPair(target.data)
	if err != nil {
		panic(err)
	}
	v.offsets.TransferTo(target.offsets)
	v.bits.TransferTo(target.bits)
	pair.Transfer()
}

func (v *ListVector) MakeTransferPair(target ValueVector) (TransferPair, error) {
	to, ok := target.(*ListVector)
	if !ok {
		return nil, &ErrVectorTypeMismatch{Expected: v.field.Type, Actual: target.Field().Type}
	}
	if v.hasData() {
		to.AddOrGetVector(v.data.Field().Type)
	}
	return &listTransferPair{from: v, to: to}, nil
}

func (v *ListVector) NewTransferPair(name string) TransferPair {
	to := NewListVector(v.field.WithName(name), v.alloc, WithListCallback(v.callback))
	if v.hasData() {
		to.AddOrGetVector(v.data.Field().Type)
	}
	return &listTransferPair{from: v, to: to}
}

type listTransferPair struct {
	from *ListVector
	to   *ListVector
}

func (p *listTransferPair) Transfer() {
	p.from.TransferTo(p.to)
}

func (p *listTransferPair) SplitAndTransfer(start, length int) {
	p.to.AllocateNewSafe()
	for i := 0; i < length; i++ {
		p.CopyValueSafe(start+i, i)
	}
}

func (p *listTransferPair) CopyValueSafe(fromIndex, toIndex int) {
	p.to.CopyFromSafe(fromIndex, toIndex, p.from)
}

func (p *listTransferPair) To() ValueVector { return p.to }

func (v *ListVector) Metadata() *types.SerializedField {
	sf := &types.SerializedField{
		Name:         v.field.Name,
		Type:         v.field.Type,
		ValueCount:   v.ValueCount(),
		BufferLength: v.BufferSize(),
	}
	// Child order is the wire contract: offsets, bits, data.
	return sf.AddChild(v.offsets.Metadata()).
		AddChild(v.bits.Metadata()).
		AddChild(v.data.Metadata())
}

func (v *ListVector) Buffers(clear bool) []*memory.Buffer {
	var out []*memory.Buffer
	out = append(out, v.offsets.Buffers(false)...)
	out = append(out, v.bits.Buffers(false)...)
	out = append(out, v.data.Buffers(false)...)
	if clear {
		for _, b := range out {
			b.Retain()
		}
		v.Clear()
	}
	return out
}

// Load populates the vector from metadata and one contiguous buffer laid
// out as offsets-bytes ++ bitmap-bytes ++ data-bytes. If no concrete data
// vector has been established, one matching the metadata's declared type
// is instantiated first.
func (v *ListVector) Load(meta *types.SerializedField, buf *memory.Buffer) {
	om := meta.Child(0)
	v.offsets.Load(om, buf.Slice(0, om.BufferLength))

	bm := meta.Child(1)
	v.bits.Load(bm, buf.Slice(om.BufferLength, bm.BufferLength))

	dm := meta.Child(2)
	if !v.hasData() && dm.Type.Minor != types.MinorTypeLate {
		v.AddOrGetVector(dm.Type)
	}
	v.data.Load(dm, buf.Slice(om.BufferLength+bm.BufferLength, dm.BufferLength))
}

// ListAccessor is the read-only view of a ListVector.
type ListAccessor struct {
	v *ListVector
}

// IsNull reports whether the row at index reads as null.
func (a ListAccessor) IsNull(index int) bool {
	return a.v.bits.Get(index) == 0
}

// GetObject materializes the row at index as a []any of element values in
// offset order, or nil if the row is null.
func (a ListAccessor) GetObject(index int) any {
	if a.IsNull(index) {
		return nil
	}
	start := a.v.offsets.Get(index)
	end := a.v.offsets.Get(index + 1)
	vals := make([]any, 0, end-start)
	for i := start; i < end; i++ {
		vals = append(vals, a.v.data.GetObject(int(i)))
	}
	return vals
}

// ValueCount returns the finalized row count.
func (a ListAccessor) ValueCount() int { return a.v.ValueCount() }

// ListMutator is the write-only view of a ListVector. It advances the
// forward-only lastSet cursor and backfills skipped rows with zero-length
// offset spans.
type ListMutator struct {
	v *ListVector
}

// SetNotNull marks the row at index not-null and advances lastSet.
func (m ListMutator) SetNotNull(index int) {
	m.v.bits.SetSafe(index, 1)
	m.v.lastSet = index + 1
}

// StartNewValue opens the row at index for writing: every not yet closed
// row in [lastSet, index] gets a zero-length span, the row is marked
// not-null, and lastSet advances to index+1. Rows never opened stay null
// with a deterministic zero-length span.
func (m ListMutator) StartNewValue(index int) {
	v := m.v
	v.offsets.ensureCapacity(index + 2)
	for i := v.lastSet; i <= index; i++ {
		v.offsets.Set(i+1, v.offsets.Get(i))
	}
	m.SetNotNull(index)
}

// SetValueCount finalizes the vector for n rows: remaining open rows get
// zero-length spans, the offset vector's logical length becomes n+1 (or 0
// when n is 0), the data vector's length becomes offsets[n], and the
// validity vector's length becomes n. lastSet is not advanced.
func (m ListMutator) SetValueCount(n int) {
	v := m.v
	if n == 0 {
		v.offsets.SetValueCount(0)
	} else {
		v.offsets.ensureCapacity(n + 1)
		for i := v.lastSet; i < n; i++ {
			v.offsets.Set(i+1, v.offsets.Get(i))
		}
		v.offsets.SetValueCount(n + 1)
	}
	childCount := 0
	if n > 0 {
		childCount = int(v.offsets.Get(n))
	}
	v.data.SetValueCount(childCount)
	v.bits.SetValueCount(n)
}
