package vector

import (
	"github.com/hupe1980/batchvec/memory"
	"github.com/hupe1980/batchvec/types"
)

// defaultVarCharBytes is the byte capacity of a fresh data allocation,
// sized for defaultValueCapacity values of ~8 bytes.
const defaultVarCharBytes = defaultValueCapacity * 8

// VarCharVector is a column of variable-width byte values: an offset
// vector plus one data buffer holding all values back to back.
//
// Values are written in ascending index order; skipped indices read as
// empty. The wire layout is offsets-bytes ++ data-bytes.
type VarCharVector struct {
	field      *types.Field
	alloc      *memory.Allocator
	offsets    *Uint32Vector
	buf        *memory.Buffer
	valueCount int
	lastSet    int
}

var _ ValueVector = (*VarCharVector)(nil)

// NewVarCharVector creates an empty varchar vector.
func NewVarCharVector(field *types.Field, alloc *memory.Allocator) *VarCharVector {
	return &VarCharVector{
		field:   field,
		alloc:   alloc,
		offsets: NewUint32Vector(types.NewField(offsetsFieldName, types.Required(types.MinorTypeUint32)), alloc),
	}
}

func (v *VarCharVector) Field() *types.Field { return v.field }

// Get returns the bytes at index i. The slice aliases the data buffer.
// Index validity is a caller precondition.
func (v *VarCharVector) Get(i int) []byte {
	start := v.offsets.Get(i)
	end := v.offsets.Get(i + 1)
	return v.buf.Bytes()[start:end]
}

// SetSafe writes the bytes at index i, backfilling any skipped indices
// with empty values and growing buffers as needed.
func (v *VarCharVector) SetSafe(i int, val []byte) {
	v.offsets.ensureCapacity(i + 2)
	for r := v.lastSet; r < i; r++ {
		v.offsets.Set(r+1, v.offsets.Get(r))
	}
	start := int(v.offsets.Get(i))
	v.growData(start + len(val))
	copy(v.buf.Bytes()[start:], val)
	v.offsets.Set(i+1, uint32(start+len(val)))
	v.lastSet = i + 1
}

func (v *VarCharVector) growData(need int) {
	if v.buf != nil && v.buf.Len() >= need {
		return
	}
	newCap := defaultVarCharBytes
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

func (v *VarCharVector) AllocateNewSafe() bool {
	success := false
	defer func() {
		if !success {
			v.Clear()
		}
	}()
	v.Clear()
	if !v.offsets.AllocateNewSafe() {
		return false
	}
	buf, err := v.alloc.Allocate(defaultVarCharBytes)
	if err != nil {
		return false
	}
	v.buf = buf
	success = true
	return true
}

func (v *VarCharVector) Clear() {
	v.offsets.Clear()
	if v.buf != nil {
		v.buf.Release()
		v.buf = nil
	}
	v.valueCount = 0
	v.lastSet = 0
}

func (v *VarCharVector) bytesUsed() int {
	if v.valueCount == 0 {
		return 0
	}
	return int(v.offsets.Get(v.valueCount))
}

func (v *VarCharVector) BufferSize() int {
	if v.valueCount == 0 {
		return 0
	}
	return v.offsets.BufferSize() + v.bytesUsed()
}

func (v *VarCharVector) ValueCount() int { return v.valueCount }

func (v *VarCharVector) SetValueCount(n int) {
	if n == 0 {
		v.offsets.SetValueCount(0)
	} else {
		v.offsets.ensureCapacity(n + 1)
		for r := v.lastSet; r < n; r++ {
			v.offsets.Set(r+1, v.offsets.Get(r))
		}
		v.offsets.SetValueCount(n + 1)
	}
	v.valueCount = n
}

func (v *VarCharVector) GetObject(i int) any { return string(v.Get(i)) }

func (v *VarCharVector) Buffers(clear bool) []*memory.Buffer {
	used := v.bytesUsed()
	out := v.offsets.Buffers(false)
	if v.buf != nil && used > 0 {
		out = append(out, v.buf.Slice(0, used))
	}
	if clear {
		for _, b := range out {
			b.Retain()
		}
		v.Clear()
	}
	return out
}

func (v *VarCharVector) Metadata() *types.SerializedField {
	sf := &types.SerializedField{
		Name:         v.field.Name,
		Type:         v.field.Type,
		ValueCount:   v.valueCount,
		BufferLength: v.BufferSize(),
	}
	return sf.AddChild(v.offsets.Metadata())
}

func (v *VarCharVector) Load(meta *types.SerializedField, buf *memory.Buffer) {
	v.Clear()
	om := meta.Child(0)
	v.offsets.Load(om, buf.Slice(0, om.BufferLength))
	v.buf = buf.Slice(om.BufferLength, meta.BufferLength-om.BufferLength)
	v.buf.Retain()
	v.valueCount = meta.ValueCount
	v.lastSet = meta.ValueCount
}

// TransferTo moves buffer ownership to target. Afterwards this vector is
// empty and valid only for Clear or reallocation.
func (v *VarCharVector) TransferTo(target *VarCharVector) {
	target.Clear()
	v.offsets.TransferTo(target.offsets)
	target.buf = v.buf
	target.valueCount = v.valueCount
	target.lastSet = v.lastSet
	v.buf = nil
	v.valueCount = 0
	v.lastSet = 0
}

func (v *VarCharVector) MakeTransferPair(target ValueVector) (TransferPair, error) {
	to, ok := target.(*VarCharVector)
	if !ok {
		return nil, &ErrVectorTypeMismatch{Expected: v.field.Type, Actual: target.Field().Type}
	}
	return &varCharTransferPair{from: v, to: to}, nil
}

func (v *VarCharVector) NewTransferPair(name string) TransferPair {
	return &varCharTransferPair{from: v, to: NewVarCharVector(v.field.WithName(name), v.alloc)}
}

type varCharTransferPair struct {
	from *VarCharVector
	to   *VarCharVector
}

func (p *varCharTransferPair) Transfer() {
	p.from.TransferTo(p.to)
}

func (p *varCharTransferPair) SplitAndTransfer(start, length int) {
	p.to.AllocateNewSafe()
	for i := 0; i < length; i++ {
		p.to.SetSafe(i, p.from.Get(start+i))
	}
	p.to.SetValueCount(length)
}

func (p *varCharTransferPair) CopyValueSafe(fromIndex, toIndex int) {
	p.to.SetSafe(toIndex, p.from.Get(fromIndex))
}

func (p *varCharTransferPair) To() ValueVector { return p.to }
