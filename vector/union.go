package vector

import (
	"github.com/hupe1980/batchvec/memory"
	"github.com/hupe1980/batchvec/types"
)

// UnionVector holds heterogeneously typed values: a type-tag vector (one
// byte per row holding the member's MinorType, 0 = unset/null) plus one
// sparsely populated member vector per distinct type. Members are created
// lazily on first write of their type.
//
// The wire layout is tags-bytes followed by each present member's bytes
// in ascending MinorType order; the member set is recorded in the
// metadata children.
type UnionVector struct {
	field    *types.Field
	alloc    *memory.Allocator
	callback FieldCallback

	tags     *Uint8Vector
	int64V   *Int64Vector
	float64V *Float64Vector
	varcharV *VarCharVector
	listV    *ListVector
}

var _ ValueVector = (*UnionVector)(nil)

// UnionOption configures a UnionVector.
type UnionOption func(*UnionVector)

// WithUnionCallback sets the structural-change callback fired when a
// member vector is created.
func WithUnionCallback(cb FieldCallback) UnionOption {
	return func(v *UnionVector) {
		v.callback = cb
	}
}

// NewUnionVector creates an empty union vector.
func NewUnionVector(field *types.Field, alloc *memory.Allocator, opts ...UnionOption) *UnionVector {
	v := &UnionVector{
		field: field,
		alloc: alloc,
		tags:  NewUint8Vector(types.NewField(typesFieldName, types.Required(types.MinorTypeUint8)), alloc),
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

func (v *UnionVector) Field() *types.Field { return v.field }

// TypeTag returns the member type of the row at index, MinorTypeLate for
// unset rows.
func (v *UnionVector) TypeTag(index int) types.MinorType {
	return types.MinorType(v.tags.Get(index))
}

// members returns the present member vectors in wire order.
func (v *UnionVector) members() []ValueVector {
	var out []ValueVector
	if v.int64V != nil {
		out = append(out, v.int64V)
	}
	if v.float64V != nil {
		out = append(out, v.float64V)
	}
	if v.varcharV != nil {
		out = append(out, v.varcharV)
	}
	if v.listV != nil {
		out = append(out, v.listV)
	}
	return out
}

// member returns the member vector for the given type, creating and
// allocating it on first use. Creation fires the structural-change
// callback.
func (v *UnionVector) member(t types.MinorType) ValueVector {
	switch t {
	case types.MinorTypeInt64:
		if v.int64V == nil {
			v.int64V = NewInt64Vector(v.memberField(t), v.alloc)
			v.addMember(v.int64V)
		}
		return v.int64V
	case types.MinorTypeFloat64:
		if v.float64V == nil {
			v.float64V = NewFloat64Vector(v.memberField(t), v.alloc)
			v.addMember(v.float64V)
		}
		return v.float64V
	case types.MinorTypeVarChar:
		if v.varcharV == nil {
			v.varcharV = NewVarCharVector(v.memberField(t), v.alloc)
			v.addMember(v.varcharV)
		}
		return v.varcharV
	case types.MinorTypeList:
		if v.listV == nil {
			v.listV = NewListVector(v.memberField(t), v.alloc, WithListCallback(v.callback))
			v.addMember(v.listV)
		}
		return v.listV
	default:
		return nil
	}
}

func (v *UnionVector) memberField(t types.MinorType) *types.Field {
	return types.NewField(t.String(), types.Optional(t))
}

func (v *UnionVector) addMember(m ValueVector) {
	m.AllocateNewSafe()
	v.field.AddChild(m.Field())
	if v.callback != nil {
		v.callback(m.Field())
	}
}

// SetInt64Safe writes an int64 value at index.
func (v *UnionVector) SetInt64Safe(index int, val int64) {
	v.tags.SetSafe(index, uint8(types.MinorTypeInt64))
	v.member(types.MinorTypeInt64).(*Int64Vector).SetSafe(index, val)
}

// SetFloat64Safe writes a float64 value at index.
func (v *UnionVector) SetFloat64Safe(index int, val float64) {
	v.tags.SetSafe(index, uint8(types.MinorTypeFloat64))
	v.member(types.MinorTypeFloat64).(*Float64Vector).SetSafe(index, val)
}

// SetVarCharSafe writes a byte value at index.
func (v *UnionVector) SetVarCharSafe(index int, val []byte) {
	v.tags.SetSafe(index, uint8(types.MinorTypeVarChar))
	v.member(types.MinorTypeVarChar).(*VarCharVector).SetSafe(index, val)
}

// SetValueSafe writes a dynamically typed value at index: int64, float64,
// string, []byte, or []any (a nested list). nil leaves the row unset, so
// it reads back as nil.
func (v *UnionVector) SetValueSafe(index int, val any) {
	switch x := val.(type) {
	case nil:
		v.tags.SetSafe(index, uint8(types.MinorTypeLate))
	case int64:
		v.SetInt64Safe(index, x)
	case float64:
		v.SetFloat64Safe(index, x)
	case string:
		v.SetVarCharSafe(index, []byte(x))
	case []byte:
		v.SetVarCharSafe(index, x)
	case []any:
		v.tags.SetSafe(index, uint8(types.MinorTypeList))
		lw := v.member(types.MinorTypeList).(*ListVector).Writer()
		lw.SetPosition(index)
		lw.WriteValue(x)
	}
}

func (v *UnionVector) GetObject(index int) any {
	switch v.TypeTag(index) {
	case types.MinorTypeInt64:
		return v.int64V.GetObject(index)
	case types.MinorTypeFloat64:
		return v.float64V.GetObject(index)
	case types.MinorTypeVarChar:
		return v.varcharV.GetObject(index)
	case types.MinorTypeList:
		return v.listV.GetObject(index)
	default:
		return nil
	}
}

func (v *UnionVector) AllocateNewSafe() bool {
	success := false
	defer func() {
		if !success {
			v.Clear()
		}
	}()
	if !v.tags.AllocateNewSafe() {
		return false
	}
	for _, m := range v.members() {
		if !m.AllocateNewSafe() {
			return false
		}
	}
	success = true
	return true
}

func (v *UnionVector) Clear() {
	v.tags.Clear()
	for _, m := range v.members() {
		m.Clear()
	}
}

func (v *UnionVector) BufferSize() int {
	if v.ValueCount() == 0 {
		return 0
	}
	size := v.tags.BufferSize()
	for _, m := range v.members() {
		size += m.BufferSize()
	}
	return size
}

func (v *UnionVector) ValueCount() int { return v.tags.ValueCount() }

func (v *UnionVector) SetValueCount(n int) {
	v.tags.SetValueCount(n)
	for _, m := range v.members() {
		m.SetValueCount(n)
	}
}

func (v *UnionVector) Buffers(clear bool) []*memory.Buffer {
	var out []*memory.Buffer
	out = append(out, v.tags.Buffers(false)...)
	for _, m := range v.members() {
		out = append(out, m.Buffers(false)...)
	}
	if clear {
		for _, b := range out {
			b.Retain()
		}
		v.Clear()
	}
	return out
}

func (v *UnionVector) Metadata() *types.SerializedField {
	sf := &types.SerializedField{
		Name:         v.field.Name,
		Type:         v.field.Type,
		ValueCount:   v.ValueCount(),
		BufferLength: v.BufferSize(),
	}
	sf.AddChild(v.tags.Metadata())
	for _, m := range v.members() {
		sf.AddChild(m.Metadata())
	}
	return sf
}

func (v *UnionVector) Load(meta *types.SerializedField, buf *memory.Buffer) {
	tm := meta.Child(0)
	v.tags.Load(tm, buf.Slice(0, tm.BufferLength))

	off := tm.BufferLength
	for _, cm := range meta.Children[1:] {
		m := v.member(cm.Type.Minor)
		m.Load(cm, buf.Slice(off, cm.BufferLength))
		off += cm.BufferLength
	}
}

// TransferTo moves buffer ownership to target, instantiating matching
// member vectors on the target as needed.
func (v *UnionVector) TransferTo(target *UnionVector) {
	v.tags.TransferTo(target.tags)
	for _, m := range v.members() {
		tm := target.member(m.Field().Type.Minor)
		pair, err := m.MakeTransferPair(tm)
		if err != nil {
			panic(err)
		}
		pair.Transfer()
	}
}

func (v *UnionVector) MakeTransferPair(target ValueVector) (TransferPair, error) {
	to, ok := target.(*UnionVector)
	if !ok {
		return nil, &ErrVectorTypeMismatch{Expected: v.field.Type, Actual: target.Field().Type}
	}
	return &unionTransferPair{from: v, to: to}, nil
}

func (v *UnionVector) NewTransferPair(name string) TransferPair {
	to := NewUnionVector(v.field.WithName(name), v.alloc, WithUnionCallback(v.callback))
	return &unionTransferPair{from: v, to: to}
}

type unionTransferPair struct {
	from *UnionVector
	to   *UnionVector
}

func (p *unionTransferPair) Transfer() {
	p.from.TransferTo(p.to)
}

func (p *unionTransferPair) SplitAndTransfer(start, length int) {
	p.to.AllocateNewSafe()
	for i := 0; i < length; i++ {
		p.CopyValueSafe(start+i, i)
	}
	p.to.SetValueCount(length)
}

func (p *unionTransferPair) CopyValueSafe(fromIndex, toIndex int) {
	p.to.SetValueSafe(toIndex, p.from.GetObject(fromIndex))
}

func (p *unionTransferPair) To() ValueVector { return p.to }
