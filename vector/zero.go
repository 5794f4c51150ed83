package vector

import (
	"github.com/hupe1980/batchvec/memory"
	"github.com/hupe1980/batchvec/types"
)

// ZeroVector is the untyped placeholder used as a list's data vector
// before an element type has been established. It holds no buffers and
// every operation is a no-op.
type ZeroVector struct {
	field *types.Field
}

var _ ValueVector = (*ZeroVector)(nil)

// NewZeroVector creates a placeholder vector under the given field name.
func NewZeroVector(name string) *ZeroVector {
	return &ZeroVector{field: types.NewField(name, types.Optional(types.MinorTypeLate))}
}

func (v *ZeroVector) Field() *types.Field { return v.field }

func (v *ZeroVector) AllocateNewSafe() bool { return true }

func (v *ZeroVector) Clear() {}

func (v *ZeroVector) BufferSize() int { return 0 }

func (v *ZeroVector) ValueCount() int { return 0 }

func (v *ZeroVector) SetValueCount(n int) {}

func (v *ZeroVector) GetObject(i int) any { return nil }

func (v *ZeroVector) Buffers(clear bool) []*memory.Buffer { return nil }

func (v *ZeroVector) Metadata() *types.SerializedField {
	return &types.SerializedField{Name: v.field.Name, Type: v.field.Type}
}

func (v *ZeroVector) Load(meta *types.SerializedField, buf *memory.Buffer) {}

func (v *ZeroVector) MakeTransferPair(target ValueVector) (TransferPair, error) {
	to, ok := target.(*ZeroVector)
	if !ok {
		return nil, &ErrVectorTypeMismatch{Expected: v.field.Type, Actual: target.Field().Type}
	}
	return zeroTransferPair{to: to}, nil
}

func (v *ZeroVector) NewTransferPair(name string) TransferPair {
	return zeroTransferPair{to: NewZeroVector(name)}
}

type zeroTransferPair struct {
	to *ZeroVector
}

func (p zeroTransferPair) Transfer() {}

func (p zeroTransferPair) SplitAndTransfer(start, length int) {}

func (p zeroTransferPair) CopyValueSafe(fromIndex, toIndex int) {}

func (p zeroTransferPair) To() ValueVector { return p.to }
