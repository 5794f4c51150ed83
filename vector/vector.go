package vector

import (
	"fmt"

	"github.com/hupe1980/batchvec/memory"
	"github.com/hupe1980/batchvec/types"
)

// Internal field names used for the auxiliary buffers of composite vectors.
const (
	offsetsFieldName = "$offsets$"
	bitsFieldName    = "$bits$"
	dataFieldName    = "$data$"
	typesFieldName   = "$types$"
)

// FieldCallback is invoked best-effort whenever a vector creates or
// replaces a child vector, announcing the structural change to an
// interested listener (e.g. a schema tracker). It may be nil.
type FieldCallback func(field *types.Field)

// ErrVectorTypeMismatch indicates that a transfer pair was constructed
// against a target of the wrong vector type.
type ErrVectorTypeMismatch struct {
	Expected types.MajorType
	Actual   types.MajorType
}

func (e *ErrVectorTypeMismatch) Error() string {
	return fmt.Sprintf("vector type mismatch: expected %s, got %s", e.Expected, e.Actual)
}

// ValueVector is the common surface of all column vectors.
//
// Row indices passed to GetObject are caller preconditions and are not
// validated. Metadata/buffer consistency during Load is likewise a caller
// precondition.
type ValueVector interface {
	// Field returns the schema field this vector materializes.
	Field() *types.Field

	// AllocateNewSafe allocates fresh buffers for the vector and all of
	// its sub-vectors. It is all-or-nothing: on failure every partial
	// allocation is released and false is returned.
	AllocateNewSafe() bool

	// Clear releases all buffers. Idempotent.
	Clear()

	// BufferSize returns the total byte size of the vector's buffers,
	// 0 when the value count is 0.
	BufferSize() int

	// ValueCount returns the finalized number of rows.
	ValueCount() int

	// SetValueCount finalizes the vector for n rows.
	SetValueCount(n int)

	// GetObject materializes the value at index i, or nil if null.
	GetObject(i int) any

	// Buffers returns the vector's underlying buffers in wire order.
	// If clear is true each returned buffer is retained on behalf of the
	// caller and the vector releases its own references.
	Buffers(clear bool) []*memory.Buffer

	// Metadata builds the serialized-field descriptor for the vector's
	// current contents.
	Metadata() *types.SerializedField

	// Load populates the vector from a metadata descriptor and one
	// contiguous buffer laid out as described by the descriptor.
	Load(meta *types.SerializedField, buf *memory.Buffer)

	// MakeTransferPair constructs a transfer pair moving into target.
	// A target of the wrong vector type yields ErrVectorTypeMismatch.
	MakeTransferPair(target ValueVector) (TransferPair, error)

	// NewTransferPair constructs a transfer pair whose target is a fresh
	// empty vector of the same type under the given field name.
	NewTransferPair(name string) TransferPair
}

// TransferPair moves or copies data between two vectors of the same type.
type TransferPair interface {
	// Transfer moves buffer ownership from the source to the target.
	// Afterwards the source holds no data.
	Transfer()

	// SplitAndTransfer deep-copies rows [start, start+length) of the
	// source into rows [0, length) of the target. The source is left
	// unmodified.
	SplitAndTransfer(start, length int)

	// CopyValueSafe deep-copies a single row, growing target buffers as
	// needed.
	CopyValueSafe(fromIndex, toIndex int)

	// To returns the target vector.
	To() ValueVector
}

// NewVector creates an empty vector for the given field. The callback, if
// non-nil, is carried into composite vectors and fired on structural
// changes.
func NewVector(field *types.Field, alloc *memory.Allocator, callback FieldCallback) (ValueVector, error) {
	switch field.Type.Minor {
	case types.MinorTypeLate:
		return &ZeroVector{field: field}, nil
	case types.MinorTypeUint8:
		return NewUint8Vector(field, alloc), nil
	case types.MinorTypeUint32:
		return NewUint32Vector(field, alloc), nil
	case types.MinorTypeInt64:
		return NewInt64Vector(field, alloc), nil
	case types.MinorTypeFloat64:
		return NewFloat64Vector(field, alloc), nil
	case types.MinorTypeVarChar:
		return NewVarCharVector(field, alloc), nil
	case types.MinorTypeList:
		return NewListVector(field, alloc, WithListCallback(callback)), nil
	case types.MinorTypeUnion:
		return NewUnionVector(field, alloc, WithUnionCallback(callback)), nil
	default:
		return nil, fmt.Errorf("vector: no vector for type %s", field.Type)
	}
}
