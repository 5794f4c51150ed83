package vector

import (
	"fmt"

	"github.com/hupe1980/batchvec/memory"
	"github.com/hupe1980/batchvec/types"
)

// repeatedBase implements the offset/child mechanics shared by repeated
// vectors: an offset vector addressing a flattened data vector whose type
// is established lazily and may be replaced. Composite vectors embed it
// rather than inherit from it.
type repeatedBase struct {
	field    *types.Field
	alloc    *memory.Allocator
	offsets  *Uint32Vector
	data     ValueVector
	callback FieldCallback
}

func newRepeatedBase(field *types.Field, alloc *memory.Allocator) repeatedBase {
	return repeatedBase{
		field:   field,
		alloc:   alloc,
		offsets: NewUint32Vector(types.NewField(offsetsFieldName, types.Required(types.MinorTypeUint32)), alloc),
		data:    NewZeroVector(dataFieldName),
	}
}

func (b *repeatedBase) Field() *types.Field { return b.field }

// OffsetVector returns the per-row offset vector.
func (b *repeatedBase) OffsetVector() *Uint32Vector { return b.offsets }

// DataVector returns the current data vector, which is a *ZeroVector
// placeholder until an element type has been established.
func (b *repeatedBase) DataVector() ValueVector { return b.data }

// hasData reports whether a concrete data vector has been established.
func (b *repeatedBase) hasData() bool {
	_, zero := b.data.(*ZeroVector)
	return !zero
}

// addOrGet returns the current data vector, creating one of the requested
// type if only the placeholder exists. The created flag tells the caller
// whether a structural change happened. Requesting a type that conflicts
// with an already established one is an error.
func (b *repeatedBase) addOrGet(t types.MajorType) (ValueVector, bool, error) {
	if !b.hasData() {
		nv, err := NewVector(types.NewField(dataFieldName, t), b.alloc, b.callback)
		if err != nil {
			return nil, false, err
		}
		b.data = nv
		b.field.AddChild(nv.Field())
		b.fireCallback(nv.Field())
		return nv, true, nil
	}
	if b.data.Field().Type.Minor != t.Minor {
		return b.data, false, fmt.Errorf("vector: data vector is %s, requested %s",
			b.data.Field().Type, t)
	}
	return b.data, false, nil
}

// replaceData swaps in a new data vector, leaving offsets untouched.
func (b *repeatedBase) replaceData(nv ValueVector) {
	b.data = nv
	b.field.AddChild(nv.Field())
	b.fireCallback(nv.Field())
}

func (b *repeatedBase) fireCallback(f *types.Field) {
	if b.callback != nil {
		b.callback(f)
	}
}
