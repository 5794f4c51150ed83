package vector

import "github.com/hupe1980/batchvec/types"

// ListReader is a positioned read-only view over a ListVector, used by
// the recursive value copier and by callers that operate generically over
// vectors.
type ListReader struct {
	v       *ListVector
	version uint64
	pos     int
}

// SetPosition positions the reader on a row.
func (r *ListReader) SetPosition(index int) { r.pos = index }

// Position returns the current row index.
func (r *ListReader) Position() int { return r.pos }

// IsNull reports whether the current row reads as null.
func (r *ListReader) IsNull() bool { return r.v.Accessor().IsNull(r.pos) }

// Object materializes the current row: a []any of element values, or nil.
func (r *ListReader) Object() any { return r.v.GetObject(r.pos) }

// ListWriter is a positioned write-only view over a ListVector. Rows must
// be written in ascending position order; elements are appended to the
// data vector, establishing or evolving its type as values arrive.
type ListWriter struct {
	v   *ListVector
	pos int
	idx int // next data vector index for the open row
}

// SetPosition positions the writer on a row.
func (w *ListWriter) SetPosition(index int) { w.pos = index }

// StartList opens the current row: skipped rows are backfilled with
// zero-length spans and the row is marked not-null.
func (w *ListWriter) StartList() {
	w.v.Mutator().StartNewValue(w.pos)
	w.idx = int(w.v.offsets.Get(w.pos))
}

// EndList closes the current row, recording its element count in the
// offset vector.
func (w *ListWriter) EndList() {
	w.v.offsets.SetSafe(w.pos+1, uint32(w.idx))
}

// WriteValue writes a whole row value: nil leaves the row null, a []any
// writes its elements in order. Elements may be int64, float64, string,
// []byte, nil, or nested []any values; nested lists and heterogeneous
// element types are handled by evolving the data vector, promoting it to
// a union when needed.
func (w *ListWriter) WriteValue(val any) {
	if val == nil {
		return
	}
	items, ok := val.([]any)
	if !ok {
		return
	}
	w.StartList()
	for _, item := range items {
		w.writeElement(item)
	}
	w.EndList()
}

func (w *ListWriter) writeElement(val any) {
	switch x := val.(type) {
	case nil:
		// Only a union member can represent a null element.
		w.ensureUnion().SetValueSafe(w.idx, nil)
	case int64:
		switch cv := w.ensureChild(types.MinorTypeInt64).(type) {
		case *Int64Vector:
			cv.SetSafe(w.idx, x)
		case *UnionVector:
			cv.SetInt64Safe(w.idx, x)
		}
	case float64:
		switch cv := w.ensureChild(types.MinorTypeFloat64).(type) {
		case *Float64Vector:
			cv.SetSafe(w.idx, x)
		case *UnionVector:
			cv.SetFloat64Safe(w.idx, x)
		}
	case string:
		w.writeBytes([]byte(x))
	case []byte:
		w.writeBytes(x)
	case []any:
		switch cv := w.ensureChild(types.MinorTypeList).(type) {
		case *ListVector:
			lw := cv.Writer()
			lw.SetPosition(w.idx)
			lw.WriteValue(x)
		case *UnionVector:
			cv.SetValueSafe(w.idx, x)
		}
	}
	w.idx++
}

func (w *ListWriter) writeBytes(b []byte) {
	switch cv := w.ensureChild(types.MinorTypeVarChar).(type) {
	case *VarCharVector:
		cv.SetSafe(w.idx, b)
	case *UnionVector:
		cv.SetVarCharSafe(w.idx, b)
	}
}

// ensureChild returns a data vector able to hold values of type t: the
// existing one when compatible, a freshly created one when only the
// placeholder exists, or the union obtained by promotion on a type
// conflict.
func (w *ListWriter) ensureChild(t types.MinorType) ValueVector {
	data := w.v.DataVector()
	if u, ok := data.(*UnionVector); ok {
		return u
	}
	if !w.v.hasData() {
		nv, _, _ := w.v.AddOrGetVector(types.Optional(t))
		nv.AllocateNewSafe()
		return nv
	}
	if data.Field().Type.Minor == t {
		return data
	}
	return w.promote()
}

func (w *ListWriter) ensureUnion() *UnionVector {
	if u, ok := w.v.DataVector().(*UnionVector); ok {
		return u
	}
	if !w.v.hasData() {
		u := w.v.PromoteToUnion()
		u.AllocateNewSafe()
		return u
	}
	return w.promote()
}

// promote replaces the established data vector with a union and migrates
// the elements appended so far into it, preserving their values and
// positions. Offsets and validity are untouched.
func (w *ListWriter) promote() *UnionVector {
	old := w.v.DataVector()
	u := w.v.PromoteToUnion()
	u.AllocateNewSafe()
	for i := 0; i < w.idx; i++ {
		u.SetValueSafe(i, old.GetObject(i))
	}
	old.Clear()
	return u
}

// CopyValue deep-copies the row under the reader's position into the row
// under the writer's position, recursing through nested lists and unions
// and growing destination buffers as needed. The source is not mutated.
func CopyValue(r *ListReader, w *ListWriter) {
	w.WriteValue(r.Object())
}
