package types

// Field describes one column (or sub-column) of a schema: a name, a major
// type, and the fields of any nested children.
type Field struct {
	Name     string
	Type     MajorType
	children []*Field
}

// NewField creates a new field descriptor.
func NewField(name string, t MajorType) *Field {
	return &Field{Name: name, Type: t}
}

// AddChild appends a child field. A child with the same name replaces the
// previous one, which is how a list records its (possibly re-typed)
// element field.
func (f *Field) AddChild(child *Field) {
	for i, c := range f.children {
		if c.Name == child.Name {
			f.children[i] = child
			return
		}
	}
	f.children = append(f.children, child)
}

// Children returns the child fields. The returned slice is owned by f.
func (f *Field) Children() []*Field {
	return f.children
}

// WithName returns a copy of f (children shared) under a new name.
func (f *Field) WithName(name string) *Field {
	clone := *f
	clone.Name = name
	return &clone
}

// WithType returns a copy of f (no children) with a new type.
func (f *Field) WithType(t MajorType) *Field {
	return &Field{Name: f.Name, Type: t}
}
