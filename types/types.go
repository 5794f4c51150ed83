// Package types defines the schema vocabulary shared by all vectors:
// minor types, data modes, field descriptors, and the serialized-field
// metadata that accompanies persisted buffers.
package types

import "fmt"

// MinorType identifies the concrete value representation of a vector.
type MinorType uint8

const (
	// MinorTypeLate is the "not yet decided" placeholder used before a
	// list's element type has been established.
	MinorTypeLate MinorType = iota
	MinorTypeUint8
	MinorTypeUint32
	MinorTypeInt64
	MinorTypeFloat64
	MinorTypeVarChar
	MinorTypeList
	MinorTypeUnion
)

func (t MinorType) String() string {
	switch t {
	case MinorTypeLate:
		return "late"
	case MinorTypeUint8:
		return "uint8"
	case MinorTypeUint32:
		return "uint32"
	case MinorTypeInt64:
		return "int64"
	case MinorTypeFloat64:
		return "float64"
	case MinorTypeVarChar:
		return "varchar"
	case MinorTypeList:
		return "list"
	case MinorTypeUnion:
		return "union"
	default:
		return fmt.Sprintf("minortype(%d)", uint8(t))
	}
}

// DataMode describes the nullability of a vector.
type DataMode uint8

const (
	DataModeRequired DataMode = iota
	DataModeOptional
	DataModeRepeated
)

func (m DataMode) String() string {
	switch m {
	case DataModeRequired:
		return "required"
	case DataModeOptional:
		return "optional"
	case DataModeRepeated:
		return "repeated"
	default:
		return fmt.Sprintf("datamode(%d)", uint8(m))
	}
}

// MajorType pairs a minor type with a data mode.
type MajorType struct {
	Minor MinorType
	Mode  DataMode
}

// Required returns a MajorType with DataModeRequired.
func Required(t MinorType) MajorType {
	return MajorType{Minor: t, Mode: DataModeRequired}
}

// Optional returns a MajorType with DataModeOptional.
func Optional(t MinorType) MajorType {
	return MajorType{Minor: t, Mode: DataModeOptional}
}

func (t MajorType) String() string {
	return fmt.Sprintf("%s:%s", t.Mode, t.Minor)
}
