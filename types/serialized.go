package types

import (
	"encoding/binary"
	"errors"
)

// SerializedField describes one persisted vector: its type, logical value
// count, the byte length of its buffers, and the descriptors of its
// children in the exact order their buffers were concatenated.
//
// Child order is part of the wire contract. For a list vector the children
// are always offsets, validity, data, in that order.
type SerializedField struct {
	Name         string
	Type         MajorType
	ValueCount   int
	BufferLength int
	Children     []*SerializedField
}

// Child returns the i-th child descriptor. Index validity is a caller
// precondition.
func (sf *SerializedField) Child(i int) *SerializedField {
	return sf.Children[i]
}

// AddChild appends a child descriptor and returns sf for chaining.
func (sf *SerializedField) AddChild(child *SerializedField) *SerializedField {
	sf.Children = append(sf.Children, child)
	return sf
}

// MarshalBinary implements encoding.BinaryMarshaler.
// It uses a compact uvarint-based format.
func (sf *SerializedField) MarshalBinary() ([]byte, error) {
	// Rough guess to avoid some allocations.
	buf := make([]byte, 0, 16+len(sf.Name)+len(sf.Children)*24)
	return sf.appendTo(buf)
}

func (sf *SerializedField) appendTo(buf []byte) ([]byte, error) {
	buf = binary.AppendUvarint(buf, uint64(len(sf.Name)))
	buf = append(buf, sf.Name...)
	buf = append(buf, byte(sf.Type.Minor), byte(sf.Type.Mode))
	buf = binary.AppendUvarint(buf, uint64(sf.ValueCount))
	buf = binary.AppendUvarint(buf, uint64(sf.BufferLength))
	buf = binary.AppendUvarint(buf, uint64(len(sf.Children)))
	for _, c := range sf.Children {
		var err error
		buf, err = c.appendTo(buf)
		if err != nil {
			return nil, err
		}
	}
	return buf, nil
}

// UnmarshalBinary implements encoding.BinaryUnmarshaler.
func (sf *SerializedField) UnmarshalBinary(data []byte) error {
	rest, err := sf.parseFrom(data)
	if err != nil {
		return err
	}
	if len(rest) != 0 {
		return errors.New("serialized field: trailing bytes")
	}
	return nil
}

func (sf *SerializedField) parseFrom(data []byte) ([]byte, error) {
	nameLen, n := binary.Uvarint(data)
	if n <= 0 {
		return nil, errors.New("serialized field: invalid name length")
	}
	data = data[n:]
	if uint64(len(data)) < nameLen {
		return nil, errors.New("serialized field: short buffer for name")
	}
	sf.Name = string(data[:nameLen])
	data = data[nameLen:]

	if len(data) < 2 {
		return nil, errors.New("serialized field: short buffer for type")
	}
	sf.Type = MajorType{Minor: MinorType(data[0]), Mode: DataMode(data[1])}
	data = data[2:]

	valueCount, n := binary.Uvarint(data)
	if n <= 0 {
		return nil, errors.New("serialized field: invalid value count")
	}
	data = data[n:]
	sf.ValueCount = int(valueCount)

	bufferLength, n := binary.Uvarint(data)
	if n <= 0 {
		return nil, errors.New("serialized field: invalid buffer length")
	}
	data = data[n:]
	sf.BufferLength = int(bufferLength)

	childCount, n := binary.Uvarint(data)
	if n <= 0 {
		return nil, errors.New("serialized field: invalid child count")
	}
	data = data[n:]

	// Leaf fields keep a nil slice so a decoded field is deep-equal to
	// the one that was encoded.
	if childCount == 0 {
		sf.Children = nil
		return data, nil
	}

	sf.Children = make([]*SerializedField, childCount)
	for i := range sf.Children {
		child := &SerializedField{}
		var err error
		data, err = child.parseFrom(data)
		if err != nil {
			return nil, err
		}
		sf.Children[i] = child
	}
	return data, nil
}
