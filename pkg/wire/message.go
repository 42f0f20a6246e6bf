package wire

import "fmt"

// FieldInfo is one row of a generated message's field table.
type FieldInfo struct {
	Label  Label
	Kind   Kind
	Name   string
	Number int32
}

// Message is implemented by generated types.
//
// FieldLen reports how many values field i holds: 0 or 1 for singular
// fields depending on presence, the container length for repeated ones.
// FieldValue returns value j of field i.
type Message interface {
	WireFields() []FieldInfo
	FieldLen(i int) int
	FieldValue(i, j int) any
}

// Marshal serializes m. Fields are emitted in table order; absent singular
// fields and empty repeated fields produce no bytes at all.
func Marshal(m Message) ([]byte, error) {
	return AppendMessage(nil, m)
}

// AppendMessage appends the serialization of m to b without a length prefix.
func AppendMessage(b []byte, m Message) ([]byte, error) {
	for i, f := range m.WireFields() {
		t := f.Kind.WireType()
		for j, n := 0, m.FieldLen(i); j < n; j++ {
			b = AppendTag(b, f.Number, t)
			var err error
			b, err = f.Kind.Append(b, m.FieldValue(i, j))
			if err != nil {
				return nil, fmt.Errorf("wire: field %s (%d): %w", f.Name, f.Number, err)
			}
		}
	}
	return b, nil
}

func appendNested(b []byte, m Message) ([]byte, error) {
	inner, err := AppendMessage(nil, m)
	if err != nil {
		return nil, err
	}
	return AppendBytes(b, inner), nil
}
