// Package mapper resolves every schema field to the wire encoding that will
// serialize it.
package mapper

import (
	"fmt"
	"strings"

	"github.com/wham/wiregen/internal/schema"
	"github.com/wham/wiregen/pkg/wire"
)

// ByteOrder selects the layout used for float fields.
type ByteOrder int

const (
	LittleEndian ByteOrder = iota
	BigEndian
)

func (o ByteOrder) String() string {
	if o == BigEndian {
		return "big-endian"
	}
	return "little-endian"
}

// ParseByteOrder accepts "little-endian" (or "little", "le") and
// "big-endian" (or "big", "be"). The empty string means little-endian.
func ParseByteOrder(s string) (ByteOrder, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "little-endian", "little", "le":
		return LittleEndian, nil
	case "big-endian", "big", "be":
		return BigEndian, nil
	default:
		return LittleEndian, fmt.Errorf("unknown float byte order %q", s)
	}
}

type Options struct {
	FloatByteOrder ByteOrder
}

// Field is a schema field with its resolved encoding.
type Field struct {
	schema.Field
	Kind wire.Kind
	// Ref is the flattened local name of the referenced message or enum.
	Ref string
}

type Message struct {
	Name     string
	FullName string
	Fields   []Field
}

// File is a fully resolved schema unit, ready for emission.
type File struct {
	Source   *schema.File
	Messages []Message
	Enums    []schema.Enum
}

// scalarKinds is the fixed table of declared types. Entries mapped to zero
// are known types without an encoder.
var scalarKinds = map[schema.Type]wire.Kind{
	schema.TypeBool:     wire.Bool,
	schema.TypeInt32:    wire.Int32,
	schema.TypeInt64:    wire.Int64,
	schema.TypeUint32:   wire.Uint32,
	schema.TypeUint64:   wire.Uint64,
	schema.TypeSint32:   wire.Sint32,
	schema.TypeSint64:   wire.Sint64,
	schema.TypeString:   wire.String,
	schema.TypeBytes:    wire.Bytes,
	schema.TypeEnum:     wire.Enum,
	schema.TypeFloat:    wire.Float,
	schema.TypeGroup:    0,
	schema.TypeFixed32:  0,
	schema.TypeFixed64:  0,
	schema.TypeSfixed32: 0,
	schema.TypeSfixed64: 0,
	schema.TypeDouble:   0,
}

// Resolve maps every field of every message in f. The first field that
// cannot be mapped aborts resolution of the whole unit.
func Resolve(f *schema.File, opts Options) (*File, error) {
	out := &File{
		Source:   f,
		Messages: make([]Message, 0, len(f.Messages)),
		Enums:    f.Enums,
	}
	for _, m := range f.Messages {
		rm := Message{
			Name:     m.Name,
			FullName: m.FullName,
			Fields:   make([]Field, 0, len(m.Fields)),
		}
		for _, fd := range m.Fields {
			rf, err := resolveField(f, m, fd, opts)
			if err != nil {
				return nil, err
			}
			rm.Fields = append(rm.Fields, rf)
		}
		out.Messages = append(out.Messages, rm)
	}
	return out, nil
}

func resolveField(f *schema.File, m schema.Message, fd schema.Field, opts Options) (Field, error) {
	unsupported := func(reason string) error {
		return &UnsupportedFieldTypeError{Message: m.Name, Field: fd.Name, Type: fd.Type, TypeName: fd.TypeName, Reason: reason}
	}

	if fd.Type == schema.TypeMessage {
		msg, _, ok := f.Lookup(fd.TypeName)
		if !ok || msg == nil {
			return Field{}, unsupported("message type is not declared in this file")
		}
		return Field{Field: fd, Kind: wire.MessageKind, Ref: msg.Name}, nil
	}

	kind, known := scalarKinds[fd.Type]
	if !known {
		return Field{}, unsupported("unknown field type")
	}
	if kind == 0 {
		return Field{}, unsupported("no wire encoding for this type")
	}

	rf := Field{Field: fd, Kind: kind}
	switch fd.Type {
	case schema.TypeEnum:
		_, enum, ok := f.Lookup(fd.TypeName)
		if !ok || enum == nil {
			return Field{}, unsupported("enum type is not declared in this file")
		}
		rf.Ref = enum.Name
	case schema.TypeFloat:
		if opts.FloatByteOrder == BigEndian {
			rf.Kind = wire.FloatBigEndian
		}
	}
	return rf, nil
}
