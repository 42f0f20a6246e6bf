// Package schema holds the in-memory model of one compiled schema unit.
//
// Values are built once by the ingestor and treated as immutable afterwards.
// Declaration order is preserved everywhere: it decides both the generated
// field order and the wire serialization order.
package schema

import "strings"

// Label is the cardinality of a field.
type Label int

const (
	LabelOptional Label = iota
	LabelRequired
	LabelRepeated
)

func (l Label) String() string {
	switch l {
	case LabelRequired:
		return "required"
	case LabelRepeated:
		return "repeated"
	default:
		return "optional"
	}
}

// Type is a field's declared kind. Values match the descriptor numbering.
type Type int

const (
	TypeDouble   Type = 1
	TypeFloat    Type = 2
	TypeInt64    Type = 3
	TypeUint64   Type = 4
	TypeInt32    Type = 5
	TypeFixed64  Type = 6
	TypeFixed32  Type = 7
	TypeBool     Type = 8
	TypeString   Type = 9
	TypeGroup    Type = 10
	TypeMessage  Type = 11
	TypeBytes    Type = 12
	TypeUint32   Type = 13
	TypeEnum     Type = 14
	TypeSfixed32 Type = 15
	TypeSfixed64 Type = 16
	TypeSint32   Type = 17
	TypeSint64   Type = 18
)

var typeNames = map[Type]string{
	TypeDouble:   "double",
	TypeFloat:    "float",
	TypeInt64:    "int64",
	TypeUint64:   "uint64",
	TypeInt32:    "int32",
	TypeFixed64:  "fixed64",
	TypeFixed32:  "fixed32",
	TypeBool:     "bool",
	TypeString:   "string",
	TypeGroup:    "group",
	TypeMessage:  "message",
	TypeBytes:    "bytes",
	TypeUint32:   "uint32",
	TypeEnum:     "enum",
	TypeSfixed32: "sfixed32",
	TypeSfixed64: "sfixed64",
	TypeSint32:   "sint32",
	TypeSint64:   "sint64",
}

func (t Type) String() string {
	if name, ok := typeNames[t]; ok {
		return name
	}
	return "unknown"
}

// Field describes one message field.
type Field struct {
	Name   string
	Number int32
	Label  Label
	Type   Type
	// TypeName is the fully qualified reference (".pkg.Name") for message
	// and enum fields, empty otherwise.
	TypeName string
}

// Message is a message type. Nested messages are flattened: Name joins the
// enclosing names with "_" while FullName keeps the dotted proto name.
type Message struct {
	Name     string
	FullName string
	Fields   []Field
}

type EnumValue struct {
	Name   string
	Number int32
}

type Enum struct {
	Name     string
	FullName string
	Values   []EnumValue
}

// File is one schema unit.
type File struct {
	Name      string
	Package   string
	Syntax    string
	GoPackage string
	Messages  []Message
	Enums     []Enum
}

// Message returns the message with the given flattened name.
func (f *File) Message(name string) (*Message, bool) {
	for i := range f.Messages {
		if f.Messages[i].Name == name {
			return &f.Messages[i], true
		}
	}
	return nil, false
}

// Lookup resolves a fully qualified type reference against the unit. The
// leading "." and the package qualifier are stripped; what remains must name
// a message or enum declared in this file.
func (f *File) Lookup(ref string) (msg *Message, enum *Enum, ok bool) {
	full := f.qualify(ref)
	for i := range f.Messages {
		if f.Messages[i].FullName == full {
			return &f.Messages[i], nil, true
		}
	}
	for i := range f.Enums {
		if f.Enums[i].FullName == full {
			return nil, &f.Enums[i], true
		}
	}
	return nil, nil, false
}

func (f *File) qualify(ref string) string {
	if strings.HasPrefix(ref, ".") {
		return ref[1:]
	}
	if f.Package != "" {
		return f.Package + "." + ref
	}
	return ref
}

// LocalName strips the package qualifier from a full name.
func (f *File) LocalName(full string) string {
	if f.Package == "" {
		return full
	}
	return strings.TrimPrefix(full, f.Package+".")
}
