package schema

import (
	"fmt"
	"strings"
)

// Format renders f back as .proto text. Nested types appear flattened under
// their generated names, so the output describes the model rather than
// reproducing the original source.
func Format(f *File) string {
	var b strings.Builder

	syntax := f.Syntax
	if syntax == "" {
		syntax = "proto2"
	}
	fmt.Fprintf(&b, "syntax = %q;\n\n", syntax)

	if f.Package != "" {
		fmt.Fprintf(&b, "package %s;\n\n", f.Package)
	}
	if f.GoPackage != "" {
		fmt.Fprintf(&b, "option go_package = %q;\n\n", f.GoPackage)
	}

	for _, e := range f.Enums {
		writeEnum(&b, f, e)
	}
	for _, m := range f.Messages {
		writeMessage(&b, f, syntax, m)
	}
	return b.String()
}

func writeEnum(b *strings.Builder, f *File, e Enum) {
	fmt.Fprintf(b, "enum %s {%s\n", e.Name, origin(f, e.Name, e.FullName))
	for _, v := range e.Values {
		fmt.Fprintf(b, "  %s = %d;\n", v.Name, v.Number)
	}
	b.WriteString("}\n\n")
}

func writeMessage(b *strings.Builder, f *File, syntax string, m Message) {
	fmt.Fprintf(b, "message %s {%s\n", m.Name, origin(f, m.Name, m.FullName))
	for _, fd := range m.Fields {
		label := ""
		switch {
		case fd.Label == LabelRepeated:
			label = "repeated "
		case fd.Label == LabelRequired:
			label = "required "
		case syntax == "proto2":
			label = "optional "
		}
		fmt.Fprintf(b, "  %s%s %s = %d;\n", label, typeName(f, fd), fd.Name, fd.Number)
	}
	b.WriteString("}\n\n")
}

func typeName(f *File, fd Field) string {
	switch fd.Type {
	case TypeMessage, TypeEnum:
		msg, enum, ok := f.Lookup(fd.TypeName)
		switch {
		case msg != nil:
			return msg.Name
		case ok:
			return enum.Name
		}
		return strings.TrimPrefix(fd.TypeName, ".")
	default:
		return fd.Type.String()
	}
}

func origin(f *File, name, full string) string {
	if local := f.LocalName(full); local != name {
		return " // " + local
	}
	return ""
}
