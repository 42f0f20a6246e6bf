// Package ingest turns schema sources into the schema model.
//
// A Compiler produces serialized descriptor-set bytes for a source (by
// running protoc, parsing in process, or asking a live server); Parse turns
// those bytes into a validated schema.File.
package ingest

import (
	"context"
	"errors"

	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/descriptorpb"

	"github.com/wham/wiregen/internal/schema"
)

// Compiler produces a serialized FileDescriptorSet for source.
type Compiler interface {
	Compile(ctx context.Context, source string) ([]byte, error)
}

// Parse decodes a serialized FileDescriptorSet and converts its first file.
// Later files (imports) are ignored.
func Parse(source string, data []byte) (*schema.File, error) {
	set := &descriptorpb.FileDescriptorSet{}
	if err := proto.Unmarshal(data, set); err != nil {
		return nil, &Error{Source: source, Err: err}
	}
	if len(set.GetFile()) == 0 {
		return nil, &Error{Source: source, Err: errors.New("descriptor set contains no files")}
	}
	f, err := FromFileDescriptor(set.GetFile()[0])
	if err != nil {
		return nil, &Error{Source: source, Err: err}
	}
	return f, nil
}

// FromFileDescriptor converts fd and validates the result.
func FromFileDescriptor(fd *descriptorpb.FileDescriptorProto) (*schema.File, error) {
	f := &schema.File{
		Name:      fd.GetName(),
		Package:   fd.GetPackage(),
		Syntax:    fd.GetSyntax(),
		GoPackage: fd.GetOptions().GetGoPackage(),
	}

	prefix := ""
	if f.Package != "" {
		prefix = f.Package + "."
	}
	for _, e := range fd.GetEnumType() {
		f.Enums = append(f.Enums, convertEnum(e, "", prefix))
	}
	for _, m := range fd.GetMessageType() {
		addMessage(f, m, "", prefix)
	}

	if err := schema.Validate(f); err != nil {
		return nil, err
	}
	return f, nil
}

// addMessage appends m and then its nested types, depth first.
func addMessage(f *schema.File, m *descriptorpb.DescriptorProto, parent, protoParent string) {
	name := parent + m.GetName()
	full := protoParent + m.GetName()

	msg := schema.Message{
		Name:     name,
		FullName: full,
		Fields:   make([]schema.Field, 0, len(m.GetField())),
	}
	for _, fd := range m.GetField() {
		msg.Fields = append(msg.Fields, schema.Field{
			Name:     fd.GetName(),
			Number:   fd.GetNumber(),
			Label:    convertLabel(fd.GetLabel()),
			Type:     schema.Type(fd.GetType()),
			TypeName: fd.GetTypeName(),
		})
	}
	f.Messages = append(f.Messages, msg)

	for _, e := range m.GetEnumType() {
		f.Enums = append(f.Enums, convertEnum(e, name+"_", full+"."))
	}
	for _, nested := range m.GetNestedType() {
		addMessage(f, nested, name+"_", full+".")
	}
}

func convertEnum(e *descriptorpb.EnumDescriptorProto, parent, protoParent string) schema.Enum {
	out := schema.Enum{
		Name:     parent + e.GetName(),
		FullName: protoParent + e.GetName(),
		Values:   make([]schema.EnumValue, 0, len(e.GetValue())),
	}
	for _, v := range e.GetValue() {
		out.Values = append(out.Values, schema.EnumValue{Name: v.GetName(), Number: v.GetNumber()})
	}
	return out
}

func convertLabel(l descriptorpb.FieldDescriptorProto_Label) schema.Label {
	switch l {
	case descriptorpb.FieldDescriptorProto_LABEL_REQUIRED:
		return schema.LabelRequired
	case descriptorpb.FieldDescriptorProto_LABEL_REPEATED:
		return schema.LabelRepeated
	default:
		return schema.LabelOptional
	}
}
