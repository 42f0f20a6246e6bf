package schema

import (
	"errors"
	"strings"
	"testing"
)

func sampleFile() *File {
	return &File{
		Name:    "shop.proto",
		Package: "shop",
		Syntax:  "proto2",
		Messages: []Message{
			{
				Name:     "Order",
				FullName: "shop.Order",
				Fields: []Field{
					{Name: "id", Number: 1, Label: LabelRequired, Type: TypeInt64},
					{Name: "lines", Number: 2, Label: LabelRepeated, Type: TypeMessage, TypeName: ".shop.Order.Line"},
					{Name: "state", Number: 3, Label: LabelOptional, Type: TypeEnum, TypeName: ".shop.State"},
				},
			},
			{
				Name:     "Order_Line",
				FullName: "shop.Order.Line",
				Fields: []Field{
					{Name: "sku", Number: 1, Type: TypeString},
				},
			},
		},
		Enums: []Enum{
			{Name: "State", FullName: "shop.State", Values: []EnumValue{{"OPEN", 0}, {"CLOSED", 1}}},
		},
	}
}

func TestLookup(t *testing.T) {
	f := sampleFile()

	msg, _, ok := f.Lookup(".shop.Order.Line")
	if !ok || msg == nil || msg.Name != "Order_Line" {
		t.Fatalf("lookup nested message: %v %v", msg, ok)
	}
	_, enum, ok := f.Lookup(".shop.State")
	if !ok || enum == nil || enum.Name != "State" {
		t.Fatalf("lookup enum: %v %v", enum, ok)
	}
	if _, _, ok := f.Lookup(".other.Thing"); ok {
		t.Fatalf("lookup across units should fail")
	}
	if got := f.LocalName("shop.Order.Line"); got != "Order.Line" {
		t.Fatalf("LocalName = %q", got)
	}
}

func TestValidateAccepts(t *testing.T) {
	if err := Validate(sampleFile()); err != nil {
		t.Fatalf("validate: %v", err)
	}
}

func TestValidateRejects(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(f *File)
		want   error
	}{
		{"duplicate number", func(f *File) {
			f.Messages[0].Fields[1].Number = 1
		}, ErrDuplicateFieldNumber},
		{"duplicate field name", func(f *File) {
			f.Messages[0].Fields[2].Name = "id"
		}, ErrDuplicateFieldName},
		{"zero number", func(f *File) {
			f.Messages[1].Fields[0].Number = 0
		}, ErrFieldNumberRange},
		{"reserved number", func(f *File) {
			f.Messages[1].Fields[0].Number = 19500
		}, ErrFieldNumberRange},
		{"too large number", func(f *File) {
			f.Messages[1].Fields[0].Number = MaxFieldNumber + 1
		}, ErrFieldNumberRange},
		{"duplicate type", func(f *File) {
			f.Enums[0].Name = "Order"
		}, ErrDuplicateTypeName},
		{"empty field name", func(f *File) {
			f.Messages[0].Fields[0].Name = ""
		}, ErrEmptyName},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			f := sampleFile()
			c.mutate(f)
			err := Validate(f)
			if !errors.Is(err, c.want) {
				t.Fatalf("expected %v, got %v", c.want, err)
			}
			var ie *IntegrityError
			if !errors.As(err, &ie) {
				t.Fatalf("expected *IntegrityError, got %T", err)
			}
		})
	}
}

func TestIntegrityErrorNamesMessageAndField(t *testing.T) {
	f := sampleFile()
	f.Messages[0].Fields[1].Number = 1
	err := Validate(f)
	if err == nil {
		t.Fatal("expected error")
	}
	msg := err.Error()
	if !strings.Contains(msg, "Order") || !strings.Contains(msg, "lines") {
		t.Fatalf("error %q lacks message or field name", msg)
	}
}

func TestFormat(t *testing.T) {
	content := Format(sampleFile())

	for _, want := range []string{
		`syntax = "proto2";`,
		"package shop;",
		"enum State {",
		"OPEN = 0;",
		"message Order {",
		"required int64 id = 1;",
		"repeated Order_Line lines = 2;",
		"optional State state = 3;",
		"message Order_Line { // Order.Line",
		"optional string sku = 1;",
	} {
		if !strings.Contains(content, want) {
			t.Errorf("expected %q in:\n%s", want, content)
		}
	}
}
