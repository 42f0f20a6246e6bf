package emit

import (
	"fmt"

	"github.com/wham/wiregen/internal/mapper"
	"github.com/wham/wiregen/internal/schema"
	"github.com/wham/wiregen/pkg/wire"
)

// methodNames are the methods every generated message carries. Fields may
// not take these names.
var methodNames = []string{"WireFields", "FieldLen", "FieldValue", "Marshal", "Reset"}

var kindIdents = map[wire.Kind]string{
	wire.Int32:          "wire.Int32",
	wire.Int64:          "wire.Int64",
	wire.Uint32:         "wire.Uint32",
	wire.Uint64:         "wire.Uint64",
	wire.Sint32:         "wire.Sint32",
	wire.Sint64:         "wire.Sint64",
	wire.Bool:           "wire.Bool",
	wire.String:         "wire.String",
	wire.Bytes:          "wire.Bytes",
	wire.Enum:           "wire.Enum",
	wire.Float:          "wire.Float",
	wire.FloatBigEndian: "wire.FloatBigEndian",
	wire.MessageKind:    "wire.MessageKind",
}

var labelIdents = map[schema.Label]string{
	schema.LabelRequired: "wire.Required",
	schema.LabelOptional: "wire.Optional",
	schema.LabelRepeated: "wire.Repeated",
}

var scalarGoTypes = map[wire.Kind]string{
	wire.Int32:          "int32",
	wire.Int64:          "int64",
	wire.Uint32:         "uint32",
	wire.Uint64:         "uint64",
	wire.Sint32:         "int32",
	wire.Sint64:         "int64",
	wire.Bool:           "bool",
	wire.String:         "string",
	wire.Bytes:          "[]byte",
	wire.Float:          "float32",
	wire.FloatBigEndian: "float32",
}

type messageGen struct {
	*generator
	msg    mapper.Message
	name   string
	table  string
	option string
	fields []fieldGen
}

type fieldGen struct {
	mapper.Field
	goName string
	elem   string // Go type of one value: int32, *Inner, []byte, State
	option string
}

func (f fieldGen) repeated() bool { return f.Label == schema.LabelRepeated }

func (f fieldGen) goType() string {
	switch {
	case f.repeated():
		return "[]" + f.elem
	case f.Kind == wire.Bytes, f.Kind == wire.MessageKind:
		return f.elem
	default:
		return "*" + f.elem
	}
}

func (g *generator) newMessage(m mapper.Message) (*messageGen, error) {
	name := g.typeNames[m.Name]
	mg := &messageGen{
		generator: g,
		msg:       m,
		name:      name,
		table:     g.global(unexported(name) + "Fields"),
		option:    g.global(name + "Option"),
	}

	taken := map[string]bool{}
	for _, n := range methodNames {
		taken[n] = true
	}
	for _, f := range m.Fields {
		goName := camelCase(f.Name)
		for taken[goName] {
			goName += "_"
		}
		taken[goName] = true

		elem, err := g.elemType(m, f)
		if err != nil {
			return nil, err
		}
		mg.fields = append(mg.fields, fieldGen{
			Field:  f,
			goName: goName,
			elem:   elem,
			option: g.global("With" + name + goName),
		})
	}
	return mg, nil
}

func (g *generator) elemType(m mapper.Message, f mapper.Field) (string, error) {
	switch f.Kind {
	case wire.MessageKind, wire.Enum:
		ref, ok := g.typeNames[f.Ref]
		if !ok {
			return "", fmt.Errorf("emit %s: message %s field %s: unknown type %q", g.source, m.Name, f.Name, f.Ref)
		}
		if f.Kind == wire.MessageKind {
			return "*" + ref, nil
		}
		return ref, nil
	}
	t, ok := scalarGoTypes[f.Kind]
	if !ok {
		return "", fmt.Errorf("emit %s: message %s field %s: no Go type for %s", g.source, m.Name, f.Name, f.Kind)
	}
	return t, nil
}

func (mg *messageGen) generate() {
	mg.generateTable()
	mg.generateStruct()
	mg.generateConstructor()
	mg.generateAccessors()
}

func (mg *messageGen) generateTable() {
	mg.p("")
	mg.p("var %s = []wire.FieldInfo{", mg.table)
	mg.in()
	for _, f := range mg.fields {
		mg.p("{Label: %s, Kind: %s, Name: %q, Number: %d},", labelIdents[f.Label], kindIdents[f.Kind], f.Name, f.Number)
	}
	mg.out()
	mg.p("}")
}

func (mg *messageGen) generateStruct() {
	mg.p("")
	mg.p("// %s is generated from message %s.", mg.name, mg.msg.FullName)
	mg.p("type %s struct {", mg.name)
	mg.in()
	for _, f := range mg.fields {
		mg.p("%s %s", f.goName, f.goType())
	}
	mg.out()
	mg.p("}")
}

func (mg *messageGen) generateConstructor() {
	constructor := mg.global("New" + mg.name)
	mg.p("")
	mg.p("// %s sets one field in %s.", mg.option, constructor)
	mg.p("type %s func(*%s)", mg.option, mg.name)

	for _, f := range mg.fields {
		mg.p("")
		switch {
		case f.repeated():
			mg.p("func %s(v ...%s) %s {", f.option, f.elem, mg.option)
			mg.in()
			mg.p("return func(m *%s) { m.%s = append(m.%s, v...) }", mg.name, f.goName, f.goName)
		case f.Kind == wire.Bytes, f.Kind == wire.MessageKind:
			mg.p("func %s(v %s) %s {", f.option, f.elem, mg.option)
			mg.in()
			mg.p("return func(m *%s) { m.%s = v }", mg.name, f.goName)
		default:
			mg.p("func %s(v %s) %s {", f.option, f.elem, mg.option)
			mg.in()
			mg.p("return func(m *%s) { m.%s = &v }", mg.name, f.goName)
		}
		mg.out()
		mg.p("}")
	}

	mg.p("")
	mg.p("// %s returns a new %s with every repeated field set to an empty slice.", constructor, mg.name)
	mg.p("func %s(opts ...%s) *%s {", constructor, mg.option, mg.name)
	mg.in()
	var repeated []fieldGen
	for _, f := range mg.fields {
		if f.repeated() {
			repeated = append(repeated, f)
		}
	}
	if len(repeated) == 0 {
		mg.p("m := &%s{}", mg.name)
	} else {
		mg.p("m := &%s{", mg.name)
		mg.in()
		for _, f := range repeated {
			mg.p("%s: %s{},", f.goName, f.goType())
		}
		mg.out()
		mg.p("}")
	}
	mg.p("for _, opt := range opts {")
	mg.in()
	mg.p("opt(m)")
	mg.out()
	mg.p("}")
	mg.p("return m")
	mg.out()
	mg.p("}")

	mg.p("")
	mg.p("// Reset clears every field: scalars become absent and repeated fields")
	mg.p("// become new empty slices.")
	mg.p("func (m *%s) Reset() {", mg.name)
	mg.in()
	mg.p("if m == nil {")
	mg.in()
	mg.p("return")
	mg.out()
	mg.p("}")
	mg.p("*m = *%s()", constructor)
	mg.out()
	mg.p("}")
}

func (mg *messageGen) generateAccessors() {
	mg.p("")
	mg.p("func (m *%s) WireFields() []wire.FieldInfo { return %s }", mg.name, mg.table)

	mg.p("")
	mg.p("func (m *%s) FieldLen(i int) int {", mg.name)
	mg.in()
	mg.p("if m == nil {")
	mg.in()
	mg.p("return 0")
	mg.out()
	mg.p("}")
	if len(mg.fields) > 0 {
		mg.p("switch i {")
		for i, f := range mg.fields {
			mg.p("case %d:", i)
			mg.in()
			if f.repeated() {
				mg.p("return len(m.%s)", f.goName)
			} else {
				mg.p("if m.%s != nil {", f.goName)
				mg.in()
				mg.p("return 1")
				mg.out()
				mg.p("}")
			}
			mg.out()
		}
		mg.p("}")
	}
	mg.p("return 0")
	mg.out()
	mg.p("}")

	mg.p("")
	mg.p("func (m *%s) FieldValue(i, j int) any {", mg.name)
	mg.in()
	if len(mg.fields) > 0 {
		mg.p("switch i {")
		for i, f := range mg.fields {
			mg.p("case %d:", i)
			mg.in()
			if f.repeated() && f.Kind == wire.MessageKind {
				mg.p("if m.%s[j] == nil {", f.goName)
				mg.in()
				mg.p("return nil")
				mg.out()
				mg.p("}")
			}
			mg.p("return %s", f.valueExpr())
			mg.out()
		}
		mg.p("}")
	}
	mg.p("return nil")
	mg.out()
	mg.p("}")

	mg.p("")
	mg.p("func (m *%s) Marshal() ([]byte, error) { return wire.Marshal(m) }", mg.name)
}

// valueExpr is the expression FieldValue returns for item j, converted to the
// Go type the field's kind expects.
func (f fieldGen) valueExpr() string {
	v := "m." + f.goName
	switch {
	case f.repeated():
		v += "[j]"
	case f.Kind != wire.Bytes && f.Kind != wire.MessageKind:
		v = "*" + v
	}
	if f.Kind == wire.Enum {
		return "int32(" + v + ")"
	}
	return v
}
