package wire_test

import (
	"bytes"
	"errors"
	"math"
	"testing"

	"google.golang.org/protobuf/encoding/protowire"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/reflect/protodesc"
	"google.golang.org/protobuf/reflect/protoreflect"
	"google.golang.org/protobuf/types/descriptorpb"
	"google.golang.org/protobuf/types/dynamicpb"

	"github.com/wham/wiregen/pkg/wire"
)

// sample and inner follow the shape wiregen emits for:
//
//	message Inner { optional string label = 1; }
//	message Sample {
//	  optional int32 a = 1;
//	  repeated string b = 2;
//	  optional Inner m = 3;
//	  optional sint64 delta = 4;
//	  optional float ratio = 5;
//	  optional bool ok = 6;
//	  repeated Inner items = 7;
//	  optional bytes blob = 8;
//	}
type inner struct {
	Label *string
}

var innerFields = []wire.FieldInfo{
	{Label: wire.Optional, Kind: wire.String, Name: "label", Number: 1},
}

func (m *inner) WireFields() []wire.FieldInfo { return innerFields }

func (m *inner) FieldLen(i int) int {
	if m == nil {
		return 0
	}
	if i == 0 && m.Label != nil {
		return 1
	}
	return 0
}

func (m *inner) FieldValue(i, j int) any { return *m.Label }

type sample struct {
	A     *int32
	B     []string
	M     *inner
	Delta *int64
	Ratio *float32
	Ok    *bool
	Items []*inner
	Blob  []byte
}

var sampleFields = []wire.FieldInfo{
	{Label: wire.Optional, Kind: wire.Int32, Name: "a", Number: 1},
	{Label: wire.Repeated, Kind: wire.String, Name: "b", Number: 2},
	{Label: wire.Optional, Kind: wire.MessageKind, Name: "m", Number: 3},
	{Label: wire.Optional, Kind: wire.Sint64, Name: "delta", Number: 4},
	{Label: wire.Optional, Kind: wire.Float, Name: "ratio", Number: 5},
	{Label: wire.Optional, Kind: wire.Bool, Name: "ok", Number: 6},
	{Label: wire.Repeated, Kind: wire.MessageKind, Name: "items", Number: 7},
	{Label: wire.Optional, Kind: wire.Bytes, Name: "blob", Number: 8},
}

func newSample() *sample {
	return &sample{B: []string{}, Items: []*inner{}}
}

func (m *sample) WireFields() []wire.FieldInfo { return sampleFields }

func (m *sample) FieldLen(i int) int {
	if m == nil {
		return 0
	}
	present := func(ok bool) int {
		if ok {
			return 1
		}
		return 0
	}
	switch i {
	case 0:
		return present(m.A != nil)
	case 1:
		return len(m.B)
	case 2:
		return present(m.M != nil)
	case 3:
		return present(m.Delta != nil)
	case 4:
		return present(m.Ratio != nil)
	case 5:
		return present(m.Ok != nil)
	case 6:
		return len(m.Items)
	case 7:
		return present(m.Blob != nil)
	}
	return 0
}

func (m *sample) FieldValue(i, j int) any {
	switch i {
	case 0:
		return *m.A
	case 1:
		return m.B[j]
	case 2:
		return m.M
	case 3:
		return *m.Delta
	case 4:
		return *m.Ratio
	case 5:
		return *m.Ok
	case 6:
		return m.Items[j]
	case 7:
		return m.Blob
	}
	return nil
}

func ptr[T any](v T) *T { return &v }

func TestScenarioSingleVarint(t *testing.T) {
	m := newSample()
	m.A = ptr(int32(300))
	got, err := wire.Marshal(m)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if want := []byte{0x08, 0xac, 0x02}; !bytes.Equal(got, want) {
		t.Fatalf("marshal = % x, want % x", got, want)
	}
}

func TestScenarioNestedMessage(t *testing.T) {
	in := &inner{Label: ptr("hi")}
	innerBytes, err := wire.Marshal(in)
	if err != nil {
		t.Fatalf("marshal inner: %v", err)
	}

	m := newSample()
	m.M = in
	got, err := wire.Marshal(m)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	want := []byte{3<<3 | 2}
	want = append(want, wire.EncodeVarint(uint64(len(innerBytes)))...)
	want = append(want, innerBytes...)
	if !bytes.Equal(got, want) {
		t.Fatalf("marshal = % x, want % x", got, want)
	}

	framed, err := wire.EncodeMessage(in)
	if err != nil {
		t.Fatalf("encode message: %v", err)
	}
	if !bytes.Equal(framed, want[1:]) {
		t.Fatalf("EncodeMessage = % x, want % x", framed, want[1:])
	}
}

func TestMarshalDeterministic(t *testing.T) {
	build := func() *sample {
		m := newSample()
		m.A = ptr(int32(7))
		m.B = []string{"x", "y", "z"}
		m.M = &inner{Label: ptr("n")}
		m.Delta = ptr(int64(-5))
		m.Items = []*inner{{Label: ptr("a")}, {}}
		return m
	}
	m := build()
	first, err := wire.Marshal(m)
	if err != nil {
		t.Fatal(err)
	}
	second, err := wire.Marshal(m)
	if err != nil {
		t.Fatal(err)
	}
	third, err := wire.Marshal(build())
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(first, second) || !bytes.Equal(first, third) {
		t.Fatalf("outputs differ:\n% x\n% x\n% x", first, second, third)
	}
}

func TestMarshalOmitsUnsetFields(t *testing.T) {
	m := newSample()
	m.B = []string{"only"}
	b, err := wire.Marshal(m)
	if err != nil {
		t.Fatal(err)
	}
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			t.Fatalf("bad tag: %v", protowire.ParseError(n))
		}
		if num != 2 {
			t.Fatalf("unexpected field %d in output", num)
		}
		b = b[n:]
		n = protowire.ConsumeFieldValue(num, typ, b)
		if n < 0 {
			t.Fatalf("bad value: %v", protowire.ParseError(n))
		}
		b = b[n:]
	}

	empty, err := wire.Marshal(newSample())
	if err != nil {
		t.Fatal(err)
	}
	if len(empty) != 0 {
		t.Fatalf("empty message encoded as % x", empty)
	}
}

func TestMarshalRepeatedOrder(t *testing.T) {
	m := newSample()
	m.B = []string{"c", "a", "b"}
	b, err := wire.Marshal(m)
	if err != nil {
		t.Fatal(err)
	}
	var got []string
	for len(b) > 0 {
		_, _, n := protowire.ConsumeTag(b)
		b = b[n:]
		v, n := protowire.ConsumeBytes(b)
		got = append(got, string(v))
		b = b[n:]
	}
	if len(got) != 3 || got[0] != "c" || got[1] != "a" || got[2] != "b" {
		t.Fatalf("items = %q", got)
	}
}

func TestMarshalDoesNotMutate(t *testing.T) {
	m := newSample()
	m.B = []string{"a"}
	m.A = ptr(int32(1))
	if _, err := wire.Marshal(m); err != nil {
		t.Fatal(err)
	}
	if len(m.B) != 1 || cap(m.B) != 1 || *m.A != 1 || m.M != nil {
		t.Fatalf("message changed: %+v", m)
	}
}

func TestMarshalInterop(t *testing.T) {
	fd, err := protodesc.NewFile(sampleDescriptor(), nil)
	if err != nil {
		t.Fatalf("build descriptor: %v", err)
	}
	md := fd.Messages().ByName("Sample")

	m := newSample()
	m.A = ptr(int32(-3))
	m.B = []string{"one", "two"}
	m.M = &inner{Label: ptr("nested")}
	m.Delta = ptr(int64(-1 << 40))
	m.Ratio = ptr(float32(2.5))
	m.Ok = ptr(true)
	m.Items = []*inner{{Label: ptr("i0")}, {Label: ptr("i1")}}
	m.Blob = []byte{0xde, 0xad}

	b, err := wire.Marshal(m)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	dyn := dynamicpb.NewMessage(md)
	if err := proto.Unmarshal(b, dyn); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(dyn.GetUnknown()) != 0 {
		t.Fatalf("unknown bytes: % x", dyn.GetUnknown())
	}

	get := func(name string) protoreflect.Value {
		return dyn.Get(md.Fields().ByName(protoreflect.Name(name)))
	}
	if got := get("a").Int(); got != -3 {
		t.Errorf("a = %d", got)
	}
	if list := get("b").List(); list.Len() != 2 || list.Get(0).String() != "one" || list.Get(1).String() != "two" {
		t.Errorf("b = %v", list)
	}
	nested := get("m").Message()
	if got := nested.Get(nested.Descriptor().Fields().ByName("label")).String(); got != "nested" {
		t.Errorf("m.label = %q", got)
	}
	if got := get("delta").Int(); got != -1<<40 {
		t.Errorf("delta = %d", got)
	}
	if got := get("ratio").Float(); got != 2.5 {
		t.Errorf("ratio = %v", got)
	}
	if !get("ok").Bool() {
		t.Errorf("ok = false")
	}
	if got := get("items").List().Len(); got != 2 {
		t.Errorf("items len = %d", got)
	}
	if got := get("blob").Bytes(); !bytes.Equal(got, []byte{0xde, 0xad}) {
		t.Errorf("blob = % x", got)
	}
}

func TestMarshalLegacyFloatByteOrder(t *testing.T) {
	fields := []wire.FieldInfo{{Label: wire.Optional, Kind: wire.FloatBigEndian, Name: "f", Number: 1}}
	m := &single{fields: fields, value: float32(1)}
	b, err := wire.Marshal(m)
	if err != nil {
		t.Fatal(err)
	}
	if want := []byte{0x0d, 0x3f, 0x80, 0x00, 0x00}; !bytes.Equal(b, want) {
		t.Fatalf("marshal = % x, want % x", b, want)
	}
	bits, _ := protowire.ConsumeFixed32(b[1:])
	if math.Float32frombits(bits) == 1 {
		t.Fatalf("big-endian layout decoded as little-endian 1")
	}
}

func TestMarshalValueError(t *testing.T) {
	fields := []wire.FieldInfo{{Label: wire.Optional, Kind: wire.Int64, Name: "n", Number: 9}}
	_, err := wire.Marshal(&single{fields: fields, value: "not a number"})
	if err == nil {
		t.Fatal("expected error")
	}
	var ve *wire.ValueError
	if !errors.As(err, &ve) {
		t.Fatalf("expected *wire.ValueError in %v", err)
	}
}

func TestMarshalRejectsNilNestedMessage(t *testing.T) {
	fields := []wire.FieldInfo{{Label: wire.Repeated, Kind: wire.MessageKind, Name: "items", Number: 3}}
	_, err := wire.Marshal(&single{fields: fields, value: nil})
	var ve *wire.ValueError
	if !errors.As(err, &ve) {
		t.Fatalf("expected *wire.ValueError, got %v", err)
	}
	if ve.Reason != "nil message" {
		t.Fatalf("reason = %q", ve.Reason)
	}
}

type single struct {
	fields []wire.FieldInfo
	value  any
}

func (s *single) WireFields() []wire.FieldInfo { return s.fields }
func (s *single) FieldLen(int) int             { return 1 }
func (s *single) FieldValue(int, int) any      { return s.value }

func sampleDescriptor() *descriptorpb.FileDescriptorProto {
	opt := descriptorpb.FieldDescriptorProto_LABEL_OPTIONAL.Enum()
	rep := descriptorpb.FieldDescriptorProto_LABEL_REPEATED.Enum()
	field := func(name string, num int32, label *descriptorpb.FieldDescriptorProto_Label, typ descriptorpb.FieldDescriptorProto_Type, typeName string) *descriptorpb.FieldDescriptorProto {
		f := &descriptorpb.FieldDescriptorProto{
			Name:   proto.String(name),
			Number: proto.Int32(num),
			Label:  label,
			Type:   typ.Enum(),
		}
		if typeName != "" {
			f.TypeName = proto.String(typeName)
		}
		return f
	}
	return &descriptorpb.FileDescriptorProto{
		Name:    proto.String("sample.proto"),
		Package: proto.String("sample"),
		Syntax:  proto.String("proto2"),
		MessageType: []*descriptorpb.DescriptorProto{
			{
				Name: proto.String("Inner"),
				Field: []*descriptorpb.FieldDescriptorProto{
					field("label", 1, opt, descriptorpb.FieldDescriptorProto_TYPE_STRING, ""),
				},
			},
			{
				Name: proto.String("Sample"),
				Field: []*descriptorpb.FieldDescriptorProto{
					field("a", 1, opt, descriptorpb.FieldDescriptorProto_TYPE_INT32, ""),
					field("b", 2, rep, descriptorpb.FieldDescriptorProto_TYPE_STRING, ""),
					field("m", 3, opt, descriptorpb.FieldDescriptorProto_TYPE_MESSAGE, ".sample.Inner"),
					field("delta", 4, opt, descriptorpb.FieldDescriptorProto_TYPE_SINT64, ""),
					field("ratio", 5, opt, descriptorpb.FieldDescriptorProto_TYPE_FLOAT, ""),
					field("ok", 6, opt, descriptorpb.FieldDescriptorProto_TYPE_BOOL, ""),
					field("items", 7, rep, descriptorpb.FieldDescriptorProto_TYPE_MESSAGE, ".sample.Inner"),
					field("blob", 8, opt, descriptorpb.FieldDescriptorProto_TYPE_BYTES, ""),
				},
			},
		},
	}
}
