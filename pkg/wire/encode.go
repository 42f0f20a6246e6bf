package wire

import (
	"encoding/binary"
	"math"

	"google.golang.org/protobuf/encoding/protowire"
)

// Type is the wire type carried in the low three bits of a tag.
type Type uint8

const (
	VarintType  Type = Type(protowire.VarintType)
	BytesType   Type = Type(protowire.BytesType)
	Fixed32Type Type = Type(protowire.Fixed32Type)
)

// AppendVarint appends v using 7 payload bits per byte, low-order group first.
func AppendVarint(b []byte, v uint64) []byte {
	return protowire.AppendVarint(b, v)
}

// AppendZigzag maps v onto the unsigned domain and appends it as a varint.
func AppendZigzag(b []byte, v int64) []byte {
	return protowire.AppendVarint(b, protowire.EncodeZigZag(v))
}

// AppendBytes appends the varint length of v followed by v itself.
func AppendBytes(b []byte, v []byte) []byte {
	return protowire.AppendBytes(b, v)
}

// AppendString appends the UTF-8 bytes of s with a varint length prefix.
func AppendString(b []byte, s string) []byte {
	return protowire.AppendString(b, s)
}

// AppendFixed32Float appends the IEEE-754 bits of f in little-endian order.
func AppendFixed32Float(b []byte, f float32) []byte {
	return protowire.AppendFixed32(b, math.Float32bits(f))
}

// AppendFixed32FloatBigEndian appends the IEEE-754 bits of f in big-endian
// order, the layout written by the legacy encoder.
func AppendFixed32FloatBigEndian(b []byte, f float32) []byte {
	return binary.BigEndian.AppendUint32(b, math.Float32bits(f))
}

// AppendTag appends the key for field number num with wire type t.
func AppendTag(b []byte, num int32, t Type) []byte {
	return protowire.AppendTag(b, protowire.Number(num), protowire.Type(t))
}

func EncodeVarint(v uint64) []byte { return AppendVarint(nil, v) }

func EncodeZigzag(v int64) []byte { return AppendZigzag(nil, v) }

// EncodeLengthDelimited frames v with its varint length.
func EncodeLengthDelimited(v []byte) []byte { return AppendBytes(nil, v) }

// EncodeString frames the UTF-8 bytes of s with their varint length.
func EncodeString(s string) []byte { return AppendString(nil, s) }

func EncodeFixed32Float(f float32) []byte { return AppendFixed32Float(nil, f) }

// EncodeMessage serializes m and frames the result with its length.
func EncodeMessage(m Message) ([]byte, error) {
	return appendNested(nil, m)
}
