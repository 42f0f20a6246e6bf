package wire

// Label mirrors the cardinality of a schema field.
type Label uint8

const (
	Required Label = iota
	Optional
	Repeated
)

func (l Label) String() string {
	switch l {
	case Required:
		return "required"
	case Optional:
		return "optional"
	case Repeated:
		return "repeated"
	default:
		return "unknown"
	}
}

// Kind is the closed set of value encodings a field can carry. Each kind has
// a fixed wire type and expects one Go type from Message.FieldValue:
//
//	Int32, Sint32, Enum    int32
//	Int64, Sint64          int64
//	Uint32                 uint32
//	Uint64                 uint64
//	Bool                   bool
//	String                 string
//	Bytes                  []byte
//	Float, FloatBigEndian  float32
//	MessageKind            Message
type Kind uint8

const (
	Int32 Kind = iota + 1
	Int64
	Uint32
	Uint64
	Sint32
	Sint64
	Bool
	String
	Bytes
	Enum
	Float
	FloatBigEndian
	MessageKind
)

var kindNames = [...]string{
	Int32:          "int32",
	Int64:          "int64",
	Uint32:         "uint32",
	Uint64:         "uint64",
	Sint32:         "sint32",
	Sint64:         "sint64",
	Bool:           "bool",
	String:         "string",
	Bytes:          "bytes",
	Enum:           "enum",
	Float:          "float",
	FloatBigEndian: "float(big-endian)",
	MessageKind:    "message",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) && kindNames[k] != "" {
		return kindNames[k]
	}
	return "unknown"
}

// WireType reports the physical layout used for k.
func (k Kind) WireType() Type {
	switch k {
	case String, Bytes, MessageKind:
		return BytesType
	case Float, FloatBigEndian:
		return Fixed32Type
	default:
		return VarintType
	}
}

// Append encodes v, without a tag, according to k.
//
// A nil value for MessageKind is rejected: generated code reports a nil
// element of a repeated message field as an untyped nil.
func (k Kind) Append(b []byte, v any) ([]byte, error) {
	if v == nil && k == MessageKind {
		return b, &ValueError{Kind: k, Value: v, Reason: "nil message"}
	}
	switch k {
	case Int32, Enum:
		if x, ok := v.(int32); ok {
			return AppendVarint(b, uint64(int64(x))), nil
		}
	case Int64:
		if x, ok := v.(int64); ok {
			return AppendVarint(b, uint64(x)), nil
		}
	case Uint32:
		if x, ok := v.(uint32); ok {
			return AppendVarint(b, uint64(x)), nil
		}
	case Uint64:
		if x, ok := v.(uint64); ok {
			return AppendVarint(b, x), nil
		}
	case Sint32:
		if x, ok := v.(int32); ok {
			return AppendZigzag(b, int64(x)), nil
		}
	case Sint64:
		if x, ok := v.(int64); ok {
			return AppendZigzag(b, x), nil
		}
	case Bool:
		if x, ok := v.(bool); ok {
			if x {
				return append(b, 1), nil
			}
			return append(b, 0), nil
		}
	case String:
		if x, ok := v.(string); ok {
			return AppendString(b, x), nil
		}
	case Bytes:
		if x, ok := v.([]byte); ok {
			return AppendBytes(b, x), nil
		}
	case Float:
		if x, ok := v.(float32); ok {
			return AppendFixed32Float(b, x), nil
		}
	case FloatBigEndian:
		if x, ok := v.(float32); ok {
			return AppendFixed32FloatBigEndian(b, x), nil
		}
	case MessageKind:
		if x, ok := v.(Message); ok && x != nil {
			return appendNested(b, x)
		}
	default:
		return b, &ValueError{Kind: k, Value: v, Reason: "unknown kind"}
	}
	return b, &ValueError{Kind: k, Value: v, Reason: "value type mismatch"}
}
