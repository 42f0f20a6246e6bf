// Package wire is the runtime used by wiregen generated code.
//
// It encodes values with the Protocol Buffers wire scheme: varints, zigzag
// mapped signed integers, length-delimited bytes and fixed 32-bit floats.
// Generated message types implement Message and are serialized by Marshal,
// which walks the field table in declaration order.
package wire
