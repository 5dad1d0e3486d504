package domain

import "math/big"

// ValueKind tags the Value sum type.
type ValueKind string

const (
	ValueField32   ValueKind = "field32"
	ValueU8        ValueKind = "u8"
	ValueU32       ValueKind = "u32"
	ValueU64       ValueKind = "u64"
	ValueBool      ValueKind = "bool"
	ValueFieldArray ValueKind = "field_array"
	ValueBoolArray ValueKind = "bool_array"
)

// Value is a tagged union over the witness input vocabulary. Every variant
// has a canonical 32-byte-aligned, big-endian, left-padded field-element
// encoding so the same vector can be fed to either the mock or the
// wasm/Groth16 prover backend.
type Value struct {
	Kind ValueKind

	Field      *big.Int
	U8         uint8
	U32        uint32
	U64        uint64
	Bool       bool
	FieldArray []*big.Int
	BoolArray  []bool
}

// NewFieldValue wraps a field element.
func NewFieldValue(f *big.Int) Value { return Value{Kind: ValueField32, Field: f} }

// NewBytesValue interprets b as a big-endian unsigned integer field element.
func NewBytesValue(b []byte) Value {
	return Value{Kind: ValueField32, Field: new(big.Int).SetBytes(b)}
}

// NewU8Value wraps a uint8.
func NewU8Value(v uint8) Value { return Value{Kind: ValueU8, U8: v} }

// NewU32Value wraps a uint32.
func NewU32Value(v uint32) Value { return Value{Kind: ValueU32, U32: v} }

// NewU64Value wraps a uint64.
func NewU64Value(v uint64) Value { return Value{Kind: ValueU64, U64: v} }

// NewBoolValue wraps a bool.
func NewBoolValue(v bool) Value { return Value{Kind: ValueBool, Bool: v} }

// NewFieldArrayValue wraps a slice of field elements (e.g. Merkle siblings).
func NewFieldArrayValue(fs []*big.Int) Value { return Value{Kind: ValueFieldArray, FieldArray: fs} }

// NewBoolArrayValue wraps a slice of bools (e.g. Merkle path bits).
func NewBoolArrayValue(bs []bool) Value { return Value{Kind: ValueBoolArray, BoolArray: bs} }

// Encode renders the value to its canonical big-endian, left-padded,
// 32-byte-aligned byte encoding. Scalars occupy exactly 32 bytes; arrays are
// the concatenation of each element's 32-byte encoding.
func (v Value) Encode() []byte {
	switch v.Kind {
	case ValueField32:
		return leftPad32(v.Field.Bytes())
	case ValueU8:
		return leftPad32([]byte{v.U8})
	case ValueU32:
		return leftPad32(big.NewInt(int64(v.U32)).Bytes())
	case ValueU64:
		return leftPad32(big.NewInt(0).SetUint64(v.U64).Bytes())
	case ValueBool:
		if v.Bool {
			return leftPad32([]byte{1})
		}
		return leftPad32(nil)
	case ValueFieldArray:
		out := make([]byte, 0, 32*len(v.FieldArray))
		for _, f := range v.FieldArray {
			out = append(out, leftPad32(f.Bytes())...)
		}
		return out
	case ValueBoolArray:
		out := make([]byte, 0, 32*len(v.BoolArray))
		for _, b := range v.BoolArray {
			if b {
				out = append(out, leftPad32([]byte{1})...)
			} else {
				out = append(out, leftPad32(nil)...)
			}
		}
		return out
	default:
		return nil
	}
}

func leftPad32(b []byte) []byte {
	if len(b) >= 32 {
		return b[len(b)-32:]
	}
	out := make([]byte, 32)
	copy(out[32-len(b):], b)
	return out
}

// Witness is the structured private/public input bundle handed to the
// prover backend.
type Witness struct {
	Circuit CircuitID
	Private []Value
	Public  []Value
}
