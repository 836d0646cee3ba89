// Package value defines the closed value universe jpak containers carry:
// null, booleans, integers, floats, strings, ordered arrays, key/value
// objects, and the extension family (maps, sets, symbols, regular
// expressions, typed arrays, opaque buffers, timestamps, and opaque
// user-extension payloads).
//
// Value is a tagged union rather than an interface hierarchy: decoding
// never needs runtime type reflection, only a switch on Kind.
package value

import "github.com/jpakfmt/jpak/format"

// Kind discriminates the variant held by a Value.
type Kind uint8

const (
	KindNull Kind = iota
	KindUndefined
	KindBool
	KindInt
	KindUint
	KindFloat32
	KindFloat64
	KindStr
	KindKeyRef
	KindArray
	KindObject
	KindMap
	KindSet
	KindSymbol
	KindRegExp
	KindTypedArray
	KindOpaqueBuffer
	KindTimestamp
	KindUserExt
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "Null"
	case KindUndefined:
		return "Undefined"
	case KindBool:
		return "Bool"
	case KindInt:
		return "Int"
	case KindUint:
		return "Uint"
	case KindFloat32:
		return "Float32"
	case KindFloat64:
		return "Float64"
	case KindStr:
		return "Str"
	case KindKeyRef:
		return "KeyRef"
	case KindArray:
		return "Array"
	case KindObject:
		return "Object"
	case KindMap:
		return "Map"
	case KindSet:
		return "Set"
	case KindSymbol:
		return "Symbol"
	case KindRegExp:
		return "RegExp"
	case KindTypedArray:
		return "TypedArray"
	case KindOpaqueBuffer:
		return "OpaqueBuffer"
	case KindTimestamp:
		return "Timestamp"
	case KindUserExt:
		return "UserExt"
	default:
		return "Unknown"
	}
}

// Pair is one (key, value) entry of an Object or Map. For Object, Key.Kind
// is always KindStr (or KindKeyRef once decoded against an out-of-band key
// table); for Map, Key may be any Value that is itself a valid map key.
type Pair struct {
	Key Value
	Val Value
}

// Symbol is the payload of a KindSymbol value: an optionally-global
// interned name, mirroring the host language's notion of a symbol/atom.
type Symbol struct {
	Global      bool
	Description string
}

// RegExp is the payload of a KindRegExp value.
type RegExp struct {
	Pattern string
	Flags   string
}

// Timestamp is the payload of a KindTimestamp value: a broken-down
// (seconds, nanoseconds) pair, decoded from whichever of the three
// built-in timestamp widths (32/64/96-bit) the encoder selected.
type Timestamp struct {
	Sec  int64
	Nsec uint32
}

// TypedArray is the payload of a KindTypedArray value: a typed numeric
// array stored as raw bytes in source endianness, per format.TypedArrayVariant.
type TypedArray struct {
	Variant format.TypedArrayVariant
	Raw     []byte
}

// UserExt is the payload of a KindUserExt value: an opaque, tag-identified
// byte span with no registered handler (or explicitly constructed as such).
type UserExt struct {
	Tag   byte
	Bytes []byte
}

// Value is the closed sum type every jpak container value is built from.
// Only the field(s) relevant to Kind are meaningful; zero values of the
// others are ignored.
type Value struct {
	Kind Kind

	Bool  bool
	Int   int64
	Uint  uint64
	F32   float32
	F64   float64
	Str   string // also used for the KeyRef name once resolved
	Index int    // KindKeyRef: key-table index; used internally during decode for KindStr too

	Array []Value
	Pairs []Pair // Object and Map

	Symbol     Symbol
	RegExp     RegExp
	TypedArray TypedArray
	Buffer     []byte
	Timestamp  Timestamp
	UserExt    UserExt
}

// Null is the Value representing the wire's Null tag.
var Null = Value{Kind: KindNull}

// Undefined is the Value representing the wire's Undefined tag.
var Undefined = Value{Kind: KindUndefined}

// Bool constructs a boolean Value.
func Bool(b bool) Value { return Value{Kind: KindBool, Bool: b} }

// Int constructs a signed-integer Value.
func Int(i int64) Value { return Value{Kind: KindInt, Int: i} }

// Uint constructs an unsigned-integer Value.
func Uint(u uint64) Value { return Value{Kind: KindUint, Uint: u} }

// Float32 constructs a 32-bit float Value.
func Float32(f float32) Value { return Value{Kind: KindFloat32, F32: f} }

// Float64 constructs a 64-bit float Value.
func Float64(f float64) Value { return Value{Kind: KindFloat64, F64: f} }

// Str constructs a string Value.
func Str(s string) Value { return Value{Kind: KindStr, Str: s} }

// Array constructs an ordered-array Value.
func Array(items ...Value) Value { return Value{Kind: KindArray, Array: items} }

// Object constructs a key/value Value preserving insertion order. Keys
// must be unique; callers are responsible for deduplication before
// constructing the Value (the encoder does not deduplicate for them).
func Object(pairs ...Pair) Value { return Value{Kind: KindObject, Pairs: pairs} }

// ObjectPair is a convenience constructor for an Object entry with a
// string key.
func ObjectPair(key string, v Value) Pair { return Pair{Key: Str(key), Val: v} }

// Map constructs an ordered Map extension Value (arbitrary Value keys).
func Map(pairs ...Pair) Value { return Value{Kind: KindMap, Pairs: pairs} }

// Set constructs an ordered Set extension Value.
func Set(items ...Value) Value { return Value{Kind: KindSet, Array: items} }

// NewSymbol constructs a Symbol extension Value.
func NewSymbol(global bool, description string) Value {
	return Value{Kind: KindSymbol, Symbol: Symbol{Global: global, Description: description}}
}

// NewRegExp constructs a RegExp extension Value.
func NewRegExp(pattern, flags string) Value {
	return Value{Kind: KindRegExp, RegExp: RegExp{Pattern: pattern, Flags: flags}}
}

// NewTimestamp constructs a Timestamp extension Value.
func NewTimestamp(sec int64, nsec uint32) Value {
	return Value{Kind: KindTimestamp, Timestamp: Timestamp{Sec: sec, Nsec: nsec}}
}

// NewOpaqueBuffer constructs an OpaqueBuffer extension Value.
func NewOpaqueBuffer(b []byte) Value { return Value{Kind: KindOpaqueBuffer, Buffer: b} }

// NewTypedArray constructs a TypedArray extension Value from raw bytes
// already encoded in source endianness.
func NewTypedArray(variant format.TypedArrayVariant, raw []byte) Value {
	return Value{Kind: KindTypedArray, TypedArray: TypedArray{Variant: variant, Raw: raw}}
}

// NewUserExt constructs a user-extension Value for a tag with no
// registered handler (or an explicit opaque payload).
func NewUserExt(tag byte, bytes []byte) Value {
	return Value{Kind: KindUserExt, UserExt: UserExt{Tag: tag, Bytes: bytes}}
}

// IsContainer reports whether the value opens a container on the wire
// (Array, Object, Map, or Set).
func (v Value) IsContainer() bool {
	switch v.Kind {
	case KindArray, KindObject, KindMap, KindSet:
		return true
	default:
		return false
	}
}
