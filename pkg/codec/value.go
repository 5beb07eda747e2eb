package codec

import (
	"fmt"
	"math"
)

// Kind identifies the scalar type an attribute decodes to
type Kind uint8

const (
	KindString Kind = iota
	KindBool
	KindInt8
	KindUint8
	KindUint16
	KindUint32
	KindFloat32
	KindFloat64
	KindRaw // undecoded attribute text, written back verbatim
)

var kindNames = map[Kind]string{
	KindString:  "string",
	KindBool:    "bool",
	KindInt8:    "int8",
	KindUint8:   "uint8",
	KindUint16:  "uint16",
	KindUint32:  "uint32",
	KindFloat32: "float32",
	KindFloat64: "float64",
	KindRaw:     "raw",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

// ParseKind maps a kind name as used in the kind table back to a Kind
func ParseKind(name string) (Kind, error) {
	for k, n := range kindNames {
		if n == name {
			return k, nil
		}
	}
	return 0, fmt.Errorf("codec: unknown value kind %q", name)
}

// IsInteger reports whether the kind is one of the integer kinds
func (k Kind) IsInteger() bool {
	return k == KindInt8 || k == KindUint8 || k == KindUint16 || k == KindUint32
}

// IsFloat reports whether the kind is one of the floating-point kinds
func (k Kind) IsFloat() bool {
	return k == KindFloat32 || k == KindFloat64
}

// Value is a single typed attribute value.
//
// A Value produced by Decode remembers the literal it was decoded from, and
// Encode returns that literal unchanged. Values built with the constructors
// below carry no literal and encode canonically.
type Value struct {
	kind Kind
	i    int64
	f    float64
	b    bool
	s    string
	lit  string
	set  bool // lit is meaningful (an empty literal is valid for strings)
}

// String returns a string value
func String(s string) Value { return Value{kind: KindString, s: s} }

// Bool returns a boolean value
func Bool(b bool) Value { return Value{kind: KindBool, b: b} }

// Float32 returns a single precision value
func Float32(f float32) Value { return Value{kind: KindFloat32, f: float64(f)} }

// Float64 returns a double precision value
func Float64(f float64) Value { return Value{kind: KindFloat64, f: f} }

// Raw returns a value whose text is emitted exactly as given
func Raw(text string) Value { return Value{kind: KindRaw, s: text, lit: text, set: true} }

// Int returns an integer value of the given integer kind.
// It panics if k is not an integer kind.
func Int(k Kind, n int64) Value {
	if !k.IsInteger() {
		panic(fmt.Sprintf("codec: Int called with non-integer kind %s", k))
	}
	return Value{kind: k, i: n}
}

// Kind returns the kind of the value
func (v Value) Kind() Kind { return v.kind }

// Str returns the decoded string (unescaped) for string and raw values
func (v Value) Str() string { return v.s }

// BoolValue returns the boolean content
func (v Value) BoolValue() bool { return v.b }

// Float returns the numeric content as float64
func (v Value) Float() float64 {
	if v.kind.IsInteger() {
		return float64(v.i)
	}
	return v.f
}

// Int64 returns the integer content
func (v Value) Int64() int64 {
	if v.kind.IsFloat() {
		return int64(v.f)
	}
	return v.i
}

// Literal returns the source text the value was decoded from, if any
func (v Value) Literal() (string, bool) { return v.lit, v.set }

// WithoutLiteral drops the remembered literal so the value encodes canonically
func (v Value) WithoutLiteral() Value {
	if v.kind == KindRaw {
		return v
	}
	v.lit, v.set = "", false
	return v
}

// Equal compares the decoded content of two values, ignoring literals.
// Floats compare at their own precision.
func (v Value) Equal(w Value) bool {
	if v.kind != w.kind {
		return false
	}
	switch v.kind {
	case KindString, KindRaw:
		return v.s == w.s
	case KindBool:
		return v.b == w.b
	case KindFloat32:
		return float32(v.f) == float32(w.f) || (math.IsNaN(v.f) && math.IsNaN(w.f))
	case KindFloat64:
		return v.f == w.f || (math.IsNaN(v.f) && math.IsNaN(w.f))
	default:
		return v.i == w.i
	}
}

// IsZero reports whether the value holds its kind's zero
func (v Value) IsZero() bool {
	switch v.kind {
	case KindString, KindRaw:
		return v.s == ""
	case KindBool:
		return !v.b
	case KindFloat32, KindFloat64:
		return v.f == 0
	default:
		return v.i == 0
	}
}

func (v Value) String() string {
	return Encode(v)
}
