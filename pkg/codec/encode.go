package codec

import (
	"fmt"
	"math"
	"strconv"
)

// Encode renders a value as attribute text (entity-escaped).
//
// Decoded values return their source literal. Other values use the canonical
// form: shortest round-trip decimal for floats with no exponent and no
// trailing zeros, base-10 integers, true/false for booleans.
func Encode(v Value) string {
	if v.set {
		return v.lit
	}

	switch v.kind {
	case KindString, KindRaw:
		return Escape(v.s)
	case KindBool:
		if v.b {
			return "true"
		}
		return "false"
	case KindFloat32:
		return FormatFloat(v.f, 32)
	case KindFloat64:
		return FormatFloat(v.f, 64)
	default:
		return strconv.FormatInt(v.i, 10)
	}
}

// FormatFloat returns the canonical text for f at the given precision
func FormatFloat(f float64, bits int) string {
	return strconv.FormatFloat(f, 'f', -1, bits)
}

// Check reports whether v can be encoded as a valid literal of its kind
func Check(v Value) error {
	switch {
	case v.kind.IsFloat():
		if math.IsNaN(v.f) || math.IsInf(v.f, 0) {
			return fmt.Errorf("codec: %v has no decimal literal", v.f)
		}
		if v.kind == KindFloat32 && math.Abs(v.f) > math.MaxFloat32 {
			return fmt.Errorf("codec: %v overflows float32", v.f)
		}
	case v.kind.IsInteger():
		bounds := integerRanges[v.kind]
		if v.i < bounds[0] || v.i > bounds[1] {
			return fmt.Errorf("codec: %d out of range for %s", v.i, v.kind)
		}
	}
	return nil
}
