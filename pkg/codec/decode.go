package codec

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
)

// Reason classifies a decode failure
type Reason int

const (
	InvalidNumericLiteral Reason = iota
	IntegerOutOfRange
	InvalidBooleanLiteral
	InvalidEscape
	FloatOutOfRange
)

func (r Reason) String() string {
	switch r {
	case InvalidNumericLiteral:
		return "invalid numeric literal"
	case IntegerOutOfRange:
		return "integer out of range"
	case InvalidBooleanLiteral:
		return "invalid boolean literal"
	case InvalidEscape:
		return "invalid character reference"
	case FloatOutOfRange:
		return "float out of range"
	}
	return "decode error"
}

// DecodeError reports attribute text that cannot be decoded as the expected kind
type DecodeError struct {
	Text   string
	Kind   Kind
	Reason Reason
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("codec: %s %q for %s", e.Reason, e.Text, e.Kind)
}

// ErrDecode matches every *DecodeError with errors.Is
var ErrDecode = errors.New("codec: decode error")

func (e *DecodeError) Is(target error) bool { return target == ErrDecode }

var (
	// Plain decimal: optional sign, digits, optional fraction. No exponent.
	decimalPattern = regexp.MustCompile(`^[+-]?(?:[0-9]+(?:\.[0-9]*)?|\.[0-9]+)$`)
	integerPattern = regexp.MustCompile(`^[+-]?[0-9]+$`)
)

var integerRanges = map[Kind][2]int64{
	KindInt8:   {math.MinInt8, math.MaxInt8},
	KindUint8:  {0, math.MaxUint8},
	KindUint16: {0, math.MaxUint16},
	KindUint32: {0, math.MaxUint32},
}

// Decode converts raw attribute text (still entity-escaped) to a Value of
// the expected kind. The result remembers text as its literal.
func Decode(text string, kind Kind) (Value, error) {
	v := Value{kind: kind, lit: text, set: true}

	switch kind {
	case KindRaw:
		v.s = text
	case KindString:
		s, err := Unescape(text)
		if err != nil {
			return Value{}, &DecodeError{Text: text, Kind: kind, Reason: InvalidEscape}
		}
		v.s = s
	case KindBool:
		switch text {
		case "true", "1":
			v.b = true
		case "false", "0":
			v.b = false
		default:
			return Value{}, &DecodeError{Text: text, Kind: kind, Reason: InvalidBooleanLiteral}
		}
	case KindFloat32, KindFloat64:
		if !decimalPattern.MatchString(text) {
			return Value{}, &DecodeError{Text: text, Kind: kind, Reason: InvalidNumericLiteral}
		}
		bits := 64
		if kind == KindFloat32 {
			bits = 32
		}
		f, err := strconv.ParseFloat(text, bits)
		if err != nil {
			return Value{}, &DecodeError{Text: text, Kind: kind, Reason: FloatOutOfRange}
		}
		v.f = f
	default:
		bounds, ok := integerRanges[kind]
		if !ok {
			return Value{}, fmt.Errorf("codec: cannot decode kind %s", kind)
		}
		if !integerPattern.MatchString(text) {
			return Value{}, &DecodeError{Text: text, Kind: kind, Reason: InvalidNumericLiteral}
		}
		n, err := strconv.ParseInt(text, 10, 64)
		if err != nil || n < bounds[0] || n > bounds[1] {
			return Value{}, &DecodeError{Text: text, Kind: kind, Reason: IntegerOutOfRange}
		}
		v.i = n
	}

	return v, nil
}

// DecodeString unescapes attribute text
func DecodeString(text string) (string, error) {
	v, err := Decode(text, KindString)
	if err != nil {
		return "", err
	}
	return v.s, nil
}
