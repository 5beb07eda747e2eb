package codec

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeNumbers(t *testing.T) {
	tests := []struct {
		text string
		kind Kind
		want float64
	}{
		{"0", KindFloat32, 0},
		{"0.0", KindFloat32, 0},
		{"-1.5", KindFloat32, -1.5},
		{"+2", KindFloat64, 2},
		{".25", KindFloat64, 0.25},
		{"3.", KindFloat64, 3},
		{"340282346638528859811704183484516925440", KindFloat32, 340282346638528859811704183484516925440},
		{"255", KindUint8, 255},
		{"-128", KindInt8, -128},
		{"65535", KindUint16, 65535},
		{"4294967295", KindUint32, 4294967295},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			v, err := Decode(tt.text, tt.kind)
			require.NoError(t, err)
			assert.Equal(t, tt.kind, v.Kind())
			assert.Equal(t, tt.want, v.Float())
		})
	}
}

func TestDecodeRejectsBadNumbers(t *testing.T) {
	tests := []struct {
		text   string
		kind   Kind
		reason Reason
	}{
		{"abc", KindFloat32, InvalidNumericLiteral},
		{"1e5", KindFloat64, InvalidNumericLiteral},
		{"", KindFloat32, InvalidNumericLiteral},
		{"NaN", KindFloat32, InvalidNumericLiteral},
		{"1.5", KindUint8, InvalidNumericLiteral},
		{"256", KindUint8, IntegerOutOfRange},
		{"-1", KindUint32, IntegerOutOfRange},
		{"128", KindInt8, IntegerOutOfRange},
		{"1" + strings.Repeat("0", 40), KindFloat32, FloatOutOfRange},
		{"-1" + strings.Repeat("0", 400), KindFloat64, FloatOutOfRange},
		{"yes", KindBool, InvalidBooleanLiteral},
		{"a &bogus; b", KindString, InvalidEscape},
		{"a & b", KindString, InvalidEscape},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			_, err := Decode(tt.text, tt.kind)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrDecode))

			var de *DecodeError
			require.True(t, errors.As(err, &de))
			assert.Equal(t, tt.reason, de.Reason)
			assert.Equal(t, tt.text, de.Text)
		})
	}
}

func TestEncodeCanonical(t *testing.T) {
	tests := []struct {
		name string
		v    Value
		want string
	}{
		{"float32 one", Float32(1), "1"},
		{"float32 fraction", Float32(0.1), "0.1"},
		{"float32 negative", Float32(-0.25), "-0.25"},
		{"float32 large", Float32(1e20), "100000000000000000000"},
		{"float64", Float64(0.30000000000000004), "0.30000000000000004"},
		{"int8", Int(KindInt8, -1), "-1"},
		{"uint32", Int(KindUint32, 42), "42"},
		{"bool true", Bool(true), "true"},
		{"bool false", Bool(false), "false"},
		{"string", String(`a<b & "c"`), "a&lt;b &amp; &quot;c&quot;"},
		{"apostrophe kept", String("it's"), "it's"},
		{"newline kept", String("a\nb"), "a\nb"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Encode(tt.v))
		})
	}
}

func TestLiteralPreserved(t *testing.T) {
	for _, text := range []string{"0.0", "1.50", "007"} {
		v, err := Decode(text, KindFloat32)
		require.NoError(t, err)
		assert.Equal(t, text, Encode(v))
		assert.NotEqual(t, text, Encode(v.WithoutLiteral()))
	}

	v, err := Decode("a&#x0A;b&apos;", KindString)
	require.NoError(t, err)
	assert.Equal(t, "a\nb'", v.Str())
	assert.Equal(t, "a&#x0A;b&apos;", Encode(v))
}

func TestUnescape(t *testing.T) {
	s, err := Unescape("&lt;&gt;&amp;&quot;&apos;&#65;&#x42;")
	require.NoError(t, err)
	assert.Equal(t, `<>&"'AB`, s)

	_, err = Unescape("&#xZZ;")
	assert.Error(t, err)
	assert.Equal(t, "&apos;", EscapeFull("'"))
}

func TestEqualIgnoresLiteral(t *testing.T) {
	a, err := Decode("1.0", KindFloat32)
	require.NoError(t, err)
	assert.True(t, a.Equal(Float32(1)))
	assert.False(t, a.Equal(Float64(1)))
	assert.True(t, Float32(0).IsZero())
}

func TestCheck(t *testing.T) {
	assert.NoError(t, Check(Float32(3)))
	assert.Error(t, Check(Float64(posInf())))
	assert.Error(t, Check(Int(KindUint8, 300)))
}

func TestLiterals(t *testing.T) {
	var lits Literals
	v, err := Decode("2.50", KindFloat32)
	require.NoError(t, err)
	lits.Remember("x", v)

	assert.True(t, lits.Present("x"))
	assert.Equal(t, "2.50", lits.Text("x", Float32(2.5)))
	assert.Equal(t, "3", lits.Text("x", Float32(3)))
	assert.Equal(t, "1", lits.Text("y", Float32(1)))
}

func posInf() float64 {
	f := 1e308
	return f * 10
}
