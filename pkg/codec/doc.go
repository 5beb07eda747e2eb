// Package codec converts scalar attribute values between their text form in
// microcontroller files and typed Go values.
//
// # Numbers
//
// Numeric attributes accept plain decimal literals only: an optional sign,
// digits and an optional fraction. Exponent notation, hex and special values
// are rejected with InvalidNumericLiteral.
//
// Floats are written in the shortest form that reads back to the same value
// at the attribute's precision, without exponent or trailing zeros:
//
//	codec.Encode(codec.Float32(1))     // "1"
//	codec.Encode(codec.Float32(0.25))  // "0.25"
//
// A value obtained from Decode keeps its literal, so "0.0" is written back as
// "0.0" until the value is replaced.
//
// # Strings
//
// Attribute text is entity-escaped. Decoding resolves the predefined entities
// and numeric character references. Encoding escapes &, <, > and the double
// quote.
package codec
