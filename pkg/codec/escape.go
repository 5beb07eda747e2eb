package codec

import (
	"errors"
	"strconv"
	"strings"
	"unicode/utf8"
)

var (
	attrEscaper = strings.NewReplacer(
		"&", "&amp;",
		"<", "&lt;",
		">", "&gt;",
		`"`, "&quot;",
	)
	fullEscaper = strings.NewReplacer(
		"&", "&amp;",
		"<", "&lt;",
		">", "&gt;",
		`"`, "&quot;",
		"'", "&apos;",
	)
)

var entities = map[string]string{
	"amp":  "&",
	"lt":   "<",
	"gt":   ">",
	"quot": `"`,
	"apos": "'",
}

var errBadReference = errors.New("codec: bad character reference")

// Escape escapes the characters the game escapes in attribute values.
// Apostrophes are left alone since attributes are double quoted.
func Escape(s string) string {
	return attrEscaper.Replace(s)
}

// EscapeFull escapes all five predefined entities
func EscapeFull(s string) string {
	return fullEscaper.Replace(s)
}

// Unescape resolves the five predefined entities and numeric character references
func Unescape(s string) (string, error) {
	if !strings.Contains(s, "&") {
		return s, nil
	}

	var b strings.Builder
	b.Grow(len(s))
	for {
		amp := strings.IndexByte(s, '&')
		if amp < 0 {
			b.WriteString(s)
			return b.String(), nil
		}
		b.WriteString(s[:amp])
		s = s[amp+1:]

		semi := strings.IndexByte(s, ';')
		if semi <= 0 {
			return "", errBadReference
		}
		ref := s[:semi]
		s = s[semi+1:]

		if ref[0] == '#' {
			r, err := parseCharRef(ref[1:])
			if err != nil {
				return "", err
			}
			b.WriteRune(r)
			continue
		}
		text, ok := entities[ref]
		if !ok {
			return "", errBadReference
		}
		b.WriteString(text)
	}
}

func parseCharRef(ref string) (rune, error) {
	base := 10
	if strings.HasPrefix(ref, "x") || strings.HasPrefix(ref, "X") {
		base = 16
		ref = ref[1:]
	}
	if ref == "" {
		return 0, errBadReference
	}
	n, err := strconv.ParseUint(ref, base, 32)
	if err != nil || !utf8.ValidRune(rune(n)) {
		return 0, errBadReference
	}
	return rune(n), nil
}
