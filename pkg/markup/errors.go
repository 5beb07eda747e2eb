package markup

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorKind classifies a parse failure
type ErrorKind int

const (
	UnexpectedElement ErrorKind = iota
	MissingRequiredAttribute
	MalformedValue
	UnterminatedElement
	EncodingError
	SyntaxError
	UnexpectedAttribute
	MissingRequiredElement
)

// Sentinels for errors.Is; each matches every *ParseError of its kind
var (
	ErrUnexpectedElement        = errors.New("unexpected element")
	ErrMissingRequiredAttribute = errors.New("missing required attribute")
	ErrMalformedValue           = errors.New("malformed value")
	ErrUnterminatedElement      = errors.New("unterminated element")
	ErrEncoding                 = errors.New("invalid byte sequence")
	ErrSyntax                   = errors.New("syntax error")
	ErrUnexpectedAttribute      = errors.New("unexpected attribute")
	ErrMissingRequiredElement   = errors.New("missing required element")
)

var kindSentinels = map[ErrorKind]error{
	UnexpectedElement:        ErrUnexpectedElement,
	MissingRequiredAttribute: ErrMissingRequiredAttribute,
	MalformedValue:           ErrMalformedValue,
	UnterminatedElement:      ErrUnterminatedElement,
	EncodingError:            ErrEncoding,
	SyntaxError:              ErrSyntax,
	UnexpectedAttribute:      ErrUnexpectedAttribute,
	MissingRequiredElement:   ErrMissingRequiredElement,
}

func (k ErrorKind) String() string {
	if err, ok := kindSentinels[k]; ok {
		return err.Error()
	}
	return fmt.Sprintf("error kind %d", int(k))
}

// Position locates a token in the source text.
// Line and Column are 1-based, Offset is a 0-based byte offset.
type Position struct {
	Line   int
	Column int
	Offset int
}

func (p Position) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

// ParseError describes why a document could not be parsed and where
type ParseError struct {
	Kind    ErrorKind
	Tag     string   // offending element
	Attr    string   // offending attribute, if any
	Text    string   // offending text, if any
	Context string   // enclosing element
	Pos     Position // zero when unknown
	Err     error    // underlying cause
}

func (e *ParseError) Error() string {
	var b strings.Builder
	b.WriteString("markup: ")
	if e.Pos.Line > 0 {
		fmt.Fprintf(&b, "%s: ", e.Pos)
	}
	b.WriteString(e.Kind.String())

	switch e.Kind {
	case MissingRequiredAttribute, UnexpectedAttribute:
		fmt.Fprintf(&b, " %q on <%s>", e.Attr, e.Tag)
	case MalformedValue:
		fmt.Fprintf(&b, " %q for attribute %q of <%s>", e.Text, e.Attr, e.Tag)
	case UnexpectedElement:
		fmt.Fprintf(&b, " <%s>", e.Tag)
		if e.Context != "" {
			fmt.Fprintf(&b, " in <%s>", e.Context)
		}
	case UnterminatedElement:
		fmt.Fprintf(&b, " <%s>", e.Tag)
	case MissingRequiredElement:
		fmt.Fprintf(&b, " <%s> in <%s>", e.Tag, e.Context)
	case SyntaxError:
		if e.Text != "" {
			fmt.Fprintf(&b, " near %q", e.Text)
		}
	}

	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	return b.String()
}

func (e *ParseError) Unwrap() error { return e.Err }

func (e *ParseError) Is(target error) bool {
	return kindSentinels[e.Kind] == target
}

// Unexpected builds an UnexpectedElement error for a child of context
func Unexpected(n *Node, context string) *ParseError {
	return &ParseError{Kind: UnexpectedElement, Tag: n.Name, Context: context, Pos: n.Pos}
}

// Missing builds a MissingRequiredAttribute error
func Missing(n *Node, attr string) *ParseError {
	return &ParseError{Kind: MissingRequiredAttribute, Tag: n.Name, Attr: attr, Pos: n.Pos}
}

// MissingChild builds a MissingRequiredElement error for a child of n
func MissingChild(n *Node, tag string) *ParseError {
	return &ParseError{Kind: MissingRequiredElement, Tag: tag, Context: n.Name, Pos: n.Pos}
}

// Malformed builds a MalformedValue error for an attribute of n
func Malformed(n *Node, a Attr, cause error) *ParseError {
	return &ParseError{Kind: MalformedValue, Tag: n.Name, Attr: a.Name, Text: a.Value, Pos: a.Pos, Err: cause}
}
