package markup

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/alecthomas/participle/v2/lexer"
)

// Parser turns markup text into a node tree
type Parser struct {
	text    string
	lex     lexer.Lexer
	current lexer.Token
	format  *Format // set once, from the first whitespace inside the root
}

// Parse parses a complete document.
// The document must have exactly one root element. Text before and after the
// root may only be the XML declaration, comments and whitespace.
func Parse(text string) (*Document, error) {
	if pos, ok := invalidUTF8(text); !ok {
		return nil, &ParseError{Kind: EncodingError, Pos: pos}
	}

	lex, err := MarkupLexer.LexString("", text)
	if err != nil {
		return nil, &ParseError{Kind: SyntaxError, Err: err}
	}
	p := &Parser{text: text, lex: lex}
	return p.parseDocument()
}

// ParseReader reads r to the end and parses the result
func ParseReader(r io.Reader) (*Document, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("markup: read failed: %w", err)
	}
	return Parse(string(data))
}

func (p *Parser) next() error {
	tok, err := p.lex.Next()
	if err != nil {
		return p.lexError(err)
	}
	p.current = tok
	return nil
}

// skipSpace advances past whitespace inside a tag
func (p *Parser) skipSpace() error {
	for p.current.Type == tokWhitespace {
		if err := p.next(); err != nil {
			return err
		}
	}
	return nil
}

func (p *Parser) parseDocument() (*Document, error) {
	doc := &Document{}

	if err := p.next(); err != nil {
		return nil, err
	}

	// Start: declaration, comments and blank text until the root tag
	for p.current.Type != tokOpenTag {
		switch {
		case p.current.EOF():
			return nil, &ParseError{Kind: SyntaxError, Err: errors.New("no root element")}
		case p.current.Type == tokDecl, p.current.Type == tokComment:
		case p.current.Type == tokText && isBlank(p.current.Value):
		default:
			return nil, p.syntax("content before root element")
		}
		if err := p.next(); err != nil {
			return nil, err
		}
	}
	doc.Prolog = p.text[:p.current.Pos.Offset]

	root, end, err := p.parseElement()
	if err != nil {
		return nil, err
	}
	doc.Root = root
	doc.Epilog = p.text[end:]
	if p.format != nil {
		doc.Format = *p.format
	}

	// AfterRoot: only comments and whitespace
	for {
		if err := p.next(); err != nil {
			return nil, err
		}
		switch {
		case p.current.EOF():
			return doc, nil
		case p.current.Type == tokComment:
		case p.current.Type == tokText && isBlank(p.current.Value):
		default:
			return nil, p.syntax("content after root element")
		}
	}
}

// parseElement parses one element starting at its '<' token and returns the
// byte offset just past its end.
func (p *Parser) parseElement() (*Node, int, error) {
	start := p.current.Pos
	if err := p.next(); err != nil {
		return nil, 0, err
	}
	if p.current.Type != tokName {
		return nil, 0, p.syntax("expected element name")
	}

	node := &Node{Kind: ElementNode, Name: p.current.Value, Pos: toPosition(start)}

	// Attributes
	for {
		if err := p.next(); err != nil {
			return nil, 0, err
		}
		if err := p.skipSpace(); err != nil {
			return nil, 0, err
		}

		switch p.current.Type {
		case tokSelfClose:
			return node, p.current.Pos.Offset + len(p.current.Value), nil
		case tokTagEnd:
			end, err := p.parseContent(node)
			return node, end, err
		case tokName:
			if err := p.parseAttr(node); err != nil {
				return nil, 0, err
			}
		default:
			if p.current.EOF() {
				return nil, 0, p.unterminated(node)
			}
			return nil, 0, p.syntax("unexpected token in <" + node.Name + ">")
		}
	}
}

func (p *Parser) parseAttr(node *Node) error {
	attr := Attr{Name: p.current.Value, Pos: toPosition(p.current.Pos)}
	if _, dup := node.Attr(attr.Name); dup {
		return &ParseError{Kind: SyntaxError, Tag: node.Name, Attr: attr.Name, Text: attr.Name,
			Pos: attr.Pos, Err: errors.New("duplicate attribute")}
	}

	if err := p.next(); err != nil {
		return err
	}
	if err := p.skipSpace(); err != nil {
		return err
	}
	if p.current.Type != tokEquals {
		if p.current.EOF() {
			return p.unterminated(node)
		}
		return p.syntax("expected '=' after attribute " + attr.Name)
	}
	if err := p.next(); err != nil {
		return err
	}
	if err := p.skipSpace(); err != nil {
		return err
	}
	if p.current.Type != tokString {
		if p.current.EOF() {
			return p.unterminated(node)
		}
		return p.syntax("expected quoted value for attribute " + attr.Name)
	}

	raw := p.current.Value
	attr.Quote = raw[0]
	attr.Value = raw[1 : len(raw)-1]
	node.Attrs = append(node.Attrs, attr)
	return nil
}

// parseContent collects children until the matching close tag (InElement)
func (p *Parser) parseContent(node *Node) (int, error) {
	first := true

	for {
		if err := p.next(); err != nil {
			return 0, err
		}

		switch {
		case p.current.EOF():
			return 0, p.unterminated(node)

		case p.current.Type == tokText:
			text := p.current.Value
			if first && p.format == nil && isBlank(text) {
				p.format = detectFormat(text)
			}
			if !isBlank(text) {
				node.Children = append(node.Children, &Node{Kind: TextNode, Text: text, Pos: toPosition(p.current.Pos)})
			}

		case p.current.Type == tokComment:
			node.Children = append(node.Children, &Node{Kind: CommentNode, Text: p.current.Value, Pos: toPosition(p.current.Pos)})

		case p.current.Type == tokOpenTag:
			if first && p.format == nil {
				p.format = &Format{}
			}
			child, _, err := p.parseElement()
			if err != nil {
				return 0, err
			}
			node.Children = append(node.Children, child)

		case p.current.Type == tokCloseTag:
			return p.parseCloseTag(node)

		default:
			return 0, p.syntax("unexpected content in <" + node.Name + ">")
		}
		first = false
	}
}

func (p *Parser) parseCloseTag(node *Node) (int, error) {
	if err := p.next(); err != nil {
		return 0, err
	}
	if p.current.Type != tokName || p.current.Value != node.Name {
		return 0, p.unterminated(node)
	}
	if err := p.next(); err != nil {
		return 0, err
	}
	if err := p.skipSpace(); err != nil {
		return 0, err
	}
	if p.current.Type != tokTagEnd {
		return 0, p.unterminated(node)
	}
	if len(node.Children) == 0 {
		node.Paired = true
	}
	return p.current.Pos.Offset + len(p.current.Value), nil
}

func (p *Parser) syntax(msg string) *ParseError {
	return &ParseError{
		Kind: SyntaxError,
		Text: p.current.Value,
		Pos:  toPosition(p.current.Pos),
		Err:  errors.New(msg),
	}
}

func (p *Parser) unterminated(node *Node) *ParseError {
	return &ParseError{Kind: UnterminatedElement, Tag: node.Name, Pos: node.Pos}
}

// lexError maps a tokenizer failure to a ParseError. Running out of input
// inside a tag means the element was never terminated.
func (p *Parser) lexError(err error) error {
	pe := &ParseError{Kind: SyntaxError, Err: err}
	var lerr interface{ Position() lexer.Position }
	if errors.As(err, &lerr) {
		pos := lerr.Position()
		pe.Pos = toPosition(pos)
		if pos.Offset < len(p.text) && !strings.ContainsRune(p.text[pos.Offset:], '>') {
			pe.Kind = UnterminatedElement
		}
	}
	return pe
}

// detectFormat derives the layout from the whitespace before the first
// child of the root element
func detectFormat(ws string) *Format {
	i := strings.LastIndexByte(ws, '\n')
	if i < 0 {
		return &Format{}
	}
	nl := "\n"
	if i > 0 && ws[i-1] == '\r' {
		nl = "\r\n"
	}
	return &Format{Newline: nl, Indent: ws[i+1:]}
}

func toPosition(pos lexer.Position) Position {
	return Position{Line: pos.Line, Column: pos.Column, Offset: pos.Offset}
}

// invalidUTF8 locates the first invalid byte sequence
func invalidUTF8(text string) (Position, bool) {
	if utf8.ValidString(text) {
		return Position{}, true
	}
	pos := Position{Line: 1, Column: 1}
	for i := 0; i < len(text); {
		r, size := utf8.DecodeRuneInString(text[i:])
		if r == utf8.RuneError && size <= 1 {
			pos.Offset = i
			return pos, false
		}
		if r == '\n' {
			pos.Line++
			pos.Column = 1
		} else {
			pos.Column++
		}
		i += size
	}
	return pos, false
}
