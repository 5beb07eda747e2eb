package markup

import "strings"

// NodeKind distinguishes element, text and comment nodes
type NodeKind uint8

const (
	ElementNode NodeKind = iota
	TextNode
	CommentNode
)

// Attr is one attribute as written in the source.
// Value is the raw text between the quotes, still entity-escaped.
type Attr struct {
	Name  string
	Value string
	Quote byte // '"' or '\''; zero means '"'
	Pos   Position
}

// Node is one markup node
type Node struct {
	Kind     NodeKind
	Name     string   // element tag; empty for text and comments
	Attrs    []Attr   // source order
	Children []*Node  // elements, comments and non-blank text
	Text     string   // raw character data, or the whole comment
	Paired   bool     // empty element written as <a></a>
	Pos      Position // start of the node
}

// Document is a parsed markup file
type Document struct {
	Prolog string // everything before the root element
	Root   *Node
	Epilog string // everything after the root element
	Format Format
}

// Format is the indentation layout used when writing elements
type Format struct {
	Newline string // "" writes every element on one line
	Indent  string
}

// DefaultFormat is the layout the game writes: one element per line, tab indented
var DefaultFormat = Format{Newline: "\n", Indent: "\t"}

// DefaultProlog is the declaration the game writes
const DefaultProlog = `<?xml version="1.0" encoding="UTF-8"?>` + "\n"

// DefaultEpilog is the trailing text the game writes after the root element
const DefaultEpilog = "\n\n"

// NewElement creates an element node
func NewElement(name string, attrs ...Attr) *Node {
	return &Node{Kind: ElementNode, Name: name, Attrs: attrs}
}

// IsElement reports whether n is an element named name
func (n *Node) IsElement(name string) bool {
	return n != nil && n.Kind == ElementNode && n.Name == name
}

// Attr returns the attribute with the given name
func (n *Node) Attr(name string) (Attr, bool) {
	for _, a := range n.Attrs {
		if a.Name == name {
			return a, true
		}
	}
	return Attr{}, false
}

// AttrValue returns the raw value of an attribute, or "" when absent
func (n *Node) AttrValue(name string) string {
	a, _ := n.Attr(name)
	return a.Value
}

// SetAttr replaces an attribute value or appends a new attribute
func (n *Node) SetAttr(name, value string) {
	for i := range n.Attrs {
		if n.Attrs[i].Name == name {
			n.Attrs[i].Value = value
			return
		}
	}
	n.Attrs = append(n.Attrs, Attr{Name: name, Value: value})
}

// Child returns the first child element with the given name
func (n *Node) Child(name string) (*Node, bool) {
	for _, c := range n.Children {
		if c.IsElement(name) {
			return c, true
		}
	}
	return nil, false
}

// Elements returns the child elements, skipping text and comments
func (n *Node) Elements() []*Node {
	var out []*Node
	for _, c := range n.Children {
		if c.Kind == ElementNode {
			out = append(out, c)
		}
	}
	return out
}

// Append adds children to n and returns n
func (n *Node) Append(children ...*Node) *Node {
	n.Children = append(n.Children, children...)
	return n
}

// Clone returns a deep copy of n
func (n *Node) Clone() *Node {
	if n == nil {
		return nil
	}
	c := *n
	c.Attrs = append([]Attr(nil), n.Attrs...)
	c.Children = make([]*Node, len(n.Children))
	for i, child := range n.Children {
		c.Children[i] = child.Clone()
	}
	return &c
}

// hasText reports whether any child is character data
func (n *Node) hasText() bool {
	for _, c := range n.Children {
		if c.Kind == TextNode {
			return true
		}
	}
	return false
}

func isBlank(s string) bool {
	return strings.Trim(s, " \t\r\n") == ""
}
