package markup

import (
	"io"
	"strings"
)

// Write renders a document: prolog, root element laid out with doc.Format,
// epilog. Attribute values are written as stored, so they must already be
// escaped.
func Write(doc *Document) string {
	var b strings.Builder
	b.WriteString(doc.Prolog)
	if doc.Root != nil {
		writeNode(&b, doc.Root, 0, doc.Format)
	}
	b.WriteString(doc.Epilog)
	return b.String()
}

// WriteTo writes the rendered document to w
func WriteTo(w io.Writer, doc *Document) (int64, error) {
	n, err := io.WriteString(w, Write(doc))
	return int64(n), err
}

// WriteNode renders a single node at depth 0
func WriteNode(n *Node, f Format) string {
	var b strings.Builder
	writeNode(&b, n, 0, f)
	return b.String()
}

func writeNode(b *strings.Builder, n *Node, depth int, f Format) {
	switch n.Kind {
	case TextNode, CommentNode:
		b.WriteString(n.Text)
		return
	}

	b.WriteByte('<')
	b.WriteString(n.Name)
	for _, a := range n.Attrs {
		quote := a.Quote
		if quote == 0 {
			quote = '"'
		}
		b.WriteByte(' ')
		b.WriteString(a.Name)
		b.WriteByte('=')
		b.WriteByte(quote)
		b.WriteString(a.Value)
		b.WriteByte(quote)
	}

	if len(n.Children) == 0 {
		if n.Paired {
			b.WriteString("></")
			b.WriteString(n.Name)
			b.WriteByte('>')
		} else {
			b.WriteString("/>")
		}
		return
	}
	b.WriteByte('>')

	// Mixed content is written inline so the character data stays exact
	if n.hasText() {
		for _, c := range n.Children {
			writeNode(b, c, depth+1, Format{})
		}
	} else {
		for _, c := range n.Children {
			f.breakLine(b, depth+1)
			writeNode(b, c, depth+1, f)
		}
		f.breakLine(b, depth)
	}

	b.WriteString("</")
	b.WriteString(n.Name)
	b.WriteByte('>')
}

func (f Format) breakLine(b *strings.Builder, depth int) {
	if f.Newline == "" {
		return
	}
	b.WriteString(f.Newline)
	for i := 0; i < depth; i++ {
		b.WriteString(f.Indent)
	}
}
