package microcontroller

import (
	"github.com/OpenTraceLab/swmc/pkg/markup"
)

// Extras holds attributes and children of an element that are not part of
// its schema. Each entry remembers its index in the source so it can be put
// back in the same relative position.
type Extras struct {
	Attrs    []ExtraAttr
	Children []ExtraNode

	source []markup.Attr // every attribute as written
}

// ExtraAttr is an unknown attribute and its index among the element's attributes
type ExtraAttr struct {
	Index int
	Attr  markup.Attr
}

// ExtraNode is an unknown child and its index among the element's children
type ExtraNode struct {
	Index int
	Node  *markup.Node
}

func (e *Extras) addAttr(index int, a markup.Attr) {
	e.Attrs = append(e.Attrs, ExtraAttr{Index: index, Attr: a})
}

func (e *Extras) addChild(index int, n *markup.Node) {
	e.Children = append(e.Children, ExtraNode{Index: index, Node: n})
}

// Empty reports whether nothing was preserved
func (e *Extras) Empty() bool {
	return e == nil || (len(e.Attrs) == 0 && len(e.Children) == 0)
}

// arrange puts emitted attributes back in source order and quoting
func (e *Extras) arrange(attrs []markup.Attr) []markup.Attr {
	if e == nil {
		return arrange(attrs, nil)
	}
	return arrange(attrs, e.source)
}

// mergeAttrs inserts preserved attributes into the known ones
func (e *Extras) mergeAttrs(known []markup.Attr) []markup.Attr {
	if e == nil || len(e.Attrs) == 0 {
		return known
	}
	out := append([]markup.Attr(nil), known...)
	for _, x := range e.Attrs {
		i := x.Index
		if i > len(out) {
			i = len(out)
		}
		out = append(out, markup.Attr{})
		copy(out[i+1:], out[i:])
		out[i] = x.Attr
	}
	return out
}

// mergeChildren inserts preserved children into the known ones
func (e *Extras) mergeChildren(known []*markup.Node) []*markup.Node {
	if e == nil || len(e.Children) == 0 {
		return known
	}
	out := append([]*markup.Node(nil), known...)
	for _, x := range e.Children {
		i := x.Index
		if i > len(out) {
			i = len(out)
		}
		out = append(out, nil)
		copy(out[i+1:], out[i:])
		out[i] = x.Node.Clone()
	}
	return out
}
